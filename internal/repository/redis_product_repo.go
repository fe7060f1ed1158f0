package repository

import (
	"context"
	"fmt"
	"strconv"

	"go-supplychain-router/internal/model"

	"github.com/go-redis/redis/v8"
)

const productKeyPrefix = "product:"

// Hash fields of a product key.
const (
	fieldOwner      = "owner"
	fieldStatus     = "status"
	fieldLastUpdate = "lastUpdate"
)

type redisProductRepo struct {
	rdb *redis.Client
}

// NewRedisProductRepo stores each product as a hash under "product:<id>".
func NewRedisProductRepo(rdb *redis.Client) ProductStore {
	return &redisProductRepo{rdb: rdb}
}

func productKey(productID uint64) string {
	return productKeyPrefix + strconv.FormatUint(productID, 10)
}

func (r *redisProductRepo) Put(ctx context.Context, product *model.Product) error {
	key := productKey(product.ProductID)

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		fieldOwner, product.Owner,
		fieldStatus, product.Status,
		fieldLastUpdate, product.LastUpdate,
	)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put product %d: %w", product.ProductID, err)
	}
	return nil
}

func (r *redisProductRepo) Update(ctx context.Context, productID uint64, u model.ProductUpdate) error {
	values := []interface{}{fieldLastUpdate, u.LastUpdate}
	if u.Owner != nil {
		values = append(values, fieldOwner, *u.Owner)
	}
	if u.Status != nil {
		values = append(values, fieldStatus, *u.Status)
	}

	if err := r.rdb.HSet(ctx, productKey(productID), values...).Err(); err != nil {
		return fmt.Errorf("update product %d: %w", productID, err)
	}
	return nil
}

func (r *redisProductRepo) Get(ctx context.Context, productID uint64) (*model.Product, error) {
	fields, err := r.rdb.HGetAll(ctx, productKey(productID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	if len(fields) == 0 {
		return nil, ErrProductNotFound
	}

	return &model.Product{
		ProductID:  productID,
		Owner:      fields[fieldOwner],
		Status:     fields[fieldStatus],
		LastUpdate: fields[fieldLastUpdate],
	}, nil
}
