package repository

import (
	"context"
	"errors"

	"go-supplychain-router/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStore is the metadata store mirroring ledger state, keyed by product id.
type ProductStore interface {
	// Put writes the full record, replacing any previous one.
	Put(ctx context.Context, product *model.Product) error
	// Update sets the non-nil fields of u and LastUpdate. A missing record is created.
	Update(ctx context.Context, productID uint64, u model.ProductUpdate) error
	// Get returns ErrProductNotFound when no record exists.
	Get(ctx context.Context, productID uint64) (*model.Product, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductStore {
	return &productRepo{db}
}

func (r *productRepo) Put(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(product).Error
}

func (r *productRepo) Update(ctx context.Context, productID uint64, u model.ProductUpdate) error {
	fields := map[string]interface{}{
		"last_update": u.LastUpdate,
	}
	if u.Owner != nil {
		fields["owner"] = *u.Owner
	}
	if u.Status != nil {
		fields["status"] = *u.Status
	}

	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("product_id = ?", productID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nothing to update: create the record from the provided fields only.
	product := &model.Product{ProductID: productID, LastUpdate: u.LastUpdate}
	if u.Owner != nil {
		product.Owner = *u.Owner
	}
	if u.Status != nil {
		product.Status = *u.Status
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) Get(ctx context.Context, productID uint64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
