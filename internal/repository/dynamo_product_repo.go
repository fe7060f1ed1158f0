package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go-supplychain-router/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of *dynamodb.Client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Item attribute names.
const (
	attrProductID  = "ProductID"
	attrOwner      = "Owner"
	attrStatus     = "Status"
	attrLastUpdate = "LastUpdate"
)

type dynamoProductRepo struct {
	client DynamoAPI
	table  string
}

func NewDynamoProductRepo(client DynamoAPI, table string) ProductStore {
	return &dynamoProductRepo{client: client, table: table}
}

func (r *dynamoProductRepo) key(productID uint64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrProductID: &types.AttributeValueMemberN{Value: strconv.FormatUint(productID, 10)},
	}
}

func (r *dynamoProductRepo) Put(ctx context.Context, product *model.Product) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]types.AttributeValue{
			attrProductID:  &types.AttributeValueMemberN{Value: strconv.FormatUint(product.ProductID, 10)},
			attrOwner:      &types.AttributeValueMemberS{Value: product.Owner},
			attrStatus:     &types.AttributeValueMemberS{Value: product.Status},
			attrLastUpdate: &types.AttributeValueMemberS{Value: product.LastUpdate},
		},
	})
	if err != nil {
		return fmt.Errorf("put product %d: %w", product.ProductID, err)
	}
	return nil
}

// Update uses UpdateItem, which creates the item when it does not exist.
func (r *dynamoProductRepo) Update(ctx context.Context, productID uint64, u model.ProductUpdate) error {
	sets := []string{attrLastUpdate + " = :now"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{
		":now": &types.AttributeValueMemberS{Value: u.LastUpdate},
	}

	// Owner and Status are DynamoDB reserved words.
	if u.Owner != nil {
		sets = append(sets, "#owner = :owner")
		names["#owner"] = attrOwner
		values[":owner"] = &types.AttributeValueMemberS{Value: *u.Owner}
	}
	if u.Status != nil {
		sets = append(sets, "#status = :status")
		names["#status"] = attrStatus
		values[":status"] = &types.AttributeValueMemberS{Value: *u.Status}
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(productID),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeValues: values,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return fmt.Errorf("update product %d: %w", productID, err)
	}
	return nil
}

func (r *dynamoProductRepo) Get(ctx context.Context, productID uint64) (*model.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(productID),
	})
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrProductNotFound
	}

	return &model.Product{
		ProductID:  productID,
		Owner:      stringAttr(out.Item, attrOwner),
		Status:     stringAttr(out.Item, attrStatus),
		LastUpdate: stringAttr(out.Item, attrLastUpdate),
	}, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}
