package app

import (
	"context"
	"testing"

	"go-supplychain-router/internal/config"
	"go-supplychain-router/internal/logger"
	"go-supplychain-router/internal/model"
	"go-supplychain-router/pkg/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	store, closeStore, err := NewStore(ctx, config.StoreConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()}, logger.Nop())
	require.NoError(t, err)
	defer closeStore()

	require.NoError(t, store.Put(ctx, &model.Product{ProductID: 1, Owner: "0xA", Status: "Created", LastUpdate: "2026-10-19T08:00:00.000Z"}))
	assert.Equal(t, "0xA", mr.HGet("product:1", "owner"))
}

func TestNewStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, _, err := NewStore(context.Background(), config.StoreConfig{Backend: config.BackendRedis, RedisAddr: addr}, logger.Nop())
	assert.ErrorContains(t, err, "connect redis")
}

func TestNewStore_DynamoDB(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	store, closeStore, err := NewStore(context.Background(), config.StoreConfig{
		Backend:     config.BackendDynamoDB,
		AWSRegion:   "us-east-1",
		DynamoTable: "Products",
	}, logger.Nop())
	require.NoError(t, err)
	closeStore()
	assert.NotNil(t, store)
}

func TestNewStore_PostgresWithoutDSN(t *testing.T) {
	_, _, err := NewStore(context.Background(), config.StoreConfig{Backend: config.BackendPostgres}, logger.Nop())
	assert.ErrorIs(t, err, database.ErrEmptyDSN)
}

func TestNewStore_UnknownBackend(t *testing.T) {
	_, _, err := NewStore(context.Background(), config.StoreConfig{Backend: "mongo"}, logger.Nop())
	assert.ErrorIs(t, err, config.ErrUnknownBackend)
}

func TestNew_LedgerConfigRequired(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.BackendRedis}}

	_, err := New(context.Background(), cfg, logger.Nop(), nil)
	assert.Error(t, err)
}
