// Package app assembles the ledger client, metadata store, service and
// router from a Config. Both entrypoints share it.
package app

import (
	"context"
	"fmt"

	"go-supplychain-router/internal/config"
	"go-supplychain-router/internal/handler"
	"go-supplychain-router/internal/ledger"
	"go-supplychain-router/internal/logger"
	"go-supplychain-router/internal/model"
	"go-supplychain-router/internal/repository"
	"go-supplychain-router/internal/service"
	"go-supplychain-router/pkg/database"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-redis/redis/v8"
)

type App struct {
	Router *handler.Router
	Ledger *ledger.EthLedger

	closers []func()
}

// New dials the ledger, opens the configured store and wires the router.
// pub may be nil when nobody listens for lifecycle events.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, pub service.Publisher) (*App, error) {
	a := &App{}

	l, err := ledger.Dial(ctx, ledger.Config{
		RPCURL:          cfg.Ledger.RPCURL,
		PrivateKey:      cfg.Ledger.PrivateKey,
		ContractAddress: cfg.Ledger.ContractAddress,
		WaitTimeout:     cfg.Ledger.WaitTimeout,
	})
	if err != nil {
		return nil, err
	}
	a.Ledger = l
	a.closers = append(a.closers, l.Close)

	store, closeStore, err := NewStore(ctx, cfg.Store, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	svc := service.NewProductService(l, store, pub, service.Options{
		StatusPolicy:    service.StatusPolicy(cfg.StatusPolicy),
		MirrorRetries:   cfg.MirrorRetries,
		MirrorRetryBase: cfg.MirrorRetryBase,
	})
	a.Router = handler.NewRouter(svc, log)

	log.Info().
		Str("sender", l.Sender()).
		Str("contract", cfg.Ledger.ContractAddress).
		Str("store", cfg.Store.Backend).
		Str("statusPolicy", cfg.StatusPolicy).
		Msg("router ready")
	return a, nil
}

// Close releases the ledger connection and the store, in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewStore opens the metadata store selected by cfg.Backend.
func NewStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (repository.ProductStore, func(), error) {
	switch cfg.Backend {
	case config.BackendDynamoDB:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		return repository.NewDynamoProductRepo(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), func() {}, nil

	case config.BackendPostgres:
		db, err := database.ConnectDB(cfg.DatabaseURL, log.Logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.WithContext(ctx).AutoMigrate(&model.Product{}); err != nil {
			return nil, nil, fmt.Errorf("migrate products: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		return repository.NewProductRepo(db), closeDB, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return repository.NewRedisProductRepo(rdb), func() { rdb.Close() }, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.Backend)
}
