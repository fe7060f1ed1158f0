package service

import (
	"context"
	"fmt"
	"time"

	"go-supplychain-router/internal/ledger"
	"go-supplychain-router/internal/logger"
	"go-supplychain-router/internal/metrics"
	"go-supplychain-router/internal/model"
	"go-supplychain-router/internal/repository"

	"github.com/sethvargo/go-retry"
)

type StatusPolicy string

const (
	// StatusPolicyDefault forwards unknown status strings as code 0 and stores them verbatim.
	StatusPolicyDefault StatusPolicy = "default"
	// StatusPolicyReject refuses anything but Created, InTransit and Delivered.
	StatusPolicyReject StatusPolicy = "reject"
)

// Publisher receives lifecycle events after a successful dual write.
type Publisher interface {
	Publish(ev model.ProductEvent)
}

type Options struct {
	StatusPolicy    StatusPolicy
	MirrorRetries   uint64
	MirrorRetryBase time.Duration
	Now             func() time.Time
}

// Result of a mutating operation.
type Result struct {
	Receipt    *ledger.Receipt
	LastUpdate string
}

type ProductService interface {
	AddProduct(ctx context.Context, req model.CreateProductRequest) (*Result, error)
	TransferOwnership(ctx context.Context, productID uint64, req model.TransferRequest) (*Result, error)
	UpdateStatus(ctx context.Context, productID uint64, req model.StatusRequest) (*Result, error)
	GetProduct(ctx context.Context, productID uint64) (*model.Product, error)
}

type productService struct {
	ledger    ledger.Ledger
	store     repository.ProductStore
	publisher Publisher
	opts      Options
}

func NewProductService(l ledger.Ledger, store repository.ProductStore, pub Publisher, opts Options) ProductService {
	if opts.StatusPolicy == "" {
		opts.StatusPolicy = StatusPolicyDefault
	}
	if opts.MirrorRetryBase <= 0 {
		opts.MirrorRetryBase = 100 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &productService{
		ledger:    l,
		store:     store,
		publisher: pub,
		opts:      opts,
	}
}

func (s *productService) AddProduct(ctx context.Context, req model.CreateProductRequest) (*Result, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	receipt, err := s.submit(ctx, ledger.OpCreate, req.ID, func(ctx context.Context) (*ledger.Receipt, error) {
		return s.ledger.Create(ctx, req.ID, req.Owner)
	})
	if err != nil {
		return nil, err
	}

	now := model.Timestamp(s.opts.Now())
	product := &model.Product{
		ProductID:  req.ID,
		Owner:      req.Owner,
		Status:     string(model.StatusCreated),
		LastUpdate: now,
	}
	err = s.mirror(ctx, ledger.OpCreate, req.ID, receipt, func(ctx context.Context) error {
		return s.store.Put(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	ev := model.NewProductEvent(model.ActionProductAdded, req.ID, receipt.TxHash, now)
	ev.Owner = req.Owner
	ev.Status = product.Status
	s.publish(ev)

	return &Result{Receipt: receipt, LastUpdate: now}, nil
}

func (s *productService) TransferOwnership(ctx context.Context, productID uint64, req model.TransferRequest) (*Result, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	receipt, err := s.submit(ctx, ledger.OpTransfer, productID, func(ctx context.Context) (*ledger.Receipt, error) {
		return s.ledger.Transfer(ctx, productID, req.NewOwner)
	})
	if err != nil {
		return nil, err
	}

	now := model.Timestamp(s.opts.Now())
	err = s.mirror(ctx, ledger.OpTransfer, productID, receipt, func(ctx context.Context) error {
		return s.store.Update(ctx, productID, model.ProductUpdate{Owner: &req.NewOwner, LastUpdate: now})
	})
	if err != nil {
		return nil, err
	}

	ev := model.NewProductEvent(model.ActionOwnershipTransferred, productID, receipt.TxHash, now)
	ev.Owner = req.NewOwner
	s.publish(ev)

	return &Result{Receipt: receipt, LastUpdate: now}, nil
}

// UpdateStatus sends the numeric ledger code but mirrors the status string
// exactly as received, so the two can differ for unknown values under the
// default policy.
func (s *productService) UpdateStatus(ctx context.Context, productID uint64, req model.StatusRequest) (*Result, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if s.opts.StatusPolicy == StatusPolicyReject && !model.IsKnownStatus(req.Status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	code := model.LedgerCode(req.Status)
	receipt, err := s.submit(ctx, ledger.OpStatus, productID, func(ctx context.Context) (*ledger.Receipt, error) {
		return s.ledger.SetStatus(ctx, productID, code)
	})
	if err != nil {
		return nil, err
	}

	now := model.Timestamp(s.opts.Now())
	err = s.mirror(ctx, ledger.OpStatus, productID, receipt, func(ctx context.Context) error {
		return s.store.Update(ctx, productID, model.ProductUpdate{Status: &req.Status, LastUpdate: now})
	})
	if err != nil {
		return nil, err
	}

	ev := model.NewProductEvent(model.ActionStatusUpdated, productID, receipt.TxHash, now)
	ev.Status = req.Status
	s.publish(ev)

	return &Result{Receipt: receipt, LastUpdate: now}, nil
}

// GetProduct reads the mirror only; the ledger is not consulted.
func (s *productService) GetProduct(ctx context.Context, productID uint64) (*model.Product, error) {
	return s.store.Get(ctx, productID)
}

func (s *productService) submit(ctx context.Context, op string, productID uint64, call func(context.Context) (*ledger.Receipt, error)) (*ledger.Receipt, error) {
	log := logger.FromContext(ctx)

	start := time.Now()
	receipt, err := call(ctx)
	metrics.RecordLedger(op, err, time.Since(start))
	if err != nil {
		log.Warn().Err(err).
			Str("op", op).
			Uint64("productId", productID).
			Stringer("kind", ledger.KindOf(err)).
			Msg("ledger transaction failed")
		return nil, err
	}

	log.Info().
		Str("op", op).
		Uint64("productId", productID).
		Str("txHash", receipt.TxHash).
		Uint64("block", receipt.BlockNumber).
		Msg("ledger transaction confirmed")
	return receipt, nil
}

// mirror copies a confirmed ledger change into the metadata store. Writes are
// idempotent, so transient failures are retried with exponential backoff.
// There is no compensation: if every attempt fails the ledger keeps the change.
func (s *productService) mirror(ctx context.Context, op string, productID uint64, receipt *ledger.Receipt, write func(context.Context) error) error {
	log := logger.FromContext(ctx)

	backoff := retry.WithMaxRetries(s.opts.MirrorRetries, retry.NewExponential(s.opts.MirrorRetryBase))
	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := write(ctx)
		metrics.RecordMirror(op, err)
		if err != nil {
			log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("mirror write failed")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	metrics.RecordDivergence(op)
	log.Error().Err(err).
		Str("op", op).
		Uint64("productId", productID).
		Str("txHash", receipt.TxHash).
		Int("attempts", attempt).
		Msg("ledger and metadata store diverged")
	return fmt.Errorf("%w: %w", ErrMirrorFailed, err)
}

func (s *productService) publish(ev model.ProductEvent) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
}
