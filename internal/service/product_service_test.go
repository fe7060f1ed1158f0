package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-supplychain-router/internal/ledger"
	"go-supplychain-router/internal/model"
	"go-supplychain-router/internal/repository"
	"go-supplychain-router/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

type fixture struct {
	ledger *testutil.FakeLedger
	store  *testutil.MemoryStore
	events *testutil.EventRecorder
	svc    ProductService
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		ledger: testutil.NewFakeLedger(),
		store:  testutil.NewMemoryStore(),
		events: &testutil.EventRecorder{},
	}
	opts.Now = func() time.Time { return fixedNow }
	if opts.MirrorRetryBase == 0 {
		opts.MirrorRetryBase = time.Millisecond
	}
	f.svc = NewProductService(f.ledger, f.store, f.events, opts)
	return f
}

func TestAddProduct(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	res, err := f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19T08:00:00.000Z", res.LastUpdate)
	assert.NotEmpty(t, res.Receipt.TxHash)

	p, err := f.store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &model.Product{ProductID: 1, Owner: "0xA", Status: "Created", LastUpdate: "2026-10-19T08:00:00.000Z"}, p)

	require.Len(t, f.events.Events, 1)
	assert.Equal(t, model.ActionProductAdded, f.events.Events[0].Action)
	assert.Equal(t, res.Receipt.TxHash, f.events.Events[0].TxHash)
}

func TestAddProduct_Duplicate(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.NoError(t, err)

	_, err = f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xB"})
	assert.ErrorIs(t, err, ledger.ErrDuplicate)

	p, _ := f.store.Get(ctx, 1)
	assert.Equal(t, "0xA", p.Owner)
	assert.Equal(t, 1, f.store.Writes)
}

func TestAddProduct_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  model.CreateProductRequest
		tag  string
	}{
		{"missing id", model.CreateProductRequest{Owner: "0xA"}, "required"},
		{"missing owner", model.CreateProductRequest{ID: 1}, "required"},
		{"bad owner", model.CreateProductRequest{ID: 1, Owner: "alice"}, "ledger_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})

			_, err := f.svc.AddProduct(context.Background(), tt.req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.tag, verr.Tag)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, f.ledger.Calls)
		})
	}
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.NoError(t, err)

	_, err = f.svc.TransferOwnership(ctx, 1, model.TransferRequest{NewOwner: "0xB"})
	require.NoError(t, err)

	p, _ := f.store.Get(ctx, 1)
	assert.Equal(t, "0xB", p.Owner)
	assert.Equal(t, "Created", p.Status, "status untouched by transfer")
	assert.Equal(t, "0xB", f.ledger.Owner(1))
}

func TestTransferOwnership_NotOwner(t *testing.T) {
	f := newFixture(t, Options{})
	f.ledger.Signer = "0xA"
	ctx := context.Background()

	_, err := f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xC"})
	require.NoError(t, err)

	_, err = f.svc.TransferOwnership(ctx, 1, model.TransferRequest{NewOwner: "0xB"})
	assert.ErrorIs(t, err, ledger.ErrNotOwner)

	p, _ := f.store.Get(ctx, 1)
	assert.Equal(t, "0xC", p.Owner)
}

func TestUpdateStatus_CodeMapping(t *testing.T) {
	tests := []struct {
		status   string
		wantCode uint8
	}{
		{"InTransit", 1},
		{"Delivered", 2},
		{"Created", 0},
		{"Lost", 0},
		{"in transit", 0},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f := newFixture(t, Options{})
			ctx := context.Background()
			_, err := f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xA"})
			require.NoError(t, err)

			_, err = f.svc.UpdateStatus(ctx, 1, model.StatusRequest{Status: tt.status})
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, f.ledger.Code(1))
			p, _ := f.store.Get(ctx, 1)
			assert.Equal(t, tt.status, p.Status, "stored verbatim")
		})
	}
}

func TestUpdateStatus_RejectPolicy(t *testing.T) {
	f := newFixture(t, Options{StatusPolicy: StatusPolicyReject})
	ctx := context.Background()
	_, err := f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.NoError(t, err)
	calls := len(f.ledger.Calls)

	_, err = f.svc.UpdateStatus(ctx, 1, model.StatusRequest{Status: "Lost"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Len(t, f.ledger.Calls, calls, "ledger not called")

	_, err = f.svc.UpdateStatus(ctx, 1, model.StatusRequest{Status: "Delivered"})
	assert.NoError(t, err)
}

func TestUpdateStatus_EmptyStatus(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	_, err := f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, 1, model.StatusRequest{Status: "InTransit"})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, 1, model.StatusRequest{})
	require.NoError(t, err)

	assert.Equal(t, uint8(0), f.ledger.Code(1))
	p, _ := f.store.Get(ctx, 1)
	assert.Equal(t, "", p.Status)
}

func TestUpdateStatus_EmptyStatusRejected(t *testing.T) {
	f := newFixture(t, Options{StatusPolicy: StatusPolicyReject})

	_, err := f.svc.UpdateStatus(context.Background(), 1, model.StatusRequest{})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Empty(t, f.ledger.Calls)
}

func TestMirror_RetriesTransientFailure(t *testing.T) {
	f := newFixture(t, Options{MirrorRetries: 2})
	f.store.FailWrites = 2
	f.store.WriteErr = errors.New("throttled")

	_, err := f.svc.AddProduct(context.Background(), model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.NoError(t, err)
	assert.Equal(t, 3, f.store.Writes)

	_, err = f.store.Get(context.Background(), 1)
	assert.NoError(t, err)
}

func TestMirror_FailureAfterLedgerConfirmation(t *testing.T) {
	f := newFixture(t, Options{MirrorRetries: 1})
	f.store.FailWrites = 5
	f.store.WriteErr = errors.New("ProvisionedThroughputExceededException")

	_, err := f.svc.AddProduct(context.Background(), model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMirrorFailed)
	assert.ErrorIs(t, err, f.store.WriteErr)
	assert.Equal(t, 2, f.store.Writes)

	// The ledger kept the change.
	assert.Equal(t, "0xA", f.ledger.Owner(1))
	_, err = f.store.Get(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
	assert.Empty(t, f.events.Events)
}

func TestLedgerFailureSkipsMirror(t *testing.T) {
	f := newFixture(t, Options{})
	f.ledger.Fail[ledger.OpCreate] = &ledger.Error{Op: ledger.OpCreate, Kind: ledger.KindTimeout, Err: context.DeadlineExceeded}

	_, err := f.svc.AddProduct(context.Background(), model.CreateProductRequest{ID: 1, Owner: "0xA"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, f.store.Writes)
}

func TestGetProduct(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	_, err := f.svc.GetProduct(ctx, 1)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)

	_, err = f.svc.AddProduct(ctx, model.CreateProductRequest{ID: 1, Owner: "0xA"})
	require.NoError(t, err)

	p, err := f.svc.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "0xA", p.Owner)
}

func TestNilPublisher(t *testing.T) {
	svc := NewProductService(testutil.NewFakeLedger(), testutil.NewMemoryStore(), nil, Options{})

	_, err := svc.AddProduct(context.Background(), model.CreateProductRequest{ID: 3, Owner: "0xA"})
	assert.NoError(t, err)
}
