// Package testutil provides in-memory Ledger and ProductStore implementations for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"go-supplychain-router/internal/ledger"
	"go-supplychain-router/internal/model"
	"go-supplychain-router/internal/repository"
)

// LedgerCall records one invocation of the fake ledger.
type LedgerCall struct {
	Op        string
	ProductID uint64
	Address   string
	Code      uint8
}

// FakeLedger behaves like the SupplyChain contract with a single signer:
// duplicate ids are rejected and, when Signer is set, only products owned
// by Signer can be transferred or updated.
type FakeLedger struct {
	mu     sync.Mutex
	owners map[uint64]string
	codes  map[uint64]uint8
	nonce  int

	Signer string
	Calls  []LedgerCall
	// Fail forces the next call of an op to return the error.
	Fail map[string]error
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		owners: make(map[uint64]string),
		codes:  make(map[uint64]uint8),
		Fail:   make(map[string]error),
	}
}

// Code returns the last status code set for productID.
func (f *FakeLedger) Code(productID uint64) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[productID]
}

func (f *FakeLedger) Owner(productID uint64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owners[productID]
}

func (f *FakeLedger) Create(_ context.Context, productID uint64, owner string) (*ledger.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, LedgerCall{Op: ledger.OpCreate, ProductID: productID, Address: owner})

	if err := f.forced(ledger.OpCreate); err != nil {
		return nil, err
	}
	if _, ok := f.owners[productID]; ok {
		return nil, &ledger.Error{Op: ledger.OpCreate, Kind: ledger.KindDuplicate, Reason: "Product already exists"}
	}
	f.owners[productID] = owner
	f.codes[productID] = model.CodeCreated
	return f.receipt(), nil
}

func (f *FakeLedger) Transfer(_ context.Context, productID uint64, newOwner string) (*ledger.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, LedgerCall{Op: ledger.OpTransfer, ProductID: productID, Address: newOwner})

	if err := f.forced(ledger.OpTransfer); err != nil {
		return nil, err
	}
	if !f.isOwner(productID) {
		return nil, &ledger.Error{Op: ledger.OpTransfer, Kind: ledger.KindNotOwner, Reason: "Only current owner can transfer"}
	}
	f.owners[productID] = newOwner
	return f.receipt(), nil
}

func (f *FakeLedger) SetStatus(_ context.Context, productID uint64, code uint8) (*ledger.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, LedgerCall{Op: ledger.OpStatus, ProductID: productID, Code: code})

	if err := f.forced(ledger.OpStatus); err != nil {
		return nil, err
	}
	if !f.isOwner(productID) {
		return nil, &ledger.Error{Op: ledger.OpStatus, Kind: ledger.KindNotOwner, Reason: "Only current owner can update status"}
	}
	f.codes[productID] = code
	return f.receipt(), nil
}

func (f *FakeLedger) isOwner(productID uint64) bool {
	owner, ok := f.owners[productID]
	return ok && (f.Signer == "" || owner == f.Signer)
}

func (f *FakeLedger) forced(op string) error {
	err, ok := f.Fail[op]
	if !ok {
		return nil
	}
	delete(f.Fail, op)
	return err
}

func (f *FakeLedger) receipt() *ledger.Receipt {
	f.nonce++
	return &ledger.Receipt{
		TxHash:      fmt.Sprintf("0x%064x", f.nonce),
		BlockNumber: uint64(100 + f.nonce),
		GasUsed:     50000,
	}
}

// MemoryStore is a map-backed ProductStore with injectable write failures.
type MemoryStore struct {
	mu       sync.Mutex
	products map[uint64]model.Product

	// FailWrites makes the next N Put/Update calls fail with WriteErr.
	FailWrites int
	WriteErr   error
	Writes     int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{products: make(map[uint64]model.Product)}
}

func (s *MemoryStore) Put(_ context.Context, product *model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeFailure(); err != nil {
		return err
	}
	s.products[product.ProductID] = *product
	return nil
}

func (s *MemoryStore) Update(_ context.Context, productID uint64, u model.ProductUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeFailure(); err != nil {
		return err
	}
	p := s.products[productID]
	p.ProductID = productID
	p.LastUpdate = u.LastUpdate
	if u.Owner != nil {
		p.Owner = *u.Owner
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	s.products[productID] = p
	return nil
}

func (s *MemoryStore) Get(_ context.Context, productID uint64) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) writeFailure() error {
	s.Writes++
	if s.FailWrites > 0 {
		s.FailWrites--
		return s.WriteErr
	}
	return nil
}

// EventRecorder collects published lifecycle events.
type EventRecorder struct {
	mu     sync.Mutex
	Events []model.ProductEvent
}

func (r *EventRecorder) Publish(ev model.ProductEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}
