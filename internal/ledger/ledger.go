// Package ledger submits product lifecycle transactions to the SupplyChain
// contract and waits for them to be mined.
package ledger

import "context"

// Operation names, also used as metric and log labels.
const (
	OpCreate   = "create"
	OpTransfer = "transfer"
	OpStatus   = "status"
)

// Receipt describes a mined transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
}

// Ledger is the authoritative record of product ownership and status.
// Every method blocks until the transaction is mined or ctx is done.
type Ledger interface {
	Create(ctx context.Context, productID uint64, owner string) (*Receipt, error)
	Transfer(ctx context.Context, productID uint64, newOwner string) (*Receipt, error)
	SetStatus(ctx context.Context, productID uint64, code uint8) (*Receipt, error)
}
