package model

// CreateProductRequest is the body of POST /product.
type CreateProductRequest struct {
	ID    uint64 `json:"id" validate:"required,gt=0"`
	Owner string `json:"owner" validate:"required,ledger_addr"`
}

// TransferRequest is the body of PUT /product/{id}/transfer.
type TransferRequest struct {
	NewOwner string `json:"newOwner" validate:"required,ledger_addr"`
}

// StatusRequest is the body of PUT /product/{id}/status. Any string,
// including the empty one, is accepted unless the reject policy is active.
type StatusRequest struct {
	Status string `json:"status"`
}
