package model

type EventAction string

const (
	ActionProductAdded         EventAction = "product_added"
	ActionOwnershipTransferred EventAction = "ownership_transferred"
	ActionStatusUpdated        EventAction = "status_updated"
)

// ProductEvent is pushed to WebSocket subscribers once both the ledger
// transaction and the mirror write have succeeded.
type ProductEvent struct {
	Type      string      `json:"type"`
	Action    EventAction `json:"action"`
	ProductID uint64      `json:"productId"`
	Owner     string      `json:"owner,omitempty"`
	Status    string      `json:"status,omitempty"`
	TxHash    string      `json:"txHash"`
	At        string      `json:"at"`
}

// NewProductEvent fills the fixed envelope type.
func NewProductEvent(action EventAction, productID uint64, txHash, at string) ProductEvent {
	return ProductEvent{
		Type:      "product_event",
		Action:    action,
		ProductID: productID,
		TxHash:    txHash,
		At:        at,
	}
}
