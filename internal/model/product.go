package model

// ProductStatus is the lifecycle state of a product: Created -> InTransit -> Delivered.
type ProductStatus string

const (
	StatusCreated   ProductStatus = "Created"
	StatusInTransit ProductStatus = "InTransit"
	StatusDelivered ProductStatus = "Delivered"
)

// Codes of the on-chain Status enum.
const (
	CodeCreated   uint8 = 0
	CodeInTransit uint8 = 1
	CodeDelivered uint8 = 2
)

// LedgerCode maps a status string to the ledger enum value.
// Anything that is not InTransit or Delivered maps to CodeCreated.
func LedgerCode(status string) uint8 {
	switch ProductStatus(status) {
	case StatusInTransit:
		return CodeInTransit
	case StatusDelivered:
		return CodeDelivered
	default:
		return CodeCreated
	}
}

// IsKnownStatus reports whether status is one of the three lifecycle states.
func IsKnownStatus(status string) bool {
	switch ProductStatus(status) {
	case StatusCreated, StatusInTransit, StatusDelivered:
		return true
	}
	return false
}

// Product is the metadata-store mirror of a product's last confirmed ledger state.
// Status is kept as a plain string because it is stored exactly as requested.
type Product struct {
	ProductID  uint64 `gorm:"primaryKey;autoIncrement:false" json:"productId"`
	Owner      string `gorm:"type:varchar(66);not null" json:"owner"`
	Status     string `gorm:"type:varchar(64);not null" json:"status"`
	LastUpdate string `gorm:"type:varchar(32);not null" json:"lastUpdate"`
}

func (Product) TableName() string {
	return "products"
}

// ProductUpdate is a partial mutation of a Product. Nil fields are left untouched.
type ProductUpdate struct {
	Owner      *string
	Status     *string
	LastUpdate string
}
