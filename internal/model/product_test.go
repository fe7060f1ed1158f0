package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLedgerCode(t *testing.T) {
	tests := []struct {
		status string
		want   uint8
	}{
		{"InTransit", CodeInTransit},
		{"Delivered", CodeDelivered},
		{"Created", CodeCreated},
		{"Lost", CodeCreated},
		{"intransit", CodeCreated},
		{"", CodeCreated},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, LedgerCode(tt.status))
		})
	}
}

func TestIsKnownStatus(t *testing.T) {
	assert.True(t, IsKnownStatus("Created"))
	assert.True(t, IsKnownStatus("InTransit"))
	assert.True(t, IsKnownStatus("Delivered"))
	assert.False(t, IsKnownStatus("Returned"))
	assert.False(t, IsKnownStatus("delivered"))
}

func TestTimestamp(t *testing.T) {
	loc := time.FixedZone("WIB", 7*60*60)
	ts := time.Date(2026, 3, 4, 12, 30, 15, 123456789, loc)

	assert.Equal(t, "2026-03-04T05:30:15.123Z", Timestamp(ts))
}

func TestNewProductEvent(t *testing.T) {
	ev := NewProductEvent(ActionProductAdded, 9, "0xabc", "2026-03-04T05:30:15.123Z")

	assert.Equal(t, "product_event", ev.Type)
	assert.Equal(t, ActionProductAdded, ev.Action)
	assert.Equal(t, uint64(9), ev.ProductID)
	assert.Equal(t, "0xabc", ev.TxHash)
}
