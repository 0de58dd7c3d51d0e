package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published on the ledger exchange.
const (
	EventTenantAdded     = "tenant_added"
	EventTenantUpdated   = "tenant_updated"
	EventTenantDeleted   = "tenant_deleted"
	EventPaymentRecorded = "payment_recorded"
	EventRentChanged     = "rent_changed"
)

// LedgerEvent is a lightweight record of one mutation against a building's
// ledger. Consumers that need the full tenant fetch it from the store.
type LedgerEvent struct {
	Event       string    `json:"event"`
	Building    string    `json:"building"`
	TenantID    int64     `json:"tenant_id"`
	Month       string    `json:"month,omitempty"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(event, building string, tenantID int64) *LedgerEvent {
	return &LedgerEvent{
		Event:     event,
		Building:  building,
		TenantID:  tenantID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
