package messages

import "time"

// EntityEvent is published on every create/update/delete of a logistics entity.
type EntityEvent struct {
	EventID  string `json:"event_id"`
	Entity   string `json:"entity"`
	Action   string `json:"action"`
	EntityID int64  `json:"entity_id"`
	// Human readable one-liner, e.g. "Cargo created: ID=5, Type=Electronics, Weight=12.5kg, Value=$300".
	Summary        string    `json:"summary"`
	Status         string    `json:"status,omitempty"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

const (
	EntityCargo    = "cargo"
	EntityShipment = "shipment"
	EntityDelivery = "delivery"
	EntityRoute    = "route"
	EntityVendor   = "vendor"
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)
