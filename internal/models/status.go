package models

import "strings"

// ShipmentStatus is the closed set of shipment lifecycle states.
// Values that fail ParseShipmentStatus are legacy rows and keep their raw text.
type ShipmentStatus string

const (
	ShipmentStatusCreated   ShipmentStatus = "Created"
	ShipmentStatusPickedUp  ShipmentStatus = "Picked Up"
	ShipmentStatusInTransit ShipmentStatus = "In Transit"
	ShipmentStatusDelivered ShipmentStatus = "Delivered"
)

var shipmentStatuses = []ShipmentStatus{
	ShipmentStatusCreated,
	ShipmentStatusPickedUp,
	ShipmentStatusInTransit,
	ShipmentStatusDelivered,
}

func ShipmentStatuses() []ShipmentStatus {
	return append([]ShipmentStatus(nil), shipmentStatuses...)
}

// ParseShipmentStatus accepts "in transit", "IN_TRANSIT", "in-transit" and so on.
func ParseShipmentStatus(s string) (ShipmentStatus, bool) {
	k := foldStatus(s)
	for _, st := range shipmentStatuses {
		if foldStatus(string(st)) == k {
			return st, true
		}
	}
	return ShipmentStatus(strings.TrimSpace(s)), false
}

func (s ShipmentStatus) Known() bool {
	_, ok := ParseShipmentStatus(string(s))
	return ok
}

func (s ShipmentStatus) String() string { return string(s) }

type Role string

const (
	RolePending  Role = "PENDING"
	RoleOperator Role = "OPERATOR"
	RoleAdmin    Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return RolePending, true
	case "OPERATOR":
		return RoleOperator, true
	case "ADMIN":
		return RoleAdmin, true
	}
	return Role(s), false
}

type Provider string

const (
	ProviderLocal  Provider = "LOCAL"
	ProviderGoogle Provider = "GOOGLE"
)

// ParseProvider also accepts the lowercase "local" written by older registrations.
func ParseProvider(s string) (Provider, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOCAL":
		return ProviderLocal, true
	case "GOOGLE":
		return ProviderGoogle, true
	}
	return Provider(s), false
}

// ChangeKind is what happened to an entity.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "Created"
	ChangeUpdated ChangeKind = "Updated"
	ChangeDeleted ChangeKind = "Deleted"
)

func foldStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
