package models

// Zero-valued filter fields match everything.

type CargoFilter struct {
	Type       string
	ShipmentID *int64
}

type ShipmentFilter struct {
	Status string
}

type RouteFilter struct {
	Status             string
	TransportationMode string
	OriginPort         string
	DestinationPort    string
}

type VendorFilter struct {
	ServiceType string
	IsActive    *bool
}

type DeliveryFilter struct {
	Status     string
	ShipmentID *int64
}

type UserFilter struct {
	Role Role
}
