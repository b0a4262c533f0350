package models

import (
	"fmt"
	"time"
)

type Cargo struct {
	ID          int64    `json:"id"`
	Type        string   `json:"type"`
	Weight      float64  `json:"weight"`
	WeightUnit  string   `json:"weightUnit,omitempty"`
	Value       float64  `json:"value"`
	Volume      *float64 `json:"volume,omitempty"`
	Description string   `json:"description,omitempty"`
	ShipmentID  *int64   `json:"shipmentId,omitempty"`
}

type Shipment struct {
	ID                int64          `json:"id"`
	Origin            string         `json:"origin"`
	Destination       string         `json:"destination"`
	Status            ShipmentStatus `json:"status"`
	EstimatedDelivery *Date          `json:"estimatedDelivery,omitempty"`
	ShipmentCode      string         `json:"shipmentCode,omitempty"`
	RouteID           *int64         `json:"assignedRouteId,omitempty"`
	VendorID          *int64         `json:"assignedVendorId,omitempty"`
}

// Route.Duration is in days.
type Route struct {
	ID                 int64   `json:"id"`
	OriginPort         string  `json:"originPort"`
	DestinationPort    string  `json:"destinationPort"`
	Duration           int     `json:"duration"`
	Distance           float64 `json:"distance"`
	Cost               float64 `json:"cost"`
	TransportationMode string  `json:"transportationMode,omitempty"`
	Status             string  `json:"status,omitempty"`
}

type Vendor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contactInfo,omitempty"`
	ServiceType string `json:"serviceType,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// Delivery.ShipmentID is nil only for deliveries orphaned by a shipment delete.
type Delivery struct {
	ID                 int64      `json:"id"`
	ShipmentID         *int64     `json:"shipmentId,omitempty"`
	ActualDeliveryDate *time.Time `json:"actualDeliveryDate,omitempty"`
	Recipient          string     `json:"recipient"`
	Status             string     `json:"status,omitempty"`
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	Name         string    `json:"name,omitempty"`
	Picture      string    `json:"picture,omitempty"`
	Provider     Provider  `json:"provider"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin && u.IsActive
}

// DeleteResult is returned by delete operations instead of a not-found error.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// ShipmentDisplayID renders "SH007" for id 7.
func ShipmentDisplayID(id int64) string {
	return fmt.Sprintf("SH%03d", id)
}
