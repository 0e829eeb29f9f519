package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyRef is the denormalized view of a carrier, agent or manager joined
// from a directory table owned by another subsystem
type PartyRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
	Phone string    `json:"phone,omitempty"`
}

// DirectoryKind names the directory table a weak reference resolves against
type DirectoryKind string

const (
	DirectoryCarrier DirectoryKind = "carrier"
	DirectoryAgent   DirectoryKind = "agent"
	DirectoryManager DirectoryKind = "manager"
)

// ModeDetails is the mode-specific payload of a shipment.
// Implemented by *SeaDetails, *AirDetails and *GroundDetails.
type ModeDetails interface {
	Method() ShippingMethod
}

// SeaDetails holds ocean freight fields
type SeaDetails struct {
	PortOfLoading   string     `json:"port_of_loading,omitempty"`
	PortOfDischarge string     `json:"port_of_discharge,omitempty"`
	VesselName      string     `json:"vessel_name,omitempty"`
	ContainerNumber string     `json:"container_number,omitempty"`
	BillOfLading    string     `json:"bill_of_lading,omitempty"`
	DepartureDate   *time.Time `json:"departure_date,omitempty"`
	ArrivalDate     *time.Time `json:"arrival_date,omitempty"`
}

func (*SeaDetails) Method() ShippingMethod { return ShippingMethodSea }

// AirDetails holds air freight fields
type AirDetails struct {
	FlightNumber     string           `json:"flight_number,omitempty"`
	DepartureAirport string           `json:"departure_airport,omitempty"`
	ArrivalAirport   string           `json:"arrival_airport,omitempty"`
	DepartureTime    *time.Time       `json:"departure_time,omitempty"`
	ArrivalTime      *time.Time       `json:"arrival_time,omitempty"`
	CargoType        string           `json:"cargo_type,omitempty"`
	ItemDescription  string           `json:"item_description,omitempty"`
	Quantity         *int             `json:"quantity,omitempty"`
	UnitPrice        *decimal.Decimal `json:"unit_price,omitempty"`
	TotalCost        *decimal.Decimal `json:"total_cost,omitempty"`
}

func (*AirDetails) Method() ShippingMethod { return ShippingMethodAir }

// GroundDetails holds road freight fields
type GroundDetails struct {
	DepartureTerminal string `json:"departure_terminal,omitempty"`
	ArrivalTerminal   string `json:"arrival_terminal,omitempty"`
	RouteNumber       string `json:"route_number,omitempty"`
}

func (*GroundDetails) Method() ShippingMethod { return ShippingMethodStandard }

// CargoBox is one line of the packing list. Dimensions are in centimetres.
type CargoBox struct {
	Length   decimal.Decimal `json:"length"`
	Width    decimal.Decimal `json:"width"`
	Height   decimal.Decimal `json:"height"`
	Quantity int             `json:"quantity"`
}

// CostBreakdown is the itemized shipping cost
type CostBreakdown struct {
	Freight   decimal.Decimal
	Delivery  decimal.Decimal
	Insurance decimal.Decimal
	Customs   decimal.Decimal
	Handling  decimal.Decimal
}

// Total sums every component
func (c CostBreakdown) Total() decimal.Decimal {
	return decimal.Sum(c.Freight, c.Delivery, c.Insurance, c.Customs, c.Handling)
}

// ShipmentRecord is the shipping information of one purchase order
type ShipmentRecord struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID

	CarrierID *uuid.UUID
	AgentID   *uuid.UUID
	ManagerID *uuid.UUID
	Carrier   *PartyRef // joined, read-only
	Agent     *PartyRef
	Manager   *PartyRef

	ShippingMethod ShippingMethod
	Mode           ModeDetails // nil until mode fields are supplied

	CargoBoxes        []CargoBox
	TotalCBM          decimal.Decimal
	PricePerCBM       decimal.Decimal
	Costs             CostBreakdown
	TotalShippingCost decimal.Decimal
	Currency          string

	Status            ShipmentStatus
	TrackingNumber    string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time

	ProductsUpdatedAt   *time.Time
	InventoryReceivedAt *time.Time

	RequireSignature bool
	EnableInsurance  bool
	InsuranceValue   decimal.Decimal

	CreatedBy *uuid.UUID
	UpdatedBy *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy that shares no mutable state with r
func (r *ShipmentRecord) Clone() *ShipmentRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.CargoBoxes != nil {
		c.CargoBoxes = append([]CargoBox(nil), r.CargoBoxes...)
	}
	c.Mode = cloneMode(r.Mode)
	return &c
}

func cloneMode(m ModeDetails) ModeDetails {
	switch v := m.(type) {
	case *SeaDetails:
		c := *v
		return &c
	case *AirDetails:
		c := *v
		return &c
	case *GroundDetails:
		c := *v
		return &c
	default:
		return nil
	}
}

// ShipmentEvent is one immutable entry of a shipment's status history
type ShipmentEvent struct {
	ID          uuid.UUID
	ShipmentID  uuid.UUID
	Status      ShipmentStatus
	Description string
	Location    string
	Notes       string
	CreatedBy   *uuid.UUID
	Timestamp   time.Time
}

// CargoItem links a product line to a shipment
type CargoItem struct {
	ID                  uuid.UUID
	ShipmentID          uuid.UUID
	ProductID           uuid.UUID
	VariantID           *uuid.UUID
	PurchaseOrderItemID *uuid.UUID
	Quantity            int
	CreatedAt           time.Time
}

// CargoItemDetail is a cargo item joined with product, variant and order line
type CargoItemDetail struct {
	CargoItem
	ProductName     string
	SKU             string
	VariantName     string
	OrderedQuantity *int
}

// APIClient is a service account allowed to call the API with a static key
type APIClient struct {
	ID           uuid.UUID
	Name         string
	APIKeyHash   string
	APIKeyLookup string // SHA256(apiKey) hex for fast lookup
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is whoever performs a write: a user from a token or an API client
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// IdempotencyKey remembers the outcome of a status update request
type IdempotencyKey struct {
	Key         string
	ActorID     uuid.UUID
	ShipmentID  uuid.UUID
	EventID     uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}

// ShipmentFilter narrows a shipment listing. Zero values are ignored.
type ShipmentFilter struct {
	Status      ShipmentStatus
	CarrierID   *uuid.UUID
	AgentID     *uuid.UUID
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}
