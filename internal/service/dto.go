package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

// StatusUpdate is a request to move a shipment to a new status. Everything
// besides Status is optional; supplied fields are written to the record and
// rendered into the event notes.
type StatusUpdate struct {
	Status   domain.ShipmentStatus `json:"status" validate:"required"`
	Location string                `json:"location" validate:"max=255"`
	Notes    string                `json:"notes" validate:"max=4000"`

	TransitType          string     `json:"transit_type,omitempty" validate:"max=100"`
	VehicleNumber        string     `json:"vehicle_number,omitempty" validate:"max=100"`
	DriverName           string     `json:"driver_name,omitempty" validate:"max=255"`
	DriverPhone          string     `json:"driver_phone,omitempty" validate:"max=50"`
	DepartureLocation    string     `json:"departure_location,omitempty" validate:"max=255"`
	ArrivalLocation      string     `json:"arrival_location,omitempty" validate:"max=255"`
	EstimatedArrival     *time.Time `json:"estimated_arrival,omitempty"`
	DeliveryMethod       string     `json:"delivery_method,omitempty" validate:"max=100"`
	RecipientName        string     `json:"recipient_name,omitempty" validate:"max=255"`
	RecipientPhone       string     `json:"recipient_phone,omitempty" validate:"max=50"`
	ExceptionType        string     `json:"exception_type,omitempty" validate:"max=100"`
	ExceptionDescription string     `json:"exception_description,omitempty" validate:"max=2000"`
	ResolutionPlan       string     `json:"resolution_plan,omitempty" validate:"max=2000"`

	Sea    *domain.SeaDetails    `json:"sea,omitempty"`
	Air    *domain.AirDetails    `json:"air,omitempty"`
	Ground *domain.GroundDetails `json:"ground,omitempty"`

	CargoBoxes        []domain.CargoBox `json:"cargo_boxes,omitempty"`
	PricePerCBM       *decimal.Decimal  `json:"price_per_cbm,omitempty"`
	FreightCost       *decimal.Decimal  `json:"freight_cost,omitempty"`
	DeliveryCost      *decimal.Decimal  `json:"delivery_cost,omitempty"`
	InsuranceCost     *decimal.Decimal  `json:"insurance_cost,omitempty"`
	CustomsCost       *decimal.Decimal  `json:"customs_cost,omitempty"`
	HandlingCost      *decimal.Decimal  `json:"handling_cost,omitempty"`
	Currency          string            `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time        `json:"actual_delivery,omitempty"`

	// Set by the HTTP layer when the request carried an Idempotency-Key
	IdempotencyKey string `json:"-"`
	RequestHash    string `json:"-"`
}

// mode returns the single mode payload supplied, if any
func (u *StatusUpdate) mode() (domain.ModeDetails, error) {
	return pickMode(u.Sea, u.Air, u.Ground)
}

// ShipmentFields are the record fields shared by create and update requests
type ShipmentFields struct {
	CarrierID      *uuid.UUID             `json:"carrier_id,omitempty"`
	AgentID        *uuid.UUID             `json:"agent_id,omitempty"`
	ManagerID      *uuid.UUID             `json:"manager_id,omitempty"`
	ShippingMethod *domain.ShippingMethod `json:"shipping_method,omitempty" validate:"omitempty,shipping_method"`

	Sea    *domain.SeaDetails    `json:"sea,omitempty"`
	Air    *domain.AirDetails    `json:"air,omitempty"`
	Ground *domain.GroundDetails `json:"ground,omitempty"`

	CargoBoxes        []domain.CargoBox `json:"cargo_boxes,omitempty"`
	PricePerCBM       *decimal.Decimal  `json:"price_per_cbm,omitempty"`
	FreightCost       *decimal.Decimal  `json:"freight_cost,omitempty"`
	DeliveryCost      *decimal.Decimal  `json:"delivery_cost,omitempty"`
	InsuranceCost     *decimal.Decimal  `json:"insurance_cost,omitempty"`
	CustomsCost       *decimal.Decimal  `json:"customs_cost,omitempty"`
	HandlingCost      *decimal.Decimal  `json:"handling_cost,omitempty"`
	Currency          *string           `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
	TrackingNumber    *string           `json:"tracking_number,omitempty" validate:"omitempty,max=100"`
	EstimatedDelivery *time.Time        `json:"estimated_delivery,omitempty"`
	ActualDelivery    *time.Time        `json:"actual_delivery,omitempty"`

	RequireSignature *bool            `json:"require_signature,omitempty"`
	EnableInsurance  *bool            `json:"enable_insurance,omitempty"`
	InsuranceValue   *decimal.Decimal `json:"insurance_value,omitempty"`
}

func (f *ShipmentFields) mode() (domain.ModeDetails, error) {
	return pickMode(f.Sea, f.Air, f.Ground)
}

// CreateShipmentRequest creates the shipment of a purchase order, or updates
// it when one already exists
type CreateShipmentRequest struct {
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id" validate:"required"`
	Status          domain.ShipmentStatus `json:"status,omitempty"`
	Location        string                `json:"location,omitempty" validate:"max=255"`
	Notes           string                `json:"notes,omitempty" validate:"max=4000"`
	ShipmentFields
}

// UpdateShipmentRequest is a partial update. Status changes are rejected.
type UpdateShipmentRequest struct {
	Status *domain.ShipmentStatus `json:"status,omitempty"`
	ShipmentFields
}

// CargoItemInput links one product line to a shipment
type CargoItemInput struct {
	ProductID           uuid.UUID  `json:"product_id" validate:"required"`
	VariantID           *uuid.UUID `json:"variant_id,omitempty"`
	PurchaseOrderItemID *uuid.UUID `json:"purchase_order_item_id,omitempty"`
	Quantity            int        `json:"quantity" validate:"omitempty,min=1"`
}

// AddCargoRequest is the payload of a cargo batch
type AddCargoRequest struct {
	Items []CargoItemInput `json:"items" validate:"required,min=1,dive"`
}

// ShipmentDetail is a shipment with everything attached to it
type ShipmentDetail struct {
	Record       *domain.ShipmentRecord
	Events       []*domain.ShipmentEvent
	Cargo        []*domain.CargoItemDetail
	NextStatuses []domain.ShipmentStatus
}
