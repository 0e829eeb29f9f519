package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentPatch is a partial update of a ShipmentRecord. A nil field is left
// untouched. CargoBoxes follows the same rule: nil means absent, an empty
// non-nil slice clears the packing list.
type ShipmentPatch struct {
	// ExpectedStatus turns the update into a compare-and-swap on status
	ExpectedStatus *ShipmentStatus

	Status    *ShipmentStatus
	CarrierID *uuid.UUID
	AgentID   *uuid.UUID
	ManagerID *uuid.UUID

	ShippingMethod *ShippingMethod
	Mode           ModeDetails

	CargoBoxes  []CargoBox
	TotalCBM    *decimal.Decimal
	PricePerCBM *decimal.Decimal

	FreightCost       *decimal.Decimal
	DeliveryCost      *decimal.Decimal
	InsuranceCost     *decimal.Decimal
	CustomsCost       *decimal.Decimal
	HandlingCost      *decimal.Decimal
	TotalShippingCost *decimal.Decimal
	Currency          *string

	TrackingNumber    *string
	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time

	ProductsUpdatedAt   *time.Time
	InventoryReceivedAt *time.Time

	RequireSignature *bool
	EnableInsurance  *bool
	InsuranceValue   *decimal.Decimal

	UpdatedBy *uuid.UUID
}

// IsEmpty reports whether the patch writes nothing besides attribution
func (p *ShipmentPatch) IsEmpty() bool {
	return p.Status == nil && p.CarrierID == nil && p.AgentID == nil && p.ManagerID == nil &&
		p.ShippingMethod == nil && p.Mode == nil && p.CargoBoxes == nil && p.TotalCBM == nil &&
		p.PricePerCBM == nil && !p.HasCostChange() && p.TotalShippingCost == nil && p.Currency == nil &&
		p.TrackingNumber == nil && p.EstimatedDelivery == nil && p.ActualDelivery == nil &&
		p.ProductsUpdatedAt == nil && p.InventoryReceivedAt == nil &&
		p.RequireSignature == nil && p.EnableInsurance == nil && p.InsuranceValue == nil
}

// HasCostChange reports whether any cost component is supplied
func (p *ShipmentPatch) HasCostChange() bool {
	return p.FreightCost != nil || p.DeliveryCost != nil || p.InsuranceCost != nil ||
		p.CustomsCost != nil || p.HandlingCost != nil
}

// MergeCosts overlays the supplied cost components on base
func (p *ShipmentPatch) MergeCosts(base CostBreakdown) CostBreakdown {
	setDecimal(&base.Freight, p.FreightCost)
	setDecimal(&base.Delivery, p.DeliveryCost)
	setDecimal(&base.Insurance, p.InsuranceCost)
	setDecimal(&base.Customs, p.CustomsCost)
	setDecimal(&base.Handling, p.HandlingCost)
	return base
}

// ApplyPatch writes every supplied field of p onto r
func ApplyPatch(r *ShipmentRecord, p *ShipmentPatch) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.CarrierID != nil {
		id := *p.CarrierID
		r.CarrierID = &id
	}
	if p.AgentID != nil {
		id := *p.AgentID
		r.AgentID = &id
	}
	if p.ManagerID != nil {
		id := *p.ManagerID
		r.ManagerID = &id
	}
	if p.ShippingMethod != nil {
		r.ShippingMethod = p.ShippingMethod.Normalize()
		if r.Mode != nil && r.Mode.Method() != r.ShippingMethod {
			r.Mode = nil
		}
	}
	if p.Mode != nil {
		r.Mode = MergeMode(r.Mode, p.Mode)
	}
	if p.CargoBoxes != nil {
		r.CargoBoxes = append([]CargoBox{}, p.CargoBoxes...)
	}
	setDecimal(&r.TotalCBM, p.TotalCBM)
	setDecimal(&r.PricePerCBM, p.PricePerCBM)
	r.Costs = p.MergeCosts(r.Costs)
	setDecimal(&r.TotalShippingCost, p.TotalShippingCost)
	if p.Currency != nil {
		r.Currency = *p.Currency
	}
	if p.TrackingNumber != nil {
		r.TrackingNumber = *p.TrackingNumber
	}
	setTime(&r.EstimatedDelivery, p.EstimatedDelivery)
	setTime(&r.ActualDelivery, p.ActualDelivery)
	setTime(&r.ProductsUpdatedAt, p.ProductsUpdatedAt)
	setTime(&r.InventoryReceivedAt, p.InventoryReceivedAt)
	if p.RequireSignature != nil {
		r.RequireSignature = *p.RequireSignature
	}
	if p.EnableInsurance != nil {
		r.EnableInsurance = *p.EnableInsurance
	}
	setDecimal(&r.InsuranceValue, p.InsuranceValue)
	if p.UpdatedBy != nil {
		id := *p.UpdatedBy
		r.UpdatedBy = &id
	}
}

// MergeMode overlays the supplied fields of next onto current. When the two
// payloads are for different modes, next replaces current.
func MergeMode(current, next ModeDetails) ModeDetails {
	if next == nil {
		return cloneMode(current)
	}
	if current == nil || current.Method() != next.Method() {
		return cloneMode(next)
	}
	switch n := next.(type) {
	case *SeaDetails:
		c := *current.(*SeaDetails)
		setString(&c.PortOfLoading, n.PortOfLoading)
		setString(&c.PortOfDischarge, n.PortOfDischarge)
		setString(&c.VesselName, n.VesselName)
		setString(&c.ContainerNumber, n.ContainerNumber)
		setString(&c.BillOfLading, n.BillOfLading)
		setTime(&c.DepartureDate, n.DepartureDate)
		setTime(&c.ArrivalDate, n.ArrivalDate)
		return &c
	case *AirDetails:
		c := *current.(*AirDetails)
		setString(&c.FlightNumber, n.FlightNumber)
		setString(&c.DepartureAirport, n.DepartureAirport)
		setString(&c.ArrivalAirport, n.ArrivalAirport)
		setTime(&c.DepartureTime, n.DepartureTime)
		setTime(&c.ArrivalTime, n.ArrivalTime)
		setString(&c.CargoType, n.CargoType)
		setString(&c.ItemDescription, n.ItemDescription)
		if n.Quantity != nil {
			q := *n.Quantity
			c.Quantity = &q
		}
		if n.UnitPrice != nil {
			v := *n.UnitPrice
			c.UnitPrice = &v
		}
		if n.TotalCost != nil {
			v := *n.TotalCost
			c.TotalCost = &v
		}
		return &c
	case *GroundDetails:
		c := *current.(*GroundDetails)
		setString(&c.DepartureTerminal, n.DepartureTerminal)
		setString(&c.ArrivalTerminal, n.ArrivalTerminal)
		setString(&c.RouteNumber, n.RouteNumber)
		return &c
	}
	return cloneMode(next)
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setTime(dst **time.Time, v *time.Time) {
	if v != nil {
		t := *v
		*dst = &t
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
