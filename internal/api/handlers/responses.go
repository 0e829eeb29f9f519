package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

// ShipmentResponse represents a shipment record
type ShipmentResponse struct {
	ID              string           `json:"id"`
	PurchaseOrderID string           `json:"purchase_order_id"`
	Carrier         *domain.PartyRef `json:"carrier,omitempty"`
	Agent           *domain.PartyRef `json:"agent,omitempty"`
	Manager         *domain.PartyRef `json:"manager,omitempty"`

	ShippingMethod domain.ShippingMethod `json:"shipping_method"`
	Sea            *domain.SeaDetails    `json:"sea,omitempty"`
	Air            *domain.AirDetails    `json:"air,omitempty"`
	Ground         *domain.GroundDetails `json:"ground,omitempty"`

	CargoBoxes        []domain.CargoBox `json:"cargo_boxes"`
	TotalCBM          decimal.Decimal   `json:"total_cbm"`
	PricePerCBM       decimal.Decimal   `json:"price_per_cbm"`
	FreightCost       decimal.Decimal   `json:"freight_cost"`
	DeliveryCost      decimal.Decimal   `json:"delivery_cost"`
	InsuranceCost     decimal.Decimal   `json:"insurance_cost"`
	CustomsCost       decimal.Decimal   `json:"customs_cost"`
	HandlingCost      decimal.Decimal   `json:"handling_cost"`
	TotalShippingCost decimal.Decimal   `json:"total_shipping_cost"`
	Currency          string            `json:"currency"`

	Status              domain.ShipmentStatus `json:"status"`
	TrackingNumber      string                `json:"tracking_number"`
	EstimatedDelivery   *time.Time            `json:"estimated_delivery,omitempty"`
	ActualDelivery      *time.Time            `json:"actual_delivery,omitempty"`
	ProductsUpdatedAt   *time.Time            `json:"products_updated_at,omitempty"`
	InventoryReceivedAt *time.Time            `json:"inventory_received_at,omitempty"`

	RequireSignature bool            `json:"require_signature"`
	EnableInsurance  bool            `json:"enable_insurance"`
	InsuranceValue   decimal.Decimal `json:"insurance_value"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// EventResponse represents one shipment event
type EventResponse struct {
	ID          string                `json:"id"`
	Status      domain.ShipmentStatus `json:"status"`
	Description string                `json:"description"`
	Location    string                `json:"location,omitempty"`
	Notes       string                `json:"notes,omitempty"`
	CreatedBy   string                `json:"created_by,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

// CargoItemResponse represents one cargo line
type CargoItemResponse struct {
	ID                  string  `json:"id"`
	ProductID           string  `json:"product_id"`
	ProductName         string  `json:"product_name,omitempty"`
	SKU                 string  `json:"sku,omitempty"`
	VariantID           *string `json:"variant_id,omitempty"`
	VariantName         string  `json:"variant_name,omitempty"`
	PurchaseOrderItemID *string `json:"purchase_order_item_id,omitempty"`
	OrderedQuantity     *int    `json:"ordered_quantity,omitempty"`
	Quantity            int     `json:"quantity"`
	CreatedAt           string  `json:"created_at"`
}

func toShipmentResponse(rec *domain.ShipmentRecord) ShipmentResponse {
	resp := ShipmentResponse{
		ID:                  rec.ID.String(),
		PurchaseOrderID:     rec.PurchaseOrderID.String(),
		Carrier:             rec.Carrier,
		Agent:               rec.Agent,
		Manager:             rec.Manager,
		ShippingMethod:      rec.ShippingMethod,
		CargoBoxes:          rec.CargoBoxes,
		TotalCBM:            rec.TotalCBM,
		PricePerCBM:         rec.PricePerCBM,
		FreightCost:         rec.Costs.Freight,
		DeliveryCost:        rec.Costs.Delivery,
		InsuranceCost:       rec.Costs.Insurance,
		CustomsCost:         rec.Costs.Customs,
		HandlingCost:        rec.Costs.Handling,
		TotalShippingCost:   rec.TotalShippingCost,
		Currency:            rec.Currency,
		Status:              rec.Status,
		TrackingNumber:      rec.TrackingNumber,
		EstimatedDelivery:   rec.EstimatedDelivery,
		ActualDelivery:      rec.ActualDelivery,
		ProductsUpdatedAt:   rec.ProductsUpdatedAt,
		InventoryReceivedAt: rec.InventoryReceivedAt,
		RequireSignature:    rec.RequireSignature,
		EnableInsurance:     rec.EnableInsurance,
		InsuranceValue:      rec.InsuranceValue,
		CreatedAt:           rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           rec.UpdatedAt.Format(time.RFC3339),
	}
	if resp.CargoBoxes == nil {
		resp.CargoBoxes = []domain.CargoBox{}
	}
	switch m := rec.Mode.(type) {
	case *domain.SeaDetails:
		resp.Sea = m
	case *domain.AirDetails:
		resp.Air = m
	case *domain.GroundDetails:
		resp.Ground = m
	}
	return resp
}

func toShipmentResponses(recs []*domain.ShipmentRecord) []ShipmentResponse {
	out := make([]ShipmentResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toShipmentResponse(rec))
	}
	return out
}

func toEventResponse(ev *domain.ShipmentEvent) EventResponse {
	resp := EventResponse{
		ID:          ev.ID.String(),
		Status:      ev.Status,
		Description: ev.Description,
		Location:    ev.Location,
		Notes:       ev.Notes,
		Timestamp:   ev.Timestamp.Format(time.RFC3339),
	}
	if ev.CreatedBy != nil {
		resp.CreatedBy = ev.CreatedBy.String()
	}
	return resp
}

func toEventResponses(evs []*domain.ShipmentEvent) []EventResponse {
	out := make([]EventResponse, 0, len(evs))
	for _, ev := range evs {
		out = append(out, toEventResponse(ev))
	}
	return out
}

func toCargoResponses(items []*domain.CargoItemDetail) []CargoItemResponse {
	out := make([]CargoItemResponse, 0, len(items))
	for _, it := range items {
		resp := CargoItemResponse{
			ID:              it.ID.String(),
			ProductID:       it.ProductID.String(),
			ProductName:     it.ProductName,
			SKU:             it.SKU,
			VariantName:     it.VariantName,
			OrderedQuantity: it.OrderedQuantity,
			Quantity:        it.Quantity,
			CreatedAt:       it.CreatedAt.Format(time.RFC3339),
		}
		if it.VariantID != nil {
			s := it.VariantID.String()
			resp.VariantID = &s
		}
		if it.PurchaseOrderItemID != nil {
			s := it.PurchaseOrderItemID.String()
			resp.PurchaseOrderItemID = &s
		}
		out = append(out, resp)
	}
	return out
}
