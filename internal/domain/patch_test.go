package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestApplyPatch_OnlySuppliedFields(t *testing.T) {
	carrier := uuid.New()
	rec := &ShipmentRecord{
		Status:         ShipmentStatusPending,
		CarrierID:      &carrier,
		TrackingNumber: "DHL-1",
		ShippingMethod: ShippingMethodSea,
		Mode:           &SeaDetails{VesselName: "MSC Aurora", PortOfLoading: "Shanghai"},
		Currency:       "USD",
	}

	status := ShipmentStatusConfirmed
	freight := decimal.NewFromInt(500)
	ApplyPatch(rec, &ShipmentPatch{
		Status:      &status,
		Mode:        &SeaDetails{ContainerNumber: "MSCU1234567"},
		FreightCost: &freight,
	})

	if rec.Status != ShipmentStatusConfirmed {
		t.Errorf("expected confirmed, got %q", rec.Status)
	}
	if rec.TrackingNumber != "DHL-1" || rec.Currency != "USD" || rec.CarrierID == nil || *rec.CarrierID != carrier {
		t.Error("fields absent from the patch must be left untouched")
	}
	sea, ok := rec.Mode.(*SeaDetails)
	if !ok {
		t.Fatalf("expected sea details, got %T", rec.Mode)
	}
	if sea.VesselName != "MSC Aurora" || sea.PortOfLoading != "Shanghai" || sea.ContainerNumber != "MSCU1234567" {
		t.Errorf("sea details not merged: %+v", sea)
	}
	if !rec.Costs.Freight.Equal(freight) {
		t.Errorf("expected freight %s, got %s", freight, rec.Costs.Freight)
	}
}

func TestMergeMode_SwitchingModeReplaces(t *testing.T) {
	dep := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	merged := MergeMode(&SeaDetails{VesselName: "X"}, &AirDetails{FlightNumber: "EK201", DepartureTime: &dep})

	air, ok := merged.(*AirDetails)
	if !ok {
		t.Fatalf("expected air details, got %T", merged)
	}
	if air.FlightNumber != "EK201" || air.DepartureTime == nil || !air.DepartureTime.Equal(dep) {
		t.Errorf("unexpected air details %+v", air)
	}
}

func TestShipmentRecordClone(t *testing.T) {
	rec := &ShipmentRecord{
		CargoBoxes: []CargoBox{{Quantity: 1}},
		Mode:       &GroundDetails{RouteNumber: "R7"},
	}
	c := rec.Clone()
	c.CargoBoxes[0].Quantity = 9
	c.Mode.(*GroundDetails).RouteNumber = "R8"

	if rec.CargoBoxes[0].Quantity != 1 || rec.Mode.(*GroundDetails).RouteNumber != "R7" {
		t.Error("clone shares state with the original")
	}
}

func TestShipmentPatchIsEmpty(t *testing.T) {
	actor := uuid.New()
	if !(&ShipmentPatch{UpdatedBy: &actor}).IsEmpty() {
		t.Error("attribution alone is an empty patch")
	}
	if (&ShipmentPatch{CargoBoxes: []CargoBox{}}).IsEmpty() {
		t.Error("clearing cargo boxes is a change")
	}
}
