package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

func TestDescribeStatus(t *testing.T) {
	eta := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		name   string
		update StatusUpdate
		want   string
	}{
		{"bare", StatusUpdate{Status: domain.ShipmentStatusConfirmed}, "Confirmed"},
		{"flight", StatusUpdate{
			Status: domain.ShipmentStatusInTransit,
			Air:    &domain.AirDetails{FlightNumber: "KQ310", CargoType: "general"},
		}, "In Transit (Flight: KQ310)"},
		{"route and eta", StatusUpdate{
			Status:            domain.ShipmentStatusInTransit,
			DepartureLocation: "Mombasa",
			ArrivalLocation:   "Kampala",
			EstimatedArrival:  &eta,
		}, "In Transit (From: Mombasa, To: Kampala, ETA: 2026-03-04 15:30 UTC)"},
		{"delivery", StatusUpdate{
			Status:         domain.ShipmentStatusReceived,
			DeliveryMethod: "courier",
			RecipientName:  "Store 12",
			RecipientPhone: "+255700000000",
		}, "Received (Delivery Method: courier, Recipient: Store 12)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := describeStatus(&tc.update); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestComposeNotes(t *testing.T) {
	t.Run("free text only", func(t *testing.T) {
		u := &StatusUpdate{Status: domain.ShipmentStatusConfirmed, Notes: "  called supplier  "}
		if got := composeNotes(u); got != "called supplier" {
			t.Errorf("expected the free text alone, got %q", got)
		}
	})

	t.Run("structured lines then free text", func(t *testing.T) {
		u := &StatusUpdate{
			Status:        domain.ShipmentStatusInTransit,
			VehicleNumber: "T 123 ABC",
			DriverPhone:   "+255711111111",
			Ground:        &domain.GroundDetails{RouteNumber: "R7"},
			FreightCost:   ptr(decimal.RequireFromString("80")),
			Notes:         "sealed",
		}
		want := "Vehicle: T 123 ABC\nDriver Phone: +255711111111\nRoute: R7\nFreight Cost: 80.00\n\nAdditional Notes:\nsealed"
		if got := composeNotes(u); got != want {
			t.Errorf("expected\n%q\ngot\n%q", want, got)
		}
	})

	t.Run("structured lines without free text", func(t *testing.T) {
		u := &StatusUpdate{Status: domain.ShipmentStatusException, ExceptionType: "damaged"}
		if got := composeNotes(u); got != "Exception: damaged" {
			t.Errorf("unexpected notes %q", got)
		}
	})

	t.Run("nothing supplied", func(t *testing.T) {
		if got := composeNotes(&StatusUpdate{Status: domain.ShipmentStatusArrived}); got != "" {
			t.Errorf("expected empty notes, got %q", got)
		}
	})
}
