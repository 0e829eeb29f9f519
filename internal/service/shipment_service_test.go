package service

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/repository/memory"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

func TestCreate_NewShipment(t *testing.T) {
	f := newFixture(t)
	po := uuid.New()

	rec, created, err := f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: po,
		Location:        "Guangzhou",
		ShipmentFields: ShipmentFields{
			CarrierID:      &f.carrier.ID,
			ShippingMethod: ptr(domain.ShippingMethodGround),
			TrackingNumber: ptr("DHL-0001"),
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created {
		t.Error("expected created to be true")
	}
	if rec.Status != domain.ShipmentStatusPending {
		t.Errorf("expected pending, got %q", rec.Status)
	}
	if rec.ShippingMethod != domain.ShippingMethodStandard {
		t.Errorf("ground must be stored as standard, got %q", rec.ShippingMethod)
	}
	if rec.TrackingNumber != "DHL-0001" {
		t.Errorf("a free tracking number must be kept, got %q", rec.TrackingNumber)
	}
	if rec.Carrier == nil || rec.Carrier.Name != "DHL Express" {
		t.Errorf("expected the carrier to be joined, got %+v", rec.Carrier)
	}

	history := f.history(t, rec.ID)
	if len(history) != 1 || history[0].Status != domain.ShipmentStatusPending {
		t.Fatalf("expected one pending event, got %+v", history)
	}
	if history[0].Location != "Guangzhou" || history[0].Description != "Pending" {
		t.Errorf("unexpected initial event %+v", history[0])
	}

	msgs := f.publisher.messages()
	if len(msgs) != 1 || msgs[0].From != "" || msgs[0].To != domain.ShipmentStatusPending {
		t.Errorf("expected one creation message, got %+v", msgs)
	}
}

func TestCreate_GeneratesMissingTrackingNumber(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{CarrierID: &f.carrier.ID})
	if !strings.HasPrefix(rec.TrackingNumber, "DHL-") {
		t.Errorf("expected a DHL prefixed number, got %q", rec.TrackingNumber)
	}

	noCarrier := f.createShipment(t, ShipmentFields{})
	if !strings.HasPrefix(noCarrier.TrackingNumber, "SHP-") {
		t.Errorf("expected the SHP fallback prefix, got %q", noCarrier.TrackingNumber)
	}
}

func TestCreate_UpsertIsIdempotent(t *testing.T) {
	f := newFixture(t)
	req := CreateShipmentRequest{
		PurchaseOrderID: uuid.New(),
		ShipmentFields: ShipmentFields{
			CarrierID:      &f.carrier.ID,
			TrackingNumber: ptr("DHL-0001"),
		},
	}

	first, _, err := f.svc.Create(f.ctx, req)
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	second, created, err := f.svc.Create(f.ctx, CreateShipmentRequest{PurchaseOrderID: req.PurchaseOrderID})
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if created {
		t.Error("the second call must update, not insert")
	}
	if second.ID != first.ID {
		t.Error("expected the same shipment")
	}
	if second.TrackingNumber != "DHL-0001" {
		t.Errorf("tracking number must be preserved, got %q", second.TrackingNumber)
	}
	if n := len(f.history(t, first.ID)); n != 1 {
		t.Errorf("no status change means no new event, got %d events", n)
	}

	// repeating the exact request is also a no-op
	again, _, err := f.svc.Create(f.ctx, req)
	if err != nil {
		t.Fatalf("repeated Create failed: %v", err)
	}
	if again.TrackingNumber != "DHL-0001" {
		t.Errorf("expected DHL-0001, got %q", again.TrackingNumber)
	}
}

func TestCreate_UpsertRoutesStatusThroughOrchestrator(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{})

	updated, created, err := f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: rec.PurchaseOrderID,
		Status:          domain.ShipmentStatusConfirmed,
		ShipmentFields:  ShipmentFields{FreightCost: ptr(decimal.NewFromInt(300))},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created || updated.Status != domain.ShipmentStatusConfirmed {
		t.Fatalf("expected an update to confirmed, got created=%v status=%q", created, updated.Status)
	}
	if !updated.TotalShippingCost.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected total 300, got %s", updated.TotalShippingCost)
	}
	if n := len(f.history(t, rec.ID)); n != 2 {
		t.Errorf("expected the status change to be audited, got %d events", n)
	}

	// and the workflow rules still apply
	_, _, err = f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: rec.PurchaseOrderID,
		Status:          domain.ShipmentStatusPending,
	})
	var inv *errors.ErrInvalidStateTransition
	if !stderrors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCreate_RejectedUpsertWritesNothing(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{})

	tests := []struct {
		name  string
		req   CreateShipmentRequest
		field string
	}{
		{"negative cost", CreateShipmentRequest{
			PurchaseOrderID: rec.PurchaseOrderID,
			Status:          domain.ShipmentStatusConfirmed,
			ShipmentFields:  ShipmentFields{FreightCost: ptr(decimal.NewFromInt(-5))},
		}, "freight_cost"},
		{"mode of another method", CreateShipmentRequest{
			PurchaseOrderID: rec.PurchaseOrderID,
			Status:          domain.ShipmentStatusConfirmed,
			ShipmentFields:  ShipmentFields{Air: &domain.AirDetails{FlightNumber: "KQ100"}},
		}, "air"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Create(f.ctx, tc.req)
			var verr *errors.ErrValidation
			if !stderrors.As(err, &verr) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Errorf("expected %s to be flagged, got %v", tc.field, verr.Fields)
			}

			got, err := f.svc.Get(context.Background(), rec.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Status != domain.ShipmentStatusPending {
				t.Errorf("status moved to %q on a rejected request", got.Status)
			}
			if n := len(f.history(t, rec.ID)); n != 1 {
				t.Errorf("expected no new event, got %d events", n)
			}
		})
	}
	if n := len(f.publisher.messages()); n != 1 {
		t.Errorf("expected only the creation to be published, got %d messages", n)
	}
}

func TestCreate_NormalizesStatus(t *testing.T) {
	f := newFixture(t)

	rec, created, err := f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: uuid.New(),
		Status:          " Confirmed ",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created || rec.Status != domain.ShipmentStatusConfirmed {
		t.Fatalf("expected a new confirmed shipment, got created=%v status=%q", created, rec.Status)
	}

	updated, _, err := f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: rec.PurchaseOrderID,
		Status:          "PREPARING",
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if updated.Status != domain.ShipmentStatusPreparing {
		t.Errorf("expected preparing, got %q", updated.Status)
	}
}

func TestCreate_TrackingNumberCollisionRegenerates(t *testing.T) {
	f := newFixture(t)
	f.createShipment(t, ShipmentFields{CarrierID: &f.carrier.ID, TrackingNumber: ptr("DHL-0001")})
	f.tracking.numbers = []string{"DHL-0002"}

	rec := f.createShipment(t, ShipmentFields{CarrierID: &f.carrier.ID, TrackingNumber: ptr("DHL-0001")})
	if rec.TrackingNumber != "DHL-0002" {
		t.Errorf("expected a regenerated number, got %q", rec.TrackingNumber)
	}

	// the same number under another carrier does not collide
	other := domain.PartyRef{ID: uuid.New(), Name: "Maersk"}
	f.store.AddDirectoryEntry(domain.DirectoryCarrier, other)
	rec = f.createShipment(t, ShipmentFields{CarrierID: &other.ID, TrackingNumber: ptr("DHL-0001")})
	if rec.TrackingNumber != "DHL-0001" {
		t.Errorf("expected DHL-0001 under another carrier, got %q", rec.TrackingNumber)
	}
}

func TestCreate_TrackingRetriesExhausted(t *testing.T) {
	f := newFixture(t)
	f.createShipment(t, ShipmentFields{CarrierID: &f.carrier.ID, TrackingNumber: ptr("TAKEN")})
	f.tracking.numbers = []string{"TAKEN"}

	po := uuid.New()
	_, _, err := f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: po,
		ShipmentFields:  ShipmentFields{CarrierID: &f.carrier.ID},
	})
	var dup *errors.ErrDuplicateTrackingNumber
	if !stderrors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateTrackingNumber, got %v", err)
	}
	if dup.Attempts != maxTrackingAttempts {
		t.Errorf("expected %d attempts, got %d", maxTrackingAttempts, dup.Attempts)
	}
	if rec, _ := f.svc.GetByPurchaseOrder(f.ctx, po); rec != nil {
		t.Error("nothing may be stored after exhausting retries")
	}
}

func TestCreate_InvalidCarrier(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()

	_, _, err := f.svc.Create(f.ctx, CreateShipmentRequest{
		PurchaseOrderID: uuid.New(),
		ShipmentFields:  ShipmentFields{CarrierID: &missing},
	})
	var ref *errors.ErrInvalidReference
	if !stderrors.As(err, &ref) || ref.Field != "carrier_id" {
		t.Fatalf("expected ErrInvalidReference on carrier_id, got %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		req   CreateShipmentRequest
		field string
	}{
		{"missing purchase order", CreateShipmentRequest{}, "purchase_order_id"},
		{"bad method", CreateShipmentRequest{
			PurchaseOrderID: uuid.New(),
			ShipmentFields:  ShipmentFields{ShippingMethod: ptr(domain.ShippingMethod("rail"))},
		}, "shipping_method"},
		{"negative cost", CreateShipmentRequest{
			PurchaseOrderID: uuid.New(),
			ShipmentFields:  ShipmentFields{FreightCost: ptr(decimal.NewFromInt(-1))},
		}, "freight_cost"},
		{"two modes", CreateShipmentRequest{
			PurchaseOrderID: uuid.New(),
			ShipmentFields:  ShipmentFields{Sea: &domain.SeaDetails{}, Air: &domain.AirDetails{}},
		}, "mode"},
		{"empty box", CreateShipmentRequest{
			PurchaseOrderID: uuid.New(),
			ShipmentFields:  ShipmentFields{CargoBoxes: []domain.CargoBox{{Quantity: 1}}},
		}, "cargo_boxes"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Create(f.ctx, tc.req)
			var verr *errors.ErrValidation
			if !stderrors.As(err, &verr) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Errorf("expected %s to be flagged, got %v", tc.field, verr.Fields)
			}
		})
	}
}

func TestCreate_RequiresActor(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.Create(context.Background(), CreateShipmentRequest{PurchaseOrderID: uuid.New()})
	var authErr *errors.ErrAuthenticationRequired
	if !stderrors.As(err, &authErr) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
}

func TestUpdate_RecomputesTotals(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{FreightCost: ptr(decimal.NewFromInt(100))})

	one := decimal.NewFromInt(1)
	updated, err := f.svc.Update(f.ctx, rec.ID, UpdateShipmentRequest{ShipmentFields: ShipmentFields{
		CargoBoxes:   []domain.CargoBox{{Length: one, Width: one, Height: one, Quantity: 4}},
		CustomsCost:  ptr(decimal.NewFromInt(25)),
		HandlingCost: ptr(decimal.NewFromInt(5)),
	}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.TotalCBM.Equal(decimal.RequireFromString("0.000004")) {
		t.Errorf("expected 0.000004 CBM, got %s", updated.TotalCBM)
	}
	if !updated.TotalShippingCost.Equal(decimal.NewFromInt(130)) {
		t.Errorf("earlier components must count toward the total, got %s", updated.TotalShippingCost)
	}

	// resupplying the same boxes gives the same volume
	again, err := f.svc.Update(f.ctx, rec.ID, UpdateShipmentRequest{ShipmentFields: ShipmentFields{CargoBoxes: updated.CargoBoxes}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !again.TotalCBM.Equal(updated.TotalCBM) {
		t.Errorf("expected %s, got %s", updated.TotalCBM, again.TotalCBM)
	}
}

func TestUpdate_OnlySuppliedFields(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{
		CarrierID:        &f.carrier.ID,
		RequireSignature: ptr(true),
		Currency:         ptr("EUR"),
	})

	updated, err := f.svc.Update(f.ctx, rec.ID, UpdateShipmentRequest{ShipmentFields: ShipmentFields{
		EnableInsurance: ptr(true),
		InsuranceValue:  ptr(decimal.NewFromInt(5000)),
	}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.RequireSignature || updated.Currency != "EUR" || updated.CarrierID == nil {
		t.Error("fields not in the request must be left alone")
	}
	if !updated.EnableInsurance || !updated.InsuranceValue.Equal(decimal.NewFromInt(5000)) {
		t.Error("supplied fields must be written")
	}
	if updated.TrackingNumber != rec.TrackingNumber {
		t.Error("tracking number must not change")
	}
}

func TestUpdate_RejectsStatusChange(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{})

	_, err := f.svc.Update(f.ctx, rec.ID, UpdateShipmentRequest{Status: ptr(domain.ShipmentStatusConfirmed)})
	var verr *errors.ErrValidation
	if !stderrors.As(err, &verr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	got, _ := f.svc.Get(f.ctx, rec.ID)
	if got.Status != domain.ShipmentStatusPending {
		t.Error("status must not change")
	}
}

func TestUpdate_SwitchingMethodDropsOtherModeDetails(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{
		ShippingMethod: ptr(domain.ShippingMethodAir),
		Air:            &domain.AirDetails{FlightNumber: "KQ100"},
	})

	updated, err := f.svc.Update(f.ctx, rec.ID, UpdateShipmentRequest{ShipmentFields: ShipmentFields{
		ShippingMethod: ptr(domain.ShippingMethodSea),
		Sea:            &domain.SeaDetails{VesselName: "MSC Aurora"},
	}})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if _, ok := updated.Mode.(*domain.SeaDetails); !ok {
		t.Errorf("expected sea details, got %#v", updated.Mode)
	}
}

func TestListByProduct(t *testing.T) {
	f := newFixture(t)
	productID := uuid.New()
	withProduct := f.createShipment(t, ShipmentFields{})
	f.createShipment(t, ShipmentFields{})

	f.store.AddPurchaseOrderLine(memory.PurchaseOrderLine{
		ID:              uuid.New(),
		PurchaseOrderID: withProduct.PurchaseOrderID,
		ProductID:       productID,
		Quantity:        10,
	})

	recs, err := f.svc.ListByProduct(f.ctx, productID)
	if err != nil {
		t.Fatalf("ListByProduct failed: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != withProduct.ID {
		t.Fatalf("expected only the shipment carrying the product, got %d", len(recs))
	}

	none, err := f.svc.ListByProduct(f.ctx, uuid.New())
	if err != nil || len(none) != 0 {
		t.Errorf("expected an empty list, got %v, %v", none, err)
	}
}

func TestList_FiltersAndOrder(t *testing.T) {
	f := newFixture(t)
	older := f.createShipment(t, ShipmentFields{})
	newer := f.createShipment(t, ShipmentFields{})
	f.advance(t, older.ID, StatusUpdate{Status: domain.ShipmentStatusConfirmed})

	all, err := f.svc.List(f.ctx, domain.ShipmentFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 || all[0].ID != newer.ID {
		t.Fatal("expected newest first")
	}

	confirmed, err := f.svc.List(f.ctx, domain.ShipmentFilter{Status: domain.ShipmentStatusConfirmed})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(confirmed) != 1 || confirmed[0].ID != older.ID {
		t.Error("expected only the confirmed shipment")
	}

	_, err = f.svc.List(f.ctx, domain.ShipmentFilter{Status: "lost"})
	var verr *errors.ErrValidation
	if !stderrors.As(err, &verr) {
		t.Errorf("expected ErrValidation for an unknown status filter, got %v", err)
	}
}

func TestGetDetail(t *testing.T) {
	f := newFixture(t)
	rec := f.createShipment(t, ShipmentFields{})
	f.advance(t, rec.ID, StatusUpdate{Status: domain.ShipmentStatusConfirmed})

	d, err := f.svc.GetDetail(f.ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	if d.Record.ID != rec.ID || len(d.Events) != 2 || len(d.Cargo) != 0 {
		t.Errorf("unexpected detail %+v", d)
	}
	if len(d.NextStatuses) == 0 || d.NextStatuses[0] != domain.ShipmentStatusPreparing {
		t.Errorf("expected preparing next, got %v", d.NextStatuses)
	}

	_, err = f.svc.GetDetail(f.ctx, uuid.New())
	var notFound *errors.ErrNotFound
	if !stderrors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetByPurchaseOrder_MissingIsNotAnError(t *testing.T) {
	f := newFixture(t)
	rec, err := f.svc.GetByPurchaseOrder(f.ctx, uuid.New())
	if err != nil || rec != nil {
		t.Errorf("expected nil, nil, got %v, %v", rec, err)
	}
}
