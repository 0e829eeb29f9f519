package memory

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

func newShipment(poID uuid.UUID, carrierID *uuid.UUID, tracking string) *domain.ShipmentRecord {
	return &domain.ShipmentRecord{
		PurchaseOrderID: poID,
		CarrierID:       carrierID,
		Status:          domain.ShipmentStatusPending,
		TrackingNumber:  tracking,
	}
}

func TestShipmentRepository_Uniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	carrier := domain.PartyRef{ID: uuid.New(), Name: "DHL"}
	store.AddDirectoryEntry(domain.DirectoryCarrier, carrier)
	repos := NewRepositories(store)

	po := uuid.New()
	if err := repos.Shipment.Create(ctx, newShipment(po, &carrier.ID, "ABC123")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err := repos.Shipment.Create(ctx, newShipment(uuid.New(), &carrier.ID, "ABC123"))
	var dup *errors.ErrDuplicateTrackingNumber
	if !stderrors.As(err, &dup) {
		t.Errorf("expected ErrDuplicateTrackingNumber, got %v", err)
	}

	err = repos.Shipment.Create(ctx, newShipment(po, &carrier.ID, "XYZ"))
	var conflict *errors.ErrConflict
	if !stderrors.As(err, &conflict) {
		t.Errorf("expected ErrConflict for a second shipment on the same order, got %v", err)
	}

	// same number with no carrier is a different scope
	if err := repos.Shipment.Create(ctx, newShipment(uuid.New(), nil, "ABC123")); err != nil {
		t.Errorf("expected no collision across carrier scopes, got %v", err)
	}
}

func TestShipmentRepository_OrderConflictBeforeTrackingClash(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(NewStore())

	// enough records that map order would surface the clash first some of the time
	var po uuid.UUID
	for i := 0; i < 20; i++ {
		rec := newShipment(uuid.New(), nil, uuid.NewString())
		if i == 10 {
			po = rec.PurchaseOrderID
		}
		if err := repos.Shipment.Create(ctx, rec); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repos.Shipment.Create(ctx, newShipment(uuid.New(), nil, "OTHER")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		// same order as record 10 and the tracking number of the record above
		err := repos.Shipment.Create(ctx, newShipment(po, nil, "OTHER"))
		var conflict *errors.ErrConflict
		if !stderrors.As(err, &conflict) {
			t.Fatalf("attempt %d: expected ErrConflict, got %v", i, err)
		}
	}
}

func TestShipmentRepository_InvalidReference(t *testing.T) {
	repos := NewRepositories(NewStore())
	missing := uuid.New()

	err := repos.Shipment.Create(context.Background(), newShipment(uuid.New(), &missing, "T1"))
	var ref *errors.ErrInvalidReference
	if !stderrors.As(err, &ref) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if ref.Field != "carrier_id" {
		t.Errorf("expected carrier_id, got %q", ref.Field)
	}
}

func TestShipmentRepository_ConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(NewStore())
	rec := newShipment(uuid.New(), nil, "T1")
	if err := repos.Shipment.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	pending := domain.ShipmentStatusPending
	confirmed := domain.ShipmentStatusConfirmed
	updated, err := repos.Shipment.Update(ctx, rec.ID, &domain.ShipmentPatch{ExpectedStatus: &pending, Status: &confirmed})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != confirmed {
		t.Errorf("expected confirmed, got %q", updated.Status)
	}

	preparing := domain.ShipmentStatusPreparing
	_, err = repos.Shipment.Update(ctx, rec.ID, &domain.ShipmentPatch{ExpectedStatus: &pending, Status: &preparing})
	var stale *errors.ErrStaleStatus
	if !stderrors.As(err, &stale) {
		t.Fatalf("expected ErrStaleStatus, got %v", err)
	}

	_, err = repos.Shipment.Update(ctx, uuid.New(), &domain.ShipmentPatch{Status: &preparing})
	var notFound *errors.ErrNotFound
	if !stderrors.As(err, &notFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(NewStore())
	rec := newShipment(uuid.New(), nil, "T1")
	if err := repos.Shipment.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	boom := stderrors.New("event insert failed")
	err := repos.Tx.RunInTx(ctx, func(ctx context.Context) error {
		confirmed := domain.ShipmentStatusConfirmed
		if _, err := repos.Shipment.Update(ctx, rec.ID, &domain.ShipmentPatch{Status: &confirmed}); err != nil {
			return err
		}
		return boom
	})
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected the callback error, got %v", err)
	}

	got, err := repos.Shipment.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.ShipmentStatusPending {
		t.Errorf("expected rollback to pending, got %q", got.Status)
	}
}

func TestShipmentEventRepository_OrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories(NewStore())
	rec := newShipment(uuid.New(), nil, "T1")
	if err := repos.Shipment.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, s := range []domain.ShipmentStatus{domain.ShipmentStatusPending, domain.ShipmentStatusConfirmed} {
		if err := repos.ShipmentEvent.Append(ctx, &domain.ShipmentEvent{ShipmentID: rec.ID, Status: s}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	events, err := repos.ShipmentEvent.ListByShipment(ctx, rec.ID)
	if err != nil {
		t.Fatalf("ListByShipment failed: %v", err)
	}
	if len(events) != 2 || events[0].Status != domain.ShipmentStatusPending || events[1].Status != domain.ShipmentStatusConfirmed {
		t.Fatalf("unexpected history %+v", events)
	}

	// callers get copies
	events[0].Notes = "edited"
	again, _ := repos.ShipmentEvent.ListByShipment(ctx, rec.ID)
	if again[0].Notes != "" {
		t.Error("stored event was modified through a returned copy")
	}

	err = repos.ShipmentEvent.Append(ctx, &domain.ShipmentEvent{ShipmentID: uuid.New(), Status: domain.ShipmentStatusPending})
	var ref *errors.ErrInvalidReference
	if !stderrors.As(err, &ref) {
		t.Errorf("expected ErrInvalidReference for an unknown shipment, got %v", err)
	}
}
