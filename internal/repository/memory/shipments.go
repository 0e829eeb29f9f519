package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

type shipmentRepository struct {
	s *Store
}

func (r *shipmentRepository) Create(ctx context.Context, rec *domain.ShipmentRecord) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}

	now := time.Now()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if rec.ShippingMethod == "" {
		rec.ShippingMethod = domain.ShippingMethodStandard
	}
	if rec.Currency == "" {
		rec.Currency = "USD"
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.checkReferences(rec.CarrierID, rec.AgentID, rec.ManagerID); err != nil {
		return err
	}
	// the purchase order conflict wins over a tracking number clash
	for _, existing := range r.s.shipments {
		if existing.PurchaseOrderID == rec.PurchaseOrderID {
			return &errors.ErrConflict{Message: "purchase order already has a shipment"}
		}
	}
	for _, existing := range r.s.shipments {
		if sameCarrier(existing.CarrierID, rec.CarrierID) && existing.TrackingNumber == rec.TrackingNumber {
			return &errors.ErrDuplicateTrackingNumber{TrackingNumber: rec.TrackingNumber}
		}
	}

	stored := rec.Clone()
	stored.ShippingMethod = stored.ShippingMethod.Normalize()
	stored.Carrier, stored.Agent, stored.Manager = nil, nil, nil
	r.s.shipments[rec.ID] = stored
	r.s.nextSeq++
	r.s.seq[rec.ID] = r.s.nextSeq
	return nil
}

func (r *shipmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipmentRecord, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rec, ok := r.s.shipments[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "shipment", ID: id.String()}
	}
	return r.s.joined(rec), nil
}

func (r *shipmentRepository) GetByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) (*domain.ShipmentRecord, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.shipments {
		if rec.PurchaseOrderID == purchaseOrderID {
			return r.s.joined(rec), nil
		}
	}
	return nil, nil
}

func (r *shipmentRepository) Update(ctx context.Context, id uuid.UUID, patch *domain.ShipmentPatch) (*domain.ShipmentRecord, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec, ok := r.s.shipments[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "shipment", ID: id.String()}
	}
	if patch.ExpectedStatus != nil && rec.Status != *patch.ExpectedStatus {
		return nil, &errors.ErrStaleStatus{Expected: *patch.ExpectedStatus}
	}
	if err := r.s.checkReferences(patch.CarrierID, patch.AgentID, patch.ManagerID); err != nil {
		return nil, err
	}

	updated := rec.Clone()
	domain.ApplyPatch(updated, patch)
	updated.UpdatedAt = time.Now()

	if patch.TrackingNumber != nil || patch.CarrierID != nil {
		for otherID, other := range r.s.shipments {
			if otherID != id && sameCarrier(other.CarrierID, updated.CarrierID) && other.TrackingNumber == updated.TrackingNumber {
				return nil, &errors.ErrDuplicateTrackingNumber{TrackingNumber: updated.TrackingNumber}
			}
		}
	}

	r.s.shipments[id] = updated
	return r.s.joined(updated), nil
}

func (r *shipmentRepository) TrackingNumberExists(ctx context.Context, carrierID *uuid.UUID, trackingNumber string) (bool, error) {
	if err := checkCtx(ctx); err != nil {
		return false, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rec := range r.s.shipments {
		if sameCarrier(rec.CarrierID, carrierID) && rec.TrackingNumber == trackingNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *shipmentRepository) List(ctx context.Context, filter domain.ShipmentFilter) ([]*domain.ShipmentRecord, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*domain.ShipmentRecord
	for _, rec := range r.s.shipments {
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		if filter.CarrierID != nil && !sameCarrier(rec.CarrierID, filter.CarrierID) {
			continue
		}
		if filter.AgentID != nil && !sameCarrier(rec.AgentID, filter.AgentID) {
			continue
		}
		if filter.CreatedFrom != nil && rec.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && rec.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		result = append(result, rec)
	}
	r.s.sortNewestFirst(result)

	// Apply pagination
	start := filter.Offset
	if start > len(result) {
		return nil, nil
	}
	end := len(result)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}

	out := make([]*domain.ShipmentRecord, 0, end-start)
	for _, rec := range result[start:end] {
		out = append(out, r.s.joined(rec))
	}
	return out, nil
}

func (r *shipmentRepository) ListByPurchaseOrderIDs(ctx context.Context, purchaseOrderIDs []uuid.UUID) ([]*domain.ShipmentRecord, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	wanted := make(map[uuid.UUID]bool, len(purchaseOrderIDs))
	for _, id := range purchaseOrderIDs {
		wanted[id] = true
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var result []*domain.ShipmentRecord
	for _, rec := range r.s.shipments {
		if wanted[rec.PurchaseOrderID] {
			result = append(result, rec)
		}
	}
	r.s.sortNewestFirst(result)

	out := make([]*domain.ShipmentRecord, len(result))
	for i, rec := range result {
		out[i] = r.s.joined(rec)
	}
	return out, nil
}

// sortNewestFirst orders by creation time, newest first, with insertion
// order as tiebreak. Callers hold s.mu.
func (s *Store) sortNewestFirst(recs []*domain.ShipmentRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return s.seq[recs[i].ID] > s.seq[recs[j].ID]
	})
}

// joined returns a copy of rec with directory display fields filled in.
// Callers hold s.mu.
func (s *Store) joined(rec *domain.ShipmentRecord) *domain.ShipmentRecord {
	out := rec.Clone()
	out.Carrier = s.lookup(domain.DirectoryCarrier, rec.CarrierID)
	out.Agent = s.lookup(domain.DirectoryAgent, rec.AgentID)
	out.Manager = s.lookup(domain.DirectoryManager, rec.ManagerID)
	return out
}

func (s *Store) lookup(kind domain.DirectoryKind, id *uuid.UUID) *domain.PartyRef {
	if id == nil {
		return nil
	}
	ref, ok := s.directory[kind][*id]
	if !ok {
		return nil
	}
	return &ref
}

// checkReferences mirrors the foreign keys on shipment_records. Callers hold s.mu.
func (s *Store) checkReferences(carrierID, agentID, managerID *uuid.UUID) error {
	refs := []struct {
		kind  domain.DirectoryKind
		field string
		id    *uuid.UUID
	}{
		{domain.DirectoryCarrier, "carrier_id", carrierID},
		{domain.DirectoryAgent, "agent_id", agentID},
		{domain.DirectoryManager, "manager_id", managerID},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		if _, ok := s.directory[ref.kind][*ref.id]; !ok {
			return &errors.ErrInvalidReference{Field: ref.field}
		}
	}
	return nil
}

func sameCarrier(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
