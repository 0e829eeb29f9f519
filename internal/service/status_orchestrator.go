package service

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

// AdvanceStatus moves a shipment to update.Status. The record update and the
// event append commit together, and the update only applies if nobody changed
// the status since it was read. A shipment.status_changed message is
// published once the change has committed.
func (s *ShipmentService) AdvanceStatus(ctx context.Context, shipmentID uuid.UUID, update StatusUpdate) (*domain.ShipmentRecord, *domain.ShipmentEvent, error) {
	return s.advanceStatus(ctx, shipmentID, update, nil)
}

// recordFields builds the record side of a status change from the freshly
// loaded shipment
type recordFields func(rec *domain.ShipmentRecord) (*domain.ShipmentPatch, error)

// advanceStatus is AdvanceStatus with an optional fields builder. When set, its
// patch replaces the record fields of update and is written under the same
// compare-and-swap, so a rejected field leaves the status untouched.
func (s *ShipmentService) advanceStatus(ctx context.Context, shipmentID uuid.UUID, update StatusUpdate, fields recordFields) (*domain.ShipmentRecord, *domain.ShipmentEvent, error) {
	actor, err := requireActor(ctx, "update shipment status")
	if err != nil {
		return nil, nil, err
	}
	update.Status = domain.ShipmentStatus(strings.ToLower(strings.TrimSpace(string(update.Status))))
	if err := s.validate.Struct(update); err != nil {
		return nil, nil, validationError(err)
	}
	mode, err := update.mode()
	if err != nil {
		return nil, nil, err
	}

	rec, err := s.repos.Shipment.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.repos.ShipmentEvent.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, nil, err
	}

	if rule := domain.CheckTransition(rec.Status, update.Status, history); rule != "" {
		s.logger.Info("Status change rejected",
			zap.String("shipment_id", shipmentID.String()),
			zap.String("from", string(rec.Status)),
			zap.String("to", string(update.Status)),
			zap.String("rule", string(rule)))
		return nil, nil, &errors.ErrInvalidStateTransition{From: rec.Status, To: update.Status, Rule: rule}
	}
	if err := checkModeMatches(rec.ShippingMethod, mode); err != nil {
		return nil, nil, err
	}

	now := s.now()
	patch, err := statusPatch(rec, &update, mode)
	if err != nil {
		return nil, nil, err
	}
	if fields != nil {
		fp, err := fields(rec)
		if err != nil {
			return nil, nil, err
		}
		fp.ExpectedStatus, fp.Status = patch.ExpectedStatus, patch.Status
		patch = fp
	}
	applyMilestones(patch, update.Status, now)
	patch.UpdatedBy = &actor.ID

	ev := &domain.ShipmentEvent{
		ID:          uuid.New(),
		ShipmentID:  shipmentID,
		Status:      update.Status,
		Description: describeStatus(&update),
		Location:    strings.TrimSpace(update.Location),
		Notes:       composeNotes(&update),
		CreatedBy:   &actor.ID,
		Timestamp:   now,
	}

	var updated *domain.ShipmentRecord
	err = s.repos.Tx.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.repos.Shipment.Update(ctx, shipmentID, patch)
		var stale *errors.ErrStaleStatus
		if stderrors.As(err, &stale) {
			return &errors.ErrInvalidStateTransition{From: rec.Status, To: update.Status, Rule: domain.RuleConcurrentUpdate}
		}
		if err != nil {
			return err
		}
		updated = u

		if err := s.repos.ShipmentEvent.Append(ctx, ev); err != nil {
			return err
		}
		if update.IdempotencyKey != "" {
			return s.repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
				Key:         update.IdempotencyKey,
				ActorID:     actor.ID,
				ShipmentID:  shipmentID,
				EventID:     ev.ID,
				RequestHash: update.RequestHash,
				CreatedAt:   now,
			})
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to advance shipment status",
			zap.String("shipment_id", shipmentID.String()),
			zap.String("from", string(rec.Status)),
			zap.String("to", string(update.Status)),
			zap.Error(err))
		return nil, nil, err
	}

	s.logger.Info("Shipment status changed",
		zap.String("shipment_id", shipmentID.String()),
		zap.String("purchase_order_id", updated.PurchaseOrderID.String()),
		zap.String("from", string(rec.Status)),
		zap.String("status", string(updated.Status)))

	s.publishStatusChanged(ctx, rec.Status, updated, ev)
	return updated, ev, nil
}

// ReplayStatusUpdate returns the result of an earlier AdvanceStatus call made
// under an idempotency key
func (s *ShipmentService) ReplayStatusUpdate(ctx context.Context, key *domain.IdempotencyKey) (*domain.ShipmentRecord, *domain.ShipmentEvent, error) {
	rec, err := s.repos.Shipment.GetByID(ctx, key.ShipmentID)
	if err != nil {
		return nil, nil, err
	}
	ev, err := s.repos.ShipmentEvent.GetByID(ctx, key.EventID)
	if err != nil {
		return nil, nil, err
	}
	return rec, ev, nil
}

// statusPatch is the record side of a status update: the status itself under
// a compare-and-swap plus every supplied mode, cargo and cost field
func statusPatch(rec *domain.ShipmentRecord, u *StatusUpdate, mode domain.ModeDetails) (*domain.ShipmentPatch, error) {
	checks := fieldChecks{}
	checks.cargoBoxes(u.CargoBoxes)
	checks.nonNegative("price_per_cbm", u.PricePerCBM)
	checks.nonNegative("freight_cost", u.FreightCost)
	checks.nonNegative("delivery_cost", u.DeliveryCost)
	checks.nonNegative("insurance_cost", u.InsuranceCost)
	checks.nonNegative("customs_cost", u.CustomsCost)
	checks.nonNegative("handling_cost", u.HandlingCost)
	if err := checks.err(); err != nil {
		return nil, err
	}

	expected := rec.Status
	status := u.Status
	p := &domain.ShipmentPatch{
		ExpectedStatus:    &expected,
		Status:            &status,
		Mode:              mode,
		CargoBoxes:        u.CargoBoxes,
		PricePerCBM:       u.PricePerCBM,
		FreightCost:       u.FreightCost,
		DeliveryCost:      u.DeliveryCost,
		InsuranceCost:     u.InsuranceCost,
		CustomsCost:       u.CustomsCost,
		HandlingCost:      u.HandlingCost,
		EstimatedDelivery: u.EstimatedDelivery,
		ActualDelivery:    u.ActualDelivery,
	}
	if u.Currency != "" {
		c := strings.ToUpper(u.Currency)
		p.Currency = &c
	}
	deriveTotals(rec, p)
	return p, nil
}
