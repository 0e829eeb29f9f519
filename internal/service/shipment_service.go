package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/events"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

const (
	maxTrackingAttempts = 5
	defaultListLimit    = 50
	maxListLimit        = 200
)

// ShipmentService owns shipment records and every status change made to them
type ShipmentService struct {
	repos     *repository.Repositories
	publisher events.Publisher
	tracking  TrackingNumberGenerator
	validate  *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewShipmentService creates a new shipment service
func NewShipmentService(
	repos *repository.Repositories,
	publisher events.Publisher,
	tracking TrackingNumberGenerator,
	logger *zap.Logger,
) *ShipmentService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ShipmentService{
		repos:     repos,
		publisher: publisher,
		tracking:  tracking,
		validate:  newValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns one shipment
func (s *ShipmentService) Get(ctx context.Context, id uuid.UUID) (*domain.ShipmentRecord, error) {
	return s.repos.Shipment.GetByID(ctx, id)
}

// GetByPurchaseOrder returns the shipment of a purchase order, or nil when
// the order has none yet
func (s *ShipmentService) GetByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (*domain.ShipmentRecord, error) {
	return s.repos.Shipment.GetByPurchaseOrderID(ctx, purchaseOrderID)
}

// GetDetail loads a shipment with its history and cargo
func (s *ShipmentService) GetDetail(ctx context.Context, id uuid.UUID) (*ShipmentDetail, error) {
	var d ShipmentDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := s.repos.Shipment.GetByID(gctx, id)
		d.Record = rec
		return err
	})
	g.Go(func() error {
		evs, err := s.repos.ShipmentEvent.ListByShipment(gctx, id)
		d.Events = evs
		return err
	})
	g.Go(func() error {
		items, err := s.repos.CargoItem.ListByShipment(gctx, id)
		d.Cargo = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	d.NextStatuses = domain.NextStatuses(d.Record.Status, d.Events)
	return &d, nil
}

// History returns the events of a shipment, oldest first
func (s *ShipmentService) History(ctx context.Context, id uuid.UUID) ([]*domain.ShipmentEvent, error) {
	if _, err := s.repos.Shipment.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.ShipmentEvent.ListByShipment(ctx, id)
}

// NextStatuses lists the statuses the shipment may move to now
func (s *ShipmentService) NextStatuses(ctx context.Context, id uuid.UUID) ([]domain.ShipmentStatus, error) {
	rec, err := s.repos.Shipment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := s.repos.ShipmentEvent.ListByShipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NextStatuses(rec.Status, history), nil
}

// List returns shipments newest first
func (s *ShipmentService) List(ctx context.Context, filter domain.ShipmentFilter) ([]*domain.ShipmentRecord, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, &errors.ErrValidation{
			Message: "unknown status filter",
			Fields:  map[string]string{"status": "unknown status " + string(filter.Status)},
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repos.Shipment.List(ctx, filter)
}

// ListByProduct returns the shipments of every purchase order containing
// the product
func (s *ShipmentService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ShipmentRecord, error) {
	orderIDs, err := s.repos.PurchaseOrderLine.ListOrderIDsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(orderIDs) == 0 {
		return []*domain.ShipmentRecord{}, nil
	}
	return s.repos.Shipment.ListByPurchaseOrderIDs(ctx, orderIDs)
}

// Create records the shipment of a purchase order. When the order already has
// one the request is applied to it instead: a different status goes through
// AdvanceStatus, the other fields through a partial update. The bool reports
// whether a new record was inserted.
func (s *ShipmentService) Create(ctx context.Context, req CreateShipmentRequest) (*domain.ShipmentRecord, bool, error) {
	actor, err := requireActor(ctx, "create shipment")
	if err != nil {
		return nil, false, err
	}
	req.Status = domain.ShipmentStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if err := s.validate.Struct(req); err != nil {
		return nil, false, validationError(err)
	}
	mode, err := req.mode()
	if err != nil {
		return nil, false, err
	}

	existing, err := s.repos.Shipment.GetByPurchaseOrderID(ctx, req.PurchaseOrderID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		rec, err := s.upsertExisting(ctx, actor, existing, req, mode)
		return rec, false, err
	}

	rec, err := s.insert(ctx, actor, req, mode)
	var conflict *errors.ErrConflict
	if stderrors.As(err, &conflict) {
		// another request created the order's shipment first
		existing, getErr := s.repos.Shipment.GetByPurchaseOrderID(ctx, req.PurchaseOrderID)
		if getErr != nil {
			return nil, false, getErr
		}
		if existing == nil {
			return nil, false, err
		}
		s.logger.Info("Shipment created concurrently, updating instead",
			zap.String("purchase_order_id", req.PurchaseOrderID.String()))
		rec, err := s.upsertExisting(ctx, actor, existing, req, mode)
		return rec, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

func (s *ShipmentService) insert(ctx context.Context, actor *domain.Actor, req CreateShipmentRequest, mode domain.ModeDetails) (*domain.ShipmentRecord, error) {
	status := req.Status
	if status == "" {
		status = domain.ShipmentStatusPending
	}
	if rule := domain.CheckTransition("", status, nil); rule != "" {
		return nil, &errors.ErrInvalidStateTransition{To: status, Rule: rule}
	}

	now := s.now()
	rec := &domain.ShipmentRecord{
		ID:              uuid.New(),
		PurchaseOrderID: req.PurchaseOrderID,
		ShippingMethod:  domain.ShippingMethodStandard,
		Status:          status,
		Currency:        "USD",
		CreatedBy:       &actor.ID,
		UpdatedBy:       &actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	patch, err := s.fieldsPatch(rec, &req.ShipmentFields, mode)
	if err != nil {
		return nil, err
	}
	applyMilestones(patch, status, now)
	domain.ApplyPatch(rec, patch)

	carrierName, err := s.carrierName(ctx, rec.CarrierID)
	if err != nil {
		return nil, err
	}
	requested := ""
	if req.TrackingNumber != nil {
		requested = strings.TrimSpace(*req.TrackingNumber)
	}
	tn, err := s.resolveTrackingNumber(ctx, rec.CarrierID, carrierName, requested)
	if err != nil {
		return nil, err
	}

	update := statusUpdateFromCreate(req, status, mode)
	ev := &domain.ShipmentEvent{
		ID:          uuid.New(),
		ShipmentID:  rec.ID,
		Status:      status,
		Description: describeStatus(update),
		Location:    req.Location,
		Notes:       composeNotes(update),
		CreatedBy:   &actor.ID,
		Timestamp:   now,
	}

	for attempt := 1; ; attempt++ {
		rec.TrackingNumber = tn
		err = s.repos.Tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := s.repos.Shipment.Create(ctx, rec); err != nil {
				return err
			}
			return s.repos.ShipmentEvent.Append(ctx, ev)
		})
		if err == nil {
			break
		}
		var dup *errors.ErrDuplicateTrackingNumber
		if !stderrors.As(err, &dup) {
			s.logger.Error("Failed to create shipment", zap.String("purchase_order_id", req.PurchaseOrderID.String()), zap.Error(err))
			return nil, err
		}
		if attempt >= maxTrackingAttempts {
			s.logger.Error("Tracking number retries exhausted", zap.String("tracking_number", tn), zap.Int("attempts", attempt))
			return nil, &errors.ErrDuplicateTrackingNumber{TrackingNumber: tn, Attempts: attempt}
		}
		s.logger.Warn("Tracking number taken at insert, regenerating", zap.String("tracking_number", tn), zap.Int("attempt", attempt))
		tn = s.tracking.Generate(carrierName)
	}

	s.logger.Info("Shipment created",
		zap.String("shipment_id", rec.ID.String()),
		zap.String("purchase_order_id", rec.PurchaseOrderID.String()),
		zap.String("status", string(rec.Status)),
		zap.String("tracking_number", rec.TrackingNumber))

	created, err := s.repos.Shipment.GetByID(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	s.publishStatusChanged(ctx, "", created, ev)
	return created, nil
}

func (s *ShipmentService) upsertExisting(ctx context.Context, actor *domain.Actor, existing *domain.ShipmentRecord, req CreateShipmentRequest, mode domain.ModeDetails) (*domain.ShipmentRecord, error) {
	fields := func(rec *domain.ShipmentRecord) (*domain.ShipmentPatch, error) {
		return s.upsertPatch(ctx, rec, req, mode)
	}

	// a status change carries the other fields in the same write
	if req.Status != "" && req.Status != existing.Status {
		updated, _, err := s.advanceStatus(ctx, existing.ID, StatusUpdate{
			Status:   req.Status,
			Location: req.Location,
			Notes:    req.Notes,
		}, fields)
		if err != nil {
			return nil, err
		}
		return updated, nil
	}

	patch, err := fields(existing)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return existing, nil
	}
	patch.UpdatedBy = &actor.ID
	return s.applyUpdate(ctx, existing.ID, patch)
}

// upsertPatch is the non-status part of a create request applied to rec
func (s *ShipmentService) upsertPatch(ctx context.Context, rec *domain.ShipmentRecord, req CreateShipmentRequest, mode domain.ModeDetails) (*domain.ShipmentPatch, error) {
	patch, err := s.fieldsPatch(rec, &req.ShipmentFields, mode)
	if err != nil {
		return nil, err
	}
	if req.TrackingNumber == nil {
		return patch, nil
	}
	requested := strings.TrimSpace(*req.TrackingNumber)
	if requested == "" || requested == rec.TrackingNumber {
		return patch, nil
	}
	carrierID := rec.CarrierID
	if patch.CarrierID != nil {
		carrierID = patch.CarrierID
	}
	carrierName, err := s.carrierName(ctx, carrierID)
	if err != nil {
		return nil, err
	}
	tn, err := s.resolveTrackingNumber(ctx, carrierID, carrierName, requested)
	if err != nil {
		return nil, err
	}
	patch.TrackingNumber = &tn
	return patch, nil
}

// Update writes the supplied fields. Status changes are rejected; they go
// through AdvanceStatus.
func (s *ShipmentService) Update(ctx context.Context, id uuid.UUID, req UpdateShipmentRequest) (*domain.ShipmentRecord, error) {
	actor, err := requireActor(ctx, "update shipment")
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		return nil, &errors.ErrValidation{
			Message: "status cannot be changed by a shipment update",
			Fields:  map[string]string{"status": "use the status endpoint"},
		}
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	mode, err := req.mode()
	if err != nil {
		return nil, err
	}

	rec, err := s.repos.Shipment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch, err := s.fieldsPatch(rec, &req.ShipmentFields, mode)
	if err != nil {
		return nil, err
	}
	if req.TrackingNumber != nil {
		tn := strings.TrimSpace(*req.TrackingNumber)
		if tn == "" {
			return nil, &errors.ErrValidation{
				Message: "tracking number cannot be cleared",
				Fields:  map[string]string{"tracking_number": "must not be empty"},
			}
		}
		patch.TrackingNumber = &tn
	}
	if patch.IsEmpty() {
		return rec, nil
	}
	patch.UpdatedBy = &actor.ID
	return s.applyUpdate(ctx, id, patch)
}

func (s *ShipmentService) applyUpdate(ctx context.Context, id uuid.UUID, patch *domain.ShipmentPatch) (*domain.ShipmentRecord, error) {
	updated, err := s.repos.Shipment.Update(ctx, id, patch)
	if err != nil {
		s.logger.Error("Failed to update shipment", zap.String("shipment_id", id.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Shipment updated", zap.String("shipment_id", id.String()))
	return updated, nil
}

// fieldsPatch maps request fields onto a patch and fills in the derived
// totals against base
func (s *ShipmentService) fieldsPatch(base *domain.ShipmentRecord, f *ShipmentFields, mode domain.ModeDetails) (*domain.ShipmentPatch, error) {
	checks := fieldChecks{}
	checks.cargoBoxes(f.CargoBoxes)
	checks.nonNegative("price_per_cbm", f.PricePerCBM)
	checks.nonNegative("freight_cost", f.FreightCost)
	checks.nonNegative("delivery_cost", f.DeliveryCost)
	checks.nonNegative("insurance_cost", f.InsuranceCost)
	checks.nonNegative("customs_cost", f.CustomsCost)
	checks.nonNegative("handling_cost", f.HandlingCost)
	checks.nonNegative("insurance_value", f.InsuranceValue)
	if err := checks.err(); err != nil {
		return nil, err
	}

	method := base.ShippingMethod
	p := &domain.ShipmentPatch{
		CarrierID:         f.CarrierID,
		AgentID:           f.AgentID,
		ManagerID:         f.ManagerID,
		Mode:              mode,
		CargoBoxes:        f.CargoBoxes,
		PricePerCBM:       f.PricePerCBM,
		FreightCost:       f.FreightCost,
		DeliveryCost:      f.DeliveryCost,
		InsuranceCost:     f.InsuranceCost,
		CustomsCost:       f.CustomsCost,
		HandlingCost:      f.HandlingCost,
		EstimatedDelivery: f.EstimatedDelivery,
		ActualDelivery:    f.ActualDelivery,
		RequireSignature:  f.RequireSignature,
		EnableInsurance:   f.EnableInsurance,
		InsuranceValue:    f.InsuranceValue,
	}
	if f.ShippingMethod != nil {
		m := f.ShippingMethod.Normalize()
		p.ShippingMethod = &m
		method = m
	}
	if err := checkModeMatches(method, mode); err != nil {
		return nil, err
	}
	if f.Currency != nil {
		c := strings.ToUpper(*f.Currency)
		p.Currency = &c
	}
	deriveTotals(base, p)
	return p, nil
}

// deriveTotals recomputes total_cbm when the packing list is supplied and
// total_shipping_cost when any cost component is
func deriveTotals(base *domain.ShipmentRecord, p *domain.ShipmentPatch) {
	if p.CargoBoxes != nil {
		cbm := domain.TotalCBM(p.CargoBoxes)
		p.TotalCBM = &cbm
	}
	if p.HasCostChange() {
		total := p.MergeCosts(base.Costs).Total()
		p.TotalShippingCost = &total
	}
}

// applyMilestones stamps the timestamps tied to reaching a status
func applyMilestones(p *domain.ShipmentPatch, status domain.ShipmentStatus, now time.Time) {
	switch status {
	case domain.ShipmentStatusArrived:
		p.ProductsUpdatedAt = &now
	case domain.ShipmentStatusReceived:
		p.InventoryReceivedAt = &now
	}
}

// resolveTrackingNumber keeps requested when it is free for the carrier and
// synthesizes a new number otherwise
func (s *ShipmentService) resolveTrackingNumber(ctx context.Context, carrierID *uuid.UUID, carrierName, requested string) (string, error) {
	candidate := requested
	for attempt := 0; attempt < maxTrackingAttempts; attempt++ {
		if candidate != "" {
			exists, err := s.repos.Shipment.TrackingNumberExists(ctx, carrierID, candidate)
			if err != nil {
				return "", err
			}
			if !exists {
				return candidate, nil
			}
			s.logger.Info("Tracking number already in use, generating another", zap.String("tracking_number", candidate))
		}
		candidate = s.tracking.Generate(carrierName)
	}
	// the insert retry loop catches a final collision
	return candidate, nil
}

func (s *ShipmentService) carrierName(ctx context.Context, carrierID *uuid.UUID) (string, error) {
	if carrierID == nil {
		return "", nil
	}
	ref, err := s.repos.Directory.Get(ctx, domain.DirectoryCarrier, *carrierID)
	var notFound *errors.ErrNotFound
	if stderrors.As(err, &notFound) {
		return "", &errors.ErrInvalidReference{Field: "carrier_id", Message: "carrier does not exist"}
	}
	if err != nil {
		return "", err
	}
	return ref.Name, nil
}

func (s *ShipmentService) publishStatusChanged(ctx context.Context, from domain.ShipmentStatus, rec *domain.ShipmentRecord, ev *domain.ShipmentEvent) {
	msg := events.NewStatusChangedMessage(from, rec, ev)
	// the request may already be finished
	if err := s.publisher.Publish(context.WithoutCancel(ctx), rec.ID.String(), msg); err != nil {
		s.logger.Warn("Failed to publish status change",
			zap.String("shipment_id", rec.ID.String()),
			zap.String("status", string(ev.Status)),
			zap.Error(err))
	}
}

func statusUpdateFromCreate(req CreateShipmentRequest, status domain.ShipmentStatus, mode domain.ModeDetails) *StatusUpdate {
	u := &StatusUpdate{
		Status:            status,
		Location:          req.Location,
		Notes:             req.Notes,
		CargoBoxes:        req.CargoBoxes,
		PricePerCBM:       req.PricePerCBM,
		FreightCost:       req.FreightCost,
		DeliveryCost:      req.DeliveryCost,
		InsuranceCost:     req.InsuranceCost,
		CustomsCost:       req.CustomsCost,
		HandlingCost:      req.HandlingCost,
		EstimatedDelivery: req.EstimatedDelivery,
		ActualDelivery:    req.ActualDelivery,
	}
	if req.Currency != nil {
		u.Currency = *req.Currency
	}
	switch m := mode.(type) {
	case *domain.SeaDetails:
		u.Sea = m
	case *domain.AirDetails:
		u.Air = m
	case *domain.GroundDetails:
		u.Ground = m
	}
	return u
}

func requireActor(ctx context.Context, op string) (*domain.Actor, error) {
	actor, ok := auth.ActorFromContext(ctx)
	if !ok {
		return nil, &errors.ErrAuthenticationRequired{Operation: op}
	}
	return actor, nil
}
