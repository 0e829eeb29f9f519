package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/internal/repository"
)

// CargoService links purchase order lines to the shipment carrying them
type CargoService struct {
	repos    *repository.Repositories
	validate *validator.Validate
	logger   *zap.Logger
}

// NewCargoService creates a new cargo service
func NewCargoService(repos *repository.Repositories, logger *zap.Logger) *CargoService {
	return &CargoService{
		repos:    repos,
		validate: newValidator(),
		logger:   logger,
	}
}

// AddCargoItems inserts the batch in one statement. A line without a quantity
// counts as one unit.
func (s *CargoService) AddCargoItems(ctx context.Context, shipmentID uuid.UUID, req AddCargoRequest) ([]*domain.CargoItem, error) {
	if _, err := requireActor(ctx, "add cargo items"); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.repos.Shipment.GetByID(ctx, shipmentID); err != nil {
		return nil, err
	}

	items := make([]*domain.CargoItem, 0, len(req.Items))
	for _, in := range req.Items {
		qty := in.Quantity
		if qty == 0 {
			qty = 1
		}
		items = append(items, &domain.CargoItem{
			ID:                  uuid.New(),
			ShipmentID:          shipmentID,
			ProductID:           in.ProductID,
			VariantID:           in.VariantID,
			PurchaseOrderItemID: in.PurchaseOrderItemID,
			Quantity:            qty,
		})
	}

	if err := s.repos.CargoItem.CreateBatch(ctx, items); err != nil {
		s.logger.Error("Failed to add cargo items", zap.String("shipment_id", shipmentID.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Cargo items added", zap.String("shipment_id", shipmentID.String()), zap.Int("item_count", len(items)))
	return items, nil
}

// ListCargo returns the cargo of a shipment with product and order line detail
func (s *CargoService) ListCargo(ctx context.Context, shipmentID uuid.UUID) ([]*domain.CargoItemDetail, error) {
	if _, err := s.repos.Shipment.GetByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.repos.CargoItem.ListByShipment(ctx, shipmentID)
}
