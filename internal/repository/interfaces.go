package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

// ShipmentRepository defines shipment record data access methods
type ShipmentRepository interface {
	Create(ctx context.Context, rec *domain.ShipmentRecord) error
	// GetByID returns *errors.ErrNotFound when the shipment does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipmentRecord, error)
	// GetByPurchaseOrderID returns nil, nil when the order has no shipment
	GetByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) (*domain.ShipmentRecord, error)
	// Update writes the supplied fields. With patch.ExpectedStatus set the
	// write only happens if the stored status still matches, otherwise
	// *errors.ErrStaleStatus is returned.
	Update(ctx context.Context, id uuid.UUID, patch *domain.ShipmentPatch) (*domain.ShipmentRecord, error)
	TrackingNumberExists(ctx context.Context, carrierID *uuid.UUID, trackingNumber string) (bool, error)
	List(ctx context.Context, filter domain.ShipmentFilter) ([]*domain.ShipmentRecord, error)
	ListByPurchaseOrderIDs(ctx context.Context, purchaseOrderIDs []uuid.UUID) ([]*domain.ShipmentRecord, error)
}

// ShipmentEventRepository is append-only
type ShipmentEventRepository interface {
	Append(ctx context.Context, event *domain.ShipmentEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipmentEvent, error)
	// ListByShipment returns events ascending by timestamp
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.ShipmentEvent, error)
}

// CargoItemRepository defines cargo item data access methods
type CargoItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.CargoItem) error
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.CargoItemDetail, error)
}

// DirectoryRepository reads carriers, agents and managers owned by other subsystems
type DirectoryRepository interface {
	Get(ctx context.Context, kind domain.DirectoryKind, id uuid.UUID) (*domain.PartyRef, error)
}

// PurchaseOrderLineRepository maps products to the purchase orders that include them
type PurchaseOrderLineRepository interface {
	ListOrderIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
}

// APIClientRepository defines service account data access methods
type APIClientRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error)
	Create(ctx context.Context, client *domain.APIClient) error
	List(ctx context.Context) ([]*domain.APIClient, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// TxManager runs fn in one transaction. Repositories called with the ctx
// passed to fn take part in it.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Shipment          ShipmentRepository
	ShipmentEvent     ShipmentEventRepository
	CargoItem         CargoItemRepository
	Directory         DirectoryRepository
	PurchaseOrderLine PurchaseOrderLineRepository
	APIClient         APIClientRepository
	IdempotencyKey    IdempotencyKeyRepository
	Tx                TxManager
}
