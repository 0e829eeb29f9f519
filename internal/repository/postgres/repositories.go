package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Shipment:          NewShipmentRepository(db, logger),
		ShipmentEvent:     NewShipmentEventRepository(db, logger),
		CargoItem:         NewCargoItemRepository(db, logger),
		Directory:         NewDirectoryRepository(db, logger),
		PurchaseOrderLine: NewPurchaseOrderLineRepository(db, logger),
		APIClient:         NewAPIClientRepository(db, logger),
		IdempotencyKey:    NewIdempotencyKeyRepository(db, logger),
		Tx:                NewTxManager(db),
	}
}
