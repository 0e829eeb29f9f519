package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type purchaseOrderLineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPurchaseOrderLineRepository creates a read-only repository over purchase order items
func NewPurchaseOrderLineRepository(db *sql.DB, logger *zap.Logger) *purchaseOrderLineRepository {
	return &purchaseOrderLineRepository{
		db:     db,
		logger: logger,
	}
}

func (r *purchaseOrderLineRepository) ListOrderIDsByProduct(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT purchase_order_id
		FROM purchase_order_items
		WHERE product_id = $1
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, productID)
	if err != nil {
		r.logger.Error("Failed to list purchase orders by product", zap.Error(err))
		return nil, classifyError("list purchase orders by product", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, classifyError("list purchase orders by product", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
