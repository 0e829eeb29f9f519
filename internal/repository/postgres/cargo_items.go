package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
)

type cargoItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCargoItemRepository creates a new cargo item repository
func NewCargoItemRepository(db *sql.DB, logger *zap.Logger) *cargoItemRepository {
	return &cargoItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *cargoItemRepository) CreateBatch(ctx context.Context, items []*domain.CargoItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO cargo_items (
			id, shipment_id, product_id, variant_id, purchase_order_item_id, quantity, created_at
		)
		VALUES `

	args := make([]interface{}, 0, len(items)*7)
	now := time.Now()

	for i, item := range items {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			i*7+1, i*7+2, i*7+3, i*7+4, i*7+5, i*7+6, i*7+7)

		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}

		args = append(args,
			item.ID,
			item.ShipmentID,
			item.ProductID,
			item.VariantID,
			item.PurchaseOrderItemID,
			item.Quantity,
			item.CreatedAt,
		)
	}

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to create cargo items batch", zap.Int("count", len(items)), zap.Error(err))
		return classifyError("create cargo items", err)
	}

	return nil
}

func (r *cargoItemRepository) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.CargoItemDetail, error) {
	query := `
		SELECT ci.id, ci.shipment_id, ci.product_id, ci.variant_id, ci.purchase_order_item_id,
			ci.quantity, ci.created_at,
			p.name, p.sku, v.name, poi.quantity
		FROM cargo_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN product_variants v ON v.id = ci.variant_id
		LEFT JOIN purchase_order_items poi ON poi.id = ci.purchase_order_item_id
		WHERE ci.shipment_id = $1
		ORDER BY ci.created_at ASC, ci.id
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, shipmentID)
	if err != nil {
		r.logger.Error("Failed to list cargo items", zap.Error(err))
		return nil, classifyError("list cargo items", err)
	}
	defer rows.Close()

	var items []*domain.CargoItemDetail
	for rows.Next() {
		var item domain.CargoItemDetail
		var variantID, purchaseOrderItemID uuid.NullUUID
		var sku, variantName sql.NullString
		var orderedQuantity sql.NullInt64

		err := rows.Scan(
			&item.ID,
			&item.ShipmentID,
			&item.ProductID,
			&variantID,
			&purchaseOrderItemID,
			&item.Quantity,
			&item.CreatedAt,
			&item.ProductName,
			&sku,
			&variantName,
			&orderedQuantity,
		)
		if err != nil {
			return nil, classifyError("list cargo items", err)
		}

		item.VariantID = uuidPtr(variantID)
		item.PurchaseOrderItemID = uuidPtr(purchaseOrderItemID)
		item.SKU = sku.String
		item.VariantName = variantName.String
		if orderedQuantity.Valid {
			q := int(orderedQuantity.Int64)
			item.OrderedQuantity = &q
		}

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, classifyError("list cargo items", err)
	}
	return items, nil
}
