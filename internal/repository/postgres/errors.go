package postgres

import (
	stderrors "errors"

	"github.com/lib/pq"

	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

// PostgreSQL error codes, class 23 (integrity constraint violation)
const (
	pgErrForeignKeyViolation = "23503"
	pgErrUniqueViolation     = "23505"
)

// Constraint names from migrations/000001_init_schema.up.sql
const (
	constraintTrackingNumber  = "shipment_records_carrier_tracking_key"
	constraintPurchaseOrderID = "shipment_records_purchase_order_id_key"
)

// classifyError turns a driver error into one of the typed errors in pkg/errors
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgErrForeignKeyViolation:
			return &errors.ErrInvalidReference{
				Field:   referenceField(pqErr.Constraint),
				Message: pqErr.Detail,
			}
		case pgErrUniqueViolation:
			switch pqErr.Constraint {
			case constraintTrackingNumber:
				return &errors.ErrDuplicateTrackingNumber{}
			case constraintPurchaseOrderID:
				return &errors.ErrConflict{Message: "purchase order already has a shipment"}
			default:
				return &errors.ErrConflict{Message: pqErr.Message}
			}
		}
	}

	return &errors.ErrPersistenceUnavailable{Op: op, Err: err}
}

// referenceField names the input field behind a foreign key constraint
func referenceField(constraint string) string {
	switch constraint {
	case "shipment_records_carrier_id_fkey":
		return "carrier_id"
	case "shipment_records_agent_id_fkey":
		return "agent_id"
	case "shipment_records_manager_id_fkey":
		return "manager_id"
	case "shipment_records_purchase_order_id_fkey":
		return "purchase_order_id"
	case "cargo_items_shipment_id_fkey":
		return "shipment_id"
	case "cargo_items_product_id_fkey":
		return "product_id"
	case "cargo_items_variant_id_fkey":
		return "variant_id"
	case "cargo_items_purchase_order_item_id_fkey":
		return "purchase_order_item_id"
	default:
		return constraint
	}
}
