package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

type shipmentEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewShipmentEventRepository creates a new shipment event repository
func NewShipmentEventRepository(db *sql.DB, logger *zap.Logger) *shipmentEventRepository {
	return &shipmentEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *shipmentEventRepository) Append(ctx context.Context, event *domain.ShipmentEvent) error {
	query := `
		INSERT INTO shipment_events (id, shipment_id, status, description, location, notes, created_by, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		event.ID,
		event.ShipmentID,
		event.Status,
		event.Description,
		nullIfEmpty(event.Location),
		nullIfEmpty(event.Notes),
		event.CreatedBy,
		event.Timestamp,
	)

	if err != nil {
		r.logger.Error("Failed to append shipment event",
			zap.String("shipment_id", event.ShipmentID.String()),
			zap.Error(err))
		return classifyError("append shipment event", err)
	}

	return nil
}

const selectShipmentEvent = `
	SELECT id, shipment_id, status, description, location, notes, created_by, timestamp
	FROM shipment_events
`

func (r *shipmentEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShipmentEvent, error) {
	event, err := scanShipmentEvent(conn(ctx, r.db).QueryRowContext(ctx, selectShipmentEvent+" WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "shipment event", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get shipment event", zap.Error(err))
		return nil, classifyError("get shipment event", err)
	}
	return event, nil
}

func (r *shipmentEventRepository) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]*domain.ShipmentEvent, error) {
	query := selectShipmentEvent + `
		WHERE shipment_id = $1
		ORDER BY timestamp ASC, seq ASC
	`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, shipmentID)
	if err != nil {
		r.logger.Error("Failed to list shipment events", zap.Error(err))
		return nil, classifyError("list shipment events", err)
	}
	defer rows.Close()

	var events []*domain.ShipmentEvent
	for rows.Next() {
		event, err := scanShipmentEvent(rows)
		if err != nil {
			return nil, classifyError("list shipment events", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("list shipment events", err)
	}

	return events, nil
}

func scanShipmentEvent(row rowScanner) (*domain.ShipmentEvent, error) {
	var event domain.ShipmentEvent
	var location, notes sql.NullString
	var createdBy uuid.NullUUID

	err := row.Scan(
		&event.ID,
		&event.ShipmentID,
		&event.Status,
		&event.Description,
		&location,
		&notes,
		&createdBy,
		&event.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	event.Location = location.String
	event.Notes = notes.String
	event.CreatedBy = uuidPtr(createdBy)
	return &event, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
