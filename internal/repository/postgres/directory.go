package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

// directoryTables maps a weak reference kind to the table that owns it
var directoryTables = map[domain.DirectoryKind]string{
	domain.DirectoryCarrier: "carriers",
	domain.DirectoryAgent:   "shipping_agents",
	domain.DirectoryManager: "users",
}

type directoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDirectoryRepository creates a read-only repository over the carrier,
// agent and user tables
func NewDirectoryRepository(db *sql.DB, logger *zap.Logger) *directoryRepository {
	return &directoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *directoryRepository) Get(ctx context.Context, kind domain.DirectoryKind, id uuid.UUID) (*domain.PartyRef, error) {
	table, ok := directoryTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown directory kind %q", kind)
	}

	query := fmt.Sprintf(`SELECT id, name, email, phone FROM %s WHERE id = $1`, table)

	var ref domain.PartyRef
	var email, phone sql.NullString
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&ref.ID, &ref.Name, &email, &phone)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: string(kind), ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to read directory entry", zap.String("kind", string(kind)), zap.Error(err))
		return nil, classifyError("get "+string(kind), err)
	}

	ref.Email = email.String
	ref.Phone = phone.String
	return &ref, nil
}
