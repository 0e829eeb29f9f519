package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Mtaasisi/POS-sub062/internal/auth"
	"github.com/Mtaasisi/POS-sub062/internal/domain"
	"github.com/Mtaasisi/POS-sub062/pkg/errors"
)

type apiClientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAPIClientRepository creates a new API client repository
func NewAPIClientRepository(db *sql.DB, logger *zap.Logger) *apiClientRepository {
	return &apiClientRepository{
		db:     db,
		logger: logger,
	}
}

// GetByAPIKey finds the active client by SHA256 lookup and then verifies the
// key against the stored bcrypt hash
func (r *apiClientRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.APIClient, error) {
	query := `
		SELECT id, name, api_key_hash, api_key_lookup, role, is_active, created_at, updated_at
		FROM api_clients
		WHERE is_active = true AND api_key_lookup = $1
	`

	lookupKey := auth.APIKeyLookupHash(apiKey)
	var client domain.APIClient
	var lookup sql.NullString
	err := conn(ctx, r.db).QueryRowContext(ctx, query, lookupKey).Scan(
		&client.ID,
		&client.Name,
		&client.APIKeyHash,
		&lookup,
		&client.Role,
		&client.IsActive,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		r.logger.Info("API key did not match any client", zap.String("lookup_key_prefix", safePrefix(lookupKey, 8)))
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	if err != nil {
		r.logger.Error("Failed to look up API client", zap.Error(err))
		return nil, classifyError("get api client", err)
	}

	if !auth.VerifyAPIKey(apiKey, client.APIKeyHash) {
		r.logger.Debug("API key lookup found client but bcrypt verification failed", zap.String("client_id", client.ID.String()))
		return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
	}
	client.APIKeyLookup = lookup.String

	return &client, nil
}

func (r *apiClientRepository) Create(ctx context.Context, client *domain.APIClient) error {
	query := `
		INSERT INTO api_clients (id, name, api_key_hash, api_key_lookup, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	if client.UpdatedAt.IsZero() {
		client.UpdatedAt = now
	}

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.APIKeyHash,
		nullIfEmpty(client.APIKeyLookup),
		client.Role,
		client.IsActive,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create API client", zap.Error(err))
		return classifyError("create api client", err)
	}

	return nil
}

func (r *apiClientRepository) List(ctx context.Context) ([]*domain.APIClient, error) {
	query := `
		SELECT id, name, role, is_active, created_at, updated_at
		FROM api_clients
		ORDER BY created_at ASC
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list API clients", zap.Error(err))
		return nil, classifyError("list api clients", err)
	}
	defer rows.Close()

	var clients []*domain.APIClient
	for rows.Next() {
		var c domain.APIClient
		if err := rows.Scan(&c.ID, &c.Name, &c.Role, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			r.logger.Error("Failed to scan API client", zap.Error(err))
			return nil, classifyError("list api clients", err)
		}
		clients = append(clients, &c)
	}
	return clients, rows.Err()
}

func safePrefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
