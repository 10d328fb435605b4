package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

type idempotencyKeyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIdempotencyKeyRepository creates a new idempotency key repository
func NewIdempotencyKeyRepository(db *sql.DB, logger *zap.Logger) *idempotencyKeyRepository {
	return &idempotencyKeyRepository{
		db:     db,
		logger: logger,
	}
}

func (r *idempotencyKeyRepository) Get(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	query := `
		SELECT key, session_id, sale_event_id, ticket_id, request_hash, created_at
		FROM idempotency_keys
		WHERE key = $1
	`

	var idempotency domain.IdempotencyKey
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&idempotency.Key,
		&idempotency.SessionID,
		&idempotency.SaleEventID,
		&idempotency.TicketID,
		&idempotency.RequestHash,
		&idempotency.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "idempotency key", ID: key}
	}
	if err != nil {
		r.logger.Error("Failed to get idempotency key", zap.Error(err))
		return nil, err
	}

	return &idempotency, nil
}

func (r *idempotencyKeyRepository) Create(ctx context.Context, idempotency *domain.IdempotencyKey) error {
	query := `
		INSERT INTO idempotency_keys (key, session_id, sale_event_id, ticket_id, request_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if idempotency.CreatedAt.IsZero() {
		idempotency.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		idempotency.Key,
		idempotency.SessionID,
		idempotency.SaleEventID,
		idempotency.TicketID,
		idempotency.RequestHash,
		idempotency.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create idempotency key", zap.Error(err))
		return err
	}

	return nil
}
