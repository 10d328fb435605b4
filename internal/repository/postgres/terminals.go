package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

type terminalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTerminalRepository creates a new terminal repository
func NewTerminalRepository(db *sql.DB, logger *zap.Logger) *terminalRepository {
	return &terminalRepository{
		db:     db,
		logger: logger,
	}
}

func (r *terminalRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Terminal, error) {
	// bcrypt hashes are salted, so there is no direct lookup; iterate the
	// active terminals and verify the key against each hash. The terminal
	// count per store is small enough for this to be fine.
	query := `
		SELECT id, name, api_key_hash, is_active, created_at, updated_at
		FROM terminals
		WHERE is_active = true
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query terminals", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var terminal domain.Terminal

		err := rows.Scan(
			&terminal.ID,
			&terminal.Name,
			&terminal.APIKeyHash,
			&terminal.IsActive,
			&terminal.CreatedAt,
			&terminal.UpdatedAt,
		)
		if err != nil {
			continue
		}

		if err := bcrypt.CompareHashAndPassword([]byte(terminal.APIKeyHash), []byte(apiKey)); err == nil {
			return &terminal, nil
		}
	}

	return nil, &errors.ErrUnauthorized{Message: "invalid terminal key"}
}

func (r *terminalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Terminal, error) {
	query := `
		SELECT id, name, api_key_hash, is_active, created_at, updated_at
		FROM terminals
		WHERE id = $1
	`

	var terminal domain.Terminal
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&terminal.ID,
		&terminal.Name,
		&terminal.APIKeyHash,
		&terminal.IsActive,
		&terminal.CreatedAt,
		&terminal.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "terminal", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get terminal by ID", zap.Error(err))
		return nil, err
	}

	return &terminal, nil
}

func (r *terminalRepository) Create(ctx context.Context, terminal *domain.Terminal) error {
	query := `
		INSERT INTO terminals (id, name, api_key_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	if terminal.ID == uuid.Nil {
		terminal.ID = uuid.New()
	}
	terminal.CreatedAt = now
	terminal.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		terminal.ID,
		terminal.Name,
		terminal.APIKeyHash,
		terminal.IsActive,
		terminal.CreatedAt,
		terminal.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create terminal", zap.Error(err))
		return err
	}

	return nil
}

func (r *terminalRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE terminals
		SET is_active = false, updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		r.logger.Error("Failed to deactivate terminal", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "terminal", ID: id.String()}
	}

	return nil
}
