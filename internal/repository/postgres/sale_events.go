package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

type saleEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSaleEventRepository creates a new sale event repository
func NewSaleEventRepository(db *sql.DB, logger *zap.Logger) *saleEventRepository {
	return &saleEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *saleEventRepository) Create(ctx context.Context, event *domain.SaleEvent) error {
	query := `
		INSERT INTO sale_events (id, terminal_id, username, state, ticket_id, total_cents, item_count, detail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.TerminalID,
		event.Username,
		event.State,
		event.TicketID,
		int64(event.Total),
		event.ItemCount,
		event.Detail,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create sale event", zap.Error(err))
		return err
	}

	return nil
}

func (r *saleEventRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.CheckoutState, ticketID, detail *string) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !current.State.CanTransitionTo(state) {
		return &errors.ErrInvalidStateTransition{From: current.State, To: state}
	}

	query := `
		UPDATE sale_events
		SET state = $2, ticket_id = COALESCE($3, ticket_id), detail = COALESCE($4, detail), updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, state, ticketID, detail, time.Now())
	if err != nil {
		r.logger.Error("Failed to update sale event", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &errors.ErrNotFound{Resource: "sale event", ID: id.String()}
	}

	return nil
}

func (r *saleEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SaleEvent, error) {
	query := `
		SELECT id, terminal_id, username, state, ticket_id, total_cents, item_count, detail, created_at, updated_at
		FROM sale_events
		WHERE id = $1
	`

	event, err := scanSaleEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "sale event", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get sale event", zap.Error(err))
		return nil, err
	}

	return event, nil
}

func (r *saleEventRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SaleEvent, error) {
	query := `
		SELECT id, terminal_id, username, state, ticket_id, total_cents, item_count, detail, created_at, updated_at
		FROM sale_events
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list sale events", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []*domain.SaleEvent
	for rows.Next() {
		event, err := scanSaleEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSaleEvent(row rowScanner) (*domain.SaleEvent, error) {
	var event domain.SaleEvent
	var totalCents int64

	err := row.Scan(
		&event.ID,
		&event.TerminalID,
		&event.Username,
		&event.State,
		&event.TicketID,
		&totalCents,
		&event.ItemCount,
		&event.Detail,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Total = domain.Cents(totalCents)
	return &event, nil
}
