package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/cisnerospos/posgw/internal/domain"
)

// TerminalRepository manages registered POS terminals
type TerminalRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Terminal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Terminal, error)
	Create(ctx context.Context, terminal *domain.Terminal) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// IdempotencyKeyRepository stores checkout idempotency keys
type IdempotencyKeyRepository interface {
	Get(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, idempotency *domain.IdempotencyKey) error
}

// SaleEventRepository journals checkouts handled by this gateway
type SaleEventRepository interface {
	Create(ctx context.Context, event *domain.SaleEvent) error
	UpdateState(ctx context.Context, id uuid.UUID, state domain.CheckoutState, ticketID, detail *string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.SaleEvent, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.SaleEvent, error)
}

// Repositories bundles all repositories
type Repositories struct {
	Terminal       TerminalRepository
	IdempotencyKey IdempotencyKeyRepository
	SaleEvent      SaleEventRepository
}
