package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry as reported by the backend. The gateway holds
// only read-only snapshots; stock and price of record live upstream.
type Product struct {
	ID    string
	Name  string
	Price Cents
	Stock int
}

// SaleItem is one line of a persisted sale, with the product resolved by
// the backend
type SaleItem struct {
	ProductID   string
	ProductName string
	Quantity    int
	Subtotal    Cents
}

// SaleRecord is a completed sale (ticket) as issued by the backend
type SaleRecord struct {
	ID           string
	TicketNumber string
	Date         time.Time
	Items        []SaleItem
	Total        Cents
	PDFURL       *string
}

// InventoryRecord is a physical stock count for one product
type InventoryRecord struct {
	ID           string
	ProductID    string
	ProductName  string
	CountedStock int
	Observations string
	Date         time.Time
}

// User is a backend-administered account
type User struct {
	ID       string
	Username string
	Name     string
	LastName string
	Email    string
}

// AuthResult is a successful login or registration
type AuthResult struct {
	Token string
	User  User
}

// Terminal represents a registered POS register. Checkout requests must
// present a terminal API key; only the bcrypt hash is stored.
type Terminal struct {
	ID         uuid.UUID
	Name       string
	APIKeyHash string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaleEvent is a journal entry for a checkout handled by this gateway
type SaleEvent struct {
	ID         uuid.UUID
	TerminalID uuid.UUID
	Username   string
	State      CheckoutState
	TicketID   *string
	Total      Cents
	ItemCount  int
	Detail     *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IdempotencyKey stores idempotency information for checkout requests
type IdempotencyKey struct {
	Key         string
	SessionID   uuid.UUID
	SaleEventID uuid.UUID
	TicketID    string
	RequestHash string
	CreatedAt   time.Time
}
