package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/cart"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// CatalogSource provides the current product list. Satisfied by the
// backend client.
type CatalogSource interface {
	ListProducts(ctx context.Context, token string) ([]domain.Product, error)
}

// Session is one logged-in POS screen: the backend token obtained at
// login, the user it belongs to, the latest catalog snapshot, and the
// in-progress cart. It replaces the browser-held globals of the original
// frontend with state the server passes around explicitly.
type Session struct {
	ID           string
	User         domain.User
	BackendToken string
	ExpiresAt    time.Time

	mu        sync.Mutex
	cart      *cart.Cart
	snapshot  []domain.Product
	refreshed time.Time
}

// RefreshCatalog fetches a fresh snapshot and hands it to the cart. This
// is the explicit invalidation point: callers refresh before validating
// cart mutations and after checkout.
func (s *Session) RefreshCatalog(ctx context.Context, source CatalogSource) error {
	products, err := source.ListProducts(ctx, s.BackendToken)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = products
	s.refreshed = time.Now()
	s.cart.SetCatalog(products)
	return nil
}

// Snapshot returns a copy of the last fetched catalog
func (s *Session) Snapshot() []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// FilterProducts returns catalog entries whose name contains the query,
// case-insensitively, matching the search box behavior of the screens
func (s *Session) FilterProducts(query string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if query == "" {
		out := make([]domain.Product, len(s.snapshot))
		copy(out, s.snapshot)
		return out
	}

	query = strings.ToLower(query)
	out := make([]domain.Product, 0)
	for _, p := range s.snapshot {
		if strings.Contains(strings.ToLower(p.Name), query) {
			out = append(out, p)
		}
	}
	return out
}

// AddProduct adds one unit of a snapshot product to the cart
func (s *Session) AddProduct(productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.snapshot {
		if p.ID == productID {
			return s.cart.AddProduct(p)
		}
	}
	return &errors.ErrNotFound{Resource: "product", ID: productID}
}

// SetQuantity replaces a cart line's quantity
func (s *Session) SetQuantity(productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.SetQuantity(productID, quantity)
}

// RemoveProduct removes a cart line
func (s *Session) RemoveProduct(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.RemoveProduct(productID)
}

// CartView returns the current lines and total for display
func (s *Session) CartView() ([]cart.Line, domain.Cents) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Lines(), s.cart.Total()
}

// SaleRequest derives the checkout payload from the cart
func (s *Session) SaleRequest() (*cart.SaleRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ToSaleRequest()
}

// ClearCart empties the cart, used after a successful checkout or an
// explicit cancel
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
}

// Registry holds the live sessions, keyed by session ID
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewRegistry creates an empty session registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create registers a session for a successful login
func (r *Registry) Create(user domain.User, backendToken string, ttl time.Duration) *Session {
	s := &Session{
		ID:           uuid.NewString(),
		User:         user,
		BackendToken: backendToken,
		ExpiresAt:    time.Now().Add(ttl),
		cart:         cart.New(),
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("Session created",
		zap.String("session_id", s.ID),
		zap.String("username", user.Username),
	)
	return s
}

// Get returns a live session. Expired sessions are evicted on lookup.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Now().After(s.ExpiresAt) {
		r.Delete(id)
		return nil, false
	}
	return s, true
}

// Delete removes a session (logout or expiry)
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
