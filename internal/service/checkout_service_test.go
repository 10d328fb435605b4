package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/cart"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/repository"
	"github.com/cisnerospos/posgw/internal/session"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// In-memory fakes for the gateway repositories and the Checkout Sink.

type fakeSink struct {
	record     *domain.SaleRecord
	err        error
	submits    int
	gotLines   []backend.SaleLine
	gotTotal   domain.Cents
	tickets    map[string]*domain.SaleRecord
	getTickets int
}

func (f *fakeSink) SubmitSale(ctx context.Context, token string, lines []backend.SaleLine, total domain.Cents) (*domain.SaleRecord, error) {
	f.submits++
	f.gotLines = lines
	f.gotTotal = total
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeSink) GetTicket(ctx context.Context, token, ticketNumber string) (*domain.SaleRecord, error) {
	f.getTickets++
	if t, ok := f.tickets[ticketNumber]; ok {
		return t, nil
	}
	return nil, &errors.ErrNotFound{Resource: "ticket", ID: ticketNumber}
}

type fakeSaleEvents struct {
	events map[uuid.UUID]*domain.SaleEvent
}

func (f *fakeSaleEvents) Create(ctx context.Context, event *domain.SaleEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	f.events[event.ID] = event
	return nil
}

func (f *fakeSaleEvents) UpdateState(ctx context.Context, id uuid.UUID, state domain.CheckoutState, ticketID, detail *string) error {
	event, ok := f.events[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "sale event", ID: id.String()}
	}
	event.State = state
	if ticketID != nil {
		event.TicketID = ticketID
	}
	if detail != nil {
		event.Detail = detail
	}
	return nil
}

func (f *fakeSaleEvents) GetByID(ctx context.Context, id uuid.UUID) (*domain.SaleEvent, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "sale event", ID: id.String()}
	}
	return event, nil
}

func (f *fakeSaleEvents) ListRecent(ctx context.Context, limit int) ([]*domain.SaleEvent, error) {
	out := make([]*domain.SaleEvent, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

type fakeIdempotencyKeys struct {
	keys map[string]*domain.IdempotencyKey
}

func (f *fakeIdempotencyKeys) Get(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	if k, ok := f.keys[key]; ok {
		return k, nil
	}
	return nil, &errors.ErrNotFound{Resource: "idempotency key", ID: key}
}

func (f *fakeIdempotencyKeys) Create(ctx context.Context, idempotency *domain.IdempotencyKey) error {
	f.keys[idempotency.Key] = idempotency
	return nil
}

type catalogStub []domain.Product

func (c catalogStub) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	return c, nil
}

func newCheckoutFixture(t *testing.T) (*checkoutService, *session.Session, *fakeSink, *fakeSaleEvents, *fakeIdempotencyKeys) {
	t.Helper()

	// Tickets are resolved by number upstream, so the fake keys by "41".
	sink := &fakeSink{
		record: &domain.SaleRecord{ID: "s1", TicketNumber: "41", Total: 7500},
		tickets: map[string]*domain.SaleRecord{
			"41": {ID: "s1", TicketNumber: "41", Total: 7500},
		},
	}
	events := &fakeSaleEvents{events: make(map[uuid.UUID]*domain.SaleEvent)}
	keys := &fakeIdempotencyKeys{keys: make(map[string]*domain.IdempotencyKey)}
	repos := &repository.Repositories{SaleEvent: events, IdempotencyKey: keys}

	registry := session.NewRegistry(zap.NewNop())
	sess := registry.Create(domain.User{Username: "cashier"}, "backend-tok", time.Hour)
	require.NoError(t, sess.RefreshCatalog(context.Background(), catalogStub{
		{ID: "p1", Name: "Coca-Cola", Price: 2000, Stock: 5},
		{ID: "p2", Name: "Agua", Price: 3500, Stock: 5},
	}))
	require.NoError(t, sess.AddProduct("p1"))
	require.NoError(t, sess.AddProduct("p1"))
	require.NoError(t, sess.AddProduct("p2"))

	svc := NewCheckoutService(sink, repos, zap.NewNop())
	return svc, sess, sink, events, keys
}

func terminalFixture() *domain.Terminal {
	return &domain.Terminal{ID: uuid.New(), Name: "caja-1", IsActive: true}
}

func TestCheckout_Success(t *testing.T) {
	svc, sess, sink, events, _ := newCheckoutFixture(t)

	record, err := svc.Checkout(context.Background(), sess, terminalFixture(), "")

	require.NoError(t, err)
	assert.Equal(t, "s1", record.ID)
	assert.Equal(t, []backend.SaleLine{
		{Producto: "p1", Cantidad: 2},
		{Producto: "p2", Cantidad: 1},
	}, sink.gotLines)
	assert.Equal(t, domain.Cents(7500), sink.gotTotal)

	// The cart is cleared after a successful checkout.
	lines, total := sess.CartView()
	assert.Empty(t, lines)
	assert.Equal(t, domain.Cents(0), total)

	// The journal entry moved to SUBMITTED with the ticket number recorded.
	require.Len(t, events.events, 1)
	for _, event := range events.events {
		assert.Equal(t, domain.CheckoutStateSubmitted, event.State)
		require.NotNil(t, event.TicketID)
		assert.Equal(t, "41", *event.TicketID)
		assert.Equal(t, 3, event.ItemCount)
		assert.Equal(t, domain.Cents(7500), event.Total)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, sess, sink, events, _ := newCheckoutFixture(t)
	sess.ClearCart()

	_, err := svc.Checkout(context.Background(), sess, terminalFixture(), "")

	assert.ErrorIs(t, err, cart.ErrEmptyCart)
	assert.Zero(t, sink.submits)
	assert.Empty(t, events.events)
}

func TestCheckout_BackendFailureJournaledAndCartKept(t *testing.T) {
	svc, sess, sink, events, _ := newCheckoutFixture(t)
	sink.err = &errors.ErrBackend{StatusCode: 400, Message: "No hay suficiente stock"}

	_, err := svc.Checkout(context.Background(), sess, terminalFixture(), "")

	var backendErr *errors.ErrBackend
	require.ErrorAs(t, err, &backendErr)

	// The cart stays intact so the cashier can retry.
	lines, _ := sess.CartView()
	assert.Len(t, lines, 2)

	require.Len(t, events.events, 1)
	for _, event := range events.events {
		assert.Equal(t, domain.CheckoutStateFailed, event.State)
		require.NotNil(t, event.Detail)
		assert.Contains(t, *event.Detail, "No hay suficiente stock")
	}
}

func TestCheckout_ReplayAfterCartCleared(t *testing.T) {
	svc, sess, sink, _, keys := newCheckoutFixture(t)

	first, err := svc.Checkout(context.Background(), sess, terminalFixture(), "key-1")
	require.NoError(t, err)
	require.Len(t, keys.keys, 1)
	assert.Equal(t, "41", keys.keys["key-1"].TicketID)

	// The successful checkout cleared the cart. A terminal that timed out
	// and retries with the same key arrives exactly like this, and must
	// get the original ticket back, not an empty-cart error.
	second, err := svc.Checkout(context.Background(), sess, terminalFixture(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TicketNumber, second.TicketNumber)
	assert.Equal(t, 1, sink.submits)
	assert.Equal(t, 1, sink.getTickets)
}

func TestCheckout_ReplayWithIdenticalRebuiltCart(t *testing.T) {
	svc, sess, sink, _, _ := newCheckoutFixture(t)

	first, err := svc.Checkout(context.Background(), sess, terminalFixture(), "key-1")
	require.NoError(t, err)

	// Rebuilding the same cart and retrying with the same key still
	// replays instead of double-selling.
	require.NoError(t, sess.AddProduct("p1"))
	require.NoError(t, sess.AddProduct("p1"))
	require.NoError(t, sess.AddProduct("p2"))

	second, err := svc.Checkout(context.Background(), sess, terminalFixture(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, sink.submits)
	assert.Equal(t, 1, sink.getTickets)

	// The replay also clears the rebuilt cart.
	lines, _ := sess.CartView()
	assert.Empty(t, lines)
}

func TestCheckout_IdempotencyKeyReuseWithDifferentCart(t *testing.T) {
	svc, sess, _, _, _ := newCheckoutFixture(t)

	_, err := svc.Checkout(context.Background(), sess, terminalFixture(), "key-1")
	require.NoError(t, err)

	require.NoError(t, sess.AddProduct("p2"))

	_, err = svc.Checkout(context.Background(), sess, terminalFixture(), "key-1")
	assert.ErrorIs(t, err, ErrIdempotencyConflict)
}
