package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/auth"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/repository"
	"github.com/cisnerospos/posgw/internal/session"
	"github.com/cisnerospos/posgw/pkg/errors"
)

type stubSaleEvents struct {
	events   []*domain.SaleEvent
	gotLimit int
}

func (s *stubSaleEvents) Create(ctx context.Context, event *domain.SaleEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubSaleEvents) UpdateState(ctx context.Context, id uuid.UUID, state domain.CheckoutState, ticketID, detail *string) error {
	return nil
}

func (s *stubSaleEvents) GetByID(ctx context.Context, id uuid.UUID) (*domain.SaleEvent, error) {
	return nil, &errors.ErrNotFound{Resource: "sale event", ID: id.String()}
}

func (s *stubSaleEvents) ListRecent(ctx context.Context, limit int) ([]*domain.SaleEvent, error) {
	s.gotLimit = limit
	if limit < len(s.events) {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func newJournalFixture(t *testing.T, events *stubSaleEvents) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	sessions := session.NewRegistry(logger)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	sess := sessions.Create(domain.User{Username: "cashier"}, "backend-tok", time.Hour)
	token, _, err := tokens.Generate(sess.ID, "cashier")
	require.NoError(t, err)

	repos := &repository.Repositories{SaleEvent: events}
	router := gin.New()
	router.GET("/checkout/journal",
		middleware.AuthMiddleware(tokens, sessions, logger),
		HandleCheckoutJournal(repos, logger),
	)
	return router, token
}

func TestCheckoutJournal_ListsRecentEvents(t *testing.T) {
	ticket := "41"
	events := &stubSaleEvents{events: []*domain.SaleEvent{{
		ID:         uuid.New(),
		TerminalID: uuid.New(),
		Username:   "cashier",
		State:      domain.CheckoutStateSubmitted,
		TicketID:   &ticket,
		Total:      7500,
		ItemCount:  3,
		CreatedAt:  time.Now(),
	}}}
	router, token := newJournalFixture(t, events)

	req := httptest.NewRequest(http.MethodGet, "/checkout/journal", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, events.gotLimit)
	assert.Contains(t, w.Body.String(), `"ticket_number":"41"`)
	assert.Contains(t, w.Body.String(), `"state":"SUBMITTED"`)
	assert.Contains(t, w.Body.String(), `"total":75.00`)
}

func TestCheckoutJournal_LimitValidation(t *testing.T) {
	router, token := newJournalFixture(t, &stubSaleEvents{})

	req := httptest.NewRequest(http.MethodGet, "/checkout/journal?limit=0", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
