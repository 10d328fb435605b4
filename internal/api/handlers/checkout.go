package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/api/middleware"
	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/repository"
	"github.com/cisnerospos/posgw/internal/session"
)

// IdempotencyKeyHeader lets a terminal retry a checkout safely after a
// timeout; replays return the original ticket.
const IdempotencyKeyHeader = "Idempotency-Key"

// CheckoutService submits a session's cart as a sale
type CheckoutService interface {
	Checkout(ctx context.Context, sess *session.Session, terminal *domain.Terminal, idempotencyKey string) (*domain.SaleRecord, error)
}

// HandleCheckout handles POST /v1/checkout. The terminal middleware has
// already resolved the calling terminal from its API key.
func HandleCheckout(checkouts CheckoutService, client *backend.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.GetSessionFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		terminal, ok := middleware.GetTerminalFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "terminal key required"})
			return
		}

		record, err := checkouts.Checkout(c.Request.Context(), sess, terminal, c.GetHeader(IdempotencyKeyHeader))
		if err != nil {
			respondError(c, err)
			return
		}

		// Stock changed server-side; pull a fresh snapshot so the next
		// sale starts from current counts.
		if err := sess.RefreshCatalog(c.Request.Context(), client); err != nil {
			logger.Warn("Failed to refresh catalog after checkout", zap.Error(err))
		}

		c.JSON(http.StatusCreated, toTicketResponse(*record))
	}
}

// SaleEventResponse is one journal entry for a checkout handled by this
// gateway
type SaleEventResponse struct {
	ID           string       `json:"id"`
	TerminalID   string       `json:"terminal_id"`
	Username     string       `json:"username"`
	State        string       `json:"state"`
	TicketNumber *string      `json:"ticket_number,omitempty"`
	Total        domain.Cents `json:"total"`
	ItemCount    int          `json:"item_count"`
	Detail       *string      `json:"detail,omitempty"`
	CreatedAt    string       `json:"created_at"`
}

// HandleCheckoutJournal handles GET /v1/checkout/journal. The journal is
// gateway-local operational state: it records every checkout this gateway
// handled, including failed submissions the backend never saw.
func HandleCheckoutJournal(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetSessionFromContext(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 500 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
				return
			}
			limit = n
		}

		events, err := repos.SaleEvent.ListRecent(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]SaleEventResponse, 0, len(events))
		for _, event := range events {
			out = append(out, SaleEventResponse{
				ID:           event.ID.String(),
				TerminalID:   event.TerminalID.String(),
				Username:     event.Username,
				State:        string(event.State),
				TicketNumber: event.TicketID,
				Total:        event.Total,
				ItemCount:    event.ItemCount,
				Detail:       event.Detail,
				CreatedAt:    event.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			})
		}
		c.JSON(http.StatusOK, gin.H{"events": out, "count": len(out)})
	}
}
