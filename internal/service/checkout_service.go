package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/backend"
	"github.com/cisnerospos/posgw/internal/cart"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/repository"
	"github.com/cisnerospos/posgw/internal/session"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// ErrIdempotencyConflict is returned when an idempotency key is reused
// with a different cart
var ErrIdempotencyConflict = stderrors.New("idempotency key was already used with a different cart")

// CheckoutSink accepts checkout submissions and resolves tickets.
// Satisfied by the backend client.
type CheckoutSink interface {
	SubmitSale(ctx context.Context, token string, lines []backend.SaleLine, total domain.Cents) (*domain.SaleRecord, error)
	GetTicket(ctx context.Context, token, ticketNumber string) (*domain.SaleRecord, error)
}

type checkoutService struct {
	sink   CheckoutSink
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(sink CheckoutSink, repos *repository.Repositories, logger *zap.Logger) *checkoutService {
	return &checkoutService{
		sink:   sink,
		repos:  repos,
		logger: logger,
	}
}

// Checkout submits the session's cart to the Checkout Sink. Each checkout
// is journaled as a sale event; when an idempotency key is supplied, a
// retried request replays the original ticket instead of submitting a
// second sale.
func (s *checkoutService) Checkout(
	ctx context.Context,
	sess *session.Session,
	terminal *domain.Terminal,
	idempotencyKey string,
) (*domain.SaleRecord, error) {
	// The key lookup runs before the cart is read: a successful checkout
	// clears the cart, so a terminal retrying after a timeout usually
	// arrives with an empty one and must still get the original ticket.
	if idempotencyKey != "" {
		existing, err := s.repos.IdempotencyKey.Get(ctx, idempotencyKey)
		if err == nil {
			if req, reqErr := sess.SaleRequest(); reqErr == nil {
				// A non-empty cart that hashes differently means the key
				// is being reused for a new sale.
				if hashSaleRequest(req) != existing.RequestHash {
					return nil, ErrIdempotencyConflict
				}
			}
			s.logger.Info("Replaying checkout for idempotency key",
				zap.String("key", idempotencyKey),
				zap.String("ticket_number", existing.TicketID),
			)
			ticket, err := s.sink.GetTicket(ctx, sess.BackendToken, existing.TicketID)
			if err != nil {
				return nil, err
			}
			sess.ClearCart()
			return ticket, nil
		}
		var notFound *errors.ErrNotFound
		if !stderrors.As(err, &notFound) {
			return nil, err
		}
	}

	req, err := sess.SaleRequest()
	if err != nil {
		return nil, err
	}

	requestHash := hashSaleRequest(req)

	event := &domain.SaleEvent{
		TerminalID: terminal.ID,
		Username:   sess.User.Username,
		State:      domain.CheckoutStatePending,
		Total:      req.Total,
		ItemCount:  countItems(req),
	}
	if err := s.repos.SaleEvent.Create(ctx, event); err != nil {
		return nil, err
	}

	lines := make([]backend.SaleLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, backend.SaleLine{
			Producto: item.ProductID,
			Cantidad: item.Quantity,
		})
	}

	record, err := s.sink.SubmitSale(ctx, sess.BackendToken, lines, req.Total)
	if err != nil {
		detail := err.Error()
		if updateErr := s.repos.SaleEvent.UpdateState(ctx, event.ID, domain.CheckoutStateFailed, nil, &detail); updateErr != nil {
			s.logger.Warn("Failed to mark sale event failed", zap.Error(updateErr))
		}
		return nil, err
	}

	if err := s.repos.SaleEvent.UpdateState(ctx, event.ID, domain.CheckoutStateSubmitted, &record.TicketNumber, nil); err != nil {
		s.logger.Warn("Failed to mark sale event submitted", zap.Error(err))
	}

	if idempotencyKey != "" {
		sessionID, _ := uuid.Parse(sess.ID)
		// Tickets are addressed upstream by their number, not the raw id.
		idempotency := &domain.IdempotencyKey{
			Key:         idempotencyKey,
			SessionID:   sessionID,
			SaleEventID: event.ID,
			TicketID:    record.TicketNumber,
			RequestHash: requestHash,
		}
		if err := s.repos.IdempotencyKey.Create(ctx, idempotency); err != nil {
			// Don't fail the checkout if idempotency storage fails
			s.logger.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}

	sess.ClearCart()

	s.logger.Info("Checkout submitted",
		zap.String("ticket_id", record.ID),
		zap.String("terminal", terminal.Name),
		zap.String("total", record.Total.String()),
	)
	return record, nil
}

func countItems(req *cart.SaleRequest) int {
	count := 0
	for _, item := range req.Items {
		count += item.Quantity
	}
	return count
}

func hashSaleRequest(req *cart.SaleRequest) string {
	payload, _ := json.Marshal(req.Items)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
