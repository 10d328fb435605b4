package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cisnerospos/posgw/internal/cart"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/internal/service"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// ProductResponse is a catalog entry as served by the gateway
type ProductResponse struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Price domain.Cents `json:"price"`
	Stock int          `json:"stock"`
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{ID: p.ID, Name: p.Name, Price: p.Price, Stock: p.Stock}
}

// CartLineResponse is one cart line with its subtotal
type CartLineResponse struct {
	ProductID string       `json:"product_id"`
	Name      string       `json:"name"`
	Price     domain.Cents `json:"price"`
	Quantity  int          `json:"quantity"`
	Subtotal  domain.Cents `json:"subtotal"`
}

// CartResponse is the session cart view
type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total domain.Cents       `json:"total"`
}

func toCartResponse(lines []cart.Line, total domain.Cents) CartResponse {
	items := make([]CartLineResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, CartLineResponse{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal(),
		})
	}
	return CartResponse{Items: items, Total: total}
}

// TicketItemResponse is one line of a persisted sale
type TicketItemResponse struct {
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	Quantity    int          `json:"quantity"`
	Subtotal    domain.Cents `json:"subtotal"`
}

// TicketResponse is a persisted sale as served by the gateway
type TicketResponse struct {
	ID           string               `json:"id"`
	TicketNumber string               `json:"ticket_number"`
	Date         string               `json:"date"`
	Items        []TicketItemResponse `json:"items"`
	Total        domain.Cents         `json:"total"`
}

func toTicketResponse(sale domain.SaleRecord) TicketResponse {
	resp := TicketResponse{
		ID:           sale.ID,
		TicketNumber: sale.TicketNumber,
		Total:        sale.Total,
	}
	if !sale.Date.IsZero() {
		resp.Date = sale.Date.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, item := range sale.Items {
		resp.Items = append(resp.Items, TicketItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return resp
}

// UserResponse is a backend account as served by the gateway
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	LastName string `json:"last_name"`
	Email    string `json:"email"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Name: u.Name, LastName: u.LastName, Email: u.Email}
}

// respondError maps domain, cart and backend errors onto HTTP statuses.
// Backend error messages pass through verbatim so the screens can show
// them inline.
func respondError(c *gin.Context, err error) {
	switch {
	case stderrors.Is(err, cart.ErrOutOfStock),
		stderrors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case stderrors.Is(err, cart.ErrInvalidQuantity),
		stderrors.Is(err, cart.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case stderrors.Is(err, cart.ErrUnknownProduct):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case stderrors.Is(err, service.ErrIdempotencyConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case stderrors.Is(err, service.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		var notFound *errors.ErrNotFound
		var unauthorized *errors.ErrUnauthorized
		var backendErr *errors.ErrBackend
		var malformed *errors.ErrMalformedResponse
		var unavailable *errors.ErrUnavailable
		var transition *errors.ErrInvalidStateTransition
		switch {
		case stderrors.As(err, &notFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case stderrors.As(err, &unauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case stderrors.As(err, &backendErr):
			status := backendErr.StatusCode
			if status < 400 || status > 599 {
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{"error": backendErr.Error()})
		case stderrors.As(err, &malformed):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		case stderrors.As(err, &unavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend unavailable"})
		case stderrors.As(err, &transition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	}
}
