package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// SaleLine references a product and quantity in a checkout submission
type SaleLine struct {
	Producto string `json:"producto"`
	Cantidad int    `json:"cantidad"`
}

// saleSubmission is the Checkout Sink payload. The client-computed total
// rides along because the backend expects it; the backend recomputes and
// its figure is authoritative.
type saleSubmission struct {
	Productos []SaleLine   `json:"productos"`
	Total     domain.Cents `json:"total"`
}

// salePayload is the backend's persisted sale (ticket) shape
type salePayload struct {
	ID           string            `json:"_id"`
	NumeroTicket json.Number       `json:"numeroTicket"`
	Fecha        *backendTime      `json:"fecha"`
	Productos    []saleItemPayload `json:"productos"`
	Total        domain.Cents      `json:"total"`
	PDFURL       *string           `json:"pdfUrl,omitempty"`
}

type saleItemPayload struct {
	Producto productRef   `json:"producto"`
	Cantidad int          `json:"cantidad"`
	Subtotal domain.Cents `json:"subtotal"`
}

func (p salePayload) validate(endpoint string) error {
	if p.ID == "" {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: "sale missing _id"}
	}
	if p.Total < 0 {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: "sale has negative total"}
	}
	return nil
}

func (p salePayload) toDomain() domain.SaleRecord {
	record := domain.SaleRecord{
		ID:           p.ID,
		TicketNumber: p.NumeroTicket.String(),
		Total:        p.Total,
		PDFURL:       p.PDFURL,
	}
	if record.TicketNumber == "" {
		record.TicketNumber = p.ID
	}
	if p.Fecha != nil {
		record.Date = time.Time(*p.Fecha)
	}
	for _, item := range p.Productos {
		record.Items = append(record.Items, domain.SaleItem{
			ProductID:   item.Producto.ID,
			ProductName: item.Producto.Nombre,
			Quantity:    item.Cantidad,
			Subtotal:    item.Subtotal,
		})
	}
	return record
}

// SalesFilter narrows a sales listing to a date range and report period
type SalesFilter struct {
	StartDate string
	EndDate   string
	Period    domain.ReportPeriod
}

// ListSales fetches persisted sales, optionally filtered
func (c *Client) ListSales(ctx context.Context, token string, filter *SalesFilter) ([]domain.SaleRecord, error) {
	path := "/api/sales"
	if filter != nil {
		query := url.Values{}
		if filter.StartDate != "" {
			query.Set("startDate", filter.StartDate)
		}
		if filter.EndDate != "" {
			query.Set("endDate", filter.EndDate)
		}
		if filter.Period != "" {
			query.Set("type", string(filter.Period))
		}
		if encoded := query.Encode(); encoded != "" {
			path += "?" + encoded
		}
	}

	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	var payloads []salePayload
	if err := decodeInto("/api/sales", body, &payloads); err != nil {
		return nil, err
	}

	sales := make([]domain.SaleRecord, 0, len(payloads))
	for _, p := range payloads {
		if err := p.validate("/api/sales"); err != nil {
			return nil, err
		}
		sales = append(sales, p.toDomain())
	}
	return sales, nil
}

// SubmitSale posts a checkout to the Checkout Sink and returns the
// persisted ticket
func (c *Client) SubmitSale(ctx context.Context, token string, lines []SaleLine, total domain.Cents) (*domain.SaleRecord, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/sales", token, saleSubmission{
		Productos: lines,
		Total:     total,
	})
	if err != nil {
		return nil, err
	}

	var payload salePayload
	if err := decodeInto("/api/sales", body, &payload); err != nil {
		return nil, err
	}
	if err := payload.validate("/api/sales"); err != nil {
		return nil, err
	}
	record := payload.toDomain()
	return &record, nil
}

// ListTickets fetches all persisted tickets
func (c *Client) ListTickets(ctx context.Context, token string) ([]domain.SaleRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/tickets", token, nil)
	if err != nil {
		return nil, err
	}

	var payloads []salePayload
	if err := decodeInto("/api/tickets", body, &payloads); err != nil {
		return nil, err
	}

	tickets := make([]domain.SaleRecord, 0, len(payloads))
	for _, p := range payloads {
		if err := p.validate("/api/tickets"); err != nil {
			return nil, err
		}
		tickets = append(tickets, p.toDomain())
	}
	return tickets, nil
}

// GetTicket fetches a single ticket by number
func (c *Client) GetTicket(ctx context.Context, token, ticketNumber string) (*domain.SaleRecord, error) {
	path := "/api/tickets/" + url.PathEscape(ticketNumber)
	body, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}

	var payload salePayload
	if err := decodeInto(path, body, &payload); err != nil {
		return nil, err
	}
	if err := payload.validate(path); err != nil {
		return nil, err
	}
	record := payload.toDomain()
	return &record, nil
}

// TicketPDFURL resolves the absolute URL of a ticket's PDF. Sales created
// before the backend started returning pdfUrl fall back to the generation
// endpoint, which is keyed by ticket number.
func (c *Client) TicketPDFURL(sale *domain.SaleRecord) string {
	if sale.PDFURL != nil && *sale.PDFURL != "" {
		if strings.HasPrefix(*sale.PDFURL, "http://") || strings.HasPrefix(*sale.PDFURL, "https://") {
			return *sale.PDFURL
		}
		return c.baseURL + *sale.PDFURL
	}
	return fmt.Sprintf("%s/api/tickets/%s/pdf", c.baseURL, url.PathEscape(sale.TicketNumber))
}
