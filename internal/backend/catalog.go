package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// productPayload is the backend's product shape
type productPayload struct {
	ID       string       `json:"_id"`
	Nombre   string       `json:"nombre"`
	Precio   domain.Cents `json:"precio"`
	Cantidad int          `json:"cantidad"`
}

func (p productPayload) validate(endpoint string) error {
	if p.ID == "" {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: "product missing _id"}
	}
	if p.Precio < 0 {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: "product has negative price"}
	}
	if p.Cantidad < 0 {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: "product has negative stock"}
	}
	return nil
}

func (p productPayload) toDomain() domain.Product {
	return domain.Product{
		ID:    p.ID,
		Name:  p.Nombre,
		Price: p.Precio,
		Stock: p.Cantidad,
	}
}

// ProductInput is the create/update payload for a product
type ProductInput struct {
	Nombre   string       `json:"nombre"`
	Precio   domain.Cents `json:"precio"`
	Cantidad int          `json:"cantidad"`
}

// ListProducts fetches the current catalog snapshot
func (c *Client) ListProducts(ctx context.Context, token string) ([]domain.Product, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/products", token, nil)
	if err != nil {
		return nil, err
	}

	var payloads []productPayload
	if err := decodeInto("/api/products", body, &payloads); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(payloads))
	for _, p := range payloads {
		if err := p.validate("/api/products"); err != nil {
			return nil, err
		}
		products = append(products, p.toDomain())
	}
	return products, nil
}

// CreateProduct creates a catalog entry
func (c *Client) CreateProduct(ctx context.Context, token string, input ProductInput) (*domain.Product, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/products", token, input)
	if err != nil {
		return nil, err
	}

	var payload productPayload
	if err := decodeInto("/api/products", body, &payload); err != nil {
		return nil, err
	}
	if err := payload.validate("/api/products"); err != nil {
		return nil, err
	}
	product := payload.toDomain()
	return &product, nil
}

// UpdateProduct updates a catalog entry
func (c *Client) UpdateProduct(ctx context.Context, token, productID string, input ProductInput) (*domain.Product, error) {
	path := "/api/products/" + productID
	body, err := c.do(ctx, http.MethodPut, path, token, input)
	if err != nil {
		return nil, err
	}

	var payload productPayload
	if err := decodeInto(path, body, &payload); err != nil {
		return nil, err
	}
	if err := payload.validate(path); err != nil {
		return nil, err
	}
	product := payload.toDomain()
	return &product, nil
}

// DeleteProduct removes a catalog entry
func (c *Client) DeleteProduct(ctx context.Context, token, productID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/products/"+productID, token, nil)
	return err
}

// inventoryPayload is the backend's inventory count shape; producto may be
// populated as an object or come back as a bare id string
type inventoryPayload struct {
	ID               string       `json:"_id"`
	Producto         productRef   `json:"producto"`
	ExistenciaFisica int          `json:"existenciaFisica"`
	Observaciones    string       `json:"observaciones"`
	Fecha            *backendTime `json:"fecha,omitempty"`
}

// InventoryInput is the create/update payload for an inventory count
type InventoryInput struct {
	Producto         string `json:"producto"`
	ExistenciaFisica int    `json:"existenciaFisica"`
	Observaciones    string `json:"observaciones,omitempty"`
}

// ListInventory fetches the inventory count records
func (c *Client) ListInventory(ctx context.Context, token string) ([]domain.InventoryRecord, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/inventory", token, nil)
	if err != nil {
		return nil, err
	}

	var payloads []inventoryPayload
	if err := decodeInto("/api/inventory", body, &payloads); err != nil {
		return nil, err
	}

	records := make([]domain.InventoryRecord, 0, len(payloads))
	for _, p := range payloads {
		records = append(records, p.toDomain())
	}
	return records, nil
}

// CreateInventory records a new inventory count
func (c *Client) CreateInventory(ctx context.Context, token string, input InventoryInput) (*domain.InventoryRecord, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/inventory", token, input)
	if err != nil {
		return nil, err
	}

	var payload inventoryPayload
	if err := decodeInto("/api/inventory", body, &payload); err != nil {
		return nil, err
	}
	record := payload.toDomain()
	return &record, nil
}

// UpdateInventory updates an inventory count
func (c *Client) UpdateInventory(ctx context.Context, token, recordID string, input InventoryInput) (*domain.InventoryRecord, error) {
	path := "/api/inventory/" + recordID
	body, err := c.do(ctx, http.MethodPut, path, token, input)
	if err != nil {
		return nil, err
	}

	var payload inventoryPayload
	if err := decodeInto(path, body, &payload); err != nil {
		return nil, err
	}
	record := payload.toDomain()
	return &record, nil
}

// ClearInventory deletes every inventory count record
func (c *Client) ClearInventory(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/inventory/clear", token, nil)
	return err
}

// InventoryReportPDF fetches the backend-generated inventory report
func (c *Client) InventoryReportPDF(ctx context.Context, token string) ([]byte, error) {
	body, _, err := c.getRaw(ctx, "/api/inventory/report", token, "application/pdf")
	return body, err
}

func (p inventoryPayload) toDomain() domain.InventoryRecord {
	record := domain.InventoryRecord{
		ID:           p.ID,
		ProductID:    p.Producto.ID,
		ProductName:  p.Producto.Nombre,
		CountedStock: p.ExistenciaFisica,
		Observations: p.Observaciones,
	}
	if p.Fecha != nil {
		record.Date = time.Time(*p.Fecha)
	}
	return record
}

// productRef decodes a product reference that is either an embedded object
// or a bare id string
type productRef struct {
	ID     string       `json:"_id"`
	Nombre string       `json:"nombre"`
	Precio domain.Cents `json:"precio"`
}

func (r *productRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		r.ID = string(data[1 : len(data)-1])
		return nil
	}
	type alias productRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = productRef(a)
	return nil
}

// backendTime accepts the backend's date strings (RFC 3339 with or without
// fractional seconds)
type backendTime time.Time

func (t *backendTime) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	s = trimQuotes(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = backendTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", s)
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
