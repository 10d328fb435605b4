package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/config"
	"github.com/cisnerospos/posgw/internal/domain"
	"github.com/cisnerospos/posgw/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.BackendConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
	return client, server
}

func TestListProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		io.WriteString(w, `[
			{"_id":"p1","nombre":"Coca-Cola 600ml","precio":20,"cantidad":24},
			{"_id":"p2","nombre":"Sabritas","precio":18.5,"cantidad":30}
		]`)
	})

	products, err := client.ListProducts(context.Background(), "tok-123")

	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, domain.Product{ID: "p1", Name: "Coca-Cola 600ml", Price: 2000, Stock: 24}, products[0])
	assert.Equal(t, domain.Cents(1850), products[1].Price)
}

func TestListProducts_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"unexpected":"object"}`)
	})

	_, err := client.ListProducts(context.Background(), "tok")

	var malformed *errors.ErrMalformedResponse
	assert.ErrorAs(t, err, &malformed)
}

func TestListProducts_MissingID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"nombre":"sin id","precio":5,"cantidad":1}]`)
	})

	_, err := client.ListProducts(context.Background(), "tok")

	var malformed *errors.ErrMalformedResponse
	assert.ErrorAs(t, err, &malformed)
}

func TestSubmitSale_PayloadAndResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/sales", r.URL.Path)

		var got map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.JSONEq(t, `[{"producto":"p1","cantidad":2},{"producto":"p2","cantidad":1}]`, string(got["productos"]))
		assert.JSONEq(t, `75.00`, string(got["total"]))

		io.WriteString(w, `{
			"_id":"s1","numeroTicket":41,"fecha":"2026-08-29T10:30:00Z",
			"productos":[
				{"producto":{"_id":"p1","nombre":"Coca-Cola 600ml"},"cantidad":2,"subtotal":40},
				{"producto":{"_id":"p2","nombre":"Agua"},"cantidad":1,"subtotal":35}
			],
			"total":75,"pdfUrl":"/tickets/s1/pdf"
		}`)
	})

	sale, err := client.SubmitSale(context.Background(), "tok", []SaleLine{
		{Producto: "p1", Cantidad: 2},
		{Producto: "p2", Cantidad: 1},
	}, 7500)

	require.NoError(t, err)
	assert.Equal(t, "s1", sale.ID)
	assert.Equal(t, "41", sale.TicketNumber)
	assert.Equal(t, domain.Cents(7500), sale.Total)
	require.Len(t, sale.Items, 2)
	assert.Equal(t, "Coca-Cola 600ml", sale.Items[0].ProductName)
	assert.Equal(t, domain.Cents(4000), sale.Items[0].Subtotal)
	assert.Equal(t, client.TicketPDFURL(sale), client.baseURL+"/tickets/s1/pdf")
}

func TestTicketPDFURL_FallbackUsesTicketNumber(t *testing.T) {
	client := NewClient(config.BackendConfig{BaseURL: "http://pos.example"}, zap.NewNop())

	sale := &domain.SaleRecord{ID: "64fa0c", TicketNumber: "77"}
	assert.Equal(t, "http://pos.example/api/tickets/77/pdf", client.TicketPDFURL(sale))

	absolute := "http://cdn.example/t/77.pdf"
	sale.PDFURL = &absolute
	assert.Equal(t, absolute, client.TicketPDFURL(sale))
}

func TestClearInventory(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	err := client.ClearInventory(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/inventory/clear", gotPath)
}

func TestBackendError_MessageSurfacedVerbatim(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"message":"No hay suficiente stock"}`)
	})

	_, err := client.SubmitSale(context.Background(), "tok", []SaleLine{{Producto: "p1", Cantidad: 1}}, 100)

	var backendErr *errors.ErrBackend
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "No hay suficiente stock", backendErr.Message)
	assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "cashier", creds["username"])

		io.WriteString(w, `{"token":"backend-token","user":{"_id":"u1","username":"cashier","nombre":"Ana","apellido":"Luna","email":"ana@example.com"}}`)
	})

	result, err := client.Login(context.Background(), "cashier", "secret")

	require.NoError(t, err)
	assert.Equal(t, "backend-token", result.Token)
	assert.Equal(t, "Ana", result.User.Name)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Credenciales incorrectas"}`)
	})

	_, err := client.Login(context.Background(), "cashier", "wrong")

	var unauthorized *errors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, "Credenciales incorrectas", unauthorized.Message)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // every request now fails at the transport level

	client := NewClient(config.BackendConfig{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())

	for i := 0; i < 6; i++ {
		_, err := client.ListProducts(context.Background(), "tok")
		var unavailable *errors.ErrUnavailable
		require.ErrorAs(t, err, &unavailable)
	}
}
