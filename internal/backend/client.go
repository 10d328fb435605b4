package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/cisnerospos/posgw/internal/config"
	"github.com/cisnerospos/posgw/pkg/errors"
)

// Client talks to the upstream POS backend over REST/JSON. It owns the
// Catalog Source and Checkout Sink roles plus the auth, ticket and user
// endpoints the screens consume.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*httpResult]
	logger     *zap.Logger
}

type httpResult struct {
	status int
	body   []byte
}

// NewClient creates a new POS backend client
func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	// Normalize base URL - remove trailing slashes
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*httpResult](gobreaker.Settings{
		Name:    "pos-backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Backend circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// errorEnvelope is the backend's error body; some endpoints use "message",
// others "error"
type errorEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do executes a request against the backend. Only transport failures count
// against the circuit breaker; HTTP error statuses are returned as
// ErrBackend with the backend's message verbatim.
func (c *Client) do(ctx context.Context, method, path, token string, payload interface{}) ([]byte, error) {
	url := c.baseURL + path

	var bodyReader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	result, err := c.breaker.Execute(func() (*httpResult, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &httpResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		c.logger.Error("Backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, &errors.ErrUnavailable{Cause: err}
	}

	if result.status < 200 || result.status > 299 {
		var envelope errorEnvelope
		_ = json.Unmarshal(result.body, &envelope)
		message := envelope.Message
		if message == "" {
			message = envelope.Error
		}
		if result.status == http.StatusUnauthorized {
			if message == "" {
				message = "invalid credentials"
			}
			return nil, &errors.ErrUnauthorized{Message: message}
		}
		return nil, &errors.ErrBackend{StatusCode: result.status, Message: message}
	}

	return result.body, nil
}

// getRaw fetches a non-JSON body (PDF passthrough)
func (c *Client) getRaw(ctx context.Context, path, token, accept string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	result, err := c.breaker.Execute(func() (*httpResult, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return &httpResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, "", &errors.ErrUnavailable{Cause: err}
	}

	if result.status != http.StatusOK {
		var envelope errorEnvelope
		_ = json.Unmarshal(result.body, &envelope)
		message := envelope.Message
		if message == "" {
			message = envelope.Error
		}
		return nil, "", &errors.ErrBackend{StatusCode: result.status, Message: message}
	}

	return result.body, accept, nil
}

func decodeInto(endpoint string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}
