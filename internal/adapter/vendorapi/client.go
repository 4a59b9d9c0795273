package vendorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/tripmart/fulfillment/internal/domain/model"
)

// RejectedError signals that the vendor system refused to accept a
// fulfillment request.
type RejectedError struct {
	Status int
}

func (e RejectedError) Error() string {
	return fmt.Sprintf("fulfillment request rejected with status %d", e.Status)
}

// Client exposes the per-category initiate operations of the vendor system.
// A nil error means the request was accepted, not completed.
type Client interface {
	InitiateFlight(ctx context.Context, orderID string, item model.Item) error
	InitiateTaxi(ctx context.Context, orderID string, item model.Item) error
	InitiateAccommodation(ctx context.Context, orderID string, item model.Item) error
}

// HTTPClient implements Client via the vendor HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// request mirrors the JSON payload the vendor system expects.
type request struct {
	OrderID       string                      `json:"order_id"`
	ItemID        string                      `json:"item_id"`
	Flight        *model.FlightDetails        `json:"flight,omitempty"`
	Taxi          *model.TaxiDetails          `json:"taxi,omitempty"`
	Accommodation *model.AccommodationDetails `json:"accommodation,omitempty"`
}

// NewHTTPClient creates an HTTP vendor client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse vendor url: %w", err)
	}
	// a bare host:port parses as an opaque URL with the host as scheme
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("vendor url %q must be absolute http(s)", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// InitiateFlight asks the vendor system to begin fulfilling a flight item.
func (c *HTTPClient) InitiateFlight(ctx context.Context, orderID string, item model.Item) error {
	return c.initiate(ctx, "flight", request{OrderID: orderID, ItemID: item.ID, Flight: item.Flight})
}

// InitiateTaxi asks the vendor system to begin fulfilling a taxi item.
func (c *HTTPClient) InitiateTaxi(ctx context.Context, orderID string, item model.Item) error {
	return c.initiate(ctx, "taxi", request{OrderID: orderID, ItemID: item.ID, Taxi: item.Taxi})
}

// InitiateAccommodation asks the vendor system to begin fulfilling a lodging item.
func (c *HTTPClient) InitiateAccommodation(ctx context.Context, orderID string, item model.Item) error {
	return c.initiate(ctx, "accommodation", request{OrderID: orderID, ItemID: item.ID, Accommodation: item.Accommodation})
}

func (c *HTTPClient) initiate(ctx context.Context, product string, payload request) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/fulfill/", product)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	c.logger.Error("vendor request rejected",
		slog.String("product", product),
		slog.String("item_id", payload.ItemID),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(respBody)),
	)
	return RejectedError{Status: resp.StatusCode}
}
