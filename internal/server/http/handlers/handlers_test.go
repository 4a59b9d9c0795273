package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
	"github.com/tripmart/fulfillment/internal/server/http/dto"
	testhelpers "github.com/tripmart/fulfillment/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(engine *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch payload := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(payload))
	default:
		raw, _ := json.Marshal(payload)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	engine.ServeHTTP(recorder, req)
	return recorder
}

func newOrderEngine(facade OrderFacade) *gin.Engine {
	engine := gin.New()
	handler := NewOrderHandler(facade)
	engine.PUT("/api/orders/:id", handler.Submit)
	engine.GET("/api/orders/:id", handler.State)
	return engine
}

func newFulfillmentEngine(facade CompletionFacade) *gin.Engine {
	engine := gin.New()
	handler := NewFulfillmentHandler(facade)
	engine.PUT("/api/fulfillments/:id", handler.Complete)
	return engine
}

func sampleOrderRequest() dto.OrderRequest {
	return dto.OrderRequest{
		UserID: "u-1",
		Taxis: []dto.TaxiRequest{
			{ID: "T1", Name: "City Cab", PickupAt: time.Unix(0, 0)},
		},
		Accommodations: []dto.AccommodationRequest{
			{ID: "L1", Name: "Grand Hotel", CheckIn: time.Unix(0, 0), CheckOut: time.Unix(86400, 0)},
		},
	}
}

func TestOrderSubmitAccepted(t *testing.T) {
	var submitted model.Order
	facade := testhelpers.OrderFacadeStub{
		SubmitFn: func(ctx context.Context, order model.Order) error {
			submitted = order
			return nil
		},
	}
	engine := newOrderEngine(facade)

	resp := performRequest(engine, http.MethodPut, "/api/orders/o-1", sampleOrderRequest())
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}

	if submitted.ID != "o-1" || submitted.UserID != "u-1" {
		t.Fatalf("unexpected order %+v", submitted)
	}
	if len(submitted.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(submitted.Items))
	}
	if submitted.Items[0].Category != model.CategoryAccommodation && submitted.Items[1].Category != model.CategoryAccommodation {
		t.Fatalf("accommodation item missing from %+v", submitted.Items)
	}
}

func TestOrderSubmitFlightMapping(t *testing.T) {
	var submitted model.Order
	facade := testhelpers.OrderFacadeStub{
		SubmitFn: func(ctx context.Context, order model.Order) error {
			submitted = order
			return nil
		},
	}
	engine := newOrderEngine(facade)

	body := dto.OrderRequest{
		UserID:  "u-1",
		Flights: []dto.FlightRequest{{ID: "F1", Airline: "AC", FlightNumber: "AC123"}},
	}
	resp := performRequest(engine, http.MethodPut, "/api/orders/o-2", body)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.Code)
	}

	if len(submitted.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(submitted.Items))
	}
	item := submitted.Items[0]
	if item.Category != model.CategoryFlight || item.Flight == nil {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.Flight.Airline != "AC" || item.Flight.FlightNumber != "AC123" {
		t.Fatalf("unexpected flight details %+v", item.Flight)
	}
}

func TestOrderSubmitErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"duplicate order", domainErrors.ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid order", domainErrors.ErrInvalidArgs, http.StatusUnprocessableEntity, "INVALID_ARGS"},
		{"missing timeout policy", domainErrors.ErrBadConfig, http.StatusInternalServerError, "BAD_CONFIG"},
		{"unexpected failure", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := testhelpers.OrderFacadeStub{
				SubmitFn: func(ctx context.Context, order model.Order) error {
					return fmt.Errorf("submit: %w", tc.err)
				},
			}
			engine := newOrderEngine(facade)

			resp := performRequest(engine, http.MethodPut, "/api/orders/o-1", sampleOrderRequest())
			if resp.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, resp.Code)
			}
			if tc.wantError != "" {
				var body dto.ErrorResponse
				if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if body.Error != tc.wantError {
					t.Fatalf("expected error %q, got %q", tc.wantError, body.Error)
				}
			}
		})
	}
}

func TestOrderSubmitMalformedBody(t *testing.T) {
	engine := newOrderEngine(testhelpers.OrderFacadeStub{})

	resp := performRequest(engine, http.MethodPut, "/api/orders/o-1", "{not json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestOrderState(t *testing.T) {
	finalized := time.Unix(1700000000, 0).UTC()
	facade := testhelpers.OrderFacadeStub{
		StateFn: func(ctx context.Context, orderID string) (*model.OrderState, error) {
			return &model.OrderState{
				Order:    model.Order{ID: orderID, UserID: "u-1"},
				Phase:    model.PhaseResolved,
				Accepted: []string{"L1", "T1"},
				Completions: map[string]model.Completion{
					"T1": {Category: model.CategoryTaxi, ItemID: "T1", Outcome: model.OutcomeSucceeded},
					"L1": {Category: model.CategoryAccommodation, ItemID: "L1", Outcome: model.OutcomeFailed},
				},
				AllDispatchAttempted: true,
				PartiallyFulfilled:   true,
				FinalizedAt:          &finalized,
			}, nil
		},
	}
	engine := newOrderEngine(facade)

	resp := performRequest(engine, http.MethodGet, "/api/orders/o-1", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body dto.OrderStateResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.OrderID != "o-1" || body.Phase != string(model.PhaseResolved) {
		t.Fatalf("unexpected body %+v", body)
	}
	if !body.PartiallyFulfilled || body.TimedOut {
		t.Fatalf("unexpected disposition %+v", body)
	}
	if len(body.Completions) != 2 || body.Completions[0].ItemID != "L1" || body.Completions[1].ItemID != "T1" {
		t.Fatalf("completions must be sorted by item id, got %+v", body.Completions)
	}
	if body.FinalizedAt == nil || !body.FinalizedAt.Equal(finalized) {
		t.Fatalf("unexpected finalized_at %v", body.FinalizedAt)
	}
}

func TestOrderStateNotFound(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{
		StateFn: func(ctx context.Context, orderID string) (*model.OrderState, error) {
			return nil, fmt.Errorf("state: %w", domainErrors.ErrNotFound)
		},
	}
	engine := newOrderEngine(facade)

	resp := performRequest(engine, http.MethodGet, "/api/orders/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestFulfillmentComplete(t *testing.T) {
	type call struct {
		orderID  string
		category model.Category
		itemID   string
		outcome  model.Outcome
	}
	var got call
	facade := testhelpers.CompletionFacadeStub{
		CompleteFn: func(ctx context.Context, orderID string, category model.Category, itemID string, outcome model.Outcome) error {
			got = call{orderID, category, itemID, outcome}
			return nil
		},
	}
	engine := newFulfillmentEngine(facade)

	body := dto.CompletionRequest{Category: string(model.CategoryTaxi), ItemID: "T1", Outcome: string(model.OutcomeSucceeded)}
	resp := performRequest(engine, http.MethodPut, "/api/fulfillments/o-1", body)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", resp.Code, resp.Body.String())
	}

	want := call{"o-1", model.CategoryTaxi, "T1", model.OutcomeSucceeded}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestFulfillmentCompleteValidation(t *testing.T) {
	engine := newFulfillmentEngine(testhelpers.CompletionFacadeStub{
		CompleteFn: func(ctx context.Context, orderID string, category model.Category, itemID string, outcome model.Outcome) error {
			t.Error("facade must not be reached for invalid input")
			return nil
		},
	})

	cases := []struct {
		name string
		body any
	}{
		{"malformed json", "{not json"},
		{"unknown category", dto.CompletionRequest{Category: "CRUISE", ItemID: "T1", Outcome: "SUCCEEDED"}},
		{"missing item id", dto.CompletionRequest{Category: "TAXI", Outcome: "SUCCEEDED"}},
		{"unknown outcome", dto.CompletionRequest{Category: "TAXI", ItemID: "T1", Outcome: "MAYBE"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := performRequest(engine, http.MethodPut, "/api/fulfillments/o-1", tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestFulfillmentCompleteUnknownOrder(t *testing.T) {
	facade := testhelpers.CompletionFacadeStub{
		CompleteFn: func(ctx context.Context, orderID string, category model.Category, itemID string, outcome model.Outcome) error {
			return fmt.Errorf("complete: %w", domainErrors.ErrNotFound)
		},
	}
	engine := newFulfillmentEngine(facade)

	body := dto.CompletionRequest{Category: "TAXI", ItemID: "T1", Outcome: "SUCCEEDED"}
	resp := performRequest(engine, http.MethodPut, "/api/fulfillments/missing", body)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
