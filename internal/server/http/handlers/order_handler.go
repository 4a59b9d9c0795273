package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
	"github.com/tripmart/fulfillment/internal/server/http/dto"
)

// OrderHandler manages order submission and state-read endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Submit handles PUT /api/orders/:id. Acceptance is a 202 acknowledgement;
// the final disposition is only observable via the state read.
func (h *OrderHandler) Submit(c *gin.Context) {
	orderID := c.Param("id")

	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "MALFORMED_BODY"})
		return
	}

	err := h.facade.SubmitOrder(c.Request.Context(), toOrder(orderID, req))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "ALREADY_EXISTS"})
		case errors.Is(err, domainErrors.ErrInvalidArgs):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: "INVALID_ARGS"})
		case errors.Is(err, domainErrors.ErrBadConfig):
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "BAD_CONFIG"})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusAccepted)
}

// State handles GET /api/orders/:id.
func (h *OrderHandler) State(c *gin.Context) {
	state, err := h.facade.OrderState(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, toOrderStateResponse(*state))
}

func toOrder(orderID string, req dto.OrderRequest) model.Order {
	items := make([]model.Item, 0, len(req.Flights)+len(req.Accommodations)+len(req.Taxis))
	for _, f := range req.Flights {
		items = append(items, model.Item{
			ID:       f.ID,
			Category: model.CategoryFlight,
			Flight:   &model.FlightDetails{Airline: f.Airline, FlightNumber: f.FlightNumber},
		})
	}
	for _, a := range req.Accommodations {
		items = append(items, model.Item{
			ID:            a.ID,
			Category:      model.CategoryAccommodation,
			Accommodation: &model.AccommodationDetails{Name: a.Name, CheckIn: a.CheckIn, CheckOut: a.CheckOut},
		})
	}
	for _, t := range req.Taxis {
		items = append(items, model.Item{
			ID:       t.ID,
			Category: model.CategoryTaxi,
			Taxi:     &model.TaxiDetails{Name: t.Name, PickupAt: t.PickupAt},
		})
	}
	return model.Order{ID: orderID, UserID: req.UserID, Items: items}
}

func toOrderStateResponse(state model.OrderState) dto.OrderStateResponse {
	completions := make([]dto.CompletionView, 0, len(state.Completions))
	for _, record := range state.Completions {
		completions = append(completions, dto.CompletionView{
			Category: string(record.Category),
			ItemID:   record.ItemID,
			Outcome:  string(record.Outcome),
		})
	}
	sort.Slice(completions, func(i, j int) bool { return completions[i].ItemID < completions[j].ItemID })

	return dto.OrderStateResponse{
		OrderID:              state.Order.ID,
		UserID:               state.Order.UserID,
		Phase:                string(state.Phase),
		Accepted:             state.Accepted,
		Rejected:             state.Rejected,
		Completions:          completions,
		AllDispatchAttempted: state.AllDispatchAttempted,
		TimedOut:             state.TimedOut,
		PartiallyFulfilled:   state.PartiallyFulfilled,
		FinalizedAt:          state.FinalizedAt,
	}
}
