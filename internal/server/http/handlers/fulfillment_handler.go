package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/tripmart/fulfillment/internal/domain/errors"
	"github.com/tripmart/fulfillment/internal/domain/model"
	"github.com/tripmart/fulfillment/internal/server/http/dto"
)

// FulfillmentHandler absorbs completion notifications from vendor systems.
type FulfillmentHandler struct {
	facade CompletionFacade
}

// NewFulfillmentHandler constructs FulfillmentHandler.
func NewFulfillmentHandler(facade CompletionFacade) *FulfillmentHandler {
	return &FulfillmentHandler{facade: facade}
}

// Complete handles PUT /api/fulfillments/:id. Delivery upstream is
// at-least-once; duplicates are absorbed downstream, so a 202 only means the
// notification was taken in.
func (h *FulfillmentHandler) Complete(c *gin.Context) {
	orderID := c.Param("id")

	var req dto.CompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "MALFORMED_BODY"})
		return
	}

	category := model.Category(req.Category)
	outcome := model.Outcome(req.Outcome)
	if !category.Valid() || req.ItemID == "" || (outcome != model.OutcomeSucceeded && outcome != model.OutcomeFailed) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "INVALID_ARGS"})
		return
	}

	err := h.facade.CompleteFulfillment(c.Request.Context(), orderID, category, req.ItemID, outcome)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Status(http.StatusAccepted)
}
