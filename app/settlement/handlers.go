package settlement

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/models"
)

// Handler handles HTTP requests for settlement
type Handler struct {
	service Service
}

// NewHandler creates a new settlement handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// OverrideOutcome godoc
// @Summary Override round outcome
// @Description Set the outcome of the market's live round while it shows results, then settle it
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Param request body OverrideRequest true "Outcome"
// @Success 200 {object} api.Response{data=OverrideResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/admin/markets/{id}/override [put]
func (h *Handler) OverrideOutcome(c *gin.Context) {
	adminID := api.UserIDFromContext(c)
	if adminID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	resp, err := h.service.OverrideOutcome(c.Request.Context(), adminID, c.Param("id"), req.Outcome)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRecordNotFound):
			api.NotFoundResponse(c, "Market")
		case errors.Is(err, models.ErrInvalidSelection):
			api.ErrorResponse(c, http.StatusBadRequest, "INVALID_SELECTION", err.Error(), nil)
		case errors.Is(err, models.ErrRoundNotInResults):
			api.ErrorResponse(c, http.StatusConflict, "ROUND_NOT_IN_RESULTS", err.Error(), nil)
		case errors.Is(err, models.ErrConcurrentModification):
			api.ErrorResponse(c, http.StatusConflict, "CONFLICT", "Round is already settled", nil)
		default:
			api.InternalErrorResponse(c, "Failed to override outcome")
		}
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Outcome overridden successfully", resp)
}

// GetSummary godoc
// @Summary Get settlement summary
// @Description Get the payout summary of a settled round
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Param round_id path int true "Round ID"
// @Success 200 {object} api.Response{data=SummaryResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/admin/markets/{id}/rounds/{round_id}/settlement [get]
func (h *Handler) GetSummary(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("round_id"), 10, 64)
	if err != nil {
		api.BadRequestResponse(c, "Invalid round ID format")
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), c.Param("id"), roundID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Settlement")
			return
		}
		api.InternalErrorResponse(c, "Failed to get settlement")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Settlement retrieved successfully", ToSummaryResponse(summary))
}
