package markets

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/internal/validator"
	"github.com/joefazee/roundbet/models"
)

// Handler handles HTTP requests for markets
type Handler struct {
	service Service
	now     func() time.Time
}

// NewHandler creates a new market handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
		now:     time.Now,
	}
}

// GetMarkets godoc
// @Summary List markets
// @Description List the active markets with their candidate domains and whether they are open now
// @Tags markets
// @Produce json
// @Success 200 {object} api.Response{data=[]MarketResponse}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	markets, err := h.service.List(c.Request.Context())
	if err != nil {
		api.InternalErrorResponse(c, "Failed to get markets")
		return
	}

	api.ListResponse(c, "Markets retrieved successfully", ToMarketResponseList(markets, h.now()), len(markets))
}

// GetMarketByID godoc
// @Summary Get market
// @Description Get one market by its slug
// @Tags markets
// @Produce json
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=MarketResponse}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id} [get]
func (h *Handler) GetMarketByID(c *gin.Context) {
	market, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err, "get market")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Market retrieved successfully", ToMarketResponse(market, h.now()))
}

// UpdateSchedule godoc
// @Summary Update market schedule
// @Description Set the daily open and close times of a market; send nulls to clear the window
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Param request body ScheduleRequest true "Schedule"
// @Success 200 {object} api.Response{data=MarketResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/admin/markets/{id}/schedule [put]
func (h *Handler) UpdateSchedule(c *gin.Context) {
	adminID := api.UserIDFromContext(c)
	if adminID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	market, err := h.service.UpdateSchedule(c.Request.Context(), adminID, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err, "update market schedule")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Market schedule updated successfully", ToMarketResponse(market, h.now()))
}

// handleServiceError handles common service errors with appropriate responses
func (h *Handler) handleServiceError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, models.ErrRecordNotFound):
		api.NotFoundResponse(c, "Market")
	case errors.Is(err, models.ErrInvalidSchedule):
		api.BadRequestResponse(c, err.Error())
	default:
		api.InternalErrorResponse(c, "Failed to "+operation)
	}
}
