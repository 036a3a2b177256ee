package wagers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/models"
)

// Handler handles HTTP requests for wagers
type Handler struct {
	service Service
}

// NewHandler creates a new wager handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// PlaceWager godoc
// @Summary Place a wager
// @Description Stake on one candidate, or on a cover group split evenly across its candidates, in the live round
// @Tags wagers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Param request body PlaceWagerRequest true "Wager request"
// @Success 201 {object} api.Response{data=PlacementResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Failure 422 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/wagers [post]
func (h *Handler) PlaceWager(c *gin.Context) {
	userID := api.UserIDFromContext(c)
	if userID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req PlaceWagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	placement, err := h.service.PlaceWager(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		handleWagerError(c, err)
		return
	}

	api.CreatedResponse(c, "Wager placed successfully", placement)
}

// GetWagers godoc
// @Summary List my wagers
// @Description Get the authenticated player's wagers, newest first
// @Tags wagers
// @Produce json
// @Security BearerAuth
// @Param market_id query string false "Market ID"
// @Param status query string false "Status" Enums(open, won, lost, refunded)
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} api.Response{data=[]WagerResponse,meta=api.PaginationMeta}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/wagers [get]
func (h *Handler) GetWagers(c *gin.Context) {
	userID := api.UserIDFromContext(c)
	if userID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	var filter Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}
	filter.Page, filter.PerPage = api.Pagination(c)

	wagers, total, err := h.service.ListUserWagers(c.Request.Context(), userID, &filter)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to get wagers")
		return
	}

	api.PaginatedResponse(c, "Wagers retrieved successfully", wagers, api.NewPaginationMeta(filter.Page, filter.PerPage, total))
}

// GetRoundAggregate godoc
// @Summary Round stake aggregate
// @Description Stake sum, wager count and distinct players for every candidate of a round
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Market ID"
// @Param round_id path int true "Round ID"
// @Success 200 {object} api.Response{data=AggregateResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/admin/markets/{id}/rounds/{round_id}/aggregate [get]
func (h *Handler) GetRoundAggregate(c *gin.Context) {
	roundID, err := strconv.ParseInt(c.Param("round_id"), 10, 64)
	if err != nil {
		api.BadRequestResponse(c, "Invalid round ID format")
		return
	}

	agg, err := h.service.RoundAggregate(c.Request.Context(), c.Param("id"), roundID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Market")
			return
		}
		api.InternalErrorResponse(c, "Failed to aggregate round")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Round aggregate retrieved successfully", agg)
}

// GetProfitLoss godoc
// @Summary Profit and loss report
// @Description Collection, payouts, refunds and house profit per market
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param market_id query string false "Market ID"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} api.Response{data=ProfitLossResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/admin/reports/profit-loss [get]
func (h *Handler) GetProfitLoss(c *gin.Context) {
	var filter ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		api.BadRequestResponse(c, "to must not be before from")
		return
	}

	report, err := h.service.ProfitLoss(c.Request.Context(), &filter)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to build profit and loss report")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Profit and loss retrieved successfully", report)
}

// GetPlayerWinLoss godoc
// @Summary Player win and loss
// @Description Staked, won, lost and refunded totals for one player
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Player ID"
// @Success 200 {object} api.Response{data=WinLossResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/admin/players/{id}/winloss [get]
func (h *Handler) GetPlayerWinLoss(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		api.BadRequestResponse(c, "Invalid player ID format")
		return
	}

	report, err := h.service.PlayerWinLoss(c.Request.Context(), userID)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to build win and loss report")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Player win and loss retrieved successfully", report)
}

func handleWagerError(c *gin.Context, err error) {
	code := RejectionCode(err)
	switch code {
	case "INSUFFICIENT_FUNDS":
		api.ErrorResponse(c, http.StatusUnprocessableEntity, code, models.ErrInsufficientFunds.Error(), nil)
	case "MARKET_CLOSED":
		api.ErrorResponse(c, http.StatusConflict, code, models.ErrMarketClosed.Error(), nil)
	case "INVALID_SELECTION":
		api.ErrorResponse(c, http.StatusBadRequest, code, models.ErrInvalidSelection.Error(), nil)
	case "BELOW_MINIMUM_STAKE", "INVALID_STAKE_PRECISION":
		api.ErrorResponse(c, http.StatusBadRequest, code, err.Error(), nil)
	case "CONFLICT":
		api.ErrorResponse(c, http.StatusConflict, code, "Wallet is busy, try again", nil)
	case "NOT_FOUND":
		api.NotFoundResponse(c, "Market")
	default:
		api.InternalErrorResponse(c, "Failed to place wager")
	}
}
