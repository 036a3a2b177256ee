package wallet

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/models"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetWallet godoc
// @Summary Get my wallet
// @Description Get the deposited and winnings balances of the authenticated player
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} api.Response{data=Response}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/wallet [get]
func (h *Handler) GetWallet(c *gin.Context) {
	userID := api.UserIDFromContext(c)
	if userID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	wallet, err := h.service.GetBalance(c.Request.Context(), userID)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to get wallet")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Wallet retrieved successfully", wallet)
}

// GetEntries godoc
// @Summary Get my wallet ledger
// @Description Get the ledger entries of the authenticated player, newest first
// @Tags wallet
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} api.Response{data=[]EntryResponse,meta=api.PaginationMeta}
// @Failure 401 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/wallet/entries [get]
func (h *Handler) GetEntries(c *gin.Context) {
	userID := api.UserIDFromContext(c)
	if userID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	page, perPage := api.Pagination(c)
	entries, total, err := h.service.ListEntries(c.Request.Context(), userID, page, perPage)
	if err != nil {
		api.InternalErrorResponse(c, "Failed to get wallet entries")
		return
	}

	api.PaginatedResponse(c, "Wallet entries retrieved successfully", entries, api.NewPaginationMeta(page, perPage, total))
}

// AdminCredit godoc
// @Summary Credit a player wallet
// @Description Book an approved deposit or a returned withdrawal
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "Player ID"
// @Param request body AdminCreditRequest true "Credit request"
// @Success 200 {object} api.Response{data=OperationResponse}
// @Failure 400 {object} api.Response{error=api.ErrorInfo}
// @Failure 403 {object} api.Response{error=api.ErrorInfo}
// @Failure 409 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/admin/wallets/{user_id}/credit [post]
func (h *Handler) AdminCredit(c *gin.Context) {
	adminID := api.UserIDFromContext(c)
	if adminID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		api.BadRequestResponse(c, "Invalid user ID format")
		return
	}

	var req AdminCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.ValidationErrorResponse(c, err.Error())
		return
	}

	result, err := h.service.AdminCredit(c.Request.Context(), adminID, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTransactionAmount), errors.Is(err, models.ErrInvalidTier):
			api.BadRequestResponse(c, err.Error())
		case errors.Is(err, models.ErrConcurrentModification):
			api.ConflictResponse(c, "Wallet is busy, try again")
		default:
			api.InternalErrorResponse(c, "Failed to credit wallet")
		}
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Wallet credited successfully", result)
}
