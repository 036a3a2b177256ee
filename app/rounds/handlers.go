package rounds

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/models"
)

// Handler handles HTTP requests for rounds
type Handler struct {
	service Service
	now     func() time.Time
}

// NewHandler creates a new round handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service, now: time.Now}
}

// GetRound godoc
// @Summary Get round state
// @Description Get the live round of a market. Reading it advances the round past any elapsed deadline.
// @Tags rounds
// @Produce json
// @Param id path string true "Market ID"
// @Success 200 {object} api.Response{data=Snapshot}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/round [get]
func (h *Handler) GetRound(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		handleServiceError(c, err, "get round state")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Round retrieved successfully", snap)
}

// GetResults godoc
// @Summary Get round results
// @Description List the most recent settled rounds of a market
// @Tags rounds
// @Produce json
// @Param id path string true "Market ID"
// @Param limit query int false "Number of rounds" default(50)
// @Success 200 {object} api.Response{data=[]HistoryEntry}
// @Failure 404 {object} api.Response{error=api.ErrorInfo}
// @Failure 500 {object} api.Response{error=api.ErrorInfo}
// @Router /api/v1/markets/{id}/results [get]
func (h *Handler) GetResults(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	history, err := h.service.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		handleServiceError(c, err, "get round results")
		return
	}

	api.ListResponse(c, "Round results retrieved successfully", history, len(history))
}

func handleServiceError(c *gin.Context, err error, operation string) {
	if errors.Is(err, models.ErrRecordNotFound) {
		api.NotFoundResponse(c, "Market")
		return
	}
	api.InternalErrorResponse(c, "Failed to "+operation)
}
