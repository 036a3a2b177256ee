package players

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/internal/validator"
	"github.com/joefazee/roundbet/models"
)

// Handler handles HTTP requests for players
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register godoc
// @Summary      Register as a player
// @Description  Create the player record for the authenticated token subject
// @Tags         players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      RegisterRequest  true  "Player details"
// @Success      201      {object}  api.Response{data=Response}
// @Failure      400      {object}  api.Response{error=api.ErrorInfo}
// @Failure      409      {object}  api.Response{error=api.ErrorInfo}
// @Failure      500      {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/players/register [post]
func (h *Handler) Register(c *gin.Context) {
	userID := api.UserIDFromContext(c)
	if userID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.BadRequestResponse(c, err.Error())
		return
	}

	v := validator.New()
	if !req.Validate(v) {
		api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed", v.Errors))
		return
	}

	player, err := h.service.Register(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidPhone):
			api.ValidationErrorResponse(c, validator.NewValidationError("Validation failed",
				map[string]string{"phone": "phone number is invalid"}))
		case errors.Is(err, models.ErrPlayerExists), errors.Is(err, models.ErrPhoneTaken):
			api.ConflictResponse(c, err.Error())
		default:
			api.InternalErrorResponse(c, "Failed to register player")
		}
		return
	}

	api.CreatedResponse(c, "Player registered successfully", player)
}

// GetMe godoc
// @Summary      Get my player profile
// @Tags         players
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.Response{data=Response}
// @Failure      401  {object}  api.Response{error=api.ErrorInfo}
// @Failure      404  {object}  api.Response{error=api.ErrorInfo}
// @Router       /api/v1/players/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID := api.UserIDFromContext(c)
	if userID == uuid.Nil {
		api.UnauthorizedResponse(c)
		return
	}

	player, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			api.NotFoundResponse(c, "Player")
			return
		}
		api.InternalErrorResponse(c, "Failed to get player")
		return
	}

	api.SuccessResponse(c, http.StatusOK, "Player retrieved successfully", player)
}
