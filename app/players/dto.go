package players

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/internal/validator"
	"github.com/joefazee/roundbet/models"
)

// RegisterRequest represents the request to register the token's subject
// as a player.
type RegisterRequest struct {
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
	DisplayName string `json:"display_name"`
}

func (r *RegisterRequest) Validate(v *validator.Validator) bool {
	r.DisplayName = strings.TrimSpace(r.DisplayName)
	v.Check(validator.NotBlank(r.Phone), "phone", "phone is required")
	v.Check(validator.NotBlank(r.DisplayName), "display_name", "display name is required")
	v.Check(validator.MinRunes(r.DisplayName, 2) && validator.MaxRunes(r.DisplayName, 100), "display_name", "display name must be between 2 and 100 characters")
	v.Check(r.CountryCode == "" || len(r.CountryCode) == 2, "country_code", "country code must be two letters")
	return v.Valid()
}

// Response represents a player in API responses
type Response struct {
	ID          uuid.UUID `json:"id"`
	Phone       string    `json:"phone"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"is_active"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
}

func ToResponse(p *models.Player) *Response {
	return &Response{
		ID:          p.ID,
		Phone:       p.Phone,
		DisplayName: p.DisplayName,
		Role:        string(p.Role),
		IsActive:    p.IsActive,
		Permissions: p.Permissions(),
		CreatedAt:   p.CreatedAt,
	}
}
