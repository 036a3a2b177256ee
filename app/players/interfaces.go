package players

import (
	"context"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetByPhone(ctx context.Context, phone string) (*models.Player, error)
	Create(ctx context.Context, player *models.Player) error
	WithTx(tx *gorm.DB) Repository
}

// AuthService resolves what a token subject may do.
type AuthService interface {
	GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type Service interface {
	AuthService

	Register(ctx context.Context, userID uuid.UUID, req *RegisterRequest) (*Response, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*Response, error)
}
