package markets

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

// Repository defines the interface for market data access
type Repository interface {
	GetAll(ctx context.Context, activeOnly bool) ([]models.Market, error)
	GetByID(ctx context.Context, id string) (*models.Market, error)
	Upsert(ctx context.Context, market *models.Market) error
	UpdateSchedule(ctx context.Context, id string, openAt, closeAt *string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	WithTx(tx *gorm.DB) Repository
}

// Registry is the read side other modules depend on.
type Registry interface {
	Get(ctx context.Context, id string) (*models.Market, error)
	List(ctx context.Context) ([]models.Market, error)
	IsOpen(market *models.Market, now time.Time) bool
}

// Service defines the interface for market business logic
type Service interface {
	Registry

	Sync(ctx context.Context, catalogue []models.Market) error
	UpdateSchedule(ctx context.Context, adminID uuid.UUID, id string, req *ScheduleRequest) (*models.Market, error)
}
