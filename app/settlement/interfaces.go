package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

// Repository stores settlement summaries and admin audit records.
type Repository interface {
	// UpsertSummary adds the counts and totals of s to the round's summary,
	// creating it on first use.
	UpsertSummary(ctx context.Context, s *models.RoundSettlement) error
	GetSummary(ctx context.Context, marketID string, roundID int64) (*models.RoundSettlement, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	WithTx(tx *gorm.DB) Repository
}

// Picker chooses an index in [0, n).
type Picker interface {
	IntN(n int) int
}

// Service resolves rounds and pays them out.
type Service interface {
	rounds.Settler

	Distribute(ctx context.Context, market *models.Market, roundID int64, directive models.Directive) (*models.RoundSettlement, error)
	OverrideOutcome(ctx context.Context, adminID uuid.UUID, marketID, outcome string) (*OverrideResponse, error)
	ResumePending(ctx context.Context, now time.Time) (int, error)
	GetSummary(ctx context.Context, marketID string, roundID int64) (*models.RoundSettlement, error)
}
