package rounds

import (
	"context"
	"time"

	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

// Repository defines the interface for round data access. Every write is a
// compare-and-swap; losing one returns models.ErrConcurrentModification.
type Repository interface {
	GetLive(ctx context.Context, marketID string) (*models.Round, error)
	GetRound(ctx context.Context, marketID string, roundID int64) (*models.Round, error)
	CreateLive(ctx context.Context, round *models.Round) error

	AdvanceToResults(ctx context.Context, marketID string, roundID int64, deadline time.Time) error
	Supersede(ctx context.Context, marketID string, roundID int64) error

	ClaimSettlement(ctx context.Context, marketID string, roundID int64, outcome string) error
	SetOverride(ctx context.Context, marketID string, roundID int64, outcome string) error
	MarkSettled(ctx context.Context, marketID string, roundID int64, at time.Time) error

	ListUnsettled(ctx context.Context, claimedBefore time.Time, limit int) ([]models.Round, error)
	ListSettled(ctx context.Context, marketID string, limit int) ([]models.Round, error)

	WithTx(tx *gorm.DB) Repository
}

// Settler is told about rounds that need an outcome or a refund. Both calls
// must be safe to repeat.
type Settler interface {
	ResolveRound(ctx context.Context, market *models.Market, roundID int64) error
	RefundRound(ctx context.Context, market *models.Market, roundID int64) error
}

// Observer advances a market's live round past any elapsed deadline and
// returns it.
type Observer interface {
	Observe(ctx context.Context, marketID string, now time.Time) (*models.Round, error)
}

// Service defines the interface for the round scheduler
type Service interface {
	Observer

	Snapshot(ctx context.Context, marketID string, now time.Time) (*Snapshot, error)
	History(ctx context.Context, marketID string, limit int) ([]HistoryEntry, error)
	Tick(ctx context.Context, now time.Time) error
	SetSettler(settler Settler)
}
