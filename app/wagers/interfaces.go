package wagers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository is the persistence boundary of the bet ledger.
type Repository interface {
	CreateBatch(ctx context.Context, wagers []models.Wager) error
	// LockBettingRound share-locks the round row while it still accepts
	// wagers. A round that has moved on yields models.ErrMarketClosed.
	LockBettingRound(ctx context.Context, marketID string, roundID int64, now time.Time) error

	ListOpen(ctx context.Context, marketID string, roundID int64, after uuid.UUID, limit int) ([]models.Wager, error)
	// Settle moves an open wager to its final status. A wager that is no
	// longer open yields models.ErrWagerAlreadySettled.
	Settle(ctx context.Context, wagerID uuid.UUID, status models.WagerStatus, payout *decimal.Decimal, at time.Time) error

	Aggregate(ctx context.Context, marketID string, roundID int64, openOnly bool) ([]SelectionTotal, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter *Filter, limit, offset int) ([]models.Wager, int64, error)
	ProfitLoss(ctx context.Context, filter *ReportFilter) ([]MarketTotals, error)
	PlayerTotals(ctx context.Context, userID uuid.UUID) ([]StatusTotals, error)

	WithTx(tx *gorm.DB) Repository
}

// Service is the bet ledger
type Service interface {
	PlaceWager(ctx context.Context, userID uuid.UUID, marketID string, req *PlaceWagerRequest) (*PlacementResponse, error)
	ListUserWagers(ctx context.Context, userID uuid.UUID, filter *Filter) ([]WagerResponse, int64, error)
	RoundAggregate(ctx context.Context, marketID string, roundID int64) (*AggregateResponse, error)
	ProfitLoss(ctx context.Context, filter *ReportFilter) (*ProfitLossResponse, error)
	PlayerWinLoss(ctx context.Context, userID uuid.UUID) (*WinLossResponse, error)
}
