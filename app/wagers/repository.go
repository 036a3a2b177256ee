package wagers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new wager repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, wagers []models.Wager) error {
	for i := range wagers {
		if err := wagers[i].Validate(); err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Create(&wagers).Error
}

func (r *repository) LockBettingRound(ctx context.Context, marketID string, roundID int64, now time.Time) error {
	var round models.Round
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Where("market_id = ? AND round_id = ? AND phase = ? AND NOT superseded AND phase_deadline > ?",
			marketID, roundID, models.PhaseBetting, now).
		First(&round).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrMarketClosed
	}
	return err
}

// ListOpen pages through a round's open wagers in id order, starting after
// the given id.
func (r *repository) ListOpen(ctx context.Context, marketID string, roundID int64, after uuid.UUID, limit int) ([]models.Wager, error) {
	var wagers []models.Wager
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND round_id = ? AND status = ? AND id > ?", marketID, roundID, models.WagerStatusOpen, after).
		Order("id ASC").
		Limit(limit).
		Find(&wagers).Error
	return wagers, err
}

func (r *repository) Settle(ctx context.Context, wagerID uuid.UUID, status models.WagerStatus, payout *decimal.Decimal, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Wager{}).
		Where("id = ? AND status = ?", wagerID, models.WagerStatusOpen).
		Updates(map[string]interface{}{
			"status":     status,
			"payout":     payout,
			"settled_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrWagerAlreadySettled
	}
	return nil
}

// Aggregate sums stakes per selection. With openOnly, records that could not
// be settled are left out.
func (r *repository) Aggregate(ctx context.Context, marketID string, roundID int64, openOnly bool) ([]SelectionTotal, error) {
	var rows []SelectionTotal
	query := r.db.WithContext(ctx).Model(&models.Wager{}).
		Select("selection, COALESCE(SUM(stake), 0) AS stake_sum, COUNT(*) AS wager_count, COUNT(DISTINCT user_id) AS distinct_users").
		Where("market_id = ? AND round_id = ?", marketID, roundID)
	if openOnly {
		query = query.Where("status = ? AND stake > 0 AND user_id <> ?", models.WagerStatusOpen, uuid.Nil)
	}
	err := query.Group("selection").Order("selection").Scan(&rows).Error
	return rows, err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filter *Filter, limit, offset int) ([]models.Wager, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Wager{}).Where("user_id = ?", userID)
	if filter != nil {
		if filter.MarketID != "" {
			query = query.Where("market_id = ?", filter.MarketID)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var wagers []models.Wager
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&wagers).Error
	return wagers, total, err
}

func (r *repository) ProfitLoss(ctx context.Context, filter *ReportFilter) ([]MarketTotals, error) {
	query := r.db.WithContext(ctx).Model(&models.Wager{}).
		Select(`market_id,
			COALESCE(SUM(stake), 0) AS collection,
			COALESCE(SUM(CASE WHEN status = 'won' THEN payout ELSE 0 END), 0) AS paid_out,
			COALESCE(SUM(CASE WHEN status = 'refunded' THEN stake ELSE 0 END), 0) AS refunded,
			COALESCE(SUM(CASE WHEN status = 'open' THEN stake ELSE 0 END), 0) AS open_stake,
			COUNT(*) AS wager_count`)
	if filter != nil {
		if filter.MarketID != "" {
			query = query.Where("market_id = ?", filter.MarketID)
		}
		if filter.From != nil {
			query = query.Where("created_at >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("created_at < ?", filter.To.AddDate(0, 0, 1))
		}
	}

	var rows []MarketTotals
	err := query.Group("market_id").Order("market_id").Scan(&rows).Error
	return rows, err
}

func (r *repository) PlayerTotals(ctx context.Context, userID uuid.UUID) ([]StatusTotals, error) {
	var rows []StatusTotals
	err := r.db.WithContext(ctx).Model(&models.Wager{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(stake), 0) AS stake_sum, COALESCE(SUM(payout), 0) AS payout_sum").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}
