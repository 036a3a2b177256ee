package rounds

import (
	"context"
	"errors"
	"time"

	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new round repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) first(ctx context.Context, query string, args ...interface{}) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).Where(query, args...).First(&round).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, err
	}
	return &round, nil
}

// GetLive returns the market's non-superseded round
func (r *repository) GetLive(ctx context.Context, marketID string) (*models.Round, error) {
	return r.first(ctx, "market_id = ? AND NOT superseded", marketID)
}

// GetRound returns one round, live or not
func (r *repository) GetRound(ctx context.Context, marketID string, roundID int64) (*models.Round, error) {
	return r.first(ctx, "market_id = ? AND round_id = ?", marketID, roundID)
}

// CreateLive inserts a live round. The partial unique index on live rounds
// turns a second live round for the market into a conflict.
func (r *repository) CreateLive(ctx context.Context, round *models.Round) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(round)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrConcurrentModification
	}
	return nil
}

func (r *repository) cas(ctx context.Context, updates map[string]interface{}, query string, args ...interface{}) error {
	updates["updated_at"] = gorm.Expr("NOW()")
	result := r.db.WithContext(ctx).Model(&models.Round{}).Where(query, args...).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrConcurrentModification
	}
	return nil
}

// AdvanceToResults flips a live betting round into results
func (r *repository) AdvanceToResults(ctx context.Context, marketID string, roundID int64, deadline time.Time) error {
	return r.cas(ctx,
		map[string]interface{}{"phase": models.PhaseResults, "phase_deadline": deadline},
		"market_id = ? AND round_id = ? AND phase = ? AND NOT superseded",
		marketID, roundID, models.PhaseBetting)
}

// Supersede retires a live results round
func (r *repository) Supersede(ctx context.Context, marketID string, roundID int64) error {
	return r.cas(ctx,
		map[string]interface{}{"superseded": true},
		"market_id = ? AND round_id = ? AND phase = ? AND NOT superseded",
		marketID, roundID, models.PhaseResults)
}

// ClaimSettlement marks the round claimed exactly once. A stored override
// wins over outcome.
func (r *repository) ClaimSettlement(ctx context.Context, marketID string, roundID int64, outcome string) error {
	return r.cas(ctx,
		map[string]interface{}{
			"settlement_claimed":    true,
			"last_resolved_outcome": gorm.Expr("COALESCE(manual_override_outcome, ?)", outcome),
		},
		"market_id = ? AND round_id = ? AND phase = ? AND NOT settlement_claimed",
		marketID, roundID, models.PhaseResults)
}

// SetOverride records an administrator's outcome on a live, unclaimed
// results round
func (r *repository) SetOverride(ctx context.Context, marketID string, roundID int64, outcome string) error {
	return r.cas(ctx,
		map[string]interface{}{"manual_override_outcome": outcome},
		"market_id = ? AND round_id = ? AND phase = ? AND NOT superseded AND NOT settlement_claimed",
		marketID, roundID, models.PhaseResults)
}

// MarkSettled stamps the end of distribution. Re-stamping is a no-op.
func (r *repository) MarkSettled(ctx context.Context, marketID string, roundID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Round{}).
		Where("market_id = ? AND round_id = ? AND settlement_claimed AND settled_at IS NULL", marketID, roundID).
		Update("settled_at", at).Error
}

// ListUnsettled returns claimed rounds whose distribution never finished
func (r *repository) ListUnsettled(ctx context.Context, claimedBefore time.Time, limit int) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.WithContext(ctx).
		Where("settlement_claimed AND settled_at IS NULL AND updated_at < ?", claimedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&rounds).Error
	return rounds, err
}

// ListSettled returns the market's most recent settled rounds, newest first
func (r *repository) ListSettled(ctx context.Context, marketID string, limit int) ([]models.Round, error) {
	var rounds []models.Round
	err := r.db.WithContext(ctx).
		Where("market_id = ? AND settled_at IS NOT NULL", marketID).
		Order("round_id DESC").
		Limit(limit).
		Find(&rounds).Error
	return rounds, err
}
