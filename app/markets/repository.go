package markets

import (
	"context"
	"errors"

	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// repository implements the Repository interface using GORM
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new market repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// GetAll returns markets ordered by id
func (r *repository) GetAll(ctx context.Context, activeOnly bool) ([]models.Market, error) {
	var markets []models.Market
	query := r.db.WithContext(ctx).Model(&models.Market{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("id ASC").Find(&markets).Error
	return markets, err
}

// GetByID returns a market by its slug
func (r *repository) GetByID(ctx context.Context, id string) (*models.Market, error) {
	var market models.Market
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&market).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, err
	}
	return &market, nil
}

// Upsert writes the catalogue fields of a market. An existing schedule is
// kept, since administrators own it once the market exists.
func (r *repository) Upsert(ctx context.Context, market *models.Market) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "game", "candidate_domain", "cover_groups", "payout_multiplier", "min_stake",
			"betting_duration_seconds", "results_duration_seconds", "resolution_mode",
			"timezone", "is_active", "updated_at",
		}),
	}).Create(market).Error
}

// UpdateSchedule replaces the daily window; nil values clear it.
func (r *repository) UpdateSchedule(ctx context.Context, id string, openAt, closeAt *string) error {
	result := r.db.WithContext(ctx).Model(&models.Market{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"open_at":    openAt,
			"close_at":   closeAt,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
