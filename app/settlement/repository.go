package settlement

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

// NewRepository creates a new settlement repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) UpsertSummary(ctx context.Context, s *models.RoundSettlement) error {
	add := func(col string) clause.Expr {
		return gorm.Expr("round_settlements." + col + " + EXCLUDED." + col)
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "market_id"}, {Name: "round_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"outcome":        gorm.Expr("EXCLUDED.outcome"),
			"trigger":        gorm.Expr("EXCLUDED.trigger"),
			"won_count":      add("won_count"),
			"lost_count":     add("lost_count"),
			"refunded_count": add("refunded_count"),
			"skipped_count":  gorm.Expr("GREATEST(round_settlements.skipped_count, EXCLUDED.skipped_count)"),
			"total_staked":   add("total_staked"),
			"total_paid":     add("total_paid"),
			"updated_at":     gorm.Expr("NOW()"),
		}),
	}).Create(s).Error
}

func (r *repository) GetSummary(ctx context.Context, marketID string, roundID int64) (*models.RoundSettlement, error) {
	var s models.RoundSettlement
	err := r.db.WithContext(ctx).Where("market_id = ? AND round_id = ?", marketID, roundID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *repository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
