package players

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new player repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) first(ctx context.Context, query string, args ...interface{}) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).Where(query, args...).First(&player).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrRecordNotFound
		}
		return nil, err
	}
	return &player, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *repository) GetByPhone(ctx context.Context, phone string) (*models.Player, error) {
	return r.first(ctx, "phone = ?", phone)
}

func (r *repository) Create(ctx context.Context, player *models.Player) error {
	return r.db.WithContext(ctx).Create(player).Error
}
