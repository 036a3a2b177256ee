package wallet

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// CreateWallet inserts a wallet, leaving an existing row untouched.
func (r *repository) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(wallet).Error
}

// CompareAndSwap writes both balances if the stored version still matches.
func (r *repository) CompareAndSwap(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error {
	if err := wallet.Validate(); err != nil {
		return err
	}

	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND version = ?", wallet.UserID, expectedVersion).
		Updates(map[string]interface{}{
			"deposited_balance": wallet.DepositedBalance,
			"winnings_balance":  wallet.WinningsBalance,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrConcurrentModification
	}

	wallet.Version = expectedVersion + 1
	wallet.UpdatedAt = now
	return nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.WalletEntry{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.WalletEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, total, err
}

func (r *repository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if err := log.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(log).Error
}
