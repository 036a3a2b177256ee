package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository is the persistence boundary of the wallet ledger.
type Repository interface {
	GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	CompareAndSwap(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error

	CreateEntry(ctx context.Context, entry *models.WalletEntry) error
	ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletEntry, int64, error)

	CreateAuditLog(ctx context.Context, log *models.AuditLog) error

	WithTx(tx *gorm.DB) Repository
}

// Ledger moves money in and out of wallets. A ledger from WithTx joins the
// caller's transaction and makes a single attempt; conflicts surface as
// models.ErrConcurrentModification so the caller can retry its whole unit.
type Ledger interface {
	Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, ref models.Reference) (*models.Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, tier models.Tier, ref models.Reference) (*models.Wallet, error)
	EnsureWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	WithTx(tx *gorm.DB) Ledger
}

// Service is the ledger plus the read and admin operations exposed over HTTP.
type Service interface {
	Ledger

	GetBalance(ctx context.Context, userID uuid.UUID) (*Response, error)
	ListEntries(ctx context.Context, userID uuid.UUID, page, perPage int) ([]EntryResponse, int64, error)
	AdminCredit(ctx context.Context, adminID, userID uuid.UUID, req *AdminCreditRequest) (*OperationResponse, error)
}
