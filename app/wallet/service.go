package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/sanitizer"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type service struct {
	repo      Repository
	db        *gorm.DB
	config    *Config
	logger    logger.Logger
	sanitizer sanitizer.HTMLStripperer
	bound     bool
}

func NewService(repo Repository, db *gorm.DB, config *Config, log logger.Logger, s sanitizer.HTMLStripperer) Service {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &service{
		repo:      repo,
		db:        db,
		config:    config,
		logger:    log,
		sanitizer: s,
	}
}

func (s *service) WithTx(tx *gorm.DB) Ledger {
	return &service{
		repo:      s.repo.WithTx(tx),
		db:        tx,
		config:    s.config,
		logger:    s.logger,
		sanitizer: s.sanitizer,
		bound:     true,
	}
}

// Debit spends deposited funds first, then winnings.
func (s *service) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, ref models.Reference) (*models.Wallet, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidTransactionAmount
	}
	if ref.EntryType == "" {
		ref.EntryType = models.EntryTypeBetPlace
	}

	w, _, err := s.mutate(ctx, userID, false, func(w *models.Wallet) (*models.WalletEntry, error) {
		if err := w.Debit(amount); err != nil {
			return nil, err
		}
		return models.NewWalletEntry(w, amount.Neg(), nil, ref), nil
	})
	return w, err
}

func (s *service) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, tier models.Tier, ref models.Reference) (*models.Wallet, error) {
	w, _, err := s.credit(ctx, userID, amount, tier, ref)
	return w, err
}

func (s *service) credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, tier models.Tier, ref models.Reference) (*models.Wallet, *models.WalletEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, models.ErrInvalidTransactionAmount
	}
	if !tier.Valid() {
		return nil, nil, models.ErrInvalidTier
	}

	return s.mutate(ctx, userID, true, func(w *models.Wallet) (*models.WalletEntry, error) {
		if err := w.Credit(amount, tier); err != nil {
			return nil, err
		}
		t := tier
		return models.NewWalletEntry(w, amount, &t, ref), nil
	})
}

func (s *service) EnsureWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	if userID == uuid.Nil {
		return nil, models.ErrInvalidUserID
	}
	return s.load(ctx, s.repo, userID, true)
}

func (s *service) GetBalance(ctx context.Context, userID uuid.UUID) (*Response, error) {
	w, err := s.repo.GetWallet(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ToWalletResponse(&models.Wallet{UserID: userID}), nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return ToWalletResponse(w), nil
}

func (s *service) ListEntries(ctx context.Context, userID uuid.UUID, page, perPage int) ([]EntryResponse, int64, error) {
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	if page < 1 {
		page = 1
	}

	entries, total, err := s.repo.ListEntries(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get wallet entries: %w", err)
	}

	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = *ToEntryResponse(&entries[i])
	}
	return responses, total, nil
}

// AdminCredit books an approved deposit (deposited tier) or a returned
// withdrawal (winnings tier) and audits it.
func (s *service) AdminCredit(ctx context.Context, adminID, userID uuid.UUID, req *AdminCreditRequest) (*OperationResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidTransactionAmount
	}
	if !req.Tier.Valid() {
		return nil, models.ErrInvalidTier
	}

	note := req.Note
	if s.sanitizer != nil {
		note = s.sanitizer.StripHTML(note)
	}

	entryType := models.EntryTypeDeposit
	if req.Tier == models.TierWinnings {
		entryType = models.EntryTypeAdjustment
	}

	var result *OperationResponse
	err := Retry(ctx, s.config.MaxRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			bound := s.WithTx(tx).(*service)

			audit := models.NewAdminAuditLog(adminID, models.AuditActionWalletCredit, models.AuditResourceWallet, userID.String(),
				nil,
				models.AuditValues{"amount": req.Amount.String(), "tier": string(req.Tier), "note": note})
			audit.ID = uuid.New()

			w, entry, err := bound.credit(ctx, userID, req.Amount, req.Tier, models.Reference{
				EntryType:   entryType,
				Type:        models.ReferenceTypeAdmin,
				ID:          audit.ID,
				Description: note,
			})
			if err != nil {
				return err
			}

			if err := bound.repo.CreateAuditLog(ctx, audit); err != nil {
				return fmt.Errorf("failed to create audit log: %w", err)
			}

			result = &OperationResponse{
				Wallet: ToWalletResponse(w),
				Entry:  ToEntryResponse(entry),
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet credited by admin", map[string]interface{}{
		"admin_id": adminID.String(),
		"user_id":  userID.String(),
		"amount":   req.Amount.String(),
		"tier":     string(req.Tier),
	})
	return result, nil
}

type mutation func(w *models.Wallet) (*models.WalletEntry, error)

// mutate applies fn to the current wallet and writes it back with a version
// CAS. Unbound services run it in their own transaction and retry conflicts.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, create bool, fn mutation) (*models.Wallet, *models.WalletEntry, error) {
	if userID == uuid.Nil {
		return nil, nil, models.ErrInvalidUserID
	}
	if s.bound {
		return s.apply(ctx, s.repo, userID, create, fn)
	}

	var (
		wallet *models.Wallet
		entry  *models.WalletEntry
	)
	err := Retry(ctx, s.config.MaxRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			wallet, entry, err = s.apply(ctx, s.repo.WithTx(tx), userID, create, fn)
			return err
		})
	})
	if errors.Is(err, models.ErrConcurrentModification) {
		s.logger.Warn("wallet update retries exhausted", map[string]interface{}{
			"user_id":  userID.String(),
			"attempts": s.config.MaxRetries,
		})
	}
	if err != nil {
		return nil, nil, err
	}
	return wallet, entry, nil
}

func (s *service) apply(ctx context.Context, repo Repository, userID uuid.UUID, create bool, fn mutation) (*models.Wallet, *models.WalletEntry, error) {
	w, err := s.load(ctx, repo, userID, create)
	if err != nil {
		return nil, nil, err
	}

	expected := w.Version
	entry, err := fn(w)
	if err != nil {
		return nil, nil, err
	}

	if err := repo.CompareAndSwap(ctx, w, expected); err != nil {
		if errors.Is(err, models.ErrConcurrentModification) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	if err := repo.CreateEntry(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("failed to create wallet entry: %w", err)
	}
	return w, entry, nil
}

// load returns the wallet, creating an empty one when create is set. A
// missing wallet with create unset reads as an empty balance.
func (s *service) load(ctx context.Context, repo Repository, userID uuid.UUID, create bool) (*models.Wallet, error) {
	w, err := repo.GetWallet(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if !create {
		return nil, models.ErrInsufficientFunds
	}

	if err := repo.CreateWallet(ctx, &models.Wallet{UserID: userID}); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	w, err = repo.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}
