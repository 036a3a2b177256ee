package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/sanitizer"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (Service, *MockRepository, func(outcome ...string)) {
	t.Helper()
	db, sqlMock := newMockDB(t)
	repo := new(MockRepository)
	svc := NewService(repo, db, &Config{MaxRetries: 3}, logger.NewNullLogger(), sanitizer.NewHTMLStripper())

	expectTx := func(outcome ...string) {
		for _, o := range outcome {
			sqlMock.ExpectBegin()
			if o == "commit" {
				sqlMock.ExpectCommit()
			} else {
				sqlMock.ExpectRollback()
			}
		}
	}
	t.Cleanup(func() {
		assert.NoError(t, sqlMock.ExpectationsWereMet())
		repo.AssertExpectations(t)
	})
	return svc, repo, expectTx
}

func walletWith(userID uuid.UUID, deposited, winnings int64, version int64) *models.Wallet {
	return &models.Wallet{
		UserID:           userID,
		DepositedBalance: decimal.NewFromInt(deposited),
		WinningsBalance:  decimal.NewFromInt(winnings),
		Version:          version,
	}
}

func TestServiceDebit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	placement := uuid.New()
	ref := models.Reference{Type: models.ReferenceTypePlacement, ID: placement}

	t.Run("splits across tiers and books a negative entry", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("commit")

		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 30, 100, 2), nil).Once()
		repo.On("CompareAndSwap", mock.Anything, mock.MatchedBy(func(w *models.Wallet) bool {
			return w.DepositedBalance.IsZero() && w.WinningsBalance.Equal(decimal.NewFromInt(80))
		}), int64(2)).Return(nil).Once()
		repo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(e *models.WalletEntry) bool {
			return e.EntryType == models.EntryTypeBetPlace &&
				e.Amount.Equal(decimal.NewFromInt(-50)) &&
				e.ReferenceID != nil && *e.ReferenceID == placement
		})).Return(nil).Once()

		w, err := svc.Debit(ctx, userID, decimal.NewFromInt(50), ref)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(80).Equal(w.Total()))
	})

	t.Run("insufficient funds writes nothing", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("rollback")

		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 5, 4, 0), nil).Once()

		_, err := svc.Debit(ctx, userID, decimal.NewFromInt(10), ref)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
		repo.AssertNotCalled(t, "CompareAndSwap", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing wallet is insufficient funds", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("rollback")

		repo.On("GetWallet", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound).Once()

		_, err := svc.Debit(ctx, userID, decimal.NewFromInt(10), ref)
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	})

	t.Run("retries a version conflict", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("rollback", "commit")

		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 100, 0, 1), nil).Once()
		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 90, 0, 2), nil).Once()
		repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(1)).Return(models.ErrConcurrentModification).Once()
		repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(2)).Return(nil).Once()
		repo.On("CreateEntry", mock.Anything, mock.Anything).Return(nil).Once()

		w, err := svc.Debit(ctx, userID, decimal.NewFromInt(10), ref)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(80).Equal(w.DepositedBalance))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("rollback", "rollback", "rollback")

		for i := 0; i < 3; i++ {
			repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 100, 0, 1), nil).Once()
		}
		repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(1)).Return(models.ErrConcurrentModification).Times(3)

		_, err := svc.Debit(ctx, userID, decimal.NewFromInt(10), ref)
		assert.ErrorIs(t, err, models.ErrConcurrentModification)
	})

	t.Run("rejects bad input before touching storage", func(t *testing.T) {
		svc, _, _ := setupService(t)

		_, err := svc.Debit(ctx, userID, decimal.Zero, ref)
		assert.ErrorIs(t, err, models.ErrInvalidTransactionAmount)

		_, err = svc.Debit(ctx, uuid.Nil, decimal.NewFromInt(1), ref)
		assert.ErrorIs(t, err, models.ErrInvalidUserID)
	})
}

func TestServiceBoundLedger(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	db, sqlMock := newMockDB(t)
	repo := new(MockRepository)
	ledger := NewService(repo, db, nil, logger.NewNullLogger(), nil).WithTx(db)

	repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 100, 0, 4), nil).Once()
	repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(4)).Return(models.ErrConcurrentModification).Once()

	_, err := ledger.Debit(ctx, userID, decimal.NewFromInt(10), models.Reference{})
	assert.ErrorIs(t, err, models.ErrConcurrentModification)

	// no transaction of its own and a single attempt
	assert.NoError(t, sqlMock.ExpectationsWereMet())
	repo.AssertExpectations(t)
}

func TestServiceCredit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	wagerID := uuid.New()
	ref := models.Reference{EntryType: models.EntryTypePayout, Type: models.ReferenceTypeWager, ID: wagerID}

	t.Run("creates a missing wallet", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("commit")

		repo.On("GetWallet", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound).Once()
		repo.On("CreateWallet", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 0, 0, 0), nil).Once()
		repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(0)).Return(nil).Once()
		repo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(e *models.WalletEntry) bool {
			return e.EntryType == models.EntryTypePayout && e.Tier != nil && *e.Tier == models.TierWinnings
		})).Return(nil).Once()

		w, err := svc.Credit(ctx, userID, decimal.NewFromInt(100), models.TierWinnings, ref)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(100).Equal(w.WinningsBalance))
	})

	t.Run("duplicate entry rolls back", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("rollback")

		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 0, 0, 0), nil).Once()
		repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(0)).Return(nil).Once()
		repo.On("CreateEntry", mock.Anything, mock.Anything).Return(errors.New("duplicate key")).Once()

		_, err := svc.Credit(ctx, userID, decimal.NewFromInt(100), models.TierWinnings, ref)
		assert.Error(t, err)
	})

	t.Run("rejects unknown tier", func(t *testing.T) {
		svc, _, _ := setupService(t)
		_, err := svc.Credit(ctx, userID, decimal.NewFromInt(1), "bonus", ref)
		assert.ErrorIs(t, err, models.ErrInvalidTier)
	})
}

func TestServiceGetBalance(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	svc, repo, _ := setupService(t)
	repo.On("GetWallet", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound).Once()

	resp, err := svc.GetBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, resp.UserID)
	assert.True(t, resp.TotalBalance.IsZero())
}

func TestServiceListEntries(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	svc, repo, _ := setupService(t)
	entries := []models.WalletEntry{
		{ID: uuid.New(), EntryType: models.EntryTypeDeposit, Amount: decimal.NewFromInt(50)},
		{ID: uuid.New(), EntryType: models.EntryTypeBetPlace, Amount: decimal.NewFromInt(-10)},
	}
	repo.On("ListEntries", mock.Anything, userID, 100, 100).Return(entries, int64(102), nil).Once()

	got, total, err := svc.ListEntries(ctx, userID, 2, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(102), total)
	require.Len(t, got, 2)
	assert.Equal(t, models.EntryTypeBetPlace, got[1].EntryType)
}

func TestServiceAdminCredit(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	userID := uuid.New()

	t.Run("books a deposit and audits it", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("commit")

		var auditID uuid.UUID
		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 0, 0, 0), nil).Once()
		repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(0)).Return(nil).Once()
		repo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(e *models.WalletEntry) bool {
			return e.EntryType == models.EntryTypeDeposit && e.Description == "bank transfer"
		})).Run(func(args mock.Arguments) {
			auditID = *args.Get(1).(*models.WalletEntry).ReferenceID
		}).Return(nil).Once()
		repo.On("CreateAuditLog", mock.Anything, mock.MatchedBy(func(l *models.AuditLog) bool {
			return l.Action == models.AuditActionWalletCredit && l.ActorID != nil && *l.ActorID == adminID
		})).Run(func(args mock.Arguments) {
			assert.Equal(t, auditID, args.Get(1).(*models.AuditLog).ID)
		}).Return(nil).Once()

		resp, err := svc.AdminCredit(ctx, adminID, userID, &AdminCreditRequest{
			Amount: decimal.NewFromInt(250),
			Tier:   models.TierDeposited,
			Note:   "<b>bank transfer</b>",
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(250).Equal(resp.Wallet.DepositedBalance))
		assert.Equal(t, models.EntryTypeDeposit, resp.Entry.EntryType)
	})

	t.Run("winnings tier is an adjustment", func(t *testing.T) {
		svc, repo, expectTx := setupService(t)
		expectTx("commit")

		repo.On("GetWallet", mock.Anything, userID).Return(walletWith(userID, 0, 10, 0), nil).Once()
		repo.On("CompareAndSwap", mock.Anything, mock.Anything, int64(0)).Return(nil).Once()
		repo.On("CreateEntry", mock.Anything, mock.MatchedBy(func(e *models.WalletEntry) bool {
			return e.EntryType == models.EntryTypeAdjustment
		})).Return(nil).Once()
		repo.On("CreateAuditLog", mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := svc.AdminCredit(ctx, adminID, userID, &AdminCreditRequest{
			Amount: decimal.NewFromInt(5),
			Tier:   models.TierWinnings,
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(15).Equal(resp.Wallet.WinningsBalance))
	})

	t.Run("invalid amount", func(t *testing.T) {
		svc, _, _ := setupService(t)
		_, err := svc.AdminCredit(ctx, adminID, userID, &AdminCreditRequest{Amount: decimal.NewFromInt(-5), Tier: models.TierDeposited})
		assert.ErrorIs(t, err, models.ErrInvalidTransactionAmount)
	})
}
