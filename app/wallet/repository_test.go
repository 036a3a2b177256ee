package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	casSQL := `UPDATE "wallets" SET .* WHERE user_id = \$\d+ AND version = \$\d+`

	t.Run("writes when version matches", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		repo := NewRepository(db)

		w := &models.Wallet{UserID: uuid.New(), DepositedBalance: decimal.NewFromInt(40), Version: 3}
		sqlMock.ExpectExec(casSQL).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.CompareAndSwap(ctx, w, 3))
		assert.Equal(t, int64(4), w.Version)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("zero rows is a conflict", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		repo := NewRepository(db)

		w := &models.Wallet{UserID: uuid.New(), Version: 3}
		sqlMock.ExpectExec(casSQL).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.CompareAndSwap(ctx, w, 3)
		assert.ErrorIs(t, err, models.ErrConcurrentModification)
		assert.Equal(t, int64(3), w.Version)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("driver error is returned", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		repo := NewRepository(db)

		sqlMock.ExpectExec(casSQL).WillReturnError(errors.New("connection reset"))

		err := repo.CompareAndSwap(ctx, &models.Wallet{UserID: uuid.New()}, 0)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrConcurrentModification)
	})

	t.Run("negative balance never reaches the database", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		repo := NewRepository(db)

		w := &models.Wallet{UserID: uuid.New(), WinningsBalance: decimal.NewFromInt(-1)}
		assert.ErrorIs(t, repo.CompareAndSwap(ctx, w, 0), models.ErrNegativeBalance)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestRepositoryGetWallet(t *testing.T) {
	db, sqlMock := newMockDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	rows := sqlmock.NewRows([]string{"user_id", "deposited_balance", "winnings_balance", "version"}).
		AddRow(userID, "25.00", "5.50", 7)
	sqlMock.ExpectQuery(`SELECT \* FROM "wallets" WHERE user_id = \$1`).WillReturnRows(rows)

	w, err := repo.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, w.UserID)
	assert.True(t, decimal.RequireFromString("30.50").Equal(w.Total()))
	assert.Equal(t, int64(7), w.Version)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
