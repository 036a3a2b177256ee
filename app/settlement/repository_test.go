package settlement

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

func TestRepositoryUpsertSummary(t *testing.T) {
	ctx := context.Background()
	upsertSQL := `INSERT INTO "round_settlements" .* ON CONFLICT \("market_id","round_id"\) DO UPDATE SET .*round_settlements\.won_count \+ EXCLUDED\.won_count`

	t.Run("accumulates on conflict", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		sqlMock.ExpectQuery(upsertSQL).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))

		err := NewRepository(db).UpsertSummary(ctx, &models.RoundSettlement{
			MarketID: "wingame", RoundID: 1, Outcome: "4", Trigger: models.TriggerAuto,
			WonCount: 1, TotalStaked: decimal.NewFromInt(10), TotalPaid: decimal.NewFromInt(100),
		})
		assert.NoError(t, err)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("driver error", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		sqlMock.ExpectQuery(upsertSQL).WillReturnError(errors.New("connection reset"))

		err := NewRepository(db).UpsertSummary(ctx, &models.RoundSettlement{MarketID: "wingame", RoundID: 1, Outcome: "4"})
		assert.Error(t, err)
	})
}

func TestRepositoryGetSummary(t *testing.T) {
	ctx := context.Background()
	selectSQL := `SELECT \* FROM "round_settlements" WHERE market_id = \$1 AND round_id = \$2`

	t.Run("found", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		sqlMock.ExpectQuery(selectSQL).WithArgs("wingame", int64(7), int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"market_id", "round_id", "outcome", "won_count", "total_staked", "total_paid"}).
				AddRow("wingame", 7, "3", 2, "40.00", "200.00"))

		s, err := NewRepository(db).GetSummary(ctx, "wingame", 7)
		require.NoError(t, err)
		assert.Equal(t, 2, s.WonCount)
		assert.True(t, decimal.NewFromInt(-160).Equal(s.HouseNet()))
	})

	t.Run("missing", func(t *testing.T) {
		db, sqlMock := newMockDB(t)
		sqlMock.ExpectQuery(selectSQL).WillReturnRows(sqlmock.NewRows([]string{"market_id"}))

		_, err := NewRepository(db).GetSummary(ctx, "wingame", 7)
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})
}
