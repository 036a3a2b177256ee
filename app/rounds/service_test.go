package rounds

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/pubsub"
	"github.com/joefazee/roundbet/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gLogger "gorm.io/gorm/logger"
)

type MockSettler struct {
	mock.Mock
}

func (m *MockSettler) ResolveRound(ctx context.Context, market *models.Market, roundID int64) error {
	return m.Called(ctx, market, roundID).Error(0)
}

func (m *MockSettler) RefundRound(ctx context.Context, market *models.Market, roundID int64) error {
	return m.Called(ctx, market, roundID).Error(0)
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gLogger.Discard,
	})
	require.NoError(t, err)
	return gormDB, sqlMock
}

type fixture struct {
	svc      *service
	repo     *MockRepository
	registry *markets.MockRegistry
	settler  *MockSettler
	sqlMock  sqlmock.Sqlmock
	bus      pubsub.Bus
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, sqlMock := newMockDB(t)
	f := &fixture{
		repo:     new(MockRepository),
		registry: new(markets.MockRegistry),
		settler:  new(MockSettler),
		sqlMock:  sqlMock,
		bus:      pubsub.NewMemoryBus(),
	}
	f.svc = NewService(f.repo, db, f.registry, f.bus, nil, logger.NewNullLogger()).(*service)
	f.svc.SetSettler(f.settler)
	f.svc.dispatch = func(fn func()) { fn() }

	t.Cleanup(func() {
		_ = f.bus.Close()
		f.repo.AssertExpectations(t)
		f.registry.AssertExpectations(t)
		f.settler.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
	return f
}

func autoMarket() *models.Market {
	return &markets.DefaultCatalogue()[0]
}

func manualMarket() *models.Market {
	m := autoMarket()
	m.ID = "gali"
	m.ResolutionMode = models.ResolutionManual
	return m
}

var now = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func TestTimeRemaining(t *testing.T) {
	assert.Equal(t, 5*time.Second, TimeRemaining(now, now.Add(5*time.Second)))
	assert.Equal(t, time.Duration(0), TimeRemaining(now, now))
	assert.Equal(t, time.Duration(0), TimeRemaining(now, now.Add(-time.Minute)))
}

func TestObserve(t *testing.T) {
	ctx := context.Background()

	t.Run("opens the first round", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		f.registry.On("Get", ctx, market.ID).Return(market, nil)

		ch, err := f.bus.Subscribe(ctx, pubsub.RoundChannel(market.ID))
		require.NoError(t, err)

		created := &models.Round{
			MarketID:      market.ID,
			RoundID:       now.UnixMilli(),
			Phase:         models.PhaseBetting,
			PhaseDeadline: now.Add(300 * time.Second),
		}
		f.repo.On("GetLive", ctx, market.ID).Return(nil, models.ErrRecordNotFound).Once()
		f.repo.On("CreateLive", ctx, mock.MatchedBy(func(r *models.Round) bool {
			return r.RoundID == created.RoundID && r.Phase == models.PhaseBetting && r.PhaseDeadline.Equal(created.PhaseDeadline)
		})).Return(nil).Once()
		f.repo.On("GetLive", ctx, market.ID).Return(created, nil).Once()

		round, err := f.svc.Observe(ctx, market.ID, now)
		require.NoError(t, err)
		assert.Equal(t, created, round)

		var env pubsub.Envelope
		select {
		case msg := <-ch:
			require.NoError(t, json.Unmarshal(msg, &env))
		case <-time.After(time.Second):
			t.Fatal("no round state published")
		}
		assert.Equal(t, pubsub.TypeRoundState, env.Type)
	})

	t.Run("fresh round is returned untouched", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		live := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseBetting, PhaseDeadline: now.Add(time.Second)}
		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(live, nil).Once()

		round, err := f.svc.Observe(ctx, market.ID, now)
		require.NoError(t, err)
		assert.Equal(t, live, round)
	})

	t.Run("closes betting and resolves auto markets", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		stale := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseBetting, PhaseDeadline: now}
		results := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseResults, PhaseDeadline: now.Add(time.Minute)}

		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(stale, nil).Once()
		f.repo.On("AdvanceToResults", ctx, market.ID, int64(1), now.Add(time.Minute)).Return(nil).Once()
		f.repo.On("GetLive", ctx, market.ID).Return(results, nil).Once()
		f.settler.On("ResolveRound", mock.Anything, market, int64(1)).Return(nil).Once()

		round, err := f.svc.Observe(ctx, market.ID, now)
		require.NoError(t, err)
		assert.Equal(t, models.PhaseResults, round.Phase)
	})

	t.Run("manual markets wait for an administrator", func(t *testing.T) {
		f := setup(t)
		market := manualMarket()
		stale := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseBetting, PhaseDeadline: now}
		results := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseResults, PhaseDeadline: now.Add(time.Minute)}

		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(stale, nil).Once()
		f.repo.On("AdvanceToResults", ctx, market.ID, int64(1), now.Add(time.Minute)).Return(nil).Once()
		f.repo.On("GetLive", ctx, market.ID).Return(results, nil).Once()

		_, err := f.svc.Observe(ctx, market.ID, now)
		require.NoError(t, err)
		f.settler.AssertNotCalled(t, "ResolveRound", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("opens next round and refunds an unclaimed one", func(t *testing.T) {
		f := setup(t)
		market := manualMarket()
		stale := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseResults, PhaseDeadline: now}
		nextID := now.UnixMilli()
		next := &models.Round{MarketID: market.ID, RoundID: nextID, Phase: models.PhaseBetting, PhaseDeadline: now.Add(300 * time.Second)}

		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(stale, nil).Once()
		f.sqlMock.ExpectBegin()
		f.repo.On("Supersede", ctx, market.ID, int64(1)).Return(nil).Once()
		f.repo.On("CreateLive", ctx, mock.MatchedBy(func(r *models.Round) bool { return r.RoundID == nextID })).Return(nil).Once()
		f.sqlMock.ExpectCommit()
		f.repo.On("GetLive", ctx, market.ID).Return(next, nil).Once()
		f.settler.On("RefundRound", mock.Anything, market, int64(1)).Return(nil).Once()

		round, err := f.svc.Observe(ctx, market.ID, now)
		require.NoError(t, err)
		assert.Equal(t, nextID, round.RoundID)
	})

	t.Run("claimed round is not refunded", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		stale := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseResults, PhaseDeadline: now, SettlementClaimed: true}
		next := &models.Round{MarketID: market.ID, RoundID: now.UnixMilli(), Phase: models.PhaseBetting, PhaseDeadline: now.Add(300 * time.Second)}

		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(stale, nil).Once()
		f.sqlMock.ExpectBegin()
		f.repo.On("Supersede", ctx, market.ID, int64(1)).Return(nil).Once()
		f.repo.On("CreateLive", ctx, mock.Anything).Return(nil).Once()
		f.sqlMock.ExpectCommit()
		f.repo.On("GetLive", ctx, market.ID).Return(next, nil).Once()

		_, err := f.svc.Observe(ctx, market.ID, now)
		require.NoError(t, err)
		f.settler.AssertNotCalled(t, "RefundRound", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("lost transition rereads the winner", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		stale := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseBetting, PhaseDeadline: now}
		winner := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseResults, PhaseDeadline: now.Add(time.Minute)}

		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(stale, nil).Once()
		f.repo.On("AdvanceToResults", ctx, market.ID, int64(1), mock.Anything).Return(models.ErrConcurrentModification).Once()
		f.repo.On("GetLive", ctx, market.ID).Return(winner, nil).Once()

		round, err := f.svc.Observe(ctx, market.ID, now)
		require.NoError(t, err)
		assert.Equal(t, winner, round)
		f.settler.AssertNotCalled(t, "ResolveRound", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed supersede rolls back", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		stale := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseResults, PhaseDeadline: now}

		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(stale, nil).Once()
		f.sqlMock.ExpectBegin()
		f.repo.On("Supersede", ctx, market.ID, int64(1)).Return(errors.New("db down")).Once()
		f.sqlMock.ExpectRollback()

		_, err := f.svc.Observe(ctx, market.ID, now)
		assert.EqualError(t, err, "db down")
	})

	t.Run("inactive market", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		market.IsActive = false
		f.registry.On("Get", ctx, market.ID).Return(market, nil)

		_, err := f.svc.Observe(ctx, market.ID, now)
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})

	t.Run("settler errors do not fail the observer", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		stale := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseBetting, PhaseDeadline: now}
		results := &models.Round{MarketID: market.ID, RoundID: 1, Phase: models.PhaseResults, PhaseDeadline: now.Add(time.Minute)}

		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(stale, nil).Once()
		f.repo.On("AdvanceToResults", ctx, market.ID, int64(1), mock.Anything).Return(nil).Once()
		f.repo.On("GetLive", ctx, market.ID).Return(results, nil).Once()
		f.settler.On("ResolveRound", mock.Anything, market, int64(1)).Return(errors.New("boom")).Once()

		_, err := f.svc.Observe(ctx, market.ID, now)
		assert.NoError(t, err)
	})
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("no previous outcome", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		live := &models.Round{MarketID: market.ID, RoundID: 7, Phase: models.PhaseBetting, PhaseDeadline: now.Add(90 * time.Second)}
		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(live, nil).Once()
		f.repo.On("ListSettled", ctx, market.ID, 1).Return([]models.Round{}, nil).Once()

		snap, err := f.svc.Snapshot(ctx, market.ID, now)
		require.NoError(t, err)
		assert.Equal(t, NoPreviousOutcome, snap.PreviousOutcome)
		assert.True(t, snap.IsOpen)
		assert.Equal(t, int64(90), snap.SecondsRemaining)
		assert.Equal(t, int64(7), snap.RoundID)
	})

	t.Run("results phase is closed and shows last outcome", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		outcome := "4"
		live := &models.Round{MarketID: market.ID, RoundID: 8, Phase: models.PhaseResults, PhaseDeadline: now.Add(time.Second)}
		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.repo.On("GetLive", ctx, market.ID).Return(live, nil).Once()
		f.repo.On("ListSettled", ctx, market.ID, 1).Return([]models.Round{{RoundID: 7, LastResolvedOutcome: &outcome}}, nil).Once()

		snap, err := f.svc.Snapshot(ctx, market.ID, now)
		require.NoError(t, err)
		assert.False(t, snap.IsOpen)
		assert.Equal(t, "4", snap.PreviousOutcome)
	})

	t.Run("outside trading hours", func(t *testing.T) {
		f := setup(t)
		market := autoMarket()
		live := &models.Round{MarketID: market.ID, RoundID: 7, Phase: models.PhaseBetting, PhaseDeadline: now.Add(time.Minute)}
		f.registry.On("Get", ctx, market.ID).Return(market, nil)
		f.registry.On("IsOpen", market, now).Return(false)
		f.repo.On("GetLive", ctx, market.ID).Return(live, nil).Once()
		f.repo.On("ListSettled", ctx, market.ID, 1).Return([]models.Round{}, nil).Once()

		snap, err := f.svc.Snapshot(ctx, market.ID, now)
		require.NoError(t, err)
		assert.False(t, snap.IsOpen)
	})

	t.Run("unknown market", func(t *testing.T) {
		f := setup(t)
		f.registry.On("Get", ctx, "nope").Return(nil, models.ErrRecordNotFound)

		_, err := f.svc.Snapshot(ctx, "nope", now)
		assert.ErrorIs(t, err, models.ErrRecordNotFound)
	})
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	market := autoMarket()
	settledAt := now
	won, refunded := "3", models.OutcomeRefunded

	f.registry.On("Get", ctx, market.ID).Return(market, nil)
	f.repo.On("ListSettled", ctx, market.ID, 50).Return([]models.Round{
		{RoundID: 2, LastResolvedOutcome: &refunded, SettledAt: &settledAt},
		{RoundID: 1, LastResolvedOutcome: &won, SettledAt: &settledAt},
	}, nil).Twice()

	history, err := f.svc.History(ctx, market.ID, 500)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Refunded)
	assert.Equal(t, "3", history[1].Outcome)

	_, err = f.svc.History(ctx, market.ID, 0)
	require.NoError(t, err)
}

func TestTick(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	good, bad := *autoMarket(), *autoMarket()
	bad.ID = "roulette"

	live := &models.Round{MarketID: good.ID, RoundID: 1, Phase: models.PhaseBetting, PhaseDeadline: now.Add(time.Minute)}
	f.registry.On("List", ctx).Return([]models.Market{good, bad}, nil)
	f.registry.On("Get", mock.Anything, good.ID).Return(&good, nil)
	f.registry.On("Get", mock.Anything, bad.ID).Return(nil, errors.New("db down"))
	f.repo.On("GetLive", mock.Anything, good.ID).Return(live, nil).Once()

	assert.NoError(t, f.svc.Tick(ctx, now))

	f2 := setup(t)
	f2.registry.On("List", ctx).Return(nil, errors.New("db down"))
	assert.Error(t, f2.svc.Tick(ctx, now))
}
