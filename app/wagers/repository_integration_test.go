package wagers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/cache"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/models"
	"github.com/joefazee/roundbet/tests/suites"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type WagersIntegrationTestSuite struct {
	suites.RepositoryTestSuite
	repo    Repository
	ledger  wallet.Service
	svc     *service
	cache   *cache.MemoryCache[string]
	rounds  rounds.Service
	clock   time.Time
	clockMu sync.Mutex
}

func (suite *WagersIntegrationTestSuite) SetupSuite() {
	if testing.Short() {
		suite.T().Skip("Skipping database integration test")
	}

	suite.AutoMigrate = true
	suite.RepositoryTestSuite.SetupSuite()
}

func (suite *WagersIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	log := logger.NewNullLogger()

	suite.cache = cache.NewMemoryCache[string]()
	registry := markets.NewService(markets.NewRepository(suite.DB), suite.DB, suite.cache, nil, log)
	suite.Require().NoError(registry.Sync(ctx, markets.DefaultCatalogue()))

	suite.rounds = rounds.NewService(rounds.NewRepository(suite.DB), suite.DB, registry, nil, nil, log)
	suite.ledger = wallet.NewService(wallet.NewRepository(suite.DB), suite.DB, &wallet.Config{MaxRetries: 50}, log, nil)
	suite.repo = NewRepository(suite.DB)
	suite.svc = NewService(suite.repo, suite.DB, registry, suite.rounds, suite.ledger, &Config{PlaceRetries: 50}, log).(*service)

	suite.clock = time.Now()
	suite.svc.now = func() time.Time {
		suite.clockMu.Lock()
		defer suite.clockMu.Unlock()
		return suite.clock
	}
}

func (suite *WagersIntegrationTestSuite) TearDownTest() {
	suite.cache.Stop()
	suite.RepositoryTestSuite.TearDownTest()
}

func TestWagersIntegration(t *testing.T) {
	suite.Run(t, new(WagersIntegrationTestSuite))
}

func (suite *WagersIntegrationTestSuite) fund(userID uuid.UUID, amount string) {
	_, err := suite.ledger.Credit(context.Background(), userID, decimal.RequireFromString(amount), models.TierDeposited,
		models.Reference{EntryType: models.EntryTypeDeposit})
	suite.Require().NoError(err)
}

func (suite *WagersIntegrationTestSuite) TestPlaceCoverDebitsOnceAndFansOut() {
	ctx := context.Background()
	userID := uuid.New()
	suite.fund(userID, "200")

	resp, err := suite.svc.PlaceWager(ctx, userID, "roulette", &PlaceWagerRequest{Cover: "red", Stake: decimal.RequireFromString("100")})
	suite.Require().NoError(err)
	suite.Len(resp.Wagers, 18)

	balance, err := suite.ledger.GetBalance(ctx, userID)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(100).Equal(balance.TotalBalance), balance.TotalBalance.String())

	agg, err := suite.svc.RoundAggregate(ctx, "roulette", resp.RoundID)
	suite.Require().NoError(err)
	suite.Len(agg.Candidates, 38)
	suite.True(decimal.NewFromInt(100).Equal(agg.TotalStake))

	history, total, err := suite.svc.ListUserWagers(ctx, userID, &Filter{MarketID: "roulette"})
	suite.Require().NoError(err)
	suite.Equal(int64(18), total)
	suite.Len(history, 18)
}

func (suite *WagersIntegrationTestSuite) TestInsufficientFundsWritesNothing() {
	ctx := context.Background()
	userID := uuid.New()
	suite.fund(userID, "5")

	_, err := suite.svc.PlaceWager(ctx, userID, "wingame", &PlaceWagerRequest{Selection: "3", Stake: decimal.NewFromInt(10)})
	suite.ErrorIs(err, models.ErrInsufficientFunds)
	suite.Equal(int64(0), suite.CountRecords("wagers"))
}

func (suite *WagersIntegrationTestSuite) TestConcurrentPlacementsNeverOverdraw() {
	ctx := context.Background()
	userID := uuid.New()
	suite.fund(userID, "50")

	// Open the round up front so every placement targets the same one.
	_, err := suite.rounds.Observe(ctx, "wingame", suite.svc.now())
	suite.Require().NoError(err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var placed, rejected int
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.svc.PlaceWager(ctx, userID, "wingame", &PlaceWagerRequest{Selection: "5", Stake: decimal.NewFromInt(10)})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, models.ErrInsufficientFunds):
				rejected++
			default:
				suite.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	suite.Equal(5, placed)
	suite.Equal(5, rejected)
	suite.Equal(int64(5), suite.CountRecords("wagers"))

	balance, err := suite.ledger.GetBalance(ctx, userID)
	suite.Require().NoError(err)
	suite.True(balance.TotalBalance.IsZero())
}

func (suite *WagersIntegrationTestSuite) TestClosedRoundRejects() {
	ctx := context.Background()
	userID := uuid.New()
	suite.fund(userID, "100")

	round, err := suite.rounds.Observe(ctx, "wingame", suite.svc.now())
	suite.Require().NoError(err)

	suite.clockMu.Lock()
	suite.clock = round.PhaseDeadline.Add(time.Second)
	suite.clockMu.Unlock()

	// The placement itself observes the stale deadline and flips the round.
	resp, err := suite.svc.PlaceWager(ctx, userID, "wingame", &PlaceWagerRequest{Selection: "5", Stake: decimal.NewFromInt(10)})
	suite.Nil(resp)
	suite.ErrorIs(err, models.ErrMarketClosed)

	live, err := suite.rounds.Observe(ctx, "wingame", suite.svc.now())
	suite.Require().NoError(err)
	suite.Equal(models.PhaseResults, live.Phase)
}

func (suite *WagersIntegrationTestSuite) TestReports() {
	ctx := context.Background()
	userID := uuid.New()
	suite.fund(userID, "100")

	resp, err := suite.svc.PlaceWager(ctx, userID, "wingame", &PlaceWagerRequest{Selection: "5", Stake: decimal.NewFromInt(20)})
	suite.Require().NoError(err)
	_, err = suite.svc.PlaceWager(ctx, userID, "wingame", &PlaceWagerRequest{Selection: "6", Stake: decimal.NewFromInt(10)})
	suite.Require().NoError(err)

	payout := decimal.NewFromInt(200)
	suite.Require().NoError(suite.repo.Settle(ctx, resp.Wagers[0].ID, models.WagerStatusWon, &payout, time.Now()))
	suite.ErrorIs(suite.repo.Settle(ctx, resp.Wagers[0].ID, models.WagerStatusLost, nil, time.Now()), models.ErrWagerAlreadySettled)

	pl, err := suite.svc.ProfitLoss(ctx, &ReportFilter{MarketID: "wingame"})
	suite.Require().NoError(err)
	suite.Require().Len(pl.Markets, 1)
	suite.True(decimal.NewFromInt(30).Equal(pl.Collection))
	suite.True(decimal.NewFromInt(-170).Equal(pl.Profit))

	wl, err := suite.svc.PlayerWinLoss(ctx, userID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), wl.TotalWagers)
	suite.Equal(int64(1), wl.WonCount)
	suite.True(decimal.NewFromInt(180).Equal(wl.Net))
	suite.True(decimal.NewFromInt(10).Equal(wl.OpenStake))
}
