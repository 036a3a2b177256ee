package rounds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/metrics"
	"github.com/joefazee/roundbet/internal/pubsub"
	"github.com/joefazee/roundbet/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// maxSteps bounds the transitions applied by one Observe call. A market
// left unobserved for several cycles catches up one cycle at a time.
const maxSteps = 4

// NoPreviousOutcome is shown before a market has settled any round.
const NoPreviousOutcome = "N/A"

type service struct {
	repo     Repository
	db       *gorm.DB
	registry markets.Registry
	bus      pubsub.Bus
	config   *Config
	logger   logger.Logger
	settler  Settler
	dispatch func(fn func())
}

// NewService creates a new round scheduler
func NewService(repo Repository, db *gorm.DB, registry markets.Registry, bus pubsub.Bus, config *Config, log logger.Logger) Service {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &service{
		repo:     repo,
		db:       db,
		registry: registry,
		bus:      bus,
		config:   config,
		logger:   log,
		dispatch: func(fn func()) { go fn() },
	}
}

func (s *service) SetSettler(settler Settler) {
	s.settler = settler
}

// TimeRemaining is how long is left until deadline, never negative.
func TimeRemaining(now, deadline time.Time) time.Duration {
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Observe loads the live round, creating the first one for a new market,
// and moves it through every elapsed deadline.
func (s *service) Observe(ctx context.Context, marketID string, now time.Time) (*models.Round, error) {
	market, err := s.registry.Get(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !market.IsActive {
		return nil, models.ErrRecordNotFound
	}

	var round *models.Round
	for step := 0; step < maxSteps; step++ {
		round, err = s.repo.GetLive(ctx, marketID)
		if errors.Is(err, models.ErrRecordNotFound) {
			if err := s.openInitial(ctx, market, now); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load live round: %w", err)
		}

		if !round.IsStale(now) {
			return round, nil
		}

		switch round.Phase {
		case models.PhaseBetting:
			err = s.closeBetting(ctx, market, round, now)
		case models.PhaseResults:
			err = s.openNext(ctx, market, round, now)
		default:
			return nil, fmt.Errorf("round %d of %s has unknown phase %q", round.RoundID, marketID, round.Phase)
		}
		if errors.Is(err, models.ErrConcurrentModification) {
			metrics.RecordCASConflict("phase_transition")
			s.logger.Debug("round transition lost", map[string]interface{}{
				"market_id": marketID,
				"round_id":  round.RoundID,
				"phase":     string(round.Phase),
			})
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	return round, nil
}

func (s *service) bettingDeadline(market *models.Market, now time.Time) time.Time {
	if market.IsScheduled() {
		return market.NextClose(now)
	}
	return now.Add(market.BettingDuration())
}

func (s *service) openInitial(ctx context.Context, market *models.Market, now time.Time) error {
	round := &models.Round{
		MarketID:      market.ID,
		RoundID:       models.NewRoundID(now, 0),
		Phase:         models.PhaseBetting,
		PhaseDeadline: s.bettingDeadline(market, now),
	}
	err := s.repo.CreateLive(ctx, round)
	if errors.Is(err, models.ErrConcurrentModification) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open first round: %w", err)
	}

	s.logger.Info("first round opened", map[string]interface{}{
		"market_id": market.ID,
		"round_id":  round.RoundID,
	})
	s.transitioned(ctx, round, now)
	return nil
}

func (s *service) closeBetting(ctx context.Context, market *models.Market, round *models.Round, now time.Time) error {
	deadline := now.Add(market.ResultsDuration())
	if err := s.repo.AdvanceToResults(ctx, market.ID, round.RoundID, deadline); err != nil {
		return err
	}

	closed := *round
	closed.Phase, closed.PhaseDeadline = models.PhaseResults, deadline
	s.transitioned(ctx, &closed, now)

	if market.ResolutionMode == models.ResolutionAuto && s.settler != nil {
		s.run(ctx, "resolve", market, round.RoundID, s.settler.ResolveRound)
	}
	return nil
}

func (s *service) openNext(ctx context.Context, market *models.Market, round *models.Round, now time.Time) error {
	next := &models.Round{
		MarketID:      market.ID,
		RoundID:       models.NewRoundID(now, round.RoundID),
		Phase:         models.PhaseBetting,
		PhaseDeadline: s.bettingDeadline(market, now),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Supersede(ctx, market.ID, round.RoundID); err != nil {
			return err
		}
		return repo.CreateLive(ctx, next)
	})
	if err != nil {
		return err
	}

	s.transitioned(ctx, next, now)

	if !round.SettlementClaimed && s.settler != nil {
		s.run(ctx, "refund", market, round.RoundID, s.settler.RefundRound)
	}
	return nil
}

// run hands a settlement call to the dispatcher, detached from the
// observer's request.
func (s *service) run(ctx context.Context, action string, market *models.Market, roundID int64, fn func(context.Context, *models.Market, int64) error) {
	detached := context.WithoutCancel(ctx)
	s.dispatch(func() {
		err := fn(detached, market, roundID)
		switch {
		case err == nil:
		case errors.Is(err, models.ErrConcurrentModification), errors.Is(err, models.ErrNoWagers):
			s.logger.Debug("settlement "+action+" skipped", map[string]interface{}{
				"market_id": market.ID,
				"round_id":  roundID,
				"reason":    err.Error(),
			})
		default:
			s.logger.Error(err, map[string]interface{}{
				"message":   "settlement " + action + " failed",
				"market_id": market.ID,
				"round_id":  roundID,
			})
		}
	})
}

func (s *service) transitioned(ctx context.Context, round *models.Round, now time.Time) {
	metrics.RecordTransition(round.MarketID, string(round.Phase))
	if s.bus == nil {
		return
	}
	err := pubsub.PublishEnvelope(ctx, s.bus, pubsub.RoundChannel(round.MarketID), pubsub.TypeRoundState, ToRoundState(round, now))
	if err != nil {
		s.logger.Warn("failed to publish round state", map[string]interface{}{
			"market_id": round.MarketID,
			"error":     err.Error(),
		})
	}
}

// Snapshot observes the market and describes its live round.
func (s *service) Snapshot(ctx context.Context, marketID string, now time.Time) (*Snapshot, error) {
	round, err := s.Observe(ctx, marketID, now)
	if err != nil {
		return nil, err
	}
	market, err := s.registry.Get(ctx, marketID)
	if err != nil {
		return nil, err
	}

	previous := NoPreviousOutcome
	settled, err := s.repo.ListSettled(ctx, marketID, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous round: %w", err)
	}
	if len(settled) > 0 && settled[0].LastResolvedOutcome != nil {
		previous = *settled[0].LastResolvedOutcome
	}

	return &Snapshot{
		RoundState:      *ToRoundState(round, now),
		IsOpen:          round.AcceptsWagers(now) && s.registry.IsOpen(market, now),
		PreviousOutcome: previous,
	}, nil
}

// History lists the market's settled rounds, newest first.
func (s *service) History(ctx context.Context, marketID string, limit int) ([]HistoryEntry, error) {
	if _, err := s.registry.Get(ctx, marketID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.config.HistoryLimit {
		limit = s.config.HistoryLimit
	}

	rounds, err := s.repo.ListSettled(ctx, marketID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load round history: %w", err)
	}
	return ToHistory(rounds), nil
}

// Tick observes every active market once. One market failing does not stop
// the others.
func (s *service) Tick(ctx context.Context, now time.Time) error {
	start := time.Now()
	defer func() { metrics.RecordTick(time.Since(start)) }()

	list, err := s.registry.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list markets: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.TickConcurrency)
	for i := range list {
		id := list[i].ID
		g.Go(func() error {
			if _, err := s.Observe(gctx, id, now); err != nil {
				s.logger.Error(err, map[string]interface{}{
					"message":   "observe failed",
					"market_id": id,
				})
			}
			return nil
		})
	}
	return g.Wait()
}
