package settlement

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/wagers"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/pubsub"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

// PickerFunc adapts a function to Picker.
type PickerFunc func(n int) int

func (f PickerFunc) IntN(n int) int { return f(n) }

type service struct {
	repo     Repository
	rounds   rounds.Repository
	wagers   wagers.Repository
	ledger   wallet.Ledger
	registry markets.Registry
	db       *gorm.DB
	bus      pubsub.Bus
	config   *Config
	logger   logger.Logger
	picker   Picker
	now      func() time.Time
}

// Dependencies groups the collaborators of the settlement service.
type Dependencies struct {
	Repo     Repository
	Rounds   rounds.Repository
	Wagers   wagers.Repository
	Ledger   wallet.Ledger
	Registry markets.Registry
	DB       *gorm.DB
	Bus      pubsub.Bus
	Logger   logger.Logger
}

// NewService creates a new settlement service
func NewService(d Dependencies, config *Config) Service {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &service{
		repo:     d.Repo,
		rounds:   d.Rounds,
		wagers:   d.Wagers,
		ledger:   d.Ledger,
		registry: d.Registry,
		db:       d.DB,
		bus:      d.Bus,
		config:   config,
		logger:   d.Logger,
		picker:   PickerFunc(rand.IntN),
		now:      time.Now,
	}
}

func (s *service) GetSummary(ctx context.Context, marketID string, roundID int64) (*models.RoundSettlement, error) {
	if _, err := s.registry.Get(ctx, marketID); err != nil {
		return nil, err
	}
	return s.repo.GetSummary(ctx, marketID, roundID)
}

// ResumePending finishes distribution for rounds that were claimed but
// never stamped settled, typically after a crash mid-payout. It returns the
// number of rounds it completed.
func (s *service) ResumePending(ctx context.Context, now time.Time) (int, error) {
	pending, err := s.rounds.ListUnsettled(ctx, now.Add(-s.config.ResumeAfter), s.config.ResumeLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsettled rounds: %w", err)
	}

	done := 0
	for i := range pending {
		round := &pending[i]
		market, err := s.registry.Get(ctx, round.MarketID)
		if err != nil {
			s.logger.Error(err, map[string]interface{}{
				"message":   "resume skipped round of unknown market",
				"market_id": round.MarketID,
				"round_id":  round.RoundID,
			})
			continue
		}

		s.logger.Info("resuming settlement", map[string]interface{}{
			"market_id": round.MarketID,
			"round_id":  round.RoundID,
			"outcome":   round.Outcome(),
		})
		if _, err := s.Distribute(ctx, market, round.RoundID, models.Directive{
			Outcome: round.Outcome(),
			Trigger: models.TriggerResume,
		}); err != nil {
			s.logger.Error(err, map[string]interface{}{
				"message":   "resume failed",
				"market_id": round.MarketID,
				"round_id":  round.RoundID,
			})
			continue
		}
		done++
	}
	return done, nil
}
