package wagers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/metrics"
	"github.com/joefazee/roundbet/models"
	"gorm.io/gorm"
)

const maxPerPage = 100

type service struct {
	repo     Repository
	db       *gorm.DB
	registry markets.Registry
	observer rounds.Observer
	ledger   wallet.Ledger
	config   *Config
	logger   logger.Logger
	now      func() time.Time
}

// NewService creates a new bet ledger
func NewService(repo Repository, db *gorm.DB, registry markets.Registry, observer rounds.Observer, ledger wallet.Ledger, config *Config, log logger.Logger) Service {
	if config == nil {
		config = GetDefaultConfig()
	}
	return &service{
		repo:     repo,
		db:       db,
		registry: registry,
		observer: observer,
		ledger:   ledger,
		config:   config,
		logger:   log,
		now:      time.Now,
	}
}

// PlaceWager debits the player and records the wager, or its cover fan-out,
// against the live round in one transaction.
func (s *service) PlaceWager(ctx context.Context, userID uuid.UUID, marketID string, req *PlaceWagerRequest) (*PlacementResponse, error) {
	resp, err := s.placeWager(ctx, userID, marketID, req)
	if err != nil {
		metrics.RecordWagerRejected(marketID, RejectionCode(err))
		return nil, err
	}
	stake, _ := resp.TotalStake.Float64()
	metrics.RecordWagerPlaced(marketID, stake)
	return resp, nil
}

func (s *service) placeWager(ctx context.Context, userID uuid.UUID, marketID string, req *PlaceWagerRequest) (*PlacementResponse, error) {
	if userID == uuid.Nil {
		return nil, models.ErrInvalidUserID
	}

	market, err := s.registry.Get(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if !market.IsActive {
		return nil, models.ErrRecordNotFound
	}

	selections, cover, err := resolveSelections(market, req)
	if err != nil {
		return nil, err
	}

	if req.Stake.LessThan(market.MinStake) {
		return nil, models.ErrBelowMinimumStake
	}
	shares, err := SplitStake(req.Stake, len(selections))
	if err != nil {
		return nil, err
	}

	now := s.now()
	round, err := s.observer.Observe(ctx, marketID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load live round: %w", err)
	}
	if !round.AcceptsWagers(now) || !s.registry.IsOpen(market, now) {
		return nil, models.ErrMarketClosed
	}

	placementID := uuid.New()
	wagers := make([]models.Wager, len(selections))
	for i, sel := range selections {
		wagers[i] = models.Wager{
			ID:          uuid.New(),
			MarketID:    marketID,
			RoundID:     round.RoundID,
			UserID:      userID,
			Selection:   sel,
			Stake:       shares[i],
			Status:      models.WagerStatusOpen,
			CoverGroup:  cover,
			PlacementID: placementID,
			CreatedAt:   now,
		}
	}

	ref := models.Reference{
		EntryType:   models.EntryTypeBetPlace,
		Type:        models.ReferenceTypePlacement,
		ID:          placementID,
		Description: fmt.Sprintf("%s round %d", marketID, round.RoundID),
	}

	err = wallet.Retry(ctx, s.config.PlaceRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.LockBettingRound(ctx, marketID, round.RoundID, now); err != nil {
				return err
			}
			if _, err := s.ledger.WithTx(tx).Debit(ctx, userID, req.Stake, ref); err != nil {
				return err
			}
			return repo.CreateBatch(ctx, wagers)
		})
	})
	if err != nil {
		if !isRejection(err) {
			s.logger.Error(err, map[string]interface{}{
				"message":   "failed to place wager",
				"market_id": marketID,
				"round_id":  round.RoundID,
				"user_id":   userID.String(),
			})
		}
		return nil, err
	}

	s.logger.Info("wager placed", map[string]interface{}{
		"market_id":    marketID,
		"round_id":     round.RoundID,
		"placement_id": placementID.String(),
		"legs":         len(wagers),
		"stake":        req.Stake.String(),
	})

	return &PlacementResponse{
		PlacementID: placementID,
		RoundID:     round.RoundID,
		TotalStake:  req.Stake,
		Wagers:      ToWagerResponseList(wagers),
	}, nil
}

func resolveSelections(market *models.Market, req *PlaceWagerRequest) ([]string, *string, error) {
	switch {
	case req.Selection != "" && req.Cover != "":
		return nil, nil, models.ErrInvalidSelection
	case req.Selection != "":
		if !market.Domain.Contains(req.Selection) {
			return nil, nil, models.ErrInvalidSelection
		}
		return []string{req.Selection}, nil, nil
	case req.Cover != "":
		selections, err := market.Expand(req.Cover)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", models.ErrInvalidSelection, err)
		}
		cover := req.Cover
		return selections, &cover, nil
	default:
		return nil, nil, models.ErrInvalidSelection
	}
}

func isRejection(err error) bool {
	return RejectionCode(err) != "INTERNAL_ERROR"
}

// RejectionCode names the reason a wager was refused.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, models.ErrMarketClosed):
		return "MARKET_CLOSED"
	case errors.Is(err, models.ErrInvalidSelection):
		return "INVALID_SELECTION"
	case errors.Is(err, models.ErrBelowMinimumStake), errors.Is(err, models.ErrInvalidStake):
		return "BELOW_MINIMUM_STAKE"
	case errors.Is(err, models.ErrStakePrecision):
		return "INVALID_STAKE_PRECISION"
	case errors.Is(err, models.ErrConcurrentModification):
		return "CONFLICT"
	case errors.Is(err, models.ErrRecordNotFound):
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

func (s *service) ListUserWagers(ctx context.Context, userID uuid.UUID, filter *Filter) ([]WagerResponse, int64, error) {
	if filter == nil {
		filter = &Filter{}
	}
	page, perPage := filter.Page, filter.PerPage
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	wagers, total, err := s.repo.ListByUser(ctx, userID, filter, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wagers: %w", err)
	}
	return ToWagerResponseList(wagers), total, nil
}

// RoundAggregate reports the stake on every candidate of a round, including
// settled wagers.
func (s *service) RoundAggregate(ctx context.Context, marketID string, roundID int64) (*AggregateResponse, error) {
	market, err := s.registry.Get(ctx, marketID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Aggregate(ctx, marketID, roundID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate wagers: %w", err)
	}
	return BuildAggregate(market, roundID, rows), nil
}

func (s *service) ProfitLoss(ctx context.Context, filter *ReportFilter) (*ProfitLossResponse, error) {
	rows, err := s.repo.ProfitLoss(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build profit and loss: %w", err)
	}
	return ToProfitLoss(filter, rows), nil
}

func (s *service) PlayerWinLoss(ctx context.Context, userID uuid.UUID) (*WinLossResponse, error) {
	rows, err := s.repo.PlayerTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build win and loss: %w", err)
	}
	return ToWinLoss(userID, rows), nil
}

