package settlement

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/wagers"
	"github.com/joefazee/roundbet/internal/metrics"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowestStake returns the candidate carrying the smallest total stake.
// Candidates absent from totals count as zero. Ties are broken uniformly
// at random by rng.
func LowestStake(candidates []string, totals map[string]decimal.Decimal, rng Picker) (string, error) {
	if len(candidates) == 0 {
		return "", models.ErrInvalidCandidateDomain
	}

	var (
		lowest decimal.Decimal
		tied   []string
	)
	for i, c := range candidates {
		stake := totals[c]
		switch {
		case i == 0 || stake.LessThan(lowest):
			lowest = stake
			tied = append(tied[:0], c)
		case stake.Equal(lowest):
			tied = append(tied, c)
		}
	}

	if len(tied) == 1 {
		return tied[0], nil
	}
	return tied[rng.IntN(len(tied))], nil
}

// ResolveRound picks the lowest-stake outcome of a round that has just
// entered results and settles it. A round nobody bet on is left for the
// timeout refund.
func (s *service) ResolveRound(ctx context.Context, market *models.Market, roundID int64) error {
	rows, err := s.wagers.Aggregate(ctx, market.ID, roundID, true)
	if err != nil {
		return fmt.Errorf("failed to aggregate wagers: %w", err)
	}

	agg := wagers.BuildAggregate(market, roundID, rows)
	if agg.TotalWagers == 0 {
		s.logger.Info("round has no wagers, awaiting timeout", map[string]interface{}{
			"market_id": market.ID,
			"round_id":  roundID,
		})
		return models.ErrNoWagers
	}

	outcome, err := LowestStake(market.Candidates(), agg.Totals(), s.picker)
	if err != nil {
		return err
	}

	_, err = s.claimAndDistribute(ctx, market, roundID, outcome, models.TriggerAuto)
	return err
}

// RefundRound returns every open stake of a round that timed out without
// being claimed. An override recorded before the claim still wins.
func (s *service) RefundRound(ctx context.Context, market *models.Market, roundID int64) error {
	_, err := s.claimAndDistribute(ctx, market, roundID, models.OutcomeRefunded, models.TriggerTimeout)
	return err
}

// claimAndDistribute takes the round's single settlement claim and pays it
// out using whatever outcome the claim stored.
func (s *service) claimAndDistribute(ctx context.Context, market *models.Market, roundID int64, outcome string, trigger models.SettlementTrigger) (*models.RoundSettlement, error) {
	if err := s.rounds.ClaimSettlement(ctx, market.ID, roundID, outcome); err != nil {
		if errors.Is(err, models.ErrConcurrentModification) {
			metrics.RecordCASConflict("settlement_claim")
		}
		return nil, err
	}

	round, err := s.rounds.GetRound(ctx, market.ID, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload claimed round: %w", err)
	}

	if round.ManualOverrideOutcome != nil && *round.ManualOverrideOutcome == round.Outcome() {
		trigger = models.TriggerManual
	}

	s.logger.Info("round claimed", map[string]interface{}{
		"market_id": market.ID,
		"round_id":  roundID,
		"outcome":   round.Outcome(),
		"trigger":   string(trigger),
	})

	return s.Distribute(ctx, market, roundID, models.Directive{
		Outcome: round.Outcome(),
		Trigger: trigger,
	})
}

// OverrideOutcome records an administrator's outcome on the market's live
// results round and settles the round with it.
func (s *service) OverrideOutcome(ctx context.Context, adminID uuid.UUID, marketID, outcome string) (*OverrideResponse, error) {
	market, err := s.registry.Get(ctx, marketID)
	if err != nil {
		return nil, err
	}

	round, err := s.rounds.GetLive(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if round.Phase != models.PhaseResults {
		return nil, models.ErrRoundNotInResults
	}
	if !market.Domain.Contains(outcome) {
		return nil, models.ErrInvalidSelection
	}
	if round.SettlementClaimed {
		return nil, models.ErrConcurrentModification
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.rounds.WithTx(tx).SetOverride(ctx, marketID, round.RoundID, outcome); err != nil {
			return err
		}

		old := models.AuditValues{}
		if round.ManualOverrideOutcome != nil {
			old["outcome"] = *round.ManualOverrideOutcome
		}
		audit := models.NewAdminAuditLog(adminID, models.AuditActionOverrideOutcome, models.AuditResourceRound,
			marketID+"/"+strconv.FormatInt(round.RoundID, 10),
			old, models.AuditValues{"outcome": outcome})
		return s.repo.WithTx(tx).CreateAuditLog(ctx, audit)
	})
	if err != nil {
		if errors.Is(err, models.ErrConcurrentModification) {
			metrics.RecordCASConflict("override")
		}
		return nil, err
	}

	resp := &OverrideResponse{MarketID: marketID, RoundID: round.RoundID, Outcome: outcome}

	summary, err := s.claimAndDistribute(ctx, market, round.RoundID, outcome, models.TriggerManual)
	if errors.Is(err, models.ErrConcurrentModification) {
		// The automatic resolver claimed first; the stored override still
		// decided its outcome.
		s.logger.Debug("override claim lost", map[string]interface{}{
			"market_id": marketID,
			"round_id":  round.RoundID,
		})
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	resp.Summary = ToSummaryResponse(summary)
	return resp, nil
}
