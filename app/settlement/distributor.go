package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/metrics"
	"github.com/joefazee/roundbet/internal/pubsub"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// verdict is what one wager settles to.
type verdict struct {
	status models.WagerStatus
	payout *decimal.Decimal
	credit decimal.Decimal
	tier   models.Tier
	entry  models.EntryType
}

func decide(market *models.Market, directive models.Directive, w *models.Wager) verdict {
	switch {
	case directive.IsRefund():
		stake := w.Stake
		return verdict{
			status: models.WagerStatusRefunded,
			payout: &stake,
			credit: stake,
			tier:   models.TierDeposited,
			entry:  models.EntryTypeRefund,
		}
	case w.Selection == directive.Outcome:
		// cent stakes times a whole multiplier stay at cent precision
		payout := w.Stake.Mul(market.PayoutMultiplier)
		return verdict{
			status: models.WagerStatusWon,
			payout: &payout,
			credit: payout,
			tier:   models.TierWinnings,
			entry:  models.EntryTypePayout,
		}
	default:
		return verdict{status: models.WagerStatusLost}
	}
}

// Distribute settles every open wager of the round against directive, then
// stamps the round settled and records the summary. Each wager moves from
// open exactly once, so running it again only picks up what is left.
func (s *service) Distribute(ctx context.Context, market *models.Market, roundID int64, directive models.Directive) (*models.RoundSettlement, error) {
	start := time.Now()
	summary := &models.RoundSettlement{
		MarketID:    market.ID,
		RoundID:     roundID,
		Outcome:     directive.Label(),
		Trigger:     directive.Trigger,
		TotalStaked: decimal.Zero,
		TotalPaid:   decimal.Zero,
	}

	after := uuid.Nil
	for {
		batch, err := s.wagers.ListOpen(ctx, market.ID, roundID, after, s.config.BatchSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list open wagers: %w", err)
		}

		for i := range batch {
			w := &batch[i]
			after = w.ID

			if reason := w.Integrity(market.Domain); reason != "" {
				s.logger.Warn("DataIntegrityWarning", map[string]interface{}{
					"market_id": market.ID,
					"round_id":  roundID,
					"wager_id":  w.ID.String(),
					"reason":    reason,
				})
				metrics.RecordSkippedWager(market.ID, reason)
				summary.SkippedCount++
				continue
			}

			v := decide(market, directive, w)
			err := s.settleWager(ctx, w, v, roundID)
			if errors.Is(err, models.ErrWagerAlreadySettled) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to settle wager %s: %w", w.ID, err)
			}

			summary.TotalStaked = summary.TotalStaked.Add(w.Stake)
			switch v.status {
			case models.WagerStatusWon:
				summary.WonCount++
			case models.WagerStatusLost:
				summary.LostCount++
			case models.WagerStatusRefunded:
				summary.RefundedCount++
			}
			if v.credit.IsPositive() {
				summary.TotalPaid = summary.TotalPaid.Add(v.credit)
				amount, _ := v.credit.Float64()
				metrics.RecordCredit(market.ID, string(v.entry), amount)
			}
		}

		if len(batch) < s.config.BatchSize {
			break
		}
	}

	if err := s.rounds.MarkSettled(ctx, market.ID, roundID, s.now()); err != nil {
		return nil, fmt.Errorf("failed to mark round settled: %w", err)
	}
	if err := s.repo.UpsertSummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to record settlement summary: %w", err)
	}

	metrics.RecordSettlement(market.ID, string(directive.Trigger), time.Since(start),
		summary.WonCount, summary.LostCount, summary.RefundedCount)

	s.logger.Info("round settled", map[string]interface{}{
		"market_id": market.ID,
		"round_id":  roundID,
		"outcome":   summary.Outcome,
		"trigger":   string(summary.Trigger),
		"won":       summary.WonCount,
		"lost":      summary.LostCount,
		"refunded":  summary.RefundedCount,
		"skipped":   summary.SkippedCount,
		"paid":      summary.TotalPaid.String(),
	})

	s.publishSettled(ctx, summary)
	return summary, nil
}

// settleWager flips one wager out of open and credits its payout in the
// same transaction.
func (s *service) settleWager(ctx context.Context, w *models.Wager, v verdict, roundID int64) error {
	return wallet.Retry(ctx, s.config.CreditRetries, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.wagers.WithTx(tx).Settle(ctx, w.ID, v.status, v.payout, s.now()); err != nil {
				return err
			}
			if !v.credit.IsPositive() {
				return nil
			}

			_, err := s.ledger.WithTx(tx).Credit(ctx, w.UserID, v.credit, v.tier, models.Reference{
				EntryType:   v.entry,
				Type:        models.ReferenceTypeWager,
				ID:          w.ID,
				Description: fmt.Sprintf("%s round %d selection %s", w.MarketID, roundID, w.Selection),
			})
			return err
		})
	})
}

func (s *service) publishSettled(ctx context.Context, summary *models.RoundSettlement) {
	if s.bus == nil {
		return
	}
	err := pubsub.PublishEnvelope(ctx, s.bus, pubsub.RoundChannel(summary.MarketID), pubsub.TypeRoundSettled, toSettledEvent(summary))
	if err != nil {
		s.logger.Warn("failed to publish settlement", map[string]interface{}{
			"market_id": summary.MarketID,
			"error":     err.Error(),
		})
	}
}
