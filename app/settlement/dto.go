package settlement

import (
	"time"

	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
)

// OverrideRequest represents the admin outcome override body
type OverrideRequest struct {
	Outcome string `json:"outcome" binding:"required,max=10"`
}

// OverrideResponse reports the round an override was applied to
type OverrideResponse struct {
	MarketID string           `json:"market_id"`
	RoundID  int64            `json:"round_id"`
	Outcome  string           `json:"outcome"`
	Summary  *SummaryResponse `json:"summary"`
}

// SummaryResponse represents a settled round summary in API responses
type SummaryResponse struct {
	MarketID      string          `json:"market_id"`
	RoundID       int64           `json:"round_id"`
	Outcome       string          `json:"outcome"`
	Trigger       string          `json:"trigger"`
	WonCount      int             `json:"won_count"`
	LostCount     int             `json:"lost_count"`
	RefundedCount int             `json:"refunded_count"`
	SkippedCount  int             `json:"skipped_count"`
	TotalStaked   decimal.Decimal `json:"total_staked" swaggertype:"string"`
	TotalPaid     decimal.Decimal `json:"total_paid" swaggertype:"string"`
	HouseNet      decimal.Decimal `json:"house_net" swaggertype:"string"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SettledEvent is the payload of a round_settled stream message
type SettledEvent struct {
	MarketID string `json:"market_id"`
	RoundID  int64  `json:"round_id"`
	Outcome  string `json:"outcome"`
	Trigger  string `json:"trigger"`
	Won      int    `json:"won"`
	Lost     int    `json:"lost"`
	Refunded int    `json:"refunded"`
}

// ToSummaryResponse converts a settlement model to its response
func ToSummaryResponse(s *models.RoundSettlement) *SummaryResponse {
	if s == nil {
		return nil
	}
	return &SummaryResponse{
		MarketID:      s.MarketID,
		RoundID:       s.RoundID,
		Outcome:       s.Outcome,
		Trigger:       string(s.Trigger),
		WonCount:      s.WonCount,
		LostCount:     s.LostCount,
		RefundedCount: s.RefundedCount,
		SkippedCount:  s.SkippedCount,
		TotalStaked:   s.TotalStaked,
		TotalPaid:     s.TotalPaid,
		HouseNet:      s.HouseNet(),
		UpdatedAt:     s.UpdatedAt,
	}
}

func toSettledEvent(s *models.RoundSettlement) SettledEvent {
	return SettledEvent{
		MarketID: s.MarketID,
		RoundID:  s.RoundID,
		Outcome:  s.Outcome,
		Trigger:  string(s.Trigger),
		Won:      s.WonCount,
		Lost:     s.LostCount,
		Refunded: s.RefundedCount,
	}
}
