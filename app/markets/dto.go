package markets

import (
	"sort"
	"time"

	"github.com/joefazee/roundbet/internal/validator"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
)

// ScheduleRequest sets or clears a market's daily betting window
type ScheduleRequest struct {
	OpenAt  *string `json:"open_at" binding:"omitempty,len=5"`
	CloseAt *string `json:"close_at" binding:"omitempty,len=5"`
}

func (r *ScheduleRequest) Validate(v *validator.Validator) bool {
	v.Check(r.OpenAt == nil || validator.IsValidTimeFormat(*r.OpenAt), "open_at", "open_at must be a 24-hour HH:MM time")
	v.Check(r.CloseAt == nil || validator.IsValidTimeFormat(*r.CloseAt), "close_at", "close_at must be a 24-hour HH:MM time")
	return v.Valid()
}

// MarketResponse represents a market in API responses
type MarketResponse struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Game             models.Game            `json:"game"`
	Domain           models.CandidateDomain `json:"candidate_domain"`
	Candidates       []string               `json:"candidates"`
	CoverGroups      []string               `json:"cover_groups,omitempty"`
	PayoutMultiplier decimal.Decimal        `json:"payout_multiplier"`
	MinStake         decimal.Decimal        `json:"min_stake"`
	BettingSeconds   int                    `json:"betting_duration_seconds"`
	ResultsSeconds   int                    `json:"results_duration_seconds"`
	ResolutionMode   models.ResolutionMode  `json:"resolution_mode"`
	OpenAt           *string                `json:"open_at,omitempty"`
	CloseAt          *string                `json:"close_at,omitempty"`
	Timezone         string                 `json:"timezone"`
	IsOpen           bool                   `json:"is_open"`
}

// ToMarketResponse converts a market to its API shape as seen at now
func ToMarketResponse(m *models.Market, now time.Time) *MarketResponse {
	groups := make([]string, 0, len(m.CoverGroups))
	for name := range m.CoverGroups {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	return &MarketResponse{
		ID:               m.ID,
		Name:             m.Name,
		Game:             m.Game,
		Domain:           m.Domain,
		Candidates:       m.Candidates(),
		CoverGroups:      groups,
		PayoutMultiplier: m.PayoutMultiplier,
		MinStake:         m.MinStake,
		BettingSeconds:   m.BettingDurationSeconds,
		ResultsSeconds:   m.ResultsDurationSeconds,
		ResolutionMode:   m.ResolutionMode,
		OpenAt:           m.OpenAt,
		CloseAt:          m.CloseAt,
		Timezone:         m.Timezone,
		IsOpen:           m.IsActive && m.IsOpen(now),
	}
}

// ToMarketResponseList converts markets to API shapes
func ToMarketResponseList(markets []models.Market, now time.Time) []MarketResponse {
	out := make([]MarketResponse, len(markets))
	for i := range markets {
		out[i] = *ToMarketResponse(&markets[i], now)
	}
	return out
}
