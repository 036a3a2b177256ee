package wagers

import (
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
)

// PlaceWagerRequest stakes on a single candidate or spreads the stake over
// a cover group. Exactly one of Selection and Cover is set.
// @Description Request payload for placing a wager on the live round
type PlaceWagerRequest struct {
	Selection string          `json:"selection,omitempty" binding:"omitempty,max=10" example:"07"`
	Cover     string          `json:"cover,omitempty" binding:"omitempty,max=20" example:"andar-0"`
	Stake     decimal.Decimal `json:"stake" swaggertype:"string" example:"100.00"`
}

// WagerResponse represents a wager in API responses
type WagerResponse struct {
	ID          uuid.UUID          `json:"id"`
	MarketID    string             `json:"market_id"`
	RoundID     int64              `json:"round_id"`
	Selection   string             `json:"selection"`
	Stake       decimal.Decimal    `json:"stake" swaggertype:"string"`
	Status      models.WagerStatus `json:"status"`
	Payout      *decimal.Decimal   `json:"payout,omitempty" swaggertype:"string"`
	CoverGroup  *string            `json:"cover_group,omitempty"`
	PlacementID uuid.UUID          `json:"placement_id"`
	CreatedAt   time.Time          `json:"created_at"`
	SettledAt   *time.Time         `json:"settled_at,omitempty"`
}

// PlacementResponse is the result of one PlaceWager call
type PlacementResponse struct {
	PlacementID uuid.UUID       `json:"placement_id"`
	RoundID     int64           `json:"round_id"`
	TotalStake  decimal.Decimal `json:"total_stake" swaggertype:"string"`
	Wagers      []WagerResponse `json:"wagers"`
}

// Filter narrows a player's wager history
type Filter struct {
	MarketID string `form:"market_id"`
	Status   string `form:"status" binding:"omitempty,oneof=open won lost refunded"`
	Page     int    `form:"-"`
	PerPage  int    `form:"-"`
}

// ReportFilter narrows the profit and loss report
type ReportFilter struct {
	MarketID string     `form:"market_id"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// SelectionTotal is one row of a per-selection aggregate query
type SelectionTotal struct {
	Selection     string
	StakeSum      decimal.Decimal
	WagerCount    int64
	DistinctUsers int64
}

// CandidateAggregate is the stake placed on one candidate
type CandidateAggregate struct {
	Selection     string          `json:"selection"`
	StakeSum      decimal.Decimal `json:"stake_sum" swaggertype:"string"`
	WagerCount    int64           `json:"wager_count"`
	DistinctUsers int64           `json:"distinct_users"`
}

// AggregateResponse lists every candidate of the market, staked or not
type AggregateResponse struct {
	MarketID    string               `json:"market_id"`
	RoundID     int64                `json:"round_id"`
	TotalStake  decimal.Decimal      `json:"total_stake" swaggertype:"string"`
	TotalWagers int64                `json:"total_wagers"`
	Candidates  []CandidateAggregate `json:"candidates"`
}

// MarketTotals is one market's row of the profit and loss query
type MarketTotals struct {
	MarketID   string
	Collection decimal.Decimal
	PaidOut    decimal.Decimal
	Refunded   decimal.Decimal
	OpenStake  decimal.Decimal
	WagerCount int64
}

// MarketProfitLoss is one market's line in the report
type MarketProfitLoss struct {
	MarketID    string          `json:"market_id"`
	Collection  decimal.Decimal `json:"collection" swaggertype:"string"`
	PaidOut     decimal.Decimal `json:"paid_out" swaggertype:"string"`
	Refunded    decimal.Decimal `json:"refunded" swaggertype:"string"`
	OpenStake   decimal.Decimal `json:"open_stake" swaggertype:"string"`
	HouseProfit decimal.Decimal `json:"house_profit" swaggertype:"string"`
	WagerCount  int64           `json:"wager_count"`
}

// ProfitLossResponse is the house result across markets
type ProfitLossResponse struct {
	From       *time.Time         `json:"from,omitempty"`
	To         *time.Time         `json:"to,omitempty"`
	Collection decimal.Decimal    `json:"collection" swaggertype:"string"`
	PaidOut    decimal.Decimal    `json:"paid_out" swaggertype:"string"`
	Refunded   decimal.Decimal    `json:"refunded" swaggertype:"string"`
	Profit     decimal.Decimal    `json:"house_profit" swaggertype:"string"`
	Markets    []MarketProfitLoss `json:"markets"`
}

// StatusTotals is one status row of a player's wagers
type StatusTotals struct {
	Status    models.WagerStatus
	Count     int64
	StakeSum  decimal.Decimal
	PayoutSum decimal.Decimal
}

// WinLossResponse summarises one player's results
type WinLossResponse struct {
	UserID        uuid.UUID       `json:"user_id"`
	TotalWagers   int64           `json:"total_wagers"`
	TotalStaked   decimal.Decimal `json:"total_staked" swaggertype:"string"`
	OpenStake     decimal.Decimal `json:"open_stake" swaggertype:"string"`
	WonCount      int64           `json:"won_count"`
	LostCount     int64           `json:"lost_count"`
	RefundedCount int64           `json:"refunded_count"`
	TotalWon      decimal.Decimal `json:"total_won" swaggertype:"string"`
	TotalLost     decimal.Decimal `json:"total_lost" swaggertype:"string"`
	TotalRefunded decimal.Decimal `json:"total_refunded" swaggertype:"string"`
	// Net is payouts less the stakes of settled, non-refunded wagers.
	Net decimal.Decimal `json:"net" swaggertype:"string"`
}

// ToWagerResponse converts a wager model to response
func ToWagerResponse(w *models.Wager) WagerResponse {
	return WagerResponse{
		ID:          w.ID,
		MarketID:    w.MarketID,
		RoundID:     w.RoundID,
		Selection:   w.Selection,
		Stake:       w.Stake,
		Status:      w.Status,
		Payout:      w.Payout,
		CoverGroup:  w.CoverGroup,
		PlacementID: w.PlacementID,
		CreatedAt:   w.CreatedAt,
		SettledAt:   w.SettledAt,
	}
}

// ToWagerResponseList converts wager models to responses
func ToWagerResponseList(wagers []models.Wager) []WagerResponse {
	out := make([]WagerResponse, len(wagers))
	for i := range wagers {
		out[i] = ToWagerResponse(&wagers[i])
	}
	return out
}

// BuildAggregate spreads query rows over the full candidate domain. Rows for
// selections outside the domain are dropped.
func BuildAggregate(market *models.Market, roundID int64, rows []SelectionTotal) *AggregateResponse {
	bySelection := make(map[string]SelectionTotal, len(rows))
	for _, r := range rows {
		bySelection[r.Selection] = r
	}

	resp := &AggregateResponse{
		MarketID:   market.ID,
		RoundID:    roundID,
		TotalStake: decimal.Zero,
	}
	for _, c := range market.Candidates() {
		row := bySelection[c]
		agg := CandidateAggregate{
			Selection:     c,
			StakeSum:      row.StakeSum,
			WagerCount:    row.WagerCount,
			DistinctUsers: row.DistinctUsers,
		}
		resp.Candidates = append(resp.Candidates, agg)
		resp.TotalStake = resp.TotalStake.Add(agg.StakeSum)
		resp.TotalWagers += agg.WagerCount
	}
	return resp
}

// Totals maps each candidate to its stake sum
func (a *AggregateResponse) Totals() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(a.Candidates))
	for _, c := range a.Candidates {
		out[c.Selection] = c.StakeSum
	}
	return out
}

// ToProfitLoss computes house profit per market and overall
func ToProfitLoss(filter *ReportFilter, rows []MarketTotals) *ProfitLossResponse {
	resp := &ProfitLossResponse{
		Collection: decimal.Zero,
		PaidOut:    decimal.Zero,
		Refunded:   decimal.Zero,
		Profit:     decimal.Zero,
		Markets:    make([]MarketProfitLoss, 0, len(rows)),
	}
	if filter != nil {
		resp.From, resp.To = filter.From, filter.To
	}

	for _, r := range rows {
		profit := r.Collection.Sub(r.PaidOut).Sub(r.Refunded)
		resp.Markets = append(resp.Markets, MarketProfitLoss{
			MarketID:    r.MarketID,
			Collection:  r.Collection,
			PaidOut:     r.PaidOut,
			Refunded:    r.Refunded,
			OpenStake:   r.OpenStake,
			HouseProfit: profit,
			WagerCount:  r.WagerCount,
		})
		resp.Collection = resp.Collection.Add(r.Collection)
		resp.PaidOut = resp.PaidOut.Add(r.PaidOut)
		resp.Refunded = resp.Refunded.Add(r.Refunded)
		resp.Profit = resp.Profit.Add(profit)
	}
	return resp
}

// ToWinLoss folds per-status totals into a player summary
func ToWinLoss(userID uuid.UUID, rows []StatusTotals) *WinLossResponse {
	resp := &WinLossResponse{
		UserID:        userID,
		TotalStaked:   decimal.Zero,
		OpenStake:     decimal.Zero,
		TotalWon:      decimal.Zero,
		TotalLost:     decimal.Zero,
		TotalRefunded: decimal.Zero,
		Net:           decimal.Zero,
	}

	for _, r := range rows {
		resp.TotalWagers += r.Count
		resp.TotalStaked = resp.TotalStaked.Add(r.StakeSum)
		switch r.Status {
		case models.WagerStatusOpen:
			resp.OpenStake = resp.OpenStake.Add(r.StakeSum)
		case models.WagerStatusWon:
			resp.WonCount += r.Count
			resp.TotalWon = resp.TotalWon.Add(r.PayoutSum)
			resp.Net = resp.Net.Add(r.PayoutSum).Sub(r.StakeSum)
		case models.WagerStatusLost:
			resp.LostCount += r.Count
			resp.TotalLost = resp.TotalLost.Add(r.StakeSum)
			resp.Net = resp.Net.Sub(r.StakeSum)
		case models.WagerStatusRefunded:
			resp.RefundedCount += r.Count
			resp.TotalRefunded = resp.TotalRefunded.Add(r.StakeSum)
		}
	}
	return resp
}
