package models

import "time"

// Phase is the round's position in its two-state cycle.
type Phase string

const (
	PhaseBetting Phase = "betting"
	PhaseResults Phase = "results"
)

// OutcomeRefunded marks a round whose wagers were returned rather than resolved.
const OutcomeRefunded = "REFUNDED"

// Round is one cycle of a market. Exactly one non-superseded row exists per
// market; superseded rows only accept settlement bookkeeping.
type Round struct {
	MarketID              string     `gorm:"type:varchar(50);primaryKey" json:"market_id"`
	RoundID               int64      `gorm:"primaryKey;autoIncrement:false" json:"round_id"`
	Phase                 Phase      `gorm:"type:varchar(10);not null" json:"phase"`
	PhaseDeadline         time.Time  `gorm:"not null" json:"phase_deadline"`
	ManualOverrideOutcome *string    `gorm:"type:varchar(10)" json:"manual_override_outcome,omitempty"`
	SettlementClaimed     bool       `gorm:"not null;default:false" json:"settlement_claimed"`
	LastResolvedOutcome   *string    `gorm:"type:varchar(10)" json:"last_resolved_outcome,omitempty"`
	SettledAt             *time.Time `json:"settled_at,omitempty"`
	Superseded            bool       `gorm:"not null;default:false" json:"superseded"`
	CreatedAt             time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Round model
func (*Round) TableName() string {
	return "rounds"
}

// NewRoundID derives a round id from the start instant. It is bumped past
// previous when the clock has not advanced.
func NewRoundID(now time.Time, previous int64) int64 {
	id := now.UnixMilli()
	if id <= previous {
		id = previous + 1
	}
	return id
}

// IsStale reports whether the current phase has run out at now.
func (r *Round) IsStale(now time.Time) bool {
	return !now.Before(r.PhaseDeadline)
}

// AcceptsWagers reports whether the round phase admits a wager at now.
func (r *Round) AcceptsWagers(now time.Time) bool {
	return r.Phase == PhaseBetting && !r.Superseded && now.Before(r.PhaseDeadline)
}

// IsRefunded reports whether the round resolved to a refund.
func (r *Round) IsRefunded() bool {
	return r.LastResolvedOutcome != nil && *r.LastResolvedOutcome == OutcomeRefunded
}

// Outcome returns the resolved outcome or the empty string.
func (r *Round) Outcome() string {
	if r.LastResolvedOutcome == nil {
		return ""
	}
	return *r.LastResolvedOutcome
}
