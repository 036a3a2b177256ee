package rounds

import (
	"time"

	"github.com/joefazee/roundbet/models"
)

// RoundState is the public view of a round, published on every transition
type RoundState struct {
	MarketID            string       `json:"market_id"`
	RoundID             int64        `json:"round_id"`
	Phase               models.Phase `json:"phase"`
	PhaseDeadline       time.Time    `json:"phase_deadline"`
	SecondsRemaining    int64        `json:"seconds_remaining"`
	LastResolvedOutcome *string      `json:"last_resolved_outcome,omitempty"`
}

// Snapshot is a round state plus what a player screen needs around it
type Snapshot struct {
	RoundState
	IsOpen          bool   `json:"is_open"`
	PreviousOutcome string `json:"previous_outcome"`
}

// HistoryEntry is one settled round
type HistoryEntry struct {
	RoundID   int64      `json:"round_id"`
	Outcome   string     `json:"outcome"`
	Refunded  bool       `json:"refunded"`
	SettledAt *time.Time `json:"settled_at,omitempty"`
}

// ToRoundState converts a round to its public view as seen at now
func ToRoundState(round *models.Round, now time.Time) *RoundState {
	return &RoundState{
		MarketID:            round.MarketID,
		RoundID:             round.RoundID,
		Phase:               round.Phase,
		PhaseDeadline:       round.PhaseDeadline,
		SecondsRemaining:    int64(TimeRemaining(now, round.PhaseDeadline).Seconds()),
		LastResolvedOutcome: round.LastResolvedOutcome,
	}
}

// ToHistory converts settled rounds to history entries
func ToHistory(rounds []models.Round) []HistoryEntry {
	out := make([]HistoryEntry, len(rounds))
	for i := range rounds {
		out[i] = HistoryEntry{
			RoundID:   rounds[i].RoundID,
			Outcome:   rounds[i].Outcome(),
			Refunded:  rounds[i].IsRefunded(),
			SettledAt: rounds[i].SettledAt,
		}
	}
	return out
}
