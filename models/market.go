package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/joefazee/roundbet/internal/formatter"
	"github.com/joefazee/roundbet/internal/validator"
	"github.com/shopspring/decimal"
)

// Game names the product family a market belongs to.
type Game string

const (
	GameWinGame  Game = "wingame"
	GameHaruf    Game = "haruf"
	GameRoulette Game = "roulette"
)

// ResolutionMode decides whether entering Results resolves the round or
// waits for an administrator to post the outcome.
type ResolutionMode string

const (
	ResolutionAuto   ResolutionMode = "auto"
	ResolutionManual ResolutionMode = "manual"
)

const (
	DomainKindRange = "range"
	DomainKindSet   = "set"

	clockLayout = "15:04"
)

// CandidateDomain is either a numeric range rendered at a fixed width or an
// explicit set of values.
type CandidateDomain struct {
	Kind   string   `json:"kind" toml:"kind"`
	Min    int      `json:"min,omitempty" toml:"min"`
	Max    int      `json:"max,omitempty" toml:"max"`
	Width  int      `json:"width,omitempty" toml:"width"`
	Values []string `json:"values,omitempty" toml:"values"`
}

// Candidates lists the domain in its canonical order.
func (d CandidateDomain) Candidates() []string {
	switch d.Kind {
	case DomainKindRange:
		if d.Max < d.Min {
			return nil
		}
		out := make([]string, 0, d.Max-d.Min+1)
		for n := d.Min; n <= d.Max; n++ {
			out = append(out, formatter.PadCandidate(n, d.Width))
		}
		return out
	case DomainKindSet:
		out := make([]string, len(d.Values))
		copy(out, d.Values)
		return out
	default:
		return nil
	}
}

// Contains reports whether c is a member of the domain.
func (d CandidateDomain) Contains(c string) bool {
	if c == "" {
		return false
	}
	for _, v := range d.Candidates() {
		if v == c {
			return true
		}
	}
	return false
}

func (d CandidateDomain) Validate() error {
	switch d.Kind {
	case DomainKindRange:
		if d.Max < d.Min || d.Width < 0 {
			return ErrInvalidCandidateDomain
		}
	case DomainKindSet:
		if len(d.Values) == 0 {
			return ErrInvalidCandidateDomain
		}
		if !validator.NoDuplicates(d.Values) {
			return ErrInvalidCandidateDomain
		}
		for _, v := range d.Values {
			if !validator.NotBlank(v) {
				return ErrInvalidCandidateDomain
			}
		}
	default:
		return ErrInvalidCandidateDomain
	}
	return nil
}

// Value implements driver.Valuer interface
func (d CandidateDomain) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface
func (d *CandidateDomain) Scan(value interface{}) error {
	return scanJSON(value, d)
}

// CoverGroups maps a named multi-candidate bet ("andar-3", "red") to the
// candidates it fans out into.
type CoverGroups map[string][]string

// Value implements driver.Valuer interface
func (g CoverGroups) Value() (driver.Value, error) {
	if g == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(g)
}

// Scan implements sql.Scanner interface
func (g *CoverGroups) Scan(value interface{}) error {
	return scanJSON(value, g)
}

func scanJSON(value interface{}, dst interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
}

// Market is one bettable game with its own domain and payout multiplier.
type Market struct {
	ID                     string          `gorm:"type:varchar(50);primaryKey" json:"id"`
	Name                   string          `gorm:"type:varchar(100);not null" json:"name"`
	Game                   Game            `gorm:"type:varchar(20);not null" json:"game"`
	Domain                 CandidateDomain `gorm:"column:candidate_domain;type:jsonb;not null" json:"candidate_domain"`
	CoverGroups            CoverGroups     `gorm:"type:jsonb;not null;default:'{}'" json:"cover_groups,omitempty"`
	PayoutMultiplier       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"payout_multiplier"`
	MinStake               decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"min_stake"`
	BettingDurationSeconds int             `gorm:"not null" json:"betting_duration_seconds"`
	ResultsDurationSeconds int             `gorm:"not null" json:"results_duration_seconds"`
	ResolutionMode         ResolutionMode  `gorm:"type:varchar(10);not null;default:'auto'" json:"resolution_mode"`
	OpenAt                 *string         `gorm:"type:varchar(5)" json:"open_at,omitempty"`
	CloseAt                *string         `gorm:"type:varchar(5)" json:"close_at,omitempty"`
	Timezone               string          `gorm:"type:varchar(50);not null;default:'UTC'" json:"timezone"`
	IsActive               bool            `gorm:"not null" json:"is_active"`
	CreatedAt              time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Market model
func (*Market) TableName() string {
	return "markets"
}

// Candidates is shorthand for the domain's canonical candidate list.
func (m *Market) Candidates() []string {
	return m.Domain.Candidates()
}

// IsScheduled reports whether the market has a daily open/close window.
func (m *Market) IsScheduled() bool {
	return m.OpenAt != nil && m.CloseAt != nil
}

// BettingDuration returns the configured betting window.
func (m *Market) BettingDuration() time.Duration {
	return time.Duration(m.BettingDurationSeconds) * time.Second
}

// ResultsDuration returns the configured results window.
func (m *Market) ResultsDuration() time.Duration {
	return time.Duration(m.ResultsDurationSeconds) * time.Second
}

func (m *Market) location() *time.Location {
	if m.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func clockMinutes(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsOpen reports whether the daily window admits bets at now. Unscheduled
// markets are always open. A window whose close is before its open spans
// midnight; equal open and close means open all day.
func (m *Market) IsOpen(now time.Time) bool {
	if !m.IsScheduled() {
		return true
	}
	open, err := clockMinutes(*m.OpenAt)
	if err != nil {
		return false
	}
	closing, err := clockMinutes(*m.CloseAt)
	if err != nil {
		return false
	}

	local := now.In(m.location())
	t := local.Hour()*60 + local.Minute()

	switch {
	case open == closing:
		return true
	case open < closing:
		return t >= open && t < closing
	default:
		return t >= open || t < closing
	}
}

// NextClose returns the first close-time instant strictly after now. For
// markets without a schedule it returns now plus the betting duration.
func (m *Market) NextClose(now time.Time) time.Time {
	if !m.IsScheduled() || *m.OpenAt == *m.CloseAt {
		return now.Add(m.BettingDuration())
	}
	closing, err := clockMinutes(*m.CloseAt)
	if err != nil {
		return now.Add(m.BettingDuration())
	}

	local := now.In(m.location())
	next := time.Date(local.Year(), local.Month(), local.Day(), closing/60, closing%60, 0, 0, local.Location())
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Expand returns the candidates a cover bet fans out into, in domain order.
func (m *Market) Expand(group string) ([]string, error) {
	members, ok := m.CoverGroups[group]
	if !ok || len(members) == 0 {
		return nil, ErrUnknownCoverGroup
	}

	want := make(map[string]struct{}, len(members))
	for _, c := range members {
		want[c] = struct{}{}
	}

	out := make([]string, 0, len(members))
	for _, c := range m.Candidates() {
		if _, ok := want[c]; ok {
			out = append(out, c)
		}
	}
	if len(out) != len(want) {
		return nil, ErrInvalidCandidateDomain
	}
	return out, nil
}

// Validate performs validation on the market model
func (m *Market) Validate() error {
	if !validator.IsSlug(m.ID) {
		return ErrInvalidMarketID
	}
	if m.Name == "" {
		return ErrInvalidMarketName
	}
	if err := m.Domain.Validate(); err != nil {
		return err
	}
	// whole multipliers keep stake x multiplier at cent precision
	if m.PayoutMultiplier.LessThanOrEqual(decimal.NewFromInt(1)) || !m.PayoutMultiplier.IsInteger() {
		return ErrInvalidPayoutMultiplier
	}
	if m.MinStake.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidMinStake
	}
	if m.BettingDurationSeconds <= 0 || m.ResultsDurationSeconds <= 0 {
		return ErrInvalidMarketDuration
	}
	if !validator.In(m.ResolutionMode, ResolutionAuto, ResolutionManual) {
		return ErrInvalidResolutionMode
	}
	if (m.OpenAt == nil) != (m.CloseAt == nil) {
		return ErrInvalidSchedule
	}
	if m.IsScheduled() {
		if !validator.IsValidTimeFormat(*m.OpenAt) || !validator.IsValidTimeFormat(*m.CloseAt) {
			return ErrInvalidSchedule
		}
		if _, err := time.LoadLocation(m.Timezone); err != nil {
			return ErrInvalidSchedule
		}
	}
	for name := range m.CoverGroups {
		if !validator.IsSlug(name) {
			return fmt.Errorf("cover group %q: %w", name, ErrUnknownCoverGroup)
		}
		if _, err := m.Expand(name); err != nil {
			return fmt.Errorf("cover group %q: %w", name, err)
		}
	}
	return nil
}
