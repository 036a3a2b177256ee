package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WagerStatus represents the settlement state of a wager
type WagerStatus string

const (
	WagerStatusOpen     WagerStatus = "open"
	WagerStatusWon      WagerStatus = "won"
	WagerStatusLost     WagerStatus = "lost"
	WagerStatusRefunded WagerStatus = "refunded"
)

// Wager is a single stake on a single candidate. Cover bets are stored as one
// wager per candidate sharing a PlacementID.
type Wager struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID    string           `gorm:"type:varchar(50);not null;index:idx_wagers_round" json:"market_id"`
	RoundID     int64            `gorm:"not null;index:idx_wagers_round" json:"round_id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_wagers_user" json:"user_id"`
	Selection   string           `gorm:"type:varchar(10);not null" json:"selection"`
	Stake       decimal.Decimal  `gorm:"type:decimal(20,2);not null" json:"stake"`
	Status      WagerStatus      `gorm:"type:varchar(10);not null;default:'open'" json:"status"`
	Payout      *decimal.Decimal `gorm:"type:decimal(20,2)" json:"payout,omitempty"`
	CoverGroup  *string          `gorm:"type:varchar(20)" json:"cover_group,omitempty"`
	PlacementID uuid.UUID        `gorm:"type:uuid;not null" json:"placement_id"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	SettledAt   *time.Time       `json:"settled_at,omitempty"`
}

// TableName specifies the table name for Wager model
func (*Wager) TableName() string {
	return "wagers"
}

// BeforeCreate sets up the model before creation
func (w *Wager) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = WagerStatusOpen
	}
	return nil
}

// IsOpen reports whether the wager is still awaiting settlement.
func (w *Wager) IsOpen() bool {
	return w.Status == WagerStatusOpen
}

// Integrity returns a non-empty reason when the record cannot be settled.
func (w *Wager) Integrity(domain CandidateDomain) string {
	switch {
	case w.UserID == uuid.Nil:
		return "missing user id"
	case w.Selection == "":
		return "missing selection"
	case w.Stake.LessThanOrEqual(decimal.Zero):
		return "non-positive stake"
	case !domain.Contains(w.Selection):
		return "selection outside domain"
	}
	return ""
}

// Validate performs validation on the wager model
func (w *Wager) Validate() error {
	if w.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if w.MarketID == "" {
		return ErrInvalidMarketID
	}
	if w.Selection == "" {
		return ErrInvalidSelection
	}
	if w.Stake.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidStake
	}
	if !w.Stake.Equal(w.Stake.Truncate(2)) {
		return ErrStakePrecision
	}
	return nil
}
