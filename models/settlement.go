package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SettlementTrigger records which path settled a round
type SettlementTrigger string

const (
	TriggerAuto    SettlementTrigger = "auto"
	TriggerManual  SettlementTrigger = "manual"
	TriggerTimeout SettlementTrigger = "timeout"
	TriggerResume  SettlementTrigger = "resume"
)

// Directive tells the distributor how to treat the open wagers of a round.
// An empty Outcome means refund everything.
type Directive struct {
	Outcome string
	Trigger SettlementTrigger
}

// IsRefund reports whether the directive returns every stake.
func (d Directive) IsRefund() bool {
	return d.Outcome == "" || d.Outcome == OutcomeRefunded
}

// Label is the value stored as the round's resolved outcome.
func (d Directive) Label() string {
	if d.IsRefund() {
		return OutcomeRefunded
	}
	return d.Outcome
}

// RoundSettlement is the summary of one settled round. Re-runs of the same
// round accumulate into the existing row.
type RoundSettlement struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	MarketID      string            `gorm:"type:varchar(50);not null;uniqueIndex:idx_round_settlements_round" json:"market_id"`
	RoundID       int64             `gorm:"not null;uniqueIndex:idx_round_settlements_round" json:"round_id"`
	Outcome       string            `gorm:"type:varchar(10);not null" json:"outcome"`
	Trigger       SettlementTrigger `gorm:"type:varchar(10);not null" json:"trigger"`
	WonCount      int               `gorm:"not null;default:0" json:"won_count"`
	LostCount     int               `gorm:"not null;default:0" json:"lost_count"`
	RefundedCount int               `gorm:"not null;default:0" json:"refunded_count"`
	SkippedCount  int               `gorm:"not null;default:0" json:"skipped_count"`
	TotalStaked   decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0.00" json:"total_staked"`
	TotalPaid     decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0.00" json:"total_paid"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for RoundSettlement model
func (*RoundSettlement) TableName() string {
	return "round_settlements"
}

// BeforeCreate sets up the model before creation
func (s *RoundSettlement) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsRefund checks if this round was refunded
func (s *RoundSettlement) IsRefund() bool {
	return s.Outcome == OutcomeRefunded
}

// Processed returns the number of wagers this pass changed.
func (s *RoundSettlement) Processed() int {
	return s.WonCount + s.LostCount + s.RefundedCount
}

// HouseNet returns staked minus paid out for the wagers settled in the pass.
func (s *RoundSettlement) HouseNet() decimal.Decimal {
	return s.TotalStaked.Sub(s.TotalPaid)
}

// Validate performs validation on the settlement model
func (s *RoundSettlement) Validate() error {
	if s.MarketID == "" {
		return ErrInvalidMarketID
	}
	if s.Outcome == "" {
		return ErrInvalidSelection
	}
	if s.TotalStaked.LessThan(decimal.Zero) || s.TotalPaid.LessThan(decimal.Zero) {
		return ErrInvalidTransactionAmount
	}
	return nil
}
