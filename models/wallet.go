package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier names one of the two balances held in a wallet.
type Tier string

const (
	TierDeposited Tier = "deposited"
	TierWinnings  Tier = "winnings"
)

// Valid reports whether t names a known tier.
func (t Tier) Valid() bool {
	return t == TierDeposited || t == TierWinnings
}

// Wallet represents a player's two-tier balance. Version is the optimistic
// concurrency token; every write bumps it.
type Wallet struct {
	UserID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	DepositedBalance decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0.00;check:deposited_balance >= 0" json:"deposited_balance"`
	WinningsBalance  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0.00;check:winnings_balance >= 0" json:"winnings_balance"`
	Version          int64           `gorm:"not null;default:0" json:"version"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for Wallet model
func (*Wallet) TableName() string {
	return "wallets"
}

// Total returns deposited plus winnings.
func (w *Wallet) Total() decimal.Decimal {
	return w.DepositedBalance.Add(w.WinningsBalance)
}

// CanDebit checks if the wallet holds enough across both tiers
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Total().GreaterThanOrEqual(amount)
}

// DebitSplit returns how much of amount comes from each tier: deposited
// first, then winnings.
func (w *Wallet) DebitSplit(amount decimal.Decimal) (fromDeposited, fromWinnings decimal.Decimal) {
	fromDeposited = decimal.Min(amount, w.DepositedBalance)
	fromWinnings = amount.Sub(fromDeposited)
	return fromDeposited, fromWinnings
}

// Debit removes funds from the wallet, deposited balance first
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTransactionAmount
	}
	if !w.CanDebit(amount) {
		return ErrInsufficientFunds
	}
	fromDeposited, fromWinnings := w.DebitSplit(amount)
	w.DepositedBalance = w.DepositedBalance.Sub(fromDeposited)
	w.WinningsBalance = w.WinningsBalance.Sub(fromWinnings)
	return nil
}

// Credit adds funds to the given tier
func (w *Wallet) Credit(amount decimal.Decimal, tier Tier) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTransactionAmount
	}
	switch tier {
	case TierDeposited:
		w.DepositedBalance = w.DepositedBalance.Add(amount)
	case TierWinnings:
		w.WinningsBalance = w.WinningsBalance.Add(amount)
	default:
		return ErrInvalidTier
	}
	return nil
}

// Validate performs validation on the wallet model
func (w *Wallet) Validate() error {
	if w.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if w.DepositedBalance.LessThan(decimal.Zero) || w.WinningsBalance.LessThan(decimal.Zero) {
		return ErrNegativeBalance
	}
	return nil
}
