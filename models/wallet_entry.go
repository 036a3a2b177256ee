package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryType represents the kind of wallet mutation
type EntryType string

const (
	EntryTypeDeposit    EntryType = "deposit"
	EntryTypeBetPlace   EntryType = "bet_place"
	EntryTypePayout     EntryType = "payout"
	EntryTypeRefund     EntryType = "refund"
	EntryTypeAdjustment EntryType = "adjustment"
)

// Reference types recorded against ledger entries.
const (
	ReferenceTypePlacement = "placement"
	ReferenceTypeWager     = "wager"
	ReferenceTypeAdmin     = "admin"
)

// Reference identifies what caused a wallet mutation.
type Reference struct {
	EntryType   EntryType
	Type        string
	ID          uuid.UUID
	Description string
}

// WalletEntry is one immutable line of a wallet's ledger. (entry_type,
// reference_id) is unique so a payout or refund can be recorded only once.
type WalletEntry struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_wallet_entries_user" json:"user_id"`
	EntryType      EntryType       `gorm:"type:varchar(20);not null" json:"entry_type"`
	Tier           *Tier           `gorm:"type:varchar(10)" json:"tier,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	DepositedAfter decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"deposited_after"`
	WinningsAfter  decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"winnings_after"`
	ReferenceType  string          `gorm:"type:varchar(20)" json:"reference_type"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid" json:"reference_id"`
	Description    string          `gorm:"type:text" json:"description"`
	CreatedAt      time.Time       `gorm:"autoCreateTime;index:idx_wallet_entries_created_at" json:"created_at"`
}

// TableName specifies the table name for WalletEntry model
func (*WalletEntry) TableName() string {
	return "wallet_entries"
}

// BeforeCreate sets up the model before creation
func (e *WalletEntry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// IsCredit checks if this is a credit entry (positive amount)
func (e *WalletEntry) IsCredit() bool {
	return e.Amount.GreaterThan(decimal.Zero)
}

// IsDebit checks if this is a debit entry (negative amount)
func (e *WalletEntry) IsDebit() bool {
	return e.Amount.LessThan(decimal.Zero)
}

// Validate performs validation on the wallet entry model
func (e *WalletEntry) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrInvalidUserID
	}
	if e.Amount.IsZero() {
		return ErrInvalidTransactionAmount
	}
	switch e.EntryType {
	case EntryTypeDeposit, EntryTypeBetPlace, EntryTypePayout, EntryTypeRefund, EntryTypeAdjustment:
	default:
		return ErrInvalidEntryType
	}
	if e.Tier != nil && !e.Tier.Valid() {
		return ErrInvalidTier
	}
	if e.DepositedAfter.LessThan(decimal.Zero) || e.WinningsAfter.LessThan(decimal.Zero) {
		return ErrNegativeBalance
	}
	return nil
}

// NewWalletEntry builds the ledger line for a mutation that left w in its
// current state.
func NewWalletEntry(w *Wallet, amount decimal.Decimal, tier *Tier, ref Reference) *WalletEntry {
	e := &WalletEntry{
		UserID:         w.UserID,
		EntryType:      ref.EntryType,
		Tier:           tier,
		Amount:         amount,
		DepositedAfter: w.DepositedBalance,
		WinningsAfter:  w.WinningsBalance,
		ReferenceType:  ref.Type,
		Description:    ref.Description,
	}
	if ref.ID != uuid.Nil {
		id := ref.ID
		e.ReferenceID = &id
	}
	return e
}
