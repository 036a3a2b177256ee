package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
)

// AdminCreditRequest represents an admin credit to a player wallet
type AdminCreditRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Tier   models.Tier     `json:"tier" binding:"required,oneof=deposited winnings"`
	Note   string          `json:"note,omitempty" binding:"max=500"`
}

// Response represents a wallet in API responses
type Response struct {
	UserID           uuid.UUID       `json:"user_id"`
	DepositedBalance decimal.Decimal `json:"deposited_balance"`
	WinningsBalance  decimal.Decimal `json:"winnings_balance"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID             uuid.UUID        `json:"id"`
	EntryType      models.EntryType `json:"entry_type"`
	Tier           *models.Tier     `json:"tier,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	DepositedAfter decimal.Decimal  `json:"deposited_after"`
	WinningsAfter  decimal.Decimal  `json:"winnings_after"`
	ReferenceType  string           `json:"reference_type,omitempty"`
	ReferenceID    *uuid.UUID       `json:"reference_id,omitempty"`
	Description    string           `json:"description,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// OperationResponse represents the response for wallet operations
type OperationResponse struct {
	Wallet *Response      `json:"wallet"`
	Entry  *EntryResponse `json:"entry"`
}

// ToWalletResponse converts a models.Wallet to Response
func ToWalletResponse(wallet *models.Wallet) *Response {
	return &Response{
		UserID:           wallet.UserID,
		DepositedBalance: wallet.DepositedBalance,
		WinningsBalance:  wallet.WinningsBalance,
		TotalBalance:     wallet.Total(),
		UpdatedAt:        wallet.UpdatedAt,
	}
}

// ToEntryResponse converts a models.WalletEntry to EntryResponse
func ToEntryResponse(entry *models.WalletEntry) *EntryResponse {
	return &EntryResponse{
		ID:             entry.ID,
		EntryType:      entry.EntryType,
		Tier:           entry.Tier,
		Amount:         entry.Amount,
		DepositedAfter: entry.DepositedAfter,
		WinningsAfter:  entry.WinningsAfter,
		ReferenceType:  entry.ReferenceType,
		ReferenceID:    entry.ReferenceID,
		Description:    entry.Description,
		CreatedAt:      entry.CreatedAt,
	}
}
