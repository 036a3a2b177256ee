package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockLedger is a testify mock of Ledger. WithTx returns the mock itself.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, ref models.Reference) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, ref)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedger) Credit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, tier models.Tier, ref models.Reference) (*models.Wallet, error) {
	args := m.Called(ctx, userID, amount, tier, ref)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedger) EnsureWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLedger) WithTx(_ *gorm.DB) Ledger {
	return m
}
