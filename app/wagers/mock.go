package wagers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository is a testify mock of Repository. WithTx returns the mock
// itself.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateBatch(ctx context.Context, wagers []models.Wager) error {
	return m.Called(ctx, wagers).Error(0)
}

func (m *MockRepository) LockBettingRound(ctx context.Context, marketID string, roundID int64, now time.Time) error {
	return m.Called(ctx, marketID, roundID, now).Error(0)
}

func (m *MockRepository) ListOpen(ctx context.Context, marketID string, roundID int64, after uuid.UUID, limit int) ([]models.Wager, error) {
	args := m.Called(ctx, marketID, roundID, after, limit)
	if v := args.Get(0); v != nil {
		return v.([]models.Wager), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Settle(ctx context.Context, wagerID uuid.UUID, status models.WagerStatus, payout *decimal.Decimal, at time.Time) error {
	return m.Called(ctx, wagerID, status, payout, at).Error(0)
}

func (m *MockRepository) Aggregate(ctx context.Context, marketID string, roundID int64, openOnly bool) ([]SelectionTotal, error) {
	args := m.Called(ctx, marketID, roundID, openOnly)
	if v := args.Get(0); v != nil {
		return v.([]SelectionTotal), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter *Filter, limit, offset int) ([]models.Wager, int64, error) {
	args := m.Called(ctx, userID, filter, limit, offset)
	if v := args.Get(0); v != nil {
		return v.([]models.Wager), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockRepository) ProfitLoss(ctx context.Context, filter *ReportFilter) ([]MarketTotals, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]MarketTotals), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) PlayerTotals(ctx context.Context, userID uuid.UUID) ([]StatusTotals, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]StatusTotals), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) WithTx(_ *gorm.DB) Repository {
	return m
}
