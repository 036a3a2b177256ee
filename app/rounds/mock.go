package rounds

import (
	"context"
	"time"

	"github.com/joefazee/roundbet/models"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockObserver is a testify mock of Observer
type MockObserver struct {
	mock.Mock
}

func (m *MockObserver) Observe(ctx context.Context, marketID string, now time.Time) (*models.Round, error) {
	args := m.Called(ctx, marketID, now)
	if v := args.Get(0); v != nil {
		return v.(*models.Round), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRepository is a testify mock of Repository. WithTx returns the mock
// itself.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) round(args mock.Arguments) (*models.Round, error) {
	if v := args.Get(0); v != nil {
		return v.(*models.Round), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) GetLive(ctx context.Context, marketID string) (*models.Round, error) {
	return m.round(m.Called(ctx, marketID))
}

func (m *MockRepository) GetRound(ctx context.Context, marketID string, roundID int64) (*models.Round, error) {
	return m.round(m.Called(ctx, marketID, roundID))
}

func (m *MockRepository) CreateLive(ctx context.Context, round *models.Round) error {
	return m.Called(ctx, round).Error(0)
}

func (m *MockRepository) AdvanceToResults(ctx context.Context, marketID string, roundID int64, deadline time.Time) error {
	return m.Called(ctx, marketID, roundID, deadline).Error(0)
}

func (m *MockRepository) Supersede(ctx context.Context, marketID string, roundID int64) error {
	return m.Called(ctx, marketID, roundID).Error(0)
}

func (m *MockRepository) ClaimSettlement(ctx context.Context, marketID string, roundID int64, outcome string) error {
	return m.Called(ctx, marketID, roundID, outcome).Error(0)
}

func (m *MockRepository) SetOverride(ctx context.Context, marketID string, roundID int64, outcome string) error {
	return m.Called(ctx, marketID, roundID, outcome).Error(0)
}

func (m *MockRepository) MarkSettled(ctx context.Context, marketID string, roundID int64, at time.Time) error {
	return m.Called(ctx, marketID, roundID, at).Error(0)
}

func (m *MockRepository) ListUnsettled(ctx context.Context, claimedBefore time.Time, limit int) ([]models.Round, error) {
	args := m.Called(ctx, claimedBefore, limit)
	if v := args.Get(0); v != nil {
		return v.([]models.Round), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListSettled(ctx context.Context, marketID string, limit int) ([]models.Round, error) {
	args := m.Called(ctx, marketID, limit)
	if v := args.Get(0); v != nil {
		return v.([]models.Round), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) WithTx(_ *gorm.DB) Repository {
	return m
}
