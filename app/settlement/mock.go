package settlement

import (
	"context"

	"github.com/joefazee/roundbet/models"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockRepository is a testify mock of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) UpsertSummary(ctx context.Context, s *models.RoundSettlement) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockRepository) GetSummary(ctx context.Context, marketID string, roundID int64) (*models.RoundSettlement, error) {
	args := m.Called(ctx, marketID, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoundSettlement), args.Error(1)
}

func (m *MockRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockRepository) WithTx(_ *gorm.DB) Repository {
	return m
}
