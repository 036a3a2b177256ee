package wallet

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gLogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gLogger.Discard,
	})
	require.NoError(t, err)
	return gormDB, sqlMock
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *MockRepository) CompareAndSwap(ctx context.Context, wallet *models.Wallet, expectedVersion int64) error {
	return m.Called(ctx, wallet, expectedVersion).Error(0)
}

func (m *MockRepository) CreateEntry(ctx context.Context, entry *models.WalletEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockRepository) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.WalletEntry, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if e := args.Get(0); e != nil {
		return e.([]models.WalletEntry), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockRepository) WithTx(_ *gorm.DB) Repository {
	return m
}

type MockService struct {
	MockLedger
}

func (m *MockService) GetBalance(ctx context.Context, userID uuid.UUID) (*Response, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.(*Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ListEntries(ctx context.Context, userID uuid.UUID, page, perPage int) ([]EntryResponse, int64, error) {
	args := m.Called(ctx, userID, page, perPage)
	if r := args.Get(0); r != nil {
		return r.([]EntryResponse), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *MockService) AdminCredit(ctx context.Context, adminID, userID uuid.UUID, req *AdminCreditRequest) (*OperationResponse, error) {
	args := m.Called(ctx, adminID, userID, req)
	if r := args.Get(0); r != nil {
		return r.(*OperationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
