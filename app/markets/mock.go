package markets

import (
	"context"
	"time"

	"github.com/joefazee/roundbet/models"
	"github.com/stretchr/testify/mock"
)

// MockRegistry is a testify mock of Registry. IsOpen defers to the market
// itself unless an expectation is set.
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Get(ctx context.Context, id string) (*models.Market, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Market), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRegistry) List(ctx context.Context) ([]models.Market, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]models.Market), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRegistry) IsOpen(market *models.Market, now time.Time) bool {
	for _, c := range m.ExpectedCalls {
		if c.Method == "IsOpen" {
			return m.Called(market, now).Bool(0)
		}
	}
	return market.IsActive && market.IsOpen(now)
}
