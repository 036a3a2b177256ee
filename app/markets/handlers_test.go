package markets

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockService struct {
	MockRegistry
}

func (m *MockService) Sync(ctx context.Context, catalogue []models.Market) error {
	return m.Called(ctx, catalogue).Error(0)
}

func (m *MockService) UpdateSchedule(ctx context.Context, adminID uuid.UUID, id string, req *ScheduleRequest) (*models.Market, error) {
	args := m.Called(ctx, adminID, id, req)
	if v := args.Get(0); v != nil {
		return v.(*models.Market), args.Error(1)
	}
	return nil, args.Error(1)
}

type HandlerTestSuite struct {
	suite.Suite
	handler *Handler
	service *MockService
}

func (suite *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.service = &MockService{}
	suite.handler = NewHandler(suite.service)
	suite.handler.now = func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) }
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) TestGetMarkets_Success() {
	suite.service.On("List", mock.Anything).Return(DefaultCatalogue(), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/markets", http.NoBody)

	suite.handler.GetMarkets(c)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"id":"roulette"`)
	suite.Contains(w.Body.String(), `"count":9`)
}

func (suite *HandlerTestSuite) TestGetMarkets_ServiceError() {
	suite.service.On("List", mock.Anything).Return(nil, errors.New("db down"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/markets", http.NoBody)

	suite.handler.GetMarkets(c)

	suite.Equal(http.StatusInternalServerError, w.Code)
}

func (suite *HandlerTestSuite) TestGetMarketByID() {
	suite.service.On("Get", mock.Anything, "wingame").Return(wingame(), nil)
	suite.service.On("Get", mock.Anything, "nope").Return(nil, models.ErrRecordNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/markets/wingame", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "wingame"}}
	suite.handler.GetMarketByID(c)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"is_open":true`)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/markets/nope", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	suite.handler.GetMarketByID(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) scheduleRequest(body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("PUT", "/admin/markets/wingame/schedule", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: "wingame"}}
	return c, w
}

func (suite *HandlerTestSuite) TestUpdateSchedule() {
	adminID := uuid.New()
	m := wingame()
	open, closing := "09:00", "17:00"
	m.OpenAt, m.CloseAt = &open, &closing

	suite.service.On("UpdateSchedule", mock.Anything, adminID, "wingame", mock.MatchedBy(func(r *ScheduleRequest) bool {
		return r.OpenAt != nil && *r.OpenAt == "09:00"
	})).Return(m, nil)

	c, w := suite.scheduleRequest(`{"open_at":"09:00","close_at":"17:00"}`)
	c.Set(api.ContextUserID, adminID)
	suite.handler.UpdateSchedule(c)

	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"close_at":"17:00"`)
}

func (suite *HandlerTestSuite) TestUpdateSchedule_Errors() {
	c, w := suite.scheduleRequest(`{"open_at":"09:00"}`)
	suite.handler.UpdateSchedule(c)
	suite.Equal(http.StatusUnauthorized, w.Code)

	adminID := uuid.New()
	c, w = suite.scheduleRequest(`{"open_at":"9am"}`)
	c.Set(api.ContextUserID, adminID)
	suite.handler.UpdateSchedule(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	c, w = suite.scheduleRequest(`{"open_at":"25:00","close_at":"17:60"}`)
	c.Set(api.ContextUserID, adminID)
	suite.handler.UpdateSchedule(c)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "VALIDATION_ERROR")
	suite.Contains(w.Body.String(), "open_at must be a 24-hour HH:MM time")
	suite.Contains(w.Body.String(), "close_at must be a 24-hour HH:MM time")
	suite.service.AssertNotCalled(suite.T(), "UpdateSchedule", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	suite.service.On("UpdateSchedule", mock.Anything, adminID, "wingame", mock.Anything).Return(nil, models.ErrInvalidSchedule)
	c, w = suite.scheduleRequest(`{"open_at":"09:00"}`)
	c.Set(api.ContextUserID, adminID)
	suite.handler.UpdateSchedule(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}
