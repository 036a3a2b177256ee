package players

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockService struct {
	MockAuthService
}

func (m *MockService) Register(ctx context.Context, userID uuid.UUID, req *RegisterRequest) (*Response, error) {
	args := m.Called(ctx, userID, req)
	if v := args.Get(0); v != nil {
		return v.(*Response), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) GetMe(ctx context.Context, userID uuid.UUID) (*Response, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.(*Response), args.Error(1)
	}
	return nil, args.Error(1)
}

type HandlerTestSuite struct {
	suite.Suite
	handler *Handler
	service *MockService
	userID  uuid.UUID
}

func (suite *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.service = &MockService{}
	suite.handler = NewHandler(suite.service)
	suite.userID = uuid.New()
}

func (suite *HandlerTestSuite) TearDownTest() {
	suite.service.AssertExpectations(suite.T())
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) context(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/players", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(api.ContextUserID, suite.userID)
	return c, w
}

func (suite *HandlerTestSuite) TestRegister() {
	suite.Run("created", func() {
		suite.SetupTest()
		suite.service.On("Register", mock.Anything, suite.userID, mock.MatchedBy(func(r *RegisterRequest) bool {
			return r.DisplayName == "Ada"
		})).Return(&Response{ID: suite.userID, Phone: "+2348031234567", DisplayName: "Ada"}, nil).Once()

		c, w := suite.context(http.MethodPost, `{"phone":"08031234567","display_name":"  Ada "}`)
		suite.handler.Register(c)

		suite.Equal(http.StatusCreated, w.Code)
		suite.Contains(w.Body.String(), "+2348031234567")
	})

	suite.Run("validation", func() {
		suite.SetupTest()
		c, w := suite.context(http.MethodPost, `{"phone":"","display_name":"A"}`)
		suite.handler.Register(c)

		suite.Equal(http.StatusBadRequest, w.Code)
		suite.Contains(w.Body.String(), "display_name")
	})

	suite.Run("service errors", func() {
		tests := []struct {
			err    error
			status int
		}{
			{models.ErrInvalidPhone, http.StatusBadRequest},
			{models.ErrPlayerExists, http.StatusConflict},
			{models.ErrPhoneTaken, http.StatusConflict},
			{context.DeadlineExceeded, http.StatusInternalServerError},
		}
		for _, tt := range tests {
			suite.SetupTest()
			suite.service.On("Register", mock.Anything, suite.userID, mock.Anything).Return(nil, tt.err).Once()

			c, w := suite.context(http.MethodPost, `{"phone":"08031234567","display_name":"Ada"}`)
			suite.handler.Register(c)
			suite.Equal(tt.status, w.Code, tt.err.Error())
		}
	})
}

func (suite *HandlerTestSuite) TestGetMe() {
	suite.Run("found", func() {
		suite.SetupTest()
		suite.service.On("GetMe", mock.Anything, suite.userID).Return(&Response{ID: suite.userID, Role: "player"}, nil).Once()

		c, w := suite.context(http.MethodGet, "")
		suite.handler.GetMe(c)
		suite.Equal(http.StatusOK, w.Code)
	})

	suite.Run("not registered", func() {
		suite.SetupTest()
		suite.service.On("GetMe", mock.Anything, suite.userID).Return(nil, models.ErrRecordNotFound).Once()

		c, w := suite.context(http.MethodGet, "")
		suite.handler.GetMe(c)
		suite.Equal(http.StatusNotFound, w.Code)
	})
}
