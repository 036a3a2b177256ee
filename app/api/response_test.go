package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestAPIResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("SuccessResponse", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		SuccessResponse(c, http.StatusOK, "Round state", map[string]string{"phase": "betting"})

		assert.Equal(t, http.StatusOK, w.Code)
		r := decode(t, w)
		assert.True(t, r.Success)
		assert.Equal(t, "Round state", r.Message)
		assert.Nil(t, r.Error)
	})

	errorCases := []struct {
		name   string
		send   func(c *gin.Context)
		status int
		code   string
	}{
		{"ValidationErrorResponse", func(c *gin.Context) { ValidationErrorResponse(c, map[string]string{"stake": "required"}) }, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"BadRequestResponse", func(c *gin.Context) { BadRequestResponse(c, "Invalid market ID") }, http.StatusBadRequest, "BAD_REQUEST"},
		{"NotFoundResponse", func(c *gin.Context) { NotFoundResponse(c, "Market") }, http.StatusNotFound, "NOT_FOUND"},
		{"UnauthorizedResponse", UnauthorizedResponse, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"ForbiddenResponse", func(c *gin.Context) { ForbiddenResponse(c, "no") }, http.StatusForbidden, "FORBIDDEN"},
		{"InternalErrorResponse", func(c *gin.Context) { InternalErrorResponse(c, "boom") }, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"ConflictResponse", func(c *gin.Context) { ConflictResponse(c, "already settled") }, http.StatusConflict, "CONFLICT"},
		{"ErrorResponse", func(c *gin.Context) {
			ErrorResponse(c, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient funds", nil)
		}, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			tc.send(c)

			assert.Equal(t, tc.status, w.Code)
			r := decode(t, w)
			assert.False(t, r.Success)
			require.NotNil(t, r.Error)
			assert.Equal(t, tc.code, r.Error.Code)
		})
	}

	t.Run("CreatedResponse", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		CreatedResponse(c, "Wager placed", gin.H{"placement_id": "p1"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("ListResponse", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		ListResponse(c, "Markets", []string{"wingame", "roulette"}, 2)

		r := decode(t, w)
		meta := r.Meta.(map[string]interface{})
		assert.Equal(t, float64(2), meta["count"])
	})

	t.Run("PaginatedResponse", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		PaginatedResponse(c, "Wagers", []string{}, NewPaginationMeta(2, 10, 25))

		r := decode(t, w)
		meta := r.Meta.(map[string]interface{})
		assert.Equal(t, float64(3), meta["total_pages"])
		assert.Equal(t, true, meta["has_next"])
		assert.Equal(t, true, meta["has_prev"])
	})
}

func TestNewPaginationMeta(t *testing.T) {
	m := NewPaginationMeta(1, 20, 0)
	assert.Equal(t, 0, m.TotalPages)
	assert.False(t, m.HasNext)
	assert.False(t, m.HasPrev)

	m = NewPaginationMeta(1, 0, 5)
	assert.Equal(t, 1, m.PerPage)
	assert.Equal(t, 5, m.TotalPages)
}
