package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/internal/deps"
	"github.com/stretchr/testify/assert"
)

func ping(r *gin.RouterGroup, _ *deps.Container) {
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func TestMounter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	deny := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}

	m := NewMounter(deps.NewContainer(nil, nil, nil, nil, nil, nil), deny)
	m.Public(engine).Group("/public").Mount(ping)
	m.Authenticated(engine).Group("/private").Mount(ping)
	m.Admin(engine).Mount(ping)

	cases := []struct {
		path   string
		auth   bool
		status int
	}{
		{"/api/v1/public/ping", false, http.StatusOK},
		{"/api/v1/private/ping", false, http.StatusUnauthorized},
		{"/api/v1/private/ping", true, http.StatusOK},
		{"/api/v1/admin/ping", false, http.StatusUnauthorized},
		{"/api/v1/admin/ping", true, http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.auth {
			req.Header.Set("Authorization", "Bearer x")
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.path)
	}
}

func TestMounterWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	NewMounter(deps.NewContainer(nil, nil, nil, nil, nil, nil), nil).Authenticated(engine).Mount(ping)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
