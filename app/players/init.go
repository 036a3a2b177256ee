package players

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/deps"
)

const (
	RepoKey    = "players_repository"
	ServiceKey = "players_service"
)

// InitRepositories initializes and registers repositories and services for
// this module. The wallet module must be initialized first.
func InitRepositories(container *deps.Container, config *Config) {
	if config == nil {
		config = GetDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		panic("Invalid players configuration: " + err.Error())
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	srv := NewService(repo, container.DB,
		container.MustService(wallet.ServiceKey).(wallet.Ledger),
		container.Cache, container.Sanitizer, config, container.Logger)
	container.RegisterService(ServiceKey, srv)
}

// Middleware returns the bearer token middleware for authenticated groups
func Middleware(container *deps.Container) gin.HandlerFunc {
	return AuthMiddleware(container.TokenMaker, container.MustService(ServiceKey).(AuthService))
}

// MountAuthenticated mounts the player profile routes
func MountAuthenticated(r *gin.RouterGroup, container *deps.Container) {
	handler := NewHandler(container.MustService(ServiceKey).(Service))

	group := r.Group("/players")
	group.POST("/register", handler.Register)
	group.GET("/me", handler.GetMe)
}
