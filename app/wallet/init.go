package wallet

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/internal/deps"
	"github.com/joefazee/roundbet/models"
)

const (
	RepoKey    = "wallet_repository"
	ServiceKey = "wallet_service"
)

// InitRepositories initializes and registers repositories and services for this module
func InitRepositories(container *deps.Container, config *Config) {
	if config == nil {
		config = GetDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		panic("Invalid wallet configuration: " + err.Error())
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	srv := NewService(repo, container.DB, config, container.Logger, container.Sanitizer)
	container.RegisterService(ServiceKey, srv)
}

// MountAuthenticated mounts the player wallet routes
func MountAuthenticated(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	walletGroup := r.Group("/wallet")
	walletGroup.GET("", handler.GetWallet)
	walletGroup.GET("/entries", handler.GetEntries)
}

// MountAdmin mounts the admin wallet routes
func MountAdmin(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.POST("/wallets/:user_id/credit", api.Can(models.PermissionWalletsCredit), handler.AdminCredit)
}

// createHandler creates a wallet handler with all dependencies
func createHandler(container *deps.Container) *Handler {
	srv := container.MustService(ServiceKey).(Service)
	return NewHandler(srv)
}
