package markets

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/internal/deps"
	"github.com/joefazee/roundbet/models"
)

const (
	RepoKey    = "markets_repository"
	ServiceKey = "markets_service"
)

// InitRepositories initializes and registers repositories and services for this module
func InitRepositories(container *deps.Container, config *Config) {
	if config == nil {
		config = GetDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		panic("Invalid markets configuration: " + err.Error())
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	srv := NewService(repo, container.DB, container.Cache, config, container.Logger)
	container.RegisterService(ServiceKey, srv)
}

// SyncCatalogue loads the catalogue named by config, or the built-in one,
// and writes it to the database.
func SyncCatalogue(ctx context.Context, container *deps.Container, config *Config) error {
	catalogue := DefaultCatalogue()
	if config != nil && config.File != "" {
		loaded, err := LoadCatalogue(config.File)
		if err != nil {
			return err
		}
		catalogue = loaded
	}
	return container.MustService(ServiceKey).(Service).Sync(ctx, catalogue)
}

// MountPublic mounts the market catalogue routes
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	marketsGroup := r.Group("/markets")
	marketsGroup.GET("", handler.GetMarkets)
	marketsGroup.GET("/:id", handler.GetMarketByID)
}

// MountAdmin mounts the market administration routes
func MountAdmin(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.PUT("/markets/:id/schedule", api.Can(models.PermissionMarketsManage), handler.UpdateSchedule)
}

func createHandler(container *deps.Container) *Handler {
	srv := container.MustService(ServiceKey).(Service)
	return NewHandler(srv)
}
