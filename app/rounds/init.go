package rounds

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/internal/deps"
)

const (
	RepoKey    = "rounds_repository"
	ServiceKey = "rounds_service"
	HubKey     = "rounds_hub"
)

// InitRepositories initializes and registers repositories and services for
// this module. The markets module must be initialized first.
func InitRepositories(container *deps.Container, config *Config) {
	if config == nil {
		config = GetDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		panic("Invalid rounds configuration: " + err.Error())
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	registry := container.MustService(markets.ServiceKey).(markets.Registry)
	srv := NewService(repo, container.DB, registry, container.Bus, config, container.Logger)
	container.RegisterService(ServiceKey, srv)

	container.RegisterService(HubKey, NewHub(srv, container.Bus, config.SnapshotInterval, container.Logger))
}

// MountPublic mounts the round state routes under /markets/:id
func MountPublic(r *gin.RouterGroup, container *deps.Container) {
	handler := NewHandler(container.MustService(ServiceKey).(Service))
	hub := container.MustService(HubKey).(*Hub)

	marketGroup := r.Group("/markets/:id")
	marketGroup.GET("/round", handler.GetRound)
	marketGroup.GET("/round/stream", hub.Stream)
	marketGroup.GET("/results", handler.GetResults)
}
