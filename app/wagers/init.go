package wagers

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/deps"
	"github.com/joefazee/roundbet/models"
)

const (
	RepoKey    = "wagers_repository"
	ServiceKey = "wagers_service"
)

// InitRepositories initializes and registers repositories and services for
// this module. Markets, rounds and wallet must be initialized first.
func InitRepositories(container *deps.Container, config *Config) {
	if config == nil {
		config = GetDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		panic("Invalid wagers configuration: " + err.Error())
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	srv := NewService(
		repo,
		container.DB,
		container.MustService(markets.ServiceKey).(markets.Registry),
		container.MustService(rounds.ServiceKey).(rounds.Observer),
		container.MustService(wallet.ServiceKey).(wallet.Ledger),
		config,
		container.Logger,
	)
	container.RegisterService(ServiceKey, srv)
}

// MountAuthenticated mounts the player wager routes
func MountAuthenticated(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.POST("/markets/:id/wagers", handler.PlaceWager)
	r.GET("/wagers", handler.GetWagers)
}

// MountAdmin mounts the admin report routes
func MountAdmin(r *gin.RouterGroup, container *deps.Container) {
	handler := createHandler(container)

	r.GET("/markets/:id/rounds/:round_id/aggregate", api.Can(models.PermissionWagersRead), handler.GetRoundAggregate)
	r.GET("/reports/profit-loss", api.Can(models.PermissionReportsRead), handler.GetProfitLoss)
	r.GET("/players/:id/winloss", api.Can(models.PermissionReportsRead), handler.GetPlayerWinLoss)
}

func createHandler(container *deps.Container) *Handler {
	return NewHandler(container.MustService(ServiceKey).(Service))
}
