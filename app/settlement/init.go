package settlement

import (
	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app/api"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/wagers"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/deps"
	"github.com/joefazee/roundbet/models"
)

const (
	RepoKey    = "settlement_repository"
	ServiceKey = "settlement_service"
)

// InitRepositories initializes and registers repositories and services for
// this module, and attaches the service to the round scheduler. Markets,
// rounds, wallet and wagers must be initialized first.
func InitRepositories(container *deps.Container, config *Config) {
	if config == nil {
		config = GetDefaultConfig()
	}
	if err := config.Validate(); err != nil {
		panic("Invalid settlement configuration: " + err.Error())
	}

	repo := NewRepository(container.DB)
	container.RegisterRepository(RepoKey, repo)

	srv := NewService(Dependencies{
		Repo:     repo,
		Rounds:   container.GetRepository(rounds.RepoKey).(rounds.Repository),
		Wagers:   container.GetRepository(wagers.RepoKey).(wagers.Repository),
		Ledger:   container.MustService(wallet.ServiceKey).(wallet.Ledger),
		Registry: container.MustService(markets.ServiceKey).(markets.Registry),
		DB:       container.DB,
		Bus:      container.Bus,
		Logger:   container.Logger,
	}, config)
	container.RegisterService(ServiceKey, srv)

	container.MustService(rounds.ServiceKey).(rounds.Service).SetSettler(srv)
}

// MountAdmin mounts the settlement admin routes
func MountAdmin(r *gin.RouterGroup, container *deps.Container) {
	handler := NewHandler(container.MustService(ServiceKey).(Service))

	r.PUT("/markets/:id/override", api.Can(models.PermissionRoundsOverride), handler.OverrideOutcome)
	r.GET("/markets/:id/rounds/:round_id/settlement", api.Can(models.PermissionWagersRead), handler.GetSummary)
}
