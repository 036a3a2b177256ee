package app

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/players"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/settlement"
	"github.com/joefazee/roundbet/app/wagers"
	"github.com/joefazee/roundbet/app/wallet"
	"github.com/joefazee/roundbet/internal/cache"
	"github.com/joefazee/roundbet/internal/deps"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/pubsub"
	"github.com/joefazee/roundbet/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gLogger "gorm.io/gorm/logger"
)

func TestInitModules(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{Logger: gLogger.Discard})
	require.NoError(t, err)

	mc := cache.NewMemoryCache[string]()
	t.Cleanup(mc.Stop)

	container := deps.NewContainer(gormDB, &security.MockMaker{}, nil, logger.NewNullLogger(), mc, pubsub.NewMemoryBus())
	cfg := &Config{
		Markets:    *markets.GetDefaultConfig(),
		Rounds:     *rounds.GetDefaultConfig(),
		Wallet:     *wallet.GetDefaultConfig(),
		Wagers:     *wagers.GetDefaultConfig(),
		Settlement: *settlement.GetDefaultConfig(),
		Players:    *players.GetDefaultConfig(),
	}

	require.NotPanics(t, func() { InitModules(container, cfg) })

	for _, key := range []string{
		markets.ServiceKey, rounds.ServiceKey, rounds.HubKey, wallet.ServiceKey,
		wagers.ServiceKey, settlement.ServiceKey, players.ServiceKey,
	} {
		assert.NotNil(t, container.GetService(key), key)
	}
	assert.Implements(t, (*settlement.Service)(nil), container.MustService(settlement.ServiceKey))
}

func TestRuntimeCloseRunsInReverse(t *testing.T) {
	var order []int
	rt := &Runtime{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return nil },
	}}

	rt.Close()
	rt.Close()

	assert.Equal(t, []int{2, 1}, order)
}
