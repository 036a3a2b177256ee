package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joefazee/roundbet/app"
	"github.com/joefazee/roundbet/app/api"
	apiDoc "github.com/joefazee/roundbet/app/doc"
	"github.com/joefazee/roundbet/app/markets"
	"github.com/joefazee/roundbet/app/players"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/settlement"
	"github.com/joefazee/roundbet/app/wagers"
	"github.com/joefazee/roundbet/app/wallet"
	_ "github.com/joefazee/roundbet/docs"
	"github.com/joefazee/roundbet/internal/logger"
	"github.com/joefazee/roundbet/internal/metrics"
	"github.com/joefazee/roundbet/internal/router"
	"github.com/joefazee/roundbet/internal/security"
)

const shutdownTimeout = 15 * time.Second

// @title Roundbet API
// @version 1.0
// @description Round-based wagering markets: live rounds, wagers, wallets and settlement.
// @x-logo {"url": "https://go.dev/images/go-logo-white.svg", "altText": "Go API Logo"}

// @contact.name API Support Team

// @license.name MIT License
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.NewZeroLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel), logger.Fields{
		"service": "roundbet-api",
		"env":     cfg.Env,
	})

	tokenMaker, err := security.NewPasetoMaker(cfg.SymmetricKey)
	if err != nil {
		log.Fatal(fmt.Errorf("cannot create token maker: %w", err), nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(ctx, cfg, log, tokenMaker)
	if err != nil {
		log.Fatal(err, map[string]interface{}{"stage": "runtime"})
	}
	defer rt.Close()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger(log), api.CorsMiddleware())

	if sqlDB, err := rt.Container.DB.DB(); err == nil {
		r.GET("/health", api.HealthCheck(sqlDB))
	} else {
		r.GET("/health", api.HealthCheck(nil))
	}
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	mountRoutes(r, rt)

	apiDoc.Init(r, apiDoc.Options{
		Environment: cfg.Env,
		LocalURL:    fmt.Sprintf("http://%s:%s", cfg.AppHost, cfg.AppPort),
		PublicURL:   os.Getenv("APP_PUBLIC_URL"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.AppHost, cfg.AppPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting roundbet api", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(err, map[string]interface{}{"stage": "listen"})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down roundbet api", nil)

	rt.Container.MustService(rounds.HubKey).(*rounds.Hub).Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, map[string]interface{}{"stage": "shutdown"})
	}
}

func mountRoutes(r *gin.Engine, rt *app.Runtime) {
	m := router.NewMounter(rt.Container, players.Middleware(rt.Container))

	m.Public(r).Mount(
		markets.MountPublic,
		rounds.MountPublic,
	)

	m.Authenticated(r).Mount(
		players.MountAuthenticated,
		wallet.MountAuthenticated,
		wagers.MountAuthenticated,
	)

	m.Admin(r).Mount(
		markets.MountAdmin,
		wallet.MountAdmin,
		wagers.MountAdmin,
		settlement.MountAdmin,
	)
}
