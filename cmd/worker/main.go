package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joefazee/roundbet/app"
	"github.com/joefazee/roundbet/app/rounds"
	"github.com/joefazee/roundbet/app/settlement"
	"github.com/joefazee/roundbet/internal/logger"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.NewZeroLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel), logger.Fields{
		"service": "roundbet-worker",
		"env":     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal(err, map[string]interface{}{"stage": "runtime"})
	}
	defer rt.Close()

	scheduler := rt.Container.MustService(rounds.ServiceKey).(rounds.Service)
	settler := rt.Container.MustService(settlement.ServiceKey).(settlement.Service)

	log.Info("starting roundbet worker", map[string]interface{}{
		"tick_interval":   cfg.Rounds.TickInterval.String(),
		"resume_interval": cfg.Settlement.ResumeAfter.String(),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return every(ctx, cfg.Rounds.TickInterval, func(ctx context.Context, now time.Time) error {
			return scheduler.Tick(ctx, now)
		}, log, "tick")
	})
	g.Go(func() error {
		return every(ctx, cfg.Settlement.ResumeAfter, func(ctx context.Context, now time.Time) error {
			n, err := settler.ResumePending(ctx, now)
			if n > 0 {
				log.Info("resumed settlements", map[string]interface{}{"count": n})
			}
			return err
		}, log, "resume")
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error(err, map[string]interface{}{"stage": "worker"})
		os.Exit(1)
	}
	log.Info("roundbet worker stopped", nil)
}

// every calls fn once per interval until ctx is done. A failing call is
// logged and the loop carries on.
func every(ctx context.Context, interval time.Duration, fn func(context.Context, time.Time) error, log logger.Logger, job string) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := fn(ctx, now); err != nil && ctx.Err() == nil {
				log.Error(err, map[string]interface{}{"job": job})
			}
		}
	}
}
