package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finpulse/finpulse/internal/api"
	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/event"
	"github.com/finpulse/finpulse/internal/notify"
	"github.com/finpulse/finpulse/internal/rules"
	"github.com/finpulse/finpulse/internal/storage"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	cfgPath := flag.String("config", "configs/finpulse.yaml", "Path to YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load config ──────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*cfgPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	if err := config.Validate(cfg); err != nil {
		slog.Error("config validation failed", "err", err)
		os.Exit(1)
	}

	// ── Compile rules ─────────────────────────────────────────────────────────
	rs, err := rules.FromConfig(cfg.Rules)
	if err != nil {
		slog.Error("failed to build ruleset", "err", err)
		os.Exit(1)
	}
	slog.Info("ruleset built",
		"overspending", rs.OverspendingThreshold,
		"critical", rs.CriticalSpendingThreshold,
		"milestones", rs.GoalMilestones,
	)

	// ── Storage ───────────────────────────────────────────────────────────────
	store, err := storage.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open notification store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	// ── Engine + bus ──────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := notify.New(ctx, store, rs, cfg.Writer)
	bus := event.NewBus()
	svc.Register(bus)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	loader.OnChange(func(newCfg *config.Config) {
		if err := config.Validate(newCfg); err != nil {
			slog.Warn("hot-reload skipped: config invalid", "err", err)
			return
		}
		newRules, err := rules.FromConfig(newCfg.Rules)
		if err != nil {
			slog.Warn("hot-reload skipped: ruleset build failed", "err", err)
			return
		}
		svc.SwapRules(newRules)
		slog.Info("ruleset hot-reloaded")
	})
	stopWatch, err := loader.Watch()
	if err != nil {
		slog.Warn("config watcher unavailable (hot-reload disabled)", "err", err)
	} else {
		defer stopWatch()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.New(bus, svc, loader)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	svc.Shutdown() // drain pending store writes
	cancel()
	slog.Info("goodbye")
}
