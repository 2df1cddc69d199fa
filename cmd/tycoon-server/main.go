package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tycoon/internal/api"
	"tycoon/internal/catalog"
	"tycoon/internal/config"
	"tycoon/internal/game"
	"tycoon/internal/snapshot"
	"tycoon/internal/storage"
)

func main() {
	configPath := flag.String("config", os.Getenv("TYCOON_CONFIG"), "path to a TOML config file")
	tickOnce := flag.Bool("tick-once", false, "settle a single tick against the stored game and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Error("load catalog failed", "path", cfg.CatalogPath, "err", err)
		os.Exit(1)
	}

	kv, err := storage.NewFileKV(cfg.DataDir)
	if err != nil {
		logger.Error("open data dir failed", "dir", cfg.DataDir, "err", err)
		os.Exit(1)
	}

	engine := game.NewEngine(cat, snapshot.NewStore(kv), logger)
	engine.Load()
	wallet := game.NewWallet(kv, logger)
	sched := game.NewScheduler(engine, wallet, cfg.TickEvery, game.RealClock{}, logger)

	if *tickOnce {
		report := sched.Tick()
		logger.Info("tick run-once completed", "income", report.Income, "balance", report.Balance)
		return
	}

	server := api.New(logger, api.Game{
		Engine:    engine,
		Wallet:    wallet,
		Actions:   game.NewActions(engine, wallet, cfg.PerClick),
		Scheduler: sched,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched.Start(ctx)
	go func() {
		<-ctx.Done()
		sched.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("tycoon api listening", "addr", cfg.Addr, "data_dir", kv.Dir(), "businesses", engine.Len())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
	logger.Info("tycoon api stopped")
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

func newLogger(cfg config.ServerConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
