package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/outletplay/internal/auth"
	"github.com/abrezinsky/outletplay/internal/broadcast"
	"github.com/abrezinsky/outletplay/internal/config"
	"github.com/abrezinsky/outletplay/internal/handlers"
	"github.com/abrezinsky/outletplay/internal/logger"
	"github.com/abrezinsky/outletplay/internal/repository"
	"github.com/abrezinsky/outletplay/internal/services"
	"github.com/abrezinsky/outletplay/internal/websocket"
)

const defaultShutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	cfg      *config.Config
	log      logger.Logger
	repo     *repository.Repository
	game     *services.GameService
	feed     *broadcast.Broadcaster
	hub      *websocket.Hub
	handlers *handlers.Handlers
}

// New creates and initializes a new application instance
func New(ctx context.Context, log logger.Logger, cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("game timezone: %w", err)
	}

	repo, err := repository.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}

	// Initialize services
	game := services.NewGameService(log, repo, services.GameConfig{
		DailyPrizeCap:  cfg.Game.DailyPrizeCap,
		WinProbability: cfg.Game.WinProbability,
		VoucherPrefix:  cfg.Game.VoucherPrefix,
		Location:       loc,
	})
	prizes := services.NewPrizeService(log, repo)

	if cfg.Game.SeedPrizes {
		if _, err := prizes.SeedDefaultPrizes(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to seed prizes: %w", err)
		}
	}

	// Live wins reach both SSE and websocket viewers through one feed
	feed := broadcast.New(log)
	game.SetPublisher(feed)
	hub := websocket.New(log, feed, cfg.Server.AllowedOrigins)

	h := handlers.New(
		game,
		prizes,
		repo,
		auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		feed,
		http.HandlerFunc(hub.ServeWs),
		log,
		handlers.Options{
			AllowedOrigins:    cfg.Server.AllowedOrigins,
			KeepaliveInterval: cfg.Live.KeepaliveInterval,
		},
	)

	return &App{
		cfg:      cfg,
		log:      log,
		repo:     repo,
		game:     game,
		feed:     feed,
		hub:      hub,
		handlers: h,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close disconnects live viewers and releases the database
func (a *App) Close() error {
	a.handlers.CloseLive()
	a.hub.Close()
	return a.repo.Close()
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown waits for plays in flight but never for a live stream
	srv.RegisterOnShutdown(a.handlers.CloseLive)

	port := ln.Addr().(*net.TCPAddr).Port
	a.log.Info("Server starting", "url", fmt.Sprintf("http://%s:%d", lanIP(systemInterfaces{}), port))
	a.log.Info("Game rules",
		"daily_prize_cap", a.cfg.Game.DailyPrizeCap,
		"win_probability", a.cfg.Game.WinProbability,
		"timezone", a.cfg.Game.Timezone,
	)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Websocket connections are hijacked and not tracked by Shutdown
	a.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("Graceful shutdown timed out", "error", err)
		srv.Close()
	}
	return nil
}
