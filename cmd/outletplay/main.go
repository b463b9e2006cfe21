package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abrezinsky/outletplay/internal/app"
	"github.com/abrezinsky/outletplay/internal/auth"
	"github.com/abrezinsky/outletplay/internal/config"
	"github.com/abrezinsky/outletplay/internal/logger"
	"github.com/abrezinsky/outletplay/internal/models"
)

var (
	version = "dev"
)

// cycleLogLevel cycles through debug -> info -> warn -> error
func cycleLogLevel(appLog *logger.SlogLogger) string {
	var next string
	switch appLog.GetLevel().String() {
	case "DEBUG":
		next = "info"
	case "INFO":
		next = "warn"
	case "WARN":
		next = "error"
	default:
		next = "debug"
	}
	appLog.SetLevel(logger.ParseLevel(next))
	return next
}

// toggleHTTPLogging flips request logging and returns the new state
func toggleHTTPLogging(appLog *logger.SlogLogger) bool {
	if appLog.IsHTTPLoggingEnabled() {
		appLog.DisableHTTPLogging()
		return false
	}
	appLog.EnableHTTPLogging()
	return true
}

func main() {
	configPath := flag.String("config", "", "Config file (yaml, toml or json)")
	logLevel := flag.String("loglevel", "", "Log level override (debug, info, warn, error)")
	tokenUser := flag.Int64("token-user", 0, "Print a signed token for this user id and exit")
	tokenRole := flag.String("token-role", models.RoleUser, "Role of the token printed by -token-user (USER or ADMIN)")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `OutletPlay - daily scratch-card game for mall visitors

Usage:
  outletplay [options]

Options:
  -config str      Config file (yaml, toml or json)
  -loglevel str    Log level override: debug, info, warn, error
  -token-user int  Print a signed token for this user id and exit
  -token-role str  Role for -token-user: USER or ADMIN (default "USER")
  -version         Show version and exit
  -help            Show this help message

Every setting can also be given as an environment variable or in a .env
file, e.g. OUTLETPLAY_AUTH_JWT_SECRET, OUTLETPLAY_GAME_DAILY_PRIZE_CAP.

Signals:
  SIGUSR1          Toggle HTTP request logging
  SIGUSR2          Cycle log level (debug → info → warn → error)

Examples:
  outletplay -config outletplay.yaml
  outletplay -token-user 42 -token-role ADMIN

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("outletplay %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	if *tokenUser > 0 {
		token, err := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).Issue(
			models.Identity{UserID: *tokenUser, Role: *tokenRole}, time.Now())
		if err != nil {
			log.Fatal("Failed to issue token: ", err)
		}
		fmt.Println(token)
		return
	}

	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}
	appLog := logger.NewWithOptions(logger.Options{
		Level:       logger.ParseLevel(level),
		Format:      cfg.Log.Format,
		HTTPLogging: cfg.Log.HTTP,
	})
	// net/http server errors go through the standard log package
	slog.SetDefault(appLog.Slog())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, appLog, cfg)
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	go handleControlSignals(ctx, appLog)

	if err := a.Run(ctx, cfg.Addr()); err != nil {
		appLog.Error("Server stopped", "error", err)
		a.Close()
		os.Exit(1)
	}
}
