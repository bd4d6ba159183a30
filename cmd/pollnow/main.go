package main

//	@title						PollNow API
//	@version					0.1.0
//	@description				Monitoring console API: object catalog and the Execute now action.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/HerbHall/pollnow/api/swagger"
	"github.com/HerbHall/pollnow/internal/auth"
	"github.com/HerbHall/pollnow/internal/config"
	"github.com/HerbHall/pollnow/internal/console"
	"github.com/HerbHall/pollnow/internal/event"
	"github.com/HerbHall/pollnow/internal/mqtt"
	"github.com/HerbHall/pollnow/internal/pulse"
	"github.com/HerbHall/pollnow/internal/registry"
	"github.com/HerbHall/pollnow/internal/server"
	"github.com/HerbHall/pollnow/internal/store"
	"github.com/HerbHall/pollnow/internal/version"
	"github.com/HerbHall/pollnow/internal/ws"
	"github.com/HerbHall/pollnow/pkg/plugin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// Subcommand dispatch (before flag.Parse).
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Println(version.Info())
			return
		case "seed":
			runSeed(os.Args[2:])
			return
		case "hash-password":
			runHashPassword(os.Args[2:])
			return
		}
	}

	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	viperCfg, logger := loadConfigAndLogger(*configPath)
	defer func() { _ = logger.Sync() }()

	logger.Info("PollNow server starting", zap.String("version", version.Short()))

	db := openStore(logger, viperCfg)
	defer db.Close()

	bus := event.NewBus(logger.Named("event"))
	reg := registry.New(logger.Named("registry"))

	pulseMod := pulse.New()
	for _, p := range []plugin.Plugin{pulseMod, mqtt.New()} {
		if err := reg.Register(p); err != nil {
			logger.Fatal("failed to register plugin",
				zap.String("plugin", p.Info().Name),
				zap.Error(err),
			)
		}
	}
	if err := reg.Validate(); err != nil {
		logger.Fatal("plugin validation failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.New(viperCfg)
	if err := reg.InitAll(ctx, func(name string) plugin.Dependencies {
		return plugin.Dependencies{
			Config:  cfg.Sub("plugins." + name),
			Logger:  logger.Named(name),
			Store:   db,
			Bus:     bus,
			Plugins: reg,
		}
	}); err != nil {
		logger.Fatal("failed to initialize plugins", zap.Error(err))
	}
	if err := reg.StartAll(ctx); err != nil {
		logger.Fatal("failed to start plugins", zap.Error(err))
	}

	// Authentication is optional: without an admin password hash the API is open.
	var authRoutes server.RouteRegistrar
	var tokens ws.TokenValidator
	authCfg := auth.Config{
		JWTSecret:         viperCfg.GetString("auth.jwt_secret"),
		AccessTokenTTL:    viperCfg.GetDuration("auth.access_token_ttl"),
		AdminUsername:     viperCfg.GetString("auth.admin_username"),
		AdminPasswordHash: viperCfg.GetString("auth.admin_password_hash"),
	}
	authService, err := auth.NewService(authCfg, logger.Named("auth"))
	switch {
	case errors.Is(err, auth.ErrNoAdminAccount):
		logger.Warn("auth.admin_password_hash not set; API authentication disabled",
			zap.String("component", "auth"),
		)
	case err != nil:
		logger.Fatal("failed to initialize auth", zap.Error(err))
	default:
		authRoutes = auth.NewHandler(authService, logger.Named("auth"))
		tokens = authService.Tokens()
		logger.Info("auth service initialized",
			zap.String("component", "auth"),
			zap.String("admin", authCfg.AdminUsername),
			zap.Duration("access_token_ttl", authService.Tokens().AccessTokenTTL()),
		)
	}

	wsHandler := ws.NewHandler(tokens, bus, logger.Named("ws"))
	defer wsHandler.Close()

	// Keys are read individually so PN_* environment overrides apply.
	srvCfg := server.Config{
		Host:    viperCfg.GetString("server.host"),
		Port:    viperCfg.GetInt("server.port"),
		DevMode: viperCfg.GetBool("server.dev_mode"),
		RateLimit: server.RateLimitConfig{
			RPS:          viperCfg.GetFloat64("server.rate_limit.rps"),
			Burst:        viperCfg.GetInt("server.rate_limit.burst"),
			ExecuteRPS:   viperCfg.GetFloat64("server.rate_limit.execute_rps"),
			ExecuteBurst: viperCfg.GetInt("server.rate_limit.execute_burst"),
		},
	}
	addr := srvCfg.Addr()

	srv := server.New(addr, reg, logger, server.Options{
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx)
		},
		Auth:      authRoutes,
		Console:   console.New(pulseMod.Store(), logger.Named("console")),
		DevMode:   srvCfg.DevMode,
		RateLimit: srvCfg.RateLimit,
		Extra:     []server.SimpleRouteRegistrar{wsHandler},
	})

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("PollNow server ready", zap.String("addr", addr))
	fmt.Fprintf(os.Stderr, "\n  PollNow %s is ready!\n  Open http://localhost:%d/console/ in your browser.\n\n", version.Short(), srvCfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	reg.StopAll(shutdownCtx)
	bus.Wait()

	logger.Info("PollNow server stopped")
}

// loadConfigAndLogger loads configuration before the logger so log level and
// format can be configured. Failures here go to stderr.
func loadConfigAndLogger(configPath string) (*viper.Viper, *zap.Logger) {
	viperCfg, err := server.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(viperCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if f := viperCfg.ConfigFileUsed(); f != "" {
		logger.Info("configuration loaded",
			zap.String("component", "config"),
			zap.String("source", f),
		)
	} else {
		logger.Warn("no configuration file found, using defaults",
			zap.String("component", "config"),
		)
	}
	return viperCfg, logger
}

// openStore opens the database and refuses one written by a newer binary.
func openStore(logger *zap.Logger, v *viper.Viper) *store.SQLiteStore {
	dbPath := v.GetString("database.path")
	if dbPath == "" {
		dbPath = "pollnow.db"
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			logger.Fatal("failed to create database directory", zap.Error(err))
		}
	}

	db, err := store.New(dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if err := db.CheckVersion(context.Background(), version.Short()); err != nil {
		db.Close()
		logger.Fatal("database version check failed", zap.Error(err))
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", dbPath),
	)
	return db
}
