package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/HerbHall/pollnow/internal/pulse"
	"github.com/HerbHall/pollnow/internal/seed"
	"go.uber.org/zap"
)

// runSeed loads the Execute now fixture set into the configured database.
func runSeed(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	address := fs.String("address", "127.0.0.1", "address of the fixture host")
	_ = fs.Parse(args)

	viperCfg, logger := loadConfigAndLogger(*configPath)
	defer func() { _ = logger.Sync() }()

	db := openStore(logger, viperCfg)
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx, "pulse", pulse.Migrations()); err != nil {
		logger.Fatal("pulse migrations failed", zap.Error(err))
	}

	res, err := seed.SeedFixtures(ctx, pulse.NewPulseStore(db.DB()), *address)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("fixture set seeded",
		zap.String("host", res.Host.Name),
		zap.String("host_id", res.Host.ID),
		zap.Int("objects", len(res.Objects)),
		zap.Int("created", res.Created),
	)
	fmt.Fprintf(os.Stderr, "seeded %q: %d objects (%d new)\n", res.Host.Name, len(res.Objects), res.Created)
}
