package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/oggyb/spark-core/internal/config"
	"github.com/oggyb/spark-core/internal/db"
	"github.com/oggyb/spark-core/internal/logger"
)

func main() {
	opts := db.DefaultSeedOptions()
	pflag.IntVar(&opts.Users, "users", opts.Users, "number of demo users")
	pflag.Int64Var(&opts.Points, "points", opts.Points, "signup bonus credited to every user")
	pflag.BoolVar(&opts.Reset, "reset", opts.Reset, "wipe all tables before seeding")
	pflag.Int64Var(&opts.RandSeed, "rand-seed", 0, "seed for the swipe pattern (0 = random)")
	pflag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.InitFromConfig(cfg)
	log := logger.L()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.SeedTestData(database, opts, log); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}
	log.Info("seeding completed")
}
