package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/teslashibe/go-arenabot/internal/config"
	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/arena"
	"github.com/teslashibe/go-arenabot/pkg/grid"
)

func main() {
	configPath := flag.String("config", "", "Config file (json, yaml or toml)")
	port := flag.String("port", "", "Listen port (overrides config)")
	seed := flag.Uint64("seed", 0, "Arena seed (overrides config, 0 keeps it)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Arena.Port = *port
	}
	if *seed != 0 {
		cfg.Arena.Seed = *seed
	}

	log.Init(cfg.LogLevel)

	// Load has already validated the heading
	heading, _ := grid.ParseOrientation(cfg.Arena.Heading)
	a, err := arena.New(arena.Config{
		Name:       "arena",
		Size:       cfg.Arena.Size,
		Enemies:    cfg.Arena.Enemies,
		Seed:       cfg.Arena.Seed,
		Heading:    heading,
		RadarEvery: cfg.Arena.RadarEvery,
		MotorEvery: cfg.Arena.MotorEvery,
		ArmEvery:   cfg.Arena.ArmEvery,
		EnemyEvery: cfg.Arena.EnemyEvery,
	})
	if err != nil {
		log.Error("invalid arena", "error", err)
		os.Exit(1)
	}

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go a.Run(ctx, cfg.Arena.Tick)

	app := arena.NewServer(a).NewApp()
	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = app.Shutdown()
	}()

	log.Info("arena listening", "port", cfg.Arena.Port, "size", cfg.Arena.Size, "enemies", cfg.Arena.Enemies)
	if err := app.Listen(":" + cfg.Arena.Port); err != nil {
		log.Error("arena server failed", "error", err)
		os.Exit(1)
	}
}
