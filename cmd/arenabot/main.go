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
	"github.com/teslashibe/go-arenabot/pkg/debug"
	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/recorder"
	"github.com/teslashibe/go-arenabot/pkg/robot"
	"github.com/teslashibe/go-arenabot/pkg/tui"
	"github.com/teslashibe/go-arenabot/pkg/web"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Config file (json, yaml or toml)")
	hardware := flag.String("hardware", "", "Hardware backend: sim or remote (overrides config)")
	remote := flag.String("remote", "", "Arena server address host:port (overrides config)")
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	debugMaps := flag.Bool("debug-maps", false, "Print every radar scan and threat map")
	dashboard := flag.Bool("dashboard", false, "Serve the live dashboard")
	tuiFlag := flag.Bool("tui", false, "Show the terminal view (logs go to tui.logFile)")
	record := flag.String("record", "", "Record the match to this SQLite file (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *hardware != "" {
		cfg.Hardware = *hardware
	}
	if *remote != "" {
		cfg.Remote.Address = *remote
	}
	if *debugFlag {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	if *dashboard {
		cfg.Dashboard.Enabled = true
	}
	if *tuiFlag {
		cfg.TUI.Enabled = true
	}
	if *record != "" {
		cfg.Recorder.Enabled = true
		cfg.Recorder.Path = *record
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.TUI.Enabled {
		// stdout belongs to the screen
		logFile, err := os.OpenFile(cfg.TUI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logFile.Close()
		log.InitTo(cfg.LogLevel, logFile)
		debug.Out = logFile
	} else {
		log.Init(cfg.LogLevel)
	}
	debug.Enabled = cfg.Debug
	debug.Maps = *debugMaps

	log.Info("arenabot starting",
		"hardware", cfg.Hardware,
		"window", cfg.Window,
		"mode", cfg.Loop.Mode,
		"reach", cfg.Threat.Reach,
		"metric", cfg.Threat.Metric)

	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Error("arenabot stopped", "error", err)
		os.Exit(1)
	}
	log.Info("goodbye")
}

func run(ctx context.Context, cfg config.Config) error {
	hw, release, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	brain := robot.NewBrain(hw, robot.Options{
		Window:         cfg.GridWindow(),
		Threat:         cfg.ThreatMap(),
		Prediction:     cfg.Threat.Prediction,
		LookaheadTurns: cfg.Policy.LookaheadTurns,
		ArmEnabled:     cfg.Arm.Enabled,
		Lockstep:       cfg.Loop.Mode == config.ModeLockstep,
		PollInterval:   cfg.Loop.PollInterval,
	})

	var observers robot.Observers
	if cfg.Dashboard.Enabled {
		dash := web.NewServer(cfg.Dashboard.Port)
		dash.StartAsync()
		defer dash.Shutdown()
		observers = append(observers, dash)
	}
	if cfg.Recorder.Enabled {
		rec, closeRec, err := openRecorder(cfg)
		if err != nil {
			return err
		}
		defer closeRec()
		observers = append(observers, rec)
	}
	if cfg.TUI.Enabled {
		screen, err := tui.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		defer screen.Fini()

		var stop context.CancelFunc
		ctx, stop = context.WithCancel(ctx)
		defer stop()

		view := tui.New(screen, "arenabot "+cfg.Hardware)
		go view.Run(ctx, stop)
		observers = append(observers, view)
	}
	if len(observers) > 0 {
		brain.SetObserver(observers)
	}

	if err := brain.Initialize(); err != nil {
		return err
	}
	return brain.Run(ctx)
}

// connect builds the hardware backend. The returned func releases it.
func connect(ctx context.Context, cfg config.Config) (robot.Hardware, func(), error) {
	switch cfg.Hardware {
	case config.HardwareRemote:
		hw, status, err := robot.DialRemote(ctx, cfg.Remote.Address, cfg.Remote.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to arena: %w", err)
		}
		if status.Size > 0 && status.Size < cfg.Window {
			log.Warn("arena is smaller than the radar window", "arena", status.Size, "window", cfg.Window)
		}
		return hw, func() { hw.Close() }, nil

	default:
		sim, err := newArena(cfg)
		if err != nil {
			return nil, nil, err
		}
		simCtx, stop := context.WithCancel(ctx)
		go sim.Run(simCtx, cfg.Arena.Tick)
		return sim, stop, nil
	}
}

// openRecorder starts recording this run. The returned func flushes the
// recorder and closes the database.
func openRecorder(cfg config.Config) (*recorder.Recorder, func(), error) {
	store, err := recorder.Open(cfg.Recorder.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open recorder: %w", err)
	}
	rec, err := store.NewRecorder(recorder.Options{
		RunID:         log.RunID(),
		Hardware:      cfg.Hardware,
		Window:        cfg.Window,
		Reach:         cfg.Threat.Reach,
		Metric:        cfg.Threat.Metric,
		BatchSize:     cfg.Recorder.BatchSize,
		FlushInterval: cfg.Recorder.FlushInterval,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return rec, func() {
		if err := rec.Close(); err != nil {
			log.Warn("recorder close failed", "error", err)
		}
		store.Close()
	}, nil
}

func newArena(cfg config.Config) (*arena.Arena, error) {
	heading, err := grid.ParseOrientation(cfg.Arena.Heading)
	if err != nil {
		return nil, err
	}
	return arena.New(arena.Config{
		Name:       "sim",
		Size:       cfg.Arena.Size,
		Enemies:    cfg.Arena.Enemies,
		Seed:       cfg.Arena.Seed,
		Heading:    heading,
		RadarEvery: cfg.Arena.RadarEvery,
		MotorEvery: cfg.Arena.MotorEvery,
		ArmEvery:   cfg.Arena.ArmEvery,
		EnemyEvery: cfg.Arena.EnemyEvery,
	})
}
