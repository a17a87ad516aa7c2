// Package config loads arenabot configuration from defaults, an optional
// config file and ARENABOT_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
)

// Loop modes.
const (
	ModePoll     = "poll"     // poll radar and motor readiness every iteration
	ModeLockstep = "lockstep" // wait for radar, decide, wait for motor
)

// Hardware backends.
const (
	HardwareSim    = "sim"    // in-process arena simulator
	HardwareRemote = "remote" // arena server over websocket
)

// EnvPrefix is prepended to every environment override, e.g. ARENABOT_THREAT_REACH.
const EnvPrefix = "ARENABOT"

// Config is the full process configuration.
type Config struct {
	LogLevel  string          `mapstructure:"logLevel"`
	Debug     bool            `mapstructure:"debug"`
	Window    int             `mapstructure:"window"`
	Threat    ThreatConfig    `mapstructure:"threat"`
	Policy    PolicyConfig    `mapstructure:"policy"`
	Loop      LoopConfig      `mapstructure:"loop"`
	Arm       ArmConfig       `mapstructure:"arm"`
	Hardware  string          `mapstructure:"hardware"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Recorder  RecorderConfig  `mapstructure:"recorder"`
	TUI       TUIConfig       `mapstructure:"tui"`
	Arena     ArenaConfig     `mapstructure:"arena"`
}

// ThreatConfig holds the threat field kernel.
type ThreatConfig struct {
	Reach      int    `mapstructure:"reach"`
	Metric     string `mapstructure:"metric"`
	Prediction bool   `mapstructure:"prediction"` // add one-tick-ahead enemy positions
}

// PolicyConfig tunes the greedy move policy.
type PolicyConfig struct {
	LookaheadTurns bool `mapstructure:"lookaheadTurns"`
}

// LoopConfig controls the scheduler.
type LoopConfig struct {
	Mode         string        `mapstructure:"mode"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

// ArmConfig controls the stab reflex.
type ArmConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// RemoteConfig points at an arena server.
type RemoteConfig struct {
	Address string        `mapstructure:"address"` // host:port
	Timeout time.Duration `mapstructure:"timeout"`
}

// DashboardConfig controls the live web dashboard.
type DashboardConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    string `mapstructure:"port"`
}

// RecorderConfig controls the SQLite match recorder.
type RecorderConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Path          string        `mapstructure:"path"`
	BatchSize     int           `mapstructure:"batchSize"`
	FlushInterval time.Duration `mapstructure:"flushInterval"`
}

// TUIConfig controls the terminal view. While it is up, logs go to LogFile.
type TUIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	LogFile string `mapstructure:"logFile"`
}

// ArenaConfig configures the simulator, in-process or served by cmd/arena.
type ArenaConfig struct {
	Size       int           `mapstructure:"size"`
	Enemies    int           `mapstructure:"enemies"`
	Seed       uint64        `mapstructure:"seed"`
	Heading    string        `mapstructure:"heading"`
	Tick       time.Duration `mapstructure:"tick"`
	RadarEvery int           `mapstructure:"radarEvery"` // ticks between radar sweeps
	MotorEvery int           `mapstructure:"motorEvery"` // ticks between motor actions
	ArmEvery   int           `mapstructure:"armEvery"`   // ticks between stabs
	EnemyEvery int           `mapstructure:"enemyEvery"` // ticks between enemy steps
	Port       string        `mapstructure:"port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("debug", false)
	v.SetDefault("window", int(grid.DefaultWindow))

	v.SetDefault("threat.reach", threatmap.DefaultReach)
	v.SetDefault("threat.metric", string(threatmap.DefaultMetric))
	v.SetDefault("threat.prediction", true)

	v.SetDefault("policy.lookaheadTurns", false)

	v.SetDefault("loop.mode", ModePoll)
	v.SetDefault("loop.pollInterval", 5*time.Millisecond)

	v.SetDefault("arm.enabled", true)

	v.SetDefault("hardware", HardwareSim)

	v.SetDefault("remote.address", ArenaAddress("localhost:"+DefaultArenaPort))
	v.SetDefault("remote.timeout", 2*time.Second)

	v.SetDefault("dashboard.enabled", false)
	v.SetDefault("dashboard.port", DefaultDashboardPort)

	v.SetDefault("recorder.enabled", false)
	v.SetDefault("recorder.path", "arenabot.db")
	v.SetDefault("recorder.batchSize", 256)
	v.SetDefault("recorder.flushInterval", time.Second)

	v.SetDefault("tui.enabled", false)
	v.SetDefault("tui.logFile", "arenabot.log")

	v.SetDefault("arena.size", 24)
	v.SetDefault("arena.enemies", 6)
	v.SetDefault("arena.seed", 0)
	v.SetDefault("arena.heading", "north")
	v.SetDefault("arena.tick", 20*time.Millisecond)
	v.SetDefault("arena.radarEvery", 5)
	v.SetDefault("arena.motorEvery", 2)
	v.SetDefault("arena.armEvery", 10)
	v.SetDefault("arena.enemyEvery", 4)
	v.SetDefault("arena.port", DefaultArenaPort)
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment overrides apply. The file type follows its extension
// (json, yaml, toml).
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Validate rejects settings the navigation stack cannot run with.
func (c Config) Validate() error {
	if _, err := grid.NewWindow(c.Window); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Threat.Reach < 1 {
		return fmt.Errorf("config: threat.reach must be at least 1, got %d", c.Threat.Reach)
	}
	if _, err := threatmap.ParseMetric(c.Threat.Metric); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Loop.Mode {
	case ModePoll, ModeLockstep:
	default:
		return fmt.Errorf("config: unknown loop.mode %q", c.Loop.Mode)
	}
	if c.Loop.PollInterval <= 0 {
		return fmt.Errorf("config: loop.pollInterval must be positive, got %v", c.Loop.PollInterval)
	}
	if c.Arena.Tick <= 0 {
		return fmt.Errorf("config: arena.tick must be positive, got %v", c.Arena.Tick)
	}
	switch c.Hardware {
	case HardwareSim, HardwareRemote:
	default:
		return fmt.Errorf("config: unknown hardware %q", c.Hardware)
	}
	if _, err := grid.ParseOrientation(c.Arena.Heading); err != nil {
		return fmt.Errorf("config: arena.heading: %w", err)
	}
	if c.Arena.Size < 3 {
		return fmt.Errorf("config: arena.size must be at least 3, got %d", c.Arena.Size)
	}
	if c.Arena.Enemies < 0 || c.Arena.Enemies >= c.Arena.Size*c.Arena.Size {
		return fmt.Errorf("config: arena.enemies out of range: %d", c.Arena.Enemies)
	}
	for name, every := range map[string]int{
		"radarEvery": c.Arena.RadarEvery,
		"motorEvery": c.Arena.MotorEvery,
		"armEvery":   c.Arena.ArmEvery,
		"enemyEvery": c.Arena.EnemyEvery,
	} {
		if every < 1 {
			return fmt.Errorf("config: arena.%s must be at least 1, got %d", name, every)
		}
	}
	if c.TUI.Enabled && c.TUI.LogFile == "" {
		return fmt.Errorf("config: tui.logFile is required when the terminal view is enabled")
	}
	if c.Recorder.Enabled {
		if c.Recorder.Path == "" {
			return fmt.Errorf("config: recorder.path is required when the recorder is enabled")
		}
		if c.Recorder.BatchSize < 1 {
			return fmt.Errorf("config: recorder.batchSize must be at least 1, got %d", c.Recorder.BatchSize)
		}
		if c.Recorder.FlushInterval <= 0 {
			return fmt.Errorf("config: recorder.flushInterval must be positive, got %v", c.Recorder.FlushInterval)
		}
	}
	return nil
}

// GridWindow returns the radar window. Call only on a validated Config.
func (c Config) GridWindow() grid.Window {
	return grid.Window(c.Window)
}

// ThreatMap returns the threat kernel. Call only on a validated Config.
func (c Config) ThreatMap() threatmap.Config {
	metric, _ := threatmap.ParseMetric(c.Threat.Metric)
	return threatmap.Config{Reach: c.Threat.Reach, Metric: metric}
}
