package robot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/debug"
	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/policy"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
	"github.com/teslashibe/go-arenabot/pkg/tracking"
)

// Options tunes the Brain.
type Options struct {
	Window grid.Window
	Threat threatmap.Config

	// Prediction adds the threat of every enemy's extrapolated next position.
	Prediction     bool
	LookaheadTurns bool

	// ArmEnabled lets the robot stab an enemy standing directly ahead.
	ArmEnabled bool

	// Lockstep makes Run block on each subsystem in turn instead of polling.
	Lockstep     bool
	PollInterval time.Duration
}

// DefaultOptions returns the options used unless configured otherwise.
func DefaultOptions() Options {
	return Options{
		Window:       grid.DefaultWindow,
		Threat:       threatmap.DefaultConfig(),
		Prediction:   true,
		ArmEnabled:   true,
		PollInterval: 5 * time.Millisecond,
	}
}

// Stats counts what the Brain has done since it was created.
type Stats struct {
	Steps uint64 `json:"steps"`
	Scans uint64 `json:"scans"`
	Moves uint64 `json:"moves"`
	Stays uint64 `json:"stays"`
	Stabs uint64 `json:"stabs"`
}

// heartbeatEvery is how many steps pass between heartbeat log lines.
const heartbeatEvery = 1000

// Brain owns all navigation state and drives the hardware. It is not safe
// for concurrent use; observers get copies through Snapshot.
type Brain struct {
	hw   Hardware
	opts Options

	tracker *tracking.Tracker
	threat  *threatmap.Map
	policy  *policy.Greedy
	pose    grid.RobotPosition

	observer   Observer
	stats      Stats
	lastAction string
	lastBeat   uint64 // step of the latest heartbeat
}

// NewBrain creates a Brain facing north. Call Initialize to read the real
// heading from the compass.
func NewBrain(hw Hardware, opts Options) *Brain {
	if opts.Window == 0 {
		opts.Window = grid.DefaultWindow
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultOptions().PollInterval
	}
	return &Brain{
		hw:      hw,
		opts:    opts,
		tracker: tracking.New(opts.Window),
		threat:  threatmap.New(opts.Window, opts.Threat),
		policy:  &policy.Greedy{LookaheadTurns: opts.LookaheadTurns},
		pose:    grid.NewRobotPosition(grid.North),
	}
}

// SetObserver registers o to receive snapshots. nil disables observation.
func (b *Brain) SetObserver(o Observer) {
	b.observer = o
}

// Initialize reads the starting heading from the compass.
func (b *Brain) Initialize() error {
	heading, err := b.hw.Heading()
	if err != nil {
		return fmt.Errorf("read compass: %w", err)
	}
	b.pose = grid.NewRobotPosition(heading)
	log.Info("brain initialized", "heading", heading, "window", b.opts.Window.Side())
	b.notify()
	return nil
}

// Pose returns the robot pose in the frame of the latest scan.
func (b *Brain) Pose() grid.RobotPosition { return b.pose }

// Tracker exposes the enemy tracker.
func (b *Brain) Tracker() *tracking.Tracker { return b.tracker }

// ThreatMap exposes the current threat map.
func (b *Brain) ThreatMap() *threatmap.Map { return b.threat }

// Stats returns the step counters.
func (b *Brain) Stats() Stats { return b.stats }

// Step runs one polling iteration: sense when the radar is ready, then stab
// or move when the arm or motor is ready. Sensing always completes before
// the move decision. Any returned error is fatal.
func (b *Brain) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.stats.Steps++
	changed := false

	if b.hw.RadarReady() {
		if err := b.sense(); err != nil {
			return err
		}
		changed = true
	}

	switch {
	case b.opts.ArmEnabled && b.enemyAhead() && b.hw.ArmReady():
		if err := b.stab(); err != nil {
			return err
		}
		changed = true
	case b.hw.MotorReady():
		if err := b.move(); err != nil {
			return err
		}
		changed = true
	}

	b.finish(changed)
	return nil
}

// StepLockstep runs one blocking iteration: wait for the radar, sense,
// decide, then wait for the arm or motor and act.
func (b *Brain) StepLockstep(ctx context.Context) error {
	b.stats.Steps++

	if err := WaitRadar(ctx, b.hw, b.opts.PollInterval); err != nil {
		return err
	}
	if err := b.sense(); err != nil {
		return err
	}
	if err := b.actBlocking(ctx); err != nil {
		return err
	}

	b.finish(true)
	return nil
}

// actBlocking stabs, moves or stays, waiting for the arm or motor first.
func (b *Brain) actBlocking(ctx context.Context) error {
	if b.opts.ArmEnabled && b.enemyAhead() {
		if err := WaitArm(ctx, b.hw, b.opts.PollInterval); err != nil {
			return err
		}
		return b.stab()
	}

	d, ok := b.policy.NextMove(b.threat, b.pose)
	if !ok {
		b.stay()
		return nil
	}
	if err := WaitMotor(ctx, b.hw, b.opts.PollInterval); err != nil {
		return err
	}
	return b.apply(d)
}

// Run loops until ctx is cancelled or a step fails. Cancellation is a clean
// shutdown and returns nil; any other error is fatal and returned.
func (b *Brain) Run(ctx context.Context) error {
	log.Info("brain running",
		"mode", b.mode(),
		"poll", b.opts.PollInterval,
		"prediction", b.opts.Prediction,
		"arm", b.opts.ArmEnabled)

	if b.opts.Lockstep {
		for {
			if err := b.StepLockstep(ctx); err != nil {
				return b.stopped(ctx, err)
			}
		}
	}

	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return b.stopped(ctx, ctx.Err())
		case <-ticker.C:
			if err := b.Step(ctx); err != nil {
				return b.stopped(ctx, err)
			}
		}
	}
}

func (b *Brain) stopped(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		log.Info("brain stopped", "steps", b.stats.Steps, "scans", b.stats.Scans, "moves", b.stats.Moves)
		return nil
	}
	log.Error("brain failed", "error", err, "steps", b.stats.Steps)
	return err
}

func (b *Brain) mode() string {
	if b.opts.Lockstep {
		return "lockstep"
	}
	return "poll"
}

// sense ingests a fresh scan and rebuilds the threat map around the robot.
func (b *Brain) sense() error {
	scan, err := b.hw.Scan(b.opts.Window)
	if err != nil {
		return fmt.Errorf("radar scan: %w", err)
	}
	debug.Scan(b.tracker.Scans()+1, scan)

	if err := b.tracker.Ingest(scan, b.pose); err != nil {
		return err
	}
	b.pose.ResetOrigin()

	b.threat.Reset()
	if b.opts.Prediction {
		b.threat.CalculateFrom(b.tracker.Current(), b.tracker.Predictions())
	} else {
		b.threat.Calculate(b.tracker.Current())
	}
	b.threat.MaskBorders(b.tracker.Borders())
	debug.ThreatMap(b.threat)

	b.stats.Scans++
	debug.Log("scan %d: %d enemies, %d border cells\n",
		b.tracker.Scans(), b.tracker.Current().Len(), b.tracker.Borders().Len())
	return nil
}

// enemyAhead reports whether the latest scan put an enemy in the cell the
// robot is facing.
func (b *Brain) enemyAhead() bool {
	_, ok := b.tracker.Current().At(b.pose.Ahead())
	return ok
}

func (b *Brain) stab() error {
	if err := b.hw.Stab(); err != nil {
		return fmt.Errorf("arm stab: %w", err)
	}
	b.stats.Stabs++
	b.lastAction = "stab"
	log.Debug("stab", "target", b.pose.Ahead())
	return nil
}

func (b *Brain) move() error {
	d, ok := b.policy.NextMove(b.threat, b.pose)
	if !ok {
		b.stay()
		return nil
	}
	return b.apply(d)
}

func (b *Brain) stay() {
	b.stats.Stays++
	b.lastAction = "stay"
}

// apply records the action in the pose, then actuates it.
func (b *Brain) apply(d grid.Direction) error {
	b.pose.TakeStep(d)
	if err := actuate(b.hw, d); err != nil {
		return fmt.Errorf("motor %s: %w", d, err)
	}
	b.stats.Moves++
	b.lastAction = d.String()
	debug.Log("move %s -> %v\n", d, b.pose)
	return nil
}

// finish ends every completed step: observers hear about state changes and
// every heartbeatEvery steps the counters are logged.
func (b *Brain) finish(changed bool) {
	if changed {
		b.notify()
	}
	if b.stats.Steps%heartbeatEvery == 0 {
		b.lastBeat = b.stats.Steps
		log.Debug("brain heartbeat",
			"steps", b.stats.Steps,
			"scans", b.stats.Scans,
			"moves", b.stats.Moves,
			"stays", b.stats.Stays,
			"stabs", b.stats.Stabs)
	}
}

func (b *Brain) notify() {
	if b.observer != nil {
		b.observer.Observe(b.Snapshot())
	}
}
