// Package arena simulates the grid arena the robot fights in: a square floor
// surrounded by void, a set of wandering enemies, and one robot body whose
// radar, motor, arm and compass are exposed through robot.Hardware.
//
// The arena runs on a discrete tick. Every subsystem has a cooldown counted in
// ticks; a subsystem is ready once its cooldown has elapsed.
package arena

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-arenabot/internal/log"
	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/radar"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// MaxSize is the largest supported arena side.
const MaxSize = 120

var (
	// ErrNotReady is returned when a subsystem is used during its cooldown.
	ErrNotReady = errors.New("arena: subsystem not ready")
	// ErrOccupied is returned when placing something on a taken cell.
	ErrOccupied = errors.New("arena: cell occupied")
	// ErrOutside is returned when placing something off the floor.
	ErrOutside = errors.New("arena: cell outside the arena")
)

// Config describes an arena.
type Config struct {
	Name    string
	Size    int
	Enemies int
	// Seed drives placement, enemy movement and enemy identifiers. Zero picks
	// a seed from the clock.
	Seed    uint64
	Heading grid.Orientation

	RadarEvery int
	MotorEvery int
	ArmEvery   int
	// EnemyEvery is the number of ticks between enemy moves. Zero freezes enemies.
	EnemyEvery int
}

// DefaultConfig returns a 24×24 arena with six enemies.
func DefaultConfig() Config {
	return Config{
		Name:       "arena",
		Size:       24,
		Enemies:    6,
		Heading:    grid.North,
		RadarEvery: 5,
		MotorEvery: 2,
		ArmEvery:   10,
		EnemyEvery: 4,
	}
}

// Stats counts what happened in the arena.
type Stats struct {
	Ticks uint64 `json:"ticks"`
	Scans uint64 `json:"scans"`
	Moves uint64 `json:"moves"`
	Bumps uint64 `json:"bumps"`
	Stabs uint64 `json:"stabs"`
	Kills uint64 `json:"kills"`
}

type enemy struct {
	id  worldmodel.EnemyID
	pos grid.Coordinate
}

// Arena is safe for concurrent use.
type Arena struct {
	mu  sync.Mutex
	cfg Config

	src *rand.ChaCha8
	rng *rand.Rand

	tick    uint64
	robot   grid.RobotPosition // world coordinates, +Y north
	enemies []enemy

	radarAt uint64
	motorAt uint64
	armAt   uint64

	stats Stats
}

// New creates an arena with the robot in the middle and cfg.Enemies enemies
// placed at random free cells.
func New(cfg Config) (*Arena, error) {
	if cfg.Size < 3 || cfg.Size > MaxSize {
		return nil, fmt.Errorf("arena size %d out of range [3, %d]", cfg.Size, MaxSize)
	}
	if cfg.Enemies < 0 || cfg.Enemies >= cfg.Size*cfg.Size {
		return nil, fmt.Errorf("arena cannot hold %d enemies", cfg.Enemies)
	}
	if cfg.Name == "" {
		cfg.Name = "arena"
	}
	for _, every := range []*int{&cfg.RadarEvery, &cfg.MotorEvery, &cfg.ArmEvery} {
		if *every < 1 {
			*every = 1
		}
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)

	a := &Arena{
		cfg: cfg,
		src: src,
		rng: rand.New(src),
		robot: grid.RobotPosition{
			Position:    grid.NewCoordinate(int8(cfg.Size/2), int8(cfg.Size/2)),
			Orientation: cfg.Heading,
		},
	}
	for i := 0; i < cfg.Enemies; i++ {
		a.spawn()
	}
	return a, nil
}

// spawn places one enemy at a random free cell.
func (a *Arena) spawn() {
	for {
		c := grid.NewCoordinate(int8(a.rng.IntN(a.cfg.Size)), int8(a.rng.IntN(a.cfg.Size)))
		if a.free(c) {
			a.enemies = append(a.enemies, enemy{id: a.newID(), pos: c})
			return
		}
	}
}

func (a *Arena) newID() worldmodel.EnemyID {
	id, err := uuid.NewRandomFromReader(a.src)
	if err != nil {
		return worldmodel.EnemyID(uuid.NewString())
	}
	return worldmodel.EnemyID(id.String())
}

// Config returns the arena configuration, with the effective seed.
func (a *Arena) Config() Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}

// Tick returns the current tick.
func (a *Arena) Tick() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick
}

// Stats returns the event counters.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.stats
	s.Ticks = a.tick
	return s
}

// Robot returns the robot's world pose.
func (a *Arena) Robot() grid.RobotPosition {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.robot
}

// EnemyCount returns how many enemies are alive.
func (a *Arena) EnemyCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.enemies)
}

// Enemies returns the live enemies keyed by identifier.
func (a *Arena) Enemies() map[worldmodel.EnemyID]grid.Coordinate {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[worldmodel.EnemyID]grid.Coordinate, len(a.enemies))
	for _, e := range a.enemies {
		out[e.id] = e.pos
	}
	return out
}

// PlaceRobot moves the robot body.
func (a *Arena) PlaceRobot(pos grid.Coordinate, heading grid.Orientation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.inside(pos) {
		return fmt.Errorf("%w: %v", ErrOutside, pos)
	}
	if _, ok := a.enemyAt(pos); ok {
		return fmt.Errorf("%w: %v", ErrOccupied, pos)
	}
	a.robot = grid.RobotPosition{Position: pos, Orientation: heading}
	return nil
}

// PlaceEnemy adds an enemy, or moves it if id is already in the arena.
func (a *Arena) PlaceEnemy(id worldmodel.EnemyID, pos grid.Coordinate) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.inside(pos) {
		return fmt.Errorf("%w: %v", ErrOutside, pos)
	}
	if other, ok := a.enemyAt(pos); (ok && a.enemies[other].id != id) || pos == a.robot.Position {
		return fmt.Errorf("%w: %v", ErrOccupied, pos)
	}
	for i := range a.enemies {
		if a.enemies[i].id == id {
			a.enemies[i].pos = pos
			return nil
		}
	}
	a.enemies = append(a.enemies, enemy{id: id, pos: pos})
	return nil
}

// ClearEnemies removes every enemy.
func (a *Arena) ClearEnemies() {
	a.mu.Lock()
	a.enemies = nil
	a.mu.Unlock()
}

// Advance runs n ticks.
func (a *Arena) Advance(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i < n; i++ {
		a.tick++
		if a.cfg.EnemyEvery > 0 && a.tick%uint64(a.cfg.EnemyEvery) == 0 {
			a.wander()
		}
	}
}

// Run advances one tick every interval until ctx is done.
func (a *Arena) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("arena running", "name", a.cfg.Name, "size", a.cfg.Size, "enemies", a.EnemyCount(), "seed", a.cfg.Seed)
	for {
		select {
		case <-ctx.Done():
			s := a.Stats()
			log.Info("arena stopped", "ticks", s.Ticks, "moves", s.Moves, "kills", s.Kills)
			return
		case <-ticker.C:
			a.Advance(1)
		}
	}
}

// wander moves every enemy one step in a random direction, or not at all.
func (a *Arena) wander() {
	for i := range a.enemies {
		choice := a.rng.IntN(5)
		if choice == 4 {
			continue
		}
		next := a.enemies[i].pos.Add(grid.Orientations[choice].Forward())
		if a.free(next) {
			a.enemies[i].pos = next
		}
	}
}

func (a *Arena) inside(c grid.Coordinate) bool {
	return c.X >= 0 && c.Y >= 0 && int(c.X) < a.cfg.Size && int(c.Y) < a.cfg.Size
}

func (a *Arena) enemyAt(c grid.Coordinate) (int, bool) {
	for i, e := range a.enemies {
		if e.pos == c {
			return i, true
		}
	}
	return 0, false
}

func (a *Arena) free(c grid.Coordinate) bool {
	if !a.inside(c) || c == a.robot.Position {
		return false
	}
	_, taken := a.enemyAt(c)
	return !taken
}

// RadarReady implements robot.Radar.
func (a *Arena) RadarReady() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick >= a.radarAt
}

// MotorReady implements robot.Motor.
func (a *Arena) MotorReady() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick >= a.motorAt
}

// ArmReady implements robot.Arm.
func (a *Arena) ArmReady() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tick >= a.armAt
}

// Heading implements robot.Compass.
func (a *Arena) Heading() (grid.Orientation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.robot.Orientation, nil
}

// Scan implements robot.Radar. The sweep is a w×w window in the robot's own
// frame: row 0 is farthest ahead, the robot sits in the center.
func (a *Arena) Scan(w grid.Window) (radar.Scan, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tick < a.radarAt {
		return nil, fmt.Errorf("radar: %w", ErrNotReady)
	}
	a.radarAt = a.tick + uint64(a.cfg.RadarEvery)
	a.stats.Scans++

	half := int8(w.Half())
	rows := make([]string, 0, w.Side())
	bots := make(map[grid.Coordinate]worldmodel.EnemyID)
	var sb strings.Builder
	for y := half; y >= -half; y-- {
		sb.Reset()
		for x := -half; x <= half; x++ {
			local := grid.NewCoordinate(x, y)
			world := a.robot.Position.Add(local.OrientateNorth(a.robot.Orientation))
			switch {
			case local == grid.Origin:
				sb.WriteRune(radar.SymbolFloor)
			case !a.inside(world):
				sb.WriteRune(radar.SymbolVoid)
			default:
				if i, ok := a.enemyAt(world); ok {
					sb.WriteRune(radar.SymbolEnemy)
					bots[local] = a.enemies[i].id
				} else {
					sb.WriteRune(radar.SymbolFloor)
				}
			}
		}
		rows = append(rows, sb.String())
	}
	return radar.NewFrame(w, rows, bots)
}

func (a *Arena) motor(d grid.Direction) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tick < a.motorAt {
		return fmt.Errorf("motor: %w", ErrNotReady)
	}
	a.motorAt = a.tick + uint64(a.cfg.MotorEvery)

	next := a.robot.After(d)
	if !d.IsTurn() && !a.free(next.Position) {
		a.stats.Bumps++
		return nil
	}
	a.robot = next
	a.stats.Moves++
	return nil
}

// StepForward implements robot.Motor. Stepping into void or an enemy bumps
// and leaves the robot where it was.
func (a *Arena) StepForward() error { return a.motor(grid.Front) }

// StepBackward implements robot.Motor.
func (a *Arena) StepBackward() error { return a.motor(grid.Back) }

// TurnLeft implements robot.Motor.
func (a *Arena) TurnLeft() error { return a.motor(grid.Left) }

// TurnRight implements robot.Motor.
func (a *Arena) TurnRight() error { return a.motor(grid.Right) }

// Stab implements robot.Arm. An enemy in the cell ahead is removed.
func (a *Arena) Stab() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tick < a.armAt {
		return fmt.Errorf("arm: %w", ErrNotReady)
	}
	a.armAt = a.tick + uint64(a.cfg.ArmEvery)
	a.stats.Stabs++

	if i, ok := a.enemyAt(a.robot.Ahead()); ok {
		log.Debug("enemy down", "id", a.enemies[i].id, "at", a.enemies[i].pos)
		a.enemies = append(a.enemies[:i], a.enemies[i+1:]...)
		a.stats.Kills++
	}
	return nil
}

// String draws the whole arena, north up: '@' enemies, an arrow for the robot.
func (a *Arena) String() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	var sb strings.Builder
	for y := a.cfg.Size - 1; y >= 0; y-- {
		for x := 0; x < a.cfg.Size; x++ {
			c := grid.NewCoordinate(int8(x), int8(y))
			switch {
			case c == a.robot.Position:
				sb.WriteByte("^>v<"[a.robot.Orientation])
			default:
				if _, ok := a.enemyAt(c); ok {
					sb.WriteRune(radar.SymbolEnemy)
				} else {
					sb.WriteRune(radar.SymbolFloor)
				}
			}
		}
		if y > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Status summarizes the arena for the status endpoint.
func (a *Arena) Status() (name string, size, enemies int, tick uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.Name, a.cfg.Size, len(a.enemies), a.tick
}
