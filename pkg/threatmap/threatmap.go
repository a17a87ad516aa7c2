// Package threatmap scores every cell of the radar window by how dangerous
// it is to stand there next tick.
//
// Each enemy radiates threat that decays linearly with distance and vanishes
// at the reach radius; overlapping fields add up. Border cells are masked with
// Sentinel so no policy ever picks them.
package threatmap

import (
	"fmt"
	"math"
	"strings"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// Score is a cell's accumulated threat.
type Score uint16

// Sentinel marks an impassable cell. Enemy threat saturates one below it.
const Sentinel Score = math.MaxUint16

// Metric selects the distance used by the threat kernel.
type Metric string

const (
	Chebyshev Metric = "chebyshev"
	Manhattan Metric = "manhattan"
)

// Defaults: an enemy threatens everything within two king moves.
const (
	DefaultReach  = 3
	DefaultMetric = Chebyshev
)

// ParseMetric validates a metric name.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(s)) {
	case Chebyshev:
		return Chebyshev, nil
	case Manhattan:
		return Manhattan, nil
	}
	return "", fmt.Errorf("unknown threat metric %q", s)
}

func (m Metric) distance(a, b grid.Coordinate) int {
	if m == Manhattan {
		return a.Manhattan(b)
	}
	return a.Chebyshev(b)
}

// Config holds the kernel parameters.
type Config struct {
	Reach  int
	Metric Metric
}

// DefaultConfig returns the kernel used unless configured otherwise.
func DefaultConfig() Config {
	return Config{Reach: DefaultReach, Metric: DefaultMetric}
}

// Map is an N×N grid of threat scores in the north-aligned window frame.
type Map struct {
	window grid.Window
	config Config
	scores []Score
	masked []bool
}

// New creates an all-zero map.
func New(w grid.Window, cfg Config) *Map {
	if cfg.Reach < 1 {
		cfg.Reach = DefaultReach
	}
	if cfg.Metric == "" {
		cfg.Metric = DefaultMetric
	}
	return &Map{
		window: w,
		config: cfg,
		scores: make([]Score, w.Cells()),
		masked: make([]bool, w.Cells()),
	}
}

// Window returns the map's window.
func (m *Map) Window() grid.Window { return m.window }

// Config returns the kernel parameters.
func (m *Map) Config() Config { return m.config }

// Reset zeroes every score and lifts every mask.
func (m *Map) Reset() {
	for i := range m.scores {
		m.scores[i] = 0
		m.masked[i] = false
	}
}

// Calculate recomputes every unmasked cell from the given enemy positions.
// Enemies outside the window still threaten the cells near its edge.
func (m *Map) Calculate(enemies worldmodel.EnemyPositions) {
	m.calculate(enemies.Coordinates())
}

// CalculateWithPrediction recomputes the map from the current sightings plus
// their one-tick extrapolation, so the field covers both where enemies are and
// where they are heading. previous must already be in current's frame.
func (m *Map) CalculateWithPrediction(current, previous worldmodel.EnemyPositions) {
	m.CalculateFrom(current, worldmodel.Predict(current, previous, m.window))
}

// CalculateFrom is CalculateWithPrediction for callers that already hold predictions.
func (m *Map) CalculateFrom(current worldmodel.EnemyPositions, predictions worldmodel.Predictions) {
	sources := append(current.Coordinates(), predictions.Coordinates()...)
	m.calculate(sources)
}

func (m *Map) calculate(sources []grid.Coordinate) {
	reach := m.config.Reach
	m.window.Each(func(idx int, c grid.Coordinate) {
		if m.masked[idx] {
			return
		}
		total := 0
		for _, e := range sources {
			if d := m.config.Metric.distance(c, e); d < reach {
				total += reach - d
			}
		}
		if total >= int(Sentinel) {
			total = int(Sentinel) - 1
		}
		m.scores[idx] = Score(total)
	})
}

// MaskBorder makes c impassable. Coordinates outside the window are ignored.
func (m *Map) MaskBorder(c grid.Coordinate) {
	if idx, ok := c.Index(m.window); ok {
		m.scores[idx] = Sentinel
		m.masked[idx] = true
	}
}

// MaskBorders masks every known border cell.
func (m *Map) MaskBorders(b worldmodel.Borders) {
	m.MaskWhere(b.IsBorder)
}

// MaskWhere masks every window cell for which pred holds.
func (m *Map) MaskWhere(pred func(grid.Coordinate) bool) {
	m.window.Each(func(idx int, c grid.Coordinate) {
		if pred(c) {
			m.scores[idx] = Sentinel
			m.masked[idx] = true
		}
	})
}

// Score returns the threat at c. ok is false outside the window.
func (m *Map) Score(c grid.Coordinate) (Score, bool) {
	idx, ok := c.Index(m.window)
	if !ok {
		return 0, false
	}
	return m.scores[idx], true
}

// IsMasked reports whether c is a masked border cell.
func (m *Map) IsMasked(c grid.Coordinate) bool {
	idx, ok := c.Index(m.window)
	return ok && m.masked[idx]
}

// Scores returns a copy of the raw row-major scores.
func (m *Map) Scores() []Score {
	return append([]Score(nil), m.scores...)
}

// Rows returns the scores as a row-major matrix, top row first.
func (m *Map) Rows() [][]Score {
	side := m.window.Side()
	rows := make([][]Score, side)
	for i := range rows {
		rows[i] = append([]Score(nil), m.scores[i*side:(i+1)*side]...)
	}
	return rows
}

// Clone returns an independent copy.
func (m *Map) Clone() *Map {
	return &Map{
		window: m.window,
		config: m.config,
		scores: append([]Score(nil), m.scores...),
		masked: append([]bool(nil), m.masked...),
	}
}

// String renders the map with '#' for masked cells, digits for low scores and
// '+' for anything above nine.
func (m *Map) String() string {
	var sb strings.Builder
	side := m.window.Side()
	for i, s := range m.scores {
		switch {
		case m.masked[i]:
			sb.WriteByte('#')
		case s > 9:
			sb.WriteByte('+')
		default:
			sb.WriteByte(byte('0' + s))
		}
		if (i+1)%side == 0 && i+1 < len(m.scores) {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
