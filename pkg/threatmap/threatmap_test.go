package threatmap

import (
	"slices"
	"testing"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

func c(x, y int8) grid.Coordinate { return grid.NewCoordinate(x, y) }

func enemies(cs ...grid.Coordinate) worldmodel.EnemyPositions {
	var e worldmodel.EnemyPositions
	for i, pos := range cs {
		e.Push(worldmodel.NewEnemyPosition(worldmodel.EnemyID(rune('a'+i)), pos))
	}
	return e
}

func score(t *testing.T, m *Map, at grid.Coordinate) Score {
	t.Helper()
	s, ok := m.Score(at)
	if !ok {
		t.Fatalf("%v should be inside the window", at)
	}
	return s
}

type cellScore struct {
	at   grid.Coordinate
	want Score
}

func checkScores(t *testing.T, m *Map, cells []cellScore) {
	t.Helper()
	for _, cs := range cells {
		if got := score(t, m, cs.at); got != cs.want {
			t.Errorf("score at %v: got %d, want %d", cs.at, got, cs.want)
		}
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name    string
		window  grid.Window
		enemies []grid.Coordinate
		cells   []cellScore
	}{
		{
			name:    "single enemy kernel",
			window:  grid.Window9,
			enemies: []grid.Coordinate{c(0, 1)},
			cells: []cellScore{
				{c(0, 1), 3},
				{c(0, 0), 2},
				{c(1, 2), 2},
				{c(0, -1), 1},
				{c(0, -2), 0},
				{c(-4, 4), 0},
			},
		},
		{
			// (0,1) is one step from both enemies; (-2,1) from only the first
			name:    "overlap accumulates",
			window:  grid.Window9,
			enemies: []grid.Coordinate{c(-1, 0), c(1, 0)},
			cells: []cellScore{
				{c(0, 1), 4},
				{c(-2, 1), 2},
			},
		},
		{
			name:    "enemy outside window still threatens",
			window:  grid.Window7,
			enemies: []grid.Coordinate{c(4, 0)},
			cells: []cellScore{
				{c(3, 0), 2},
				{c(0, 0), 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.window, DefaultConfig())
			m.Calculate(enemies(tt.enemies...))
			checkScores(t, m, tt.cells)
		})
	}
}

func TestCalculate_MonotonicDecayForIsolatedEnemy(t *testing.T) {
	for _, metric := range []Metric{Chebyshev, Manhattan} {
		t.Run(string(metric), func(t *testing.T) {
			m := New(grid.Window9, Config{Reach: 4, Metric: metric})
			enemy := c(1, -2)
			m.Calculate(enemies(enemy))

			grid.Window9.Each(func(_ int, a grid.Coordinate) {
				grid.Window9.Each(func(_ int, b grid.Coordinate) {
					if metric.distance(a, enemy) < metric.distance(b, enemy) && score(t, m, a) < score(t, m, b) {
						t.Errorf("closer cell %v scores %d, below farther cell %v at %d",
							a, score(t, m, a), b, score(t, m, b))
					}
				})
			})
		})
	}
}

func TestCalculate_Recomputes(t *testing.T) {
	m := New(grid.Window9, DefaultConfig())
	m.Calculate(enemies(c(3, 3)))
	m.Calculate(enemies(c(-3, -3)))

	checkScores(t, m, []cellScore{{c(3, 3), 0}, {c(-3, -3), 3}})
}

func TestMaskBorder_IdempotentAndSticky(t *testing.T) {
	isEdge := func(p grid.Coordinate) bool { return p.X == 4 }

	once := New(grid.Window9, DefaultConfig())
	once.Calculate(enemies(c(3, 0)))
	once.MaskWhere(isEdge)

	twice := New(grid.Window9, DefaultConfig())
	twice.Calculate(enemies(c(3, 0)))
	twice.MaskWhere(isEdge)
	twice.MaskWhere(isEdge)

	if !slices.Equal(once.Scores(), twice.Scores()) {
		t.Errorf("masking twice changed scores:\n%v\nvs\n%v", once, twice)
	}
	checkScores(t, once, []cellScore{{c(4, 0), Sentinel}})
	if !once.IsMasked(c(4, -4)) {
		t.Error("(4,-4) should be masked")
	}

	// a later calculation must not improve masked cells
	once.Calculate(worldmodel.EnemyPositions{})
	checkScores(t, once, []cellScore{{c(4, 0), Sentinel}, {c(3, 0), 0}})

	once.Reset()
	checkScores(t, once, []cellScore{{c(4, 0), 0}})
	if once.IsMasked(c(4, 0)) {
		t.Error("Reset should clear the mask")
	}
}

func TestMaskBorders(t *testing.T) {
	m := New(grid.Window7, DefaultConfig())
	m.MaskBorders(worldmodel.NewBorders(c(0, 3), c(9, 9)))

	if !m.IsMasked(c(0, 3)) {
		t.Error("(0,3) should be masked")
	}
	if m.IsMasked(c(0, 2)) {
		t.Error("(0,2) should not be masked")
	}

	m.MaskBorder(c(-3, -3))
	checkScores(t, m, []cellScore{{c(-3, -3), Sentinel}})
}

func TestCalculateWithPrediction(t *testing.T) {
	previous := worldmodel.NewEnemyPositions(worldmodel.NewEnemyPosition("x", c(0, 1)))
	current := worldmodel.NewEnemyPositions(worldmodel.NewEnemyPosition("x", c(0, 2)))

	m := New(grid.Window9, DefaultConfig())
	m.CalculateWithPrediction(current, previous)

	plain := New(grid.Window9, DefaultConfig())
	plain.Calculate(current)

	// the predicted cell (0,3) carries the full kernel on top of the current one
	checkScores(t, m, []cellScore{{c(0, 3), 2 + 3}})
	checkScores(t, plain, []cellScore{{c(0, 3), 2}})

	// behind the enemy nothing changes
	if got, want := score(t, m, c(0, -1)), score(t, plain, c(0, -1)); got != want {
		t.Errorf("behind the enemy: got %d, want %d", got, want)
	}
}

func TestScore_OutsideWindow(t *testing.T) {
	m := New(grid.Window7, DefaultConfig())
	if _, ok := m.Score(c(4, 0)); ok {
		t.Error("(4,0) is outside a 7x7 window")
	}
	if m.IsMasked(c(4, 0)) {
		t.Error("cells outside the window are never masked")
	}
}

func TestString(t *testing.T) {
	m := New(grid.Window7, DefaultConfig())
	m.Calculate(enemies(c(0, 0)))
	m.MaskBorder(c(-3, 3))

	want := "#000000\n" +
		"0111110\n" +
		"0122210\n" +
		"0123210\n" +
		"0122210\n" +
		"0111110\n" +
		"0000000"
	if got := m.String(); got != want {
		t.Errorf("String():\n%s\nwant:\n%s", got, want)
	}
	if rows := m.Rows(); len(rows) != 7 {
		t.Errorf("Rows: got %d, want 7", len(rows))
	}
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"Manhattan", Manhattan, false},
		{"chebyshev", Chebyshev, false},
		{"euclid", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMetric(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMetric(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMetric(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
