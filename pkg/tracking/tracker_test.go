package tracking

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/radar"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// frameWith builds a 9x9 all-floor scan with enemies at scan-local offsets.
func frameWith(t *testing.T, bots map[grid.Coordinate]worldmodel.EnemyID) *radar.Frame {
	t.Helper()
	w := grid.Window9
	rows := make([][]rune, w.Side())
	for i := range rows {
		rows[i] = []rune(".........")
	}
	for c := range bots {
		idx := c.MustIndex(w)
		rows[idx/w.Side()][idx%w.Side()] = radar.SymbolEnemy
	}
	strs := make([]string, len(rows))
	for i, r := range rows {
		strs[i] = string(r)
	}
	f, err := radar.NewFrame(w, strs, bots)
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	return f
}

func TestTracker_PredictsMovingAway(t *testing.T) {
	tr := New(grid.Window9)
	pose := grid.NewRobotPosition(grid.North)

	if err := tr.Ingest(frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 0, Y: 1}: "x"}), pose); err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}
	if err := tr.Ingest(frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 0, Y: 2}: "x"}), pose); err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}

	got, ok := tr.Predictions().Lookup("x")
	if !ok {
		t.Fatal("expected prediction for x")
	}
	if got != grid.NewCoordinate(0, 3) {
		t.Errorf("prediction: got %v, want (0,3)", got)
	}
	if tr.Scans() != 2 {
		t.Errorf("Scans: got %d, want 2", tr.Scans())
	}
}

func TestTracker_ReOriginsPreviousBeforeComparing(t *testing.T) {
	tr := New(grid.Window9)
	pose := grid.NewRobotPosition(grid.North)

	// Enemy stands still at world (0,3) relative to the first scan.
	if err := tr.Ingest(frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 0, Y: 3}: "still"}), pose); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	// Robot steps forward once, then scans again: the enemy now appears 2 ahead.
	pose.TakeStep(grid.Front)
	if err := tr.Ingest(frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 0, Y: 2}: "still"}), pose); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if prev, _ := tr.Previous().Lookup("still"); prev != grid.NewCoordinate(0, 2) {
		t.Errorf("previous after re-origin: got %v, want (0,2)", prev)
	}
	pred, _ := tr.Predictions().Lookup("still")
	if pred != grid.NewCoordinate(0, 2) {
		t.Errorf("a stationary enemy should be predicted in place, got %v", pred)
	}
}

func TestTracker_HeldSightingsSurviveNextScan(t *testing.T) {
	tr := New(grid.Window9)

	first := frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 0, Y: 3}: "x", {X: 1, Y: 1}: "y"})
	if err := tr.Ingest(first, grid.NewRobotPosition(grid.North)); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	held := tr.Current()
	want := []worldmodel.EnemyPosition{
		worldmodel.NewEnemyPosition("x", grid.NewCoordinate(0, 3)),
		worldmodel.NewEnemyPosition("y", grid.NewCoordinate(1, 1)),
	}

	// Two steps back: x falls out of the window, y shifts to (1,3).
	back := grid.RobotPosition{Position: grid.NewCoordinate(0, -2), Orientation: grid.North}
	if err := tr.Ingest(frameWith(t, nil), back); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	got := held.All()
	if len(got) != len(want) {
		t.Fatalf("held sightings: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("held sighting %d: got %v, want %v", i, got[i], want[i])
		}
	}

	prev := tr.Previous().All()
	if len(prev) != 1 || prev[0] != worldmodel.NewEnemyPosition("y", grid.NewCoordinate(1, 3)) {
		t.Errorf("previous: got %v, want [y@(1,3)]", prev)
	}
}

func TestTracker_RotatesIntoNorthFrame(t *testing.T) {
	tr := New(grid.Window9)
	pose := grid.NewRobotPosition(grid.West)

	if err := tr.Ingest(frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 0, Y: 1}: "front"}), pose); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if pos, _ := tr.Current().Lookup("front"); pos != grid.NewCoordinate(-1, 0) {
		t.Errorf("enemy ahead of a west-facing robot: got %v, want (-1,0)", pos)
	}
}

func TestTracker_NewEnemyHasStationaryPrediction(t *testing.T) {
	tr := New(grid.Window9)
	pose := grid.NewRobotPosition(grid.North)

	if err := tr.Ingest(frameWith(t, nil), pose); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if err := tr.Ingest(frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 2, Y: 2}: "new"}), pose); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	preds := tr.Predictions()
	if len(preds) != 1 || preds[0].Moving || preds[0].Predicted != grid.NewCoordinate(2, 2) {
		t.Errorf("got %+v, want one stationary prediction at (2,2)", preds)
	}
}

type desyncScan struct{ *radar.Frame }

func (desyncScan) BotAt(x, y int8) (worldmodel.EnemyID, bool) { return "", false }

func TestTracker_DesyncIsFatal(t *testing.T) {
	tr := New(grid.Window9)
	scan := desyncScan{frameWith(t, map[grid.Coordinate]worldmodel.EnemyID{{X: 1, Y: 1}: "x"})}

	err := tr.Ingest(scan, grid.NewRobotPosition(grid.North))
	if !errors.Is(err, radar.ErrSensorDesync) {
		t.Errorf("Ingest() error = %v, want ErrSensorDesync", err)
	}
}
