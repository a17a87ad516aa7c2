package radar

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// Robot at the center, one enemy two cells ahead, void along the right edge.
var sampleRows = []string{
	".......",
	"...@...",
	".......",
	"...@...",
	".......",
	".......",
	"       ",
}

func sampleFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := NewFrame(grid.Window7, sampleRows, map[grid.Coordinate]worldmodel.EnemyID{
		grid.NewCoordinate(0, 2): "e1",
	})
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}
	return f
}

func TestFrame_At(t *testing.T) {
	f := sampleFrame(t)

	tests := []struct {
		x, y int8
		want Cell
	}{
		{0, 0, Self}, // the center '@' is the robot
		{0, 2, Enemy},
		{1, 2, Floor},
		{-3, -3, Void},
		{3, -3, Void},
		{3, 3, Floor},
		{9, 9, Void}, // outside the frame
	}
	for _, tt := range tests {
		if got := f.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	if rows := f.Rows(); rows[1] != "...@..." || len(rows) != 7 {
		t.Errorf("Rows() = %q", rows)
	}
}

func TestNewFrame_RejectsBadShape(t *testing.T) {
	if _, err := NewFrame(grid.Window7, sampleRows[:6], nil); err == nil {
		t.Error("expected error for missing row")
	}
	bad := append([]string(nil), sampleRows...)
	bad[2] = "......"
	if _, err := NewFrame(grid.Window7, bad, nil); err == nil {
		t.Error("expected error for short row")
	}
}

func TestInterpret_FacingNorth(t *testing.T) {
	enemies, borders, err := Interpret(sampleFrame(t), grid.North, grid.Window7)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}

	if enemies.Len() != 1 {
		t.Fatalf("enemies: got %d, want 1", enemies.Len())
	}
	if pos, ok := enemies.Lookup("e1"); !ok || pos != grid.NewCoordinate(0, 2) {
		t.Errorf("e1: got %v, %v", pos, ok)
	}

	if borders.Len() != 7 {
		t.Errorf("borders: got %d, want 7", borders.Len())
	}
	if !borders.IsBorder(grid.NewCoordinate(-3, -3)) || !borders.IsBorder(grid.NewCoordinate(3, -3)) {
		t.Error("bottom row should be border")
	}
}

func TestInterpret_FacingEast(t *testing.T) {
	enemies, borders, err := Interpret(sampleFrame(t), grid.East, grid.Window7)
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}

	// Two cells ahead of an east-facing robot is two cells east.
	if pos, _ := enemies.Lookup("e1"); pos != grid.NewCoordinate(2, 0) {
		t.Errorf("e1: got %v, want (2,0)", pos)
	}
	// The row behind the robot is now the column to its west.
	if !borders.IsBorder(grid.NewCoordinate(-3, 3)) || !borders.IsBorder(grid.NewCoordinate(-3, -3)) {
		t.Errorf("west column should be border, got %v", borders.Cells())
	}
}

func TestInterpret_SensorDesync(t *testing.T) {
	rows := append([]string(nil), sampleRows...)
	rows[0] = "@......"
	f, err := NewFrame(grid.Window7, rows, map[grid.Coordinate]worldmodel.EnemyID{
		grid.NewCoordinate(0, 2): "e1",
	})
	if err != nil {
		t.Fatalf("NewFrame() error = %v", err)
	}

	_, _, err = Interpret(f, grid.North, grid.Window7)
	if !errors.Is(err, ErrSensorDesync) {
		t.Errorf("Interpret() error = %v, want ErrSensorDesync", err)
	}
}

func TestInterpret_WindowMismatch(t *testing.T) {
	_, _, err := Interpret(sampleFrame(t), grid.North, grid.Window9)
	if !errors.Is(err, ErrWindowMismatch) {
		t.Errorf("Interpret() error = %v, want ErrWindowMismatch", err)
	}
}

func TestClassify(t *testing.T) {
	if Classify('.') != Floor || Classify('*') != Floor {
		t.Error("floor and items should be floor")
	}
	if Classify('@') != Enemy {
		t.Error("@ should be enemy")
	}
	if Classify(' ') != Void {
		t.Error("space should be void")
	}
}
