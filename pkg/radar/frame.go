// Package radar turns raw radar frames into enemy sightings and border cells.
package radar

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/worldmodel"
)

// Radar symbols.
const (
	SymbolFloor = '.'
	SymbolEnemy = '@'
	SymbolVoid  = ' '
)

// Cell is the classification of one radar cell.
type Cell uint8

const (
	Floor Cell = iota
	Enemy
	Void
	Self
)

func (c Cell) String() string {
	switch c {
	case Floor:
		return "floor"
	case Enemy:
		return "enemy"
	case Void:
		return "void"
	case Self:
		return "self"
	}
	return fmt.Sprintf("cell(%d)", uint8(c))
}

// Classify maps a radar symbol to a Cell. Unknown symbols (items, markers)
// are walkable and count as floor.
func Classify(r rune) Cell {
	switch r {
	case SymbolEnemy:
		return Enemy
	case SymbolVoid:
		return Void
	}
	return Floor
}

// Scan is one radar sweep in the robot's local frame: +y is ahead of the
// robot, +x to its right, (0,0) is the robot itself.
type Scan interface {
	Size() int
	At(x, y int8) Cell
	BotAt(x, y int8) (worldmodel.EnemyID, bool)
}

// Frame is a Scan backed by rows of radar symbols. Row 0 is the row farthest
// ahead of the robot.
type Frame struct {
	window grid.Window
	cells  []rune
	bots   map[grid.Coordinate]worldmodel.EnemyID
}

var _ Scan = (*Frame)(nil)

// NewFrame builds a frame from printed rows. bots maps scan-local
// coordinates of '@' cells to their radar identifiers.
func NewFrame(w grid.Window, rows []string, bots map[grid.Coordinate]worldmodel.EnemyID) (*Frame, error) {
	if len(rows) != w.Side() {
		return nil, fmt.Errorf("radar frame has %d rows, want %d", len(rows), w.Side())
	}
	f := &Frame{
		window: w,
		cells:  make([]rune, 0, w.Cells()),
		bots:   make(map[grid.Coordinate]worldmodel.EnemyID, len(bots)),
	}
	for i, row := range rows {
		if n := utf8.RuneCountInString(row); n != w.Side() {
			return nil, fmt.Errorf("radar frame row %d has %d cells, want %d", i, n, w.Side())
		}
		f.cells = append(f.cells, []rune(row)...)
	}
	for c, id := range bots {
		f.bots[c] = id
	}
	return f, nil
}

// Size returns the window side.
func (f *Frame) Size() int {
	return f.window.Side()
}

// Symbol returns the raw symbol at a scan-local offset, or the void symbol
// outside the frame.
func (f *Frame) Symbol(x, y int8) rune {
	idx, ok := grid.NewCoordinate(x, y).Index(f.window)
	if !ok {
		return SymbolVoid
	}
	return f.cells[idx]
}

// At classifies the cell at a scan-local offset. The center is always Self.
func (f *Frame) At(x, y int8) Cell {
	if x == 0 && y == 0 {
		return Self
	}
	return Classify(f.Symbol(x, y))
}

// BotAt returns the identifier of the enemy at a scan-local offset.
func (f *Frame) BotAt(x, y int8) (worldmodel.EnemyID, bool) {
	id, ok := f.bots[grid.NewCoordinate(x, y)]
	return id, ok
}

// Bots returns a copy of the identifier table.
func (f *Frame) Bots() map[grid.Coordinate]worldmodel.EnemyID {
	out := make(map[grid.Coordinate]worldmodel.EnemyID, len(f.bots))
	for c, id := range f.bots {
		out[c] = id
	}
	return out
}

// Rows returns the frame as printed rows.
func (f *Frame) Rows() []string {
	side := f.window.Side()
	rows := make([]string, side)
	for i := range rows {
		rows[i] = string(f.cells[i*side : (i+1)*side])
	}
	return rows
}

func (f *Frame) String() string {
	return strings.Join(f.Rows(), "\n")
}
