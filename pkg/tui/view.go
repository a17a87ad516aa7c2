// Package tui draws the robot's local picture of the arena in a terminal:
// the threat map around it, the enemies it sees and where it expects them
// next.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/robot"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
)

// Layout
const (
	headerRow = 0
	gridTop   = 2
	cellWidth = 2
)

var (
	styleHeader    = tcell.StyleDefault.Bold(true)
	styleRobot     = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleEnemy     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	stylePredicted = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleBorder    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSafe      = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleLow       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleMid       = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleHigh      = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

var _ robot.Observer = (*View)(nil)

// View renders snapshots on a tcell screen.
type View struct {
	screen tcell.Screen
	title  string

	mu    sync.Mutex
	snap  robot.Snapshot
	has   bool
	dirty chan struct{}
}

// NewScreen creates and initializes the terminal screen. Callers own it and
// must call Fini.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// New creates a view on an initialized screen.
func New(screen tcell.Screen, title string) *View {
	return &View{
		screen: screen,
		title:  title,
		dirty:  make(chan struct{}, 1),
	}
}

// Observe stores s and schedules a redraw.
func (v *View) Observe(s robot.Snapshot) {
	v.mu.Lock()
	v.snap = s
	v.has = true
	v.mu.Unlock()

	select {
	case v.dirty <- struct{}{}:
	default:
	}
}

// Run redraws on every new snapshot until ctx is done or the user quits
// (q, Esc or Ctrl-C), in which case quit is called.
func (v *View) Run(ctx context.Context, quit func()) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.dirty:
			v.Draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if quitKey(ev.Key(), ev.Rune()) {
					if quit != nil {
						quit()
					}
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.Draw()
			}
		}
	}
}

func quitKey(k tcell.Key, r rune) bool {
	switch k {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return r == 'q' || r == 'Q'
	}
	return false
}

// Draw renders the latest snapshot.
func (v *View) Draw() {
	v.mu.Lock()
	s, has := v.snap, v.has
	v.mu.Unlock()

	v.screen.Clear()
	if !has {
		v.text(0, headerRow, styleHeader, v.title+"  waiting for first scan")
		v.screen.Show()
		return
	}

	v.text(0, headerRow, styleHeader, fmt.Sprintf("%s  facing %s  steps %d  moves %d  stays %d  stabs %d",
		v.title, s.Pose.Orientation, s.Stats.Steps, s.Stats.Moves, s.Stats.Stays, s.Stats.Stabs))

	cells := classify(s)
	side := s.Window
	half := side / 2
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			c := grid.NewCoordinate(int8(col-half), int8(half-row))
			r, style := cells.glyph(c, s)
			v.screen.SetContent(col*cellWidth, gridTop+row, r, nil, style)
		}
	}

	footer := gridTop + side + 1
	v.text(0, footer, tcell.StyleDefault, fmt.Sprintf("last %s  enemies %d  predicted %d",
		orDash(s.LastAction), len(s.Enemies), len(s.Predictions)))
	v.text(0, footer+1, styleSafe, "^>v< robot  E enemy  * predicted  # void  q quit")
	v.screen.Show()
}

func (v *View) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type cellKinds struct {
	enemies   map[grid.Coordinate]bool
	predicted map[grid.Coordinate]bool
	borders   map[grid.Coordinate]bool
}

func classify(s robot.Snapshot) cellKinds {
	k := cellKinds{
		enemies:   make(map[grid.Coordinate]bool, len(s.Enemies)),
		predicted: make(map[grid.Coordinate]bool, len(s.Predictions)),
		borders:   make(map[grid.Coordinate]bool, len(s.Borders)),
	}
	for _, e := range s.Enemies {
		k.enemies[e.Position] = true
	}
	for _, p := range s.Predictions {
		k.predicted[p.Predicted] = true
	}
	for _, b := range s.Borders {
		k.borders[b] = true
	}
	return k
}

// glyph picks what to draw at c: robot, enemy, void, predicted enemy, then
// threat score.
func (k cellKinds) glyph(c grid.Coordinate, s robot.Snapshot) (rune, tcell.Style) {
	switch {
	case c == s.Pose.Position:
		return headingRune(s.Pose.Orientation), styleRobot
	case k.enemies[c]:
		return 'E', styleEnemy
	case k.borders[c]:
		return '#', styleBorder
	case k.predicted[c]:
		return '*', stylePredicted
	}
	return scoreGlyph(threatAt(s, c))
}

func headingRune(o grid.Orientation) rune {
	switch o {
	case grid.East:
		return '>'
	case grid.South:
		return 'v'
	case grid.West:
		return '<'
	default:
		return '^'
	}
}

func threatAt(s robot.Snapshot, c grid.Coordinate) threatmap.Score {
	half := s.Window / 2
	row, col := half-int(c.Y), int(c.X)+half
	if row < 0 || row >= len(s.Threat) || col < 0 || col >= len(s.Threat[row]) {
		return 0
	}
	return s.Threat[row][col]
}

func scoreGlyph(score threatmap.Score) (rune, tcell.Style) {
	switch {
	case score == 0:
		return '.', styleSafe
	case score > 9:
		return '+', styleHigh
	case score >= 6:
		return rune('0' + score), styleHigh
	case score >= 3:
		return rune('0' + score), styleMid
	default:
		return rune('0' + score), styleLow
	}
}
