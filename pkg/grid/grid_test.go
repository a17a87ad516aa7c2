package grid

import "testing"

func everyCoordinate(w Window) []Coordinate {
	var out []Coordinate
	w.Each(func(_ int, c Coordinate) {
		out = append(out, c)
	})
	return out
}

func TestCoordinate_FourQuarterTurnsIsIdentity(t *testing.T) {
	for _, c := range everyCoordinate(Window9) {
		for _, start := range Orientations {
			got := c
			heading := start
			for i := 0; i < 4; i++ {
				got = got.OrientateNorth(East)
				heading = heading.Right()
			}
			if got != c {
				t.Errorf("%v after four turns: got %v", c, got)
			}
			if heading != start {
				t.Errorf("heading %v after four turns: got %v", start, heading)
			}
		}
	}
}

func TestCoordinate_OrientateNorth(t *testing.T) {
	ahead := NewCoordinate(0, 1)
	right := NewCoordinate(1, 0)

	tests := []struct {
		heading   Orientation
		wantAhead Coordinate
		wantRight Coordinate
	}{
		{North, NewCoordinate(0, 1), NewCoordinate(1, 0)},
		{East, NewCoordinate(1, 0), NewCoordinate(0, -1)},
		{South, NewCoordinate(0, -1), NewCoordinate(-1, 0)},
		{West, NewCoordinate(-1, 0), NewCoordinate(0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.heading.String(), func(t *testing.T) {
			if got := ahead.OrientateNorth(tt.heading); got != tt.wantAhead {
				t.Errorf("ahead: got %v, want %v", got, tt.wantAhead)
			}
			if got := ahead.OrientateNorth(tt.heading); got != tt.heading.Forward() {
				t.Errorf("ahead should match Forward(): got %v, want %v", got, tt.heading.Forward())
			}
			if got := right.OrientateNorth(tt.heading); got != tt.wantRight {
				t.Errorf("right: got %v, want %v", got, tt.wantRight)
			}
		})
	}
}

func TestCoordinate_OrientateNorthComposes(t *testing.T) {
	c := NewCoordinate(2, -3)
	for _, a := range Orientations {
		for _, b := range Orientations {
			got := c.OrientateNorth(a).OrientateNorth(b)
			want := c.OrientateNorth(a.Add(b))
			if got != want {
				t.Errorf("%v then %v: got %v, want %v", a, b, got, want)
			}
		}
	}
}

func TestOrientation_Relative(t *testing.T) {
	for _, from := range Orientations {
		for _, to := range Orientations {
			if got := from.Add(to.Relative(from)); got != to {
				t.Errorf("%v + (%v rel %v) = %v, want %v", from, to, from, got, to)
			}
		}
	}
	if North.Left() != West || West.Right() != North {
		t.Error("left/right should wrap around north")
	}
}

func TestOrientationFromInt(t *testing.T) {
	if o, err := OrientationFromInt(2); err != nil || o != South {
		t.Errorf("OrientationFromInt(2) = %v, %v", o, err)
	}
	if _, err := OrientationFromInt(4); err == nil {
		t.Error("expected error for 4")
	}
	if _, err := OrientationFromInt(-1); err == nil {
		t.Error("expected error for -1")
	}
}

func TestCoordinate_Index(t *testing.T) {
	w := Window9

	idx, ok := NewCoordinate(-4, 4).Index(w)
	if !ok || idx != 0 {
		t.Errorf("top-left: got %d, %v", idx, ok)
	}
	idx, ok = Origin.Index(w)
	if !ok || idx != 40 {
		t.Errorf("center: got %d, %v", idx, ok)
	}
	idx, ok = NewCoordinate(4, -4).Index(w)
	if !ok || idx != 80 {
		t.Errorf("bottom-right: got %d, %v", idx, ok)
	}

	for _, c := range []Coordinate{{5, 0}, {0, -5}, {-5, 5}} {
		if _, ok := c.Index(w); ok {
			t.Errorf("%v should be outside the window", c)
		}
	}
	if _, ok := NewCoordinate(4, 0).Index(Window7); ok {
		t.Error("(4,0) should be outside a 7x7 window")
	}
}

func TestWindow_CoordinateRoundTrip(t *testing.T) {
	for _, w := range []Window{Window7, Window9} {
		w.Each(func(idx int, c Coordinate) {
			if got := c.MustIndex(w); got != idx {
				t.Errorf("%v: index %d, want %d", c, got, idx)
			}
			back, ok := w.Coordinate(idx)
			if !ok || back != c {
				t.Errorf("index %d: got %v, want %v", idx, back, c)
			}
		})
	}
	if _, ok := Window7.Coordinate(49); ok {
		t.Error("index 49 is outside a 7x7 window")
	}
}

func TestCoordinate_MustIndexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for out-of-window coordinate")
		}
	}()
	NewCoordinate(9, 9).MustIndex(Window9)
}

func TestNewWindow(t *testing.T) {
	for _, side := range []int{7, 9} {
		if _, err := NewWindow(side); err != nil {
			t.Errorf("NewWindow(%d): %v", side, err)
		}
	}
	for _, side := range []int{0, 5, 8, 11} {
		if _, err := NewWindow(side); err == nil {
			t.Errorf("NewWindow(%d) should fail", side)
		}
	}
}

func TestRobotPosition_TakeStep(t *testing.T) {
	p := NewRobotPosition(East)

	p.TakeStep(Front)
	if p.Position != NewCoordinate(1, 0) || p.Orientation != East {
		t.Errorf("after front: %v", p)
	}

	p.TakeStep(Left)
	if p.Position != NewCoordinate(1, 0) || p.Orientation != North {
		t.Errorf("turn must not move: %v", p)
	}

	p.TakeStep(Back)
	if p.Position != NewCoordinate(1, -1) {
		t.Errorf("after back: %v", p)
	}

	if p.Ahead() != NewCoordinate(1, 0) {
		t.Errorf("ahead: got %v", p.Ahead())
	}

	p.ResetOrigin()
	if p.Position != Origin || p.Orientation != North {
		t.Errorf("after reset: %v", p)
	}
}

func TestDistances(t *testing.T) {
	a, b := NewCoordinate(-1, 2), NewCoordinate(2, 0)
	if got := a.Chebyshev(b); got != 3 {
		t.Errorf("Chebyshev: got %d, want 3", got)
	}
	if got := a.Manhattan(b); got != 5 {
		t.Errorf("Manhattan: got %d, want 5", got)
	}
}
