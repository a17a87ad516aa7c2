// Package policy decides the robot's next action from the threat map.
package policy

import (
	"github.com/teslashibe/go-arenabot/pkg/grid"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
)

// Candidate is one reachable action and the threat it leads to.
type Candidate struct {
	Action grid.Direction
	Score  threatmap.Score
}

// Greedy picks the locally safest action one tick ahead.
type Greedy struct {
	// LookaheadTurns scores a turn by the cell the robot would face after it
	// instead of the cell it stands on, so a turn can win when it lines up a
	// safer step. Off, turns score like staying and never win.
	LookaheadTurns bool
}

// NewGreedy returns the default greedy policy.
func NewGreedy() *Greedy {
	return &Greedy{}
}

// Candidates enumerates the reachable actions in tie-break priority order
// (Front, Back, Right, Left). Steps into cells outside the window are not
// reachable: nothing is known about them.
func (g *Greedy) Candidates(m *threatmap.Map, pose grid.RobotPosition) []Candidate {
	here := currentScore(m, pose)

	out := make([]Candidate, 0, len(grid.Directions))
	for _, d := range grid.Directions {
		next := pose.After(d)
		target := next.Position
		if d.IsTurn() {
			if !g.LookaheadTurns {
				out = append(out, Candidate{Action: d, Score: here})
				continue
			}
			target = next.Ahead()
		}
		s, ok := m.Score(target)
		if !ok {
			continue
		}
		out = append(out, Candidate{Action: d, Score: s})
	}
	return out
}

// NextMove returns the action with the lowest resulting threat. ok is false
// when nothing beats staying put: an action must be strictly safer than the
// current cell, which keeps the robot from oscillating between equal cells.
// A masked destination carries threatmap.Sentinel and can never win.
func (g *Greedy) NextMove(m *threatmap.Map, pose grid.RobotPosition) (grid.Direction, bool) {
	best := Select(g.Candidates(m, pose))
	if best.Score >= currentScore(m, pose) {
		return 0, false
	}
	return best.Action, true
}

// Select returns the first candidate with the minimum score, so earlier
// entries win ties. It panics on an empty set.
func Select(cands []Candidate) Candidate {
	if len(cands) == 0 {
		panic("policy: no candidate moves")
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Score < best.Score {
			best = c
		}
	}
	return best
}

// currentScore is the threat at the robot's cell; an unknown cell counts as
// the worst possible so any known move is preferred.
func currentScore(m *threatmap.Map, pose grid.RobotPosition) threatmap.Score {
	s, ok := m.Score(pose.Position)
	if !ok {
		return threatmap.Sentinel
	}
	return s
}
