// Package debug provides global debug logging flags
package debug

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/teslashibe/go-arenabot/pkg/radar"
	"github.com/teslashibe/go-arenabot/pkg/threatmap"
)

// Enabled controls whether debug logging is active
var Enabled bool

// Maps controls whether every radar scan and threat map is printed.
// Use --debug-maps to enable these very verbose dumps
var Maps bool

// Out is where debug output goes.
var Out io.Writer = os.Stdout

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Fprintf(Out, format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Fprintln(Out, msg)
	}
}

// RenderScan draws a scan in its own frame, farthest row first. The robot
// is drawn as 'R'.
func RenderScan(s radar.Scan) string {
	half := int8(s.Size() / 2)
	var b strings.Builder
	for y := half; y >= -half; y-- {
		for x := -half; x <= half; x++ {
			switch s.At(x, y) {
			case radar.Self:
				b.WriteByte('R')
			case radar.Enemy:
				b.WriteRune(radar.SymbolEnemy)
			case radar.Void:
				b.WriteRune(radar.SymbolVoid)
			case radar.Floor:
				b.WriteRune(radar.SymbolFloor)
			}
		}
		if y > -half {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Scan prints a radar scan if map dumps are enabled
func Scan(n uint64, s radar.Scan) {
	if Maps {
		fmt.Fprintf(Out, "scan #%d\n%s\n", n, RenderScan(s))
	}
}

// ThreatMap prints a threat map if map dumps are enabled
func ThreatMap(m *threatmap.Map) {
	if Maps {
		fmt.Fprintf(Out, "threat map\n%s\n", m.String())
	}
}
