// Package debuglog provides a single indirection point for low-level
// diagnostic lines: failures that must not propagate (a cache write
// that fails, a thumbnail generation that falls back) are still
// reported somewhere.
package debuglog

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// Output is where Printf writes. Tests may swap it for a buffer.
var Output io.Writer = os.Stderr

var enabled atomic.Bool

// SetEnabled toggles whether Printf actually writes anything. Disabled
// by default; cmd/bulicore turns it on behind -verbose (cmdmain.Main
// sets it from cmdmain's FlagVerbose).
func SetEnabled(v bool) { enabled.Store(v) }

// Enabled reports the current state.
func Enabled() bool { return enabled.Load() }

// Printf writes a line to Output if logging is enabled. It never
// returns an error: a debug line that can't be written is not worth
// failing over.
func Printf(format string, args ...interface{}) {
	if !enabled.Load() {
		return
	}
	fmt.Fprintf(Output, format+"\n", args...)
}
