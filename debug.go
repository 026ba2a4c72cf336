package touchflow

import (
	"fmt"
	"io"
	"log"
	"os"
)

// debugOutput is where diagnostics go when debug mode is on. Tests swap it.
var debugOutput io.Writer = os.Stderr

// diagnostics is embedded by each controller. Diagnostics are only printed
// while debug mode is enabled; in release mode callers pay a bool check.
type diagnostics struct {
	debug     bool
	component string
}

// SetDebugMode enables diagnostics on stderr: ignored contact samples,
// coalesced triggers, swallowed refresh errors.
func (d *diagnostics) SetDebugMode(enabled bool) {
	d.debug = enabled
}

func (d *diagnostics) debugf(format string, args ...any) {
	if !d.debug {
		return
	}
	_, _ = fmt.Fprintf(debugOutput, "[touchflow] %s: %s\n", d.component, fmt.Sprintf(format, args...))
}

// warnf reports configuration problems regardless of debug mode.
func warnf(format string, args ...any) {
	log.Printf("touchflow: "+format, args...)
}
