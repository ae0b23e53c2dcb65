// Package xlog is the engine's diagnostic logging hook. It follows the
// teacher's convention of a single package-level function variable
// rather than pulling in a structured-logging dependency: components
// call Logf unconditionally, and whether anything is printed is
// decided entirely by whether a caller installed a sink.
package xlog

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Errorf is a global diagnostic hook that components call to report
// recoverable anomalies worth surfacing (a pruned path, a solver
// timeout, a skipped malformed instruction). It is nil by default; set
// it once during program startup to capture diagnostics, e.g. from
// cmd/symrun's main via Init.
var Errorf func(f string, args ...any)

var once sync.Once

// Init wires Errorf to the standard logger, writing to stderr with a
// microsecond timestamp. It is idempotent: only the first call made
// while SYMRUN_LOG enables logging installs the hook, matching the
// package-level hook's "set once at startup" intent. The SYMRUN_LOG
// environment variable, when unset or "0",
// leaves Errorf nil so that diagnostics are silently discarded, which
// is the default for library use (only cmd/symrun's main enables it).
func Init() {
	if os.Getenv("SYMRUN_LOG") == "" || os.Getenv("SYMRUN_LOG") == "0" {
		return
	}
	once.Do(func() {
		l := log.New(os.Stderr, "symrun: ", log.Lmicroseconds)
		Errorf = func(f string, args ...any) {
			l.Output(2, fmt.Sprintf(f, args...))
		}
	})
}

// Logf calls Errorf if one has been installed; it is a no-op otherwise.
func Logf(f string, args ...any) {
	if Errorf != nil {
		Errorf(f, args...)
	}
}
