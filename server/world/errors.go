package world

import "fmt"

// ConfigError is returned by Registry construction methods when the caller
// supplies invalid configuration. These are always fatal at registry build
// time: the application should fail to start rather than limp along with a
// half-built registry.
type ConfigError struct {
	Op  string
	Msg string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("world: %s: %s", e.Op, e.Msg)
}

func configErrorf(op, format string, args ...any) error {
	return &ConfigError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Invariant is the panic value raised by a failed assertion inside the
// package (circle slot reuse, a neighbor counter leaving [0,4], remeshing a
// chunk that is not dirty). The assertions are always checked and only fail
// on a bug, never in normal operation; callers are expected to recover it
// at a single top-level boundary (see
// server/timing.Harness), log it, and treat the engine as frozen rather than
// letting the panic escape uncontrolled.
type Invariant struct {
	Msg string
}

func (e *Invariant) Error() string { return "world: invariant violated: " + e.Msg }

func assertInvariant(cond bool, format string, args ...any) {
	if !cond {
		panic(&Invariant{Msg: fmt.Sprintf(format, args...)})
	}
}
