// internal/game/scheduler.go
//
// Timer abstraction for the engine's delayed transitions (win reveal,
// invalid-word flag). WallClock is the production implementation; tests
// substitute a manual clock.

package game

import "time"

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. Reports false if it already ran
	// or was already stopped.
	Stop() bool
}

// Scheduler runs a callback once after a delay without blocking the caller.
// f must not be invoked before AfterFunc returns.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// WallClock schedules on real time via time.AfterFunc.
type WallClock struct{}

// AfterFunc implements Scheduler.
func (WallClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
