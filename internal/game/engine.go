// internal/game/engine.go
//
// Core game engine for a single-player Wordle session.
// Responsibilities:
//   - Reset games with a freshly drawn solution (6 rows x 5 letters).
//   - Apply key tokens: letters fill the active row, "<" erases, "Enter" submits.
//   - Validate and score submissions (WordSource membership, Score).
//   - Track state transitions: not started → in progress → ended (won/lost).
//   - Fold scored rows into the keyboard status map.
//
// Notes:
//   - The engine is the only writer of GameState. Observers get snapshots.
//   - The win is finalized after a reveal delay and the invalid-word flag is
//     cleared after a display window. Both run on the Scheduler, so every
//     mutation happens under mu.
//   - A win on any row leaves a short window where the row is correct but
//     Won/Ended are still false. Renderers rely on it for the reveal.
package game

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultRevealInterval = 250 * time.Millisecond
	defaultInvalidFlash   = 1000 * time.Millisecond
	// revealSteps is the number of reveal intervals before a win is final.
	revealSteps = 6
)

// Engine owns one GameState and mutates it in response to input events.
type Engine struct {
	mu    sync.Mutex
	words WordSource
	sched Scheduler
	log   zerolog.Logger

	revealInterval time.Duration
	invalidFlash   time.Duration

	state GameState
	gen   uint64 // bumped on reset; timers from older games are ignored

	winTimer   Timer
	flashTimer Timer
	flashSeq   uint64 // bumped per rejection; only the latest flash timer may clear

	observers []func(GameState)
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler (tests use a manual one).
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithRevealInterval sets the per-letter reveal interval. The win is
// finalized after six intervals.
func WithRevealInterval(d time.Duration) Option {
	return func(e *Engine) { e.revealInterval = d }
}

// WithInvalidFlash sets how long InvalidGuess stays raised.
func WithInvalidFlash(d time.Duration) Option {
	return func(e *Engine) { e.invalidFlash = d }
}

// WithLogger sets the engine logger. Defaults to the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New constructs an engine in the NotStarted phase. Call Reset to begin.
func New(src WordSource, opts ...Option) *Engine {
	e := &Engine{
		words:          src,
		sched:          WallClock{},
		log:            log.Logger,
		revealInterval: defaultRevealInterval,
		invalidFlash:   defaultInvalidFlash,
		state:          GameState{KeyStatus: KeyStatus{}},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Subscribe registers fn to receive a snapshot after every state change,
// including changes made by timers. fn runs outside the engine lock and may
// call back into the engine.
func (e *Engine) Subscribe(fn func(GameState)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Phase reports the current state-machine phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Phase()
}

// Reset draws a new solution and reinitializes every field.
// Valid from any phase; pending timers of the previous game are cancelled.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.stopTimersLocked()
	e.gen++
	e.state = GameState{
		ID:        randomID(),
		Solution:  e.words.PickSolution(),
		Started:   true,
		KeyStatus: KeyStatus{},
	}
	e.log.Debug().Str("gameId", e.state.ID).Msg("game reset")
	e.publishLocked()
}

// SubmitKey applies one key token: a lowercase letter, KeyEnter or
// KeyBackspace. Anything else, and any key that cannot apply in the current
// state, is ignored.
func (e *Engine) SubmitKey(key string) {
	e.mu.Lock()
	if !e.applyLocked(key) {
		e.mu.Unlock()
		return
	}
	e.publishLocked()
}

// applyLocked mutates state for key and reports whether anything changed.
func (e *Engine) applyLocked(key string) bool {
	s := &e.state
	if !s.Started || s.Ended {
		return false
	}
	if s.CurrentAttemptIndex < 0 || s.CurrentAttemptIndex >= MaxAttempts {
		return false
	}
	cur := &s.Attempts[s.CurrentAttemptIndex]
	// A completed row only stays active during the win reveal; it takes no
	// edits and no second submission.
	if cur.IsComplete {
		return false
	}

	switch {
	case isLetterKey(key):
		n := cur.Filled()
		if n >= WordLength {
			return false
		}
		cur.Letters[n] = Letter(key[0])
		return true

	case key == KeyBackspace:
		n := cur.Filled()
		if n == 0 {
			return false
		}
		cur.Letters[n-1] = Empty
		return true

	case key == KeyEnter:
		if cur.Filled() < WordLength || s.Won {
			return false
		}
		return e.submitLocked(cur)
	}
	return false
}

// submitLocked handles Enter on a full row.
func (e *Engine) submitLocked(cur *Attempt) bool {
	s := &e.state
	word := cur.Word()

	switch {
	case word == s.Solution:
		cur.Matches = Score(word, s.Solution)
		cur.IsComplete, cur.IsCorrect = true, true
		e.log.Debug().Str("gameId", s.ID).Int("row", s.CurrentAttemptIndex).Msg("solution guessed")
		gen, row := e.gen, *cur
		e.winTimer = e.sched.AfterFunc(revealSteps*e.revealInterval, func() {
			e.finishWin(gen, row)
		})

	case e.words.IsValidGuess(word):
		cur.Matches = Score(word, s.Solution)
		cur.IsComplete = true
		s.KeyStatus = FoldKeyStatus(s.KeyStatus, *cur)
		s.CurrentAttemptIndex++
		e.log.Debug().Str("gameId", s.ID).Str("guess", word).Int("row", s.CurrentAttemptIndex-1).Msg("guess scored")
		if s.CompletedAttempts() >= MaxAttempts && !s.Won {
			s.Ended = true
			e.log.Debug().Str("gameId", s.ID).Str("solution", s.Solution).Msg("game lost")
		}

	default:
		s.InvalidGuess = true
		e.log.Debug().Str("gameId", s.ID).Str("guess", word).Msg("not in word list")
		if e.flashTimer != nil {
			e.flashTimer.Stop()
		}
		e.flashSeq++
		gen, seq := e.gen, e.flashSeq
		e.flashTimer = e.sched.AfterFunc(e.invalidFlash, func() {
			e.clearInvalid(gen, seq)
		})
	}
	return true
}

// finishWin runs after the reveal delay.
func (e *Engine) finishWin(gen uint64, row Attempt) {
	e.mu.Lock()
	if gen != e.gen || e.state.Ended {
		e.mu.Unlock()
		return
	}
	e.winTimer = nil
	e.state.Won, e.state.Ended = true, true
	e.state.KeyStatus = FoldKeyStatus(e.state.KeyStatus, row)
	e.log.Debug().Str("gameId", e.state.ID).Str("solution", e.state.Solution).Int("attempts", e.state.CompletedAttempts()).Msg("game won")
	e.publishLocked()
}

// clearInvalid lowers InvalidGuess once the display window of the latest
// rejection has passed. A callback whose Stop came too late is ignored.
func (e *Engine) clearInvalid(gen, seq uint64) {
	e.mu.Lock()
	if gen != e.gen || seq != e.flashSeq || !e.state.InvalidGuess {
		e.mu.Unlock()
		return
	}
	e.flashTimer = nil
	e.state.InvalidGuess = false
	e.publishLocked()
}

func (e *Engine) stopTimersLocked() {
	if e.winTimer != nil {
		e.winTimer.Stop()
		e.winTimer = nil
	}
	if e.flashTimer != nil {
		e.flashTimer.Stop()
		e.flashTimer = nil
	}
}

func (e *Engine) snapshotLocked() GameState {
	s := e.state
	s.KeyStatus = e.state.KeyStatus.Clone()
	return s
}

// publishLocked releases mu and notifies observers with a fresh snapshot.
func (e *Engine) publishLocked() {
	snap := e.snapshotLocked()
	obs := append([]func(GameState){}, e.observers...)
	e.mu.Unlock()
	for _, fn := range obs {
		fn(snap)
	}
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
