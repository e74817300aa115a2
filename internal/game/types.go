// internal/game/types.go
//
// Core type definitions for the Wordle game engine.
// Defines:
//   - Letter: a single a–z tile value (or Empty).
//   - MatchStatus: per-letter result of scoring (correct/present/absent/unscored).
//   - Attempt: one guess row.
//   - GameState: the full state observed by the rendering layer.

package game

import "strings"

const (
	// WordLength is the fixed number of letters per attempt.
	WordLength = 5
	// MaxAttempts is the number of rows on the board.
	MaxAttempts = 6
)

// Key tokens accepted by Engine.SubmitKey besides the 26 lowercase letters.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "<"
)

// Letter is a lowercase ASCII letter, or Empty for an unfilled slot.
type Letter byte

// Empty marks a slot with no letter typed yet.
const Empty Letter = 0

// String returns the letter as a one-character string ("" for Empty).
func (l Letter) String() string {
	if l == Empty {
		return ""
	}
	return string(rune(l))
}

// MatchStatus represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct":  letter is in the solution at this position.
//   - "present":  letter is in the solution at a different position.
//   - "absent":   letter is not in the solution (or all copies are accounted for).
//   - "":         slot not scored yet.
type MatchStatus string

const (
	Unscored MatchStatus = ""
	Absent   MatchStatus = "absent"
	Present  MatchStatus = "present"
	Correct  MatchStatus = "correct"
)

// Attempt is one row of the board.
type Attempt struct {
	Letters    [WordLength]Letter      // typed letters, Empty where unfilled
	Matches    [WordLength]MatchStatus // parallel to Letters; Unscored until complete
	IsComplete bool                    // submitted and scored
	IsCorrect  bool                    // complete and equal to the solution
}

// Filled counts the non-empty slots. Letters always fill left to right,
// so this is also the index of the first empty slot.
func (a Attempt) Filled() int {
	n := 0
	for _, l := range a.Letters {
		if l == Empty {
			break
		}
		n++
	}
	return n
}

// Word joins the typed letters.
func (a Attempt) Word() string {
	var b strings.Builder
	for _, l := range a.Letters {
		if l == Empty {
			break
		}
		b.WriteByte(byte(l))
	}
	return b.String()
}

// KeyStatus is the best-known status per letter, used to colour the keyboard.
type KeyStatus map[Letter]MatchStatus

// Clone returns an independent copy of k.
func (k KeyStatus) Clone() KeyStatus {
	out := make(KeyStatus, len(k))
	for l, s := range k {
		out[l] = s
	}
	return out
}

// Phase is the top-level state of the engine.
type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Ended
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Ended:
		return "ended"
	default:
		return "not_started"
	}
}

// GameState holds the state of a single game as seen by observers.
// Values returned by the engine are snapshots; mutating them has no effect
// on the engine.
type GameState struct {
	ID                  string               // random hex id, new on every reset
	Solution            string               // only meaningful to show once Ended
	Attempts            [MaxAttempts]Attempt // pre-allocated rows
	CurrentAttemptIndex int                  // row accepting input; MaxAttempts once exhausted
	Started             bool
	Ended               bool
	Won                 bool
	KeyStatus           KeyStatus
	InvalidGuess        bool // most recent submission was not a real word
}

// Phase derives the state-machine phase from the flags.
func (s GameState) Phase() Phase {
	switch {
	case s.Ended:
		return Ended
	case s.Started:
		return InProgress
	default:
		return NotStarted
	}
}

// CompletedAttempts counts rows that have been submitted and scored.
func (s GameState) CompletedAttempts() int {
	n := 0
	for i := range s.Attempts {
		if s.Attempts[i].IsComplete {
			n++
		}
	}
	return n
}

// WordSource supplies the dictionary and the solution list.
// Implementations must be safe to call from the engine's goroutine and are
// assumed to be in-memory and non-blocking.
type WordSource interface {
	// IsValidGuess reports membership in guess dictionary ∪ solution list.
	IsValidGuess(word string) bool
	// PickSolution draws the solution for a new game.
	PickSolution() string
}
