package game

import (
	"bytes"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler fires callbacks only when Advance moves time past them.
type manualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	pending []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (m *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{at: m.now + d, f: f}
	m.pending = append(m.pending, t)
	return t
}

func (m *manualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTimer
	rest := m.pending[:0]
	for _, t := range m.pending {
		if t.at <= m.now {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	m.pending = rest
	m.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		if t.stopped {
			continue
		}
		t.fired = true
		t.f()
	}
}

// fixedWords is a WordSource that hands out solutions in order.
type fixedWords struct {
	valid     map[string]bool
	solutions []string
	next      int
}

func newFixedWords(solutions []string, valid ...string) *fixedWords {
	w := &fixedWords{valid: map[string]bool{}, solutions: solutions}
	for _, s := range append(valid, solutions...) {
		w.valid[s] = true
	}
	return w
}

func (w *fixedWords) IsValidGuess(word string) bool { return w.valid[word] }

func (w *fixedWords) PickSolution() string {
	s := w.solutions[w.next%len(w.solutions)]
	w.next++
	return s
}

func newTestEngine(t *testing.T, solutions []string, valid ...string) (*Engine, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	e := New(newFixedWords(solutions, valid...),
		WithScheduler(sched),
		WithLogger(zerolog.Nop()),
	)
	return e, sched
}

func typeWord(e *Engine, word string) {
	for i := 0; i < len(word); i++ {
		e.SubmitKey(string(word[i]))
	}
}

func guess(e *Engine, word string) {
	typeWord(e, word)
	e.SubmitKey(KeyEnter)
}

const winDelay = revealSteps * defaultRevealInterval

func TestNewEngineNotStarted(t *testing.T) {
	e, _ := newTestEngine(t, []string{"abide"})
	assert.Equal(t, NotStarted, e.Phase())

	e.SubmitKey("a")
	s := e.Snapshot()
	assert.Equal(t, Empty, s.Attempts[0].Letters[0], "keys before reset are ignored")
}

func TestResetInitializesState(t *testing.T) {
	e, _ := newTestEngine(t, []string{"abide", "elder"}, "speed")
	e.Reset()
	guess(e, "speed")
	require.Equal(t, 1, e.Snapshot().CurrentAttemptIndex)

	e.Reset()
	s := e.Snapshot()
	assert.Equal(t, InProgress, s.Phase())
	assert.Equal(t, "elder", s.Solution)
	assert.Equal(t, 0, s.CurrentAttemptIndex)
	assert.Empty(t, s.KeyStatus)
	assert.False(t, s.Ended)
	assert.False(t, s.Won)
	assert.False(t, s.InvalidGuess)
	for i := range s.Attempts {
		assert.Equal(t, Attempt{}, s.Attempts[i], "row %d", i)
	}
	assert.Len(t, s.ID, 16)
}

func TestConsecutiveResetsGetNewIDs(t *testing.T) {
	e, _ := newTestEngine(t, []string{"abide"})
	e.Reset()
	first := e.Snapshot().ID
	e.Reset()
	assert.NotEqual(t, first, e.Snapshot().ID)
	assert.Equal(t, 0, e.Snapshot().CurrentAttemptIndex)
}

func TestLetterAndBackspaceEditing(t *testing.T) {
	e, _ := newTestEngine(t, []string{"abide"})
	e.Reset()

	e.SubmitKey(KeyBackspace) // empty row
	assert.Equal(t, Attempt{}, e.Snapshot().Attempts[0])

	typeWord(e, "speedy")
	row := e.Snapshot().Attempts[0]
	assert.Equal(t, "speed", row.Word(), "sixth letter is dropped")

	e.SubmitKey(KeyBackspace)
	e.SubmitKey(KeyBackspace)
	assert.Equal(t, "spe", e.Snapshot().Attempts[0].Word())

	e.SubmitKey("l")
	assert.Equal(t, "spel", e.Snapshot().Attempts[0].Word())
}

func TestMalformedKeysIgnored(t *testing.T) {
	e, _ := newTestEngine(t, []string{"abide"})
	e.Reset()
	for _, k := range []string{"A", "1", "", "ab", "enter", " ", "é"} {
		e.SubmitKey(k)
	}
	assert.Equal(t, Attempt{}, e.Snapshot().Attempts[0])
}

func TestEnterOnShortRowIsNoop(t *testing.T) {
	e, sched := newTestEngine(t, []string{"abide"})
	e.Reset()
	typeWord(e, "abid")
	e.SubmitKey(KeyEnter)
	sched.Advance(time.Hour)

	s := e.Snapshot()
	assert.False(t, s.Attempts[0].IsComplete)
	assert.False(t, s.InvalidGuess)
	assert.Equal(t, 0, s.CurrentAttemptIndex)
}

func TestValidGuessAdvancesRow(t *testing.T) {
	e, _ := newTestEngine(t, []string{"abide"}, "speed")
	e.Reset()
	guess(e, "speed")

	s := e.Snapshot()
	assert.Equal(t, 1, s.CurrentAttemptIndex)
	row := s.Attempts[0]
	assert.True(t, row.IsComplete)
	assert.False(t, row.IsCorrect)
	assert.Equal(t, statuses("aapap"), row.Matches)
	assert.Equal(t, Attempt{}, s.Attempts[1], "next row is empty")

	assert.Equal(t, Absent, s.KeyStatus['s'])
	assert.Equal(t, Absent, s.KeyStatus['p'])
	assert.Equal(t, Present, s.KeyStatus['e'])
	assert.Equal(t, Present, s.KeyStatus['d'])
}

func TestInvalidWordLeavesRowEditable(t *testing.T) {
	e, sched := newTestEngine(t, []string{"abide"})
	e.Reset()
	typeWord(e, "qzxvj")
	before := e.Snapshot().Attempts[0]

	e.SubmitKey(KeyEnter)
	s := e.Snapshot()
	assert.True(t, s.InvalidGuess)
	assert.Equal(t, before, s.Attempts[0])
	assert.Equal(t, 0, s.CurrentAttemptIndex)

	sched.Advance(defaultInvalidFlash - time.Millisecond)
	assert.True(t, e.Snapshot().InvalidGuess)
	sched.Advance(time.Millisecond)
	assert.False(t, e.Snapshot().InvalidGuess)

	e.SubmitKey(KeyBackspace)
	assert.Equal(t, "qzxv", e.Snapshot().Attempts[0].Word())
}

func TestRepeatedInvalidRestartsFlash(t *testing.T) {
	e, sched := newTestEngine(t, []string{"abide"})
	e.Reset()
	typeWord(e, "qzxvj")
	e.SubmitKey(KeyEnter)
	sched.Advance(600 * time.Millisecond)
	e.SubmitKey(KeyEnter)
	sched.Advance(600 * time.Millisecond)
	assert.True(t, e.Snapshot().InvalidGuess)
	sched.Advance(400 * time.Millisecond)
	assert.False(t, e.Snapshot().InvalidGuess)
}

func TestWinIsFinalizedAfterRevealDelay(t *testing.T) {
	for k := 0; k < MaxAttempts; k++ {
		e, sched := newTestEngine(t, []string{"abide"}, "speed")
		e.Reset()
		for i := 0; i < k; i++ {
			guess(e, "speed")
		}
		guess(e, "abide")

		s := e.Snapshot()
		row := s.Attempts[k]
		assert.True(t, row.IsComplete, "k=%d", k)
		assert.True(t, row.IsCorrect, "k=%d", k)
		assert.Equal(t, statuses("ccccc"), row.Matches)
		assert.Equal(t, k, s.CurrentAttemptIndex, "winning row does not advance")
		assert.False(t, s.Won, "k=%d reveal window", k)
		assert.False(t, s.Ended, "k=%d reveal window", k)
		_, folded := s.KeyStatus['a']
		assert.False(t, folded, "winning row folds only after the delay")

		sched.Advance(winDelay - time.Millisecond)
		assert.False(t, e.Snapshot().Won)

		sched.Advance(time.Millisecond)
		s = e.Snapshot()
		assert.True(t, s.Won, "k=%d", k)
		assert.True(t, s.Ended, "k=%d", k)
		assert.Equal(t, Ended, s.Phase())
		assert.Equal(t, Correct, s.KeyStatus['a'])
		assert.Equal(t, Correct, s.KeyStatus['e'])

		before := s.Attempts
		typeWord(e, "speed")
		e.SubmitKey(KeyEnter)
		sched.Advance(time.Hour)
		assert.Equal(t, before, e.Snapshot().Attempts, "k=%d no edits after win", k)
	}
}

func TestRevealWindowIgnoresInput(t *testing.T) {
	e, sched := newTestEngine(t, []string{"abide"})
	e.Reset()
	guess(e, "abide")
	before := e.Snapshot().Attempts

	e.SubmitKey(KeyBackspace)
	e.SubmitKey("x")
	e.SubmitKey(KeyEnter)
	assert.Equal(t, before, e.Snapshot().Attempts)

	require.Len(t, sched.pending, 1, "a second Enter must not schedule another win")
	sched.Advance(winDelay)
	assert.True(t, e.Snapshot().Won)
}

func TestLossAfterSixMisses(t *testing.T) {
	e, sched := newTestEngine(t, []string{"abide"}, "speed", "elder", "crane")
	e.Reset()
	words := []string{"speed", "elder", "crane", "speed", "elder"}
	for _, w := range words {
		guess(e, w)
		assert.False(t, e.Snapshot().Ended)
	}
	guess(e, "crane")

	s := e.Snapshot()
	assert.True(t, s.Ended)
	assert.False(t, s.Won)
	assert.Equal(t, MaxAttempts, s.CurrentAttemptIndex)
	assert.Equal(t, MaxAttempts, s.CompletedAttempts())

	e.SubmitKey("a")
	e.SubmitKey(KeyEnter)
	sched.Advance(time.Hour)
	assert.Equal(t, s.Attempts, e.Snapshot().Attempts)
}

func TestResetCancelsPendingWin(t *testing.T) {
	e, sched := newTestEngine(t, []string{"abide", "elder"})
	e.Reset()
	guess(e, "abide")
	e.Reset()
	sched.Advance(time.Hour)

	s := e.Snapshot()
	assert.False(t, s.Won)
	assert.False(t, s.Ended)
	assert.Empty(t, s.KeyStatus)
}

func TestSnapshotIsIndependent(t *testing.T) {
	e, _ := newTestEngine(t, []string{"abide"}, "speed")
	e.Reset()
	guess(e, "speed")

	s := e.Snapshot()
	s.KeyStatus['z'] = Correct
	s.Attempts[1].Letters[0] = 'q'

	fresh := e.Snapshot()
	_, ok := fresh.KeyStatus['z']
	assert.False(t, ok)
	assert.Equal(t, Empty, fresh.Attempts[1].Letters[0])
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	e, sched := newTestEngine(t, []string{"abide"})
	var seen []GameState
	e.Subscribe(func(s GameState) {
		seen = append(seen, s)
		_ = e.Phase() // observers may call back in
	})

	e.Reset()
	require.Len(t, seen, 1)
	assert.True(t, seen[0].Started)

	e.SubmitKey(KeyBackspace) // no-op, no notification
	assert.Len(t, seen, 1)

	guess(e, "abide")
	assert.Len(t, seen, 7)
	sched.Advance(winDelay)
	require.Len(t, seen, 8)
	assert.True(t, seen[7].Won)
}

// lateStopScheduler models a wall-clock timer whose callback has already
// started: Stop reports false and the callback still runs.
type lateStopScheduler struct {
	manualScheduler
}

type unstoppable struct{}

func (unstoppable) Stop() bool { return false }

func (l *lateStopScheduler) AfterFunc(d time.Duration, f func()) Timer {
	l.manualScheduler.AfterFunc(d, f)
	return unstoppable{}
}

func TestStaleFlashCallbackDoesNotClearNewerRejection(t *testing.T) {
	sched := &lateStopScheduler{}
	e := New(newFixedWords([]string{"abide"}), WithScheduler(sched), WithLogger(zerolog.Nop()))
	e.Reset()
	typeWord(e, "qzxvj")

	e.SubmitKey(KeyEnter)
	sched.Advance(600 * time.Millisecond)
	e.SubmitKey(KeyEnter)

	// First window ends; its callback still fires because Stop came too late.
	sched.Advance(400 * time.Millisecond)
	assert.True(t, e.Snapshot().InvalidGuess, "flag belongs to the second rejection")

	sched.Advance(599 * time.Millisecond)
	assert.True(t, e.Snapshot().InvalidGuess)
	sched.Advance(time.Millisecond)
	assert.False(t, e.Snapshot().InvalidGuess)
}

func TestResetDoesNotLogSolution(t *testing.T) {
	var buf bytes.Buffer
	sched := &manualScheduler{}
	e := New(newFixedWords([]string{"abide"}, "speed"),
		WithScheduler(sched),
		WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
	)
	e.Reset()
	guess(e, "speed")
	assert.NotContains(t, buf.String(), "abide", "answer must stay out of the log while guessing")

	guess(e, "abide")
	sched.Advance(winDelay)
	assert.Contains(t, buf.String(), `"solution":"abide"`)
}
