// internal/store/memory.go
//
// Results store for finished games.
// Neither backend survives a process restart: memory keeps a map, and the
// SQLite backend (sqlite.go) opens a private in-memory database.
//
// Characteristics:
//   - Results are keyed by GameID; saving the same id again overwrites it.
//   - Concurrency-safe: the engine publishes from timer goroutines.
//   - Get returns ErrNotFound for unknown ids.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle/apps/go-term/internal/game"
)

// ErrNotFound is returned by Get for unknown game ids.
var ErrNotFound = errors.New("not found")

// Result is the outcome of one finished game.
type Result struct {
	GameID     string    `json:"gameId"`
	Solution   string    `json:"solution"`
	Guesses    int       `json:"guesses"` // completed attempts, winning row included
	Won        bool      `json:"won"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Summary aggregates results in finish order.
type Summary struct {
	Played        int                   `json:"played"`
	Wins          int                   `json:"wins"`
	CurrentStreak int                   `json:"currentStreak"`
	MaxStreak     int                   `json:"maxStreak"`
	Distribution  [game.MaxAttempts]int `json:"distribution"` // wins by number of guesses
}

// Store defines the persistence interface for finished games.
type Store interface {
	// Save persists or updates a result.
	Save(ctx context.Context, r Result) error

	// Get retrieves a result by game id.
	Get(ctx context.Context, id string) (Result, error)

	// List returns all results in the order they were first saved.
	List(ctx context.Context) ([]Result, error)

	// Summary aggregates all results.
	Summary(ctx context.Context) (Summary, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex      // guards results and order
	results map[string]Result // keyed by GameID
	order   []string          // GameIDs in first-save order
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{results: make(map[string]Result)}
}

// Save adds or updates the result in the map.
func (m *memory) Save(ctx context.Context, r Result) error {
	if r.GameID == "" {
		return errors.New("store: empty game id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[r.GameID]; !ok {
		m.order = append(m.order, r.GameID)
	}
	m.results[r.GameID] = r
	return nil
}

// Get looks up a result by game id.
func (m *memory) Get(ctx context.Context, id string) (Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.results[id]; ok {
		return r, nil
	}
	return Result{}, ErrNotFound
}

func (m *memory) List(ctx context.Context) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.results[id])
	}
	return out, nil
}

func (m *memory) Summary(ctx context.Context) (Summary, error) {
	rs, err := m.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return summarize(rs), nil
}

// summarize folds results (oldest first) into a Summary.
func summarize(rs []Result) Summary {
	var s Summary
	for _, r := range rs {
		s.Played++
		if !r.Won {
			s.CurrentStreak = 0
			continue
		}
		s.Wins++
		s.CurrentStreak++
		if s.CurrentStreak > s.MaxStreak {
			s.MaxStreak = s.CurrentStreak
		}
		if r.Guesses >= 1 && r.Guesses <= game.MaxAttempts {
			s.Distribution[r.Guesses-1]++
		}
	}
	return s
}
