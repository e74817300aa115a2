package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-term/internal/game"
)

// Recorder saves each finished game exactly once. Pass Observe to
// game.Engine.Subscribe.
type Recorder struct {
	st  Store
	now func() time.Time

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRecorder returns a Recorder writing to st.
func NewRecorder(st Store) *Recorder {
	return &Recorder{st: st, now: time.Now, seen: make(map[string]struct{})}
}

// Observe records s if it is the first ended snapshot of its game.
// Store errors are logged; play is never interrupted.
func (r *Recorder) Observe(s game.GameState) {
	if !s.Ended || s.ID == "" {
		return
	}
	r.mu.Lock()
	if _, ok := r.seen[s.ID]; ok {
		r.mu.Unlock()
		return
	}
	r.seen[s.ID] = struct{}{}
	r.mu.Unlock()

	res := Result{
		GameID:     s.ID,
		Solution:   s.Solution,
		Guesses:    s.CompletedAttempts(),
		Won:        s.Won,
		FinishedAt: r.now().UTC(),
	}
	if err := r.st.Save(context.Background(), res); err != nil {
		log.Warn().Err(err).Str("gameId", s.ID).Msg("save result")
		return
	}
	log.Info().Str("gameId", s.ID).Bool("won", res.Won).Int("guesses", res.Guesses).Msg("game finished")
}
