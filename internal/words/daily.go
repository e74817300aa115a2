package words

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/wordle/apps/go-term/internal/game"
)

// Daily picks the same solution for everyone on a given UTC date.
// Guess validity is delegated to the wrapped List.
type Daily struct {
	list *List
	salt string
	now  func() time.Time
}

var _ game.WordSource = (*Daily)(nil)

// NewDaily wraps list. now may be nil for time.Now.
func NewDaily(list *List, salt string, now func() time.Time) *Daily {
	if now == nil {
		now = time.Now
	}
	return &Daily{list: list, salt: salt, now: now}
}

// PickSolution returns the answer for the current date.
func (d *Daily) PickSolution() string {
	return d.list.answers[DayIndex(d.now(), d.salt, len(d.list.answers))]
}

// IsValidGuess implements game.WordSource.
func (d *Daily) IsValidGuess(w string) bool { return d.list.IsValidGuess(w) }

// DateKey reports the date the current solution belongs to.
func (d *Daily) DateKey() string { return DateKey(d.now()) }

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayIndex maps a date onto [0, n) as HMAC-SHA256(salt, DateKey) mod n,
// using the first 8 bytes of the digest.
func DayIndex(t time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(DateKey(t)))
	sum := mac.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(n))
}
