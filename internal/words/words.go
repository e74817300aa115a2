// internal/words/words.go
//
// Provides word list management for the game engine.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to the embedded defaults.
//   - Maintain sets for quick lookups (answers only, answers∪guesses).
//   - Implement game.WordSource (IsValidGuess, PickSolution).
//
// Word Lists:
//   - "answers": canonical solutions (exactly 5 lowercase letters).
//   - "allowed": valid guesses (always includes answers).
//
// Loading behavior (Load):
//   1. If both paths are set, load answers from the first and allowed guesses from the second.
//   2. If only the allowed path is set, use that file for both answers and allowed guesses.
//   3. If neither is set, fall back to the embedded assets.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z).
//   • Lists are normalized to lowercase.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-term/assets"
	"github.com/robalobadob/wordle/apps/go-term/internal/game"
)

// ErrNoAnswers is returned when a list ends up without any solution words.
var ErrNoAnswers = errors.New("words: answers list is empty")

// List is an immutable pair of word lists.
type List struct {
	answers    []string            // canonical answers
	allowedSet map[string]struct{} // answers ∪ guesses
	answersSet map[string]struct{} // answers only
}

var _ game.WordSource = (*List)(nil)

// NewList builds a List from raw words. Entries that are not 5 letters a–z
// after lowercasing are dropped.
func NewList(answers, allowed []string) (*List, error) {
	ans := normalize(answers)
	if len(ans) == 0 {
		return nil, ErrNoAnswers
	}
	l := &List{
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	// Ensure all answers are also marked as allowed
	for _, w := range normalize(allowed) {
		l.allowedSet[w] = struct{}{}
	}
	return l, nil
}

// Load reads the lists following the rules in the package comment.
func Load(answersPath, allowedPath string) (*List, error) {
	var ansList, allowList []string
	var err error

	switch {
	// Case 1: both lists provided
	case answersPath != "" && allowedPath != "":
		if ansList, err = readWordFile(answersPath); err != nil {
			return nil, err
		}
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}

	// Case 2: only allowed file provided → use for both
	case answersPath == "" && allowedPath != "":
		if allowList, err = readWordFile(allowedPath); err != nil {
			return nil, err
		}
		ansList = allowList

	// Case 3: fallback to embedded defaults
	default:
		if answersPath != "" {
			log.Warn().Str("answers", answersPath).Msg("answers file ignored without an allowed file")
		}
		if ansList, err = assets.AnswersList(); err != nil {
			return nil, fmt.Errorf("embedded answers: %w", err)
		}
		if allowList, err = assets.AllowedList(); err != nil {
			return nil, fmt.Errorf("embedded allowed: %w", err)
		}
	}
	return NewList(ansList, allowList)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

// normalize lowercases, trims, and keeps only valid 5-letter alphabetic words.
func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, line := range in {
		w := strings.TrimSpace(strings.ToLower(line))
		if len(w) == game.WordLength && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// PickSolution returns a cryptographically random answer.
func (l *List) PickSolution() string {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(l.answers))))
	if err != nil {
		return l.answers[0]
	}
	return l.answers[nBig.Int64()]
}

// IsValidGuess reports whether w is a valid guess (answers ∪ guesses).
func (l *List) IsValidGuess(w string) bool {
	_, ok := l.allowedSet[w]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (l *List) IsAnswer(w string) bool {
	_, ok := l.answersSet[w]
	return ok
}

// Answers returns the answer list. Callers must not modify it.
func (l *List) Answers() []string { return l.answers }

// Stats returns counts of loaded words: (answers, allowed).
func (l *List) Stats() (answersCount int, allowedCount int) {
	return len(l.answers), len(l.allowedSet)
}
