// internal/game/score.go
//
// Scoring and keyboard-status folding. Both are pure functions with no
// engine state; the engine calls them on Enter.

package game

// Score implements the standard Wordle two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) solution letters by letter index.
//
// Pass 2 (left to right):
//   - For each non-correct guess letter: if there is remaining count for that
//     letter, mark Present and decrement the count; otherwise mark Absent.
//
// A letter is never marked Present/Correct more times than it occurs in the
// solution, and earlier positions claim Present first.
// Both inputs must be WordLength lowercase a–z.
func Score(guess, solution string) [WordLength]MatchStatus {
	var res [WordLength]MatchStatus
	if guess == solution {
		for i := range res {
			res[i] = Correct
		}
		return res
	}

	// Letter frequency for the non-correct positions (a–z).
	var remaining [26]int

	for i := 0; i < WordLength; i++ {
		if guess[i] == solution[i] {
			res[i] = Correct
		} else {
			remaining[idx(solution[i])]++
		}
	}

	for i := 0; i < WordLength; i++ {
		if res[i] == Correct {
			continue
		}
		j := idx(guess[i])
		if j >= 0 && j < 26 && remaining[j] > 0 {
			res[i] = Present
			remaining[j]--
		} else {
			res[i] = Absent
		}
	}
	return res
}

// FoldKeyStatus merges a scored attempt into the keyboard map and returns the
// result. prior is not modified.
//
// Per letter: Correct never downgrades, Present never drops to Absent,
// otherwise the newest status wins.
func FoldKeyStatus(prior KeyStatus, a Attempt) KeyStatus {
	out := prior.Clone()
	for i, l := range a.Letters {
		if l == Empty {
			continue
		}
		next := a.Matches[i]
		if next == Unscored {
			continue
		}
		switch cur := out[l]; {
		case cur == Correct:
		case next == Correct:
			out[l] = Correct
		case cur == Present:
		default:
			out[l] = next
		}
	}
	return out
}

// idx maps a lowercase ASCII letter to 0..25.
func idx(b byte) int { return int(b) - 'a' }

// isLetterKey reports whether key is a single lowercase a–z.
func isLetterKey(key string) bool {
	return len(key) == 1 && key[0] >= 'a' && key[0] <= 'z'
}
