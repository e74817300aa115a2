package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/go-term/internal/game"
	"github.com/robalobadob/wordle/apps/go-term/internal/store"
)

const (
	tileWidth = 4 // "[X] "
	boardTop  = 2
)

var keyboardRows = []string{
	"qwertyuiop",
	"asdfghjkl",
	"zxcvbnm",
}

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleWarn    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleHint    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// statusStyle colours a tile or key by its match status.
func statusStyle(s game.MatchStatus) tcell.Style {
	switch s {
	case game.Correct:
		return tcell.StyleDefault.Background(tcell.ColorGreen).Foreground(tcell.ColorBlack)
	case game.Present:
		return tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	case game.Absent:
		return tcell.StyleDefault.Background(tcell.ColorDarkGray).Foreground(tcell.ColorWhite)
	default:
		return styleDefault
	}
}

// UI draws engine snapshots and forwards key presses. It never mutates game
// state directly.
type UI struct {
	screen tcell.Screen
	eng    *game.Engine
	stats  store.Store
	title  string
}

// NewUI wires the screen to eng. Timer-driven engine changes wake the event
// loop through an interrupt event.
func NewUI(screen tcell.Screen, eng *game.Engine, stats store.Store, title string) *UI {
	u := &UI{screen: screen, eng: eng, stats: stats, title: title}
	eng.Subscribe(func(game.GameState) {
		_ = screen.PostEvent(tcell.NewEventInterrupt(nil))
	})
	return u
}

// Run processes events until the player quits.
func (u *UI) Run() {
	u.draw(u.eng.Snapshot())
	for {
		switch ev := u.screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			u.screen.Sync()
		case *tcell.EventKey:
			if !u.handleKey(ev) {
				return
			}
		}
		u.draw(u.eng.Snapshot())
	}
}

// handleKey returns false when the player asked to quit.
func (u *UI) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyCtrlN:
		u.eng.Reset()
		return true
	}
	if ev.Key() == tcell.KeyEnter && u.eng.Phase() != game.InProgress {
		u.eng.Reset()
		return true
	}
	if tok, ok := keyToken(ev.Key(), ev.Rune()); ok {
		u.eng.SubmitKey(tok)
	}
	return true
}

// keyToken translates a terminal key into the engine's input vocabulary.
func keyToken(k tcell.Key, r rune) (string, bool) {
	switch k {
	case tcell.KeyEnter:
		return game.KeyEnter, true
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		return game.KeyBackspace, true
	case tcell.KeyRune:
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r >= 'a' && r <= 'z' {
			return string(r), true
		}
	}
	return "", false
}

func (u *UI) draw(s game.GameState) {
	u.screen.Clear()
	u.text(0, 0, u.title, styleTitle)

	if !s.Started {
		u.text(0, boardTop, "Press Enter to start, Esc to quit.", styleDefault)
		u.screen.Show()
		return
	}

	for row := range s.Attempts {
		a := s.Attempts[row]
		for col := 0; col < game.WordLength; col++ {
			ch := ' '
			if l := a.Letters[col]; l != game.Empty {
				ch = rune(l) - 'a' + 'A'
			}
			style := statusStyle(a.Matches[col])
			x, y := col*tileWidth, boardTop+row
			u.screen.SetContent(x, y, '[', nil, style)
			u.screen.SetContent(x+1, y, ch, nil, style)
			u.screen.SetContent(x+2, y, ']', nil, style)
		}
	}

	kbTop := boardTop + game.MaxAttempts + 1
	for i, keys := range keyboardRows {
		for j, k := range keys {
			style := statusStyle(s.KeyStatus[game.Letter(k)])
			u.screen.SetContent(i+j*2, kbTop+i, k-'a'+'A', nil, style)
		}
	}

	msgY := kbTop + len(keyboardRows) + 1
	msg, style := statusLine(s)
	u.text(0, msgY, msg, style)
	if s.Ended {
		u.text(0, msgY+1, u.summaryLine(), styleHint)
		u.text(0, msgY+2, "Enter or Ctrl-N for a new game, Esc to quit.", styleHint)
	}
	u.screen.Show()
}

// statusLine is the one-line message under the keyboard.
func statusLine(s game.GameState) (string, tcell.Style) {
	switch {
	case s.Won:
		return fmt.Sprintf("Solved in %d/%d!", s.CompletedAttempts(), game.MaxAttempts), styleTitle
	case s.Ended:
		return "Out of guesses. The word was " + strings.ToUpper(s.Solution) + ".", styleWarn
	case s.InvalidGuess:
		return "Not in word list", styleWarn
	default:
		return fmt.Sprintf("Guess %d of %d", min(s.CurrentAttemptIndex+1, game.MaxAttempts), game.MaxAttempts), styleHint
	}
}

func (u *UI) summaryLine() string {
	sum, err := u.stats.Summary(context.Background())
	if err != nil {
		log.Warn().Err(err).Msg("load summary")
		return ""
	}
	pct := 0
	if sum.Played > 0 {
		pct = sum.Wins * 100 / sum.Played
	}
	return fmt.Sprintf("Played %d  Win %d%%  Streak %d  Best %d", sum.Played, pct, sum.CurrentStreak, sum.MaxStreak)
}

func (u *UI) text(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		u.screen.SetContent(x+i, y, r, nil, style)
	}
}
