// Package tui renders the game in a terminal.
package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

// Commands are the player actions available from the keyboard.
type Commands interface {
	PlayAgain() bool
	NewGame() bool
}

var (
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleText   = tcell.StyleDefault
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWin    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLose   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDraw   = tcell.StyleDefault.Foreground(tcell.ColorBlue).Bold(true)
	styleCount  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHandOn = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// UI draws round events to a tcell screen and maps keys to commands. It
// implements game.Listener.
type UI struct {
	screen tcell.Screen
	cmds   Commands

	redraw chan struct{}

	mu        sync.Mutex
	visible   bool
	status    game.Status
	remaining int
	last      *game.Result
	score     game.Score
}

// New creates a UI for screen. The screen is initialised by Run.
func New(screen tcell.Screen, cmds Commands) *UI {
	return &UI{
		screen: screen,
		cmds:   cmds,
		redraw: make(chan struct{}, 1),
		status: game.Status{Phase: game.PhaseIdle, Text: "Show your hand"},
	}
}

// Run draws until ctx is cancelled or the player quits with q, Esc or
// Ctrl-C. The screen is finalised on return.
func (u *UI) Run(ctx context.Context) error {
	if err := u.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer u.screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := u.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	u.draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !u.handleEvent(ev) {
				return nil
			}
		case <-u.redraw:
			u.draw()
		}
	}
}

// handleEvent reports false when the player asked to quit.
func (u *UI) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case ' ', 'r', 'R':
				u.cmds.PlayAgain()
			case 'n', 'N':
				u.cmds.NewGame()
			}
		}
	case *tcell.EventResize:
		u.screen.Sync()
		u.draw()
	}
	return true
}

func (u *UI) requestRedraw() {
	select {
	case u.redraw <- struct{}{}:
	default:
	}
}

func (u *UI) HandPresence(visible bool) {
	u.mu.Lock()
	u.visible = visible
	u.mu.Unlock()
	u.requestRedraw()
}

func (u *UI) Status(s game.Status) {
	u.mu.Lock()
	u.status = s
	u.mu.Unlock()
	u.requestRedraw()
}

func (u *UI) Countdown(remaining int) {
	u.mu.Lock()
	u.remaining = remaining
	u.mu.Unlock()
	u.requestRedraw()
}

func (u *UI) Reveal(r game.Result) {
	u.mu.Lock()
	u.last = &r
	u.score = r.Score
	u.mu.Unlock()
	u.requestRedraw()
}

func (u *UI) Reset(reason game.ResetReason) {
	u.mu.Lock()
	u.last = nil
	u.remaining = 0
	if reason == game.ResetNewGame {
		u.score = game.Score{}
	}
	u.mu.Unlock()
	u.requestRedraw()
}

func (u *UI) draw() {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.screen.Clear()

	y := 1
	u.text(2, y, styleTitle, "JANKEN  rock / paper / scissors")
	y += 2

	if u.visible {
		u.text(2, y, styleHandOn, "Hand:     visible")
	} else {
		u.text(2, y, styleDim, "Hand:     not visible")
	}
	y++
	u.text(2, y, styleText, "Status:   "+u.status.Text)
	y++
	if u.status.Phase == game.PhaseTracking && u.status.Threshold > 0 {
		u.text(2, y, styleText, "Lock:     "+progressBar(u.status.Progress, u.status.Threshold, 20))
	}
	y++
	if u.status.Phase == game.PhaseCountdown {
		u.text(2, y, styleCount, fmt.Sprintf("Countdown: %d", u.remaining))
	}
	y += 2

	player, computer := gesture.Unknown, gesture.Unknown
	if u.last != nil {
		player, computer = u.last.Player, u.last.Computer
	}
	u.text(2, y, styleText, fmt.Sprintf("You:      %s", player))
	y++
	u.text(2, y, styleText, fmt.Sprintf("Computer: %s", computer))
	y += 2

	if u.last != nil {
		u.text(2, y, outcomeStyle(u.last.Outcome), game.OutcomeText(u.last.Outcome))
	}
	y += 2

	u.text(2, y, styleText, fmt.Sprintf("Score:    You %d : %d Computer", u.score.Player, u.score.Computer))
	y += 2
	u.text(2, y, styleDim, "[space] play again  [n] new game  [q] quit")

	u.screen.Show()
}

func (u *UI) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		u.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func outcomeStyle(o game.Outcome) tcell.Style {
	switch o {
	case game.Win:
		return styleWin
	case game.Lose:
		return styleLose
	}
	return styleDraw
}

func progressBar(n, total, width int) string {
	if n > total {
		n = total
	}
	filled := n * width / total
	bar := make([]rune, width)
	for i := range bar {
		bar[i] = '-'
		if i < filled {
			bar[i] = '#'
		}
	}
	return fmt.Sprintf("[%s] %d/%d", string(bar), n, total)
}
