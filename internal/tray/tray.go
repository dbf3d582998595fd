// Package tray shows the running score in the system tray.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

// Tray is a system tray icon that follows the game. It implements
// game.Listener; menu updates made before the tray is ready are applied
// once it is.
type Tray struct {
	game.NopListener

	onPlayAgain func()
	onNewGame   func()
	onOpen      func()
	onQuit      func()
	mu          sync.RWMutex

	score  game.Score
	status string
	last   string

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray with a zero score.
func New() *Tray {
	return &Tray{
		status: "Show your hand",
		last:   lastLine(nil),
	}
}

// OnPlayAgain sets the callback for the "Play again" menu item.
func (t *Tray) OnPlayAgain(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onPlayAgain = fn
}

// OnNewGame sets the callback for the "New game" menu item.
func (t *Tray) OnNewGame(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onNewGame = fn
}

// OnOpen sets the callback for the "Open in browser" menu item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	t.mu.Lock()
	systray.SetTitle(scoreTitle(t.score))
	systray.SetTooltip("Janken: rock, paper, scissors")

	t.menuStatus = systray.AddMenuItem(t.status, "Round status")
	t.menuStatus.Disable()
	t.menuLast = systray.AddMenuItem(t.last, "Last round")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuPlayAgain := systray.AddMenuItem("Play again", "Start the next round")
	menuNewGame := systray.AddMenuItem("New game", "Reset the score")
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in browser...", "Open the game in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Janken")

	go func() {
		for {
			select {
			case <-menuPlayAgain.ClickedCh:
				t.handle(func() func() { return t.onPlayAgain })
			case <-menuNewGame.ClickedCh:
				t.handle(func() func() { return t.onNewGame })
			case <-menuOpen.ClickedCh:
				t.handle(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handle(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handle reads a callback under the lock and calls it outside the lock.
func (t *Tray) handle(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) Status(s game.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = s.Text
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(s.Text)
	}
}

func (t *Tray) Reveal(r game.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.score = r.Score
	t.last = lastLine(&r)
	t.refresh()
}

func (t *Tray) Reset(reason game.ResetReason) {
	if reason != game.ResetNewGame {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.score = game.Score{}
	t.last = lastLine(nil)
	t.refresh()
}

// refresh pushes score and last round to the menu. Caller holds mu.
func (t *Tray) refresh() {
	if t.menuLast == nil {
		return
	}
	systray.SetTitle(scoreTitle(t.score))
	t.menuLast.SetTitle(t.last)
}

// Score returns the score last shown.
func (t *Tray) Score() game.Score {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.score
}

// Text returns the status and last-round lines last shown.
func (t *Tray) Text() (status, last string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status, t.last
}

func scoreTitle(s game.Score) string {
	return fmt.Sprintf("%s %d : %d", gesture.Rock.Emoji(), s.Player, s.Computer)
}

func lastLine(r *game.Result) string {
	if r == nil {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %s vs %s (%s)", r.Player, r.Computer, r.Outcome)
}
