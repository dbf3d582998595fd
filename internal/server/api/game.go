package api

import (
	"net/http"

	"github.com/ayusman/janken/internal/game"
)

// Game is the session surface the HTTP API drives.
type Game interface {
	PlayAgain() bool
	NewGame() bool
	Snapshot() game.Snapshot
}

// GameHandler serves the current round and the player commands.
type GameHandler struct {
	game Game
}

func NewGameHandler(g Game) *GameHandler {
	return &GameHandler{game: g}
}

// State handles GET /api/state.
func (h *GameHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

// PlayAgain handles POST /api/play-again and returns the new state.
func (h *GameHandler) PlayAgain(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.game.PlayAgain)
}

// NewGame handles POST /api/new-game and returns the new state.
func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, h.game.NewGame)
}

func (h *GameHandler) command(w http.ResponseWriter, r *http.Request, run func() bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !run() {
		writeError(w, http.StatusServiceUnavailable, "Game session is not running")
		return
	}
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}
