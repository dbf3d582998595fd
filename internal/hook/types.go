// Package hook runs user programs when rounds finish. Each hook lives in its
// own directory under the hooks dir with a hook.json manifest naming the
// executable and the events it wants.
package hook

import "github.com/ayusman/janken/internal/game"

// Events a hook can subscribe to.
const (
	EventReveal  = "reveal"
	EventNewGame = "new_game"
)

// Manifest describes a hook.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
}

// Wants reports whether the hook subscribed to event. A manifest without
// events receives all of them.
func (m Manifest) Wants(event string) bool {
	if len(m.Events) == 0 {
		return true
	}
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Request is written to the hook's stdin as JSON.
type Request struct {
	Event     string       `json:"event"`
	SessionID string       `json:"session_id,omitempty"`
	Result    *game.Result `json:"result,omitempty"`
	Score     game.Score   `json:"score"`
}

// Response is read from the hook's stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}
