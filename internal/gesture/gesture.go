// Package gesture classifies hand landmarks into rock, paper or scissors.
package gesture

import (
	"fmt"
	"strings"
)

// Gesture is a symbolic hand shape. The zero value None means the pose could
// not be classified.
type Gesture string

const (
	None     Gesture = ""
	Rock     Gesture = "rock"
	Paper    Gesture = "paper"
	Scissors Gesture = "scissors"

	// Unknown is the placeholder identifier shown while a real choice is hidden.
	Unknown Gesture = "unknown"
)

// All lists the playable gestures in a fixed order.
var All = [...]Gesture{Rock, Paper, Scissors}

// Valid reports whether g is one of the three playable gestures.
func (g Gesture) Valid() bool {
	switch g {
	case Rock, Paper, Scissors:
		return true
	}
	return false
}

// Beats reports whether g defeats other under the cyclic rule.
func (g Gesture) Beats(other Gesture) bool {
	switch g {
	case Rock:
		return other == Scissors
	case Scissors:
		return other == Paper
	case Paper:
		return other == Rock
	}
	return false
}

// Emoji returns a display glyph for terminal and tray surfaces.
func (g Gesture) Emoji() string {
	switch g {
	case Rock:
		return "✊"
	case Paper:
		return "✋"
	case Scissors:
		return "✌"
	}
	return "?"
}

func (g Gesture) String() string {
	if g == None {
		return "none"
	}
	return string(g)
}

// ParseGesture converts a wire name into a playable Gesture.
func ParseGesture(s string) (Gesture, error) {
	g := Gesture(strings.ToLower(strings.TrimSpace(s)))
	if !g.Valid() {
		return None, fmt.Errorf("unknown gesture %q", s)
	}
	return g, nil
}
