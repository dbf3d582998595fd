// Package game implements the rock-paper-scissors round state machine: it
// tracks how long a gesture has been held, runs the countdown, draws the
// computer's move and keeps score.
package game

import (
	"fmt"
	"math/rand"

	"github.com/ayusman/janken/internal/gesture"
)

// Config holds round tuning.
type Config struct {
	// LockThreshold is how many consecutive identical classifications start
	// the countdown.
	LockThreshold int
	// CountdownSeconds is where the countdown starts.
	CountdownSeconds int
}

// DefaultConfig returns the standard round settings.
func DefaultConfig() Config {
	return Config{
		LockThreshold:    15,
		CountdownSeconds: 3,
	}
}

// Validate reports an error for non-positive settings.
func (c Config) Validate() error {
	if c.LockThreshold < 1 {
		return fmt.Errorf("lock threshold must be positive, got %d", c.LockThreshold)
	}
	if c.CountdownSeconds < 1 {
		return fmt.Errorf("countdown seconds must be positive, got %d", c.CountdownSeconds)
	}
	return nil
}

// Phase is the coarse round state shown to the player.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseTracking  Phase = "tracking"
	PhaseCountdown Phase = "countdown"
	PhaseRevealing Phase = "revealing"
	PhaseFinished  Phase = "finished"
)

// State is the mutable per-round record.
// Locked implies RoundInProgress; Reset clears both.
type State struct {
	PendingGesture   gesture.Gesture `json:"pending_gesture"`
	StableFrameCount int             `json:"stable_frame_count"`
	Locked           bool            `json:"locked"`
	RoundInProgress  bool            `json:"round_in_progress"`
	HandVisible      bool            `json:"hand_visible"`
}

// Outcome is the player's result for one round.
type Outcome string

const (
	Win  Outcome = "win"
	Lose Outcome = "lose"
	Draw Outcome = "draw"
)

// Decide scores player against computer.
func Decide(player, computer gesture.Gesture) Outcome {
	switch {
	case player == computer:
		return Draw
	case player.Beats(computer):
		return Win
	default:
		return Lose
	}
}

// Score is the session tally.
type Score struct {
	Player   int `json:"player"`
	Computer int `json:"computer"`
}

// Apply adds one round's outcome to the tally.
func (s *Score) Apply(o Outcome) {
	switch o {
	case Win:
		s.Player++
	case Lose:
		s.Computer++
	}
}

// Result is what the reveal discloses.
type Result struct {
	Player   gesture.Gesture `json:"player"`
	Computer gesture.Gesture `json:"computer"`
	Outcome  Outcome         `json:"outcome"`
	Score    Score           `json:"score"`
}

// RandomGesture draws uniformly from the playable gestures. A nil rng uses
// the package-level source.
func RandomGesture(rng *rand.Rand) gesture.Gesture {
	if rng == nil {
		return gesture.All[rand.Intn(len(gesture.All))]
	}
	return gesture.All[rng.Intn(len(gesture.All))]
}
