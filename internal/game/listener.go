package game

import "github.com/ayusman/janken/internal/gesture"

// CountdownDone is the terminal countdown value sent once the count reaches zero.
const CountdownDone = 0

// ResetReason says why a round was cleared.
type ResetReason string

const (
	ResetPlayAgain    ResetReason = "play_again"
	ResetNewGame      ResetReason = "new_game"
	ResetAborted      ResetReason = "aborted"      // hand or gesture lost when the countdown ended
	ResetInconsistent ResetReason = "inconsistent" // reveal reached without a locked gesture
)

// Status is the presentation state pushed to UI collaborators.
type Status struct {
	Phase     Phase           `json:"phase"`
	Text      string          `json:"text"`
	Player    gesture.Gesture `json:"player"`
	Computer  gesture.Gesture `json:"computer"`
	Progress  int             `json:"progress"`
	Threshold int             `json:"threshold"`
}

// Listener receives the round's outputs. Methods are called from the
// goroutine that owns the Round and must not block for long.
type Listener interface {
	HandPresence(visible bool)
	Status(s Status)
	Countdown(remaining int)
	Reveal(r Result)
	Reset(reason ResetReason)
}

// NopListener ignores everything. Embed it to implement only some methods.
type NopListener struct{}

func (NopListener) HandPresence(bool) {}
func (NopListener) Status(Status)     {}
func (NopListener) Countdown(int)     {}
func (NopListener) Reveal(Result)     {}
func (NopListener) Reset(ResetReason) {}

// MultiListener fans every call out to each listener in order.
type MultiListener []Listener

func (m MultiListener) HandPresence(visible bool) {
	for _, l := range m {
		l.HandPresence(visible)
	}
}

func (m MultiListener) Status(s Status) {
	for _, l := range m {
		l.Status(s)
	}
}

func (m MultiListener) Countdown(remaining int) {
	for _, l := range m {
		l.Countdown(remaining)
	}
}

func (m MultiListener) Reveal(r Result) {
	for _, l := range m {
		l.Reveal(r)
	}
}

func (m MultiListener) Reset(reason ResetReason) {
	for _, l := range m {
		l.Reset(reason)
	}
}

// OutcomeText is the headline shown for a finished round.
func OutcomeText(o Outcome) string {
	switch o {
	case Win:
		return "You win!"
	case Lose:
		return "You lose!"
	case Draw:
		return "Draw!"
	}
	return ""
}
