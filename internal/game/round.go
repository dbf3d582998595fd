package game

import (
	"fmt"
	"math/rand"

	"github.com/ayusman/janken/internal/gesture"
)

// Round is the state machine for one player against the computer.
//
// A Round is not safe for concurrent use. Exactly one goroutine owns it and
// calls Observe, PlayAgain and NewGame; the Countdown must dispatch its
// callbacks onto that same goroutine.
type Round struct {
	cfg       Config
	countdown *Countdown
	rng       *rand.Rand
	listener  Listener

	state     State
	score     Score
	phase     Phase
	remaining int
	last      *Result
}

// Snapshot is a copy of everything the round exposes.
type Snapshot struct {
	State     State   `json:"state"`
	Score     Score   `json:"score"`
	Phase     Phase   `json:"phase"`
	Remaining int     `json:"remaining"`
	Threshold int     `json:"threshold"`
	Last      *Result `json:"last,omitempty"`
}

// NewRound creates a Round in the idle phase with a zero score.
// A nil listener discards output.
func NewRound(cfg Config, countdown *Countdown, rng *rand.Rand, l Listener) *Round {
	if l == nil {
		l = NopListener{}
	}
	if countdown == nil {
		countdown = NewCountdown(nil, nil)
	}
	return &Round{
		cfg:       cfg,
		countdown: countdown,
		rng:       rng,
		listener:  l,
		phase:     PhaseIdle,
	}
}

// Observe feeds one frame's classification. handVisible is false when the
// detector saw no hand; g is gesture.None for an unclassifiable pose.
// While a round is in progress only hand presence is recorded.
func (r *Round) Observe(handVisible bool, g gesture.Gesture) {
	if r.state.HandVisible != handVisible {
		r.state.HandVisible = handVisible
		r.listener.HandPresence(handVisible)
	}

	if r.state.RoundInProgress {
		return
	}

	if !handVisible || !g.Valid() {
		if r.state.PendingGesture != gesture.None {
			r.clearTracking()
		}
		if r.phase != PhaseIdle {
			r.setPhase(PhaseIdle)
		}
		return
	}

	if g == r.state.PendingGesture {
		r.state.StableFrameCount++
	} else {
		r.state.PendingGesture = g
		r.state.StableFrameCount = 1
	}

	if r.state.StableFrameCount >= r.cfg.LockThreshold && !r.countdown.Running() {
		r.startCountdown()
		return
	}

	r.setPhase(PhaseTracking)
}

// PlayAgain clears the finished (or any in-flight) round and keeps the score.
func (r *Round) PlayAgain() {
	r.reset(ResetPlayAgain)
}

// NewGame clears the round and zeroes the score.
func (r *Round) NewGame() {
	r.score = Score{}
	r.reset(ResetNewGame)
}

// Snapshot returns a copy of the current state.
func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		State:     r.state,
		Score:     r.score,
		Phase:     r.phase,
		Remaining: r.remaining,
		Threshold: r.cfg.LockThreshold,
	}
	if r.last != nil {
		last := *r.last
		s.Last = &last
	}
	return s
}

func (r *Round) startCountdown() {
	r.state.RoundInProgress = true
	r.remaining = r.cfg.CountdownSeconds
	r.setPhase(PhaseCountdown)

	r.countdown.Start(r.cfg.CountdownSeconds, r.onTick, r.onCountdownDone)
}

func (r *Round) onTick(remaining int) {
	r.remaining = remaining
	r.listener.Countdown(remaining)
}

func (r *Round) onCountdownDone() {
	r.remaining = CountdownDone
	r.listener.Countdown(CountdownDone)

	if !r.state.HandVisible || !r.state.PendingGesture.Valid() {
		r.reset(ResetAborted)
		return
	}

	r.state.Locked = true
	r.reveal()
}

func (r *Round) reveal() {
	if !r.state.Locked || !r.state.RoundInProgress || !r.state.PendingGesture.Valid() {
		r.reset(ResetInconsistent)
		return
	}

	r.setPhase(PhaseRevealing)

	player := r.state.PendingGesture
	computer := RandomGesture(r.rng)
	outcome := Decide(player, computer)
	r.score.Apply(outcome)

	result := Result{
		Player:   player,
		Computer: computer,
		Outcome:  outcome,
		Score:    r.score,
	}
	r.last = &result

	r.listener.Reveal(result)
	r.setPhase(PhaseFinished)
}

// clearTracking drops the candidate and its streak.
func (r *Round) clearTracking() {
	r.state.PendingGesture = gesture.None
	r.state.StableFrameCount = 0
}

func (r *Round) reset(reason ResetReason) {
	r.countdown.Cancel()

	r.clearTracking()
	r.state.Locked = false
	r.state.RoundInProgress = false
	r.remaining = 0
	r.last = nil

	r.listener.Reset(reason)
	r.setPhase(PhaseIdle)
}

func (r *Round) setPhase(p Phase) {
	r.phase = p
	r.listener.Status(r.status())
}

func (r *Round) status() Status {
	s := Status{
		Phase:     r.phase,
		Player:    gesture.Unknown,
		Computer:  gesture.Unknown,
		Progress:  r.state.StableFrameCount,
		Threshold: r.cfg.LockThreshold,
	}

	switch r.phase {
	case PhaseIdle:
		s.Text = "Show your hand"
		if r.state.HandVisible {
			s.Text = "Make rock, paper or scissors"
		}
	case PhaseTracking:
		s.Text = fmt.Sprintf("Hold still... %d/%d", r.state.StableFrameCount, r.cfg.LockThreshold)
	case PhaseCountdown:
		s.Text = "Get ready!"
	case PhaseRevealing:
		s.Text = "Locked! Revealing..."
	case PhaseFinished:
		if r.last != nil {
			s.Player = r.last.Player
			s.Computer = r.last.Computer
			s.Text = OutcomeText(r.last.Outcome)
		}
	}
	return s
}
