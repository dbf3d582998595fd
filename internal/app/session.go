package app

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/ayusman/janken/internal/clock"
	"github.com/ayusman/janken/internal/detector"
	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
	"github.com/ayusman/janken/internal/logger"
)

// DefaultQueueSize bounds the number of pending session events.
const DefaultQueueSize = 16

// FrameObserver sees the classification of every processed frame.
type FrameObserver interface {
	ObserveFrame(g gesture.Gesture)
}

// SessionConfig configures a Session. Zero values select defaults.
type SessionConfig struct {
	Game       game.Config
	Thresholds gesture.Thresholds
	Clock      clock.Clock
	Rand       *rand.Rand
	Observer   FrameObserver
	QueueSize  int
}

// Session owns a game.Round and serializes every input to it (frames,
// countdown steps and player commands) on one goroutine started by Run.
type Session struct {
	th        gesture.Thresholds
	observer  FrameObserver
	listeners *Listeners
	log       *slog.Logger

	countdown *game.Countdown
	events    chan func()
	done      chan struct{}
	closeOnce sync.Once

	// mu is held while an event runs so Snapshot never sees a half-applied
	// transition.
	mu    sync.Mutex
	round *game.Round
}

// NewSession creates a session. Listeners added before Run receive every
// round event.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Game == (game.Config{}) {
		cfg.Game = game.DefaultConfig()
	}
	if cfg.Thresholds == (gesture.Thresholds{}) {
		cfg.Thresholds = gesture.DefaultThresholds()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}

	s := &Session{
		th:        cfg.Thresholds,
		observer:  cfg.Observer,
		listeners: &Listeners{},
		log:       logger.With("component", "session"),
		events:    make(chan func(), cfg.QueueSize),
		done:      make(chan struct{}),
	}
	s.countdown = game.NewCountdown(cfg.Clock, s.dispatch)
	s.round = game.NewRound(cfg.Game, s.countdown, cfg.Rand, s.listeners)
	return s
}

// AddListener registers a collaborator for round events.
func (s *Session) AddListener(l game.Listener) {
	s.listeners.Add(l)
}

// Run processes events until ctx is cancelled. It must be called once.
func (s *Session) Run(ctx context.Context) error {
	defer s.closeOnce.Do(func() { close(s.done) })

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.countdown.Cancel()
			s.mu.Unlock()
			return nil
		case f := <-s.events:
			s.mu.Lock()
			f()
			s.mu.Unlock()
		}
	}
}

// SubmitFrame queues one frame's detections. It never blocks: when the
// queue is full the frame is dropped and false is returned. Only the first
// hand is used.
func (s *Session) SubmitFrame(hands []detector.HandLandmarks) bool {
	if len(hands) == 0 {
		return s.SubmitPoints(nil)
	}
	return s.SubmitPoints(hands[0].Points[:])
}

// SubmitPoints queues the landmarks of a single hand. nil means no hand
// was seen; a non-nil list with fewer than 21 points is a visible hand
// that cannot be classified.
func (s *Session) SubmitPoints(points []detector.Point3D) bool {
	if points != nil {
		cp := make([]detector.Point3D, len(points))
		copy(cp, points)
		points = cp
	}

	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.events <- func() { s.observe(points) }:
		return true
	default:
		s.log.Debug("frame dropped, queue full")
		return false
	}
}

// PlayAgain clears the current round and waits until it has been applied.
func (s *Session) PlayAgain() bool {
	return s.call(s.round.PlayAgain)
}

// NewGame clears the round and the score and waits until it has been applied.
func (s *Session) NewGame() bool {
	return s.call(s.round.NewGame)
}

// Snapshot returns the state as of the last completed event.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round.Snapshot()
}

// Sync waits until every event queued before the call has run.
func (s *Session) Sync() bool {
	return s.call(func() {})
}

func (s *Session) observe(points []detector.Point3D) {
	visible := points != nil
	g := gesture.None
	if visible {
		g = gesture.Classify(points, s.th)
	}
	if s.observer != nil {
		s.observer.ObserveFrame(g)
	}
	s.round.Observe(visible, g)
}

// dispatch posts countdown steps onto the event goroutine.
func (s *Session) dispatch(f func()) {
	select {
	case s.events <- f:
	case <-s.done:
	}
}

// call runs f on the event goroutine and waits for it. It reports false
// if the session has stopped.
func (s *Session) call(f func()) bool {
	finished := make(chan struct{})
	wrapped := func() {
		f()
		close(finished)
	}

	select {
	case s.events <- wrapped:
	case <-s.done:
		return false
	}

	select {
	case <-finished:
		return true
	case <-s.done:
		return false
	}
}

// Listeners is a game.Listener that fans out to a set that may grow while
// the session runs.
type Listeners struct {
	mu   sync.RWMutex
	list game.MultiListener
}

func (ls *Listeners) Add(l game.Listener) {
	ls.mu.Lock()
	ls.list = append(ls.list, l)
	ls.mu.Unlock()
}

func (ls *Listeners) snapshot() game.MultiListener {
	ls.mu.RLock()
	defer ls.mu.RUnlock()
	return ls.list
}

func (ls *Listeners) HandPresence(visible bool) { ls.snapshot().HandPresence(visible) }
func (ls *Listeners) Status(st game.Status)     { ls.snapshot().Status(st) }
func (ls *Listeners) Countdown(remaining int)   { ls.snapshot().Countdown(remaining) }
func (ls *Listeners) Reveal(r game.Result)      { ls.snapshot().Reveal(r) }
func (ls *Listeners) Reset(reason game.ResetReason) {
	ls.snapshot().Reset(reason)
}
