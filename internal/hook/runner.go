package hook

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/logger"
)

const queueSize = 32

// Runner is a game.Listener that hands round events to hooks on its own
// goroutine, so a slow hook never holds up the session. Events arriving
// while the queue is full are dropped.
type Runner struct {
	game.NopListener

	manager  *Manager
	executor *Executor
	session  func() string
	log      *slog.Logger

	queue chan Request
	wg    sync.WaitGroup
}

// NewRunner creates a Runner. session, if set, names the stored session
// included in each request.
func NewRunner(m *Manager, e *Executor, session func() string) *Runner {
	return &Runner{
		manager:  m,
		executor: e,
		session:  session,
		log:      logger.With("component", "hooks"),
		queue:    make(chan Request, queueSize),
	}
}

// Run executes queued events until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.drain()
			return
		case req := <-r.queue:
			r.dispatch(ctx, req)
			r.wg.Done()
		}
	}
}

// Wait blocks until every queued event has been handled.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// drain discards events queued after shutdown.
func (r *Runner) drain() {
	for {
		select {
		case <-r.queue:
			r.wg.Done()
		default:
			return
		}
	}
}

func (r *Runner) Reveal(res game.Result) {
	r.enqueue(Request{Event: EventReveal, Result: &res, Score: res.Score})
}

func (r *Runner) Reset(reason game.ResetReason) {
	if reason != game.ResetNewGame {
		return
	}
	r.enqueue(Request{Event: EventNewGame})
}

func (r *Runner) enqueue(req Request) {
	if r.session != nil {
		req.SessionID = r.session()
	}

	r.wg.Add(1)
	select {
	case r.queue <- req:
	default:
		r.wg.Done()
		r.log.Warn("hook queue full, event dropped", "event", req.Event)
	}
}

func (r *Runner) dispatch(ctx context.Context, req Request) {
	for _, h := range r.manager.For(req.Event) {
		resp, err := r.executor.Execute(ctx, h, &req)
		if err != nil {
			r.log.Warn("hook error", "hook", h.Manifest.Name, "event", req.Event, "error", err)
			continue
		}
		if !resp.Success {
			r.log.Warn("hook reported failure", "hook", h.Manifest.Name, "event", req.Event, "error", resp.Error)
			continue
		}
		r.log.Debug("hook ran", "hook", h.Manifest.Name, "event", req.Event)
	}
}
