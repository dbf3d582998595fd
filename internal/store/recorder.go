package store

import (
	"log/slog"
	"sync"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/logger"
)

// Recorder is a game.Listener that writes every reveal to the store.
// Write failures are logged and otherwise ignored.
type Recorder struct {
	game.NopListener

	store *Store
	log   *slog.Logger

	mu        sync.Mutex
	sessionID string
}

// NewRecorder starts a session row and returns a recorder bound to it.
func NewRecorder(s *Store) (*Recorder, error) {
	r := &Recorder{
		store: s,
		log:   logger.With("component", "recorder"),
	}
	if err := r.startSession(); err != nil {
		return nil, err
	}
	return r, nil
}

// SessionID returns the session currently being recorded.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

func (r *Recorder) startSession() error {
	sess := &Session{}
	if err := r.store.Sessions().Create(sess); err != nil {
		return err
	}

	r.mu.Lock()
	r.sessionID = sess.ID
	r.mu.Unlock()

	r.log.Info("session started", "session", sess.ID)
	return nil
}

func (r *Recorder) Reveal(res game.Result) {
	id := r.SessionID()

	rd := &Round{
		SessionID: id,
		Player:    res.Player,
		Computer:  res.Computer,
		Outcome:   res.Outcome,
	}
	if err := r.store.Rounds().Create(rd); err != nil {
		r.log.Error("failed to record round", "session", id, "error", err)
		return
	}
	if err := r.store.Sessions().UpdateScore(id, res.Score.Player, res.Score.Computer); err != nil {
		r.log.Error("failed to update score", "session", id, "error", err)
	}
}

func (r *Recorder) Reset(reason game.ResetReason) {
	if reason != game.ResetNewGame {
		return
	}
	if err := r.startSession(); err != nil {
		r.log.Error("failed to start session", "error", err)
	}
}
