package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/janken/internal/game"
	"github.com/ayusman/janken/internal/gesture"
)

// Round is one revealed round.
type Round struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"session_id"`
	Player    gesture.Gesture `json:"player"`
	Computer  gesture.Gesture `json:"computer"`
	Outcome   game.Outcome    `json:"outcome"`
	CreatedAt time.Time       `json:"created_at"`
}

// RoundRepository provides access to the rounds table.
type RoundRepository struct {
	db *sql.DB
}

// Rounds returns the round repository for this store.
func (s *Store) Rounds() *RoundRepository {
	return &RoundRepository{db: s.db}
}

// Create appends a round. The session must exist.
func (r *RoundRepository) Create(rd *Round) error {
	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.Exec(
		`INSERT INTO rounds (session_id, player, computer, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rd.SessionID, string(rd.Player), string(rd.Computer), string(rd.Outcome), rd.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	rd.ID = id
	return nil
}

// ListBySession returns a session's rounds in play order.
func (r *RoundRepository) ListBySession(sessionID string) ([]*Round, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, player, computer, outcome, created_at
		 FROM rounds WHERE session_id = ? ORDER BY id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*Round
	for rows.Next() {
		rd := &Round{}
		var player, computer, outcome string
		if err := rows.Scan(&rd.ID, &rd.SessionID, &player, &computer, &outcome, &rd.CreatedAt); err != nil {
			return nil, err
		}
		rd.Player = gesture.Gesture(player)
		rd.Computer = gesture.Gesture(computer)
		rd.Outcome = game.Outcome(outcome)
		rounds = append(rounds, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}
