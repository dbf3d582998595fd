package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per game; scores mirror the in-memory tally.
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			player_score INTEGER NOT NULL DEFAULT 0,
			computer_score INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS rounds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			player TEXT NOT NULL CHECK(player IN ('rock', 'paper', 'scissors')),
			computer TEXT NOT NULL CHECK(computer IN ('rock', 'paper', 'scissors')),
			outcome TEXT NOT NULL CHECK(outcome IN ('win', 'lose', 'draw')),
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_rounds_session_id ON rounds(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
