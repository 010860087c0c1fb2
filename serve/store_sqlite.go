package serve

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Init creates the schema tables.
func (s *SQLiteStore) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS turns (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		utterance   TEXT NOT NULL,
		label       TEXT NOT NULL DEFAULT '',
		intent      TEXT NOT NULL DEFAULT '',
		reply       TEXT NOT NULL DEFAULT '',
		outcome     TEXT NOT NULL DEFAULT '',
		latency_ms  INTEGER NOT NULL DEFAULT 0,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		type        TEXT NOT NULL,
		session_id  TEXT NOT NULL DEFAULT '',
		timestamp   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		data        TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, seq);
	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
	CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertTurn records one conversation turn.
func (s *SQLiteStore) InsertTurn(t Turn) error {
	_, err := s.db.Exec(
		`INSERT INTO turns (id, session_id, seq, utterance, label, intent, reply, outcome, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.Seq, t.Utterance, t.Label, t.Intent, t.Reply, t.Outcome, t.LatencyMs, t.CreatedAt,
	)
	return err
}

// ListTurns returns a session's turns, oldest first.
func (s *SQLiteStore) ListTurns(sessionID string) ([]Turn, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, seq, utterance, label, intent, reply, outcome, latency_ms, created_at
		 FROM turns WHERE session_id = ? ORDER BY seq ASC`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Seq, &t.Utterance, &t.Label, &t.Intent,
			&t.Reply, &t.Outcome, &t.LatencyMs, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// InsertEvent records a session lifecycle event.
func (s *SQLiteStore) InsertEvent(e StoreEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO events (type, session_id, timestamp, data) VALUES (?, ?, ?, ?)`,
		e.Type, e.SessionID, e.Timestamp, e.Data,
	)
	return err
}

// ListEvents returns recent events, newest first.
func (s *SQLiteStore) ListEvents(limit int) ([]StoreEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, type, session_id, timestamp, data
		 FROM events ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []StoreEvent
	for rows.Next() {
		var e StoreEvent
		if err := rows.Scan(&e.ID, &e.Type, &e.SessionID, &e.Timestamp, &e.Data); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// resettable lists the tables CountTable and DeleteAllFromTable accept.
var resettable = map[string]bool{"turns": true, "events": true}

// CountTable returns the number of rows in one of the store's tables.
func (s *SQLiteStore) CountTable(table string) (int, error) {
	if !resettable[table] {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n, err
}

// DeleteAllFromTable removes every row from one of the store's tables.
func (s *SQLiteStore) DeleteAllFromTable(table string) error {
	if !resettable[table] {
		return fmt.Errorf("unknown table %q", table)
	}
	_, err := s.db.Exec("DELETE FROM " + table)
	return err
}

// Vacuum reclaims space after deletes.
func (s *SQLiteStore) Vacuum() error {
	_, err := s.db.Exec("VACUUM")
	return err
}
