package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is the alternative backend: the same Store contract over a
// single SQLite file. Timestamps are stored in the document format so a
// database stays readable next to the JSON files.
type SQLiteStore struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS vocables (
    id INTEGER PRIMARY KEY,
    de TEXT NOT NULL,
    en TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS scores (
    vocable_id TEXT PRIMARY KEY,
    score INTEGER NOT NULL DEFAULT 0,
    last_practiced TEXT,
    last_correct TEXT
);
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    total INTEGER NOT NULL,
    correct INTEGER NOT NULL,
    results TEXT NOT NULL
);
`

// NewSQLiteStore opens (or creates) the database at dbPath and
// initializes the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == ":memory:" {
		dbPath = "file::memory:?cache=shared"
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath != "file::memory:?cache=shared" {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *SQLiteStore) LoadVocables() ([]Vocable, error) {
	rows, err := s.conn.Query(`SELECT id, de, en FROM vocables ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vocables: %w", err)
	}
	defer rows.Close()

	var vocables []Vocable
	for rows.Next() {
		var v Vocable
		if err := rows.Scan(&v.ID, &v.DE, &v.EN); err != nil {
			return nil, fmt.Errorf("failed to scan vocable: %w", err)
		}
		vocables = append(vocables, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vocables: %w", err)
	}
	return vocables, nil
}

func (s *SQLiteStore) SaveVocables(vocables []Vocable) error {
	return s.replace("vocables", func(tx *sql.Tx) error {
		for _, v := range vocables {
			if _, err := tx.Exec(`INSERT INTO vocables (id, de, en) VALUES (?, ?, ?)`, v.ID, v.DE, v.EN); err != nil {
				return fmt.Errorf("failed to insert vocable %d: %w", v.ID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) LoadScores() (Scores, error) {
	rows, err := s.conn.Query(`SELECT vocable_id, score, last_practiced, last_correct FROM scores`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	scores := Scores{}
	for rows.Next() {
		var (
			key       string
			rec       ScoreRecord
			practiced sql.NullString
			correct   sql.NullString
		)
		if err := rows.Scan(&key, &rec.Score, &practiced, &correct); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if rec.LastPracticed, err = parseStamp(practiced); err != nil {
			return nil, err
		}
		if rec.LastCorrect, err = parseStamp(correct); err != nil {
			return nil, err
		}
		scores[key] = &rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}
	return scores, nil
}

func (s *SQLiteStore) SaveScores(scores Scores) error {
	return s.replace("scores", func(tx *sql.Tx) error {
		for key, rec := range scores {
			if rec == nil {
				rec = &ScoreRecord{}
			}
			if _, err := tx.Exec(
				`INSERT INTO scores (vocable_id, score, last_practiced, last_correct) VALUES (?, ?, ?, ?)`,
				key, rec.Score, formatStamp(rec.LastPracticed), formatStamp(rec.LastCorrect),
			); err != nil {
				return fmt.Errorf("failed to insert score %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) LoadSessions() ([]Session, error) {
	rows, err := s.conn.Query(`SELECT timestamp, total, correct, results FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			session Session
			stamp   string
			results string
		)
		if err := rows.Scan(&stamp, &session.Total, &session.Correct, &results); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if err := session.Timestamp.UnmarshalJSON([]byte(`"` + stamp + `"`)); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(results), &session.Results); err != nil {
			return nil, fmt.Errorf("failed to parse session results: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	return sessions, nil
}

func (s *SQLiteStore) SaveSessions(sessions []Session) error {
	return s.replace("sessions", func(tx *sql.Tx) error {
		for _, session := range sessions {
			results, err := json.Marshal(session.Results)
			if err != nil {
				return fmt.Errorf("failed to encode session results: %w", err)
			}
			if _, err := tx.Exec(
				`INSERT INTO sessions (timestamp, total, correct, results) VALUES (?, ?, ?, ?)`,
				session.Timestamp.String(), session.Total, session.Correct, string(results),
			); err != nil {
				return fmt.Errorf("failed to insert session: %w", err)
			}
		}
		return nil
	})
}

// replace rewrites a whole table inside one transaction, matching the
// whole-collection save semantics of the JSON store.
func (s *SQLiteStore) replace(table string, insert func(tx *sql.Tx) error) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

func formatStamp(s *Stamp) any {
	if s == nil {
		return nil
	}
	return s.String()
}

func parseStamp(v sql.NullString) (*Stamp, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	var s Stamp
	if err := s.UnmarshalJSON([]byte(`"` + v.String + `"`)); err != nil {
		return nil, err
	}
	return &s, nil
}
