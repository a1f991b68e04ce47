package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ametelkin/onair-server/internal/store"
)

// SQLiteStore implements store.Journal for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS broadcasts (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at DATETIME NOT NULL,
	ended_at   DATETIME
);

CREATE TABLE IF NOT EXISTS calls (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	broadcast_id INTEGER NOT NULL REFERENCES broadcasts(id),
	client_name  TEXT NOT NULL,
	dialed_at    DATETIME NOT NULL,
	ended_at     DATETIME,
	outcome      TEXT
);

CREATE INDEX IF NOT EXISTS idx_calls_dialed_at ON calls(dialed_at DESC);
`

// New creates a SQLite journal and bootstraps the schema.
// dbPath is the path to the database file, or ":memory:".
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// OpenBroadcast records the start of an on-air period.
func (s *SQLiteStore) OpenBroadcast(ctx context.Context, startedAt time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO broadcasts (started_at) VALUES (?)`, startedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert broadcast: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// CloseBroadcast records the end of an on-air period.
func (s *SQLiteStore) CloseBroadcast(ctx context.Context, id int64, endedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE broadcasts SET ended_at = ? WHERE id = ?`, endedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("close broadcast: %w", err)
	}
	return nil
}

// OpenCall records a caller going connected within a broadcast.
func (s *SQLiteStore) OpenCall(ctx context.Context, broadcastID int64, clientName string, dialedAt time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (broadcast_id, client_name, dialed_at) VALUES (?, ?, ?)`,
		broadcastID, clientName, dialedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert call: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return id, nil
}

// CloseCall records how and when a call ended.
func (s *SQLiteStore) CloseCall(ctx context.Context, id int64, endedAt time.Time, outcome store.CallOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE calls SET ended_at = ?, outcome = ? WHERE id = ?`,
		endedAt.UTC(), string(outcome), id)
	if err != nil {
		return fmt.Errorf("close call: %w", err)
	}
	return nil
}

// ListRecentCalls returns the most recent calls, newest first.
func (s *SQLiteStore) ListRecentCalls(ctx context.Context, limit int) ([]*store.Call, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, broadcast_id, client_name, dialed_at, ended_at, outcome
		FROM calls
		ORDER BY dialed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := make([]*store.Call, 0, limit)
	for rows.Next() {
		var (
			call    store.Call
			endedAt sql.NullTime
			outcome sql.NullString
		)
		if err := rows.Scan(&call.ID, &call.BroadcastID, &call.ClientName, &call.DialedAt, &endedAt, &outcome); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		if endedAt.Valid {
			t := endedAt.Time
			call.EndedAt = &t
		}
		if outcome.Valid {
			o := store.CallOutcome(outcome.String)
			call.Outcome = &o
		}
		calls = append(calls, &call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	return calls, nil
}
