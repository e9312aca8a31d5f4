package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"kali-launcher/internal/logger"
)

//go:embed schema.sql
var schemaSQL string

// Schema versions:
// 1 - launches table
const currentSchemaVersion = 1

// Entry is one recorded launch. Finished is false while the process runs.
type Entry struct {
	ID        int64         `json:"id"`
	ItemID    string        `json:"item_id"`
	ItemName  string        `json:"item_name"`
	Command   string        `json:"command"`
	Mode      string        `json:"mode"`
	StartedAt time.Time     `json:"started_at"`
	Finished  bool          `json:"finished"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
}

// Outcome is the short result text for an entry.
func (e Entry) Outcome() string {
	switch {
	case !e.Finished:
		return "running"
	case e.Error != "":
		return "error"
	case e.ExitCode == 0:
		return "ok"
	default:
		return fmt.Sprintf("exit %d", e.ExitCode)
	}
}

// Stats summarises the launches of one item.
type Stats struct {
	Count    int
	Failures int
	Last     time.Time
}

// Outcome is what Finish stores about a completed launch.
type Outcome struct {
	ExitCode int
	Duration time.Duration
	Err      error
}

// Store keeps launch history in SQLite.
type Store struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

// Open creates or opens the history database at path.
func Open(path string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect history: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("History", "database opened", map[string]interface{}{"path": path})
	return &Store{db: db, logger: log, now: time.Now}, nil
}

func migrate(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("history schema version %d is newer than supported %d", version, currentSchemaVersion)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// Record inserts a started launch and returns its id.
func (s *Store) Record(ctx context.Context, itemID, itemName, command, mode string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO launches (item_id, item_name, command, mode, started_at) VALUES (?, ?, ?, ?, ?)`,
		itemID, itemName, command, mode, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("record launch: %w", err)
	}
	return res.LastInsertId()
}

// Finish stores the outcome of launch id.
func (s *Store) Finish(ctx context.Context, id int64, out Outcome) error {
	errText := ""
	if out.Err != nil {
		errText = out.Err.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE launches SET finished_at = ?, exit_code = ?, duration_ms = ?, error = ? WHERE id = ?`,
		s.now().UnixMilli(), out.ExitCode, out.Duration.Milliseconds(), errText, id,
	)
	if err != nil {
		return fmt.Errorf("finish launch %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish launch %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Recent returns up to limit launches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, item_id, item_name, command, mode, started_at, finished_at, exit_code, duration_ms, error
		 FROM launches ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e          Entry
			started    int64
			finishedAt sql.NullInt64
			exitCode   sql.NullInt64
			durationMS sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.ItemID, &e.ItemName, &e.Command, &e.Mode,
			&started, &finishedAt, &exitCode, &durationMS, &e.Error); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.StartedAt = time.UnixMilli(started)
		e.Finished = finishedAt.Valid
		e.ExitCode = int(exitCode.Int64)
		e.Duration = time.Duration(durationMS.Int64) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns launch counts for itemID.
func (s *Store) Stats(ctx context.Context, itemID string) (Stats, error) {
	var (
		st   Stats
		last sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN exit_code != 0 OR error != '' THEN 1 ELSE 0 END), 0),
		        MAX(started_at)
		 FROM launches WHERE item_id = ?`, itemID,
	).Scan(&st.Count, &st.Failures, &last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Stats{}, fmt.Errorf("history stats: %w", err)
	}
	if last.Valid {
		st.Last = time.UnixMilli(last.Int64)
	}
	return st, nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM launches`)
	return err
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Shutdown closes the database for the shutdown manager.
func (s *Store) Shutdown() {
	if err := s.Close(); err != nil {
		s.logger.Error("History", err, nil)
	}
}
