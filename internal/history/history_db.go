package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/kycfill/internal/config"
	"github.com/studiowebux/kycfill/internal/migrations"
	"github.com/studiowebux/kycfill/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// Manager stores exchanges with the service in SQLite
type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Record saves one exchange. It satisfies client.Recorder.
func (m *Manager) Record(entry types.HistoryEntry) error {
	query := `
		INSERT INTO history (
			request_id, timestamp, operation, source, status, response_body,
			duration_ms, request_size, response_size, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err := m.db.Exec(query,
		entry.RequestID,
		timestamp.UTC().Format(timestampLayout),
		entry.Operation,
		entry.Source,
		entry.Status,
		entry.ResponseBody,
		entry.Duration,
		entry.RequestSize,
		entry.ResponseSize,
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

// List returns the most recent entries first. A limit of 0 returns everything.
func (m *Manager) List(limit int) ([]types.HistoryEntry, error) {
	query := `
		SELECT id, request_id, timestamp, operation, COALESCE(source, ''), status, response_body,
		       duration_ms, request_size, response_size, error
		FROM history
		ORDER BY timestamp DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

// ListForSource returns entries for one document name
func (m *Manager) ListForSource(source string) ([]types.HistoryEntry, error) {
	query := `
		SELECT id, request_id, timestamp, operation, COALESCE(source, ''), status, response_body,
		       duration_ms, request_size, response_size, error
		FROM history
		WHERE source = ?
		ORDER BY timestamp DESC, id DESC
	`

	rows, err := m.db.Query(query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for source: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

func (m *Manager) scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var entry types.HistoryEntry
		var timestamp string
		var requestSize sql.NullInt64
		var responseSize sql.NullInt64
		var errorMsg sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&timestamp,
			&entry.Operation,
			&entry.Source,
			&entry.Status,
			&entry.ResponseBody,
			&entry.Duration,
			&requestSize,
			&responseSize,
			&errorMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Timestamp = parseTimestamp(timestamp)
		entry.RequestSize = int(requestSize.Int64)
		entry.ResponseSize = int(responseSize.Int64)
		entry.Error = errorMsg.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// parseTimestamp accepts both the stored layout and the RFC3339 form the
// sqlite3 driver returns for DATETIME columns. Timestamps are stored in UTC.
func parseTimestamp(value string) time.Time {
	if parsed, err := time.ParseInLocation(timestampLayout, value, time.UTC); err == nil {
		return parsed.Local()
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.Local()
	}
	return time.Time{}
}

func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (m *Manager) Delete(id int64) error {
	_, err := m.db.Exec("DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
