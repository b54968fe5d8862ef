package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/kycfill/internal/config"
	"github.com/studiowebux/kycfill/internal/migrations"
)

// DefaultCacheTTL bounds how long aggregated stats are reused
const DefaultCacheTTL = 5 * time.Second

// Manager aggregates the history table into per-operation statistics
type Manager struct {
	db    *sql.DB
	cache *statsCache
}

// Stats summarizes every call of one operation, optionally for one source document
type Stats struct {
	Operation     string      `json:"operation" yaml:"operation"`
	Source        string      `json:"source,omitempty" yaml:"source,omitempty"`
	TotalCalls    int         `json:"totalCalls" yaml:"totalCalls"`
	SuccessCount  int         `json:"successCount" yaml:"successCount"`
	ErrorCount    int         `json:"errorCount" yaml:"errorCount"`
	NetworkErrors int         `json:"networkErrors" yaml:"networkErrors"`
	AvgDurationMs float64     `json:"avgDurationMs" yaml:"avgDurationMs"`
	MinDurationMs int64       `json:"minDurationMs" yaml:"minDurationMs"`
	MaxDurationMs int64       `json:"maxDurationMs" yaml:"maxDurationMs"`
	TotalReqSize  int64       `json:"totalRequestSize" yaml:"totalRequestSize"`
	TotalRespSize int64       `json:"totalResponseSize" yaml:"totalResponseSize"`
	StatusCodes   map[int]int `json:"statusCodes" yaml:"statusCodes"`
	LastCalled    time.Time   `json:"lastCalled" yaml:"lastCalled"`
}

// SuccessRate returns the share of 2xx responses in percent
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCalls) * 100
}

func NewManager(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create analytics directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open analytics database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to analytics database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db, cache: newStatsCache(DefaultCacheTTL)}, nil
}

// PerOperation returns one row per operation across all documents
func (m *Manager) PerOperation() ([]Stats, error) {
	if stats, ok := m.cache.get(cacheKeyOperation); ok {
		return stats, nil
	}

	stats, err := m.query(false)
	if err != nil {
		return nil, err
	}
	m.cache.set(cacheKeyOperation, stats)
	return stats, nil
}

// PerSource returns one row per (operation, source) pair
func (m *Manager) PerSource() ([]Stats, error) {
	if stats, ok := m.cache.get(cacheKeySource); ok {
		return stats, nil
	}

	stats, err := m.query(true)
	if err != nil {
		return nil, err
	}
	m.cache.set(cacheKeySource, stats)
	return stats, nil
}

// Invalidate drops cached aggregates, e.g. after the history was cleared
func (m *Manager) Invalidate() {
	m.cache.clear()
}

func (m *Manager) query(bySource bool) ([]Stats, error) {
	innerSource, outerSource := "''", "''"
	groupBy := "h.operation"
	join := "h.operation = s.operation"
	if bySource {
		innerSource = "COALESCE(source, '')"
		outerSource = "COALESCE(h.source, '')"
		groupBy = "h.operation, COALESCE(h.source, '')"
		join += " AND COALESCE(h.source, '') = s.source_name"
	}

	query := fmt.Sprintf(`
		WITH status_codes_agg AS (
			SELECT
				operation,
				source_name,
				json_group_object(CAST(status AS TEXT), count) AS status_codes_json
			FROM (
				SELECT operation, %s AS source_name, status, COUNT(*) AS count
				FROM history
				GROUP BY 1, 2, 3
			)
			GROUP BY operation, source_name
		)
		SELECT
			h.operation,
			%s,
			COUNT(*) AS total_calls,
			SUM(CASE WHEN h.status >= 200 AND h.status < 300 THEN 1 ELSE 0 END) AS success_count,
			SUM(CASE WHEN h.status >= 400 THEN 1 ELSE 0 END) AS error_count,
			SUM(CASE WHEN h.status = 0 THEN 1 ELSE 0 END) AS network_errors,
			AVG(h.duration_ms) AS avg_duration,
			MIN(h.duration_ms) AS min_duration,
			MAX(h.duration_ms) AS max_duration,
			COALESCE(SUM(h.request_size), 0) AS total_req_size,
			COALESCE(SUM(h.response_size), 0) AS total_resp_size,
			MAX(h.timestamp) AS last_called,
			COALESCE(MAX(s.status_codes_json), '{}') AS status_codes_json
		FROM history h
		LEFT JOIN status_codes_agg s ON %s
		GROUP BY %s
		ORDER BY last_called DESC, h.operation
	`, innerSource, outerSource, join, groupBy)

	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate history: %w", err)
	}
	defer rows.Close()

	var statsList []Stats
	for rows.Next() {
		var s Stats
		var lastCalled sql.NullString
		var statusCodesJSON string

		err := rows.Scan(
			&s.Operation,
			&s.Source,
			&s.TotalCalls,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.NetworkErrors,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&s.TotalReqSize,
			&s.TotalRespSize,
			&lastCalled,
			&statusCodesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}

		if lastCalled.Valid {
			s.LastCalled = parseTimestamp(lastCalled.String)
		}

		s.StatusCodes, err = decodeStatusCodes(statusCodesJSON)
		if err != nil {
			return nil, err
		}

		statsList = append(statsList, s)
	}

	return statsList, rows.Err()
}

func decodeStatusCodes(raw string) (map[int]int, error) {
	codes := make(map[int]int)
	if raw == "{}" {
		return codes, nil
	}

	var byText map[string]int
	if err := json.Unmarshal([]byte(raw), &byText); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status codes: %w", err)
	}
	for text, count := range byText {
		code, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		codes[code] = count
	}
	return codes, nil
}

// History timestamps are written in UTC
func parseTimestamp(value string) time.Time {
	if parsed, err := time.ParseInLocation("2006-01-02 15:04:05", value, time.UTC); err == nil {
		return parsed.Local()
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.Local()
	}
	return time.Time{}
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
