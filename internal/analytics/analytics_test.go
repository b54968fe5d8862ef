package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/studiowebux/kycfill/internal/history"
	"github.com/studiowebux/kycfill/internal/types"
)

func seed(t *testing.T, entries []types.HistoryEntry) *Manager {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "history.db")

	hist, err := history.NewManager(dbPath)
	if err != nil {
		t.Fatalf("history.NewManager() error = %v", err)
	}
	for _, entry := range entries {
		if err := hist.Record(entry); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	hist.Close()

	mgr, err := NewManager(dbPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func sampleEntries() []types.HistoryEntry {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []types.HistoryEntry{
		{RequestID: "r1", Timestamp: base, Operation: "process", Source: "id.pdf", Status: 200, Duration: 100, RequestSize: 1000, ResponseSize: 10},
		{RequestID: "r2", Timestamp: base.Add(time.Minute), Operation: "process", Source: "id.pdf", Status: 500, Duration: 300, RequestSize: 1000, ResponseSize: 14},
		{RequestID: "r3", Timestamp: base.Add(2 * time.Minute), Operation: "process", Source: "bank.pdf", Status: 0, Duration: 50, RequestSize: 500},
		{RequestID: "r4", Timestamp: base.Add(3 * time.Minute), Operation: "generate", Status: 200, Duration: 900, RequestSize: 20, ResponseSize: 400},
	}
}

func TestPerOperation(t *testing.T) {
	mgr := seed(t, sampleEntries())

	stats, err := mgr.PerOperation()
	if err != nil {
		t.Fatalf("PerOperation() error = %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d rows, want 2", len(stats))
	}

	// most recently called first
	if stats[0].Operation != "generate" || stats[1].Operation != "process" {
		t.Fatalf("unexpected order: %s, %s", stats[0].Operation, stats[1].Operation)
	}

	process := stats[1]
	if process.TotalCalls != 3 || process.SuccessCount != 1 || process.ErrorCount != 1 || process.NetworkErrors != 1 {
		t.Errorf("unexpected counts %+v", process)
	}
	if process.MinDurationMs != 50 || process.MaxDurationMs != 300 || process.AvgDurationMs != 150 {
		t.Errorf("unexpected durations min=%d max=%d avg=%f", process.MinDurationMs, process.MaxDurationMs, process.AvgDurationMs)
	}
	if process.TotalReqSize != 2500 || process.TotalRespSize != 24 {
		t.Errorf("unexpected sizes req=%d resp=%d", process.TotalReqSize, process.TotalRespSize)
	}
	if process.StatusCodes[200] != 1 || process.StatusCodes[500] != 1 || process.StatusCodes[0] != 1 {
		t.Errorf("unexpected status codes %v", process.StatusCodes)
	}
	if process.Source != "" {
		t.Errorf("source = %q, want empty", process.Source)
	}
	want := time.Date(2026, 3, 1, 10, 2, 0, 0, time.UTC)
	if !process.LastCalled.Equal(want) {
		t.Errorf("last called = %v, want %v", process.LastCalled, want)
	}
}

func TestPerSource(t *testing.T) {
	mgr := seed(t, sampleEntries())

	stats, err := mgr.PerSource()
	if err != nil {
		t.Fatalf("PerSource() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("got %d rows, want 3", len(stats))
	}

	bySource := make(map[string]Stats)
	for _, s := range stats {
		bySource[s.Operation+"/"+s.Source] = s
	}

	id, ok := bySource["process/id.pdf"]
	if !ok {
		t.Fatalf("missing process/id.pdf in %v", bySource)
	}
	if id.TotalCalls != 2 || id.StatusCodes[200] != 1 || id.StatusCodes[500] != 1 {
		t.Errorf("unexpected id.pdf stats %+v", id)
	}
	if id.SuccessRate() != 50 {
		t.Errorf("success rate = %f, want 50", id.SuccessRate())
	}

	if _, ok := bySource["generate/"]; !ok {
		t.Error("generate calls without a source should aggregate under an empty source")
	}
}

func TestEmptyHistory(t *testing.T) {
	mgr := seed(t, nil)

	stats, err := mgr.PerOperation()
	if err != nil {
		t.Fatalf("PerOperation() error = %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("got %d rows, want 0", len(stats))
	}
	if (Stats{}).SuccessRate() != 0 {
		t.Error("success rate of no calls should be 0")
	}
}

func TestCache_InvalidateRefreshes(t *testing.T) {
	mgr := seed(t, sampleEntries())

	first, err := mgr.PerOperation()
	if err != nil {
		t.Fatalf("PerOperation() error = %v", err)
	}

	if _, err := mgr.db.Exec("DELETE FROM history"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	cached, _ := mgr.PerOperation()
	if len(cached) != len(first) {
		t.Errorf("cached stats changed before invalidation: %d rows", len(cached))
	}

	mgr.Invalidate()
	fresh, err := mgr.PerOperation()
	if err != nil {
		t.Fatalf("PerOperation() error = %v", err)
	}
	if len(fresh) != 0 {
		t.Errorf("got %d rows after invalidation, want 0", len(fresh))
	}
}

func TestStatsCache_Expires(t *testing.T) {
	cache := newStatsCache(time.Millisecond)
	cache.set(cacheKeyOperation, []Stats{{Operation: "process"}})

	if _, ok := cache.get(cacheKeyOperation); !ok {
		t.Fatal("fresh entry should be served")
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.get(cacheKeyOperation); ok {
		t.Error("expired entry should not be served")
	}
}
