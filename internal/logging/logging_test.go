package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo)

	logger.Debug("client.request", "req_id", "a")
	logger.Info("client.response", "req_id", "b", "status", 200)

	out := buf.String()
	if strings.Contains(out, "client.request") {
		t.Error("debug record should be filtered")
	}
	if !strings.Contains(out, "msg=client.response") || !strings.Contains(out, "status=200") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestOpenFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kycfill.log")

	for i := 0; i < 2; i++ {
		logger, closer, err := OpenFile(path, slog.LevelDebug)
		if err != nil {
			t.Fatalf("OpenFile() error = %v", err)
		}
		logger.Info("tui.start")
		closer.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "msg=tui.start"); got != 2 {
		t.Errorf("found %d records, want 2", got)
	}
}
