package mock

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/studiowebux/kycfill/internal/client"
	"github.com/studiowebux/kycfill/internal/types"
)

func newTestClient(t *testing.T, config *Config) (*client.Client, *Server) {
	t.Helper()
	server := NewServer(config, t.TempDir(), nil)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	c, err := client.New(client.Options{
		BaseURL: ts.URL,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return c, server
}

func TestDefaultRoutes_ServeEveryOperation(t *testing.T) {
	c, server := newTestClient(t, &Config{})
	ctx := context.Background()
	doc := &types.Document{Name: "passport.pdf", Content: []byte("%PDF")}

	extraction, err := c.Process(ctx, doc)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if !strings.HasPrefix(extraction.Text, "Jane Doe") || extraction.HasProfile() {
		t.Errorf("unexpected extraction %+v", extraction)
	}

	text, err := c.Extract(ctx, doc)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text.SourceName != "passport.pdf" {
		t.Errorf("source name = %q", text.SourceName)
	}

	generation, err := c.Generate(ctx, extraction.Text)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(generation.Forms) != 1 || generation.Forms[0].FormID != "KYC-1" {
		t.Errorf("unexpected forms %+v", generation.Forms)
	}
	if name, ok := generation.Profile.Get("full_name"); !ok || name.Literal != "Jane Doe" {
		t.Errorf("profile full_name = %+v", name)
	}

	health, err := c.Health(ctx)
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("health = %q", health.Status)
	}

	logs := server.Logs()
	if len(logs) != 4 {
		t.Fatalf("got %d logs, want 4", len(logs))
	}
	if logs[0].Document != "passport.pdf" || logs[0].MatchedRule != "process" {
		t.Errorf("unexpected first log %+v", logs[0])
	}
	if logs[2].Document != "" {
		t.Errorf("generate log should carry no document, got %q", logs[2].Document)
	}
}

func TestErrorRoute_SurfacesBody(t *testing.T) {
	c, _ := newTestClient(t, &Config{Routes: []Route{
		{Method: http.MethodPost, Path: client.PathGenerate, Status: http.StatusInternalServerError, Body: "internal error"},
	}})

	_, err := c.Generate(context.Background(), "text")
	var serviceErr *types.ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("error = %v, want *types.ServiceError", err)
	}
	if serviceErr.Status != 500 || serviceErr.Message != "internal error" {
		t.Errorf("unexpected error %+v", serviceErr)
	}
}

func TestUnknownRoute(t *testing.T) {
	server := NewServer(&Config{}, "", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if logs := server.Logs(); len(logs) != 1 || logs[0].MatchedRule != "none" {
		t.Errorf("unexpected logs %+v", logs)
	}

	server.ClearLogs()
	if len(server.Logs()) != 0 {
		t.Error("ClearLogs() kept entries")
	}
}

func TestPathTypes(t *testing.T) {
	server := NewServer(&Config{Routes: []Route{
		{Name: "exact", Method: "GET", Path: "/health"},
		{Name: "prefix", Method: "post", Path: "/api/", PathType: "prefix"},
		{Name: "regex", Method: "GET", Path: `^/v\d+/health$`, PathType: "regex"},
	}}, "", nil)

	tests := []struct {
		method, path, want string
	}{
		{"GET", "/health", "exact"},
		{"POST", "/api/process", "prefix"},
		{"GET", "/v2/health", "regex"},
		{"GET", "/v2/health/x", ""},
		{"DELETE", "/health", ""},
	}
	for _, tt := range tests {
		route := server.findMatchingRoute(tt.method, tt.path)
		got := ""
		if route != nil {
			got = route.Name
		}
		if got != tt.want {
			t.Errorf("%s %s matched %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestBodyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "profile.json"), []byte(`{"profile":{"name":"Jane"}}`), 0644); err != nil {
		t.Fatal(err)
	}
	server := NewServer(&Config{Routes: []Route{
		{Method: "POST", Path: "/api/generate", BodyFile: "profile.json"},
		{Method: "POST", Path: "/api/process", BodyFile: "missing.json"},
	}}, dir, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != `{"profile":{"name":"Jane"}}` {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/process", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestDelay_StopsWhenClientCancels(t *testing.T) {
	c, _ := newTestClient(t, &Config{Routes: []Route{
		{Method: "POST", Path: client.PathGenerate, Body: `{}`, Delay: 5000},
	}})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := c.Generate(ctx, "text"); err == nil {
		t.Fatal("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancelled request took %v", elapsed)
	}
}

func TestNewServer_Defaults(t *testing.T) {
	server := NewServer(&Config{}, "", nil)
	if server.Address() != "http://localhost:8080" {
		t.Errorf("Address() = %q", server.Address())
	}
	if len(server.config.Routes) != len(DefaultRoutes()) {
		t.Errorf("got %d routes, want defaults", len(server.config.Routes))
	}
}
