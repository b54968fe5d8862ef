package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name     string
		latest   string
		current  string
		expected bool
	}{
		{"same version", "0.3.1", "0.3.1", false},
		{"patch upgrade", "0.3.2", "0.3.1", true},
		{"patch downgrade", "0.3.0", "0.3.1", false},
		{"minor upgrade", "0.4.0", "0.3.9", true},
		{"major upgrade", "1.0.0", "0.9.9", true},
		{"multi-digit patch", "0.0.100", "0.0.99", true},
		{"shorter latest", "1.0", "0.9.12", true},
		{"shorter current", "0.9.12", "1.0", false},
		{"pre-release ahead", "0.4.0-rc1", "0.3.1", true},
		{"pre-release same base", "0.3.1-alpha", "0.3.1", false},
		{"build metadata", "0.3.2+build7", "0.3.1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNewer(tt.latest, tt.current); got != tt.expected {
				t.Errorf("IsNewer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.expected)
			}
		})
	}
}

func releaseServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Errorf("missing User-Agent")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestChecker_Check(t *testing.T) {
	server := releaseServer(t, http.StatusOK, `{"tag_name":"v0.4.0","html_url":"https://example.com/r/v0.4.0"}`)

	tests := []struct {
		current   string
		available bool
	}{
		{"v0.3.1", true},
		{"0.4.0", false},
		{"dev", false},
	}

	for _, tt := range tests {
		info, err := NewChecker(server.URL).Check(context.Background(), tt.current)
		if err != nil {
			t.Fatalf("Check(%q) error = %v", tt.current, err)
		}
		if info.Available != tt.available {
			t.Errorf("Check(%q).Available = %v, want %v", tt.current, info.Available, tt.available)
		}
		if info.Latest != "0.4.0" || info.URL != "https://example.com/r/v0.4.0" {
			t.Errorf("unexpected info %+v", info)
		}
	}
}

func TestChecker_BadStatus(t *testing.T) {
	server := releaseServer(t, http.StatusNotFound, `{"message":"Not Found"}`)

	if _, err := NewChecker(server.URL).Check(context.Background(), "0.1.0"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestNewChecker_DefaultURL(t *testing.T) {
	if got := NewChecker("").URL; got != DefaultReleasesURL {
		t.Errorf("URL = %q", got)
	}
}
