package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/studiowebux/kycfill/internal/client"
	"github.com/studiowebux/kycfill/internal/logging"
	"github.com/studiowebux/kycfill/internal/render"
	"github.com/studiowebux/kycfill/internal/types"
	"github.com/studiowebux/kycfill/internal/workflow"
)

const profileBody = `{"profile":{"name":"Jane","age":34},"forms":[{"form_id":"F1","form_title":"Intake","answers":[{"question":"Age?","answer":""}]}]}`

// fakeService answers /api/process with processBody and /api/generate with generateBody
type fakeService struct {
	processStatus  int
	processBody    string
	generateStatus int
	generateBody   string
	generateCalls  atomic.Int32
	lastText       atomic.Value
}

func (f *fakeService) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case client.PathProcess:
			w.WriteHeader(orOK(f.processStatus))
			io.WriteString(w, f.processBody)
		case client.PathExtract:
			io.WriteString(w, `{"source_name":"id.txt","text":"raw text"}`)
		case client.PathGenerate:
			f.generateCalls.Add(1)
			var req types.GenerationRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode generate request: %v", err)
			}
			f.lastText.Store(req.Text)
			w.WriteHeader(orOK(f.generateStatus))
			io.WriteString(w, f.generateBody)
		case client.PathHealth:
			io.WriteString(w, `{"status":"ok"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func orOK(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

func newTestRunner(t *testing.T, svc *fakeService) (*Runner, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(svc.handler(t))
	t.Cleanup(server.Close)

	c, err := client.New(client.Options{BaseURL: server.URL, Logger: logging.Discard()})
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}

	var out bytes.Buffer
	return &Runner{
		Client:   c,
		Policy:   workflow.LastResponseWins,
		Renderer: render.Renderer{Format: render.FormatJSON},
		Logger:   logging.Discard(),
		Out:      &out,
		Err:      io.Discard,
	}, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestProcess_PrintsExtractedText(t *testing.T) {
	r, out := newTestRunner(t, &fakeService{processBody: `{"text":"Jane Doe, age 34"}`})

	err := r.Process(context.Background(), writeFile(t, "id.txt", "scan"), OutputOptions{Format: FormatText})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if out.String() != "Jane Doe, age 34\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestProcess_JSONText(t *testing.T) {
	r, out := newTestRunner(t, &fakeService{processBody: `{"text":"a < b"}`})

	if err := r.Process(context.Background(), writeFile(t, "id.txt", "scan"), OutputOptions{Format: FormatJSON}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	want := "{\n  \"source_name\": \"id.txt\",\n  \"text\": \"a < b\"\n}\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestProcess_ProfileRendered(t *testing.T) {
	r, out := newTestRunner(t, &fakeService{processBody: profileBody})

	if err := r.Process(context.Background(), writeFile(t, "id.pdf", "%PDF"), OutputOptions{Format: FormatText}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	for _, want := range []string{render.ProfileTitle, `"name": "Jane"`, "F1 - Intake", "  - Age?: —"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestProcess_ServiceError(t *testing.T) {
	r, out := newTestRunner(t, &fakeService{processStatus: 500, processBody: "internal error"})

	err := r.Process(context.Background(), writeFile(t, "id.pdf", "%PDF"), OutputOptions{})
	var failed *FailedError
	if !errors.As(err, &failed) || failed.Message != "internal error" {
		t.Fatalf("error = %v, want FailedError(internal error)", err)
	}
	if !IsFailed(err) {
		t.Error("IsFailed() = false")
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestProcess_MissingFile(t *testing.T) {
	r, _ := newTestRunner(t, &fakeService{})

	err := r.Process(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), OutputOptions{})
	if err == nil || IsFailed(err) {
		t.Errorf("error = %v, want a plain read error", err)
	}
}

func TestGenerate_BlankTextSendsNothing(t *testing.T) {
	svc := &fakeService{generateBody: profileBody}
	r, out := newTestRunner(t, svc)

	err := r.Generate(context.Background(), "  \n\t ", OutputOptions{})
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
	if svc.generateCalls.Load() != 0 {
		t.Errorf("generate called %d times", svc.generateCalls.Load())
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestGenerate_OutputFormats(t *testing.T) {
	tests := []struct {
		name  string
		out   OutputOptions
		check func(t *testing.T, output string)
	}{
		{"text", OutputOptions{Format: FormatText}, func(t *testing.T, output string) {
			if !strings.HasPrefix(output, render.ProfileTitle+"\n{\n  \"name\": \"Jane\",\n  \"age\": 34\n}") {
				t.Errorf("text output:\n%s", output)
			}
		}},
		{"json", OutputOptions{Format: FormatJSON}, func(t *testing.T, output string) {
			var result types.GenerationResult
			if err := json.Unmarshal([]byte(output), &result); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if keys := result.Profile.Keys(); len(keys) != 2 || keys[0] != "name" || keys[1] != "age" {
				t.Errorf("profile keys = %v", keys)
			}
		}},
		{"yaml", OutputOptions{Format: FormatYAML}, func(t *testing.T, output string) {
			if !strings.Contains(output, "profile:\n    name: Jane\n    age: 34\n") {
				t.Errorf("yaml output:\n%s", output)
			}
		}},
		{"query", OutputOptions{Query: "profile.name"}, func(t *testing.T, output string) {
			if output != "\"Jane\"\n" {
				t.Errorf("query output = %q", output)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{generateBody: profileBody}
			r, out := newTestRunner(t, svc)

			if err := r.Generate(context.Background(), " Jane Doe ", tt.out); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got := svc.lastText.Load(); got != "Jane Doe" {
				t.Errorf("sent text = %v, want trimmed", got)
			}
			tt.check(t, out.String())
		})
	}
}

func TestGenerate_NoProfilePlaceholder(t *testing.T) {
	r, out := newTestRunner(t, &fakeService{generateBody: `{"forms":[]}`})

	if err := r.Generate(context.Background(), "text", OutputOptions{}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out.String() != render.PlaceholderNoProfile+"\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_ChainsStages(t *testing.T) {
	svc := &fakeService{processBody: `{"text":"Jane Doe"}`, generateBody: profileBody}
	r, out := newTestRunner(t, svc)

	if err := r.Run(context.Background(), writeFile(t, "id.pdf", "%PDF"), OutputOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if svc.lastText.Load() != "Jane Doe" {
		t.Errorf("generated from %v", svc.lastText.Load())
	}
	if !strings.Contains(out.String(), "F1 - Intake") {
		t.Errorf("output:\n%s", out.String())
	}
}

func TestRun_ShortCircuitSkipsGeneration(t *testing.T) {
	svc := &fakeService{processBody: profileBody}
	r, _ := newTestRunner(t, svc)

	if err := r.Run(context.Background(), writeFile(t, "id.pdf", "%PDF"), OutputOptions{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if svc.generateCalls.Load() != 0 {
		t.Error("generation should be skipped when intake returns a profile")
	}
}

func TestRun_EmptyText(t *testing.T) {
	svc := &fakeService{processBody: `{}`}
	r, _ := newTestRunner(t, svc)

	err := r.Run(context.Background(), writeFile(t, "blank.pdf", "%PDF"), OutputOptions{})
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("error = %v, want ErrEmptyText", err)
	}
}

func TestExtractAndHealth(t *testing.T) {
	r, out := newTestRunner(t, &fakeService{})

	if err := r.Extract(context.Background(), writeFile(t, "id.txt", "scan"), OutputOptions{}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if err := r.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || lines[0] != "raw text" || !strings.HasSuffix(lines[1], ": ok") {
		t.Errorf("output lines = %q", lines)
	}
}

func TestSavePath(t *testing.T) {
	r, out := newTestRunner(t, &fakeService{generateBody: profileBody})
	path := filepath.Join(t.TempDir(), "result.json")

	if err := r.Generate(context.Background(), "text", OutputOptions{Format: FormatJSON, SavePath: path}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("stdout should be empty when saving, got %q", out.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !strings.Contains(string(data), `"form_id": "F1"`) {
		t.Errorf("saved file:\n%s", data)
	}
}
