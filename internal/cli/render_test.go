package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/studiowebux/kycfill/internal/render"
)

func TestParseResult_Comments(t *testing.T) {
	data := []byte(`{
		// saved from a previous run
		"profile": {"name": "Jane"},
		"forms": [
			{"form_id": "F1", "form_title": "Intake", "answers": [],},
		],
	}`)

	result, err := ParseResult(data)
	if err != nil {
		t.Fatalf("ParseResult() error = %v", err)
	}
	if !result.HasProfile() || len(result.Forms) != 1 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestParseResult_Invalid(t *testing.T) {
	if _, err := ParseResult([]byte(`{"profile":`)); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestRender_File(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{Renderer: render.Renderer{Format: render.FormatYAML}, Out: &out}
	path := writeFile(t, "result.jsonc", `{"profile": {"name": "Jane"}, /* none yet */ "forms": []}`)

	if err := r.Render(path, OutputOptions{Format: FormatText}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out.String() != render.ProfileTitle+"\nname: Jane\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRender_NullPayload(t *testing.T) {
	var out bytes.Buffer
	r := &Runner{Out: &out}

	if err := r.Render(writeFile(t, "null.json", "null"), OutputOptions{}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.TrimSpace(out.String()) != render.PlaceholderNoProfile {
		t.Errorf("output = %q", out.String())
	}
}
