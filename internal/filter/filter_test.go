package filter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/studiowebux/kycfill/internal/types"
)

const sampleResult = `{"profile":{"name":"Jane","age":34},"forms":[{"form_id":"F1","form_title":"Intake","answers":[]},{"form_id":"F2","form_title":"Tax","answers":[]}]}`

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{"empty query", "", sampleResult, false},
		{"field", "profile.name", `"Jane"`, false},
		{"projection", "forms[].form_id", "[\n  \"F1\",\n  \"F2\"\n]", false},
		{"missing", "profile.email", "null", false},
		{"invalid", "forms[", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(sampleResult, tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApply_InvalidJSON(t *testing.T) {
	if _, err := Apply("not json", "profile"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestIsValidJMESPath(t *testing.T) {
	if !IsValidJMESPath("forms[?form_id=='F1'].answers") {
		t.Error("expected valid expression")
	}
	if IsValidJMESPath("forms[?") {
		t.Error("expected invalid expression")
	}
}

func TestListDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"passport.pdf", "notes.TXT", "image.gif", "sub/bank.docx", ".hidden/secret.pdf"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := ListDocuments(dir, []string{".pdf", ".txt", ".docx"})
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.ToSlash(f.Name))
	}
	got := strings.Join(names, ",")
	if got != "notes.TXT,passport.pdf,sub/bank.docx" {
		t.Errorf("ListDocuments() = %s", got)
	}
}

func TestFuzzyFiles(t *testing.T) {
	files := []types.FileInfo{
		{Name: "bank_statement.pdf"},
		{Name: "passport_scan.pdf"},
		{Name: "utility_bill.png"},
	}

	if got := FuzzyFiles(files, ""); len(got) != 3 {
		t.Errorf("empty pattern returned %d files", len(got))
	}

	got := FuzzyFiles(files, "pass")
	if len(got) == 0 || got[0].Name != "passport_scan.pdf" {
		t.Errorf("FuzzyFiles(pass) = %+v", got)
	}

	if got := FuzzyFiles(files, "zzz"); len(got) != 0 {
		t.Errorf("FuzzyFiles(zzz) = %+v", got)
	}
}
