package tui

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/studiowebux/kycfill/internal/logging"
	"github.com/studiowebux/kycfill/internal/types"
	"github.com/studiowebux/kycfill/internal/workflow"
)

// fakeService returns canned responses and counts calls
type fakeService struct {
	mu            sync.Mutex
	processCalls  int
	generateCalls int
	generateTexts []string

	extraction *types.ExtractionResult
	generation *types.GenerationResult
	err        error
}

func (f *fakeService) Process(ctx context.Context, doc *types.Document) (*types.ExtractionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processCalls++
	return f.extraction, f.err
}

func (f *fakeService) Generate(ctx context.Context, text string) (*types.GenerationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls++
	f.generateTexts = append(f.generateTexts, text)
	return f.generation, f.err
}

// CreateTestModel creates a sized model backed by svc
func CreateTestModel(t *testing.T, svc workflow.Service, policy workflow.RacePolicy) *Model {
	t.Helper()

	logger := logging.Discard()
	m, err := New(Options{
		Service:     svc,
		Coordinator: workflow.NewCoordinator(policy, logger),
		DocumentDir: t.TempDir(),
		Logger:      logger,
		Version:     "test-version",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return &m
}

// AssertModelField checks a field value
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error, what string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", what, err)
	}
}

// runCmd executes cmd and flattens batches into their messages
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, runCmd(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// findMsg returns the first message of type T
func findMsg[T any](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			return typed
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func mustGeneration(t *testing.T, body string) *types.GenerationResult {
	t.Helper()
	var result types.GenerationResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &result
}

func mustExtraction(t *testing.T, body string) *types.ExtractionResult {
	t.Helper()
	var result types.ExtractionResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &result
}
