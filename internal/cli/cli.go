package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/studiowebux/kycfill/internal/client"
	"github.com/studiowebux/kycfill/internal/config"
	"github.com/studiowebux/kycfill/internal/filter"
	"github.com/studiowebux/kycfill/internal/render"
	"github.com/studiowebux/kycfill/internal/types"
	"github.com/studiowebux/kycfill/internal/workflow"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrEmptyText is returned when there is no text to generate from
var ErrEmptyText = errors.New("nothing to generate: text is empty")

// FailedError reports a workflow that ended in the error state.
// Its message is the service message shown to the user.
type FailedError struct {
	Message string
}

func (e *FailedError) Error() string {
	return e.Message
}

// OutputOptions controls how results are written
type OutputOptions struct {
	Format   string // text, json, yaml
	SavePath string
	Query    string // JMESPath over the JSON result
}

// Runner executes headless commands against the service
type Runner struct {
	Client   *client.Client
	Policy   workflow.RacePolicy
	Renderer render.Renderer
	Logger   *slog.Logger
	Out      io.Writer
	Err      io.Writer
}

func (r *Runner) coordinator() *workflow.Coordinator {
	return workflow.NewCoordinator(r.Policy, r.Logger)
}

// Process uploads a document. Extracted text is printed as is; a profile is rendered.
func (r *Runner) Process(ctx context.Context, path string, out OutputOptions) error {
	doc, err := types.LoadDocument(path)
	if err != nil {
		return err
	}

	coord := r.coordinator()
	state := coord.Intake(ctx, r.Client, doc)
	if state.Phase == workflow.PhaseIdle {
		return r.writeText(coord.Buffer(), doc.Name, out)
	}
	return r.writeState(state, out)
}

// Extract uploads a document to the text-only endpoint
func (r *Runner) Extract(ctx context.Context, path string, out OutputOptions) error {
	doc, err := types.LoadDocument(path)
	if err != nil {
		return err
	}

	text, err := r.Client.Extract(ctx, doc)
	if err != nil {
		return &FailedError{Message: workflow.ErrorMessage(err)}
	}
	return r.writeText(text.Text, text.SourceName, out)
}

// Generate submits text. Blank text sends nothing.
func (r *Runner) Generate(ctx context.Context, text string, out OutputOptions) error {
	coord := r.coordinator()
	coord.SetBuffer(text)

	state := coord.Generate(ctx, r.Client)
	if state.Phase == workflow.PhaseIdle {
		return ErrEmptyText
	}
	return r.writeState(state, out)
}

// Run processes a document and, when the service returns text, generates from it
func (r *Runner) Run(ctx context.Context, path string, out OutputOptions) error {
	doc, err := types.LoadDocument(path)
	if err != nil {
		return err
	}

	coord := r.coordinator()
	state := coord.Intake(ctx, r.Client, doc)
	if state.Phase == workflow.PhaseIdle {
		r.Logger.Debug("cli.run.generate", "document", doc.Name, "chars", len(coord.Buffer()))
		state = coord.Generate(ctx, r.Client)
		if state.Phase == workflow.PhaseIdle {
			return fmt.Errorf("%s: %w", doc.Name, ErrEmptyText)
		}
	}
	return r.writeState(state, out)
}

// Health checks the service readiness probe
func (r *Runner) Health(ctx context.Context) error {
	status, err := r.Client.Health(ctx)
	if err != nil {
		return &FailedError{Message: workflow.ErrorMessage(err)}
	}
	fmt.Fprintf(r.Out, "%s: %s\n", r.Client.BaseURL(), status.Status)
	return nil
}

// writeState prints a final display state. The error state becomes a *FailedError.
func (r *Runner) writeState(state workflow.State, out OutputOptions) error {
	if state.Phase == workflow.PhaseError {
		return &FailedError{Message: state.Message}
	}

	output, err := r.formatResult(state.Result, out)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return r.emit(output, out.SavePath)
}

func (r *Runner) formatResult(result *types.GenerationResult, out OutputOptions) (string, error) {
	if out.Query != "" {
		body, err := marshalJSON(result)
		if err != nil {
			return "", err
		}
		filtered, err := filter.Apply(body, out.Query)
		if err != nil {
			return "", err
		}
		return filtered + "\n", nil
	}

	switch out.Format {
	case FormatJSON:
		body, err := marshalJSON(result)
		if err != nil {
			return "", err
		}
		return body + "\n", nil
	case FormatYAML:
		if result == nil {
			return "null\n", nil
		}
		data, err := yaml.Marshal(result)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return render.Text(r.Renderer.Result(result)), nil
	}
}

func (r *Runner) writeText(text, source string, out OutputOptions) error {
	var output string
	switch out.Format {
	case FormatJSON:
		body, err := marshalJSON(types.DocumentText{SourceName: source, Text: text})
		if err != nil {
			return err
		}
		output = body + "\n"
	case FormatYAML:
		data, err := yaml.Marshal(types.DocumentText{SourceName: source, Text: text})
		if err != nil {
			return err
		}
		output = string(data)
	default:
		output = strings.TrimRight(text, "\n") + "\n"
	}
	return r.emit(output, out.SavePath)
}

// emit writes output to the save path when set, otherwise to Out
func (r *Runner) emit(output, savePath string) error {
	if savePath == "" {
		_, err := io.WriteString(r.Out, output)
		return err
	}

	if err := os.WriteFile(savePath, []byte(output), config.FilePermissions); err != nil {
		return fmt.Errorf("failed to save output: %w", err)
	}
	fmt.Fprintf(r.Err, "Output saved to %s\n", savePath)
	return nil
}

// marshalJSON indents without escaping HTML characters
func marshalJSON(v interface{}) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
