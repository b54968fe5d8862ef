package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/studiowebux/kycfill/internal/cli"
	"github.com/studiowebux/kycfill/internal/client"
	"github.com/studiowebux/kycfill/internal/config"
	"github.com/studiowebux/kycfill/internal/history"
	"github.com/studiowebux/kycfill/internal/logging"
	"github.com/studiowebux/kycfill/internal/render"
	"github.com/studiowebux/kycfill/internal/workflow"
)

// app holds what every command needs
type app struct {
	settings config.Settings
	policy   workflow.RacePolicy
	logger   *slog.Logger
	history  *history.Manager // nil when disabled
	client   *client.Client
	closers  []io.Closer
}

// setup initializes configuration, applies flags and builds the client.
// logger is nil for the default CLI logger.
func setup(logger *slog.Logger) (*app, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := applyFlags(&settings); err != nil {
		return nil, err
	}

	policy, err := workflow.ParseRacePolicy(settings.RacePolicy)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = logging.ForCLI(flagVerbose)
	}

	a := &app{settings: settings, policy: policy, logger: logger}

	var recorder client.Recorder
	if settings.IsHistoryEnabled() {
		manager, err := history.NewManager(config.DatabasePath)
		if err != nil {
			// History is optional: keep working without it
			logger.Warn("history.open_error", "path", config.DatabasePath, "error", err)
		} else {
			a.history = manager
			a.closers = append(a.closers, manager)
			recorder = manager
		}
	}

	a.client, err = client.New(client.Options{
		BaseURL:  settings.APIBase,
		Timeout:  settings.Timeout,
		TLS:      settings.TLS,
		Hints:    settings.Hints,
		Logger:   logger,
		Recorder: recorder,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// applyFlags lets command line flags win over file and environment settings
func applyFlags(s *config.Settings) error {
	if flagAPIBase != "" {
		s.APIBase = flagAPIBase
	}
	if flagTimeout != "" {
		timeout, err := time.ParseDuration(flagTimeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		s.Timeout = timeout
	}
	if flagRacePolicy != "" {
		s.RacePolicy = flagRacePolicy
	}
	if flagNoHistory {
		disabled := false
		s.HistoryEnabled = &disabled
	}
	return s.Validate()
}

func (a *app) renderer() render.Renderer {
	return render.Renderer{Format: render.Format(a.settings.ProfileFormat)}
}

func (a *app) runner(cmd *cobra.Command) *cli.Runner {
	return &cli.Runner{
		Client:   a.client,
		Policy:   a.policy,
		Renderer: a.renderer(),
		Logger:   a.logger,
		Out:      cmd.OutOrStdout(),
		Err:      cmd.ErrOrStderr(),
	}
}

// Close releases the history database and log files
func (a *app) Close() {
	for _, c := range a.closers {
		c.Close()
	}
}

func outputOptions() (cli.OutputOptions, error) {
	switch flagOutput {
	case cli.FormatText, cli.FormatJSON, cli.FormatYAML:
	default:
		return cli.OutputOptions{}, fmt.Errorf("unknown output format %q (want text, json or yaml)", flagOutput)
	}
	return cli.OutputOptions{Format: flagOutput, SavePath: flagSave, Query: flagQuery}, nil
}

// readText reads text from a path, or stdin for "-"
func readText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text file: %w", err)
	}
	return string(data), nil
}
