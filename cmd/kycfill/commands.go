package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/studiowebux/kycfill/internal/analytics"
	"github.com/studiowebux/kycfill/internal/cli"
	"github.com/studiowebux/kycfill/internal/config"
	"github.com/studiowebux/kycfill/internal/filter"
	"github.com/studiowebux/kycfill/internal/keybinds"
	"github.com/studiowebux/kycfill/internal/logging"
	"github.com/studiowebux/kycfill/internal/mock"
	"github.com/studiowebux/kycfill/internal/tui"
	"github.com/studiowebux/kycfill/internal/version"
	"github.com/studiowebux/kycfill/internal/workflow"
)

// Command flags
var (
	flagDir         string
	flagText        string
	flagTextFile    string
	flagConcurrency int
	flagOutDir      string
	flagLimit       int
	flagBySource    bool
	flagSource      string
	flagCheck       bool
	flagReleasesURL string
	flagMockPort    int
	flagMockHost    string
)

var processCmd = &cobra.Command{
	Use:   "process [file]",
	Short: "Upload a document and print its text, or the profile when the service generates one",
	Long: `Upload a document to the processing service.

The extracted text is printed so it can be reviewed and passed to 'generate'.
When the service answers with a profile directly, the profile is rendered.
Without a file argument, an interactive picker lists documents in the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, a *app, r *cli.Runner, out cli.OutputOptions) error {
			path, err := documentArg(a, args)
			if err != nil {
				return err
			}
			return r.Process(ctx, path, out)
		})
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the text of a document without generating anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, a *app, r *cli.Runner, out cli.OutputOptions) error {
			return r.Extract(ctx, args[0], out)
		})
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a profile from text",
	Long: `Generate a client profile and form answers from text.

Text comes from --text, --file (use - for stdin), or stdin when piped.
Blank text is not sent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := flagText
		if text == "" {
			path := flagTextFile
			if path == "" && !cli.IsInteractive() {
				path = "-"
			}
			if path != "" {
				var err error
				if text, err = readText(path); err != nil {
					return err
				}
			}
		}

		return withRunner(cmd, func(ctx context.Context, a *app, r *cli.Runner, out cli.OutputOptions) error {
			return r.Generate(ctx, text, out)
		})
	},
}

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Process a document and generate a profile from its text",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, a *app, r *cli.Runner, out cli.OutputOptions) error {
			path, err := documentArg(a, args)
			if err != nil {
				return err
			}
			return r.Run(ctx, path, out)
		})
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <result.json>",
	Short: "Render a saved generation result (comments allowed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := outputOptions()
		if err != nil {
			return err
		}
		// Rendering is offline: only settings are needed
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		settings, err := config.Load()
		if err != nil {
			return err
		}
		a := &app{settings: settings}
		r := &cli.Runner{Renderer: a.renderer(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
		return r.Render(args[0], out)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <files...>",
	Short: "Run both stages for many documents concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, a *app, r *cli.Runner, out cli.OutputOptions) error {
			if flagOutDir != "" {
				if err := os.MkdirAll(flagOutDir, config.DirPermissions); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			summary, err := r.Batch(ctx, args, cli.BatchOptions{
				Output:      out,
				Concurrency: flagConcurrency,
				OutputDir:   flagOutDir,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
			return err
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded exchanges with the service",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded exchanges, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(a *app) error {
			return cli.ListHistory(cmd.OutOrStdout(), a.history, flagSource, flagLimit, flagOutput)
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded exchanges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(a *app) error {
			return cli.ClearHistory(cmd.OutOrStdout(), a.history)
		})
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize recorded exchanges per operation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHistory(func(a *app) error {
			stats, err := analytics.NewManager(config.DatabasePath)
			if err != nil {
				return err
			}
			defer stats.Close()
			return cli.HistoryStats(cmd.OutOrStdout(), stats, flagBySource, flagOutput)
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return a.runner(cmd).Health(ctx)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and optionally check for updates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "kycfill %s\n", version.Current)
		if !flagCheck {
			return nil
		}

		info, err := version.NewChecker(flagReleasesURL).Check(cmd.Context(), version.Current)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}
		if info.Available {
			fmt.Fprintf(cmd.OutOrStdout(), "A newer version is available: %s\n%s\n", info.Latest, info.URL)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "You are running the latest version")
		}
		return nil
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock [config]",
	Short: "Serve canned responses for local development",
	Long: `Start a fake processing service.

Without a config file every endpoint answers with a small passport example.
A YAML or JSON config can override routes, status codes, bodies and delays.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mockConfig := &mock.Config{Logging: true}
		workdir := "."
		if len(args) > 0 {
			loaded, err := mock.LoadConfig(args[0])
			if err != nil {
				return err
			}
			mockConfig = loaded
			workdir = filepath.Dir(args[0])
		}
		if cmd.Flags().Changed("port") {
			mockConfig.Port = flagMockPort
		}
		if cmd.Flags().Changed("host") {
			mockConfig.Host = flagMockHost
		}

		server := mock.NewServer(mockConfig, workdir, logging.ForCLI(true))
		fmt.Fprintf(cmd.ErrOrStderr(), "Mock service listening on %s\n", server.Address())

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return server.ListenAndServe(ctx)
	},
}

// withRunner sets up the app and runs fn with a context cancelled on ctrl+c
func withRunner(cmd *cobra.Command, fn func(ctx context.Context, a *app, r *cli.Runner, out cli.OutputOptions) error) error {
	out, err := outputOptions()
	if err != nil {
		return err
	}

	a, err := setup(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return fn(ctx, a, a.runner(cmd), out)
}

func withHistory(fn func(a *app) error) error {
	a, err := setup(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.history == nil {
		return errors.New("history is disabled")
	}
	return fn(a)
}

// documentArg returns the file argument, or asks for one when running in a terminal
func documentArg(a *app, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if !cli.IsInteractive() {
		return "", errors.New("a document path is required")
	}

	files, err := filter.ListDocuments(".", a.settings.DocumentExts)
	if err != nil {
		return "", err
	}
	return cli.PromptForDocument(files)
}

func runTUI(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger, logFile, err := logging.OpenFile(config.LogFile, level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	a, err := setup(logger)
	if err != nil {
		return err
	}
	defer a.Close()

	registry, err := keybinds.LoadOrDefault(filepath.Join(config.ConfigDir, keybinds.FileName))
	if err != nil {
		return err
	}

	logger.Info("tui.start", "version", version.Current, "api_base", a.settings.APIBase, "race_policy", a.policy.String())
	return tui.Run(tui.Options{
		Service:      a.client,
		Coordinator:  workflow.NewCoordinator(a.policy, logger),
		History:      a.history,
		Keybinds:     registry,
		Renderer:     a.renderer(),
		DocumentDir:  flagDir,
		DocumentExts: a.settings.DocumentExts,
		Logger:       logger,
		Version:      version.Current,
	})
}
