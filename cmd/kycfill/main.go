package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studiowebux/kycfill/internal/mock"
	"github.com/studiowebux/kycfill/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kycfill",
	Short: "kycfill - turn client documents into a structured profile",
	Long: `kycfill uploads a client document to the processing service, lets you
review the extracted text, and generates a client profile with answers to the
onboarding forms.

Run without arguments to start the interactive TUI.

Examples:
  kycfill                              # Start interactive TUI
  kycfill process passport.pdf         # Extract text (or a profile) from a document
  kycfill generate --file notes.txt    # Generate a profile from text
  kycfill run passport.pdf -o json     # Both stages back to back
  kycfill batch docs/*.pdf --out-dir results
  kycfill render result.json           # Render a saved result
  kycfill history list                 # Show recorded exchanges
  kycfill history stats --by-source    # Success rates and latency per document
  kycfill mock --port 8000             # Fake service for local development`,
	Version:       version.Current,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// Global flags
var (
	flagAPIBase    string
	flagTimeout    string
	flagRacePolicy string
	flagVerbose    bool
	flagNoHistory  bool
)

// Output flags shared by commands that print results
var (
	flagOutput string
	flagSave   string
	flagQuery  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIBase, "api-base", "", "Service address (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagTimeout, "timeout", "", "Client timeout, e.g. 30s (0 waits indefinitely)")
	rootCmd.PersistentFlags().StringVar(&flagRacePolicy, "race-policy", "", "last-response-wins or latest-request-wins")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record exchanges")

	rootCmd.Flags().StringVarP(&flagDir, "dir", "d", ".", "Directory to pick documents from")

	for _, cmd := range []*cobra.Command{processCmd, extractCmd, generateCmd, runCmd, renderCmd, batchCmd} {
		addOutputFlags(cmd)
	}

	generateCmd.Flags().StringVarP(&flagText, "text", "t", "", "Text to generate from")
	generateCmd.Flags().StringVarP(&flagTextFile, "file", "f", "", "Read text from file (- for stdin)")

	batchCmd.Flags().IntVarP(&flagConcurrency, "concurrency", "c", 0, "Documents processed in parallel")
	batchCmd.Flags().StringVar(&flagOutDir, "out-dir", "", "Write one result file per document")

	historyListCmd.Flags().IntVarP(&flagLimit, "limit", "n", 50, "Maximum entries (0 for all)")
	historyListCmd.Flags().StringVar(&flagSource, "source", "", "Only entries for this document name")
	historyListCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	historyStatsCmd.Flags().BoolVar(&flagBySource, "by-source", false, "One row per operation and document")
	historyStatsCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	historyCmd.AddCommand(historyListCmd, historyClearCmd, historyStatsCmd)

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")
	versionCmd.Flags().StringVar(&flagReleasesURL, "releases-url", "", "Releases API endpoint")

	mockCmd.Flags().IntVarP(&flagMockPort, "port", "p", mock.DefaultPort, "Listen port")
	mockCmd.Flags().StringVar(&flagMockHost, "host", mock.DefaultHost, "Listen host")

	rootCmd.AddCommand(processCmd, extractCmd, generateCmd, runCmd, renderCmd, batchCmd, historyCmd, healthCmd, versionCmd, mockCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	cmd.Flags().StringVarP(&flagSave, "save", "s", "", "Save output to file")
	cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query over the JSON result")
}
