// Package cmd provides the CLI commands for TalentSift.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/talentsift/talentsift/internal/logging"
	"github.com/talentsift/talentsift/pkg/version"
)

// Persistent flags shared by all subcommands.
var (
	configPath string
	debugMode  bool
	plainMode  bool
	noColor    bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the talentsift CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "talentsift",
		Short: "Hybrid candidate search over a resume corpus",
		Long: `TalentSift finds candidates in a resume corpus using skill-gated
hybrid retrieval: a skill ledger gates candidates, lexical and dense
search run in parallel, and reciprocal rank fusion ranks the results
with evidence snippets explaining every match.

Typical flow:
  talentsift ingest resumes.jsonl
  talentsift search --skills python,kafka --min-yoe 5
  talentsift shortlist "senior go engineer with kafka, 5+ years"`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("talentsift version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ./talentsift.yaml, ~/.talentsift/config.yaml)")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&plainMode, "plain", false, "Force plain text output")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRun = func(*cobra.Command, []string) {
		if loggingCleanup != nil {
			loggingCleanup()
		}
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIngestCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newShortlistCmd())
	cmd.AddCommand(newResumeCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	// Keep stdout/stderr clean for command output; serve re-enables
	// the stderr mirror.
	cfg.WriteToStderr = false
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		// Logging must never block the command itself.
		return nil
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
