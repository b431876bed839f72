package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yacobolo/cssblocks"
)

// errIssuesFound makes the process exit with status 1 without printing
// anything beyond the report.
var errIssuesFound = errors.New("issues found")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every Block file under the root",
	Long: `Discover Block files (*.block.css, *.block.d.css), resolve their references
and report syntax, path, cascading and definition errors.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCheck(cmd)
	},
}

func init() {
	f := checkCmd.Flags()
	f.StringSlice("include", nil, "Glob patterns of Block files (default **/*.block.css, **/*.block.d.css)")
	f.StringSlice("exclude", nil, "Glob patterns to skip")
	f.StringToString("alias", nil, "Path aliases, e.g. ui=src/ui")
	f.Int("concurrency", 0, "Files resolved in parallel (0 = one per CPU)")
	f.Bool("gitignore", true, "Skip files matched by the root .gitignore")
	f.String("output-format", "", "Output format: issues|summary|full|json")
	f.Int("max-issues-per-linter", 0, "Max issues to show per error kind (0=unlimited)")
	f.Int("max-same-issues", 0, "Max repeated issues to show (0=unlimited)")
	f.Bool("print-lines", true, "Show source lines with issues")
	f.Bool("print-linter-name", true, "Show (BlockSyntaxError) suffix on issues")
	f.Bool("strict", false, "Exit 1 on any issue or warning (CI mode)")
}

func runCheck(cmd *cobra.Command) error {
	config := buildCheckConfig()
	quiet := getBoolWithFallback("quiet", "quiet", false)
	outputFormat := getStringWithFallback("output-format", "check.output-format", "")
	format := cssblocks.DetermineOutputFormat(outputFormat, quiet)

	// @block-debug must not end up inside the JSON document
	if format == cssblocks.OutputJSON {
		config.DebugStdout = os.Stderr
	}
	if quiet {
		config.DebugStdout, config.DebugStderr = io.Discard, io.Discard
	}

	log := newLogger(cmd.ErrOrStderr(), config.Verbose, config.UseColors)
	defer func() { _ = log.Sync() }()

	result, err := cssblocks.Check(cmd.Context(), config, log)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if !quiet {
		if err := cssblocks.WriteOutput(cmd.OutOrStdout(), result, format, config); err != nil {
			return err
		}
	}

	// Exit code logic - "Soft Gate" approach
	if getBoolWithFallback("strict", "check.strict", false) {
		// Strict mode: any issue or warning fails the build
		if len(result.Issues) > 0 || len(result.Warnings) > 0 {
			return errIssuesFound
		}
	} else if result.ErrorCount > 0 {
		return errIssuesFound
	}
	return nil
}
