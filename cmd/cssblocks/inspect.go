package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yacobolo/cssblocks"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Print the structure of one Block",
	Long: `Resolve a single Block file, relative to the root, and print its classes,
states, references and compositions followed by its diagnostics.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		config := buildCheckConfig()
		log := newLogger(cmd.ErrOrStderr(), config.Verbose, config.UseColors)
		defer func() { _ = log.Sync() }()

		result, err := cssblocks.Inspect(cmd.Context(), config, log, args[0])
		if err != nil {
			return fmt.Errorf("inspect failed: %w", err)
		}

		w := cmd.OutOrStdout()
		for _, line := range result.Lines {
			fmt.Fprintln(w, line)
		}
		if len(result.Issues) == 0 {
			return nil
		}
		fmt.Fprintln(w, "")
		cssblocks.NewReporter(w, config).PrintIssues(result.Issues)
		return errIssuesFound
	},
}
