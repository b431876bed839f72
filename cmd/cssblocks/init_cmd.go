package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .cssblocks.yaml config file",
	Long:  `Create a .cssblocks.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(defaultConfigPath); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigPath)
		}

		if err := os.WriteFile(defaultConfigPath, []byte(defaultConfig), 0o644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", defaultConfigPath)
		return nil
	},
}

const defaultConfig = `# cssblocks configuration
# Docs: https://github.com/yacobolo/cssblocks

# Shared settings
root: .
verbose: false
color: false

# Import path prefixes, e.g. @block x from "ui/button.block.css"
aliases:
  ui: src/ui

# Definition files that must declare a given block-id / block-name
expectations:
  - file: src/ui/nav.block.d.css
    id: nav
    name: nav

# Checking settings
check:
  include:
    - "**/*.block.css"
    - "**/*.block.d.css"
  exclude:
    - "node_modules/**"
  gitignore: true
  concurrency: 0           # 0 = one worker per CPU
  strict: false
  output-format: issues    # issues | summary | full | json
  max-issues-per-linter: 0 # 0 = unlimited
  max-same-issues: 0       # 0 = unlimited
  print-lines: true
  print-linter-name: true
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
