package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/yacobolo/cssblocks"
)

const defaultConfigPath = ".cssblocks.yaml"

var k = koanf.New(".")

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// 3. CLI flags (highest precedence). Only flags set on the command line
	// are loaded so that their defaults never shadow the file.
	flags := cmd.Flags()
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (CSSBLOCKS_* prefix)
	if err := k.Load(env.Provider("CSSBLOCKS_", ".", func(s string) string {
		// CSSBLOCKS_CHECK_STRICT -> check.strict
		// CSSBLOCKS_ROOT -> root
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "CSSBLOCKS_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

// expectationEntry is one item of the expectations list. Identifiers contain
// dots, so they cannot be koanf map keys.
type expectationEntry struct {
	File string `koanf:"file"`
	ID   string `koanf:"id"`
	Name string `koanf:"name"`
}

// buildCheckConfig constructs the library's Config struct from koanf state.
func buildCheckConfig() cssblocks.Config {
	config := cssblocks.Config{
		Root:               getStringWithFallback("root", "root", "."),
		Includes:           getStringsWithFallback("include", "check.include", cssblocks.DefaultIncludes),
		Excludes:           getStringsWithFallback("exclude", "check.exclude", nil),
		Concurrency:        getIntWithFallback("concurrency", "check.concurrency", 0),
		Gitignore:          getBoolWithFallback("gitignore", "check.gitignore", true),
		Verbose:            getBoolWithFallback("verbose", "verbose", false),
		MaxIssuesPerLinter: getIntWithFallback("max-issues-per-linter", "check.max-issues-per-linter", 0),
		MaxSameIssues:      getIntWithFallback("max-same-issues", "check.max-same-issues", 0),
		PrintIssuedLines:   getBoolWithFallback("print-lines", "check.print-lines", true),
		PrintLinterName:    getBoolWithFallback("print-linter-name", "check.print-linter-name", true),
		UseColors:          getBoolWithFallback("color", "color", false),
	}

	// Handle aliases: check flag key first, then config key
	if aliases := k.StringMap("alias"); len(aliases) > 0 {
		config.Aliases = aliases
	} else if aliases := k.StringMap("aliases"); len(aliases) > 0 {
		config.Aliases = aliases
	}

	var entries []expectationEntry
	if err := k.Unmarshal("expectations", &entries); err == nil && len(entries) > 0 {
		config.Expectations = make(map[string]cssblocks.Expectation, len(entries))
		for _, e := range entries {
			config.Expectations[e.File] = cssblocks.Expectation{ID: e.ID, Name: e.Name}
		}
	}

	return config
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
