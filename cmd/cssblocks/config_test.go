package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/cssblocks"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
}

// resetFlags clears flag values left behind by a previous Execute.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetKoanf()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssblocks.yaml")
	configContent := `
root: web/styles
verbose: true

aliases:
  ui: src/ui
  forms: vendor/forms

expectations:
  - file: ui/nav.block.d.css
    id: nav-id
    name: nav

check:
  strict: true
  concurrency: 4
  include:
    - "blocks/**/*.block.css"
  exclude:
    - "dist/**"
  gitignore: false
  print-lines: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))
	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "web/styles", k.String("root"))
	assert.True(t, k.Bool("verbose"))
	assert.True(t, k.Bool("check.strict"))

	config := buildCheckConfig()
	assert.Equal(t, "web/styles", config.Root)
	assert.True(t, config.Verbose)
	assert.Equal(t, 4, config.Concurrency)
	assert.Equal(t, []string{"blocks/**/*.block.css"}, config.Includes)
	assert.Equal(t, []string{"dist/**"}, config.Excludes)
	assert.False(t, config.Gitignore)
	assert.False(t, config.PrintIssuedLines)
	assert.Equal(t, map[string]string{"ui": "src/ui", "forms": "vendor/forms"}, config.Aliases)
	assert.Equal(t, map[string]cssblocks.Expectation{
		"ui/nav.block.d.css": {ID: "nav-id", Name: "nav"},
	}, config.Expectations)
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// A missing config file is not an error
	require.NoError(t, loadConfigFromPath("/nonexistent/.cssblocks.yaml"))

	config := buildCheckConfig()
	assert.Equal(t, ".", config.Root)
	assert.Equal(t, cssblocks.DefaultIncludes, config.Includes)
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	dir := t.TempDir()
	configPath := filepath.Join(dir, ".cssblocks.yaml")
	configContent := `
root: from-file
check:
  strict: false
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	t.Setenv("CSSBLOCKS_ROOT", "from-env")
	t.Setenv("CSSBLOCKS_CHECK_STRICT", "true")

	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "from-env", k.String("root"))
	assert.True(t, k.Bool("check.strict"))
}

func TestBuildCheckConfig_Defaults(t *testing.T) {
	resetKoanf()

	config := buildCheckConfig()
	assert.Equal(t, ".", config.Root)
	assert.Equal(t, cssblocks.DefaultIncludes, config.Includes)
	assert.Nil(t, config.Excludes)
	assert.Nil(t, config.Aliases)
	assert.Nil(t, config.Expectations)
	assert.Zero(t, config.Concurrency)
	assert.True(t, config.Gitignore)
	assert.False(t, config.Verbose)
	assert.Zero(t, config.MaxIssuesPerLinter)
	assert.Zero(t, config.MaxSameIssues)
	assert.True(t, config.PrintIssuedLines)
	assert.True(t, config.PrintLinterName)
	assert.False(t, config.UseColors)
}

func TestFlagDefaultsDoNotShadowConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFiles(t, dir, map[string]string{
		".cssblocks.yaml": "check:\n  print-lines: false\n  print-linter-name: false\n",
		"nav.block.css":   ".a.b { color: red; }\n",
	})

	out, err := execute(t, "check")
	require.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, out, "nav.block.css:1:3: Two distinct classes cannot be selected on the same element: .a.b\n")
	assert.NotContains(t, out, "(BlockSyntaxError)")
	assert.NotContains(t, out, "\t.a.b")
}

func TestInitCommand_CreatesConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Equal(t, "Created .cssblocks.yaml\n", out)

	data, err := os.ReadFile(".cssblocks.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "root: .")
	assert.Contains(t, string(data), "check:")
	assert.Contains(t, string(data), "expectations:")

	// The generated file loads cleanly
	resetKoanf()
	require.NoError(t, loadConfigFromPath(".cssblocks.yaml"))
	config := buildCheckConfig()
	assert.Equal(t, map[string]string{"ui": "src/ui"}, config.Aliases)
	assert.Equal(t, []string{"node_modules/**"}, config.Excludes)
	assert.Contains(t, config.Expectations, "src/ui/nav.block.d.css")
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(".cssblocks.yaml", []byte("existing"), 0o644))

	_, err := execute(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(".cssblocks.yaml", []byte("existing"), 0o644))

	_, err := execute(t, "init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(".cssblocks.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "root: .")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cssblocks dev\n", out)
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"ui/base.block.css": ":scope { color: red; }\n.btn { color: red; }\n",
		"ui/nav.block.css":  "@block base from \"./base.block.css\";\n:scope { extends: base; }\n",
	})

	t.Run("clean", func(t *testing.T) {
		out, err := execute(t, "check", "--root", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "0 issues in 0 of 2 Blocks:")
	})

	t.Run("default command", func(t *testing.T) {
		out, err := execute(t, "--root", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "0 issues in 0 of 2 Blocks:")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "check", "--root", dir, "--output-format", "json")
		require.NoError(t, err)

		var decoded cssblocks.JSONOutput
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		require.Len(t, decoded.Blocks, 2)
		assert.Equal(t, "base", decoded.Blocks[1].Extends)
		assert.Equal(t, 2, decoded.Summary.ValidBlocks)
	})

	t.Run("alias", func(t *testing.T) {
		writeFiles(t, dir, map[string]string{
			"app/page.block.css": "@block nav from \"ui/nav.block.css\";\n:scope { color: red; }\n",
		})
		t.Cleanup(func() { _ = os.RemoveAll(filepath.Join(dir, "app")) })

		_, err := execute(t, "check", "--root", dir, "--quiet")
		require.ErrorIs(t, err, errIssuesFound)

		_, err = execute(t, "check", "--root", dir, "--quiet", "--alias", "ui=ui")
		require.NoError(t, err)
	})
}

func TestCheckCommandFailures(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nav.block.css": ".a.b { color: red; }\n",
	})

	out, err := execute(t, "check", "--root", dir)
	require.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, out, "Two distinct classes cannot be selected on the same element: .a.b (BlockSyntaxError)")
	assert.Contains(t, out, "1 issue in 1 of 1 Block:")
	assert.Contains(t, out, "By Block:\n* nav.block.css: BlockSyntaxError 1\n")

	out, err = execute(t, "check", "--root", dir, "--quiet")
	require.ErrorIs(t, err, errIssuesFound)
	assert.Empty(t, out)

	_, err = execute(t, "check", "--root", filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errIssuesFound)
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"nav.block.css": ":scope[state|open] { color: red; }\n.item { color: blue; }\n",
		"bad.block.css": ".a.b { color: red; }\n",
	})

	out, err := execute(t, "inspect", "--root", dir, "nav.block.css")
	require.NoError(t, err)
	assert.Equal(t, "Source: nav.block.css\n:scope\n  [state|open]\n.item\n", out)

	out, err = execute(t, "inspect", "--root", dir, "bad.block.css")
	require.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, out, "Two distinct classes cannot be selected on the same element")

	_, err = execute(t, "inspect", "--root", dir)
	require.Error(t, err)
}

func TestGetStringWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, "default", getStringWithFallback("flag-key", "config.key", "default"))
}

func TestGetStringsWithFallback(t *testing.T) {
	resetKoanf()

	assert.Equal(t, []string{"a"}, getStringsWithFallback("flag-key", "config.key", []string{"a"}))
	require.NoError(t, k.Set("config.key", []string{"b", "c"}))
	assert.Equal(t, []string{"b", "c"}, getStringsWithFallback("flag-key", "config.key", []string{"a"}))
	require.NoError(t, k.Set("flag-key", []string{"d"}))
	assert.Equal(t, []string{"d"}, getStringsWithFallback("flag-key", "config.key", []string{"a"}))
}

func TestGetBoolWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.False(t, getBoolWithFallback("flag-key", "config.key", false))
	assert.True(t, getBoolWithFallback("flag-key", "config.key", true))
}

func TestGetIntWithFallback(t *testing.T) {
	resetKoanf()

	// No keys set - should return default
	assert.Equal(t, 42, getIntWithFallback("flag-key", "config.key", 42))
}
