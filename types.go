package cssblocks

import (
	"io"

	"github.com/yacobolo/cssblocks/internal/blockparser"
)

// Expectation is the block-id and block-name a definition file must declare.
type Expectation = blockparser.Expectation

// Config holds checker configuration
type Config struct {
	Root         string                 // "web/styles"; Block identifiers are relative to it
	Includes     []string               // ["**/*.block.css", "**/*.block.d.css"]
	Excludes     []string               // ["vendor/**"]
	Aliases      map[string]string      // "ui" -> "components/ui"
	Expectations map[string]Expectation // keyed by identifier
	Concurrency  int                    // 0 = one worker per CPU
	Gitignore    bool                   // Skip files matched by Root/.gitignore
	Verbose      bool

	// @block-debug targets; nil means os.Stdout / os.Stderr
	DebugStdout io.Writer
	DebugStderr io.Writer

	// golangci-style output configuration
	MaxIssuesPerLinter int  // 0 = unlimited
	MaxSameIssues      int  // 0 = unlimited
	PrintIssuedLines   bool // Show source lines with issues
	PrintLinterName    bool // Show (BlockSyntaxError) suffix
	UseColors          bool // Force color output
}

// DefaultIncludes are the patterns used when Config.Includes is empty.
var DefaultIncludes = []string{"**/*.block.css", "**/*.block.d.css"}

// CheckResult contains the outcome of a check run
type CheckResult struct {
	// Discovery
	FilesDiscovered int
	FilesScanned    int
	FilesSkipped    int

	// Blocks in discovery order
	Blocks []BlockSummary

	Issues         []Issue
	ErrorCount     int
	TruncatedCount int // Issues removed due to limits

	Warnings []string
}

// BlockSummary describes one resolved Block file.
type BlockSummary struct {
	File       string   `json:"file"`
	Name       string   `json:"name"`
	GUID       string   `json:"guid"`
	Definition bool     `json:"definition,omitempty"`
	Classes    int      `json:"classes"`
	States     int      `json:"states"`
	References []string `json:"references,omitempty"`
	Extends    string   `json:"extends,omitempty"`
	Errors     int      `json:"errors"`
	Failed     bool     `json:"failed,omitempty"` // parsing was abandoned
}

// Valid reports whether the Block resolved without any diagnostic.
func (s BlockSummary) Valid() bool {
	return s.Errors == 0 && !s.Failed
}

// ValidBlocks counts the Blocks without diagnostics.
func (r *CheckResult) ValidBlocks() int {
	n := 0
	for _, b := range r.Blocks {
		if b.Valid() {
			n++
		}
	}
	return n
}

// ValidPercentage is ValidBlocks as a share of all Blocks.
func (r *CheckResult) ValidPercentage() float64 {
	if len(r.Blocks) == 0 {
		return 100
	}
	return float64(r.ValidBlocks()) / float64(len(r.Blocks)) * 100
}

// OutputFormat represents the checker output format
type OutputFormat string

const (
	// OutputIssues shows only errors/warnings in golangci-lint format (CI-friendly)
	OutputIssues OutputFormat = "issues"
	// OutputSummary shows statistics and the Block table only
	OutputSummary OutputFormat = "summary"
	// OutputFull shows issues + statistics + Block table
	OutputFull OutputFormat = "full"
	// OutputJSON exports structured data in JSON format (tooling integration)
	OutputJSON OutputFormat = "json"
)
