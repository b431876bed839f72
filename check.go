package cssblocks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"runtime"
	"sort"
	"strings"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/cssblocks/internal/block"
	"github.com/yacobolo/cssblocks/internal/blockparser"
	"github.com/yacobolo/cssblocks/internal/diag"
)

// Check is the main entry point: it discovers the Block files under
// config.Root, resolves each of them and reports every diagnostic.
func Check(ctx context.Context, config Config, log *zap.Logger) (*CheckResult, error) {
	fsys, err := rootFS(config.Root)
	if err != nil {
		return nil, err
	}
	return CheckFS(ctx, fsys, config, log)
}

// CheckFS is Check over an arbitrary filesystem. config.Root is ignored.
func CheckFS(ctx context.Context, fsys billy.Filesystem, config Config, log *zap.Logger) (*CheckResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("check")
	result := &CheckResult{}

	// 1. Discover Block files
	files, stats, err := discoverBlockFiles(fsys, config.Includes, config.Excludes, config.Gitignore)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	result.FilesDiscovered = stats.FilesDiscovered
	result.FilesScanned = stats.FilesScanned
	result.FilesSkipped = stats.FilesSkipped
	log.Debug("Discovered block files",
		zap.Int("files", stats.FilesScanned),
		zap.Int("skipped", stats.FilesSkipped))

	// 2. Resolve every Block; shared references are parsed once
	c := newChecker(fsys, config, log)
	outcomes := make([]outcome, len(files))
	var g errgroup.Group
	g.SetLimit(workers(config.Concurrency))
	for i, file := range files {
		g.Go(func() error {
			b, err := c.factory.GetBlock(ctx, file)
			outcomes[i] = outcome{file: file, block: b, err: err}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Convert diagnostics into issues
	var issues []Issue
	for _, o := range outcomes {
		result.Blocks = append(result.Blocks, summarize(o))
		issues = append(issues, c.issues(o)...)
		if o.err != nil && o.block == nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to resolve %s", c.importer.DebugIdentifier(o.file)))
		}
	}
	sortIssues(issues)
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			result.ErrorCount++
		}
	}
	result.Issues, result.TruncatedCount = limitIssues(issues, config)

	log.Debug("Check complete",
		zap.Int("blocks", len(result.Blocks)),
		zap.Int("parsed", c.factory.Parses()),
		zap.Int("issues", len(issues)))
	return result, nil
}

// InspectResult is the description of one Block.
type InspectResult struct {
	File   string
	Lines  []string
	Issues []Issue
}

// Inspect resolves a single Block file, given relative to config.Root, and
// describes its structure.
func Inspect(ctx context.Context, config Config, log *zap.Logger, file string) (*InspectResult, error) {
	fsys, err := rootFS(config.Root)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := newChecker(fsys, config, log.Named("inspect"))

	id, err := c.importer.Identifier("", file)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", file, err)
	}
	b, err := c.factory.GetBlock(ctx, id)
	if b == nil {
		if err == nil {
			err = fmt.Errorf("no block for %s", file)
		}
		return nil, err
	}

	o := outcome{file: id, block: b, err: err}
	issues := c.issues(o)
	sortIssues(issues)
	return &InspectResult{
		File:   c.importer.DebugIdentifier(id),
		Lines:  b.DebugLines(),
		Issues: issues,
	}, nil
}

func rootFS(root string) (billy.Filesystem, error) {
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}
	return osfs.New(root), nil
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU()
}

type outcome struct {
	file  string
	block *block.Block
	err   error
}

// checker holds the state shared by one run.
type checker struct {
	fsys     billy.Filesystem
	importer *blockparser.FSImporter
	factory  *blockparser.Factory
	lines    map[string][]string
}

func newChecker(fsys billy.Filesystem, config Config, log *zap.Logger) *checker {
	stdout, stderr := config.DebugStdout, config.DebugStderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	importer := blockparser.NewFSImporter(fsys, config.Aliases, config.Expectations)
	return &checker{
		fsys:     fsys,
		importer: importer,
		factory: blockparser.NewFactory(importer, log,
			blockparser.WithConcurrency(config.Concurrency),
			blockparser.WithDebugOutput(stdout, stderr)),
		lines: make(map[string][]string),
	}
}

// issues converts the recorded and thrown errors of one file.
func (c *checker) issues(o outcome) []Issue {
	var out []Issue
	if o.block != nil {
		for _, e := range o.block.Errors() {
			out = append(out, c.issue(e, o.file))
		}
	}
	if o.err != nil {
		for _, e := range diag.Flatten(o.err) {
			out = append(out, c.issue(e, o.file))
		}
	}
	return out
}

func (c *checker) issue(e *diag.Error, file string) Issue {
	issue := Issue{
		FromLinter: string(e.Kind),
		Text:       issueText(e),
		Severity:   SeverityError,
	}

	id := file
	loc := e.Location
	if loc != nil && loc.Filename != "" && loc.Filename != file {
		// mapped through a source map; sources are relative to the map
		id = path.Join(path.Dir(file), loc.Filename)
	}
	issue.Pos.Filename = c.importer.DebugIdentifier(id)
	if loc == nil || loc.Start.Line == 0 {
		return issue
	}

	issue.Pos.Line = loc.Start.Line
	issue.Pos.Column = loc.Start.Column
	if loc.End.Line > loc.Start.Line {
		issue.LineRange = &LineRange{From: loc.Start.Line, To: loc.End.Line}
	}
	if line, ok := c.sourceLine(id, loc.Start.Line); ok {
		issue.SourceLines = []string{line}
	}
	return issue
}

// issueText renders a diagnostic. A cascading error names the innermost
// problem, which lives in another file.
func issueText(e *diag.Error) string {
	if e.Kind != diag.KindCascading {
		return e.Message
	}
	for _, err := range diag.Chain(e.Cause) {
		var d *diag.Error
		if !errors.As(err, &d) {
			return e.Message + " " + err.Error()
		}
		if d.Kind == diag.KindCascading {
			continue
		}
		if d.Location != nil && d.Location.Filename != "" {
			return fmt.Sprintf("%s %s: %s", e.Message, d.Location, d.Message)
		}
		return e.Message + " " + d.Message
	}
	return e.Message
}

func (c *checker) sourceLine(id string, n int) (string, bool) {
	lines, ok := c.lines[id]
	if !ok {
		data, err := util.ReadFile(c.fsys, id)
		if err == nil {
			lines = strings.Split(string(data), "\n")
		}
		c.lines[id] = lines
	}
	if n <= 0 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(lines[n-1], "\r"), true
}

func summarize(o outcome) BlockSummary {
	s := BlockSummary{File: o.file, Failed: o.err != nil}
	b := o.block
	if b == nil {
		return s
	}
	s.Name = b.Name()
	s.GUID = b.GUID()
	s.Definition = b.IsDefinition()
	s.References = b.References()
	s.Extends = b.BaseName()
	s.Errors = len(b.Errors())
	for _, cls := range b.Classes() {
		s.Classes++
		s.States += len(cls.AttributeValues())
	}
	return s
}

// sortIssues orders issues by file (natural order), then line, then column.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i].Pos, issues[j].Pos
		if a.Filename != b.Filename {
			return natural.Less(a.Filename, b.Filename)
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// limitIssues applies max-issues-per-linter and max-same-issues constraints
func limitIssues(issues []Issue, config Config) ([]Issue, int) {
	originalCount := len(issues)

	if config.MaxIssuesPerLinter > 0 {
		perLinter := make(map[string]int)
		var kept []Issue
		for _, issue := range issues {
			if perLinter[issue.FromLinter] < config.MaxIssuesPerLinter {
				kept = append(kept, issue)
				perLinter[issue.FromLinter]++
			}
		}
		issues = kept
	}

	// deduplication by message text
	if config.MaxSameIssues > 0 {
		issues = deduplicateSameIssues(issues, config.MaxSameIssues)
	}

	return issues, originalCount - len(issues)
}

// deduplicateSameIssues limits how many times the same message appears
func deduplicateSameIssues(issues []Issue, maxSame int) []Issue {
	messageCounts := make(map[string]int)
	var filtered []Issue

	for _, issue := range issues {
		count := messageCounts[issue.Text]
		if count < maxSame {
			filtered = append(filtered, issue)
			messageCounts[issue.Text]++
		}
	}

	return filtered
}
