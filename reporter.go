package cssblocks

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

// Reporter formats issues in golangci-lint style
type Reporter struct {
	w               io.Writer
	useColors       bool
	printLines      bool
	printLinterName bool
}

// NewReporter creates a new reporter with the given configuration
func NewReporter(w io.Writer, config Config) *Reporter {
	return &Reporter{
		w:               w,
		useColors:       shouldUseColors(config),
		printLines:      config.PrintIssuedLines,
		printLinterName: config.PrintLinterName,
	}
}

// shouldUseColors determines if colors should be enabled
func shouldUseColors(config Config) bool {
	// Explicit flag wins
	if config.UseColors {
		return true
	}

	// FORCE_COLOR (GitHub Actions, etc.)
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	if os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}

	// Auto-detect TTY
	if fileInfo, err := os.Stdout.Stat(); err == nil && fileInfo.Mode()&os.ModeCharDevice != 0 {
		return true
	}

	return false
}

// PrintIssues outputs issues in golangci-lint format. Issues are expected
// in report order already.
func (r *Reporter) PrintIssues(issues []Issue) {
	for _, issue := range issues {
		r.printIssue(issue)
	}
}

// printIssue formats a single issue in golangci-lint style
func (r *Reporter) printIssue(issue Issue) {
	// Format: file:line:col: message (linter)
	location := issue.Pos.Filename + ":"
	if issue.Pos.Line > 0 {
		location = fmt.Sprintf("%s:%d:%d:", issue.Pos.Filename, issue.Pos.Line, issue.Pos.Column)
	}

	linterSuffix := ""
	if r.printLinterName {
		linterSuffix = fmt.Sprintf(" (%s)", issue.FromLinter)
	}

	fmt.Fprintf(r.w, "%s %s%s\n",
		paint(styleLocation, location, r.useColors),
		issue.Text,
		paint(styleMuted, linterSuffix, r.useColors))

	// Source lines with caret indicator
	if r.printLines && len(issue.SourceLines) > 0 {
		for _, line := range issue.SourceLines {
			fmt.Fprintf(r.w, "\t%s\n", line)
		}

		caret := r.buildCaretIndicator(issue.SourceLines[0], issue.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", paint(styleCaret, caret, r.useColors))
	}
}

// buildCaretIndicator creates the "^" indicator aligned with the column.
// Tabs in the prefix are kept so the caret lines up.
func (r *Reporter) buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	// 0-based index = column - 1
	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}

	prefix := sourceLine[:prefixLen]

	var padding strings.Builder
	for _, ch := range prefix {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}

	return padding.String() + "^"
}

// PrintSummary outputs the issue counts per error kind, then per Block file
// with each file's kinds in the order they first occur.
func (r *Reporter) PrintSummary(result CheckResult) {
	byKind := make(map[string]int)
	byFile := make(map[string]*blockTally)
	for _, issue := range result.Issues {
		byKind[issue.FromLinter]++
		tally := byFile[issue.Pos.Filename]
		if tally == nil {
			tally = &blockTally{counts: make(map[string]int)}
			byFile[issue.Pos.Filename] = tally
		}
		if tally.counts[issue.FromLinter] == 0 {
			tally.kinds = append(tally.kinds, issue.FromLinter)
		}
		tally.counts[issue.FromLinter]++
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintf(r.w, "%s:\n", summaryHeadline(result, len(byFile)))

	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(r.w, "* %s: %d\n", kind, byKind[kind])
	}

	if len(byFile) == 0 {
		return
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return natural.Less(files[i], files[j]) })

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, "By Block:")
	for _, file := range files {
		tally := byFile[file]
		parts := make([]string, 0, len(tally.kinds))
		for _, kind := range tally.kinds {
			parts = append(parts, fmt.Sprintf("%s %d", kind, tally.counts[kind]))
		}
		fmt.Fprintf(r.w, "* %s: %s\n", paint(styleLocation, file, r.useColors), strings.Join(parts, ", "))
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, paint(styleMuted, "Hint: Run with --output-format full to see statistics and every Block", r.useColors))
}

type blockTally struct {
	kinds  []string
	counts map[string]int
}

// summaryHeadline reads like "3 issues in 2 of 5 Blocks (2 errors, 1 warning;
// 4 issues truncated)". The Block total is left out when nothing was checked.
func summaryHeadline(result CheckResult, failing int) string {
	var errors, warnings int
	for _, issue := range result.Issues {
		switch issue.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}

	headline := pluralizeCount(len(result.Issues), "issue", "issues")
	switch {
	case len(result.Blocks) > 0:
		headline += fmt.Sprintf(" in %d of %s", failing, pluralizeCount(len(result.Blocks), "Block", "Blocks"))
	case failing > 0:
		headline += " in " + pluralizeCount(failing, "file", "files")
	}

	var details []string
	if errors > 0 && warnings > 0 {
		details = append(details, pluralizeCount(errors, "error", "errors")+", "+pluralizeCount(warnings, "warning", "warnings"))
	}
	if result.TruncatedCount > 0 {
		details = append(details, pluralizeCount(result.TruncatedCount, "issue", "issues")+" truncated")
	}
	if len(details) > 0 {
		headline += " (" + strings.Join(details, "; ") + ")"
	}
	return headline
}

// pluralizeCount returns a formatted string with count and singular/plural form
func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors returns whether colors are enabled
func (r *Reporter) UseColors() bool {
	return r.useColors
}
