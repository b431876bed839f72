package cssblocks

import (
	"encoding/json"
	"io"
	"time"
)

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Version   string         `json:"version"`
	Timestamp string         `json:"timestamp"`
	Summary   JSONSummary    `json:"summary"`
	Blocks    []BlockSummary `json:"blocks"`
	Issues    []JSONIssue    `json:"issues"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// JSONSummary contains high-level counts
type JSONSummary struct {
	TotalIssues     int     `json:"total_issues"`
	Errors          int     `json:"errors"`
	Warnings        int     `json:"warnings"`
	Truncated       int     `json:"truncated"`
	FilesDiscovered int     `json:"files_discovered"`
	FilesScanned    int     `json:"files_scanned"`
	FilesSkipped    int     `json:"files_skipped"`
	Blocks          int     `json:"blocks"`
	ValidBlocks     int     `json:"valid_blocks"`
	ValidPercentage float64 `json:"valid_percentage"`
}

// JSONIssue represents a single diagnostic
type JSONIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	EndLine  int    `json:"end_line,omitempty"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Linter   string `json:"linter"`
	Source   string `json:"source,omitempty"` // Optional source line
}

// WriteJSON writes the check result as JSON
func WriteJSON(w io.Writer, result *CheckResult) error {
	output := buildJSONOutput(result, time.Now())
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// buildJSONOutput converts CheckResult to JSONOutput
func buildJSONOutput(result *CheckResult, now time.Time) JSONOutput {
	var errors, warnings int
	for _, issue := range result.Issues {
		switch issue.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}

	jsonIssues := make([]JSONIssue, len(result.Issues))
	for i, issue := range result.Issues {
		source := ""
		if len(issue.SourceLines) > 0 {
			source = issue.SourceLines[0]
		}
		jsonIssues[i] = JSONIssue{
			File:     issue.Pos.Filename,
			Line:     issue.Pos.Line,
			Column:   issue.Pos.Column,
			Severity: issue.Severity,
			Message:  issue.Text,
			Linter:   issue.FromLinter,
			Source:   source,
		}
		if issue.LineRange != nil {
			jsonIssues[i].EndLine = issue.LineRange.To
		}
	}

	blocks := result.Blocks
	if blocks == nil {
		blocks = []BlockSummary{}
	}

	return JSONOutput{
		Version:   "1.0",
		Timestamp: now.Format(time.RFC3339),
		Summary: JSONSummary{
			TotalIssues:     len(result.Issues),
			Errors:          errors,
			Warnings:        warnings,
			Truncated:       result.TruncatedCount,
			FilesDiscovered: result.FilesDiscovered,
			FilesScanned:    result.FilesScanned,
			FilesSkipped:    result.FilesSkipped,
			Blocks:          len(result.Blocks),
			ValidBlocks:     result.ValidBlocks(),
			ValidPercentage: result.ValidPercentage(),
		},
		Blocks:   blocks,
		Issues:   jsonIssues,
		Warnings: result.Warnings,
	}
}
