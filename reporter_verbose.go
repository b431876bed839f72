package cssblocks

import (
	"fmt"
	"io"
	"strings"
)

// VerboseReporter prints statistics and the Block table
type VerboseReporter struct {
	w         io.Writer
	useColors bool
}

// NewVerboseReporter creates a verbose reporter
func NewVerboseReporter(w io.Writer, useColors bool) *VerboseReporter {
	return &VerboseReporter{
		w:         w,
		useColors: useColors,
	}
}

// PrintStatistics outputs discovery and resolution statistics
func (r *VerboseReporter) PrintStatistics(result CheckResult) {
	var classes, states, definitions int
	for _, b := range result.Blocks {
		classes += b.Classes
		states += b.States
		if b.Definition {
			definitions++
		}
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, paint(styleHeading, "CSS Blocks Statistics", r.useColors))
	fmt.Fprintln(r.w, "---------------------")

	fmt.Fprintf(r.w, "Files Discovered:   %d\n", result.FilesDiscovered)
	fmt.Fprintf(r.w, "Files Skipped:      %d\n", result.FilesSkipped)
	fmt.Fprintf(r.w, "Blocks:             %d\n", len(result.Blocks))
	fmt.Fprintf(r.w, "Definition Files:   %d\n", definitions)
	fmt.Fprintf(r.w, "Valid Blocks:       %d (%.1f%%)\n", result.ValidBlocks(), result.ValidPercentage())
	fmt.Fprintf(r.w, "Classes:            %d\n", classes)
	fmt.Fprintf(r.w, "States:             %d\n", states)
}

// PrintHealth shows the share of valid Blocks as a progress bar
func (r *VerboseReporter) PrintHealth(result CheckResult) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, paint(styleHeading, "Block Health", r.useColors))
	fmt.Fprintln(r.w, "------------")
	printProgressBar(r.w, result.ValidPercentage())
}

// PrintBlocks lists every Block with its name, id and diagnostics count
func (r *VerboseReporter) PrintBlocks(result CheckResult) {
	if len(result.Blocks) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, paint(styleHeading, "Blocks", r.useColors))
	fmt.Fprintln(r.w, "------")

	for _, b := range result.Blocks {
		line := fmt.Sprintf("%s (%s, %s)", b.File, b.Name, b.GUID)
		if b.Extends != "" {
			line += " extends " + b.Extends
		}
		if len(b.References) > 0 {
			line += " uses " + strings.Join(b.References, ", ")
		}
		fmt.Fprintf(r.w, "%s: %s\n", line, blockStatus(b, r.useColors))
	}
}

// PrintWarnings shows run warnings
func (r *VerboseReporter) PrintWarnings(result CheckResult) {
	if len(result.Warnings) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, paint(styleIssues, "Warnings", r.useColors))
	fmt.Fprintln(r.w, "--------")

	for _, warning := range result.Warnings {
		fmt.Fprintf(r.w, "• %s\n", warning)
	}
}

// printProgressBar prints a visual progress bar
func printProgressBar(w io.Writer, percentage float64) {
	barWidth := 20
	filled := int(percentage / 100 * float64(barWidth))

	fmt.Fprint(w, "[")
	for i := 0; i < barWidth; i++ {
		if i < filled {
			fmt.Fprint(w, "█")
		} else {
			fmt.Fprint(w, "░")
		}
	}
	fmt.Fprintf(w, "] %.1f%%\n", percentage)
}
