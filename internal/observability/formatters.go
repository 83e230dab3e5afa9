// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-applier/internal/filler"
	"github.com/jonathan/job-applier/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintFormSchema outputs the field locators resolved for a page.
func (p *Printer) PrintFormSchema(url string, schema *types.FormSchema) {
	if schema == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL: %s\n\n", url))
	for _, name := range schema.FieldNames() {
		locator := schema.Fields[name]
		if locator == "" {
			locator = "(not on page)"
		}
		sb.WriteString(fmt.Sprintf("%-14s %s\n", name, locator))
	}
	if len(schema.Required) > 0 {
		sb.WriteString(fmt.Sprintf("\nRequired: %s\n", strings.Join(schema.Required, ", ")))
	}

	p.printBox("RESOLVED FORM SCHEMA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFillReport outputs which fields were filled on a form.
func (p *Printer) PrintFillReport(url string, report filler.Report) {
	if len(report.Entries) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL: %s\n", url))
	sb.WriteString(fmt.Sprintf("Filled %d of %d fields\n\n", report.SucceededCount(), len(report.Entries)))

	for _, e := range report.Entries {
		switch {
		case e.Succeeded:
			sb.WriteString(fmt.Sprintf("✓ %s\n", e.Field))
		case e.Err != nil:
			sb.WriteString(fmt.Sprintf("✗ %s: %v\n", e.Field, e.Err))
		default:
			sb.WriteString(fmt.Sprintf("- %s\n", e.Field))
		}
	}

	p.printBox("FORM FILL REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatchSummary outputs per-status counts and the failed applications.
func (p *Printer) PrintBatchSummary(outcomes []types.Outcome, skipped []string) {
	var failed []types.Outcome
	for _, o := range outcomes {
		if o.Status == types.StatusFailed {
			failed = append(failed, o)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Attempted: %d\n", len(outcomes)))
	sb.WriteString(fmt.Sprintf("Succeeded: %d\n", len(outcomes)-len(failed)))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", len(failed)))
	sb.WriteString(fmt.Sprintf("Skipped:   %d\n", len(skipped)))

	if len(failed) > 0 {
		sb.WriteString("\nFailures:\n")
		count := min(len(failed), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("⚠ %s (%s)\n", failed[i].JobKey, failed[i].Platform))
			sb.WriteString(fmt.Sprintf("  %s\n", failed[i].Error))
		}
		if len(failed) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(failed)-maxItemsToShow))
		}
	}

	p.printBox("BATCH SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}
