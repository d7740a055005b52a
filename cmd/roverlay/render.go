// This file renders run summaries for the terminal.
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"roverlay/internal/export"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// renderSummary formats an export summary, one line per image plus totals.
func renderSummary(s *export.Summary) string {
	var b strings.Builder

	results := append([]export.Result(nil), s.Results...)
	export.SortResults(results)

	b.WriteString(headerStyle.Render("ROI overlay export"))
	b.WriteString("\n")
	for _, r := range results {
		switch {
		case r.Err != nil:
			b.WriteString(failStyle.Render(fmt.Sprintf("  ✗ image %d: %v", r.ImageID, r.Err)))
		case r.Skipped:
			b.WriteString(skipStyle.Render(fmt.Sprintf("  - image %d: no ROIs, skipped", r.ImageID)))
		default:
			line := fmt.Sprintf("  ✓ image %d: %d shapes → %s", r.ImageID, r.ShapeCount, r.File)
			if r.AnnotationID > 0 {
				line += dimStyle.Render(fmt.Sprintf(" (annotation %d)", r.AnnotationID))
			}
			b.WriteString(okStyle.Render(line))
		}
		b.WriteString("\n")
	}

	totals := fmt.Sprintf("processed %d · skipped %d · failed %d",
		s.Processed, s.Skipped, s.Failed)
	b.WriteString(summaryStyle.Render(totals))
	return b.String()
}
