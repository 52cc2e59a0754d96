package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown document.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Projection Report: %s\n\n", displayName(r)))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Scenario summary
	sb.WriteString("## Scenario\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Scenario ID | %s |\n", r.ScenarioID))
	sb.WriteString(fmt.Sprintf("| Type | %s |\n", r.ScenarioType))
	if r.DatasetID != "" {
		sb.WriteString(fmt.Sprintf("| Dataset | %s |\n", r.DatasetID))
	}
	sb.WriteString(fmt.Sprintf("| Historical years | %d |\n", r.HistoricalYears))
	sb.WriteString(fmt.Sprintf("| Projected years | %d |\n", r.ProjectedYears))
	sb.WriteString("\n")

	if r.Fallback {
		sb.WriteString(fmt.Sprintf("**Synthetic fallback data.** Reason: %s\n\n", r.Reason))
	}

	// Per-indicator summary
	if len(r.Indicators) > 0 {
		sb.WriteString("## Indicators\n\n")
		sb.WriteString("| Indicator | First Year | First Value | Last Year | Last Value | Growth % |\n")
		sb.WriteString("|-----------|------------|-------------|-----------|------------|----------|\n")
		for _, s := range r.Indicators {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %d | %.2f | %.1f |\n",
				s.Indicator, s.FirstYear, s.FirstValue, s.LastYear, s.LastValue, s.GrowthPct))
		}
		sb.WriteString("\n")
	}

	// Projected values table, one column per indicator
	projected := projectedRows(r)
	if len(projected) > 0 {
		columns := r.Indicators
		sb.WriteString("## Projected Values\n\n")
		sb.WriteString("| Year |")
		for _, c := range columns {
			sb.WriteString(fmt.Sprintf(" %s |", c.Indicator))
		}
		sb.WriteString("\n|------|")
		for range columns {
			sb.WriteString("------|")
		}
		sb.WriteString("\n")
		for _, point := range projected {
			sb.WriteString(fmt.Sprintf("| %d |", point.Year))
			for _, c := range columns {
				if v, ok := point.Values[c.Indicator]; ok {
					sb.WriteString(fmt.Sprintf(" %.2f |", v))
				} else {
					sb.WriteString(" - |")
				}
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func displayName(r *Report) string {
	if r.ScenarioName != "" {
		return r.ScenarioName
	}
	return r.ScenarioID
}

func projectedRows(r *Report) []PointRow {
	var rows []PointRow
	for _, point := range r.Points {
		if point.Projected {
			rows = append(rows, point)
		}
	}
	return rows
}
