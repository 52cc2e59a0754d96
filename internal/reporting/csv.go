package reporting

import (
	"fmt"
	"sort"
	"strings"
)

// RenderCSV renders the report's point sequence as CSV, one row per
// (year, indicator), indicators sorted within each year.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("scenario_id,year,indicator,value,multiplier,projected\n")

	for _, point := range r.Points {
		indicators := make([]string, 0, len(point.Values))
		for name := range point.Values {
			indicators = append(indicators, name)
		}
		sort.Strings(indicators)

		for _, indicator := range indicators {
			multiplier := 0.0
			if point.Multipliers != nil {
				multiplier = point.Multipliers[indicator]
			}
			sb.WriteString(fmt.Sprintf("%s,%d,%s,%.6f,%.6f,%t\n",
				r.ScenarioID,
				point.Year,
				indicator,
				point.Values[indicator],
				multiplier,
				point.Projected,
			))
		}
	}

	return sb.String()
}
