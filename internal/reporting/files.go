package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFiles renders both formats under outputDir:
// REPORT_<scenario_id>.md and projections_<scenario_id>.csv.
func WriteFiles(r *Report, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(outputDir, fmt.Sprintf("REPORT_%s.md", r.ScenarioID))
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}

	csvPath := filepath.Join(outputDir, fmt.Sprintf("projections_%s.csv", r.ScenarioID))
	if err := os.WriteFile(csvPath, []byte(RenderCSV(r)), 0o644); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}

	return nil
}
