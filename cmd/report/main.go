// Package main regenerates reports from stored projections without re-running
// the engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"prospectiva-engine/internal/reporting"
	"prospectiva-engine/internal/storage/migrations"
	pgstore "prospectiva-engine/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	scenarioID := flag.String("scenario-id", "", "Scenario to report on (empty = all stored scenarios)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("PROJECTOR_POSTGRES_DSN"), "PostgreSQL connection string")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	datasetID := flag.String("dataset-id", "", "Dataset fingerprint to stamp on the report")
	flag.Parse()

	logger := log.New(os.Stdout, "[report] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn or PROJECTOR_POSTGRES_DSN is required")
	}

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Postgres migrations: %v", err)
	}

	scenarioStore := pgstore.NewScenarioStore(pool)
	projectionStore := pgstore.NewProjectionStore(pool)

	generator := reporting.NewGenerator(scenarioStore, projectionStore).
		WithDatasetID(*datasetID)

	var ids []string
	if *scenarioID != "" {
		ids = []string{*scenarioID}
	} else {
		scenarios, err := scenarioStore.List(ctx)
		if err != nil {
			logger.Fatalf("List scenarios: %v", err)
		}
		if len(scenarios) == 0 {
			logger.Fatal("No stored scenarios; run the projector first")
		}
		for _, s := range scenarios {
			ids = append(ids, s.ScenarioID)
		}
	}

	for _, id := range ids {
		report, err := generator.Generate(ctx, id)
		if err != nil {
			logger.Fatalf("Generate report for %s: %v", id, err)
		}
		if err := reporting.WriteFiles(report, *outputDir); err != nil {
			logger.Fatalf("Write report for %s: %v", id, err)
		}
		fmt.Printf("Report for %s: %d historical + %d projected years, %d indicators\n",
			id, report.HistoricalYears, report.ProjectedYears, len(report.Indicators))
	}

	logger.Printf("Wrote %d reports to %s", len(ids), *outputDir)
}
