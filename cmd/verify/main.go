// Package main recomputes stored projections from the source dataset and
// reports any divergence. Requires the seed the original run used.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"prospectiva-engine/internal/dataset"
	"prospectiva-engine/internal/projection"
	"prospectiva-engine/internal/storage/migrations"
	pgstore "prospectiva-engine/internal/storage/postgres"
	"prospectiva-engine/internal/verification"
)

func main() {
	_ = godotenv.Load()

	datasetPath := flag.String("dataset", "", "Tabular input file the stored run used")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("PROJECTOR_POSTGRES_DSN"), "PostgreSQL connection string")
	seed := flag.Int64("seed", 0, "Seed the original run used")
	horizon := flag.Int("horizon", 5, "Horizon the original run used")
	scenarioID := flag.String("scenario-id", "", "Verify one scenario (empty = all)")
	flag.Parse()

	logger := log.New(os.Stdout, "[verify] ", log.LstdFlags)

	if *datasetPath == "" {
		logger.Fatal("--dataset is required")
	}
	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn or PROJECTOR_POSTGRES_DSN is required")
	}
	if *seed == 0 {
		logger.Fatal("--seed is required; unseeded runs are not reproducible")
	}

	ctx := context.Background()

	ds, err := dataset.ReadFile(*datasetPath)
	if err != nil {
		logger.Fatalf("Read dataset: %v", err)
	}

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatalf("Postgres migrations: %v", err)
	}

	engine := projection.NewEngine(projection.Options{Logger: logger, Seed: *seed})
	verifier := verification.NewVerifier(
		pgstore.NewScenarioStore(pool),
		pgstore.NewProjectionStore(pool),
		engine,
		ds.Rows, ds.Columns, *horizon,
	)

	if *scenarioID != "" {
		result, err := verifier.VerifyScenario(ctx, *scenarioID)
		if err != nil {
			logger.Fatalf("Verify %s: %v", *scenarioID, err)
		}
		printResult(result)
		if !result.Match {
			os.Exit(1)
		}
		return
	}

	report, err := verifier.VerifyAll(ctx)
	if err != nil {
		logger.Fatalf("Verify: %v", err)
	}

	fmt.Printf("Verified %d scenarios: %d matched, %d divergent\n",
		report.TotalScenarios, report.MatchedScenarios, report.DivergentScenario)
	for _, result := range report.Results {
		printResult(&result)
	}
	if report.DivergentScenario > 0 {
		os.Exit(1)
	}
}

func printResult(r *verification.ScenarioResult) {
	status := "OK"
	if !r.Match {
		status = fmt.Sprintf("DIVERGENT (%d fields)", len(r.Divergences))
	}
	fmt.Printf("  %s: %s\n", r.ScenarioID, status)
	for i, d := range r.Divergences {
		if i >= 10 {
			fmt.Printf("    ... %d more\n", len(r.Divergences)-i)
			break
		}
		fmt.Printf("    %s: stored=%v recomputed=%v\n", d.Field, d.Expected, d.Actual)
	}
}
