// Package main manages stored scenarios: list what exists, create new ones.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage/migrations"
	pgstore "prospectiva-engine/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	postgresDSN := flag.String("postgres-dsn", os.Getenv("PROJECTOR_POSTGRES_DSN"), "PostgreSQL connection string")
	create := flag.Bool("create", false, "Create a scenario instead of listing")
	id := flag.String("id", "", "Scenario ID (minted when empty)")
	scenarioType := flag.String("type", "", "Scenario type: tendencial, optimista or pesimista")
	name := flag.String("name", "", "Display name (defaults from the type)")
	params := flag.String("params", "", `Multiplier overrides as a JSON object, e.g. '{"default":1.5,"tecnologia":2.0}'`)
	flag.Parse()

	logger := log.New(os.Stderr, "[scenarios] ", log.LstdFlags)

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

	store := pgstore.NewScenarioStore(pool)

	if *create {
		if err := createScenario(ctx, store, *id, *scenarioType, *name, *params); err != nil {
			logger.Fatalf("Create scenario: %v", err)
		}
		return
	}

	listScenarios(ctx, logger, store)
}

func createScenario(ctx context.Context, store *pgstore.ScenarioStore, id, scenarioType, name, rawParams string) error {
	t := domain.ScenarioType(scenarioType)
	if !t.IsValid() {
		return fmt.Errorf("unknown scenario type %q", scenarioType)
	}

	var customParams domain.CustomParams
	if rawParams != "" {
		// CustomParams decoding preserves JSON document order; override
		// resolution depends on it.
		if err := json.Unmarshal([]byte(rawParams), &customParams); err != nil {
			return fmt.Errorf("parse params: %w", err)
		}
	}

	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		name = domain.ConfigFor(t).Name
	}

	scenario := &domain.Scenario{
		ScenarioID: id,
		Type:       t,
		Name:       name,
		Params:     customParams,
		CreatedAt:  time.Now().UnixMilli(),
	}
	if err := store.Insert(ctx, scenario); err != nil {
		return err
	}

	fmt.Printf("Created scenario %s (%s)\n", scenario.ScenarioID, scenario.Type)
	return nil
}

func listScenarios(ctx context.Context, logger *log.Logger, store *pgstore.ScenarioStore) {
	scenarios, err := store.List(ctx)
	if err != nil {
		logger.Fatalf("List scenarios: %v", err)
	}
	if len(scenarios) == 0 {
		fmt.Println("No stored scenarios")
		return
	}

	fmt.Printf("%-38s %-12s %-24s %s\n", "ID", "TYPE", "NAME", "PARAMS")
	for _, s := range scenarios {
		paramsJSON := "-"
		if len(s.Params) > 0 {
			if raw, err := json.Marshal(s.Params); err == nil {
				paramsJSON = string(raw)
			}
		}
		fmt.Printf("%-38s %-12s %-24s %s\n", s.ScenarioID, s.Type, s.Name, paramsJSON)
	}
}
