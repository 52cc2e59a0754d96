// Package main provides the projection run entry point.
// Executes: dataset ingestion → scenario seeding → projection → reporting
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"prospectiva-engine/internal/config"
	"prospectiva-engine/internal/dataset"
	"prospectiva-engine/internal/idhash"
	"prospectiva-engine/internal/normalization"
	"prospectiva-engine/internal/observability"
	"prospectiva-engine/internal/orchestrator"
	"prospectiva-engine/internal/projection"
	"prospectiva-engine/internal/reporting"
	"prospectiva-engine/internal/storage"
	chstore "prospectiva-engine/internal/storage/clickhouse"
	"prospectiva-engine/internal/storage/memory"
	"prospectiva-engine/internal/storage/migrations"
	pgstore "prospectiva-engine/internal/storage/postgres"
)

func main() {
	// Load .env before flag defaults read the environment
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Run configuration file (YAML)")
	datasetPath := flag.String("dataset", "", "Tabular input file (.csv or .xlsx); overrides config")
	horizon := flag.Int("horizon", 0, "Years to project; overrides config")
	outputDir := flag.String("output-dir", "", "Output directory for reports; overrides config")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("PROJECTOR_POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("PROJECTOR_CLICKHOUSE_DSN"), "ClickHouse connection string (optional analytic sink)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of databases")
	seed := flag.Int64("seed", 0, "Random seed for reproducible runs (0 = clock derived)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stdout, "[projector] ", log.LstdFlags)

	cfg, err := resolveConfig(*configPath, *datasetPath, *horizon, *outputDir,
		*postgresDSN, *clickhouseDSN, *useMemory, *seed)
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling run...", sig)
		cancel()
	}()

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	if err := run(ctx, logger, cfg, *verbose); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Println("Run cancelled")
			os.Exit(1)
		}
		logger.Fatalf("Error: %v", err)
	}
}

// resolveConfig loads the YAML config when given and applies flag overrides,
// or builds a config purely from flags.
func resolveConfig(path, datasetPath string, horizon int, outputDir,
	postgresDSN, clickhouseDSN string, useMemory bool, seed int64) (*config.Config, error) {

	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = &config.Config{
			Dataset: config.DatasetConfig{Path: datasetPath},
			Storage: config.StorageConfig{
				UseMemory:     useMemory,
				PostgresDSN:   postgresDSN,
				ClickhouseDSN: clickhouseDSN,
			},
			// Without a config file every run covers the three fixed narratives.
			Scenarios: []config.ScenarioConfig{
				{ID: "tendencial", Type: "tendencial"},
				{ID: "optimista", Type: "optimista"},
				{ID: "pesimista", Type: "pesimista"},
			},
		}
	}

	if datasetPath != "" {
		cfg.Dataset = config.DatasetConfig{Path: datasetPath}
	}
	if horizon != 0 {
		cfg.Horizon = horizon
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if useMemory {
		cfg.Storage.UseMemory = true
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, verbose bool) error {
	// Read and fingerprint the dataset
	ds, err := dataset.ReadFile(cfg.Dataset.Path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	datasetID := idhash.ComputeDatasetID(ds.Source, ds.Columns, len(ds.Rows))
	logger.Printf("Dataset %s: %d rows, %d columns (id %s)",
		ds.Source, len(ds.Rows), len(ds.Columns), datasetID[:12])

	// Advisory sufficiency checks; the engine degrades on its own, but thin
	// datasets should be visible before the run rather than after.
	if frame, err := normalization.Build(ds.Rows, ds.Columns); err == nil {
		for _, check := range normalization.CheckFrame(frame).Checks {
			if !check.Pass {
				logger.Printf("Sufficiency warning: %s is %s, want %s",
					check.Name, check.Actual, check.Threshold)
			}
		}
	}

	// Create stores based on mode
	scenarioStore, projectionStore, sampleStore, cleanup, err := createStores(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	// Seed scenarios; reruns tolerate already-present records
	now := time.Now()
	for _, sc := range cfg.Scenarios {
		scenario := sc.ToDomain(uuid.NewString(), now.UnixMilli())
		if err := scenarioStore.Insert(ctx, scenario); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return fmt.Errorf("seed scenario %s: %w", scenario.ScenarioID, err)
		}
		logger.Printf("Seeded scenario %s (%s)", scenario.ScenarioID, scenario.Type)
	}

	engine := projection.NewEngine(projection.Options{
		Logger: logger,
		Seed:   cfg.Seed,
	})

	orch := orchestrator.New(orchestrator.Options{
		ScenarioStore:   scenarioStore,
		ProjectionStore: projectionStore,
		SampleStore:     sampleStore,
		Engine:          engine,
		Metrics:         observability.Default(),
		Rows:            ds.Rows,
		Columns:         ds.Columns,
		DatasetID:       datasetID,
		Horizon:         cfg.Horizon,
		Verbose:         verbose,
		Logger:          logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println("=== Projection Run ===")
	fmt.Printf("  Scenarios: %d\n", result.ScenariosProcessed)
	fmt.Printf("  Points:    %d\n", result.PointsStored)
	fmt.Printf("  Samples:   %d\n", result.SamplesStored)
	fmt.Printf("  Fallbacks: %d\n", result.Fallbacks)
	if len(result.Errors) > 0 {
		fmt.Printf("  Errors:    %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	// Write per-scenario reports
	generator := reporting.NewGenerator(scenarioStore, projectionStore).
		WithDatasetID(datasetID)
	scenarios, err := scenarioStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list scenarios for reporting: %w", err)
	}
	for _, scenario := range scenarios {
		report, err := generator.Generate(ctx, scenario.ScenarioID)
		if err != nil {
			return fmt.Errorf("generate report for %s: %w", scenario.ScenarioID, err)
		}
		if err := reporting.WriteFiles(report, cfg.OutputDir); err != nil {
			return fmt.Errorf("write report for %s: %w", scenario.ScenarioID, err)
		}
	}
	logger.Printf("Reports written to %s", cfg.OutputDir)

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d scenarios failed", len(result.Errors))
	}
	return nil
}

// createStores builds the persistence layer: in-memory, or Postgres with an
// optional ClickHouse analytic sink. The returned cleanup closes connections.
func createStores(ctx context.Context, logger *log.Logger, cfg *config.Config) (
	storage.ScenarioStore, storage.ProjectionStore, storage.ProjectionSampleStore, func(), error) {

	if cfg.Storage.UseMemory {
		logger.Println("Using in-memory storage")
		return memory.NewScenarioStore(), memory.NewProjectionStore(),
			memory.NewProjectionSampleStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Println("Connected to PostgreSQL")

	cleanup := func() { pool.Close() }
	var sampleStore storage.ProjectionSampleStore

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := bootstrapClickhouse(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
		}
		logger.Println("Connected to ClickHouse")
		sampleStore = chstore.NewProjectionSampleStore(conn)
		cleanup = func() {
			conn.Close()
			pool.Close()
		}
	}

	return pgstore.NewScenarioStore(pool), pgstore.NewProjectionStore(pool), sampleStore, cleanup, nil
}

// bootstrapClickhouse creates the target database if missing, then connects
// to it and applies migrations.
func bootstrapClickhouse(ctx context.Context, dsn string) (*chstore.Conn, error) {
	database, err := migrations.ClickhouseDatabaseFromDSN(dsn)
	if err != nil {
		return nil, err
	}

	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return nil, err
	}
	if err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database)); err != nil {
		admin.Close()
		return nil, fmt.Errorf("create database %s: %w", database, err)
	}
	admin.Close()

	conn, err := chstore.NewConn(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	return conn, nil
}
