// Package orchestrator coordinates a full projection run: load scenarios,
// project each over one dataset, persist points and flattened samples.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/observability"
	"prospectiva-engine/internal/projection"
	"prospectiva-engine/internal/storage"
)

// Orchestrator runs the engine once per stored scenario over one dataset.
type Orchestrator struct {
	scenarioStore   storage.ScenarioStore
	projectionStore storage.ProjectionStore
	sampleStore     storage.ProjectionSampleStore // optional
	engine          *projection.Engine
	metrics         *observability.Metrics // optional

	rows      []domain.Row
	columns   []string
	datasetID string
	horizon   int

	verbose bool
	logger  *log.Logger
	now     func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	ScenarioStore   storage.ScenarioStore
	ProjectionStore storage.ProjectionStore
	Engine          *projection.Engine

	// Optional analytic sink; skipped when nil.
	SampleStore storage.ProjectionSampleStore

	// Optional metrics; skipped when nil.
	Metrics *observability.Metrics

	// Dataset shared by every scenario in the run.
	Rows      []domain.Row
	Columns   []string
	DatasetID string
	Horizon   int

	Verbose bool
	Logger  *log.Logger      // defaults to log.Default()
	Now     func() time.Time // clock for sample timestamps
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		scenarioStore:   opts.ScenarioStore,
		projectionStore: opts.ProjectionStore,
		sampleStore:     opts.SampleStore,
		engine:          opts.Engine,
		metrics:         opts.Metrics,
		rows:            opts.Rows,
		columns:         opts.Columns,
		datasetID:       opts.DatasetID,
		horizon:         opts.Horizon,
		verbose:         opts.Verbose,
		logger:          opts.Logger,
		now:             opts.Now,
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	ScenariosProcessed int
	PointsStored       int
	SamplesStored      int
	Fallbacks          int
	Errors             []string
}

// Run projects every stored scenario over the dataset. Per-scenario
// failures are recorded and the loop continues; only a failure to list
// scenarios aborts the run.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	scenarios, err := o.scenarioStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	o.log("Projecting %d scenarios over dataset %s (horizon %d)", len(scenarios), o.datasetID, o.horizon)

	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := o.runScenario(ctx, scenario, result); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("scenario %s: %v", scenario.ScenarioID, err))
			continue
		}
		result.ScenariosProcessed++
	}

	o.log("Run completed: %d scenarios, %d points, %d samples, %d fallbacks (%d errors)",
		result.ScenariosProcessed, result.PointsStored, result.SamplesStored,
		result.Fallbacks, len(result.Errors))

	return result, nil
}

// runScenario projects one scenario and persists the output.
func (o *Orchestrator) runScenario(ctx context.Context, scenario *domain.Scenario, result *RunResult) error {
	start := o.now()
	res := o.engine.Project(&projection.Input{
		ScenarioID: scenario.ScenarioID,
		Type:       scenario.Type,
		Params:     scenario.Params,
		Rows:       o.rows,
		Columns:    o.columns,
		Horizon:    o.horizon,
	})

	if o.metrics != nil {
		o.metrics.RecordProjectionRun(scenario.Type.String(), res.Fallback, o.now().Sub(start))
		if res.Fallback {
			o.metrics.RecordFallback(res.Reason)
		}
	}
	if res.Fallback {
		result.Fallbacks++
		o.log("  %s: fallback (%s)", scenario.ScenarioID, res.Reason)
	}

	writeStart := o.now()
	err := o.projectionStore.ReplaceForScenario(ctx, scenario.ScenarioID, res.Points)
	if o.metrics != nil {
		o.metrics.ObserveStorageQuery("points", "replace_for_scenario", o.now().Sub(writeStart), err)
	}
	if err != nil {
		return fmt.Errorf("store points: %w", err)
	}
	result.PointsStored += len(res.Points)
	if o.metrics != nil {
		o.metrics.RecordPointsStored(len(res.Points))
	}

	if o.sampleStore != nil {
		samples := domain.FlattenPoints(scenario.ScenarioID, o.datasetID, res.Points, o.now().UnixMilli())
		writeStart = o.now()
		err := o.sampleStore.InsertBulk(ctx, samples)
		if o.metrics != nil {
			o.metrics.ObserveStorageQuery("samples", "insert_bulk", o.now().Sub(writeStart), err)
		}
		if err != nil {
			return fmt.Errorf("store samples: %w", err)
		}
		result.SamplesStored += len(samples)
		if o.metrics != nil {
			o.metrics.RecordSamplesStored(len(samples))
		}
	}

	o.log("  %s: %d points stored", scenario.ScenarioID, len(res.Points))
	return nil
}

// log prints if verbose mode enabled.
func (o *Orchestrator) log(format string, args ...any) {
	if o.verbose {
		o.logger.Printf("[orchestrator] "+format, args...)
	}
}
