package projection

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/normalization"
	"prospectiva-engine/internal/synthetic"
	"prospectiva-engine/internal/trend"
)

// Input carries one projection request.
type Input struct {
	ScenarioID string // logging context only
	Type       domain.ScenarioType
	Params     domain.CustomParams
	Rows       []domain.Row
	Columns    []string // input column order; derived from row keys when empty
	Horizon    int
}

// Result is the tagged outcome of a projection run. Points always holds a
// well formed, non-empty sequence: historical years first, then projected
// years, both ascending. Fallback marks synthetic output and Reason says why.
type Result struct {
	Points   []*domain.ProjectionPoint
	Fallback bool
	Reason   string
}

// Options contains configuration for creating an Engine.
type Options struct {
	Logger *log.Logger      // defaults to log.Default()
	Seed   int64            // random seed; 0 derives one per call from the clock
	Now    func() time.Time // clock, used for seeds and the fallback anchor year
}

// Engine runs projection requests. Safe for concurrent use: every call
// derives its own random source and mutates nothing shared.
type Engine struct {
	logger *log.Logger
	seed   int64
	now    func() time.Time
}

// NewEngine creates an Engine from opts.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		logger: opts.Logger,
		seed:   opts.Seed,
		now:    opts.Now,
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Project runs one request end to end:
//  1. Normalize raw rows into a frame
//  2. Estimate per-indicator trends
//  3. Resolve the scenario configuration
//  4. Extract historical points and generate projected points
//  5. On any failure, substitute synthetic data
//
// It never returns an error: ingestion and generation failures degrade to
// synthetic output, logged and tagged on the result, so callers always
// receive a usable sequence.
func (e *Engine) Project(input *Input) *Result {
	rng := e.newRand()

	frame, err := normalization.Build(input.Rows, input.Columns)
	if err != nil {
		return e.fallback(input, rng, fmt.Sprintf("ingestion: %v", err))
	}

	points, err := e.generate(frame, input, rng)
	if err != nil {
		return e.fallback(input, rng, fmt.Sprintf("generation: %v", err))
	}
	return &Result{Points: points}
}

// generate runs extraction and projection behind a panic boundary so a
// malformed frame degrades instead of unwinding into the caller.
func (e *Engine) generate(frame *normalization.Frame, input *Input, rng *rand.Rand) (points []*domain.ProjectionPoint, err error) {
	defer func() {
		if r := recover(); r != nil {
			points = nil
			err = fmt.Errorf("projection panic: %v", r)
		}
	}()

	trends := trend.Estimate(frame)
	cfg := domain.ConfigFor(input.Type)

	points = Historical(frame)
	points = append(points, Generate(frame, trends, cfg, input.Horizon, input.Params, rng)...)
	return points, nil
}

// fallback logs the failure with its request context and produces the
// synthetic substitute.
func (e *Engine) fallback(input *Input, rng *rand.Rand, reason string) *Result {
	e.logger.Printf("[projection] falling back to synthetic data: scenario=%s rows=%d horizon=%d: %s",
		input.ScenarioID, len(input.Rows), input.Horizon, reason)
	return &Result{
		Points:   synthetic.Generate(input.Horizon, e.now().UTC().Year(), rng),
		Fallback: true,
		Reason:   reason,
	}
}

// newRand derives the per-call random source.
func (e *Engine) newRand() *rand.Rand {
	seed := e.seed
	if seed == 0 {
		seed = e.now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
