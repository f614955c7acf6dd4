package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid"

	"github.com/movelink/movekit/entitystore"
	"github.com/movelink/movekit/errors"
	"github.com/movelink/movekit/metric"
	"github.com/movelink/movekit/state"
)

// Fn is a flow body: a sequence of Call, Put and Select effects.
type Fn func(ctx context.Context, fx *Effects) error

// FailureFn is a flow's single failure handler. It runs at most once per
// run and is where the flow emits its one failure transition and, when
// user-facing, its one flash message.
type FailureFn func(fx *Effects, err error)

// Flow pairs a named body with its failure handler.
type Flow struct {
	Name      string
	Body      Fn
	OnFailure FailureFn
}

// Outcome is the result of one flow run.
type Outcome struct {
	RunID    uuid.UUID
	Flow     string
	Err      error
	Calls    int
	Duration time.Duration
}

// Failed reports whether the run ended in the fault boundary.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Runner executes flows against a shared state container and entity store.
type Runner struct {
	state   *state.State
	store   *entitystore.Store
	logger  *slog.Logger
	metrics *metric.Metrics
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics publishes run counts, durations and failure classes.
func WithMetrics(metrics *metric.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = metrics
	}
}

// NewRunner creates a runner over the given state container and store.
func NewRunner(st *state.State, store *entitystore.Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		state:  st,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one flow with exactly one fault boundary. An error escaping
// the body (or a panic inside it) is handed to the flow's OnFailure handler
// once and recorded; it is never retried here.
func (r *Runner) Run(ctx context.Context, flow Flow) Outcome {
	return r.run(ctx, flow, uuid.Must(uuid.NewV4()))
}

func (r *Runner) run(ctx context.Context, flow Flow, runID uuid.UUID) Outcome {
	fx := &Effects{
		runID:  runID,
		flow:   flow.Name,
		state:  r.state,
		store:  r.store,
		logger: r.logger,
	}

	start := time.Now()
	err := r.runBody(ctx, flow, fx)
	duration := time.Since(start)

	if err != nil {
		if flow.OnFailure != nil {
			flow.OnFailure(fx, err)
		}
		r.logger.Warn("flow failed",
			"flow", flow.Name,
			"run_id", runID.String(),
			"calls", fx.calls,
			"duration", duration,
			"error", err)
		if r.metrics != nil {
			r.metrics.RecordFlowRun(flow.Name, "failed")
			r.metrics.RecordFlowDuration(flow.Name, duration)
			r.metrics.RecordFlowFailure(flow.Name, errors.Classify(err).String())
		}
		return Outcome{RunID: runID, Flow: flow.Name, Err: err, Calls: fx.calls, Duration: duration}
	}

	r.logger.Debug("flow completed",
		"flow", flow.Name,
		"run_id", runID.String(),
		"calls", fx.calls,
		"duration", duration)
	if r.metrics != nil {
		r.metrics.RecordFlowRun(flow.Name, "success")
		r.metrics.RecordFlowDuration(flow.Name, duration)
	}
	return Outcome{RunID: runID, Flow: flow.Name, Calls: fx.calls, Duration: duration}
}

// runBody keeps the recover scoped to the body so OnFailure and metrics run
// outside the deferred handler.
func (r *Runner) runBody(ctx context.Context, flow Flow, fx *Effects) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.WrapFlow(fmt.Errorf("panic: %v", rec), "flow", flow.Name, "run")
		}
	}()
	return flow.Body(ctx, fx)
}
