package flow

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/movelink/movekit/errors"
)

// Dispatcher triggers registered flows by name. Each dispatch starts an
// independent run; runs of different flows (and repeat runs of the same
// flow) interleave at their Call suspension points with no cross-flow
// ordering guarantee.
type Dispatcher struct {
	mu     sync.RWMutex
	runner *Runner
	flows  map[string]Flow
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given runner.
func NewDispatcher(runner *Runner) *Dispatcher {
	return &Dispatcher{
		runner: runner,
		flows:  make(map[string]Flow),
	}
}

// Register adds a flow under its name. Registering the same name twice is a
// contract error.
func (d *Dispatcher) Register(flow Flow) error {
	if flow.Name == "" {
		return errors.WrapContract(fmt.Errorf("flow has no name"),
			"flow", "Register", "flow registration")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.flows[flow.Name]; exists {
		return errors.WrapContract(fmt.Errorf("flow %q already registered", flow.Name),
			"flow", "Register", "flow registration")
	}
	d.flows[flow.Name] = flow
	return nil
}

// Dispatch starts a run of the named flow in its own goroutine and returns
// immediately with the run id. Unknown names are a contract error.
func (d *Dispatcher) Dispatch(ctx context.Context, name string) (uuid.UUID, error) {
	d.mu.RLock()
	flow, exists := d.flows[name]
	d.mu.RUnlock()
	if !exists {
		return uuid.Nil, errors.WrapContract(fmt.Errorf("no flow registered as %q", name),
			"flow", "Dispatch", "flow lookup")
	}

	runID := uuid.Must(uuid.NewV4())
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.runner.run(ctx, flow, runID)
	}()
	return runID, nil
}

// DispatchSync runs the named flow on the calling goroutine and returns its
// outcome.
func (d *Dispatcher) DispatchSync(ctx context.Context, name string) (Outcome, error) {
	d.mu.RLock()
	flow, exists := d.flows[name]
	d.mu.RUnlock()
	if !exists {
		return Outcome{}, errors.WrapContract(fmt.Errorf("no flow registered as %q", name),
			"flow", "DispatchSync", "flow lookup")
	}
	return d.runner.Run(ctx, flow), nil
}

// Wait blocks until every dispatched run has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
