package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofrs/uuid"

	"github.com/movelink/movekit/entitystore"
	"github.com/movelink/movekit/state"
)

// Effects is the primitive set handed to a flow body. One Effects value
// belongs to exactly one run and is not shared across goroutines.
type Effects struct {
	runID  uuid.UUID
	flow   string
	state  *state.State
	store  *entitystore.Store
	logger *slog.Logger
	calls  int
}

// RunID returns the id of the run this Effects belongs to.
func (fx *Effects) RunID() uuid.UUID {
	return fx.runID
}

// Store returns the shared entity store.
func (fx *Effects) Store() *entitystore.Store {
	return fx.store
}

// Calls returns how many Call effects this run has issued so far.
func (fx *Effects) Calls() int {
	return fx.calls
}

// Call invokes an external operation and waits for it to settle. The error
// is returned untouched so callers can branch on its class; the runner's
// fault boundary handles whatever the body does not.
func (fx *Effects) Call(ctx context.Context, operation string, op func(context.Context) error) error {
	fx.calls++
	start := time.Now()
	err := op(ctx)
	if err != nil {
		fx.logger.Debug("call effect failed",
			"flow", fx.flow,
			"run_id", fx.runID.String(),
			"operation", operation,
			"duration", time.Since(start),
			"error", err)
		return err
	}
	fx.logger.Debug("call effect settled",
		"flow", fx.flow,
		"run_id", fx.runID.String(),
		"operation", operation,
		"duration", time.Since(start))
	return nil
}

// Put applies one state transition. Never suspends.
func (fx *Effects) Put(transition func(*state.State)) {
	transition(fx.state)
}

// Select reads state without suspending.
func (fx *Effects) Select(read func(*state.State, *entitystore.Store)) {
	read(fx.state, fx.store)
}
