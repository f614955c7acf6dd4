package flow

import (
	"context"
	"sync"
	"time"

	"github.com/movelink/movekit/errors"
)

// WatcherState is the watcher's lifecycle position.
type WatcherState int

const (
	// WatcherCreated indicates the watcher was created but not initialized
	WatcherCreated WatcherState = iota
	// WatcherInitialized indicates the watcher is ready to start
	WatcherInitialized
	// WatcherStarted indicates the watcher is listening
	WatcherStarted
	// WatcherStopped indicates the watcher was stopped
	WatcherStopped
)

// String returns a string representation of the watcher state
func (ws WatcherState) String() string {
	switch ws {
	case WatcherCreated:
		return "created"
	case WatcherInitialized:
		return "initialized"
	case WatcherStarted:
		return "started"
	case WatcherStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Watcher is a long-lived listener that runs its flow once per
// notification. It stays active for the rest of the session; it is not
// one-shot. Lifecycle: Initialize, Start with a context, Stop with a
// timeout for graceful shutdown.
type Watcher struct {
	flow   Flow
	runner *Runner

	mu       sync.Mutex
	state    WatcherState
	triggers chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for the given flow.
func NewWatcher(runner *Runner, flow Flow) *Watcher {
	return &Watcher{
		flow:   flow,
		runner: runner,
		state:  WatcherCreated,
	}
}

// Name returns the watched flow's name.
func (w *Watcher) Name() string {
	return w.flow.Name
}

// State returns the watcher's lifecycle state.
func (w *Watcher) State() WatcherState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Initialize prepares the trigger channel. Setup only, no context.
func (w *Watcher) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != WatcherCreated {
		return errors.WrapFlow(errors.ErrFlowAlreadyRunning, "flow", "Watcher.Initialize", "lifecycle")
	}
	w.triggers = make(chan struct{}, 16)
	w.done = make(chan struct{})
	w.state = WatcherInitialized
	return nil
}

// Start begins listening. Each trigger runs the flow to completion before
// the next trigger is taken, so runs of the same watcher never overlap.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.state {
	case WatcherStarted:
		return errors.WrapFlow(errors.ErrFlowAlreadyRunning, "flow", "Watcher.Start", "lifecycle")
	case WatcherCreated:
		return errors.WrapFlow(errors.ErrWatcherNotStarted, "flow", "Watcher.Start", "lifecycle")
	case WatcherStopped:
		return errors.WrapFlow(errors.ErrWatcherStopped, "flow", "Watcher.Start", "lifecycle")
	}

	w.state = WatcherStarted
	w.wg.Add(1)
	go w.listen(ctx)
	return nil
}

func (w *Watcher) listen(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.triggers:
			w.runner.Run(ctx, w.flow)
		}
	}
}

// Notify queues one run of the watched flow. Returns an error when the
// watcher is not listening; a full trigger queue drops the notification
// rather than blocking the caller.
func (w *Watcher) Notify() error {
	w.mu.Lock()
	state := w.state
	w.mu.Unlock()

	switch state {
	case WatcherCreated, WatcherInitialized:
		return errors.WrapFlow(errors.ErrWatcherNotStarted, "flow", "Watcher.Notify", "trigger")
	case WatcherStopped:
		return errors.WrapFlow(errors.ErrWatcherStopped, "flow", "Watcher.Notify", "trigger")
	}

	select {
	case w.triggers <- struct{}{}:
	default:
	}
	return nil
}

// Stop shuts the watcher down, waiting up to timeout for an in-flight run
// to finish.
func (w *Watcher) Stop(timeout time.Duration) error {
	w.mu.Lock()
	if w.state != WatcherStarted {
		w.mu.Unlock()
		return errors.WrapFlow(errors.ErrWatcherNotStarted, "flow", "Watcher.Stop", "lifecycle")
	}
	w.state = WatcherStopped
	close(w.done)
	w.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return errors.WrapFlow(context.DeadlineExceeded, "flow", "Watcher.Stop", "graceful shutdown")
	}
}
