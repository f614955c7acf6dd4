package flow

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelink/movekit/errors"
)

func TestDispatcher_RegisterRejectsDuplicates(t *testing.T) {
	runner, _, _ := newTestRunner()
	d := NewDispatcher(runner)

	noop := Flow{Name: "noop", Body: func(context.Context, *Effects) error { return nil }}
	require.NoError(t, d.Register(noop))

	err := d.Register(noop)
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
}

func TestDispatcher_RegisterRejectsUnnamedFlows(t *testing.T) {
	runner, _, _ := newTestRunner()
	d := NewDispatcher(runner)

	err := d.Register(Flow{Body: func(context.Context, *Effects) error { return nil }})
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
}

func TestDispatcher_DispatchUnknownFlow(t *testing.T) {
	runner, _, _ := newTestRunner()
	d := NewDispatcher(runner)

	_, err := d.Dispatch(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.IsContract(err))
}

func TestDispatcher_DispatchRunsAsync(t *testing.T) {
	runner, _, _ := newTestRunner()
	d := NewDispatcher(runner)

	var runs atomic.Int32
	require.NoError(t, d.Register(Flow{
		Name: "count",
		Body: func(context.Context, *Effects) error {
			runs.Add(1)
			return nil
		},
	}))

	for i := 0; i < 3; i++ {
		runID, err := d.Dispatch(context.Background(), "count")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, runID)
	}
	d.Wait()

	assert.Equal(t, int32(3), runs.Load())
}

func TestDispatcher_DispatchSyncReturnsOutcome(t *testing.T) {
	runner, _, _ := newTestRunner()
	d := NewDispatcher(runner)

	require.NoError(t, d.Register(Flow{
		Name: "sync",
		Body: func(ctx context.Context, fx *Effects) error {
			return fx.Call(ctx, "noop", func(context.Context) error { return nil })
		},
	}))

	outcome, err := d.DispatchSync(context.Background(), "sync")
	require.NoError(t, err)
	assert.False(t, outcome.Failed())
	assert.Equal(t, 1, outcome.Calls)
	assert.Equal(t, "sync", outcome.Flow)
}
