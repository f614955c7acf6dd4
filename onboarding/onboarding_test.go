package onboarding

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movelink/movekit/entitystore"
	"github.com/movelink/movekit/flow"
	"github.com/movelink/movekit/provider"
	"github.com/movelink/movekit/state"
)

// fakeAPI scripts the internal API and counts every call
type fakeAPI struct {
	users   []provider.Record // consumed per GetLoggedInUser call, last repeats
	userErr error

	createdMember provider.Record
	createErr     error

	shipments    []provider.Record
	shipmentsErr error

	getUserCalls      int
	createCalls       int
	getShipmentsCalls int
	shipmentMoveIDs   []string
}

func (f *fakeAPI) GetLoggedInUser(context.Context) (provider.Record, error) {
	f.getUserCalls++
	if f.userErr != nil {
		return nil, f.userErr
	}
	i := f.getUserCalls - 1
	if i >= len(f.users) {
		i = len(f.users) - 1
	}
	return f.users[i], nil
}

func (f *fakeAPI) CreateServiceMember(context.Context, provider.Record) (provider.Record, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createdMember, nil
}

func (f *fakeAPI) GetMTOShipmentsForMove(_ context.Context, moveID string) ([]provider.Record, error) {
	f.getShipmentsCalls++
	f.shipmentMoveIDs = append(f.shipmentMoveIDs, moveID)
	if f.shipmentsErr != nil {
		return nil, f.shipmentsErr
	}
	return f.shipments, nil
}

// userWithMoves nests a service member at the given ladder rung with the
// given move ids under one orders record.
func userWithMoves(rung Completeness, moveIDs ...string) provider.Record {
	member := map[string]any(memberAt(rung))
	if len(moveIDs) > 0 {
		moves := make([]any, 0, len(moveIDs))
		for _, id := range moveIDs {
			moves = append(moves, map[string]any{"id": id})
		}
		member["orders"] = []any{
			map[string]any{"id": "o1", "moves": moves},
		}
	}
	return provider.Record{"id": "u1", "service_member": member}
}

func newManager(api *fakeAPI) (*Manager, *state.State, *entitystore.Store) {
	st := state.New()
	store := entitystore.New()
	runner := flow.NewRunner(st, store)
	return NewManager(api, runner), st, store
}

func TestInitialize_NoMovesSkipsShipmentFetch(t *testing.T) {
	api := &fakeAPI{users: []provider.Record{userWithMoves(NameComplete)}}
	m, st, _ := newManager(api)
	defer func() { _ = m.Shutdown(time.Second) }()

	outcome := m.Initialize(context.Background())

	require.False(t, outcome.Failed())
	assert.Equal(t, 0, api.getShipmentsCalls)
	assert.Equal(t, "/service-member/sm1/contact-info", st.Path())
	assert.True(t, st.OnboardingComplete())
}

func TestInitialize_FetchesShipmentsForFirstMoveOnly(t *testing.T) {
	api := &fakeAPI{
		users: []provider.Record{userWithMoves(BackupContactsComplete, "m1", "m2")},
		shipments: []provider.Record{
			{"id": "s1", "moveTaskOrderID": "m1"},
		},
	}
	m, _, store := newManager(api)
	defer func() { _ = m.Shutdown(time.Second) }()

	outcome := m.Initialize(context.Background())

	require.False(t, outcome.Failed())
	assert.Equal(t, 1, api.getShipmentsCalls)
	assert.Equal(t, []string{"m1"}, api.shipmentMoveIDs)
	assert.Len(t, store.ShipmentsForMove("m1"), 1)
}

func TestInitialize_CompleteProfileNavigatesToRoot(t *testing.T) {
	api := &fakeAPI{users: []provider.Record{userWithMoves(BackupContactsComplete)}}
	m, st, _ := newManager(api)
	defer func() { _ = m.Shutdown(time.Second) }()

	outcome := m.Initialize(context.Background())

	require.False(t, outcome.Failed())
	assert.Equal(t, "/", st.Path())
}

func TestInitialize_MissingProfileCreatesAndRefetches(t *testing.T) {
	api := &fakeAPI{
		users: []provider.Record{
			{"id": "u1"}, // first fetch: no profile yet
			userWithMoves(EmptyProfile),
		},
		createdMember: provider.Record{"id": "sm1", "user_id": "u1"},
	}
	m, st, _ := newManager(api)
	defer func() { _ = m.Shutdown(time.Second) }()

	outcome := m.Initialize(context.Background())

	require.False(t, outcome.Failed())
	assert.Equal(t, 1, api.createCalls)
	assert.Equal(t, 2, api.getUserCalls, "profile creation triggers one refetch")
	assert.Equal(t, "/service-member/sm1/conus-status", st.Path())
	assert.True(t, st.OnboardingComplete())
}

func TestInitialize_ProfileCreationFailure(t *testing.T) {
	api := &fakeAPI{
		users:     []provider.Record{{"id": "u1"}},
		createErr: stderrors.New("conflict"),
	}
	m, st, _ := newManager(api)

	outcome := m.Initialize(context.Background())

	require.True(t, outcome.Failed())
	assert.Equal(t, 1, api.getUserCalls, "no refetch after a failed creation")

	message, exists := st.FlashMessage(FlashKey)
	require.True(t, exists)
	assert.Equal(t, "There was an error creating your profile information.", message.Text)
	assert.Equal(t, 1, st.Count(state.TransitionFlashMessageSet))
	assert.Equal(t, 1, st.Count(state.TransitionOnboardingFailed))
	assert.False(t, st.OnboardingComplete())
}

func TestInitialize_ShipmentFetchFailureFailsTheFlow(t *testing.T) {
	api := &fakeAPI{
		users:        []provider.Record{userWithMoves(BackupContactsComplete, "m1")},
		shipmentsErr: stderrors.New("bad gateway"),
	}
	m, st, _ := newManager(api)

	outcome := m.Initialize(context.Background())

	require.True(t, outcome.Failed())
	assert.Equal(t, 1, st.Count(state.TransitionOnboardingFailed))
	assert.Empty(t, st.FlashMessages(), "only profile creation failures carry a flash message")
	assert.False(t, st.OnboardingComplete())
}

func TestInitialize_StartsTheSyncWatcher(t *testing.T) {
	api := &fakeAPI{users: []provider.Record{userWithMoves(NameComplete)}}
	m, _, _ := newManager(api)

	outcome := m.Initialize(context.Background())
	require.False(t, outcome.Failed())
	defer func() { _ = m.Shutdown(time.Second) }()

	assert.Equal(t, flow.WatcherStarted, m.Watcher().State())

	require.NoError(t, m.Watcher().Notify())
	assert.Eventually(t, func() bool {
		return api.getUserCalls == 2
	}, time.Second, 10*time.Millisecond)
}
