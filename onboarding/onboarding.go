package onboarding

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/movelink/movekit/entitystore"
	"github.com/movelink/movekit/errors"
	"github.com/movelink/movekit/flow"
	"github.com/movelink/movekit/provider"
	"github.com/movelink/movekit/state"
)

// Flow names registered by this package.
const (
	FlowInit = "onboarding.init"
	FlowSync = "onboarding.syncEntities"
)

// FlashKey is the flash-message slot onboarding failures write to.
const FlashKey = "onboarding"

const profileCreationErrorText = "There was an error creating your profile information."

// errProfileCreation tags a failed service-member creation so the fault
// boundary can pick the right flash message.
var errProfileCreation = stderrors.New("service member creation failed")

// API is the slice of the internal API the onboarding flows call.
type API interface {
	GetLoggedInUser(ctx context.Context) (provider.Record, error)
	CreateServiceMember(ctx context.Context, payload provider.Record) (provider.Record, error)
	GetMTOShipmentsForMove(ctx context.Context, moveID string) ([]provider.Record, error)
}

// Manager drives onboarding initialization and owns the entity-sync
// watcher it leaves running.
type Manager struct {
	api     API
	runner  *flow.Runner
	logger  *slog.Logger
	watcher *flow.Watcher
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates an onboarding manager.
func NewManager(api API, runner *flow.Runner, opts ...Option) *Manager {
	m := &Manager{
		api:    api,
		runner: runner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.watcher = flow.NewWatcher(runner, flow.Flow{
		Name: FlowSync,
		Body: func(ctx context.Context, fx *flow.Effects) error {
			return m.fetchCustomerData(ctx, fx)
		},
	})
	return m
}

// Watcher returns the long-lived entity-sync watcher. It starts inside the
// initialization flow and stays active for the rest of the session; notify
// it after any fetch or update that should refresh entity state.
func (m *Manager) Watcher() *flow.Watcher {
	return m.watcher
}

// Initialize runs the onboarding initialization flow to completion.
func (m *Manager) Initialize(ctx context.Context) flow.Outcome {
	return m.runner.Run(ctx, m.InitFlow())
}

// Shutdown stops the entity-sync watcher.
func (m *Manager) Shutdown(timeout time.Duration) error {
	return m.watcher.Stop(timeout)
}

// InitFlow is the onboarding initialization sequence: fetch customer data,
// create the missing service-member profile if needed, navigate to the
// next required step, mark onboarding complete and start the watcher.
func (m *Manager) InitFlow() flow.Flow {
	return flow.Flow{
		Name: FlowInit,
		Body: func(ctx context.Context, fx *flow.Effects) error {
			if err := m.fetchCustomerData(ctx, fx); err != nil {
				return err
			}

			member := fx.Store().ServiceMemberForUser()
			if member == nil {
				if err := m.createProfile(ctx, fx); err != nil {
					return err
				}
				if err := m.fetchCustomerData(ctx, fx); err != nil {
					return err
				}
				member = fx.Store().ServiceMemberForUser()
				if member == nil {
					return errors.WrapContract(
						fmt.Errorf("user still has no service-member profile"),
						"onboarding", "InitFlow", "profile refetch")
				}
			}

			memberID, _ := member["id"].(string)
			path := NextStep(memberID, Compute(member))
			fx.Put(func(s *state.State) { s.NavigateTo(path) })

			fx.Put(func(s *state.State) { s.CompleteOnboarding() })

			if err := m.watcher.Initialize(); err != nil {
				return err
			}
			return m.watcher.Start(ctx)
		},
		OnFailure: func(fx *flow.Effects, err error) {
			if stderrors.Is(err, errProfileCreation) {
				fx.Put(func(s *state.State) {
					s.SetFlashMessage(FlashKey, "error", profileCreationErrorText, "")
				})
			}
			fx.Put(func(s *state.State) { s.FailOnboarding(err) })
		},
	}
}

// fetchCustomerData loads the logged-in user, merges the normalized
// payload, and when the user already has a move fetches that first move's
// shipments exactly once.
func (m *Manager) fetchCustomerData(ctx context.Context, fx *flow.Effects) error {
	var user provider.Record
	err := fx.Call(ctx, "getLoggedInUser", func(ctx context.Context) error {
		var callErr error
		user, callErr = m.api.GetLoggedInUser(ctx)
		return callErr
	})
	if err != nil {
		return err
	}

	entities, err := entitystore.Normalize(entitystore.TypeUser, user)
	if err != nil {
		return err
	}
	fx.Store().Merge(entities)

	moveID := m.firstMoveID(fx.Store())
	if moveID == "" {
		return nil
	}

	var shipments []provider.Record
	err = fx.Call(ctx, "getMTOShipmentsForMove", func(ctx context.Context) error {
		var callErr error
		shipments, callErr = m.api.GetMTOShipmentsForMove(ctx, moveID)
		return callErr
	})
	if err != nil {
		// shipments are essential once a move exists
		return err
	}

	shipmentEntities, err := entitystore.NormalizeMany(entitystore.TypeMTOShipments, shipments)
	if err != nil {
		return err
	}
	fx.Store().Merge(shipmentEntities)
	return nil
}

// firstMoveID resolves the first move of the user's first orders.
func (m *Manager) firstMoveID(store *entitystore.Store) string {
	for _, order := range store.OrdersForServiceMember() {
		orderID, _ := order["id"].(string)
		moves := store.MovesForOrders(orderID)
		if len(moves) == 0 {
			continue
		}
		id, _ := moves[0]["id"].(string)
		return id
	}
	return ""
}

// createProfile runs the create-service-member sub-flow.
func (m *Manager) createProfile(ctx context.Context, fx *flow.Effects) error {
	user := fx.Store().LoggedInUser()
	payload := provider.Record{}
	if user != nil {
		if userID, ok := user["id"].(string); ok {
			payload["user_id"] = userID
		}
	}

	err := fx.Call(ctx, "createServiceMember", func(ctx context.Context) error {
		_, callErr := m.api.CreateServiceMember(ctx, payload)
		return callErr
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errProfileCreation, err)
	}
	return nil
}
