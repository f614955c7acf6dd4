package session

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/movelink/movekit/entitystore"
	"github.com/movelink/movekit/errors"
	"github.com/movelink/movekit/flow"
	"github.com/movelink/movekit/provider"
	"github.com/movelink/movekit/state"
)

// Variant selects which app the session belongs to.
type Variant string

// App variants.
const (
	VariantMilMove Variant = "milmove"
	VariantOffice  Variant = "office"
	VariantAdmin   Variant = "admin"
)

// Valid reports whether the variant is one of the known apps.
func (v Variant) Valid() bool {
	switch v {
	case VariantMilMove, VariantOffice, VariantAdmin:
		return true
	}
	return false
}

// Flow names registered by this package.
const (
	FlowBootstrap  = "session.bootstrap"
	FlowRoleSwitch = "session.switchRole"
)

// FlashKey is the flash-message slot session failures write to.
const FlashKey = "session"

// Flash message texts.
const (
	loadErrorText       = "There was an error loading your information."
	roleSwitchErrorText = "There was an error switching your role."
)

// API is the slice of the internal API the session flows call.
type API interface {
	IsLoggedIn(ctx context.Context) (bool, error)
	GetLoggedInUser(ctx context.Context) (provider.Record, error)
	GetIdentityProviderUser(ctx context.Context) (provider.Record, error)
	GetAdminUser(ctx context.Context) (provider.Record, error)
	UpdateActiveRole(ctx context.Context, roleType string) error
}

// Manager builds the session flows for one app variant.
type Manager struct {
	api     API
	runner  *flow.Runner
	variant Variant
	logger  *slog.Logger
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

// NewManager creates a session manager.
func NewManager(api API, runner *flow.Runner, variant Variant, opts ...Option) *Manager {
	m := &Manager{
		api:     api,
		runner:  runner,
		variant: variant,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Bootstrap runs the authentication bootstrap flow to completion.
func (m *Manager) Bootstrap(ctx context.Context) flow.Outcome {
	return m.runner.Run(ctx, m.BootstrapFlow())
}

// BootstrapFlow is the authentication bootstrap sequence: loading started,
// login check, full user load, identity-provider load, then for the admin
// variant the admin user, ending authenticated.
func (m *Manager) BootstrapFlow() flow.Flow {
	return flow.Flow{
		Name: FlowBootstrap,
		Body: func(ctx context.Context, fx *flow.Effects) error {
			fx.Put(func(s *state.State) { s.StartLoading() })

			var loggedIn bool
			err := fx.Call(ctx, "isLoggedIn", func(ctx context.Context) error {
				var callErr error
				loggedIn, callErr = m.api.IsLoggedIn(ctx)
				return callErr
			})
			if err != nil {
				return err
			}
			if !loggedIn {
				return errors.ErrNotLoggedIn
			}

			if err := m.loadUser(ctx, fx); err != nil {
				return err
			}

			// A failing identity lookup is fatal to the bootstrap; there
			// is no recovery path.
			var profile provider.Record
			err = fx.Call(ctx, "getIdentityProviderUser", func(ctx context.Context) error {
				var callErr error
				profile, callErr = m.api.GetIdentityProviderUser(ctx)
				return callErr
			})
			if err != nil {
				return err
			}
			fx.Put(func(s *state.State) { s.SetIdentityProfile(profile) })

			if m.variant == VariantAdmin {
				var adminUser provider.Record
				err = fx.Call(ctx, "getAdminUser", func(ctx context.Context) error {
					var callErr error
					adminUser, callErr = m.api.GetAdminUser(ctx)
					return callErr
				})
				if err != nil {
					return err
				}
				fx.Put(func(s *state.State) { s.SetAdminUser(adminUser) })
			}

			fx.Put(func(s *state.State) { s.Authenticate() })
			return nil
		},
		OnFailure: func(fx *flow.Effects, err error) {
			if stderrors.Is(err, errors.ErrNotLoggedIn) {
				fx.Put(func(s *state.State) { s.FailLoad(err) })
				return
			}
			fx.Put(func(s *state.State) {
				s.SetFlashMessage(FlashKey, "error", loadErrorText, "")
			})
			fx.Put(func(s *state.State) { s.FailLoad(err) })
		},
	}
}

// SwitchRole runs the active-role switch flow to completion.
func (m *Manager) SwitchRole(ctx context.Context, roleType string) flow.Outcome {
	return m.runner.Run(ctx, m.RoleSwitchFlow(roleType))
}

// RoleSwitchFlow updates the active role on the server session. Success
// records the role and reloads the user exactly once; failure records one
// failed transition followed by one flash message and does not reload.
func (m *Manager) RoleSwitchFlow(roleType string) flow.Flow {
	return flow.Flow{
		Name: FlowRoleSwitch,
		Body: func(ctx context.Context, fx *flow.Effects) error {
			err := fx.Call(ctx, "updateActiveRole", func(ctx context.Context) error {
				return m.api.UpdateActiveRole(ctx, roleType)
			})
			if err != nil {
				return err
			}

			fx.Put(func(s *state.State) { s.SetActiveRole(roleType) })
			return m.loadUser(ctx, fx)
		},
		OnFailure: func(fx *flow.Effects, err error) {
			fx.Put(func(s *state.State) { s.FailRoleSwitch(err) })
			fx.Put(func(s *state.State) {
				s.SetFlashMessage(FlashKey, "error", roleSwitchErrorText, "")
			})
		},
	}
}

// loadUser fetches the logged-in user and merges the normalized payload
// into the entity store.
func (m *Manager) loadUser(ctx context.Context, fx *flow.Effects) error {
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
	return nil
}
