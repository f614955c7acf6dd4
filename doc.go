// Package movekit is the client core for the military household-goods
// move-management system. It owns everything between a UI and the
// backend's REST contract: session bootstrap, the REST data-provider
// adapter, normalized entity state, and the orchestrated flows that keep
// both in sync.
//
// # Architecture
//
// Control flows in one direction:
//
//	UI action → orchestrator flow → internal API / provider adapter
//	          → entity normalization → state transition → UI re-render
//
// Flows are declarative step sequences over three primitives: call an
// external effect, put a state transition, select from state. Each run
// has a single fault boundary; failures become exactly one failed
// transition plus, where user-facing, one flash message, and nothing is
// retried automatically.
//
// # Packages
//
// Transport:
//   - httpclient: CSRF-aware HTTP wrapper with a persistent cookie jar
//   - provider: REST data-provider adapter (getList through deleteMany)
//   - internalapi: typed session calls (login check, user, roles, shipments)
//
// State:
//   - entitystore: per-type id-keyed buckets with last-write-wins merge
//   - state: owned session-state container with an ordered transition log
//
// Orchestration:
//   - flow: effect-sequencing runtime, dispatcher and lifecycle watchers
//   - session: authentication bootstrap and active-role switch flows
//   - onboarding: profile-completeness ladder, step resolver, init flow
//
// Infrastructure:
//   - errors: classified errors (transport, contract, domain, flow)
//   - config: JSON file + env configuration with validation
//   - metric: prometheus registry and the core metric set
//
// # Binary
//
// cmd/movekit is a headless session agent: it boots an authenticated
// session against a configured base URL, runs onboarding initialization
// for the customer variant, and serves /metrics and /health while the
// entity-sync watcher keeps state fresh.
package movekit
