// Package onboarding derives how far a service member has progressed
// through profile setup and drives the onboarding initialization flow.
//
// Completeness is a ladder recomputed from the service-member record on
// every read; it is never stored. NextStep maps a ladder position to the
// profile page the member must visit next and is total: every input,
// including states this package has never seen, resolves to some path.
//
// The initialization flow loads customer data, creates the service-member
// profile when it is missing, navigates to the next required step, and
// leaves a long-lived watcher behind that refreshes entity state for the
// rest of the session.
package onboarding
