// Package flow is the effect-sequencing runtime the orchestrators run on.
//
// A flow is a plain function over an Effects value, which offers the three
// primitives: Call invokes an external async operation and waits for it to
// settle, Put applies a state transition synchronously, and Select reads
// state synchronously. Suspension happens only inside Call; Put and Select
// never block on anything but the state container's own lock.
//
// The Runner gives every run a single fault boundary: an error escaping the
// body is caught exactly once, handed to the flow's failure handler for its
// one failure transition (plus flash message where user-facing), and never
// retried. Independent runs interleave freely; ordering is only guaranteed
// within a single run.
//
// Watchers are the long-lived variant: lifecycle-managed listeners that run
// their flow once per notification for the rest of the session.
package flow
