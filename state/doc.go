// Package state is the owned session-state container flows write to.
//
// It replaces ambient global mutation with an explicit container created at
// app start and injected into every orchestrator. All mutation goes through
// transition methods; each transition is appended to an ordered log so the
// exact sequence a flow produced can be observed afterwards. Reads and
// writes are individually atomic, matching how independently triggered
// flows interleave.
//
// Flash messages are keyed: setting a key replaces any message already
// under it, and clearing is always explicit.
package state
