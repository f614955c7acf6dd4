// Package entitystore holds the normalized in-memory entity state shared by
// all flows.
//
// Records live in per-type buckets keyed by id. An id is unique within its
// bucket; merging a record under an existing id overwrites it in place
// (last-write-wins). Each bucket carries its own lock, so a merge into one
// entity type never blocks readers of another.
//
// Normalize flattens the nested payloads the backend returns (a user with an
// embedded service member, which in turn embeds orders, moves and backup
// contacts) into per-type record sets that Merge folds into the store.
// Normalizing and merging the same payload twice leaves the store identical
// to doing it once.
//
// The selector functions are the read API: they resolve the relationship
// references Normalize leaves behind (a user's service_member id, a service
// member's orders list) back into records.
package entitystore
