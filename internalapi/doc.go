// Package internalapi wraps the session endpoints of the internal API in
// typed calls: login status, the logged-in user, the identity-provider
// profile, active-role updates, service-member creation and the shipment
// list for a move. Everything rides on the CSRF-aware httpclient; resource
// CRUD stays with the provider adapter.
package internalapi
