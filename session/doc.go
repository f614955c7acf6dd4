// Package session holds the authentication bootstrap and active-role
// switch flows.
//
// Bootstrap loads the session in a fixed order: login check, full user
// profile, identity-provider profile, and in the admin variant the admin
// user. A session that is simply not logged in terminates the flow without
// a flash message; any other failure produces one flash message and one
// failed transition. The role-switch flow updates the role on the server
// session and reloads the user exactly once on success; on failure it
// emits one failure transition and one flash message and does not reload.
package session
