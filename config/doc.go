// Package config defines the client-core configuration: which backend to
// talk to, which app variant the session belongs to, and the ambient
// logging and metrics settings.
//
// Configuration loads from an optional JSON file, then environment
// variables override individual fields, then Validate normalizes and
// checks the result. SafeConfig wraps a validated Config for components
// that need to read settings while a reload is in progress.
package config
