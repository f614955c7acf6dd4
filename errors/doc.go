// Package errors provides standardized error handling for the movekit
// client core.
//
// # Overview
//
// The package implements a four-class error taxonomy matching how the
// orchestration layer reacts to failures:
//
//   - Transport: non-2xx HTTP responses or network failures, propagated
//     verbatim with status and body attached
//   - Contract: violations of the consumed API contract (missing
//     Content-Range header, unsupported operation), always fatal for the
//     affected call
//   - Domain: structured API error bodies carrying a detail message and
//     optionally per-field validation messages
//   - Flow: a failure already absorbed by an orchestrator's fault boundary
//
// The adapter and HTTP wrapper never catch-and-hide errors; they wrap and
// propagate. Orchestrators are the single place where errors become
// user-visible state, and they use the classification predicates here to
// decide what to surface.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// via the Wrap family of constructors:
//
//	errors.WrapTransport(err, "Client", "Do", "execute request")
//	errors.WrapContract(err, "Provider", "GetList", "parse Content-Range")
//
// Classification survives error chains and integrates with the standard
// library's errors.Is and errors.As.
//
// # Structured Errors
//
// TransportError exposes the HTTP status and raw JSON body of a failed
// exchange. DomainError is the parsed structured body; its invalid-field
// mapping can be rendered for display with FlattenInvalidFields, which
// produces one "field - firstMessage" line per field.
package errors
