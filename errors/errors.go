// Package errors provides standardized error handling for the movekit
// client core. It classifies errors into the taxonomy the orchestrators
// branch on (transport, contract, domain, flow) and provides helper
// functions for consistent error wrapping across the module.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorTransport represents non-2xx HTTP responses or network failures
	ErrorTransport ErrorClass = iota
	// ErrorContract represents violations of the consumed API contract,
	// such as a missing Content-Range header or an unsupported operation
	ErrorContract
	// ErrorDomain represents structured API error bodies (detail plus
	// optional per-field validation messages)
	ErrorDomain
	// ErrorFlow represents a failure already absorbed by an orchestrator's
	// fault boundary
	ErrorFlow
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransport:
		return "transport"
	case ErrorContract:
		return "contract"
	case ErrorDomain:
		return "domain"
	case ErrorFlow:
		return "flow"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Adapter contract errors
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrMissingContentRange  = errors.New("missing Content-Range header")
	ErrMissingID            = errors.New("record is missing an id field")
	ErrMissingETag          = errors.New("record is missing an eTag field")

	// Session errors
	ErrNotLoggedIn = errors.New("User is not logged in")

	// Flow runtime errors
	ErrFlowAlreadyRunning = errors.New("flow already running")
	ErrWatcherNotStarted  = errors.New("watcher not started")
	ErrWatcherStopped     = errors.New("watcher already stopped")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// TransportError carries the HTTP status and parsed response body of a
// non-2xx response so callers can branch on structured fields.
type TransportError struct {
	Status int
	Body   json.RawMessage
}

// Error implements the error interface
func (te *TransportError) Error() string {
	return fmt.Sprintf("request failed with status %d", te.Status)
}

// Domain attempts to interpret the response body as a structured API
// error. Returns nil if the body is absent or not a domain error shape.
func (te *TransportError) Domain() *DomainError {
	if len(te.Body) == 0 {
		return nil
	}
	var de DomainError
	if err := json.Unmarshal(te.Body, &de); err != nil {
		return nil
	}
	if de.Detail == "" && len(de.InvalidFields) == 0 {
		return nil
	}
	return &de
}

// DomainError is the structured API error body: a human-readable detail
// plus an optional mapping from field name to validation messages.
type DomainError struct {
	Title         string              `json:"title,omitempty"`
	Detail        string              `json:"detail"`
	Instance      string              `json:"instance,omitempty"`
	InvalidFields map[string][]string `json:"invalidFields,omitempty"`
}

// Error implements the error interface
func (de *DomainError) Error() string {
	return de.Detail
}

// FlattenInvalidFields renders the invalid-field mapping as the UI layer
// expects it: one "field - firstMessage" line per field, sorted by field
// name for deterministic output.
func FlattenInvalidFields(fields map[string][]string) []string {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		msgs := fields[name]
		if len(msgs) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s - %s", name, msgs[0]))
	}
	return lines
}

// IsTransport checks if an error originated from a failed HTTP exchange
func IsTransport(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return true
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransport
	}

	return false
}

// IsContract checks if an error is a violation of the consumed API contract
func IsContract(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorContract
	}

	return errors.Is(err, ErrUnsupportedOperation) ||
		errors.Is(err, ErrMissingContentRange) ||
		errors.Is(err, ErrMissingID) ||
		errors.Is(err, ErrMissingETag)
}

// IsDomain checks if an error carries a structured API error body
func IsDomain(err error) bool {
	if err == nil {
		return false
	}

	var de *DomainError
	if errors.As(err, &de) {
		return true
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Domain() != nil
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorDomain
	}

	return false
}

// Classify returns the error class for an error. Contract violations are
// checked before transport so a classified contract error wrapped around a
// response never degrades into a transport error.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransport
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	if IsContract(err) {
		return ErrorContract
	}
	if IsDomain(err) {
		return ErrorDomain
	}

	return ErrorTransport
}

// newClassified creates a new classified error
// This is an internal helper - use the Wrap* constructors instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransport wraps an error as a transport failure with context
func WrapTransport(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTransport, wrappedErr, component, method, wrappedErr.Error())
}

// WrapContract wraps an error as a contract violation with context
func WrapContract(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorContract, wrappedErr, component, method, wrappedErr.Error())
}

// WrapDomain wraps an error as a domain failure with context
func WrapDomain(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorDomain, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFlow wraps an error as an absorbed flow failure with context
func WrapFlow(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFlow, wrappedErr, component, method, wrappedErr.Error())
}
