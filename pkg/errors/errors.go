package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound is returned when a referenced node or edge id does not resolve
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeUnauthorized is returned when an entity exists but is not owned by the caller
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeInvalidArgument is returned for wrong node types, missing required
	// fields, unsupported edge types and self-loops
	ErrorTypeInvalidArgument ErrorType = "invalid_argument"
	// ErrorTypeConflict is reserved for duplicate-prevention rules
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeEmbedding represents embedding provider errors
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Terminal engine failures. All four spec categories are non-retryable from
// the engine's point of view; callers decide retry policy.

// ErrNodeNotFound is returned when a node id does not resolve
type ErrNodeNotFound struct {
	*BaseError
	NodeID string
}

func NewNodeNotFound(nodeID string) *ErrNodeNotFound {
	return &ErrNodeNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("node not found: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// ErrEdgeNotFound is returned when an edge id does not resolve
type ErrEdgeNotFound struct {
	*BaseError
	EdgeID string
}

func NewEdgeNotFound(edgeID string) *ErrEdgeNotFound {
	return &ErrEdgeNotFound{
		BaseError: NewBaseError(ErrorTypeNotFound, fmt.Sprintf("edge not found: %s", edgeID), nil),
		EdgeID:    edgeID,
	}
}

// ErrUnauthorized is returned when the resolved entity belongs to another user
type ErrUnauthorized struct {
	*BaseError
	EntityID string
}

func NewUnauthorized(entityID string) *ErrUnauthorized {
	return &ErrUnauthorized{
		BaseError: NewBaseError(ErrorTypeUnauthorized, fmt.Sprintf("entity not owned by caller: %s", entityID), nil),
		EntityID:  entityID,
	}
}

// ErrInvalidArgument is returned for bad operation input
type ErrInvalidArgument struct {
	*BaseError
	Reason string
}

func NewInvalidArgument(reason string) *ErrInvalidArgument {
	return &ErrInvalidArgument{
		BaseError: NewBaseError(ErrorTypeInvalidArgument, reason, nil),
		Reason:    reason,
	}
}

// ErrConflict is reserved for future duplicate-prevention rules
type ErrConflict struct {
	*BaseError
	Reason string
}

func NewConflict(reason string) *ErrConflict {
	return &ErrConflict{
		BaseError: NewBaseError(ErrorTypeConflict, reason, nil),
		Reason:    reason,
	}
}

// Infrastructure errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
}

func NewGraphQueryFailed(operation string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", operation), err),
		Operation: operation,
	}
}

// ErrEmbeddingFailed is returned by the embedding adapter when the provider
// call fails. Engine call sites degrade this to "no embedding" instead of
// propagating it.
type ErrEmbeddingFailed struct {
	*BaseError
	Model string
}

func NewEmbeddingFailed(model string, err error) *ErrEmbeddingFailed {
	return &ErrEmbeddingFailed{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding request failed: %s", model), err),
		Model:     model,
	}
}

// Helper functions

// categorized is satisfied by every error embedding a BaseError
type categorized interface {
	Category() ErrorType
}

// Category returns the error's category tag
func (e *BaseError) Category() ErrorType {
	return e.Type
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// TypeOf returns the error category, or "" for foreign errors
func TypeOf(err error) ErrorType {
	var c categorized
	if errors.As(err, &c) {
		return c.Category()
	}
	return ""
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return TypeOf(err) == ErrorTypeNotFound }

// IsUnauthorized reports whether err is an ownership error
func IsUnauthorized(err error) bool { return TypeOf(err) == ErrorTypeUnauthorized }

// IsInvalidArgument reports whether err is an invalid-argument error
func IsInvalidArgument(err error) bool { return TypeOf(err) == ErrorTypeInvalidArgument }

// HTTPStatus maps an error category to an HTTP status code
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeUnauthorized:
		return http.StatusForbidden
	case ErrorTypeInvalidArgument:
		return http.StatusBadRequest
	case ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
