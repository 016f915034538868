package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents node/edge store errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeSimilarity represents embedding/similarity index errors
	ErrorTypeSimilarity ErrorType = "similarity"
	// ErrorTypeSync represents fact ingestion/upsert errors
	ErrorTypeSync ErrorType = "sync"
	// ErrorTypeCoherence represents contradiction/intention tracking errors
	ErrorTypeCoherence ErrorType = "coherence"
	// ErrorTypePersistence represents snapshot save/load errors
	ErrorTypePersistence ErrorType = "persistence"
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

// Graph Errors

// ErrNodeNotFound is returned when a node id does not exist in the store
type ErrNodeNotFound struct {
	*BaseError
	NodeID string
}

func NewNodeNotFound(nodeID string) *ErrNodeNotFound {
	return &ErrNodeNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("node not found: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// ErrEdgeNotFound is returned when an edge cannot be located
type ErrEdgeNotFound struct {
	*BaseError
	EdgeID string
}

func NewEdgeNotFound(edgeID string) *ErrEdgeNotFound {
	return &ErrEdgeNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("edge not found: %s", edgeID), nil),
		EdgeID:    edgeID,
	}
}

// ErrInvalidNodeType is returned when a node type is outside the closed enum
type ErrInvalidNodeType struct {
	*BaseError
	NodeType string
}

func NewInvalidNodeType(nodeType string) *ErrInvalidNodeType {
	return &ErrInvalidNodeType{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("invalid node type: %s", nodeType), nil),
		NodeType:  nodeType,
	}
}

// ErrRevisionCycle is returned when a supersedes edge would close a cycle
type ErrRevisionCycle struct {
	*BaseError
	NodeID string
}

func NewRevisionCycle(nodeID string) *ErrRevisionCycle {
	return &ErrRevisionCycle{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("supersession would create a revision cycle at: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// ErrDuplicateSupersession is returned when a node already has a revision
// predecessor or successor
type ErrDuplicateSupersession struct {
	*BaseError
	NodeID string
}

func NewDuplicateSupersession(nodeID string) *ErrDuplicateSupersession {
	return &ErrDuplicateSupersession{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("node already has a supersession link: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// Similarity Errors

// ErrEmbeddingFailed is returned when an embedding request fails after retries
type ErrEmbeddingFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewEmbeddingFailed(model string, attempts int, err error) *ErrEmbeddingFailed {
	return &ErrEmbeddingFailed{
		BaseError: NewBaseError(ErrorTypeSimilarity, fmt.Sprintf("embedding request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// Sync Errors

// ErrMissingExternalID is returned when an upsert arrives without an external fact id
var ErrMissingExternalID = NewBaseError(ErrorTypeSync, "external fact id is required", nil)

// ErrMissingContent is returned when an upsert arrives without content
var ErrMissingContent = NewBaseError(ErrorTypeSync, "fact content is required", nil)

// Coherence Errors

// ErrSelfContradiction is returned when a contradiction references one node twice
type ErrSelfContradiction struct {
	*BaseError
	NodeID string
}

func NewSelfContradiction(nodeID string) *ErrSelfContradiction {
	return &ErrSelfContradiction{
		BaseError: NewBaseError(ErrorTypeCoherence, fmt.Sprintf("node cannot contradict itself: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// ErrContradictionNotFound is returned when resolving an unknown contradiction
type ErrContradictionNotFound struct {
	*BaseError
	EdgeID string
}

func NewContradictionNotFound(edgeID string) *ErrContradictionNotFound {
	return &ErrContradictionNotFound{
		BaseError: NewBaseError(ErrorTypeCoherence, fmt.Sprintf("contradiction not found: %s", edgeID), nil),
		EdgeID:    edgeID,
	}
}

// ErrIntentionNotFound is returned when an intention id does not resolve
type ErrIntentionNotFound struct {
	*BaseError
	IntentionID string
}

func NewIntentionNotFound(intentionID string) *ErrIntentionNotFound {
	return &ErrIntentionNotFound{
		BaseError:   NewBaseError(ErrorTypeCoherence, fmt.Sprintf("intention not found: %s", intentionID), nil),
		IntentionID: intentionID,
	}
}

// ErrInvalidIntentionStatus is returned on an unknown status transition target
type ErrInvalidIntentionStatus struct {
	*BaseError
	Status string
}

func NewInvalidIntentionStatus(status string) *ErrInvalidIntentionStatus {
	return &ErrInvalidIntentionStatus{
		BaseError: NewBaseError(ErrorTypeCoherence, fmt.Sprintf("invalid intention status: %s", status), nil),
		Status:    status,
	}
}

// Persistence Errors

// ErrSnapshotWriteFailed is returned when the snapshot cannot be written.
// The in-memory graph and the prior on-disk snapshot stay intact.
type ErrSnapshotWriteFailed struct {
	*BaseError
	Path string
}

func NewSnapshotWriteFailed(path string, err error) *ErrSnapshotWriteFailed {
	return &ErrSnapshotWriteFailed{
		BaseError: NewBaseError(ErrorTypePersistence, fmt.Sprintf("failed to write snapshot: %s", path), err),
		Path:      path,
	}
}

// Config Errors

// ErrConfigInvalid is returned when configuration validation fails
type ErrConfigInvalid struct {
	*BaseError
	Field string
}

func NewConfigInvalid(field, reason string) *ErrConfigInvalid {
	return &ErrConfigInvalid{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("invalid config %s: %s", field, reason), nil),
		Field:     field,
	}
}
