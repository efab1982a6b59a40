package ir

import (
	"errors"
	"fmt"
)

// StructureErrorCode categorizes tree-consistency failures.
type StructureErrorCode string

const (
	// ErrCodeInvalidNode indicates a NodeID outside the arena.
	ErrCodeInvalidNode StructureErrorCode = "INVALID_NODE"

	// ErrCodeUnreachableNode indicates an operation addressed a node that
	// is not currently attached to the tree reachable from the root.
	ErrCodeUnreachableNode StructureErrorCode = "UNREACHABLE_NODE"

	// ErrCodeNotDetached indicates a node offered for attachment already
	// has a parent.
	ErrCodeNotDetached StructureErrorCode = "NOT_DETACHED"

	// ErrCodeRootImmutable indicates an attempt to detach or replace the
	// Schedule root.
	ErrCodeRootImmutable StructureErrorCode = "ROOT_IMMUTABLE"

	// ErrCodeBadIndex indicates an out-of-range child index.
	ErrCodeBadIndex StructureErrorCode = "BAD_INDEX"
)

// StructureError reports an operation that addressed the tree
// inconsistently. It is always a caller or internal-consistency bug, never
// a property of the input problem, so callers should treat it as fatal.
type StructureError struct {
	Code StructureErrorCode
	// Op names the Schedule method that failed.
	Op string
	// Node is the offending NodeID.
	Node NodeID
	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *StructureError) Error() string {
	return fmt.Sprintf("%s: %s: %s (node=%d)", e.Code, e.Op, e.Message, e.Node)
}

// IsStructureError reports whether err is (or wraps) a StructureError.
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}

func structErr(code StructureErrorCode, op string, id NodeID, msg string) *StructureError {
	return &StructureError{Code: code, Op: op, Node: id, Message: msg}
}
