package transform

import (
	"errors"
	"fmt"

	"github.com/psykit/psykit/internal/ir"
)

// TransformationErrorCode categorizes precondition failures.
type TransformationErrorCode string

const (
	// ErrCodeBadTarget indicates the wrong number or kind of target nodes.
	ErrCodeBadTarget TransformationErrorCode = "BAD_TARGET"

	// ErrCodeWrongIterSpace indicates a loop with an iteration space the
	// transformation cannot handle.
	ErrCodeWrongIterSpace TransformationErrorCode = "WRONG_ITER_SPACE"

	// ErrCodeContainsComm indicates the candidate subtree contains a
	// HaloExchange or GlobalReduction node, which must never end up inside
	// a directive region.
	ErrCodeContainsComm TransformationErrorCode = "CONTAINS_COMM_NODES"

	// ErrCodeNotContiguous indicates the target nodes are not contiguous
	// siblings under a common parent.
	ErrCodeNotContiguous TransformationErrorCode = "NOT_CONTIGUOUS_SIBLINGS"

	// ErrCodeNestedDirective indicates the target is already inside (or
	// already contains) a conflicting directive region.
	ErrCodeNestedDirective TransformationErrorCode = "NESTED_DIRECTIVE"

	// ErrCodeIncArgCount indicates a colouring target without exactly one
	// increment-access argument.
	ErrCodeIncArgCount TransformationErrorCode = "INC_ARG_COUNT"

	// ErrCodeAlreadyColoured indicates a loop that is already part of a
	// colour nest.
	ErrCodeAlreadyColoured TransformationErrorCode = "ALREADY_COLOURED"

	// ErrCodeBadDepth indicates a redundant-computation depth outside the
	// configured halo range.
	ErrCodeBadDepth TransformationErrorCode = "BAD_DEPTH"

	// ErrCodeNeedsDistributedMemory indicates a rewrite that only makes
	// sense under distributed memory.
	ErrCodeNeedsDistributedMemory TransformationErrorCode = "NEEDS_DISTRIBUTED_MEMORY"

	// ErrCodeNotInlinable indicates an inline target that is a builtin,
	// already inlined, or compiled for the accelerator.
	ErrCodeNotInlinable TransformationErrorCode = "NOT_INLINABLE"

	// ErrCodeFuseMismatch indicates fusion candidates with differing
	// iteration spaces or bounds.
	ErrCodeFuseMismatch TransformationErrorCode = "FUSE_MISMATCH"
)

// TransformationError reports a precondition a requested rewrite failed.
// A failed Validate guarantees Apply was not invoked, so the tree is
// untouched.
type TransformationError struct {
	Code TransformationErrorCode
	// Trans is the name of the transformation.
	Trans string
	// Node is the offending target, when there is a single one.
	Node ir.NodeID
	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *TransformationError) Error() string {
	return fmt.Sprintf("%s: %s: %s (node=%d)", e.Code, e.Trans, e.Message, e.Node)
}

// IsTransformationError reports whether err is (or wraps) a
// TransformationError.
func IsTransformationError(err error) bool {
	var te *TransformationError
	return errors.As(err, &te)
}

func transErr(code TransformationErrorCode, trans string, node ir.NodeID, msg string) *TransformationError {
	return &TransformationError{Code: code, Trans: trans, Node: node, Message: msg}
}
