package deps

import (
	"errors"
	"fmt"

	"github.com/psykit/psykit/internal/ir"
)

// DependenceErrorCode categorizes access/space conflicts the analyzer
// cannot reconcile.
type DependenceErrorCode string

const (
	// ErrCodeIncOnDiscontinuous indicates increment access declared on a
	// space with no shared dofs, which has nothing to increment across
	// cell boundaries.
	ErrCodeIncOnDiscontinuous DependenceErrorCode = "INC_ON_DISCONTINUOUS"

	// ErrCodeReduceNonScalar indicates reduce-sum access on a non-scalar
	// argument.
	ErrCodeReduceNonScalar DependenceErrorCode = "REDUCE_NON_SCALAR"

	// ErrCodeStencilOnNonField indicates a stencil declared for an
	// argument that is not field data.
	ErrCodeStencilOnNonField DependenceErrorCode = "STENCIL_ON_NON_FIELD"
)

// DependenceError reports an argument whose declared access mode cannot be
// reconciled with its declared space or kind. It carries the offending
// field and call site so the driver can point at the metadata to fix.
type DependenceError struct {
	Code   DependenceErrorCode
	Field  string
	Space  string
	Access ir.Access
	Callee string
	Node   ir.NodeID
}

// Error implements the error interface.
func (e *DependenceError) Error() string {
	return fmt.Sprintf("%s: argument '%s' (access=%s, space=%s) in call '%s' (node=%d)",
		e.Code, e.Field, e.Access, e.Space, e.Callee, e.Node)
}

// IsDependenceError reports whether err is (or wraps) a DependenceError.
func IsDependenceError(err error) bool {
	var de *DependenceError
	return errors.As(err, &de)
}
