package compile

import (
	"fmt"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/token"
)

// TypeError reports a statement that does not type-check.
type TypeError struct {
	Pos     token.Position
	Message string
	Reason  string // optional detail, e.g. the conflicting types
}

func (e *TypeError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("type error at %s: %s", e.Pos, msg)
	}
	return "type error: " + msg
}

// InternalError reports an AST the resolver or compiler cannot handle, such
// as an unbound identifier or an unknown node kind. A well-formed tree from
// the parser never produces one.
type InternalError struct {
	Op      ast.Op
	Pos     token.Position
	Message string
}

func (e *InternalError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("internal error at %s in %s: %s", e.Pos, e.Op, e.Message)
	}
	return fmt.Sprintf("internal error in %s: %s", e.Op, e.Message)
}

func internalErrorf(n ast.Node, format string, args ...any) *InternalError {
	return &InternalError{Op: n.Op(), Pos: n.Pos(), Message: fmt.Sprintf(format, args...)}
}

// Common error messages
const (
	msgCannotTypeCheck = "cannot type-check"
	errUnbound         = "unbound identifier %q"
	errUnknownCon      = "unknown constructor %q"
	errConArity        = "constructor %s %s an argument"
	errUnhandledNode   = "unhandled node %T"
)
