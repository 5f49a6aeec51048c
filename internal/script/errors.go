package script

import (
	"fmt"

	"github.com/leapstack-labs/leapml/pkg/token"
)

// DecodeError reports a script that is not a well-formed AST document.
type DecodeError struct {
	Pos     token.Position
	Message string
}

func (e *DecodeError) Error() string {
	if e.Pos.IsValid() || e.Pos.File != "" {
		return fmt.Sprintf("%s: %s", e.Pos, e.Message)
	}
	return e.Message
}

// UnknownKindError reports a node whose key names no AST node kind.
type UnknownKindError struct {
	Pos  token.Position
	Kind string
	Want string // "expression", "pattern" or "statement"
}

func (e *UnknownKindError) Error() string {
	msg := fmt.Sprintf("unknown %s kind %q", e.Want, e.Kind)
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, msg)
	}
	return msg
}
