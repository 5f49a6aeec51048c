package eval

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapml/pkg/token"
)

// Names of the runtime faults.
const (
	FaultDiv   = "Div"   // division or mod by zero
	FaultBind  = "Bind"  // a val pattern did not match its value
	FaultMatch = "Match" // no arm of a fn or case matched
	FaultChr   = "Chr"   // chr of an out-of-range code
	// FaultEqual is raised when = or an ordering compares functions whose
	// type was still polymorphic when the statement was compiled.
	FaultEqual    = "Equal"
	FaultOverflow = "Overflow" // a real outside the int range
)

// Fault is a runtime exception raised while evaluating code. Nothing in the
// language catches it, so it aborts the statement.
type Fault struct {
	Name    string
	Message string
	Pos     token.Position
}

func (f *Fault) Error() string {
	msg := "uncaught exception " + f.Name
	if f.Message != "" {
		msg += ": " + f.Message
	}
	if f.Pos.IsValid() {
		msg += " at " + f.Pos.String()
	}
	return msg
}

// NewFault returns a fault with the given name.
func NewFault(name string, pos token.Position, format string, args ...any) *Fault {
	return &Fault{Name: name, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// IsFault reports whether err is, or wraps, a fault called name.
func IsFault(err error, name string) bool {
	var f *Fault
	return errors.As(err, &f) && f.Name == name
}

// ErrFunctionOperand is returned by Equal and Compare for function values.
var ErrFunctionOperand = errors.New("functions cannot be compared")

// ErrUnbound is returned by Get for names that are not bound.
var ErrUnbound = errors.New("unbound name")

// TypeMismatchError is returned when an operator receives a value of the
// wrong runtime type. Type-checked code never produces it.
type TypeMismatchError struct {
	Op    string
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: unexpected operand %v (%T)", e.Op, e.Value, e.Value)
}
