// Package eval is the runtime: executable Code, runtime environments,
// the pattern binder, runtime faults and the value printer.
//
// Runtime values are plain Go values: int, float64, string, rune, bool and
// Unit for the primitive types; []any for tuples, lists and records (record
// fields in label order); []any{tag} or []any{tag, payload} for datatype
// constructors; and Applicable for functions.
package eval

import (
	"fmt"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/token"
)

// Code is a compiled expression. It evaluates against a runtime environment.
type Code func(env EvalEnv) (any, error)

// UnitValue is the type of the single value of type unit.
type UnitValue struct{}

// Unit is the value "()".
var Unit = UnitValue{}

// Applicable is a function value.
type Applicable interface {
	Apply(arg any) (any, error)
}

// Func adapts a Go function to Applicable.
type Func func(arg any) (any, error)

// Apply implements Applicable.
func (f Func) Apply(arg any) (any, error) { return f(arg) }

// Constant returns code that evaluates to v.
func Constant(v any) Code {
	return func(EvalEnv) (any, error) { return v, nil }
}

// Lookup returns code that looks name up when it runs.
func Lookup(name string) Code {
	return func(env EvalEnv) (any, error) {
		return Get(env, name)
	}
}

// If returns code that evaluates cond and then exactly one of the branches.
func If(cond, ifTrue, ifFalse Code) Code {
	return func(env EvalEnv) (any, error) {
		c, err := cond(env)
		if err != nil {
			return nil, err
		}
		b, ok := c.(bool)
		if !ok {
			return nil, &TypeMismatchError{Op: "if", Value: c}
		}
		if b {
			return ifTrue(env)
		}
		return ifFalse(env)
	}
}

// ApplyCode returns code that evaluates fn, then arg, then applies one to
// the other.
func ApplyCode(fn, arg Code) Code {
	return func(env EvalEnv) (any, error) {
		f, err := fn(env)
		if err != nil {
			return nil, err
		}
		a, err := arg(env)
		if err != nil {
			return nil, err
		}
		callee, ok := f.(Applicable)
		if !ok {
			return nil, &TypeMismatchError{Op: "apply", Value: f}
		}
		return callee.Apply(a)
	}
}

// Sequence returns code that evaluates each of codes left to right and
// collects the results into a []any. Tuples, lists and records use it.
func Sequence(codes []Code) Code {
	return func(env EvalEnv) (any, error) {
		values := make([]any, len(codes))
		for i, c := range codes {
			v, err := c(env)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}
}

// Construct returns code that builds a constructor value. arg is nil for
// nullary constructors.
func Construct(tag string, arg Code) Code {
	if arg == nil {
		v := []any{tag}
		return Constant(v)
	}
	return func(env EvalEnv) (any, error) {
		payload, err := arg(env)
		if err != nil {
			return nil, err
		}
		return []any{tag, payload}, nil
	}
}

// Arm is one "pattern => body" alternative of a fn or case.
type Arm struct {
	Pat  ast.Pat
	Body Code
}

// Closure is a function value created by evaluating a fn expression.
type Closure struct {
	env  EvalEnv
	arms []Arm
	pos  token.Position
	// param is set when the closure has a single identifier-pattern arm.
	param string
}

// NewClosure returns a closure over env that tries arms in order.
func NewClosure(env EvalEnv, arms []Arm, pos token.Position) *Closure {
	c := &Closure{env: env, arms: arms, pos: pos}
	if len(arms) == 1 {
		if id, ok := arms[0].Pat.(*ast.IDPat); ok {
			c.param = id.Name
		}
	}
	return c
}

// Apply implements Applicable.
func (c *Closure) Apply(arg any) (any, error) {
	if c.param != "" {
		return c.arms[0].Body(Add(c.env, c.param, arg))
	}
	return Match(c.env, c.arms, arg, c.pos)
}

func (c *Closure) String() string { return "fn" }

// Match binds v against each arm's pattern in order and evaluates the body
// of the first that matches. It faults with Match if none does.
func Match(env EvalEnv, arms []Arm, v any, pos token.Position) (any, error) {
	for _, arm := range arms {
		penv := NewPatEvalEnv(env, arm.Pat)
		if penv.SetOpt(v) {
			return arm.Body(penv)
		}
	}
	return nil, NewFault(FaultMatch, pos, "nonexhaustive match failure")
}

// CaseCode returns code that evaluates the scrutinee and dispatches on arms.
func CaseCode(scrutinee Code, arms []Arm, pos token.Position) Code {
	return func(env EvalEnv) (any, error) {
		v, err := scrutinee(env)
		if err != nil {
			return nil, err
		}
		return Match(env, arms, v, pos)
	}
}

// describe renders a value for error messages when no type is at hand.
func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}
