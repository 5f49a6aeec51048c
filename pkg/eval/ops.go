package eval

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/token"
)

// Infix returns code for a binary operator. Operands are evaluated left to
// right; andalso and orelse skip the right operand when the left one
// decides the result.
func Infix(op ast.Op, left, right Code, pos token.Position) (Code, error) {
	switch op {
	case ast.OpAndAlso:
		return shortCircuit(left, right, false), nil
	case ast.OpOrElse:
		return shortCircuit(left, right, true), nil
	}
	fn, ok := binaryOps[op]
	if !ok {
		return nil, fmt.Errorf("no runtime operator for %s", op)
	}
	return func(env EvalEnv) (any, error) {
		a, err := left(env)
		if err != nil {
			return nil, err
		}
		b, err := right(env)
		if err != nil {
			return nil, err
		}
		return fn(a, b, pos)
	}, nil
}

// shortCircuit evaluates right only if left is not decisive.
func shortCircuit(left, right Code, decisive bool) Code {
	return func(env EvalEnv) (any, error) {
		a, err := left(env)
		if err != nil {
			return nil, err
		}
		b, ok := a.(bool)
		if !ok {
			return nil, &TypeMismatchError{Op: "andalso/orelse", Value: a}
		}
		if b == decisive {
			return b, nil
		}
		return right(env)
	}
}

type binaryOp func(a, b any, pos token.Position) (any, error)

var binaryOps = map[ast.Op]binaryOp{
	ast.OpPlus:   intOp("+", func(a, b int) int { return a + b }),
	ast.OpMinus:  intOp("-", func(a, b int) int { return a - b }),
	ast.OpTimes:  intOp("*", func(a, b int) int { return a * b }),
	ast.OpDivide: divide,
	ast.OpMod:    mod,
	ast.OpCaret:  caret,
	ast.OpEq:     equality("=", false),
	ast.OpNe:     equality("<>", true),
	ast.OpLt:     comparison("<", func(c int) bool { return c < 0 }),
	ast.OpGt:     comparison(">", func(c int) bool { return c > 0 }),
	ast.OpLe:     comparison("<=", func(c int) bool { return c <= 0 }),
	ast.OpGe:     comparison(">=", func(c int) bool { return c >= 0 }),
}

func ints(op string, a, b any) (int, int, error) {
	x, ok := a.(int)
	if !ok {
		return 0, 0, &TypeMismatchError{Op: op, Value: a}
	}
	y, ok := b.(int)
	if !ok {
		return 0, 0, &TypeMismatchError{Op: op, Value: b}
	}
	return x, y, nil
}

func intOp(op string, fn func(a, b int) int) binaryOp {
	return func(a, b any, _ token.Position) (any, error) {
		x, y, err := ints(op, a, b)
		if err != nil {
			return nil, err
		}
		return fn(x, y), nil
	}
}

// divide rounds towards negative infinity, like ML's div.
func divide(a, b any, pos token.Position) (any, error) {
	x, y, err := ints("/", a, b)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, NewFault(FaultDiv, pos, "divide by zero")
	}
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q, nil
}

// mod takes the sign of the divisor, like ML's mod.
func mod(a, b any, pos token.Position) (any, error) {
	x, y, err := ints("mod", a, b)
	if err != nil {
		return nil, err
	}
	if y == 0 {
		return nil, NewFault(FaultDiv, pos, "mod by zero")
	}
	r := x % y
	if r != 0 && ((r < 0) != (y < 0)) {
		r += y
	}
	return r, nil
}

func caret(a, b any, _ token.Position) (any, error) {
	x, ok := a.(string)
	if !ok {
		return nil, &TypeMismatchError{Op: "^", Value: a}
	}
	y, ok := b.(string)
	if !ok {
		return nil, &TypeMismatchError{Op: "^", Value: b}
	}
	return x + y, nil
}

func comparison(op string, test func(int) bool) binaryOp {
	return func(a, b any, pos token.Position) (any, error) {
		c, err := Compare(a, b)
		if errors.Is(err, ErrFunctionOperand) {
			return nil, NewFault(FaultEqual, pos, "%s applied to functions", op)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return test(c), nil
	}
}

func equality(op string, negate bool) binaryOp {
	return func(a, b any, pos token.Position) (any, error) {
		eq, err := Equal(a, b)
		if err != nil {
			return nil, NewFault(FaultEqual, pos, "%s applied to functions", op)
		}
		return eq != negate, nil
	}
}

// Compare orders two values of the same ordered type: int, real, string,
// char, bool or unit. Tuples and lists compare lexicographically.
// Functions have no order and give ErrFunctionOperand.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case UnitValue:
		if _, ok := b.(UnitValue); ok {
			return 0, nil
		}
	case Applicable:
		return 0, ErrFunctionOperand
	case int:
		if y, ok := b.(int); ok {
			return cmp3(x < y, x > y), nil
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp3(x < y, x > y), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return cmp3(x < y, x > y), nil
		}
	case rune:
		if y, ok := b.(rune); ok {
			return cmp3(x < y, x > y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmp3(!x && y, x && !y), nil
		}
	case []any:
		if y, ok := b.([]any); ok {
			for i := 0; i < len(x) && i < len(y); i++ {
				c, err := Compare(x[i], y[i])
				if err != nil || c != 0 {
					return c, err
				}
			}
			return cmp3(len(x) < len(y), len(x) > len(y)), nil
		}
	}
	if _, ok := b.(Applicable); ok {
		return 0, ErrFunctionOperand
	}
	return 0, &TypeMismatchError{Op: "compare", Value: b}
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

// Equal reports structural equality. Comparing a function gives
// ErrFunctionOperand.
func Equal(a, b any) (bool, error) {
	_, fa := a.(Applicable)
	_, fb := b.(Applicable)
	if fa || fb {
		return false, ErrFunctionOperand
	}
	switch x := a.(type) {
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false, nil
		}
		for i := range x {
			eq, err := Equal(x[i], y[i])
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case int, float64, string, rune, bool, UnitValue:
		return a == b, nil
	}
	return false, nil
}
