package eval

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/token"
	"github.com/leapstack-labs/leapml/pkg/types"
)

// Builtin is a function available in every environment.
type Builtin struct {
	Name   string
	Param  *types.Primitive
	Result *types.Primitive
	Fn     Func
}

var builtins = map[string]Builtin{
	"not": {Name: "not", Param: types.Bool, Result: types.Bool, Fn: func(arg any) (any, error) {
		b, ok := arg.(bool)
		if !ok {
			return nil, &TypeMismatchError{Op: "not", Value: arg}
		}
		return !b, nil
	}},
	"abs": {Name: "abs", Param: types.Int, Result: types.Int, Fn: func(arg any) (any, error) {
		i, ok := arg.(int)
		if !ok {
			return nil, &TypeMismatchError{Op: "abs", Value: arg}
		}
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}},
	"size": {Name: "size", Param: types.String, Result: types.Int, Fn: func(arg any) (any, error) {
		s, ok := arg.(string)
		if !ok {
			return nil, &TypeMismatchError{Op: "size", Value: arg}
		}
		return utf8.RuneCountInString(s), nil
	}},
	"real": {Name: "real", Param: types.Int, Result: types.Real, Fn: func(arg any) (any, error) {
		i, ok := arg.(int)
		if !ok {
			return nil, &TypeMismatchError{Op: "real", Value: arg}
		}
		return float64(i), nil
	}},
	"floor": {Name: "floor", Param: types.Real, Result: types.Int, Fn: func(arg any) (any, error) {
		f, ok := arg.(float64)
		if !ok {
			return nil, &TypeMismatchError{Op: "floor", Value: arg}
		}
		f = math.Floor(f)
		if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, NewFault(FaultOverflow, token.Zero, "floor %s", ast.FormatReal(f))
		}
		return int(f), nil
	}},
	"ord": {Name: "ord", Param: types.Char, Result: types.Int, Fn: func(arg any) (any, error) {
		r, ok := arg.(rune)
		if !ok {
			return nil, &TypeMismatchError{Op: "ord", Value: arg}
		}
		return int(r), nil
	}},
	"chr": {Name: "chr", Param: types.Int, Result: types.Char, Fn: func(arg any) (any, error) {
		i, ok := arg.(int)
		if !ok {
			return nil, &TypeMismatchError{Op: "chr", Value: arg}
		}
		if i < 0 || i > 255 {
			return nil, NewFault(FaultChr, token.Zero, "%d out of range", i)
		}
		return rune(i), nil
	}},
	"str": {Name: "str", Param: types.Char, Result: types.String, Fn: func(arg any) (any, error) {
		r, ok := arg.(rune)
		if !ok {
			return nil, &TypeMismatchError{Op: "str", Value: arg}
		}
		return string(r), nil
	}},
}

// Builtins returns the built-in functions ordered by name.
func Builtins() []Builtin {
	out := make([]Builtin, 0, len(builtins))
	for _, b := range builtins {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupBuiltin returns the built-in function called name.
func LookupBuiltin(name string) (Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}
