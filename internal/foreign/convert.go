package foreign

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/leapstack-labs/leapml/pkg/eval"
	"github.com/leapstack-labs/leapml/pkg/types"
)

// converter turns Starlark values into runtime values with static types.
// Each empty list gets its own type variable.
type converter struct {
	ts      *types.TypeSystem
	nextVar int
}

// ToValue converts a Starlark value:
//
//	None                 -> ()              : unit
//	int, float           -> int, real
//	string, bool         -> string, bool
//	tuple                -> tuple           : t1 * t2 ...
//	list                 -> list            : t list (elements must agree)
//	dict, struct(...)    -> record          : {k1:t1, ...} (string keys)
func ToValue(ts *types.TypeSystem, v starlark.Value) (any, types.Type, error) {
	c := &converter{ts: ts}
	return c.convert(v)
}

func (c *converter) convert(v starlark.Value) (any, types.Type, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return eval.Unit, types.Unit, nil

	case starlark.Int:
		i64, ok := val.Int64()
		if !ok || i64 > math.MaxInt || i64 < math.MinInt {
			return nil, nil, fmt.Errorf("int %s out of range", val)
		}
		return int(i64), types.Int, nil

	case starlark.Float:
		return float64(val), types.Real, nil

	case starlark.String:
		return string(val), types.String, nil

	case starlark.Bool:
		return bool(val), types.Bool, nil

	case starlark.Tuple:
		switch len(val) {
		case 0:
			return eval.Unit, types.Unit, nil
		case 1:
			return c.convert(val[0])
		}
		values := make([]any, len(val))
		elemTypes := make([]types.Type, len(val))
		for i, e := range val {
			gv, t, err := c.convert(e)
			if err != nil {
				return nil, nil, fmt.Errorf("tuple index %d: %w", i, err)
			}
			values[i], elemTypes[i] = gv, t
		}
		return values, c.ts.Tuple(elemTypes...), nil

	case *starlark.List:
		values := make([]any, val.Len())
		var elem types.Type
		for i := 0; i < val.Len(); i++ {
			gv, t, err := c.convert(val.Index(i))
			if err != nil {
				return nil, nil, fmt.Errorf("list index %d: %w", i, err)
			}
			values[i] = gv
			if elem == nil {
				elem = t
				continue
			}
			merged, ok := c.merge(elem, t)
			if !ok {
				return nil, nil, fmt.Errorf("list index %d: element of type %s in a list of %s", i, t, elem)
			}
			elem = merged
		}
		if elem == nil {
			elem = c.freshVar()
		}
		return values, c.ts.List(elem), nil

	case *starlark.Dict:
		fields := make(map[string]starlark.Value, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, nil, fmt.Errorf("dict key must be string, got %s", item[0].Type())
			}
			fields[string(key)] = item[1]
		}
		return c.record(fields)

	case *starlarkstruct.Struct:
		fields := make(map[string]starlark.Value)
		for _, name := range val.AttrNames() {
			attr, err := val.Attr(name)
			if err != nil {
				return nil, nil, fmt.Errorf("struct field %q: %w", name, err)
			}
			fields[name] = attr
		}
		return c.record(fields)
	}
	return nil, nil, fmt.Errorf("unsupported value of type %s", v.Type())
}

func (c *converter) record(fields map[string]starlark.Value) (any, types.Type, error) {
	if len(fields) == 0 {
		return eval.Unit, types.Unit, nil
	}
	labels := make([]string, 0, len(fields))
	for label := range fields {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	values := make([]any, len(labels))
	fieldTypes := make([]types.Type, len(labels))
	for i, label := range labels {
		gv, t, err := c.convert(fields[label])
		if err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", label, err)
		}
		values[i], fieldTypes[i] = gv, t
	}
	t, err := c.ts.Record(labels, fieldTypes)
	if err != nil {
		return nil, nil, err
	}
	return values, t, nil
}

func (c *converter) freshVar() *types.Var {
	v := c.ts.Var(c.nextVar)
	c.nextVar++
	return v
}

// merge returns the common type of two list elements. A type variable,
// which only an empty list introduces, gives way to the other type, at any
// depth inside lists, tuples and records.
func (c *converter) merge(a, b types.Type) (types.Type, bool) {
	if a == b {
		return a, true
	}
	if _, ok := a.(*types.Var); ok {
		return b, true
	}
	if _, ok := b.(*types.Var); ok {
		return a, true
	}
	switch a := a.(type) {
	case *types.List:
		lb, ok := b.(*types.List)
		if !ok {
			return nil, false
		}
		elem, ok := c.merge(a.Elem, lb.Elem)
		if !ok {
			return nil, false
		}
		return c.ts.List(elem), true

	case *types.Tuple:
		tb, ok := b.(*types.Tuple)
		if !ok {
			return nil, false
		}
		args, ok := c.mergeAll(a.Args, tb.Args)
		if !ok {
			return nil, false
		}
		return c.ts.Tuple(args...), true

	case *types.Record:
		rb, ok := b.(*types.Record)
		if !ok || !slices.Equal(a.Labels, rb.Labels) {
			return nil, false
		}
		args, ok := c.mergeAll(a.Args, rb.Args)
		if !ok {
			return nil, false
		}
		t, err := c.ts.Record(a.Labels, args)
		if err != nil {
			return nil, false
		}
		return t, true
	}
	return nil, false
}

func (c *converter) mergeAll(as, bs []types.Type) ([]types.Type, bool) {
	if len(as) != len(bs) {
		return nil, false
	}
	merged := make([]types.Type, len(as))
	for i := range as {
		t, ok := c.merge(as[i], bs[i])
		if !ok {
			return nil, false
		}
		merged[i] = t
	}
	return merged, true
}
