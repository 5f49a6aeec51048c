package eval

import (
	"fmt"
	"sort"
)

// BulkThreshold is the number of bindings at which AddAll builds a single
// map-backed link instead of a chain of single-binding links.
const BulkThreshold = 5

// EvalEnv is a persistent chain of name to value bindings used at run time.
// Extending an environment never changes it; lookup stops at the newest
// binding of a name.
type EvalEnv interface {
	// GetOpt returns the value bound to name.
	GetOpt(name string) (any, bool)
	// Visit calls fn for every binding, newest first, including bindings
	// masked by newer ones of the same name. It stops early if fn returns
	// false.
	Visit(fn func(name string, value any) bool)
}

// Get returns the value bound to name, or an error wrapping ErrUnbound.
func Get(env EvalEnv, name string) (any, error) {
	if v, ok := env.GetOpt(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnbound, name)
}

// Empty returns the environment with no bindings.
func Empty() EvalEnv { return emptyEvalEnv{} }

type emptyEvalEnv struct{}

func (emptyEvalEnv) GetOpt(string) (any, bool)    { return nil, false }
func (emptyEvalEnv) Visit(func(string, any) bool) {}

// Add returns env extended with one binding.
func Add(env EvalEnv, name string, value any) EvalEnv {
	return &SubEvalEnv{parent: env, name: name, value: value}
}

// AddAll returns env extended with all of values. Fewer than BulkThreshold
// bindings become a chain of single links, added in name order; more become
// one map-backed link.
func AddAll(env EvalEnv, values map[string]any) EvalEnv {
	if len(values) >= BulkThreshold {
		m := make(map[string]any, len(values))
		for k, v := range values {
			m[k] = v
		}
		return &MapEvalEnv{parent: env, values: m}
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		env = Add(env, name, values[name])
	}
	return env
}

// ToMap returns the visible bindings of env.
func ToMap(env EvalEnv) map[string]any {
	m := make(map[string]any)
	env.Visit(func(name string, value any) bool {
		if _, ok := m[name]; !ok {
			m[name] = value
		}
		return true
	})
	return m
}

// SubEvalEnv binds a single name on top of a parent.
type SubEvalEnv struct {
	parent EvalEnv
	name   string
	value  any
}

// GetOpt implements EvalEnv.
func (e *SubEvalEnv) GetOpt(name string) (any, bool) {
	if name == e.name {
		return e.value, true
	}
	return e.parent.GetOpt(name)
}

// Visit implements EvalEnv.
func (e *SubEvalEnv) Visit(fn func(string, any) bool) {
	if fn(e.name, e.value) {
		e.parent.Visit(fn)
	}
}

// MutableSubEvalEnv binds a single name whose value can be replaced after
// the link is created. Recursive functions use it: the closure captures the
// link, then the link is set to the closure.
//
// It is not safe for concurrent use.
type MutableSubEvalEnv struct {
	parent EvalEnv
	name   string
	value  any
}

// NewMutableSubEvalEnv returns a link binding name to nil until Set is
// called.
func NewMutableSubEvalEnv(parent EvalEnv, name string) *MutableSubEvalEnv {
	return &MutableSubEvalEnv{parent: parent, name: name}
}

// Set replaces the value in place.
func (e *MutableSubEvalEnv) Set(v any) { e.value = v }

// GetOpt implements EvalEnv.
func (e *MutableSubEvalEnv) GetOpt(name string) (any, bool) {
	if name == e.name {
		return e.value, true
	}
	return e.parent.GetOpt(name)
}

// Visit implements EvalEnv.
func (e *MutableSubEvalEnv) Visit(fn func(string, any) bool) {
	if fn(e.name, e.value) {
		e.parent.Visit(fn)
	}
}

// ArrayEvalEnv binds several names at once. Set replaces all the values
// together.
//
// It is not safe for concurrent use.
type ArrayEvalEnv struct {
	parent EvalEnv
	names  []string
	values []any
}

// NewArrayEvalEnv returns a link binding names, all nil until Set is called.
func NewArrayEvalEnv(parent EvalEnv, names []string) *ArrayEvalEnv {
	return &ArrayEvalEnv{parent: parent, names: names, values: make([]any, len(names))}
}

// Set replaces the values. len(values) must equal the number of names.
func (e *ArrayEvalEnv) Set(values []any) error {
	if len(values) != len(e.names) {
		return fmt.Errorf("array env has %d names, got %d values", len(e.names), len(values))
	}
	copy(e.values, values)
	return nil
}

// GetOpt implements EvalEnv.
func (e *ArrayEvalEnv) GetOpt(name string) (any, bool) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if e.names[i] == name {
			return e.values[i], true
		}
	}
	return e.parent.GetOpt(name)
}

// Visit implements EvalEnv.
func (e *ArrayEvalEnv) Visit(fn func(string, any) bool) {
	for i := len(e.names) - 1; i >= 0; i-- {
		if !fn(e.names[i], e.values[i]) {
			return
		}
	}
	e.parent.Visit(fn)
}

// MapEvalEnv binds many names in one link.
type MapEvalEnv struct {
	parent EvalEnv
	values map[string]any
}

// GetOpt implements EvalEnv.
func (e *MapEvalEnv) GetOpt(name string) (any, bool) {
	if v, ok := e.values[name]; ok {
		return v, true
	}
	return e.parent.GetOpt(name)
}

// Visit implements EvalEnv. Names within the link are visited in sorted
// order.
func (e *MapEvalEnv) Visit(fn func(string, any) bool) {
	names := make([]string, 0, len(e.values))
	for k := range e.values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, name := range names {
		if !fn(name, e.values[name]) {
			return
		}
	}
	e.parent.Visit(fn)
}
