// Package compile turns AST statements into executable code.
//
// It holds the compile-time Environment, the TypeResolver that infers types
// by unification, and the Compiler that produces eval.Code.
package compile

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leapml/pkg/eval"
	"github.com/leapstack-labs/leapml/pkg/types"
)

// Binding is a name with its static type and runtime value.
type Binding struct {
	Name  string
	Type  types.Type
	Value any
}

func (b Binding) String() string {
	return fmt.Sprintf("%s = %s : %s", b.Name, eval.Print(b.Value, b.Type), b.Type)
}

// Environment is a persistent chain of bindings. Deriving an environment
// never changes the one it was derived from. Each link holds either a
// single binding or a table of many.
type Environment struct {
	parent  *Environment
	binding *Binding
	table   map[string]Binding
}

var emptyEnvironment = &Environment{}

// EmptyEnvironment returns the environment with no bindings.
func EmptyEnvironment() *Environment { return emptyEnvironment }

// Bind returns an environment that extends e with one binding.
func (e *Environment) Bind(name string, t types.Type, value any) *Environment {
	return &Environment{parent: e, binding: &Binding{Name: name, Type: t, Value: value}}
}

// BindAll returns an environment that extends e with bindings. Fewer than
// eval.BulkThreshold bindings are added one link at a time, in order; more
// are added as a single table link. When a name repeats, the later binding
// wins.
func (e *Environment) BindAll(bindings []Binding) *Environment {
	if len(bindings) < eval.BulkThreshold {
		env := e
		for _, b := range bindings {
			env = env.Bind(b.Name, b.Type, b.Value)
		}
		return env
	}
	table := make(map[string]Binding, len(bindings))
	for _, b := range bindings {
		table[b.Name] = b
	}
	return &Environment{parent: e, table: table}
}

// GetOpt returns the newest binding of name.
func (e *Environment) GetOpt(name string) (Binding, bool) {
	for env := e; env != nil; env = env.parent {
		if env.binding != nil && env.binding.Name == name {
			return *env.binding, true
		}
		if b, ok := env.table[name]; ok {
			return b, true
		}
	}
	return Binding{}, false
}

// Get is GetOpt for names that prior type checking guarantees are bound.
func (e *Environment) Get(name string) (Binding, error) {
	if b, ok := e.GetOpt(name); ok {
		return b, nil
	}
	return Binding{}, fmt.Errorf("%w: %s", eval.ErrUnbound, name)
}

// Visit calls fn for every binding, newest first, including bindings
// masked by newer ones of the same name. Bindings within a table link are
// visited in name order. It stops early if fn returns false.
func (e *Environment) Visit(fn func(Binding) bool) {
	for env := e; env != nil; env = env.parent {
		if env.binding != nil {
			if !fn(*env.binding) {
				return
			}
		}
		if env.table != nil {
			names := make([]string, 0, len(env.table))
			for name := range env.table {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				if !fn(env.table[name]) {
					return
				}
			}
		}
	}
}

// Bindings returns the visible bindings ordered by name.
func (e *Environment) Bindings() []Binding {
	seen := make(map[string]bool)
	var out []Binding
	e.Visit(func(b Binding) bool {
		if !seen[b.Name] {
			seen[b.Name] = true
			out = append(out, b)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ForEachType calls fn with the name and type of every visible binding.
func (e *Environment) ForEachType(fn func(name string, t types.Type)) {
	for _, b := range e.Bindings() {
		fn(b.Name, b.Type)
	}
}

// ForEachValue calls fn with the name and value of every visible binding.
func (e *Environment) ForEachValue(fn func(name string, value any)) {
	for _, b := range e.Bindings() {
		fn(b.Name, b.Value)
	}
}

// ValueMap returns the visible values by name.
func (e *Environment) ValueMap() map[string]any {
	m := make(map[string]any)
	e.ForEachValue(func(name string, value any) { m[name] = value })
	return m
}

// EvalEnv returns a runtime environment holding e's visible values.
func (e *Environment) EvalEnv() eval.EvalEnv {
	return eval.AddAll(eval.Empty(), e.ValueMap())
}

// BasicEnvironment returns an environment binding true, false and the
// built-in functions.
func BasicEnvironment(ts *types.TypeSystem) *Environment {
	bindings := []Binding{
		{Name: "true", Type: types.Bool, Value: true},
		{Name: "false", Type: types.Bool, Value: false},
	}
	for _, b := range eval.Builtins() {
		bindings = append(bindings, Binding{Name: b.Name, Type: ts.Fn(b.Param, b.Result), Value: b.Fn})
	}
	return EmptyEnvironment().BindAll(bindings)
}

// Since returns the visible bindings of e that were added after base,
// ordered by name. If base is not an ancestor of e, every visible binding
// is returned.
func (e *Environment) Since(base *Environment) []Binding {
	var links []*Environment
	for env := e; env != nil && env != base; env = env.parent {
		links = append(links, env)
	}
	var added []Binding
	for _, b := range e.Bindings() {
		for _, env := range links {
			if env.binding != nil && env.binding.Name == b.Name {
				added = append(added, b)
				break
			}
			if _, ok := env.table[b.Name]; ok {
				added = append(added, b)
				break
			}
		}
	}
	return added
}
