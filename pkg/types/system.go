package types

import (
	"fmt"
	"sync"
)

// Constructor is a datatype constructor such as SOME or NONE.
type Constructor struct {
	Name     string
	DataType string // name of the datatype, e.g. "option"
	HasArg   bool   // whether the constructor takes a payload
}

// builtinConstructors are the constructors of the built-in option datatype.
var builtinConstructors = []Constructor{
	{Name: "NONE", DataType: "option"},
	{Name: "SOME", DataType: "option", HasArg: true},
}

// TypeSystem interns types by description and holds the datatype
// constructors in scope. It is safe for concurrent use.
type TypeSystem struct {
	mu           sync.Mutex
	types        map[string]Type
	constructors map[string]Constructor
	datatypes    map[string]int // datatype name -> number of type parameters
}

// NewTypeSystem returns a TypeSystem that knows the primitive types and the
// option datatype.
func NewTypeSystem() *TypeSystem {
	ts := &TypeSystem{
		types:        make(map[string]Type),
		constructors: make(map[string]Constructor),
		datatypes:    map[string]int{"option": 1},
	}
	for _, p := range primitives {
		ts.types[p.name] = p
	}
	for _, c := range builtinConstructors {
		ts.constructors[c.Name] = c
	}
	return ts
}

func (ts *TypeSystem) intern(desc string, create func() Type) Type {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.types[desc]; ok {
		return t
	}
	t := create()
	ts.types[desc] = t
	return t
}

// Lookup returns the interned type with the given description.
func (ts *TypeSystem) Lookup(desc string) (Type, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t, ok := ts.types[desc]
	return t, ok
}

// Fn returns the type param -> result.
func (ts *TypeSystem) Fn(param, result Type) *Fn {
	desc := fnDescription(param, result)
	return ts.intern(desc, func() Type {
		return &Fn{Param: param, Result: result, desc: desc}
	}).(*Fn)
}

// Tuple returns the tuple type of args. It needs at least two components.
func (ts *TypeSystem) Tuple(args ...Type) *Tuple {
	desc := tupleDescription(args)
	return ts.intern(desc, func() Type {
		return &Tuple{Args: append([]Type(nil), args...), desc: desc}
	}).(*Tuple)
}

// List returns the type "elem list".
func (ts *TypeSystem) List(elem Type) *List {
	desc := listDescription(elem)
	return ts.intern(desc, func() Type {
		return &List{Elem: elem, desc: desc}
	}).(*List)
}

// Record returns the record type with the given sorted labels.
func (ts *TypeSystem) Record(labels []string, args []Type) (*Record, error) {
	if len(labels) != len(args) {
		return nil, fmt.Errorf("record type has %d labels but %d field types", len(labels), len(args))
	}
	for i := 1; i < len(labels); i++ {
		if labels[i-1] >= labels[i] {
			return nil, fmt.Errorf("record labels must be sorted and distinct: %q, %q", labels[i-1], labels[i])
		}
	}
	desc := recordDescription(labels, args)
	return ts.intern(desc, func() Type {
		return &Record{
			Labels: append([]string(nil), labels...),
			Args:   append([]Type(nil), args...),
			desc:   desc,
		}
	}).(*Record), nil
}

// Data returns an instance of the datatype called name.
func (ts *TypeSystem) Data(name string, args ...Type) (*Data, error) {
	ts.mu.Lock()
	arity, ok := ts.datatypes[name]
	ts.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unknown datatype %q", name)
	}
	if arity != len(args) {
		return nil, fmt.Errorf("datatype %s expects %d type arguments, got %d", name, arity, len(args))
	}
	desc := dataDescription(name, args)
	return ts.intern(desc, func() Type {
		return &Data{Name: name, Args: append([]Type(nil), args...), desc: desc}
	}).(*Data), nil
}

// Var returns the type variable with the given ordinal.
func (ts *TypeSystem) Var(ordinal int) *Var {
	desc := VarName(ordinal)
	return ts.intern(desc, func() Type {
		return &Var{Ordinal: ordinal, desc: desc}
	}).(*Var)
}

// Constructor returns the constructor called name.
func (ts *TypeSystem) Constructor(name string) (Constructor, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	c, ok := ts.constructors[name]
	return c, ok
}

// DataTypeArity returns the number of type parameters of a datatype.
func (ts *TypeSystem) DataTypeArity(name string) (int, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	n, ok := ts.datatypes[name]
	return n, ok
}

// HasTypeVars reports whether t mentions a type variable.
func HasTypeVars(t Type) bool {
	switch t := t.(type) {
	case *Var:
		return true
	case *Fn:
		return HasTypeVars(t.Param) || HasTypeVars(t.Result)
	case *Tuple:
		return anyHasTypeVars(t.Args)
	case *List:
		return HasTypeVars(t.Elem)
	case *Record:
		return anyHasTypeVars(t.Args)
	case *Data:
		return anyHasTypeVars(t.Args)
	}
	return false
}

func anyHasTypeVars(ts []Type) bool {
	for _, t := range ts {
		if HasTypeVars(t) {
			return true
		}
	}
	return false
}
