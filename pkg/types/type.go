// Package types defines static types and the TypeSystem that interns them.
package types

import (
	"strings"
)

// =============================================================================
// Kind
// =============================================================================

// Kind classifies a Type.
type Kind int

// Kinds of type.
const (
	// KindPrimitive is int, real, string, char, bool or unit.
	KindPrimitive Kind = iota
	// KindFn is a function type.
	KindFn
	// KindTuple is a tuple type of two or more components.
	KindTuple
	// KindList is a list type.
	KindList
	// KindRecord is a record type.
	KindRecord
	// KindData is an algebraic datatype such as option.
	KindData
	// KindVar is a type variable.
	KindVar
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindFn:
		return "fn"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindRecord:
		return "record"
	case KindData:
		return "data"
	case KindVar:
		return "var"
	default:
		return "unknown"
	}
}

// =============================================================================
// Types
// =============================================================================

// Type is a static type. Types created by the same TypeSystem with the same
// description are the same pointer.
type Type interface {
	Kind() Kind
	// Description is the type in ML syntax, e.g. "int -> int".
	Description() string
	String() string
}

// Primitive is a built-in scalar type.
type Primitive struct {
	name string
}

// Primitive types.
var (
	Int    = &Primitive{name: "int"}
	Real   = &Primitive{name: "real"}
	String = &Primitive{name: "string"}
	Char   = &Primitive{name: "char"}
	Bool   = &Primitive{name: "bool"}
	Unit   = &Primitive{name: "unit"}
)

var primitives = map[string]*Primitive{
	Int.name: Int, Real.name: Real, String.name: String,
	Char.name: Char, Bool.name: Bool, Unit.name: Unit,
}

// LookupPrimitive returns the primitive type called name.
func LookupPrimitive(name string) (*Primitive, bool) {
	p, ok := primitives[name]
	return p, ok
}

func (*Primitive) Kind() Kind            { return KindPrimitive }
func (p *Primitive) Description() string { return p.name }
func (p *Primitive) String() string      { return p.name }

// Name returns the primitive's name.
func (p *Primitive) Name() string { return p.name }

// Fn is the type of functions from Param to Result.
type Fn struct {
	Param  Type
	Result Type
	desc   string
}

func (*Fn) Kind() Kind            { return KindFn }
func (f *Fn) Description() string { return f.desc }
func (f *Fn) String() string      { return f.desc }

// Tuple is the type of tuples.
type Tuple struct {
	Args []Type
	desc string
}

func (*Tuple) Kind() Kind            { return KindTuple }
func (t *Tuple) Description() string { return t.desc }
func (t *Tuple) String() string      { return t.desc }

// List is the type of lists of Elem.
type List struct {
	Elem Type
	desc string
}

func (*List) Kind() Kind            { return KindList }
func (l *List) Description() string { return l.desc }
func (l *List) String() string      { return l.desc }

// Record is the type of records. Labels are sorted and parallel to Args.
type Record struct {
	Labels []string
	Args   []Type
	desc   string
}

func (*Record) Kind() Kind            { return KindRecord }
func (r *Record) Description() string { return r.desc }
func (r *Record) String() string      { return r.desc }

// Field returns the type of the field called label.
func (r *Record) Field(label string) (Type, bool) {
	for i, l := range r.Labels {
		if l == label {
			return r.Args[i], true
		}
	}
	return nil, false
}

// Data is an instance of a datatype, e.g. "int option".
type Data struct {
	Name string
	Args []Type
	desc string
}

func (*Data) Kind() Kind            { return KindData }
func (d *Data) Description() string { return d.desc }
func (d *Data) String() string      { return d.desc }

// Var is a type variable. Ordinal 0 prints as 'a, 1 as 'b, and so on.
type Var struct {
	Ordinal int
	desc    string
}

func (*Var) Kind() Kind            { return KindVar }
func (v *Var) Description() string { return v.desc }
func (v *Var) String() string      { return v.desc }

// ContainsFn reports whether t is a function type or is built from one.
func ContainsFn(t Type) bool {
	switch t := t.(type) {
	case *Fn:
		return true
	case *List:
		return ContainsFn(t.Elem)
	case *Tuple:
		return anyContainsFn(t.Args)
	case *Record:
		return anyContainsFn(t.Args)
	case *Data:
		return anyContainsFn(t.Args)
	}
	return false
}

func anyContainsFn(ts []Type) bool {
	for _, t := range ts {
		if ContainsFn(t) {
			return true
		}
	}
	return false
}

// VarName returns the name of the type variable with the given ordinal:
// 'a to 'z, then 'ba, 'bb, ...
func VarName(ordinal int) string {
	var letters []byte
	for {
		letters = append(letters, byte('a'+ordinal%26))
		ordinal /= 26
		if ordinal == 0 {
			break
		}
	}
	for i, j := 0, len(letters)-1; i < j; i, j = i+1, j-1 {
		letters[i], letters[j] = letters[j], letters[i]
	}
	return "'" + string(letters)
}

// =============================================================================
// Descriptions
// =============================================================================

// needsParens reports whether t must be parenthesized as an argument of a
// type constructor or as a tuple component.
func needsParens(t Type) bool {
	switch t.Kind() {
	case KindFn, KindTuple:
		return true
	}
	return false
}

func argDescription(t Type) string {
	if needsParens(t) {
		return "(" + t.Description() + ")"
	}
	return t.Description()
}

func fnDescription(param, result Type) string {
	p := param.Description()
	if param.Kind() == KindFn {
		p = "(" + p + ")"
	}
	return p + " -> " + result.Description()
}

func tupleDescription(args []Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = argDescription(a)
	}
	return strings.Join(parts, " * ")
}

func listDescription(elem Type) string {
	return argDescription(elem) + " list"
}

func recordDescription(labels []string, args []Type) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, l := range labels {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(l)
		b.WriteByte(':')
		b.WriteString(args[i].Description())
	}
	b.WriteByte('}')
	return b.String()
}

func dataDescription(name string, args []Type) string {
	switch len(args) {
	case 0:
		return name
	case 1:
		return argDescription(args[0]) + " " + name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Description()
	}
	return "(" + strings.Join(parts, ", ") + ") " + name
}
