package compile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/types"
	"github.com/leapstack-labs/leapml/pkg/unify"
)

// TypeMap is the solved result of type resolution. It converts the term of
// any node to a static type.
type TypeMap struct {
	ts    *types.TypeSystem
	sub   *unify.Substitution
	terms map[ast.Node]unify.Term
}

// Term returns the unresolved term of node.
func (m *TypeMap) Term(node ast.Node) (unify.Term, bool) {
	t, ok := m.terms[node]
	return t, ok
}

// TypeOf returns the type of node. Variables left unresolved become type
// variables numbered 'a, 'b, ... in order of appearance.
func (m *TypeMap) TypeOf(node ast.Node) (types.Type, error) {
	t, ok := m.terms[node]
	if !ok {
		return nil, internalErrorf(node, "node has no type")
	}
	typ, err := m.TermType(t)
	if err != nil {
		var te *TypeError
		if errors.As(err, &te) {
			if !te.Pos.IsValid() {
				te.Pos = node.Pos()
			}
			return nil, te
		}
		return nil, internalErrorf(node, "%v", err)
	}
	return typ, nil
}

// TermType converts a term to a type under the solved substitution.
func (m *TypeMap) TermType(t unify.Term) (types.Type, error) {
	return m.convert(t, make(map[*unify.Variable]*types.Var), make(map[*unify.Variable]bool))
}

// convert resolves t. active holds the variables being expanded, so that a
// cyclic substitution, which the unifier admits for lack of an occurs check,
// is reported instead of looping. A nil active map disables substitution.
func (m *TypeMap) convert(t unify.Term, vars map[*unify.Variable]*types.Var, active map[*unify.Variable]bool) (types.Type, error) {
	switch t := t.(type) {
	case *unify.Variable:
		if active != nil {
			if bound, ok := m.sub.Lookup(t); ok && bound != unify.Term(t) {
				if active[t] {
					return nil, &TypeError{Message: msgCannotTypeCheck, Reason: "circular type involving " + t.Name()}
				}
				active[t] = true
				defer delete(active, t)
				return m.convert(bound, vars, active)
			}
		}
		v, ok := vars[t]
		if !ok {
			v = m.ts.Var(len(vars))
			vars[t] = v
		}
		return v, nil

	case *unify.Atom:
		if p, ok := types.LookupPrimitive(t.Name()); ok {
			return p, nil
		}
		return nil, fmt.Errorf("unknown type %q", t.Name())

	case *unify.Sequence:
		args := t.Args()
		argTypes := make([]types.Type, len(args))
		for i, a := range args {
			at, err := m.convert(a, vars, active)
			if err != nil {
				return nil, err
			}
			argTypes[i] = at
		}
		functor := t.Functor()
		switch {
		case functor == fnFunctor && len(argTypes) == 2:
			return m.ts.Fn(argTypes[0], argTypes[1]), nil
		case functor == tupleFunctor:
			return m.ts.Tuple(argTypes...), nil
		case functor == listFunctor && len(argTypes) == 1:
			return m.ts.List(argTypes[0]), nil
		case strings.HasPrefix(functor, recordFunctor):
			labels := strings.Split(strings.TrimPrefix(functor, recordFunctor), ",")
			return m.ts.Record(labels, argTypes)
		}
		if arity, ok := m.ts.DataTypeArity(functor); ok && arity == len(argTypes) {
			return m.ts.Data(functor, argTypes...)
		}
		return nil, fmt.Errorf("cannot convert term %s to a type", t)
	}
	return nil, fmt.Errorf("cannot convert term %v to a type", t)
}
