package compile

import (
	"strings"

	"github.com/leapstack-labs/leapml/pkg/types"
	"github.com/leapstack-labs/leapml/pkg/unify"
)

// TypeEnv maps names to terms during type resolution. A nil *TypeEnv is
// empty.
type TypeEnv struct {
	parent *TypeEnv
	name   string
	term   unify.Term
}

// Bind returns e extended with name bound to term.
func (e *TypeEnv) Bind(name string, term unify.Term) *TypeEnv {
	return &TypeEnv{parent: e, name: name, term: term}
}

// Lookup returns the newest term bound to name.
func (e *TypeEnv) Lookup(name string) (unify.Term, bool) {
	for env := e; env != nil; env = env.parent {
		if env.name == name {
			return env.term, true
		}
	}
	return nil, false
}

// Functors of the terms that represent types.
const (
	fnFunctor     = "fn"
	tupleFunctor  = "tuple"
	listFunctor   = "list"
	recordFunctor = "record:"
)

// recordFunctorFor returns the functor of a record type with the given
// sorted labels.
func recordFunctorFor(labels []string) string {
	return recordFunctor + strings.Join(labels, ",")
}

// typeToTerm converts a static type to a term. Each distinct type variable
// becomes a fresh unifier variable, shared through vars.
func typeToTerm(u *unify.Unifier, t types.Type, vars map[*types.Var]*unify.Variable) unify.Term {
	switch t := t.(type) {
	case *types.Primitive:
		return u.Atom(t.Name())
	case *types.Fn:
		return u.Apply(fnFunctor, typeToTerm(u, t.Param, vars), typeToTerm(u, t.Result, vars))
	case *types.Tuple:
		return u.Apply(tupleFunctor, typesToTerms(u, t.Args, vars)...)
	case *types.List:
		return u.Apply(listFunctor, typeToTerm(u, t.Elem, vars))
	case *types.Record:
		return u.Apply(recordFunctorFor(t.Labels), typesToTerms(u, t.Args, vars)...)
	case *types.Data:
		return u.Apply(t.Name, typesToTerms(u, t.Args, vars)...)
	case *types.Var:
		v, ok := vars[t]
		if !ok {
			v = u.FreshVariable()
			vars[t] = v
		}
		return v
	}
	return u.FreshVariable()
}

func typesToTerms(u *unify.Unifier, ts []types.Type, vars map[*types.Var]*unify.Variable) []unify.Term {
	terms := make([]unify.Term, len(ts))
	for i, t := range ts {
		terms[i] = typeToTerm(u, t, vars)
	}
	return terms
}

// TypeEnvOf converts the visible bindings of env into a TypeEnv. Type
// variables are renamed apart per binding.
func TypeEnvOf(u *unify.Unifier, env *Environment) *TypeEnv {
	var tenv *TypeEnv
	env.ForEachType(func(name string, t types.Type) {
		tenv = tenv.Bind(name, typeToTerm(u, t, make(map[*types.Var]*unify.Variable)))
	})
	return tenv
}
