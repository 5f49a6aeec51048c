package unify

import (
	"sort"
	"strings"
)

// Substitution maps variables to terms. It is immutable.
type Substitution struct {
	u *Unifier
	m map[*Variable]Term
}

// Len returns the number of bound variables.
func (s *Substitution) Len() int { return len(s.m) }

// Lookup returns the term bound to v.
func (s *Substitution) Lookup(v *Variable) (Term, bool) {
	t, ok := s.m[v]
	return t, ok
}

// Variables returns the bound variables ordered by name.
func (s *Substitution) Variables() []*Variable {
	vars := make([]*Variable, 0, len(s.m))
	for v := range s.m {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].name < vars[j].name })
	return vars
}

// Apply substitutes every bound variable in t once.
func (s *Substitution) Apply(t Term) Term { return t.apply(s) }

// Resolve applies the substitution repeatedly until t stops changing.
//
// Without an occurs check a substitution can be cyclic (Y bound to f(Y)),
// and Resolve then never returns. Callers that may see cyclic input should
// use ResolveBounded.
func (s *Substitution) Resolve(t Term) Term {
	for {
		next := t.apply(s)
		if next == t {
			return t
		}
		t = next
	}
}

// ResolveBounded is Resolve with an iteration limit of one more than the
// number of bindings, which suffices for any acyclic substitution. It
// reports false if t had not stopped changing by then.
func (s *Substitution) ResolveBounded(t Term) (Term, bool) {
	for i := 0; i <= len(s.m); i++ {
		next := t.apply(s)
		if next == t {
			return t, true
		}
		t = next
	}
	return t, false
}

// normalize resolves t as far as the iteration bound allows.
func (s *Substitution) normalize(t Term) Term {
	t, _ = s.ResolveBounded(t)
	return t
}

// compose returns s1 applied to the values of s2, merged over s1.
func compose(s1, s2 *Substitution) *Substitution {
	m := make(map[*Variable]Term, len(s1.m)+len(s2.m))
	for v, t := range s1.m {
		m[v] = s1.normalize(t)
	}
	for v, t := range s2.m {
		m[v] = s1.normalize(t)
	}
	return &Substitution{u: s1.u, m: m}
}

// Equal reports whether s and o bind the same variables to the same terms.
func (s *Substitution) Equal(o *Substitution) bool {
	if len(s.m) != len(o.m) {
		return false
	}
	for v, t := range s.m {
		ot, ok := o.m[v]
		if !ok || ot.key() != t.key() {
			return false
		}
	}
	return true
}

// String formats the substitution as "[term/Var, ...]" ordered by variable
// name.
func (s *Substitution) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s.Variables() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.m[v].String())
		b.WriteByte('/')
		b.WriteString(v.name)
	}
	b.WriteByte(']')
	return b.String()
}
