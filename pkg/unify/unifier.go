package unify

import (
	"errors"
	"fmt"
	"strconv"
)

// Unifier creates terms and unifies them.
//
// A Unifier is not safe for concurrent use. Each statement compilation owns
// one and discards it afterwards.
type Unifier struct {
	varID     int
	variables map[string]*Variable
	atoms     map[string]*Atom
	sequences map[string]*Sequence
	empty     *Substitution
}

// New returns a Unifier with empty interning tables.
func New() *Unifier {
	u := &Unifier{
		variables: make(map[string]*Variable),
		atoms:     make(map[string]*Atom),
		sequences: make(map[string]*Sequence),
	}
	u.empty = &Substitution{u: u, m: map[*Variable]Term{}}
	return u
}

// Occurs reports whether this unifier checks for cycles in substitutions.
// It never does.
func (u *Unifier) Occurs() bool { return false }

// Atom returns the atom called name, creating it on first use.
func (u *Unifier) Atom(name string) *Atom {
	if a, ok := u.atoms[name]; ok {
		return a
	}
	a := &Atom{name: name}
	u.atoms[name] = a
	return a
}

// Variable returns the variable called name, creating it on first use.
// It panics if name has no upper-case letter.
func (u *Unifier) Variable(name string) *Variable {
	if v, ok := u.variables[name]; ok {
		return v
	}
	if !validVariableName(name) {
		panic(fmt.Sprintf("unify: invalid variable name %q", name))
	}
	v := &Variable{name: name}
	u.variables[name] = v
	return v
}

// FreshVariable returns a variable with a new name of the form "T<n>".
func (u *Unifier) FreshVariable() *Variable {
	for {
		name := "T" + strconv.Itoa(u.varID)
		u.varID++
		if _, ok := u.variables[name]; !ok {
			v := &Variable{name: name}
			u.variables[name] = v
			return v
		}
	}
}

// Apply returns the sequence [functor, args...], or the existing one with
// the same terms.
func (u *Unifier) Apply(functor string, args ...Term) *Sequence {
	terms := make([]Term, 0, len(args)+1)
	terms = append(terms, u.Atom(functor))
	terms = append(terms, args...)
	return u.sequence(terms)
}

func (u *Unifier) sequence(terms []Term) *Sequence {
	k := sequenceKey(terms)
	if s, ok := u.sequences[k]; ok {
		return s
	}
	s := &Sequence{terms: terms, k: k}
	u.sequences[k] = s
	return s
}

// Substitution builds a substitution from alternating term / variable
// arguments: Substitution(a, X, b, Y) is [a/X, b/Y].
func (u *Unifier) Substitution(termVars ...Term) (*Substitution, error) {
	if len(termVars)%2 != 0 {
		return nil, errors.New("unify: substitution needs term/variable pairs")
	}
	m := make(map[*Variable]Term, len(termVars)/2)
	for i := 0; i < len(termVars); i += 2 {
		v, ok := termVars[i+1].(*Variable)
		if !ok {
			return nil, fmt.Errorf("unify: %s is not a variable", termVars[i+1])
		}
		m[v] = termVars[i]
	}
	return &Substitution{u: u, m: m}, nil
}

// Empty returns the substitution with no bindings.
func (u *Unifier) Empty() *Substitution { return u.empty }

// Unify returns the most general substitution that makes lhs and rhs equal,
// or false if there is none.
func (u *Unifier) Unify(lhs, rhs Term) (*Substitution, bool) {
	m, ok := u.unify(lhs, rhs)
	if !ok {
		return nil, false
	}
	return &Substitution{u: u, m: m}, true
}

func (u *Unifier) unify(lhs, rhs Term) (map[*Variable]Term, bool) {
	if v, ok := lhs.(*Variable); ok {
		return map[*Variable]Term{v: rhs}, true
	}
	if v, ok := rhs.(*Variable); ok {
		return map[*Variable]Term{v: lhs}, true
	}
	switch l := lhs.(type) {
	case *Atom:
		if r, ok := rhs.(*Atom); ok && l == r {
			return map[*Variable]Term{}, true
		}
	case *Sequence:
		if r, ok := rhs.(*Sequence); ok {
			return u.sequenceUnify(l.terms, r.terms)
		}
	}
	return nil, false
}

// sequenceUnify unifies the heads, applies the result to both tails, then
// unifies the tails. The two results are merged without composing them.
func (u *Unifier) sequenceUnify(lhs, rhs []Term) (map[*Variable]Term, bool) {
	if len(lhs) != len(rhs) {
		return nil, false
	}
	if len(lhs) == 0 {
		return map[*Variable]Term{}, true
	}
	head, ok := u.unify(lhs[0], rhs[0])
	if !ok {
		return nil, false
	}
	s := &Substitution{u: u, m: head}
	tail, ok := u.sequenceUnify(applyAll(s, lhs[1:]), applyAll(s, rhs[1:]))
	if !ok {
		return nil, false
	}
	for v, t := range tail {
		head[v] = t
	}
	return head, true
}

func applyAll(s *Substitution, terms []Term) []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = t.apply(s)
	}
	return out
}

// Pair is a constraint that two terms be equal.
type Pair struct {
	Left  Term
	Right Term
}

func (p Pair) String() string { return p.Left.String() + " = " + p.Right.String() }

// Conflict describes the first constraint UnifyAll could not satisfy.
type Conflict struct {
	Index int  // index of the failing pair
	Pair  Pair // the pair after earlier solutions were applied
}

func (c *Conflict) Error() string {
	return fmt.Sprintf("cannot unify %s with %s (constraint %d)", c.Pair.Left, c.Pair.Right, c.Index)
}

// UnifyAll solves a list of constraints. Pairs are folded left to right:
// the solution so far is applied to each pair before it is unified, and the
// pair's own solution is composed into the result.
func (u *Unifier) UnifyAll(pairs []Pair) (*Substitution, *Conflict) {
	acc := u.empty
	for i, p := range pairs {
		l := acc.normalize(p.Left)
		r := acc.normalize(p.Right)
		if l == r {
			continue
		}
		m, ok := u.unify(l, r)
		if !ok {
			return nil, &Conflict{Index: i, Pair: Pair{Left: l, Right: r}}
		}
		acc = compose(&Substitution{u: u, m: m}, acc)
	}
	return acc, nil
}
