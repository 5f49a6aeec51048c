// Package unify implements Robinson's unification algorithm over first-order
// terms.
//
// Terms are atoms, variables and sequences. A Unifier owns the interning
// tables for the terms it creates, so structurally identical atoms and
// sequences from the same Unifier are the same pointer. There is no occurs
// check: unifying X with f(X) succeeds and yields a cyclic substitution.
package unify

import (
	"strconv"
	"strings"
	"unicode"
)

// Term is an Atom, a Variable or a Sequence.
type Term interface {
	String() string
	// apply substitutes once, without iterating to a fixed point.
	apply(s *Substitution) Term
	key() string
}

// Atom is a symbol with no children.
type Atom struct {
	name string
}

// Name returns the atom's name.
func (a *Atom) Name() string { return a.name }

func (a *Atom) String() string { return a.name }

func (a *Atom) apply(*Substitution) Term { return a }

func (a *Atom) key() string { return atomKey(a.name) }

// Variable stands for an unknown term. Variable names contain at least one
// upper-case letter.
type Variable struct {
	name string
}

// Name returns the variable's name.
func (v *Variable) Name() string { return v.name }

func (v *Variable) String() string { return v.name }

func (v *Variable) apply(s *Substitution) Term {
	if t, ok := s.m[v]; ok {
		return t
	}
	return v
}

func (v *Variable) key() string { return "v" + lengthPrefixed(v.name) }

// validVariableName reports whether name is not entirely lower case.
func validVariableName(name string) bool {
	for _, r := range name {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

// Sequence is an ordered list of terms. The sequence [f a b] is printed
// "f(a, b)", as if f were a node and a and b its children.
type Sequence struct {
	terms []Term
	k     string
}

// Len returns the number of terms in the sequence, including the functor.
func (s *Sequence) Len() int { return len(s.terms) }

// Term returns the i'th term.
func (s *Sequence) Term(i int) Term { return s.terms[i] }

// Functor returns the name of the leading atom, or "" if the sequence does
// not start with one.
func (s *Sequence) Functor() string {
	if len(s.terms) == 0 {
		return ""
	}
	if a, ok := s.terms[0].(*Atom); ok {
		return a.name
	}
	return ""
}

// Args returns the terms after the functor.
func (s *Sequence) Args() []Term {
	if len(s.terms) == 0 {
		return nil
	}
	return append([]Term(nil), s.terms[1:]...)
}

func (s *Sequence) String() string {
	switch len(s.terms) {
	case 0:
		return ""
	case 1:
		return s.terms[0].String()
	}
	var b strings.Builder
	b.WriteString(s.terms[0].String())
	b.WriteByte('(')
	for i, t := range s.terms[1:] {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (s *Sequence) apply(sub *Substitution) Term {
	var terms []Term
	for i, t := range s.terms {
		nt := t.apply(sub)
		if nt != t && terms == nil {
			terms = make([]Term, len(s.terms))
			copy(terms, s.terms[:i])
		}
		if terms != nil {
			terms[i] = nt
		}
	}
	if terms == nil {
		return s
	}
	return sub.u.sequence(terms)
}

func (s *Sequence) key() string { return s.k }

func atomKey(name string) string { return "a" + lengthPrefixed(name) }

// lengthPrefixed makes interning keys unambiguous whatever characters a name
// contains.
func lengthPrefixed(name string) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(name)))
	b.WriteByte(':')
	b.WriteString(name)
	return b.String()
}

func sequenceKey(terms []Term) string {
	var b strings.Builder
	b.WriteByte('(')
	for _, t := range terms {
		b.WriteString(t.key())
	}
	b.WriteByte(')')
	return b.String()
}
