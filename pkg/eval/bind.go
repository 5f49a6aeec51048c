package eval

import (
	"github.com/leapstack-labs/leapml/pkg/ast"
)

// PatEvalEnv binds the identifiers of a pattern. SetOpt destructures a
// value against the pattern and, only if the whole pattern matches, fills
// the link's slots; a failed match leaves the link unchanged.
//
// It is not safe for concurrent use.
type PatEvalEnv struct {
	parent EvalEnv
	pat    ast.Pat
	names  []string
	values []any
	bound  bool
}

// NewPatEvalEnv returns an unbound link for pat. Slots are sized by counting
// the pattern's identifiers left to right.
func NewPatEvalEnv(parent EvalEnv, pat ast.Pat) *PatEvalEnv {
	names := make([]string, 0, ast.IdentifierCount(pat))
	ast.VisitIdentifiers(pat, func(p *ast.IDPat) { names = append(names, p.Name) })
	return &PatEvalEnv{parent: parent, pat: pat, names: names}
}

// SetOpt binds v against the pattern and reports whether it matched.
func (e *PatEvalEnv) SetOpt(v any) bool {
	slots := make([]any, len(e.names))
	n := 0
	if !bindRecurse(e.pat, v, slots, &n) {
		return false
	}
	e.values = slots
	e.bound = true
	return true
}

// Set is SetOpt, faulting with Bind if v does not match.
func (e *PatEvalEnv) Set(v any) error {
	if !e.SetOpt(v) {
		return NewFault(FaultBind, e.pat.Pos(), "nonexhaustive binding failure")
	}
	return nil
}

// Names returns the pattern's identifiers in slot order.
func (e *PatEvalEnv) Names() []string { return e.names }

// Values returns the bound values in slot order, or nil before a
// successful match.
func (e *PatEvalEnv) Values() []any { return e.values }

// GetOpt implements EvalEnv.
func (e *PatEvalEnv) GetOpt(name string) (any, bool) {
	if e.bound {
		for i := len(e.names) - 1; i >= 0; i-- {
			if e.names[i] == name {
				return e.values[i], true
			}
		}
	}
	return e.parent.GetOpt(name)
}

// Visit implements EvalEnv.
func (e *PatEvalEnv) Visit(fn func(string, any) bool) {
	if e.bound {
		for i := len(e.names) - 1; i >= 0; i-- {
			if !fn(e.names[i], e.values[i]) {
				return
			}
		}
	}
	e.parent.Visit(fn)
}

// bindRecurse matches v against pat, writing identifier values into slots
// starting at *n.
func bindRecurse(pat ast.Pat, v any, slots []any, n *int) bool {
	switch pat := pat.(type) {
	case *ast.WildcardPat:
		return true

	case *ast.IDPat:
		slots[*n] = v
		*n++
		return true

	case *ast.LiteralPat:
		return literalMatches(pat, v)

	case *ast.TuplePat:
		switch len(pat.Args) {
		case 0:
			return v == Unit
		case 1:
			return bindRecurse(pat.Args[0], v, slots, n)
		}
		return bindAll(pat.Args, v, slots, n)

	case *ast.ListPat:
		return bindAll(pat.Args, v, slots, n)

	case *ast.RecordPat:
		if len(pat.Fields) == 0 {
			return v == Unit
		}
		fields := make([]ast.Pat, len(pat.Fields))
		for i, f := range pat.Fields {
			fields[i] = f.Pat
		}
		return bindAll(fields, v, slots, n)

	case *ast.ConsPat:
		list, ok := v.([]any)
		if !ok || len(list) == 0 {
			return false
		}
		return bindRecurse(pat.Head, list[0], slots, n) &&
			bindRecurse(pat.Tail, list[1:], slots, n)

	case *ast.Con0Pat:
		c, ok := v.([]any)
		return ok && len(c) == 1 && c[0] == pat.Name

	case *ast.ConPat:
		c, ok := v.([]any)
		if !ok || len(c) != 2 || c[0] != pat.Name {
			return false
		}
		return bindRecurse(pat.Pat, c[1], slots, n)
	}
	return false
}

// bindAll requires v to be a sequence of exactly len(pats) values and binds
// them pairwise, stopping at the first failure.
func bindAll(pats []ast.Pat, v any, slots []any, n *int) bool {
	values, ok := v.([]any)
	if !ok || len(values) != len(pats) {
		return false
	}
	for i, p := range pats {
		if !bindRecurse(p, values[i], slots, n) {
			return false
		}
	}
	return true
}

func literalMatches(pat *ast.LiteralPat, v any) bool {
	switch pat.Kind {
	case ast.OpIntLiteralPat, ast.OpRealLiteralPat:
		if i, ok := v.(int); ok {
			if j, ok := pat.Value.(int); ok {
				return i == j
			}
		}
		want, ok := toFloat(pat.Value)
		if !ok {
			return false
		}
		got, ok := toFloat(v)
		return ok && want == got
	case ast.OpBoolLiteralPat, ast.OpCharLiteralPat, ast.OpStringLiteralPat:
		return pat.Value == v
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
