package compile

import (
	"log/slog"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/types"
	"github.com/leapstack-labs/leapml/pkg/unify"
)

// constraint requires two terms to be equal. node is where it arose.
type constraint struct {
	left  unify.Term
	right unify.Term
	node  ast.Node
}

// TypeResolver infers the types of one statement. It walks the tree,
// assigning each node a term and collecting equality constraints, then
// solves all the constraints in one batch.
//
// A TypeResolver is used for a single statement and then discarded.
type TypeResolver struct {
	u           *unify.Unifier
	ts          *types.TypeSystem
	logger      *slog.Logger
	constraints []constraint
	terms       map[ast.Node]unify.Term
}

// NewTypeResolver returns a resolver with its own Unifier.
func NewTypeResolver(ts *types.TypeSystem, logger *slog.Logger) *TypeResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TypeResolver{
		u:      unify.New(),
		ts:     ts,
		logger: logger,
		terms:  make(map[ast.Node]unify.Term),
	}
}

// Unifier returns the resolver's unifier.
func (r *TypeResolver) Unifier() *unify.Unifier { return r.u }

// Resolve infers types for decl under env and returns the solved TypeMap.
func (r *TypeResolver) Resolve(env *TypeEnv, decl *ast.ValDecl) (*TypeMap, error) {
	if _, err := r.deduceDecl(env, decl); err != nil {
		return nil, err
	}
	return r.solve()
}

// ResolveExp infers the type of a single expression.
func (r *TypeResolver) ResolveExp(env *TypeEnv, exp ast.Exp) (*TypeMap, error) {
	if _, err := r.deduceExp(env, exp); err != nil {
		return nil, err
	}
	return r.solve()
}

func (r *TypeResolver) solve() (*TypeMap, error) {
	pairs := make([]unify.Pair, len(r.constraints))
	for i, c := range r.constraints {
		pairs[i] = unify.Pair{Left: c.left, Right: c.right}
	}
	sub, conflict := r.u.UnifyAll(pairs)
	if conflict != nil {
		node := r.constraints[conflict.Index].node
		r.logger.Debug("unification failed",
			"index", conflict.Index, "constraints", len(pairs), "pair", conflict.Pair.String(), "op", node.Op().String())
		return nil, &TypeError{
			Pos:     node.Pos(),
			Message: msgCannotTypeCheck,
			Reason:  r.describeConflict(conflict.Pair),
		}
	}
	r.logger.Debug("solved constraints", "constraints", len(pairs), "bindings", sub.Len())
	return &TypeMap{ts: r.ts, sub: sub, terms: r.terms}, nil
}

// describeConflict renders both sides of a failed constraint as types.
func (r *TypeResolver) describeConflict(p unify.Pair) string {
	m := &TypeMap{ts: r.ts, sub: r.u.Empty()}
	vars := make(map[*unify.Variable]*types.Var)
	left, err := m.convert(p.Left, vars, nil)
	if err != nil {
		return p.String()
	}
	right, err := m.convert(p.Right, vars, nil)
	if err != nil {
		return p.String()
	}
	return "cannot unify " + left.Description() + " with " + right.Description()
}

func (r *TypeResolver) equiv(left, right unify.Term, node ast.Node) {
	r.constraints = append(r.constraints, constraint{left: left, right: right, node: node})
}

func (r *TypeResolver) record(n ast.Node, t unify.Term) unify.Term {
	r.terms[n] = t
	return t
}

func (r *TypeResolver) atom(t *types.Primitive) unify.Term { return r.u.Atom(t.Name()) }

func (r *TypeResolver) fnTerm(param, result unify.Term) unify.Term {
	return r.u.Apply(fnFunctor, param, result)
}

func (r *TypeResolver) listTerm(elem unify.Term) unify.Term {
	return r.u.Apply(listFunctor, elem)
}

func (r *TypeResolver) tupleTerm(args []unify.Term) unify.Term {
	switch len(args) {
	case 0:
		return r.atom(types.Unit)
	case 1:
		return args[0]
	}
	return r.u.Apply(tupleFunctor, args...)
}

func (r *TypeResolver) recordTerm(labels []string, args []unify.Term) unify.Term {
	if len(labels) == 0 {
		return r.atom(types.Unit)
	}
	return r.u.Apply(recordFunctorFor(labels), args...)
}

var literalTypes = map[ast.Op]*types.Primitive{
	ast.OpIntLiteral:       types.Int,
	ast.OpRealLiteral:      types.Real,
	ast.OpStringLiteral:    types.String,
	ast.OpCharLiteral:      types.Char,
	ast.OpBoolLiteral:      types.Bool,
	ast.OpUnitLiteral:      types.Unit,
	ast.OpIntLiteralPat:    types.Int,
	ast.OpRealLiteralPat:   types.Real,
	ast.OpStringLiteralPat: types.String,
	ast.OpCharLiteralPat:   types.Char,
	ast.OpBoolLiteralPat:   types.Bool,
}

// operand and result types of infix operators; comparisons are handled
// separately because their operands are polymorphic.
var infixTypes = map[ast.Op][2]*types.Primitive{
	ast.OpAndAlso: {types.Bool, types.Bool},
	ast.OpOrElse:  {types.Bool, types.Bool},
	ast.OpPlus:    {types.Int, types.Int},
	ast.OpMinus:   {types.Int, types.Int},
	ast.OpTimes:   {types.Int, types.Int},
	ast.OpDivide:  {types.Int, types.Int},
	ast.OpMod:     {types.Int, types.Int},
	ast.OpCaret:   {types.String, types.String},
}

func (r *TypeResolver) deduceExp(env *TypeEnv, e ast.Exp) (unify.Term, error) {
	switch e := e.(type) {
	case *ast.Literal:
		t, ok := literalTypes[e.Kind]
		if !ok {
			return nil, internalErrorf(e, errUnhandledNode, e)
		}
		return r.record(e, r.atom(t)), nil

	case *ast.Ident:
		t, ok := env.Lookup(e.Name)
		if !ok {
			return nil, internalErrorf(e, errUnbound, e.Name)
		}
		return r.record(e, t), nil

	case *ast.InfixCall:
		left, err := r.deduceExp(env, e.Left)
		if err != nil {
			return nil, err
		}
		right, err := r.deduceExp(env, e.Right)
		if err != nil {
			return nil, err
		}
		if sig, ok := infixTypes[e.Kind]; ok {
			operand := r.atom(sig[0])
			r.equiv(left, operand, e.Left)
			r.equiv(right, operand, e.Right)
			return r.record(e, r.atom(sig[1])), nil
		}
		switch e.Kind {
		case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
			v := r.u.FreshVariable()
			r.equiv(left, v, e.Left)
			r.equiv(right, v, e.Right)
			return r.record(e, r.atom(types.Bool)), nil
		}
		return nil, internalErrorf(e, errUnhandledNode, e)

	case *ast.If:
		cond, err := r.deduceExp(env, e.Cond)
		if err != nil {
			return nil, err
		}
		r.equiv(cond, r.atom(types.Bool), e.Cond)
		t, err := r.deduceExp(env, e.IfTrue)
		if err != nil {
			return nil, err
		}
		f, err := r.deduceExp(env, e.IfFalse)
		if err != nil {
			return nil, err
		}
		v := r.u.FreshVariable()
		r.equiv(t, v, e.IfTrue)
		r.equiv(f, v, e.IfFalse)
		return r.record(e, v), nil

	case *ast.Let:
		inner := env
		for _, d := range e.Decls {
			var err error
			if inner, err = r.deduceDecl(inner, d); err != nil {
				return nil, err
			}
		}
		body, err := r.deduceExp(inner, e.Body)
		if err != nil {
			return nil, err
		}
		return r.record(e, body), nil

	case *ast.Fn:
		param := r.u.FreshVariable()
		result := r.u.FreshVariable()
		if err := r.deduceMatches(env, e.Matches, param, result); err != nil {
			return nil, err
		}
		return r.record(e, r.fnTerm(param, result)), nil

	case *ast.Apply:
		fn, err := r.deduceExp(env, e.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := r.deduceExp(env, e.Arg)
		if err != nil {
			return nil, err
		}
		result := r.u.FreshVariable()
		r.equiv(fn, r.fnTerm(arg, result), e)
		return r.record(e, result), nil

	case *ast.Tuple:
		args, err := r.deduceExps(env, e.Args)
		if err != nil {
			return nil, err
		}
		return r.record(e, r.tupleTerm(args)), nil

	case *ast.List:
		elem := r.u.FreshVariable()
		for _, a := range e.Args {
			t, err := r.deduceExp(env, a)
			if err != nil {
				return nil, err
			}
			r.equiv(t, elem, a)
		}
		return r.record(e, r.listTerm(elem)), nil

	case *ast.Record:
		exps := make([]ast.Exp, len(e.Fields))
		for i, f := range e.Fields {
			exps[i] = f.Exp
		}
		args, err := r.deduceExps(env, exps)
		if err != nil {
			return nil, err
		}
		return r.record(e, r.recordTerm(e.Labels(), args)), nil

	case *ast.Case:
		scrutinee, err := r.deduceExp(env, e.Exp)
		if err != nil {
			return nil, err
		}
		result := r.u.FreshVariable()
		if err := r.deduceMatches(env, e.Matches, scrutinee, result); err != nil {
			return nil, err
		}
		return r.record(e, result), nil

	case *ast.Con:
		data, payload, err := r.constructor(e, e.Name, e.Arg != nil)
		if err != nil {
			return nil, err
		}
		if e.Arg != nil {
			arg, err := r.deduceExp(env, e.Arg)
			if err != nil {
				return nil, err
			}
			r.equiv(arg, payload, e.Arg)
		}
		return r.record(e, data), nil
	}
	return nil, &InternalError{Pos: e.Pos(), Op: e.Op(), Message: "unhandled expression"}
}

func (r *TypeResolver) deduceExps(env *TypeEnv, exps []ast.Exp) ([]unify.Term, error) {
	terms := make([]unify.Term, len(exps))
	for i, e := range exps {
		t, err := r.deduceExp(env, e)
		if err != nil {
			return nil, err
		}
		terms[i] = t
	}
	return terms, nil
}

// deduceMatches types the arms of a fn or case: every pattern has type
// param and every body has type result.
func (r *TypeResolver) deduceMatches(env *TypeEnv, matches []*ast.Match, param, result unify.Term) error {
	for _, m := range matches {
		pat, inner, err := r.deducePat(env, m.Pat)
		if err != nil {
			return err
		}
		r.equiv(pat, param, m.Pat)
		body, err := r.deduceExp(inner, m.Exp)
		if err != nil {
			return err
		}
		r.equiv(body, result, m.Exp)
		r.record(m, r.fnTerm(pat, body))
	}
	return nil
}

// constructor returns a fresh instance of the datatype term for the
// constructor called name, and the term of its payload.
func (r *TypeResolver) constructor(n ast.Node, name string, hasArg bool) (unify.Term, unify.Term, error) {
	c, ok := r.ts.Constructor(name)
	if !ok {
		return nil, nil, internalErrorf(n, errUnknownCon, name)
	}
	if c.HasArg != hasArg {
		verb := "does not take"
		if c.HasArg {
			verb = "requires"
		}
		return nil, nil, internalErrorf(n, errConArity, name, verb)
	}
	arity, _ := r.ts.DataTypeArity(c.DataType)
	args := make([]unify.Term, arity)
	for i := range args {
		args[i] = r.u.FreshVariable()
	}
	var payload unify.Term
	if arity > 0 {
		payload = args[0]
	}
	return r.u.Apply(c.DataType, args...), payload, nil
}

// deducePat returns the term of a pattern and env extended with the
// pattern's identifiers.
func (r *TypeResolver) deducePat(env *TypeEnv, p ast.Pat) (unify.Term, *TypeEnv, error) {
	switch p := p.(type) {
	case *ast.WildcardPat:
		return r.record(p, r.u.FreshVariable()), env, nil

	case *ast.IDPat:
		v := r.u.FreshVariable()
		return r.record(p, v), env.Bind(p.Name, v), nil

	case *ast.LiteralPat:
		t, ok := literalTypes[p.Kind]
		if !ok {
			return nil, nil, internalErrorf(p, errUnhandledNode, p)
		}
		return r.record(p, r.atom(t)), env, nil

	case *ast.TuplePat:
		args, inner, err := r.deducePats(env, p.Args)
		if err != nil {
			return nil, nil, err
		}
		return r.record(p, r.tupleTerm(args)), inner, nil

	case *ast.ListPat:
		elem := r.u.FreshVariable()
		args, inner, err := r.deducePats(env, p.Args)
		if err != nil {
			return nil, nil, err
		}
		for i, a := range args {
			r.equiv(a, elem, p.Args[i])
		}
		return r.record(p, r.listTerm(elem)), inner, nil

	case *ast.RecordPat:
		pats := make([]ast.Pat, len(p.Fields))
		for i, f := range p.Fields {
			pats[i] = f.Pat
		}
		args, inner, err := r.deducePats(env, pats)
		if err != nil {
			return nil, nil, err
		}
		return r.record(p, r.recordTerm(p.Labels(), args)), inner, nil

	case *ast.ConsPat:
		head, inner, err := r.deducePat(env, p.Head)
		if err != nil {
			return nil, nil, err
		}
		tail, inner, err := r.deducePat(inner, p.Tail)
		if err != nil {
			return nil, nil, err
		}
		list := r.listTerm(head)
		r.equiv(tail, list, p.Tail)
		return r.record(p, list), inner, nil

	case *ast.Con0Pat:
		data, _, err := r.constructor(p, p.Name, false)
		if err != nil {
			return nil, nil, err
		}
		return r.record(p, data), env, nil

	case *ast.ConPat:
		data, payload, err := r.constructor(p, p.Name, true)
		if err != nil {
			return nil, nil, err
		}
		arg, inner, err := r.deducePat(env, p.Pat)
		if err != nil {
			return nil, nil, err
		}
		r.equiv(arg, payload, p.Pat)
		return r.record(p, data), inner, nil
	}
	return nil, nil, &InternalError{Pos: p.Pos(), Op: p.Op(), Message: "unhandled pattern"}
}

func (r *TypeResolver) deducePats(env *TypeEnv, pats []ast.Pat) ([]unify.Term, *TypeEnv, error) {
	terms := make([]unify.Term, len(pats))
	for i, p := range pats {
		t, inner, err := r.deducePat(env, p)
		if err != nil {
			return nil, nil, err
		}
		terms[i] = t
		env = inner
	}
	return terms, env, nil
}

// deduceDecl types a val declaration and returns env extended with its
// names. Initializers of a plain val see only env; those of val rec also
// see the names being declared.
func (r *TypeResolver) deduceDecl(env *TypeEnv, d *ast.ValDecl) (*TypeEnv, error) {
	inner := env
	patTerms := make([]unify.Term, len(d.Binds))
	if d.Rec {
		for i, b := range d.Binds {
			t, next, err := r.deducePat(inner, b.Pat)
			if err != nil {
				return nil, err
			}
			patTerms[i] = t
			inner = next
		}
	}
	scope := env
	if d.Rec {
		scope = inner
	}
	for i, b := range d.Binds {
		exp, err := r.deduceExp(scope, b.Exp)
		if err != nil {
			return nil, err
		}
		if !d.Rec {
			t, next, err := r.deducePat(inner, b.Pat)
			if err != nil {
				return nil, err
			}
			patTerms[i] = t
			inner = next
		}
		r.equiv(patTerms[i], exp, b)
		r.record(b, exp)
	}
	if len(d.Binds) > 0 {
		r.record(d, r.terms[d.Binds[0]])
	}
	return inner, nil
}
