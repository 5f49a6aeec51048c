package compile

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/eval"
	"github.com/leapstack-labs/leapml/pkg/types"
)

// ItName is the name a bare expression statement is bound to.
const ItName = "it"

// Compiler turns statements into CompiledStatements.
type Compiler struct {
	ts     *types.TypeSystem
	logger *slog.Logger
}

// NewCompiler returns a compiler. The logger is optional.
func NewCompiler(ts *types.TypeSystem, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compiler{ts: ts, logger: logger}
}

// TypeSystem returns the compiler's type system.
func (c *Compiler) TypeSystem() *types.TypeSystem { return c.ts }

// CompileStatement type-checks and compiles a declaration, or an expression
// which it treats as "val it = exp".
func (c *Compiler) CompileStatement(env *Environment, node ast.Node) (*CompiledStatement, error) {
	var decl *ast.ValDecl
	switch n := node.(type) {
	case *ast.ValDecl:
		decl = n
	case ast.Exp:
		decl = ast.Val(n.Pos(), ItName, n)
	default:
		return nil, internalErrorf(node, "not a statement")
	}

	resolver := NewTypeResolver(c.ts, c.logger)
	typeMap, err := resolver.Resolve(TypeEnvOf(resolver.Unifier(), env), decl)
	if err != nil {
		return nil, err
	}

	cx := &compileContext{types: typeMap, logger: c.logger}
	stmt := &CompiledStatement{rec: decl.Rec, logger: c.logger}
	for _, b := range decl.Binds {
		code, err := cx.compileExp(b.Exp)
		if err != nil {
			return nil, err
		}
		cb := compiledBind{pat: b.Pat, code: code}
		var typeErr error
		ast.VisitIdentifiers(b.Pat, func(p *ast.IDPat) {
			if typeErr != nil {
				return
			}
			t, err := typeMap.TypeOf(p)
			if err != nil {
				typeErr = err
				return
			}
			cb.names = append(cb.names, p.Name)
			cb.types = append(cb.types, t)
		})
		if typeErr != nil {
			return nil, typeErr
		}
		if decl.Rec {
			if err := checkRecBind(b); err != nil {
				return nil, err
			}
		}
		stmt.binds = append(stmt.binds, cb)
	}
	if len(decl.Binds) > 0 {
		if stmt.typ, err = typeMap.TypeOf(decl.Binds[0].Exp); err != nil {
			return nil, err
		}
	}
	c.logger.Debug("compiled statement", "binds", len(stmt.binds), "type", typeString(stmt.typ))
	return stmt, nil
}

func typeString(t types.Type) string {
	if t == nil {
		return ""
	}
	return t.Description()
}

// compileContext holds what compiling one statement needs.
type compileContext struct {
	types  *TypeMap
	logger *slog.Logger
}

func (cx *compileContext) compileExp(e ast.Exp) (eval.Code, error) {
	switch e := e.(type) {
	case *ast.Literal:
		if e.Kind == ast.OpUnitLiteral {
			return eval.Constant(eval.Unit), nil
		}
		return eval.Constant(e.Value), nil

	case *ast.Ident:
		return eval.Lookup(e.Name), nil

	case *ast.If:
		cond, err := cx.compileExp(e.Cond)
		if err != nil {
			return nil, err
		}
		t, err := cx.compileExp(e.IfTrue)
		if err != nil {
			return nil, err
		}
		f, err := cx.compileExp(e.IfFalse)
		if err != nil {
			return nil, err
		}
		return eval.If(cond, t, f), nil

	case *ast.Let:
		return cx.compileLet(e)

	case *ast.Fn:
		return cx.compileFn(e)

	case *ast.Apply:
		fn, err := cx.compileExp(e.Fn)
		if err != nil {
			return nil, err
		}
		arg, err := cx.compileExp(e.Arg)
		if err != nil {
			return nil, err
		}
		return eval.ApplyCode(fn, arg), nil

	case *ast.InfixCall:
		if err := cx.checkComparable(e); err != nil {
			return nil, err
		}
		left, err := cx.compileExp(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := cx.compileExp(e.Right)
		if err != nil {
			return nil, err
		}
		code, err := eval.Infix(e.Kind, left, right, e.Pos())
		if err != nil {
			return nil, internalErrorf(e, "%v", err)
		}
		return code, nil

	case *ast.Tuple:
		return cx.compileSequence(e.Args)

	case *ast.List:
		codes, err := cx.compileExps(e.Args)
		if err != nil {
			return nil, err
		}
		return eval.Sequence(codes), nil

	case *ast.Record:
		if len(e.Fields) == 0 {
			return eval.Constant(eval.Unit), nil
		}
		exps := make([]ast.Exp, len(e.Fields))
		for i, f := range e.Fields {
			exps[i] = f.Exp
		}
		codes, err := cx.compileExps(exps)
		if err != nil {
			return nil, err
		}
		return eval.Sequence(codes), nil

	case *ast.Case:
		scrutinee, err := cx.compileExp(e.Exp)
		if err != nil {
			return nil, err
		}
		arms, err := cx.compileArms(e.Matches)
		if err != nil {
			return nil, err
		}
		return eval.CaseCode(scrutinee, arms, e.Pos()), nil

	case *ast.Con:
		var arg eval.Code
		if e.Arg != nil {
			var err error
			if arg, err = cx.compileExp(e.Arg); err != nil {
				return nil, err
			}
		}
		return eval.Construct(e.Name, arg), nil
	}
	return nil, internalErrorf(e, errUnhandledNode, e)
}

// checkComparable rejects = and the orderings on operands whose type
// involves a function. Operands still polymorphic here are checked at run
// time instead.
func (cx *compileContext) checkComparable(e *ast.InfixCall) error {
	switch e.Kind {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe:
	default:
		return nil
	}
	t, err := cx.types.TypeOf(e.Left)
	if err != nil {
		return err
	}
	if !types.ContainsFn(t) {
		return nil
	}
	return &TypeError{
		Pos:     e.Pos(),
		Message: msgCannotTypeCheck,
		Reason:  fmt.Sprintf("operator %s cannot compare values of type %s", e.Kind.Symbol(), t.Description()),
	}
}

func (cx *compileContext) compileExps(exps []ast.Exp) ([]eval.Code, error) {
	codes := make([]eval.Code, len(exps))
	for i, e := range exps {
		code, err := cx.compileExp(e)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

// compileSequence compiles a tuple, whose runtime form is the sequence of
// its components. Zero components is unit and one is the component itself.
func (cx *compileContext) compileSequence(exps []ast.Exp) (eval.Code, error) {
	switch len(exps) {
	case 0:
		return eval.Constant(eval.Unit), nil
	case 1:
		return cx.compileExp(exps[0])
	}
	codes, err := cx.compileExps(exps)
	if err != nil {
		return nil, err
	}
	return eval.Sequence(codes), nil
}

func (cx *compileContext) compileArms(matches []*ast.Match) ([]eval.Arm, error) {
	arms := make([]eval.Arm, len(matches))
	for i, m := range matches {
		body, err := cx.compileExp(m.Exp)
		if err != nil {
			return nil, err
		}
		arms[i] = eval.Arm{Pat: m.Pat, Body: body}
	}
	return arms, nil
}

func (cx *compileContext) compileFn(e *ast.Fn) (eval.Code, error) {
	t, err := cx.types.TypeOf(e)
	if err != nil {
		return nil, err
	}
	fnType, ok := t.(*types.Fn)
	if !ok {
		return nil, internalErrorf(e, "fn has non-function type %s", t)
	}
	arms, err := cx.compileArms(e.Matches)
	if err != nil {
		return nil, err
	}
	cx.logger.Debug("compiled fn", "param", fnType.Param.Description(), "arms", len(arms))
	pos := e.Pos()
	return func(env eval.EvalEnv) (any, error) {
		return eval.NewClosure(env, arms, pos), nil
	}, nil
}

// binder extends a runtime environment with the names of one declaration.
type binder func(env eval.EvalEnv) (eval.EvalEnv, error)

func (cx *compileContext) compileLet(e *ast.Let) (eval.Code, error) {
	binders := make([]binder, len(e.Decls))
	for i, d := range e.Decls {
		b, err := cx.compileDecl(d)
		if err != nil {
			return nil, err
		}
		binders[i] = b
	}
	body, err := cx.compileExp(e.Body)
	if err != nil {
		return nil, err
	}
	return func(env eval.EvalEnv) (any, error) {
		for _, b := range binders {
			var err error
			if env, err = b(env); err != nil {
				return nil, err
			}
		}
		return body(env)
	}, nil
}

// compileDecl compiles a declaration inside a let. Initializers are
// evaluated against the environment preceding the declaration, then all of
// its names are bound at once.
func (cx *compileContext) compileDecl(d *ast.ValDecl) (binder, error) {
	codes := make([]eval.Code, len(d.Binds))
	for i, b := range d.Binds {
		code, err := cx.compileExp(b.Exp)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}

	if d.Rec {
		return cx.recBinder(d, codes)
	}

	names, allIDs := identifierNames(d)
	switch {
	case allIDs && len(names) == 1:
		name, code := names[0], codes[0]
		return func(env eval.EvalEnv) (eval.EvalEnv, error) {
			v, err := code(env)
			if err != nil {
				return nil, err
			}
			return eval.Add(env, name, v), nil
		}, nil

	case allIDs:
		return func(env eval.EvalEnv) (eval.EvalEnv, error) {
			values, err := evalAll(codes, env)
			if err != nil {
				return nil, err
			}
			arr := eval.NewArrayEvalEnv(env, names)
			if err := arr.Set(values); err != nil {
				return nil, err
			}
			return arr, nil
		}, nil
	}

	pat, value := tuplePattern(d), eval.Sequence(codes)
	if len(codes) == 1 {
		value = codes[0]
	}
	return func(env eval.EvalEnv) (eval.EvalEnv, error) {
		v, err := value(env)
		if err != nil {
			return nil, err
		}
		penv := eval.NewPatEvalEnv(env, pat)
		if err := penv.Set(v); err != nil {
			return nil, err
		}
		return penv, nil
	}, nil
}

// recBinder binds each name in a mutable link, evaluates the initializers
// in the extended environment, then fills the links.
func (cx *compileContext) recBinder(d *ast.ValDecl, codes []eval.Code) (binder, error) {
	for _, b := range d.Binds {
		if err := checkRecBind(b); err != nil {
			return nil, err
		}
	}
	names, _ := identifierNames(d)
	return func(env eval.EvalEnv) (eval.EvalEnv, error) {
		slots := make([]*eval.MutableSubEvalEnv, len(names))
		for i, name := range names {
			slots[i] = eval.NewMutableSubEvalEnv(env, name)
			env = slots[i]
		}
		values, err := evalAll(codes, env)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			slots[i].Set(v)
		}
		return env, nil
	}, nil
}

// checkRecBind requires a val rec bind to be "name = fn ...".
func checkRecBind(b *ast.ValBind) error {
	if _, ok := b.Pat.(*ast.IDPat); !ok {
		return internalErrorf(b.Pat, "val rec must bind an identifier")
	}
	if _, ok := b.Exp.(*ast.Fn); !ok {
		return internalErrorf(b.Exp, "val rec must bind a fn expression")
	}
	return nil
}

// identifierNames returns the bound names of d, and whether every bind's
// pattern is a plain identifier.
func identifierNames(d *ast.ValDecl) ([]string, bool) {
	names := make([]string, 0, len(d.Binds))
	for _, b := range d.Binds {
		id, ok := b.Pat.(*ast.IDPat)
		if !ok {
			return nil, false
		}
		names = append(names, id.Name)
	}
	return names, true
}

// tuplePattern returns the pattern of a single bind, or the tuple of the
// patterns of several.
func tuplePattern(d *ast.ValDecl) ast.Pat {
	if len(d.Binds) == 1 {
		return d.Binds[0].Pat
	}
	pats := make([]ast.Pat, len(d.Binds))
	for i, b := range d.Binds {
		pats[i] = b.Pat
	}
	return ast.NewTuplePat(d.Pos(), pats...)
}

func evalAll(codes []eval.Code, env eval.EvalEnv) ([]any, error) {
	values := make([]any, len(codes))
	for i, code := range codes {
		v, err := code(env)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// CompiledStatement is a type-checked statement ready to evaluate.
type CompiledStatement struct {
	rec    bool
	binds  []compiledBind
	typ    types.Type
	logger *slog.Logger
}

type compiledBind struct {
	pat   ast.Pat
	code  eval.Code
	names []string
	types []types.Type
}

// Type returns the type of the statement's first bound expression.
func (s *CompiledStatement) Type() types.Type { return s.typ }

// Eval runs the statement against env and returns env extended with the
// statement's names, one binding per name in declaration order. It appends
// one "val <name> = <value> : <type>" line to out per name. If evaluation
// faults, env is returned unchanged with the error and out is untouched.
func (s *CompiledStatement) Eval(env *Environment, out *[]string) (*Environment, error) {
	values, err := s.evalBinds(env.EvalEnv())
	if err != nil {
		return env, err
	}
	for i, b := range s.binds {
		for j, name := range b.names {
			env = env.Bind(name, b.types[j], values[i][j])
			*out = append(*out, fmt.Sprintf("val %s = %s : %s", name, eval.Print(values[i][j], b.types[j]), b.types[j]))
		}
	}
	return env, nil
}

// evalBinds evaluates every initializer exactly once and destructures the
// results. Values are returned per bind, in pattern slot order.
func (s *CompiledStatement) evalBinds(base eval.EvalEnv) ([][]any, error) {
	values := make([][]any, len(s.binds))
	if s.rec {
		env := base
		slots := make([]*eval.MutableSubEvalEnv, len(s.binds))
		for i, b := range s.binds {
			slots[i] = eval.NewMutableSubEvalEnv(env, b.names[0])
			env = slots[i]
		}
		for i, b := range s.binds {
			v, err := b.code(env)
			if err != nil {
				return nil, err
			}
			slots[i].Set(v)
			values[i] = []any{v}
		}
		return values, nil
	}
	for i, b := range s.binds {
		v, err := b.code(base)
		if err != nil {
			return nil, err
		}
		penv := eval.NewPatEvalEnv(eval.Empty(), b.pat)
		if err := penv.Set(v); err != nil {
			s.logger.Debug("binding failed", "pattern", b.pat.String())
			return nil, err
		}
		values[i] = penv.Values()
	}
	return values, nil
}
