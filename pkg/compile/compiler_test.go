package compile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/internal/testutil"
	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/eval"
	"github.com/leapstack-labs/leapml/pkg/token"
	"github.com/leapstack-labs/leapml/pkg/types"
)

var p0 = token.Zero

func at(line, col int) token.Position { return token.Position{Line: line, Column: col} }

func intLit(v int) ast.Exp      { return ast.IntLiteral(p0, v) }
func ident(name string) ast.Exp { return ast.NewIdent(p0, name) }
func idPat(name string) ast.Pat { return ast.NewIDPat(p0, name) }

func infix(op ast.Op, l, r ast.Exp) ast.Exp { return ast.NewInfix(p0, op, l, r) }

func apply(fn, arg ast.Exp) ast.Exp { return ast.NewApply(p0, fn, arg) }

func fn(matches ...*ast.Match) ast.Exp { return ast.NewFn(p0, matches...) }

func arm(p ast.Pat, e ast.Exp) *ast.Match { return ast.NewMatch(p0, p, e) }

type harness struct {
	t        *testing.T
	compiler *Compiler
	env      *Environment
}

func newHarness(t *testing.T) *harness {
	ts := types.NewTypeSystem()
	return &harness{
		t:        t,
		compiler: NewCompiler(ts, testutil.NewTestLogger(t)),
		env:      BasicEnvironment(ts),
	}
}

// exec compiles and evaluates node, keeping the resulting environment.
func (h *harness) exec(node ast.Node) ([]string, error) {
	h.t.Helper()
	stmt, err := h.compiler.CompileStatement(h.env, node)
	if err != nil {
		return nil, err
	}
	var out []string
	env, err := stmt.Eval(h.env, &out)
	h.env = env
	return out, err
}

func (h *harness) mustExec(node ast.Node) []string {
	h.t.Helper()
	out, err := h.exec(node)
	require.NoError(h.t, err)
	return out
}

func TestCompile_OnePlusTwo(t *testing.T) {
	c := NewCompiler(types.NewTypeSystem(), testutil.NewTestLogger(t))
	stmt, err := c.CompileStatement(EmptyEnvironment(), infix(ast.OpPlus, intLit(1), intLit(2)))
	require.NoError(t, err)
	assert.Same(t, types.Int, stmt.Type())

	var out []string
	env, err := stmt.Eval(EmptyEnvironment(), &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"val it = 3 : int"}, out)

	b, err := env.Get(ItName)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Value)
	assert.Same(t, types.Int, b.Type)
}

func TestCompile_Let(t *testing.T) {
	h := newHarness(t)
	let := ast.NewLet(p0, []*ast.ValDecl{ast.Val(p0, "x", intLit(3))}, infix(ast.OpPlus, ident("x"), ident("x")))
	assert.Equal(t, []string{"val it = 6 : int"}, h.mustExec(let))
}

func TestCompile_DivideByZero(t *testing.T) {
	h := newHarness(t)
	before := h.env
	var out []string
	stmt, err := h.compiler.CompileStatement(h.env, ast.NewInfix(at(1, 3), ast.OpDivide, intLit(1), intLit(0)))
	require.NoError(t, err)

	env, err := stmt.Eval(h.env, &out)
	require.Error(t, err)
	assert.True(t, eval.IsFault(err, eval.FaultDiv))
	assert.Empty(t, out)
	assert.Same(t, before, env)
}

func TestCompile_Statements(t *testing.T) {
	tests := []struct {
		name string
		node ast.Node
		want []string
	}{
		{"identity", ast.Val(p0, "f", fn(arm(idPat("x"), ident("x")))), []string{"val f = fn : 'a -> 'a"}},
		{"if", ast.NewIf(p0, infix(ast.OpLt, intLit(1), intLit(2)), ast.StringLiteral(p0, "yes"), ast.StringLiteral(p0, "no")),
			[]string{`val it = "yes" : string`}},
		{"list", ast.NewList(p0, intLit(1), intLit(2)), []string{"val it = [1,2] : int list"}},
		{"empty list", ast.NewList(p0), []string{"val it = [] : 'a list"}},
		{"record", ast.NewRecord(p0, ast.Field{Label: "b", Exp: ident("true")}, ast.Field{Label: "a", Exp: intLit(1)}),
			[]string{"val it = {a=1,b=true} : {a:int, b:bool}"}},
		{"tuple", ast.NewTuple(p0, intLit(1), ast.CharLiteral(p0, 'c')), []string{`val it = (1,#"c") : int * char`}},
		{"unit", ast.UnitLiteral(p0), []string{"val it = () : unit"}},
		{"real", ast.RealLiteral(p0, -1.5), []string{"val it = ~1.5 : real"}},
		{"builtin", apply(ident("not"), ident("true")), []string{"val it = false : bool"}},
		{"chr", apply(ident("chr"), intLit(65)), []string{`val it = #"A" : char`}},
		{"caret", infix(ast.OpCaret, ast.StringLiteral(p0, "a"), ast.StringLiteral(p0, "b")), []string{`val it = "ab" : string`}},
		{"some", ast.NewCon(p0, "SOME", intLit(3)), []string{"val it = SOME 3 : int option"}},
		{"none", ast.NewCon(p0, "NONE", nil), []string{"val it = NONE : 'a option"}},
		{"case", ast.NewCase(p0, ast.NewCon(p0, "SOME", intLit(3)),
			arm(ast.NewCon0Pat(p0, "NONE"), intLit(0)),
			arm(ast.NewConPat(p0, "SOME", idPat("x")), ident("x"))),
			[]string{"val it = 3 : int"}},
		{"tuple pattern", ast.NewValDecl(p0, false,
			ast.NewValBind(p0, ast.NewTuplePat(p0, idPat("a"), idPat("b")), ast.NewTuple(p0, intLit(1), ast.StringLiteral(p0, "x")))),
			[]string{"val a = 1 : int", `val b = "x" : string`}},
		{"and", ast.NewValDecl(p0, false,
			ast.NewValBind(p0, idPat("a"), intLit(1)),
			ast.NewValBind(p0, idPat("b"), ident("true"))),
			[]string{"val a = 1 : int", "val b = true : bool"}},
		{"cons pattern", ast.NewValDecl(p0, false,
			ast.NewValBind(p0, ast.NewConsPat(p0, idPat("h"), idPat("t")), ast.NewList(p0, intLit(1), intLit(2), intLit(3)))),
			[]string{"val h = 1 : int", "val t = [2,3] : int list"}},
		{"curried", ast.Val(p0, "add", fn(arm(idPat("x"), fn(arm(idPat("y"), infix(ast.OpPlus, ident("x"), ident("y"))))))),
			[]string{"val add = fn : int -> int -> int"}},
		{"higher order", ast.Val(p0, "twice", fn(arm(idPat("f"), fn(arm(idPat("x"), apply(ident("f"), apply(ident("f"), ident("x")))))))),
			[]string{"val twice = fn : ('a -> 'a) -> 'a -> 'a"}},
		{"let with tuple pattern", ast.NewLet(p0,
			[]*ast.ValDecl{ast.NewValDecl(p0, false,
				ast.NewValBind(p0, ast.NewTuplePat(p0, idPat("a"), idPat("b")), ast.NewTuple(p0, intLit(6), intLit(7))))},
			infix(ast.OpTimes, ident("a"), ident("b"))),
			[]string{"val it = 42 : int"}},
		{"let with and", ast.NewLet(p0,
			[]*ast.ValDecl{ast.NewValDecl(p0, false,
				ast.NewValBind(p0, idPat("a"), intLit(1)),
				ast.NewValBind(p0, idPat("b"), intLit(2)))},
			infix(ast.OpMinus, ident("a"), ident("b"))),
			[]string{"val it = ~1 : int"}},
		{"wildcard binds nothing", ast.NewValDecl(p0, false, ast.NewValBind(p0, ast.NewWildcardPat(p0), intLit(1))), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, tt.want, h.mustExec(tt.node))
		})
	}
}

func TestCompile_ValRec(t *testing.T) {
	h := newHarness(t)
	fact := ast.NewValDecl(p0, true, ast.NewValBind(p0, idPat("fact"), fn(
		arm(ast.NewLiteralPat(p0, ast.OpIntLiteralPat, 0), intLit(1)),
		arm(idPat("n"), infix(ast.OpTimes, ident("n"), apply(ident("fact"), infix(ast.OpMinus, ident("n"), intLit(1))))),
	)))
	assert.Equal(t, []string{"val fact = fn : int -> int"}, h.mustExec(fact))
	assert.Equal(t, []string{"val it = 120 : int"}, h.mustExec(apply(ident("fact"), intLit(5))))

	_, err := h.exec(ast.NewValDecl(p0, true, ast.NewValBind(p0, idPat("x"), intLit(1))))
	var internal *InternalError
	assert.ErrorAs(t, err, &internal)
}

func TestCompile_LetRec(t *testing.T) {
	h := newHarness(t)
	length := ast.NewValDecl(p0, true, ast.NewValBind(p0, idPat("len"), fn(
		arm(ast.NewListPat(p0), intLit(0)),
		arm(ast.NewConsPat(p0, ast.NewWildcardPat(p0), idPat("t")), infix(ast.OpPlus, intLit(1), apply(ident("len"), ident("t"))))),
	))
	let := ast.NewLet(p0, []*ast.ValDecl{length}, apply(ident("len"), ast.NewList(p0, intLit(4), intLit(5), intLit(6))))
	assert.Equal(t, []string{"val it = 3 : int"}, h.mustExec(let))
}

func TestCompile_UsesEarlierBindings(t *testing.T) {
	h := newHarness(t)
	h.mustExec(ast.Val(p0, "x", intLit(10)))
	h.mustExec(ast.Val(p0, "id", fn(arm(idPat("y"), ident("y")))))
	assert.Equal(t, []string{"val it = 11 : int"}, h.mustExec(infix(ast.OpPlus, apply(ident("id"), ident("x")), intLit(1))))
	assert.Equal(t, []string{`val it = "s" : string`}, h.mustExec(apply(ident("id"), ast.StringLiteral(p0, "s"))))

	// Shadowing.
	h.mustExec(ast.Val(p0, "x", ast.StringLiteral(p0, "ten")))
	b, err := h.env.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "ten", b.Value)
}

func TestCompile_TypeErrors(t *testing.T) {
	t.Run("operand mismatch", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.exec(ast.NewInfix(at(1, 1), ast.OpPlus, intLit(1), ast.BoolLiteral(at(1, 5), true)))
		var te *TypeError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "cannot type-check", te.Message)
		assert.Equal(t, at(1, 5), te.Pos)
		assert.Contains(t, te.Error(), "cannot unify bool with int")
	})

	t.Run("if branches differ", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.exec(ast.NewIf(p0, ident("true"), intLit(1), ast.StringLiteral(p0, "no")))
		var te *TypeError
		assert.ErrorAs(t, err, &te)
	})

	t.Run("circular", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.exec(fn(arm(idPat("x"), apply(ident("x"), ident("x")))))
		var te *TypeError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, te.Error(), "circular")
	})

	t.Run("environment unchanged", func(t *testing.T) {
		h := newHarness(t)
		before := h.env
		stmt, err := h.compiler.CompileStatement(h.env, apply(intLit(1), intLit(2)))
		assert.Nil(t, stmt)
		assert.Error(t, err)
		assert.Same(t, before, h.env)
	})
}

func TestCompile_InternalErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.exec(ast.NewIdent(at(2, 4), "nope"))
	var internal *InternalError
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, ast.OpID, internal.Op)
	assert.Equal(t, at(2, 4), internal.Pos)
	assert.Contains(t, internal.Error(), `unbound identifier "nope"`)

	_, err = h.exec(ast.NewCon(p0, "CONS", nil))
	assert.ErrorAs(t, err, &internal)

	_, err = h.exec(ast.NewCon(p0, "SOME", nil))
	assert.ErrorAs(t, err, &internal)

	_, err = h.compiler.CompileStatement(h.env, ast.NewWildcardPat(p0))
	assert.ErrorAs(t, err, &internal)
}

func TestCompile_RuntimeFaults(t *testing.T) {
	t.Run("bind", func(t *testing.T) {
		h := newHarness(t)
		decl := ast.NewValDecl(p0, false, ast.NewValBind(p0, ast.NewListPat(at(1, 5), idPat("a")), ast.NewList(p0, intLit(1), intLit(2))))
		out, err := h.exec(decl)
		assert.True(t, eval.IsFault(err, eval.FaultBind))
		assert.Empty(t, out)
		_, ok := h.env.GetOpt("a")
		assert.False(t, ok)
	})

	t.Run("match", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.exec(apply(fn(arm(ast.NewLiteralPat(p0, ast.OpIntLiteralPat, 0), intLit(1))), intLit(2)))
		assert.True(t, eval.IsFault(err, eval.FaultMatch))
	})

	t.Run("later bind fails atomically", func(t *testing.T) {
		h := newHarness(t)
		decl := ast.NewValDecl(p0, false,
			ast.NewValBind(p0, idPat("a"), intLit(1)),
			ast.NewValBind(p0, idPat("b"), infix(ast.OpMod, intLit(1), intLit(0))))
		out, err := h.exec(decl)
		require.Error(t, err)
		var fault *eval.Fault
		require.True(t, errors.As(err, &fault))
		assert.Equal(t, eval.FaultDiv, fault.Name)
		assert.Empty(t, out)
		_, ok := h.env.GetOpt("a")
		assert.False(t, ok)
	})
}

func TestCompiledStatement_TypeIsFirstBind(t *testing.T) {
	h := newHarness(t)
	stmt, err := h.compiler.CompileStatement(h.env, ast.NewValDecl(p0, false,
		ast.NewValBind(p0, idPat("x"), intLit(1)),
		ast.NewValBind(p0, idPat("y"), ident("true"))))
	require.NoError(t, err)
	assert.Same(t, types.Int, stmt.Type())
}

func TestCompile_RecordsAndUnit(t *testing.T) {
	one := func() ast.Exp { return ast.NewRecord(p0, ast.Field{Label: "a", Exp: intLit(1)}) }
	onePat := ast.NewRecordPat(p0, ast.PatField{Label: "a", Pat: idPat("x")})

	tests := []struct {
		name string
		node ast.Node
		want []string
	}{
		{"one-field record", one(), []string{"val it = {a=1} : {a:int}"}},
		{"one-field record pattern", ast.NewValDecl(p0, false, ast.NewValBind(p0, onePat, one())),
			[]string{"val x = 1 : int"}},
		{"one-field record equality", infix(ast.OpEq, one(), one()), []string{"val it = true : bool"}},
		{"empty tuple pattern", apply(fn(arm(ast.NewTuplePat(p0), intLit(7))), ast.UnitLiteral(p0)),
			[]string{"val it = 7 : int"}},
		{"empty record pattern", apply(fn(arm(ast.NewRecordPat(p0), intLit(8))), ast.NewRecord(p0)),
			[]string{"val it = 8 : int"}},
		{"empty tuple", ast.NewTuple(p0), []string{"val it = () : unit"}},
		{"unit function", ast.Val(p0, "k", fn(arm(ast.NewTuplePat(p0), intLit(7)))),
			[]string{"val k = fn : unit -> int"}},
		{"record of unit", ast.NewRecord(p0, ast.Field{Label: "u", Exp: ast.NewTuple(p0)}),
			[]string{"val it = {u=()} : {u:unit}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			assert.Equal(t, tt.want, h.mustExec(tt.node))
		})
	}
}

func TestCompile_Comparisons(t *testing.T) {
	identity := func() ast.Exp { return fn(arm(idPat("x"), ident("x"))) }

	t.Run("unit", func(t *testing.T) {
		h := newHarness(t)
		assert.Equal(t, []string{"val it = false : bool"}, h.mustExec(infix(ast.OpLt, ast.UnitLiteral(p0), ast.UnitLiteral(p0))))
		assert.Equal(t, []string{"val it = true : bool"}, h.mustExec(infix(ast.OpEq, ast.UnitLiteral(p0), ast.UnitLiteral(p0))))
	})

	t.Run("functions rejected", func(t *testing.T) {
		for _, node := range []ast.Node{
			ast.NewInfix(at(1, 2), ast.OpEq, identity(), identity()),
			ast.NewInfix(at(1, 2), ast.OpLt, ast.NewList(p0, ident("not")), ast.NewList(p0, ident("not"))),
		} {
			h := newHarness(t)
			before := h.env
			_, err := h.exec(node)
			var te *TypeError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, at(1, 2), te.Pos)
			assert.Contains(t, te.Reason, "cannot compare values of type")
			assert.Same(t, before, h.env)
		}
	})

	t.Run("polymorphic operands", func(t *testing.T) {
		h := newHarness(t)
		eq := fn(arm(ast.NewTuplePat(p0, idPat("a"), idPat("b")), infix(ast.OpEq, ident("a"), ident("b"))))
		assert.Equal(t, []string{"val eq = fn : 'a * 'a -> bool"}, h.mustExec(ast.Val(p0, "eq", eq)))
		assert.Equal(t, []string{"val it = true : bool"}, h.mustExec(apply(ident("eq"), ast.NewTuple(p0, intLit(1), intLit(1)))))

		_, err := h.exec(apply(ident("eq"), ast.NewTuple(p0, ident("not"), ident("not"))))
		assert.True(t, eval.IsFault(err, eval.FaultEqual))
	})
}
