package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/pkg/token"
)

var p0 = token.Zero

func TestOp_LookupRoundTrip(t *testing.T) {
	for op, name := range opNames {
		got, ok := LookupOp(name)
		require.True(t, ok, name)
		assert.Equal(t, op, got)
	}
	_, ok := LookupOp("nope")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Op(-1).String())
}

func TestOp_IsInfix(t *testing.T) {
	assert.True(t, OpPlus.IsInfix())
	assert.True(t, OpAndAlso.IsInfix())
	assert.False(t, OpApply.IsInfix())
	assert.Equal(t, "<>", OpNe.Symbol())
	assert.Equal(t, "tuple", OpTuple.Symbol())
}

func TestUnparse(t *testing.T) {
	x := NewIdent(p0, "x")
	one := IntLiteral(p0, 1)
	two := IntLiteral(p0, 2)

	tests := []struct {
		name string
		node Node
		want string
	}{
		{"plus", NewInfix(p0, OpPlus, one, two), "1 + 2"},
		{"negative int", IntLiteral(p0, -3), "~3"},
		{"real", RealLiteral(p0, 3), "3.0"},
		{"negative real", RealLiteral(p0, -0.5), "~0.5"},
		{"string", StringLiteral(p0, "a\"b"), `"a\"b"`},
		{"char", CharLiteral(p0, 'c'), `#"c"`},
		{"unit", UnitLiteral(p0), "()"},
		{"nested infix", NewInfix(p0, OpTimes, NewInfix(p0, OpPlus, one, two), x), "(1 + 2) * x"},
		{"let", NewLet(p0, []*ValDecl{Val(p0, "x", IntLiteral(p0, 3))}, NewInfix(p0, OpPlus, x, x)),
			"let val x = 3 in x + x end"},
		{"fn", NewFn(p0, NewMatch(p0, NewIDPat(p0, "x"), x)), "fn x => x"},
		{"apply fn literal", NewApply(p0, NewFn(p0, NewMatch(p0, NewIDPat(p0, "x"), x)), one), "(fn x => x) 1"},
		{"apply nested", NewApply(p0, NewApply(p0, NewIdent(p0, "f"), one), NewInfix(p0, OpPlus, one, two)), "f 1 (1 + 2)"},
		{"if", NewIf(p0, BoolLiteral(p0, true), one, two), "if true then 1 else 2"},
		{"tuple", NewTuple(p0, one, two), "(1, 2)"},
		{"list", NewList(p0, one, two), "[1, 2]"},
		{"record sorted", NewRecord(p0, Field{"b", two}, Field{"a", one}), "{a = 1, b = 2}"},
		{"case", NewCase(p0, x,
			NewMatch(p0, NewCon0Pat(p0, "NONE"), one),
			NewMatch(p0, NewConPat(p0, "SOME", NewIDPat(p0, "y")), NewIdent(p0, "y"))),
			"case x of NONE => 1 | SOME y => y"},
		{"con", NewCon(p0, "SOME", NewInfix(p0, OpPlus, one, two)), "SOME (1 + 2)"},
		{"val rec", NewValDecl(p0, true, NewValBind(p0, NewIDPat(p0, "f"), NewFn(p0, NewMatch(p0, NewWildcardPat(p0), one)))),
			"val rec f = fn _ => 1"},
		{"val and", NewValDecl(p0, false,
			NewValBind(p0, NewIDPat(p0, "a"), one),
			NewValBind(p0, NewTuplePat(p0, NewIDPat(p0, "b"), NewWildcardPat(p0)), NewTuple(p0, one, two))),
			"val a = 1 and (b, _) = (1, 2)"},
		{"cons pat", NewConsPat(p0, NewIDPat(p0, "h"), NewConsPat(p0, NewIDPat(p0, "i"), NewIDPat(p0, "t"))), "h :: i :: t"},
		{"list pat", NewListPat(p0, NewLiteralPat(p0, OpIntLiteralPat, 1), NewLiteralPat(p0, OpBoolLiteralPat, false)), "[1, false]"},
		{"record pat", NewRecordPat(p0, PatField{"y", NewWildcardPat(p0)}, PatField{"x", NewIDPat(p0, "x")}), "{x = x, y = _}"},
		{"con pat of cons", NewConPat(p0, "SOME", NewConsPat(p0, NewIDPat(p0, "h"), NewIDPat(p0, "t"))), "SOME (h :: t)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.String())
		})
	}
}

func TestIdentifierCount(t *testing.T) {
	pat := NewTuplePat(p0,
		NewIDPat(p0, "a"),
		NewWildcardPat(p0),
		NewConsPat(p0, NewIDPat(p0, "h"), NewIDPat(p0, "t")),
		NewConPat(p0, "SOME", NewRecordPat(p0, PatField{"k", NewIDPat(p0, "k")})),
	)
	assert.Equal(t, 4, IdentifierCount(pat))

	var names []string
	VisitIdentifiers(pat, func(p *IDPat) { names = append(names, p.Name) })
	assert.Equal(t, []string{"a", "h", "t", "k"}, names)
}

func TestIsStatement(t *testing.T) {
	assert.True(t, IsStatement(IntLiteral(p0, 1)))
	assert.True(t, IsStatement(Val(p0, "x", IntLiteral(p0, 1))))
	assert.False(t, IsStatement(NewWildcardPat(p0)))
	assert.False(t, IsStatement(NewMatch(p0, NewWildcardPat(p0), IntLiteral(p0, 1))))
}

func TestPos(t *testing.T) {
	pos := token.Position{File: "a.yaml", Line: 2, Column: 5}
	assert.Equal(t, pos, NewIdent(pos, "x").Pos())
	assert.Equal(t, pos, NewWildcardPat(pos).Pos())
}
