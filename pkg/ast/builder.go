package ast

import (
	"sort"

	"github.com/leapstack-labs/leapml/pkg/token"
)

// IntLiteral returns an int constant.
func IntLiteral(pos token.Position, v int) *Literal {
	return &Literal{Loc: Loc{At: pos}, Kind: OpIntLiteral, Value: v}
}

// RealLiteral returns a real constant.
func RealLiteral(pos token.Position, v float64) *Literal {
	return &Literal{Loc: Loc{At: pos}, Kind: OpRealLiteral, Value: v}
}

// StringLiteral returns a string constant.
func StringLiteral(pos token.Position, v string) *Literal {
	return &Literal{Loc: Loc{At: pos}, Kind: OpStringLiteral, Value: v}
}

// CharLiteral returns a char constant.
func CharLiteral(pos token.Position, v rune) *Literal {
	return &Literal{Loc: Loc{At: pos}, Kind: OpCharLiteral, Value: v}
}

// BoolLiteral returns a bool constant.
func BoolLiteral(pos token.Position, v bool) *Literal {
	return &Literal{Loc: Loc{At: pos}, Kind: OpBoolLiteral, Value: v}
}

// UnitLiteral returns "()".
func UnitLiteral(pos token.Position) *Literal {
	return &Literal{Loc: Loc{At: pos}, Kind: OpUnitLiteral}
}

// NewIdent returns a reference to name.
func NewIdent(pos token.Position, name string) *Ident {
	return &Ident{Loc: Loc{At: pos}, Name: name}
}

// NewIf returns "if cond then t else f".
func NewIf(pos token.Position, cond, t, f Exp) *If {
	return &If{Loc: Loc{At: pos}, Cond: cond, IfTrue: t, IfFalse: f}
}

// NewLet returns "let decls in body end".
func NewLet(pos token.Position, decls []*ValDecl, body Exp) *Let {
	return &Let{Loc: Loc{At: pos}, Decls: decls, Body: body}
}

// NewFn returns a function literal.
func NewFn(pos token.Position, matches ...*Match) *Fn {
	return &Fn{Loc: Loc{At: pos}, Matches: matches}
}

// NewApply returns "fn arg".
func NewApply(pos token.Position, fn, arg Exp) *Apply {
	return &Apply{Loc: Loc{At: pos}, Fn: fn, Arg: arg}
}

// NewInfix returns a binary operator call. op must satisfy Op.IsInfix.
func NewInfix(pos token.Position, op Op, left, right Exp) *InfixCall {
	return &InfixCall{Loc: Loc{At: pos}, Kind: op, Left: left, Right: right}
}

// NewTuple returns a tuple expression.
func NewTuple(pos token.Position, args ...Exp) *Tuple {
	return &Tuple{Loc: Loc{At: pos}, Args: args}
}

// NewList returns a list expression.
func NewList(pos token.Position, args ...Exp) *List {
	return &List{Loc: Loc{At: pos}, Args: args}
}

// NewRecord returns a record expression with its fields sorted by label.
func NewRecord(pos token.Position, fields ...Field) *Record {
	sorted := append([]Field(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	return &Record{Loc: Loc{At: pos}, Fields: sorted}
}

// NewCase returns a case expression.
func NewCase(pos token.Position, exp Exp, matches ...*Match) *Case {
	return &Case{Loc: Loc{At: pos}, Exp: exp, Matches: matches}
}

// NewCon returns a constructor expression; arg is nil for nullary
// constructors.
func NewCon(pos token.Position, name string, arg Exp) *Con {
	return &Con{Loc: Loc{At: pos}, Name: name, Arg: arg}
}

// NewMatch returns "pat => exp".
func NewMatch(pos token.Position, pat Pat, exp Exp) *Match {
	return &Match{Loc: Loc{At: pos}, Pat: pat, Exp: exp}
}

// NewValBind returns "pat = exp".
func NewValBind(pos token.Position, pat Pat, exp Exp) *ValBind {
	return &ValBind{Loc: Loc{At: pos}, Pat: pat, Exp: exp}
}

// NewValDecl returns a val declaration.
func NewValDecl(pos token.Position, rec bool, binds ...*ValBind) *ValDecl {
	return &ValDecl{Loc: Loc{At: pos}, Rec: rec, Binds: binds}
}

// Val is shorthand for a non-recursive declaration of a single name.
func Val(pos token.Position, name string, exp Exp) *ValDecl {
	return NewValDecl(pos, false, NewValBind(pos, NewIDPat(pos, name), exp))
}

// NewWildcardPat returns "_".
func NewWildcardPat(pos token.Position) *WildcardPat {
	return &WildcardPat{Loc: Loc{At: pos}}
}

// NewIDPat returns an identifier pattern.
func NewIDPat(pos token.Position, name string) *IDPat {
	return &IDPat{Loc: Loc{At: pos}, Name: name}
}

// NewLiteralPat returns a literal pattern. kind is one of the *LiteralPat ops.
func NewLiteralPat(pos token.Position, kind Op, value any) *LiteralPat {
	return &LiteralPat{Loc: Loc{At: pos}, Kind: kind, Value: value}
}

// NewTuplePat returns a tuple pattern.
func NewTuplePat(pos token.Position, args ...Pat) *TuplePat {
	return &TuplePat{Loc: Loc{At: pos}, Args: args}
}

// NewRecordPat returns a record pattern with its fields sorted by label.
func NewRecordPat(pos token.Position, fields ...PatField) *RecordPat {
	sorted := append([]PatField(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })
	return &RecordPat{Loc: Loc{At: pos}, Fields: sorted}
}

// NewListPat returns a fixed-length list pattern.
func NewListPat(pos token.Position, args ...Pat) *ListPat {
	return &ListPat{Loc: Loc{At: pos}, Args: args}
}

// NewConsPat returns "head :: tail".
func NewConsPat(pos token.Position, head, tail Pat) *ConsPat {
	return &ConsPat{Loc: Loc{At: pos}, Head: head, Tail: tail}
}

// NewCon0Pat returns a nullary constructor pattern.
func NewCon0Pat(pos token.Position, name string) *Con0Pat {
	return &Con0Pat{Loc: Loc{At: pos}, Name: name}
}

// NewConPat returns a unary constructor pattern.
func NewConPat(pos token.Position, name string, pat Pat) *ConPat {
	return &ConPat{Loc: Loc{At: pos}, Name: name, Pat: pat}
}
