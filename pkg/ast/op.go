package ast

// Op identifies the kind of an AST node.
//
// The set is closed: every Op has exactly one node type, and the type
// resolver and compiler switch over node types exhaustively.
type Op int

// Expression kinds.
const (
	OpIntLiteral Op = iota
	OpRealLiteral
	OpStringLiteral
	OpCharLiteral
	OpBoolLiteral
	OpUnitLiteral
	OpID
	OpIf
	OpLet
	OpFn
	OpApply
	OpAndAlso
	OpOrElse
	OpPlus
	OpMinus
	OpTimes
	OpDivide
	OpMod
	OpCaret
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpTuple
	OpList
	OpRecord
	OpCase
	OpCon
)

// Pattern kinds.
const (
	OpWildcardPat Op = iota + 100
	OpIDPat
	OpIntLiteralPat
	OpRealLiteralPat
	OpStringLiteralPat
	OpCharLiteralPat
	OpBoolLiteralPat
	OpTuplePat
	OpRecordPat
	OpListPat
	OpConsPat
	OpCon0Pat
	OpConPat
)

// Declaration kinds.
const (
	OpValDecl Op = iota + 200
	OpValBind
	OpMatch
)

var opNames = map[Op]string{
	OpIntLiteral:    "int",
	OpRealLiteral:   "real",
	OpStringLiteral: "string",
	OpCharLiteral:   "char",
	OpBoolLiteral:   "bool",
	OpUnitLiteral:   "unit",
	OpID:            "id",
	OpIf:            "if",
	OpLet:           "let",
	OpFn:            "fn",
	OpApply:         "apply",
	OpAndAlso:       "andalso",
	OpOrElse:        "orelse",
	OpPlus:          "plus",
	OpMinus:         "minus",
	OpTimes:         "times",
	OpDivide:        "divide",
	OpMod:           "mod",
	OpCaret:         "caret",
	OpEq:            "eq",
	OpNe:            "ne",
	OpLt:            "lt",
	OpGt:            "gt",
	OpLe:            "le",
	OpGe:            "ge",
	OpTuple:         "tuple",
	OpList:          "list",
	OpRecord:        "record",
	OpCase:          "case",
	OpCon:           "con",

	OpWildcardPat:      "wildcard_pat",
	OpIDPat:            "id_pat",
	OpIntLiteralPat:    "int_pat",
	OpRealLiteralPat:   "real_pat",
	OpStringLiteralPat: "string_pat",
	OpCharLiteralPat:   "char_pat",
	OpBoolLiteralPat:   "bool_pat",
	OpTuplePat:         "tuple_pat",
	OpRecordPat:        "record_pat",
	OpListPat:          "list_pat",
	OpConsPat:          "cons_pat",
	OpCon0Pat:          "con0_pat",
	OpConPat:           "con_pat",

	OpValDecl: "val",
	OpValBind: "val_bind",
	OpMatch:   "match",
}

var opsByName = func() map[string]Op {
	m := make(map[string]Op, len(opNames))
	for op, name := range opNames {
		m[name] = op
	}
	return m
}()

// String returns the interchange name of the op, e.g. "plus" or "tuple_pat".
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "unknown"
}

// LookupOp returns the op with the given interchange name.
func LookupOp(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}

// infixSymbols maps infix ops to their surface syntax.
var infixSymbols = map[Op]string{
	OpAndAlso: "andalso",
	OpOrElse:  "orelse",
	OpPlus:    "+",
	OpMinus:   "-",
	OpTimes:   "*",
	OpDivide:  "/",
	OpMod:     "mod",
	OpCaret:   "^",
	OpEq:      "=",
	OpNe:      "<>",
	OpLt:      "<",
	OpGt:      ">",
	OpLe:      "<=",
	OpGe:      ">=",
}

// IsInfix reports whether op is a binary infix operator.
func (op Op) IsInfix() bool {
	_, ok := infixSymbols[op]
	return ok
}

// Symbol returns the surface syntax of an infix op, or its name otherwise.
func (op Op) Symbol() string {
	if s, ok := infixSymbols[op]; ok {
		return s
	}
	return op.String()
}
