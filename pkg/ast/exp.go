package ast

// ---------- Expressions ----------

// Literal is a constant of a primitive type. Value holds an int, float64,
// string, rune or bool according to Kind; it is nil for unit.
type Literal struct {
	Loc
	Kind  Op
	Value any
}

func (*Literal) expNode() {}

// Op implements Node.
func (l *Literal) Op() Op { return l.Kind }

// Ident is a reference to a named value.
type Ident struct {
	Loc
	Name string
}

func (*Ident) expNode() {}

// Op implements Node.
func (*Ident) Op() Op { return OpID }

// If is a conditional expression.
type If struct {
	Loc
	Cond    Exp
	IfTrue  Exp
	IfFalse Exp
}

func (*If) expNode() {}

// Op implements Node.
func (*If) Op() Op { return OpIf }

// Let is "let decls in body end".
type Let struct {
	Loc
	Decls []*ValDecl
	Body  Exp
}

func (*Let) expNode() {}

// Op implements Node.
func (*Let) Op() Op { return OpLet }

// Fn is a function literal with one or more match arms.
type Fn struct {
	Loc
	Matches []*Match
}

func (*Fn) expNode() {}

// Op implements Node.
func (*Fn) Op() Op { return OpFn }

// Apply is function application.
type Apply struct {
	Loc
	Fn  Exp
	Arg Exp
}

func (*Apply) expNode() {}

// Op implements Node.
func (*Apply) Op() Op { return OpApply }

// InfixCall is a binary operator application such as "a + b".
type InfixCall struct {
	Loc
	Kind  Op
	Left  Exp
	Right Exp
}

func (*InfixCall) expNode() {}

// Op implements Node.
func (c *InfixCall) Op() Op { return c.Kind }

// Tuple is "(e1, e2, ...)".
type Tuple struct {
	Loc
	Args []Exp
}

func (*Tuple) expNode() {}

// Op implements Node.
func (*Tuple) Op() Op { return OpTuple }

// List is "[e1, e2, ...]".
type List struct {
	Loc
	Args []Exp
}

func (*List) expNode() {}

// Op implements Node.
func (*List) Op() Op { return OpList }

// Field is one labeled component of a record expression.
type Field struct {
	Label string
	Exp   Exp
}

// Record is "{a = e1, b = e2}". Fields are kept sorted by label.
type Record struct {
	Loc
	Fields []Field
}

func (*Record) expNode() {}

// Op implements Node.
func (*Record) Op() Op { return OpRecord }

// Labels returns the record's labels in order.
func (r *Record) Labels() []string {
	labels := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		labels[i] = f.Label
	}
	return labels
}

// Case is "case e of p1 => e1 | p2 => e2".
type Case struct {
	Loc
	Exp     Exp
	Matches []*Match
}

func (*Case) expNode() {}

// Op implements Node.
func (*Case) Op() Op { return OpCase }

// Con is a datatype constructor, applied to Arg when Arg is not nil.
type Con struct {
	Loc
	Name string
	Arg  Exp
}

func (*Con) expNode() {}

// Op implements Node.
func (*Con) Op() Op { return OpCon }

// ---------- Declarations ----------

// Match is one "pat => exp" arm of a fn or case.
type Match struct {
	Loc
	Pat Pat
	Exp Exp
}

// Op implements Node.
func (*Match) Op() Op { return OpMatch }

// ValBind is one "pat = exp" binding of a val declaration.
type ValBind struct {
	Loc
	Pat Pat
	Exp Exp
}

// Op implements Node.
func (*ValBind) Op() Op { return OpValBind }

// ValDecl is "val p1 = e1 and p2 = e2", or "val rec ..." when Rec is set.
type ValDecl struct {
	Loc
	Rec   bool
	Binds []*ValBind
}

func (*ValDecl) declNode() {}

// Op implements Node.
func (*ValDecl) Op() Op { return OpValDecl }
