package ast

// ---------- Patterns ----------

// WildcardPat is "_".
type WildcardPat struct {
	Loc
}

func (*WildcardPat) patNode() {}

// Op implements Node.
func (*WildcardPat) Op() Op { return OpWildcardPat }

// IDPat binds the matched value to Name.
type IDPat struct {
	Loc
	Name string
}

func (*IDPat) patNode() {}

// Op implements Node.
func (*IDPat) Op() Op { return OpIDPat }

// LiteralPat matches a constant. Value has the same representation as in
// Literal.
type LiteralPat struct {
	Loc
	Kind  Op
	Value any
}

func (*LiteralPat) patNode() {}

// Op implements Node.
func (p *LiteralPat) Op() Op { return p.Kind }

// TuplePat is "(p1, p2, ...)".
type TuplePat struct {
	Loc
	Args []Pat
}

func (*TuplePat) patNode() {}

// Op implements Node.
func (*TuplePat) Op() Op { return OpTuplePat }

// PatField is one labeled component of a record pattern.
type PatField struct {
	Label string
	Pat   Pat
}

// RecordPat is "{a = p1, b = p2}". Fields are kept sorted by label.
type RecordPat struct {
	Loc
	Fields []PatField
}

func (*RecordPat) patNode() {}

// Op implements Node.
func (*RecordPat) Op() Op { return OpRecordPat }

// Labels returns the pattern's labels in order.
func (p *RecordPat) Labels() []string {
	labels := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		labels[i] = f.Label
	}
	return labels
}

// ListPat is "[p1, p2, ...]" and matches lists of exactly that length.
type ListPat struct {
	Loc
	Args []Pat
}

func (*ListPat) patNode() {}

// Op implements Node.
func (*ListPat) Op() Op { return OpListPat }

// ConsPat is "head :: tail".
type ConsPat struct {
	Loc
	Head Pat
	Tail Pat
}

func (*ConsPat) patNode() {}

// Op implements Node.
func (*ConsPat) Op() Op { return OpConsPat }

// Con0Pat matches a nullary constructor such as NONE.
type Con0Pat struct {
	Loc
	Name string
}

func (*Con0Pat) patNode() {}

// Op implements Node.
func (*Con0Pat) Op() Op { return OpCon0Pat }

// ConPat matches a unary constructor and its payload, e.g. "SOME x".
type ConPat struct {
	Loc
	Name string
	Pat  Pat
}

func (*ConPat) patNode() {}

// Op implements Node.
func (*ConPat) Op() Op { return OpConPat }

// IdentifierCount returns the number of identifier patterns in p.
func IdentifierCount(p Pat) int {
	n := 0
	VisitIdentifiers(p, func(*IDPat) { n++ })
	return n
}

// VisitIdentifiers calls fn for each identifier pattern in p, left to right.
func VisitIdentifiers(p Pat, fn func(*IDPat)) {
	switch p := p.(type) {
	case *IDPat:
		fn(p)
	case *TuplePat:
		for _, a := range p.Args {
			VisitIdentifiers(a, fn)
		}
	case *ListPat:
		for _, a := range p.Args {
			VisitIdentifiers(a, fn)
		}
	case *RecordPat:
		for _, f := range p.Fields {
			VisitIdentifiers(f.Pat, fn)
		}
	case *ConsPat:
		VisitIdentifiers(p.Head, fn)
		VisitIdentifiers(p.Tail, fn)
	case *ConPat:
		VisitIdentifiers(p.Pat, fn)
	}
}
