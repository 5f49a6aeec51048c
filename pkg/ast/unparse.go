package ast

import (
	"math"
	"strconv"
	"strings"
)

// FormatInt formats an int the way ML source writes it, with "~" for minus.
func FormatInt(v int) string {
	if v < 0 {
		return "~" + strconv.FormatUint(uint64(-(v+1))+1, 10)
	}
	return strconv.Itoa(v)
}

// FormatReal formats a real so that it always reads back as a real: "3.0",
// "~0.5", "1E10", "inf".
func FormatReal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "~inf"
	}
	s := strconv.FormatFloat(v, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}
	s = strings.Replace(s, "E+", "E", 1)
	return strings.ReplaceAll(s, "-", "~")
}

// FormatString quotes s with ML escapes.
func FormatString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		writeEscaped(&b, r)
	}
	b.WriteByte('"')
	return b.String()
}

// FormatChar formats a char literal, e.g. #"a".
func FormatChar(r rune) string {
	var b strings.Builder
	b.WriteString(`#"`)
	writeEscaped(&b, r)
	b.WriteByte('"')
	return b.String()
}

func writeEscaped(b *strings.Builder, r rune) {
	switch r {
	case '"':
		b.WriteString(`\"`)
	case '\\':
		b.WriteString(`\\`)
	case '\n':
		b.WriteString(`\n`)
	case '\t':
		b.WriteString(`\t`)
	default:
		if r < 0x20 || r == 0x7f {
			b.WriteString(`\` + strconv.Itoa(int(r)))
			return
		}
		b.WriteRune(r)
	}
}

func formatLiteral(kind Op, v any) string {
	switch kind {
	case OpIntLiteral, OpIntLiteralPat:
		if i, ok := v.(int); ok {
			return FormatInt(i)
		}
	case OpRealLiteral, OpRealLiteralPat:
		if f, ok := v.(float64); ok {
			return FormatReal(f)
		}
	case OpStringLiteral, OpStringLiteralPat:
		if s, ok := v.(string); ok {
			return FormatString(s)
		}
	case OpCharLiteral, OpCharLiteralPat:
		if r, ok := v.(rune); ok {
			return FormatChar(r)
		}
	case OpBoolLiteral, OpBoolLiteralPat:
		if bv, ok := v.(bool); ok {
			return strconv.FormatBool(bv)
		}
	case OpUnitLiteral:
		return "()"
	}
	return "?"
}

// operand wraps e in parentheses if it would not parse back as an operand
// of an infix operator.
func operand(e Exp) string {
	switch e.(type) {
	case *InfixCall, *If, *Fn, *Case:
		return "(" + e.String() + ")"
	}
	return e.String()
}

// atomic wraps e in parentheses unless it is an atomic expression.
func atomic(e Exp) string {
	switch e := e.(type) {
	case *Literal, *Ident, *Tuple, *List, *Record, *Let:
		return e.String()
	case *Con:
		if e.Arg == nil {
			return e.String()
		}
	}
	return "(" + e.String() + ")"
}

func joinExps(exps []Exp) string {
	parts := make([]string, len(exps))
	for i, e := range exps {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func joinPats(pats []Pat) string {
	parts := make([]string, len(pats))
	for i, p := range pats {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

func joinMatches(matches []*Match) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = m.String()
	}
	return strings.Join(parts, " | ")
}

func (l *Literal) String() string { return formatLiteral(l.Kind, l.Value) }

func (i *Ident) String() string { return i.Name }

func (e *If) String() string {
	return "if " + e.Cond.String() + " then " + e.IfTrue.String() + " else " + e.IfFalse.String()
}

func (e *Let) String() string {
	var b strings.Builder
	b.WriteString("let")
	for _, d := range e.Decls {
		b.WriteString(" ")
		b.WriteString(d.String())
	}
	b.WriteString(" in ")
	b.WriteString(e.Body.String())
	b.WriteString(" end")
	return b.String()
}

func (e *Fn) String() string { return "fn " + joinMatches(e.Matches) }

func (e *Apply) String() string {
	fn := e.Fn.String()
	switch e.Fn.(type) {
	case *Apply, *Ident, *Let, *Tuple:
	default:
		fn = atomic(e.Fn)
	}
	return fn + " " + atomic(e.Arg)
}

func (e *InfixCall) String() string {
	return operand(e.Left) + " " + e.Kind.Symbol() + " " + operand(e.Right)
}

func (e *Tuple) String() string { return "(" + joinExps(e.Args) + ")" }

func (e *List) String() string { return "[" + joinExps(e.Args) + "]" }

func (e *Record) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Label + " = " + f.Exp.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (e *Case) String() string {
	return "case " + e.Exp.String() + " of " + joinMatches(e.Matches)
}

func (e *Con) String() string {
	if e.Arg == nil {
		return e.Name
	}
	return e.Name + " " + atomic(e.Arg)
}

func (m *Match) String() string { return m.Pat.String() + " => " + m.Exp.String() }

func (v *ValBind) String() string { return v.Pat.String() + " = " + v.Exp.String() }

func (d *ValDecl) String() string {
	parts := make([]string, len(d.Binds))
	for i, bind := range d.Binds {
		parts[i] = bind.String()
	}
	prefix := "val "
	if d.Rec {
		prefix = "val rec "
	}
	return prefix + strings.Join(parts, " and ")
}

func (*WildcardPat) String() string { return "_" }

func (p *IDPat) String() string { return p.Name }

func (p *LiteralPat) String() string { return formatLiteral(p.Kind, p.Value) }

func (p *TuplePat) String() string { return "(" + joinPats(p.Args) + ")" }

func (p *RecordPat) String() string {
	parts := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		parts[i] = f.Label + " = " + f.Pat.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (p *ListPat) String() string { return "[" + joinPats(p.Args) + "]" }

func (p *ConsPat) String() string {
	head := p.Head.String()
	switch p.Head.(type) {
	case *ConsPat, *ConPat:
		head = "(" + head + ")"
	}
	return head + " :: " + p.Tail.String()
}

func (p *Con0Pat) String() string { return p.Name }

func (p *ConPat) String() string {
	switch p.Pat.(type) {
	case *ConsPat, *ConPat:
		return p.Name + " (" + p.Pat.String() + ")"
	}
	return p.Name + " " + p.Pat.String()
}
