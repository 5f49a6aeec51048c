// Package script decodes programs that the external parser serialized as
// YAML.
//
// Every AST node is a single-key mapping whose key names the node kind, for
// example {plus: [{int: 1}, {id: x}]}. A script is a sequence of statements
// or a stream of documents holding one statement each. Decoded nodes carry
// the line and column of their mapping in the YAML source.
package script

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/token"
)

// Statement keys that are not op names.
const (
	kindVal    = "val"
	kindValRec = "valrec"
)

// Decode reads every statement of a YAML stream. file names the source in
// positions and may be empty.
func Decode(r io.Reader, file string) ([]ast.Node, error) {
	d := &decoder{file: file}
	dec := yaml.NewDecoder(r)
	var stmts []ast.Node
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return stmts, nil
			}
			return nil, &DecodeError{
				Pos:     token.Position{File: file},
				Message: fmt.Sprintf("invalid YAML: %v", err),
			}
		}
		nodes, err := d.document(&doc)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, nodes...)
	}
}

// DecodeString decodes statements from src.
func DecodeString(src, file string) ([]ast.Node, error) {
	return Decode(strings.NewReader(src), file)
}

// ReadFile decodes the statements of the script at path.
func ReadFile(path string) ([]ast.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return Decode(f, path)
}

type decoder struct {
	file string
}

func (d *decoder) pos(n *yaml.Node) token.Position {
	return token.Position{File: d.file, Line: n.Line, Column: n.Column}
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return &DecodeError{Pos: d.pos(n), Message: fmt.Sprintf(format, args...)}
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func (d *decoder) document(doc *yaml.Node) ([]ast.Node, error) {
	n := doc
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, nil
		}
		n = resolve(n.Content[0])
	}
	if isNull(n) {
		return nil, nil
	}
	if n.Kind == yaml.SequenceNode {
		stmts := make([]ast.Node, 0, len(n.Content))
		for _, c := range n.Content {
			s, err := d.statement(c)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
		}
		return stmts, nil
	}
	s, err := d.statement(n)
	if err != nil {
		return nil, err
	}
	return []ast.Node{s}, nil
}

// single splits a node into its kind and value.
func (d *decoder) single(n *yaml.Node, want string) (string, *yaml.Node, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return "", nil, d.errorf(n, "%s must be a mapping with a single key", want)
	}
	key := n.Content[0]
	if key.Kind != yaml.ScalarNode {
		return "", nil, d.errorf(key, "%s kind must be a scalar", want)
	}
	return key.Value, resolve(n.Content[1]), nil
}

// items returns the elements of a sequence node. If count is not negative
// the sequence must have exactly that many elements.
func (d *decoder) items(n *yaml.Node, what string, count int) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "%s must be a sequence", what)
	}
	if count >= 0 && len(n.Content) != count {
		return nil, d.errorf(n, "%s must have %d elements, got %d", what, count, len(n.Content))
	}
	items := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		items[i] = resolve(c)
	}
	return items, nil
}

// fields returns the values of a mapping node by key. Every key in required
// must be present and no other key is allowed.
func (d *decoder) fields(n *yaml.Node, what string, required ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "%s must be a mapping", what)
	}
	known := make(map[string]bool, len(required))
	for _, k := range required {
		known[k] = true
	}
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if !known[key.Value] {
			return nil, d.errorf(key, "unknown field %q in %s", key.Value, what)
		}
		m[key.Value] = resolve(n.Content[i+1])
	}
	for _, k := range required {
		if _, ok := m[k]; !ok {
			return nil, d.errorf(n, "%s is missing %q", what, k)
		}
	}
	return m, nil
}

// labelled returns the label/value pairs of a record mapping in source
// order.
func (d *decoder) labelled(n *yaml.Node, what string) ([]string, []*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nil, d.errorf(n, "%s must be a mapping", what)
	}
	seen := make(map[string]bool)
	var labels []string
	var values []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		if seen[key.Value] {
			return nil, nil, d.errorf(key, "duplicate label %q in %s", key.Value, what)
		}
		seen[key.Value] = true
		labels = append(labels, key.Value)
		values = append(values, resolve(n.Content[i+1]))
	}
	return labels, values, nil
}

func (d *decoder) scalar(n *yaml.Node, what string, out any) error {
	if n.Kind != yaml.ScalarNode {
		return d.errorf(n, "%s must be a scalar", what)
	}
	if err := n.Decode(out); err != nil {
		return d.errorf(n, "invalid %s: %v", what, err)
	}
	return nil
}

func (d *decoder) name(n *yaml.Node, what string) (string, error) {
	var s string
	if err := d.scalar(n, what, &s); err != nil {
		return "", err
	}
	if s == "" {
		return "", d.errorf(n, "%s must not be empty", what)
	}
	return s, nil
}

func (d *decoder) char(n *yaml.Node) (rune, error) {
	var s string
	if err := d.scalar(n, "char", &s); err != nil {
		return 0, err
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, d.errorf(n, "char must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// literal decodes the value of a literal expression or pattern of kind op.
func (d *decoder) literal(op ast.Op, n *yaml.Node) (any, error) {
	switch op {
	case ast.OpIntLiteral, ast.OpIntLiteralPat:
		var i int
		err := d.scalar(n, "int", &i)
		return i, err
	case ast.OpRealLiteral, ast.OpRealLiteralPat:
		var f float64
		err := d.scalar(n, "real", &f)
		return f, err
	case ast.OpStringLiteral, ast.OpStringLiteralPat:
		var s string
		err := d.scalar(n, "string", &s)
		return s, err
	case ast.OpCharLiteral, ast.OpCharLiteralPat:
		return d.char(n)
	case ast.OpBoolLiteral, ast.OpBoolLiteralPat:
		var b bool
		err := d.scalar(n, "bool", &b)
		return b, err
	}
	return nil, d.errorf(n, "%s is not a literal", op)
}

func (d *decoder) statement(n *yaml.Node) (ast.Node, error) {
	kind, value, err := d.single(n, "statement")
	if err != nil {
		return nil, err
	}
	switch kind {
	case kindVal:
		return d.valDecl(resolve(n), value, false)
	case kindValRec:
		return d.valDecl(resolve(n), value, true)
	}
	return d.exp(n)
}

// valDecl decodes [[pat, exp], ...].
func (d *decoder) valDecl(n, value *yaml.Node, rec bool) (*ast.ValDecl, error) {
	pairs, err := d.items(value, "val", -1)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, d.errorf(value, "val must bind at least one pattern")
	}
	binds := make([]*ast.ValBind, len(pairs))
	for i, pair := range pairs {
		pat, exp, err := d.patExp(pair, "val binding")
		if err != nil {
			return nil, err
		}
		binds[i] = ast.NewValBind(d.pos(pair), pat, exp)
	}
	return ast.NewValDecl(d.pos(n), rec, binds...), nil
}

func (d *decoder) patExp(n *yaml.Node, what string) (ast.Pat, ast.Exp, error) {
	items, err := d.items(n, what, 2)
	if err != nil {
		return nil, nil, err
	}
	pat, err := d.pat(items[0])
	if err != nil {
		return nil, nil, err
	}
	exp, err := d.exp(items[1])
	if err != nil {
		return nil, nil, err
	}
	return pat, exp, nil
}

// matches decodes the arms of a fn or case.
func (d *decoder) matches(n *yaml.Node, what string) ([]*ast.Match, error) {
	arms, err := d.items(n, what, -1)
	if err != nil {
		return nil, err
	}
	if len(arms) == 0 {
		return nil, d.errorf(n, "%s must have at least one arm", what)
	}
	matches := make([]*ast.Match, len(arms))
	for i, arm := range arms {
		pat, exp, err := d.patExp(arm, what+" arm")
		if err != nil {
			return nil, err
		}
		matches[i] = ast.NewMatch(d.pos(arm), pat, exp)
	}
	return matches, nil
}

func (d *decoder) exps(n *yaml.Node, what string, count int) ([]ast.Exp, error) {
	items, err := d.items(n, what, count)
	if err != nil {
		return nil, err
	}
	exps := make([]ast.Exp, len(items))
	for i, item := range items {
		if exps[i], err = d.exp(item); err != nil {
			return nil, err
		}
	}
	return exps, nil
}

func (d *decoder) exp(n *yaml.Node) (ast.Exp, error) {
	kind, v, err := d.single(n, "expression")
	if err != nil {
		return nil, err
	}
	pos := d.pos(resolve(n))
	op, ok := ast.LookupOp(kind)
	if !ok || op >= ast.OpWildcardPat {
		return nil, &UnknownKindError{Pos: pos, Kind: kind, Want: "expression"}
	}
	if op.IsInfix() {
		args, err := d.exps(v, kind, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewInfix(pos, op, args[0], args[1]), nil
	}

	switch op {
	case ast.OpIntLiteral, ast.OpRealLiteral, ast.OpStringLiteral, ast.OpCharLiteral, ast.OpBoolLiteral:
		value, err := d.literal(op, v)
		if err != nil {
			return nil, err
		}
		return &ast.Literal{Loc: ast.Loc{At: pos}, Kind: op, Value: value}, nil

	case ast.OpUnitLiteral:
		return ast.UnitLiteral(pos), nil

	case ast.OpID:
		name, err := d.name(v, "identifier")
		if err != nil {
			return nil, err
		}
		return ast.NewIdent(pos, name), nil

	case ast.OpIf:
		args, err := d.exps(v, kind, 3)
		if err != nil {
			return nil, err
		}
		return ast.NewIf(pos, args[0], args[1], args[2]), nil

	case ast.OpApply:
		args, err := d.exps(v, kind, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewApply(pos, args[0], args[1]), nil

	case ast.OpFn:
		matches, err := d.matches(v, kind)
		if err != nil {
			return nil, err
		}
		return ast.NewFn(pos, matches...), nil

	case ast.OpLet:
		f, err := d.fields(v, kind, "decls", "in")
		if err != nil {
			return nil, err
		}
		items, err := d.items(f["decls"], "let decls", -1)
		if err != nil {
			return nil, err
		}
		decls := make([]*ast.ValDecl, len(items))
		for i, item := range items {
			stmt, err := d.statement(item)
			if err != nil {
				return nil, err
			}
			decl, ok := stmt.(*ast.ValDecl)
			if !ok {
				return nil, d.errorf(item, "let decls must be val declarations")
			}
			decls[i] = decl
		}
		body, err := d.exp(f["in"])
		if err != nil {
			return nil, err
		}
		return ast.NewLet(pos, decls, body), nil

	case ast.OpTuple:
		args, err := d.exps(v, kind, -1)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return nil, d.errorf(v, "tuple must not have exactly one element")
		}
		return ast.NewTuple(pos, args...), nil

	case ast.OpList:
		if isNull(v) {
			return ast.NewList(pos), nil
		}
		args, err := d.exps(v, kind, -1)
		if err != nil {
			return nil, err
		}
		return ast.NewList(pos, args...), nil

	case ast.OpRecord:
		if isNull(v) {
			return ast.NewRecord(pos), nil
		}
		labels, values, err := d.labelled(v, kind)
		if err != nil {
			return nil, err
		}
		fields := make([]ast.Field, len(labels))
		for i, label := range labels {
			exp, err := d.exp(values[i])
			if err != nil {
				return nil, err
			}
			fields[i] = ast.Field{Label: label, Exp: exp}
		}
		return ast.NewRecord(pos, fields...), nil

	case ast.OpCase:
		f, err := d.fields(v, kind, "of", "arms")
		if err != nil {
			return nil, err
		}
		exp, err := d.exp(f["of"])
		if err != nil {
			return nil, err
		}
		matches, err := d.matches(f["arms"], kind)
		if err != nil {
			return nil, err
		}
		return ast.NewCase(pos, exp, matches...), nil

	case ast.OpCon:
		if v.Kind == yaml.ScalarNode {
			name, err := d.name(v, "constructor")
			if err != nil {
				return nil, err
			}
			return ast.NewCon(pos, name, nil), nil
		}
		items, err := d.items(v, kind, 2)
		if err != nil {
			return nil, err
		}
		name, err := d.name(items[0], "constructor")
		if err != nil {
			return nil, err
		}
		arg, err := d.exp(items[1])
		if err != nil {
			return nil, err
		}
		return ast.NewCon(pos, name, arg), nil
	}
	return nil, &UnknownKindError{Pos: pos, Kind: kind, Want: "expression"}
}

func (d *decoder) pats(n *yaml.Node, what string, count int) ([]ast.Pat, error) {
	items, err := d.items(n, what, count)
	if err != nil {
		return nil, err
	}
	pats := make([]ast.Pat, len(items))
	for i, item := range items {
		if pats[i], err = d.pat(item); err != nil {
			return nil, err
		}
	}
	return pats, nil
}

func (d *decoder) pat(n *yaml.Node) (ast.Pat, error) {
	kind, v, err := d.single(n, "pattern")
	if err != nil {
		return nil, err
	}
	pos := d.pos(resolve(n))
	op, ok := ast.LookupOp(kind)
	if !ok || op < ast.OpWildcardPat || op >= ast.OpValDecl {
		return nil, &UnknownKindError{Pos: pos, Kind: kind, Want: "pattern"}
	}

	switch op {
	case ast.OpWildcardPat:
		return ast.NewWildcardPat(pos), nil

	case ast.OpIDPat:
		name, err := d.name(v, "identifier")
		if err != nil {
			return nil, err
		}
		return ast.NewIDPat(pos, name), nil

	case ast.OpIntLiteralPat, ast.OpRealLiteralPat, ast.OpStringLiteralPat, ast.OpCharLiteralPat, ast.OpBoolLiteralPat:
		value, err := d.literal(op, v)
		if err != nil {
			return nil, err
		}
		return ast.NewLiteralPat(pos, op, value), nil

	case ast.OpTuplePat:
		args, err := d.pats(v, kind, -1)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return nil, d.errorf(v, "tuple_pat must not have exactly one element")
		}
		return ast.NewTuplePat(pos, args...), nil

	case ast.OpListPat:
		if isNull(v) {
			return ast.NewListPat(pos), nil
		}
		args, err := d.pats(v, kind, -1)
		if err != nil {
			return nil, err
		}
		return ast.NewListPat(pos, args...), nil

	case ast.OpRecordPat:
		if isNull(v) {
			return ast.NewRecordPat(pos), nil
		}
		labels, values, err := d.labelled(v, kind)
		if err != nil {
			return nil, err
		}
		fields := make([]ast.PatField, len(labels))
		for i, label := range labels {
			p, err := d.pat(values[i])
			if err != nil {
				return nil, err
			}
			fields[i] = ast.PatField{Label: label, Pat: p}
		}
		return ast.NewRecordPat(pos, fields...), nil

	case ast.OpConsPat:
		args, err := d.pats(v, kind, 2)
		if err != nil {
			return nil, err
		}
		return ast.NewConsPat(pos, args[0], args[1]), nil

	case ast.OpCon0Pat:
		name, err := d.name(v, "constructor")
		if err != nil {
			return nil, err
		}
		return ast.NewCon0Pat(pos, name), nil

	case ast.OpConPat:
		items, err := d.items(v, kind, 2)
		if err != nil {
			return nil, err
		}
		name, err := d.name(items[0], "constructor")
		if err != nil {
			return nil, err
		}
		p, err := d.pat(items[1])
		if err != nil {
			return nil, err
		}
		return ast.NewConPat(pos, name, p), nil
	}
	return nil, &UnknownKindError{Pos: pos, Kind: kind, Want: "pattern"}
}
