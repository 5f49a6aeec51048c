package script

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/token"
)

func unparse(nodes []ast.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.String()
	}
	return out
}

func TestDecode_Statements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"plus", `{plus: [{int: 1}, {int: 2}]}`, "1 + 2"},
		{"negative int", `{int: -3}`, "~3"},
		{"real", `{real: 1.5}`, "1.5"},
		{"string", `{string: "a b"}`, `"a b"`},
		{"char", `{char: c}`, `#"c"`},
		{"bool", `{bool: false}`, "false"},
		{"unit", `{unit: ~}`, "()"},
		{"comparison", `{le: [{id: x}, {int: 2}]}`, "x <= 2"},
		{"andalso", `{andalso: [{id: a}, {id: b}]}`, "a andalso b"},
		{"if", `{if: [{bool: true}, {int: 1}, {int: 2}]}`, "if true then 1 else 2"},
		{"apply", `{apply: [{id: f}, {int: 1}]}`, "f 1"},
		{"fn", `{fn: [[{id_pat: x}, {id: x}]]}`, "fn x => x"},
		{"fn arms", `{fn: [[{int_pat: 0}, {int: 1}], [{wildcard_pat: ~}, {int: 2}]]}`, "fn 0 => 1 | _ => 2"},
		{"let", `{let: {decls: [{val: [[{id_pat: x}, {int: 3}]]}], in: {plus: [{id: x}, {id: x}]}}}`,
			"let val x = 3 in x + x end"},
		{"tuple", `{tuple: [{int: 1}, {int: 2}]}`, "(1, 2)"},
		{"empty list", `{list: []}`, "[]"},
		{"record", `{record: {b: {int: 2}, a: {int: 1}}}`, "{a = 1, b = 2}"},
		{"case", `{case: {of: {id: x}, arms: [[{con0_pat: NONE}, {int: 1}], [{con_pat: [SOME, {id_pat: y}]}, {id: y}]]}}`,
			"case x of NONE => 1 | SOME y => y"},
		{"nullary con", `{con: NONE}`, "NONE"},
		{"con", `{con: [SOME, {int: 1}]}`, "SOME 1"},
		{"val and", `{val: [[{id_pat: a}, {int: 1}], [{tuple_pat: [{id_pat: b}, {wildcard_pat: ~}]}, {tuple: [{int: 1}, {int: 2}]}]]}`,
			"val a = 1 and (b, _) = (1, 2)"},
		{"valrec", `{valrec: [[{id_pat: f}, {fn: [[{wildcard_pat: ~}, {int: 1}]]}]]}`, "val rec f = fn _ => 1"},
		{"cons pat", `{val: [[{cons_pat: [{id_pat: h}, {id_pat: t}]}, {list: [{int: 1}]}]]}`, "val h :: t = [1]"},
		{"record pat", `{val: [[{record_pat: {y: {wildcard_pat: ~}, x: {id_pat: x}}}, {id: r}]]}`, "val {x = x, y = _} = r"},
		{"list pat", `{val: [[{list_pat: [{bool_pat: true}, {char_pat: z}]}, {id: l}]]}`, `val [true, #"z"] = l`},
		{"string and real pats", `{fn: [[{tuple_pat: [{string_pat: s}, {real_pat: 2.5}]}, {int: 1}]]}`, `fn ("s", 2.5) => 1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := DecodeString(tt.src, "")
			require.NoError(t, err)
			require.Len(t, nodes, 1)
			assert.Equal(t, tt.want, nodes[0].String())
			assert.True(t, ast.IsStatement(nodes[0]))
		})
	}
}

func TestDecode_ValRecFlag(t *testing.T) {
	nodes, err := DecodeString(`{valrec: [[{id_pat: f}, {fn: [[{id_pat: x}, {id: x}]]}]]}`, "")
	require.NoError(t, err)
	decl, ok := nodes[0].(*ast.ValDecl)
	require.True(t, ok)
	assert.True(t, decl.Rec)
	require.Len(t, decl.Binds, 1)
	_, isFn := decl.Binds[0].Exp.(*ast.Fn)
	assert.True(t, isFn)
}

func TestDecode_SequenceAndStream(t *testing.T) {
	t.Run("sequence", func(t *testing.T) {
		src := `
- {val: [[{id_pat: x}, {int: 1}]]}
- {plus: [{id: x}, {int: 1}]}
`
		nodes, err := DecodeString(src, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"val x = 1", "x + 1"}, unparse(nodes))
	})

	t.Run("stream", func(t *testing.T) {
		src := "{int: 1}\n---\n{int: 2}\n---\n- {int: 3}\n- {int: 4}\n"
		nodes, err := DecodeString(src, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3", "4"}, unparse(nodes))
	})

	t.Run("empty", func(t *testing.T) {
		nodes, err := DecodeString("", "")
		require.NoError(t, err)
		assert.Empty(t, nodes)

		nodes, err = DecodeString("---\n~\n", "")
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("anchors", func(t *testing.T) {
		src := `
- {val: [[{id_pat: one}, &one {int: 1}]]}
- {plus: [*one, *one]}
`
		nodes, err := DecodeString(src, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"val one = 1", "1 + 1"}, unparse(nodes))
	})
}

func TestDecode_Positions(t *testing.T) {
	src := `- plus:
    - int: 1
    - id: x
`
	nodes, err := DecodeString(src, "a.yaml")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	call, ok := nodes[0].(*ast.InfixCall)
	require.True(t, ok)
	assert.Equal(t, token.Position{File: "a.yaml", Line: 1, Column: 3}, call.Pos())
	assert.Equal(t, token.Position{File: "a.yaml", Line: 2, Column: 7}, call.Left.Pos())
	assert.Equal(t, token.Position{File: "a.yaml", Line: 3, Column: 7}, call.Right.Pos())
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains string
	}{
		{"invalid yaml", "{int: [1", "invalid YAML"},
		{"not a mapping", "- 3", "must be a mapping with a single key"},
		{"two keys", "{int: 1, id: x}", "must be a mapping with a single key"},
		{"infix arity", "{plus: [{int: 1}]}", "must have 2 elements"},
		{"bad int", "{int: abc}", "invalid int"},
		{"long char", "{char: ab}", "single character"},
		{"let unknown field", "{let: {decls: [], in: {int: 1}, where: 3}}", `unknown field "where"`},
		{"let missing body", "{let: {decls: []}}", `missing "in"`},
		{"let non decl", "{let: {decls: [{int: 1}], in: {int: 1}}}", "must be val declarations"},
		{"empty fn", "{fn: []}", "at least one arm"},
		{"duplicate label", "{record: {a: {int: 1}, a: {int: 2}}}", `"a"`},
		{"one tuple", "{tuple: [{int: 1}]}", "exactly one element"},
		{"empty identifier", `{id: ""}`, "must not be empty"},
		{"empty val", "{val: []}", "at least one pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeString(tt.src, "bad.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := DecodeString("{frobnicate: 1}", "")
	var uk *UnknownKindError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "frobnicate", uk.Kind)
	assert.Equal(t, "expression", uk.Want)

	_, err = DecodeString("{fn: [[{id: x}, {id: x}]]}", "")
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "pattern", uk.Want)

	_, err = DecodeString("{int_pat: 1}", "")
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "expression", uk.Want)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- {int: 7}\n"), 0o600))

	nodes, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, path, nodes[0].Pos().File)

	_, err = ReadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
