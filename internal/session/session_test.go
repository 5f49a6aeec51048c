package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/internal/script"
	"github.com/leapstack-labs/leapml/internal/testutil"
	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/compile"
	"github.com/leapstack-labs/leapml/pkg/eval"
)

func openSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(context.Background(), Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, src string) []ast.Node {
	t.Helper()
	stmts, err := script.DecodeString(src, "test.yaml")
	require.NoError(t, err)
	return stmts
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSession_Execute(t *testing.T) {
	s := openSession(t)

	out, err := s.Execute(decode(t, `{plus: [{int: 1}, {int: 2}]}`)[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"val it = 3 : int"}, out)

	out, err = s.Execute(decode(t, `{times: [{id: it}, {int: 2}]}`)[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"val it = 6 : int"}, out)
}

func TestSession_FailureKeepsEnvironment(t *testing.T) {
	s := openSession(t)
	_, err := s.Execute(decode(t, `{val: [[{id_pat: x}, {int: 1}]]}`)[0])
	require.NoError(t, err)
	before := s.Environment()

	_, err = s.Execute(decode(t, `{val: [[{id_pat: x}, {divide: [{int: 1}, {int: 0}]}]]}`)[0])
	assert.True(t, eval.IsFault(err, eval.FaultDiv))
	assert.Same(t, before, s.Environment())

	_, err = s.Execute(decode(t, `{plus: [{int: 1}, {bool: true}]}`)[0])
	var te *compile.TypeError
	assert.ErrorAs(t, err, &te)
	assert.Same(t, before, s.Environment())

	x, err := s.Environment().Get("x")
	require.NoError(t, err)
	assert.Equal(t, 1, x.Value)
}

func TestSession_RunScript(t *testing.T) {
	src := `
- {valrec: [[{id_pat: fact}, {fn: [[{int_pat: 0}, {int: 1}], [{id_pat: n}, {times: [{id: n}, {apply: [{id: fact}, {minus: [{id: n}, {int: 1}]}]}]}]]}]]}
- {apply: [{id: fact}, {int: 5}]}
- {val: [[{tuple_pat: [{id_pat: a}, {id_pat: b}]}, {tuple: [{string: x}, {con: [SOME, {int: 1}]}]}]]}
`
	s := openSession(t)
	result, err := s.RunScript(context.Background(), "fact.yaml", decode(t, src))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"val fact = fn : int -> int",
		"val it = 120 : int",
		`val a = "x" : string`,
		"val b = SOME 1 : int option",
	}, result.Output)
	assert.Equal(t, 3, result.Executed)
	assert.NotEmpty(t, result.RunID)
	assert.NoError(t, result.Err)

	names := make([]string, 0)
	for _, b := range s.Bindings() {
		names = append(names, b.Name)
	}
	assert.Contains(t, names, "fact")
	assert.Contains(t, names, "b")
}

func TestSession_RunScriptStopsAtFailure(t *testing.T) {
	src := `
- {int: 1}
- {id: nope}
- {int: 3}
`
	s := openSession(t)
	result, err := s.RunScript(context.Background(), "", decode(t, src))
	require.Error(t, err)

	var se *StatementError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, se.Index)
	assert.Contains(t, se.Error(), "statement 2 at test.yaml:3:3")

	var internal *compile.InternalError
	assert.ErrorAs(t, err, &internal)
	assert.Equal(t, []string{"val it = 1 : int"}, result.Output)
	assert.Equal(t, 1, result.Executed)
	require.Len(t, result.Defined, 1)
	assert.Equal(t, "it", result.Defined[0].Name)
}

func TestSession_RunScriptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := openSession(t).RunScript(ctx, "", decode(t, `{int: 1}`))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.Executed)
}

func TestSession_Foreign(t *testing.T) {
	dir := t.TempDir()
	star := writeFile(t, dir, "values.star", "limit = 10\nnames = [\"a\", \"b\"]\norigin = {\"a\": 1}\n")

	s, err := New(context.Background(), Config{Foreign: []string{star}, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)

	out, err := s.Execute(decode(t, `{plus: [{id: limit}, {int: 1}]}`)[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"val it = 11 : int"}, out)

	out, err = s.Execute(decode(t, `{eq: [{id: origin}, {record: {a: {int: 1}}}]}`)[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"val it = true : bool"}, out)

	out, err = s.Execute(decode(t, `{val: [[{record_pat: {a: {id_pat: a}}}, {id: origin}]]}`)[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"val a = 1 : int"}, out)

	_, err = New(context.Background(), Config{Foreign: []string{filepath.Join(dir, "missing.star")}})
	assert.ErrorContains(t, err, "failed to load foreign values")
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	ok := writeFile(t, dir, "ok.yaml", "- {val: [[{id_pat: x}, {int: 2}]]}\n- {times: [{id: x}, {id: x}]}\n")
	bad := writeFile(t, dir, "bad.yaml", "- {mod: [{int: 1}, {int: 0}]}\n")
	other := writeFile(t, dir, "other.yaml", "- {id: x}\n")
	broken := writeFile(t, dir, "broken.yaml", "- {int: [\n")

	results, err := RunFiles(context.Background(), Config{Logger: testutil.NewTestLogger(t)}, []string{ok, bad, other, broken})
	require.Error(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, ok, results[0].File)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, []string{"val x = 2 : int", "val it = 4 : int"}, results[0].Output)

	assert.True(t, eval.IsFault(results[1].Err, eval.FaultDiv))

	// Scripts do not share environments.
	var internal *compile.InternalError
	assert.ErrorAs(t, results[2].Err, &internal)

	var de *script.DecodeError
	assert.ErrorAs(t, results[3].Err, &de)
}

func TestSession_Defined(t *testing.T) {
	s := openSession(t)
	assert.Empty(t, s.Defined())

	_, err := s.RunScript(context.Background(), "", decode(t, "- {val: [[{id_pat: not}, {int: 1}]]}\n- {string: hi}\n"))
	require.NoError(t, err)

	var names []string
	for _, b := range s.Defined() {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"it", "not"}, names)
	assert.Greater(t, len(s.Bindings()), len(names))
}

func TestSession_Reset(t *testing.T) {
	s := openSession(t)
	base := s.Environment()
	_, err := s.Execute(decode(t, `{int: 1}`)[0])
	require.NoError(t, err)
	require.NotSame(t, base, s.Environment())

	s.Reset()
	assert.Same(t, base, s.Environment())
	assert.Empty(t, s.Defined())
}

func TestSession_RunScriptLogs(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	s, err := New(context.Background(), Config{Logger: logger})
	require.NoError(t, err)

	result, err := s.RunScript(context.Background(), "logged.yaml", decode(t, "- {int: 1}\n- {divide: [{int: 1}, {int: 0}]}\n"))
	require.Error(t, err)

	line, ok := logs.Find("starting script")
	require.True(t, ok)
	assert.Contains(t, line, "run_id="+result.RunID)
	assert.Contains(t, line, "file=logged.yaml")
	assert.Contains(t, line, "statements=2")

	line, ok = logs.Find("statement raised")
	require.True(t, ok)
	assert.Contains(t, line, "level=WARN")

	line, ok = logs.Find("script failed")
	require.True(t, ok)
	assert.Contains(t, line, "executed=1")
}
