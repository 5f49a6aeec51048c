package commands

import (
	"context"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/internal/session"
	"github.com/leapstack-labs/leapml/internal/testutil"
)

// scriptedReader replays lines and records prompts.
type scriptedReader struct {
	lines   []string
	errs    map[int]error
	prompts []string
	n       int
}

func (s *scriptedReader) Readline() (string, error) {
	defer func() { s.n++ }()
	if err, ok := s.errs[s.n]; ok {
		return "", err
	}
	if s.n >= len(s.lines) {
		return "", io.EOF
	}
	return s.lines[s.n], nil
}

func (s *scriptedReader) SetPrompt(prompt string) { s.prompts = append(s.prompts, prompt) }

func runLoop(t *testing.T, in *scriptedReader) *testRun {
	t.Helper()
	tr := newTestRun(t, output.ModeText)
	sess, err := session.New(context.Background(), session.Config{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	loop := &repl{sess: sess, r: output.FromContext(tr.ctx), in: in, prompt: "- "}
	require.NoError(t, loop.run(tr.ctx))
	return tr
}

func TestREPL_Statements(t *testing.T) {
	tr := runLoop(t, &scriptedReader{lines: []string{
		"{val: [[{id_pat: x}, {int: 2}]]};",
		"",
		"- {times: [{id: x}, {id: x}]}",
		"- {string: done};",
	}})
	assert.Equal(t, "val x = 2 : int\nval it = 4 : int\nval it = \"done\" : string\n", tr.out.String())
	assert.Empty(t, tr.errOut.String())
}

func TestREPL_MultiLinePrompts(t *testing.T) {
	in := &scriptedReader{lines: []string{
		"plus:",
		"  - {int: 1}",
		"  - {int: 2};",
	}}
	tr := runLoop(t, in)
	assert.Equal(t, "val it = 3 : int\n", tr.out.String())
	assert.Equal(t, []string{continuationPrompt, continuationPrompt, "- "}, in.prompts)
}

func TestREPL_ErrorsKeepSession(t *testing.T) {
	tr := runLoop(t, &scriptedReader{lines: []string{
		"{val: [[{id_pat: x}, {int: 1}]]};",
		"{plus: [{id: x}, {bool: true}]};",
		"{int: [};",
		"{id: x};",
	}})
	assert.Equal(t, "val x = 1 : int\nval it = 1 : int\n", tr.out.String())
	assert.Contains(t, tr.errOut.String(), "cannot unify")
	assert.Contains(t, tr.errOut.String(), "invalid YAML")
}

func TestREPL_Interrupt(t *testing.T) {
	in := &scriptedReader{
		lines: []string{"plus:", "", "{int: 7};"},
		errs:  map[int]error{1: readline.ErrInterrupt},
	}
	tr := runLoop(t, in)
	assert.Equal(t, "val it = 7 : int\n", tr.out.String())
	assert.Equal(t, []string{continuationPrompt, "- ", "- "}, in.prompts)
}

func TestREPL_DotCommands(t *testing.T) {
	path := writeScript(t, t.TempDir(), "fact.yaml", factScript)
	tr := runLoop(t, &scriptedReader{lines: []string{
		".help",
		".load " + path,
		".env",
		".reset",
		".env",
		".load",
		".bogus",
		".quit",
		"{int: 1};",
	}})

	out := tr.out.String()
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "val it = 120 : int")
	assert.Contains(t, out, "val fact = fn : int -> int")
	assert.Contains(t, out, "Bindings cleared")
	assert.NotContains(t, out, "val it = 1 : int", "input after .quit is not read")
	assert.Contains(t, tr.errOut.String(), "usage: .load")
	assert.Contains(t, tr.errOut.String(), "unknown command: .bogus")
}

func TestREPL_EnvAll(t *testing.T) {
	tr := runLoop(t, &scriptedReader{lines: []string{".env all"}})
	assert.Contains(t, tr.out.String(), "val not = fn : bool -> bool")
}
