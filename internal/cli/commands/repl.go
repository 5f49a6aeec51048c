package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapml/internal/cli/config"
	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/internal/script"
	"github.com/leapstack-labs/leapml/internal/session"
)

const continuationPrompt = "... "

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Read statements interactively and print the value and type of each.

Statements are written in the same YAML form as script files and end with a
semicolon. Bindings persist for the whole session; a statement that fails
leaves them unchanged.`,
		Example: `  leapml repl
  - {val: [[{id_pat: x}, {int: 2}]]};
  val x = 2 : int
  - {times: [{id: x}, {id: x}]};
  val it = 4 : int`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

// lineReader is the part of readline the loop uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

func runREPL(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	r := output.FromContext(ctx)

	sess, err := session.New(ctx, sessionConfig(ctx))
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          cfg.REPL.Prompt,
		HistoryFile:     cfg.REPL.HistoryFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r.Println(r.Styles().Header.Render("LeapML REPL"))
	r.Println(r.Styles().Muted.Render("Type .help for commands, .quit to exit"))
	r.Println("")

	loop := &repl{sess: sess, r: r, in: rl, prompt: cfg.REPL.Prompt}
	return loop.run(ctx)
}

type repl struct {
	sess   *session.Session
	r      *output.Renderer
	in     lineReader
	prompt string
	inputs int
}

func (l *repl) run(ctx context.Context) error {
	var buf strings.Builder
	for {
		line, err := l.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			l.in.SetPrompt(l.prompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if buf.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ".") {
				if quit := l.dotCommand(ctx, trimmed); quit {
					return nil
				}
				continue
			}
		}

		// Accumulate lines until one ends with a semicolon.
		if !strings.HasSuffix(trimmed, ";") {
			buf.WriteString(line)
			buf.WriteString("\n")
			l.in.SetPrompt(continuationPrompt)
			continue
		}
		buf.WriteString(strings.TrimSuffix(strings.TrimRight(line, " \t"), ";"))
		l.in.SetPrompt(l.prompt)

		src := buf.String()
		buf.Reset()
		l.eval(src)
	}
}

// eval decodes src and executes its statements, stopping at the first
// failure.
func (l *repl) eval(src string) {
	l.inputs++
	stmts, err := script.DecodeString(src, fmt.Sprintf("input%d", l.inputs))
	if err != nil {
		l.r.Error(err)
		return
	}
	for _, stmt := range stmts {
		out, err := l.sess.Execute(stmt)
		if err != nil {
			l.r.Error(err)
			return
		}
		l.r.Lines(out)
	}
}

// dotCommand handles a REPL command and reports whether to quit.
func (l *repl) dotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(l.r.Writer())

	case ".env":
		bindings := l.sess.Defined()
		if len(parts) > 1 && parts[1] == "all" {
			bindings = l.sess.Bindings()
		}
		if err := l.r.Bindings(bindings); err != nil {
			l.r.Error(err)
		}

	case ".load":
		if len(parts) < 2 {
			l.r.Warning("usage: .load <script.yaml>")
			return false
		}
		res, err := l.sess.RunFile(ctx, parts[1])
		l.r.Lines(res.Output)
		if err != nil {
			l.r.Error(err)
		}

	case ".reset":
		l.sess.Reset()
		l.r.Println(l.r.Styles().Muted.Render("Bindings cleared"))

	case ".clear":
		l.r.Printf("\033[H\033[2J")

	default:
		l.r.Warning(fmt.Sprintf("unknown command: %s (type .help for commands)", parts[0]))
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .env [all]      List bindings defined in this session (all: include built-ins)
  .load <file>    Run a script in this session
  .reset          Discard the bindings defined in this session
  .clear          Clear the screen
  .quit / .exit   Exit the REPL

Tips:
  - Statements are YAML, e.g. {plus: [{int: 1}, {int: 2}]}
  - A statement ends with a semicolon (;) and may span lines
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and script names for .load.
func newREPLCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".env", readline.PcItem("all")),
		readline.PcItem(".load", readline.PcItemDynamic(listScripts)),
		readline.PcItem(".reset"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func listScripts(string) []string {
	var names []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(pattern)
		names = append(names, matches...)
	}
	return names
}
