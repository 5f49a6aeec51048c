// Package session is the driver that feeds statements to the compiler.
//
// A Session holds the environment built up by the statements executed so
// far. Each statement is compiled against it, evaluated, and on success the
// extended environment replaces it.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapml/internal/foreign"
	"github.com/leapstack-labs/leapml/internal/script"
	"github.com/leapstack-labs/leapml/pkg/ast"
	"github.com/leapstack-labs/leapml/pkg/compile"
	"github.com/leapstack-labs/leapml/pkg/types"
)

// Config holds session configuration.
type Config struct {
	// Foreign lists Starlark files whose globals are bound before the first
	// statement.
	Foreign []string
	// TypeSystem is shared by sessions created from the same Config. A new
	// one is created if nil.
	TypeSystem *types.TypeSystem
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Session executes statements one at a time.
type Session struct {
	mu       sync.Mutex
	compiler *compile.Compiler
	base     *compile.Environment
	env      *compile.Environment
	logger   *slog.Logger
}

// New returns a session whose environment holds the basic bindings and the
// configured foreign values.
func New(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	env, err := baseEnvironment(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newSession(cfg, env), nil
}

func (cfg Config) withDefaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.TypeSystem == nil {
		cfg.TypeSystem = types.NewTypeSystem()
	}
	return cfg
}

func baseEnvironment(ctx context.Context, cfg Config) (*compile.Environment, error) {
	env := compile.BasicEnvironment(cfg.TypeSystem)
	if len(cfg.Foreign) == 0 {
		return env, nil
	}
	env, err := foreign.NewLoader(cfg.TypeSystem, cfg.Logger).Bind(ctx, env, cfg.Foreign...)
	if err != nil {
		return nil, fmt.Errorf("failed to load foreign values: %w", err)
	}
	return env, nil
}

func newSession(cfg Config, env *compile.Environment) *Session {
	return &Session{
		compiler: compile.NewCompiler(cfg.TypeSystem, cfg.Logger),
		base:     env,
		env:      env,
		logger:   cfg.Logger,
	}
}

// Execute compiles and evaluates one statement and returns its output
// lines. If the statement fails to compile or raises a fault, the
// environment is left as it was.
func (s *Session) Execute(node ast.Node) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(s.logger, node)
}

func (s *Session) execute(logger *slog.Logger, node ast.Node) ([]string, error) {
	stmt, err := s.compiler.CompileStatement(s.env, node)
	if err != nil {
		logger.Warn("statement failed to compile", "pos", node.Pos().String(), "error", err)
		return nil, err
	}
	var out []string
	env, err := stmt.Eval(s.env, &out)
	if err != nil {
		logger.Warn("statement raised", "pos", node.Pos().String(), "error", err)
		return nil, err
	}
	s.env = env
	logger.Debug("executed statement", "pos", node.Pos().String(), "lines", len(out))
	return out, nil
}

// Environment returns the current environment.
func (s *Session) Environment() *compile.Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env
}

// Bindings returns the visible bindings ordered by name.
func (s *Session) Bindings() []compile.Binding {
	return s.Environment().Bindings()
}

// Defined returns the bindings added by executed statements, ordered by
// name. Basic and foreign bindings are left out unless shadowed.
func (s *Session) Defined() []compile.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Since(s.base)
}

// Reset discards every binding added since the session was created.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env = s.base
}

// StatementError locates the statement a script stopped at.
type StatementError struct {
	Index int // 0-based index of the statement in its script
	Node  ast.Node
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d at %s: %v", e.Index+1, e.Node.Pos(), e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

// Result is the outcome of running one script.
type Result struct {
	File     string
	RunID    string
	Output   []string
	Executed int   // statements that completed
	Err      error // nil if every statement completed
	// Defined holds the bindings the completed statements added.
	Defined []compile.Binding
}

// RunScript executes stmts in order and stops at the first failure, which
// is returned both as the error and in Result.Err.
func (s *Session) RunScript(ctx context.Context, file string, stmts []ast.Node) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &Result{File: file, RunID: uuid.New().String()}
	logger := s.logger.With("run_id", result.RunID)
	if file != "" {
		logger = logger.With("file", file)
	}
	logger.Info("starting script", "statements", len(stmts))

	for i, node := range stmts {
		if err := ctx.Err(); err != nil {
			result.Err = err
			break
		}
		out, err := s.execute(logger, node)
		if err != nil {
			result.Err = &StatementError{Index: i, Node: node, Err: err}
			break
		}
		result.Output = append(result.Output, out...)
		result.Executed++
	}
	result.Defined = s.env.Since(s.base)
	if result.Err != nil {
		logger.Info("script failed", "executed", result.Executed)
		return result, result.Err
	}
	logger.Info("script completed", "executed", result.Executed)
	return result, nil
}

// RunFile decodes the script at path and runs it.
func (s *Session) RunFile(ctx context.Context, path string) (*Result, error) {
	stmts, err := script.ReadFile(path)
	if err != nil {
		return &Result{File: path, Err: err}, err
	}
	return s.RunScript(ctx, path, stmts)
}
