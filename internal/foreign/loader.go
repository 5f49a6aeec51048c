// Package foreign binds values defined in Starlark files into a compile
// environment, so that scripts can refer to data prepared outside the
// language.
//
// Every public global of a file becomes one binding. Globals whose names
// start with "_" and loaded functions are skipped.
package foreign

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapml/pkg/compile"
	"github.com/leapstack-labs/leapml/pkg/types"
)

// LoadError reports a foreign file that failed to run or to convert.
type LoadError struct {
	File   string
	Global string // empty if the file itself failed
	Err    error
}

func (e *LoadError) Error() string {
	if e.Global != "" {
		return fmt.Sprintf("%s: global %q: %v", e.File, e.Global, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader runs Starlark files and converts their globals.
type Loader struct {
	ts     *types.TypeSystem
	pool   *threadPool
	logger *slog.Logger
}

// NewLoader returns a loader converting into ts. The logger is optional.
func NewLoader(ts *types.TypeSystem, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{ts: ts, pool: newThreadPool(0, logger), logger: logger}
}

// predeclared are the names a foreign file may use besides the Starlark
// universe.
func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
}

// LoadSource runs src, named name in errors, and returns its globals as
// bindings ordered by name.
func (l *Loader) LoadSource(ctx context.Context, name string, src []byte) ([]compile.Binding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	thread := l.pool.get(name)
	stop := context.AfterFunc(ctx, func() { thread.Cancel(context.Cause(ctx).Error()) })
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, name, src, predeclared())
	if stop() {
		l.pool.put(thread)
	}
	if err != nil {
		return nil, &LoadError{File: name, Err: err}
	}

	names := make([]string, 0, len(globals))
	for n, v := range globals {
		if strings.HasPrefix(n, "_") {
			continue
		}
		if _, ok := v.(starlark.Callable); ok {
			l.logger.Debug("skipping callable global", "file", name, "global", n)
			continue
		}
		names = append(names, n)
	}
	sort.Strings(names)

	bindings := make([]compile.Binding, 0, len(names))
	for _, n := range names {
		value, t, err := ToValue(l.ts, globals[n])
		if err != nil {
			return nil, &LoadError{File: name, Global: n, Err: err}
		}
		bindings = append(bindings, compile.Binding{Name: n, Type: t, Value: value})
	}
	l.logger.Debug("loaded foreign values", "file", name, "bindings", len(bindings))
	return bindings, nil
}

// LoadFile runs the Starlark file at path.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]compile.Binding, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign file: %w", err)
	}
	return l.LoadSource(ctx, path, src)
}

// LoadFiles runs several files concurrently and returns their bindings in
// file order.
func (l *Loader) LoadFiles(ctx context.Context, paths []string) ([]compile.Binding, error) {
	results := make([][]compile.Binding, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.pool.maxSize)
	for i, path := range paths {
		g.Go(func() error {
			bindings, err := l.LoadFile(ctx, path)
			if err != nil {
				return err
			}
			results[i] = bindings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var all []compile.Binding
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// Bind loads paths and returns env extended with their values. A name
// defined in several files takes its value from the last one.
func (l *Loader) Bind(ctx context.Context, env *compile.Environment, paths ...string) (*compile.Environment, error) {
	if len(paths) == 0 {
		return env, nil
	}
	bindings, err := l.LoadFiles(ctx, paths)
	if err != nil {
		return env, err
	}
	return env.BindAll(bindings), nil
}
