package session

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RunFiles runs each script in a session of its own, several at a time, and
// returns the results in the order of paths. Foreign values are loaded
// once and shared. The error joins the errors of all failed scripts.
func RunFiles(ctx context.Context, cfg Config, paths []string) ([]*Result, error) {
	cfg = cfg.withDefaults()
	base, err := baseEnvironment(ctx, cfg)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			// A failed script does not cancel the others.
			results[i], _ = newSession(cfg, base).RunFile(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}
