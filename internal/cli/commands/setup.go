package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapml/internal/cli/config"
	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/internal/session"
)

// sessionConfig builds the session configuration from the command context.
func sessionConfig(ctx context.Context) session.Config {
	cfg := config.FromContext(ctx)
	return session.Config{
		Foreign: cfg.Foreign,
		Logger:  config.GetLogger(ctx),
	}
}

// scriptOutput converts a script result for the renderer.
func scriptOutput(res *session.Result) output.ScriptOutput {
	out := output.ScriptOutput{
		File:     res.File,
		RunID:    res.RunID,
		Output:   res.Output,
		Executed: res.Executed,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// ScriptsFailedError reports how many scripts of a run failed. Each
// failure has already been printed.
type ScriptsFailedError struct {
	Failed, Total int
}

func (e *ScriptsFailedError) Error() string {
	if e.Total == 1 {
		return "script failed"
	}
	return fmt.Sprintf("%d of %d scripts failed", e.Failed, e.Total)
}

// IsScriptsFailed reports whether err is a ScriptsFailedError.
func IsScriptsFailed(err error) bool {
	var sf *ScriptsFailedError
	return errors.As(err, &sf)
}
