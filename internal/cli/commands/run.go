package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapml/internal/cli/config"
	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/internal/session"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Watch bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <script.yaml>...",
		Short: "Run one or more scripts",
		Long: `Execute the statements of each script in order.

Each script runs in a session of its own, starting from the basic bindings
and the values of any --foreign Starlark files. A script stops at its first
failing statement. Several scripts run concurrently; their output is printed
in the order given.`,
		Example: `  # Run a script
  leapml run examples/fact.yaml

  # Run scripts and list what each defined
  leapml run --bindings a.yaml b.yaml

  # Bind values from a Starlark file first
  leapml run --foreign values.star report.yaml

  # Re-run whenever a script changes
  leapml run --watch fact.yaml

  # JSON lines for tooling
  leapml run -o json fact.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run scripts when they change")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions, paths []string) error {
	ctx := cmd.Context()
	r := output.FromContext(ctx)

	err := runScripts(ctx, r, paths)
	if !opts.Watch {
		return err
	}
	if err != nil && !IsScriptsFailed(err) {
		return err
	}

	logger := config.GetLogger(ctx)
	r.Println(r.Styles().Muted.Render("Watching for changes (Ctrl+C to stop)..."))
	return watchScripts(ctx, paths, logger, func() {
		r.Println("")
		if err := runScripts(ctx, r, paths); err != nil && !IsScriptsFailed(err) {
			r.Error(err)
		}
	})
}

// runScripts runs paths and prints every result.
func runScripts(ctx context.Context, r *output.Renderer, paths []string) error {
	cfg := config.FromContext(ctx)
	results, err := session.RunFiles(ctx, sessionConfig(ctx), paths)
	if results == nil {
		return err
	}

	failed := 0
	mode := r.EffectiveMode()
	for _, res := range results {
		if len(results) > 1 && mode != output.ModeJSON {
			r.Header(fmt.Sprintf("==> %s <==", res.File))
		}
		if err := r.Script(scriptOutput(res)); err != nil {
			return err
		}
		if res.Err != nil {
			failed++
			if mode != output.ModeJSON {
				r.Error(res.Err)
			}
		}
		if cfg.Bindings && mode != output.ModeJSON {
			if err := r.Bindings(res.Defined); err != nil {
				return err
			}
		}
	}
	if failed > 0 {
		return &ScriptsFailedError{Failed: failed, Total: len(results)}
	}
	return nil
}
