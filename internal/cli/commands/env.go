package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/internal/session"
)

// EnvOptions holds options for the env command.
type EnvOptions struct {
	All bool
}

// NewEnvCommand creates the env command.
func NewEnvCommand() *cobra.Command {
	opts := &EnvOptions{}

	cmd := &cobra.Command{
		Use:   "env [script.yaml]...",
		Short: "List bindings with their types and values",
		Long: `Run the given scripts one after another in a single session and list
the bindings they define. With --all, the basic bindings and foreign values
are listed too.`,
		Example: `  # Show the basic environment
  leapml env --all

  # Show what two scripts define together
  leapml env prelude.yaml main.yaml

  # Show the values bound from a Starlark file
  leapml env --foreign values.star`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Include basic and foreign bindings")

	return cmd
}

func runEnv(cmd *cobra.Command, opts *EnvOptions, paths []string) error {
	ctx := cmd.Context()
	r := output.FromContext(ctx)

	sess, err := session.New(ctx, sessionConfig(ctx))
	if err != nil {
		return err
	}
	for _, path := range paths {
		if _, err := sess.RunFile(ctx, path); err != nil {
			return err
		}
	}

	bindings := sess.Defined()
	if opts.All || len(paths) == 0 {
		bindings = sess.Bindings()
	}
	return r.Bindings(bindings)
}
