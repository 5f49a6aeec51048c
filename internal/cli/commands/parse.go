package commands

import (
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapml/internal/cli/output"
	"github.com/leapstack-labs/leapml/internal/script"
)

// ParseOptions holds options for the parse command.
type ParseOptions struct {
	Tree bool
}

// StatementInfo is the JSON form of a decoded statement.
type StatementInfo struct {
	Pos    string `json:"pos"`
	Op     string `json:"op"`
	Source string `json:"source"`
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <script.yaml>",
		Short: "Decode a script and print its statements",
		Long: `Decode a script without running it and print each statement in ML
notation. With --tree, print the syntax tree of each statement instead.`,
		Example: `  # Show a script in ML notation
  leapml parse fact.yaml

  # Dump the syntax trees
  leapml parse --tree fact.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Tree, "tree", false, "Print syntax trees")

	return cmd
}

func runParse(cmd *cobra.Command, opts *ParseOptions, path string) error {
	r := output.FromContext(cmd.Context())

	stmts, err := script.ReadFile(path)
	if err != nil {
		return err
	}

	for _, stmt := range stmts {
		switch {
		case r.EffectiveMode() == output.ModeJSON:
			if err := r.JSON(StatementInfo{Pos: stmt.Pos().String(), Op: stmt.Op().String(), Source: stmt.String()}); err != nil {
				return err
			}
		case opts.Tree:
			r.Println(r.Styles().Muted.Render(stmt.Pos().String()))
			r.Println(pretty.Sprint(stmt))
		default:
			r.Println(stmt.String())
		}
	}
	return nil
}
