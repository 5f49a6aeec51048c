package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapml/internal/cli/output"
)

// BuildInfo identifies a leapml binary.
type BuildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Long: `Print the LeapML release, the commit and date the binary was built from,
and the Go release and platform it was compiled for.`,
		Example: `  leapml version
  leapml version -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info.Go = runtime.Version()
			info.Platform = runtime.GOOS + "/" + runtime.GOARCH
			return printBuildInfo(output.FromContext(cmd.Context()), info)
		},
	}
}

func printBuildInfo(r *output.Renderer, info BuildInfo) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(info)
	}
	s := r.Styles()
	r.Println(s.Header.Render("LeapML v" + info.Version))
	r.Printf("%s %s\n", s.Muted.Render("commit:  "), info.Commit)
	r.Printf("%s %s\n", s.Muted.Render("built:   "), info.Date)
	r.Printf("%s %s (%s)\n", s.Muted.Render("go:      "), info.Go, info.Platform)
	return nil
}
