package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapml/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(output.Modes, c.Output) {
		return fmt.Errorf("invalid output %q: must be one of %s", c.Output, strings.Join(output.Modes, ", "))
	}
	if !slices.Contains(output.Colors, c.Color) {
		return fmt.Errorf("invalid color %q: must be one of %s", c.Color, strings.Join(output.Colors, ", "))
	}
	for _, f := range c.Foreign {
		if !strings.HasSuffix(f, ".star") {
			return fmt.Errorf("foreign file %q must have a .star extension", f)
		}
	}
	return nil
}
