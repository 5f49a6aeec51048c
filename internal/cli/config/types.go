// Package config provides configuration management for the leapml CLI.
package config

// Default values.
const (
	DefaultOutput      = "auto"
	DefaultColor       = "auto"
	DefaultHistoryFile = ".leapml_history"
	DefaultPrompt      = "- "
)

// Config holds the CLI configuration.
type Config struct {
	// Verbose enables debug logging on stderr.
	Verbose bool `koanf:"verbose"`
	// Output is auto, text, table or json.
	Output string `koanf:"output"`
	// Color is auto, always or never.
	Color string `koanf:"color"`
	// Foreign lists Starlark files whose globals are bound before a script
	// or REPL session starts.
	Foreign []string `koanf:"foreign"`
	// Bindings prints the bindings a script defined after running it.
	Bindings bool `koanf:"bindings"`

	REPL REPLConfig `koanf:"repl"`
}

// REPLConfig configures the interactive loop.
type REPLConfig struct {
	HistoryFile string `koanf:"history_file"`
	Prompt      string `koanf:"prompt"`
}
