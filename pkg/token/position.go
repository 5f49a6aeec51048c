// Package token defines source positions shared by the AST and diagnostics.
package token

import "fmt"

// Position represents a location in the source the external parser read.
type Position struct {
	File   string // source name, may be empty
	Line   int    // 1-based line number
	Column int    // 1-based column number
}

// Zero is the position of synthesized nodes (e.g. the implicit "it" binding).
var Zero = Position{}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats the position as file:line:column, omitting unknown parts.
func (p Position) String() string {
	if !p.IsValid() {
		if p.File != "" {
			return p.File
		}
		return "<unknown>"
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// IsValid returns true if both start and end positions are valid.
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid()
}
