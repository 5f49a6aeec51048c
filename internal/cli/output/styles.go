package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Header  lipgloss.Style
	Name    lipgloss.Style
	Type    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Prompt  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Name:    r.NewStyle().Bold(true),
		Type:    r.NewStyle().Foreground(lipgloss.Color("141")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		Success: r.NewStyle().Foreground(lipgloss.Color("42")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Prompt:  r.NewStyle().Foreground(lipgloss.Color("39")),
	}
}
