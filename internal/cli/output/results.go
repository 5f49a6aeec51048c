package output

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapml/pkg/compile"
	"github.com/leapstack-labs/leapml/pkg/eval"
)

// ScriptOutput is the JSON form of one script run.
type ScriptOutput struct {
	File     string   `json:"file"`
	RunID    string   `json:"run_id,omitempty"`
	Output   []string `json:"output"`
	Executed int      `json:"executed"`
	Error    string   `json:"error,omitempty"`
}

// BindingInfo is the JSON form of a binding.
type BindingInfo struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Line prints one "val name = value : type" line, styling the name and
// type on a color terminal.
func (r *Renderer) Line(line string) {
	rest, ok := strings.CutPrefix(line, "val ")
	eq := strings.Index(rest, " = ")
	colon := strings.LastIndex(rest, " : ")
	if !ok || eq < 0 || colon < eq {
		r.Println(line)
		return
	}
	r.Printf("%s %s = %s : %s\n",
		r.styles.Muted.Render("val"),
		r.styles.Name.Render(rest[:eq]),
		rest[eq+3:colon],
		r.styles.Type.Render(rest[colon+3:]))
}

// Lines prints statement output lines.
func (r *Renderer) Lines(lines []string) {
	for _, l := range lines {
		r.Line(l)
	}
}

// Script prints the output of one script. In JSON mode it writes a
// ScriptOutput; otherwise the lines, followed by the error if any.
func (r *Renderer) Script(s ScriptOutput) error {
	if r.EffectiveMode() == ModeJSON {
		if s.Output == nil {
			s.Output = []string{}
		}
		return r.JSON(s)
	}
	r.Lines(s.Output)
	return nil
}

// Bindings prints bindings as a table, as JSON lines, or as val lines
// depending on the effective mode.
func (r *Renderer) Bindings(bindings []compile.Binding) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		for _, b := range bindings {
			if err := r.JSON(bindingInfo(b)); err != nil {
				return err
			}
		}
	case ModeTable:
		t := table.NewWriter()
		t.SetOutputMirror(r.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Type", "Value"})
		for _, b := range bindings {
			info := bindingInfo(b)
			t.AppendRow(table.Row{info.Name, info.Type, info.Value})
		}
		t.Render()
	default:
		for _, b := range bindings {
			r.Line("val " + b.String())
		}
	}
	return nil
}

func bindingInfo(b compile.Binding) BindingInfo {
	return BindingInfo{Name: b.Name, Type: b.Type.Description(), Value: eval.Print(b.Value, b.Type)}
}
