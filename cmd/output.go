package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/include"
	"github.com/rubiojr/dtspp/preprocess"
	"github.com/rubiojr/dtspp/translate"
)

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
	colorReset  = "\033[0m"
)

func printTokens(w io.Writer, tr *translate.Translation) {
	for _, tok := range tr.Tokens() {
		fmt.Fprintf(w, "%6d %6d  %-16s %q\n", tok.Start, tok.End, tok.Kind, tok.Text)
	}
}

func printDirectives(w io.Writer, u *include.Unit) {
	for _, d := range u.Directives {
		state := "active"
		if !d.Active {
			state = "inactive"
		}
		fmt.Fprintf(w, "%s\t%-8s %s\n", u.Lines.Position(d.Stmt.Range().Start), state, d.Stmt)
	}
}

func printRegions(w io.Writer, u *include.Unit) {
	for _, r := range u.Regions {
		state := "active"
		if !r.Active {
			state = "inactive"
		}
		// The end offset is exclusive; report the line of its last byte.
		fmt.Fprintf(w, "lines %d-%d\t%s\n", u.Lines.Line(r.Span.Start), u.Lines.Line(r.Span.End-1), state)
	}
}

func printMacros(w io.Writer, g *include.Graph) {
	for _, name := range g.Macros.Names() {
		m, _ := g.Macros.Lookup(name)
		fmt.Fprintf(w, "%s\t%s\t%s\n", macroText(m), m.Value, macroLocation(g, m))
	}
}

func macroText(m preprocess.Macro) string {
	if !m.HasValue {
		return m.Name
	}
	return m.Name + "="
}

func macroLocation(g *include.Graph, m preprocess.Macro) string {
	u, ok := g.Unit(include.SourceID(m.Unit))
	if !ok {
		return m.Unit
	}
	return u.Lines.Position(m.Span.Start).String()
}

// printIncludes prints the include tree depth first. A unit reached a
// second time is printed once more, marked, without its children.
func printIncludes(w io.Writer, g *include.Graph) {
	printed := make(map[include.SourceID]bool)
	var walk func(id include.SourceID, indent string)
	walk = func(id include.SourceID, indent string) {
		printed[id] = true
		for _, e := range g.Includes(id) {
			switch {
			case e.Cycle:
				fmt.Fprintf(w, "%s%s (cycle: %s)\n", indent, e.To, cycleText(g, e))
			case printed[e.To]:
				fmt.Fprintf(w, "%s%s (already included)\n", indent, e.To)
			default:
				fmt.Fprintf(w, "%s%s\n", indent, e.To)
				walk(e.To, indent+"  ")
			}
		}
	}
	fmt.Fprintf(w, "%s\n", g.Root)
	walk(g.Root, "  ")
}

// cycleText renders the include chain closed by the cycle edge e, starting
// at the unit that is re-entered.
func cycleText(g *include.Graph, e include.Edge) string {
	chain := g.Chain(e.From)
	for i, id := range chain {
		if id == e.To {
			chain = chain[i:]
			break
		}
	}
	parts := make([]string, 0, len(chain)+1)
	for _, id := range chain {
		parts = append(parts, string(id))
	}
	return strings.Join(append(parts, string(e.To)), " -> ")
}

// printDiagnostics prints diagnostics ordered by unit and offset.
func printDiagnostics(w io.Writer, tr *translate.Translation, color bool) {
	g := tr.ResolvedIncludes()
	diags := slices.Clone(tr.Diagnostics())
	diags.Sort()
	for _, d := range diags {
		pos := d.Unit + ":" + d.Range.String()
		if u, ok := g.Unit(include.SourceID(d.Unit)); ok {
			pos = u.Lines.Position(d.Range.Start).String()
		}
		sev := d.Severity.String()
		if color {
			c := colorRed
			if d.Severity == diag.SeverityWarning {
				c = colorYellow
			}
			sev = c + sev + colorReset
			pos = colorDim + pos + colorReset
		}
		fmt.Fprintf(w, "%s: %s: %s\n", pos, sev, d.Message)
	}
}

func countSeverities(tr *translate.Translation) (errors, warnings int) {
	for _, d := range tr.Diagnostics() {
		if d.Severity == diag.SeverityWarning {
			warnings++
		} else {
			errors++
		}
	}
	return errors, warnings
}
