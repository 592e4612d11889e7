package include

import (
	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/directive"
	"github.com/rubiojr/dtspp/lexer"
	"github.com/rubiojr/dtspp/preprocess"
)

// Unit is one source file of a translation with its own scan results.
type Unit struct {
	ID SourceID
	// Parent is the unit that first included this one; empty for the root.
	// It is a non-owning back-reference used only for reporting.
	Parent SourceID
	// Depth is the include depth, 0 for the root.
	Depth      int
	Source     string
	Tokens     []lexer.Token
	Statements []directive.Statement
	Directives []preprocess.Evaluated
	Regions    preprocess.Regions
	// Lines renders offsets of this unit as line:column positions.
	Lines *diag.Lines
}

// IsActive reports whether offset in this unit survives conditional
// compilation.
func (u *Unit) IsActive(offset int) bool { return u.Regions.IsActive(offset) }

// Edge is one followed #include.
type Edge struct {
	From      SourceID
	To        SourceID
	Directive *directive.Include
	// Cycle marks an edge back into a unit that was still being scanned.
	// It is recorded but not descended.
	Cycle bool
}

// Graph owns every unit reachable from the root of a translation.
type Graph struct {
	Root  SourceID
	Units map[SourceID]*Unit
	// Order lists units in the order their scan started.
	Order []SourceID
	Edges []Edge
	// Cycles lists every include chain that closed a cycle, starting at
	// the unit that was re-entered.
	Cycles [][]SourceID
	// Macros is the table at the end of the translation.
	Macros *preprocess.MacroTable
}

func newGraph(root SourceID, macros *preprocess.MacroTable) *Graph {
	return &Graph{Root: root, Units: make(map[SourceID]*Unit), Macros: macros}
}

// Unit returns the unit for id.
func (g *Graph) Unit(id SourceID) (*Unit, bool) {
	u, ok := g.Units[id]
	return u, ok
}

// RootUnit returns the root unit.
func (g *Graph) RootUnit() *Unit { return g.Units[g.Root] }

// Includes returns the edges leaving id in scan order.
func (g *Graph) Includes(id SourceID) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Chain returns the include chain from the root down to id, following
// the Parent back-references.
func (g *Graph) Chain(id SourceID) []SourceID {
	var chain []SourceID
	for u, ok := g.Units[id]; ok; u, ok = g.Units[u.Parent] {
		chain = append([]SourceID{u.ID}, chain...)
		if u.Parent == "" {
			break
		}
	}
	return chain
}
