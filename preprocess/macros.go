package preprocess

import (
	"sort"

	"github.com/rubiojr/dtspp/diag"
)

// CommandLine is the unit name given to macros seeded before a pass.
const CommandLine = "<command-line>"

// Macro is one entry of the MacroTable.
type Macro struct {
	Name string
	// Value is the replacement text. HasValue is false for `#define NAME`,
	// in which case Value is empty.
	Value    string
	HasValue bool
	// Unit and Span locate the defining directive.
	Unit string
	Span diag.Range
}

// MacroTable maps case-sensitive symbol names to their current definition.
type MacroTable struct {
	macros map[string]Macro
}

// NewMacroTable creates an empty table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]Macro)}
}

// Define inserts or replaces m. It returns the definition it replaced.
func (t *MacroTable) Define(m Macro) (prev Macro, replaced bool) {
	prev, replaced = t.macros[m.Name]
	t.macros[m.Name] = m
	return prev, replaced
}

// Undef removes name. Removing an undefined name is not an error; the
// result reports whether anything was removed.
func (t *MacroTable) Undef(name string) bool {
	_, ok := t.macros[name]
	delete(t.macros, name)
	return ok
}

// Lookup returns the definition of name.
func (t *MacroTable) Lookup(name string) (Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// Defined reports whether name is currently defined.
func (t *MacroTable) Defined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// Value returns the replacement text of name. A macro defined without a
// value yields ("", true).
func (t *MacroTable) Value(name string) (string, bool) {
	m, ok := t.macros[name]
	return m.Value, ok
}

// Len returns the number of defined macros.
func (t *MacroTable) Len() int { return len(t.macros) }

// Names returns the defined names in sorted order.
func (t *MacroTable) Names() []string {
	names := make([]string, 0, len(t.macros))
	for name := range t.macros {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of t.
func (t *MacroTable) Clone() *MacroTable {
	c := &MacroTable{macros: make(map[string]Macro, len(t.macros))}
	for k, v := range t.macros {
		c.macros[k] = v
	}
	return c
}
