// Package directive reduces the merged token stream into typed directive
// statements and the host spans between them.
package directive

import (
	"fmt"

	"github.com/rubiojr/dtspp/diag"
)

// Statement is one parsed directive. The concrete types are *Include,
// *Define, *Undef, *Ifdef, *Ifndef and *Endif. Statements are immutable
// once parsed.
type Statement interface {
	// Range covers the whole statement, from the '#' to its end.
	Range() diag.Range
	Keyword() string
	fmt.Stringer
}

// Include is `#include <path>` or `#include "path"`.
type Include struct {
	Path   string
	System bool
	Span   diag.Range
	// PathSpan covers the path between its delimiters.
	PathSpan diag.Range
}

// Define is `#define SYMBOL [VALUE]`. HasValue is false when no value
// text follows the symbol.
type Define struct {
	Symbol   string
	Value    string
	HasValue bool
	Span     diag.Range
}

// Undef is `#undef SYMBOL`.
type Undef struct {
	Symbol string
	Span   diag.Range
}

// Ifdef is `#ifdef SYMBOL`.
type Ifdef struct {
	Symbol string
	Span   diag.Range
}

// Ifndef is `#ifndef SYMBOL`.
type Ifndef struct {
	Symbol string
	Span   diag.Range
}

// Endif is `#endif`.
type Endif struct {
	Span diag.Range
}

func (d *Include) Range() diag.Range { return d.Span }
func (d *Define) Range() diag.Range  { return d.Span }
func (d *Undef) Range() diag.Range   { return d.Span }
func (d *Ifdef) Range() diag.Range   { return d.Span }
func (d *Ifndef) Range() diag.Range  { return d.Span }
func (d *Endif) Range() diag.Range   { return d.Span }

func (d *Include) Keyword() string { return "include" }
func (d *Define) Keyword() string  { return "define" }
func (d *Undef) Keyword() string   { return "undef" }
func (d *Ifdef) Keyword() string   { return "ifdef" }
func (d *Ifndef) Keyword() string  { return "ifndef" }
func (d *Endif) Keyword() string   { return "endif" }

func (d *Include) String() string {
	if d.System {
		return "#include <" + d.Path + ">"
	}
	return `#include "` + d.Path + `"`
}

func (d *Define) String() string {
	if !d.HasValue {
		return "#define " + d.Symbol
	}
	return "#define " + d.Symbol + " " + d.Value
}

func (d *Undef) String() string  { return "#undef " + d.Symbol }
func (d *Ifdef) String() string  { return "#ifdef " + d.Symbol }
func (d *Ifndef) String() string { return "#ifndef " + d.Symbol }
func (d *Endif) String() string  { return "#endif" }

// Item is one element of a unit in source order: either a directive
// statement or a host span. Statements that failed to parse appear as
// host spans so that the items still tile the unit.
type Item struct {
	Stmt Statement
	Span diag.Range
}

// IsHost reports whether it is host content.
func (it Item) IsHost() bool { return it.Stmt == nil }
