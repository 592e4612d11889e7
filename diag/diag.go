// Package diag defines the diagnostics produced while scanning,
// evaluating and resolving preprocessor directives.
//
// Diagnostics are never fatal. Every stage records them in a List and
// keeps going, so callers always receive a best-effort result together
// with everything that was wrong with the input.
package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies a diagnostic by the stage that raised it.
type Kind uint8

const (
	// LexError is a malformed literal inside a directive statement.
	LexError Kind = iota
	// StructuralError is a directive with the wrong shape or an
	// unbalanced conditional block.
	StructuralError
	// ResolutionError is an include that could not be followed.
	ResolutionError
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case StructuralError:
		return "structural error"
	case ResolutionError:
		return "resolution error"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Severity tells presentation layers how loud to be.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Range is a half-open byte range [Start, End) in a source unit.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Contains reports whether offset falls inside r.
func (r Range) Contains(offset int) bool { return offset >= r.Start && offset < r.End }

// Shift returns r moved by delta bytes.
func (r Range) Shift(delta int) Range { return Range{Start: r.Start + delta, End: r.End + delta} }

func (r Range) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Diagnostic is a single problem attached to a source range.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	// Unit names the source the range belongs to. Empty for single-unit passes.
	Unit    string
	Range   Range
	Message string
}

// Error implements error so a diagnostic can travel through error paths.
func (d Diagnostic) Error() string {
	if d.Unit != "" {
		return fmt.Sprintf("%s:%s: %s: %s", d.Unit, d.Range, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Range, d.Kind, d.Message)
}

// List collects diagnostics in the order they were raised.
type List []Diagnostic

// Add appends an error-severity diagnostic.
func (l *List) Add(kind Kind, r Range, format string, args ...any) {
	*l = append(*l, Diagnostic{Kind: kind, Severity: SeverityError, Range: r, Message: fmt.Sprintf(format, args...)})
}

// Warn appends a warning-severity diagnostic.
func (l *List) Warn(kind Kind, r Range, format string, args ...any) {
	*l = append(*l, Diagnostic{Kind: kind, Severity: SeverityWarning, Range: r, Message: fmt.Sprintf(format, args...)})
}

// Append adds other to l, stamping unit on entries that have none.
func (l *List) Append(unit string, other List) {
	for _, d := range other {
		if d.Unit == "" {
			d.Unit = unit
		}
		*l = append(*l, d)
	}
}

// Shift moves every range in l by delta bytes.
func (l List) Shift(delta int) {
	for i := range l {
		l[i].Range = l[i].Range.Shift(delta)
	}
}

// Count returns how many diagnostics of the given kind are in l.
func (l List) Count(kind Kind) int {
	n := 0
	for _, d := range l {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// HasErrors reports whether l holds any error-severity diagnostic.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Sort orders l by unit, then start offset. Diagnostics raised at the
// same place keep their relative order.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Unit != l[j].Unit {
			return l[i].Unit < l[j].Unit
		}
		return l[i].Range.Start < l[j].Range.Start
	})
}

// Err joins the error-severity diagnostics into one error, or returns nil.
func (l List) Err() error {
	var errs []error
	for _, d := range l {
		if d.Severity == SeverityError {
			errs = append(errs, d)
		}
	}
	return errors.Join(errs...)
}

func (l List) Error() string {
	var sb strings.Builder
	for i, d := range l {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(d.Error())
	}
	return sb.String()
}
