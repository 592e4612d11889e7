// Package preprocess evaluates conditional-compilation directives.
//
// The Evaluator walks the items of one unit in source order with a stack
// of condition frames. It partitions the unit into active and suppressed
// regions and maintains the macro table. Directives inside a suppressed
// frame are inert: they never mutate the table and never pull in includes.
package preprocess

import (
	"context"
	"log/slog"

	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/directive"
)

// Redefinition selects what happens when an active #define names a
// symbol that is already defined.
type Redefinition uint8

const (
	// LastWriteWins replaces the previous definition.
	LastWriteWins Redefinition = iota
	// FirstWriteWins keeps the previous definition.
	FirstWriteWins
)

func (r Redefinition) String() string {
	if r == FirstWriteWins {
		return "first"
	}
	return "last"
}

// FrameKind is the opener of a condition frame.
type FrameKind uint8

const (
	IfdefFrame FrameKind = iota
	IfndefFrame
)

func (k FrameKind) String() string {
	if k == IfndefFrame {
		return "#ifndef"
	}
	return "#ifdef"
}

// Frame is one open #ifdef/#ifndef block.
type Frame struct {
	Kind   FrameKind
	Symbol string
	Opener diag.Range
	// Holds is the frame's own condition, fixed when it was pushed.
	Holds bool
	// Active is Holds and the enclosing frame's Active.
	Active bool
}

// IncludeFunc is invoked for every active #include, in scan order, while
// the evaluator is paused at the directive.
type IncludeFunc func(ctx context.Context, inc *directive.Include) error

// Options configures an evaluation.
type Options struct {
	// Unit names the source for diagnostics and macro locations.
	Unit string
	// Macros is the table to evaluate against. Nil starts from an empty
	// table. Sharing a table across units gives textual include semantics.
	Macros       *MacroTable
	Redefinition Redefinition
	// Strict reports a redefinition with a different value as a warning.
	Strict  bool
	Include IncludeFunc
	Logger  diag.Logger
}

// Evaluated pairs a directive with the activity of the context it was
// evaluated in.
type Evaluated struct {
	Stmt   directive.Statement
	Active bool
}

// Result is the outcome of evaluating one unit.
type Result struct {
	Regions     Regions
	Macros      *MacroTable
	Directives  []Evaluated
	Diagnostics diag.List
}

// IsActive reports whether offset survives conditional compilation.
func (r *Result) IsActive(offset int) bool { return r.Regions.IsActive(offset) }

// MacroValue returns the value of name after the pass.
func (r *Result) MacroValue(name string) (string, bool) { return r.Macros.Value(name) }

// Evaluator is the conditional-compilation state machine for one unit.
type Evaluator struct {
	opts  Options
	stack []Frame
	res   *Result
	diag.Logger
}

// NewEvaluator creates an Evaluator with an empty frame stack.
func NewEvaluator(opts Options) *Evaluator {
	macros := opts.Macros
	if macros == nil {
		macros = NewMacroTable()
	}
	return &Evaluator{
		opts:   opts,
		res:    &Result{Macros: macros},
		Logger: opts.Logger.With("evaluator"),
	}
}

// Evaluate runs a fresh Evaluator over items.
func Evaluate(ctx context.Context, items []directive.Item, opts Options) (*Result, error) {
	e := NewEvaluator(opts)
	for _, it := range items {
		if err := e.Step(ctx, it); err != nil {
			return nil, err
		}
	}
	return e.Finish(), nil
}

// Active reports whether the current position is active: every open
// frame's condition holds.
func (e *Evaluator) Active() bool {
	if len(e.stack) == 0 {
		return true
	}
	return e.stack[len(e.stack)-1].Active
}

// Step consumes one item. It returns an error only when ctx is done or the
// include callback fails.
func (e *Evaluator) Step(ctx context.Context, it directive.Item) error {
	if it.IsHost() {
		e.res.Regions.add(it.Span, e.Active())
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	active := e.Active()
	switch d := it.Stmt.(type) {
	case *directive.Define:
		if active {
			e.define(d)
		}
	case *directive.Undef:
		if active {
			e.res.Macros.Undef(d.Symbol)
		}
	case *directive.Ifdef:
		e.push(IfdefFrame, d.Symbol, d.Span, e.res.Macros.Defined(d.Symbol))
	case *directive.Ifndef:
		e.push(IfndefFrame, d.Symbol, d.Span, !e.res.Macros.Defined(d.Symbol))
	case *directive.Endif:
		if len(e.stack) == 0 {
			e.res.Diagnostics.Add(diag.StructuralError, d.Span, "#endif without #ifdef or #ifndef")
		} else {
			e.stack = e.stack[:len(e.stack)-1]
			active = e.Active()
		}
	case *directive.Include:
		if active && e.opts.Include != nil {
			if err := e.opts.Include(ctx, d); err != nil {
				return err
			}
		}
	}
	e.res.Regions.add(it.Span, active)
	e.res.Directives = append(e.res.Directives, Evaluated{Stmt: it.Stmt, Active: active})
	return nil
}

func (e *Evaluator) push(kind FrameKind, symbol string, opener diag.Range, holds bool) {
	e.stack = append(e.stack, Frame{
		Kind:   kind,
		Symbol: symbol,
		Opener: opener,
		Holds:  holds,
		Active: holds && e.Active(),
	})
}

func (e *Evaluator) define(d *directive.Define) {
	m := Macro{Name: d.Symbol, Value: d.Value, HasValue: d.HasValue, Unit: e.opts.Unit, Span: d.Span}
	prev, exists := e.res.Macros.Lookup(d.Symbol)
	if exists && e.opts.Strict && (prev.Value != m.Value || prev.HasValue != m.HasValue) {
		e.res.Diagnostics.Warn(diag.StructuralError, d.Span, "%q redefined (previous definition in %s at %s)", d.Symbol, prev.Unit, prev.Span)
	}
	if exists && e.opts.Redefinition == FirstWriteWins {
		return
	}
	e.res.Macros.Define(m)
}

// Finish closes the pass. Every frame still open is reported as an
// unterminated conditional block at its opener.
func (e *Evaluator) Finish() *Result {
	for _, f := range e.stack {
		e.res.Diagnostics.Add(diag.StructuralError, f.Opener, "unterminated conditional block: %s %s", f.Kind, f.Symbol)
	}
	e.Log(slog.LevelDebug, "unit evaluated",
		slog.String("unit", e.opts.Unit),
		slog.Int("directives", len(e.res.Directives)),
		slog.Int("regions", len(e.res.Regions)),
		slog.Int("unterminated", len(e.stack)))
	e.stack = nil
	return e.res
}
