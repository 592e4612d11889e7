package include

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/directive"
	"github.com/rubiojr/dtspp/lexer"
	"github.com/rubiojr/dtspp/preprocess"
)

// DefaultMaxDepth bounds include nesting when Resolver.MaxDepth is zero.
const DefaultMaxDepth = 200

// Resolver scans a root unit and every unit it includes, depth first, in
// scan order. All units share one macro table, so a header's definitions
// are visible after its #include. Each source is scanned at most once per
// translation; including a finished unit again only adds an edge.
type Resolver struct {
	// Provider resolves and loads includes. Nil disables include following.
	Provider Provider
	// Options is the evaluation template. Unit, Include and Logger are set
	// per unit; Macros seeds the translation and is not modified.
	Options  preprocess.Options
	MaxDepth int
	// Host creates the host lexer for a unit. Nil uses the device-tree
	// scanner.
	Host func(src string) lexer.HostLexer
	diag.Logger
}

// Resolve loads root through the provider and translates it.
func (r *Resolver) Resolve(ctx context.Context, root SourceID) (*Graph, diag.List, error) {
	if r.Provider == nil {
		return nil, nil, fmt.Errorf("resolving %s: no file provider", root)
	}
	src, err := r.Provider.Load(root)
	if err != nil {
		return nil, nil, err
	}
	return r.ResolveSource(ctx, root, src)
}

// ResolveSource translates src as the root unit id. Includes are resolved
// relative to id. Problems with the input are returned as diagnostics;
// the error is reserved for cancellation.
func (r *Resolver) ResolveSource(ctx context.Context, root SourceID, src string) (*Graph, diag.List, error) {
	macros := preprocess.NewMacroTable()
	if r.Options.Macros != nil {
		macros = r.Options.Macros.Clone()
	}
	t := &translation{
		r:      r,
		g:      newGraph(root, macros),
		Logger: r.Logger.With("include"),
	}
	if err := t.scan(ctx, root, "", 0, src); err != nil {
		return nil, nil, err
	}
	t.Log(slog.LevelDebug, "translation resolved",
		slog.String("root", string(root)),
		slog.Int("units", len(t.g.Units)),
		slog.Int("edges", len(t.g.Edges)),
		slog.Int("cycles", len(t.g.Cycles)))
	return t.g, t.diags, nil
}

// translation is the state of one Resolve call.
type translation struct {
	r     *Resolver
	g     *Graph
	stack []SourceID
	diags diag.List
	diag.Logger
}

func (t *translation) maxDepth() int {
	if t.r.MaxDepth > 0 {
		return t.r.MaxDepth
	}
	return DefaultMaxDepth
}

func (t *translation) report(unit SourceID, r diag.Range, format string, args ...any) {
	t.diags = append(t.diags, diag.Diagnostic{
		Kind:     diag.ResolutionError,
		Severity: diag.SeverityError,
		Unit:     string(unit),
		Range:    r,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (t *translation) scan(ctx context.Context, id, parent SourceID, depth int, src string) error {
	u := &Unit{ID: id, Parent: parent, Depth: depth, Source: src, Lines: diag.NewLines(string(id), src)}
	t.g.Units[id] = u
	t.g.Order = append(t.g.Order, id)
	t.stack = append(t.stack, id)
	defer func() { t.stack = t.stack[:len(t.stack)-1] }()

	var host lexer.HostLexer
	if t.r.Host != nil {
		host = t.r.Host(src)
	}
	m := lexer.NewMergingLexer(ctx, src, host)
	parsed := directive.Parse(m)
	if err := m.Err(); err != nil {
		return err
	}
	u.Tokens = parsed.Tokens
	u.Statements = parsed.Statements
	t.diags.Append(string(id), m.Diagnostics())
	t.diags.Append(string(id), parsed.Diagnostics)

	opts := t.r.Options
	opts.Unit = string(id)
	opts.Macros = t.g.Macros
	opts.Logger = t.r.Logger
	opts.Include = func(ctx context.Context, inc *directive.Include) error {
		return t.follow(ctx, u, inc)
	}
	res, err := preprocess.Evaluate(ctx, parsed.Items, opts)
	if err != nil {
		return err
	}
	u.Regions = res.Regions
	u.Directives = res.Directives
	t.diags.Append(string(id), res.Diagnostics)
	t.Log(slog.LevelDebug, "unit scanned",
		slog.String("unit", string(id)),
		slog.Int("depth", depth),
		slog.Int("tokens", len(u.Tokens)),
		slog.Int("statements", len(u.Statements)))
	return nil
}

// follow handles one active #include of unit u.
func (t *translation) follow(ctx context.Context, u *Unit, inc *directive.Include) error {
	if t.r.Provider == nil {
		return nil
	}
	id, ok := t.r.Provider.Resolve(inc.Path, inc.System, u.ID)
	if !ok {
		t.report(u.ID, inc.Span, "cannot resolve %s", inc)
		return nil
	}
	for i, open := range t.stack {
		if open != id {
			continue
		}
		cycle := append([]SourceID(nil), t.stack[i:]...)
		t.g.Cycles = append(t.g.Cycles, cycle)
		t.g.Edges = append(t.g.Edges, Edge{From: u.ID, To: id, Directive: inc, Cycle: true})
		t.report(u.ID, inc.Span, "include cycle: %s", formatCycle(cycle))
		t.Log(slog.LevelDebug, "include cycle", slog.String("cycle", formatCycle(cycle)))
		return nil
	}
	if _, done := t.g.Units[id]; done {
		t.g.Edges = append(t.g.Edges, Edge{From: u.ID, To: id, Directive: inc})
		return nil
	}
	if u.Depth+1 > t.maxDepth() {
		t.report(u.ID, inc.Span, "#include nested deeper than %d levels", t.maxDepth())
		return nil
	}
	src, err := t.r.Provider.Load(id)
	if err != nil {
		t.report(u.ID, inc.Span, "cannot load %s: %v", id, err)
		return nil
	}
	t.g.Edges = append(t.g.Edges, Edge{From: u.ID, To: id, Directive: inc})
	t.Log(slog.LevelDebug, "include resolved",
		slog.String("from", string(u.ID)),
		slog.String("path", inc.Path),
		slog.String("to", string(id)))
	return t.scan(ctx, id, u.ID, u.Depth+1, src)
}

func formatCycle(cycle []SourceID) string {
	parts := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		parts = append(parts, string(id))
	}
	parts = append(parts, string(cycle[0]))
	return strings.Join(parts, " -> ")
}
