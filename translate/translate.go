// Package translate runs the whole preprocessor pipeline for one
// translation and exposes its results as read-only snapshots.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/directive"
	"github.com/rubiojr/dtspp/include"
	"github.com/rubiojr/dtspp/lexer"
	"github.com/rubiojr/dtspp/preprocess"
)

// Define is a macro seeded before the pass, as with -D on the command line.
type Define struct {
	Name     string
	Value    string
	HasValue bool
}

// ParseDefine parses "NAME" or "NAME=VALUE".
func ParseDefine(s string) (Define, error) {
	name, value, hasValue := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return Define{}, fmt.Errorf("invalid define %q: missing name", s)
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		ident := ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || i > 0 && ch >= '0' && ch <= '9'
		if !ident {
			return Define{}, fmt.Errorf("invalid define %q: %q is not an identifier", s, name)
		}
	}
	return Define{Name: name, Value: value, HasValue: hasValue}, nil
}

// Translator holds the settings shared by every translation it runs.
type Translator struct {
	// Provider resolves includes. Nil leaves includes unfollowed.
	Provider     include.Provider
	Defines      []Define
	Redefinition preprocess.Redefinition
	Strict       bool
	// MaxIncludeDepth defaults to include.DefaultMaxDepth.
	MaxIncludeDepth int
	// Logger receives debug events. Nil disables logging.
	Logger *slog.Logger
}

// TranslateFile translates the source the provider knows as id.
func (t *Translator) TranslateFile(ctx context.Context, id include.SourceID) (*Translation, error) {
	g, diags, err := t.resolver().Resolve(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("translating %s: %w", id, err)
	}
	return &Translation{graph: g, diags: diags}, nil
}

// TranslateSource translates src held in memory. The name doubles as the
// unit's SourceID, so quoted includes resolve relative to it.
func (t *Translator) TranslateSource(ctx context.Context, name, src string) (*Translation, error) {
	g, diags, err := t.resolver().ResolveSource(ctx, include.SourceID(name), src)
	if err != nil {
		return nil, fmt.Errorf("translating %s: %w", name, err)
	}
	return &Translation{graph: g, diags: diags}, nil
}

func (t *Translator) resolver() *include.Resolver {
	seed := preprocess.NewMacroTable()
	for _, d := range t.Defines {
		seed.Define(preprocess.Macro{Name: d.Name, Value: d.Value, HasValue: d.HasValue, Unit: preprocess.CommandLine})
	}
	return &include.Resolver{
		Provider: t.Provider,
		Options: preprocess.Options{
			Macros:       seed,
			Redefinition: t.Redefinition,
			Strict:       t.Strict,
		},
		MaxDepth: t.MaxIncludeDepth,
		Logger:   diag.Logger{L: t.Logger},
	}
}

// Translation is the result of one pass. It is never mutated after the
// pass returns.
type Translation struct {
	graph *include.Graph
	diags diag.List
}

// Root returns the root unit.
func (tr *Translation) Root() *include.Unit { return tr.graph.RootUnit() }

// Tokens returns the merged token stream of the root unit.
func (tr *Translation) Tokens() []lexer.Token { return tr.Root().Tokens }

// Statements returns the well-formed directives of the root unit.
func (tr *Translation) Statements() []directive.Statement { return tr.Root().Statements }

// Regions returns the active-region partition of the root unit.
func (tr *Translation) Regions() preprocess.Regions { return tr.Root().Regions }

// IsActive reports whether offset in the root unit survives conditional
// compilation.
func (tr *Translation) IsActive(offset int) bool { return tr.Root().IsActive(offset) }

// MacroValue returns the value of name at the end of the translation.
func (tr *Translation) MacroValue(name string) (string, bool) { return tr.graph.Macros.Value(name) }

// Macros returns the macro table at the end of the translation.
func (tr *Translation) Macros() *preprocess.MacroTable { return tr.graph.Macros }

// ResolvedIncludes returns the translation graph.
func (tr *Translation) ResolvedIncludes() *include.Graph { return tr.graph }

// Diagnostics returns every lex, structural and resolution diagnostic of
// the translation. Resolution errors are reported as includes are followed;
// each unit's structural errors follow once its scan completes.
func (tr *Translation) Diagnostics() diag.List { return tr.diags }
