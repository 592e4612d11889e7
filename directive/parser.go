package directive

import (
	"strings"

	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/lexer"
)

// TokenSource is a forward-only token stream. *lexer.MergingLexer
// implements it.
type TokenSource interface {
	Next() (lexer.Token, bool)
}

// Result is the outcome of parsing one unit.
type Result struct {
	// Items tile the unit in source order.
	Items []Item
	// Statements holds the well-formed directives in source order.
	Statements []Statement
	// Tokens is every token read from the source.
	Tokens      []lexer.Token
	Diagnostics diag.List
}

// Parse consumes src to exhaustion. A statement with the wrong shape for
// its keyword is reported as a StructuralError and dropped; parsing
// continues with the next statement.
func Parse(src TokenSource) *Result {
	p := &parser{src: src, res: &Result{}}
	p.run()
	return p.res
}

type parser struct {
	src TokenSource
	res *Result
}

func (p *parser) run() {
	for tok, ok := p.src.Next(); ok; tok, ok = p.src.Next() {
		p.res.Tokens = append(p.res.Tokens, tok)
		if tok.Kind != lexer.StatementMarker {
			p.host(tok.Range())
			continue
		}
		stmt := []lexer.Token{tok}
		for {
			t, ok := p.src.Next()
			if !ok {
				// Stream stopped mid-statement (cancellation); drop it.
				return
			}
			p.res.Tokens = append(p.res.Tokens, t)
			if t.Kind == lexer.StatementEnd {
				stmt = append(stmt, t)
				break
			}
			stmt = append(stmt, t)
		}
		span := diag.Range{Start: stmt[0].Start, End: stmt[len(stmt)-1].End}
		if s := p.reduce(stmt, span); s != nil {
			p.res.Statements = append(p.res.Statements, s)
			p.res.Items = append(p.res.Items, Item{Stmt: s, Span: span})
		} else {
			p.host(span)
		}
	}
}

// host extends the trailing host item or starts a new one.
func (p *parser) host(r diag.Range) {
	if r.Len() == 0 {
		return
	}
	if n := len(p.res.Items); n > 0 {
		last := &p.res.Items[n-1]
		if last.IsHost() && last.Span.End == r.Start {
			last.Span.End = r.End
			return
		}
	}
	p.res.Items = append(p.res.Items, Item{Span: r})
}

func (p *parser) errorf(r diag.Range, format string, args ...any) {
	p.res.Diagnostics.Add(diag.StructuralError, r, format, args...)
}

func (p *parser) warnf(r diag.Range, format string, args ...any) {
	p.res.Diagnostics.Warn(diag.StructuralError, r, format, args...)
}

// reduce turns one marker..end token run into a statement, or nil.
func (p *parser) reduce(stmt []lexer.Token, span diag.Range) Statement {
	var sig []lexer.Token
	for _, t := range stmt[1 : len(stmt)-1] {
		if !t.Kind.IsTrivia() {
			sig = append(sig, t)
		}
	}
	if len(sig) == 0 {
		p.errorf(span, "empty directive")
		return nil
	}
	kw, args := sig[0], sig[1:]
	switch kw.Kind {
	case lexer.DefineKw:
		return p.define(stmt, args, span)
	case lexer.UndefKw:
		if name, ok := p.symbolArg(kw, args, span); ok {
			return &Undef{Symbol: name, Span: span}
		}
	case lexer.IfdefKw:
		if name, ok := p.symbolArg(kw, args, span); ok {
			return &Ifdef{Symbol: name, Span: span}
		}
	case lexer.IfndefKw:
		if name, ok := p.symbolArg(kw, args, span); ok {
			return &Ifndef{Symbol: name, Span: span}
		}
	case lexer.EndifKw:
		if len(args) > 0 {
			p.warnf(rangeOf(args), "extra tokens at end of #endif directive")
		}
		return &Endif{Span: span}
	case lexer.IncludeKw:
		return p.include(args, span)
	case lexer.Symbol:
		p.errorf(span, "unsupported directive #%s", kw.Text)
	default:
		p.errorf(span, "invalid preprocessing directive")
	}
	return nil
}

// symbolArg checks the single-symbol shape shared by undef, ifdef and
// ifndef. Trailing tokens are a warning, a missing symbol an error.
func (p *parser) symbolArg(kw lexer.Token, args []lexer.Token, span diag.Range) (string, bool) {
	if len(args) == 0 {
		p.errorf(span, "no macro name given in #%s directive", kw.Text)
		return "", false
	}
	if args[0].Kind != lexer.Symbol {
		p.errorf(args[0].Range(), "macro names must be identifiers")
		return "", false
	}
	if len(args) > 1 {
		p.warnf(rangeOf(args[1:]), "extra tokens at end of #%s directive", kw.Text)
	}
	return args[0].Text, true
}

func (p *parser) define(stmt, args []lexer.Token, span diag.Range) Statement {
	if len(args) == 0 {
		p.errorf(span, "no macro name given in #define directive")
		return nil
	}
	name := args[0]
	if name.Kind != lexer.Symbol {
		p.errorf(name.Range(), "macro names must be identifiers")
		return nil
	}
	vals := args[1:]
	if len(vals) > 0 && vals[0].Start == name.End && strings.HasPrefix(vals[0].Text, "(") {
		p.errorf(span, "function-like macro %s is not supported", name.Text)
		return nil
	}
	d := &Define{Symbol: name.Text, Span: span}
	if len(vals) > 0 {
		d.Value = rawText(stmt, vals[0].Start, vals[len(vals)-1].End)
		d.HasValue = true
	}
	return d
}

func (p *parser) include(args []lexer.Token, span diag.Range) Statement {
	if len(args) == 0 {
		p.errorf(span, "#include expects \"FILENAME\" or <FILENAME>")
		return nil
	}
	open := args[0]
	var pathKind, closeKind lexer.Kind
	switch open.Kind {
	case lexer.LAngle:
		pathKind, closeKind = lexer.HeaderSystem, lexer.RAngle
	case lexer.DQuote:
		pathKind, closeKind = lexer.HeaderLocal, lexer.DQuote
	default:
		p.errorf(span, "#include expects \"FILENAME\" or <FILENAME>")
		return nil
	}
	if len(args) < 2 || args[1].Kind != pathKind {
		if len(args) >= 2 && args[1].Kind == closeKind {
			p.errorf(span, "empty filename in #include")
		}
		// Otherwise the path is unterminated and the lexer already said so.
		return nil
	}
	if len(args) < 3 || args[2].Kind != closeKind {
		return nil
	}
	if len(args) > 3 {
		p.warnf(rangeOf(args[3:]), "extra tokens at end of #include directive")
	}
	path := args[1]
	return &Include{
		Path:     path.Text,
		System:   open.Kind == lexer.LAngle,
		Span:     span,
		PathSpan: path.Range(),
	}
}

func rangeOf(toks []lexer.Token) diag.Range {
	return diag.Range{Start: toks[0].Start, End: toks[len(toks)-1].End}
}

// rawText returns the source text covered by the tokens of stmt that lie
// in [start, end), trivia included.
func rawText(stmt []lexer.Token, start, end int) string {
	var sb strings.Builder
	for _, t := range stmt {
		if t.Start >= start && t.End <= end {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}
