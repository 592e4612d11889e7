package lexer

import (
	"context"

	"github.com/rubiojr/dtspp/diag"
)

// MergingLexer is a pull-based adapter over a StatementScanner. Host units
// pass through as Host tokens; each statement becomes its marker token,
// the directive tokens of its body at absolute offsets, and a zero-width
// StatementEnd token.
//
// The stream is single pass: once a token is returned it is never
// revisited. The context is checked once per statement; after
// cancellation Next returns false and Err reports why.
type MergingLexer struct {
	ctx     context.Context
	src     string
	stmts   *StatementScanner
	pending []Token
	diags   diag.List
	err     error
	done    bool
}

// NewMergingLexer creates a MergingLexer over src. A nil host uses the
// device-tree scanner.
func NewMergingLexer(ctx context.Context, src string, host HostLexer) *MergingLexer {
	return &MergingLexer{ctx: ctx, src: src, stmts: NewStatementScanner(src, host)}
}

// Next returns the next token, or false when the stream is exhausted or
// the context was cancelled.
func (m *MergingLexer) Next() (Token, bool) {
	for len(m.pending) == 0 {
		if m.done {
			return Token{}, false
		}
		m.fill()
	}
	t := m.pending[0]
	m.pending = m.pending[1:]
	return t, true
}

// Err returns the context error that stopped the stream, if any.
func (m *MergingLexer) Err() error { return m.err }

// Diagnostics returns the lex errors found so far.
func (m *MergingLexer) Diagnostics() diag.List { return m.diags }

func (m *MergingLexer) fill() {
	u, ok := m.stmts.Next()
	if !ok {
		m.done = true
		return
	}
	if u.Kind == HostUnit {
		m.pending = append(m.pending, Token{
			Kind:     Host,
			HostKind: u.Host.Kind,
			Text:     u.Host.Text(m.src),
			Start:    u.Host.Start,
			End:      u.Host.End,
		})
		return
	}
	if err := m.ctx.Err(); err != nil {
		m.err = err
		m.done = true
		return
	}
	m.pending = append(m.pending, Token{
		Kind:  StatementMarker,
		Text:  m.src[u.Marker.Start:u.Marker.End],
		Start: u.Marker.Start,
		End:   u.Marker.End,
	})
	toks, diags := LexDirective(m.src[u.Body.Start:u.Body.End])
	Shift(toks, u.Body.Start)
	diags.Shift(u.Body.Start)
	m.pending = append(m.pending, toks...)
	m.diags = append(m.diags, diags...)
	m.pending = append(m.pending, Token{Kind: StatementEnd, Start: u.Body.End, End: u.Body.End})
}

// Tokens runs a full merging pass over src and returns every token along
// with the lex errors. It returns the context error if the pass was
// cancelled.
func Tokens(ctx context.Context, src string) ([]Token, diag.List, error) {
	m := NewMergingLexer(ctx, src, nil)
	var toks []Token
	for t, ok := m.Next(); ok; t, ok = m.Next() {
		toks = append(toks, t)
	}
	if err := m.Err(); err != nil {
		return nil, nil, err
	}
	return toks, m.Diagnostics(), nil
}
