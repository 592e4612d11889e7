package lexer

import (
	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/scanner"
)

// HostLexer is the host grammar's lexical stream as seen by the statement
// layer. *scanner.HostScanner implements it.
type HostLexer interface {
	// Start restarts the stream at offset.
	Start(offset int)
	// Next returns the next host span, or false at end of input.
	Next() (scanner.Span, bool)
	// IsStatementMarker reports whether sp opens a directive statement.
	IsStatementMarker(sp scanner.Span) bool
}

// UnitKind tells host content from directive statements.
type UnitKind uint8

const (
	HostUnit UnitKind = iota
	StatementUnit
)

// Unit is what StatementScanner yields: either one host span forwarded
// untouched, or one directive statement cut out as an opaque region.
type Unit struct {
	Kind UnitKind
	// Host is set for HostUnit.
	Host scanner.Span
	// Marker and Body are set for StatementUnit. Body runs from just after
	// the marker to the end of the statement, excluding the newline.
	Marker diag.Range
	Body   diag.Range
}

// StatementScanner delimits directive statements in a host span stream.
// It does not understand directive grammar.
type StatementScanner struct {
	src  string
	host HostLexer
}

// NewStatementScanner wraps host, which must scan src. A nil host uses the
// device-tree scanner.
func NewStatementScanner(src string, host HostLexer) *StatementScanner {
	if host == nil {
		host = scanner.New(src)
	}
	host.Start(0)
	return &StatementScanner{src: src, host: host}
}

// Next returns the next unit, or false at end of input.
func (s *StatementScanner) Next() (Unit, bool) {
	sp, ok := s.host.Next()
	if !ok {
		return Unit{}, false
	}
	if !s.host.IsStatementMarker(sp) {
		return Unit{Kind: HostUnit, Host: sp}, true
	}
	end := StatementEndOffset(s.src, sp.End)
	s.host.Start(end)
	return Unit{
		Kind:   StatementUnit,
		Marker: diag.Range{Start: sp.Start, End: sp.End},
		Body:   diag.Range{Start: sp.End, End: end},
	}, true
}

// StatementEndOffset returns the offset where the statement whose body
// starts at i ends: the first newline that is not escaped by a backslash
// and not inside a block comment, or end of input.
func StatementEndOffset(src string, i int) int {
	for i < len(src) {
		ch := src[i]
		switch {
		case ch == '\n':
			return i
		case ch == '\\' && continuation(src, i) > 0:
			i += continuation(src, i)
		case ch == '/' && i+1 < len(src) && src[i+1] == '*':
			i = scanner.SkipBlockComment(src, i)
		case ch == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				if n := continuation(src, i); n > 0 {
					i += n
				} else {
					i++
				}
			}
		case ch == '"':
			i = scanner.SkipString(src, i)
		default:
			i++
		}
	}
	return len(src)
}
