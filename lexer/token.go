// Package lexer turns device-tree source into a single token stream in
// which directive statements are expanded into directive tokens at their
// absolute source offsets.
//
// The pipeline has two stages. StatementScanner walks the host scanner's
// spans and cuts out directive statements as opaque units. MergingLexer
// re-lexes each statement body with the directive lexer, rebases the
// resulting tokens onto the source, and splices them into the stream
// followed by a zero-width StatementEnd token.
package lexer

import (
	"fmt"

	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/scanner"
)

// Kind is the token kind.
type Kind uint8

const (
	Host            Kind = iota // opaque host-language span
	StatementMarker             // the '#' opening a directive statement
	StatementEnd                // zero-width, closes a directive statement

	DefineKw
	UndefKw
	IfdefKw
	IfndefKw
	EndifKw
	IncludeKw

	Symbol
	DefineValue
	HeaderSystem // path between '<' and '>'
	HeaderLocal  // path between '"' and '"'
	DQuote
	LAngle
	RAngle

	Whitespace   // blanks and line continuations inside a statement
	Comment      // comment inside a statement
	BadCharacter // anything else inside a statement
)

var kindNames = [...]string{
	Host:            "HOST",
	StatementMarker: "STATEMENT_MARKER",
	StatementEnd:    "STATEMENT_END",
	DefineKw:        "DEFINE_KW",
	UndefKw:         "UNDEF_KW",
	IfdefKw:         "IFDEF_KW",
	IfndefKw:        "IFNDEF_KW",
	EndifKw:         "ENDIF_KW",
	IncludeKw:       "INCLUDE_KW",
	Symbol:          "SYMBOL",
	DefineValue:     "DEFINE_VALUE",
	HeaderSystem:    "HEADER_SYSTEM",
	HeaderLocal:     "HEADER_LOCAL",
	DQuote:          "D_QUOTE",
	LAngle:          "L_ANGLE",
	RAngle:          "R_ANGLE",
	Whitespace:      "WHITESPACE",
	Comment:         "COMMENT",
	BadCharacter:    "BAD_CHARACTER",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsKeyword reports whether k is one of the directive keyword kinds.
func (k Kind) IsKeyword() bool { return k >= DefineKw && k <= IncludeKw }

// IsTrivia reports whether k carries no directive meaning.
func (k Kind) IsTrivia() bool { return k == Whitespace || k == Comment }

var keywords = map[string]Kind{
	"define":  DefineKw,
	"undef":   UndefKw,
	"ifdef":   IfdefKw,
	"ifndef":  IfndefKw,
	"endif":   EndifKw,
	"include": IncludeKw,
}

// Token is one element of the merged stream. Text is the exact source
// slice [Start, End).
type Token struct {
	Kind Kind
	// HostKind refines Host tokens with the host scanner's classification.
	HostKind scanner.Kind
	Text     string
	Start    int
	End      int
}

// Range returns the source range covered by t.
func (t Token) Range() diag.Range { return diag.Range{Start: t.Start, End: t.End} }

func (t Token) String() string {
	return fmt.Sprintf("%s %d-%d %q", t.Kind, t.Start, t.End, t.Text)
}

// Shift rebases tokens lexed from a statement body at offset 0 onto the
// enclosing source, where the body starts at base.
func Shift(toks []Token, base int) {
	for i := range toks {
		toks[i].Start += base
		toks[i].End += base
	}
}
