package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/dtspp/diag"
)

type kt struct {
	kind Kind
	text string
}

func significant(toks []Token) []kt {
	var out []kt
	for _, t := range toks {
		if t.Kind.IsTrivia() {
			continue
		}
		out = append(out, kt{t.Kind, t.Text})
	}
	return out
}

func TestLexDirective(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []kt
	}{
		{"define bare", "define FOO", []kt{{DefineKw, "define"}, {Symbol, "FOO"}}},
		{"define value", "define FOO 1", []kt{{DefineKw, "define"}, {Symbol, "FOO"}, {DefineValue, "1"}}},
		{"define expr", "define MASK (1 << 4)", []kt{
			{DefineKw, "define"}, {Symbol, "MASK"}, {DefineValue, "(1"}, {DefineValue, "<<"}, {DefineValue, "4)"},
		}},
		{"define string", `define NAME "a  b"`, []kt{{DefineKw, "define"}, {Symbol, "NAME"}, {DefineValue, `"a  b"`}}},
		{"define function-like", "define F(x) x", []kt{{DefineKw, "define"}, {Symbol, "F"}, {DefineValue, "(x)"}, {DefineValue, "x"}}},
		{"define no name", "define 12", []kt{{DefineKw, "define"}, {DefineValue, "12"}}},
		{"undef", "undef FOO", []kt{{UndefKw, "undef"}, {Symbol, "FOO"}}},
		{"ifdef", " ifdef FOO", []kt{{IfdefKw, "ifdef"}, {Symbol, "FOO"}}},
		{"ifndef", "ifndef FOO_H", []kt{{IfndefKw, "ifndef"}, {Symbol, "FOO_H"}}},
		{"endif", "endif", []kt{{EndifKw, "endif"}}},
		{"endif trailing", "endif FOO", []kt{{EndifKw, "endif"}, {Symbol, "FOO"}}},
		{"include system", "include <dt-bindings/gpio/gpio.h>", []kt{
			{IncludeKw, "include"}, {LAngle, "<"}, {HeaderSystem, "dt-bindings/gpio/gpio.h"}, {RAngle, ">"},
		}},
		{"include local", `include "board.dtsi"`, []kt{
			{IncludeKw, "include"}, {DQuote, `"`}, {HeaderLocal, "board.dtsi"}, {DQuote, `"`},
		}},
		{"include empty", "include <>", []kt{{IncludeKw, "include"}, {LAngle, "<"}, {RAngle, ">"}}},
		{"include macro", "include FOO", []kt{{IncludeKw, "include"}, {Symbol, "FOO"}}},
		{"unsupported", "else", []kt{{Symbol, "else"}}},
		{"junk", "ifdef 1+", []kt{{IfdefKw, "ifdef"}, {BadCharacter, "1+"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, diags := LexDirective(tt.text)
			assert.Empty(t, diags)
			assert.Equal(t, tt.want, significant(toks))
		})
	}
}

func TestLexDirective_Tiles(t *testing.T) {
	inputs := []string{
		"define FOO 1 /* one */ // trailing",
		"include <a.h> junk",
		"define LONG \\\n  continued",
		"include \"open",
		"ifdef /* unterminated",
		"",
		"   ",
	}
	for _, text := range inputs {
		t.Run(text, func(t *testing.T) {
			toks, _ := LexDirective(text)
			pos := 0
			for _, tok := range toks {
				assert.Equal(t, pos, tok.Start)
				assert.Equal(t, text[tok.Start:tok.End], tok.Text)
				pos = tok.End
			}
			assert.Equal(t, len(text), pos)
		})
	}
}

func TestLexDirective_Comments(t *testing.T) {
	toks, diags := LexDirective("define X 1 /* c */ 2")
	require.Empty(t, diags)
	assert.Equal(t, []kt{{DefineKw, "define"}, {Symbol, "X"}, {DefineValue, "1"}, {DefineValue, "2"}}, significant(toks))

	var comments int
	for _, tok := range toks {
		if tok.Kind == Comment {
			comments++
		}
	}
	assert.Equal(t, 1, comments)
}

func TestLexDirective_Continuation(t *testing.T) {
	toks, diags := LexDirective("define X \\\n  42")
	require.Empty(t, diags)
	assert.Equal(t, []kt{{DefineKw, "define"}, {Symbol, "X"}, {DefineValue, "42"}}, significant(toks))
}

func TestLexDirective_UnterminatedHeader(t *testing.T) {
	toks, diags := LexDirective("include <a.h")
	require.Len(t, diags, 1)
	assert.Equal(t, diag.LexError, diags[0].Kind)
	assert.Equal(t, diag.Range{Start: 8, End: 12}, diags[0].Range)
	assert.Equal(t, []kt{{IncludeKw, "include"}, {LAngle, "<"}, {HeaderSystem, "a.h"}}, significant(toks))

	_, diags = LexDirective(`include "a.h`)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.LexError, diags[0].Kind)
}

func TestLexDirective_UnterminatedComment(t *testing.T) {
	_, diags := LexDirective("endif /* open")
	require.Len(t, diags, 1)
	assert.Equal(t, diag.LexError, diags[0].Kind)
	assert.Equal(t, "unterminated comment", diags[0].Message)
}

func TestShift(t *testing.T) {
	toks, _ := LexDirective("ifdef FOO")
	Shift(toks, 100)
	require.Len(t, toks, 3)
	assert.Equal(t, Token{Kind: IfdefKw, Text: "ifdef", Start: 100, End: 105}, toks[0])
	assert.Equal(t, Token{Kind: Whitespace, Text: " ", Start: 105, End: 106}, toks[1])
	assert.Equal(t, Token{Kind: Symbol, Text: "FOO", Start: 106, End: 109}, toks[2])
}
