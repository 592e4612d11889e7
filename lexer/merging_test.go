package lexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/dtspp/scanner"
)

func assertTiles(t *testing.T, src string, toks []Token) {
	t.Helper()
	pos := 0
	for _, tok := range toks {
		require.Equal(t, pos, tok.Start, "gap or overlap before %s", tok)
		require.GreaterOrEqual(t, tok.End, tok.Start)
		assert.Equal(t, src[tok.Start:tok.End], tok.Text)
		pos = tok.End
	}
	assert.Equal(t, len(src), pos)
}

func TestTokens_Tiling(t *testing.T) {
	inputs := []string{
		"",
		"/dts-v1/;\n",
		"#include <dt-bindings/gpio/gpio.h>\n/ { };\n",
		"#define FOO\n#ifdef FOO\nA\n#endif\nB\n",
		"  #define X 1 /* multi\nline */ tail\n",
		"#define LONG 1 \\\n 2\n",
		"/ {\n\t#address-cells = <1>;\n\t#size-cells = <0>;\n};\n",
		"#include \"unterminated\n#endif",
		"#endif",
		"s = \"#define NOT\";\n",
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			toks, _, err := Tokens(context.Background(), src)
			require.NoError(t, err)
			assertTiles(t, src, toks)
		})
	}
}

func TestTokens_StatementShape(t *testing.T) {
	src := "a;\n#ifdef FOO\nb;\n"
	toks, diags, err := Tokens(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, diags)

	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{
		Host, Host, Host, // a ; \n
		StatementMarker, IfdefKw, Whitespace, Symbol, StatementEnd,
		Host, Host, Host, Host, // \n b ; \n
	}, kinds)

	// Directive tokens carry absolute offsets.
	assert.Equal(t, Token{Kind: StatementMarker, Text: "#", Start: 3, End: 4}, toks[3])
	assert.Equal(t, Token{Kind: IfdefKw, Text: "ifdef", Start: 4, End: 9}, toks[4])
	assert.Equal(t, Token{Kind: Symbol, Text: "FOO", Start: 10, End: 13}, toks[6])
	assert.Equal(t, Token{Kind: StatementEnd, Start: 13, End: 13}, toks[7])
}

func TestTokens_PropertyIsHost(t *testing.T) {
	src := "#address-cells = <1>;"
	toks, _, err := Tokens(context.Background(), src)
	require.NoError(t, err)
	for _, tok := range toks {
		assert.Equal(t, Host, tok.Kind)
	}
	assert.Equal(t, scanner.Hash, toks[0].HostKind)
}

func TestTokens_LexErrorsAreAbsolute(t *testing.T) {
	src := "x\n#include <open.h\ny\n"
	toks, diags, err := Tokens(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 11, diags[0].Range.Start)
	assert.Equal(t, 18, diags[0].Range.End)
	assertTiles(t, src, toks)
}

func TestTokens_MultilineStatement(t *testing.T) {
	src := "#define X 1 /* a\nb */ 2\nhost"
	toks, _, err := Tokens(context.Background(), src)
	require.NoError(t, err)
	var end Token
	for _, tok := range toks {
		if tok.Kind == StatementEnd {
			end = tok
		}
	}
	assert.Equal(t, 23, end.Start)
	assert.Equal(t, Host, toks[len(toks)-1].Kind)
	assert.Equal(t, "host", toks[len(toks)-1].Text)
}

func TestTokens_Idempotent(t *testing.T) {
	src := "#define A 1\n#ifndef B\nnode { };\n#endif\n"
	first, d1, err := Tokens(context.Background(), src)
	require.NoError(t, err)
	second, d2, err := Tokens(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, d1, d2)
}

func TestMergingLexer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := NewMergingLexer(ctx, "a\n#define X\nb\n", nil)
	var toks []Token
	for tok, ok := m.Next(); ok; tok, ok = m.Next() {
		toks = append(toks, tok)
	}
	assert.ErrorIs(t, m.Err(), context.Canceled)
	// Host content before the first statement boundary is still delivered.
	assert.Len(t, toks, 2)

	_, _, err := Tokens(ctx, "#endif")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatementEndOffset(t *testing.T) {
	tests := []struct {
		src  string
		from int
		want int
	}{
		{"#define X\nnext", 1, 9},
		{"#define X", 1, 9},
		{"#define X \\\n 1\nnext", 1, 14},
		{"#define X /* a\n b */\nnext", 1, 20},
		{"#define X // c /* d\nnext", 1, 19},
		{"#include \"a\nb\"", 1, 11},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, StatementEndOffset(tt.src, tt.from))
		})
	}
}

func TestStatementScanner_Units(t *testing.T) {
	src := "x\n#endif\n"
	ss := NewStatementScanner(src, nil)
	var units []Unit
	for u, ok := ss.Next(); ok; u, ok = ss.Next() {
		units = append(units, u)
	}
	require.Len(t, units, 4)
	assert.Equal(t, HostUnit, units[0].Kind)
	assert.Equal(t, HostUnit, units[1].Kind)
	assert.Equal(t, StatementUnit, units[2].Kind)
	assert.Equal(t, 2, units[2].Marker.Start)
	assert.Equal(t, 3, units[2].Body.Start)
	assert.Equal(t, 8, units[2].Body.End)
	assert.Equal(t, scanner.Newline, units[3].Host.Kind)
}
