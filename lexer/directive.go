package lexer

import (
	"github.com/rubiojr/dtspp/diag"
	"github.com/rubiojr/dtspp/scanner"
)

// LexDirective tokenizes the body of one directive statement, the text
// after the '#' marker up to the end of the statement. Offsets in the
// returned tokens and diagnostics are local to text.
//
// Lexing never fails: an unterminated header path yields a token up to
// the end of the body plus a LexError.
func LexDirective(text string) ([]Token, diag.List) {
	l := &directiveLexer{text: text}
	l.run()
	return l.toks, l.diags
}

type directiveLexer struct {
	text  string
	pos   int
	toks  []Token
	diags diag.List
}

func (l *directiveLexer) run() {
	l.trivia()
	if l.pos >= len(l.text) {
		return
	}
	if !scanner.IsIdentStart(l.text[l.pos]) {
		l.rest()
		return
	}
	start := l.pos
	l.ident()
	kind, ok := keywords[l.text[start:l.pos]]
	if !ok {
		// Unsupported directive name. The parser reports it.
		l.emit(Symbol, start)
		l.rest()
		return
	}
	l.emit(kind, start)
	switch kind {
	case DefineKw:
		l.define()
	case IncludeKw:
		l.include()
	default:
		l.rest()
	}
}

func (l *directiveLexer) emit(kind Kind, start int) {
	l.toks = append(l.toks, Token{Kind: kind, Text: l.text[start:l.pos], Start: start, End: l.pos})
}

func (l *directiveLexer) peek(off int) byte {
	if l.pos+off < len(l.text) {
		return l.text[l.pos+off]
	}
	return 0
}

// trivia consumes blanks, line continuations and comments.
func (l *directiveLexer) trivia() {
	for l.pos < len(l.text) {
		start := l.pos
		switch {
		case l.blankOrContinuation() > 0:
			for n := l.blankOrContinuation(); n > 0; n = l.blankOrContinuation() {
				l.pos += n
			}
			l.emit(Whitespace, start)
		case l.peek(0) == '/' && l.peek(1) == '*':
			l.pos = scanner.SkipBlockComment(l.text, l.pos)
			if l.pos == len(l.text) && (l.pos-start < 4 || l.text[l.pos-2:] != "*/") {
				l.diags.Add(diag.LexError, diag.Range{Start: start, End: l.pos}, "unterminated comment")
			}
			l.emit(Comment, start)
		case l.peek(0) == '/' && l.peek(1) == '/':
			l.pos = len(l.text)
			l.emit(Comment, start)
		default:
			return
		}
	}
}

// blankOrContinuation returns the length of the blank or backslash-newline
// at the current position, or 0.
func (l *directiveLexer) blankOrContinuation() int {
	if l.pos >= len(l.text) {
		return 0
	}
	switch ch := l.text[l.pos]; ch {
	case ' ', '\t', '\r', '\f', '\v':
		return 1
	case '\\':
		return continuation(l.text, l.pos)
	}
	return 0
}

func (l *directiveLexer) ident() {
	for l.pos < len(l.text) && scanner.IsIdentByte(l.text[l.pos]) {
		l.pos++
	}
}

// define lexes "name value...". The value is kept raw and split only at
// trivia, so the parser can rebuild it with normalized spacing.
func (l *directiveLexer) define() {
	l.trivia()
	if l.pos < len(l.text) && scanner.IsIdentStart(l.text[l.pos]) {
		start := l.pos
		l.ident()
		l.emit(Symbol, start)
	}
	for l.pos < len(l.text) {
		l.trivia()
		if l.pos >= len(l.text) {
			return
		}
		start := l.pos
		l.valueRun()
		l.emit(DefineValue, start)
	}
}

// valueRun consumes value bytes up to the next blank or comment. Quoted
// literals are consumed whole so that blanks inside them survive.
func (l *directiveLexer) valueRun() {
	for l.pos < len(l.text) {
		ch := l.text[l.pos]
		if l.blankOrContinuation() > 0 || ch == '/' && (l.peek(1) == '*' || l.peek(1) == '/') {
			return
		}
		if ch == '"' || ch == '\'' {
			l.pos = skipQuoted(l.text, l.pos, ch)
			continue
		}
		l.pos++
	}
}

func (l *directiveLexer) include() {
	l.trivia()
	if l.pos >= len(l.text) {
		return
	}
	switch l.text[l.pos] {
	case '<':
		l.header(LAngle, HeaderSystem, RAngle, '>')
	case '"':
		l.header(DQuote, HeaderLocal, DQuote, '"')
	}
	l.rest()
}

func (l *directiveLexer) header(open, path, close Kind, closer byte) {
	start := l.pos
	l.pos++
	l.emit(open, start)
	pathStart := l.pos
	for l.pos < len(l.text) && l.text[l.pos] != closer {
		l.pos++
	}
	if l.pos > pathStart {
		l.emit(path, pathStart)
	}
	if l.pos >= len(l.text) {
		l.diags.Add(diag.LexError, diag.Range{Start: start, End: l.pos}, "unterminated header path, missing %q", closer)
		return
	}
	closeStart := l.pos
	l.pos++
	l.emit(close, closeStart)
}

// rest lexes whatever follows the meaningful part of a statement.
func (l *directiveLexer) rest() {
	for {
		l.trivia()
		if l.pos >= len(l.text) {
			return
		}
		start := l.pos
		if scanner.IsIdentStart(l.text[l.pos]) {
			l.ident()
			l.emit(Symbol, start)
			continue
		}
		for l.pos < len(l.text) && l.blankOrContinuation() == 0 && !scanner.IsIdentStart(l.text[l.pos]) {
			if l.peek(0) == '/' && (l.peek(1) == '*' || l.peek(1) == '/') {
				break
			}
			l.pos++
		}
		l.emit(BadCharacter, start)
	}
}

func skipQuoted(text string, i int, quote byte) int {
	escaped := false
	for j := i + 1; j < len(text); j++ {
		switch ch := text[j]; {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == quote:
			return j + 1
		}
	}
	return len(text)
}

// continuation returns the length of a backslash-newline sequence starting
// at i, allowing blanks between the backslash and the newline, or 0.
func continuation(text string, i int) int {
	if i >= len(text) || text[i] != '\\' {
		return 0
	}
	j := i + 1
	for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\r') {
		j++
	}
	if j < len(text) && text[j] == '\n' {
		return j + 1 - i
	}
	return 0
}
