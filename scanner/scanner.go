// Package scanner provides the host-language scanner for device-tree
// source. It splits text into opaque host spans while tracking string
// literal and comment boundaries, and recognizes the line-start '#' that
// may open a preprocessor directive statement.
//
// The scanner knows nothing about directive grammar. It only answers two
// questions for the statement layer: what is the next host span, and
// does this span open a directive statement.
package scanner

// Kind classifies a host span.
type Kind uint8

const (
	Text       Kind = iota // identifiers, numbers, node names, property names
	Punct                  // single structural byte: { } [ ] ( ) ; < > = , & :
	Whitespace             // blanks other than newline
	Newline
	Comment // /* ... */ or // ...
	String  // "..." host string literal
	Hash    // '#' as the first non-blank byte of a line
)

var kindNames = [...]string{
	Text:       "text",
	Punct:      "punct",
	Whitespace: "whitespace",
	Newline:    "newline",
	Comment:    "comment",
	String:     "string",
	Hash:       "hash",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Span is one host span, a half-open byte range of the source.
type Span struct {
	Kind  Kind
	Start int
	End   int
}

// Text returns the source text covered by sp.
func (sp Span) Text(src string) string { return src[sp.Start:sp.End] }

// DirectiveKeywords lists the directive names that open a statement. The
// first six are evaluated; the rest are recognized so that they can be
// reported instead of silently leaking into host content.
var DirectiveKeywords = map[string]bool{
	"define": true, "undef": true, "ifdef": true, "ifndef": true,
	"endif": true, "include": true,
	"if": true, "elif": true, "else": true, "error": true,
	"warning": true, "pragma": true, "line": true,
}

// HostScanner iterates over device-tree source one host span at a time.
type HostScanner struct {
	src       string
	pos       int
	lineStart bool
}

// New creates a HostScanner positioned at the start of src.
func New(src string) *HostScanner {
	s := &HostScanner{src: src}
	s.Start(0)
	return s
}

// Start repositions the scanner at offset. Line-start state is derived
// from the preceding bytes so that a restart after a directive statement
// behaves exactly like a continuous scan.
func (s *HostScanner) Start(offset int) {
	if offset > len(s.src) {
		offset = len(s.src)
	}
	s.pos = offset
	s.lineStart = true
	for i := offset - 1; i >= 0; i-- {
		ch := s.src[i]
		if ch == '\n' {
			break
		}
		if !isBlank(ch) {
			s.lineStart = false
			break
		}
	}
}

// Next returns the next host span, or false at end of input.
func (s *HostScanner) Next() (Span, bool) {
	if s.pos >= len(s.src) {
		return Span{}, false
	}
	start := s.pos
	ch := s.src[start]
	kind := Text
	switch {
	case ch == '\n':
		s.pos++
		kind = Newline
	case isBlank(ch):
		s.pos = skipBlanks(s.src, start)
		kind = Whitespace
	case ch == '#' && s.lineStart:
		s.pos++
		kind = Hash
	case s.lookingAt("/*"):
		s.pos = SkipBlockComment(s.src, start)
		kind = Comment
	case s.lookingAt("//"):
		s.pos = skipToEOL(s.src, start)
		kind = Comment
	case ch == '"':
		s.pos = SkipString(s.src, start)
		kind = String
	case isPunct(ch):
		s.pos++
		kind = Punct
	default:
		s.pos = s.skipText(start)
	}
	switch kind {
	case Newline:
		s.lineStart = true
	case Whitespace:
	default:
		s.lineStart = false
	}
	return Span{Kind: kind, Start: start, End: s.pos}, true
}

// IsStatementMarker reports whether sp is a '#' that opens a directive
// statement: a line-start hash followed, after optional blanks, by a
// directive keyword that ends at a blank, end of line, '<' or '"'.
// Device-tree property names such as "#address-cells" do not qualify.
func (s *HostScanner) IsStatementMarker(sp Span) bool {
	if sp.Kind != Hash {
		return false
	}
	i := skipBlanks(s.src, sp.End)
	j := i
	for j < len(s.src) && IsIdentByte(s.src[j]) {
		j++
	}
	if j == i || !DirectiveKeywords[s.src[i:j]] {
		return false
	}
	if j == len(s.src) {
		return true
	}
	switch s.src[j] {
	case ' ', '\t', '\r', '\n', '<', '"', '\\', '/':
		return true
	}
	return false
}

func (s *HostScanner) lookingAt(prefix string) bool {
	return len(s.src)-s.pos >= len(prefix) && s.src[s.pos:s.pos+len(prefix)] == prefix
}

// skipText consumes a run of bytes that is none of the other span kinds.
func (s *HostScanner) skipText(i int) int {
	for i < len(s.src) {
		ch := s.src[i]
		if isBlank(ch) || ch == '\n' || ch == '"' || isPunct(ch) {
			break
		}
		if ch == '/' && i+1 < len(s.src) && (s.src[i+1] == '*' || s.src[i+1] == '/') {
			break
		}
		i++
	}
	return i
}

// SkipBlockComment returns the offset just past the "*/" closing the
// comment opened at i. An unterminated comment runs to end of input.
func SkipBlockComment(src string, i int) int {
	for j := i + 2; j+1 < len(src); j++ {
		if src[j] == '*' && src[j+1] == '/' {
			return j + 2
		}
	}
	return len(src)
}

// SkipString returns the offset just past the closing quote of the string
// opened at i. Device-tree strings cannot span lines, so an unterminated
// string stops before the newline.
func SkipString(src string, i int) int {
	escaped := false
	for j := i + 1; j < len(src); j++ {
		ch := src[j]
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			return j + 1
		case ch == '\n':
			return j
		}
	}
	return len(src)
}

func skipToEOL(src string, i int) int {
	for i < len(src) && src[i] != '\n' {
		i++
	}
	return i
}

func skipBlanks(src string, i int) int {
	for i < len(src) && isBlank(src[i]) {
		i++
	}
	return i
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isPunct(ch byte) bool {
	switch ch {
	case '{', '}', '[', ']', '(', ')', ';', '<', '>', '=', ',', '&', ':':
		return true
	}
	return false
}

// IsIdentByte reports whether ch can appear in a C identifier.
func IsIdentByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

// IsIdentStart reports whether ch can start a C identifier.
func IsIdentStart(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}
