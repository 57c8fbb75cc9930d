package css

import "strings"

// Kind classifies a Segment produced by the Scanner.
type Kind int

const (
	Whitespace Kind = iota
	Comment
	SelectorOrStyleProperty
	StylePropertyColon
	Value
	OpenBrace
	CloseBrace
	SemiColon
	Terminator
	Other
)

func (k Kind) String() string {
	switch k {
	case Whitespace:
		return "Whitespace"
	case Comment:
		return "Comment"
	case SelectorOrStyleProperty:
		return "SelectorOrStyleProperty"
	case StylePropertyColon:
		return "StylePropertyColon"
	case Value:
		return "Value"
	case OpenBrace:
		return "OpenBrace"
	case CloseBrace:
		return "CloseBrace"
	case SemiColon:
		return "SemiColon"
	case Terminator:
		return "Terminator"
	default:
		return "Other"
	}
}

// Segment is one classified run of source text in reading order.
type Segment struct {
	Value string
	Kind  Kind
	Index int
}

// Scanner produces a lazy, single-pass sequence of Segments over a string.
// It recognises /* */ comments, // line comments (LessMode only), whitespace
// runs, string literals, braces and semicolons, and disambiguates ':'
// between a selector position (part of a SelectorOrStyleProperty, e.g. a
// pseudo-class) and a property position (its own StylePropertyColon) by
// looking ahead to the statement's terminator. Malformed input is
// categorised best-effort; the scanner never errors.
//
// A Scanner must not be shared across stages or consumed more than once.
type Scanner struct {
	src      string
	pos      int
	LessMode bool
	done     bool
	inValue  bool
}

// NewScanner creates a Scanner over src. LESS line comments ("// ...") are
// recognised by default; set LessMode to false to disable that (plain CSS
// allows "//" as part of a URL or value).
func NewScanner(src string) *Scanner {
	return &Scanner{src: src, LessMode: true}
}

// Next returns the next segment and true, or a zero Segment and false once
// the scanner is exhausted (after emitting a final Terminator segment at
// EOF).
func (s *Scanner) Next() (Segment, bool) {
	if s.done {
		return Segment{}, false
	}
	if s.pos >= len(s.src) {
		s.done = true
		return Segment{Kind: Terminator, Index: len(s.src)}, true
	}

	start := s.pos
	c := s.src[s.pos]

	// Whitespace run.
	if isCSSSpace(c) {
		for s.pos < len(s.src) && isCSSSpace(s.src[s.pos]) {
			s.pos++
		}
		return Segment{Value: s.src[start:s.pos], Kind: Whitespace, Index: start}, true
	}

	// Block comment.
	if c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*' {
		end := strings.Index(s.src[s.pos+2:], "*/")
		if end < 0 {
			s.pos = len(s.src)
		} else {
			s.pos += 2 + end + 2
		}
		return Segment{Value: s.src[start:s.pos], Kind: Comment, Index: start}, true
	}

	// LESS line comment.
	if s.LessMode && c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/' {
		end := strings.IndexByte(s.src[s.pos:], '\n')
		if end < 0 {
			s.pos = len(s.src)
		} else {
			s.pos += end
		}
		return Segment{Value: s.src[start:s.pos], Kind: Comment, Index: start}, true
	}

	switch c {
	case '{':
		s.pos++
		s.inValue = false
		return Segment{Value: "{", Kind: OpenBrace, Index: start}, true
	case '}':
		s.pos++
		s.inValue = false
		return Segment{Value: "}", Kind: CloseBrace, Index: start}, true
	case ';':
		s.pos++
		s.inValue = false
		return Segment{Value: ";", Kind: SemiColon, Index: start}, true
	case ':':
		s.pos++
		if !s.inValue && !s.headerEndsInBrace(start) {
			s.inValue = true
			return Segment{Value: ":", Kind: StylePropertyColon, Index: start}, true
		}
		// A selector-position ':' (e.g. a pseudo-class) is not a property
		// separator; treat it as ordinary selector text.
		return Segment{Value: ":", Kind: SelectorOrStyleProperty, Index: start}, true
	}

	// A string literal is always part of the surrounding statement text;
	// consume it whole so embedded braces/colons inside it don't confuse
	// the statement scan below.
	if c == '"' || c == '\'' {
		s.pos = skipString(s.src, s.pos)
		return s.classifyStatement(start, s.pos)
	}

	// Otherwise: accumulate a statement — everything up to (but not
	// including) the next whitespace run, comment, string, or structural
	// character, classifying it relative to what terminates it.
	return s.scanStatementChunk(start)
}

// scanStatementChunk accumulates one contiguous run of non-whitespace,
// non-comment, non-structural, non-string, non-colon text. A ':' always
// ends a chunk so Next's top-level dispatch gets a chance to classify it
// (property separator vs. part of a selector, e.g. a pseudo-class).
func (s *Scanner) scanStatementChunk(start int) (Segment, bool) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isCSSSpace(c) || c == '{' || c == '}' || c == ';' || c == '"' || c == '\'' || c == ':' {
			break
		}
		if c == '/' && s.pos+1 < len(s.src) && (s.src[s.pos+1] == '*' || (s.LessMode && s.src[s.pos+1] == '/')) {
			break
		}
		s.pos++
	}
	return s.classifyStatement(start, s.pos)
}

// classifyStatement decides whether the text src[start:end] is plain
// declaration value text (once inValue is set by a property-position ':'),
// an at-rule keyword, or selector/property-name text.
func (s *Scanner) classifyStatement(start, end int) (Segment, bool) {
	text := s.src[start:end]
	if text == "" {
		// A ':' immediately followed by another structural character with
		// nothing accumulated; never loop forever.
		s.pos++
		return Segment{Value: string(s.src[start]), Kind: Other, Index: start}, true
	}

	if s.inValue {
		return Segment{Value: text, Kind: Value, Index: start}, true
	}
	if looksLikeAtRule(text) {
		return Segment{Value: text, Kind: Other, Index: start}, true
	}
	return Segment{Value: text, Kind: SelectorOrStyleProperty, Index: start}, true
}

// headerEndsInBrace looks ahead from start (skipping comments/strings) to
// determine whether the statement currently being scanned is ultimately
// terminated by '{' (a selector header) rather than ';'/'}' (a
// declaration), which decides how an embedded ':' is treated.
func (s *Scanner) headerEndsInBrace(start int) bool {
	i := start
	for i < len(s.src) {
		c := s.src[i]
		switch {
		case c == '{':
			return true
		case c == ';' || c == '}':
			return false
		case c == '"' || c == '\'':
			i = skipString(s.src, i)
			continue
		case c == '/' && i+1 < len(s.src) && s.src[i+1] == '*':
			if j := strings.Index(s.src[i+2:], "*/"); j >= 0 {
				i = i + 2 + j + 2
			} else {
				return false
			}
			continue
		}
		i++
	}
	return false
}

func looksLikeAtRule(text string) bool {
	return len(text) > 0 && text[0] == '@'
}

func skipString(src string, pos int) int {
	quote := src[pos]
	i := pos + 1
	for i < len(src) {
		if src[i] == '\\' && i+1 < len(src) {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1
		}
		i++
	}
	return len(src)
}

func isCSSSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// Segments drains the scanner into a slice; useful for tests and stages
// that need to look behind as well as ahead.
func Segments(src string) []Segment {
	sc := NewScanner(src)
	var out []Segment
	for {
		seg, ok := sc.Next()
		if !ok {
			break
		}
		out = append(out, seg)
		if seg.Kind == Terminator {
			break
		}
	}
	return out
}
