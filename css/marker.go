package css

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
)

// identFromFilename derives the identifier portion of a marker id from a
// relative path per §3: take the last path segment, replace every
// character that is not a letter, digit, '_', '-', or '.' with '_',
// collapse runs of '_', and skip leading non-letters. If no letter
// remains, the empty string is returned and no marker should be produced.
func identFromFilename(relativePath string) string {
	return sanitizeIdent(path.Base(relativePath))
}

// sanitizeIdent applies the character-replace + collapse + skip-leading-
// non-letter transform shared by the marker ident and the keyframe scope
// prefix (§3, §4.F).
func sanitizeIdent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	collapsed := collapseRuns(b.String(), '_')

	i := 0
	for i < len(collapsed) && !isASCIILetter(collapsed[i]) {
		i++
	}
	if i >= len(collapsed) {
		return ""
	}
	return collapsed[i:]
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func collapseRuns(s string, c byte) string {
	var b strings.Builder
	b.Grow(len(s))
	prevWasC := false
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			if prevWasC {
				continue
			}
			prevWasC = true
		} else {
			prevWasC = false
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// markerGenerator is Component E's generator half: an append-only, ordered
// record of every marker id produced during one pipeline invocation. It is
// created fresh per invocation (§5) and shared between the inserter and the
// compile adapter through capability handles (Next to record, Recorded to
// read).
type markerGenerator struct {
	mu  sync.Mutex
	ids []string
}

func newMarkerGenerator() *markerGenerator {
	return &markerGenerator{}
}

// Next returns the text to splice into a selector list for (relativePath,
// line) — the marker id followed by a comma — and records the bare marker
// id. Returns ok=false when the path yields no usable identifier, in which
// case nothing is recorded and the caller must not insert anything.
func (g *markerGenerator) Next(relativePath string, line int) (insertText string, ok bool) {
	ident := identFromFilename(relativePath)
	if ident == "" {
		return "", false
	}
	id := fmt.Sprintf("#%s_%d", ident, line)
	g.mu.Lock()
	g.ids = append(g.ids, id)
	g.mu.Unlock()
	return id + ",", true
}

// Recorded returns every marker id produced so far, in production order.
func (g *markerGenerator) Recorded() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

type markerState int

const (
	markerStandard markerState = iota
	markerDeclarationHeader
)

// vetoFunc decides whether the accumulated selector text of an upcoming
// header should be skipped for marker insertion.
type vetoFunc func(selectorText string) bool

func noVeto(string) bool { return false }

// isBareElementSelector reports whether sel is a bare-element selector per
// the glossary: no '.', '#', ':', '[', or '>', and no ',' (a comma always
// means more than one selector, so it is never "bare").
func isBareElementSelector(sel string) bool {
	if sel == "" {
		return false
	}
	if strings.ContainsAny(sel, ".#:[>") {
		return false
	}
	if strings.Contains(sel, ",") {
		return false
	}
	return true
}

func vetoForMode(mode MarkerInjectionMode) vetoFunc {
	switch mode {
	case MarkerInjectionSkipBareElements, MarkerInjectionSkipIsolatedBareElements:
		return isBareElementSelector
	default:
		return noVeto
	}
}

// InsertMarkers implements the inserter half of Component E: it walks
// content in reverse with the two-state machine from §4.E, calling gen.Next
// for every header whose accumulated selector text veto does not reject, and
// splices the returned marker text immediately before that header (or, for
// a nested LESS header boundary, immediately after the enclosing block's
// opening brace).
func InsertMarkers(content, relativePath string, gen *markerGenerator, veto vetoFunc) string {
	content = normalizeLineEndings(content)
	if veto == nil {
		veto = noVeto
	}

	prefixNL := make([]int, len(content)+1)
	for i := 0; i < len(content); i++ {
		prefixNL[i+1] = prefixNL[i]
		if content[i] == '\n' {
			prefixNL[i+1]++
		}
	}
	lineAt := func(i int) int { return 1 + prefixNL[i] }

	type insertion struct {
		pos  int
		text string
	}
	var insertions []insertion

	emit := func(pos, headerStart, headerEnd, headerLine int) {
		selText := strings.TrimSpace(content[headerStart:headerEnd])
		if veto(selText) {
			return
		}
		text, ok := gen.Next(relativePath, headerLine)
		if !ok {
			return
		}
		insertions = append(insertions, insertion{pos: pos, text: text})
	}

	state := markerStandard
	bracePos := -1
	headerLineSet := false
	headerLine := 0

	n := len(content)
	for i := n - 1; i >= 0; i-- {
		c := content[i]
		switch state {
		case markerStandard:
			if c == '{' {
				state = markerDeclarationHeader
				bracePos = i
				headerLineSet = false
			}
		case markerDeclarationHeader:
			switch c {
			case '}', ';':
				if !headerLineSet {
					headerLine = lineAt(i + 1)
				}
				emit(i+1, i+1, bracePos, headerLine)
				state = markerStandard
				bracePos = -1
				headerLineSet = false
			case '{':
				if !headerLineSet {
					headerLine = lineAt(i + 1)
				}
				emit(i+1, i+1, bracePos, headerLine)
				bracePos = i
				headerLineSet = false
			case ')', '@':
				state = markerStandard
				bracePos = -1
				headerLineSet = false
			default:
				if !headerLineSet && !isCSSSpace(c) {
					headerLine = lineAt(i)
					headerLineSet = true
				}
			}
		}
	}

	if state == markerDeclarationHeader {
		if !headerLineSet {
			headerLine = lineAt(0)
		}
		emit(0, 0, bracePos, headerLine)
	}

	if len(insertions) == 0 {
		return content
	}
	sort.Slice(insertions, func(a, b int) bool { return insertions[a].pos < insertions[b].pos })

	var b strings.Builder
	b.Grow(len(content) + len(insertions)*16)
	cursor := 0
	for _, ins := range insertions {
		b.WriteString(content[cursor:ins.pos])
		b.WriteString(ins.text)
		cursor = ins.pos
	}
	b.WriteString(content[cursor:])
	return b.String()
}

func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

// markerInserter is the pipeline stage wrapping InsertMarkers/Component E.
type markerInserter struct {
	cfg  Config
	next Loader
	gen  *markerGenerator
	log  *zap.Logger
}

func newMarkerInserter(cfg Config, next Loader, gen *markerGenerator) Loader {
	return &markerInserter{cfg: cfg, next: next, gen: gen, log: cfg.logger().Named("css-marker-inserter")}
}

func (m *markerInserter) Load(ctx context.Context, relativePath string) (FileContents, error) {
	fc, err := m.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	if m.cfg.MarkerInjection == MarkerInjectionOff {
		return fc, nil
	}
	fc.Content = InsertMarkers(fc.Content, relativePath, m.gen, vetoForMode(m.cfg.MarkerInjection))
	return fc, nil
}
