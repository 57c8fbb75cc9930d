package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	tdcss "github.com/tdewolff/parse/v2/css"
)

// PathFilter is handed every candidate selector path of one rule set — the
// flattened, comma-separated result of joining that rule's LESS ancestors
// with its own selector list — and returns the survivors, in order, to
// actually emit (Component G's post-evaluation visitor, §4.G).
type PathFilter func(paths []string) []string

// LessEngine flattens nested LESS block structure into flat CSS, visiting
// every rule set with filter before its selector list is written out. The
// actual LESS language (expressions, mixins, variables) is out of scope —
// only brace nesting and selector composition are modelled, which is all
// the pipeline's own marker/keyframe/import stages ever produce or expect.
type LessEngine interface {
	Compile(content string, filter PathFilter) (string, error)
}

type defaultLessEngine struct{}

// NewDefaultLessEngine returns the built-in LessEngine. It walks content
// with tdewolff's CSS grammar parser, recursing into every BeginRulesetGrammar
// it meets (rather than assuming one flat level, as a plain-CSS consumer of
// the same event stream would) so that genuinely nested LESS blocks flatten
// correctly. Swap in a different LessEngine (CGO or subprocess-backed) to
// replace this without touching the path-filter algorithm below.
func NewDefaultLessEngine() LessEngine {
	return defaultLessEngine{}
}

func (defaultLessEngine) Compile(content string, filter PathFilter) (string, error) {
	input := parse.NewInput(bytes.NewBufferString(content))
	p := tdcss.NewParser(input, false)

	var out strings.Builder
	err := compileLevel(p, filter, nil, nil, &out)
	return out.String(), err
}

// compileLevel consumes grammar events until the level it was called for
// ends (EOF, the matching EndAtRuleGrammar, or the matching
// EndRulesetGrammar). decls is nil unless this level is the direct body of
// a rule set, in which case DeclarationGrammar events accumulate there as
// "prop:value" pairs joined by ';'. Flattened, filtered child rule sets and
// pass-through at-rule blocks are appended to nested as they close.
func compileLevel(p *tdcss.Parser, filter PathFilter, ancestorPaths []string, decls, nested *strings.Builder) error {
	for {
		gt, _, data := p.Next()

		switch gt {
		case tdcss.ErrorGrammar:
			if err := p.Err(); err != nil && err.Error() != "EOF" {
				return err
			}
			return nil

		case tdcss.EndAtRuleGrammar, tdcss.EndRulesetGrammar:
			return nil

		case tdcss.DeclarationGrammar:
			if decls == nil {
				continue
			}
			if decls.Len() > 0 {
				decls.WriteString(";")
			}
			decls.WriteString(string(data))
			decls.WriteString(":")
			decls.WriteString(joinValues(p.Values()))

		case tdcss.CustomPropertyGrammar:
			if decls == nil {
				continue
			}
			if decls.Len() > 0 {
				decls.WriteString(";")
			}
			decls.WriteString(string(data))
			decls.WriteString(":")
			decls.WriteString(joinValues(p.Values()))

		case tdcss.BeginAtRuleGrammar:
			atRule := string(data)
			header := joinValues(p.Values())
			var body strings.Builder
			if err := compileLevel(p, filter, ancestorPaths, nil, &body); err != nil {
				return err
			}
			nested.WriteString(atRule)
			if header != "" {
				nested.WriteString(" ")
				nested.WriteString(header)
			}
			nested.WriteString("{")
			nested.WriteString(body.String())
			nested.WriteString("}")

		case tdcss.AtRuleGrammar:
			atRule := string(data)
			header := joinValues(p.Values())
			nested.WriteString(atRule)
			if header != "" {
				nested.WriteString(" ")
				nested.WriteString(header)
			}
			nested.WriteString(";")

		case tdcss.BeginRulesetGrammar, tdcss.QualifiedRuleGrammar:
			header := string(data) + joinValues(p.Values())
			childPaths := crossJoinPaths(ancestorPaths, splitTopLevelCommas(header))

			var childDecls, childNested strings.Builder
			if err := compileLevel(p, filter, childPaths, &childDecls, &childNested); err != nil {
				return err
			}
			if childDecls.Len() > 0 {
				survivors := filter(childPaths)
				if len(survivors) > 0 {
					nested.WriteString(strings.Join(survivors, ","))
					nested.WriteString("{")
					nested.WriteString(childDecls.String())
					nested.WriteString("}")
				}
			}
			nested.WriteString(childNested.String())
		}
	}
}

func joinValues(tokens []tdcss.Token) string {
	var b strings.Builder
	sawContent := false
	for _, t := range tokens {
		if t.TokenType == tdcss.WhitespaceToken {
			if sawContent {
				b.WriteByte(' ')
			}
			continue
		}
		b.Write(t.Data)
		sawContent = true
	}
	return strings.TrimSpace(b.String())
}

// splitTopLevelCommas splits a selector-list header on ',' that is not
// nested inside parentheses, brackets, or a string literal, trimming and
// whitespace-normalising each resulting path.
func splitTopLevelCommas(header string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(header); i++ {
		switch header[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case '"', '\'':
			i = skipString(header, i) - 1
		case ',':
			if depth == 0 {
				parts = append(parts, normalizeSelectorText(header[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, normalizeSelectorText(header[start:]))

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeSelectorText(s string) string {
	var b strings.Builder
	lastSpace := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isCSSSpace(c) {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteByte(c)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// crossJoinPaths joins every ancestor path with every child path using a
// descendant combinator, unless the child path already begins with an
// explicit combinator ('>', '+', '~'), in which case it is attached
// directly. An empty ancestor list (the document root) passes children
// through unchanged.
func crossJoinPaths(ancestors, children []string) []string {
	if len(ancestors) == 0 {
		return children
	}
	out := make([]string, 0, len(ancestors)*len(children))
	for _, a := range ancestors {
		for _, c := range children {
			if c == "" {
				continue
			}
			if c[0] == '>' || c[0] == '+' || c[0] == '~' {
				out = append(out, a+c[:1]+strings.TrimSpace(c[1:]))
			} else {
				out = append(out, a+" "+c)
			}
		}
	}
	return out
}
