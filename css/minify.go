package css

import (
	"regexp"
	"strings"
)

var (
	minifyTagBeforeHash  = regexp.MustCompile(`[A-Za-z]+#`)
	minifyLinereturnRuns = regexp.MustCompile(`[\r\n]+[ \t\f\r\n]*`)
	minifyWhitespaceRun  = regexp.MustCompile(`[ \t\f]+`)
	minifyAroundPunct    = regexp.MustCompile(`\s*([:,;{}])\s*`)
	minifyZeroUnit       = regexp.MustCompile(`\b0 (px|pt|%|em)\b`)
)

// Minify implements Component I, applied once as the final CSS step, in the
// eight order-sensitive operations §4.I specifies.
func Minify(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	content += "/**/"
	content = stripAllComments(content)

	content = minifyTagBeforeHash.ReplaceAllString(content, "#")
	content = minifyLinereturnRuns.ReplaceAllString(content, "")
	content = minifyWhitespaceRun.ReplaceAllString(content, " ")
	content = minifyAroundPunct.ReplaceAllString(content, "$1")
	content = strings.ReplaceAll(content, ";}", "}")
	content = minifyZeroUnit.ReplaceAllString(content, "0$1")

	return content
}

// stripAllComments removes every /* ... */ span, including an unterminated
// trailing one, without relying on the statement scanner (minification runs
// on content that may no longer be well-formed CSS/LESS).
func stripAllComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '/' && i+1 < len(s) && s[i+1] == '*' {
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				break
			}
			i += 2 + end + 2
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
