package css

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// StripComments removes every /* ... */ and, when lessMode is true, // ...
// comment from content, replacing each one with only the \r and \n
// characters it contained so the total line count is preserved exactly. An
// unterminated block comment runs to end-of-file.
func StripComments(content string, lessMode bool) string {
	var b strings.Builder
	b.Grow(len(content))
	sc := &Scanner{src: content, LessMode: lessMode}
	for {
		seg, ok := sc.Next()
		if !ok || seg.Kind == Terminator {
			break
		}
		if seg.Kind != Comment {
			b.WriteString(seg.Value)
			continue
		}
		for i := 0; i < len(seg.Value); i++ {
			if c := seg.Value[i]; c == '\r' || c == '\n' {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

// commentStripper is Component B: FileContents in, FileContents with every
// comment replaced by its embedded line breaks out. Idempotent — running it
// twice is a no-op the second time since no Comment segments remain.
type commentStripper struct {
	next Loader
	log  *zap.Logger
}

func newCommentStripper(cfg Config, next Loader) Loader {
	return &commentStripper{next: next, log: cfg.logger().Named("css-comment-stripper")}
}

func (s *commentStripper) Load(ctx context.Context, relativePath string) (FileContents, error) {
	fc, err := s.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	fc.Content = StripComments(fc.Content, true)
	return fc, nil
}
