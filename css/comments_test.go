package css

import (
	"context"
	"strings"
	"testing"
)

func TestStripComments_PreservesLineCount(t *testing.T) {
	in := "a {\n  /* line\n two */\n  color: red;\n}\n"
	out := StripComments(in, true)
	if got, want := countNewlines(in), countNewlines(out); got != want {
		t.Fatalf("newline count changed: in=%d out=%d\nout=%q", got, want, out)
	}
}

func TestStripComments_RemovesBlockCommentText(t *testing.T) {
	out := StripComments("a { color: red; /* drop me */ }", true)
	if strings.Contains(out, "drop me") {
		t.Fatalf("comment text survived: %q", out)
	}
}

func TestStripComments_LessLineCommentOnlyWhenEnabled(t *testing.T) {
	in := "a { // keep-css\n color: red; }"
	if !strings.Contains(StripComments(in, false), "// keep-css") {
		t.Fatal("lessMode=false must not strip // as a comment")
	}
	if strings.Contains(StripComments(in, true), "keep-css") {
		t.Fatal("lessMode=true must strip // comments")
	}
}

func TestCommentStripper_Idempotent(t *testing.T) {
	src := "a { color: red; /* x */ }"
	first := StripComments(src, true)
	second := StripComments(first, true)
	if first != second {
		t.Fatalf("stripping twice changed output:\nfirst=%q\nsecond=%q", first, second)
	}
}

func TestCommentStripper_Load(t *testing.T) {
	next := LoaderFunc(func(_ context.Context, relativePath string) (FileContents, error) {
		return FileContents{RelativePath: relativePath, Content: "a { /* c */ color: red; }"}, nil
	})
	stripper := newCommentStripper(Config{}, next)
	fc, err := stripper.Load(context.Background(), "a.css")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.Contains(fc.Content, "/* c */") {
		t.Fatalf("comment survived stripper stage: %q", fc.Content)
	}
}

func countNewlines(s string) int {
	n := 0
	for _, c := range s {
		if c == '\n' {
			n++
		}
	}
	return n
}
