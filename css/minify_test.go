package css

import "testing"

func TestMinify_StripsCommentsAndWhitespace(t *testing.T) {
	in := "a {\n  color: red; /* note */\n}\n"
	out := Minify(in)
	if out != "a{color:red}" {
		t.Fatalf("got %q", out)
	}
}

func TestMinify_TagBeforeHash(t *testing.T) {
	// A tag qualifying an id selector is redundant (an id is already unique)
	// and is dropped.
	if got, want := Minify("div#id { }"), "#id{}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMinify_ZeroUnit(t *testing.T) {
	if got, want := Minify("a { margin: 0 px; }"), "a{margin:0px}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMinify_SemicolonBeforeCloseBraceRemoved(t *testing.T) {
	out := Minify("a { color: red; }")
	if want := "a{color:red}"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestMinify_EmptyInput(t *testing.T) {
	if got := Minify("   \n\t  "); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestMinify_UnterminatedTrailingComment(t *testing.T) {
	out := Minify("a { color: red; } /* trailing")
	if out != "a{color:red}" {
		t.Fatalf("got %q", out)
	}
}

func TestMinify_UnterminatedTrailingCommentWithCRLF(t *testing.T) {
	in := "/* Test 1 */\r\np { color: blue; }\r\n/*\r\n"
	if got, want := Minify(in), "p{color:blue}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestMinify_Idempotent(t *testing.T) {
	once := Minify("a {\n  color: red;\n}\n")
	twice := Minify(once)
	if once != twice {
		t.Fatalf("minification not idempotent: once=%q twice=%q", once, twice)
	}
}
