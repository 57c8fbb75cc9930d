package css

import (
	"context"
	"strings"
	"testing"
)

func TestScopeKeyframes_RenamesNestedKeyframesAndUsage(t *testing.T) {
	in := `html { @keyframes my-animation { from { opacity: 0; } to { opacity: 1; } } a { animation: my-animation 2s; } }`
	out := ScopeKeyframes(in, "test1.css")
	if !strings.Contains(out, "@keyframes test1_my-animation") {
		t.Fatalf("keyframes header not scoped: %q", out)
	}
	if !strings.Contains(out, "animation: test1_my-animation 2s;") {
		t.Fatalf("animation usage not rewritten: %q", out)
	}
	if strings.Contains(out, "animation: my-animation") {
		t.Fatalf("unscoped identifier survived: %q", out)
	}
}

func TestScopeKeyframes_TopLevelUntouched(t *testing.T) {
	in := `@keyframes my-animation { from { opacity: 0; } }`
	out := ScopeKeyframes(in, "test1.css")
	if out != in {
		t.Fatalf("top-level (non-nested) @keyframes was rewritten: %q", out)
	}
}

func TestScopeKeyframes_VendorPrefixedProperty(t *testing.T) {
	in := `html { @keyframes spin { } a { -webkit-animation-name: spin; } }`
	out := ScopeKeyframes(in, "b.css")
	if !strings.Contains(out, "-webkit-animation-name: b_spin;") {
		t.Fatalf("vendor-prefixed animation-name not rewritten: %q", out)
	}
}

func TestScopeKeyframes_UnrelatedIdentifierNotTouched(t *testing.T) {
	in := `html { @keyframes spin { } a { animation: other 1s; } }`
	out := ScopeKeyframes(in, "b.css")
	if !strings.Contains(out, "animation: other 1s;") {
		t.Fatalf("unrelated animation value was rewritten: %q", out)
	}
}

func TestKeyframePrefix_FallsBackToStableHashWhenSanitizeEmpty(t *testing.T) {
	p1 := keyframePrefix("!!!.css")
	p2 := keyframePrefix("!!!.css")
	if p1 == "" {
		t.Fatal("expected a non-empty fallback prefix")
	}
	if p1 != p2 {
		t.Fatalf("fallback prefix not stable: %q vs %q", p1, p2)
	}
}

func TestKeyframePrefix_UsesSanitizedBasenameWithoutExtension(t *testing.T) {
	if got, want := keyframePrefix("dir/My File.less"), "My_File"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestKeyframeScoper_Load(t *testing.T) {
	next := LoaderFunc(func(_ context.Context, relativePath string) (FileContents, error) {
		return FileContents{RelativePath: relativePath, Content: `html { @keyframes spin { } }`}, nil
	})
	scoper := newKeyframeScoper(Config{}, next)
	fc, err := scoper.Load(context.Background(), "a.css")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(fc.Content, "@keyframes a_spin") {
		t.Fatalf("got %q", fc.Content)
	}
}
