package css

import (
	"strings"
	"testing"
)

func identityFilter(paths []string) []string { return paths }

func TestDefaultLessEngine_FlattensOneLevelOfNesting(t *testing.T) {
	engine := NewDefaultLessEngine()
	out, err := engine.Compile(`a { b { color: red; } }`, identityFilter)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "a b{color:red}") {
		t.Fatalf("expected descendant-combined flattened selector, got %q", out)
	}
}

func TestDefaultLessEngine_FlattensMultipleLevels(t *testing.T) {
	engine := NewDefaultLessEngine()
	out, err := engine.Compile(`a { b { c { color: red; } } }`, identityFilter)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "a b c{color:red}") {
		t.Fatalf("expected three-level flattened selector, got %q", out)
	}
}

func TestDefaultLessEngine_ExplicitCombinatorAttachesDirectly(t *testing.T) {
	engine := NewDefaultLessEngine()
	out, err := engine.Compile(`a { > b { color: red; } }`, identityFilter)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "a>b{color:red}") {
		t.Fatalf("expected direct child combinator preserved, got %q", out)
	}
}

func TestDefaultLessEngine_PreservesNestedRulesetInsideAtRuleBlock(t *testing.T) {
	engine := NewDefaultLessEngine()
	out, err := engine.Compile(`@page { a { color: red; } }`, identityFilter)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "@page") {
		t.Fatalf("at-rule wrapper lost: %q", out)
	}
	if !strings.Contains(out, "a{color:red}") {
		t.Fatalf("nested ruleset inside at-rule block lost: %q", out)
	}
}

func TestDefaultLessEngine_FilterCanDropRuleEntirely(t *testing.T) {
	engine := NewDefaultLessEngine()
	dropAll := func([]string) []string { return nil }
	out, err := engine.Compile(`a { color: red; }`, dropAll)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if strings.Contains(out, "color:red") {
		t.Fatalf("filter that drops every path should suppress the declaration block, got %q", out)
	}
}

func TestSplitTopLevelCommas_IgnoresCommaInsideParens(t *testing.T) {
	got := splitTopLevelCommas(`a:not(b, c), d`)
	want := []string{"a:not(b, c)", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCrossJoinPaths_DescendantByDefault(t *testing.T) {
	got := crossJoinPaths([]string{"a"}, []string{"b"})
	if len(got) != 1 || got[0] != "a b" {
		t.Fatalf("got %v", got)
	}
}

func TestCrossJoinPaths_EmptyAncestorsPassesThrough(t *testing.T) {
	got := crossJoinPaths(nil, []string{"b", "c"})
	if len(got) != 2 || got[0] != "b" || got[1] != "c" {
		t.Fatalf("got %v", got)
	}
}
