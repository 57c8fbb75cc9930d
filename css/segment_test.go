package css

import "testing"

func kinds(segs []Segment) []Kind {
	out := make([]Kind, len(segs))
	for i, s := range segs {
		out[i] = s.Kind
	}
	return out
}

func TestSegments_DeclarationColon(t *testing.T) {
	segs := Segments("a { color: red; }")
	var gotColon bool
	for i, s := range segs {
		if s.Kind == StylePropertyColon {
			gotColon = true
			if segs[i-1].Value != "color" {
				t.Fatalf("colon preceded by %q, want color", segs[i-1].Value)
			}
		}
	}
	if !gotColon {
		t.Fatal("expected a StylePropertyColon segment")
	}
}

func TestSegments_PseudoClassColonIsNotProperty(t *testing.T) {
	segs := Segments("a:hover { color: red; }")
	for i, s := range segs {
		if s.Kind == StylePropertyColon && segs[i-1].Value == "a" {
			t.Fatal("pseudo-class colon misclassified as StylePropertyColon")
		}
	}
}

func TestSegments_BlockComment(t *testing.T) {
	segs := Segments("a /* hi */ { }")
	var found bool
	for _, s := range segs {
		if s.Kind == Comment && s.Value == "/* hi */" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected block comment segment")
	}
}

func TestSegments_UnterminatedBlockComment(t *testing.T) {
	segs := Segments("a { } /* never closed")
	last := segs[len(segs)-2]
	if last.Kind != Comment {
		t.Fatalf("expected trailing unterminated comment, got %v", last.Kind)
	}
}

func TestSegments_LessLineComment(t *testing.T) {
	segs := Segments("a { // note\n color: red; }")
	var found bool
	for _, s := range segs {
		if s.Kind == Comment && s.Value == "// note" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected LESS line comment segment")
	}
}

func TestSegments_StringLiteralSkipsEmbeddedBrace(t *testing.T) {
	segs := Segments(`a[href="a{b"] { }`)
	var opens int
	for _, s := range segs {
		if s.Kind == OpenBrace {
			opens++
		}
	}
	if opens != 1 {
		t.Fatalf("got %d OpenBrace segments, want 1 (embedded brace inside string must not count)", opens)
	}
}

func TestSegments_AtRuleClassifiedOther(t *testing.T) {
	segs := Segments("@media screen { }")
	if segs[0].Kind != Other || segs[0].Value != "@media" {
		t.Fatalf("got %v %q, want Other @media", segs[0].Kind, segs[0].Value)
	}
}

func TestSegments_TerminatorEndsStream(t *testing.T) {
	segs := Segments("a{}")
	last := segs[len(segs)-1]
	if last.Kind != Terminator {
		t.Fatalf("last segment kind = %v, want Terminator", last.Kind)
	}
}
