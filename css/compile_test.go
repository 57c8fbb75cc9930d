package css

import "testing"

func TestSplitCompounds_DescendantAndExplicitCombinators(t *testing.T) {
	comps, combs := splitCompounds("#test.css_2 > .Woo h2")
	wantComps := []string{"#test.css_2", ".Woo", "h2"}
	wantCombs := []string{">", " "}
	if len(comps) != len(wantComps) {
		t.Fatalf("comps = %v, want %v", comps, wantComps)
	}
	for i := range wantComps {
		if comps[i] != wantComps[i] {
			t.Fatalf("comps[%d] = %q, want %q", i, comps[i], wantComps[i])
		}
	}
	for i := range wantCombs {
		if combs[i] != wantCombs[i] {
			t.Fatalf("combs[%d] = %q, want %q", i, combs[i], wantCombs[i])
		}
	}
}

func TestJoinCompounds_RoundTrips(t *testing.T) {
	comps, combs := splitCompounds("a>b c")
	if got, want := joinCompounds(comps, combs), "a>b c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFilterPaths_KeepsBareMarkerOnlyAtLastPosition(t *testing.T) {
	markers := map[string]bool{"#test.css_2": true}
	out := filterPaths([]string{"#test.css_2 .Woo"}, markers, "")
	if len(out) != 0 {
		t.Fatalf("marker not in last position must be dropped, got %v", out)
	}
}

func TestFilterPaths_MarkerAtLastPositionEmitsBareMarker(t *testing.T) {
	markers := map[string]bool{"#test.css_2": true}
	out := filterPaths([]string{".Woo #test.css_2"}, markers, "")
	if len(out) != 1 || out[0] != "#test.css_2" {
		t.Fatalf("got %v, want just the bare marker id", out)
	}
}

func TestFilterPaths_PollutedPrefixDropped(t *testing.T) {
	markers := map[string]bool{"#test.css_2": true}
	out := filterPaths([]string{"#test.css_2extra"}, markers, "")
	if len(out) != 0 {
		t.Fatalf("a compound merely prefixed by a marker id must be treated as polluted and dropped, got %v", out)
	}
}

func TestFilterPaths_DedupesRepeatedMarker(t *testing.T) {
	markers := map[string]bool{"#test.css_2": true}
	out := filterPaths([]string{"a #test.css_2", "b #test.css_2"}, markers, "")
	if len(out) != 1 {
		t.Fatalf("same marker id reached twice must only be emitted once, got %v", out)
	}
}

func TestFilterPaths_SentinelStrippedWhenNoMarkerPresent(t *testing.T) {
	out := filterPaths([]string{"__scope__ .cls"}, nil, "__scope__")
	if len(out) != 1 || out[0] != ".cls" {
		t.Fatalf("got %v, want sentinel stripped leaving .cls", out)
	}
}

func TestFilterPaths_SentinelOnlyPathDropped(t *testing.T) {
	out := filterPaths([]string{"__scope__"}, nil, "__scope__")
	if len(out) != 0 {
		t.Fatalf("a path that is only the sentinel has nothing left to emit, got %v", out)
	}
}

func TestFilterPaths_PassthroughWithNoSentinelOrMarker(t *testing.T) {
	out := filterPaths([]string{"a b"}, nil, "")
	if len(out) != 1 || out[0] != "a b" {
		t.Fatalf("got %v", out)
	}
}

func TestFilterPaths_EmptyPathIgnored(t *testing.T) {
	out := filterPaths([]string{""}, nil, "")
	if len(out) != 0 {
		t.Fatalf("got %v, want none", out)
	}
}
