package nodeset

import "testing"

func TestUnionIntersectionDifference(t *testing.T) {
	a := Of(1, 2, 3)
	b := Of(2, 3, 4)

	if got := a.Union(b); got.Len() != 4 {
		t.Fatalf("union len = %d, want 4", got.Len())
	}
	if got := a.Intersection(b); !got.Equal(Of(2, 3)) {
		t.Fatalf("intersection = %v, want {2,3}", got)
	}
	if got := a.Difference(b); !got.Equal(Of(1)) {
		t.Fatalf("difference = %v, want {1}", got)
	}
}

func TestIsSubsetOf(t *testing.T) {
	if !Of(1, 2).IsSubsetOf(Of(1, 2, 3)) {
		t.Fatal("{1,2} should be a subset of {1,2,3}")
	}
	if Of(1, 2, 4).IsSubsetOf(Of(1, 2, 3)) {
		t.Fatal("{1,2,4} should not be a subset of {1,2,3}")
	}
	if !New().IsSubsetOf(New()) {
		t.Fatal("empty set should be a subset of empty set")
	}
}

func TestRemoveNonMinimal(t *testing.T) {
	in := []Set{Of(0, 1, 2), Of(0, 1), Of(0, 2)}
	got := RemoveNonMinimal(in)
	want := []Set{Of(0, 1), Of(0, 2)}

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g.Equal(w) {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing expected set %v in %v", w, got)
		}
	}
	if !ContainsOnlyMinimal(got) {
		t.Fatal("result should contain only minimal sets")
	}
}

func TestEmptySetIsSubsetOfEverything(t *testing.T) {
	if !New().IsSubsetOf(Of(1, 2, 3)) {
		t.Fatal("empty set must be a subset of any set")
	}
}
