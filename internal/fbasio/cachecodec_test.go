package fbasio

import (
	"testing"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

func TestToAndFromUint32SetsRoundTrip(t *testing.T) {
	sets := []nodeset.Set{
		nodeset.Of(0, 1, 2),
		nodeset.New(),
		nodeset.Of(5),
	}

	rows := ToUint32Sets(sets)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if len(rows[1]) != 0 {
		t.Errorf("expected the empty set to round-trip to an empty row, got %v", rows[1])
	}

	back := FromUint32Sets(rows)
	if len(back) != len(sets) {
		t.Fatalf("expected %d sets back, got %d", len(sets), len(back))
	}
	for i, s := range sets {
		if !back[i].Equal(s) {
			t.Errorf("set %d: round trip produced %v, want %v", i, back[i], s)
		}
	}
}

func TestFromUint32SetsEmptyInput(t *testing.T) {
	back := FromUint32Sets(nil)
	if len(back) != 0 {
		t.Errorf("expected no sets back from nil input, got %v", back)
	}
}
