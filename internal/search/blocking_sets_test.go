package search

import (
	"testing"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

func TestFindMinimalBlockingSetsOverOneQuorum(t *testing.T) {
	quorums := []nodeset.Set{nodeset.Of(0, 1, 2)}
	blocking := FindMinimalBlockingSets(quorums)

	// Blocking this single size-3 quorum means touching every one of its
	// members: the only minimal blocking set is the quorum itself.
	if len(blocking) != 1 || !blocking[0].Equal(nodeset.Of(0, 1, 2)) {
		t.Fatalf("expected a single blocking set {0,1,2}, got %v", blocking)
	}
}

func TestFindMinimalBlockingSetsOverlappingQuorums(t *testing.T) {
	// Two quorums sharing node 0: removing just node 0 blocks both.
	quorums := []nodeset.Set{nodeset.Of(0, 1), nodeset.Of(0, 2)}
	blocking := FindMinimalBlockingSets(quorums)

	if !containsSet(blocking, nodeset.Of(0)) {
		t.Fatalf("expected {0} (the shared node) to be a minimal blocking set, got %v", blocking)
	}
	for _, b := range blocking {
		if b.Len() > 1 && b.Contains(0) {
			t.Errorf("a blocking set containing the universal node 0 should never need more members: got %v", b)
		}
	}
}

func TestFindMinimalBlockingSetsDisjointQuorumsNeedOneFromEach(t *testing.T) {
	quorums := []nodeset.Set{nodeset.Of(0, 1), nodeset.Of(2, 3)}
	blocking := FindMinimalBlockingSets(quorums)

	for _, b := range blocking {
		if !b.IsDisjoint(nodeset.Of(0, 1)) {
			continue
		}
		t.Errorf("blocking set %v fails to touch the first quorum {0,1}", b)
	}
	for _, b := range blocking {
		if !b.IsDisjoint(nodeset.Of(2, 3)) {
			continue
		}
		t.Errorf("blocking set %v fails to touch the second quorum {2,3}", b)
	}
}

func TestFindMinimalBlockingSetsResultIsMinimal(t *testing.T) {
	quorums := []nodeset.Set{nodeset.Of(0, 1), nodeset.Of(0, 1, 2)}
	blocking := FindMinimalBlockingSets(quorums)
	if !nodeset.ContainsOnlyMinimal(blocking) {
		t.Fatalf("expected result to be an antichain, got %v", blocking)
	}
}
