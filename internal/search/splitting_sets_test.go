package search

import (
	"testing"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

func TestHasQuorumIntersectionSymmetric(t *testing.T) {
	f := threeNodeSymmetric()
	if !HasQuorumIntersection(f) {
		t.Error("expected a fully symmetric 2-of-3 FBAS to have quorum intersection")
	}
}

func TestHasQuorumIntersectionFalseWhenSplit(t *testing.T) {
	f := fbas.New()
	for i := 0; i < 3; i++ {
		f.AddNode(fbas.Node{PublicKey: string(rune('A' + i))})
	}
	for i := 0; i < 3; i++ {
		f.AddNode(fbas.Node{PublicKey: string(rune('D' + i))})
	}
	for i := 0; i < 3; i++ {
		f.Nodes[i].QuorumSet = fbas.QuorumSet{Threshold: 2, Validators: []nodeset.NodeID{0, 1, 2}}
	}
	for i := 3; i < 6; i++ {
		f.Nodes[i].QuorumSet = fbas.QuorumSet{Threshold: 2, Validators: []nodeset.NodeID{3, 4, 5}}
	}

	if HasQuorumIntersection(f) {
		t.Error("expected two fully disjoint organizations to lack quorum intersection")
	}
}

func TestFindMinimalSplittingSetsNoneWhenNoQuorums(t *testing.T) {
	f := fbas.New()
	f.AddNode(fbas.Node{PublicKey: "A", QuorumSet: fbas.NewUnsatisfiable()})

	sets := FindMinimalSplittingSets(f)
	if len(sets) != 0 {
		t.Fatalf("expected no splitting sets when the FBAS has no quorums at all, got %v", sets)
	}
}

func TestFindMinimalSplittingSetsEmptySetWhenAlreadySplit(t *testing.T) {
	f := fbas.New()
	for i := 0; i < 3; i++ {
		f.AddNode(fbas.Node{PublicKey: string(rune('A' + i))})
	}
	for i := 0; i < 3; i++ {
		f.AddNode(fbas.Node{PublicKey: string(rune('D' + i))})
	}
	for i := 0; i < 3; i++ {
		f.Nodes[i].QuorumSet = fbas.QuorumSet{Threshold: 2, Validators: []nodeset.NodeID{0, 1, 2}}
	}
	for i := 3; i < 6; i++ {
		f.Nodes[i].QuorumSet = fbas.QuorumSet{Threshold: 2, Validators: []nodeset.NodeID{3, 4, 5}}
	}

	sets := FindMinimalSplittingSets(f)
	if len(sets) != 1 || !sets[0].IsEmpty() {
		t.Fatalf("expected a single empty splitting set for an already-split FBAS, got %v", sets)
	}
}

func TestFindMinimalSplittingSetsSymmetricFourOfSeven(t *testing.T) {
	// In a fully symmetric 4-of-7 FBAS any two quorum slices share at least
	// 2*4 - 7 = 1 member, and two slices can share exactly one. If that one
	// shared node is faulty, the two quorums intersect only in a faulty
	// node, so every minimal splitting set has size 2*threshold-total = 1.
	f := fbas.New()
	for i := 0; i < 7; i++ {
		f.AddNode(fbas.Node{PublicKey: string(rune('A' + i))})
	}
	ids := make([]nodeset.NodeID, 7)
	for i := range ids {
		ids[i] = nodeset.NodeID(i)
	}
	for i := range f.Nodes {
		f.Nodes[i].QuorumSet = fbas.QuorumSet{Threshold: 4, Validators: ids}
	}

	sets := FindMinimalSplittingSets(f)
	if len(sets) == 0 {
		t.Fatal("expected at least one minimal splitting set for a 4-of-7 symmetric FBAS")
	}
	for _, s := range sets {
		if s.Len() != 1 {
			t.Errorf("expected every minimal splitting set to have size 1 (2*4-7), got %v", s)
		}
	}
}

func TestFindQuorumExpandersEmptyWhenFullySymmetric(t *testing.T) {
	f := threeNodeSymmetric()
	expanders := FindQuorumExpanders(f)
	// Every node in a fully symmetric FBAS already considers every quorum
	// slice of itself a quorum slice of its own quorum set (they're
	// identical), so there should be no expanders.
	if !expanders.IsEmpty() {
		t.Errorf("expected no quorum expanders in a fully symmetric FBAS, got %v", expanders)
	}
}
