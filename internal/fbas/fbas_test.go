package fbas

import (
	"testing"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// threeNodeSymmetric returns a 3-node FBAS where every node trusts all
// three with threshold 2 -- the textbook smallest nontrivial FBAS with a
// single, size-2-or-larger quorum structure.
func threeNodeSymmetric() *Fbas {
	f := New()
	for i := 0; i < 3; i++ {
		f.AddNode(Node{PublicKey: string(rune('A' + i))})
	}
	for i := range f.Nodes {
		f.Nodes[i].QuorumSet = QuorumSet{
			Threshold:  2,
			Validators: []nodeset.NodeID{0, 1, 2},
		}
	}
	return f
}

func TestFbasAddNodeAssignsSequentialIDs(t *testing.T) {
	f := New()
	idA := f.AddNode(Node{PublicKey: "A"})
	idB := f.AddNode(Node{PublicKey: "B"})
	if idA != 0 || idB != 1 {
		t.Fatalf("expected sequential ids 0, 1, got %d, %d", idA, idB)
	}
	if f.NumberOfNodes() != 2 {
		t.Fatalf("NumberOfNodes() = %d, want 2", f.NumberOfNodes())
	}
}

func TestFbasAddNodeDuplicatePublicKeyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate public key")
		}
	}()
	f := New()
	f.AddNode(Node{PublicKey: "A"})
	f.AddNode(Node{PublicKey: "A"})
}

func TestFbasNodeIDLookup(t *testing.T) {
	f := New()
	f.AddNode(Node{PublicKey: "A"})
	id, ok := f.NodeID("A")
	if !ok || id != 0 {
		t.Fatalf("NodeID(A) = %d, %v, want 0, true", id, ok)
	}
	if _, ok := f.NodeID("missing"); ok {
		t.Fatal("expected NodeID to report false for an unknown public key")
	}
}

func TestIsQuorum(t *testing.T) {
	f := threeNodeSymmetric()

	if f.IsQuorum(nodeset.New()) {
		t.Error("empty set must never be a quorum")
	}
	if f.IsQuorum(nodeset.Of(0)) {
		t.Error("a single node can't satisfy threshold 2 on its own")
	}
	if !f.IsQuorum(nodeset.Of(0, 1)) {
		t.Error("two of three nodes should form a quorum")
	}
	if !f.IsQuorum(nodeset.Of(0, 1, 2)) {
		t.Error("all three nodes should form a quorum")
	}
}

func TestIsQuorumContaining(t *testing.T) {
	f := threeNodeSymmetric()
	if !f.IsQuorumContaining(0, nodeset.Of(0, 1)) {
		t.Error("expected {0,1} to be a quorum containing 0")
	}
	if f.IsQuorumContaining(2, nodeset.Of(0, 1)) {
		t.Error("{0,1} does not contain node 2")
	}
}

func TestShrunkenRenumbersDensely(t *testing.T) {
	f := New()
	f.AddNode(Node{PublicKey: "A", QuorumSet: QuorumSet{Threshold: 1, Validators: []nodeset.NodeID{2}}})
	f.AddNode(Node{PublicKey: "B", QuorumSet: NewUnsatisfiable()})
	f.AddNode(Node{PublicKey: "C", QuorumSet: QuorumSet{Threshold: 1, Validators: []nodeset.NodeID{0}}})

	shrunken, sm := f.Shrunken(nodeset.Of(0, 2))

	if shrunken.NumberOfNodes() != 2 {
		t.Fatalf("expected 2 nodes in shrunken fbas, got %d", shrunken.NumberOfNodes())
	}

	newA, ok := sm.Shrink(0)
	if !ok {
		t.Fatal("expected node 0 to be present in the shrink map")
	}
	newC, ok := sm.Shrink(2)
	if !ok {
		t.Fatal("expected node 2 to be present in the shrink map")
	}

	gotA := shrunken.Nodes[newA]
	if gotA.PublicKey != "A" {
		t.Fatalf("expected shrunken id %d to map back to node A, got %q", newA, gotA.PublicKey)
	}
	if len(gotA.QuorumSet.Validators) != 1 || gotA.QuorumSet.Validators[0] != newC {
		t.Fatalf("expected A's quorum set to reference C's new id %d, got %v", newC, gotA.QuorumSet.Validators)
	}
}

func TestShrunkenDropsVacuousInnerSets(t *testing.T) {
	f := New()
	f.AddNode(Node{PublicKey: "A", QuorumSet: QuorumSet{
		Threshold:  1,
		Validators: []nodeset.NodeID{1},
		InnerQuorumSets: []QuorumSet{
			{Threshold: 1, Validators: []nodeset.NodeID{2}},
		},
	}})
	f.AddNode(Node{PublicKey: "B"})
	f.AddNode(Node{PublicKey: "C"})

	// Keep only A and B: the inner quorum set referencing C has nothing left
	// to reference and should be dropped, not kept as a vacuous inner set.
	shrunken, sm := f.Shrunken(nodeset.Of(0, 1))
	newA, _ := sm.Shrink(0)
	qs := shrunken.Nodes[newA].QuorumSet
	if len(qs.InnerQuorumSets) != 0 {
		t.Fatalf("expected the vacuous inner quorum set to be dropped, got %v", qs.InnerQuorumSets)
	}
}

func TestAssumeFaultyReducesThresholdAndBlanksFaultyNode(t *testing.T) {
	f := threeNodeSymmetric()
	out := f.AssumeFaulty(nodeset.Of(2))

	if out.QuorumSet(2).IsSatisfiable() {
		t.Error("faulty node's own quorum set should become unsatisfiable")
	}

	remaining := out.QuorumSet(0)
	if len(remaining.Validators) != 2 {
		t.Fatalf("expected node 0's quorum set to drop the faulty validator, got %v", remaining.Validators)
	}
	if remaining.Threshold != 1 {
		t.Fatalf("threshold should drop from 2 to 1 for the one removed validator, got %d", remaining.Threshold)
	}
}

func TestAssumeFaultyNeverDropsThresholdBelowZero(t *testing.T) {
	f := New()
	f.AddNode(Node{PublicKey: "A", QuorumSet: QuorumSet{Threshold: 1, Validators: []nodeset.NodeID{1}}})
	f.AddNode(Node{PublicKey: "B"})

	out := f.AssumeFaulty(nodeset.Of(1))
	qs := out.QuorumSet(0)
	if qs.Threshold != 0 {
		t.Fatalf("expected threshold to clamp to 0, got %d", qs.Threshold)
	}
}
