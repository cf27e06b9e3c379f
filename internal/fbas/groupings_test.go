package fbas

import (
	"testing"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

func newGroupings(t *testing.T, pairs map[string][]nodeset.NodeID) *Groupings {
	t.Helper()
	var groups []struct {
		Name    string
		Members nodeset.Set
	}
	for name, ids := range pairs {
		groups = append(groups, struct {
			Name    string
			Members nodeset.Set
		}{Name: name, Members: nodeset.Of(ids...)})
	}
	return NewGroupings(groups)
}

func TestGroupingsMergedIDUsesLowestMember(t *testing.T) {
	g := newGroupings(t, map[string][]nodeset.NodeID{"org-a": {3, 1, 2}})

	for _, id := range []nodeset.NodeID{1, 2, 3} {
		if got := g.MergedID(id); got != 1 {
			t.Errorf("MergedID(%d) = %d, want 1 (lowest member)", id, got)
		}
	}
}

func TestGroupingsMergedIDPassesThroughUngroupedNodes(t *testing.T) {
	g := newGroupings(t, map[string][]nodeset.NodeID{"org-a": {0, 1}})
	if got := g.MergedID(5); got != 5 {
		t.Errorf("MergedID(5) = %d, want 5 (ungrouped node passes through)", got)
	}
}

func TestGroupingsGroupName(t *testing.T) {
	g := newGroupings(t, map[string][]nodeset.NodeID{"org-a": {1, 2}})
	name, ok := g.GroupName(1)
	if !ok || name != "org-a" {
		t.Errorf("GroupName(1) = %q, %v, want \"org-a\", true", name, ok)
	}
	if _, ok := g.GroupName(2); ok {
		t.Error("GroupName should only resolve the representative id, not every member")
	}
}

func TestGroupingsMergeNodeSet(t *testing.T) {
	g := newGroupings(t, map[string][]nodeset.NodeID{"org-a": {1, 2}})
	merged := g.MergeNodeSet(nodeset.Of(1, 2, 9))
	if !merged.Equal(nodeset.Of(1, 9)) {
		t.Errorf("MergeNodeSet = %v, want {1,9}", merged)
	}
}

func TestGroupByFieldGroupsSharedValuesOnly(t *testing.T) {
	f := New()
	f.AddNode(Node{PublicKey: "A", ISP: "Comcast"})
	f.AddNode(Node{PublicKey: "B", ISP: "Comcast"})
	f.AddNode(Node{PublicKey: "C", ISP: "Verizon"})
	f.AddNode(Node{PublicKey: "D"}) // empty ISP: not grouped at all

	g := GroupByISP(f)

	if g.NumberOfGroups() != 2 {
		t.Fatalf("expected 2 ISP groups, got %d", g.NumberOfGroups())
	}
	if g.MergedID(0) != g.MergedID(1) {
		t.Error("nodes A and B share an ISP and should merge to the same representative")
	}
	if g.MergedID(2) == g.MergedID(0) {
		t.Error("node C has a different ISP and should not merge with A/B")
	}
	if g.MergedID(3) != 3 {
		t.Error("node D has no ISP and should pass through ungrouped")
	}
}

func TestGroupByCountry(t *testing.T) {
	f := New()
	f.AddNode(Node{PublicKey: "A", CountryName: "Germany"})
	f.AddNode(Node{PublicKey: "B", CountryName: "Germany"})

	g := GroupByCountry(f)
	if g.NumberOfGroups() != 1 {
		t.Fatalf("expected 1 country group, got %d", g.NumberOfGroups())
	}
	name, ok := g.GroupName(g.MergedID(0))
	if !ok || name != "Germany" {
		t.Errorf("GroupName = %q, %v, want \"Germany\", true", name, ok)
	}
}

func TestMergeQuorumSetCollapsesSingleGroupInnerSet(t *testing.T) {
	g := newGroupings(t, map[string][]nodeset.NodeID{"org-a": {1, 2}})

	q := QuorumSet{
		Threshold: 2,
		Validators: []nodeset.NodeID{0},
		InnerQuorumSets: []QuorumSet{
			{Threshold: 1, Validators: []nodeset.NodeID{1, 2}},
		},
	}
	merged := q.MergeQuorumSet(g)

	if len(merged.InnerQuorumSets) != 0 {
		t.Fatalf("expected the single-group inner quorum set to collapse, got %v", merged.InnerQuorumSets)
	}
	found := false
	for _, v := range merged.Validators {
		if v == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected merged validators to include org-a's representative (1), got %v", merged.Validators)
	}
}

func TestMergeQuorumSetKeepsMixedInnerSet(t *testing.T) {
	g := newGroupings(t, map[string][]nodeset.NodeID{"org-a": {1, 2}})

	q := QuorumSet{
		Threshold: 2,
		Validators: []nodeset.NodeID{0},
		InnerQuorumSets: []QuorumSet{
			{Threshold: 1, Validators: []nodeset.NodeID{1, 9}}, // 9 isn't in org-a
		},
	}
	merged := q.MergeQuorumSet(g)
	if len(merged.InnerQuorumSets) != 1 {
		t.Fatalf("expected the mixed-group inner quorum set to remain, got %v", merged.InnerQuorumSets)
	}
}
