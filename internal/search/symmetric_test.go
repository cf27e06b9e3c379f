package search

import (
	"testing"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

func TestFindSymmetricClustersDetectsFullySymmetricFbas(t *testing.T) {
	f := threeNodeSymmetric()
	clusters := FindSymmetricClusters(f)

	if len(clusters) != 1 {
		t.Fatalf("expected exactly one symmetric cluster, got %d: %v", len(clusters), clusters)
	}
	if clusters[0].Threshold != 2 {
		t.Errorf("expected the shared quorum set's threshold 2, got %d", clusters[0].Threshold)
	}
	if !clusters[0].ContainedNodes().Equal(nodeset.Of(0, 1, 2)) {
		t.Errorf("expected cluster to contain exactly {0,1,2}, got %v", clusters[0].ContainedNodes())
	}
}

func TestFindSymmetricClustersNoneWhenQuorumSetsDiffer(t *testing.T) {
	f := fbas.New()
	f.AddNode(fbas.Node{PublicKey: "A", QuorumSet: fbas.QuorumSet{Threshold: 1, Validators: []nodeset.NodeID{1}}})
	f.AddNode(fbas.Node{PublicKey: "B", QuorumSet: fbas.QuorumSet{Threshold: 1, Validators: []nodeset.NodeID{0}}})

	clusters := FindSymmetricClusters(f)
	if len(clusters) != 0 {
		t.Fatalf("expected no symmetric cluster for asymmetric quorum sets, got %v", clusters)
	}
}

func TestFindSymmetricTopTier(t *testing.T) {
	f := threeNodeSymmetric()
	qs, ok := FindSymmetricTopTier(f)
	if !ok {
		t.Fatal("expected a symmetric top tier to be found")
	}
	if !qs.ContainedNodes().Equal(nodeset.Of(0, 1, 2)) {
		t.Errorf("expected top tier quorum set to reference {0,1,2}, got %v", qs.ContainedNodes())
	}
}

func TestConsensusClustersFindsSingleClusterWhenIntersecting(t *testing.T) {
	f := threeNodeSymmetric()
	clusters := ConsensusClusters(f)
	if len(clusters) != 1 {
		t.Fatalf("expected exactly one consensus cluster, got %d", len(clusters))
	}
}

func TestConsensusClustersFindsTwoWhenSplit(t *testing.T) {
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

	clusters := ConsensusClusters(f)
	if len(clusters) != 2 {
		t.Fatalf("expected two consensus clusters for a fully split FBAS, got %d", len(clusters))
	}
}
