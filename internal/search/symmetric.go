package search

import (
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// ConsensusClusters returns the (at most two) strongly connected components
// of f's satisfiable, strongly-connected nodes that each contain a quorum.
// An FBAS with quorum intersection has exactly one; finding a second one
// proves the FBAS lacks quorum intersection outright (no further search
// needed to know that quorums can fail to intersect).
func ConsensusClusters(f *fbas.Fbas) []nodeset.Set {
	satisfiable := f.SatisfiableNodes()
	sccs := sccsOf(f, satisfiable)

	var clusters []nodeset.Set
	for _, scc := range sccs {
		if f.ContainsQuorum(scc) {
			clusters = append(clusters, scc)
			if len(clusters) == 2 {
				break
			}
		}
	}
	return clusters
}

func sccsOf(f *fbas.Fbas, nodes nodeset.Set) []nodeset.Set {
	reduced, _ := f.ReduceToStronglyConnectedNodes(nodes)
	return f.StronglyConnectedComponentsOf(reduced)
}

// FindSymmetricClusters finds every symmetric cluster in f: a maximal set
// of nodes that all share the exact same quorum set, where that quorum
// set's contained nodes are exactly the cluster itself. Finding more than
// one symmetric cluster proves f lacks quorum intersection.
func FindSymmetricClusters(f *fbas.Fbas) []fbas.QuorumSet {
	var found []fbas.QuorumSet
	for _, cluster := range ConsensusClusters(f) {
		found = append(found, FindSymmetricClustersInNodeSet(cluster, f)...)
	}
	return found
}

// FindSymmetricTopTier returns the common quorum set of the top tier, if
// the top tier forms a single symmetric cluster and the rest of the FBAS
// cannot itself contain a quorum. Returns false in ok if no such single
// symmetric top tier exists.
func FindSymmetricTopTier(f *fbas.Fbas) (qs fbas.QuorumSet, ok bool) {
	clusters := FindSymmetricClusters(f)
	if len(clusters) != 1 {
		return fbas.QuorumSet{}, false
	}
	if complementContainsQuorum(clusters[0].ContainedNodes(), f) {
		return fbas.QuorumSet{}, false
	}
	return clusters[0], true
}

func complementContainsQuorum(nodes nodeset.Set, f *fbas.Fbas) bool {
	complement := f.AllNodes().Difference(nodes)
	return f.ContainsQuorum(complement)
}

// FindSymmetricClusterInConsensusCluster looks for exactly one symmetric
// cluster within cluster (a single strongly connected consensus cluster)
// whose contained nodes are exactly cluster itself. Returns false in ok if
// none is found.
func FindSymmetricClusterInConsensusCluster(cluster nodeset.Set, f *fbas.Fbas) (fbas.QuorumSet, bool) {
	clusters := FindSymmetricClustersInNodeSet(cluster, f)
	if len(clusters) == 0 {
		return fbas.QuorumSet{}, false
	}
	return clusters[0], true
}

// FindSymmetricClustersInNodeSet scans nodes for quorum sets that are
// self-describing symmetric clusters: every node whose quorum set contains
// itself is tallied against that quorum set's own member count, and a
// cluster is emitted the moment every one of its members has been seen.
func FindSymmetricClustersInNodeSet(nodes nodeset.Set, f *fbas.Fbas) []fbas.QuorumSet {
	type tally struct {
		qs    fbas.QuorumSet
		count int
		goal  int
	}
	tallies := make(map[string]*tally)
	var found []fbas.QuorumSet

	ids := nodes.Slice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		qs := f.QuorumSet(id)
		contained := qs.ContainedNodes()
		if !contained.Contains(id) {
			continue
		}
		key := qs.Key()
		t, ok := tallies[key]
		if !ok {
			t = &tally{qs: qs, count: 0, goal: contained.Len()}
			tallies[key] = t
		}
		t.count++
		if t.count == t.goal {
			found = append(found, t.qs)
		}
	}
	return found
}

