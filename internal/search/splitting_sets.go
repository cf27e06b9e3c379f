package search

import (
	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// FindQuorumExpanders returns every node that, by lying about its quorum
// set or changing it, could shrink the quorums it participates in by more
// than the loss of itself alone — a potential lever for shrinking the
// consensus cluster down to a smaller, easier-to-split configuration.
func FindQuorumExpanders(f *fbas.Fbas) nodeset.Set {
	seen := make(map[string]struct{})
	result := nodeset.New()
	lookup := func(id nodeset.NodeID) fbas.QuorumSet { return f.QuorumSet(id) }

	for _, n := range f.Nodes {
		key := n.QuorumSet.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result.InPlaceUnion(n.QuorumSet.QuorumExpanders(lookup))
	}
	return result
}

// FindMinimalSplittingSets finds every minimal splitting set of f: the
// smallest sets of nodes that, if all controlled by the same faulty
// actor(s), could break quorum intersection. Returns a single-member slice
// containing the empty set if f already lacks quorum intersection
// (nothing needs to go wrong at all), or an empty slice if f has no
// quorums in the first place.
func FindMinimalSplittingSets(f *fbas.Fbas) []nodeset.Set {
	return FindMinimalSplittingSetsOfNodeSets(f, ConsensusClusters(f))
}

// FindMinimalSplittingSetsOfNodeSets is the supplemented entry point that
// accepts pre-computed consensus clusters, letting a caller that already
// ran ConsensusClusters (e.g. to check quorum intersection first) avoid
// recomputing them.
func FindMinimalSplittingSetsOfNodeSets(f *fbas.Fbas, consensusClusters []nodeset.Set) []nodeset.Set {
	switch {
	case len(consensusClusters) > 1:
		return []nodeset.Set{nodeset.New()}
	case len(consensusClusters) == 0:
		return nil
	}

	clusterNodes := consensusClusters[0]
	quorumExpanders := FindQuorumExpanders(f)

	if quorumExpanders.IsDisjoint(clusterNodes) {
		if symmetricCluster, ok := FindSymmetricClusterInConsensusCluster(clusterNodes, f); ok {
			return symmetricCluster.ToMinimalSplittingSets()
		}
	}

	relevant := clusterNodes.Union(quorumExpanders)
	rankScores := f.RankNodes(clusterNodes)
	sorted := sortByCombinedScore(relevant.Slice(), rankScores)

	var found []nodeset.Set
	splittingSetsStep(f, sorted, 0, nodeset.New(), &found)
	return nodeset.RemoveNonMinimal(found)
}

// sortByCombinedScore orders candidates by descending rank score, breaking
// ties by ascending NodeID. The upstream search additionally folds in how
// many other nodes each candidate affects (from a precomputed
// node-to-affected-nodes index used to prune the branch-and-bound
// in-flight); that index isn't reconstructable from the retained reference
// sources, so this port orders by rank alone and instead prunes only via
// the final RemoveNonMinimal pass — correct, if less aggressively pruned
// mid-search (see DESIGN.md).
func sortByCombinedScore(nodes []nodeset.NodeID, scores []float64) []nodeset.NodeID {
	sorted := make([]nodeset.NodeID, len(nodes))
	copy(sorted, nodes)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && less(scores, sorted[j], sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

func less(scores []float64, a, b nodeset.NodeID) bool {
	if scores[a] != scores[b] {
		return scores[a] > scores[b]
	}
	return a < b
}

// splittingSetsStep enumerates candidate splitting sets by including or
// excluding each sorted candidate in turn. A candidate selection is
// recorded the moment assuming its members faulty breaks quorum
// intersection within the relevant node set; no further candidates are
// explored below that point, since any superset of an already-broken
// selection is by definition non-minimal.
func splittingSetsStep(f *fbas.Fbas, sorted []nodeset.NodeID, idx int, selection nodeset.Set, found *[]nodeset.Set) {
	if breaksQuorumIntersection(f, selection) {
		*found = append(*found, selection.Clone())
		return
	}
	if idx >= len(sorted) {
		return
	}
	candidate := sorted[idx]

	selection.Add(candidate)
	splittingSetsStep(f, sorted, idx+1, selection, found)
	selection.Remove(candidate)

	splittingSetsStep(f, sorted, idx+1, selection, found)
}

// breaksQuorumIntersection reports whether assuming every node in faulty
// to be Byzantine (see Fbas.AssumeFaulty) leaves the FBAS without quorum
// intersection.
func breaksQuorumIntersection(f *fbas.Fbas, faulty nodeset.Set) bool {
	if faulty.IsEmpty() {
		return false
	}
	modified := f.AssumeFaulty(faulty)
	return !HasQuorumIntersection(modified)
}

// HasQuorumIntersection is the internal, cluster-based intersection check
// used by breaksQuorumIntersection: it assumes it is only ever asked about
// an FBAS that already has at least one consensus cluster (mirroring the
// upstream's internal FbasValues::has_quorum_intersection, which carries
// the same assumption via a debug assertion). A second consensus cluster
// short-circuits to "no" directly. A symmetric top tier short-circuits by
// checking its splitting threshold directly: 2*Threshold > totalMembers
// means no disjoint pair of quorum slices exists, i.e. intersection holds,
// even though the cluster's potential splitting sets (ToSplittingSets) may
// be non-empty — those are sets that could break intersection if faulty,
// not sets that already do. Otherwise every minimal quorum is checked
// pairwise.
func HasQuorumIntersection(f *fbas.Fbas) bool {
	clusters := ConsensusClusters(f)
	if len(clusters) == 0 {
		return true
	}
	if len(clusters) > 1 {
		return false
	}
	if symmetricCluster, ok := FindSymmetricClusterInConsensusCluster(clusters[0], f); ok {
		return symmetricCluster.SplittingThreshold() > 0
	}
	quorums := FindMinimalQuorums(f)
	return nodeset.AllIntersect(quorums)
}
