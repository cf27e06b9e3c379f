// Package analysis provides the memoized Analysis façade: the single
// entry point most callers (the CLI, the bulk runner) use to run the
// fbas-analyzer searches against a parsed FBAS. It owns the
// shrink-to-relevant-nodes step once per instance, runs every search over
// that shrunken representation, and unshrinks results back to the
// caller's original NodeID space on the way out.
package analysis

import (
	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
	"github.com/trudi-group/fbas-analyzer-go/internal/search"
)

// Analysis wraps a single Fbas (and, optionally, a set of node groupings)
// and caches every search result it has been asked to compute. Analyses
// are not safe for concurrent use: build one Analysis per goroutine, or
// guard access externally.
type Analysis struct {
	original  *fbas.Fbas
	groupings *fbas.Groupings

	// shrunken is the Fbas restricted to satisfiable, strongly connected
	// nodes — the only nodes that can ever appear in a quorum. sm
	// translates shrunken NodeIDs back to original's.
	shrunken *fbas.Fbas
	sm       *fbas.ShrinkManager

	hasQuorumIntersection *bool
	minimalQuorums        *fbas.SetVecResult
	minimalBlockingSets   *fbas.SetVecResult
	minimalSplittingSets  *fbas.SetVecResult
	symmetricClusters     []fbas.QuorumSet
	symmetricClustersSet  bool
}

// New builds an Analysis over f. groupings may be nil. With groupings,
// AllNodes merges nodes by group; every other result reports individual
// physical nodes either way.
func New(f *fbas.Fbas, groupings *fbas.Groupings) *Analysis {
	satisfiable := f.SatisfiableNodes()
	reduced, _ := f.ReduceToStronglyConnectedNodes(satisfiable)
	shrunken, sm := f.Shrunken(reduced)

	return &Analysis{
		original:  f,
		groupings: groupings,
		shrunken:  shrunken,
		sm:        sm,
	}
}

// MergingByGroup reports whether this Analysis was constructed with
// groupings, and therefore collapses grouped nodes in AllNodes.
func (a *Analysis) MergingByGroup() bool {
	return a.groupings != nil
}

// AllPhysicalNodes returns every node in the original Fbas, ungrouped.
func (a *Analysis) AllPhysicalNodes() fbas.SetResult {
	return fbas.SetResult{Nodes: a.original.AllNodes()}
}

// AllNodes returns every node in the original Fbas, grouped if this
// Analysis has groupings.
func (a *Analysis) AllNodes() fbas.SetResult {
	r := a.AllPhysicalNodes()
	if a.groupings != nil {
		r = r.MergedByGroup(a.groupings)
	}
	return r
}

// SatisfiableNodes returns every node whose quorum set can ever be
// satisfied.
func (a *Analysis) SatisfiableNodes() fbas.SetResult {
	return fbas.SetResult{Nodes: a.original.SatisfiableNodes()}
}

// UnsatisfiableNodes returns every node whose quorum set can never be
// satisfied.
func (a *Analysis) UnsatisfiableNodes() fbas.SetResult {
	return fbas.SetResult{Nodes: a.original.UnsatisfiableNodes()}
}

// HasQuorumIntersection reports (and caches) whether every pair of
// quorums in the FBAS shares at least one member. An FBAS with no
// quorums at all does not have quorum intersection: there's nothing for
// quorums to intersect with.
func (a *Analysis) HasQuorumIntersection() bool {
	if a.hasQuorumIntersection == nil {
		quorums := a.MinimalQuorums()
		v := !quorums.IsEmpty() && nodeset.AllIntersect(quorums.Sets)
		a.hasQuorumIntersection = &v
	}
	return *a.hasQuorumIntersection
}

// HasQuorumIntersectionViaAlternativeCheck uses the aggressive
// non-intersecting-quorums search instead of enumerating every minimal
// quorum: faster when quorum intersection is likely absent. Returns the
// two non-intersecting quorums found, if any.
func (a *Analysis) HasQuorumIntersectionViaAlternativeCheck() (bool, fbas.SetVecResult) {
	quorums := search.FindNonintersectingQuorums(a.shrunken)
	result := fbas.NewSetVecResult(quorums, a.sm)
	return len(quorums) < 2, result
}

// MinimalQuorums returns (and caches) every minimal quorum.
func (a *Analysis) MinimalQuorums() fbas.SetVecResult {
	if a.minimalQuorums == nil {
		sets := search.FindMinimalQuorums(a.shrunken)
		r := fbas.NewSetVecResult(sets, a.sm)
		a.minimalQuorums = &r
	}
	return *a.minimalQuorums
}

// MinimalBlockingSets returns (and caches) every minimal blocking set,
// computed from the minimal quorums.
func (a *Analysis) MinimalBlockingSets() fbas.SetVecResult {
	if a.minimalBlockingSets == nil {
		minimalQuorumsShrunk := search.FindMinimalQuorums(a.shrunken)
		sets := search.FindMinimalBlockingSets(minimalQuorumsShrunk)
		r := fbas.NewSetVecResult(sets, a.sm)
		a.minimalBlockingSets = &r
	}
	return *a.minimalBlockingSets
}

// MinimalSplittingSets returns (and caches) every minimal splitting set.
func (a *Analysis) MinimalSplittingSets() fbas.SetVecResult {
	if a.minimalSplittingSets == nil {
		sets := search.FindMinimalSplittingSets(a.shrunken)
		r := fbas.NewSetVecResult(sets, a.sm)
		a.minimalSplittingSets = &r
	}
	return *a.minimalSplittingSets
}

// SymmetricClusters returns (and caches) every symmetric cluster. More
// than one entry proves the FBAS lacks quorum intersection.
func (a *Analysis) SymmetricClusters() []fbas.QuorumSet {
	if !a.symmetricClustersSet {
		a.symmetricClusters = search.FindSymmetricClusters(a.shrunken)
		a.symmetricClustersSet = true
	}
	return a.symmetricClusters
}

// TopTier returns the union of every node involved in any minimal quorum
// (forcing the minimal quorums to be computed).
func (a *Analysis) TopTier() fbas.SetResult {
	return fbas.SetResult{Nodes: a.MinimalQuorums().InvolvedNodes()}
}

// FindMinimalSplittingSetsOfNodeSets is the supplemented alternate entry
// point: run the minimal-splitting-sets search directly against
// explicitly supplied consensus clusters (already expressed in f's own
// NodeID space), bypassing Analysis's memoization and shrink-to-relevant
// step entirely. Useful when a caller has already computed consensus
// clusters for another purpose and wants to avoid recomputing them.
func FindMinimalSplittingSetsOfNodeSets(f *fbas.Fbas, consensusClusters []nodeset.Set) fbas.SetVecResult {
	sets := search.FindMinimalSplittingSetsOfNodeSets(f, consensusClusters)
	return fbas.NewSetVecResult(sets, nil)
}

// FindQuorumExpanders is the supplemented standalone entry point for
// locating quorum expanders without running a full splitting-set search.
func FindQuorumExpanders(f *fbas.Fbas) fbas.SetResult {
	return fbas.SetResult{Nodes: search.FindQuorumExpanders(f)}
}
