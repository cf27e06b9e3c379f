package fbas

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// SatisfiableNodes returns every node whose quorum set is satisfiable by
// the full node set (equivalently: the "satisfiable" half of
// FindUnsatisfiableNodes(f.AllNodes())).
func (f *Fbas) SatisfiableNodes() nodeset.Set {
	satisfiable, _ := f.FindUnsatisfiableNodesSplit(f.AllNodes())
	return satisfiable
}

// UnsatisfiableNodes returns every node that can never be part of a quorum,
// because its own quorum set (or, transitively, a quorum set it depends on)
// cannot be satisfied even by the full node set.
func (f *Fbas) UnsatisfiableNodes() nodeset.Set {
	return f.FindUnsatisfiableNodes(f.AllNodes())
}

// FindUnsatisfiableNodes returns the subset of nodeSet whose quorum set
// cannot be satisfied, even by the rest of nodeSet, after iteratively
// removing other unsatisfiable nodes from consideration.
func (f *Fbas) FindUnsatisfiableNodes(nodeSet nodeset.Set) nodeset.Set {
	_, unsatisfiable := f.FindUnsatisfiableNodesSplit(nodeSet)
	return unsatisfiable
}

// FindUnsatisfiableNodesSplit partitions nodeSet into (satisfiable,
// unsatisfiable): first, every node whose quorum set isn't a quorum slice
// of nodeSet itself is unsatisfiable; then the fixpoint is extended by
// repeatedly moving any remaining "satisfiable" node whose quorum set is no
// longer a slice of the shrinking satisfiable set into unsatisfiable, since
// depending on an unsatisfiable node is itself disqualifying.
func (f *Fbas) FindUnsatisfiableNodesSplit(nodeSet nodeset.Set) (satisfiable, unsatisfiable nodeset.Set) {
	satisfiable = nodeset.New()
	unsatisfiable = nodeset.New()

	nodeSet.ForEach(func(id nodeset.NodeID) {
		if f.QuorumSet(id).IsQuorumSlice(nodeSet) {
			satisfiable.Add(id)
		} else {
			unsatisfiable.Add(id)
		}
	})

	for {
		var found nodeset.NodeID
		foundOne := false
		satisfiable.ForEach(func(id nodeset.NodeID) {
			if foundOne {
				return
			}
			if !f.QuorumSet(id).IsQuorumSlice(satisfiable) {
				found = id
				foundOne = true
			}
		})
		if !foundOne {
			break
		}
		satisfiable.Remove(found)
		unsatisfiable.Add(found)
	}

	return satisfiable, unsatisfiable
}

// StronglyConnectedComponents partitions every node in the Fbas into its
// strongly connected components of the trust graph induced by
// ContainedNodes (an edge from a to b means a's quorum set references b).
func (f *Fbas) StronglyConnectedComponents() []nodeset.Set {
	return f.stronglyConnectedComponentsOf(f.AllNodes())
}

// StronglyConnectedComponentsOf partitions nodes (a subset of the Fbas's
// own nodes) into its strongly connected components, ignoring edges to
// nodes outside the subset.
func (f *Fbas) StronglyConnectedComponentsOf(nodes nodeset.Set) []nodeset.Set {
	return f.stronglyConnectedComponentsOf(nodes)
}

func (f *Fbas) stronglyConnectedComponentsOf(nodes nodeset.Set) []nodeset.Set {
	g := simple.NewDirectedGraph()
	nodes.ForEach(func(id nodeset.NodeID) {
		g.AddNode(simple.Node(id))
	})
	nodes.ForEach(func(id nodeset.NodeID) {
		f.QuorumSet(id).ContainedNodes().ForEach(func(to nodeset.NodeID) {
			if nodes.Contains(to) && !g.HasEdgeFromTo(int64(id), int64(to)) {
				g.SetEdge(simple.Edge{F: simple.Node(id), T: simple.Node(to)})
			}
		})
	})

	sccs := topo.TarjanSCC(g)
	out := make([]nodeset.Set, len(sccs))
	for i, scc := range sccs {
		s := nodeset.New()
		for _, n := range scc {
			s.Add(nodeset.NodeID(n.ID()))
		}
		out[i] = s
	}
	return out
}

// ReduceToStronglyConnectedNodes removes from nodes every node that isn't
// referenced (other than by itself) by any other node still under
// consideration, repeating until a fixpoint. This is a cheap
// over-approximation of "is part of a nontrivial strongly connected
// component" used to shrink the search space before the expensive minimal
// quorum / blocking-set / splitting-set searches: a node nobody depends on
// can never be forced into anyone else's quorum and is therefore
// irrelevant to those searches, even though it might still technically
// form a trivial (size-1, no self-loop) component of its own.
func (f *Fbas) ReduceToStronglyConnectedNodes(nodes nodeset.Set) (reduced, removed nodeset.Set) {
	removed = nodes.Clone()
	nodes.ForEach(func(id nodeset.NodeID) {
		f.QuorumSet(id).ContainedNodes().ForEach(func(included nodeset.NodeID) {
			if included == id {
				return
			}
			removed.Remove(included)
		})
	})

	if removed.IsEmpty() {
		return nodes, removed
	}

	next := nodes.Difference(removed)
	furtherReduced, furtherRemoved := f.ReduceToStronglyConnectedNodes(next)
	removed.InPlaceUnion(furtherRemoved)
	return furtherReduced, removed
}

// RankNodes scores every node in nodes using an adaptation of PageRank:
// no damping, exactly 100 iterations, a uniform starting score of 1/len,
// and edges taken from each node's ContainedNodes restricted to nodes
// (links to nodes outside the set are ignored). Scores are indexed by
// NodeID (not by position in nodes) and are 0 for every node not in nodes.
func (f *Fbas) RankNodes(nodes nodeset.Set) []float64 {
	n := nodes.Len()
	scores := make([]float64, len(f.Nodes))
	if n == 0 {
		return scores
	}
	startingScore := 1.0 / float64(n)
	ids := nodes.Slice()
	for _, id := range ids {
		scores[id] = startingScore
	}

	for iter := 0; iter < 100; iter++ {
		last := scores
		scores = make([]float64, len(f.Nodes))
		for _, id := range ids {
			trusted := f.QuorumSet(id).ContainedNodes()
			l := float64(trusted.Len())
			if l == 0 {
				continue
			}
			trusted.ForEach(func(t nodeset.NodeID) {
				if nodes.Contains(t) {
					scores[t] += last[id] / l
				}
			})
		}
	}
	return scores
}

// SortByRank ranks nodes using RankNodes and returns them sorted by
// descending score, breaking ties by ascending NodeID for determinism.
func (f *Fbas) SortByRank(nodes []nodeset.NodeID) []nodeset.NodeID {
	set := nodeset.Of(nodes...)
	scores := f.RankNodes(set)

	sorted := make([]nodeset.NodeID, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if scores[sorted[i]] != scores[sorted[j]] {
			return scores[sorted[i]] > scores[sorted[j]]
		}
		return sorted[i] < sorted[j]
	})
	return sorted
}
