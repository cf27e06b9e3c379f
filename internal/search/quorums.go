// Package search implements the branch-and-bound combinatorial searches
// that power fbas-analyzer: minimal quorums, minimal blocking sets, minimal
// splitting sets and symmetric clusters. Every search here operates on an
// already-shrunk *fbas.Fbas (see the analysis package for the
// preprocessing pipeline that narrows a raw Fbas down to the nodes worth
// searching over) and returns nodeset.Set values in that Fbas's own id
// space — callers are responsible for unshrinking.
package search

import (
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// nodeIDDeque is a simple double-ended queue of node ids, used by the
// branch-and-bound searches to pop the next candidate from the front while
// keeping the ability to push it back when backtracking.
type nodeIDDeque struct {
	ids []nodeset.NodeID
}

func newNodeIDDeque(ids []nodeset.NodeID) *nodeIDDeque {
	cp := make([]nodeset.NodeID, len(ids))
	copy(cp, ids)
	return &nodeIDDeque{ids: cp}
}

func (d *nodeIDDeque) popFront() (nodeset.NodeID, bool) {
	if len(d.ids) == 0 {
		return 0, false
	}
	id := d.ids[0]
	d.ids = d.ids[1:]
	return id, true
}

func (d *nodeIDDeque) pushFront(id nodeset.NodeID) {
	d.ids = append([]nodeset.NodeID{id}, d.ids...)
}

// candidateNodes runs the standard preprocessing pipeline shared by every
// search in this package: drop unsatisfiable nodes, then reduce to the
// (cheaply over-approximated) strongly connected nodes, optionally sorting
// the remainder by descending rank score so that high-impact nodes are
// tried first (this does not change what is found, only how quickly the
// pruning in each step kicks in).
func candidateNodes(f *fbas.Fbas, sortByRank bool) []nodeset.NodeID {
	satisfiable := f.SatisfiableNodes()
	stronglyConnected, _ := f.ReduceToStronglyConnectedNodes(satisfiable)

	ids := stronglyConnected.Slice()
	if sortByRank {
		return f.SortByRank(ids)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FindMinimalQuorums finds every minimal quorum of f: every quorum for
// which no proper subset is itself a quorum.
func FindMinimalQuorums(f *fbas.Fbas) []nodeset.Set {
	nodes := candidateNodes(f, true)
	quorums := findQuorumsWorker(nodes, f)
	return removeNonMinimalQuorums(quorums, f)
}

func findQuorumsWorker(sortedNodes []nodeset.NodeID, f *fbas.Fbas) []nodeset.Set {
	unprocessed := newNodeIDDeque(sortedNodes)
	selection := nodeset.New()
	available := nodeset.Of(sortedNodes...)
	var found []nodeset.Set

	findMinimalQuorumsStep(unprocessed, &selection, &available, &found, f)
	return found
}

func findMinimalQuorumsStep(unprocessed *nodeIDDeque, selection, available *nodeset.Set, found *[]nodeset.Set, f *fbas.Fbas) {
	if f.IsQuorum(*selection) {
		*found = append(*found, selection.Clone())
		return
	}
	candidate, ok := unprocessed.popFront()
	if !ok {
		return
	}

	selection.Add(candidate)
	findMinimalQuorumsStep(unprocessed, selection, available, found, f)
	selection.Remove(candidate)

	available.Remove(candidate)
	if quorumsPossible(*selection, *available, f) {
		findMinimalQuorumsStep(unprocessed, selection, available, found, f)
	}
	unprocessed.pushFront(candidate)
	available.Add(candidate)
}

// quorumsPossible reports whether every node already committed to
// selection could still be satisfied purely from within available — i.e.
// whether it is still worth exploring branches that keep all of selection.
func quorumsPossible(selection, available nodeset.Set, f *fbas.Fbas) bool {
	possible := true
	selection.ForEach(func(id nodeset.NodeID) {
		if !f.QuorumSet(id).IsQuorumSlice(available) {
			possible = false
		}
	})
	return possible
}

// removeNonMinimalQuorums drops every quorum for which removing any single
// member still leaves a quorum contained within it, then sorts the result
// first by cardinality (ascending) and, for equal cardinality, by the
// lexicographic member order already implemented by nodeset.Less — giving
// a fully deterministic, reproducible ordering of equal-size quorums
// (broader than the upstream length-only sort, per this port's stated
// minimal-quorums contract).
func removeNonMinimalQuorums(quorums []nodeset.Set, f *fbas.Fbas) []nodeset.Set {
	dedup := nodeset.RemoveNonMinimal(quorums)

	var minimal []nodeset.Set
	for _, quorum := range dedup {
		isMinimal := true
		tester := quorum.Clone()
		quorum.ForEach(func(id nodeset.NodeID) {
			if !isMinimal {
				return
			}
			tester.Remove(id)
			if containsQuorum(tester, f) {
				isMinimal = false
			}
			tester.Add(id)
		})
		if isMinimal {
			minimal = append(minimal, quorum)
		}
	}

	nodeset.SortSets(minimal)
	return minimal
}

func containsQuorum(nodeSet nodeset.Set, f *fbas.Fbas) bool {
	return f.ContainsQuorum(nodeSet)
}

// FindNonintersectingQuorums searches aggressively for a pair of
// non-intersecting quorums and stops as soon as it finds one, rather than
// enumerating every minimal quorum first. If the FBAS does enjoy quorum
// intersection, it instead returns a single node set: the full set of
// satisfiable, strongly connected nodes (which must itself be one big
// quorum in that case). Prefer this over FindMinimalQuorums when the
// caller only cares about a yes/no quorum intersection verdict and
// suspects the answer is "no".
func FindNonintersectingQuorums(f *fbas.Fbas) []nodeset.Set {
	nodes := candidateNodes(f, true)
	unprocessed := newNodeIDDeque(nodes)
	selection := nodeset.New()
	available := nodeset.Of(nodes...)
	antiselection := available.Clone()

	if pair, ok := findNonintersectingQuorumsStep(unprocessed, &selection, &available, &antiselection, f); ok {
		return pair[:]
	}
	return []nodeset.Set{available}
}

func findNonintersectingQuorumsStep(unprocessed *nodeIDDeque, selection, available, antiselection *nodeset.Set, f *fbas.Fbas) ([2]nodeset.Set, bool) {
	if f.IsQuorum(*selection) {
		potentialComplement, _ := f.FindUnsatisfiableNodesSplit(*antiselection)
		if !potentialComplement.IsEmpty() {
			return [2]nodeset.Set{selection.Clone(), potentialComplement}, true
		}
		return [2]nodeset.Set{}, false
	}

	candidate, ok := unprocessed.popFront()
	if !ok {
		return [2]nodeset.Set{}, false
	}

	selection.Add(candidate)
	antiselection.Remove(candidate)
	if pair, found := findNonintersectingQuorumsStep(unprocessed, selection, available, antiselection, f); found {
		return pair, true
	}
	selection.Remove(candidate)
	antiselection.Add(candidate)

	available.Remove(candidate)
	if quorumsPossible(*selection, *available, f) {
		if pair, found := findNonintersectingQuorumsStep(unprocessed, selection, available, antiselection, f); found {
			unprocessed.pushFront(candidate)
			available.Add(candidate)
			return pair, true
		}
	}
	unprocessed.pushFront(candidate)
	available.Add(candidate)
	return [2]nodeset.Set{}, false
}
