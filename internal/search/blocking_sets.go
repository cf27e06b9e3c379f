package search

import (
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// FindMinimalBlockingSets finds every minimal blocking set implied by the
// given collection of node sets (typically minimal quorums): every set of
// nodes whose removal leaves no member of nodeSets intact, such that no
// proper subset has the same property. Controlling every node in a
// blocking set is enough to censor the network even without controlling a
// quorum outright.
func FindMinimalBlockingSets(nodeSets []nodeset.Set) []nodeset.Set {
	blockingSets := findBlockingSets(nodeSets)
	return removeNonMinimalBlockingSets(blockingSets)
}

// membershipsMap records, for each node, the indices (into the original
// nodeSets slice) of every node set that node belongs to.
type membershipsMap map[nodeset.NodeID]nodeset.Set

func findBlockingSets(nodeSets []nodeset.Set) []nodeset.Set {
	nodes, memberships := extractNodesAndMemberships(nodeSets)
	nodes = sortByNumberOfMemberships(nodes, memberships)

	unprocessed := newNodeIDDeque(nodes)
	selection := nodeset.New()
	var found []nodeset.Set
	missing := nodeset.Range(uint(len(nodeSets)))

	blockingSetsStep(unprocessed, &selection, &found, missing, memberships, true)
	return found
}

func blockingSetsStep(unprocessed *nodeIDDeque, selection *nodeset.Set, found *[]nodeset.Set, missing nodeset.Set, memberships membershipsMap, selectionChanged bool) {
	if selectionChanged && missing.IsEmpty() {
		*found = append(*found, selection.Clone())
		return
	}

	candidate, ok := unprocessed.popFront()
	if !ok {
		return
	}

	if !missing.IsDisjoint(memberships[candidate]) {
		selection.Add(candidate)
		nextMissing := missing.Difference(memberships[candidate])
		blockingSetsStep(unprocessed, selection, found, nextMissing, memberships, true)
		selection.Remove(candidate)
	}

	blockingSetsStep(unprocessed, selection, found, missing, memberships, false)
	unprocessed.pushFront(candidate)
}

func extractNodesAndMemberships(nodeSets []nodeset.Set) ([]nodeset.NodeID, membershipsMap) {
	nodes := nodeset.Involved(nodeSets)
	memberships := make(membershipsMap, nodes.Len())
	for setIdx, s := range nodeSets {
		s.ForEach(func(id nodeset.NodeID) {
			m, ok := memberships[id]
			if !ok {
				m = nodeset.New()
			}
			m.Add(nodeset.NodeID(setIdx))
			memberships[id] = m
		})
	}
	return nodes.Slice(), memberships
}

// sortByNumberOfMemberships orders nodes so that those belonging to the
// most node sets come first: a node used by many quorums is more likely to
// be part of a small blocking set.
func sortByNumberOfMemberships(nodes []nodeset.NodeID, memberships membershipsMap) []nodeset.NodeID {
	sorted := make([]nodeset.NodeID, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool {
		return memberships[sorted[j]].Len() < memberships[sorted[i]].Len()
	})
	return sorted
}

// removeNonMinimalBlockingSets is correct only when blockingSets is exactly
// the output of findBlockingSets (which never emits duplicates and only
// ever over-counts by a constant factor of "minimal by one"). It applies
// RemoveNonMinimalByOne for speed, then (since this port's contract
// guarantees full minimality rather than only minimal-by-one) a full
// RemoveNonMinimal pass to catch any remaining non-minimal-by-more-than-one
// survivors before the final cardinality/lexicographic sort.
func removeNonMinimalBlockingSets(blockingSets []nodeset.Set) []nodeset.Set {
	byOne := nodeset.RemoveNonMinimalByOne(blockingSets)
	minimal := nodeset.RemoveNonMinimal(byOne)
	nodeset.SortSets(minimal)
	return minimal
}
