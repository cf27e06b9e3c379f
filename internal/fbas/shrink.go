package fbas

import (
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// ShrinkManager is a reversible bijection between an original NodeID space
// and a dense 0..k replacement space, built by keeping only a chosen subset
// of ids and renumbering them in ascending order. Analyses run against a
// shrunken Fbas (typically: only the strongly connected, satisfiable
// nodes) so that branch-and-bound search never wastes time on nodes that
// cannot appear in any quorum; results are then unshrunk back to the
// caller's original NodeIDs for reporting.
type ShrinkManager struct {
	// unshrinkTable maps a shrunken id back to its original id.
	unshrinkTable []nodeset.NodeID
	// shrinkMap maps an original id to its shrunken id.
	shrinkMap map[nodeset.NodeID]nodeset.NodeID
}

// NewShrinkManager builds a ShrinkManager that keeps exactly the ids in
// idsToKeep, renumbered densely from 0 in ascending original-id order.
func NewShrinkManager(idsToKeep nodeset.Set) *ShrinkManager {
	ids := idsToKeep.Slice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	sm := &ShrinkManager{
		unshrinkTable: ids,
		shrinkMap:     make(map[nodeset.NodeID]nodeset.NodeID, len(ids)),
	}
	for shrunk, original := range ids {
		sm.shrinkMap[original] = nodeset.NodeID(shrunk)
	}
	return sm
}

// Shrink maps an original id to its shrunken id. Returns false if the
// original id was not kept.
func (sm *ShrinkManager) Shrink(original nodeset.NodeID) (nodeset.NodeID, bool) {
	id, ok := sm.shrinkMap[original]
	return id, ok
}

// Unshrink maps a shrunken id back to its original id. Panics if id is out
// of range: every shrunken id produced by this manager must be in
// [0, len(unshrinkTable)).
func (sm *ShrinkManager) Unshrink(id nodeset.NodeID) nodeset.NodeID {
	return sm.unshrinkTable[id]
}

// Size returns the number of ids kept by the manager (the shrunken space's
// cardinality).
func (sm *ShrinkManager) Size() int {
	return len(sm.unshrinkTable)
}

// ShrinkSet maps every original id in s into the shrunken space, dropping
// any id the manager doesn't know about.
func (sm *ShrinkManager) ShrinkSet(s nodeset.Set) nodeset.Set {
	out := nodeset.New()
	s.ForEach(func(id nodeset.NodeID) {
		if shrunk, ok := sm.Shrink(id); ok {
			out.Add(shrunk)
		}
	})
	return out
}

// ShrinkSets maps ShrinkSet over every element of sets.
func (sm *ShrinkManager) ShrinkSets(sets []nodeset.Set) []nodeset.Set {
	out := make([]nodeset.Set, len(sets))
	for i, s := range sets {
		out[i] = sm.ShrinkSet(s)
	}
	return out
}

// UnshrinkSet maps every shrunken id in s back into the original space.
func (sm *ShrinkManager) UnshrinkSet(s nodeset.Set) nodeset.Set {
	out := nodeset.New()
	s.ForEach(func(id nodeset.NodeID) {
		out.Add(sm.Unshrink(id))
	})
	return out
}

// UnshrinkSets maps UnshrinkSet over every element of sets.
func (sm *ShrinkManager) UnshrinkSets(sets []nodeset.Set) []nodeset.Set {
	out := make([]nodeset.Set, len(sets))
	for i, s := range sets {
		out[i] = sm.UnshrinkSet(s)
	}
	return out
}

// Reshrink rebases node sets that are expressed in a previous shrink
// manager's space into this manager's space: each shrunken id is first
// unshrunk via old, then (re)shrunk via sm, dropping any id sm doesn't
// know about.
func Reshrink(sets []nodeset.Set, old *ShrinkManager, sm *ShrinkManager) []nodeset.Set {
	out := make([]nodeset.Set, len(sets))
	for i, s := range sets {
		reshrunk := nodeset.New()
		s.ForEach(func(shrunkID nodeset.NodeID) {
			original := old.Unshrink(shrunkID)
			if reshrunkID, ok := sm.Shrink(original); ok {
				reshrunk.Add(reshrunkID)
			}
		})
		out[i] = reshrunk
	}
	return out
}
