// Package fbas holds the core Federated Byzantine Agreement System types:
// QuorumSet, Node, Fbas, ShrinkManager and Groupings. These types have no
// dependency on JSON, the cache, or the CLI — they are the pure domain
// model that the analysis package searches over.
package fbas

import (
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// QuorumSet is a recursive threshold structure: a node accepts a set of
// nodes as a quorum slice if at least Threshold of its (Validators ++
// InnerQuorumSets) members are satisfied within that set, where a validator
// is satisfied by simple membership and an inner quorum set is satisfied by
// recursively being a quorum slice of the same node set.
type QuorumSet struct {
	Threshold       uint
	Validators      []nodeset.NodeID
	InnerQuorumSets []QuorumSet
}

// Key renders q into a canonical, comparable string: equal quorum sets
// (same threshold, same validators regardless of input order, same nested
// inner quorum sets recursively) always produce the same key. Used to
// dedupe or group quorum sets in a plain Go map, which cannot use
// QuorumSet itself as a key because it contains a slice.
func (q QuorumSet) Key() string {
	sorted := make([]nodeset.NodeID, len(q.Validators))
	copy(sorted, q.Validators)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var b []byte
	b = appendUint(b, q.Threshold)
	b = append(b, '|')
	for _, v := range sorted {
		b = appendUint(b, v)
		b = append(b, ',')
	}
	b = append(b, '|')
	for _, inner := range q.InnerQuorumSets {
		b = append(b, '(')
		b = append(b, inner.Key()...)
		b = append(b, ')')
	}
	return string(b)
}

func appendUint(b []byte, v uint) []byte {
	if v == 0 {
		return append(b, '0')
	}
	start := len(b)
	for v > 0 {
		b = append(b, byte('0'+v%10))
		v /= 10
	}
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// NewUnsatisfiable returns a quorum set that can never be satisfied: no
// validators, no inner quorum sets, threshold 1. Used as the quorum set of
// nodes whose quorumSet field is missing at parse time, and of nodes
// assumed faulty by Fbas.AssumeFaulty.
func NewUnsatisfiable() QuorumSet {
	return QuorumSet{Threshold: 1}
}

// NewEmpty returns the trivially satisfied quorum set (threshold 0, no
// members): every node set, including the empty set, is one of its quorum
// slices.
func NewEmpty() QuorumSet {
	return QuorumSet{Threshold: 0}
}

// ContainedNodes returns the set of all node ids referenced anywhere in the
// quorum set, including inside nested inner quorum sets, deduplicated.
func (q QuorumSet) ContainedNodes() nodeset.Set {
	out := nodeset.New()
	q.collectContainedNodes(&out)
	return out
}

func (q QuorumSet) collectContainedNodes(out *nodeset.Set) {
	for _, v := range q.Validators {
		out.Add(v)
	}
	for _, inner := range q.InnerQuorumSets {
		inner.collectContainedNodes(out)
	}
}

// containedNodesWithDuplicates counts every validator reference, including
// duplicated ones across nested inner quorum sets, used only to detect
// duplication.
func (q QuorumSet) containedNodesWithDuplicates() int {
	n := len(q.Validators)
	for _, inner := range q.InnerQuorumSets {
		n += inner.containedNodesWithDuplicates()
	}
	return n
}

// ContainsDuplicates reports whether the same node id is referenced more
// than once across validators and nested inner quorum sets. A
// duplicate-free quorum set guarantees that ToMinimalSplittingSets can skip the
// (expensive) minimality reduction pass.
func (q QuorumSet) ContainsDuplicates() bool {
	return q.containedNodesWithDuplicates() != q.ContainedNodes().Len()
}

// IsSatisfiable reports whether the quorum set has enough members to ever
// reach its own threshold, independent of any particular node set.
func (q QuorumSet) IsSatisfiable() bool {
	return uint(len(q.Validators)+len(q.InnerQuorumSets)) >= q.Threshold
}

// IsQuorumSlice reports whether nodeSet satisfies this quorum set: at least
// Threshold of its validators are members of nodeSet, counting each
// satisfied inner quorum set (recursively, against the same nodeSet) as one
// additional match. A quorum set with Threshold == 0 is satisfied by every
// node set, including the empty one.
func (q QuorumSet) IsQuorumSlice(nodeSet nodeset.Set) bool {
	matches := uint(0)
	for _, v := range q.Validators {
		if nodeSet.Contains(v) {
			matches++
			if matches == q.Threshold {
				return true
			}
		}
	}
	for _, inner := range q.InnerQuorumSets {
		if inner.IsQuorumSlice(nodeSet) {
			matches++
			if matches == q.Threshold {
				return true
			}
		}
	}
	return matches >= q.Threshold
}

// ToQuorumSlices enumerates every minimal-shape quorum slice of this quorum
// set: every way of picking Threshold members out of (Validators ++
// InnerQuorumSets), taking one representative node set per validator
// (itself) and the cartesian product of each chosen inner quorum set's own
// ToQuorumSlices, unioned together.
//
// An unsatisfiable quorum set (Threshold > total members) yields no slices.
// A threshold-0 quorum set yields exactly one slice: the empty set.
func (q QuorumSet) ToQuorumSlices() []nodeset.Set {
	return q.toSlices(func(inner QuorumSet) uint { return inner.Threshold })
}

// toSlices generalizes ToQuorumSlices over an arbitrary per-quorum-set
// threshold function, applied at every level of recursion (not just the
// top one). This lets ToSplittingSets reuse the exact same combinatorial
// machinery with splittingThreshold in place of Threshold.
//
// The upstream Rust implementation calls an equivalent `to_slices` helper
// from splitting_sets.rs but does not define it in any file retained in
// this port's source material; this generalization is inferred by direct
// structural analogy to the fully-specified to_quorum_slices algorithm in
// core_types/quorum_set.rs.
func (q QuorumSet) toSlices(thresholdFn func(QuorumSet) uint) []nodeset.Set {
	threshold := thresholdFn(q)
	if threshold == 0 {
		return []nodeset.Set{nodeset.New()}
	}

	groups := make([][]nodeset.Set, 0, len(q.Validators)+len(q.InnerQuorumSets))
	for _, v := range q.Validators {
		groups = append(groups, []nodeset.Set{nodeset.Of(v)})
	}
	for _, inner := range q.InnerQuorumSets {
		groups = append(groups, inner.toSlices(thresholdFn))
	}

	return combineGroups(groups, threshold)
}

// combineGroups chooses every k-combination (k = threshold) of the given
// groups, then takes the cartesian product within each chosen combination,
// unioning each resulting tuple of node sets into one slice.
func combineGroups(groups [][]nodeset.Set, threshold uint) []nodeset.Set {
	n := uint(len(groups))
	if threshold > n {
		return nil
	}

	var result []nodeset.Set
	idx := make([]int, threshold)
	for i := range idx {
		idx[i] = i
	}

	for {
		chosen := make([][]nodeset.Set, threshold)
		for i, gi := range idx {
			chosen[i] = groups[gi]
		}
		result = append(result, cartesianUnion(chosen)...)

		i := int(threshold) - 1
		for i >= 0 && idx[i] == i+int(n)-int(threshold) {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < int(threshold); j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return result
}

// cartesianUnion takes the cartesian product of the given groups (one
// element picked from each) and unions each resulting tuple into a single
// node set.
func cartesianUnion(groups [][]nodeset.Set) []nodeset.Set {
	acc := []nodeset.Set{nodeset.New()}
	for _, group := range groups {
		next := make([]nodeset.Set, 0, len(acc)*len(group))
		for _, a := range acc {
			for _, s := range group {
				merged := a.Clone()
				merged.InPlaceUnion(s)
				next = append(next, merged)
			}
		}
		acc = next
	}
	return acc
}

// SplittingThreshold returns how many of (Validators ++ InnerQuorumSets)
// any two quorum slices of this quorum set must share at minimum:
// max(0, 2*Threshold - totalMembers). A splitting threshold of 0 means two
// of its slices can be disjoint without any faulty member.
func (q QuorumSet) SplittingThreshold() uint {
	total := uint(len(q.Validators) + len(q.InnerQuorumSets))
	if 2*q.Threshold > total {
		return 2*q.Threshold - total
	}
	return 0
}

// ToSplittingSets enumerates the minimal-shape sets of members that, if all
// controlled by the same set of faulty nodes, could force this quorum set
// to accept two non-intersecting quorum slices. Degenerates to no splitting
// sets at all when this quorum set's only "potential splitting set" is in
// fact one of its own quorum slices (i.e. it behaves like threshold-1
// single-slice set, for which splitting is meaningless).
func (q QuorumSet) ToSplittingSets() []nodeset.Set {
	potential := q.toSlices(func(inner QuorumSet) uint { return inner.SplittingThreshold() })
	if len(potential) == 1 && q.IsQuorumSlice(potential[0]) {
		return nil
	}
	return potential
}

// ToMinimalSplittingSets is ToSplittingSets with an extra minimality pass
// applied whenever the quorum set contains duplicate node references
// (across nested inner quorum sets): duplication can make ToSplittingSets
// emit a splitting set that is a strict superset of another, which the
// plain combinatorial enumeration alone does not catch.
func (q QuorumSet) ToMinimalSplittingSets() []nodeset.Set {
	sets := q.ToSplittingSets()
	if q.ContainsDuplicates() {
		return nodeset.RemoveNonMinimal(sets)
	}
	return sets
}

// QuorumExpanders returns, for every quorum slice of q, the members of that
// slice whose own quorum set does not already consider the slice one of its
// quorum slices. Each such member is a node that could be added to
// strengthen (and hence potentially change the tier membership of) the
// configuration, flattened across all slices into one node set.
func (q QuorumSet) QuorumExpanders(lookup func(nodeset.NodeID) QuorumSet) nodeset.Set {
	out := nodeset.New()
	for _, slice := range q.ToQuorumSlices() {
		slice.ForEach(func(id nodeset.NodeID) {
			if !lookup(id).IsQuorumSlice(slice) {
				out.Add(id)
			}
		})
	}
	return out
}
