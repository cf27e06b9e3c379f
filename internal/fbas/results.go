package fbas

import (
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// SetResult wraps a single node set result (e.g. the top tier), always
// expressed in the caller's original NodeID space.
type SetResult struct {
	Nodes nodeset.Set
}

// NewSetResult unshrinks a node set computed in sm's space, if sm is
// non-nil, and wraps the result.
func NewSetResult(nodeSet nodeset.Set, sm *ShrinkManager) SetResult {
	if sm == nil {
		return SetResult{Nodes: nodeSet}
	}
	return SetResult{Nodes: sm.UnshrinkSet(nodeSet)}
}

// Len returns the number of nodes in the result.
func (r SetResult) Len() int { return r.Nodes.Len() }

// WithoutNodes drops the given node ids from the result.
func (r SetResult) WithoutNodes(nodes []nodeset.NodeID) SetResult {
	out := r.Nodes.Clone()
	for _, n := range nodes {
		out.Remove(n)
	}
	return SetResult{Nodes: out}
}

// MergedByGroup collapses every grouped node in the result onto its
// group's representative id.
func (r SetResult) MergedByGroup(g *Groupings) SetResult {
	return SetResult{Nodes: g.MergeNodeSet(r.Nodes)}
}

// SetVecResult wraps a collection of node set results (e.g. minimal
// quorums, minimal blocking sets, minimal splitting sets), always
// expressed in the caller's original NodeID space.
type SetVecResult struct {
	Sets []nodeset.Set
}

// NewSetVecResult unshrinks every set in sets using sm, if sm is non-nil,
// and wraps the result.
func NewSetVecResult(sets []nodeset.Set, sm *ShrinkManager) SetVecResult {
	if sm == nil {
		return SetVecResult{Sets: sets}
	}
	return SetVecResult{Sets: sm.UnshrinkSets(sets)}
}

// Len returns the number of sets in the result.
func (r SetVecResult) Len() int { return len(r.Sets) }

// IsEmpty reports whether the result holds no sets at all.
func (r SetVecResult) IsEmpty() bool { return len(r.Sets) == 0 }

// ContainsEmptySet reports whether one of the member sets is itself empty
// (this is how a "no quorum intersection" verdict is represented: the
// empty set is trivially a splitting set).
func (r SetVecResult) ContainsEmptySet() bool {
	for _, s := range r.Sets {
		if s.IsEmpty() {
			return true
		}
	}
	return false
}

// InvolvedNodes returns the union of every member set.
func (r SetVecResult) InvolvedNodes() nodeset.Set {
	return nodeset.Involved(r.Sets)
}

// MinimalSets removes any member set that is a superset of another member
// set, and returns the result sorted by cardinality then lexicographic
// member order.
func (r SetVecResult) MinimalSets() SetVecResult {
	return SetVecResult{Sets: nodeset.RemoveNonMinimal(r.Sets)}
}

// WithoutNodes drops the given node ids from every member set.
func (r SetVecResult) WithoutNodes(nodes []nodeset.NodeID) SetVecResult {
	drop := nodeset.Of(nodes...)
	out := make([]nodeset.Set, len(r.Sets))
	for i, s := range r.Sets {
		out[i] = s.Difference(drop)
	}
	return SetVecResult{Sets: out}
}

// MergedByGroup collapses every grouped node in every member set onto its
// group's representative id. The result may no longer be minimal (several
// sets can collapse onto each other) or duplicate-free; chain with
// MinimalSets when that matters.
func (r SetVecResult) MergedByGroup(g *Groupings) SetVecResult {
	return SetVecResult{Sets: g.MergeNodeSets(r.Sets)}
}

// Min returns the cardinality of the smallest member set, or 0 if empty.
func (r SetVecResult) Min() int {
	if len(r.Sets) == 0 {
		return 0
	}
	min := r.Sets[0].Len()
	for _, s := range r.Sets[1:] {
		if s.Len() < min {
			min = s.Len()
		}
	}
	return min
}

// Max returns the cardinality of the largest member set, or 0 if empty.
func (r SetVecResult) Max() int {
	max := 0
	for _, s := range r.Sets {
		if s.Len() > max {
			max = s.Len()
		}
	}
	return max
}

// Mean returns the mean cardinality across member sets, or 0 if empty.
func (r SetVecResult) Mean() float64 {
	if len(r.Sets) == 0 {
		return 0
	}
	total := 0
	for _, s := range r.Sets {
		total += s.Len()
	}
	return float64(total) / float64(len(r.Sets))
}

// Histogram returns, indexed by set cardinality (0 .. Max), how many
// member sets have that exact cardinality.
func (r SetVecResult) Histogram() []int {
	max := r.Max()
	hist := make([]int, max+1)
	for _, s := range r.Sets {
		hist[s.Len()]++
	}
	return hist
}

// Describe summarizes the result as (count, distinct nodes involved,
// (min, max, mean) set size, size histogram).
func (r SetVecResult) Describe() (count, involved int, minMaxMean [3]float64, histogram []int) {
	return len(r.Sets), r.InvolvedNodes().Len(), [3]float64{float64(r.Min()), float64(r.Max()), r.Mean()}, r.Histogram()
}
