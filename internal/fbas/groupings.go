package fbas

import (
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// Groupings collapses individual nodes into named groups — organizations,
// ISPs or countries — so that analyses can treat every node belonging to
// the same group as a single unit of trust. The three flavors share
// exactly this one type and differ only in how they're built, either loaded
// from a JSON file (see the fbasio package) or derived from each node's own
// metadata (GroupByISP, GroupByCountry): an organization file groups validators run by the
// same legal entity, an ISP file groups validators hosted behind the same
// network provider, and a country file groups validators by
// self-reported physical location.
type Groupings struct {
	// Names maps a canonical group id (its index into groups, stable for
	// the lifetime of the value) to its human-readable name.
	Names []string
	// members[g] is the set of NodeIDs belonging to group g.
	members []nodeset.Set
	// mergedIDs maps every grouped NodeID to the NodeID chosen as that
	// group's single representative (the lowest member id).
	mergedIDs map[nodeset.NodeID]nodeset.NodeID
	// repToGroup maps a representative NodeID to its index into Names,
	// for pretty-printing a merged node as its group's name.
	repToGroup map[nodeset.NodeID]int
}

// NewGroupings builds a Groupings from a list of (name, members) pairs. A
// node appearing in more than one group is only recognised by the first
// group that claims it, mirroring first-writer-wins semantics of the
// upstream organizations/ISP/country loaders.
func NewGroupings(groups []struct {
	Name    string
	Members nodeset.Set
}) *Groupings {
	g := &Groupings{
		mergedIDs:  make(map[nodeset.NodeID]nodeset.NodeID),
		repToGroup: make(map[nodeset.NodeID]int),
	}
	for _, group := range groups {
		if group.Members.IsEmpty() {
			continue
		}
		ids := group.Members.Slice()
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		claimed := nodeset.New()
		for _, id := range ids {
			if _, already := g.mergedIDs[id]; !already {
				claimed.Add(id)
			}
		}
		if claimed.IsEmpty() {
			continue
		}
		representative := claimed.Slice()[0]
		claimed.ForEach(func(id nodeset.NodeID) { g.mergedIDs[id] = representative })
		g.repToGroup[representative] = len(g.Names)
		g.Names = append(g.Names, group.Name)
		g.members = append(g.members, claimed)
	}
	return g
}

// GroupName returns the name of the group id represents (id must be the
// group's chosen representative, as returned by MergedID), and whether id
// represents a group at all.
func (g *Groupings) GroupName(id nodeset.NodeID) (string, bool) {
	idx, ok := g.repToGroup[id]
	if !ok {
		return "", false
	}
	return g.Names[idx], true
}

// GroupByField builds a Groupings from a Fbas by collapsing every node that
// shares the same non-empty value of field(node) into one group, named after
// that shared value. Used for the ISP and country groupings, which are
// derived directly from metadata already present in the FBAS file rather
// than loaded from a companion file (contrast organization groupings, which
// always come from a separate JSON document).
func GroupByField(f *Fbas, field func(Node) string) *Groupings {
	members := make(map[string]nodeset.Set)
	var order []string
	for i, n := range f.Nodes {
		v := field(n)
		if v == "" {
			continue
		}
		if _, seen := members[v]; !seen {
			order = append(order, v)
		}
		s := members[v]
		s.Add(nodeset.NodeID(i))
		members[v] = s
	}

	groups := make([]struct {
		Name    string
		Members nodeset.Set
	}, 0, len(order))
	for _, v := range order {
		groups = append(groups, struct {
			Name    string
			Members nodeset.Set
		}{Name: v, Members: members[v]})
	}
	return NewGroupings(groups)
}

// GroupByISP groups nodes sharing the same ISP.
func GroupByISP(f *Fbas) *Groupings {
	return GroupByField(f, func(n Node) string { return n.ISP })
}

// GroupByCountry groups nodes sharing the same country.
func GroupByCountry(f *Fbas) *Groupings {
	return GroupByField(f, func(n Node) string { return n.CountryName })
}

// NumberOfGroups returns how many distinct groups were recognised.
func (g *Groupings) NumberOfGroups() int {
	return len(g.Names)
}

// MergedID returns the representative NodeID for id: id itself if id does
// not belong to any known group.
func (g *Groupings) MergedID(id nodeset.NodeID) nodeset.NodeID {
	if rep, ok := g.mergedIDs[id]; ok {
		return rep
	}
	return id
}

// MergeNodeSet replaces every grouped member of s with its group's
// representative id, collapsing the set accordingly.
func (g *Groupings) MergeNodeSet(s nodeset.Set) nodeset.Set {
	out := nodeset.New()
	s.ForEach(func(id nodeset.NodeID) {
		out.Add(g.MergedID(id))
	})
	return out
}

// MergeNodeSets applies MergeNodeSet to every set in sets.
func (g *Groupings) MergeNodeSets(sets []nodeset.Set) []nodeset.Set {
	out := make([]nodeset.Set, len(sets))
	for i, s := range sets {
		out[i] = g.MergeNodeSet(s)
	}
	return out
}

// MergeMinimalNodeSets is MergeNodeSets followed by a minimality pass: once
// several originally-distinct node sets collapse onto the same
// representatives, some may become supersets of others.
func (g *Groupings) MergeMinimalNodeSets(sets []nodeset.Set) []nodeset.Set {
	return nodeset.RemoveNonMinimal(g.MergeNodeSets(sets))
}

// MergeQuorumSet rewrites q so that any inner quorum set entirely confined
// to a single group (i.e. every validator in that inner quorum set belongs
// to the same group, with no further inner quorum sets of its own) is
// collapsed into a single validator reference to that group's
// representative id. This mirrors a real-world organization's internal
// consensus: the outside world shouldn't have to reason about how many
// physical nodes one organization runs internally, only about the
// organization as a unit.
func (q QuorumSet) MergeQuorumSet(g *Groupings) QuorumSet {
	var validators []nodeset.NodeID
	for _, v := range q.Validators {
		validators = append(validators, g.MergedID(v))
	}

	var inner []QuorumSet
	for _, in := range q.InnerQuorumSets {
		if rep, ok := singleGroupRepresentative(in, g); ok {
			validators = append(validators, rep)
			continue
		}
		inner = append(inner, in.MergeQuorumSet(g))
	}

	validators = dedupeSorted(validators)

	return QuorumSet{Threshold: q.Threshold, Validators: validators, InnerQuorumSets: inner}
}

// MergeQuorumSets applies MergeQuorumSet to every quorum set in qs.
func MergeQuorumSets(qs []QuorumSet, g *Groupings) []QuorumSet {
	out := make([]QuorumSet, len(qs))
	for i, q := range qs {
		out[i] = q.MergeQuorumSet(g)
	}
	return out
}

// singleGroupRepresentative reports whether q has no inner quorum sets of
// its own and every one of its validators belongs to the same group, and
// if so returns that group's representative id.
func singleGroupRepresentative(q QuorumSet, g *Groupings) (nodeset.NodeID, bool) {
	if len(q.InnerQuorumSets) > 0 || len(q.Validators) == 0 {
		return 0, false
	}
	rep := g.MergedID(q.Validators[0])
	for _, v := range q.Validators[1:] {
		if g.MergedID(v) != rep {
			return 0, false
		}
	}
	return rep, true
}

func dedupeSorted(ids []nodeset.NodeID) []nodeset.NodeID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := ids[:0]
	var last nodeset.NodeID
	hasLast := false
	for _, id := range ids {
		if hasLast && id == last {
			continue
		}
		out = append(out, id)
		last = id
		hasLast = true
	}
	return out
}
