// Package nodeset provides the bitset-backed node-id set type shared by the
// fbas and analysis packages.
//
// A Set is a sparse set of non-negative integer node ids. All core
// algorithms (quorum-slice checks, minimal-set search, preprocessing) operate
// on Sets rather than slices, since the combinatorial search routines create
// and compare very large numbers of these sets and a word-packed bitset
// keeps that affordable.
package nodeset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// NodeID identifies a node within a single Fbas instance. Ids are dense and
// assigned in insertion order; they are not stable across different Fbas
// instances (see the fbas package's ShrinkManager for reversible renumbering
// between a full and a reduced id space).
type NodeID = uint

// Set is a set of NodeIDs.
type Set struct {
	bits *bitset.BitSet
}

// New returns an empty set.
func New() Set {
	return Set{bits: bitset.New(0)}
}

// Of returns a set containing exactly the given ids.
func Of(ids ...NodeID) Set {
	s := New()
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Range returns the set {0, 1, ..., n-1}.
func Range(n uint) Set {
	s := Set{bits: bitset.New(n)}
	for i := uint(0); i < n; i++ {
		s.bits.Set(i)
	}
	return s
}

// Add inserts id into the set.
func (s *Set) Add(id NodeID) {
	if s.bits == nil {
		s.bits = bitset.New(id + 1)
	}
	s.bits.Set(id)
}

// Remove deletes id from the set, if present.
func (s *Set) Remove(id NodeID) {
	if s.bits == nil {
		return
	}
	s.bits.Clear(id)
}

// Contains reports whether id is a member.
func (s Set) Contains(id NodeID) bool {
	if s.bits == nil {
		return false
	}
	return s.bits.Test(id)
}

// Len returns the number of members.
func (s Set) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool {
	return s.bits == nil || s.bits.None()
}

// Clone returns an independent copy of s.
func (s Set) Clone() Set {
	if s.bits == nil {
		return New()
	}
	return Set{bits: s.bits.Clone()}
}

// Union returns a new set containing every member of s or other.
func (s Set) Union(other Set) Set {
	out := s.Clone()
	out.InPlaceUnion(other)
	return out
}

// InPlaceUnion adds every member of other to s.
func (s *Set) InPlaceUnion(other Set) {
	if other.bits == nil {
		return
	}
	if s.bits == nil {
		s.bits = bitset.New(0)
	}
	s.bits.InPlaceUnion(other.bits)
}

// Intersection returns a new set containing members present in both s and other.
func (s Set) Intersection(other Set) Set {
	if s.bits == nil || other.bits == nil {
		return New()
	}
	return Set{bits: s.bits.Intersection(other.bits)}
}

// InPlaceIntersection restricts s to members also present in other.
func (s *Set) InPlaceIntersection(other Set) {
	if s.bits == nil {
		return
	}
	if other.bits == nil {
		s.bits = bitset.New(0)
		return
	}
	s.bits.InPlaceIntersection(other.bits)
}

// Difference returns a new set containing members of s not present in other.
func (s Set) Difference(other Set) Set {
	if s.bits == nil {
		return New()
	}
	if other.bits == nil {
		return s.Clone()
	}
	return Set{bits: s.bits.Difference(other.bits)}
}

// IsDisjoint reports whether s and other share no members.
func (s Set) IsDisjoint(other Set) bool {
	return s.Intersection(other).IsEmpty()
}

// IsSubsetOf reports whether every member of s is also a member of other.
func (s Set) IsSubsetOf(other Set) bool {
	if s.bits == nil {
		return true
	}
	if other.bits == nil {
		return s.IsEmpty()
	}
	return other.bits.IsSuperSet(s.bits)
}

// Equal reports whether s and other have the same members.
func (s Set) Equal(other Set) bool {
	return s.Difference(other).IsEmpty() && other.Difference(s).IsEmpty()
}

// Slice returns the members of s in ascending order.
func (s Set) Slice() []NodeID {
	if s.bits == nil {
		return nil
	}
	out := make([]NodeID, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, i)
	}
	return out
}

// ForEach calls f for every member of s in ascending order.
func (s Set) ForEach(f func(NodeID)) {
	if s.bits == nil {
		return
	}
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		f(i)
	}
}

// String renders the set as e.g. "{1, 2, 5}", used in logs and error messages.
func (s Set) String() string {
	ids := s.Slice()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Less orders two sets by (length, then lexicographic member order),
// matching the canonical ordering used when deduplicating and bucketing
// node sets during minimal-set search.
func Less(a, b Set) bool {
	as, bs := a.Slice(), b.Slice()
	if len(as) != len(bs) {
		return len(as) < len(bs)
	}
	for i := range as {
		if as[i] != bs[i] {
			return as[i] < bs[i]
		}
	}
	return false
}

// SortSets sorts a slice of sets in place using Less.
func SortSets(sets []Set) {
	sort.Slice(sets, func(i, j int) bool { return Less(sets[i], sets[j]) })
}

// Key returns a canonical string key for a set, suitable for use as a map
// key or for deduplication via a map[string]struct{}.
func (s Set) Key() string {
	var b strings.Builder
	s.ForEach(func(id NodeID) {
		fmt.Fprintf(&b, "%d,", id)
	})
	return b.String()
}

// Involved returns the union of all given sets.
func Involved(sets []Set) Set {
	out := New()
	for _, s := range sets {
		out.InPlaceUnion(s)
	}
	return out
}

// RemoveNonMinimal reduces sets to those that are not a superset of any
// other member: the result contains no set that properly contains another
// set in the result. Input order is not preserved; output is sorted by
// Less. This mirrors bucket-by-length deduplication used throughout the
// search routines to keep "is this a superset of something smaller" checks
// cheap.
func RemoveNonMinimal(sets []Set) []Set {
	if len(sets) == 0 {
		return nil
	}
	dedup := dedupe(sets)
	SortSets(dedup)

	maxLen := 0
	for _, s := range dedup {
		if s.Len() > maxLen {
			maxLen = s.Len()
		}
	}
	buckets := make([][]Set, maxLen+1)
	for _, s := range dedup {
		buckets[s.Len()] = append(buckets[s.Len()], s)
	}

	var minimal []Set
	for _, bucket := range buckets {
		var acceptedThisLen []Set
		for _, candidate := range bucket {
			isMinimal := true
			for _, existing := range minimal {
				if existing.IsSubsetOf(candidate) {
					isMinimal = false
					break
				}
			}
			if isMinimal {
				acceptedThisLen = append(acceptedThisLen, candidate)
			}
		}
		minimal = append(minimal, acceptedThisLen...)
	}
	return minimal
}

// ContainsOnlyMinimal reports whether no set in sets is a proper superset of
// another set in sets. Used as a debug-time invariant check after
// RemoveNonMinimal.
func ContainsOnlyMinimal(sets []Set) bool {
	for i, a := range sets {
		for j, b := range sets {
			if i == j {
				continue
			}
			if b.IsSubsetOf(a) && !a.IsSubsetOf(b) {
				return false
			}
		}
	}
	return true
}

// AllIntersect reports whether every pair of sets in sets shares at least
// one member. A cheap quick path first checks whether every set already
// holds more than half of the nodes involved across all of them — in that
// case pairwise intersection is pigeonhole-guaranteed and the (quadratic)
// pairwise check can be skipped.
func AllIntersect(sets []Set) bool {
	maxSize := Involved(sets).Len()
	allOverHalf := true
	for _, s := range sets {
		if s.Len() <= maxSize/2 {
			allOverHalf = false
			break
		}
	}
	if allOverHalf {
		return true
	}
	for i, a := range sets {
		for _, b := range sets[i+1:] {
			if a.IsDisjoint(b) {
				return false
			}
		}
	}
	return true
}

// RemoveNonMinimalByOne drops any set for which removing a single member
// yields another set already present in sets. This is a cheap, incomplete
// approximation of RemoveNonMinimal (it only catches "non-minimal by
// exactly one node", not by an arbitrary subset) used where the caller
// already knows the candidate sets are close to minimal and wants to avoid
// the cost of the full bucket-by-length reduction.
func RemoveNonMinimalByOne(sets []Set) []Set {
	index := make(map[string]struct{}, len(sets))
	for _, s := range sets {
		index[s.Key()] = struct{}{}
	}

	var remaining []Set
	for _, s := range sets {
		minimalByOne := true
		s.ForEach(func(id NodeID) {
			if !minimalByOne {
				return
			}
			tester := s.Clone()
			tester.Remove(id)
			if _, ok := index[tester.Key()]; ok {
				minimalByOne = false
			}
		})
		if minimalByOne {
			remaining = append(remaining, s)
		}
	}
	return remaining
}

func dedupe(sets []Set) []Set {
	seen := make(map[string]struct{}, len(sets))
	out := make([]Set, 0, len(sets))
	for _, s := range sets {
		k := s.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
