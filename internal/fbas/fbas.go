package fbas

import (
	"fmt"
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// PublicKey identifies a node across process and file boundaries. NodeIDs
// are only meaningful relative to a single Fbas (they are indices into its
// Nodes slice); PublicKeys are the stable, human-legible identifier.
type PublicKey = string

// Node is one participant: its public key, its quorum set, and (optionally)
// a human-friendly display name and geo/ISP metadata used only for pretty
// output and grouping.
type Node struct {
	PublicKey   PublicKey
	QuorumSet   QuorumSet
	PrettyName  string
	CountryName string
	ISP         string
	Active      bool
}

// Fbas is a Federated Byzantine Agreement System: an ordered list of nodes,
// each identified by NodeID (its index into Nodes), together with a lookup
// from public key to NodeID. NodeIDs are stable for the lifetime of the
// Fbas value: nodes are only ever appended, never removed or reordered (use
// Shrunken to obtain a renumbered subset).
type Fbas struct {
	Nodes   []Node
	pkToID  map[PublicKey]nodeset.NodeID
}

// New returns an empty Fbas.
func New() *Fbas {
	return &Fbas{pkToID: make(map[PublicKey]nodeset.NodeID)}
}

// AddNode appends a node and returns its freshly assigned NodeID. Panics if
// a node with the same public key was already added: public keys are the
// caller's promise of identity, and a silent duplicate would corrupt every
// NodeID-keyed lookup built from pkToID.
func (f *Fbas) AddNode(n Node) nodeset.NodeID {
	if _, exists := f.pkToID[n.PublicKey]; exists {
		panic(fmt.Sprintf("fbas: duplicate public key %q", n.PublicKey))
	}
	id := nodeset.NodeID(len(f.Nodes))
	f.Nodes = append(f.Nodes, n)
	f.pkToID[n.PublicKey] = id
	return id
}

// NumberOfNodes returns the number of nodes in the Fbas.
func (f *Fbas) NumberOfNodes() int {
	return len(f.Nodes)
}

// NodeID looks up the NodeID assigned to a public key. Returns false if no
// node with that public key was ever added.
func (f *Fbas) NodeID(pk PublicKey) (nodeset.NodeID, bool) {
	id, ok := f.pkToID[pk]
	return id, ok
}

// QuorumSet returns the quorum set of the node with the given id. Panics if
// id is out of range: a NodeID that didn't come from this Fbas (or a
// derived shrink/unshrink of it) is a programming error, not a recoverable
// condition.
func (f *Fbas) QuorumSet(id nodeset.NodeID) QuorumSet {
	return f.Nodes[id].QuorumSet
}

// AllNodes returns the set of every NodeID in the Fbas, 0..NumberOfNodes.
func (f *Fbas) AllNodes() nodeset.Set {
	return nodeset.Range(uint(len(f.Nodes)))
}

// IsQuorum reports whether nodeSet is a non-empty quorum: every member's
// quorum set must be satisfied by nodeSet itself (a quorum is
// self-sufficient — no member needs anyone outside the set).
func (f *Fbas) IsQuorum(nodeSet nodeset.Set) bool {
	if nodeSet.IsEmpty() {
		return false
	}
	isQuorum := true
	nodeSet.ForEach(func(id nodeset.NodeID) {
		if !f.QuorumSet(id).IsQuorumSlice(nodeSet) {
			isQuorum = false
		}
	})
	return isQuorum
}

// IsQuorumContaining reports whether nodeSet is a quorum that contains id.
func (f *Fbas) IsQuorumContaining(id nodeset.NodeID, nodeSet nodeset.Set) bool {
	return nodeSet.Contains(id) && f.IsQuorum(nodeSet)
}

// ContainsQuorum reports whether nodeSet contains a quorum as a subset
// (not necessarily nodeSet itself): true iff some non-empty subset of
// nodeSet is satisfiable purely from within nodeSet.
func (f *Fbas) ContainsQuorum(nodeSet nodeset.Set) bool {
	satisfiable, _ := f.FindUnsatisfiableNodesSplit(nodeSet)
	return !satisfiable.IsEmpty()
}

// Shrunken returns a new Fbas containing only the given node ids, renumbered
// densely from 0, together with the ShrinkManager describing the
// renumbering (so results computed over the shrunken Fbas can be mapped
// back to the caller's original NodeIDs).
//
// Any inner quorum set that, after removing references to nodes outside
// idsToKeep, has no validators and no inner quorum sets left is dropped
// entirely rather than kept as a vacuous inner set.
func (f *Fbas) Shrunken(idsToKeep nodeset.Set) (*Fbas, *ShrinkManager) {
	sm := NewShrinkManager(idsToKeep)

	shrunken := New()
	ids := idsToKeep.Slice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		n := f.Nodes[id]
		shrunken.AddNode(Node{
			PublicKey:   n.PublicKey,
			QuorumSet:   shrinkQuorumSet(n.QuorumSet, sm),
			PrettyName:  n.PrettyName,
			CountryName: n.CountryName,
			ISP:         n.ISP,
			Active:      n.Active,
		})
	}
	return shrunken, sm
}

func shrinkQuorumSet(q QuorumSet, sm *ShrinkManager) QuorumSet {
	var validators []nodeset.NodeID
	for _, v := range q.Validators {
		if shrunk, ok := sm.Shrink(v); ok {
			validators = append(validators, shrunk)
		}
	}
	sort.Slice(validators, func(i, j int) bool { return validators[i] < validators[j] })

	var inner []QuorumSet
	for _, in := range q.InnerQuorumSets {
		shrunk := shrinkQuorumSet(in, sm)
		if len(shrunk.Validators) == 0 && len(shrunk.InnerQuorumSets) == 0 {
			continue
		}
		inner = append(inner, shrunk)
	}

	return QuorumSet{Threshold: q.Threshold, Validators: validators, InnerQuorumSets: inner}
}

// AssumeFaulty returns a new Fbas in which every node in faulty has had its
// own quorum set replaced with NewUnsatisfiable, and every remaining node's
// quorum set has had references to faulty nodes stripped out (recursively,
// through nested inner quorum sets), reducing that node's threshold by one
// for each validator it lost (never going below 0).
//
// This models Byzantine or crashed nodes: they can no longer vote for
// anyone (including themselves), and everyone else routes around them.
func (f *Fbas) AssumeFaulty(faulty nodeset.Set) *Fbas {
	out := New()
	for id, n := range f.Nodes {
		qs := n.QuorumSet
		if faulty.Contains(nodeset.NodeID(id)) {
			qs = NewUnsatisfiable()
		} else {
			qs = assumeFaultyQuorumSet(qs, faulty)
		}
		out.AddNode(Node{
			PublicKey:   n.PublicKey,
			QuorumSet:   qs,
			PrettyName:  n.PrettyName,
			CountryName: n.CountryName,
			ISP:         n.ISP,
			Active:      n.Active,
		})
	}
	return out
}

func assumeFaultyQuorumSet(q QuorumSet, faulty nodeset.Set) QuorumSet {
	var validators []nodeset.NodeID
	removed := uint(0)
	for _, v := range q.Validators {
		if faulty.Contains(v) {
			removed++
			continue
		}
		validators = append(validators, v)
	}

	inner := make([]QuorumSet, len(q.InnerQuorumSets))
	for i, in := range q.InnerQuorumSets {
		inner[i] = assumeFaultyQuorumSet(in, faulty)
	}

	threshold := q.Threshold
	if removed >= threshold {
		threshold = 0
	} else {
		threshold -= removed
	}

	return QuorumSet{Threshold: threshold, Validators: validators, InnerQuorumSets: inner}
}
