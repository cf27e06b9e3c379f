package fbasio

import (
	"encoding/json"
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// standardFormQuorumSet is the minimal, label-free quorum set shape used for
// hashing: only the structure that determines analysis results survives —
// no public keys, pretty names or geo/ISP metadata.
type standardFormQuorumSet struct {
	Threshold       uint                    `json:"t"`
	Validators      []uint                  `json:"v,omitempty"`
	InnerQuorumSets []standardFormQuorumSet `json:"i,omitempty"`
}

// StandardForm serializes f into a canonical byte representation suitable as
// a cache key: two FBASs that are structurally identical up to a renaming of
// public keys and a renumbering of NodeIDs produce identical bytes.
//
// The FBAS is first reduced to its strongly connected, satisfiable nodes —
// nodes that can never be forced into a quorum have no bearing on any
// analysis result, so two FBASs differing only in their dangling
// non-participants must still hash equal. The remaining nodes are then
// sorted by public key and renumbered densely from 0 in that order, so the
// standard form is independent of the order nodes happened to appear in the
// source file. Only the resulting threshold/validator/inner-quorum-set
// structure is serialized; public keys and display metadata are dropped
// entirely once they've served their purpose of fixing a canonical node
// order.
func StandardForm(f *fbas.Fbas) []byte {
	satisfiable := f.SatisfiableNodes()
	reduced, _ := f.ReduceToStronglyConnectedNodes(satisfiable)
	shrunken, _ := f.Shrunken(reduced)

	order := make([]int, shrunken.NumberOfNodes())
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return shrunken.Nodes[order[i]].PublicKey < shrunken.Nodes[order[j]].PublicKey
	})

	newID := make([]nodeset.NodeID, len(order))
	for newIdx, oldIdx := range order {
		newID[nodeset.NodeID(oldIdx)] = nodeset.NodeID(newIdx)
	}

	out := make([]standardFormQuorumSet, len(order))
	for newIdx, oldIdx := range order {
		out[newIdx] = remapQuorumSet(shrunken.Nodes[oldIdx].QuorumSet, newID)
	}

	// Marshal cannot fail for this type (no channels, funcs, or cyclic
	// data), so the error is deliberately discarded rather than threaded
	// through every caller of a function meant to be a pure hash input.
	data, _ := json.Marshal(out)
	return data
}

func remapQuorumSet(q fbas.QuorumSet, newID []nodeset.NodeID) standardFormQuorumSet {
	validators := make([]uint, len(q.Validators))
	for i, v := range q.Validators {
		validators[i] = newID[v]
	}
	sort.Slice(validators, func(i, j int) bool { return validators[i] < validators[j] })

	inner := make([]standardFormQuorumSet, len(q.InnerQuorumSets))
	for i, in := range q.InnerQuorumSets {
		inner[i] = remapQuorumSet(in, newID)
	}

	return standardFormQuorumSet{Threshold: q.Threshold, Validators: validators, InnerQuorumSets: inner}
}
