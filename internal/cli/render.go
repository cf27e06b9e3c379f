package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// renderable is any analysis result Output knows how to print: as raw node
// ids, as pretty labels (public keys / group names), or as a condensed
// description string.
type renderable interface {
	idString() string
	prettyString(f *fbas.Fbas, g *fbas.Groupings) string
	describeString() string
}

type intResult int

func (r intResult) idString() string                                   { return fmt.Sprintf("%d", int(r)) }
func (r intResult) prettyString(_ *fbas.Fbas, _ *fbas.Groupings) string { return r.idString() }
func (r intResult) describeString() string                             { return r.idString() }

type boolResult bool

func (r boolResult) idString() string                                   { return fmt.Sprintf("%t", bool(r)) }
func (r boolResult) prettyString(_ *fbas.Fbas, _ *fbas.Groupings) string { return r.idString() }
func (r boolResult) describeString() string                             { return r.idString() }

type setResult struct{ fbas.SetResult }

func (r setResult) idString() string {
	return nodeSetIDString(r.Nodes)
}

func (r setResult) prettyString(f *fbas.Fbas, g *fbas.Groupings) string {
	return nodeSetPrettyString(r.Nodes, f, g)
}

func (r setResult) describeString() string {
	return fmt.Sprintf("%d", r.Len())
}

type setVecResult struct{ fbas.SetVecResult }

func (r setVecResult) idString() string {
	parts := make([]string, len(r.Sets))
	for i, s := range r.Sets {
		parts[i] = nodeSetIDString(s)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r setVecResult) prettyString(f *fbas.Fbas, g *fbas.Groupings) string {
	parts := make([]string, len(r.Sets))
	for i, s := range r.Sets {
		parts[i] = nodeSetPrettyString(s, f, g)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r setVecResult) describeString() string {
	count, involved, minMaxMean, histogram := r.Describe()
	return fmt.Sprintf("(%d, %d, (%.0f, %.0f, %.2f), %v)",
		count, involved, minMaxMean[0], minMaxMean[1], minMaxMean[2], histogram)
}

type quorumSetsResult []fbas.QuorumSet

func (r quorumSetsResult) idString() string {
	parts := make([]string, len(r))
	for i, q := range r {
		parts[i] = q.Key()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r quorumSetsResult) prettyString(f *fbas.Fbas, g *fbas.Groupings) string {
	parts := make([]string, len(r))
	for i, q := range r {
		parts[i] = quorumSetPrettyString(q, f, g)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r quorumSetsResult) describeString() string {
	return fmt.Sprintf("%d", len(r))
}

func nodeSetIDString(s nodeset.Set) string {
	return s.String()
}

func nodeSetPrettyString(s nodeset.Set, f *fbas.Fbas, g *fbas.Groupings) string {
	ids := s.Slice()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = prettyNodeLabel(id, f, g)
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}

func quorumSetPrettyString(q fbas.QuorumSet, f *fbas.Fbas, g *fbas.Groupings) string {
	parts := make([]string, 0, len(q.Validators)+len(q.InnerQuorumSets))
	for _, v := range q.Validators {
		parts = append(parts, prettyNodeLabel(v, f, g))
	}
	for _, inner := range q.InnerQuorumSets {
		parts = append(parts, quorumSetPrettyString(inner, f, g))
	}
	return fmt.Sprintf("{threshold: %d, validators: [%s]}", q.Threshold, strings.Join(parts, ", "))
}

func prettyNodeLabel(id nodeset.NodeID, f *fbas.Fbas, g *fbas.Groupings) string {
	if g != nil {
		if name, ok := g.GroupName(id); ok {
			return name
		}
	}
	if int(id) >= len(f.Nodes) {
		return fmt.Sprintf("missing #%d", id)
	}
	n := f.Nodes[id]
	if n.PrettyName != "" {
		return n.PrettyName
	}
	return n.PublicKey
}
