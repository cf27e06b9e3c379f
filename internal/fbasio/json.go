// Package fbasio handles JSON ingestion and egestion for FBAS descriptions
// and node groupings, matching the "stellarbeat.org nodes" wire format, and
// produces the standard-form serialization used as a cache key by the
// bbolt-backed result cache.
//
// encoding/json is used directly rather than a third-party JSON library:
// nothing in this port's reference material reaches for one for this kind
// of one-shot, schema-known decode/encode, and the Raw* types below give
// encoding/json full control over defaulting and field naming without
// needing struct tag extensions a third-party library would otherwise
// justify.
package fbasio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// rawQuorumSet is the wire representation of a QuorumSet.
type rawQuorumSet struct {
	Threshold       uint           `json:"threshold"`
	Validators      []string       `json:"validators,omitempty"`
	InnerQuorumSets []rawQuorumSet `json:"innerQuorumSets,omitempty"`
}

// rawGeoData carries optional geolocation metadata, as found in
// stellarbeat.org exports.
type rawGeoData struct {
	CountryName string `json:"countryName"`
}

// rawNode is the wire representation of a single node entry.
type rawNode struct {
	PublicKey  string        `json:"publicKey"`
	QuorumSet  *rawQuorumSet `json:"quorumSet"`
	PrettyName string        `json:"name,omitempty"`
	ISP        string        `json:"isp,omitempty"`
	GeoData    *rawGeoData   `json:"geoData,omitempty"`
	Active     *bool         `json:"active,omitempty"`
}

// FromJSONFile reads and parses an FBAS description from path.
func FromJSONFile(path string) (*fbas.Fbas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fbasio.FromJSONFile: %w", err)
	}
	return FromJSON(data)
}

// FromJSONReader reads and parses an FBAS description from r (e.g. stdin).
func FromJSONReader(r io.Reader) (*fbas.Fbas, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("fbasio.FromJSONReader: %w", err)
	}
	return FromJSON(data)
}

// FromJSON parses an FBAS description from raw JSON bytes: a top-level
// array of node entries, in stellarbeat.org "nodes" format.
func FromJSON(data []byte) (*fbas.Fbas, error) {
	var raw []rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fbasio.FromJSON: %w", err)
	}

	f := fbas.New()
	pkToRaw := make(map[string]*rawQuorumSet, len(raw))
	for _, n := range raw {
		if _, dup := f.NodeID(n.PublicKey); dup {
			return nil, fmt.Errorf("fbasio.FromJSON: duplicate public key %q", n.PublicKey)
		}
		pkToRaw[n.PublicKey] = n.QuorumSet
		node := fbas.Node{
			PublicKey:  n.PublicKey,
			PrettyName: n.PrettyName,
			ISP:        n.ISP,
			Active:     n.Active == nil || *n.Active,
		}
		if n.GeoData != nil {
			node.CountryName = n.GeoData.CountryName
		}
		f.AddNode(node)
	}

	// Quorum sets are resolved in a second pass so that forward references
	// to public keys declared later in the file still work.
	for pk, raw := range pkToRaw {
		id, ok := f.NodeID(pk)
		if !ok {
			continue
		}
		qs := fbas.NewUnsatisfiable()
		if raw != nil {
			qs = quorumSetFromRaw(*raw, f)
		}
		f.Nodes[id].QuorumSet = qs
	}

	return f, nil
}

func quorumSetFromRaw(raw rawQuorumSet, f *fbas.Fbas) fbas.QuorumSet {
	var validators []nodeset.NodeID
	for _, pk := range raw.Validators {
		if id, ok := f.NodeID(pk); ok {
			validators = append(validators, id)
		}
	}
	sort.Slice(validators, func(i, j int) bool { return validators[i] < validators[j] })

	inner := make([]fbas.QuorumSet, len(raw.InnerQuorumSets))
	for i, in := range raw.InnerQuorumSets {
		inner[i] = quorumSetFromRaw(in, f)
	}

	return fbas.QuorumSet{Threshold: raw.Threshold, Validators: validators, InnerQuorumSets: inner}
}

// ToJSON serializes f back into the stellarbeat.org "nodes" format.
// Quorum set validator references to node ids unknown to f (which cannot
// arise from FromJSON, but can in an Fbas built directly in code) are
// rendered as the placeholder public key "missing #<id>". Empty validator
// and inner quorum set lists are omitted from the output.
func ToJSON(f *fbas.Fbas, pretty bool) ([]byte, error) {
	raw := make([]rawNode, len(f.Nodes))
	for i, n := range f.Nodes {
		active := n.Active
		qs := quorumSetToRaw(n.QuorumSet, f)
		raw[i] = rawNode{
			PublicKey:  n.PublicKey,
			QuorumSet:  &qs,
			PrettyName: n.PrettyName,
			ISP:        n.ISP,
			Active:     &active,
		}
		if n.CountryName != "" {
			raw[i].GeoData = &rawGeoData{CountryName: n.CountryName}
		}
	}

	if pretty {
		return json.MarshalIndent(raw, "", "  ")
	}
	return json.Marshal(raw)
}

func quorumSetToRaw(q fbas.QuorumSet, f *fbas.Fbas) rawQuorumSet {
	validators := make([]string, len(q.Validators))
	for i, id := range q.Validators {
		validators[i] = publicKeyOrPlaceholder(id, f)
	}

	inner := make([]rawQuorumSet, len(q.InnerQuorumSets))
	for i, in := range q.InnerQuorumSets {
		inner[i] = quorumSetToRaw(in, f)
	}

	return rawQuorumSet{Threshold: q.Threshold, Validators: validators, InnerQuorumSets: inner}
}

func publicKeyOrPlaceholder(id nodeset.NodeID, f *fbas.Fbas) string {
	if int(id) < len(f.Nodes) {
		return f.Nodes[id].PublicKey
	}
	return fmt.Sprintf("missing #%d", id)
}
