package fbasio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
	"github.com/trudi-group/fbas-analyzer-go/internal/nodeset"
)

// rawGrouping is the generic {name, validators} shape shared by plain
// grouping files and stellarbeat.org-style organization exports (which
// additionally carry an "id" field this port ignores: grouping identity is
// entirely determined by which validators are listed, not by the
// organization's own opaque id).
type rawGrouping struct {
	ID         string   `json:"id,omitempty"`
	Name       string   `json:"name"`
	Validators []string `json:"validators"`
}

// OrganizationsFromJSONFile loads a stellarbeat.org "organizations" export
// and resolves its validator public keys against f.
func OrganizationsFromJSONFile(path string, f *fbas.Fbas) (*fbas.Groupings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fbasio.OrganizationsFromJSONFile: %w", err)
	}
	return groupingsFromJSON(data, f)
}

// ISPsFromJSONFile loads an ISP grouping file (the same {name, validators}
// shape as organizations) and resolves it against f.
func ISPsFromJSONFile(path string, f *fbas.Fbas) (*fbas.Groupings, error) {
	return OrganizationsFromJSONFile(path, f)
}

// CountriesFromJSONFile loads a country grouping file (the same
// {name, validators} shape as organizations) and resolves it against f.
func CountriesFromJSONFile(path string, f *fbas.Fbas) (*fbas.Groupings, error) {
	return OrganizationsFromJSONFile(path, f)
}

// GroupingsFromJSON parses any of the three grouping flavors (they share
// one wire format) from raw JSON bytes.
func GroupingsFromJSON(data []byte, f *fbas.Fbas) (*fbas.Groupings, error) {
	return groupingsFromJSON(data, f)
}

func groupingsFromJSON(data []byte, f *fbas.Fbas) (*fbas.Groupings, error) {
	var raw []rawGrouping
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fbasio: parse groupings: %w", err)
	}

	groups := make([]struct {
		Name    string
		Members nodeset.Set
	}, 0, len(raw))

	for _, g := range raw {
		members := nodeset.New()
		for _, pk := range g.Validators {
			if id, ok := f.NodeID(pk); ok {
				members.Add(id)
			}
		}
		groups = append(groups, struct {
			Name    string
			Members nodeset.Set
		}{Name: g.Name, Members: members})
	}

	return fbas.NewGroupings(groups), nil
}
