package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveGroupingsByISP(t *testing.T) {
	f := threeNodeFbas(t)
	f.Nodes[0].ISP = "Comcast"
	f.Nodes[1].ISP = "Comcast"
	f.Nodes[2].ISP = "Verizon"

	g, err := resolveGroupings(&flags{mergeByISP: true}, f)
	if err != nil {
		t.Fatalf("resolveGroupings: %v", err)
	}
	if g == nil {
		t.Fatal("expected non-nil groupings for --merge-by-isp")
	}
	if g.MergedID(0) != g.MergedID(1) {
		t.Error("expected nodes sharing an ISP to merge to the same representative")
	}
}

func TestResolveGroupingsByCountry(t *testing.T) {
	f := threeNodeFbas(t)
	f.Nodes[0].CountryName = "Germany"
	f.Nodes[1].CountryName = "Germany"

	g, err := resolveGroupings(&flags{mergeByCountry: true}, f)
	if err != nil {
		t.Fatalf("resolveGroupings: %v", err)
	}
	if g == nil {
		t.Fatal("expected non-nil groupings for --merge-by-country")
	}
}

func TestResolveGroupingsOrgWithoutPathErrors(t *testing.T) {
	f := threeNodeFbas(t)
	if _, err := resolveGroupings(&flags{mergeByOrg: true}, f); err == nil {
		t.Fatal("expected an error when --merge-by-org is set without --organizations")
	}
}

func TestResolveGroupingsOrgWithPathDelegatesToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orgs.json")
	data := `[{"name": "Acme", "validators": ["A", "B"]}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := threeNodeFbas(t)
	g, err := resolveGroupings(&flags{mergeByOrg: true, orgsPath: path}, f)
	if err != nil {
		t.Fatalf("resolveGroupings: %v", err)
	}
	if g.NumberOfGroups() != 1 {
		t.Errorf("expected 1 group from the organizations file, got %d", g.NumberOfGroups())
	}
}

func TestResolveGroupingsNoFlagsReturnsNil(t *testing.T) {
	f := threeNodeFbas(t)
	g, err := resolveGroupings(&flags{}, f)
	if err != nil {
		t.Fatalf("resolveGroupings: %v", err)
	}
	if g != nil {
		t.Errorf("expected nil groupings when no merge flag is set, got %v", g)
	}
}

func TestResolveGroupingsOrgTakesPrecedenceOverISP(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orgs.json")
	if err := os.WriteFile(path, []byte(`[{"name": "Acme", "validators": ["A", "B"]}]`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f := threeNodeFbas(t)
	f.Nodes[0].ISP = "Comcast"
	g, err := resolveGroupings(&flags{mergeByOrg: true, orgsPath: path, mergeByISP: true}, f)
	if err != nil {
		t.Fatalf("resolveGroupings: %v", err)
	}
	if g.NumberOfGroups() != 1 {
		t.Fatalf("expected the organization grouping to win, got %d groups", g.NumberOfGroups())
	}
}
