package bulk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLabelForStripsKnownSubstringsAndExtension(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/data/stellarbeat_nodes_2026-01-01.json", "2026-01-01"},
		{"/data/pubnet_nodes.json", "pubnet"},
		{"/data/testnet.json", "testnet"},
	}
	for _, tc := range cases {
		if got := labelFor(tc.path); got != tc.want {
			t.Errorf("labelFor(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestCompanionOrgsPathFindsExistingFile(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "pubnet_nodes.json")
	orgsPath := filepath.Join(dir, "pubnet_nodes_organizations.json")
	if err := os.WriteFile(nodesPath, []byte("[]"), 0o644); err != nil {
		t.Fatalf("WriteFile nodes: %v", err)
	}
	if err := os.WriteFile(orgsPath, []byte("[]"), 0o644); err != nil {
		t.Fatalf("WriteFile orgs: %v", err)
	}

	got := companionOrgsPath(nodesPath, "_organizations")
	if got != orgsPath {
		t.Errorf("companionOrgsPath = %q, want %q", got, orgsPath)
	}
}

func TestCompanionOrgsPathMissingReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	nodesPath := filepath.Join(dir, "pubnet_nodes.json")
	if got := companionOrgsPath(nodesPath, "_organizations"); got != "" {
		t.Errorf("expected empty string for a missing companion file, got %q", got)
	}
}

func TestListInputFilesSkipsCompanionOrgsAndNonJSON(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a_nodes.json", "a_nodes_organizations.json", "b_nodes.json", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}

	files, err := listInputFiles(dir, "_organizations")
	if err != nil {
		t.Fatalf("listInputFiles: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 input files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if strings.Contains(f, "_organizations") {
			t.Errorf("expected companion organizations file to be excluded, got %q", f)
		}
	}
}

func TestRunProducesSortedCSVOutput(t *testing.T) {
	dir := t.TempDir()
	symmetricThree := `[
		{"publicKey": "A", "quorumSet": {"threshold": 2, "validators": ["A", "B", "C"]}},
		{"publicKey": "B", "quorumSet": {"threshold": 2, "validators": ["A", "B", "C"]}},
		{"publicKey": "C", "quorumSet": {"threshold": 2, "validators": ["A", "B", "C"]}}
	]`
	if err := os.WriteFile(filepath.Join(dir, "zzz_nodes.json"), []byte(symmetricThree), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "aaa_nodes.json"), []byte(symmetricThree), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	outPath := filepath.Join(dir, "out.csv")
	out, err := os.Create(outPath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer out.Close()

	cfg := Config{Dir: dir, Workers: 2}
	if err := Run(context.Background(), cfg, out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 { // header + 2 rows
		t.Fatalf("expected 3 lines (header + 2 rows), got %d:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[1], "aaa,") {
		t.Errorf("expected rows sorted by label (aaa before zzz), got first row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "zzz,") {
		t.Errorf("expected rows sorted by label (aaa before zzz), got second row %q", lines[2])
	}
}

func TestRunSkipsUnparseableFilesWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken_nodes.json"), []byte("not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	outPath := filepath.Join(dir, "out.csv")
	out, err := os.Create(outPath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer out.Close()

	if err := Run(context.Background(), Config{Dir: dir, Workers: 1}, out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected only the header row for an all-broken directory, got %d lines:\n%s", len(lines), data)
	}
}
