package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/afero"
)

func writeTree(t *testing.T, fs afero.Fs, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fs, path, []byte(name), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScanner_Scan_RecursiveWithExtensionFilter(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, "/src", "photo1.jpg", "photo2.JPEG", "video1.mp4", "document.pdf", "subdir/photo3.heic")

	s := New(fs, []string{"jpg", ".JPEG", "heic", "mp4"}, true)
	entries, err := s.Scan("/src")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(entries) != 4 {
		t.Fatalf("expected 4 files, got %d: %+v", len(entries), entries)
	}

	var rels []string
	for _, e := range entries {
		rels = append(rels, e.RelativePath)
	}
	sort.Strings(rels)
	want := []string{"photo1.jpg", "photo2.JPEG", filepath.Join("subdir", "photo3.heic"), "video1.mp4"}
	for i := range want {
		if rels[i] != want[i] {
			t.Fatalf("unexpected relative paths: %v", rels)
		}
	}
}

func TestScanner_Scan_NonRecursiveSkipsSubdirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, "/src", "a.txt", "nested/b.txt")

	entries, err := New(fs, nil, false).Scan("/src")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" {
		t.Fatalf("expected only a.txt, got %+v", entries)
	}
	if entries[0].Path != filepath.Join("/src", "a.txt") {
		t.Fatalf("unexpected path: %s", entries[0].Path)
	}
}

func TestScanner_Scan_EmptyFilterAcceptsAll(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTree(t, fs, "/src", "Makefile", "a.go", ".hidden")

	entries, err := New(fs, []string{}, false).Scan("/src")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 files, got %d", len(entries))
	}
}

func TestScanner_Scan_MissingRoot(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), nil, true).Scan("/nope")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestScanner_Scan_OnDisk(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "x.TXT"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := New(nil, []string{"txt"}, true).Scan(tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(entries) != 1 || entries[0].RelativePath != "x.TXT" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
