package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestDiscoverFindsNestedFiles(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.html"), "a")
	mustWrite(t, filepath.Join(root, "sub", "b.html"), "b")
	mustWrite(t, filepath.Join(root, "sub", "c.txt"), "c")

	got, err := Discover(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	want := []string{
		filepath.Join(root, "a.html"),
		filepath.Join(root, "sub", "b.html"),
		filepath.Join(root, "sub", "c.txt"),
	}
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDiscoverFiltersByPattern(t *testing.T) {
	root := t.TempDir()
	mustWrite(t, filepath.Join(root, "a.html"), "a")
	mustWrite(t, filepath.Join(root, "b.txt"), "b")

	got, err := Discover(root, Options{Pattern: "*.html"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != filepath.Join(root, "a.html") {
		t.Fatalf("got %v", got)
	}
}

func TestDiscoverSkipsSymlinksByDefault(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	mustWrite(t, filepath.Join(other, "x.html"), "x")
	if err := os.Symlink(other, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Discover(root, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no files without FollowSymlinks, got %v", got)
	}
}

func TestDiscoverFollowsSymlinksWhenEnabled(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()
	mustWrite(t, filepath.Join(other, "x.html"), "x")
	if err := os.Symlink(other, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := Discover(root, Options{FollowSymlinks: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one file through the symlink, got %v", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
