package adapter

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	m "scopecss.dev/pkg/scopecss/internal/model"
)

func TestLocalSourceFSAdapter_Walk(t *testing.T) {
	t.Run("non recursive skips nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "style.css"), ".a {}\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "child.css"), ".b {}\n")

		visited := walkPaths(t, adapter, root, false)

		for _, forbidden := range []string{nestedDir, filepath.Join(nestedDir, "child.css")} {
			if containsPath(visited, forbidden) {
				t.Fatalf("Walk() unexpectedly visited %s when recursive is false", forbidden)
			}
		}

		if !containsPath(visited, filepath.Join(root, "style.css")) {
			t.Fatalf("Walk() did not visit top-level file")
		}
	})

	t.Run("recursive visits nested files", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "style.css"), ".a {}\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		child := filepath.Join(nestedDir, "child.css")
		writeTestFile(t, child, ".b {}\n")

		visited := walkPaths(t, adapter, root, true)

		if !containsPath(visited, child) {
			t.Fatalf("Walk() did not visit nested file when recursive")
		}
	})

	t.Run("recursive skips dependency directories", func(t *testing.T) {
		adapter := NewLocalSourceFSAdapter()

		root := t.TempDir()
		modules := filepath.Join(root, "node_modules", "lib")
		mustMkdir(t, modules)
		vendored := filepath.Join(modules, "lib.css")
		writeTestFile(t, vendored, ".lib {}\n")

		visited := walkPaths(t, adapter, root, true)

		if containsPath(visited, vendored) {
			t.Fatalf("Walk() visited %s inside node_modules", vendored)
		}
	})
}

func TestLocalSourceFSAdapter_ReadWriteFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "style.scoped.css")
	content := ".scope .a {\n  color: red;\n}\n"

	if err := adapter.WriteFile(m.Path(path), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := adapter.ReadFile(m.Path(path))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(got) != content {
		t.Fatalf("ReadFile() = %q, want %q", string(got), content)
	}
}

func TestLocalSourceFSAdapter_ReadFileMissing(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	path := filepath.Join(t.TempDir(), "missing.css")

	_, err := adapter.ReadFile(m.Path(path))
	if err == nil {
		t.Fatalf("ReadFile() expected error for missing file")
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("ReadFile() error = %v, want not-exist", err)
	}
}

func TestLocalSourceFSAdapter_HashFile(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()
	path := filepath.Join(root, "style.css")
	content := []byte("html {\n  margin: 0;\n}\n")
	writeTestBytes(t, path, content)

	expected := fmt.Sprintf("%x", sha256.Sum256(content))

	hash, err := adapter.HashFile(m.Path(path))
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}

	if hash != expected {
		t.Fatalf("HashFile() = %s, want %s", hash, expected)
	}
}

func TestLocalSourceFSAdapter_FileInfo(t *testing.T) {
	adapter := NewLocalSourceFSAdapter()

	root := t.TempDir()

	info, err := adapter.FileInfo(m.Path(root))
	if err != nil {
		t.Fatalf("FileInfo() error = %v", err)
	}

	if !info.IsDir() {
		t.Fatalf("FileInfo() expected directory for %s", root)
	}

	if _, err := adapter.FileInfo(m.Path(filepath.Join(root, "missing.css"))); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("FileInfo() error = %v, want not-exist", err)
	}
}

func walkPaths(t *testing.T, adapter *LocalSourceFSAdapter, root string, recursive bool) []string {
	t.Helper()

	var visited []string

	err := adapter.Walk(m.Path(root), recursive, func(path string, _ os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		visited = append(visited, path)

		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}

	return visited
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	writeTestBytes(t, path, []byte(content))
}

func writeTestBytes(t *testing.T, path string, content []byte) {
	t.Helper()

	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func containsPath(paths []string, target string) bool {
	for _, path := range paths {
		if path == target {
			return true
		}
	}

	return false
}
