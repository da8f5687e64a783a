package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPatterns(t *testing.T) {
	root := t.TempDir()
	m, err := NewMatcher(root)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	tests := []struct {
		path    string
		isDir   bool
		ignored bool
	}{
		{filepath.Join(root, "node_modules", "pkg", "index.js"), false, true},
		{filepath.Join(root, ".git", "HEAD"), false, true},
		{filepath.Join(root, "dist", "bundle.js"), false, true},
		{filepath.Join(root, "src", "pages", "index.astro"), false, false},
		{filepath.Join(root, "public", "cdn-assets"), true, false},
	}

	for _, tt := range tests {
		var got bool
		if tt.isDir {
			got = m.IsIgnoredDir(tt.path)
		} else {
			got = m.IsIgnored(tt.path)
		}
		if got != tt.ignored {
			t.Errorf("IsIgnored(%q) = %v, want %v", tt.path, got, tt.ignored)
		}
	}
}

func TestAssetpipeignoreOverride(t *testing.T) {
	root := t.TempDir()
	ignoreFile := filepath.Join(root, ".assetpipeignore")
	if err := os.WriteFile(ignoreFile, []byte("# comment\n\nlegacy/**\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewMatcher(root)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	if !m.IsIgnored(filepath.Join(root, "legacy", "old.html")) {
		t.Error("expected legacy/** pattern from .assetpipeignore to apply")
	}
	if m.IsIgnored(filepath.Join(root, "current", "new.html")) {
		t.Error("unexpected ignore of unrelated path")
	}
}

func TestReadIgnoreFileAllowlist(t *testing.T) {
	if _, err := readIgnoreFile("/tmp/evil.txt"); err == nil {
		t.Error("expected rejection of non-allowlisted ignore file")
	}
}
