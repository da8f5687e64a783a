package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// hashCacheSize bounds the number of cached file hashes. The applier
// hashes the same files repeatedly during conflict checks.
const hashCacheSize = 4096

// Hasher computes SHA-256 content hashes with an LRU cache keyed by
// path, size and mtime, so unchanged files are only read once per run.
type Hasher struct {
	cache *lru.Cache[string, string]
}

// NewHasher creates a Hasher.
func NewHasher() *Hasher {
	cache, _ := lru.New[string, string](hashCacheSize)
	return &Hasher{cache: cache}
}

// Sum returns the hex SHA-256 of the file's content.
func (h *Hasher) Sum(path string) (string, error) {
	st, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s|%d|%d", path, st.Size(), st.ModTime().UnixNano())
	if sum, ok := h.cache.Get(key); ok {
		return sum, nil
	}

	f, err := os.Open(path) // #nosec G304 -- paths come from directory walks
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	digest := sha256.New()
	if _, err := io.Copy(digest, f); err != nil {
		return "", err
	}
	sum := hex.EncodeToString(digest.Sum(nil))
	h.cache.Add(key, sum)
	return sum, nil
}

// Equal reports whether two files have identical content.
func (h *Hasher) Equal(a, b string) (bool, error) {
	sumA, err := h.Sum(a)
	if err != nil {
		return false, err
	}
	sumB, err := h.Sum(b)
	if err != nil {
		return false, err
	}
	return sumA == sumB, nil
}
