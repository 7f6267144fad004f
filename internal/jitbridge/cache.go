package jitbridge

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// DiskCache persists which function indices were promoted to the
// compiled tier on a previous run, keyed by the sha256 of the bytecode
// file so entries never leak across programs. This is a pure
// enrichment on top of §4.5's contract — the bridge is fully correct
// without it, and a missing or corrupt cache file is silently treated
// as empty rather than an error, matching the teacher's disk-cache
// pattern of "cache miss is not a failure."
type DiskCache struct {
	dir   string
	key   string
	entry cacheEntry
}

type cacheEntry struct {
	Promoted []int `msgpack:"promoted"`
}

// OpenDiskCache opens (creating if needed) a warm cache rooted at dir
// for the bytecode file whose raw bytes are programBytes.
func OpenDiskCache(dir string, programBytes []byte) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(programBytes)
	c := &DiskCache{dir: dir, key: hex.EncodeToString(sum[:])}
	c.load()
	return c, nil
}

// DefaultCacheDir resolves the cache root the same way the teacher's
// disk cache does: XDG_CACHE_HOME if set, else os.UserCacheDir(), both
// under a "shellvm/jit" subdirectory.
func DefaultCacheDir() (string, error) {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return filepath.Join(v, "shellvm", "jit"), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "shellvm", "jit"), nil
}

func (c *DiskCache) path() string {
	return filepath.Join(c.dir, c.key+".msgpack")
}

func (c *DiskCache) load() {
	data, err := os.ReadFile(c.path())
	if err != nil {
		return
	}
	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err == nil {
		c.entry = entry
	}
}

func (c *DiskCache) flush() {
	data, err := msgpack.Marshal(c.entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(c.path(), data, 0o644)
}

// MarkPromoted records that fnIndex was compiled this run.
func (c *DiskCache) MarkPromoted(fnIndex int) {
	for _, i := range c.entry.Promoted {
		if i == fnIndex {
			return
		}
	}
	c.entry.Promoted = append(c.entry.Promoted, fnIndex)
	c.flush()
}

// WarmFunctions returns the function indices a previous run promoted,
// letting a caller pre-seed the bridge before the hot loop runs again.
func (c *DiskCache) WarmFunctions() []int {
	return append([]int(nil), c.entry.Promoted...)
}
