package runner

import (
	"hash/fnv"
	"sync"

	"github.com/Gabrial-8467/falcon/internal/value"
)

// CompileCache holds one compiled value.Code per source path, keyed by
// (path, mtime): the first compile of a path wins, and a newer mtime
// invalidates and recompiles, matching
// original_source/src/falcon/runner.py's cache policy. It is process-wide
// and in-memory only — no cross-process persistence.
type CompileCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	mtime int64
	code  *value.Code
}

func NewCompileCache() *CompileCache {
	return &CompileCache{entries: make(map[string]cacheEntry)}
}

// Get returns the cached Code for path if its mtime matches.
func (c *CompileCache) Get(path string, mtime int64) (*value.Code, bool) {
	if path == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[path]
	if !ok || e.mtime != mtime {
		return nil, false
	}
	return e.code, true
}

func (c *CompileCache) Put(path string, mtime int64, code *value.Code) {
	if path == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{mtime: mtime, code: code}
}

// contentFingerprint stands in for a real file mtime when a caller hands
// RunSource raw text instead of a path on disk (e.g. a REPL line): the
// same path with unchanged content reuses the cached Code, and any edit
// invalidates it, without requiring a filesystem stat. RunFile uses the
// actual file mtime instead, matching the cache policy exactly.
func contentFingerprint(source string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(source))
	return int64(h.Sum64())
}
