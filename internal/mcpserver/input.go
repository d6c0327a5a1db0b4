package mcpserver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
)

// specInput represents the two ways an OAS spec can be provided to a tool.
// Exactly one of File or Content must be set.
type specInput struct {
	File    string `json:"file,omitempty"    jsonschema:"Path to an OAS file on disk"`
	Content string `json:"content,omitempty" jsonschema:"Inline OAS document content (JSON or YAML)"`
}

// validatorFlags are the validator options a tool call may override.
// A nil field takes the server default.
type validatorFlags struct {
	HeadersLowercase          *bool
	AdditionalQueryProperties *bool
}

func (f validatorFlags) resolved() (lowercase, additionalQuery bool) {
	lowercase, additionalQuery = cfg.HeadersLowercase, cfg.AdditionalQueryProperties
	if f.HeadersLowercase != nil {
		lowercase = *f.HeadersLowercase
	}
	if f.AdditionalQueryProperties != nil {
		additionalQuery = *f.AdditionalQueryProperties
	}
	return lowercase, additionalQuery
}

// compiledSpec is a parsed document and the validator built from it.
type compiledSpec struct {
	parsed    *parser.ParseResult
	validator *httpvalidator.Validator
}

// cacheEntry holds a cached compiled spec with LRU ordering and TTL expiry.
type cacheEntry struct {
	spec      *compiledSpec
	insertAt  time.Time
	expiresAt time.Time
}

// specCacheStore provides a session-scoped cache for compiled specs.
// File inputs are keyed by (absolutePath, modTime). Content inputs are keyed
// by a SHA-256 hash. Both keys include the validator flags.
type specCacheStore struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var specCache = &specCacheStore{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached spec or nil. Expired entries are lazily removed.
func (c *specCacheStore) get(key string) *compiledSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		// Touch entry for LRU.
		e.insertAt = time.Now()
		return e.spec
	}
	return nil
}

// putWithTTL stores a spec with a specific TTL, evicting the oldest entry if at capacity.
func (c *specCacheStore) putWithTTL(key string, spec *compiledSpec, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{spec: spec, insertAt: now, expiresAt: now.Add(ttl)}

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		if oldestKey != "" {
			delete(c.entries, oldestKey)
		}
	}

	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *specCacheStore) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a background goroutine that periodically removes expired entries.
// Only the first call spawns a sweeper. It stops when ctx is cancelled.
func (c *specCacheStore) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *specCacheStore) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *specCacheStore) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// makeCacheKey creates a cache key for the given spec input and flags.
// An empty key disables caching for the call.
func makeCacheKey(s specInput, lowercase, additionalQuery bool) string {
	var base string
	switch {
	case s.File != "":
		absPath, err := filepath.Abs(s.File)
		if err != nil {
			return ""
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return "" // Can't stat, don't cache.
		}
		base = fmt.Sprintf("file:%s:%d", absPath, info.ModTime().UnixNano())
	case s.Content != "":
		h := sha256.Sum256([]byte(s.Content))
		base = fmt.Sprintf("content:%s", hex.EncodeToString(h[:]))
	default:
		return ""
	}
	return fmt.Sprintf("%s|lowercase=%t|query=%t", base, lowercase, additionalQuery)
}

// resolve parses the spec and builds its validator, using the cache when enabled.
func (s specInput) resolve(flags validatorFlags) (*compiledSpec, error) {
	if (s.File == "") == (s.Content == "") {
		return nil, fmt.Errorf("exactly one of file or content must be provided")
	}
	if s.Content != "" && int64(len(s.Content)) > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file input instead, or set REQVALIDATOR_MAX_INLINE_SIZE to increase",
			len(s.Content), cfg.MaxInlineSize)
	}

	lowercase, additionalQuery := flags.resolved()

	var key string
	ttl := cfg.CacheContentTTL
	if cfg.CacheEnabled {
		key = makeCacheKey(s, lowercase, additionalQuery)
		if s.File != "" {
			ttl = cfg.CacheFileTTL
		}
	}
	if key != "" {
		if cached := specCache.get(key); cached != nil {
			return cached, nil
		}
	}

	var source parser.Option
	if s.File != "" {
		source = parser.WithFilePath(s.File)
	} else {
		source = parser.WithReader(strings.NewReader(s.Content))
	}
	parsed, err := parser.ParseWithOptions(source)
	if err != nil {
		return nil, err
	}
	v, err := httpvalidator.NewFromParsed(parsed,
		httpvalidator.WithHeadersLowercase(lowercase),
		httpvalidator.WithAdditionalQueryProperties(additionalQuery),
	)
	if err != nil {
		return nil, err
	}
	spec := &compiledSpec{parsed: parsed, validator: v}

	if key != "" {
		specCache.putWithTTL(key, spec, ttl)
	}
	return spec, nil
}
