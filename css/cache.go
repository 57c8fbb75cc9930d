package css

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const cacheTimestampLayout = "2006-01-02 15:04:05.0000000"

// CacheEntry is the value type Component K's layers store and exchange.
type CacheEntry struct {
	RelativePath string
	LastModified time.Time
	Content      string
}

// EncodeCacheFile renders e and elapsed (the time spent regenerating it)
// into the bit-exact disk cache file format from §3/§6: a single-line
// comment header giving the byte length of relativePath (so the path
// itself may contain ':' without ambiguity), the path, an RFC-ish
// fixed-width timestamp, and the regeneration time in milliseconds, capped
// at 99999, followed by a newline and the raw content.
func EncodeCacheFile(relativePath string, lastModified time.Time, elapsed time.Duration, content string) string {
	elapsedMs := elapsed.Milliseconds()
	if elapsedMs > 99999 {
		elapsedMs = 99999
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	var b strings.Builder
	b.WriteString("/*")
	fmt.Fprintf(&b, "%010d", len(relativePath))
	b.WriteString(":")
	b.WriteString(relativePath)
	b.WriteString(":")
	b.WriteString(lastModified.UTC().Format(cacheTimestampLayout))
	b.WriteString(":")
	fmt.Fprintf(&b, "%05d", elapsedMs)
	b.WriteString("ms*/\n")
	b.WriteString(content)
	return b.String()
}

// DecodeCacheFile parses the format EncodeCacheFile produces, rejecting any
// deviation with ErrInvalidCacheFileFormat.
func DecodeCacheFile(data []byte) (relativePath string, lastModified time.Time, content string, err error) {
	s := string(data)
	fail := func(reason string) (string, time.Time, string, error) {
		return "", time.Time{}, "", fmt.Errorf("%w: %s", ErrInvalidCacheFileFormat, reason)
	}

	if !strings.HasPrefix(s, "/*") {
		return fail("missing header sentinel")
	}
	rest := s[2:]

	if len(rest) < 11 || rest[10] != ':' {
		return fail("malformed length field")
	}
	length, convErr := strconv.Atoi(rest[:10])
	if convErr != nil || length < 0 {
		return fail("non-numeric length field")
	}
	rest = rest[11:]

	if len(rest) < length+1 || rest[length] != ':' {
		return fail("truncated relative path")
	}
	relativePath = rest[:length]
	rest = rest[length+1:]

	const tsLen = len(cacheTimestampLayout)
	if len(rest) < tsLen+1 || rest[tsLen] != ':' {
		return fail("truncated timestamp")
	}
	lastModified, convErr = time.Parse(cacheTimestampLayout, rest[:tsLen])
	if convErr != nil {
		return fail("malformed timestamp")
	}
	rest = rest[tsLen+1:]

	const msSuffix = "ms*/\n"
	if len(rest) < 5+len(msSuffix) || rest[5:5+len(msSuffix)] != msSuffix {
		return fail("malformed elapsed field")
	}
	if _, convErr = strconv.Atoi(rest[:5]); convErr != nil {
		return fail("non-numeric elapsed field")
	}
	content = rest[5+len(msSuffix):]

	return relativePath, lastModified.UTC(), content, nil
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]CacheEntry
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]CacheEntry)}
}

func (m *memoryCache) get(key string) (CacheEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[key]
	return e, ok
}

func (m *memoryCache) put(key string, e CacheEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = e
}

func (m *memoryCache) remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// diskCache is Component K's disk tier: one `.cache` file per key under
// Dir, plus a best-effort SQLite companion index for O(1) administrative
// enumeration (never consulted on the read path — see updateIndex's
// doc comment).
type diskCache struct {
	dir        string
	indexPath  string
	behaviour  InvalidCacheBehaviour
	log        *zap.Logger
}

func newDiskCache(dir, indexPath string, behaviour InvalidCacheBehaviour, log *zap.Logger) *diskCache {
	return &diskCache{dir: dir, indexPath: indexPath, behaviour: behaviour, log: log.Named("css-disk-cache")}
}

// cacheKey derives a filesystem-safe file name from a relative path that
// may contain characters unsafe on some filesystems. The logical key used
// for freshness comparisons and recorded inside the cache file header
// itself remains the exact relative path; only the file name is slugged.
func cacheKey(relativePath string) string {
	return slug.Make(relativePath)
}

func (d *diskCache) pathFor(key string) string {
	return filepath.Join(d.dir, key+".cache")
}

func (d *diskCache) get(key string) (CacheEntry, bool) {
	raw, err := os.ReadFile(d.pathFor(key))
	if err != nil {
		return CacheEntry{}, false
	}
	relPath, lastModified, content, decodeErr := DecodeCacheFile(raw)
	if decodeErr != nil {
		d.log.Warn("invalid disk cache file", zap.String("key", key), zap.Error(decodeErr))
		if d.behaviour == InvalidCacheDelete {
			_ = os.Remove(d.pathFor(key))
			d.removeFromIndex(key)
		}
		return CacheEntry{}, false
	}
	return CacheEntry{RelativePath: relPath, LastModified: lastModified, Content: content}, true
}

// put writes e to its cache file with a write-to-temp-then-rename so no
// half-written file is ever visible under the final name, then
// best-effort updates the SQLite index.
func (d *diskCache) put(key string, e CacheEntry, elapsed time.Duration) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	data := []byte(EncodeCacheFile(e.RelativePath, e.LastModified, elapsed, e.Content))

	tmp, err := os.CreateTemp(d.dir, ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	if err := os.Rename(tmpName, d.pathFor(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}

	d.updateIndex(key, e, int64(len(data)))
	return nil
}

func (d *diskCache) remove(key string) error {
	err := os.Remove(d.pathFor(key))
	d.removeFromIndex(key)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrIOError, err)
	}
	return nil
}

func (d *diskCache) ensureIndexSchema(conn *sqlite.Conn) error {
	return sqlitex.Execute(conn, `CREATE TABLE IF NOT EXISTS cache_index (
		key TEXT PRIMARY KEY,
		relative_path TEXT NOT NULL,
		last_modified TEXT NOT NULL,
		size INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	)`, nil)
}

// updateIndex is write-side bookkeeping only: it is never consulted by get,
// so a failure here never turns into an incorrect cache hit or miss. Nothing
// rebuilds the index from the .cache files, so after a failed update it can
// lag behind them.
func (d *diskCache) updateIndex(key string, e CacheEntry, size int64) {
	if d.indexPath == "" {
		return
	}
	conn, err := sqlite.OpenConn(d.indexPath, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		d.log.Warn("cache index open failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if err := d.ensureIndexSchema(conn); err != nil {
		d.log.Warn("cache index schema failed", zap.Error(err))
		return
	}
	err = sqlitex.Execute(conn,
		`INSERT INTO cache_index(key, relative_path, last_modified, size, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			relative_path=excluded.relative_path,
			last_modified=excluded.last_modified,
			size=excluded.size,
			updated_at=excluded.updated_at`,
		&sqlitex.ExecOptions{Args: []any{
			key, e.RelativePath, e.LastModified.UTC().Format(cacheTimestampLayout), size,
			time.Now().UTC().Format(cacheTimestampLayout),
		}})
	if err != nil {
		d.log.Warn("cache index update failed", zap.Error(err))
	}
}

func (d *diskCache) removeFromIndex(key string) {
	if d.indexPath == "" {
		return
	}
	conn, err := sqlite.OpenConn(d.indexPath, sqlite.OpenReadWrite)
	if err != nil {
		return
	}
	defer conn.Close()
	_ = sqlitex.Execute(conn, `DELETE FROM cache_index WHERE key = ?`, &sqlitex.ExecOptions{Args: []any{key}})
}

// Cache is Component K: a two-tier memory-then-disk loader decorator with
// a freshness gate driven by a LastModifiedRetriever (Component J), wrapping
// the fully assembled stylesheet pipeline as next. See spec.md §4.K for the
// lookup state machine this implements.
type Cache struct {
	next      Loader
	memory    *memoryCache
	disk      *diskCache
	retriever *LastModifiedRetriever
	log       *zap.Logger
}

// NewCache builds Component K over next (the assembled pipeline).
// indexPath may be empty to disable the SQLite companion index.
func NewCache(next Loader, retriever *LastModifiedRetriever, diskDir, indexPath string, behaviour InvalidCacheBehaviour, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		next:      next,
		memory:    newMemoryCache(),
		disk:      newDiskCache(diskDir, indexPath, behaviour, log),
		retriever: retriever,
		log:       log.Named("css-cache"),
	}
}

func (c *Cache) Load(ctx context.Context, relativePath string) (FileContents, error) {
	if relativePath == "" {
		return FileContents{}, fmt.Errorf("%w: empty relative path", ErrBadInput)
	}

	freshness, err := c.retriever.Resolve(relativePath)
	if err != nil {
		return FileContents{}, err
	}

	if e, ok := c.memory.get(relativePath); ok {
		if !e.LastModified.Before(freshness) {
			return FileContents{RelativePath: e.RelativePath, LastModified: e.LastModified, Content: e.Content}, nil
		}
		c.memory.remove(relativePath)
	}

	key := cacheKey(relativePath)
	if e, ok := c.disk.get(key); ok {
		if !e.LastModified.Before(freshness) {
			c.memory.put(relativePath, e)
			return FileContents{RelativePath: e.RelativePath, LastModified: e.LastModified, Content: e.Content}, nil
		}
		if err := c.disk.remove(key); err != nil {
			c.log.Warn("evicting stale disk cache entry failed", zap.String("path", relativePath), zap.Error(err))
		}
	}

	regenID := uuid.NewString()
	start := time.Now()
	fc, err := c.next.Load(ctx, relativePath)
	if err != nil {
		return FileContents{}, err
	}
	fc.LastModified = freshness

	entry := CacheEntry{RelativePath: relativePath, LastModified: freshness, Content: fc.Content}
	c.memory.put(relativePath, entry)
	if err := c.disk.put(key, entry, time.Since(start)); err != nil {
		c.log.Warn("disk cache write failed", zap.String("path", relativePath), zap.String("regen", regenID), zap.Error(err))
	}

	return fc, nil
}

// Remove evicts relativePath from both cache tiers.
func (c *Cache) Remove(relativePath string) {
	c.memory.remove(relativePath)
	if err := c.disk.remove(cacheKey(relativePath)); err != nil {
		c.log.Warn("disk cache remove failed", zap.String("path", relativePath), zap.Error(err))
	}
}
