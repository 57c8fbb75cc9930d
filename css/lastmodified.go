package css

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// LastModifiedRetriever implements Component J: given a logical relative
// path, it resolves that path's containing folder under root and returns
// the maximum modification timestamp across the folder's entries, filtered
// by extension. It does not require the logical path itself to exist — only
// its folder — so virtual aggregate paths (a request path that names no
// real file, only a directory that collects several real stylesheets) are
// supported.
type LastModifiedRetriever struct {
	Root       string
	Extensions []string
	log        *zap.Logger
}

func NewLastModifiedRetriever(root string, log *zap.Logger, extensions ...string) *LastModifiedRetriever {
	if log == nil {
		log = zap.NewNop()
	}
	return &LastModifiedRetriever{Root: root, Extensions: extensions, log: log.Named("css-last-modified")}
}

// Resolve returns the maximum modification time among the directory
// entries of relativePath's folder that match one of r.Extensions (all
// entries, when none are configured). The matching names are walked in
// natural sort order; the order does not affect the returned maximum.
func (r *LastModifiedRetriever) Resolve(relativePath string) (time.Time, error) {
	dir := filepath.Join(r.Root, filepath.FromSlash(filepath.Dir(relativePath)))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %v", ErrIOError, dir, err)
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !r.matchesExtension(e.Name()) {
			continue
		}
		names = append(names, e.Name())
		byName[e.Name()] = e
	}
	sort.Sort(natural.StringSlice(names))

	var max time.Time
	for _, name := range names {
		info, err := byName[name].Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(max) {
			max = info.ModTime()
		}
	}
	return max, nil
}

func (r *LastModifiedRetriever) matchesExtension(name string) bool {
	if len(r.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range r.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}
