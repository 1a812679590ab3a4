package reporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm/rayscan/internal/search"
)

// Reporter defines the interface for outputting scan results
type Reporter interface {
	// Report outputs the scan results
	Report(ctx context.Context, groups []search.FileResults) error
}

// Counts is a tally keyed by string that remembers first-seen order
type Counts struct {
	keys   []string
	counts map[string]int
}

func (c *Counts) add(key string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

// Keys returns the tallied keys in first-seen order
func (c Counts) Keys() []string {
	keys := make([]string, len(c.keys))
	copy(keys, c.keys)
	return keys
}

// Get returns the count for key, or 0 if it was never seen
func (c Counts) Get(key string) int {
	return c.counts[key]
}

// Len returns the number of distinct keys
func (c Counts) Len() int {
	return len(c.keys)
}

// Total returns the sum of all counts
func (c Counts) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Tally holds the per-file and per-call counts for one scan
type Tally struct {
	Files     Counts
	Functions Counts
}

// Summarize counts every match in groups once, by file and by call name.
// It does not modify groups and builds a fresh Tally on every call.
func Summarize(groups []search.FileResults) Tally {
	var t Tally
	for _, group := range groups {
		for _, match := range group.Matches {
			t.Files.add(match.File.Filename)
			t.Functions.add(match.CallName())
		}
	}
	return t
}

// RelativePath rewrites path to start with "./" when it lies under basePath.
// Other paths, and every path when basePath is empty, are returned unchanged.
func RelativePath(path, basePath string) string {
	if basePath == "" {
		return path
	}
	prefix := strings.TrimSuffix(basePath, string(filepath.Separator)) + string(filepath.Separator)
	if strings.HasPrefix(path, prefix) {
		return "./" + filepath.ToSlash(path[len(prefix):])
	}
	return path
}

// WorkingDir returns the current directory for path relativization,
// or "" when it cannot be determined
func WorkingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}
