package search

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// skipDirs are never descended into
var skipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	".idea":        true,
	".vscode":      true,
	"node_modules": true,
	"vendor":       true,
	".cache":       true,
}

// Ignorer decides which paths are excluded from a scan. It combines the
// built-in directory list, the root .gitignore and custom glob patterns.
type Ignorer struct {
	rootDir   string
	gitIgnore gitignore.GitIgnore
	patterns  []string
}

// NewIgnorer creates an Ignorer rooted at rootDir
func NewIgnorer(rootDir string, patterns []string) *Ignorer {
	ig := &Ignorer{
		rootDir:  rootDir,
		patterns: patterns,
	}

	if f, err := os.Open(filepath.Join(rootDir, ".gitignore")); err == nil {
		ig.gitIgnore = gitignore.New(f, rootDir, nil)
		f.Close()
	}

	return ig
}

// ValidPatterns returns the first malformed glob, if any
func ValidPatterns(patterns []string) (string, bool) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return p, false
		}
	}
	return "", true
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely
func (ig *Ignorer) ShouldIgnoreDir(absolutePath string) bool {
	if skipDirs[filepath.Base(absolutePath)] {
		return true
	}
	return ig.match(absolutePath, true)
}

// ShouldIgnore returns true if a file should be excluded
func (ig *Ignorer) ShouldIgnore(absolutePath string) bool {
	return ig.match(absolutePath, false)
}

func (ig *Ignorer) match(absolutePath string, isDir bool) bool {
	rel, err := filepath.Rel(ig.rootDir, absolutePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = absolutePath
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return false
	}

	if ig.gitIgnore != nil {
		if m := ig.gitIgnore.Relative(rel, isDir); m != nil && m.Ignore() {
			return true
		}
	}

	for _, pattern := range ig.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		// A bare name such as "tests" also matches at any depth
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match(pattern, filepath.Base(rel)); ok {
				return true
			}
		}
	}

	return false
}

// Ignorers applies the Ignorer of whichever root contains a path
type Ignorers []*Ignorer

// NewIgnorers creates one Ignorer per root directory
func NewIgnorers(roots []string, patterns []string) Ignorers {
	s := make(Ignorers, 0, len(roots))
	for _, root := range roots {
		s = append(s, NewIgnorer(root, patterns))
	}
	return s
}

// ShouldIgnoreDir returns true if the owning root skips the directory
func (s Ignorers) ShouldIgnoreDir(absolutePath string) bool {
	if ig := s.owner(absolutePath); ig != nil {
		return ig.ShouldIgnoreDir(absolutePath)
	}
	return skipDirs[filepath.Base(absolutePath)]
}

// ShouldIgnore returns true if the owning root excludes the file
func (s Ignorers) ShouldIgnore(absolutePath string) bool {
	if ig := s.owner(absolutePath); ig != nil {
		return ig.ShouldIgnore(absolutePath)
	}
	return false
}

func (s Ignorers) owner(path string) *Ignorer {
	var best *Ignorer
	for _, ig := range s {
		prefix := ig.rootDir + string(filepath.Separator)
		if path != ig.rootDir && !strings.HasPrefix(path, prefix) {
			continue
		}
		if best == nil || len(ig.rootDir) > len(best.rootDir) {
			best = ig
		}
	}
	return best
}
