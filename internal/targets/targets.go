package targets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrNoName       = errors.New("target set has no name")
	ErrNoExtensions = errors.New("target set has no file extensions")
	ErrNoCalls      = errors.New("target set matches no calls")
)

// Set describes which calls count as leftover debug statements
// and which source files may contain them.
type Set struct {
	// Name is the identifier for this set (e.g., "ray")
	Name string `yaml:"name"`

	// Extensions are the file extensions to scan, without the leading dot
	Extensions []string `yaml:"extensions"`

	// Functions are plain function calls, e.g. ray(...)
	Functions []string `yaml:"functions"`

	// Methods are instance method calls, e.g. $this->ray(...)
	Methods []string `yaml:"methods"`

	// StaticClasses match any static call on the class, e.g. Ray::clearAll()
	StaticClasses []string `yaml:"static_classes"`
}

// Validate checks that the set can match anything at all
func (s *Set) Validate() error {
	if s.Name == "" {
		return ErrNoName
	}
	if len(s.Extensions) == 0 {
		return fmt.Errorf("%s: %w", s.Name, ErrNoExtensions)
	}
	if len(s.Functions)+len(s.Methods)+len(s.StaticClasses) == 0 {
		return fmt.Errorf("%s: %w", s.Name, ErrNoCalls)
	}
	return nil
}

// MatchesFunction reports whether a plain function call name is a target.
// PHP function names are case-insensitive and may be namespace-qualified.
func (s *Set) MatchesFunction(name string) bool {
	name = strings.TrimPrefix(name, `\`)
	if i := strings.LastIndex(name, `\`); i >= 0 {
		name = name[i+1:]
	}
	return containsFold(s.Functions, name)
}

// MatchesMethod reports whether an instance method name is a target
func (s *Set) MatchesMethod(name string) bool {
	return containsFold(s.Methods, name)
}

// MatchesStatic reports whether a static call scope is a target class
func (s *Set) MatchesStatic(scope string) bool {
	scope = strings.TrimPrefix(scope, `\`)
	if i := strings.LastIndex(scope, `\`); i >= 0 {
		scope = scope[i+1:]
	}
	return containsFold(s.StaticClasses, scope)
}

// HandlesFile reports whether the file extension is one this set scans
func (s *Set) HandlesFile(path string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return false
	}
	return containsFold(s.Extensions, ext)
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
