package targets

import (
	"embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultName is the target set used when none is configured
const DefaultName = "ray"

//go:embed configs/*.yaml
var configFS embed.FS

// builtinSets maps set names to their definitions
var builtinSets = map[string]*Set{}

func init() {
	entries, err := configFS.ReadDir("configs")
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		data, err := configFS.ReadFile("configs/" + entry.Name())
		if err != nil {
			continue
		}

		set, err := parse(data)
		if err != nil {
			continue
		}

		builtinSets[set.Name] = set
	}
}

// Load returns a built-in target set by name
func Load(name string) (*Set, error) {
	if set, ok := builtinSets[name]; ok {
		return set, nil
	}
	return nil, fmt.Errorf("unknown target set: %s", name)
}

// Available returns the names of all built-in target sets, sorted
func Available() []string {
	names := make([]string, 0, len(builtinSets))
	for name := range builtinSets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadFromFile loads a custom target set from a YAML file
func LoadFromFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read target set: %w", err)
	}

	set, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("invalid target set: %w", err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}
