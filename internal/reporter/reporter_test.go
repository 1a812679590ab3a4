package reporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm/rayscan/internal/search"
)

// group builds a FileResults for filename with one match per call name
func group(filename string, calls ...string) search.FileResults {
	f := &search.File{Filename: filename}
	g := search.FileResults{File: f}
	for i, name := range calls {
		g.Matches = append(g.Matches, search.Match{
			File: f,
			Call: search.Call{Name: name, Line: i + 3, Column: 1, Text: name + "($x);"},
		})
	}
	return g
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name          string
		groups        []search.FileResults
		wantFiles     []string
		wantFunctions map[string]int
		wantTotal     int
	}{
		{
			name:          "empty",
			groups:        nil,
			wantFiles:     []string{},
			wantFunctions: map[string]int{},
			wantTotal:     0,
		},
		{
			name:          "single file",
			groups:        []search.FileResults{group("/repo/app.php", "ray", "ray")},
			wantFiles:     []string{"/repo/app.php"},
			wantFunctions: map[string]int{"ray": 2},
			wantTotal:     2,
		},
		{
			name: "first seen order",
			groups: []search.FileResults{
				group("/repo/z.php", "ray"),
				group("/repo/a.php", "rd", "ray", "->ray"),
				group("/repo/m.php", "Ray::clearAll"),
			},
			wantFiles:     []string{"/repo/z.php", "/repo/a.php", "/repo/m.php"},
			wantFunctions: map[string]int{"ray": 2, "rd": 1, "->ray": 1, "Ray::clearAll": 1},
			wantTotal:     5,
		},
		{
			name: "same file in two groups",
			groups: []search.FileResults{
				group("/repo/a.php", "ray"),
				group("/repo/a.php", "ray"),
			},
			wantFiles:     []string{"/repo/a.php"},
			wantFunctions: map[string]int{"ray": 2},
			wantTotal:     2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := Summarize(tt.groups)

			assert.Equal(t, tt.wantFiles, tally.Files.Keys())
			for name, n := range tt.wantFunctions {
				assert.Equal(t, n, tally.Functions.Get(name), name)
			}
			assert.Equal(t, len(tt.wantFunctions), tally.Functions.Len())

			assert.Equal(t, tt.wantTotal, tally.Files.Total())
			assert.Equal(t, tt.wantTotal, tally.Functions.Total())
			assert.Equal(t, search.Count(tt.groups), tally.Files.Total())
			assert.LessOrEqual(t, tally.Files.Len(), len(tt.groups))
		})
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	groups := []search.FileResults{
		group("/repo/a.php", "ray", "rd"),
		group("/repo/b.php", "ray"),
	}

	first := Summarize(groups)
	second := Summarize(groups)

	assert.Equal(t, first, second)
	assert.Len(t, groups[0].Matches, 2, "input must not be modified")
}

func TestCounts_KeysIsCopy(t *testing.T) {
	tally := Summarize([]search.FileResults{group("/repo/a.php", "ray")})
	keys := tally.Files.Keys()
	keys[0] = "changed"
	assert.Equal(t, []string{"/repo/a.php"}, tally.Files.Keys())
}

func TestRelativePath(t *testing.T) {
	base := filepath.FromSlash("/home/dev/project")

	tests := []struct {
		name string
		path string
		base string
		want string
	}{
		{"inside base", filepath.FromSlash("/home/dev/project/src/Foo.php"), base, "./src/Foo.php"},
		{"base with trailing separator", filepath.FromSlash("/home/dev/project/a.php"), base + string(filepath.Separator), "./a.php"},
		{"outside base", filepath.FromSlash("/var/www/index.php"), base, filepath.FromSlash("/var/www/index.php")},
		{"sibling with shared prefix", filepath.FromSlash("/home/dev/project2/a.php"), base, filepath.FromSlash("/home/dev/project2/a.php")},
		{"empty base", filepath.FromSlash("/home/dev/project/a.php"), "", filepath.FromSlash("/home/dev/project/a.php")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativePath(tt.path, tt.base))
		})
	}
}
