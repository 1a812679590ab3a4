package reporter

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pthm/rayscan/internal/search"
)

// JSONReporter outputs results as JSON
type JSONReporter struct {
	w        io.Writer
	basePath string
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(w io.Writer, basePath string) *JSONReporter {
	return &JSONReporter{w: w, basePath: basePath}
}

// JSONOutput represents the JSON output format
type JSONOutput struct {
	Matches []JSONMatch `json:"matches"`
	Summary JSONSummary `json:"summary"`
}

// JSONMatch represents a match in JSON format
type JSONMatch struct {
	File   string `json:"file"`
	Call   string `json:"call"`
	Kind   string `json:"kind"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Text   string `json:"text,omitempty"`
}

// JSONSummary mirrors the terminal summary
type JSONSummary struct {
	TotalCalls int            `json:"totalCalls"`
	TotalFiles int            `json:"totalFiles"`
	Files      []JSONFile     `json:"files"`
	Functions  map[string]int `json:"functions"`
}

// JSONFile is one row of the per-file tally
type JSONFile struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// Report outputs matches and their summary as one JSON document
func (r *JSONReporter) Report(ctx context.Context, groups []search.FileResults) error {
	output := JSONOutput{
		Matches: make([]JSONMatch, 0, search.Count(groups)),
	}

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, m := range group.Matches {
			output.Matches = append(output.Matches, JSONMatch{
				File:   RelativePath(m.File.Filename, r.basePath),
				Call:   m.CallName(),
				Kind:   m.Call.Kind.String(),
				Line:   m.Call.Line,
				Column: m.Call.Column,
				Text:   m.Call.Text,
			})
		}
	}

	tally := Summarize(groups)
	output.Summary = JSONSummary{
		TotalCalls: tally.Functions.Total(),
		TotalFiles: tally.Files.Len(),
		Files:      make([]JSONFile, 0, tally.Files.Len()),
		Functions:  make(map[string]int, tally.Functions.Len()),
	}
	for _, file := range tally.Files.Keys() {
		output.Summary.Files = append(output.Summary.Files, JSONFile{
			File:  RelativePath(file, r.basePath),
			Count: tally.Files.Get(file),
		})
	}
	for _, name := range tally.Functions.Keys() {
		output.Summary.Functions[name] = tally.Functions.Get(name)
	}

	encoder := json.NewEncoder(r.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
