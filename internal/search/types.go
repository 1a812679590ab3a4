package search

import "fmt"

// CallKind classifies how a debug call was written
type CallKind int

const (
	CallFunction CallKind = iota
	CallMethod
	CallStatic
)

func (k CallKind) String() string {
	switch k {
	case CallFunction:
		return "function"
	case CallMethod:
		return "method"
	case CallStatic:
		return "static"
	default:
		return "unknown"
	}
}

// File identifies a scanned source file
type File struct {
	// Filename is the absolute path of the file
	Filename string
}

// Call is a located call expression
type Call struct {
	Name   string
	Kind   CallKind
	Line   int
	Column int
	// Text is the first source line of the call, trimmed
	Text string
}

// Match is one occurrence of a debug call
type Match struct {
	File *File
	Call Call
}

// CallName returns the name the match is tallied under
func (m Match) CallName() string {
	return m.Call.Name
}

func (m Match) String() string {
	return fmt.Sprintf("%s:%d:%d %s", m.File.Filename, m.Call.Line, m.Call.Column, m.Call.Name)
}

// FileResults holds every match found in one file. Files without
// matches are never represented.
type FileResults struct {
	File    *File
	Matches []Match
}

// Count returns the total number of matches across all groups
func Count(groups []FileResults) int {
	n := 0
	for _, g := range groups {
		n += len(g.Matches)
	}
	return n
}
