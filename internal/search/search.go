package search

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
	"golang.org/x/sync/errgroup"

	"github.com/pthm/rayscan/internal/targets"
)

// DefaultMaxFileSize bounds the files the searcher will parse
const DefaultMaxFileSize int64 = 1024 * 1024

// Options configures a Searcher
type Options struct {
	Targets     *targets.Set
	Ignore      []string
	MaxFileSize int64
	Workers     int
	Logger      *slog.Logger
}

// Searcher finds debug calls in source trees
type Searcher struct {
	opts Options
}

// New creates a Searcher, filling unset options with defaults
func New(opts Options) *Searcher {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Searcher{opts: opts}
}

// IgnorePatterns returns the custom ignore globs the searcher applies
func (s *Searcher) IgnorePatterns() []string {
	return s.opts.Ignore
}

// Discover returns the absolute paths of every file under roots that the
// target set handles and no ignore rule excludes. A root naming a file is
// returned as-is. Paths are returned in walk order (lexical per root).
func (s *Searcher) Discover(ctx context.Context, roots []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}

		info, err := os.Stat(absRoot)
		if err != nil {
			return nil, fmt.Errorf("cannot scan %s: %w", root, err)
		}

		if !info.IsDir() {
			if !seen[absRoot] {
				seen[absRoot] = true
				files = append(files, absRoot)
			}
			continue
		}

		ignorer := NewIgnorer(absRoot, s.opts.Ignore)
		err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.opts.Logger.Warn("skipping unreadable path", "path", path, "error", err)
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}

			if d.IsDir() {
				if path != absRoot && ignorer.ShouldIgnoreDir(path) {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || !s.opts.Targets.HandlesFile(path) || ignorer.ShouldIgnore(path) {
				return nil
			}

			fi, err := d.Info()
			if err != nil {
				return nil
			}
			if fi.Size() > s.opts.MaxFileSize {
				s.opts.Logger.Debug("skipping large file", "path", path, "size", fi.Size())
				return nil
			}

			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// Search scans each path and returns one FileResults per file that has at
// least one match, in the order of paths. onFile, if set, is called after
// each file is processed and must be safe for concurrent use. Files that
// cannot be read or parsed are logged and skipped.
func (s *Searcher) Search(ctx context.Context, paths []string, onFile func(path string)) ([]FileResults, error) {
	found := make([]*FileResults, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := s.SearchFile(gctx, path)
			if onFile != nil {
				onFile(path)
			}
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.opts.Logger.Warn("failed to search file", "path", path, "error", err)
				return nil
			}
			if len(res.Matches) > 0 {
				found[i] = &res
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	groups := make([]FileResults, 0, len(found))
	for _, res := range found {
		if res != nil {
			groups = append(groups, *res)
		}
	}
	return groups, nil
}

// SearchFile parses a single file and collects the calls matching the target set
func (s *Searcher) SearchFile(ctx context.Context, path string) (FileResults, error) {
	file := &File{Filename: path}
	result := FileResults{File: file}

	src, err := os.ReadFile(path)
	if err != nil {
		return result, fmt.Errorf("read %s: %w", path, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(php.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return result, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	s.walk(tree.RootNode(), src, file, &result.Matches)
	return result, nil
}

// walk visits nodes in source order so matches come out top to bottom
func (s *Searcher) walk(n *sitter.Node, src []byte, file *File, out *[]Match) {
	if n == nil {
		return
	}

	if call, ok := s.matchCall(n, src); ok {
		*out = append(*out, Match{File: file, Call: call})
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		s.walk(n.NamedChild(i), src, file, out)
	}
}

func (s *Searcher) matchCall(n *sitter.Node, src []byte) (Call, bool) {
	set := s.opts.Targets

	switch n.Type() {
	case "function_call_expression":
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return Call{}, false
		}
		name := fn.Content(src)
		if !set.MatchesFunction(name) {
			return Call{}, false
		}
		name = strings.TrimPrefix(name, `\`)
		if i := strings.LastIndex(name, `\`); i >= 0 {
			name = name[i+1:]
		}
		return newCall(n, src, name, CallFunction), true

	case "member_call_expression", "nullsafe_member_call_expression":
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil {
			return Call{}, false
		}
		name := nameNode.Content(src)
		if !set.MatchesMethod(name) {
			return Call{}, false
		}
		return newCall(n, src, "->"+name, CallMethod), true

	case "scoped_call_expression":
		scope := n.ChildByFieldName("scope")
		nameNode := n.ChildByFieldName("name")
		if scope == nil || nameNode == nil {
			return Call{}, false
		}
		if !set.MatchesStatic(scope.Content(src)) {
			return Call{}, false
		}
		class := strings.TrimPrefix(scope.Content(src), `\`)
		if i := strings.LastIndex(class, `\`); i >= 0 {
			class = class[i+1:]
		}
		return newCall(n, src, class+"::"+nameNode.Content(src), CallStatic), true
	}

	return Call{}, false
}

func newCall(n *sitter.Node, src []byte, name string, kind CallKind) Call {
	text := n.Content(src)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}

	start := n.StartPoint()
	return Call{
		Name:   name,
		Kind:   kind,
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
		Text:   strings.TrimSpace(text),
	}
}
