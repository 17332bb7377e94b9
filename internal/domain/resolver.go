package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"scopecss.dev/pkg/scopecss/internal/adapter"
	m "scopecss.dev/pkg/scopecss/internal/model"
)

const (
	stylesheetExt    = ".css"
	recursivePattern = "..."
)

// ErrInvalidSuffix is returned when the target suffix would overwrite the source.
var ErrInvalidSuffix = errors.New("target suffix must not be empty")

// ResolveArgs describes which stylesheets to pick up.
type ResolveArgs struct {
	Paths   []m.Path
	Exclude []string
	Suffix  string
}

// Resolver expands command-line path patterns into stylesheet/target pairs.
type Resolver interface {
	Resolve(ctx context.Context, args ResolveArgs) ([]m.Stylesheet, error)
}

type resolver struct {
	fsAdapter adapter.SourceFSAdapter
}

// NewResolver constructs a Resolver backed by the provided filesystem adapter.
func NewResolver(fsAdapter adapter.SourceFSAdapter) Resolver {
	return &resolver{fsAdapter: fsAdapter}
}

// Resolve accepts directories (`dir`), recursive patterns (`dir/...`) and
// explicit files. Only `.css` files are returned, derived outputs are
// skipped, and the result is sorted by source path. An explicit path that
// does not exist is still returned so that reading it fails for that
// stylesheet only; a missing recursive root is an error.
func (r *resolver) Resolve(ctx context.Context, args ResolveArgs) ([]m.Stylesheet, error) {
	if args.Suffix == "" {
		return nil, ErrInvalidSuffix
	}

	excludes, err := compileExcludes(args.Exclude)
	if err != nil {
		return nil, err
	}

	paths := args.Paths
	if len(paths) == 0 {
		paths = []m.Path{"."}
	}

	seen := make(map[m.Path]struct{})

	var sheets []m.Stylesheet

	// named paths were given explicitly but could not be inspected; they are
	// kept so the failure is reported for that path alone.
	add := func(path m.Path, named bool) {
		if _, ok := seen[path]; ok {
			return
		}

		seen[path] = struct{}{}

		if !named && !isSourceStylesheet(path, args.Suffix) {
			return
		}

		if matchesAny(excludes, path) {
			slog.Debug("excluded stylesheet", "path", path)
			return
		}

		sheets = append(sheets, m.Stylesheet{Source: path, Target: TargetPath(path, args.Suffix)})
	}

	for _, pattern := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		root, recursive := splitPattern(pattern)

		info, err := r.fsAdapter.FileInfo(root)
		if err != nil {
			if recursive {
				return nil, fmt.Errorf("resolve %s: %w", pattern, err)
			}

			slog.Warn("Cannot inspect stylesheet", "path", root, "error", err)
			add(root, true)

			continue
		}

		if !info.IsDir() {
			add(root, false)
			continue
		}

		err = r.fsAdapter.Walk(root, recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if !info.IsDir() {
				add(m.Path(path), false)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}

	sort.Slice(sheets, func(i, j int) bool {
		return sheets[i].Source < sheets[j].Source
	})

	slog.Debug("resolved stylesheets", "patterns", len(paths), "count", len(sheets))

	return sheets, nil
}

// TargetPath derives the scoped output path: style.css -> style<suffix>.css.
func TargetPath(source m.Path, suffix string) m.Path {
	path := string(source)
	ext := filepath.Ext(path)

	return m.Path(strings.TrimSuffix(path, ext) + suffix + ext)
}

func splitPattern(pattern m.Path) (m.Path, bool) {
	path := string(pattern)
	if path == recursivePattern {
		return ".", true
	}

	root, ok := strings.CutSuffix(path, "/"+recursivePattern)
	if !ok {
		return pattern, false
	}

	if root == "" {
		root = "/"
	}

	return m.Path(root), true
}

// isSourceStylesheet reports whether path is a stylesheet that is not itself
// a scoped output.
func isSourceStylesheet(path m.Path, suffix string) bool {
	ext := filepath.Ext(string(path))
	if !strings.EqualFold(ext, stylesheetExt) {
		return false
	}

	return !strings.HasSuffix(strings.TrimSuffix(string(path), ext), suffix)
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	excludes := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		excludes = append(excludes, re)
	}

	return excludes, nil
}

func matchesAny(excludes []*regexp.Regexp, path m.Path) bool {
	slashed := filepath.ToSlash(string(path))
	for _, re := range excludes {
		if re.MatchString(slashed) {
			return true
		}
	}

	return false
}
