package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"

	"layerguard/internal/engine/parser"
	"layerguard/internal/shared/util"
)

// ExcludedDirs are never descended into: dependency caches, build output,
// version-control metadata, the generated-rules directory and our own state.
var ExcludedDirs = []string{
	"node_modules",
	"dist",
	"build",
	".git",
	".next",
	"coverage",
	".cursor",
	".layerguard",
}

// Walker lists analyzable source files under a root.
type Walker struct {
	excludedDirs map[string]bool
	globs        []glob.Glob
}

// New compiles exclude patterns. Patterns match root-relative slash paths;
// `*` stays within a segment and `**` crosses segments.
func New(excludes []string) (*Walker, error) {
	w := &Walker{excludedDirs: make(map[string]bool, len(ExcludedDirs))}
	for _, name := range ExcludedDirs {
		w.excludedDirs[name] = true
	}
	for _, pattern := range excludes {
		g, err := glob.Compile(util.NormalizePatternPath(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		w.globs = append(w.globs, g)
	}
	return w, nil
}

// SkipDir reports whether a directory with this base name is never walked.
func (w *Walker) SkipDir(name string) bool {
	return w.excludedDirs[name]
}

// Excluded reports whether a root-relative slash path matches an exclude glob.
func (w *Walker) Excluded(rel string) bool {
	for _, g := range w.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ListSourceFiles returns root-relative slash paths of every .ts, .tsx, .js
// and .jsx file under root, sorted.
func (w *Walker) ListSourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := util.RelSlash(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (w.SkipDir(d.Name()) || w.Excluded(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !parser.IsSourceFile(path) || w.Excluded(rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
