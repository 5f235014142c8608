// Package vcs reads repository state for incremental checks and run history.
package vcs

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"

	"layerguard/internal/core/errors"
	"layerguard/internal/shared/util"
)

// GitInfo answers questions about the git repository containing a project.
type GitInfo struct{}

func New() *GitInfo {
	return &GitInfo{}
}

func (g *GitInfo) open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "open git repository"), errors.CtxPath, path)
	}
	return repo, nil
}

// IsGitRepo reports whether path is inside a git working tree.
func (g *GitInfo) IsGitRepo(path string) bool {
	_, err := g.open(path)
	return err == nil
}

// CommitHash returns the full hash of HEAD.
func (g *GitInfo) CommitHash(path string) (string, error) {
	repo, err := g.open(path)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "resolve HEAD"), errors.CtxPath, path)
	}
	return head.Hash().String(), nil
}

// ChangedFiles lists files that differ from HEAD in the index or the working
// tree, including untracked files. Paths are relative to root, slash
// separated and sorted. Files outside root are omitted.
func (g *GitInfo) ChangedFiles(root string) ([]string, error) {
	repo, err := g.open(root)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotSupported, "repository has no worktree"), errors.CtxPath, root)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "read worktree status"), errors.CtxPath, root)
	}

	absRoot, err := canonicalDir(root)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "resolve root"), errors.CtxPath, root)
	}
	base, err := canonicalDir(wt.Filesystem.Root())
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "resolve worktree root")
	}

	changed := make([]string, 0, len(status))
	for file, st := range status {
		if st.Staging == git.Unmodified && st.Worktree == git.Unmodified {
			continue
		}
		if st.Worktree == git.Deleted || st.Staging == git.Deleted {
			continue
		}
		rel, err := util.RelSlash(absRoot, filepath.Join(base, filepath.FromSlash(file)))
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			continue
		}
		changed = append(changed, rel)
	}
	sort.Strings(changed)
	return changed, nil
}

func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
