package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func initRepo(t *testing.T) (string, *git.Worktree) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	writeFile(t, dir, "src/ui/App.tsx", "export const App = 1;\n")
	writeFile(t, dir, "src/domain/user.ts", "export const user = 1;\n")
	_, err = wt.Add("src")
	require.NoError(t, err)
	_, err = wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@test.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, wt
}

func TestIsGitRepo(t *testing.T) {
	dir, _ := initRepo(t)
	gi := New()
	assert.True(t, gi.IsGitRepo(dir))
	assert.True(t, gi.IsGitRepo(filepath.Join(dir, "src")))
	assert.False(t, gi.IsGitRepo(t.TempDir()))
}

func TestCommitHash(t *testing.T) {
	dir, _ := initRepo(t)
	hash, err := New().CommitHash(dir)
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	_, err = New().CommitHash(t.TempDir())
	assert.Error(t, err)
}

func TestChangedFilesCleanTree(t *testing.T) {
	dir, _ := initRepo(t)
	changed, err := New().ChangedFiles(dir)
	require.NoError(t, err)
	assert.Empty(t, changed)
}

func TestChangedFiles(t *testing.T) {
	dir, wt := initRepo(t)
	writeFile(t, dir, "src/ui/App.tsx", "export const App = 2;\n")
	writeFile(t, dir, "src/features/new.ts", "export const x = 1;\n")
	writeFile(t, dir, "src/shared/staged.ts", "export const y = 1;\n")
	_, err := wt.Add("src/shared/staged.ts")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "src/domain/user.ts")))

	changed, err := New().ChangedFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/features/new.ts", "src/shared/staged.ts", "src/ui/App.tsx"}, changed)
}

func TestChangedFilesRelativeToSubdirectory(t *testing.T) {
	dir, _ := initRepo(t)
	writeFile(t, dir, "src/ui/App.tsx", "export const App = 3;\n")
	writeFile(t, dir, "README.md", "outside\n")

	changed, err := New().ChangedFiles(filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ui/App.tsx"}, changed)
}
