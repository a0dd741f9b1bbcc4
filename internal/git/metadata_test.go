package git

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepository(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	module := filepath.Join(dir, "app", "code", "Acme", "Widget")
	require.NoError(t, os.MkdirAll(module, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(module, "registration.php"), []byte("<?php\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("app/code/Acme/Widget/registration.php")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://example.com/acme/shop.git"},
	})
	require.NoError(t, err)

	return dir, hash.String()
}

func TestCollectMetadata(t *testing.T) {
	dir, commit := initRepository(t)

	md, err := CollectMetadata(filepath.Join(dir, "app", "code"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), md.Root)
	assert.Equal(t, "app/code", md.Subfolder)
	assert.Equal(t, "master", md.Branch)
	assert.Equal(t, commit, md.Commit)
	assert.Equal(t, "https://example.com/acme/shop", md.Remote)
}

func TestCollectMetadataForFile(t *testing.T) {
	dir, commit := initRepository(t)

	md, err := CollectMetadata(filepath.Join(dir, "app", "code", "Acme", "Widget", "registration.php"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), md.Root)
	assert.Equal(t, commit, md.Commit)
}

func TestCollectMetadataOutsideRepository(t *testing.T) {
	dir := t.TempDir()

	md, err := CollectMetadata(dir)
	assert.True(t, stderrors.Is(err, ErrNotRepository))
	assert.Equal(t, filepath.Clean(dir), md.Root)
	assert.Empty(t, md.Commit)

	_, err = CollectMetadata("")
	assert.Error(t, err)
}
