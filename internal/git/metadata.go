package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Metadata describes the repository a scanned tree belongs to.
type Metadata struct {
	Branch    string
	Commit    string
	Remote    string
	Root      string
	Subfolder string
}

// CollectMetadata collects branch, commit and origin remote for the repository enclosing
// sourcePath. Root is always set; the remaining fields stay empty when sourcePath is not
// inside a repository or HEAD is unborn.
func CollectMetadata(sourcePath string) (Metadata, error) {
	if sourcePath == "" {
		return Metadata{}, fmt.Errorf("source folder is not set")
	}

	if absSource, err := filepath.Abs(sourcePath); err == nil {
		sourcePath = absSource
	}

	md := Metadata{
		Root: filepath.Clean(sourcePath),
	}

	repoRootFolder, err := findGitRepositoryPath(sourcePath)
	if err != nil {
		return md, err
	}
	md.Root = filepath.Clean(repoRootFolder)

	repo, err := git.PlainOpen(repoRootFolder)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if rel, err := filepath.Rel(repoRootFolder, sourcePath); err == nil && rel != "." {
		md.Subfolder = filepath.ToSlash(rel)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			md.Branch = head.Name().Short()
		}
		md.Commit = head.Hash().String()
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			md.Remote = strings.TrimSuffix(cfg.URLs[0], ".git")
		}
	}

	return md, nil
}
