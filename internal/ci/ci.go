// Package ci reads build metadata from well-known CI environment variables.
package ci

import (
	"os"
	"strings"
)

// Kind represents the type of CI.
type Kind int

const (
	Unknown Kind = iota
	GitHub
	GitLab
	Bitbucket
)

// LookupFunc fetches environment variables and defaults to os.Getenv.
type LookupFunc func(string) string

// Environment is the CI metadata a report needs.
type Environment struct {
	Kind   Kind
	Branch string // short branch, tag or merge request reference
	Commit string
}

// String returns the human-readable string representation of a Kind.
func (k Kind) String() string {
	switch k {
	case GitHub:
		return "github"
	case GitLab:
		return "gitlab"
	case Bitbucket:
		return "bitbucket"
	default:
		return "unknown"
	}
}

// Detect resolves the CI environment of the current process.
func Detect() (Environment, bool) {
	return DetectWithLookup(os.Getenv)
}

// DetectWithLookup resolves the CI environment through lookup. The second return value is
// false when no supported CI is detected.
func DetectWithLookup(lookup LookupFunc) (Environment, bool) {
	if lookup == nil {
		lookup = os.Getenv
	}

	switch detectKind(lookup) {
	case GitHub:
		return Environment{Kind: GitHub, Branch: lookup("GITHUB_REF_NAME"), Commit: lookup("GITHUB_SHA")}, true
	case GitLab:
		return gitLab(lookup), true
	case Bitbucket:
		return bitbucket(lookup), true
	default:
		return Environment{}, false
	}
}

func detectKind(lookup LookupFunc) Kind {
	if lookup("GITHUB_REPOSITORY") != "" || lookup("GITHUB_SHA") != "" {
		return GitHub
	}
	if strings.EqualFold(lookup("GITLAB_CI"), "true") || lookup("CI_PROJECT_PATH") != "" {
		return GitLab
	}
	if lookup("BITBUCKET_WORKSPACE") != "" || lookup("BITBUCKET_REPO_SLUG") != "" {
		return Bitbucket
	}
	return Unknown
}

// gitLab prefers the tag, then the merge request source branch, then the commit ref.
func gitLab(lookup LookupFunc) Environment {
	branch := lookup("CI_COMMIT_TAG")
	if branch == "" {
		branch = lookup("CI_MERGE_REQUEST_SOURCE_BRANCH_NAME")
	}
	if branch == "" {
		branch = lookup("CI_COMMIT_REF_NAME")
	}
	return Environment{Kind: GitLab, Branch: branch, Commit: lookup("CI_COMMIT_SHA")}
}

func bitbucket(lookup LookupFunc) Environment {
	branch := lookup("BITBUCKET_TAG")
	if branch == "" {
		branch = lookup("BITBUCKET_BRANCH")
	}
	if branch == "" {
		if pr := lookup("BITBUCKET_PR_ID"); pr != "" {
			branch = "pull/" + pr
		}
	}
	return Environment{Kind: Bitbucket, Branch: branch, Commit: lookup("BITBUCKET_COMMIT")}
}
