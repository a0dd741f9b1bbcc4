package ci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) string { return env[key] }
}

func TestDetectWithLookup(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Environment
		ok   bool
	}{
		{
			name: "github",
			env:  map[string]string{"GITHUB_REPOSITORY": "acme/shop", "GITHUB_SHA": "abc", "GITHUB_REF_NAME": "main"},
			want: Environment{Kind: GitHub, Branch: "main", Commit: "abc"},
			ok:   true,
		},
		{
			name: "gitlab branch",
			env:  map[string]string{"GITLAB_CI": "true", "CI_COMMIT_REF_NAME": "develop", "CI_COMMIT_SHA": "def"},
			want: Environment{Kind: GitLab, Branch: "develop", Commit: "def"},
			ok:   true,
		},
		{
			name: "gitlab tag wins",
			env:  map[string]string{"CI_PROJECT_PATH": "acme/shop", "CI_COMMIT_TAG": "v1.2.0", "CI_COMMIT_REF_NAME": "v1.2.0-branch"},
			want: Environment{Kind: GitLab, Branch: "v1.2.0"},
			ok:   true,
		},
		{
			name: "gitlab merge request",
			env:  map[string]string{"GITLAB_CI": "TRUE", "CI_MERGE_REQUEST_SOURCE_BRANCH_NAME": "feature/x", "CI_COMMIT_REF_NAME": "refs/merge"},
			want: Environment{Kind: GitLab, Branch: "feature/x"},
			ok:   true,
		},
		{
			name: "bitbucket pull request",
			env:  map[string]string{"BITBUCKET_WORKSPACE": "acme", "BITBUCKET_PR_ID": "42", "BITBUCKET_COMMIT": "123"},
			want: Environment{Kind: Bitbucket, Branch: "pull/42", Commit: "123"},
			ok:   true,
		},
		{
			name: "bitbucket branch",
			env:  map[string]string{"BITBUCKET_REPO_SLUG": "shop", "BITBUCKET_BRANCH": "main"},
			want: Environment{Kind: Bitbucket, Branch: "main"},
			ok:   true,
		},
		{
			name: "local run",
			env:  map[string]string{"CI": "true"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectWithLookup(lookupFrom(tt.env))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "github", GitHub.String())
	assert.Equal(t, "gitlab", GitLab.String())
	assert.Equal(t, "bitbucket", Bitbucket.String())
	assert.Equal(t, "unknown", Unknown.String())
}
