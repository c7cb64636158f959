package github

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/repodigest/repo-digest/internal/models"
)

var repoURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/?#\s]+)`)

// ParseRepoURL derives an owner/repo reference from a repository URL.
func ParseRepoURL(rawURL string) (models.RepoRef, error) {
	m := repoURLPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if m == nil {
		return models.RepoRef{}, fmt.Errorf("invalid GitHub URL %q: expected https://github.com/owner/repo", rawURL)
	}

	ref := models.RepoRef{
		Owner: m[1],
		Name:  strings.TrimSuffix(strings.TrimRight(m[2], "/"), ".git"),
	}
	if ref.Owner == "" || ref.Name == "" {
		return models.RepoRef{}, fmt.Errorf("invalid GitHub URL %q: empty owner or repo", rawURL)
	}
	return ref, nil
}
