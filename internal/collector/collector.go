// Package collector decides which repository files are worth fetching and
// turns them into an ordered list of labeled artifacts.
package collector

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/repodigest/repo-digest/internal/contextpack"
	"github.com/repodigest/repo-digest/internal/github"
	"github.com/repodigest/repo-digest/internal/models"
)

const fetchParallelism = 4

// Fetcher is the slice of the GitHub client the collector needs. Tests
// substitute an in-memory implementation.
type Fetcher interface {
	DefaultBranch(ctx context.Context, ref models.RepoRef) (string, error)
	ListRoot(ctx context.Context, ref models.RepoRef, branch string) ([]models.DirectoryEntry, error)
	FetchFile(ctx context.Context, ref models.RepoRef, branch, path string) (string, error)
}

type Collector struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func New(fetcher Fetcher, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{fetcher: fetcher, logger: logger}
}

// Collect resolves the default branch, lists the root directory, and fetches
// the prioritized subset of files. The returned artifacts are in category
// priority order: listing, readme, manifests, source samples. A failed fetch
// of an individual file omits that artifact only; the metadata and listing
// calls are request-fatal.
func (c *Collector) Collect(ctx context.Context, ref models.RepoRef) ([]models.Artifact, error) {
	branch, err := c.fetcher.DefaultBranch(ctx, ref)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("resolved default branch",
		zap.String("repo", ref.FullName()), zap.String("branch", branch))

	entries, err := c.fetcher.ListRoot(ctx, ref, branch)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", github.ErrRepositoryEmpty, ref.FullName())
	}

	picks := c.plan(entries)

	// Content fetches are independent of each other, so they run in
	// parallel. Results land back in pick order, which is priority order.
	contents := make([]string, len(picks))
	fetched := make([]bool, len(picks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallelism)
	for i, p := range picks {
		g.Go(func() error {
			text, err := c.fetcher.FetchFile(gCtx, ref, branch, p.path)
			if err != nil {
				c.logger.Warn("skipping artifact",
					zap.String("path", p.path), zap.Error(err))
				return nil
			}
			contents[i] = text
			fetched[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	listing := formatListing(entries)
	artifacts := []models.Artifact{{
		Category:    models.CategoryDirectoryListing,
		Label:       "root",
		Content:     listing,
		OriginalLen: utf8.RuneCountInString(listing),
	}}
	for i, p := range picks {
		if !fetched[i] {
			continue
		}
		content := contents[i]
		originalLen := utf8.RuneCountInString(content)
		if p.category == models.CategorySourceSample && originalLen > SourceSampleLimit {
			content = contextpack.TruncateRunes(content, SourceSampleLimit)
		}
		artifacts = append(artifacts, models.Artifact{
			Category:    p.category,
			Label:       p.path,
			Content:     content,
			OriginalLen: originalLen,
		})
	}
	return artifacts, nil
}

type pick struct {
	path     string
	category models.ArtifactCategory
}

// plan applies the selection rules to the listing, producing fetch targets
// in priority order.
func (c *Collector) plan(entries []models.DirectoryEntry) []pick {
	var picks []pick
	taken := map[string]bool{}

	if name, ok := selectReadme(entries); ok {
		picks = append(picks, pick{name, models.CategoryReadme})
		taken[name] = true
	}
	for _, name := range selectManifests(entries) {
		picks = append(picks, pick{name, models.CategoryManifest})
		taken[name] = true
	}
	for _, name := range selectSources(entries, taken) {
		picks = append(picks, pick{name, models.CategorySourceSample})
	}

	c.logger.Debug("selected files", zap.Int("count", len(picks)))
	return picks
}
