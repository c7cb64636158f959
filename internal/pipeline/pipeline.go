// Package pipeline orchestrates one summarize request: collect, assemble,
// summarize, and optionally record the result.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/repodigest/repo-digest/internal/collector"
	"github.com/repodigest/repo-digest/internal/config"
	"github.com/repodigest/repo-digest/internal/contextpack"
	"github.com/repodigest/repo-digest/internal/embedding"
	"github.com/repodigest/repo-digest/internal/github"
	"github.com/repodigest/repo-digest/internal/llm"
	"github.com/repodigest/repo-digest/internal/models"
	"github.com/repodigest/repo-digest/internal/surrealdb"
)

type Options struct {
	// Token overrides the configured GitHub token when non-empty.
	Token string
	// Budget overrides the configured context budget when positive.
	Budget int
	// ContextOut, when non-nil, receives the assembled context block.
	ContextOut io.Writer
}

// Run executes one summarize request. Each request is independent and
// stateless; a missing model credential is reported before any remote call.
func Run(ctx context.Context, cfg *config.Config, rawURL string, opts Options, logger *zap.Logger) (*models.SummaryResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ref, err := github.ParseRepoURL(rawURL)
	if err != nil {
		return nil, err
	}

	token := cfg.GitHubToken
	if opts.Token != "" {
		token = opts.Token
	}
	budget := cfg.ContextBudget
	if opts.Budget > 0 {
		budget = opts.Budget
	}

	col := collector.New(github.NewClient(token), logger)
	artifacts, err := col.Collect(ctx, ref)
	if err != nil {
		return nil, err
	}

	asm := contextpack.Assemble(artifacts, budget)
	logger.Info("context assembled",
		zap.String("repo", ref.FullName()),
		zap.Int("artifacts", len(artifacts)),
		zap.Int("chars", asm.ContentLen),
		zap.Int("dropped", len(asm.Dropped)))

	if opts.ContextOut != nil {
		fmt.Fprintln(opts.ContextOut, asm.Text)
	}

	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	result, err := llmClient.Summarize(ctx, ref, asm.Text)
	if err != nil {
		return nil, err
	}

	if cfg.HistoryEnabled() {
		recordHistory(ctx, cfg, ref, asm, result, logger)
	}

	return result, nil
}

// recordHistory stores the summary in SurrealDB. Failures here are logged
// and swallowed: a store problem never fails a summarize request.
func recordHistory(ctx context.Context, cfg *config.Config, ref models.RepoRef, asm contextpack.Assembly, result *models.SummaryResult, logger *zap.Logger) {
	db, err := surrealdb.NewClient(ctx, cfg)
	if err != nil {
		logger.Warn("history store unavailable", zap.Error(err))
		return
	}
	defer func() { _ = db.Close(ctx) }()

	rec := models.SummaryRecord{
		Owner:        ref.Owner,
		Name:         ref.Name,
		FullName:     ref.FullName(),
		Model:        cfg.LLMModel,
		Summary:      result.Summary,
		Technologies: result.Technologies,
		Structure:    result.Structure,
		ContextChars: asm.ContentLen,
	}

	if counter, err := contextpack.NewTokenCounter(); err != nil {
		logger.Warn("tokenizer unavailable", zap.Error(err))
	} else {
		rec.ContextTokens = counter.Count(asm.Text)
	}

	if cfg.EmbeddingAPIKey != "" {
		emb := embedding.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
		vec, err := emb.EmbedSingle(ctx, embeddingText(ref, result))
		if err != nil {
			logger.Warn("embedding summary", zap.Error(err))
		} else {
			rec.Embedding = vec
		}
	}

	if err := db.InsertSummary(ctx, rec); err != nil {
		logger.Warn("storing summary", zap.Error(err))
	}
}

func embeddingText(ref models.RepoRef, result *models.SummaryResult) string {
	return fmt.Sprintf("%s: %s", ref.FullName(), result.Summary)
}
