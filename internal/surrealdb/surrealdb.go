// Package surrealdb records produced summaries when a SurrealDB endpoint is
// configured. The summarize path itself never reads from here.
package surrealdb

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/surrealdb/surrealdb.go"

	"github.com/repodigest/repo-digest/internal/config"
	"github.com/repodigest/repo-digest/internal/models"
)

type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS summary SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS owner          ON TABLE summary TYPE string;
DEFINE FIELD IF NOT EXISTS name           ON TABLE summary TYPE string;
DEFINE FIELD IF NOT EXISTS full_name      ON TABLE summary TYPE string;
DEFINE FIELD IF NOT EXISTS model          ON TABLE summary TYPE string;
DEFINE FIELD IF NOT EXISTS summary        ON TABLE summary TYPE string;
DEFINE FIELD IF NOT EXISTS technologies   ON TABLE summary TYPE array<string>;
DEFINE FIELD IF NOT EXISTS structure      ON TABLE summary TYPE string;
DEFINE FIELD IF NOT EXISTS context_chars  ON TABLE summary TYPE int;
DEFINE FIELD IF NOT EXISTS context_tokens ON TABLE summary TYPE int;
DEFINE FIELD IF NOT EXISTS embedding      ON TABLE summary TYPE option<array<float>>;
DEFINE FIELD IF NOT EXISTS created_at     ON TABLE summary TYPE datetime;

DEFINE INDEX IF NOT EXISTS idx_full_name ON TABLE summary FIELDS full_name;
DEFINE INDEX IF NOT EXISTS idx_hnsw_embedding ON TABLE summary FIELDS embedding HNSW DIMENSION 1536 DIST COSINE;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// InsertSummary appends one summarization record. Each run creates a new
// record so history is preserved per repo.
func (c *Client) InsertSummary(ctx context.Context, rec models.SummaryRecord) error {
	// Build data map with only non-empty optional fields to avoid
	// CBOR NULL vs SurrealDB NONE mismatch.
	technologies := rec.Technologies
	if technologies == nil {
		technologies = []string{}
	}
	data := map[string]any{
		"owner":          rec.Owner,
		"name":           rec.Name,
		"full_name":      rec.FullName,
		"model":          rec.Model,
		"summary":        rec.Summary,
		"technologies":   technologies,
		"structure":      rec.Structure,
		"context_chars":  rec.ContextChars,
		"context_tokens": rec.ContextTokens,
		"created_at":     time.Now().UTC(),
	}
	if len(rec.Embedding) > 0 {
		data["embedding"] = rec.Embedding
	}

	_, err := sdk.Query[any](ctx, c.db, `CREATE summary CONTENT $data`,
		map[string]any{"data": data})
	if err != nil {
		return fmt.Errorf("inserting summary for %s: %w", rec.FullName, err)
	}
	return nil
}

// RecentSummaries returns the n most recent records, newest first.
func (c *Client) RecentSummaries(ctx context.Context, n int) ([]models.SummaryRecord, error) {
	query := fmt.Sprintf(`SELECT * FROM summary ORDER BY created_at DESC LIMIT %d`, n)
	results, err := sdk.Query[[]models.SummaryRecord](ctx, c.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("querying recent summaries: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

// VectorSearch ranks stored summaries by cosine similarity to the query
// vector, brute-force over records that carry an embedding.
func (c *Client) VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.SearchResult, error) {
	query := fmt.Sprintf(`
		SELECT full_name, summary, technologies,
			vector::similarity::cosine(embedding, $query_vec) AS score
		FROM summary
		WHERE embedding IS NOT NONE
		ORDER BY score DESC
		LIMIT %d
	`, k)

	results, err := sdk.Query[[]models.SearchResult](ctx, c.db, query,
		map[string]any{"query_vec": queryVec})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

type Stats struct {
	Total    int
	Repos    int
	Embedded int
}

func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT
			count() AS total,
			math::sum(IF embedding IS NOT NONE THEN 1 ELSE 0 END) AS embedded
		FROM summary GROUP ALL`,
		nil)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	stats := &Stats{}
	if len(*results) > 0 && len((*results)[0].Result) > 0 {
		row := (*results)[0].Result[0]
		stats.Total = toInt(row["total"])
		stats.Embedded = toInt(row["embedded"])
	}

	// Distinct repo count computed in Go
	names, err := sdk.Query[[]models.SummaryRecord](ctx, c.db,
		`SELECT full_name FROM summary`, nil)
	if err != nil {
		return nil, fmt.Errorf("getting repo names: %w", err)
	}
	if len(*names) > 0 {
		distinct := map[string]bool{}
		for _, r := range (*names)[0].Result {
			distinct[r.FullName] = true
		}
		stats.Repos = len(distinct)
	}
	return stats, nil
}

type TechnologyCount struct {
	Technology string
	Count      int
}

// GetTechnologyBreakdown counts technology mentions across all records,
// computed in Go rather than in the query.
func (c *Client) GetTechnologyBreakdown(ctx context.Context) ([]TechnologyCount, error) {
	results, err := sdk.Query[[]models.SummaryRecord](ctx, c.db,
		`SELECT technologies FROM summary`, nil)
	if err != nil {
		return nil, fmt.Errorf("getting technologies: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	counts := map[string]int{}
	for _, r := range (*results)[0].Result {
		for _, t := range r.Technologies {
			counts[t]++
		}
	}
	var out []TechnologyCount
	for t, cnt := range counts {
		out = append(out, TechnologyCount{Technology: t, Count: cnt})
	}
	return out, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
