package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/repodigest/repo-digest/internal/models"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const systemPrompt = `You are a code analyst. Given labeled excerpts from a GitHub repository (directory listing, README, dependency manifests, source samples), produce a JSON object with exactly these fields:

1. "summary": a 2-4 sentence description of what the project does.
2. "technologies": a JSON array of the main languages, frameworks, and libraries used.
3. "structure": a 1-2 sentence description of how the project is laid out.

Return ONLY valid JSON. No markdown, no code fences.`

// Summarize submits the assembled context and parses the model's structured
// reply. Duplicate technology names are removed, preserving the model's order.
func (c *Client) Summarize(ctx context.Context, ref models.RepoRef, contextBlock string) (*models.SummaryResult, error) {
	userMsg := fmt.Sprintf("Repository: %s\n\n%s", ref.FullName(), contextBlock)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		// No ResponseFormat — not all models support json_object mode.
		// The system prompt instructs the model to return pure JSON.
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM call for %s: %w", ref.FullName(), err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned for %s", ref.FullName())
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)

	var result models.SummaryResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("parsing LLM response for %s: %w\nraw: %s", ref.FullName(), err, content)
	}

	result.Technologies = dedupeTechnologies(result.Technologies)
	return &result, nil
}

// stripCodeFences removes markdown code fences that some models wrap around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove opening fence (```json or ```)
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		// Remove closing fence
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// dedupeTechnologies drops empty entries and case-insensitive duplicates,
// keeping the first-seen casing and order.
func dedupeTechnologies(techs []string) []string {
	seen := make(map[string]bool, len(techs))
	out := make([]string, 0, len(techs))
	for _, t := range techs {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}
