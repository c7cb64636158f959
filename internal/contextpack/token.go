package contextpack

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports approximate model token counts for assembled context.
// The budget itself is character-based; token counts are informational only.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTokenCounter() (*TokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("loading tokenizer: %w", err)
	}
	return &TokenCounter{enc: enc}, nil
}

func (c *TokenCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(c.enc.Encode(text, nil, nil))
}
