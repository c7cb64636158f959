// Package contextpack assembles fetched artifacts into a single text block
// under a fixed character budget.
package contextpack

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/repodigest/repo-digest/internal/models"
)

// Block describes one artifact's contribution to an assembly.
type Block struct {
	Category  models.ArtifactCategory
	Label     string
	Chars     int
	Truncated bool
}

// Assembly is the result of packing artifacts against the budget. ContentLen
// counts artifact content characters only; the label headers between blocks
// are fixed overhead outside the budget.
type Assembly struct {
	Text       string
	ContentLen int
	Blocks     []Block
	Dropped    []string
}

// Assemble packs artifacts in category priority order (stable within a
// category) against the character budget. Artifacts are appended in full
// while they fit; the first artifact that would overflow is cut to exactly
// fill the remaining budget and everything after it is dropped. A given
// artifact list and budget always produce byte-identical output.
func Assemble(artifacts []models.Artifact, budget int) Assembly {
	ordered := make([]models.Artifact, len(artifacts))
	copy(ordered, artifacts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Category < ordered[j].Category
	})

	var b strings.Builder
	asm := Assembly{}
	remaining := budget

	for i, a := range ordered {
		if remaining <= 0 {
			for _, rest := range ordered[i:] {
				asm.Dropped = append(asm.Dropped, rest.Label)
			}
			break
		}

		content := a.Content
		length := utf8.RuneCountInString(content)
		truncated := false
		if length > remaining {
			content = TruncateRunes(content, remaining)
			length = remaining
			truncated = true
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("--- %s: %s ---\n", a.Category, a.Label))
		b.WriteString(content)
		remaining -= length

		asm.Blocks = append(asm.Blocks, Block{
			Category:  a.Category,
			Label:     a.Label,
			Chars:     length,
			Truncated: truncated,
		})
	}

	asm.Text = b.String()
	asm.ContentLen = budget - remaining
	return asm
}

// TruncateRunes cuts s after n characters. The budget is character-based,
// so cuts never split a multi-byte rune.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
