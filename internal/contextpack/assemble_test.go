package contextpack

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repodigest/repo-digest/internal/models"
)

func artifact(cat models.ArtifactCategory, label, content string) models.Artifact {
	return models.Artifact{Category: cat, Label: label, Content: content, OriginalLen: len(content)}
}

func TestAssembleBudget(t *testing.T) {
	t.Run("everything fits", func(t *testing.T) {
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryDirectoryListing, "root", strings.Repeat("a", 40)),
			artifact(models.CategoryReadme, "README.md", strings.Repeat("b", 30)),
		}, 100)

		assert.Equal(t, 70, asm.ContentLen)
		assert.Len(t, asm.Blocks, 2)
		assert.Empty(t, asm.Dropped)
		for _, b := range asm.Blocks {
			assert.False(t, b.Truncated)
		}
	})

	t.Run("content length never exceeds the cap", func(t *testing.T) {
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryDirectoryListing, "root", strings.Repeat("a", 90)),
			artifact(models.CategoryReadme, "README.md", strings.Repeat("b", 90)),
			artifact(models.CategoryManifest, "go.mod", strings.Repeat("c", 90)),
		}, 100)

		assert.Equal(t, 100, asm.ContentLen)
	})

	t.Run("cap is hit exactly when candidates exceed it", func(t *testing.T) {
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryReadme, "README.md", strings.Repeat("x", 101)),
		}, 100)

		assert.Equal(t, 100, asm.ContentLen)
		require.Len(t, asm.Blocks, 1)
		assert.True(t, asm.Blocks[0].Truncated)
	})

	t.Run("end to end forty plus sixty", func(t *testing.T) {
		listing := strings.Repeat("L", 40)
		readme := strings.Repeat("R", 80)
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryDirectoryListing, "root", listing),
			artifact(models.CategoryReadme, "README.md", readme),
		}, 100)

		assert.Equal(t, 100, asm.ContentLen)
		require.Len(t, asm.Blocks, 2)
		assert.Equal(t, 40, asm.Blocks[0].Chars)
		assert.False(t, asm.Blocks[0].Truncated)
		assert.Equal(t, 60, asm.Blocks[1].Chars)
		assert.True(t, asm.Blocks[1].Truncated)
		assert.Contains(t, asm.Text, listing)
		assert.Contains(t, asm.Text, readme[:60])
		assert.NotContains(t, asm.Text, readme[:61])
	})
}

func TestAssembleCharacterTruncation(t *testing.T) {
	t.Run("never splits a rune", func(t *testing.T) {
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryReadme, "README.md", "héllo"),
		}, 2)

		assert.True(t, utf8.ValidString(asm.Text))
		assert.True(t, strings.HasSuffix(asm.Text, "hé"))
		assert.Equal(t, 2, asm.ContentLen)
		require.Len(t, asm.Blocks, 1)
		assert.True(t, asm.Blocks[0].Truncated)
		assert.Equal(t, 2, asm.Blocks[0].Chars)
	})

	t.Run("budget counts characters not bytes", func(t *testing.T) {
		// Ten two-byte runes fit a ten-character budget exactly.
		content := strings.Repeat("é", 10)
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryReadme, "README.md", content),
		}, 10)

		require.Len(t, asm.Blocks, 1)
		assert.False(t, asm.Blocks[0].Truncated)
		assert.Equal(t, 10, asm.ContentLen)
		assert.Contains(t, asm.Text, content)
	})

	t.Run("cap is exact for multi-byte content", func(t *testing.T) {
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryReadme, "README.md", strings.Repeat("界", 50)),
		}, 30)

		assert.True(t, utf8.ValidString(asm.Text))
		assert.Equal(t, 30, asm.ContentLen)
		require.Len(t, asm.Blocks, 1)
		assert.Equal(t, 30, asm.Blocks[0].Chars)
		assert.True(t, strings.HasSuffix(asm.Text, strings.Repeat("界", 30)))
	})
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", TruncateRunes("héllo", 0))
	assert.Equal(t, "", TruncateRunes("héllo", -1))
	assert.Equal(t, "hé", TruncateRunes("héllo", 2))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 5))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 10))
	assert.Equal(t, "", TruncateRunes("", 3))
}

func TestAssemblePriorityOrder(t *testing.T) {
	// Deliberately shuffled input: the assembler must order by category,
	// not by how the collector happened to build the list.
	asm := Assemble([]models.Artifact{
		artifact(models.CategorySourceSample, "main.go", "source"),
		artifact(models.CategoryManifest, "go.mod", "module x"),
		artifact(models.CategoryDirectoryListing, "root", "cmd/\ngo.mod"),
		artifact(models.CategoryReadme, "README.md", "# X"),
		artifact(models.CategoryManifest, "package.json", "{}"),
	}, 1000)

	require.Len(t, asm.Blocks, 5)
	assert.Equal(t, models.CategoryDirectoryListing, asm.Blocks[0].Category)
	assert.Equal(t, models.CategoryReadme, asm.Blocks[1].Category)
	assert.Equal(t, models.CategoryManifest, asm.Blocks[2].Category)
	assert.Equal(t, models.CategoryManifest, asm.Blocks[3].Category)
	assert.Equal(t, models.CategorySourceSample, asm.Blocks[4].Category)

	// Stable within a category: go.mod came before package.json.
	assert.Equal(t, "go.mod", asm.Blocks[2].Label)
	assert.Equal(t, "package.json", asm.Blocks[3].Label)

	listingPos := strings.Index(asm.Text, "--- directory-listing: root ---")
	readmePos := strings.Index(asm.Text, "--- readme: README.md ---")
	manifestPos := strings.Index(asm.Text, "--- manifest: go.mod ---")
	sourcePos := strings.Index(asm.Text, "--- source-sample: main.go ---")
	require.NotEqual(t, -1, listingPos)
	assert.Less(t, listingPos, readmePos)
	assert.Less(t, readmePos, manifestPos)
	assert.Less(t, manifestPos, sourcePos)
}

func TestAssembleSingleBoundaryTruncation(t *testing.T) {
	asm := Assemble([]models.Artifact{
		artifact(models.CategoryDirectoryListing, "root", strings.Repeat("a", 30)),
		artifact(models.CategoryReadme, "README.md", strings.Repeat("b", 30)),
		artifact(models.CategoryManifest, "go.mod", strings.Repeat("c", 50)),
		artifact(models.CategorySourceSample, "main.go", strings.Repeat("z", 50)),
	}, 100)

	// First two in full, the third cut at the boundary, the fourth absent.
	require.Len(t, asm.Blocks, 3)
	assert.False(t, asm.Blocks[0].Truncated)
	assert.False(t, asm.Blocks[1].Truncated)
	assert.True(t, asm.Blocks[2].Truncated)
	assert.Equal(t, 40, asm.Blocks[2].Chars)
	assert.Equal(t, []string{"main.go"}, asm.Dropped)
	assert.NotContains(t, asm.Text, "main.go")
	assert.NotContains(t, asm.Text, "z")
}

func TestAssembleExactFitDropsRest(t *testing.T) {
	asm := Assemble([]models.Artifact{
		artifact(models.CategoryDirectoryListing, "root", strings.Repeat("a", 100)),
		artifact(models.CategoryReadme, "README.md", strings.Repeat("b", 10)),
	}, 100)

	require.Len(t, asm.Blocks, 1)
	assert.False(t, asm.Blocks[0].Truncated)
	assert.Equal(t, 100, asm.ContentLen)
	assert.Equal(t, []string{"README.md"}, asm.Dropped)
}

func TestAssembleIdempotent(t *testing.T) {
	artifacts := []models.Artifact{
		artifact(models.CategorySourceSample, "main.go", strings.Repeat("s", 500)),
		artifact(models.CategoryDirectoryListing, "root", strings.Repeat("l", 50)),
		artifact(models.CategoryReadme, "README.md", strings.Repeat("r", 800)),
	}

	first := Assemble(artifacts, 1000)
	for range 5 {
		assert.Equal(t, first.Text, Assemble(artifacts, 1000).Text)
	}
}

func TestAssembleEdgeCases(t *testing.T) {
	t.Run("no artifacts", func(t *testing.T) {
		asm := Assemble(nil, 100)
		assert.Empty(t, asm.Text)
		assert.Zero(t, asm.ContentLen)
		assert.Empty(t, asm.Blocks)
	})

	t.Run("zero budget drops everything", func(t *testing.T) {
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryReadme, "README.md", "hello"),
		}, 0)
		assert.Empty(t, asm.Text)
		assert.Zero(t, asm.ContentLen)
		assert.Equal(t, []string{"README.md"}, asm.Dropped)
	})

	t.Run("no readme artifact produces no readme block", func(t *testing.T) {
		asm := Assemble([]models.Artifact{
			artifact(models.CategoryDirectoryListing, "root", "cmd/"),
			artifact(models.CategoryManifest, "go.mod", "module x"),
		}, 1000)
		assert.NotContains(t, asm.Text, "readme")
	})

	t.Run("does not mutate the input slice", func(t *testing.T) {
		artifacts := []models.Artifact{
			artifact(models.CategorySourceSample, "main.go", "s"),
			artifact(models.CategoryDirectoryListing, "root", "l"),
		}
		Assemble(artifacts, 100)
		assert.Equal(t, models.CategorySourceSample, artifacts[0].Category)
	})
}
