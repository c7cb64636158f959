package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactCategoryPriority(t *testing.T) {
	// The assembler packs by category value; this order is a contract.
	assert.Less(t, CategoryDirectoryListing, CategoryReadme)
	assert.Less(t, CategoryReadme, CategoryManifest)
	assert.Less(t, CategoryManifest, CategorySourceSample)
}

func TestArtifactCategoryString(t *testing.T) {
	assert.Equal(t, "directory-listing", CategoryDirectoryListing.String())
	assert.Equal(t, "readme", CategoryReadme.String())
	assert.Equal(t, "manifest", CategoryManifest.String())
	assert.Equal(t, "source-sample", CategorySourceSample.String())
}

func TestErrorResponseShape(t *testing.T) {
	resp := NewErrorResponse("boom")
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "boom", resp.Message)
}
