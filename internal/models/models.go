package models

import "time"

// RepoRef identifies a public GitHub repository.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// DirectoryEntry is a root-level item from the contents listing.
type DirectoryEntry struct {
	Name string `json:"name"`
	Type string `json:"type"` // "file" or "dir"
	Size int    `json:"size"`
}

func (e DirectoryEntry) IsFile() bool {
	return e.Type == "file"
}

// ArtifactCategory orders artifacts for context assembly. The declaration
// order is the priority order: lower values are packed first.
type ArtifactCategory int

const (
	CategoryDirectoryListing ArtifactCategory = iota
	CategoryReadme
	CategoryManifest
	CategorySourceSample
)

func (c ArtifactCategory) String() string {
	switch c {
	case CategoryDirectoryListing:
		return "directory-listing"
	case CategoryReadme:
		return "readme"
	case CategoryManifest:
		return "manifest"
	case CategorySourceSample:
		return "source-sample"
	default:
		return "unknown"
	}
}

// Artifact is one labeled unit of fetched text content.
type Artifact struct {
	Category    ArtifactCategory
	Label       string
	Content     string
	OriginalLen int // character length before any sample truncation
}

// SummaryResult is the structured output of the summarization model.
type SummaryResult struct {
	Summary      string   `json:"summary"`
	Technologies []string `json:"technologies"`
	Structure    string   `json:"structure"`
}

// ErrorResponse is the shape every fatal request error is reported in.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message}
}

// SummaryRecord is one persisted summarization, when history is enabled.
type SummaryRecord struct {
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Model         string    `json:"model"`
	Summary       string    `json:"summary"`
	Technologies  []string  `json:"technologies"`
	Structure     string    `json:"structure"`
	ContextChars  int       `json:"context_chars"`
	ContextTokens int       `json:"context_tokens"`
	Embedding     []float32 `json:"embedding,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitzero"`
}

// SearchResult is one hit from a semantic search across stored summaries.
type SearchResult struct {
	FullName     string   `json:"full_name"`
	Summary      string   `json:"summary"`
	Technologies []string `json:"technologies"`
	Score        float64  `json:"score"`
}
