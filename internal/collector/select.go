package collector

import (
	"path/filepath"
	"strings"

	"github.com/repodigest/repo-digest/internal/models"
)

// SourceSampleLimit caps how much of each sampled source file is kept.
const SourceSampleLimit = 3000

// MaxSourceSamples caps how many root source files are fetched.
const MaxSourceSamples = 2

var readmeExtensions = map[string]bool{
	".md":  true,
	".rst": true,
	".txt": true,
}

// manifestNames is the fixed set of well-known dependency/config filenames,
// checked against the listing in listing order.
var manifestNames = map[string]bool{
	"requirements.txt": true,
	"pyproject.toml":   true,
	"package.json":     true,
	"Cargo.toml":       true,
	"go.mod":           true,
	"setup.py":         true,
	"setup.cfg":        true,
	"Gemfile":          true,
	"composer.json":    true,
	"pom.xml":          true,
	"build.gradle":     true,
	"Dockerfile":       true,
	"Makefile":         true,
	"CMakeLists.txt":   true,
}

// entryPointNames are canonical entry-point filenames, in preference order.
var entryPointNames = []string{
	"main.py",
	"app.py",
	"main.go",
	"main.rs",
	"index.js",
	"app.js",
	"index.ts",
	"main.c",
	"main.cpp",
	"Main.java",
	"main.rb",
	"main.swift",
}

var sourceExtensions = map[string]bool{
	".py": true, ".go": true, ".rs": true,
	".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".c": true, ".h": true, ".cpp": true, ".cc": true,
	".java": true, ".rb": true, ".php": true, ".cs": true,
	".swift": true, ".kt": true, ".scala": true, ".sh": true,
}

// selectReadme picks the first README-like file: case-insensitive stem
// "readme" with a known documentation extension.
func selectReadme(entries []models.DirectoryEntry) (string, bool) {
	for _, e := range entries {
		if !e.IsFile() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name))
		stem := strings.TrimSuffix(e.Name, filepath.Ext(e.Name))
		if strings.EqualFold(stem, "readme") && readmeExtensions[ext] {
			return e.Name, true
		}
	}
	return "", false
}

// selectManifests picks every root-level manifest, preserving listing order.
func selectManifests(entries []models.DirectoryEntry) []string {
	var picks []string
	for _, e := range entries {
		if e.IsFile() && manifestNames[e.Name] {
			picks = append(picks, e.Name)
		}
	}
	return picks
}

// selectSources picks up to MaxSourceSamples root source files: canonical
// entry points first (in preference order), then any other file with a
// recognized source extension in listing order. Files already selected as
// readme or manifest are skipped.
func selectSources(entries []models.DirectoryEntry, taken map[string]bool) []string {
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsFile() {
			present[e.Name] = true
		}
	}

	var picks []string
	chosen := map[string]bool{}
	for _, name := range entryPointNames {
		if len(picks) == MaxSourceSamples {
			return picks
		}
		if present[name] && !taken[name] && !chosen[name] {
			picks = append(picks, name)
			chosen[name] = true
		}
	}

	for _, e := range entries {
		if len(picks) == MaxSourceSamples {
			break
		}
		if !e.IsFile() || taken[e.Name] || chosen[e.Name] {
			continue
		}
		if sourceExtensions[strings.ToLower(filepath.Ext(e.Name))] {
			picks = append(picks, e.Name)
			chosen[e.Name] = true
		}
	}
	return picks
}

// formatListing serializes the root listing compactly, one entry per line,
// directories marked with a trailing slash.
func formatListing(entries []models.DirectoryEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(e.Name)
		if !e.IsFile() {
			b.WriteString("/")
		}
	}
	return b.String()
}
