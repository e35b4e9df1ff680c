// Package ingest turns a repository working copy into loaded source
// documents: a read-only tree walk selects candidate files, and a
// permissive loader reads them into memory with provenance metadata.
package ingest

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ignoredDirs are directory names that are never descended into:
// version-control metadata, editor state, dependency caches, build output,
// and migration folders.
var ignoredDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	".vscode":      true,
	".idea":        true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	".venv":        true,
	"env":          true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"bin":          true,
	"obj":          true,
	".cache":       true,
	".next":        true,
	"migrations":   true,
}

// ignoredFiles are exact filenames that are never ingested, mostly
// lockfiles and OS metadata.
var ignoredFiles = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"poetry.lock":       true,
	"Pipfile.lock":      true,
	"composer.lock":     true,
	"go.sum":            true,
	".DS_Store":         true,
	"thumbs.db":         true,
}

// allowedExts are the lowercased extensions accepted for ingestion.
var allowedExts = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".java": true, ".c": true, ".cpp": true, ".h": true, ".hpp": true,
	".cs": true, ".go": true, ".rs": true, ".php": true, ".rb": true,
	".swift": true, ".kt": true, ".scala": true, ".html": true, ".css": true,
	".sql": true, ".sh": true, ".bat": true, ".json": true, ".yaml": true,
	".yml": true, ".md": true, ".txt": true, ".toml": true,
}

// conventionFiles are extensionless build/CI manifests accepted by name.
var conventionFiles = map[string]bool{
	"Dockerfile":  true,
	"Makefile":    true,
	"Jenkinsfile": true,
}

// Selector walks a working copy and returns the files to ingest.
type Selector struct {
	logger *zap.Logger
}

// NewSelector creates a file selector.
func NewSelector(logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{logger: logger}
}

// Select returns the candidate files under root in deterministic
// (lexical walk) order.
//
// Per-entry errors are logged and the entry skipped; they never abort the
// walk. An empty result is a valid outcome, not an error. The root itself
// must exist and be a directory.
func (s *Selector) Select(root string) ([]CandidateFile, error) {
	cleanRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	candidates := []CandidateFile{}

	walkErr := filepath.WalkDir(cleanRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("skipping unreadable entry",
				zap.String("path", path),
				zap.Error(err),
			)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != cleanRoot && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !shouldSelect(d.Name()) {
			return nil
		}

		rel, relErr := filepath.Rel(cleanRoot, path)
		if relErr != nil {
			rel = d.Name()
		}
		candidates = append(candidates, CandidateFile{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Ext:     strings.ToLower(filepath.Ext(d.Name())),
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", cleanRoot, walkErr)
	}

	if len(candidates) == 0 {
		s.logger.Warn("no ingestable files found", zap.String("root", cleanRoot))
	}

	return candidates, nil
}

// shouldSelect applies the filename rules: not an ignored file, and either
// an allow-listed extension (case-insensitive) or a known convention file.
func shouldSelect(name string) bool {
	if ignoredFiles[name] {
		return false
	}
	if allowedExts[strings.ToLower(filepath.Ext(name))] {
		return true
	}
	return conventionFiles[name]
}

// validateRoot cleans the root path and checks it is an existing directory.
func validateRoot(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("root cannot be empty")
	}

	cleanRoot := filepath.Clean(root)
	info, err := os.Stat(cleanRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("root does not exist: %s", cleanRoot)
		}
		return "", fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("root must be a directory: %s", cleanRoot)
	}

	return cleanRoot, nil
}

// ComputeStats summarizes the candidate set as a per-extension percentage
// breakdown. Extensionless convention files are keyed by filename.
func ComputeStats(files []CandidateFile) Stats {
	stats := Stats{Languages: map[string]float64{}}
	if len(files) == 0 {
		return stats
	}

	counts := map[string]int{}
	for _, f := range files {
		key := f.Ext
		if key == "" {
			name := filepath.Base(f.Path)
			if conventionFiles[name] {
				key = name
			} else {
				key = "Other"
			}
		}
		counts[key]++
	}

	stats.TotalFiles = len(files)
	for key, n := range counts {
		pct := float64(n) / float64(len(files)) * 100
		stats.Languages[key] = math.Round(pct*100) / 100
	}
	return stats
}
