package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/config"
)

// Loader reads candidate files into Documents.
type Loader struct {
	maxFileSize int64
	logger      *zap.Logger
}

// NewLoader creates a document loader.
func NewLoader(cfg config.IngestConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		maxFileSize: cfg.MaxFileSize,
		logger:      logger,
	}
}

// Load reads the candidate files and returns one Document per readable,
// non-empty file, preserving input order.
//
// Reads are permissive: bytes that are not valid UTF-8 are dropped rather
// than failing the file. A single file's read error is logged and the file
// skipped; it never aborts the batch. Files whose content is empty or
// all-whitespace after decoding are excluded.
func (l *Loader) Load(files []CandidateFile) []Document {
	docs := []Document{}

	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			l.logger.Warn("skipping unreadable file",
				zap.String("path", f.Path),
				zap.Error(err),
			)
			continue
		}
		if l.maxFileSize > 0 && info.Size() > l.maxFileSize {
			l.logger.Warn("skipping oversized file",
				zap.String("path", f.Path),
				zap.Int64("size", info.Size()),
				zap.Int64("limit", l.maxFileSize),
			)
			continue
		}

		raw, err := os.ReadFile(f.Path)
		if err != nil {
			l.logger.Warn("failed to read file",
				zap.String("path", f.Path),
				zap.Error(err),
			)
			continue
		}

		content := strings.ToValidUTF8(string(raw), "")
		if strings.TrimSpace(content) == "" {
			continue
		}

		source := f.RelPath
		if source == "" {
			source = f.Path
		}
		docs = append(docs, Document{
			Content:  content,
			Source:   source,
			Filename: filepath.Base(f.Path),
			Ext:      f.Ext,
		})
	}

	l.logger.Info("loaded documents",
		zap.Int("candidates", len(files)),
		zap.Int("documents", len(docs)),
	)

	return docs
}
