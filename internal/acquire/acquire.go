// Package acquire fetches remote repositories into local working copies.
//
// Each acquisition clones into a freshly created, uniquely named directory
// so that no two ingestion runs share a working copy. Destruction of the
// working copy is deferred to the caller; Remove is provided for cleanup.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repochat/internal/config"
)

var (
	// ErrInvalidURL indicates a malformed repository URL.
	ErrInvalidURL = errors.New("invalid repository URL")

	// ErrCloneFailed indicates the remote fetch failed.
	ErrCloneFailed = errors.New("failed to clone repository")
)

// Acquirer clones remote repositories into per-run working copies.
type Acquirer struct {
	clonesDir string
	logger    *zap.Logger
}

// New creates an Acquirer that clones under cfg.ClonesDir.
func New(cfg config.IngestConfig, logger *zap.Logger) *Acquirer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Acquirer{
		clonesDir: cfg.ClonesDir,
		logger:    logger,
	}
}

// Clone fetches the repository at repoURL into a new uniquely named
// directory and returns its path.
//
// The URL is validated before any directory is created or any network call
// is made; a malformed URL returns ErrInvalidURL with nothing left on disk.
// The clone is shallow (depth 1, single branch). On clone failure the
// partially created directory is removed and ErrCloneFailed is returned.
func (a *Acquirer) Clone(ctx context.Context, repoURL string) (string, error) {
	if err := validateURL(repoURL); err != nil {
		return "", err
	}

	workingCopy := filepath.Join(a.clonesDir, uuid.NewString())
	if err := os.MkdirAll(workingCopy, 0o755); err != nil {
		return "", fmt.Errorf("creating working copy directory: %w", err)
	}

	a.logger.Info("cloning repository",
		zap.String("url", repoURL),
		zap.String("working_copy", workingCopy),
	)

	_, err := git.PlainCloneContext(ctx, workingCopy, false, &git.CloneOptions{
		URL:          repoURL,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		Remove(workingCopy, a.logger)
		return "", fmt.Errorf("%w: %v", ErrCloneFailed, err)
	}

	a.logger.Info("clone completed", zap.String("working_copy", workingCopy))
	return workingCopy, nil
}

// validateURL checks that repoURL looks like a cloneable remote.
func validateURL(repoURL string) error {
	if repoURL == "" {
		return fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	for _, prefix := range []string{"http://", "https://", "git@"} {
		if strings.HasPrefix(repoURL, prefix) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q must start with http://, https://, or git@", ErrInvalidURL, repoURL)
}

// Remove deletes a working copy. Failures are logged, not returned: cleanup
// is best-effort and never blocks the surrounding run.
//
// Git object files are created read-only, which makes a plain RemoveAll
// fail on some platforms; permissions are widened first.
func Remove(path string, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return
	}

	_ = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			_ = os.Chmod(p, 0o755)
		} else {
			_ = os.Chmod(p, 0o644)
		}
		return nil
	})

	if err := os.RemoveAll(path); err != nil {
		logger.Error("failed to remove working copy",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}
	logger.Debug("removed working copy", zap.String("path", path))
}
