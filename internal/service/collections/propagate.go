package collections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"contexthub/internal/domain/repositories"
)

// PathPropagator recomputes and persists path/level for every descendant
// of a folder whose own path changed, preserving relative structure.
// Callers run it inside the same transaction as the folder's own update so
// a failure partway through rolls back the whole move.
type PathPropagator struct {
	folders repositories.FolderRepository
	logger  *slog.Logger
}

// NewPathPropagator creates a new path propagator
func NewPathPropagator(folders repositories.FolderRepository, logger *slog.Logger) *PathPropagator {
	return &PathPropagator{folders: folders, logger: logger}
}

// Propagate rewrites path and level for all strict descendants of the
// folder that moved from oldPath to newPath. The folder's own record is
// already updated by the caller. A folder with no descendants is a no-op.
func (p *PathPropagator) Propagate(ctx context.Context, userID, oldPath, newPath string, newLevel int) error {
	descendants, err := p.folders.ListByPathPrefix(ctx, userID, oldPath+"/")
	if err != nil {
		return fmt.Errorf("list descendants of %q: %w", oldPath, err)
	}

	for _, desc := range descendants {
		rebased, ok := Rebase(desc.Path, oldPath, newPath)
		if !ok {
			// Prefix-matched by LIKE but not a real descendant
			// (e.g. a wildcard character in a folder name)
			continue
		}

		suffix := strings.TrimPrefix(desc.Path, oldPath+"/")
		level := newLevel + RelativeDepth(suffix)

		if err := p.folders.UpdatePathLevel(ctx, desc.ID, userID, rebased, level); err != nil {
			return fmt.Errorf("rebase descendant %q: %w", desc.Path, err)
		}
	}

	if len(descendants) > 0 {
		p.logger.Debug("descendant paths rebased",
			"old_path", oldPath,
			"new_path", newPath,
			"count", len(descendants),
		)
	}

	return nil
}
