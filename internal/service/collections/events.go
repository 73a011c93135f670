package collections

import (
	"context"
	"log/slog"

	"contexthub/internal/domain/services"
)

// LogEvents is the default FolderEvents publisher. It records structural
// changes so downstream collaborators (classification, cache invalidation)
// can tail them; swapping in a real broker only touches wiring.
type LogEvents struct {
	logger *slog.Logger
}

// NewLogEvents creates a slog-backed event publisher
func NewLogEvents(logger *slog.Logger) *LogEvents {
	return &LogEvents{logger: logger}
}

func (p *LogEvents) FolderCreated(ctx context.Context, evt services.FolderEvent) {
	p.logger.Info("event: folder created",
		"user_id", evt.UserID,
		"folder_id", evt.FolderID,
		"path", evt.NewPath,
	)
}

func (p *LogEvents) FolderMoved(ctx context.Context, evt services.FolderEvent) {
	p.logger.Info("event: folder moved",
		"user_id", evt.UserID,
		"folder_id", evt.FolderID,
		"old_path", evt.OldPath,
		"new_path", evt.NewPath,
	)
}

func (p *LogEvents) FolderDeleted(ctx context.Context, evt services.FolderEvent) {
	p.logger.Info("event: folder deleted",
		"user_id", evt.UserID,
		"folder_id", evt.FolderID,
		"old_path", evt.OldPath,
	)
}
