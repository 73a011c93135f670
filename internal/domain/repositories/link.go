package repositories

import (
	"context"

	"contexthub/internal/domain/models"
)

// LinkRepository defines data access operations for item-folder links.
type LinkRepository interface {
	// Upsert creates the link or, if the (item, folder) pair already
	// exists, updates its position
	Upsert(ctx context.Context, link *models.ItemFolderLink) error

	// MaxPosition returns the highest position in the folder, 0 if empty
	MaxPosition(ctx context.Context, folderID string) (int, error)

	// MoveToFolder repoints links for the given items from source to
	// target, setting position on each. Items without a link under source
	// are skipped. Returns the number of links actually moved.
	MoveToFolder(ctx context.Context, sourceFolderID, targetFolderID string, itemIDs []string, position int) (int64, error)

	// UpdatePosition sets the position of one link; returns rows affected
	UpdatePosition(ctx context.Context, folderID, itemID string, position int) (int64, error)

	// DeleteByItems removes links for the given items from the folder;
	// returns the number actually deleted
	DeleteByItems(ctx context.Context, folderID string, itemIDs []string) (int64, error)

	// DeleteByFolder removes every link in the folder (cascade delete)
	DeleteByFolder(ctx context.Context, folderID string) (int64, error)

	// CountByFolder counts links in the folder
	CountByFolder(ctx context.Context, folderID string) (int, error)
}
