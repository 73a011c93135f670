package repositories

import (
	"context"

	"contexthub/internal/domain/models"
)

// ItemRepository is the read-only port onto externally owned context items.
// The collections core needs just enough to verify ownership and render
// folder listings.
type ItemRepository interface {
	// ListOwnedIDs returns the subset of ids that exist and belong to the
	// user, in no particular order
	ListOwnedIDs(ctx context.Context, userID string, ids []string) ([]string, error)

	// ListByFolder lists the items linked into a folder, ordered by
	// position ascending with newer items first among equal positions
	ListByFolder(ctx context.Context, folderID string) ([]models.LinkedItem, error)

	// ListLinked returns every folder membership of the user's items in
	// one pass, for tree assembly
	ListLinked(ctx context.Context, userID string) ([]models.FolderItem, error)
}
