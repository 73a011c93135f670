package services

import "context"

// FolderEvent describes a structural change to the folder tree. External
// collaborators (AI classification, cache invalidation) subscribe to these
// rather than being called inline.
type FolderEvent struct {
	UserID   string
	FolderID string
	// OldPath and NewPath differ on renames and moves; OldPath is empty
	// on creation and NewPath is empty on deletion.
	OldPath string
	NewPath string
}

// FolderEvents publishes structural folder changes. Implementations must
// not fail the originating operation; publishing happens after commit.
type FolderEvents interface {
	FolderCreated(ctx context.Context, evt FolderEvent)
	FolderMoved(ctx context.Context, evt FolderEvent)
	FolderDeleted(ctx context.Context, evt FolderEvent)
}
