package services

import (
	"context"

	"contexthub/internal/domain/models"
	"contexthub/internal/httputil"
)

// CreateFolderRequest is the input for folder creation.
// ParentID nil means a root-level folder.
type CreateFolderRequest struct {
	UserID            string         `json:"-"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	ParentID          *string        `json:"parent_id"`
	Color             string         `json:"color"`
	Icon              *string        `json:"icon"`
	SortOrder         int            `json:"sort_order"`
	AutoOrganize      bool           `json:"auto_organize"`
	OrganizationRules map[string]any `json:"organization_rules"`
}

// UpdateFolderRequest is the input for rename/move and attribute updates.
// ParentID is tri-state: absent = keep, null = move to root, value = move
// under that folder.
type UpdateFolderRequest struct {
	UserID            string                  `json:"-"`
	Name              *string                 `json:"name"`
	Description       *string                 `json:"description"`
	ParentID          httputil.OptionalString `json:"parent_id"`
	Color             *string                 `json:"color"`
	Icon              *string                 `json:"icon"`
	SortOrder         *int                    `json:"sort_order"`
	AutoOrganize      *bool                   `json:"auto_organize"`
	OrganizationRules map[string]any          `json:"organization_rules"`
}

// AddItemsRequest adds a batch of items to a folder. When Position is nil
// items are appended after the current maximum position.
type AddItemsRequest struct {
	ItemIDs  []string `json:"item_ids"`
	Position *int     `json:"position"`
}

// ItemAction is the tagged request type for PATCH on a folder's items.
// Exactly two variants exist; the service dispatches with an exhaustive
// type switch instead of branching on an action string.
type ItemAction interface {
	isItemAction()
}

// MoveItems moves items from the source folder to the target folder.
// Every moved link receives Position (0 when the client omitted it).
type MoveItems struct {
	ItemIDs        []string
	TargetFolderID string
	Position       int
}

// ReorderItems updates the position of each listed item within the folder.
type ReorderItems struct {
	Positions []ItemPosition
}

// ItemPosition pairs an item with its new position.
type ItemPosition struct {
	ItemID   string `json:"item_id"`
	Position int    `json:"position"`
}

func (MoveItems) isItemAction()    {}
func (ReorderItems) isItemAction() {}

// FolderService is the orchestrator entry point used by the REST layer.
type FolderService interface {
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
	GetFolder(ctx context.Context, userID, folderID string) (*models.FolderDetail, error)
	UpdateFolder(ctx context.Context, userID, folderID string, req *UpdateFolderRequest) (*models.Folder, error)
	DeleteFolder(ctx context.Context, userID, folderID string, force bool) error
	ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error)

	AddItems(ctx context.Context, userID, folderID string, req *AddItemsRequest) (int, error)
	ApplyItemAction(ctx context.Context, userID, folderID string, action ItemAction) (int, error)
	RemoveItems(ctx context.Context, userID, folderID string, itemIDs []string) (int, error)
}

// TreeService assembles the user's full nested folder tree.
type TreeService interface {
	GetTree(ctx context.Context, userID string) (*models.Tree, error)
}
