package models

import (
	"time"
)

// Folder is a named node in a per-user hierarchical tree used to organize
// context items. Path and Level are materialized from the parent chain and
// kept consistent by the collections service on every structural change.
type Folder struct {
	ID          string  `json:"id" db:"id"`
	UserID      string  `json:"user_id" db:"user_id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description,omitempty" db:"description"`
	ParentID    *string `json:"parent_id" db:"parent_id"` // NULL = root level

	// Path is the materialized ancestor chain, e.g. "/Work/Prompts".
	// Always equals parent.Path + "/" + Name ("/" + Name at root).
	Path string `json:"path" db:"path"`
	// Level is the depth from root; root folders are level 0.
	Level int `json:"level" db:"level"`

	Color     string `json:"color,omitempty" db:"color"`
	Icon      *string `json:"icon,omitempty" db:"icon"`
	SortOrder int     `json:"sort_order" db:"sort_order"`

	// AutoOrganize and OrganizationRules are consumed by the external
	// classification collaborator; stored opaquely here.
	AutoOrganize      bool           `json:"auto_organize" db:"auto_organize"`
	OrganizationRules map[string]any `json:"organization_rules,omitempty" db:"organization_rules"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ItemFolderLink assigns an item to a folder with an explicit position.
// The (ItemID, FolderID) pair is unique; Position carries ordering only
// (lower sorts first, values need not be contiguous).
type ItemFolderLink struct {
	ItemID    string    `json:"item_id" db:"item_id"`
	FolderID  string    `json:"folder_id" db:"folder_id"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FolderDetail is a folder together with its immediate surroundings:
// one level of children, the parent (nil at root), and the folder's items
// ordered by position.
type FolderDetail struct {
	Folder     *Folder      `json:"folder"`
	Parent     *Folder      `json:"parent,omitempty"`
	Children   []Folder     `json:"children"`
	Items      []LinkedItem `json:"items"`
	ChildCount int          `json:"child_count"`
	ItemCount  int          `json:"item_count"`
}

// LinkedItem is a context item as it appears inside a folder listing,
// carrying its position in that folder.
type LinkedItem struct {
	ContextItem
	Position int `json:"position"`
}

// FolderItem pairs a linked item with the folder holding it, used when
// loading a whole tree's memberships in one query.
type FolderItem struct {
	FolderID string
	Item     LinkedItem
}

// FolderTreeNode is a folder with its children nested, used by the
// tree endpoint.
type FolderTreeNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	ParentID  *string           `json:"parent_id"`
	Path      string            `json:"path"`
	Level     int               `json:"level"`
	Color     string            `json:"color,omitempty"`
	Icon      *string           `json:"icon,omitempty"`
	SortOrder int               `json:"sort_order"`
	Folders   []*FolderTreeNode `json:"folders"`
	Items     []LinkedItem      `json:"items"`
}

// Tree is the root of a user's folder tree.
type Tree struct {
	Folders []*FolderTreeNode `json:"folders"`
}
