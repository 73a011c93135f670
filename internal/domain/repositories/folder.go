package repositories

import (
	"context"

	"contexthub/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
// Every operation is scoped to a user; a folder owned by someone else is
// indistinguishable from a missing one.
type FolderRepository interface {
	// Create persists a new folder with its precomputed path and level
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID for the given user
	GetByID(ctx context.Context, id, userID string) (*models.Folder, error)

	// Update persists name, parent, path, level and attribute changes
	Update(ctx context.Context, folder *models.Folder) error

	// UpdatePathLevel rewrites only the materialized path and level,
	// used by descendant propagation
	UpdatePathLevel(ctx context.Context, id, userID, path string, level int) error

	// Delete removes a single folder row (no cascade)
	Delete(ctx context.Context, id, userID string) error

	// ListChildren lists immediate child folders; nil parentID means root
	ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error)

	// FindSibling finds a folder with the given name under parentID,
	// excluding excludeID (pass "" to exclude nothing). Returns nil, nil
	// when no sibling matches.
	FindSibling(ctx context.Context, userID string, parentID *string, name, excludeID string) (*models.Folder, error)

	// ListByPathPrefix lists folders whose path starts with prefix,
	// i.e. the strict descendants of the folder whose path is prefix
	// minus the trailing separator
	ListByPathPrefix(ctx context.Context, userID, prefix string) ([]models.Folder, error)

	// ListAll lists every folder owned by the user
	ListAll(ctx context.Context, userID string) ([]models.Folder, error)
}
