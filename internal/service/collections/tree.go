package collections

import (
	"context"
	"log/slog"

	"contexthub/internal/domain/models"
	"contexthub/internal/domain/repositories"
	"contexthub/internal/domain/services"
)

// treeService implements the TreeService interface
type treeService struct {
	folders repositories.FolderRepository
	items   repositories.ItemRepository
	logger  *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folders repositories.FolderRepository,
	items repositories.ItemRepository,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		folders: folders,
		items:   items,
		logger:  logger,
	}
}

// GetTree builds the user's full nested folder tree with items attached,
// using a 3-pass assembly over two flat queries.
func (s *treeService) GetTree(ctx context.Context, userID string) (*models.Tree, error) {
	allFolders, err := s.folders.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	linked, err := s.items.ListLinked(ctx, userID)
	if err != nil {
		return nil, err
	}

	// First pass: create all folder nodes
	nodeMap := make(map[string]*models.FolderTreeNode, len(allFolders))
	var rootIDs []string
	for _, folder := range allFolders {
		nodeMap[folder.ID] = &models.FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			Path:      folder.Path,
			Level:     folder.Level,
			Color:     folder.Color,
			Icon:      folder.Icon,
			SortOrder: folder.SortOrder,
			Folders:   []*models.FolderTreeNode{},
			Items:     []models.LinkedItem{},
		}
	}

	// Second pass: nest folders by connecting children to parents
	for _, folder := range allFolders {
		node := nodeMap[folder.ID]
		if folder.ParentID == nil {
			rootIDs = append(rootIDs, folder.ID)
		} else if parent, exists := nodeMap[*folder.ParentID]; exists {
			parent.Folders = append(parent.Folders, node)
		}
	}

	// Third pass: attach items to their folders
	for _, fi := range linked {
		if node, exists := nodeMap[fi.FolderID]; exists {
			node.Items = append(node.Items, fi.Item)
		}
	}

	roots := make([]*models.FolderTreeNode, 0, len(rootIDs))
	for _, id := range rootIDs {
		roots = append(roots, nodeMap[id])
	}

	s.logger.Debug("folder tree built",
		"user_id", userID,
		"folder_count", len(allFolders),
		"item_link_count", len(linked),
	)

	return &models.Tree{Folders: roots}, nil
}
