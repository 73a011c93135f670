package collections

import (
	"context"
	"fmt"

	"contexthub/internal/config"
	"contexthub/internal/domain/repositories"
)

// CycleGuard verifies that a proposed re-parenting does not make a folder
// its own ancestor.
type CycleGuard struct {
	folders repositories.FolderRepository
}

// NewCycleGuard creates a new cycle guard
func NewCycleGuard(folders repositories.FolderRepository) *CycleGuard {
	return &CycleGuard{folders: folders}
}

// WouldCreateCycle walks up from candidateParentID through successive
// parents. It reports true the moment the walked id equals folderID
// (including self-parenting), false once a root is reached.
//
// The walk is bounded by config.MaxFolderDepth so a corrupted store with a
// pre-existing cycle cannot hang the request; exceeding the bound is
// reported as a cycle.
func (g *CycleGuard) WouldCreateCycle(ctx context.Context, userID, candidateParentID, folderID string) (bool, error) {
	currentID := candidateParentID

	for i := 0; i < config.MaxFolderDepth; i++ {
		if currentID == folderID {
			return true, nil
		}

		folder, err := g.folders.GetByID(ctx, currentID, userID)
		if err != nil {
			return false, fmt.Errorf("walk parent chain: %w", err)
		}

		if folder.ParentID == nil {
			// Reached root, no cycle
			return false, nil
		}
		currentID = *folder.ParentID
	}

	return true, nil
}
