package collections

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"contexthub/internal/domain"
	"contexthub/internal/domain/models"
	"contexthub/internal/domain/repositories"
	"contexthub/internal/domain/services"
)

// LinkManager owns the many-to-many assignment of items to folders with
// per-folder explicit ordering. It is the sole mutator of item-folder
// links.
type LinkManager struct {
	folders   repositories.FolderRepository
	items     repositories.ItemRepository
	links     repositories.LinkRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewLinkManager creates a new link manager
func NewLinkManager(
	folders repositories.FolderRepository,
	items repositories.ItemRepository,
	links repositories.LinkRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) *LinkManager {
	return &LinkManager{
		folders:   folders,
		items:     items,
		links:     links,
		txManager: txManager,
		logger:    logger,
	}
}

// AddItems links a batch of items into a folder. Positions are assigned
// sequentially from the explicit base position, or from max+1 when none is
// given (an empty folder's max counts as 0, so the first item lands at 1).
// The whole batch is rejected when any item is missing or foreign; partial
// application is not allowed. Re-adding an item already in the folder
// updates its position instead of creating a second link.
func (m *LinkManager) AddItems(ctx context.Context, userID, folderID string, itemIDs []string, position *int) (int, error) {
	if _, err := m.folders.GetByID(ctx, folderID, userID); err != nil {
		return 0, err
	}

	if err := m.verifyItemsOwned(ctx, userID, itemIDs); err != nil {
		return 0, err
	}

	base := 0
	if position != nil {
		base = *position
	} else {
		max, err := m.links.MaxPosition(ctx, folderID)
		if err != nil {
			return 0, err
		}
		base = max + 1
	}

	err := m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		now := time.Now()
		for i, itemID := range itemIDs {
			link := &models.ItemFolderLink{
				ItemID:    itemID,
				FolderID:  folderID,
				Position:  base + i,
				CreatedAt: now,
			}
			if err := m.links.Upsert(txCtx, link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("items added to folder",
		"folder_id", folderID,
		"count", len(itemIDs),
		"base_position", base,
	)

	return len(itemIDs), nil
}

// MoveItems repoints links for the given items from the source folder to
// the target. Every moved link receives the same supplied position (0 when
// omitted); items without a link under the source are silently skipped and
// the returned count reflects only actually-moved links.
func (m *LinkManager) MoveItems(ctx context.Context, userID, sourceFolderID string, req services.MoveItems) (int, error) {
	if _, err := m.folders.GetByID(ctx, sourceFolderID, userID); err != nil {
		return 0, err
	}
	if _, err := m.folders.GetByID(ctx, req.TargetFolderID, userID); err != nil {
		return 0, err
	}

	moved, err := m.links.MoveToFolder(ctx, sourceFolderID, req.TargetFolderID, req.ItemIDs, req.Position)
	if err != nil {
		return 0, err
	}

	m.logger.Info("items moved between folders",
		"source_folder_id", sourceFolderID,
		"target_folder_id", req.TargetFolderID,
		"requested", len(req.ItemIDs),
		"moved", moved,
	)

	return int(moved), nil
}

// ReorderItems updates the position of each listed item within the folder.
// Each update is independent and idempotent; the count of positions
// actually updated is returned.
func (m *LinkManager) ReorderItems(ctx context.Context, userID, folderID string, positions []services.ItemPosition) (int, error) {
	if _, err := m.folders.GetByID(ctx, folderID, userID); err != nil {
		return 0, err
	}

	var updated int64
	err := m.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		for _, p := range positions {
			n, err := m.links.UpdatePosition(txCtx, folderID, p.ItemID, p.Position)
			if err != nil {
				return err
			}
			updated += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return int(updated), nil
}

// RemoveItems deletes the matching links from the folder. Items that were
// not linked are not an error; the count actually deleted is returned.
func (m *LinkManager) RemoveItems(ctx context.Context, userID, folderID string, itemIDs []string) (int, error) {
	if _, err := m.folders.GetByID(ctx, folderID, userID); err != nil {
		return 0, err
	}

	removed, err := m.links.DeleteByItems(ctx, folderID, itemIDs)
	if err != nil {
		return 0, err
	}

	m.logger.Info("items removed from folder",
		"folder_id", folderID,
		"requested", len(itemIDs),
		"removed", removed,
	)

	return int(removed), nil
}

// verifyItemsOwned rejects the batch when any id is missing or belongs to
// another user. The two cases are indistinguishable to the caller.
func (m *LinkManager) verifyItemsOwned(ctx context.Context, userID string, itemIDs []string) error {
	owned, err := m.items.ListOwnedIDs(ctx, userID, itemIDs)
	if err != nil {
		return err
	}

	ownedSet := make(map[string]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	var missing []string
	for _, id := range itemIDs {
		if _, ok := ownedSet[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		return &domain.NotFoundError{
			Message: fmt.Sprintf("some items not found: %s", strings.Join(missing, ", ")),
		}
	}

	return nil
}
