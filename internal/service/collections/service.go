package collections

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"contexthub/internal/config"
	"contexthub/internal/domain"
	"contexthub/internal/domain/models"
	"contexthub/internal/domain/repositories"
	"contexthub/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// folderNamePattern rejects path separators inside a single name segment
var folderNamePattern = regexp.MustCompile(`^[^/]+$`)

type folderService struct {
	folders    repositories.FolderRepository
	items      repositories.ItemRepository
	links      repositories.LinkRepository
	linkMgr    *LinkManager
	guard      *CycleGuard
	propagator *PathPropagator
	txManager  repositories.TransactionManager
	events     services.FolderEvents
	logger     *slog.Logger
}

// NewFolderService creates the folder orchestrator. It sequences cycle
// checks, store mutations, descendant propagation and link operations, and
// publishes structural events after successful mutations.
func NewFolderService(
	folders repositories.FolderRepository,
	items repositories.ItemRepository,
	links repositories.LinkRepository,
	txManager repositories.TransactionManager,
	events services.FolderEvents,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		folders:    folders,
		items:      items,
		links:      links,
		linkMgr:    NewLinkManager(folders, items, links, txManager, logger),
		guard:      NewCycleGuard(folders),
		propagator: NewPathPropagator(folders, logger),
		txManager:  txManager,
		events:     events,
		logger:     logger,
	}
}

// CreateFolder creates a new folder under the resolved parent, computing
// path and level at creation time.
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Resolve parent; a parent owned by someone else is indistinguishable
	// from a missing one
	var parent *models.Folder
	if req.ParentID != nil {
		var err error
		parent, err = s.folders.GetByID(ctx, *req.ParentID, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	// Check for duplicate name among siblings
	sibling, err := s.folders.FindSibling(ctx, req.UserID, req.ParentID, req.Name, "")
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	if sibling != nil {
		return nil, &domain.ConflictError{
			Message:      fmt.Sprintf("a folder named %q already exists in this location", req.Name),
			ResourceType: "folder",
			ResourceID:   sibling.ID,
		}
	}

	path := PathFor(parent, req.Name)
	if len(path) > config.MaxFolderPathLength {
		return nil, fmt.Errorf("%w: folder path exceeds %d characters", domain.ErrValidation, config.MaxFolderPathLength)
	}

	now := time.Now()
	folder := &models.Folder{
		UserID:            req.UserID,
		Name:              req.Name,
		Description:       req.Description,
		ParentID:          req.ParentID,
		Path:              path,
		Level:             LevelFor(parent),
		Color:             req.Color,
		Icon:              req.Icon,
		SortOrder:         req.SortOrder,
		AutoOrganize:      req.AutoOrganize,
		OrganizationRules: req.OrganizationRules,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.events.FolderCreated(ctx, services.FolderEvent{
		UserID:   folder.UserID,
		FolderID: folder.ID,
		NewPath:  folder.Path,
	})

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"path", folder.Path,
		"level", folder.Level,
	)

	return folder, nil
}

// GetFolder retrieves a folder with one level of children, its parent, and
// its items ordered by position.
func (s *folderService) GetFolder(ctx context.Context, userID, folderID string) (*models.FolderDetail, error) {
	folder, err := s.folders.GetByID(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	var parent *models.Folder
	if folder.ParentID != nil {
		parent, err = s.folders.GetByID(ctx, *folder.ParentID, userID)
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
	}

	children, err := s.folders.ListChildren(ctx, userID, &folder.ID)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	items, err := s.items.ListByFolder(ctx, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	return &models.FolderDetail{
		Folder:     folder,
		Parent:     parent,
		Children:   children,
		Items:      items,
		ChildCount: len(children),
		ItemCount:  len(items),
	}, nil
}

// UpdateFolder renames and/or moves a folder. When the resulting path
// differs from the prior one, every descendant is rebased inside the same
// transaction as the folder's own update.
func (s *folderService) UpdateFolder(ctx context.Context, userID, folderID string, req *services.UpdateFolderRequest) (*models.Folder, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.folders.GetByID(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	oldPath := folder.Path
	oldName := folder.Name

	if req.Name != nil {
		folder.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		folder.Description = *req.Description
	}
	if req.Color != nil {
		folder.Color = *req.Color
	}
	if req.Icon != nil {
		folder.Icon = req.Icon
	}
	if req.SortOrder != nil {
		folder.SortOrder = *req.SortOrder
	}
	if req.AutoOrganize != nil {
		folder.AutoOrganize = *req.AutoOrganize
	}
	if req.OrganizationRules != nil {
		folder.OrganizationRules = req.OrganizationRules
	}

	// Tri-state parent: absent = keep, null = move to root, value = move
	parentChanged := false
	if req.ParentID.Present {
		newParentID := req.ParentID.Value
		if newParentID != nil && *newParentID == "" {
			newParentID = nil
		}

		if !sameParent(folder.ParentID, newParentID) {
			if newParentID != nil {
				cycle, err := s.guard.WouldCreateCycle(ctx, userID, *newParentID, folder.ID)
				if err != nil {
					return nil, err
				}
				if cycle {
					return nil, fmt.Errorf("cannot move folder under itself or its own descendant: %w", domain.ErrCycle)
				}
			}
			folder.ParentID = newParentID
			parentChanged = true
		}
	}

	// Resolve the effective parent and recompute path/level from it
	var parent *models.Folder
	if folder.ParentID != nil {
		parent, err = s.folders.GetByID(ctx, *folder.ParentID, userID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}
	folder.Path = PathFor(parent, folder.Name)
	folder.Level = LevelFor(parent)
	if len(folder.Path) > config.MaxFolderPathLength {
		return nil, fmt.Errorf("%w: folder path exceeds %d characters", domain.ErrValidation, config.MaxFolderPathLength)
	}

	// Check sibling-name uniqueness at the destination
	if folder.Name != oldName || parentChanged {
		sibling, err := s.folders.FindSibling(ctx, userID, folder.ParentID, folder.Name, folder.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate names: %w", err)
		}
		if sibling != nil {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}

	folder.UpdatedAt = time.Now()

	// The folder's own update and the descendant rebase commit or roll
	// back together; no descendant can be left half-updated
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.folders.Update(txCtx, folder); err != nil {
			return err
		}
		if folder.Path != oldPath {
			return s.propagator.Propagate(txCtx, userID, oldPath, folder.Path, folder.Level)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if folder.Path != oldPath {
		s.events.FolderMoved(ctx, services.FolderEvent{
			UserID:   userID,
			FolderID: folder.ID,
			OldPath:  oldPath,
			NewPath:  folder.Path,
		})
	}

	s.logger.Info("folder updated",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"path", folder.Path,
	)

	return folder, nil
}

// DeleteFolder deletes a folder. Non-empty folders are rejected unless
// force is set, in which case descendants and their item links are removed
// bottom-up inside one transaction.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string, force bool) error {
	folder, err := s.folders.GetByID(ctx, folderID, userID)
	if err != nil {
		return err
	}

	children, err := s.folders.ListChildren(ctx, userID, &folder.ID)
	if err != nil {
		return fmt.Errorf("list children: %w", err)
	}
	itemCount, err := s.links.CountByFolder(ctx, folder.ID)
	if err != nil {
		return err
	}

	if (len(children) > 0 || itemCount > 0) && !force {
		return &domain.FolderNotEmptyError{
			FolderID:    folder.ID,
			HasChildren: len(children) > 0,
			HasItems:    itemCount > 0,
		}
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.deleteSubtree(txCtx, userID, folder.ID)
	})
	if err != nil {
		return err
	}

	s.events.FolderDeleted(ctx, services.FolderEvent{
		UserID:   userID,
		FolderID: folder.ID,
		OldPath:  folder.Path,
	})

	s.logger.Info("folder deleted",
		"id", folder.ID,
		"name", folder.Name,
		"path", folder.Path,
		"forced", force,
	)

	return nil
}

// deleteSubtree removes a folder and everything beneath it: links first,
// then folders leaf-to-root. Explicit recursion keeps the cascade testable
// and portable instead of leaning on storage-engine delete cascades.
func (s *folderService) deleteSubtree(ctx context.Context, userID, folderID string) error {
	children, err := s.folders.ListChildren(ctx, userID, &folderID)
	if err != nil {
		return fmt.Errorf("list children: %w", err)
	}

	for _, child := range children {
		if err := s.deleteSubtree(ctx, userID, child.ID); err != nil {
			return err
		}
	}

	if _, err := s.links.DeleteByFolder(ctx, folderID); err != nil {
		return err
	}

	return s.folders.Delete(ctx, folderID, userID)
}

// ListChildren lists immediate child folders; nil parentID lists roots
func (s *folderService) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	if parentID != nil {
		// Listing under a folder requires it to exist and be owned
		if _, err := s.folders.GetByID(ctx, *parentID, userID); err != nil {
			return nil, err
		}
	}
	return s.folders.ListChildren(ctx, userID, parentID)
}

// AddItems links items into the folder with sequential positions
func (s *folderService) AddItems(ctx context.Context, userID, folderID string, req *services.AddItemsRequest) (int, error) {
	if err := validateItemBatch(req.ItemIDs); err != nil {
		return 0, err
	}
	return s.linkMgr.AddItems(ctx, userID, folderID, req.ItemIDs, req.Position)
}

// ApplyItemAction dispatches a tagged item action. The switch is
// exhaustive over the ItemAction variants; an unknown variant is a
// programming error surfaced as a validation failure.
func (s *folderService) ApplyItemAction(ctx context.Context, userID, folderID string, action services.ItemAction) (int, error) {
	switch a := action.(type) {
	case services.MoveItems:
		if err := validateItemBatch(a.ItemIDs); err != nil {
			return 0, err
		}
		return s.linkMgr.MoveItems(ctx, userID, folderID, a)
	case services.ReorderItems:
		if len(a.Positions) == 0 || len(a.Positions) > config.MaxBatchItems {
			return 0, fmt.Errorf("%w: item positions must contain between 1 and %d entries", domain.ErrValidation, config.MaxBatchItems)
		}
		return s.linkMgr.ReorderItems(ctx, userID, folderID, a.Positions)
	default:
		return 0, fmt.Errorf("%w: unsupported item action %T", domain.ErrValidation, action)
	}
}

// RemoveItems unlinks items from the folder
func (s *folderService) RemoveItems(ctx context.Context, userID, folderID string, itemIDs []string) (int, error) {
	if err := validateItemBatch(itemIDs); err != nil {
		return 0, err
	}
	return s.linkMgr.RemoveItems(ctx, userID, folderID, itemIDs)
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
		validation.Field(&req.Description,
			validation.Length(0, config.MaxFolderDescriptionLength),
		),
	)
}

// validateUpdateRequest validates a folder update request
func (s *folderService) validateUpdateRequest(req *services.UpdateFolderRequest) error {
	// At least one field must be provided
	if req.Name == nil && req.Description == nil && !req.ParentID.Present &&
		req.Color == nil && req.Icon == nil && req.SortOrder == nil &&
		req.AutoOrganize == nil && req.OrganizationRules == nil {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules

	if req.Name != nil {
		rules = append(rules,
			validation.Field(&req.Name,
				validation.Required,
				validation.Length(1, config.MaxFolderNameLength),
				validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
			),
		)
	}
	if req.Description != nil {
		rules = append(rules,
			validation.Field(&req.Description,
				validation.Length(0, config.MaxFolderDescriptionLength),
			),
		)
	}

	return validation.ValidateStruct(req, rules...)
}

// validateItemBatch bounds a batch of item ids
func validateItemBatch(itemIDs []string) error {
	if len(itemIDs) == 0 {
		return fmt.Errorf("%w: item_ids must not be empty", domain.ErrValidation)
	}
	if len(itemIDs) > config.MaxBatchItems {
		return fmt.Errorf("%w: at most %d items per request", domain.ErrValidation, config.MaxBatchItems)
	}
	return nil
}

// sameParent compares two nullable parent ids
func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
