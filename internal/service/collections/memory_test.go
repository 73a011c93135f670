package collections

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"contexthub/internal/domain"
	"contexthub/internal/domain/models"
	"contexthub/internal/domain/repositories"
	"contexthub/internal/domain/services"
)

// memStore is an in-memory implementation of the folder, item and link
// repositories, shared by the tests in this package.
type memStore struct {
	folders map[string]*models.Folder
	items   map[string]*models.ContextItem
	links   map[string]*models.ItemFolderLink // key: itemID + "|" + folderID
	nextID  int

	// failPathUpdateAt makes the Nth UpdatePathLevel call fail (1-based,
	// 0 = disabled), for simulating a mid-propagation crash
	failPathUpdateAt int
	pathUpdateCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		folders: make(map[string]*models.Folder),
		items:   make(map[string]*models.ContextItem),
		links:   make(map[string]*models.ItemFolderLink),
	}
}

func linkKey(itemID, folderID string) string {
	return itemID + "|" + folderID
}

func copyFolder(f *models.Folder) *models.Folder {
	c := *f
	return &c
}

func (s *memStore) addItem(userID, name string) string {
	s.nextID++
	id := "item-" + strconv.Itoa(s.nextID)
	s.items[id] = &models.ContextItem{
		ID:        id,
		UserID:    userID,
		Name:      name,
		Kind:      models.ItemKindPrompt,
		CreatedAt: time.Now(),
	}
	return id
}

// FolderRepository

func (s *memStore) Create(ctx context.Context, folder *models.Folder) error {
	s.nextID++
	folder.ID = "folder-" + strconv.Itoa(s.nextID)
	s.folders[folder.ID] = copyFolder(folder)
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	f, ok := s.folders[id]
	if !ok || f.UserID != userID {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return copyFolder(f), nil
}

func (s *memStore) Update(ctx context.Context, folder *models.Folder) error {
	f, ok := s.folders[folder.ID]
	if !ok || f.UserID != folder.UserID {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}
	s.folders[folder.ID] = copyFolder(folder)
	return nil
}

func (s *memStore) UpdatePathLevel(ctx context.Context, id, userID, path string, level int) error {
	s.pathUpdateCalls++
	if s.failPathUpdateAt > 0 && s.pathUpdateCalls == s.failPathUpdateAt {
		return fmt.Errorf("simulated storage failure")
	}
	f, ok := s.folders[id]
	if !ok || f.UserID != userID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.Path = path
	f.Level = level
	return nil
}

func (s *memStore) Delete(ctx context.Context, id, userID string) error {
	f, ok := s.folders[id]
	if !ok || f.UserID != userID {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	delete(s.folders, id)
	return nil
}

func (s *memStore) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range s.folders {
		if f.UserID != userID {
			continue
		}
		if parentID == nil && f.ParentID == nil {
			out = append(out, *f)
		} else if parentID != nil && f.ParentID != nil && *f.ParentID == *parentID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *memStore) FindSibling(ctx context.Context, userID string, parentID *string, name, excludeID string) (*models.Folder, error) {
	siblings, _ := s.ListChildren(ctx, userID, parentID)
	for i := range siblings {
		if siblings[i].Name == name && siblings[i].ID != excludeID {
			return copyFolder(&siblings[i]), nil
		}
	}
	return nil, nil
}

func (s *memStore) ListByPathPrefix(ctx context.Context, userID, prefix string) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range s.folders {
		if f.UserID == userID && strings.HasPrefix(f.Path, prefix) {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return out[i].Level < out[j].Level
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func (s *memStore) ListAll(ctx context.Context, userID string) ([]models.Folder, error) {
	return s.ListByPathPrefix(ctx, userID, "/")
}

// ItemRepository

func (s *memStore) ListOwnedIDs(ctx context.Context, userID string, ids []string) ([]string, error) {
	var owned []string
	for _, id := range ids {
		if item, ok := s.items[id]; ok && item.UserID == userID {
			owned = append(owned, id)
		}
	}
	return owned, nil
}

func (s *memStore) ListByFolder(ctx context.Context, folderID string) ([]models.LinkedItem, error) {
	var out []models.LinkedItem
	for _, l := range s.links {
		if l.FolderID != folderID {
			continue
		}
		item := s.items[l.ItemID]
		out = append(out, models.LinkedItem{ContextItem: *item, Position: l.Position})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) ListLinked(ctx context.Context, userID string) ([]models.FolderItem, error) {
	var out []models.FolderItem
	for _, l := range s.links {
		item, ok := s.items[l.ItemID]
		if !ok || item.UserID != userID {
			continue
		}
		out = append(out, models.FolderItem{
			FolderID: l.FolderID,
			Item:     models.LinkedItem{ContextItem: *item, Position: l.Position},
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FolderID != out[j].FolderID {
			return out[i].FolderID < out[j].FolderID
		}
		return out[i].Item.Position < out[j].Item.Position
	})
	return out, nil
}

// LinkRepository

func (s *memStore) Upsert(ctx context.Context, link *models.ItemFolderLink) error {
	key := linkKey(link.ItemID, link.FolderID)
	if existing, ok := s.links[key]; ok {
		existing.Position = link.Position
		return nil
	}
	c := *link
	s.links[key] = &c
	return nil
}

func (s *memStore) MaxPosition(ctx context.Context, folderID string) (int, error) {
	max := 0
	for _, l := range s.links {
		if l.FolderID == folderID && l.Position > max {
			max = l.Position
		}
	}
	return max, nil
}

func (s *memStore) MoveToFolder(ctx context.Context, sourceFolderID, targetFolderID string, itemIDs []string, position int) (int64, error) {
	var moved int64
	for _, itemID := range itemIDs {
		key := linkKey(itemID, sourceFolderID)
		l, ok := s.links[key]
		if !ok {
			continue
		}
		delete(s.links, key)
		l.FolderID = targetFolderID
		l.Position = position
		s.links[linkKey(itemID, targetFolderID)] = l
		moved++
	}
	return moved, nil
}

func (s *memStore) UpdatePosition(ctx context.Context, folderID, itemID string, position int) (int64, error) {
	l, ok := s.links[linkKey(itemID, folderID)]
	if !ok {
		return 0, nil
	}
	l.Position = position
	return 1, nil
}

func (s *memStore) DeleteByItems(ctx context.Context, folderID string, itemIDs []string) (int64, error) {
	var deleted int64
	for _, itemID := range itemIDs {
		key := linkKey(itemID, folderID)
		if _, ok := s.links[key]; ok {
			delete(s.links, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memStore) DeleteByFolder(ctx context.Context, folderID string) (int64, error) {
	var deleted int64
	for key, l := range s.links {
		if l.FolderID == folderID {
			delete(s.links, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *memStore) CountByFolder(ctx context.Context, folderID string) (int, error) {
	count := 0
	for _, l := range s.links {
		if l.FolderID == folderID {
			count++
		}
	}
	return count, nil
}

// snapshot and restore implement transaction semantics for the fake

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for id, f := range s.folders {
		snap.folders[id] = copyFolder(f)
	}
	for id, i := range s.items {
		c := *i
		snap.items[id] = &c
	}
	for key, l := range s.links {
		c := *l
		snap.links[key] = &c
	}
	snap.nextID = s.nextID
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.folders = snap.folders
	s.items = snap.items
	s.links = snap.links
	s.nextID = snap.nextID
}

// memTxManager rolls the store back to its pre-transaction state when the
// wrapped function fails, mirroring the real transaction manager.
type memTxManager struct {
	store *memStore
}

func (m *memTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a folder service over a fresh in-memory store
func newTestService() (services.FolderService, *memStore) {
	store := newMemStore()
	tx := &memTxManager{store: store}
	logger := testLogger()
	svc := NewFolderService(store, store, store, tx, NewLogEvents(logger), logger)
	return svc, store
}
