package collections

import (
	"context"
	"errors"
	"testing"

	"contexthub/internal/domain"
	"contexthub/internal/domain/services"
	"contexthub/internal/httputil"
)

func strPtr(s string) *string { return &s }

func keepParent() httputil.OptionalString {
	return httputil.OptionalString{}
}

func setParent(id string) httputil.OptionalString {
	return httputil.OptionalString{Present: true, Value: &id}
}

func clearParent() httputil.OptionalString {
	return httputil.OptionalString{Present: true, Value: nil}
}

func TestCreateFolder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	root := createFolder(t, svc, "Work", nil)
	if root.Path != "/Work" || root.Level != 0 {
		t.Errorf("root folder path/level = %q/%d, want /Work/0", root.Path, root.Level)
	}

	child := createFolder(t, svc, "Prompts", &root.ID)
	if child.Path != "/Work/Prompts" || child.Level != 1 {
		t.Errorf("child folder path/level = %q/%d, want /Work/Prompts/1", child.Path, child.Level)
	}

	// Empty-string parent is normalized to root level
	viaEmpty, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
		UserID:   testUserID,
		Name:     "Inbox",
		ParentID: strPtr(""),
	})
	if err != nil {
		t.Fatalf("CreateFolder() error: %v", err)
	}
	if viaEmpty.ParentID != nil || viaEmpty.Path != "/Inbox" {
		t.Errorf("empty parent_id not normalized: parent=%v path=%q", viaEmpty.ParentID, viaEmpty.Path)
	}
}

func TestCreateFolderValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  *services.CreateFolderRequest
	}{
		{"empty name", &services.CreateFolderRequest{UserID: testUserID, Name: ""}},
		{"whitespace name", &services.CreateFolderRequest{UserID: testUserID, Name: "   "}},
		{"name with slash", &services.CreateFolderRequest{UserID: testUserID, Name: "a/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFolder(ctx, tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("CreateFolder() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCreateFolderMissingParent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateFolder(context.Background(), &services.CreateFolderRequest{
		UserID:   testUserID,
		Name:     "Orphan",
		ParentID: strPtr("no-such-folder"),
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("CreateFolder() error = %v, want ErrNotFound", err)
	}
}

func TestCreateFolderSiblingConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	root := createFolder(t, svc, "Work", nil)
	createFolder(t, svc, "Prompts", &root.ID)

	_, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
		UserID:   testUserID,
		Name:     "Prompts",
		ParentID: &root.ID,
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate sibling error = %v, want ErrConflict", err)
	}

	// Same name under a different parent is allowed
	other := createFolder(t, svc, "Personal", nil)
	if _, err := svc.CreateFolder(ctx, &services.CreateFolderRequest{
		UserID:   testUserID,
		Name:     "Prompts",
		ParentID: &other.ID,
	}); err != nil {
		t.Errorf("same name under different parent rejected: %v", err)
	}
}

func TestGetFolderDetail(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	root := createFolder(t, svc, "Work", nil)
	child := createFolder(t, svc, "Prompts", &root.ID)
	createFolder(t, svc, "Agents", &root.ID)

	item := store.addItem(testUserID, "one")
	if _, err := svc.AddItems(ctx, testUserID, child.ID, &services.AddItemsRequest{ItemIDs: []string{item}}); err != nil {
		t.Fatalf("AddItems() error: %v", err)
	}

	detail, err := svc.GetFolder(ctx, testUserID, root.ID)
	if err != nil {
		t.Fatalf("GetFolder() error: %v", err)
	}
	if detail.Parent != nil {
		t.Errorf("root folder parent = %v, want nil", detail.Parent)
	}
	if detail.ChildCount != 2 {
		t.Errorf("child count = %d, want 2", detail.ChildCount)
	}
	if detail.ItemCount != 0 {
		t.Errorf("item count = %d, want 0 (items live on the child)", detail.ItemCount)
	}

	childDetail, err := svc.GetFolder(ctx, testUserID, child.ID)
	if err != nil {
		t.Fatalf("GetFolder() error: %v", err)
	}
	if childDetail.Parent == nil || childDetail.Parent.ID != root.ID {
		t.Error("child detail is missing its parent")
	}
	if childDetail.ItemCount != 1 {
		t.Errorf("child item count = %d, want 1", childDetail.ItemCount)
	}
}

func TestGetFolderOwnerScoped(t *testing.T) {
	svc, _ := newTestService()

	folder := createFolder(t, svc, "Work", nil)

	// Another user's id: not-owned is indistinguishable from not-found
	_, err := svc.GetFolder(context.Background(), "00000000-0000-0000-0000-000000000002", folder.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("foreign folder error = %v, want ErrNotFound", err)
	}
}

func TestUpdateFolderRenamePropagates(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	a := createFolder(t, svc, "A", nil)
	b := createFolder(t, svc, "B", &a.ID)
	c := createFolder(t, svc, "C", &b.ID)

	updated, err := svc.UpdateFolder(ctx, testUserID, a.ID, &services.UpdateFolderRequest{Name: strPtr("Z")})
	if err != nil {
		t.Fatalf("UpdateFolder() error: %v", err)
	}
	if updated.Path != "/Z" || updated.Level != 0 {
		t.Errorf("renamed folder path/level = %q/%d, want /Z/0", updated.Path, updated.Level)
	}

	wantPaths := map[string]struct {
		path  string
		level int
	}{
		b.ID: {"/Z/B", 1},
		c.ID: {"/Z/B/C", 2},
	}
	for id, want := range wantPaths {
		got := store.folders[id]
		if got.Path != want.path || got.Level != want.level {
			t.Errorf("descendant %s path/level = %q/%d, want %q/%d", id, got.Path, got.Level, want.path, want.level)
		}
	}
}

// Folder names may contain pattern metacharacters (backslash, percent,
// underscore); descendants of such folders must still be rebased.
func TestUpdateFolderRenamePropagatesSpecialNames(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	root := createFolder(t, svc, "Work", nil)
	wild := createFolder(t, svc, `C:\stuff`, &root.ID)
	pct := createFolder(t, svc, "100%_done", &wild.ID)

	if _, err := svc.UpdateFolder(ctx, testUserID, root.ID, &services.UpdateFolderRequest{Name: strPtr("Archive")}); err != nil {
		t.Fatalf("UpdateFolder() error: %v", err)
	}

	if got := store.folders[wild.ID].Path; got != `/Archive/C:\stuff` {
		t.Errorf("descendant path = %q, want %q", got, `/Archive/C:\stuff`)
	}
	if got := store.folders[pct.ID].Path; got != `/Archive/C:\stuff/100%_done` {
		t.Errorf("deep descendant path = %q, want %q", got, `/Archive/C:\stuff/100%_done`)
	}
	if got := store.folders[pct.ID].Level; got != 2 {
		t.Errorf("deep descendant level = %d, want 2", got)
	}
}

func TestUpdateFolderMoveSubtree(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	work := createFolder(t, svc, "Work", nil)
	prompts := createFolder(t, svc, "Prompts", &work.ID)
	deep := createFolder(t, svc, "Summaries", &prompts.ID)
	archive := createFolder(t, svc, "Archive", nil)

	moved, err := svc.UpdateFolder(ctx, testUserID, prompts.ID, &services.UpdateFolderRequest{
		ParentID: setParent(archive.ID),
	})
	if err != nil {
		t.Fatalf("UpdateFolder() error: %v", err)
	}
	if moved.Path != "/Archive/Prompts" || moved.Level != 1 {
		t.Errorf("moved folder path/level = %q/%d, want /Archive/Prompts/1", moved.Path, moved.Level)
	}

	got := store.folders[deep.ID]
	if got.Path != "/Archive/Prompts/Summaries" || got.Level != 2 {
		t.Errorf("descendant path/level = %q/%d, want /Archive/Prompts/Summaries/2", got.Path, got.Level)
	}
}

func TestUpdateFolderMoveToRoot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	work := createFolder(t, svc, "Work", nil)
	prompts := createFolder(t, svc, "Prompts", &work.ID)

	moved, err := svc.UpdateFolder(ctx, testUserID, prompts.ID, &services.UpdateFolderRequest{
		ParentID: clearParent(),
	})
	if err != nil {
		t.Fatalf("UpdateFolder() error: %v", err)
	}
	if moved.ParentID != nil || moved.Path != "/Prompts" || moved.Level != 0 {
		t.Errorf("folder after move to root = parent %v path %q level %d", moved.ParentID, moved.Path, moved.Level)
	}
}

func TestUpdateFolderAbsentParentKeepsPlacement(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	work := createFolder(t, svc, "Work", nil)
	prompts := createFolder(t, svc, "Prompts", &work.ID)

	updated, err := svc.UpdateFolder(ctx, testUserID, prompts.ID, &services.UpdateFolderRequest{
		Description: strPtr("prompt library"),
		ParentID:    keepParent(),
	})
	if err != nil {
		t.Fatalf("UpdateFolder() error: %v", err)
	}
	if updated.ParentID == nil || *updated.ParentID != work.ID {
		t.Error("absent parent_id changed the folder's placement")
	}
	if updated.Path != "/Work/Prompts" {
		t.Errorf("path = %q, want /Work/Prompts", updated.Path)
	}
	if updated.Description != "prompt library" {
		t.Errorf("description = %q, want %q", updated.Description, "prompt library")
	}
}

func TestUpdateFolderCycleRejected(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	a := createFolder(t, svc, "A", nil)
	b := createFolder(t, svc, "B", &a.ID)
	c := createFolder(t, svc, "C", &b.ID)

	tests := []struct {
		name   string
		folder string
		parent string
	}{
		{"under own child", a.ID, b.ID},
		{"under own grandchild", a.ID, c.ID},
		{"under itself", b.ID, b.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateFolder(ctx, testUserID, tt.folder, &services.UpdateFolderRequest{
				ParentID: setParent(tt.parent),
			})
			if !errors.Is(err, domain.ErrCycle) {
				t.Fatalf("UpdateFolder() error = %v, want ErrCycle", err)
			}
		})
	}

	// Nothing moved
	if got := store.folders[a.ID].Path; got != "/A" {
		t.Errorf("folder path after rejected moves = %q, want /A", got)
	}
}

func TestUpdateFolderSiblingConflictAtDestination(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	work := createFolder(t, svc, "Work", nil)
	createFolder(t, svc, "Prompts", &work.ID)
	loose := createFolder(t, svc, "Prompts", nil)

	_, err := svc.UpdateFolder(ctx, testUserID, loose.ID, &services.UpdateFolderRequest{
		ParentID: setParent(work.ID),
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("move onto taken name error = %v, want ErrConflict", err)
	}
}

func TestUpdateFolderNoFields(t *testing.T) {
	svc, _ := newTestService()
	folder := createFolder(t, svc, "Work", nil)

	_, err := svc.UpdateFolder(context.Background(), testUserID, folder.ID, &services.UpdateFolderRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty update error = %v, want ErrValidation", err)
	}
}

// A failure while rebasing descendants must roll back the folder's own
// update too; the tree is never left half-moved.
func TestUpdateFolderPropagationRollsBack(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	a := createFolder(t, svc, "A", nil)
	b := createFolder(t, svc, "B", &a.ID)
	c := createFolder(t, svc, "C", &b.ID)

	// Propagation rebases level-by-level: B first, then C. Fail on C.
	store.failPathUpdateAt = 2

	_, err := svc.UpdateFolder(ctx, testUserID, a.ID, &services.UpdateFolderRequest{Name: strPtr("Z")})
	if err == nil {
		t.Fatal("expected mid-propagation failure to surface, got nil")
	}

	wantPaths := map[string]string{a.ID: "/A", b.ID: "/A/B", c.ID: "/A/B/C"}
	for id, want := range wantPaths {
		if got := store.folders[id].Path; got != want {
			t.Errorf("folder %s path after rollback = %q, want %q", id, got, want)
		}
	}
	if got := store.folders[a.ID].Name; got != "A" {
		t.Errorf("folder name after rollback = %q, want A", got)
	}
}

func TestDeleteFolderGuards(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	parent := createFolder(t, svc, "Work", nil)
	createFolder(t, svc, "Prompts", &parent.ID)

	err := svc.DeleteFolder(ctx, testUserID, parent.ID, false)
	var notEmpty *domain.FolderNotEmptyError
	if !errors.As(err, &notEmpty) {
		t.Fatalf("DeleteFolder() error = %v, want FolderNotEmptyError", err)
	}
	if !notEmpty.HasChildren || notEmpty.HasItems {
		t.Errorf("FolderNotEmptyError = children:%v items:%v, want children only", notEmpty.HasChildren, notEmpty.HasItems)
	}
	if !errors.Is(err, domain.ErrConflict) {
		t.Error("FolderNotEmptyError does not match ErrConflict")
	}

	withItems := createFolder(t, svc, "Inbox", nil)
	item := store.addItem(testUserID, "one")
	if _, err := svc.AddItems(ctx, testUserID, withItems.ID, &services.AddItemsRequest{ItemIDs: []string{item}}); err != nil {
		t.Fatalf("AddItems() error: %v", err)
	}

	err = svc.DeleteFolder(ctx, testUserID, withItems.ID, false)
	if !errors.As(err, &notEmpty) {
		t.Fatalf("DeleteFolder() error = %v, want FolderNotEmptyError", err)
	}
	if notEmpty.HasChildren || !notEmpty.HasItems {
		t.Errorf("FolderNotEmptyError = children:%v items:%v, want items only", notEmpty.HasChildren, notEmpty.HasItems)
	}
}

func TestDeleteFolderEmptyWithoutForce(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	folder := createFolder(t, svc, "Scratch", nil)
	if err := svc.DeleteFolder(ctx, testUserID, folder.ID, false); err != nil {
		t.Fatalf("DeleteFolder() of empty folder error: %v", err)
	}
	if _, ok := store.folders[folder.ID]; ok {
		t.Error("empty folder still present after delete")
	}
}

func TestDeleteFolderForceCascades(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	root := createFolder(t, svc, "Work", nil)
	mid := createFolder(t, svc, "Prompts", &root.ID)
	leaf := createFolder(t, svc, "Summaries", &mid.ID)

	item := store.addItem(testUserID, "one")
	if _, err := svc.AddItems(ctx, testUserID, leaf.ID, &services.AddItemsRequest{ItemIDs: []string{item}}); err != nil {
		t.Fatalf("AddItems() error: %v", err)
	}

	if err := svc.DeleteFolder(ctx, testUserID, root.ID, true); err != nil {
		t.Fatalf("DeleteFolder(force) error: %v", err)
	}

	for _, id := range []string{root.ID, mid.ID, leaf.ID} {
		if _, ok := store.folders[id]; ok {
			t.Errorf("folder %s still present after forced cascade", id)
		}
	}
	if len(store.links) != 0 {
		t.Errorf("link count after cascade = %d, want 0", len(store.links))
	}

	// Items survive; only their folder memberships are removed
	if _, ok := store.items[item]; !ok {
		t.Error("item record deleted by folder cascade")
	}
}

func TestListChildren(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	work := createFolder(t, svc, "Work", nil)
	createFolder(t, svc, "Prompts", &work.ID)
	createFolder(t, svc, "Agents", &work.ID)
	createFolder(t, svc, "Personal", nil)

	roots, err := svc.ListChildren(ctx, testUserID, nil)
	if err != nil {
		t.Fatalf("ListChildren(roots) error: %v", err)
	}
	if len(roots) != 2 {
		t.Errorf("root count = %d, want 2", len(roots))
	}

	children, err := svc.ListChildren(ctx, testUserID, &work.ID)
	if err != nil {
		t.Fatalf("ListChildren() error: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("child count = %d, want 2", len(children))
	}

	if _, err := svc.ListChildren(ctx, testUserID, strPtr("no-such-folder")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ListChildren(missing parent) error = %v, want ErrNotFound", err)
	}
}

// Walks the documented lifecycle end to end: create a small tree, file
// items, rename the root, then delete it.
func TestFolderLifecycle(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	work := createFolder(t, svc, "Work", nil)
	prompts := createFolder(t, svc, "Prompts", &work.ID)

	items := []string{
		store.addItem(testUserID, "one"),
		store.addItem(testUserID, "two"),
		store.addItem(testUserID, "three"),
	}
	if _, err := svc.AddItems(ctx, testUserID, prompts.ID, &services.AddItemsRequest{ItemIDs: items}); err != nil {
		t.Fatalf("AddItems() error: %v", err)
	}
	for i, itemID := range items {
		if got := positionOf(t, store, itemID, prompts.ID); got != i+1 {
			t.Errorf("item %d position = %d, want %d", i, got, i+1)
		}
	}

	if _, err := svc.UpdateFolder(ctx, testUserID, work.ID, &services.UpdateFolderRequest{Name: strPtr("Projects")}); err != nil {
		t.Fatalf("UpdateFolder() error: %v", err)
	}
	got := store.folders[prompts.ID]
	if got.Path != "/Projects/Prompts" || got.Level != 1 {
		t.Errorf("child after rename = %q/%d, want /Projects/Prompts/1", got.Path, got.Level)
	}

	err := svc.DeleteFolder(ctx, testUserID, work.ID, false)
	var notEmpty *domain.FolderNotEmptyError
	if !errors.As(err, &notEmpty) || !notEmpty.HasChildren {
		t.Fatalf("delete without force error = %v, want FolderNotEmptyError with children", err)
	}

	if err := svc.DeleteFolder(ctx, testUserID, work.ID, true); err != nil {
		t.Fatalf("DeleteFolder(force) error: %v", err)
	}
	if len(store.folders) != 0 {
		t.Errorf("folder count after forced delete = %d, want 0", len(store.folders))
	}
	if len(store.links) != 0 {
		t.Errorf("link count after forced delete = %d, want 0", len(store.links))
	}
}
