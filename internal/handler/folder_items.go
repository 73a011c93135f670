package handler

import (
	"net/http"
	"strings"

	"contexthub/internal/domain/services"
	"contexthub/internal/httputil"

	"github.com/google/uuid"
)

// itemActionEnvelope is the raw wire shape of PATCH /api/folders/{id}/items.
// The action string is resolved into a tagged services.ItemAction variant
// here, at the boundary, so the service dispatches on types rather than
// strings.
type itemActionEnvelope struct {
	Action         string                  `json:"action"`
	ItemIDs        []string                `json:"item_ids"`
	TargetFolderID string                  `json:"target_folder_id"`
	Position       *int                    `json:"position"`
	ItemPositions  []services.ItemPosition `json:"item_positions"`
}

// AddItems links items into a folder
// POST /api/folders/{id}/items
func (h *FolderHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := pathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req services.AddItemsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validItemIDs(req.ItemIDs); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := h.folderService.AddItems(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"added_items": added,
	})
}

// PatchItems moves items to another folder or reorders them in place
// PATCH /api/folders/{id}/items
func (h *FolderHandler) PatchItems(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := pathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var envelope itemActionEnvelope
	if err := httputil.ParseJSON(w, r, &envelope); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var action services.ItemAction
	var countKey string
	switch envelope.Action {
	case "move":
		if err := validItemIDs(envelope.ItemIDs); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if _, err := uuid.Parse(envelope.TargetFolderID); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid target folder ID format")
			return
		}
		position := 0
		if envelope.Position != nil {
			position = *envelope.Position
		}
		action = services.MoveItems{
			ItemIDs:        envelope.ItemIDs,
			TargetFolderID: envelope.TargetFolderID,
			Position:       position,
		}
		countKey = "moved_items"
	case "reorder":
		ids := make([]string, 0, len(envelope.ItemPositions))
		for _, p := range envelope.ItemPositions {
			ids = append(ids, p.ItemID)
		}
		if err := validItemIDs(ids); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		action = services.ReorderItems{Positions: envelope.ItemPositions}
		countKey = "updated_positions"
	default:
		httputil.RespondError(w, http.StatusBadRequest, "unrecognized action: expected \"move\" or \"reorder\"")
		return
	}

	count, err := h.folderService.ApplyItemAction(r.Context(), userID, id, action)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		countKey:  count,
	})
}

// RemoveItems unlinks items from a folder
// DELETE /api/folders/{id}/items?item_ids=a,b,c
func (h *FolderHandler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := pathID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := r.URL.Query().Get("item_ids")
	if raw == "" {
		httputil.RespondError(w, http.StatusBadRequest, "item_ids query parameter is required")
		return
	}

	var itemIDs []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			itemIDs = append(itemIDs, part)
		}
	}
	if err := validItemIDs(itemIDs); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	removed, err := h.folderService.RemoveItems(r.Context(), userID, id, itemIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"removed_items": removed,
	})
}
