package handler

import (
	"errors"
	"fmt"
	"net/http"

	"contexthub/internal/domain"
	"contexthub/internal/httputil"

	"github.com/google/uuid"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	// Non-empty delete conflicts carry structured extras so clients can
	// tell children from items
	var notEmpty *domain.FolderNotEmptyError
	if errors.As(err, &notEmpty) {
		httputil.RespondErrorWithExtras(w, http.StatusConflict, notEmpty.Error(), map[string]interface{}{
			"has_children": notEmpty.HasChildren,
			"has_items":    notEmpty.HasItems,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrCycle):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID extracts and validates the {id} path segment as a UUID
func pathID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if id == "" {
		return "", errors.New("folder ID is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.New("invalid folder ID format")
	}
	return id, nil
}

// validParentID validates an optional parent reference. Malformed ids are
// rejected here as 400s; letting them reach the uuid column would surface
// as storage errors instead.
func validParentID(id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	if _, err := uuid.Parse(*id); err != nil {
		return errors.New("invalid parent ID format")
	}
	return nil
}

// validItemIDs validates a batch of item ids the same way
func validItemIDs(ids []string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("invalid item ID format: %s", id)
		}
	}
	return nil
}
