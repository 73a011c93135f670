package collections

import (
	"strings"

	"contexthub/internal/domain/models"
)

// Materialized path helpers. Pure functions; every path in the tree is
// derivable from these plus the parent chain, and nothing else may write
// path or level fields.

// PathFor returns the materialized path for a folder named name under
// parent. A nil parent means root: "/" + name.
func PathFor(parent *models.Folder, name string) string {
	if parent == nil {
		return "/" + name
	}
	return parent.Path + "/" + name
}

// LevelFor returns the depth for a folder under parent. Root folders are
// level 0.
func LevelFor(parent *models.Folder) int {
	if parent == nil {
		return 0
	}
	return parent.Level + 1
}

// Rebase translates a descendant's path from under oldPath to under
// newPath, preserving the relative structure. Returns false when descPath
// is not a strict descendant of oldPath.
func Rebase(descPath, oldPath, newPath string) (string, bool) {
	suffix, ok := strings.CutPrefix(descPath, oldPath+"/")
	if !ok || suffix == "" {
		return "", false
	}
	return newPath + "/" + suffix, true
}

// RelativeDepth returns how many levels below the rebased root a
// descendant sits, given the suffix of its path relative to that root.
// "B" is one level down, "B/C" two.
func RelativeDepth(suffix string) int {
	return strings.Count(suffix, "/") + 1
}
