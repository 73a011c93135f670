package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Names are single path segments; 100 keeps even deep paths well
	// under MaxFolderPathLength.
	MaxFolderNameLength = 100

	// MaxFolderDescriptionLength is the maximum length for folder
	// descriptions.
	MaxFolderDescriptionLength = 500

	// MaxFolderPathLength is the maximum length for full materialized
	// paths. Longer paths indicate overly deep hierarchies (anti-pattern).
	MaxFolderPathLength = 1000

	// MaxFolderDepth bounds the cycle guard's parent walk. A well-formed
	// tree never gets near this; hitting the bound means the parent chain
	// loops.
	MaxFolderDepth = 128

	// MaxBatchItems is the maximum number of item IDs accepted in one
	// add/move/reorder/remove request.
	MaxBatchItems = 500
)
