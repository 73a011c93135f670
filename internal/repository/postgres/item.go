package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"contexthub/internal/domain/models"
	"contexthub/internal/domain/repositories"
)

// PostgresItemRepository implements the ItemRepository interface.
// Items are owned by the external content subsystem; this repository only
// reads what the folder core needs.
type PostgresItemRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewItemRepository creates a new item repository
func NewItemRepository(config *RepositoryConfig) repositories.ItemRepository {
	return &PostgresItemRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// ListOwnedIDs returns the subset of ids that exist and belong to the user
func (r *PostgresItemRepository) ListOwnedIDs(ctx context.Context, userID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id
		FROM %s
		WHERE user_id = $1 AND id = ANY($2)
	`, r.tables.Items)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("list owned items: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		owned = append(owned, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return owned, nil
}

// ListByFolder lists the items linked into a folder ordered by position
// ascending, newest first among equal positions
func (r *PostgresItemRepository) ListByFolder(ctx context.Context, folderID string) ([]models.LinkedItem, error) {
	query := fmt.Sprintf(`
		SELECT i.id, i.user_id, i.name, i.kind, i.created_at, l.position
		FROM %s l
		JOIN %s i ON i.id = l.item_id
		WHERE l.folder_id = $1
		ORDER BY l.position ASC, i.created_at DESC
	`, r.tables.ItemFolders, r.tables.Items)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder items: %w", err)
	}
	defer rows.Close()

	var items []models.LinkedItem
	for rows.Next() {
		var item models.LinkedItem
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.Name,
			&item.Kind,
			&item.CreatedAt,
			&item.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder items: %w", err)
	}

	return items, nil
}

// ListLinked returns every folder membership of the user's items in one
// pass, ordered the same way folder listings are
func (r *PostgresItemRepository) ListLinked(ctx context.Context, userID string) ([]models.FolderItem, error) {
	query := fmt.Sprintf(`
		SELECT l.folder_id, i.id, i.user_id, i.name, i.kind, i.created_at, l.position
		FROM %s l
		JOIN %s i ON i.id = l.item_id
		WHERE i.user_id = $1
		ORDER BY l.folder_id, l.position ASC, i.created_at DESC
	`, r.tables.ItemFolders, r.tables.Items)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list linked items: %w", err)
	}
	defer rows.Close()

	var linked []models.FolderItem
	for rows.Next() {
		var fi models.FolderItem
		err := rows.Scan(
			&fi.FolderID,
			&fi.Item.ID,
			&fi.Item.UserID,
			&fi.Item.Name,
			&fi.Item.Kind,
			&fi.Item.CreatedAt,
			&fi.Item.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("scan linked item: %w", err)
		}
		linked = append(linked, fi)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate linked items: %w", err)
	}

	return linked, nil
}
