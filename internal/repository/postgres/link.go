package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"contexthub/internal/domain"
	"contexthub/internal/domain/models"
	"contexthub/internal/domain/repositories"
)

// PostgresLinkRepository implements the LinkRepository interface
type PostgresLinkRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewLinkRepository creates a new item-folder link repository
func NewLinkRepository(config *RepositoryConfig) repositories.LinkRepository {
	return &PostgresLinkRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Upsert creates the link or updates its position when the (item, folder)
// pair already exists. The primary key on the pair makes duplicate links
// impossible by construction.
func (r *PostgresLinkRepository) Upsert(ctx context.Context, link *models.ItemFolderLink) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (item_id, folder_id, position, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (item_id, folder_id)
		DO UPDATE SET position = EXCLUDED.position
	`, r.tables.ItemFolders)

	_, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		link.ItemID,
		link.FolderID,
		link.Position,
		link.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert item link: %w", err)
	}

	return nil
}

// MaxPosition returns the highest position in the folder, 0 if empty
func (r *PostgresLinkRepository) MaxPosition(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(position), 0)
		FROM %s
		WHERE folder_id = $1
	`, r.tables.ItemFolders)

	var max int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}

	return max, nil
}

// MoveToFolder repoints links for the given items from source to target.
// Items without a link under source are skipped, not an error.
func (r *PostgresLinkRepository) MoveToFolder(ctx context.Context, sourceFolderID, targetFolderID string, itemIDs []string, position int) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, position = $2
		WHERE folder_id = $3 AND item_id = ANY($4)
	`, r.tables.ItemFolders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, targetFolderID, position, sourceFolderID, itemIDs)
	if err != nil {
		if IsPgDuplicateError(err) {
			return 0, fmt.Errorf("item already linked to target folder: %w", domain.ErrConflict)
		}
		return 0, fmt.Errorf("move item links: %w", err)
	}

	return result.RowsAffected(), nil
}

// UpdatePosition sets the position of one link; returns rows affected
func (r *PostgresLinkRepository) UpdatePosition(ctx context.Context, folderID, itemID string, position int) (int64, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET position = $1
		WHERE folder_id = $2 AND item_id = $3
	`, r.tables.ItemFolders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, position, folderID, itemID)
	if err != nil {
		return 0, fmt.Errorf("update link position: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteByItems removes links for the given items from the folder
func (r *PostgresLinkRepository) DeleteByItems(ctx context.Context, folderID string, itemIDs []string) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE folder_id = $1 AND item_id = ANY($2)
	`, r.tables.ItemFolders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID, itemIDs)
	if err != nil {
		return 0, fmt.Errorf("delete item links: %w", err)
	}

	return result.RowsAffected(), nil
}

// DeleteByFolder removes every link in the folder
func (r *PostgresLinkRepository) DeleteByFolder(ctx context.Context, folderID string) (int64, error) {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE folder_id = $1
	`, r.tables.ItemFolders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderID)
	if err != nil {
		return 0, fmt.Errorf("delete folder links: %w", err)
	}

	return result.RowsAffected(), nil
}

// CountByFolder counts links in the folder
func (r *PostgresLinkRepository) CountByFolder(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE folder_id = $1
	`, r.tables.ItemFolders)

	var count int
	if err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, folderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folder links: %w", err)
	}

	return count, nil
}
