package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contexthub/internal/domain"
	"contexthub/internal/domain/models"
	"contexthub/internal/domain/repositories"
)

// folderColumns is the canonical select list for folder rows
const folderColumns = `id, user_id, name, description, parent_id, path, level,
	color, icon, sort_order, auto_organize, organization_rules, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.UserID,
		&folder.Name,
		&folder.Description,
		&folder.ParentID,
		&folder.Path,
		&folder.Level,
		&folder.Color,
		&folder.Icon,
		&folder.SortOrder,
		&folder.AutoOrganize,
		&folder.OrganizationRules,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

func collectFolders(rows pgx.Rows) ([]models.Folder, error) {
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// Create creates a new folder. Path and level are computed by the caller.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, name, description, parent_id, path, level,
			color, icon, sort_order, auto_organize, organization_rules, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.UserID,
		folder.Name,
		folder.Description,
		folder.ParentID,
		folder.Path,
		folder.Level,
		folder.Color,
		folder.Icon,
		folder.SortOrder,
		folder.AutoOrganize,
		folder.OrganizationRules,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID for the given user
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id, userID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, folderColumns, r.tables.Folders)

	folder, err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update persists name, parent, path, level and attribute changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, parent_id = $3, path = $4, level = $5,
			color = $6, icon = $7, sort_order = $8, auto_organize = $9,
			organization_rules = $10, updated_at = $11
		WHERE id = $12 AND user_id = $13
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.Description,
		folder.ParentID,
		folder.Path,
		folder.Level,
		folder.Color,
		folder.Icon,
		folder.SortOrder,
		folder.AutoOrganize,
		folder.OrganizationRules,
		folder.UpdatedAt,
		folder.ID,
		folder.UserID,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder '%s': %w", folder.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdatePathLevel rewrites only the materialized path and level of one folder
func (r *PostgresFolderRepository) UpdatePathLevel(ctx context.Context, id, userID, path string, level int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET path = $1, level = $2
		WHERE id = $3 AND user_id = $4
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, path, level, id, userID)
	if err != nil {
		return fmt.Errorf("update folder path: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a single folder row
func (r *PostgresFolderRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id, userID)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("cannot delete folder with children: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ListChildren lists immediate child folders; nil parentID means root
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, userID string, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE user_id = $1 AND parent_id IS NULL
			ORDER BY sort_order ASC, name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, userID)
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE user_id = $1 AND parent_id = $2
			ORDER BY sort_order ASC, name ASC
		`, folderColumns, r.tables.Folders)
		args = append(args, userID, *parentID)
	}

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}

	return collectFolders(rows)
}

// FindSibling finds a folder with the given name under parentID, excluding
// excludeID. Returns nil, nil when no sibling matches.
func (r *PostgresFolderRepository) FindSibling(ctx context.Context, userID string, parentID *string, name, excludeID string) (*models.Folder, error) {
	query, args := siblingQuery(r.tables.Folders, userID, parentID, name, excludeID)

	folder, err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, args...))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("find sibling folder: %w", err)
	}

	return folder, nil
}

// siblingQuery builds the sibling-name lookup. The id exclusion is only
// added when excludeID is set; creation passes "" and an empty string
// cannot bind to the uuid column.
func siblingQuery(table, userID string, parentID *string, name, excludeID string) (string, []interface{}) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND name = $2`, folderColumns, table)
	args := []interface{}{userID, name}

	if parentID == nil {
		query += " AND parent_id IS NULL"
	} else {
		args = append(args, *parentID)
		query += fmt.Sprintf(" AND parent_id = $%d", len(args))
	}

	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}

	return query, args
}

// escapeLikePrefix escapes LIKE metacharacters so folder names containing
// backslash, percent or underscore match literally in prefix queries.
// Without it a backslash in a path is eaten as the LIKE escape character
// and that folder's descendants are skipped during propagation.
func escapeLikePrefix(prefix string) string {
	return likeEscaper.Replace(prefix)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListByPathPrefix lists folders whose path starts with prefix, ordered by
// level so parents come before their descendants
func (r *PostgresFolderRepository) ListByPathPrefix(ctx context.Context, userID, prefix string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND path LIKE $2 || '%%'
		ORDER BY level ASC, path ASC
	`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID, escapeLikePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("list folders by path prefix: %w", err)
	}

	return collectFolders(rows)
}

// ListAll lists every folder owned by the user
func (r *PostgresFolderRepository) ListAll(ctx context.Context, userID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1
		ORDER BY level ASC, sort_order ASC, name ASC
	`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list all folders: %w", err)
	}

	return collectFolders(rows)
}
