package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"contexthub/internal/config"
	"contexthub/internal/domain/services"
	"contexthub/internal/repository/postgres"
	"contexthub/internal/service/collections"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultManifest []byte

// seedFolder is one node of the YAML manifest tree
type seedFolder struct {
	Name    string       `yaml:"name"`
	Color   string       `yaml:"color"`
	Folders []seedFolder `yaml:"folders"`
	Items   []seedItem   `yaml:"items"`
}

type seedItem struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type manifest struct {
	UserID  string       `yaml:"user_id"`
	Folders []seedFolder `yaml:"folders"`
}

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	manifestPath := flag.String("manifest", "", "Path to a YAML seed manifest (embedded default when empty)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	data := defaultManifest
	if *manifestPath != "" {
		data, err = os.ReadFile(*manifestPath)
		if err != nil {
			log.Fatalf("Failed to read manifest: %v", err)
		}
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		log.Fatalf("Failed to parse manifest: %v", err)
	}
	if m.UserID == "" {
		log.Fatalf("Manifest is missing user_id")
	}

	repoConfig := &postgres.RepositoryConfig{Pool: pool, Tables: tables, Logger: logger}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	itemRepo := postgres.NewItemRepository(repoConfig)
	linkRepo := postgres.NewLinkRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	events := collections.NewLogEvents(logger)
	folderService := collections.NewFolderService(folderRepo, itemRepo, linkRepo, txManager, events, logger)

	s := &seeder{pool: pool, tables: tables, folders: folderService, userID: m.UserID}
	for _, f := range m.Folders {
		if err := s.seedFolder(ctx, f, nil); err != nil {
			log.Fatalf("Failed to seed folder %q: %v", f.Name, err)
		}
	}

	log.Printf("Seed complete (environment: %s, prefix: %s, user: %s)", cfg.Environment, cfg.TablePrefix, m.UserID)
}

type seeder struct {
	pool    *pgxpool.Pool
	tables  *postgres.TableNames
	folders services.FolderService
	userID  string
}

// seedFolder creates one manifest folder through the folder service (so
// path/level and sibling checks apply), then its items and children.
func (s *seeder) seedFolder(ctx context.Context, f seedFolder, parentID *string) error {
	folder, err := s.folders.CreateFolder(ctx, &services.CreateFolderRequest{
		UserID:   s.userID,
		Name:     f.Name,
		Color:    f.Color,
		ParentID: parentID,
	})
	if err != nil {
		return err
	}

	if len(f.Items) > 0 {
		itemIDs := make([]string, 0, len(f.Items))
		for _, item := range f.Items {
			id := uuid.NewString()
			if err := s.insertItem(ctx, id, item); err != nil {
				return err
			}
			itemIDs = append(itemIDs, id)
		}
		if _, err := s.folders.AddItems(ctx, s.userID, folder.ID, &services.AddItemsRequest{ItemIDs: itemIDs}); err != nil {
			return err
		}
	}

	for _, child := range f.Folders {
		if err := s.seedFolder(ctx, child, &folder.ID); err != nil {
			return err
		}
	}

	return nil
}

func (s *seeder) insertItem(ctx context.Context, id string, item seedItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, name, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, s.tables.Items)

	_, err := s.pool.Exec(ctx, query, id, s.userID, item.Name, item.Kind, time.Now())
	if err != nil {
		return fmt.Errorf("insert item %q: %w", item.Name, err)
	}
	return nil
}

// runSchema creates the prefixed tables when they don't exist yet
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
				user_id UUID NOT NULL,
				name VARCHAR(100) NOT NULL,
				description VARCHAR(500) NOT NULL DEFAULT '',
				parent_id UUID REFERENCES %s(id),
				path VARCHAR(1000) NOT NULL,
				level INTEGER NOT NULL,
				color VARCHAR(32) NOT NULL DEFAULT '',
				icon VARCHAR(64),
				sort_order INTEGER NOT NULL DEFAULT 0,
				auto_organize BOOLEAN NOT NULL DEFAULT FALSE,
				organization_rules JSONB,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Folders, tables.Folders),
		// Sibling-name uniqueness; COALESCE folds the NULL parent of root
		// folders into a comparable key
		fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s_sibling_name_idx
			ON %s (user_id, COALESCE(parent_id, '00000000-0000-0000-0000-000000000000'::uuid), name)
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_path_idx
			ON %s (user_id, path)
		`, tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				user_id UUID NOT NULL,
				name VARCHAR(255) NOT NULL,
				kind VARCHAR(32) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)
		`, tables.Items),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				item_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				folder_id UUID NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				position INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (item_id, folder_id)
			)
		`, tables.ItemFolders, tables.Items, tables.Folders),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("run schema statement: %w", err)
		}
	}

	return nil
}

func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	// Links first, then items, then folders (FK order)
	for _, table := range []string{tables.ItemFolders, tables.Items, tables.Folders} {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	return nil
}
