package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var EmbeddedMigrationsFS embed.FS

// MigrationFile is one NNNN_type_description.sql file
type MigrationFile struct {
	FileName    string
	Version     int
	Type        string
	Description string
}

// parseMigrationFileName splits NNNN_type_description.sql
func parseMigrationFileName(fileName string) (*MigrationFile, error) {
	base := strings.TrimSuffix(fileName, ".sql")
	parts := strings.Split(base, "_")
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid migration filename format: %s (expected format: NNNN_type_description.sql)", fileName)
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid version number in filename %s: %w", fileName, err)
	}
	if parts[1] != "main" {
		return nil, fmt.Errorf("unknown migration type in filename %s: %s", fileName, parts[1])
	}
	return &MigrationFile{
		FileName:    fileName,
		Version:     version,
		Type:        parts[1],
		Description: strings.Join(parts[2:], "_"),
	}, nil
}

// getMigrationFiles returns the embedded migrations sorted by version
func getMigrationFiles(fsys fs.FS) ([]*MigrationFile, error) {
	files, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded migrations directory: %w", err)
	}

	var migrations []*MigrationFile
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".sql") {
			continue
		}
		migration, err := parseMigrationFileName(f.Name())
		if err != nil {
			log.Printf("[DB]: Warning: skipping invalid migration file %s: %v", f.Name(), err)
			continue
		}
		migrations = append(migrations, migration)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// ensureMigrationsTable creates the schema_migrations table if it doesn't exist
func ensureMigrationsTable(db *sql.DB) error {
	_, err := retryableExec(db, `CREATE TABLE IF NOT EXISTS schema_migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// getAppliedMigrations returns the filenames already applied
func getAppliedMigrations(db *sql.DB) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := retryableQuery(db, `SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fname string
		if err := rows.Scan(&fname); err != nil {
			return nil, fmt.Errorf("failed to scan migration filename: %w", err)
		}
		applied[fname] = true
	}
	return applied, rows.Err()
}

// applyMigration runs one migration and records it in a single transaction
func applyMigration(db *sql.DB, fsys fs.FS, migration *MigrationFile) error {
	content, err := fs.ReadFile(fsys, path.Join("migrations", migration.FileName))
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", migration.FileName, err)
	}
	return retryableTransactionExec(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.FileName, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES (?)`, migration.FileName); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.FileName, err)
		}
		return nil
	})
}

// Migrate applies every embedded migration not yet recorded
func (db *Database) Migrate() error {
	if err := ensureMigrationsTable(db.db); err != nil {
		return err
	}
	migrations, err := getMigrationFiles(EmbeddedMigrationsFS)
	if err != nil {
		return err
	}
	applied, err := getAppliedMigrations(db.db)
	if err != nil {
		return err
	}
	for _, migration := range migrations {
		if applied[migration.FileName] {
			continue
		}
		if err := applyMigration(db.db, EmbeddedMigrationsFS, migration); err != nil {
			return err
		}
		log.Printf("[DB]: Applied migration %s", migration.FileName)
	}
	return nil
}
