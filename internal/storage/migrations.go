package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a
// fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: products, categories, sales",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS products (
					id INTEGER PRIMARY KEY,
					name TEXT NOT NULL,
					price TEXT NOT NULL,
					quantity INTEGER NOT NULL CHECK (quantity >= 0),
					expiry_date TEXT,
					category TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_products_category ON products(category)`,

				`CREATE TABLE IF NOT EXISTS categories (
					name TEXT PRIMARY KEY
				)`,

				`CREATE TABLE IF NOT EXISTS sales (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					customer TEXT NOT NULL,
					subtotal TEXT NOT NULL,
					discount_amount TEXT NOT NULL,
					tax_amount TEXT NOT NULL,
					total TEXT NOT NULL,
					sold_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS sale_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					sale_id INTEGER NOT NULL,
					product_id INTEGER NOT NULL,
					name TEXT NOT NULL,
					unit_price TEXT NOT NULL,
					quantity INTEGER NOT NULL,
					FOREIGN KEY (sale_id) REFERENCES sales(id)
				)`,
				`CREATE INDEX idx_sale_items_sale_id ON sale_items(sale_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add monotonic product id counter",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS counters (
					name TEXT PRIMARY KEY,
					value INTEGER NOT NULL
				)`,
				// Seed from the current maximum so existing databases keep
				// their id sequence.
				`INSERT OR IGNORE INTO counters (name, value)
					SELECT 'next_product_id', COALESCE(MAX(id), 0) + 1 FROM products`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
