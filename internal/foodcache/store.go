// Package foodcache persists barcode lookups in a local sqlite file so
// repeated scans skip the network. Rows expire by age; the caller
// decides whether a stale row is still good enough to serve.
package foodcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/macrolog/backend/internal/models"
)

// ErrMiss means no cached row exists for the barcode.
var ErrMiss = errors.New("cache miss")

type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens the cache database at path. The TTL separates
// fresh hits from stale ones in Get.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// Single connection: sqlite has one writer anyway, and this keeps
	// lock contention out of the driver.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	store := &Store{db: db, ttl: ttl}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS food_products (
        barcode TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        brand TEXT NOT NULL DEFAULT '',
        protein REAL NOT NULL,
        calories REAL NOT NULL,
        carbs REAL NOT NULL,
        fat REAL NOT NULL,
        serving_size TEXT NOT NULL DEFAULT '',
        fetched_at DATETIME NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached product and whether it is still within the
// TTL. A missing row yields ErrMiss.
func (s *Store) Get(ctx context.Context, barcode string) (*models.FoodProduct, bool, error) {
	query := `
        SELECT barcode, name, brand, protein, calories, carbs, fat, serving_size, fetched_at
        FROM food_products
        WHERE barcode = ?
    `
	var product models.FoodProduct
	var fetchedAtStr string
	err := s.db.QueryRowContext(ctx, query, barcode).Scan(
		&product.Barcode, &product.Name, &product.Brand, &product.Protein,
		&product.Calories, &product.Carbs, &product.Fat, &product.ServingSize,
		&fetchedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrMiss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	product.FetchedAt, err = time.Parse(time.RFC3339, fetchedAtStr)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse fetched_at: %w", err)
	}

	fresh := time.Since(product.FetchedAt) <= s.ttl
	return &product, fresh, nil
}

// Put inserts or replaces the cached row for the product's barcode.
func (s *Store) Put(ctx context.Context, product *models.FoodProduct) error {
	query := `
        INSERT OR REPLACE INTO food_products
            (barcode, name, brand, protein, calories, carbs, fat, serving_size, fetched_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	fetchedAt := product.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, query,
		product.Barcode, product.Name, product.Brand, product.Protein,
		product.Calories, product.Carbs, product.Fat, product.ServingSize,
		fetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}
