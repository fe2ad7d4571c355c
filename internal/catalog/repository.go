package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository is a database-backed store for the food table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// ReplaceAll swaps the stored food table for items, keeping their order.
func (r *Repository) ReplaceAll(ctx context.Context, items []FoodItem) error {
	// Reject the batch up front so a bad row never leaves a half-written table.
	if _, err := New(items); err != nil {
		return fmt.Errorf("invalid food table: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM foods`); err != nil {
		return fmt.Errorf("failed to clear foods: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO foods (name, position, calories, protein, fat, carbs, fiber, iron, cost, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, it := range items {
		if _, err := stmt.ExecContext(ctx, it.Name, i, it.Calories, it.Protein, it.Fat, it.Carbs, it.Fiber, it.Iron, it.Cost, now); err != nil {
			return fmt.Errorf("failed to insert food %q: %w", it.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit foods: %w", err)
	}
	return nil
}

// List returns the stored foods in their original order.
func (r *Repository) List(ctx context.Context) ([]FoodItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, calories, protein, fat, carbs, fiber, iron, cost
		FROM foods ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	defer rows.Close()

	var items []FoodItem
	for rows.Next() {
		var it FoodItem
		if err := rows.Scan(&it.Name, &it.Calories, &it.Protein, &it.Fat, &it.Carbs, &it.Fiber, &it.Iron, &it.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Load builds a Catalog from the stored foods.
func (r *Repository) Load(ctx context.Context) (*Catalog, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return New(items)
}

// Count returns the number of stored foods.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count foods: %w", err)
	}
	return n, nil
}

// LoadOrSeed loads the stored catalog, seeding it with seed when the table is empty.
func (r *Repository) LoadOrSeed(ctx context.Context, seed *Catalog) (*Catalog, bool, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		if err := r.ReplaceAll(ctx, seed.Items()); err != nil {
			return nil, false, fmt.Errorf("failed to seed foods: %w", err)
		}
		return seed, true, nil
	}
	cat, err := r.Load(ctx)
	return cat, false, err
}
