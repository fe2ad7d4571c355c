package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"diet-planner/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "foods.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	t.Run("EmptyCount", func(t *testing.T) {
		n, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Count failed: %v", err)
		}
		if n != 0 {
			t.Errorf("Expected 0 foods, got %d", n)
		}
	})

	t.Run("ReplaceAllAndLoad", func(t *testing.T) {
		items := []FoodItem{
			{Name: "Roti", Calories: 297, Protein: 9.8, Cost: 6},
			{Name: "Dal", Calories: 116, Protein: 9, Fiber: 7.9, Cost: 8},
			{Name: "Rice", Calories: 130, Protein: 2.7, Cost: 5},
		}
		if err := repo.ReplaceAll(ctx, items); err != nil {
			t.Fatalf("ReplaceAll failed: %v", err)
		}

		c, err := repo.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		names := c.Names()
		if len(names) != 3 || names[0] != "Roti" || names[2] != "Rice" {
			t.Errorf("Expected stored order to be preserved, got %v", names)
		}
		if dal, _ := c.Get("Dal"); dal.Fiber != 7.9 {
			t.Errorf("Expected Dal fiber 7.9, got %v", dal.Fiber)
		}
	})

	t.Run("ReplaceAllRejectsInvalidBatch", func(t *testing.T) {
		err := repo.ReplaceAll(ctx, []FoodItem{{Name: "Tea", Cost: 5}, {Name: "Tea", Cost: 6}})
		if err == nil {
			t.Fatal("Expected error for duplicate batch, got nil")
		}
		n, _ := repo.Count(ctx)
		if n != 3 {
			t.Errorf("Expected previous table to survive a rejected batch, got %d rows", n)
		}
	})
}

func TestLoadOrSeed(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	seed, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	c, seeded, err := repo.LoadOrSeed(ctx, seed)
	if err != nil {
		t.Fatalf("LoadOrSeed failed: %v", err)
	}
	if !seeded {
		t.Error("Expected empty table to be seeded")
	}
	if c.Len() != seed.Len() {
		t.Errorf("Expected %d foods, got %d", seed.Len(), c.Len())
	}

	_, seeded, err = repo.LoadOrSeed(ctx, seed)
	if err != nil {
		t.Fatalf("Second LoadOrSeed failed: %v", err)
	}
	if seeded {
		t.Error("Expected populated table not to be re-seeded")
	}
}
