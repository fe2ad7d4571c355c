package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"diet-planner/internal/catalog"
	"diet-planner/internal/logger"
)

// Import formats accepted by ImportFoods.
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// FoodStore is where imported food tables are saved.
type FoodStore interface {
	ReplaceAll(ctx context.Context, items []catalog.FoodItem) error
}

// ImportFoods parses a food table in the given format and replaces the stored
// catalog with it. It returns the number of foods saved.
func ImportFoods(ctx context.Context, store FoodStore, r io.Reader, format string) (int, error) {
	var (
		items []catalog.FoodItem
		err   error
	)
	switch strings.ToLower(format) {
	case FormatCSV:
		items, err = catalog.ParseCSV(r)
	case FormatHTML:
		items, err = catalog.ParseHTMLTable(r)
	default:
		return 0, fmt.Errorf("unsupported import format %q", format)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s food table: %w", format, err)
	}
	if len(items) == 0 {
		return 0, fmt.Errorf("food table is empty")
	}

	if err := store.ReplaceAll(ctx, items); err != nil {
		return 0, fmt.Errorf("failed to save food table: %w", err)
	}

	logger.Info("Food table imported", zap.String("format", format), zap.Int("foods", len(items)))
	return len(items), nil
}
