package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"diet-planner/internal/app"
	"diet-planner/internal/catalog"
	"diet-planner/internal/config"
	"diet-planner/internal/database"
	"diet-planner/internal/export"
	"diet-planner/internal/logger"
	"diet-planner/internal/lp"
	"diet-planner/internal/metrics"
	"diet-planner/internal/planner"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Init(cfg.LogEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	foodRepo := catalog.NewRepository(db.SQL)

	switch os.Args[1] {
	case "plan":
		err = runPlan(ctx, cfg, db, foodRepo, os.Args[2:])
	case "import-csv":
		err = runImport(ctx, foodRepo, app.FormatCSV, os.Args[2:])
	case "import-html":
		err = runImport(ctx, foodRepo, app.FormatHTML, os.Args[2:])
	case "foods":
		err = runFoods(ctx, foodRepo)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		var affected int64
		affected, err = metrics.NewStore(db.SQL).Cleanup(ctx, *days)
		if err == nil {
			fmt.Printf("Successfully removed %d old metric records.\n", affected)
		}
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Sync()
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func loadCatalog(ctx context.Context, foodRepo *catalog.Repository) (*catalog.Catalog, error) {
	seed, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	cat, seeded, err := foodRepo.LoadOrSeed(ctx, seed)
	if err != nil {
		return nil, err
	}
	if seeded {
		logger.Info("Seeded food catalog", zap.Int("foods", cat.Len()))
	}
	return cat, nil
}

func runPlan(ctx context.Context, cfg *config.Config, db *database.DB, foodRepo *catalog.Repository, args []string) error {
	planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
	age := planCmd.Int("age", 30, "Age in years")
	sex := planCmd.String("sex", "male", "male or female")
	weight := planCmd.Float64("weight", 70, "Weight in kg")
	height := planCmd.Float64("height", 175, "Height in cm")
	activity := planCmd.String("activity", "sedentary", "Activity level")
	budget := planCmd.Float64("budget", 100, "Daily budget in ₹")
	preference := planCmd.String("preference", "vegetarian", "vegetarian, non_vegetarian or eggetarian")
	pantry := planCmd.String("pantry", "", "Comma separated foods already at home")
	format := planCmd.String("format", "json", "Output format: json or csv")
	planCmd.Parse(args)

	tables, err := config.LoadTables(cfg.TablesPath)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(ctx, foodRepo)
	if err != nil {
		return err
	}

	mealPlanner := planner.NewPlanner(cat, lp.NewSimplex(), planner.RulesFromTables(tables))
	application := app.NewApp(mealPlanner, nil, metrics.NewStore(db.SQL), tables, cfg.SolveTimeout)

	report, err := application.GeneratePlan(ctx, app.PlanRequest{
		Age:               *age,
		Sex:               *sex,
		Weight:            *weight,
		Height:            *height,
		ActivityLevel:     *activity,
		Budget:            *budget,
		DietaryPreference: *preference,
		PantryItems:       app.SplitPantry(*pantry),
	})
	if err != nil {
		return err
	}

	switch strings.ToLower(*format) {
	case "csv":
		if report.Status != planner.StatusSuccess {
			return errors.New(report.Message)
		}
		return export.WriteCSV(os.Stdout, report)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	default:
		return fmt.Errorf("unsupported output format %q", *format)
	}
}

func runImport(ctx context.Context, foodRepo *catalog.Repository, format string, args []string) error {
	importCmd := flag.NewFlagSet("import-"+format, flag.ExitOnError)
	file := importCmd.String("file", "", "Path to the food table")
	importCmd.Parse(args)
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *file, err)
	}
	defer f.Close()

	n, err := app.ImportFoods(ctx, foodRepo, f, format)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d foods from %s.\n", n, *file)
	return nil
}

func runFoods(ctx context.Context, foodRepo *catalog.Repository) error {
	cat, err := loadCatalog(ctx, foodRepo)
	if err != nil {
		return err
	}
	fmt.Printf("%-16s %8s %8s %8s %8s %8s %8s %8s\n", "Food", "Kcal", "Protein", "Fat", "Carbs", "Fiber", "Iron", "Cost")
	for _, f := range cat.Items() {
		fmt.Printf("%-16s %8.1f %8.1f %8.1f %8.1f %8.1f %8.1f %8.2f\n",
			f.Name, f.Calories, f.Protein, f.Fat, f.Carbs, f.Fiber, f.Iron, f.Cost)
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: diet-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  plan               Generate a daily meal plan (see plan -h)")
	fmt.Println("  import-csv         Replace the food catalog from a CSV file")
	fmt.Println("  import-html        Replace the food catalog from an HTML table")
	fmt.Println("  foods              List the food catalog")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
