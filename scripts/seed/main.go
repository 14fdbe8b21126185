// Seed adds sample todos to the configured database. Run from project root: go run ./scripts/seed [-n 50]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"todo-api/internal/config"
	"todo-api/internal/database"
	"todo-api/internal/models"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"
)

func main() {
	total := flag.Int("n", 50, "number of todos to insert")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Config failed:", err)
		os.Exit(1)
	}
	logger.Init("warn", cfg.LogFormat)

	ctx := context.Background()
	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	if err != nil {
		fmt.Fprintln(os.Stderr, "DB connection failed:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	repo := repository.NewTodoRepository(db.DB)
	start := time.Now()
	for n := 1; n <= *total; n++ {
		desc := fmt.Sprintf("Description for todo %d", n)
		todo := models.Todo{
			Title:       fmt.Sprintf("Todo %d", n),
			Description: &desc,
			Completed:   n%3 == 0,
		}
		if err := repo.Create(ctx, &todo); err != nil {
			fmt.Fprintln(os.Stderr, "\nInsert failed:", err)
			os.Exit(1)
		}
		fmt.Printf("\rInserted %d / %d", n, *total)
	}

	fmt.Printf("\nDone: %d todos in %v\n", *total, time.Since(start))
}
