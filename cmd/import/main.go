// Command import loads an inventory or customer spreadsheet without going through the API.
//
//	go run ./cmd/import -file stock.xlsx -kind items -user admin
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sjperalta/solarstock-api/internal/config"
	"github.com/sjperalta/solarstock-api/internal/database"
	"github.com/sjperalta/solarstock-api/internal/jobs"
	"github.com/sjperalta/solarstock-api/internal/models"
	"github.com/sjperalta/solarstock-api/internal/repository"
	"github.com/sjperalta/solarstock-api/internal/services"
	"github.com/sjperalta/solarstock-api/internal/storage"
	"github.com/sjperalta/solarstock-api/pkg/logger"
)

func main() {
	path := flag.String("file", "", "CSV or XLSX file to import")
	kind := flag.String("kind", models.ImportKindItems, "items or customers")
	user := flag.String("user", "cli", "username recorded on the audit trail")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *kind != models.ImportKindItems && *kind != models.ImportKindCustomers {
		log.Fatalf("Unknown kind %q, expected items or customers", *kind)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Environment)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	svcs := services.NewServices(repository.NewRepositories(db), worker, store, cfg)

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *path, err)
	}
	defer f.Close()

	ctx := context.Background()
	var result *services.ImportResult
	if *kind == models.ImportKindCustomers {
		result, err = svcs.Import.ImportCustomers(ctx, f.Name(), f, *user)
	} else {
		result, err = svcs.Import.ImportItems(ctx, f.Name(), f, *user)
	}
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import #%d %s: %d added, %d updated, %d errors",
		result.Batch.ID, result.Batch.Status, result.Added, result.Updated, len(result.Errors))
	for _, e := range result.Errors {
		log.Println("  " + e)
	}
}
