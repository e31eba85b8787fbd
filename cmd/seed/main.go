package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/vowbridge-backend/internal/app"
	"github.com/yungbote/vowbridge-backend/internal/data/db"
	"github.com/yungbote/vowbridge-backend/internal/data/repos"
	catalogmod "github.com/yungbote/vowbridge-backend/internal/modules/catalog"
	"github.com/yungbote/vowbridge-backend/internal/platform/logger"
)

func main() {
	defaultPath := os.Getenv("CATALOG_SEED_PATH")
	if defaultPath == "" {
		defaultPath = "seed/catalog.yaml"
	}
	path := flag.String("file", defaultPath, "catalog seed YAML")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(ctx, log, *path); err != nil {
		log.Error("Catalog seed failed", "file", *path, "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, path string) error {
	file, err := catalogmod.LoadSeedFile(path)
	if err != nil {
		return err
	}

	cfg, err := app.LoadConfig(log)
	if err != nil {
		return err
	}
	pg, err := db.NewPostgresService(log, db.Config{
		Driver:   cfg.DB.Driver,
		DSN:      cfg.DB.DSN,
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Name:     cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		return err
	}

	uc := catalogmod.New(catalogmod.UsecasesDeps{
		Log:        log,
		Categories: repos.NewCategoryRepo(pg.DB(), log),
		Products:   repos.NewProductRepo(pg.DB(), log),
	})
	report, err := uc.Seed(ctx, file)
	if err != nil {
		return err
	}
	log.Info("Catalog seeded",
		"file", path,
		"categories_created", report.CategoriesCreated,
		"products_created", report.ProductsCreated,
		"skipped", report.Skipped,
	)
	return nil
}
