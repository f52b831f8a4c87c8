// Command catalogctl administers the storefront catalog from the shell: schema setup,
// spreadsheet imports and quick lookups against the same dataset the gRPC service serves.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fekuna/omnipos-storefront-service/config"
	"github.com/fekuna/omnipos-storefront-service/internal/catalog"
	catalogRepoPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/repository"
	catalogUCPkg "github.com/fekuna/omnipos-storefront-service/internal/catalog/usecase"
	"github.com/fekuna/omnipos-storefront-service/pkg/logger"
	"github.com/fekuna/omnipos-storefront-service/pkg/postgres"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	source      string
	datasetFile string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Storefront catalog administration",
	Long: `catalogctl works on the storefront product catalog.

Examples:
  catalogctl migrate                      # create the products table and load the seed
  catalogctl import --file products.xlsx  # upsert products from a spreadsheet
  catalogctl facets material              # distinct materials in catalog order
  catalogctl search --query bathroom --sort price-asc`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Catalog source: static or postgres (default: CATALOG_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&datasetFile, "dataset", "", "YAML dataset for the static source (default: embedded seed)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Spreadsheet to import (required)")
	_ = importCmd.MarkFlagRequired("file")

	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Free-text search")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Exact category")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "price-asc, price-desc, newest, featured or bestselling")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(facetsCmd)
	rootCmd.AddCommand(searchCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() logger.ZapLogger {
	if !verbose {
		return logger.NewNop()
	}
	return logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment: true,
		Encoding:      "console",
		Level:         "debug",
	})
}

// openCatalog builds a catalog use case over the selected source. The returned func releases
// any database connection.
func openCatalog(ctx context.Context, log logger.ZapLogger) (catalog.UseCase, func(), error) {
	cfg := config.LoadEnv()
	src := source
	if src == "" {
		src = cfg.Catalog.Source
	}

	var repo catalog.Repository
	closer := func() {}
	switch src {
	case "postgres":
		pg, closeDB, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo, closer = pg, closeDB
	case "static", "":
		file := datasetFile
		if file == "" {
			file = cfg.Catalog.DatasetFile
		}
		static, err := catalogRepoPkg.NewStaticRepository(file)
		if err != nil {
			return nil, nil, err
		}
		repo = static
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", src)
	}

	uc, err := catalogUCPkg.NewCatalogUseCase(ctx, repo, nil, log)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return uc, closer, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*catalogRepoPkg.PGRepository, func(), error) {
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}
	repo := catalogRepoPkg.NewPGRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return repo, func() { db.Close() }, nil
}
