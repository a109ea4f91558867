package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/urfave/cli/v2"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/config"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/repository"
	"github.com/Lixing-Zhang/shopcart-catalog/pkg/logger"
)

const (
	databaseURLFlag    = "database-url"
	migrationsPathFlag = "migrations-path"
	driverFlag         = "driver"
	mongoURIFlag       = "mongo-uri"
	mongoDatabaseFlag  = "mongo-database"
	fileFlag           = "file"
	logLevelFlag       = "log-level"
)

type MigrationLogger struct {
	logger  *slog.Logger
	verbose bool
}

func NewMigrationLogger(logger *slog.Logger) *MigrationLogger {
	return &MigrationLogger{
		logger:  logger,
		verbose: true,
	}
}

func (ml *MigrationLogger) Printf(format string, v ...any) {
	ml.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *MigrationLogger) Verbose() bool {
	return ml.verbose
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		slog.Error("migrator failed", "err", err)
		os.Exit(2)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "migrator",
		Usage: "manage the product catalog database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    logLevelFlag,
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(logger.New(c.String(logLevelFlag)))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "apply all pending migrations",
				Flags:  migrationFlags(),
				Action: func(c *cli.Context) error { return runMigrations(c, (*migrate.Migrate).Up) },
			},
			{
				Name:   "down",
				Usage:  "roll back all migrations",
				Flags:  migrationFlags(),
				Action: func(c *cli.Context) error { return runMigrations(c, (*migrate.Migrate).Down) },
			},
			{
				Name:  "seed",
				Usage: "insert products from a JSON file into the configured store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: fileFlag, Aliases: []string{"f"}, Required: true, Usage: "JSON array of products"},
					&cli.StringFlag{Name: driverFlag, Value: config.DriverPostgres, EnvVars: []string{"STORE_DRIVER"}},
					&cli.StringFlag{Name: databaseURLFlag, EnvVars: []string{"STORE_POSTGRES_DSN"}},
					&cli.StringFlag{Name: mongoURIFlag, EnvVars: []string{"STORE_MONGO_URI"}},
					&cli.StringFlag{Name: mongoDatabaseFlag, Value: "shopcart", EnvVars: []string{"STORE_MONGO_DATABASE"}},
				},
				Action: seed,
			},
		},
	}
}

func migrationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     databaseURLFlag,
			Aliases:  []string{"s"},
			Usage:    "postgres connection string",
			EnvVars:  []string{"STORE_POSTGRES_DSN"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    migrationsPathFlag,
			Aliases: []string{"m"},
			Value:   "migrations",
		},
	}
}

func runMigrations(c *cli.Context, step func(*migrate.Migrate) error) error {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", c.String(migrationsPathFlag)),
		pgx5URL(c.String(databaseURLFlag)),
	)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			slog.Error("failed to close migrations", "err", err)
		}
	}()

	m.Log = NewMigrationLogger(slog.Default())

	if err := step(m); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.Log.Printf("no migrations to apply")
			return nil
		}
		return fmt.Errorf("failed to migrate: %w", err)
	}
	m.Log.Printf("migration applied")
	return nil
}

// pgx5URL rewrites a postgres:// DSN for the pgx5 migrate driver
func pgx5URL(dsn string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

func seed(c *cli.Context) error {
	products, err := readProducts(c.String(fileFlag))
	if err != nil {
		return err
	}

	cfg := config.StoreConfig{
		Driver:        c.String(driverFlag),
		PostgresDSN:   c.String(databaseURLFlag),
		MongoURI:      c.String(mongoURIFlag),
		MongoDatabase: c.String(mongoDatabaseFlag),
	}
	if cfg.Driver == config.DriverMemory {
		return fmt.Errorf("nothing to seed: the %s driver is not persistent", cfg.Driver)
	}

	store, err := repository.Open(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	defer store.Close(context.Background())

	if err := store.InsertProducts(c.Context, products); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	slog.Info("products seeded", "count", len(products), "driver", cfg.Driver)
	return nil
}

func readProducts(path string) ([]models.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	if err := validateProducts(products); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}
	return products, nil
}

// validateProducts reports every product the stores must not hold
func validateProducts(products []models.Product) error {
	var errs []error
	for i, p := range products {
		if strings.TrimSpace(p.ProductTitle) == "" {
			errs = append(errs, fmt.Errorf("product #%d: ProductTitle is empty", i))
		}
		if strings.TrimSpace(p.ProductImage) == "" {
			errs = append(errs, fmt.Errorf("product #%d: ProductImage is empty", i))
		}
		if p.Price < 0 {
			errs = append(errs, fmt.Errorf("product #%d: negative Price %v", i, p.Price))
		}
		if p.Quantity < 0 {
			errs = append(errs, fmt.Errorf("product #%d: negative Quantity %d", i, p.Quantity))
		}
		if p.ProductID < 0 {
			errs = append(errs, fmt.Errorf("product #%d: negative ProductID %d", i, p.ProductID))
		}
	}
	return errors.Join(errs...)
}
