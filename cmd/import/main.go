// Command import bulk-loads clients and products from xlsx workbooks into an
// existing account, using the same parsers and validation as the HTTP import
// endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"facture-backend/internal/config"
	"facture-backend/internal/db"
	"facture-backend/internal/domain"
	"facture-backend/internal/excel"
	"facture-backend/internal/render"
	"facture-backend/internal/repository"
	"facture-backend/internal/service"

	"github.com/rs/zerolog"
)

type options struct {
	accountEmail string
	clientsPath  string
	productsPath string
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("database error")
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migration error")
	}

	repo := repository.New(pool)
	store, err := service.NewFileStore(cfg.DocumentDir)
	if err != nil {
		log.Fatal().Err(err).Msg("document store error")
	}
	svc := service.New(repo, service.Options{
		Renderer:         render.NewExcelRenderer(),
		Store:            store,
		Logger:           log,
		JWTSecret:        cfg.JWTSecret,
		AllowOverpayment: cfg.AllowOverpayment,
	})

	account, err := repo.GetAccountByEmail(ctx, opts.accountEmail)
	if err != nil {
		log.Fatal().Err(err).Str("email", opts.accountEmail).Msg("account lookup failed")
	}

	if opts.clientsPath != "" {
		result, err := importClients(ctx, svc, account.ID, opts.clientsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("client import failed")
		}
		report(log, "clients", result.ClientsCreated, result.RowErrors)
	}
	if opts.productsPath != "" {
		result, err := importProducts(ctx, svc, account.ID, opts.productsPath)
		if err != nil {
			log.Fatal().Err(err).Msg("product import failed")
		}
		report(log, "products", result.ProductsCreated, result.RowErrors)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.accountEmail, "account", "", "email of the account that will own the imported records")
	flag.StringVar(&opts.clientsPath, "clients", "", "path to a clients xlsx file")
	flag.StringVar(&opts.productsPath, "products", "", "path to a products xlsx file")
	flag.Parse()

	if opts.accountEmail == "" {
		fmt.Fprintln(os.Stderr, "--account is required")
		flag.Usage()
		os.Exit(2)
	}
	if opts.clientsPath == "" && opts.productsPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass --clients and/or --products")
		flag.Usage()
		os.Exit(2)
	}
	return opts
}

func importClients(ctx context.Context, svc *service.Service, accountID int64, path string) (domain.ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := excel.ParseClientRows(file)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return svc.ImportClients(ctx, accountID, rows)
}

func importProducts(ctx context.Context, svc *service.Service, accountID int64, path string) (domain.ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := excel.ParseProductRows(file)
	if err != nil {
		return domain.ImportResult{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return svc.ImportProducts(ctx, accountID, rows)
}

func report(log zerolog.Logger, kind string, created int, rowErrors []string) {
	event := log.Info().Str("kind", kind).Int("created", created).Int("errors", len(rowErrors))
	event.Msg("import complete")
	for _, rowErr := range rowErrors {
		log.Warn().Str("kind", kind).Msg(rowErr)
	}
}
