package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"marketplace/internal/bootstrap"
	"marketplace/internal/http/handlers"
	"marketplace/internal/http/httpapi"
	"marketplace/internal/infra"
	"marketplace/internal/infra/geoip"
	"marketplace/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise services")
	}
	defer svc.Close()

	media, staticDir, err := newMediaResolver(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure media storage")
	}

	countries, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer countries.Close()

	app := &handlers.App{
		Accounts:  svc.Accounts,
		Ledger:    svc.Ledger,
		Jobs:      svc.Jobs,
		Creations: svc.Creations,
		Catalog:   svc.Catalog,
		Media:     media,
		Logger:    logger,
		Ready:     svc.Store.Ping,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		WorkerToken:     cfg.WorkerToken,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateLimitBurst:  cfg.RateLimitBurst,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   countries.Lookup(),
		StaticDir:       staticDir,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router)
	logger.Info().Str("addr", server.Addr()).Str("store", cfg.StoreDriver).Str("storage", cfg.StorageDriver).Msg("api listening")
	if err := server.Run(ctx, cfg.HTTPIdleTimeout); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}

// newMediaResolver returns the configured resolver and, for the local driver,
// the directory to serve under /static.
func newMediaResolver(ctx context.Context, cfg *infra.Config) (storage.Resolver, string, error) {
	if cfg.StorageDriver == infra.StorageDriverS3 {
		r, err := storage.NewS3Resolver(ctx, storage.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			TTL:             cfg.S3PresignTTL,
		})
		return r, "", err
	}
	r, err := storage.NewLocalResolver(cfg.StorageBaseURL)
	return r, cfg.StorageLocalDir, err
}
