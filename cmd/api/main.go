package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"imagecraft/internal/apikey"
	"imagecraft/internal/history"
	"imagecraft/internal/http/handlers"
	httpapi "imagecraft/internal/http/httpapi"
	"imagecraft/internal/infra"
	"imagecraft/internal/infra/geoip"
	"imagecraft/internal/middleware"
	imageprov "imagecraft/internal/providers/image"
	"imagecraft/internal/providers/translate"
	"imagecraft/internal/stats"
	"imagecraft/internal/storage"
	"imagecraft/internal/video"
	"imagecraft/internal/watermark"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	keys := apikey.NewRepository(infra.NewSQLRunner(dbpool, logger), apikey.NewHasher(cfg.APIKeyPepper), cfg.DefaultKeyRateLimit)
	if err := keys.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate api_keys")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
	}

	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage path")
	}

	var historyBackend history.Backend = history.NewFileBackend(files)
	if cfg.HistoryBackend == "redis" {
		historyBackend = history.NewRedisBackend(rdb)
	}

	var limiter middleware.KeyLimiter = middleware.NewMemoryKeyLimiter()
	if rdb != nil {
		limiter = middleware.NewRedisKeyLimiter(rdb)
	}

	var exports storage.Store
	if cfg.MinIOEndpoint != "" {
		objects, err := storage.NewObjectStore(storage.ObjectConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure object storage")
		}
		bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = objects.EnsureBucket(bucketCtx)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare export bucket")
		}
		exports = objects
	} else {
		local, err := storage.NewFileStore(filepath.Join(cfg.StoragePath, "exports"))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open export directory")
		}
		exports = local
	}

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer countries.Close()

	app := &handlers.App{
		Config: cfg,
		Logger: &logger,
		Keys:   keys,
		Translator: translate.NewClient(translate.Options{
			BaseURL:        cfg.TranslateBaseURL,
			LangPair:       cfg.TranslateLangPair,
			Logger:         componentLogger(logger, "translate"),
			RequestTimeout: cfg.UpstreamTimeout,
		}),
		Images: imageprov.NewClient(imageprov.Options{
			BaseURL:        cfg.PollinationsBaseURL,
			Logger:         componentLogger(logger, "images"),
			RequestTimeout: cfg.UpstreamTimeout,
			AllowedHosts:   cfg.ImageSourceAllowlist,
		}),
		Watermark: watermark.New(watermark.Options{}),
		Exporter: video.NewExporter(video.Options{
			Profiles: video.DefaultProfiles(cfg.FFmpegPath),
			Logger:   componentLogger(logger, "video"),
		}),
		History: history.NewStore(historyBackend, componentLogger(logger, "history")),
		Exports: exports,
		Stats:   stats.NewCalculator(),
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Keys:           keys,
		KeyLimiter:     limiter,
		Country:        countries.Lookup(),
		IPRateLimit:    cfg.RateLimitPerMin,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("history", cfg.HistoryBackend).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func componentLogger(base infra.Logger, component string) *infra.Logger {
	l := base.With().Str("component", component).Logger()
	return &l
}
