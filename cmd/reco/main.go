package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/roomcraft/reco/internal/config"
	logpkg "github.com/roomcraft/reco/internal/logger"
	"github.com/roomcraft/reco/internal/metrics"
	"github.com/roomcraft/reco/internal/repository/artifact"
	"github.com/roomcraft/reco/internal/repository/blobsign"
	"github.com/roomcraft/reco/internal/repository/catalogstore"
	"github.com/roomcraft/reco/internal/repository/images"
	"github.com/roomcraft/reco/internal/repository/swatchcache"
	"github.com/roomcraft/reco/internal/swatch"
	chiTransport "github.com/roomcraft/reco/internal/transport/chi"
	openaiEmb "github.com/roomcraft/reco/internal/transport/openai"
	attrsuc "github.com/roomcraft/reco/internal/usecase/attrs"
	coloruc "github.com/roomcraft/reco/internal/usecase/colorrank"
	fusionuc "github.com/roomcraft/reco/internal/usecase/fusion"
	healthuc "github.com/roomcraft/reco/internal/usecase/health"
	recommenduc "github.com/roomcraft/reco/internal/usecase/recommend"
	retrieveuc "github.com/roomcraft/reco/internal/usecase/retrieve"
	"github.com/roomcraft/reco/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reco API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("artifacts_dir", cfg.Artifacts.Dir),
	)

	// Catalog store (flags + image hydration)
	store, err := catalogstore.New(catalogstore.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Catalog store not ready", zap.Error(err))
	}
	logger.Info("Connected to catalog store")

	// Catalog snapshot: mapping, vectors, flat cosine index
	catalog, err := artifact.Load(cfg.Artifacts.Dir)
	if err != nil {
		logger.Fatal("Failed to load catalog snapshot", zap.Error(err))
	}
	logger.Info("Catalog snapshot loaded",
		zap.Int("items", catalog.Size()),
		zap.Int("dimensions", catalog.Dimensions()),
	)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Embedding client (one OpenAI-compatible endpoint, both modalities)
	embedder := openaiEmb.NewClient(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		TextModel:  cfg.Embedding.TextModel,
		ImageModel: cfg.Embedding.ImageModel,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
	})
	logger.Info("Embedding client created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("text_model", cfg.Embedding.TextModel),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Image plumbing: fetcher, signed-URL resolver, color descriptor cache
	fetcher := images.NewFetcher(
		time.Duration(cfg.Images.FetchTimeoutSec)*time.Second,
		cfg.Images.RetryMax,
	)
	signer := blobsign.New(
		cfg.Images.Signing.BaseURL,
		cfg.Images.Signing.Secret,
		time.Duration(cfg.Images.Signing.ExpirySec)*time.Second,
	)
	extractor := swatch.Extractor{}
	swatches := swatchcache.New(fetcher, extractor.AverageLab, metrics.ColorCacheTotal, logger)

	// Use case services
	fusionSvc := fusionuc.New(embedder, embedder)
	retrieveSvc := retrieveuc.New(catalog, catalog, cfg.Ranking.OverfetchMin)
	attrsSvc := attrsuc.New(cfg.Ranking.BoostPerMatch)
	colorSvc := coloruc.New(cfg.Ranking.MatchScale, cfg.Ranking.ContrastScale)
	recommendSvc := recommenduc.New(
		fusionSvc,
		retrieveSvc,
		attrsSvc,
		colorSvc,
		store,
		store,
		signer,
		swatches,
		catalog,
		fetcher,
		extractor.AverageLab,
	)
	healthSvc := healthuc.New(catalog, store, embedder)

	// HTTP server
	server := chiTransport.NewServer(recommendSvc, healthSvc, catalog, store, swatches, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// corsMiddleware builds the CORS handler for the storefront origins.
// No configured origins means same-origin deployments only.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	})
	return c.Handler
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
