package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kararbul/kararbul/internal/config"
	"github.com/kararbul/kararbul/internal/db"
	dbRedis "github.com/kararbul/kararbul/internal/db/redis"
	"github.com/kararbul/kararbul/internal/domain/institution"
	logpkg "github.com/kararbul/kararbul/internal/logger"
	"github.com/kararbul/kararbul/internal/metrics"
	"github.com/kararbul/kararbul/internal/normalize"
	"github.com/kararbul/kararbul/internal/ratelimit"
	bookmarkrepo "github.com/kararbul/kararbul/internal/repository/bookmark"
	historyrepo "github.com/kararbul/kararbul/internal/repository/history"
	"github.com/kararbul/kararbul/internal/source"
	"github.com/kararbul/kararbul/internal/source/httpapi"
	chiTransport "github.com/kararbul/kararbul/internal/transport/chi"
	openaiLLM "github.com/kararbul/kararbul/internal/transport/openai"
	analyzeuc "github.com/kararbul/kararbul/internal/usecase/analyze"
	healthuc "github.com/kararbul/kararbul/internal/usecase/health"
	searchuc "github.com/kararbul/kararbul/internal/usecase/search"
	"github.com/kararbul/kararbul/internal/version"
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

	logger.Info("Starting kararbul API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// Persistence is optional. Without it, search still works; history and
	// bookmarks answer 501.
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer s.Close()

		ctx := context.Background()
		if err := s.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
		store = s
	} else {
		logger.Warn("No database configured, history and bookmarks disabled")
	}

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	catalog := institution.Default()

	// One shared limiter keyed by institution id.
	limits := make(map[string]int, len(cfg.Institutions))
	for id, inst := range cfg.Institutions {
		if inst.RateLimit > 0 {
			limits[id] = inst.RateLimit
		}
	}
	limiter := ratelimit.NewKeyed(limits, 60)

	seed := source.TimeSeed
	if cfg.Search.FallbackSeed != 0 {
		seed = source.FixedSeed(cfg.Search.FallbackSeed)
	}
	gen := source.NewFallbackGenerator(seed, time.Now)

	registry := source.NewRegistry(gen, catalog.DisplayName)
	registerAdapters(registry, cfg, limiter, gen, logger)

	// Use case services
	searchSvc := searchuc.New(registry, catalog, normalize.New(), gen, logger)

	var (
		historyReader chiTransport.HistoryReader
		bookmarks     chiTransport.BookmarkStore
	)
	if store != nil {
		histRepo := historyrepo.New(store, cfg.Search.HistoryEntries)
		searchSvc.WithHistory(histRepo)
		historyReader = histRepo
		bookmarks = bookmarkrepo.New(store)
	}

	var (
		analyzeSvc *analyzeuc.Service
		llmChecker healthuc.LLMChecker
	)
	if cfg.LLM.APIKey != "" {
		llm := openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Logger:      logger,
		})
		analyzeSvc = analyzeuc.New(llm, logger)
		llmChecker = llm
		logger.Info("LLM analysis enabled", zap.String("model", cfg.LLM.Model))
	}

	// Pass nil interface (not typed nil pointer!) when a dependency is absent.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, llmChecker)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, analyzeSvc, healthSvc, catalog, historyReader, bookmarks, logger,
	).WithPageLimits(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

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

// registerAdapters wires one HTTP adapter per enabled institution. Anything
// not registered is served by the registry's stub with synthetic data.
func registerAdapters(
	registry *source.Registry,
	cfg config.Config,
	limiter *ratelimit.Keyed,
	gen *source.FallbackGenerator,
	logger *zap.Logger,
) {
	build := func(id string) (httpapi.Config, bool) {
		inst, ok := cfg.Institutions[id]
		if !ok || !inst.Enabled {
			return httpapi.Config{}, false
		}
		return httpapi.Config{
			BaseURL: inst.BaseURL,
			APIKey:  inst.APIKey,
			Timeout: time.Duration(inst.TimeoutSec) * time.Second,
			Limiter: limiter,
			Gen:     gen,
			Logger:  logger,
		}, true
	}

	if c, ok := build("yargitay"); ok {
		registry.Register(httpapi.NewYargitay(c))
	}
	if c, ok := build("danistay"); ok {
		registry.Register(httpapi.NewDanistay(c))
	}
	if c, ok := build("emsal"); ok {
		registry.Register(httpapi.NewEmsal(c))
	}
	if c, ok := build("kvkk"); ok {
		registry.Register(httpapi.NewBrave(c))
	}
	if c, ok := build("bddk"); ok {
		registry.Register(httpapi.NewTavily(c))
	}
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
