package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scanwise/invoice-extractor/api/handlers"
	"github.com/scanwise/invoice-extractor/api/routes"
	"github.com/scanwise/invoice-extractor/config"
	"github.com/scanwise/invoice-extractor/internal/ai"
	"github.com/scanwise/invoice-extractor/internal/normalize"
	"github.com/scanwise/invoice-extractor/internal/ocr"
	"github.com/scanwise/invoice-extractor/internal/pipeline"
	"github.com/scanwise/invoice-extractor/internal/textlayer"
	"github.com/scanwise/invoice-extractor/pkg/logger"
	"github.com/scanwise/invoice-extractor/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	// init logger
	log, err := logger.NewLogger(
		logger.WithLevel(cfg.LogLevel),
		logger.WithEncoding("json"),
		logger.WithOutputPaths([]string{"stdout", "logs/app.log"}),
	)
	if err != nil {
		stdlog.Fatalf("Failed to init logger: %v", err)
	}
	defer log.Sync()

	store, err := storage.NewLocalStore(cfg.UploadDir, log)
	if err != nil {
		log.Fatal("Failed to initialize storage", logger.Error(err))
	}

	gemini, err := ai.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout, log.Named("gemini"))
	if err != nil {
		log.Fatal("Failed to create gemini client", logger.Error(err))
	}
	defer gemini.Close()

	engine := ocr.NewTesseractEngine(cfg.OCRLanguages)
	pipe := pipeline.New(
		pipeline.NewValidator(cfg.MaxUploadSize, cfg.AllowedExts),
		store,
		normalize.NewNormalizer(cfg.RenderDPI, log.Named("normalize")),
		ocr.NewExtractor(engine, cfg.OCRWorkers, cfg.StrictPages, log.Named("ocr")),
		gemini,
		textlayer.NewExtractor(cfg.OCRWorkers, log.Named("textlayer")),
		pipeline.Options{TextLayerFastPath: cfg.TextLayerFastPath},
		log.Named("pipeline"),
	)

	h := handlers.NewHandlers(pipe, gemini, cfg.MaxUploadSize, log)
	r := gin.New()
	r.Use(gin.Recovery())
	routes.SetupRoutes(r, h)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	// start server
	go func() {
		log.Info("Server starting", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", logger.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.Error(err))
	}
}
