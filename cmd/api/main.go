package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/defect-vision/internal/application"
	appanalysis "github.com/bryanwahyu/defect-vision/internal/application/analysis"
	"github.com/bryanwahyu/defect-vision/internal/config"
	"github.com/bryanwahyu/defect-vision/internal/domain/analysis"
	aiopenai "github.com/bryanwahyu/defect-vision/internal/infra/ai/openai"
	"github.com/bryanwahyu/defect-vision/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/defect-vision/internal/infra/storage"
	"github.com/bryanwahyu/defect-vision/internal/infra/storage/memory"
	"github.com/bryanwahyu/defect-vision/internal/logger"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		// logger is not up yet
		panic(err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	ctx := context.Background()

	// init provider adapter; a missing credential disables the slots but
	// never kills the process
	var provider analysis.Provider
	client, err := aiopenai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	switch {
	case err == nil:
		provider = client
	case errors.Is(err, analysis.ErrMissingAPIKey):
		log.Warn("openai adapter not initialized, analyze requests will return per-slot errors", zap.Error(err))
	default:
		log.Fatal("openai adapter init error", zap.Error(err))
	}

	// init bounded history store
	store := memory.NewStore(memory.DefaultCapacity)

	// init optional image upload store
	var images *minioStore.Store
	if cfg.Minio.Endpoint != "" {
		images, err = minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatal("minio init error", zap.Error(err))
		}
	}

	// init service
	svc := &appanalysis.Service{
		Provider: provider,
		Models: appanalysis.Models{
			OpenAI: cfg.OpenAI.Model,
			GPT41:  cfg.OpenAI.GPT41Model,
		},
		History: store,
		Clock:   application.SystemClock{},
		Log:     log,
	}

	// init router
	handler := httpserver.NewRouter(svc, images, log, httpserver.Options{
		CORSOrigins: cfg.CORS.Origins,
		RateLimit:   20,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
