package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/chemtalent/jobchain/config"
	"github.com/chemtalent/jobchain/internal/api/handlers"
	"github.com/chemtalent/jobchain/internal/api/middleware"
	"github.com/chemtalent/jobchain/internal/api/routes"
	"github.com/chemtalent/jobchain/internal/bootstrap"
	"github.com/chemtalent/jobchain/internal/logger"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()

	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	core, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatalf("init error: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	// multipart parts above this size spill to temp files
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	routes.RegisterRoutes(r, routes.Deps{
		Auth:      handlers.NewAuthHandler(core.Auth),
		Upload:    handlers.NewUploadHandler(core.Ingest, cfg.MaxUploadBytes),
		Jobs:      handlers.NewJobHandler(core.Jobs),
		Reports:   handlers.NewReportHandler(core.Reports),
		Uploads:   handlers.NewUploadsHandler(core.Archive),
		WS:        handlers.NewWSHandler(core.Redis),
		JWTSecret: cfg.JWTSecret,
		JWTIssuer: bootstrap.TokenIssuer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown")
	}
	core.Close(shutdownCtx)
}
