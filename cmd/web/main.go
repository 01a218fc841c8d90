package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/config"
	apphttp "blog-client/internal/http"
	"blog-client/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	baseURL, err := cfg.BaseURL()
	if err != nil {
		logger.Fatalf("api url: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := apiclient.New(apiclient.Options{
		BaseURL: baseURL,
		Timeout: cfg.Timeout(),
		Runtime: apiclient.RuntimeServer,
		Log:     logger,
	})
	if err != nil {
		logger.Fatalf("api client: %v", err)
	}

	thumbnails, err := buildThumbnails(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	handler := apphttp.NewHandler(apphttp.Options{
		Backend:       client,
		Thumbnails:    thumbnails,
		SecureCookies: cfg.Server.SecureCookies,
		Log:           logger,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s (api %s)", cfg.Server.Addr, baseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildThumbnails presigns thumbnails from S3 when a bucket is configured
// and falls back to the backend's uploads directory otherwise.
func buildThumbnails(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.ThumbnailResolver, error) {
	if cfg.Storage.Bucket == "" {
		logger.Infof("serving thumbnails from %s", cfg.Uploads.BaseURL)
		return storage.StaticResolver{BaseURL: cfg.Uploads.BaseURL}, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("presigning thumbnails from s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Resolver(client, cfg.Storage.Bucket, cfg.Storage.KeyPrefix, cfg.PresignTTL()), nil
}
