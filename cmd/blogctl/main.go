package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"blog-client/internal/apiclient"
	"blog-client/internal/cli"
	"blog-client/internal/config"
	"blog-client/internal/repository/sqlite"
	"blog-client/internal/session"
	"blog-client/internal/storage"
	"blog-client/internal/tokenstore"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
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

	db, err := sqlite.Open(cfg.Client.StatePath)
	if err != nil {
		logger.Fatalf("open state database: %v", err)
	}
	defer db.Close()
	if err := sqlite.Migrate(ctx, db); err != nil {
		logger.Fatalf("migrate state database: %v", err)
	}

	repo := sqlite.NewKVRepository(db)
	tokens := tokenstore.NewKVStore(repo)
	sessions := session.New(ctx, tokens, session.NewKVPersister(repo), logger)

	client, err := apiclient.New(apiclient.Options{
		BaseURL: baseURL,
		Timeout: cfg.Timeout(),
		Runtime: apiclient.RuntimeClient,
		Tokens:  tokens,
		Log:     logger,
	})
	if err != nil {
		logger.Fatalf("api client: %v", err)
	}

	app := cli.NewApp(cli.Deps{
		Backend:    client,
		Sessions:   sessions,
		Tokens:     tokens,
		Thumbnails: storage.StaticResolver{BaseURL: cfg.Uploads.BaseURL},
		In:         os.Stdin,
		Out:        os.Stdout,
		Log:        logger,
	})

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, cli.ErrDenied) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
