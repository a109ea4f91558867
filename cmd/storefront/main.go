package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/assets"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/catalogclient"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/config"
	"github.com/Lixing-Zhang/shopcart-catalog/internal/storefront"
	"github.com/Lixing-Zhang/shopcart-catalog/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}

	log.Info("storefront stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	images := assets.Bundled()
	// A missing bundled image is a build defect: fail before serving anything.
	for _, key := range cfg.Storefront.RequiredImages {
		images.MustResolve(key)
	}

	client := catalogclient.New(cfg.Storefront.APIURL)

	front, err := storefront.New(storefront.Config{
		Products: client,
		Cart:     client,
		Images:   images,
		AutoHide: cfg.Storefront.SnackbarAutoHide,
		Logger:   log,

		IdleTimeout: cfg.Storefront.PageIdleTimeout,
		MaxPages:    cfg.Storefront.MaxPages,
	})
	if err != nil {
		return fmt.Errorf("create storefront: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Storefront.Addr,
		Handler:      front.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("storefront listening", "address", srv.Addr, "api_url", cfg.Storefront.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down storefront...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Storefront.ShutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		front.Close()
		if err != nil {
			return fmt.Errorf("storefront forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
