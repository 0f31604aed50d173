package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nitesh/velara/internal/api"
	"github.com/nitesh/velara/internal/backup"
	"github.com/nitesh/velara/internal/config"
	"github.com/nitesh/velara/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.App.GinMode != "" {
		gin.SetMode(cfg.App.GinMode)
	} else if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer closeRepo()
	if err := checkStore(ctx, repo); err != nil {
		return fmt.Errorf("store check: %w", err)
	}

	gen, proxy, err := newGeneration(cfg)
	if err != nil {
		return fmt.Errorf("llm setup: %w", err)
	}
	ingestor, err := newIngestor(ctx, cfg)
	if err != nil {
		return fmt.Errorf("media setup: %w", err)
	}
	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		return fmt.Errorf("auth setup: %w", err)
	}

	svc := service.NewService(repo, gen)

	if cfg.BackupEnabled() {
		sched, err := backup.NewScheduler(svc, cfg.Backup.Dir, cfg.Backup.Schedule)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	handler := api.NewHandler(api.Deps{
		Service:     svc,
		Media:       ingestor,
		Verifier:    verifier,
		Proxy:       proxy,
		Pinger:      repo,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
