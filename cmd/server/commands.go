package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	controllers "github.com/ManishSRawat/e-sell/internal/controllers/http"
	"github.com/ManishSRawat/e-sell/internal/infra/database"
	"github.com/ManishSRawat/e-sell/internal/jobs"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	notifyTimeout   = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	warmupDelay     = 5 * time.Second
)

func newServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(parent context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := controllers.NewHandler(a.users, a.catalog, a.carts, a.orders, a.tokens, a.store.Users(), a.log)
	router := controllers.NewRouter(handler, a.cfg.Web, a.log)

	scheduler := jobs.NewScheduler(a.log)
	if err := scheduler.AddResetTokenPurge(a.cfg.Jobs.ResetTokenPurge, a.users); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		select {
		case <-time.After(warmupDelay):
			a.warmup(ctx)
		case <-ctx.Done():
		}
	}()

	srv := &http.Server{
		Addr:              net.JoinHostPort(a.cfg.Web.Host, strconv.Itoa(a.cfg.Web.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting e-sell api", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "http server")
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "http shutdown")
}

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, db, err := loadBase(opts)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("schema migrated")
			return nil
		},
	}
}

func newWarmupCommand(opts *RootOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Load the newest products into the cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.redis == nil {
				return errors.New("redis.addr is not configured")
			}
			if count > 0 {
				a.cfg.Jobs.WarmupProducts = count
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cached %d products\n", a.warmup(cmd.Context()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of products to cache (defaults to jobs.warmup_products)")
	return cmd
}
