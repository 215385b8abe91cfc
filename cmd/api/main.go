package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PaulBabatuyi/sup-api/internal/auth"
	"github.com/PaulBabatuyi/sup-api/internal/config"
	"github.com/PaulBabatuyi/sup-api/internal/data"
	"github.com/PaulBabatuyi/sup-api/internal/db"
	"github.com/PaulBabatuyi/sup-api/internal/logger"
	"github.com/PaulBabatuyi/sup-api/internal/middleware"
	"github.com/PaulBabatuyi/sup-api/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		logger.New(0).Fatal("command failed", "error", err.Error())
	}
}

// NewRootCmd creates the root command for the sup CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sup",
		Short:         "sup - users and direct messages over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewIndexesCmd())

	return cmd
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Connect to MongoDB, ensure indexes and serve the users and messages
API until SIGINT or SIGTERM.`,
		RunE: runServe,
	}
}

// NewIndexesCmd creates the indexes subcommand.
func NewIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Ensure MongoDB indexes exist and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			dbClient, err := connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = dbClient.Close(context.Background()) }()

			if err := dbClient.CreateIndexes(ctx); err != nil {
				return oops.Code("INDEX_CREATE_FAILED").With("operation", "create indexes").Wrap(err)
			}
			cmd.Println("Indexes are up to date")
			return nil
		},
	}
}

func connect(ctx context.Context, cfg *config.Config) (*db.Client, error) {
	dbClient, err := db.New(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return dbClient, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = dbClient.Close(context.Background()) }()

	if err := dbClient.CreateIndexes(ctx); err != nil {
		return oops.Code("INDEX_CREATE_FAILED").With("operation", "create indexes").Wrap(err)
	}

	usersStore := data.NewUsersStore(dbClient.UsersCollection())
	msgsStore := data.NewMessagesStore(dbClient.MessagesCollection())

	hasher := auth.NewBcryptHasher(cfg.Bcrypt.Cost)
	gate := auth.NewGate(usersStore, hasher, log)

	srv := newServer(
		service.NewDirectory(usersStore, hasher, log),
		service.NewExchange(msgsStore, usersStore, log),
		middleware.NewBasicAuth(gate, cfg.Auth.Realm, log),
		dbClient,
		cfg.HTTP.PathPrefix,
		log,
	)

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTP.Port),
		Handler:      srv.routes(reg),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return serve(ctx, httpServer, cfg.HTTP.ShutdownTimeout, log)
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return oops.Code("HTTP_SERVE_FAILED").With("addr", srv.Addr).Wrap(err)
	case <-ctx.Done():
	}

	log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.Code("HTTP_SHUTDOWN_FAILED").Wrap(err)
	}
	return <-errCh
}
