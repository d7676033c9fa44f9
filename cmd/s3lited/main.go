// Command s3lited serves the S3 compatible interface for a single tenant object store over HTTP; one process fronts
// one SQLite database.
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
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/couchbaselabs/s3lite/activity"
	"github.com/couchbaselabs/s3lite/auth"
	"github.com/couchbaselabs/s3lite/objstore/objlite"
	"github.com/couchbaselabs/s3lite/objstore/objrest"
)

// shutdownTimeout bounds how long in-flight requests may run on once a stop signal arrives.
const shutdownTimeout = 10 * time.Second

var (
	app = kingpin.New("s3lited", "S3 compatible object storage served from a single embedded SQLite database.")

	listen = app.Flag("listen", "Address to serve the S3 interface on.").
		Envar("S3LITE_LISTEN").Default(":8080").String()
	dbPath = app.Flag("db", "Path to the tenant database, created if it does not already exist.").
		Envar("S3LITE_DB").Required().String()
	secrets = app.Flag("secret", "Accepted token signing secret, repeatable to allow rotation.").
		Envar("S3LITE_SECRET").Strings()
	devToken = app.Flag("dev-token", "Static token accepted for any bucket; development use only.").
			Envar("S3LITE_DEV_TOKEN").String()
	logLevel = app.Flag("log-level", "Minimum level of the logs written to stderr.").
			Envar("S3LITE_LOG_LEVEL").Default("info").Enum("debug", "info", "warn", "error")
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := newLogger(*logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	slog.SetDefault(logger)

	err = run(logger)
	if err != nil {
		logger.Error("failed to run", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var leveler slog.Level

	err := leveler.UnmarshalText([]byte(level))
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: leveler})), nil
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(*secrets) == 0 && *devToken == "" {
		logger.Warn("no signing secrets or dev token configured, all requests will be rejected")
	}

	store, err := objlite.NewStore(ctx, objlite.StoreOptions{Path: *dbPath, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to open tenant store: %w", err)
	}

	defer func() {
		err := store.Close()
		if err != nil {
			logger.Error("failed to close tenant store", "error", err)
		}
	}()

	broadcaster := activity.NewBroadcaster(activity.BroadcasterOptions{Logger: logger})
	defer broadcaster.Close()

	handler := objrest.NewHandler(objrest.HandlerOptions{
		Store: store,
		Verifier: auth.NewVerifier(auth.VerifierOptions{
			Secrets:  *secrets,
			DevToken: *devToken,
			Logger:   logger,
		}),
		Broadcaster: broadcaster,
		Logger:      logger,
	})

	server := &http.Server{Addr: *listen, Handler: handler}

	errs := make(chan error, 1)

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	logger.Info("serving", "address", *listen, "db", *dbPath)

	select {
	case err := <-errs:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "subscribers", broadcaster.Subscribers())

	// WebSocket connections are hijacked so the server won't wait on them; the deferred broadcaster close drops them
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}

	return nil
}
