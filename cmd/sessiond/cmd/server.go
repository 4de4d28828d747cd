package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jmcleod/sessiond/api"
	"github.com/jmcleod/sessiond/internal/config"
	"github.com/jmcleod/sessiond/registry"
	"github.com/jmcleod/sessiond/storage"
	bboltstorage "github.com/jmcleod/sessiond/storage/bbolt"
	filestorage "github.com/jmcleod/sessiond/storage/file"
	memorystorage "github.com/jmcleod/sessiond/storage/memory"
	redisstorage "github.com/jmcleod/sessiond/storage/redis"
	"github.com/jmcleod/sessiond/telemetry"
	"github.com/jmcleod/sessiond/token"
)

var (
	addr         string
	backend      string
	snapshotPath string
	dataDir      string
	reapInterval time.Duration
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the session registry server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Addr = addr
		}
		if cmd.Flags().Changed("backend") {
			cfg.SnapshotBackend = backend
		}
		if cmd.Flags().Changed("snapshot-path") {
			cfg.SnapshotPath = snapshotPath
		}
		if cmd.Flags().Changed("data-dir") {
			cfg.DataDir = dataDir
		}
		if cmd.Flags().Changed("reap-interval") {
			cfg.ReapInterval = reapInterval
		}
		if cfg.Secret == "" {
			return fmt.Errorf("SESSIOND_SECRET must be set")
		}
		return runServer(cfg)
	},
}

func init() {
	serverCmd.Flags().StringVar(&addr, "addr", ":8420", "listen address")
	serverCmd.Flags().StringVar(&backend, "backend", "file", "snapshot backend: file, bbolt, redis, or memory")
	serverCmd.Flags().StringVar(&snapshotPath, "snapshot-path", "sessions.json", "snapshot path identifier")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "data", "data directory for file and bbolt backends")
	serverCmd.Flags().DurationVar(&reapInterval, "reap-interval", registry.DefaultReapInterval, "how often the reaper sweeps expired sessions")
	rootCmd.AddCommand(serverCmd)
}

func runServer(cfg config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	secret := []byte(cfg.Secret)
	if len(cfg.SecretSalt) > 0 {
		secret = token.DeriveKey(secret, cfg.SecretSalt)
	}

	store, closeStore, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	promSink, err := telemetry.NewPromSink(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	memSink := telemetry.NewMemorySink()
	sink := telemetry.MultiSink{
		telemetry.NewLogSink(logger),
		promSink,
		memSink,
	}

	reg := registry.New(token.HMACSigner{}, registry.WithTelemetry(sink))

	// Restore persisted sessions first; a corrupt snapshot is fatal.
	if err := reg.Load(context.Background(), store, cfg.SnapshotPath); err != nil {
		return fmt.Errorf("restoring sessions: %w", err)
	}

	reaper := registry.NewReaper(reg, cfg.ReapInterval)
	reaper.Start()
	defer reaper.Stop()

	a := api.New(reg, store, secret,
		api.WithLogger(logger),
		api.WithSnapshotPath(cfg.SnapshotPath),
		api.WithIntrospection(memSink),
	)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/api/v1", a.Router())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Addr, "backend", cfg.SnapshotBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}

	reaper.Stop()

	// Persist whatever is live so a restart can pick it back up.
	saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSave()
	if err := reg.Save(saveCtx, store, cfg.SnapshotPath); err != nil {
		return fmt.Errorf("saving sessions on shutdown: %w", err)
	}
	return nil
}

func buildStore(cfg config.Config) (storage.BlobStore, func(), error) {
	noop := func() {}
	switch cfg.SnapshotBackend {
	case "file":
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		return filestorage.NewRootedStore(cfg.DataDir), noop, nil
	case "bbolt":
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, nil, fmt.Errorf("creating data directory: %w", err)
		}
		s, err := bboltstorage.NewStoreFromFile(filepath.Join(cfg.DataDir, "snapshots.db"), nil)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "redis":
		s := redisstorage.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		return s, func() { s.Close() }, nil
	case "memory":
		return memorystorage.NewStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}
