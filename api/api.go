// Package api exposes the session registry over HTTP.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/awnumar/memguard"
	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/jmcleod/sessiond/registry"
	"github.com/jmcleod/sessiond/storage"
	"github.com/jmcleod/sessiond/telemetry"
)

const defaultSnapshotPath = "sessions.json"

//go:embed openapi.yaml
var openapiSpec []byte

// API holds the dependencies needed by the REST handlers. The signing
// secret lives in a memguard Enclave and is only decrypted for the
// duration of a single sign or verify.
type API struct {
	registry     *registry.Registry
	store        storage.BlobStore
	secret       *memguard.Enclave
	snapshotPath string
	audit        *auditLogger
	introspect   *telemetry.MemorySink
}

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events. If not set,
// a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithSnapshotPath sets the default path for save/load requests that
// do not name one.
func WithSnapshotPath(path string) Option {
	return func(a *API) {
		a.snapshotPath = path
	}
}

// WithIntrospection exposes the given sink's counters and recent
// events at GET /telemetry.
func WithIntrospection(sink *telemetry.MemorySink) Option {
	return func(a *API) {
		a.introspect = sink
	}
}

// New creates a new API instance. The secret slice is sealed into an
// enclave and wiped; callers must not reuse it afterwards.
func New(reg *registry.Registry, store storage.BlobStore, secret []byte, opts ...Option) *API {
	a := &API{
		registry:     reg,
		store:        store,
		secret:       memguard.NewEnclave(secret),
		snapshotPath: defaultSnapshotPath,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/v1/openapi.yaml",
		Path:    "api/v1/redoc",
	}, nil))

	r.Post("/sessions", a.CreateSession)
	r.Post("/sessions/validate", a.ValidateToken)
	r.Post("/snapshot/save", a.SaveSnapshot)
	r.Post("/snapshot/load", a.LoadSnapshot)

	if a.introspect != nil {
		r.Get("/telemetry", a.TelemetrySnapshot)
	}

	return r
}

// withSecret opens the enclave and hands the plaintext secret to fn.
// The backing buffer is destroyed before withSecret returns.
func (a *API) withSecret(fn func(secret []byte) error) error {
	buf, err := a.secret.Open()
	if err != nil {
		return err
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}
