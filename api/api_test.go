package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmcleod/sessiond/api"
	"github.com/jmcleod/sessiond/registry"
	"github.com/jmcleod/sessiond/storage/memory"
	"github.com/jmcleod/sessiond/telemetry"
	"github.com/jmcleod/sessiond/token"
)

type fixture struct {
	server *httptest.Server
	reg    *registry.Registry
	store  *memory.Store
	sink   *telemetry.MemorySink
}

func setup(t *testing.T, opts ...api.Option) *fixture {
	t.Helper()
	sink := telemetry.NewMemorySink()
	reg := registry.New(token.HMACSigner{}, registry.WithTelemetry(sink))
	store := memory.NewStore()

	// New seals and wipes the secret, so hand it a throwaway copy.
	a := api.New(reg, store, []byte("server-secret"), opts...)

	r := chi.NewRouter()
	r.Mount("/api/v1", a.Router())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &fixture{server: srv, reg: reg, store: store, sink: sink}
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, &reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestCreateAndValidate(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID: "s1",
		UserID:    "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[api.CreateSessionResponse](t, resp)
	assert.Equal(t, "s1", created.SessionID)
	require.NotEmpty(t, created.Token)

	resp = doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions/validate", api.ValidateRequest{
		Token: created.Token,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validated := decode[api.ValidateResponse](t, resp)
	assert.Equal(t, "alice", validated.UserID)
}

func TestCreateGeneratesSessionID(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		UserID: "alice",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[api.CreateSessionResponse](t, resp)

	_, err := uuid.Parse(created.SessionID)
	assert.NoError(t, err, "generated session ID should be a UUID")
}

func TestCreateMissingUserID(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID: "s1",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateNegativeTTL(t *testing.T) {
	f := setup(t)

	ttl := int64(-5)
	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID:  "s1",
		UserID:     "alice",
		TTLSeconds: &ttl,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateTTLOverflow(t *testing.T) {
	f := setup(t)

	// Seconds-to-duration conversion would wrap around; the request
	// must be rejected, not accepted with a bogus expiry.
	ttl := math.MaxInt64/int64(time.Second) + 1
	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID:  "s1",
		UserID:     "alice",
		TTLSeconds: &ttl,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The session must not have been created.
	resp = doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions/validate", api.ValidateRequest{
		Token: "s1." + token.HMACSigner{}.Sign("s1", []byte("server-secret")),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateSessionIDWithDelimiter(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID: "bad.id",
		UserID:    "alice",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestValidateFailuresAreUniform(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID: "s1",
		UserID:    "alice",
	})
	created := decode[api.CreateSessionResponse](t, resp)

	// Tampered signature, unknown session, and garbage all yield the
	// same status and body.
	for _, tok := range []string{
		created.Token + "ff",
		"ghost.0000",
		"no-delimiter",
	} {
		resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions/validate", api.ValidateRequest{
			Token: tok,
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decode[api.ErrorResponse](t, resp)
		assert.Equal(t, "invalid token", body.Error)
	}
}

func TestSnapshotSaveAndLoad(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID: "s1",
		UserID:    "alice",
	})
	created := decode[api.CreateSessionResponse](t, resp)

	resp = doJSON(t, http.MethodPost, f.server.URL+"/api/v1/snapshot/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saved := decode[api.SnapshotResponse](t, resp)
	assert.NotEmpty(t, saved.Path)

	// Wipe the live registry, then restore from the snapshot.
	f.reg.ReplaceAll(nil)

	resp = doJSON(t, http.MethodPost, f.server.URL+"/api/v1/snapshot/load", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, f.server.URL+"/api/v1/sessions/validate", api.ValidateRequest{
		Token: created.Token,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	validated := decode[api.ValidateResponse](t, resp)
	assert.Equal(t, "alice", validated.UserID)
}

func TestSnapshotLoadMissing(t *testing.T) {
	f := setup(t)

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/snapshot/load", api.SnapshotRequest{
		Path: "never-written.json",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, f.sink.EventNames(), "session.load_missing")
}

func TestSnapshotLoadCorrupt(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.Write(context.Background(), "bad.json", []byte("{broken")))

	resp := doJSON(t, http.MethodPost, f.server.URL+"/api/v1/snapshot/load", api.SnapshotRequest{
		Path: "bad.json",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestTelemetryEndpoint(t *testing.T) {
	sink := telemetry.NewMemorySink()
	reg := registry.New(token.HMACSigner{}, registry.WithTelemetry(sink))
	a := api.New(reg, memory.NewStore(), []byte("server-secret"), api.WithIntrospection(sink))

	r := chi.NewRouter()
	r.Mount("/api/v1", a.Router())
	srv := httptest.NewServer(r)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sessions", api.CreateSessionRequest{
		SessionID: "s1",
		UserID:    "alice",
	})
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/api/v1/telemetry")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	snap := decode[telemetry.Snapshot](t, resp)
	assert.Equal(t, int64(1), snap.Counters["writes"])
}

func TestTelemetryEndpointDisabled(t *testing.T) {
	f := setup(t)

	resp, err := http.Get(f.server.URL + "/api/v1/telemetry")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
