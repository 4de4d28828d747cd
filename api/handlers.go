package api

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jmcleod/sessiond/internal/util"
)

// defaultTTL applies when a create request does not name one.
const defaultTTL = 10 * time.Second

// maxTTLSeconds is the largest ttl_seconds that converts to a
// time.Duration without overflowing.
const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// CreateSession handles POST /sessions.
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	id := req.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	user := util.Normalize(req.UserID)

	ttl := defaultTTL
	if req.TTLSeconds != nil {
		if *req.TTLSeconds > maxTTLSeconds {
			writeError(w, http.StatusBadRequest, "ttl_seconds out of range")
			return
		}
		ttl = time.Duration(*req.TTLSeconds) * time.Second
	}

	var tok string
	err := a.withSecret(func(secret []byte) error {
		var err error
		tok, err = a.registry.Create(id, user, secret, ttl)
		return err
	})
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.log(AuditSessionCreated, r,
		slog.String("session_id", id),
		slog.String("user_id", user))
	writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionID: id, Token: tok})
}

// ValidateToken handles POST /sessions/validate. All validation
// failures produce the same 401 body so callers cannot probe which
// check rejected them; telemetry distinguishes the cases for
// operators.
func (a *API) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var user string
	err := a.withSecret(func(secret []byte) error {
		var err error
		user, err = a.registry.Validate(req.Token, secret)
		return err
	})
	if err != nil {
		a.audit.log(AuditTokenRejected, r)
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	a.audit.log(AuditTokenValidated, r, slog.String("user_id", user))
	writeJSON(w, http.StatusOK, ValidateResponse{UserID: user})
}

// SaveSnapshot handles POST /snapshot/save.
func (a *API) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	path, ok := a.snapshotRequestPath(w, r)
	if !ok {
		return
	}
	if err := a.registry.Save(r.Context(), a.store, path); err != nil {
		a.audit.log(AuditSnapshotFailure, r, slog.String("path", path))
		mapError(w, err)
		return
	}
	a.audit.log(AuditSnapshotSaved, r, slog.String("path", path))
	writeJSON(w, http.StatusOK, SnapshotResponse{Path: path})
}

// LoadSnapshot handles POST /snapshot/load. Loading a path with no
// snapshot succeeds and leaves the registry as it was.
func (a *API) LoadSnapshot(w http.ResponseWriter, r *http.Request) {
	path, ok := a.snapshotRequestPath(w, r)
	if !ok {
		return
	}
	if err := a.registry.Load(r.Context(), a.store, path); err != nil {
		a.audit.log(AuditSnapshotFailure, r, slog.String("path", path))
		mapError(w, err)
		return
	}
	a.audit.log(AuditSnapshotLoaded, r, slog.String("path", path))
	writeJSON(w, http.StatusOK, SnapshotResponse{Path: path})
}

// TelemetrySnapshot handles GET /telemetry when introspection is
// enabled.
func (a *API) TelemetrySnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.introspect.Snapshot())
}

func (a *API) snapshotRequestPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req SnapshotRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return "", false
		}
	}
	if req.Path == "" {
		req.Path = a.snapshotPath
	}
	return req.Path, true
}
