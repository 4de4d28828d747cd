package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of action being logged.
type AuditEvent string

const (
	AuditSessionCreated  AuditEvent = "session_created"
	AuditTokenValidated  AuditEvent = "token_validated"
	AuditTokenRejected   AuditEvent = "token_rejected"
	AuditSnapshotSaved   AuditEvent = "snapshot_saved"
	AuditSnapshotLoaded  AuditEvent = "snapshot_loaded"
	AuditSnapshotFailure AuditEvent = "snapshot_failure"
)

// auditLogger wraps slog.Logger for structured request audit logging.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}
