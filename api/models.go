package api

// CreateSessionRequest asks for a new session. SessionID is optional;
// the server generates one when absent. TTLSeconds defaults to 10.
type CreateSessionRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	UserID     string `json:"user_id"`
	TTLSeconds *int64 `json:"ttl_seconds,omitempty"`
}

// CreateSessionResponse returns the session ID and its signed token.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// ValidateRequest carries a token to check.
type ValidateRequest struct {
	Token string `json:"token"`
}

// ValidateResponse returns the user that owns a valid token.
type ValidateResponse struct {
	UserID string `json:"user_id"`
}

// SnapshotRequest optionally names the snapshot path. The server's
// configured default is used when empty.
type SnapshotRequest struct {
	Path string `json:"path,omitempty"`
}

// SnapshotResponse reports the path a snapshot operation acted on.
type SnapshotResponse struct {
	Path string `json:"path"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
