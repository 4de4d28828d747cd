// Package config loads sessiond settings from the environment, with
// optional .env file support for local development.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server command needs from the
// environment. Flags may override individual fields.
type Config struct {
	Addr            string
	Secret          string
	SecretSalt      []byte // optional; when set the signing key is derived, not raw
	SnapshotBackend string // file | bbolt | redis | memory
	SnapshotPath    string
	DataDir         string
	ReapInterval    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads the environment, after merging in a .env file if one
// exists in the working directory.
func Load() (Config, error) {
	// Missing .env is the common case outside development.
	_ = godotenv.Load()

	cfg := Config{
		Addr:            getenv("SESSIOND_ADDR", ":8420"),
		Secret:          os.Getenv("SESSIOND_SECRET"),
		SnapshotBackend: getenv("SESSIOND_SNAPSHOT_BACKEND", "file"),
		SnapshotPath:    getenv("SESSIOND_SNAPSHOT_PATH", "sessions.json"),
		DataDir:         getenv("SESSIOND_DATA_DIR", "data"),
		RedisAddr:       getenv("SESSIOND_REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("SESSIOND_REDIS_PASSWORD"),
	}

	if v := os.Getenv("SESSIOND_SECRET_SALT"); v != "" {
		salt, err := hex.DecodeString(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing SESSIOND_SECRET_SALT: %w", err)
		}
		cfg.SecretSalt = salt
	}

	if v := os.Getenv("SESSIOND_REAP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing SESSIOND_REAP_INTERVAL: %w", err)
		}
		cfg.ReapInterval = d
	}

	if v := os.Getenv("SESSIOND_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing SESSIOND_REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
