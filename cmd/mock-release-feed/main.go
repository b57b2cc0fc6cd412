package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/josh-kwaku/edificio/internal/logging"
	"github.com/josh-kwaku/edificio/internal/update"
)

func main() {
	logging.Init(logging.Options{Service: "mock-release-feed", Level: "info", Env: os.Getenv("APP_ENV")})

	addr := ":8081"
	if v := os.Getenv("FEED_ADDR"); v != "" {
		addr = v
	}
	release := update.Release{
		Version:     envOr("FEED_VERSION", "1.0.0"),
		Notes:       envOr("FEED_NOTES", "Versión de prueba"),
		URL:         envOr("FEED_DOWNLOAD_URL", "http://localhost"+addr+"/download"),
		PublishedAt: time.Now().UTC().Truncate(time.Second),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /latest.json", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("manifest served", "version", release.Version, "remote", r.RemoteAddr)
		writeJSON(w, release)
	})

	slog.Info("mock release feed started", "addr", addr, "version", release.Version)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
