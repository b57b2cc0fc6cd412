package handler

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/josh-kwaku/edificio/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

const readinessTimeout = 3 * time.Second

type HealthHandler struct {
	version string
	checks  map[string]Pinger
}

// NewHealthHandler reports the process as ready only when every named
// dependency answers a ping.
func NewHealthHandler(version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, checks: checks}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, p Pinger) {
			defer wg.Done()
			errs[i] = p.Ping(ctx)
		}(i, h.checks[name])
	}
	wg.Wait()

	resp := healthResponse{
		Status:    "ok",
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string, len(names)),
	}
	status := http.StatusOK
	for i, name := range names {
		if errs[i] != nil {
			logging.FromContext(r.Context()).Warn("readiness check failed", "check", name, "error", errs[i])
			resp.Checks[name] = "down"
			resp.Status = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	RespondJSON(w, status, resp)
}
