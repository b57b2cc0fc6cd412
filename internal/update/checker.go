// Package update asks a release feed whether a newer build is published.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/logging"
)

// Release is the manifest the feed serves.
type Release struct {
	Version     string    `json:"version"`
	Notes       string    `json:"notes"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

type Result struct {
	Current   string   `json:"current"`
	Available bool     `json:"available"`
	Latest    *Release `json:"latest,omitempty"`
}

type Checker struct {
	feedURL    string
	current    string
	httpClient *http.Client
}

func NewChecker(feedURL, current string) *Checker {
	return &Checker{
		feedURL: feedURL,
		current: current,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *Checker) Check(ctx context.Context) (*Result, error) {
	if c.feedURL == "" {
		return nil, fmt.Errorf("Check: %w", domain.ErrUpdateFeedDisabled)
	}
	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("Check: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Check: send: %w", err)
	}
	defer resp.Body.Close()

	log.Info("release feed response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Check: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var latest Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&latest); err != nil {
		return nil, fmt.Errorf("Check: decode: %w", err)
	}

	remote := canonical(latest.Version)
	if remote == "" {
		return nil, fmt.Errorf("Check: feed version %q is not semver", latest.Version)
	}

	res := &Result{Current: c.current, Latest: &latest}
	local := canonical(c.current)
	// Development builds report no version and never offer an update.
	res.Available = local != "" && semver.Compare(remote, local) > 0
	return res, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}
