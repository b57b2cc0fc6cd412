// Package pdf turns the service's documents into HTML and prints them to PDF with a
// headless Chrome.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/josh-kwaku/edificio/internal/domain"
)

// Renderer prints a complete HTML document to PDF.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

const defaultTimeout = 30 * time.Second

// A4 in inches, the unit PrintToPDF expects.
const (
	a4Width  = 210 / 25.4
	a4Height = 297 / 25.4
	margin   = 12 / 25.4
)

var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
	"chrome",
}

type ChromeConfig struct {
	// ExecPath is the browser binary. Empty means look it up in PATH.
	ExecPath string
	// RemoteURL points at an already running browser's DevTools endpoint.
	RemoteURL string
	Timeout   time.Duration
	NoSandbox bool
}

type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
	logger      *slog.Logger
}

// NewChromeRenderer returns a renderer backed by Chrome, or a disabled renderer when no
// browser can be found.
func NewChromeRenderer(cfg ChromeConfig, logger *slog.Logger) Renderer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	r := &ChromeRenderer{timeout: timeout, logger: logger}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		logger.Info("pdf renderer using remote browser", "url", cfg.RemoteURL)
		return r
	}

	path := cfg.ExecPath
	if path == "" {
		path = lookupChrome()
	}
	if path == "" {
		logger.Warn("no chrome binary found, pdf documents disabled")
		return Disabled{}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(path),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	logger.Info("pdf renderer using local browser", "path", path)
	return r
}

func lookupChrome() string {
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

func (r *ChromeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	if strings.TrimSpace(html) == "" {
		return nil, errors.New("Render: empty document")
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		r.logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer tabCancel()

	// Close the tab when the caller gives up.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	var out []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			out = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("Render: timed out after %s: %w", r.timeout, err)
		}
		return nil, fmt.Errorf("Render: %w", err)
	}
	if len(out) == 0 {
		return nil, errors.New("Render: browser returned an empty document")
	}
	return out, nil
}

func (r *ChromeRenderer) Close() {
	if r.allocCancel != nil {
		r.allocCancel()
	}
}

// Disabled answers every render with ErrRendererDisabled.
type Disabled struct{}

func (Disabled) Render(context.Context, string) ([]byte, error) {
	return nil, domain.ErrRendererDisabled
}
