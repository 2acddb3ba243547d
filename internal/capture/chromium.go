package capture

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	appLog "rangecal/internal/log"
)

// Defaults sized for the dual-pane layout of the /calendar page.
const (
	DefaultURL     = "http://127.0.0.1:8080/calendar"
	DefaultWidth   = 1024
	DefaultHeight  = 768
	DefaultTimeout = 30 * time.Second
)

// Options defines parameters for a Chromium-based screenshot capture.
type Options struct {
	// URL of the calendar page. The viewport width is appended as a "width"
	// query parameter so the server picks the matching pane count.
	URL string

	// OutputPath is where the PNG is written.
	OutputPath string

	Width  int
	Height int

	// Timeout bounds the entire capture.
	Timeout time.Duration
}

// Normalize fills defaults and validates o. The returned URL carries the
// width parameter.
func (o Options) Normalize() (Options, error) {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.OutputPath == "" {
		return o, fmt.Errorf("capture: output path is required")
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	u, err := url.Parse(o.URL)
	if err != nil {
		return o, fmt.Errorf("capture: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return o, fmt.Errorf("capture: unsupported url scheme %q", u.Scheme)
	}
	q := u.Query()
	if q.Get("width") == "" {
		q.Set("width", fmt.Sprint(o.Width))
	}
	u.RawQuery = q.Encode()
	o.URL = u.String()
	return o, nil
}

// CalendarPNG opens opts.URL in headless Chromium, waits for the page root to
// carry data-ready="true" and writes a full-page PNG to opts.OutputPath.
func CalendarPNG(parentCtx context.Context, opts Options) error {
	opts, err := opts.Normalize()
	if err != nil {
		return err
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var png []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(opts.Width), int64(opts.Height)),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(`[data-ready="true"]`, chromedp.ByQuery),
		chromedp.FullScreenshot(&png, 100),
	}

	start := time.Now()
	if err := chromedp.Run(ctx, tasks); err != nil {
		return fmt.Errorf("capture: chromedp run failed: %w", err)
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("capture: create output dir: %w", err)
		}
	}
	if err := os.WriteFile(opts.OutputPath, png, 0o644); err != nil {
		return fmt.Errorf("capture: failed to write PNG: %w", err)
	}

	appLog.Info("calendar captured",
		"url", opts.URL,
		"out", opts.OutputPath,
		"bytes", len(png),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}
