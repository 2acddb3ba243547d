package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"rangecal/internal/capture"
	appLog "rangecal/internal/log"
)

func addCapture(topLevel *cobra.Command, flags *rootFlags) {
	opts := capture.Options{}
	standalone := false
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Screenshot the calendar page to a PNG with headless Chromium.",
		Example: `
rangecal capture --out calendar.png
rangecal capture --standalone --width 480 --out narrow.png
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !standalone {
				return capture.CalendarPNG(cmd.Context(), opts)
			}
			return captureStandalone(cmd.Context(), flags, opts)
		},
	}
	cmd.Flags().StringVar(&opts.URL, "url", capture.DefaultURL, "Calendar page URL")
	cmd.Flags().StringVar(&opts.OutputPath, "out", "rangecal.png", "Output PNG path")
	cmd.Flags().IntVar(&opts.Width, "width", capture.DefaultWidth, "Viewport width in pixels")
	cmd.Flags().IntVar(&opts.Height, "height", capture.DefaultHeight, "Viewport height in pixels")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", capture.DefaultTimeout, "Overall capture timeout")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "Start an in-process server on a loopback port and capture it")
	topLevel.AddCommand(cmd)
}

// captureStandalone serves the configured calendar on an ephemeral loopback
// port for the duration of one capture.
func captureStandalone(ctx context.Context, flags *rootFlags, opts capture.Options) error {
	conf, err := loadConfig(flags)
	if err != nil {
		return err
	}
	conf.BasicAuth = nil

	a, err := newApp(conf)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srvCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- a.run(srvCtx, ln) }()
	defer func() {
		stop()
		if err := <-done; err != nil {
			appLog.Warn("standalone server stopped with error", "error", err.Error())
		}
	}()

	opts.URL = fmt.Sprintf("http://%s/calendar", ln.Addr().String())
	start := time.Now()
	if err := capture.CalendarPNG(ctx, opts); err != nil {
		return err
	}
	appLog.Debug("standalone capture finished", "elapsed", time.Since(start).String())
	return nil
}
