package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"rangecal/internal/blackout"
	"rangecal/internal/config"
	appLog "rangecal/internal/log"
	"rangecal/internal/web"
)

const (
	sessionIdle     = time.Hour
	sweepSpec       = "@every 10m"
	rolloverSpec    = "0 0 * * *"
	blackoutTimeout = 2 * time.Minute
	shutdownTimeout = 5 * time.Second
)

func addServe(topLevel *cobra.Command, flags *rootFlags) {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calendar page and session API.",
		Example: `
rangecal serve --listen 127.0.0.1:8080
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if listen != "" {
				conf.Listen = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, conf)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	topLevel.AddCommand(cmd)
}

// app is a configured server plus its background jobs, shared by serve and
// capture --standalone.
type app struct {
	conf   *config.Config
	server *web.Server
	loader *blackout.Loader
	cron   *cron.Cron

	// refreshMu serializes blackout loads; the refresh and rollover jobs can
	// fire in the same minute and share one feed cache.
	refreshMu sync.Mutex
}

func newApp(conf *config.Config) (*app, error) {
	opts, err := conf.Options()
	if err != nil {
		appLog.Warn("calendar options degraded to defaults", "error", err.Error())
	}
	loader, err := blackout.NewLoader(conf, opts.Location)
	if err != nil {
		appLog.Warn("static blackout dates partially invalid", "error", err.Error())
	}

	jobs := cron.New(
		cron.WithLocation(opts.Location),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	a := &app{
		conf:   conf,
		server: web.NewServer(conf, opts),
		loader: loader,
		cron:   jobs,
	}

	if _, err := a.cron.AddFunc(conf.Blackout.RefreshCron, a.refreshBlackout); err != nil {
		return nil, fmt.Errorf("blackout refresh schedule %q: %w", conf.Blackout.RefreshCron, err)
	}
	// The blackout window starts at today; move it forward at midnight.
	if _, err := a.cron.AddFunc(rolloverSpec, func() {
		appLog.Info("day rollover")
		a.refreshBlackout()
	}); err != nil {
		return nil, err
	}
	if _, err := a.cron.AddFunc(sweepSpec, func() {
		if n := a.server.Sessions().Sweep(sessionIdle); n > 0 {
			appLog.Info("idle sessions removed", "count", n, "remaining", a.server.Sessions().Len())
		}
	}); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) refreshBlackout() {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), blackoutTimeout)
	defer cancel()
	snap, err := a.loader.Load(ctx)
	if err != nil {
		appLog.Error("blackout refresh incomplete", err)
	}
	a.server.ApplyBlackout(snap, err)
}

// run serves on ln until ctx is done, then shuts down gracefully.
func (a *app) run(ctx context.Context, ln net.Listener) error {
	a.refreshBlackout()
	a.cron.Start()
	defer func() { <-a.cron.Stop().Done() }()

	httpSrv := &http.Server{
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()
	appLog.Info("http server listening", "addr", "http://"+ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	appLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func serve(ctx context.Context, conf *config.Config) error {
	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"locale", conf.Locale,
		"mode", conf.Calendar.Mode,
		"range_calendar_count", conf.Calendar.RangeCalendarCount,
		"ics_count", len(conf.Blackout.ICS),
		"rule_count", len(conf.Blackout.Rules),
		"refresh", conf.Blackout.RefreshCron,
	)
	a, err := newApp(conf)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", conf.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", conf.Listen, err)
	}
	return a.run(ctx, ln)
}
