package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"rangecal/internal/config"
	appLog "rangecal/internal/log"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCommand()
	want := map[string]bool{"serve": false, "capture": false, "pick": false, "version": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil || root.PersistentFlags().Lookup("log-level") == nil {
		t.Fatalf("persistent flags missing")
	}
}

func TestLoadConfigLogLevelOverride(t *testing.T) {
	t.Cleanup(func() { appLog.SetLevel(appLog.LevelInfo) })
	flags := &rootFlags{configPath: filepath.Join(t.TempDir(), "config.yaml"), logLevel: "nope"}
	if _, err := loadConfig(flags); err == nil {
		t.Fatalf("expected error for bad log level")
	}

	flags.logLevel = "debug"
	conf, err := loadConfig(flags)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if conf.Listen == "" {
		t.Fatalf("default config not loaded")
	}
}

func TestNewAppRejectsBadSchedule(t *testing.T) {
	conf := config.DefaultConfig()
	conf.Blackout.RefreshCron = "every tuesday"
	if _, err := newApp(conf); err == nil || !strings.Contains(err.Error(), "every tuesday") {
		t.Fatalf("err = %v", err)
	}
}

func TestAppRunServesAndShutsDown(t *testing.T) {
	var logs bytes.Buffer
	appLog.SetOutput(&logs)
	t.Cleanup(func() { appLog.SetOutput(io.Discard) })

	conf := config.DefaultConfig()
	conf.Blackout.CacheDir = t.TempDir()
	conf.Calendar.DisabledDates = []string{"2030-01-01"}
	a, err := newApp(conf)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.run(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/blackout")
	if err != nil {
		t.Fatalf("GET /api/blackout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("server did not shut down")
	}
	if !strings.Contains(logs.String(), "blackout applied") {
		t.Fatalf("initial blackout refresh not logged:\n%s", logs.String())
	}
}

func TestBlackoutRefreshesDoNotOverlap(t *testing.T) {
	appLog.SetOutput(io.Discard)

	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte("BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//rangecal//test//EN\r\nEND:VCALENDAR\r\n"))
	}))
	defer srv.Close()

	conf := config.DefaultConfig()
	conf.Blackout.CacheDir = t.TempDir()
	conf.Blackout.ICS = []config.ICSConfig{{ID: "team", URL: srv.URL + "/team.ics"}}
	a, err := newApp(conf)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.refreshBlackout()
		}()
	}
	wg.Wait()
	if got := peak.Load(); got != 1 {
		t.Fatalf("refreshes overlapped: %d concurrent feed requests", got)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--short"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
}
