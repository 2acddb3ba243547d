package capture

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	o, err := Options{OutputPath: "out.png"}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight || o.Timeout != DefaultTimeout {
		t.Fatalf("defaults not applied: %+v", o)
	}
	if want := "http://127.0.0.1:8080/calendar?width=1024"; o.URL != want {
		t.Fatalf("URL = %q, want %q", o.URL, want)
	}
}

func TestNormalizeKeepsExplicitWidthParam(t *testing.T) {
	o, err := Options{
		URL:        "https://cal.example.com/calendar?session=abc&width=500",
		OutputPath: "out.png",
		Width:      800,
		Timeout:    time.Second,
	}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.Contains(o.URL, "width=500") || !strings.Contains(o.URL, "session=abc") {
		t.Fatalf("URL = %q", o.URL)
	}
	if o.Timeout != time.Second {
		t.Fatalf("timeout overwritten: %v", o.Timeout)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"missing output", Options{URL: DefaultURL}, "output path"},
		{"bad scheme", Options{URL: "file:///etc/passwd", OutputPath: "x.png"}, "scheme"},
		{"unparsable", Options{URL: "http://[::1", OutputPath: "x.png"}, "parse url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.opts.Normalize()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestCalendarPNGValidatesBeforeLaunch(t *testing.T) {
	if err := CalendarPNG(context.Background(), Options{}); err == nil {
		t.Fatalf("expected error without output path")
	}
}
