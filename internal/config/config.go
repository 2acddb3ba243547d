package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	cerrors "cloudeng.io/errors"
	"gopkg.in/yaml.v3"

	"rangecal/internal/calendar"
	"rangecal/internal/dates"
)

const (
	defaultListen      = "127.0.0.1:8080"
	defaultTimezone    = "Local"
	defaultLocale      = "en"
	defaultRefreshCron = "*/15 * * * *"
	defaultHorizonDays = 365
	defaultCacheDir    = "./var/ics-cache"
)

// ICSConfig describes a single ICS subscription whose events block dates.
type ICSConfig struct {
	URL  string `yaml:"url" json:"url"`
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the demo server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CalendarConfig mirrors calendar.Options in YAML-friendly form.
type CalendarConfig struct {
	// Mode is "single" or "range".
	Mode string `yaml:"mode" json:"mode"`
	// RangeCalendarCount is "1", "2" or "auto".
	RangeCalendarCount string `yaml:"range_calendar_count" json:"range_calendar_count"`
	// FirstDayOfWeek is "sunday" or "monday".
	FirstDayOfWeek string `yaml:"first_day_of_week" json:"first_day_of_week"`

	MinDate string `yaml:"min_date,omitempty" json:"min_date,omitempty"`
	MaxDate string `yaml:"max_date,omitempty" json:"max_date,omitempty"`

	DisabledDates []string `yaml:"disabled_dates" json:"disabled_dates"`
	// DisabledRanges holds inclusive "YYYY-MM-DD:YYYY-MM-DD" spans.
	DisabledRanges []string `yaml:"disabled_ranges" json:"disabled_ranges"`
	Disabled       bool     `yaml:"disabled" json:"disabled"`

	Value     string `yaml:"value,omitempty" json:"value,omitempty"`
	StartDate string `yaml:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   string `yaml:"end_date,omitempty" json:"end_date,omitempty"`

	DualPaneThreshold int `yaml:"dual_pane_threshold" json:"dual_pane_threshold"`
}

// BlackoutConfig lists the dynamic sources of blocked dates.
type BlackoutConfig struct {
	// Rules are RRULE strings, e.g. "FREQ=WEEKLY;BYDAY=SA,SU".
	Rules []string    `yaml:"rules" json:"rules"`
	ICS   []ICSConfig `yaml:"ics" json:"ics"`

	// HorizonDays bounds rule and ICS expansion, counted from today.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// RefreshCron is the cron schedule for re-reading blackout sources.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the demo server.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone used to decide "today" and build dates.
	// "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale is handed to renderers for weekday and month names.
	Locale string `yaml:"locale" json:"locale"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Calendar CalendarConfig `yaml:"calendar" json:"calendar"`
	Blackout BlackoutConfig `yaml:"blackout" json:"blackout"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	c := &Config{
		Calendar: CalendarConfig{
			Mode:               "range",
			RangeCalendarCount: "auto",
			FirstDayOfWeek:     "sunday",
		},
	}
	c.Normalize()
	return c
}

// Normalize fills in missing values and coerces unknown enum values so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Locale == "" {
		c.Locale = defaultLocale
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	cal := &c.Calendar
	if m, err := calendar.ParseMode(cal.Mode); err == nil {
		cal.Mode = m.String()
	} else {
		cal.Mode = calendar.ModeSingle.String()
	}
	if p, err := calendar.ParsePaneCount(cal.RangeCalendarCount); err == nil {
		cal.RangeCalendarCount = p.String()
	} else {
		cal.RangeCalendarCount = calendar.PanesAuto.String()
	}
	if d, err := calendar.ParseFirstDayOfWeek(cal.FirstDayOfWeek); err == nil && d == time.Monday {
		cal.FirstDayOfWeek = "monday"
	} else {
		cal.FirstDayOfWeek = "sunday"
	}
	if cal.DualPaneThreshold <= 0 {
		cal.DualPaneThreshold = calendar.DefaultDualPaneThreshold
	}
	if cal.DisabledDates == nil {
		cal.DisabledDates = []string{}
	}
	if cal.DisabledRanges == nil {
		cal.DisabledRanges = []string{}
	}

	b := &c.Blackout
	if b.Rules == nil {
		b.Rules = []string{}
	}
	if b.ICS == nil {
		b.ICS = []ICSConfig{}
	}
	if b.HorizonDays <= 0 {
		b.HorizonDays = defaultHorizonDays
	}
	if b.RefreshCron == "" {
		b.RefreshCron = defaultRefreshCron
	}
	if b.CacheDir == "" {
		b.CacheDir = defaultCacheDir
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// StaticDisabled expands disabled_dates and disabled_ranges. Every malformed
// entry is reported; well-formed entries are still returned.
func (c *Config) StaticDisabled() (dates.Set, error) {
	set := dates.NewSet()
	var errs cerrors.M
	for _, v := range c.Calendar.DisabledDates {
		k, ok := dates.ParseKey(v)
		if !ok {
			errs.Append(fmt.Errorf("config: disabled date %q is not a valid YYYY-MM-DD date", v))
			continue
		}
		set.Add(k)
	}
	for _, v := range c.Calendar.DisabledRanges {
		keys, err := dates.ParseRange(v)
		if err != nil {
			errs.Append(fmt.Errorf("config: disabled range %q: %w", v, err))
			continue
		}
		for _, k := range keys {
			set.Add(k)
		}
	}
	return set, errs.Err()
}

// Options builds engine options from the calendar section. Invalid entries
// degrade to defaults and are reported together in the returned error; the
// options are usable either way.
func (c *Config) Options() (calendar.Options, error) {
	var errs cerrors.M

	mode, err := calendar.ParseMode(c.Calendar.Mode)
	errs.Append(err)
	panes, err := calendar.ParsePaneCount(c.Calendar.RangeCalendarCount)
	errs.Append(err)
	firstDay, err := calendar.ParseFirstDayOfWeek(c.Calendar.FirstDayOfWeek)
	errs.Append(err)
	loc, err := c.Location()
	if err != nil {
		errs.Append(err)
		loc = time.Local
	}
	excluded, err := c.StaticDisabled()
	errs.Append(err)

	opts := calendar.Options{
		Mode:               mode,
		RangeCalendarCount: panes,
		FirstDayOfWeek:     firstDay,
		Constraints: dates.Constraints{
			Disabled: c.Calendar.Disabled,
			Min:      dates.Key(c.Calendar.MinDate),
			Max:      dates.Key(c.Calendar.MaxDate),
			Excluded: excluded,
		},
		Locale:            c.Locale,
		DualPaneThreshold: c.Calendar.DualPaneThreshold,
		Value:             c.Calendar.Value,
		StartDate:         c.Calendar.StartDate,
		EndDate:           c.Calendar.EndDate,
		Location:          loc,
	}
	return opts, errs.Err()
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written with 0600 perms
// and returned. Otherwise the YAML is decoded and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms,
// creating the parent directory with 0700 if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".rangecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
