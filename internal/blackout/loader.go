// Package blackout computes the dates a calendar must refuse: fixed dates
// from configuration, recurring RRULE rules, and events from ICS feeds.
package blackout

import (
	"context"
	"time"

	cerrors "cloudeng.io/errors"

	"rangecal/internal/config"
	"rangecal/internal/dates"
	appLog "rangecal/internal/log"
)

// Snapshot is the result of one load.
type Snapshot struct {
	Dates     dates.Set
	Window    Window
	UpdatedAt time.Time

	StaticDays int
	RuleDays   int
	FeedDays   int
}

// Loader unions every blackout source over a rolling horizon.
type Loader struct {
	Static      dates.Set
	Rules       []string
	Sources     []Source
	HorizonDays int
	Location    *time.Location
	Fetcher     *Fetcher
	Now         func() time.Time
}

// NewLoader builds a Loader from cfg. Static-date parse errors are returned
// alongside a usable loader.
func NewLoader(cfg *config.Config, loc *time.Location) (*Loader, error) {
	static, err := cfg.StaticDisabled()
	sources := make([]Source, 0, len(cfg.Blackout.ICS))
	for _, s := range cfg.Blackout.ICS {
		sources = append(sources, Source{ID: s.ID, Name: s.Name, URL: s.URL})
	}
	return &Loader{
		Static:      static,
		Rules:       cfg.Blackout.Rules,
		Sources:     sources,
		HorizonDays: cfg.Blackout.HorizonDays,
		Location:    loc,
		Fetcher:     NewFetcher(cfg.Blackout.CacheDir, nil),
	}, err
}

// Load evaluates every source. Failing sources are skipped and reported in
// the aggregated error; the snapshot always holds what could be computed.
func (l *Loader) Load(ctx context.Context) (Snapshot, error) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	w := NewWindow(now(), l.HorizonDays, loc)
	snap := Snapshot{Window: w, UpdatedAt: now()}
	var errs cerrors.M

	ruleDays, err := ExpandRules(l.Rules, w)
	errs.Append(err)

	feedDays := dates.NewSet()
	if len(l.Sources) > 0 {
		fetcher := l.Fetcher
		if fetcher == nil {
			fetcher = NewFetcher("", nil)
		}
		results, err := fetcher.FetchAll(ctx, l.Sources)
		errs.Append(err)
		for _, res := range results {
			events, err := ParseICS(res.Source, res.Body)
			if err != nil {
				errs.Append(err)
				continue
			}
			expanded, err := ExpandEvents(events, w)
			if err != nil {
				errs.Append(err)
				continue
			}
			days := expanded.Days(w)
			appLog.Debug("blackout feed expanded", "id", res.Source.ID, "occurrences", len(expanded.Occurrences), "days", len(days), "from_cache", res.FromCache)
			feedDays = feedDays.Merge(days)
		}
	}

	snap.Dates = l.Static.Merge(ruleDays, feedDays)
	snap.StaticDays = len(l.Static)
	snap.RuleDays = len(ruleDays)
	snap.FeedDays = len(feedDays)

	appLog.Info("blackout loaded", "days", len(snap.Dates), "static", snap.StaticDays, "rules", snap.RuleDays, "feeds", snap.FeedDays)
	return snap, errs.Err()
}
