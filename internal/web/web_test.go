package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rangecal/internal/blackout"
	"rangecal/internal/calendar"
	"rangecal/internal/config"
	"rangecal/internal/dates"
)

var testNow = time.Date(2024, time.June, 3, 9, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, mode calendar.Mode, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	opts := calendar.Options{
		Mode:               mode,
		RangeCalendarCount: calendar.PanesTwo,
		Location:           time.UTC,
		Now:                func() time.Time { return testNow },
		Constraints:        dates.Constraints{Excluded: dates.NewSet("2024-06-12")},
	}
	return NewServer(cfg, opts)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	var st stateResponse
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode state: %v (body %q)", err, rec.Body.String())
	}
	return st
}

func createSession(t *testing.T, h http.Handler) stateResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	return decodeState(t, rec)
}

func eventNames(st stateResponse) []string {
	out := make([]string, 0, len(st.Events))
	for _, ev := range st.Events {
		out = append(out, ev.Name)
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, calendar.ModeSingle, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestRangeSelectionOverAPI(t *testing.T) {
	s := newTestServer(t, calendar.ModeRange, nil)
	h := s.Handler()
	st := createSession(t, h)
	if len(st.Panes) != 2 || st.Panes[0].Title != "June 2024" || st.Panes[1].Title != "July 2024" {
		t.Fatalf("unexpected panes %+v", st.Panes)
	}
	base := "/api/sessions/" + st.Session

	st = decodeState(t, do(t, h, http.MethodPost, base+"/click", `{"date":"2024-06-20"}`))
	if st.Phase != "start-selected" || strings.Join(eventNames(st), ",") != "range-started" {
		t.Fatalf("unexpected state after first click: %s %v", st.Phase, eventNames(st))
	}

	st = decodeState(t, do(t, h, http.MethodPost, base+"/hover", `{"date":"2024-06-25"}`))
	if st.HoverDate != "2024-06-25" || !st.Applied {
		t.Fatalf("expected preview, got %+v", st.HoverDate)
	}

	st = decodeState(t, do(t, h, http.MethodPost, base+"/click", `{"date":"2024-06-15"}`))
	if st.StartDate != "2024-06-15" || st.EndDate != "2024-06-20" {
		t.Fatalf("expected swapped range, got %s..%s", st.StartDate, st.EndDate)
	}
	if strings.Join(eventNames(st), ",") != "range-selected" {
		t.Fatalf("unexpected events %v", eventNames(st))
	}
	if st.HoverDate != "" {
		t.Fatalf("completed range must clear hover")
	}
}

func TestDisabledClickIsRejectedQuietly(t *testing.T) {
	s := newTestServer(t, calendar.ModeSingle, nil)
	h := s.Handler()
	st := createSession(t, h)
	rec := do(t, h, http.MethodPost, "/api/sessions/"+st.Session+"/click", `{"date":"2024-06-12"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	st = decodeState(t, rec)
	if st.Applied || st.Value != "" || len(st.Events) != 0 {
		t.Fatalf("disabled click must change nothing, got %+v", st)
	}
}

func TestActionValidation(t *testing.T) {
	s := newTestServer(t, calendar.ModeSingle, nil)
	h := s.Handler()
	st := createSession(t, h)
	base := "/api/sessions/" + st.Session

	cases := []struct {
		path, body string
		want       int
	}{
		{base + "/click", `{"date":"2024-13-01"}`, http.StatusBadRequest},
		{base + "/click", `{not json`, http.StatusBadRequest},
		{base + "/navigate", `{"side":"middle","direction":1}`, http.StatusBadRequest},
		{base + "/month", `{}`, http.StatusBadRequest},
		{base + "/teleport", `{}`, http.StatusNotFound},
		{"/api/sessions/nope/click", `{"date":"2024-06-01"}`, http.StatusNotFound},
	}
	for _, c := range cases {
		if rec := do(t, h, http.MethodPost, c.path, c.body); rec.Code != c.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", c.path, c.body, c.want, rec.Code, rec.Body.String())
		}
	}
}

func TestNavigationAndPickers(t *testing.T) {
	s := newTestServer(t, calendar.ModeRange, nil)
	h := s.Handler()
	st := createSession(t, h)
	base := "/api/sessions/" + st.Session

	st = decodeState(t, do(t, h, http.MethodPost, base+"/next", `{"side":"right"}`))
	if st.Panes[0].Month != 6 || st.Panes[1].Month != 7 {
		t.Fatalf("unexpected panes after next: %d/%d", st.Panes[0].Month, st.Panes[1].Month)
	}
	if strings.Join(eventNames(st), ",") != "months-changed" {
		t.Fatalf("unexpected events %v", eventNames(st))
	}

	st = decodeState(t, do(t, h, http.MethodPost, base+"/picker-open", `{"kind":"year","side":"left"}`))
	if !st.Picker.Open || len(st.Picker.Years) != 12 || st.Picker.Years[0] != 2016 {
		t.Fatalf("unexpected picker %+v", st.Picker)
	}
	st = decodeState(t, do(t, h, http.MethodPost, base+"/picker-page", `{"delta":1}`))
	if st.Picker.Years[0] != 2028 {
		t.Fatalf("unexpected year page %v", st.Picker.Years)
	}
	st = decodeState(t, do(t, h, http.MethodPost, base+"/picker-select", `{"value":2030}`))
	if st.Picker.Open || st.Panes[0].Year != 2030 || st.Panes[1].Year != 2030 {
		t.Fatalf("unexpected state after year select %+v", st.Panes)
	}

	st = decodeState(t, do(t, h, http.MethodPost, base+"/months", `{"months":[{"month":11,"year":2024},{"month":3,"year":2025}]}`))
	if st.Panes[1].Month != 0 || st.Panes[1].Year != 2025 {
		t.Fatalf("adjacency must be enforced by default, got %+v", st.Panes[1])
	}
}

func TestResizeCollapsesAutoPanes(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewServer(cfg, calendar.Options{
		Mode:               calendar.ModeRange,
		RangeCalendarCount: calendar.PanesAuto,
		Location:           time.UTC,
		Now:                func() time.Time { return testNow },
	})
	h := s.Handler()
	st := createSession(t, h)
	st = decodeState(t, do(t, h, http.MethodPost, "/api/sessions/"+st.Session+"/resize", `{"width":320}`))
	if len(st.Panes) != 1 || st.AutoDual {
		t.Fatalf("narrow width should show one pane, got %d", len(st.Panes))
	}
	if st.Panes[0].Side.String() != "single" {
		t.Fatalf("single pane must be addressed as single, got %v", st.Panes[0].Side)
	}
}

func TestCalendarPage(t *testing.T) {
	s := newTestServer(t, calendar.ModeRange, nil)
	rec := do(t, s.Handler(), http.MethodGet, "/calendar", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`data-ready="true"`, `data-date="2024-06-03"`, "June 2024", "day disabled"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookie {
			cookie = c
		}
	}
	if cookie == nil || s.Sessions().Len() != 1 {
		t.Fatalf("expected a session cookie and one session")
	}

	req := httptest.NewRequest(http.MethodGet, "/calendar", nil)
	req.AddCookie(cookie)
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)
	if s.Sessions().Len() != 1 {
		t.Fatalf("cookie must reuse the session, got %d sessions", s.Sessions().Len())
	}
}

func TestApplyBlackoutUpdatesSessions(t *testing.T) {
	s := newTestServer(t, calendar.ModeSingle, nil)
	h := s.Handler()
	st := createSession(t, h)

	s.ApplyBlackout(blackout.Snapshot{
		Dates:     dates.NewSet("2024-06-14"),
		Window:    blackout.NewWindow(testNow, 30, time.UTC),
		UpdatedAt: testNow,
	}, errors.New("feed down"))

	st = decodeState(t, do(t, h, http.MethodPost, "/api/sessions/"+st.Session+"/click", `{"date":"2024-06-14"}`))
	if st.Applied {
		t.Fatalf("blackout date must be refused in existing sessions")
	}
	fresh := createSession(t, h)
	fresh = decodeState(t, do(t, h, http.MethodPost, "/api/sessions/"+fresh.Session+"/click", `{"date":"2024-06-12"}`))
	if fresh.Applied {
		t.Fatalf("static exclusions must survive a blackout merge")
	}

	rec := do(t, h, http.MethodGet, "/api/blackout", "")
	var status blackoutStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Days != 1 || status.Error != "feed down" || status.From != "2024-06-03" || status.To != "2024-07-03" {
		t.Fatalf("unexpected blackout status %+v", status)
	}
}

func TestApplyBlackoutReleasesDroppedDates(t *testing.T) {
	s := newTestServer(t, calendar.ModeSingle, nil)
	h := s.Handler()
	st := createSession(t, h)

	s.ApplyBlackout(blackout.Snapshot{Dates: dates.NewSet("2024-06-14")}, nil)
	s.ApplyBlackout(blackout.Snapshot{Dates: dates.NewSet("2024-06-20")}, nil)

	st = decodeState(t, do(t, h, http.MethodPost, "/api/sessions/"+st.Session+"/click", `{"date":"2024-06-14"}`))
	if !st.Applied || st.Value != "2024-06-14" {
		t.Fatalf("date dropped from the feed should be selectable again: %+v", st)
	}
	st = decodeState(t, do(t, h, http.MethodPost, "/api/sessions/"+st.Session+"/click", `{"date":"2024-06-12"}`))
	if st.Applied {
		t.Fatalf("static exclusion lost after refresh")
	}
}

func TestBasicAuth(t *testing.T) {
	s := newTestServer(t, calendar.ModeSingle, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "admin", Password: "secret"}
	})
	h := s.Handler()
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/calendar", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/calendar", nil)
	req.SetBasicAuth("admin", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with credentials, got %d", rec.Code)
	}
}

func TestDeleteAndSweep(t *testing.T) {
	s := newTestServer(t, calendar.ModeSingle, nil)
	h := s.Handler()
	st := createSession(t, h)
	if rec := do(t, h, http.MethodDelete, "/api/sessions/"+st.Session, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/sessions/"+st.Session, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	createSession(t, h)
	if n := s.Sessions().Sweep(-time.Second); n != 1 || s.Sessions().Len() != 0 {
		t.Fatalf("expected sweep to drop the idle session, dropped %d", n)
	}
}
