package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"rangecal/internal/blackout"
	"rangecal/internal/calendar"
	"rangecal/internal/config"
	"rangecal/internal/dates"
	appLog "rangecal/internal/log"
	"rangecal/internal/months"
)

const sessionCookie = "rangecal_session"

// Server exposes calendar sessions over a JSON API and renders them as a
// server-side page for browsers and screenshots.
type Server struct {
	cfg *config.Config
	mux *http.ServeMux

	sessions *Store

	// base is cloned into every new session; blackout refreshes update its
	// constraints.
	baseMu sync.RWMutex
	base   calendar.Options
	// static holds the exclusions base started with; refreshes rebuild the
	// excluded set from it so dates dropped from a feed are released.
	static dates.Set

	blackoutMu sync.RWMutex
	blackout   blackoutStatus
}

type blackoutStatus struct {
	Days      int       `json:"days"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     string    `json:"error,omitempty"`
}

// NewServer constructs a Server whose sessions start from base.
func NewServer(cfg *config.Config, base calendar.Options) *Server {
	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		base:   base,
		static: base.Constraints.Excluded.Clone(),
	}
	s.sessions = NewStore(s.newEngine)
	s.registerRoutes()
	return s
}

func (s *Server) newEngine() *calendar.Engine {
	s.baseMu.RLock()
	defer s.baseMu.RUnlock()
	return calendar.New(s.base)
}

// Sessions exposes the session store for maintenance jobs.
func (s *Server) Sessions() *Store { return s.sessions }

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials count as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="rangecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /calendar", s.handleCalendarPage)
	s.mux.HandleFunc("GET /api/blackout", s.handleBlackout)
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/{action}", s.handleAction)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/calendar", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// ApplyBlackout merges a freshly loaded blackout snapshot into the base
// options and into every live session. A failed load still applies whatever
// the snapshot holds.
func (s *Server) ApplyBlackout(snap blackout.Snapshot, loadErr error) {
	s.baseMu.Lock()
	c := s.base.Constraints
	c.Excluded = s.static.Merge(snap.Dates)
	s.base.Constraints = c
	s.baseMu.Unlock()

	s.sessions.Each(func(e *calendar.Engine) {
		e.SetConstraints(c)
	})

	st := blackoutStatus{Days: len(snap.Dates), UpdatedAt: snap.UpdatedAt}
	if !snap.Window.Start.IsZero() {
		st.From = string(dates.Format(snap.Window.Start))
		st.To = string(dates.Format(snap.Window.End.AddDate(0, 0, -1)))
	}
	if loadErr != nil {
		st.Error = loadErr.Error()
	}
	s.blackoutMu.Lock()
	s.blackout = st
	s.blackoutMu.Unlock()

	appLog.Info("blackout applied", "days", st.Days, "sessions", s.sessions.Len())
}

func (s *Server) handleBlackout(w http.ResponseWriter, _ *http.Request) {
	s.blackoutMu.RLock()
	st := s.blackout
	s.blackoutMu.RUnlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	var width int
	if v := r.URL.Query().Get("width"); v != "" {
		width, _ = strconv.Atoi(v)
	}
	var state stateResponse
	events := sess.Do(func(e *calendar.Engine) {
		if width > 0 {
			e.EvaluateWidth(width)
		}
		state = buildState(sess.ID, e)
	})
	state.Applied = true
	state.Events = toEventDTOs(events)
	appLog.Debug("session created", "session", sess.ID)
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var state stateResponse
	sess.Do(func(e *calendar.Engine) {
		state = buildState(sess.ID, e)
	})
	state.Applied = true
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, errSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// actionRequest carries the arguments of every session action; each action
// reads only the fields it needs.
type actionRequest struct {
	Date      string      `json:"date"`
	Side      months.Side `json:"side"`
	Direction int         `json:"direction"`

	Months           []months.Descriptor `json:"months"`
	EnforceAdjacency *bool               `json:"enforce_adjacency"`

	Month *int `json:"month"`
	Year  *int `json:"year"`

	Kind  string `json:"kind"`
	Value *int   `json:"value"`
	Delta int    `json:"delta"`

	Key   string `json:"key"`
	Width int    `json:"width"`

	Selected string `json:"selected"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

var (
	errBadRequest    = errors.New("bad request")
	errUnknownAction = errors.New("unknown action")
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	action := r.PathValue("action")

	var req actionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var (
		state   stateResponse
		applied bool
		actErr  error
	)
	events := sess.Do(func(e *calendar.Engine) {
		applied, actErr = applyAction(e, action, req)
		if actErr == nil {
			state = buildState(sess.ID, e)
		}
	})

	switch {
	case errors.Is(actErr, errUnknownAction):
		writeError(w, http.StatusNotFound, actErr.Error())
		return
	case actErr != nil:
		writeError(w, http.StatusBadRequest, actErr.Error())
		return
	}

	state.Applied = applied
	state.Events = toEventDTOs(events)
	appLog.Debug("session action", "session", sess.ID, "action", action, "applied", applied, "events", len(events))
	writeJSON(w, http.StatusOK, state)
}

// applyAction maps one inbound interaction onto the engine. The boolean
// reports whether the engine accepted it (a click on a disabled date is
// rejected without error).
func applyAction(e *calendar.Engine, action string, req actionRequest) (bool, error) {
	switch action {
	case "click":
		if _, ok := dates.ParseKey(req.Date); !ok {
			return false, badRequest("date %q is not YYYY-MM-DD", req.Date)
		}
		return e.ClickKey(req.Date), nil

	case "hover":
		t, err := dates.ParseInLocation(req.Date, e.Location())
		if err != nil {
			return false, badRequest("date %q is not YYYY-MM-DD", req.Date)
		}
		return e.HoverEnter(t), nil

	case "leave":
		e.HoverLeave()
		return true, nil

	case "navigate":
		if req.Direction == 0 {
			return false, nil
		}
		e.Navigate(req.Side, req.Direction)
		return true, nil

	case "previous":
		e.Previous(req.Side)
		return true, nil

	case "next":
		e.Next(req.Side)
		return true, nil

	case "months":
		if len(req.Months) == 0 {
			return false, nil
		}
		enforce := true
		if req.EnforceAdjacency != nil {
			enforce = *req.EnforceAdjacency
		}
		e.SetDisplayedMonths(req.Months, enforce)
		return true, nil

	case "month":
		if req.Month == nil {
			return false, badRequest("month is required")
		}
		e.SetMonth(req.Side, *req.Month)
		return true, nil

	case "year":
		if req.Year == nil {
			return false, badRequest("year is required")
		}
		e.SetYear(req.Side, *req.Year)
		return true, nil

	case "picker-open":
		switch req.Kind {
		case "month":
			e.OpenMonthPicker(req.Side)
		case "year":
			e.OpenYearPicker(req.Side)
		default:
			return false, badRequest("picker kind must be month or year, got %q", req.Kind)
		}
		return true, nil

	case "picker-select":
		if req.Value == nil {
			return false, badRequest("value is required")
		}
		switch e.Picker().Kind {
		case calendar.PickerMonth:
			return e.SelectPickerMonth(*req.Value), nil
		case calendar.PickerYear:
			return e.SelectPickerYear(*req.Value), nil
		}
		return false, nil

	case "picker-close":
		open := e.Picker().Open()
		e.ClosePicker()
		return open, nil

	case "picker-page":
		if !e.Picker().Open() || e.Picker().Kind != calendar.PickerYear {
			return false, nil
		}
		e.ShiftYearPage(req.Delta)
		return true, nil

	case "key":
		return e.Key(req.Key), nil

	case "resize":
		if req.Width <= 0 {
			return false, badRequest("width must be positive")
		}
		e.EvaluateWidth(req.Width)
		return true, nil

	case "value":
		e.SetValue(req.Selected)
		return true, nil

	case "range":
		e.SetRange(req.Start, req.End)
		return true, nil

	case "clear":
		e.Clear()
		return true, nil
	}
	return false, fmt.Errorf("%w %q", errUnknownAction, action)
}

func toEventDTOs(events []calendar.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		out = append(out, eventDTO{Name: ev.Name(), Detail: ev.Describe()})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
