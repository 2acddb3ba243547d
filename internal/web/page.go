package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"rangecal/internal/calendar"
	appLog "rangecal/internal/log"
)

//go:embed templates/calendar.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/calendar.html"))

type pageData struct {
	Locale string
	State  stateResponse
}

// handleCalendarPage renders a session as HTML. The session comes from the
// "session" query parameter or cookie and is created when missing. A
// "width" parameter feeds the responsive pane decision. The root element
// carries data-ready="true" once rendered so screenshot tools can wait on it.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
	}
	sess := s.sessions.GetOrCreate(id)
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))

	var data pageData
	sess.Do(func(e *calendar.Engine) {
		if width > 0 {
			e.EvaluateWidth(width)
		}
		data = pageData{Locale: e.Locale(), State: buildState(sess.ID, e)}
	})

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		appLog.Error("calendar page render failed", err, "session", sess.ID)
	}
}
