package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/teemow/quickcal/internal/authflow"
	"github.com/teemow/quickcal/internal/credstore"
	"github.com/teemow/quickcal/internal/event"
	"github.com/teemow/quickcal/internal/logging"
	"github.com/teemow/quickcal/internal/scheduler"
	"github.com/teemow/quickcal/internal/tools/batch"
)

const maxRequestBody = 1 << 20

// createEventRequest is the body of POST /api/events.
type createEventRequest struct {
	// Users is a user name or a list of user names.
	Users     any      `json:"users"`
	Summary   string   `json:"summary"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Attendees []string `json:"attendees"`
}

// sentenceRequest is the body of POST /api/events/parse and /api/events/quick.
type sentenceRequest struct {
	Users any    `json:"users"`
	Text  string `json:"text"`
}

// scheduleResponse reports a dispatched event per user.
type scheduleResponse struct {
	Draft      event.Draft `json:"draft"`
	Unresolved []string    `json:"unresolved_attendees,omitempty"`
	batch.BatchResult
}

// whoamiResponse describes a user's connected calendar.
type whoamiResponse struct {
	User       string `json:"user"`
	CalendarID string `json:"calendar_id"`
	Calendar   string `json:"calendar"`
	TimeZone   string `json:"time_zone,omitempty"`
}

// userParam returns the {user} route parameter, unescaped.
func userParam(r *http.Request) string {
	raw := chi.URLParam(r, "user")
	if user, err := url.PathUnescape(raw); err == nil {
		return user
	}
	return raw
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Request body must be a JSON object: "+err.Error())
		return false
	}
	return true
}

func (s *HTTPServer) handleIndex(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, http.StatusOK, "index.html", pageData{
		Title: "Connect your calendar",
		Names: s.sc.Scheduler().Directory().Names(),
	})
}

// handleAuthForm redirects the index form to /auth/{user}.
func (s *HTTPServer) handleAuthForm(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, authflow.AuthPath(user), http.StatusSeeOther)
}

func (s *HTTPServer) handleAuth(w http.ResponseWriter, r *http.Request) {
	auth := s.sc.Auth()
	if auth == nil {
		renderPage(w, http.StatusServiceUnavailable, "result.html", pageData{
			Title:   "Authorization unavailable",
			Message: "No Google OAuth client is configured. Set GOOGLE_CLIENT_CONFIG_JSON or provide client_secret.json.",
		})
		return
	}

	user := userParam(r)
	consentURL, err := auth.Begin(user)
	if err != nil {
		status, _ := statusFor(err)
		renderPage(w, status, "result.html", pageData{
			Title:    "Cannot start authorization",
			Message:  scheduler.Explain(err),
			Link:     "/",
			LinkText: "Back",
		})
		return
	}
	http.Redirect(w, r, consentURL, http.StatusFound)
}

func (s *HTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	auth := s.sc.Auth()
	if auth == nil {
		renderPage(w, http.StatusServiceUnavailable, "result.html", pageData{
			Title:   "Authorization unavailable",
			Message: "No Google OAuth client is configured.",
		})
		return
	}

	user := userParam(r)
	if _, err := auth.Complete(r.Context(), user, r.URL.Query()); err != nil {
		status, _ := statusFor(err)
		data := pageData{
			Title:   "Authorization failed",
			Message: scheduler.Explain(err),
		}
		if credstore.ValidateUser(user) == nil {
			data.Link = authflow.AuthPath(user)
			data.LinkText = "Start again"
		}
		renderPage(w, status, "result.html", data)
		return
	}

	message := fmt.Sprintf("%s is connected. Events can now be created in this calendar.", user)
	info, err := s.sc.Scheduler().WhoAmI(r.Context(), user)
	if err != nil {
		s.sc.Logger().Warn("connected calendar lookup failed", logging.User(user), logging.Err(err))
	} else {
		message = fmt.Sprintf("%s is connected to the Google Calendar %q.", user, info.Summary)
	}
	renderPage(w, http.StatusOK, "result.html", pageData{
		Title:    "Calendar connected",
		Message:  message,
		OK:       true,
		Link:     "/whoami/" + url.PathEscape(user),
		LinkText: "Show connected calendar",
	})
}

func (s *HTTPServer) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	user := userParam(r)
	info, err := s.sc.Scheduler().WhoAmI(r.Context(), user)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, whoamiResponse{
		User:       user,
		CalendarID: info.ID,
		Calendar:   info.Summary,
		TimeZone:   info.TimeZone,
	})
}

func (s *HTTPServer) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	users, err := batch.ParseStringOrArray(req.Users, "users")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	report, err := s.sc.Scheduler().Schedule(r.Context(), users, event.Draft{
		Summary:   req.Summary,
		Start:     req.Start,
		End:       req.End,
		Attendees: req.Attendees,
	})
	if err != nil {
		writePipelineError(w, err)
		return
	}
	s.writeReport(w, report)
}

func (s *HTTPServer) handleParseEvent(w http.ResponseWriter, r *http.Request) {
	var req sentenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	preview, err := s.sc.Scheduler().Preview(r.Context(), req.Text)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *HTTPServer) handleQuickAdd(w http.ResponseWriter, r *http.Request) {
	var req sentenceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	users, err := batch.ParseStringOrArray(req.Users, "users")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	report, err := s.sc.Scheduler().ScheduleText(r.Context(), users, req.Text)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	s.writeReport(w, report)
}

// writeReport answers 200 when every user got the event and 207 otherwise.
func (s *HTTPServer) writeReport(w http.ResponseWriter, report *scheduler.Report) {
	resp := scheduleResponse{
		Draft:       report.Draft,
		Unresolved:  report.Unresolved,
		BatchResult: batch.Summarize(batch.FromOutcomes(report.Outcomes, scheduler.Explain)),
	}

	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
		s.sc.Logger().Info("event partially scheduled",
			slog.Int("successful", resp.Successful),
			slog.Int("failed", resp.Failed),
		)
	}
	writeJSON(w, status, resp)
}
