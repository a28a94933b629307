package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"safarifame/internal/config"
	"safarifame/internal/feed"
	"safarifame/internal/league"
	appLog "safarifame/internal/log"
	"safarifame/internal/metrics"
	"safarifame/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Calendar is the part of the refresher the server depends on.
type Calendar interface {
	Snapshot() feed.Snapshot
	Refresh(ctx context.Context) error
}

// Server serves the site pages and the JSON API.
type Server struct {
	cfg      *config.Config
	calendar Calendar
	league   *league.Store
	metrics  *metrics.Metrics
	mux      *http.ServeMux
	pages    map[string]*template.Template
}

var pageNames = []string{"home", "leaderboard", "admin", "error"}

// NewServer constructs a new Server. m may be nil, in which case
// /metrics is not registered.
func NewServer(cfg *config.Config, cal Calendar, store *league.Store, m *metrics.Metrics) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:      cfg,
		calendar: cal,
		league:   store,
		metrics:  m,
		mux:      http.NewServeMux(),
		pages:    pages,
	}
	s.registerRoutes()
	return s, nil
}

func parsePages() (map[string]*template.Template, error) {
	printer := message.NewPrinter(language.English)
	funcs := template.FuncMap{
		"points": func(n int) string { return printer.Sprintf("%d", n) },
		"rank":   func(i int) int { return i + 1 },
		// Addresses are built from digit-only phone numbers.
		"lightning": func(addr string) template.URL { return template.URL("lightning:" + addr) },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Handler returns the routed handler wrapped with access logging.
func (s *Server) Handler() http.Handler {
	return accessLog(s.mux)
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	appLog.Info("HTTP server stopped")
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("POST /join", s.handleJoin)
	s.mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	s.mux.HandleFunc("GET /admin", s.handleAdmin)
	s.mux.HandleFunc("POST /admin/requests/{id}/{action}", s.handleAdminAction)

	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /api/boxers", s.handleBoxers)
	s.mux.HandleFunc("GET /api/requests", s.handleRequests)
	s.mux.HandleFunc("POST /api/requests", s.handleCreateRequest)
	s.mux.HandleFunc("POST /api/requests/{id}/{action}", s.handleRequestAction)

	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.mux.Handle("GET /static/", http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type homeView struct {
	Title     string
	State     feed.State
	Message   string
	Events    []model.FightEvent
	Ready     bool
	Submitted bool
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.calendar.Snapshot()
	s.render(w, http.StatusOK, "home", homeView{
		Title:     "Home",
		State:     snap.State,
		Message:   snap.Message,
		Events:    snap.Events,
		Ready:     snap.State != feed.StateLoading,
		Submitted: r.URL.Query().Get("submitted") == "1",
	})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, "Invalid form", err.Error(), "/")
		return
	}
	req, err := s.league.AddRequest(r.PostFormValue("name"), r.PostFormValue("nickname"), r.PostFormValue("phone"))
	if err != nil {
		s.renderError(w, statusFor(err), "Request not submitted", err.Error(), "/")
		return
	}
	s.countJoin("submitted")
	appLog.Info("join request submitted", "request_id", req.ID, "nickname", req.Nickname)
	http.Redirect(w, r, "/?submitted=1", http.StatusSeeOther)
}

type leaderboardView struct {
	Title  string
	Boxers []model.Boxer
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "leaderboard", leaderboardView{
		Title:  "Leaderboard",
		Boxers: s.league.Leaderboard(),
	})
}

type adminView struct {
	Title    string
	Requests []model.JoinRequest
}

func (s *Server) handleAdmin(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "admin", adminView{
		Title:    "Admin",
		Requests: s.league.Requests(),
	})
}

func (s *Server) handleAdminAction(w http.ResponseWriter, r *http.Request) {
	if _, err := s.applyRequestAction(r); err != nil {
		s.renderError(w, statusFor(err), "Request not updated", err.Error(), "/admin")
		return
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	State     feed.State `json:"state"`
	Message   string     `json:"message,omitempty"`
	Calendar  string     `json:"calendar,omitempty"`
	FromCache bool       `json:"from_cache"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Events    []eventDTO `json:"events"`
}

// eventDTO is the JSON view of a fight, with the fields calendar
// cards need precomputed.
type eventDTO struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Month    string `json:"month"`
	Location string `json:"location"`
	Boxer1   string `json:"boxer1"`
	Boxer2   string `json:"boxer2"`
}

func newEventsResponse(snap feed.Snapshot) eventsResponse {
	resp := eventsResponse{
		State:     snap.State,
		Message:   snap.Message,
		Calendar:  snap.Feed.Name,
		FromCache: snap.FromCache,
		Events:    make([]eventDTO, 0, len(snap.Events)),
	}
	if !snap.UpdatedAt.IsZero() {
		t := snap.UpdatedAt.UTC()
		resp.UpdatedAt = &t
	}
	for _, ev := range snap.Events {
		resp.Events = append(resp.Events, eventDTO{
			ID:       ev.ID,
			Title:    ev.Title,
			Date:     ev.Date.UTC().Format(time.DateOnly),
			Day:      ev.Day(),
			Month:    ev.MonthShort(),
			Location: ev.Location,
			Boxer1:   ev.Boxer1,
			Boxer2:   ev.Boxer2,
		})
	}
	return resp
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newEventsResponse(s.calendar.Snapshot()))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.calendar.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, feed.ErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, newEventsResponse(s.calendar.Snapshot()))
}

func (s *Server) handleBoxers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.league.Leaderboard())
}

func (s *Server) handleRequests(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.league.Requests())
}

type createRequestBody struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req, err := s.league.AddRequest(body.Name, body.Nickname, body.Phone)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	s.countJoin("submitted")
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) handleRequestAction(w http.ResponseWriter, r *http.Request) {
	boxer, err := s.applyRequestAction(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if boxer != nil {
		writeJSON(w, http.StatusOK, boxer)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

var errUnknownAction = errors.New("unknown action")

// applyRequestAction approves or denies the request named in the path.
// The approved boxer is returned for approvals, nil for denials.
func (s *Server) applyRequestAction(r *http.Request) (*model.Boxer, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id %q", league.ErrRequestNotFound, r.PathValue("id"))
	}

	switch action := r.PathValue("action"); action {
	case "approve":
		boxer, err := s.league.Approve(id)
		if err != nil {
			return nil, err
		}
		s.countJoin("approved")
		appLog.Info("join request approved", "request_id", id, "boxer_id", boxer.ID)
		return &boxer, nil
	case "deny":
		if err := s.league.Deny(id); err != nil {
			return nil, err
		}
		s.countJoin("denied")
		appLog.Info("join request denied", "request_id", id)
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownAction, action)
	}
}

// handlePreview serves the last snapshot capture from disk.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.PreviewPath)
}

func (s *Server) countJoin(action string) {
	if s.metrics != nil {
		s.metrics.JoinRequests.WithLabelValues(action).Inc()
	}
}

type errorView struct {
	Title   string
	Message string
	Back    string
}

func (s *Server) renderError(w http.ResponseWriter, status int, title, msg, back string) {
	s.render(w, status, "error", errorView{Title: title, Message: msg, Back: back})
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := s.pages[page]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		appLog.Error("failed to render page", err, "page", page)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, league.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrRequestNotFound), errors.Is(err, errUnknownAction):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
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

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
