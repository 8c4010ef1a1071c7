package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/auth"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/calendar"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/config"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/ical"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/logging"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/metrics"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/models"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/page"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/plugin"
	"github.com/ulifigueroa/rocket-launches-calendar/internal/view"
)

// SessionCookie names the cookie carrying the visitor session id
const SessionCookie = "launchcal_session"

var navTargets = view.Nav{
	Previous: "/nav/previous",
	Today:    "/nav/today",
	Next:     "/nav/next",
}

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	source plugin.Source
	auth   auth.Authenticator
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// session is the calendar state of one visitor
type session struct {
	controller *calendar.Controller
	mount      *page.Container
	lastSeen   time.Time
}

// New creates a new server instance
func New(cfg *config.Config, source plugin.Source, authenticator auth.Authenticator, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		source:   source,
		auth:     authenticator,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Handler returns the routes wrapped with access logging and panic recovery
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	app := r.PathPrefix("/").Subrouter()
	app.Use(s.authMiddleware)
	app.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	app.HandleFunc("/nav/{action:previous|next|today}", s.handleNav).Methods(http.MethodPost)
	app.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	app.HandleFunc("/calendar.ics", s.handleICal).Methods(http.MethodGet)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)
	return handlers.CombinedLoggingHandler(logging.Writer(s.logger, "http request"), recovery(r))
}

// Start serves HTTP until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.pruneLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.Authenticate(r) {
			if c, ok := s.auth.(auth.Challenger); ok {
				c.Challenge(w)
			}
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// session returns the visitor's session, creating and initializing a new
// one when the request carries no known session cookie
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	now := s.now()

	s.mu.Lock()
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions[cookie.Value]; ok {
			sess.lastSeen = now
			s.mu.Unlock()
			return sess
		}
	}

	id := uuid.NewString()
	mount := page.NewContainer(s.cfg.Calendar.Mount)
	sess := &session{
		mount:    mount,
		lastSeen: now,
		controller: calendar.NewController(s.source, mount,
			calendar.WithClock(s.now),
			calendar.WithView(s.cfg.Calendar.View),
			calendar.WithNav(navTargets),
			calendar.WithLogger(s.logger.With(slog.String("session", id))),
		),
	}
	s.sessions[id] = sess
	metrics.SetSessions(len(s.sessions))
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// A failed first fetch is painted into the mount
	if err := sess.controller.Initialize(r.Context()); err != nil {
		s.logger.Warn("initial render failed", slog.String("session", id), slog.Any("error", err))
	}
	return sess
}

// PruneSessions drops sessions idle for longer than the session TTL and
// returns how many were removed
func (s *Server) PruneSessions() int {
	cutoff := s.now().Add(-s.cfg.Server.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	metrics.SetSessions(len(s.sessions))
	return removed
}

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.PruneSessions(); n > 0 {
				s.logger.Debug("pruned idle sessions", slog.Int("count", n))
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.WriteDocument(w, s.cfg.Calendar.Title, sess.mount); err != nil {
		s.logger.Error("failed to write page", slog.Any("error", err))
	}
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	ctrl := sess.controller

	var err error
	switch mux.Vars(r)["action"] {
	case "previous":
		err = ctrl.ShowPreviousMonth(r.Context())
	case "next":
		err = ctrl.ShowNextMonth(r.Context())
	case "today":
		err = ctrl.ShowCurrentMonth(r.Context())
	}

	// Failures are painted into the page, so the visitor is redirected either way
	switch {
	case errors.Is(err, calendar.ErrStaleResponse):
		s.logger.Debug("navigation superseded", slog.String("action", mux.Vars(r)["action"]))
	case err != nil:
		s.logger.Warn("navigation failed", slog.String("action", mux.Vars(r)["action"]), slog.Any("error", err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type stateResponse struct {
	Title string `json:"title"`
	calendar.State
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.session(w, r).controller.State()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stateResponse{Title: view.Title(state.Start), State: state}); err != nil {
		s.logger.Error("failed to encode state", slog.Any("error", err))
	}
}

func (s *Server) handleICal(w http.ResponseWriter, r *http.Request) {
	monthStart := view.MonthStart(s.now())
	if month := r.URL.Query().Get("month"); month != "" {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			http.Error(w, "month must be formatted as YYYY-MM", http.StatusBadRequest)
			return
		}
		monthStart = t
	}

	start, end := calendar.MonthRange(monthStart)
	events, err := s.source.FetchEvents(r.Context(), start, end)
	if err != nil {
		s.logger.Error("failed to fetch launches for export", slog.String("month", monthStart.Format("2006-01")), slog.Any("error", err))
		http.Error(w, "failed to fetch launches", http.StatusBadGateway)
		return
	}

	cal := &models.Calendar{
		Name:        s.cfg.Calendar.Title,
		Description: view.Title(monthStart),
		Events:      events,
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=launches-%s.ics", monthStart.Format("2006-01")))
	if _, err := w.Write([]byte(ical.Format(cal, s.now()))); err != nil {
		s.logger.Error("failed to write calendar response", slog.Any("error", err))
	}
}
