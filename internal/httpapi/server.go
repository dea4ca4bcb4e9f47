package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/outboundcheck/internal/diagnostic"
	"github.com/hamed0406/outboundcheck/internal/domain"
	apimw "github.com/hamed0406/outboundcheck/internal/httpapi/middleware"
	"github.com/hamed0406/outboundcheck/internal/metrics"
	"github.com/hamed0406/outboundcheck/internal/repo"
)

// CheckRunner runs one check to a terminal state and stores the result.
type CheckRunner interface {
	Run(ctx context.Context, d domain.CheckDescriptor) error
}

type Server struct {
	Logger  *zap.Logger
	Checks  repo.CheckStore
	Runner  CheckRunner
	Metrics *metrics.Metrics

	known map[string]domain.CheckDescriptor
}

func NewServer(l *zap.Logger, store repo.CheckStore, runner CheckRunner, m *metrics.Metrics, checks ...domain.CheckDescriptor) *Server {
	known := make(map[string]domain.CheckDescriptor, len(checks))
	for _, d := range checks {
		known[d.Code] = d
	}
	return &Server{Logger: l, Checks: store, Runner: runner, Metrics: m, known: known}
}

// Router wires the API. Rate limits are requests per minute per client IP,
// 0 disables them. An empty allowedOrigins permits any origin.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if len(allowedOrigins) == 0 {
		r.Use(cors.AllowAll().Handler)
	} else {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/api/checks", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(pubRPM, pubBurst))
			r.Use(apimw.RequireAny(keys))
			r.Get("/", s.handleList)
			r.Get("/{code}", s.handleGet)
			r.Get("/{code}/events", s.handleEvents)
		})
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(admRPM, admBurst))
			r.Use(apimw.RequireAdmin(keys))
			r.Post("/{code}/run", s.handleRun)
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	rs, err := s.Checks.List(r.Context())
	if err != nil {
		s.Logger.Warn("list_checks_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	res, ok, err := s.Checks.Get(r.Context(), code)
	if err != nil {
		s.Logger.Warn("get_check_error", zap.String("code", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get error")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	d, ok := s.known[code]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown check")
		return
	}

	err := s.Runner.Run(r.Context(), d)
	switch {
	case errors.Is(err, diagnostic.ErrRunInProgress):
		writeError(w, http.StatusConflict, "run in progress")
		return
	case err != nil:
		// The run still reached a terminal state; report it as such.
		s.Logger.Info("manual_run_unhealthy", zap.String("code", code), zap.Error(err))
	default:
		s.Logger.Info("manual_run_ok", zap.String("code", code))
	}

	res, ok, gerr := s.Checks.Get(r.Context(), code)
	if gerr != nil || !ok {
		writeError(w, http.StatusInternalServerError, "result unavailable")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleEvents streams the check as server-sent events: the current value
// first, if any, then every update until the client goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, ok := s.known[code]; !ok {
		writeError(w, http.StatusNotFound, "unknown check")
		return
	}
	fl, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	updates, cancel := s.Checks.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if cur, ok, err := s.Checks.Get(r.Context(), code); err == nil && ok {
		if !writeEvent(w, cur) {
			return
		}
	}
	fl.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case u, open := <-updates:
			if !open {
				return
			}
			if u.Code != code {
				continue
			}
			if !writeEvent(w, u) {
				return
			}
			fl.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, res domain.CheckRunResult) bool {
	b, err := json.Marshal(res)
	if err != nil {
		return false
	}
	_, err = fmt.Fprintf(w, "event: check\ndata: %s\n\n", b)
	return err == nil
}
