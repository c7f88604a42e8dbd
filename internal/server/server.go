package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/voyagen/bretontv/internal/loader"
	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/models"
	"github.com/voyagen/bretontv/internal/query"
	"github.com/voyagen/bretontv/internal/render"
	"github.com/voyagen/bretontv/internal/store"
)

// Catalog returns the channels the API serves, in load order.
type Catalog func(ctx context.Context) ([]models.Channel, error)

// LoaderCatalog reloads paths on every call.
func LoaderCatalog(l *loader.Loader, paths []string) Catalog {
	return func(ctx context.Context) ([]models.Channel, error) {
		return l.Load(ctx, paths)
	}
}

// StoreCatalog serves every channel stored by the last sync.
func StoreCatalog(s store.Store) Catalog {
	return func(ctx context.Context) ([]models.Channel, error) {
		return s.ListChannels(ctx, nil)
	}
}

// Server holds dependencies for the HTTP API.
type Server struct {
	catalog Catalog
	store   store.Store // nil when no database is configured
	port    string
	mux     *http.ServeMux
}

// New creates a Server and registers routes.
// s may be nil; /api/sources is then not registered.
func New(catalog Catalog, s store.Store, port string) *Server {
	srv := &Server{catalog: catalog, store: s, port: port, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/channels", s.handleListChannels)
	s.mux.HandleFunc("GET /api/groups", s.handleCounts(query.GroupOf))
	s.mux.HandleFunc("GET /api/countries", s.handleCounts(query.CountryOf))
	s.mux.HandleFunc("GET /playlist.m3u", s.handlePlaylist)
	if s.store != nil {
		s.mux.HandleFunc("GET /api/sources", s.handleListSources)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server on the configured port.
// It blocks until the server is shut down or ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := ":" + s.port
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      withCORS(withLogging(s)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("server shutdown: %v", err)
		}
	}()

	logging.Info("listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ListenAndServe: %w", err)
	}
	return nil
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.ListSources(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if sources == nil {
		sources = []models.Source{}
	}
	writeJSON(w, http.StatusOK, sources)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, ok := s.selected(w, r)
	if !ok {
		return
	}
	if channels == nil {
		channels = []models.Channel{}
	}
	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	channels, ok := s.selected(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "audio/x-mpegurl")
	if err := render.M3U(w, channels); err != nil {
		logging.Error("write playlist: %v", err)
	}
}

// handleCounts lists the distinct values of field with channel counts,
// over the channels selected by the request's filters.
func (s *Server) handleCounts(field func(models.Channel) *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channels, ok := s.selected(w, r)
		if !ok {
			return
		}
		counts := query.CountBy(channels, field)
		if counts == nil {
			counts = []query.Count{}
		}
		writeJSON(w, http.StatusOK, counts)
	}
}

// selected loads the catalog and applies the country, group, search and
// limit query parameters. On failure the error response is already written.
func (s *Server) selected(w http.ResponseWriter, r *http.Request) ([]models.Channel, bool) {
	q := r.URL.Query()
	criteria := query.Criteria{
		Country: q.Get("country"),
		Group:   q.Get("group"),
		Keyword: q.Get("search"),
	}
	limit := -1
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid limit: %s", v))
			return nil, false
		}
		limit = n
	}

	channels, err := s.catalog(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, fmt.Errorf("load channels: %w", err))
		return nil, false
	}
	return query.Limit(query.Sort(query.Filter(channels, criteria)), limit), true
}

// --- middleware ---

// withCORS adds CORS headers to every response and handles preflight OPTIONS requests.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// withLogging logs each request with method, path, status, and duration.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if r.URL.RawQuery != "" {
			path += "?" + r.URL.RawQuery
		}
		logging.Info("%s%-7s\x1b[0m %s%3d\x1b[0m %6s  %s",
			colorForMethod(r.Method), r.Method,
			colorForStatus(sw.status), sw.status,
			formatDuration(time.Since(start)), path,
		)
	})
}

func colorForStatus(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "\x1b[32m" // green
	case code >= 300 && code < 400:
		return "\x1b[36m" // cyan
	case code >= 400 && code < 500:
		return "\x1b[33m" // yellow
	default:
		return "\x1b[31m" // red
	}
}

func colorForMethod(method string) string {
	switch method {
	case http.MethodGet:
		return "\x1b[36m"
	case http.MethodOptions:
		return "\x1b[35m"
	default:
		return "\x1b[37m"
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dus", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// --- helpers ---

// APIError is the standard error envelope for all error responses.
type APIError struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("writeJSON: %v", err)
	}
}

func writeErr(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		logging.Error("%d: %v", status, err)
	}
	writeJSON(w, status, APIError{
		Status: status,
		Error:  http.StatusText(status),
		Detail: err.Error(),
	})
}
