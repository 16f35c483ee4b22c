package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/actionsum/recentapps/internal/config"
	"github.com/actionsum/recentapps/internal/metrics"
	"github.com/actionsum/recentapps/internal/reporter"
	"github.com/actionsum/recentapps/pkg/apps"
	"github.com/actionsum/recentapps/pkg/recentapps"
)

type Handler struct {
	config   *config.Config
	client   *recentapps.Client
	reporter *reporter.Reporter
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	// streams ends every open watch stream
	streams context.Context
	closeFn context.CancelFunc
}

// RecentResponse is the body of /api/recent
type RecentResponse struct {
	Strategy string       `json:"strategy"`
	Apps     apps.AppList `json:"apps"`
}

// AppResponse is the body of /api/current and /api/last
type AppResponse struct {
	Strategy string     `json:"strategy"`
	App      apps.AppID `json:"app,omitempty"`
	Found    bool       `json:"found"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the API handler. client is nil when the host offers
// no recency source; the query endpoints then answer 503.
func NewHandler(cfg *config.Config, client *recentapps.Client, rep *reporter.Reporter, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	streams, closeFn := context.WithCancel(context.Background())
	return &Handler{
		config:   cfg,
		client:   client,
		reporter: rep,
		metrics:  m,
		logger:   logger.With().Str("component", "web").Logger(),
		streams:  streams,
		closeFn:  closeFn,
	}
}

// Close ends all open watch streams
func (h *Handler) Close() {
	h.closeFn()
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/recent", h.count("/api/recent", h.handleRecent))
	mux.HandleFunc("/api/current", h.count("/api/current", h.handleCurrent))
	mux.HandleFunc("/api/last", h.count("/api/last", h.handleLast))
	mux.HandleFunc("/api/status", h.count("/api/status", h.handleStatus))
	mux.HandleFunc("/api/watch", h.count("/api/watch", h.handleWatch))

	mux.Handle("/metrics", h.metrics.Handler())
	mux.HandleFunc("/health", h.handleHealth)

	mux.HandleFunc("/", h.handleIndex)
}

// statusWriter remembers the response status for the request counter
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the websocket upgrader reach the
// underlying writer
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (h *Handler) count(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if path == "/api/watch" {
			// upgraded connections must keep the original writer
			h.metrics.HTTPRequests.WithLabelValues(path, "stream").Inc()
			next(w, r)
			return
		}
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)
		h.metrics.HTTPRequests.WithLabelValues(path, strconv.Itoa(sw.status)).Inc()
	}
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	if h.client == nil {
		respondError(w, http.StatusServiceUnavailable, "no recency source available on this host")
		return false
	}
	return true
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}

	limit := h.config.Observer.Limit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	list, err := h.client.RecentApps(r.Context(), limit)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	if list == nil {
		list = apps.AppList{}
	}

	respondJSON(w, RecentResponse{Strategy: h.client.Strategy(), Apps: list})
}

func (h *Handler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	h.respondApp(w, r, h.client.CurrentApp, h.client.CurrentAppOr)
}

func (h *Handler) handleLast(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w, r) {
		return
	}
	h.respondApp(w, r, h.client.LastApp, h.client.LastAppOr)
}

type (
	appQuery   = func(ctx context.Context) (apps.AppID, bool, error)
	appQueryOr = func(ctx context.Context, def apps.AppID) (apps.AppID, error)
)

func (h *Handler) respondApp(w http.ResponseWriter, r *http.Request, query appQuery, queryOr appQueryOr) {
	resp := AppResponse{Strategy: h.client.Strategy()}

	if def := r.URL.Query().Get("default"); def != "" {
		app, err := queryOr(r.Context(), apps.AppID(def))
		if err != nil {
			h.respondQueryError(w, err)
			return
		}
		resp.App, resp.Found = app, true
		respondJSON(w, resp)
		return
	}

	app, ok, err := query(r.Context())
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	resp.App, resp.Found = app, ok
	respondJSON(w, resp)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status, err := h.reporter.Status(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build status")
		respondError(w, http.StatusInternalServerError, "failed to build status")
		return
	}

	respondJSON(w, status)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (h *Handler) respondQueryError(w http.ResponseWriter, err error) {
	if apps.IsInvalidArgument(err) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error().Err(err).Msg("Recent apps query failed")
	respondError(w, http.StatusInternalServerError, "recent apps query failed")
}

func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
