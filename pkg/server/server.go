package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/DanielAquino2003/TrendWriter/internal/store"
	"github.com/DanielAquino2003/TrendWriter/pkg/source"
	"github.com/DanielAquino2003/TrendWriter/pkg/trend"
)

// Server provides the HTTP API.
type Server struct {
	store     store.Store
	scanner   *trend.Scanner
	processor *trend.Processor
	selector  trend.SelectorConfig
	port      int
}

// New creates a new HTTP server.
func New(s store.Store, sc *trend.Scanner, pr *trend.Processor, sel trend.SelectorConfig, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:     s,
		scanner:   sc,
		processor: pr,
		selector:  sel,
		port:      port,
	}
}

// Handler returns the routed mux. Split out so tests can drive it with
// httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/trends", s.handleTrends)
	mux.HandleFunc("/api/v1/articles", s.handleArticles)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/scan", s.handleScan)
	mux.HandleFunc("/api/v1/process", s.handleProcess)
	return mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("trendwriter server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	opts := store.QueryOpts{Limit: 50, OrderByViral: true}
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		opts.Status = store.Status(v)
	}
	if v := q.Get("tier"); v != "" {
		opts.Tier = v
	}
	if v := q.Get("source"); v != "" {
		opts.Source = source.SourceType(v)
	}
	if v := q.Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MinViral = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			opts.Limit = n
		}
	}

	trends, err := s.store.ListTrends(r.Context(), opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  trends,
		"count": len(trends),
	})
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	articles, err := s.store.ListArticles(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  articles,
		"count": len(articles),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	// Stats must see every trend, not the default listing page.
	trends, err := s.store.ListTrends(r.Context(), store.QueryOpts{Limit: -1})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, trend.ComputeStats(trends, s.selector))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	saved, err := s.scanner.Scan(r.Context())
	if errors.Is(err, trend.ErrCycleRunning) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "scan already in progress"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"saved": len(saved),
		"data":  saved,
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	article, err := s.processor.ProcessBest(r.Context())
	if errors.Is(err, trend.ErrCycleRunning) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "processing already in progress"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if article == nil {
		writeJSON(w, http.StatusOK, map[string]any{"processed": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"processed": true,
		"article":   article,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
