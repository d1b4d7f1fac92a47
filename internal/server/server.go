// Package server implements the HTTP surface of sonicwaved: the
// recommendation and insights proxies in front of the generative upstream,
// and the station search proxy in front of the directory.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/gemini"
	"github.com/sonicwave-radio/sonicwave/internal/radiobrowser"
	"github.com/sonicwave-radio/sonicwave/internal/recommend"
	"github.com/sonicwave-radio/sonicwave/internal/station"
)

// Recommender is the generative upstream seen by the handlers.
type Recommender interface {
	Recommend(ctx context.Context, prompt string, history []recommend.Message) (*recommend.Recommendation, error)
	GenerateInsights(ctx context.Context) (*gemini.Insights, error)
}

// Directory is the station search upstream seen by the handlers.
type Directory interface {
	Search(ctx context.Context, filters radiobrowser.Filters) ([]station.Station, error)
}

// Server wires the handlers to their upstreams.
type Server struct {
	recommender     Recommender
	directory       Directory
	upstreamTimeout time.Duration
}

// New creates a Server over the given upstreams.
func New(rec Recommender, dir Directory, upstreamTimeout time.Duration) *Server {
	return &Server{
		recommender:     rec,
		directory:       dir,
		upstreamTimeout: upstreamTimeout,
	}
}

// Handler returns the routed HTTP handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/recommend", s.handleRecommend)
	mux.HandleFunc("/api/insights", s.handleInsights)
	mux.HandleFunc("/api/stations/search", s.handleStationSearch)
	mux.HandleFunc("/healthz", s.handleHealth)
	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// isGatewayTimeout reports whether an upstream error was a deadline rather
// than a generic failure. The two must stay distinguishable for clients.
func isGatewayTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, radiobrowser.ErrTimeout)
}

type recommendRequest struct {
	UserPrompt string              `json:"userPrompt"`
	History    []recommend.Message `json:"history,omitempty"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserPrompt == "" {
		writeError(w, http.StatusBadRequest, "userPrompt is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.upstreamTimeout)
	defer cancel()

	rec, err := s.recommender.Recommend(ctx, req.UserPrompt, req.History)
	if err != nil {
		if isGatewayTimeout(err) {
			writeError(w, http.StatusGatewayTimeout, "gateway timeout")
			return
		}
		log.Error().Err(err).Msg("Recommendation upstream failed")
		// The fallback body travels with the error status so even clients
		// that ignore the status get a usable recommendation.
		writeJSON(w, http.StatusInternalServerError, recommend.Fallback())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.upstreamTimeout)
	defer cancel()

	ins, err := s.recommender.GenerateInsights(ctx)
	if err != nil {
		if isGatewayTimeout(err) {
			writeError(w, http.StatusGatewayTimeout, "gateway timeout")
			return
		}
		log.Error().Err(err).Msg("Insights upstream failed, serving fallback document")
		writeJSON(w, http.StatusOK, gemini.FallbackInsights())
		return
	}

	writeJSON(w, http.StatusOK, ins)
}

// handleStationSearch proxies the directory search. This is the degraded
// deployment of the directory contract: on upstream failure it answers with
// the seed list instead of an error, so the front-end always has something
// to render.
func (s *Server) handleStationSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	q := r.URL.Query()
	filters := radiobrowser.Filters{
		Name:    q.Get("name"),
		Country: q.Get("country"),
		Tag:     q.Get("tag"),
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filters.Limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.upstreamTimeout)
	defer cancel()

	stations, err := s.directory.Search(ctx, filters)
	if err != nil {
		if isGatewayTimeout(err) {
			writeError(w, http.StatusGatewayTimeout, "gateway timeout")
			return
		}
		log.Warn().Err(err).Msg("Directory upstream failed, serving seed stations")
		writeJSON(w, http.StatusOK, station.Seed())
		return
	}

	writeJSON(w, http.StatusOK, stations)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
