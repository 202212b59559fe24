package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/hotellens/internal/geo"
	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/hotellens/internal/search"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Searcher answers search queries.
type Searcher interface {
	Search(ctx context.Context, params model.SearchParams) (*model.SearchResponse, error)
	SearchWith(ctx context.Context, name model.Source, params model.SearchParams) (*model.SearchResponse, error)
}

// Server is the HTTP API.
type Server struct {
	searcher Searcher
	logger   *slog.Logger
	timeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRequestTimeout bounds how long a search request may take.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Server.
func New(searcher Searcher, opts ...Option) *Server {
	s := &Server{
		searcher: searcher,
		logger:   slog.Default(),
		timeout:  2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/geocode", s.handleGeocode)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe serves the API on addr until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil || !geo.ValidCoordinates(lat, lng) {
		writeError(w, http.StatusBadRequest, "lat,lng required")
		return
	}

	params := model.SearchParams{Lat: lat, Lng: lng}
	if v := q.Get("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "radius must be a number")
			return
		}
		params.RadiusKm = radius
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		params.Limit = limit
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	var (
		resp *model.SearchResponse
		err  error
	)
	if name := strings.TrimSpace(q.Get("provider")); name != "" {
		resp, err = s.searcher.SearchWith(ctx, model.Source(name), params)
	} else {
		resp, err = s.searcher.Search(ctx, params)
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resp)
	case errors.Is(err, search.ErrInvalidQuery), errors.Is(err, search.ErrUnknownProvider):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("search failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

type geocodeResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q required")
		return
	}
	p, ok := geo.LookupCity(q)
	if !ok {
		writeError(w, http.StatusNotFound, "no results")
		return
	}
	writeJSON(w, http.StatusOK, geocodeResponse{Name: geo.CityTitle(q), Lat: p.Lat, Lng: p.Lng})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
