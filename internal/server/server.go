// Package server exposes the report store and the rendered map over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Zachdehooge/damage-map/internal/generator"
	"github.com/Zachdehooge/damage-map/internal/intake"
	"github.com/Zachdehooge/damage-map/internal/popup"
	"github.com/Zachdehooge/damage-map/internal/report"
	"github.com/Zachdehooge/damage-map/internal/store"
)

const maxFeatureBody = 1 << 20

// Options configures the HTTP surface.
type Options struct {
	Map         generator.Options
	CORSOrigins []string
	StaticDir   string

	// LINE webhook is mounted only when both are set.
	LineChannelSecret      string
	LineChannelAccessToken string
}

// Server serves /data, /map and the intake endpoints.
type Server struct {
	store   store.Store
	opts    Options
	metrics *metrics
	hub     *hub
	webhook http.Handler
}

// New wires a Server around st.
func New(st store.Store, opts Options) (*Server, error) {
	s := &Server{
		store:   st,
		opts:    opts,
		metrics: newMetrics(),
	}
	s.hub = newHub(s.metrics.liveClients)
	s.opts.Map.LiveURL = "/ws"

	if opts.LineChannelSecret != "" && opts.LineChannelAccessToken != "" {
		h, err := intake.New(opts.LineChannelSecret, opts.LineChannelAccessToken, st,
			intake.OnReport(func(r report.Report) { s.publish("line", r) }),
		)
		if err != nil {
			return nil, err
		}
		s.webhook = h
	}
	return s, nil
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/data", s.handleData)
	r.Post("/api/reports", s.handleCreateReport)
	r.Get("/map", s.handleMap)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/map", http.StatusFound)
	})
	r.Get("/ws", s.hub.ServeHTTP)
	r.Handle("/metrics", s.metrics.handler())

	if s.webhook != nil {
		r.Post("/webhook", s.webhook.ServeHTTP)
	}
	if s.opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.opts.StaticDir))))
	}
	return r
}

// Shutdown disconnects live clients.
func (s *Server) Shutdown() {
	s.hub.closeAll()
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	s.metrics.requests.WithLabelValues("data").Inc()
	reports, err := s.store.List(r.Context())
	if err != nil {
		s.storeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report.ToFeatureCollection(reports))
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFeatureBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	rep, err := report.ParseFeature(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rep.ID = ""
	rep.Pending = false

	saved, err := s.store.Add(r.Context(), rep)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.publish("api", saved)
	writeJSON(w, http.StatusCreated, report.ToFeature(saved))
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.metrics.requests.WithLabelValues("map").Inc()
	opts := s.opts.Map
	if lang := r.URL.Query().Get("lang"); lang != "" {
		opts.Locale = popup.LocaleFor(lang)
	}

	reports, err := s.store.List(r.Context())
	if err != nil {
		// Same as a failed feed fetch: log and show the empty map.
		log.Printf("[server] list reports: %v", err)
		s.metrics.storeErrors.Inc()
		reports = nil
	}
	s.metrics.markersServed.Observe(float64(len(reports)))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := generator.RenderMap(w, reports, opts); err != nil {
		log.Printf("[server] render map: %v", err)
	}
}

func (s *Server) publish(source string, r report.Report) {
	s.metrics.reportsReceived.WithLabelValues(source).Inc()
	s.hub.broadcast([]generator.MapMarker{generator.BuildMarker(r, s.opts.Map)})
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrReadOnly) {
		http.Error(w, err.Error(), http.StatusMethodNotAllowed)
		return
	}
	s.metrics.storeErrors.Inc()
	log.Printf("[server] store error: %v", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}
