package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxStepsPerRequest bounds the ticks a single POST /step may run.
const maxStepsPerRequest = 1000

// Tree is the part of a compiled behaviour tree the server drives.
type Tree interface {
	Step() error
	Reset()
	IsRunning() bool
	State() domain.State
	Details() domain.NodeDetails
}

// Server exposes a single tree over HTTP. Tree access is serialized, so the
// agent behind the tree never sees concurrent calls from this server.
type Server struct {
	Tree     Tree
	Streams  *StreamManager
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	mu    sync.Mutex
	ticks int
}

// Option configures a Server.
type Option func(*Server)

// WithStreams broadcasts state changes published to sm on GET /events.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithGatherer exposes g on GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = g
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// StepResponse is the body returned by POST /step.
type StepResponse struct {
	State domain.State `json:"state"`
	Ticks int          `json:"ticks"`
	Error string       `json:"error,omitempty"`
}

// NewHandler creates a new HTTP handler for tree.
func NewHandler(tree Tree, opts ...Option) http.Handler {
	server := &Server{
		Tree:    tree,
		Streams: NewStreamManager(),
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/tree", server.GetTree)
	r.Get("/state", server.GetState)
	r.Get("/graph", server.GetGraph)
	r.Get("/events", server.SubscribeEvents)
	r.Post("/step", server.Step)
	r.Post("/reset", server.Reset)

	if server.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	details := s.Tree.Details()
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, details)
}

// GetState handles the GET /state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StepResponse{State: s.Tree.State(), Ticks: s.ticks}
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, resp)
}

// GetGraph handles the GET /graph request. The tree is rendered as a Mermaid
// flowchart styled by node state.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	details := s.Tree.Details()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(details, true))
}

// Step handles the POST /step request. The optional "ticks" query parameter
// steps the tree several times, stopping early once it resolves.
func (s *Server) Step(w http.ResponseWriter, r *http.Request) {
	ticks := 1
	if raw := r.URL.Query().Get("ticks"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxStepsPerRequest {
			http.Error(w, fmt.Sprintf("Invalid ticks: expected an integer between 1 and %d", maxStepsPerRequest), http.StatusBadRequest)
			return
		}
		ticks = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := 0; i < ticks; i++ {
		err := s.Tree.Step()
		s.ticks++
		if err != nil {
			s.Logger.Error("Step failed", "error", err, "tick", s.ticks)
			s.writeJSON(w, http.StatusInternalServerError, StepResponse{State: s.Tree.State(), Ticks: s.ticks, Error: err.Error()})
			return
		}
		if !s.Tree.IsRunning() {
			break
		}
	}

	s.writeJSON(w, http.StatusOK, StepResponse{State: s.Tree.State(), Ticks: s.ticks})
}

// Reset handles the POST /reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Tree.Reset()
	s.ticks = 0
	s.writeJSON(w, http.StatusOK, StepResponse{State: s.Tree.State()})
}

// SubscribeEvents handles the GET /events request (SSE). Every node state
// change is sent as a JSON encoded domain.StateChange.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}
