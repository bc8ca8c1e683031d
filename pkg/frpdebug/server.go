package frpdebug

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ebb-frp/ebb/pkg/frp"
)

// ServerConfig configures the inspector server.
type ServerConfig struct {
	// Logger receives request and websocket lifecycle logs.
	// Default: slog.Default().
	Logger *slog.Logger

	// Registry is the Prometheus registry backing /metrics. The graph
	// Collector is registered into it. Default: a fresh registry.
	Registry *prometheus.Registry

	// CheckOrigin is the websocket origin check for /live.
	// Default: same-origin (gorilla's default).
	CheckOrigin func(*http.Request) bool

	// MetricsOptions are forwarded to the graph Collector.
	MetricsOptions []MetricsOption
}

// ServerOption configures the inspector server.
type ServerOption func(*ServerConfig)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) ServerOption {
	return func(c *ServerConfig) {
		c.Logger = l
	}
}

// WithRegistry sets the Prometheus registry backing /metrics.
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(c *ServerConfig) {
		c.Registry = reg
	}
}

// WithCheckOrigin sets the websocket origin check for /live.
func WithCheckOrigin(fn func(*http.Request) bool) ServerOption {
	return func(c *ServerConfig) {
		c.CheckOrigin = fn
	}
}

// WithMetricsOptions forwards options to the graph Collector.
func WithMetricsOptions(opts ...MetricsOption) ServerOption {
	return func(c *ServerConfig) {
		c.MetricsOptions = opts
	}
}

// Server exposes one Graph over HTTP:
//
//	GET /graph.json   point-in-time snapshot
//	GET /graph.dot    Graphviz DOT rendering of the snapshot
//	GET /metrics      Prometheus metrics (graph Collector + registry)
//	GET /live         websocket stream of graph mutation events
type Server struct {
	graph    *frp.Graph
	logger   *slog.Logger
	registry *prometheus.Registry
	upgrader wsUpgrader
}

// NewServer creates an inspector for g and registers its Collector with
// the configured registry.
func NewServer(g *frp.Graph, opts ...ServerOption) *Server {
	config := ServerConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	config.Registry.MustRegister(NewCollector(g, config.MetricsOptions...))

	return &Server{
		graph:    g,
		logger:   config.Logger.With("component", "frpdebug"),
		registry: config.Registry,
		upgrader: newUpgrader(config.CheckOrigin),
	}
}

// Registry returns the registry backing /metrics, for registering
// additional application metrics alongside the graph's.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Routes returns the inspector's handler, mountable in a larger router:
//
//	r := chi.NewRouter()
//	r.Mount("/debug/frp", inspector.Routes())
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/graph.json", s.handleSnapshotJSON)
	r.Get("/graph.dot", s.handleSnapshotDOT)
	r.Get("/live", s.handleLive)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})
}

func (s *Server) handleSnapshotJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.graph.Snapshot()); err != nil {
		s.logger.Error("snapshot encode failed", "error", err)
	}
}

func (s *Server) handleSnapshotDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	if _, err := w.Write([]byte(DOT(s.graph.Snapshot()))); err != nil {
		s.logger.Error("dot write failed", "error", err)
	}
}
