// Package gateway serves the web front end: a JSON API over the assistant,
// the task registry and the conversation buffer, plus a live event stream.
package gateway

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/pal/internal/assistant"
	"github.com/dohr-michael/pal/internal/events"
	"github.com/dohr-michael/pal/internal/gateway/ws"
	"github.com/dohr-michael/pal/internal/memory"
	"github.com/dohr-michael/pal/internal/models"
	"github.com/dohr-michael/pal/internal/storage"
	"github.com/dohr-michael/pal/internal/tasks"
)

// StatsSource reports store counters and model usage.
type StatsSource interface {
	Stats(ctx context.Context) (storage.Stats, error)
	Usage(ctx context.Context) ([]storage.Usage, error)
}

// Deps are the collaborators the server presents.
type Deps struct {
	Bus       *events.Bus
	Assistant *assistant.Assistant
	Tasks     *tasks.Registry
	History   *memory.Buffer
	Stats     StatsSource
	Model     models.Info
}

// Server is the pal gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	deps       Deps
}

// NewServer creates a new gateway server.
func NewServer(deps Deps, host string, port int) *Server {
	s := &Server{deps: deps}
	s.hub = ws.NewHub(deps.Bus, s.handleWSRequest)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestIDToEvents)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ws", s.hub.ServeWS)
	r.Get("/api/events", s.handleEvents)

	r.Post("/api/chat", s.handleChat)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Post("/", s.handleAddTask)
		r.Delete("/completed", s.handleClearCompleted)
		r.Delete("/{id}", s.handleDeleteTask)
		r.Post("/{id}/complete", s.handleCompleteTask)
		r.Post("/{id}/toggle", s.handleToggleTask)
	})

	r.Get("/api/history", s.handleHistory)
	r.Delete("/api/history", s.handleClearHistory)
	r.Get("/api/stats", s.handleStats)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		Handler: r,
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("pal gateway listening", "addr", ln.Addr().String(), "model", s.deps.Model.Model)
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// requestIDToEvents tags the request context so published events carry the
// chi request ID.
func requestIDToEvents(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(events.ContextWithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
