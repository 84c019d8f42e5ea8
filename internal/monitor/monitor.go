// Package monitor exposes a solve run's progress over a websocket and its
// Prometheus registry over HTTP, for the optional `--serve` mode.
package monitor

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trashcvrp/internal/metrics"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// Frame is one tabu-iteration update (the current solution's cost and
// feasibility) broadcast to every connected websocket client.
type Frame struct {
	Iter     int     `json:"iter"`
	Cost     float64 `json:"cost"`
	Feasible bool    `json:"feasible"`
}

// Server broadcasts Frames to connected clients and serves /metrics.
type Server struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewServer() *Server {
	return &Server{clients: map[*websocket.Conn]struct{}{}}
}

// Broadcast fans a Frame out to every connected client, dropping any
// connection that fails to keep up.
func (s *Server) Broadcast(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.WriteJSON(f); err != nil {
			_ = c.Close()
			delete(s.clients, c)
		}
	}
}

// OnIteration adapts Broadcast to observe.StdObserver's OnIteration hook.
func (s *Server) OnIteration(iter int, cost float64, feasible bool) {
	s.Broadcast(Frame{Iter: iter, Cost: cost, Feasible: feasible})
}

func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	// Drain and ignore any client-sent messages; the connection is only
	// used to push progress frames.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Handler returns the mux serving /progress (websocket) and /metrics
// (Prometheus).
func (s *Server) Handler() http.Handler {
	metrics.RegisterDefault()
	mux := http.NewServeMux()
	mux.HandleFunc("/progress", s.progressHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe blocks serving Handler on addr.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}
