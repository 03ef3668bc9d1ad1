package core

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CanDash/internal/model"
	"CanDash/internal/vehicle"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Monitor exposes the read-only side of the vehicle state to external
// dashboards: an HTTP endpoint for one-shot snapshots and a websocket feed
// that pushes snapshots periodically. The debug trace rides along whenever
// debug mode is on.
type Monitor struct {
	addr     string
	state    *vehicle.State
	log      *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	server  *http.Server
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// feedPayload is one monitor push: the state snapshot plus, in debug mode,
// the recent frame trace.
type feedPayload struct {
	model.Snapshot
	Trace []string `json:"trace,omitempty"`
}

// NewMonitor constructs a monitor serving on addr.
func NewMonitor(addr string, state *vehicle.State, interval time.Duration, log *slog.Logger) *Monitor {
	return &Monitor{
		addr:     addr,
		state:    state,
		log:      log,
		interval: interval,
		clients:  map[*websocket.Conn]bool{},
		stop:     make(chan struct{}),
	}
}

// Start launches the HTTP server and the broadcast ticker in the
// background.
func (m *Monitor) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", m.handleState)
	mux.HandleFunc("/ws", m.handleWS)
	m.server = &http.Server{Addr: m.addr, Handler: mux}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.log.Info("monitor listening", "addr", m.addr)
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.log.Error("monitor server failed", "err", err)
		}
	}()

	m.wg.Add(1)
	go m.broadcastLoop()
}

// Stop shuts the server down and disconnects all feed clients.
func (m *Monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
	if m.server != nil {
		_ = m.server.Close()
	}
	m.mu.Lock()
	for conn := range m.clients {
		_ = conn.Close()
		delete(m.clients, conn)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Monitor) payload() feedPayload {
	p := feedPayload{Snapshot: m.state.Snapshot()}
	if p.DebugMode {
		p.Trace = m.state.Trace()
	}
	return p
}

// handleState serves a one-shot JSON snapshot.
func (m *Monitor) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m.payload()); err != nil {
		m.log.Error("state encode failed", "err", err)
	}
}

// handleWS upgrades the connection and registers it for periodic pushes.
func (m *Monitor) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	m.mu.Lock()
	m.clients[conn] = true
	m.mu.Unlock()

	// Drain and discard client messages so pings are answered; deregister
	// on error.
	go func() {
		defer func() {
			m.mu.Lock()
			delete(m.clients, conn)
			m.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (m *Monitor) broadcastLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.broadcast()
		}
	}
}

func (m *Monitor) broadcast() {
	b, err := json.Marshal(m.payload())
	if err != nil {
		m.log.Error("snapshot marshal failed", "err", err)
		return
	}
	m.mu.Lock()
	for conn := range m.clients {
		if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
			_ = conn.Close()
			delete(m.clients, conn)
		}
	}
	m.mu.Unlock()
}
