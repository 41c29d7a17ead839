// Package stream pushes live marker frames to WebSocket clients.
package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/yash/laeportal/internal/logger"
	"github.com/yash/laeportal/internal/metrics"
	"github.com/yash/laeportal/internal/motion"
	"github.com/yash/laeportal/internal/simulator"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = pongWait * 9 / 10

	clientBuffer = 16
)

// Message types sent to clients.
const (
	TypeHello = "hello"
	TypeFrame = "frame"
)

// Source supplies frames, normally *simulator.Simulator.
type Source interface {
	Subscribe(buffer int) (<-chan simulator.Frame, func())
	Now() time.Time
	Snapshot(now time.Time) simulator.Frame
}

// Message is the envelope written to the socket.
type Message struct {
	Type     string           `json:"type"`
	ClientID string           `json:"client_id,omitempty"`
	Frame    *simulator.Frame `json:"frame,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks connected clients.
type Hub struct {
	src Source
	log logger.Logger

	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

// NewHub creates a hub over src. A nil logger discards output.
func NewHub(src Source, log logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{src: src, log: log, clients: make(map[string]*websocket.Conn)}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(id string, conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()
	metrics.WSConnections.Inc()
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.clients, id)
	h.mu.Unlock()
	metrics.WSConnections.Dec()
}

// Close sends a going-away close frame to every client and drops the
// connections. Hijacked connections are not closed by http.Server.Shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for _, c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
	for _, c := range conns {
		c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.Close()
	}
}

// ServeHTTP upgrades the request and streams frames until the client goes
// away. ?vehicle=<id> restricts each frame to that vehicle's marker.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vehicle := r.URL.Query().Get("vehicle")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	id := uuid.New().String()
	log := h.log.With("client_id", id)
	h.add(id, conn)
	defer h.remove(id)

	frames, cancel := h.src.Subscribe(clientBuffer)
	defer cancel()

	log.Info("stream client connected", "vehicle", vehicle)
	defer log.Info("stream client disconnected")

	closed := make(chan struct{})
	go h.readLoop(conn, closed, log)

	if err := write(conn, Message{Type: TypeHello, ClientID: id}); err != nil {
		return
	}
	first := filter(h.src.Snapshot(h.src.Now()), vehicle)
	if err := write(conn, Message{Type: TypeFrame, Frame: &first}); err != nil {
		return
	}

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case f, ok := <-frames:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			f = filter(f, vehicle)
			if err := write(conn, Message{Type: TypeFrame, Frame: &f}); err != nil {
				log.Debug("stream write failed", "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readLoop drains client messages so control frames are processed, and
// signals when the connection closes.
func (h *Hub) readLoop(conn *websocket.Conn, closed chan<- struct{}, log logger.Logger) {
	defer close(closed)
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("stream read failed", "error", err)
			}
			return
		}
	}
}

func write(conn *websocket.Conn, m Message) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(m)
}

func filter(f simulator.Frame, vehicle string) simulator.Frame {
	if vehicle == "" {
		return f
	}
	out := f
	out.Markers = []motion.Marker{}
	if m, ok := f.Marker(vehicle); ok {
		out.Markers = append(out.Markers, m)
	}
	return out
}
