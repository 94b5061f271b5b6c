package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/code-deck/collab-service/internal/service"
	"github.com/code-deck/collab-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Options are the transport tunables. Defaults mirror what the browser
// client was written against: large frames for drawing snapshots, 60s
// read window.
type Options struct {
	PingInterval time.Duration
	ReadLimit    int64
	RateLimit    float64 // events per second per connection
	RateBurst    int
}

func (o *Options) defaults() {
	if o.PingInterval <= 0 {
		o.PingInterval = 30 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 100 << 20
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 200
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 400
	}
}

type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	session  *service.SessionService
	opts     Options
}

func NewServer(hub *Hub, session *service.SessionService, opts Options) *Server {
	opts.defaults()
	return &Server{
		hub:     hub,
		session: session,
		opts:    opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(uuid.NewString(), conn)
	s.hub.Register(c)
	slog.Debug("ws connect", "conn", c.ID())

	go s.writeLoop(c)
	s.readLoop(c)

	// Transport-level close is the disconnect signal for graceful and abrupt
	// cases alike.
	s.handleDisconnect(c)
	s.hub.Unregister(c.ID())
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.ID(), "err", err)
	}
	slog.Debug("ws disconnect", "conn", c.ID())
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	limiter := rate.NewLimiter(rate.Limit(s.opts.RateLimit), s.opts.RateBurst)

	c.conn.SetReadLimit(s.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingInterval))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingInterval))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || !knownEvent(msg.Event) {
			continue
		}
		if !limiter.Allow() {
			slog.Warn("ws event dropped by rate limit", "conn", c.ID(), "event", msg.Event)
			continue
		}

		metrics.EventsTotal.WithLabelValues(msg.Event).Inc()
		s.dispatch(c, msg)
	}
}

func (s *Server) dispatch(c *wsConn, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ws handler panic",
				"conn", c.ID(),
				"event", msg.Event,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	s.route(c, msg)
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

// --- helpers ---

// decode перегоняет payload envelope-а в конкретную структуру события.
func decode(payload any, dst any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

type wsConn struct {
	id     string
	conn   *websocket.Conn
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(id string, c *websocket.Conn) *wsConn {
	return &wsConn{
		id:     id,
		conn:   c,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string { return c.id }
