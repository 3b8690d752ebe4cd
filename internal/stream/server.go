// Package stream publishes the live robot pose over websocket and accepts
// target updates from remote clients.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/notify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
	pingPeriod   = 30 * time.Second
	readLimit    = 1024
)

// Source is the live simulation the server observes.
type Source interface {
	Robot() dynamo.Robot
	SetTarget(x, y int)
	Subscribe(h dynamo.Handler) *notify.Subscription
}

type Frame struct {
	Event   string  `json:"event"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	TargetX int     `json:"target_x"`
	TargetY int     `json:"target_y"`
	Robot   string  `json:"robot"`
}

type TargetRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

var eventNames = [dynamo.NumEvents]string{
	dynamo.EventPoseChanged:   "pose",
	dynamo.EventTargetChanged: "target",
	dynamo.EventRobotReplaced: "replaced",
}

func EventName(e dynamo.Event) string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return e.String()
}

func Snapshot(event string, r dynamo.Robot) Frame {
	pose := r.Pose()
	target := r.Target()
	return Frame{
		Event:   event,
		X:       pose.X,
		Y:       pose.Y,
		Heading: pose.Heading,
		TargetX: target.X,
		TargetY: target.Y,
		Robot:   r.Name(),
	}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	addr string
}

type Server struct {
	src      Source
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	sub     *notify.Subscription

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewServer(src Source, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		src:    src,
		logger: logger.Named("stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	s.sub = src.Subscribe(s.onEvent)
	return s
}

func (s *Server) onEvent(e dynamo.Event) {
	s.Broadcast(Snapshot(EventName(e), s.src.Robot()))
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.ServeWS)
	return mux
}

func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), addr: r.RemoteAddr}

	// the snapshot is queued before registration so it is always first
	if data, err := json.Marshal(Snapshot("snapshot", s.src.Robot())); err == nil {
		c.send <- data
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("client connected", zap.String("addr", c.addr))

	go s.writeLoop(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer s.remove(c)
	for {
		var req TargetRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			var syntax *json.SyntaxError
			var unmarshal *json.UnmarshalTypeError
			if errors.As(err, &syntax) || errors.As(err, &unmarshal) {
				s.logger.Warn("bad target request", zap.String("addr", c.addr), zap.Error(err))
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("read ended", zap.String("addr", c.addr), zap.Error(err))
			}
			return
		}
		if req.X == nil || req.Y == nil {
			s.logger.Warn("target request missing coordinates", zap.String("addr", c.addr))
			continue
		}
		s.src.SetTarget(*req.X, *req.Y)
	}
}

func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	if ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	if ok {
		s.logger.Info("client disconnected", zap.String("addr", c.addr))
	}
}

// Broadcast queues f for every client. A client whose queue is full misses
// the frame but stays connected.
func (s *Server) Broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.logger.Error("encode frame", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
			s.sent.Add(1)
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) Sent() uint64    { return s.sent.Load() }
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// Close stops observing the source and disconnects every client.
func (s *Server) Close() {
	s.sub.Cancel()
	s.mu.Lock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
}

// ListenAndServe serves the stream on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
