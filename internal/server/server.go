package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/rigidsim/internal/core/combat"
	"github.com/zeusync/rigidsim/internal/core/config"
	"github.com/zeusync/rigidsim/internal/core/events/bus"
	"github.com/zeusync/rigidsim/internal/core/observability/log"
	"github.com/zeusync/rigidsim/internal/core/sim"
	"github.com/zeusync/rigidsim/pkg/generic"
)

// Message types streamed to observers.
const (
	MessageFrame  = "frame"
	MessageDamage = "damage"
)

const shutdownTimeout = 5 * time.Second

// Message is the envelope of every observer message.
type Message struct {
	Type string `json:"type"`
	Tick uint64 `json:"tick"`
	Data any    `json:"data"`
}

// Server streams simulation frames and combat events to websocket observers
// (renderers, debuggers). It never feeds anything back into the simulation.
type Server struct {
	config  config.Server
	logger  log.Log
	hub     *hub
	buffers *generic.Pool[*bytes.Buffer]

	mu  sync.Mutex
	sub bus.Subscription

	running atomic.Bool
	closed  atomic.Bool
}

func New(cfg config.Server, logger log.Log) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.FrameStride < 1 {
		cfg.FrameStride = 1
	}
	if cfg.MaxClients < 1 {
		cfg.MaxClients = 1
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	logger = logger.With(log.String("component", "observer"))

	return &Server{
		config:  cfg,
		logger:  logger,
		hub:     newHub(cfg.MaxClients, logger),
		buffers: generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset),
	}
}

// Handler serves the websocket endpoint and a health probe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.config.Path, s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]int{"clients": s.hub.len()})
	})
	return mux
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}
	defer s.running.Store(false)

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- httpServer.Serve(ln) }()

	s.logger.Info("Observer server listening",
		log.String("addr", ln.Addr().String()),
		log.String("path", s.config.Path))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by http.Server.
	s.hub.closeAll()
	err = httpServer.Shutdown(shutdownCtx)
	if serr := <-serveErr; serr != nil && !errors.Is(serr, http.ErrServerClosed) {
		err = errors.Join(err, serr)
	}

	s.logger.Info("Observer server stopped")
	return err
}

// Close disconnects every observer and detaches from the bus. The server
// cannot be run again afterwards.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrServerClosed
	}
	s.hub.closeAll()
	return s.Detach()
}

// Clients is the number of connected observers.
func (s *Server) Clients() int { return s.hub.len() }

// PublishFrame broadcasts every FrameStride-th frame.
func (s *Server) PublishFrame(f *sim.Frame) {
	if f == nil || f.Tick%uint64(s.config.FrameStride) != 0 {
		return
	}
	s.broadcast(MessageFrame, f.Tick, f)
}

// Attach streams combat damage published on b.
func (s *Server) Attach(b bus.EventBus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		_ = s.sub.Cancel()
	}

	sub, err := b.Subscribe(combat.EventDamage, func(e bus.Event) error {
		dmg, ok := e.(combat.DamageEvent)
		if !ok {
			return fmt.Errorf("%w: %T", ErrInvalidMessage, e)
		}
		s.broadcast(MessageDamage, dmg.Tick, dmg)
		return nil
	})
	if err != nil {
		return err
	}
	s.sub = sub
	return nil
}

func (s *Server) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return nil
	}
	err := s.sub.Cancel()
	s.sub = nil
	return err
}

func (s *Server) broadcast(msgType string, tick uint64, data any) {
	if s.hub.len() == 0 {
		return
	}
	msg, err := s.encode(Message{Type: msgType, Tick: tick, Data: data})
	if err != nil {
		s.logger.Error("Failed to encode observer message", log.String("type", msgType), log.Error(err))
		return
	}
	s.hub.broadcast(msg)
}

func (s *Server) encode(msg Message) ([]byte, error) {
	buf := s.buffers.Get()
	defer s.buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(msg); err != nil {
		return nil, err
	}
	return slices.Clone(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	if err := s.hub.add(c); err != nil {
		s.logger.Warn("Rejecting observer", log.String("remote", conn.RemoteAddr().String()), log.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	s.logger.Debug("Observer connected",
		log.String("client_id", c.id),
		log.String("remote", conn.RemoteAddr().String()))

	go s.hub.writePump(c)
	s.hub.readPump(c)

	s.logger.Debug("Observer disconnected", log.String("client_id", c.id))
}
