package bridge

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/cantina-go/internal/constants"
	"github.com/kapu/cantina-go/internal/domain"
	"github.com/kapu/cantina-go/internal/people"
	"github.com/kapu/cantina-go/internal/util"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Controller is the part of people.Controller the bridge drives.
type Controller interface {
	Start(ctx context.Context)
	OnReachedEnd(ctx context.Context)
	Retry(ctx context.Context)
	SetSearchText(text string)
	SelectPerson(person domain.Person)
	Dismiss()
	OnWaveformTapped(ctx context.Context)
	Snapshot() people.ViewState
	AllPeople() []domain.Person
	Subscribe(callback func(people.ViewState)) func()
}

// Server exposes a controller to remote views over websocket. Every
// client receives each published state; any client may send intents.
type Server struct {
	controller Controller
	logger     *zap.Logger
	upgrader   websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	clients     map[*client]struct{}
	lastVersion uint64
	lastPayload []byte
	closed      bool
	unsubscribe func()

	intentsMu     sync.RWMutex
	intentsClosed bool
	intents       *pool.Pool
	pumps         conc.WaitGroup
	httpSrv       *http.Server
	stopOnce      sync.Once
}

type client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (cl *client) closeSend() {
	cl.closeOnce.Do(func() {
		close(cl.send)
	})
}

func NewServer(controller Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		controller: controller,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		ctx:     ctx,
		cancel:  cancel,
		clients: make(map[*client]struct{}),
		intents: pool.New().WithMaxGoroutines(constants.BridgeConfig.IntentWorkers),
	}
	s.unsubscribe = controller.Subscribe(s.broadcast)
	return s
}

// Handler serves /ws, /state and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ListenAndServe blocks until Shutdown. It returns nil after a clean stop.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("bridge server already shut down")
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpSrv
	s.mu.Unlock()

	s.logger.Info("Bridge listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting clients, closes open connections and waits for
// in-flight intents.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.stopOnce.Do(func() {
		s.unsubscribe()

		s.mu.Lock()
		s.closed = true
		srv := s.httpSrv
		for cl := range s.clients {
			delete(s.clients, cl)
			cl.closeSend()
		}
		s.mu.Unlock()

		if srv != nil {
			shutdownErr = srv.Shutdown(ctx)
		}

		s.cancel()
		s.intentsMu.Lock()
		s.intentsClosed = true
		s.intentsMu.Unlock()
		s.intents.Wait()

		done := make(chan struct{})
		go func() {
			s.pumps.Wait()
			close(done)
		}()
		select {
		case <-done:
			s.logger.Info("Bridge stopped")
		case <-ctx.Done():
			s.logger.Warn("Timeout waiting for bridge connections to close")
			if shutdownErr == nil {
				shutdownErr = ctx.Err()
			}
		}
	})
	return shutdownErr
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewStatePayload(s.controller.Snapshot())); err != nil {
		s.logger.Error("Failed to write state", zap.Error(err))
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{
		conn: conn,
		send: make(chan []byte, constants.BridgeConfig.SendBuffer),
	}
	if !s.register(cl) {
		_ = conn.Close()
		return
	}

	s.logger.Info("Bridge client connected", zap.String("remote", r.RemoteAddr))

	s.pumps.Go(func() { s.writePump(cl) })
	s.pumps.Go(func() { s.readPump(cl) })
}

// register adds cl and queues the latest state for it.
func (s *Server) register(cl *client) bool {
	snapshot := s.controller.Snapshot()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	if s.lastPayload == nil || snapshot.Version > s.lastVersion {
		payload, err := encodeState(snapshot)
		if err != nil {
			s.logger.Error("Failed to encode state", zap.Error(err))
			return false
		}
		s.lastVersion = snapshot.Version
		s.lastPayload = payload
	}

	s.clients[cl] = struct{}{}
	cl.send <- s.lastPayload
	return true
}

func (s *Server) unregister(cl *client) {
	s.mu.Lock()
	if _, ok := s.clients[cl]; ok {
		delete(s.clients, cl)
		cl.closeSend()
	}
	s.mu.Unlock()
}

// broadcast is the controller listener. Listeners may run concurrently,
// so states older than the last one sent are dropped.
func (s *Server) broadcast(state people.ViewState) {
	payload, err := encodeState(state)
	if err != nil {
		s.logger.Error("Failed to encode state", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || (s.lastPayload != nil && state.Version <= s.lastVersion) {
		return
	}
	s.lastVersion = state.Version
	s.lastPayload = payload

	for cl := range s.clients {
		select {
		case cl.send <- payload:
		default:
			s.logger.Warn("Bridge client too slow, disconnecting",
				zap.String("remote", cl.conn.RemoteAddr().String()),
			)
			delete(s.clients, cl)
			cl.closeSend()
		}
	}
}

func (s *Server) sendError(cl *client, message string) {
	data, err := json.Marshal(Message{Type: MessageError, Error: message})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[cl]; !ok {
		return
	}
	select {
	case cl.send <- data:
	default:
	}
}

func (s *Server) readPump(cl *client) {
	defer func() {
		s.unregister(cl)
		_ = cl.conn.Close()
		s.logger.Info("Bridge client disconnected")
	}()

	cl.conn.SetReadLimit(constants.BridgeConfig.MaxMessageBytes)
	_ = cl.conn.SetReadDeadline(time.Now().Add(constants.BridgeConfig.PongTimeout))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(constants.BridgeConfig.PongTimeout))
	})

	for {
		_, data, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("Bridge read error", zap.Error(err))
			}
			return
		}

		var intent Intent
		if err := json.Unmarshal(data, &intent); err != nil {
			s.logger.Warn("Failed to parse intent",
				zap.Error(err),
				zap.String("data", util.TruncateString(string(data), 200)),
			)
			s.sendError(cl, "malformed intent")
			continue
		}

		if err := s.dispatch(intent); err != nil {
			s.sendError(cl, err.Error())
		}
	}
}

func (s *Server) writePump(cl *client) {
	ticker := time.NewTicker(constants.BridgeConfig.PingInterval)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(constants.BridgeConfig.WriteTimeout))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.logger.Warn("Bridge write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(constants.BridgeConfig.WriteTimeout))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch applies one intent. Intents that may fetch or stop music run on
// the intent pool so the read loop keeps serving.
func (s *Server) dispatch(intent Intent) error {
	switch intent.Type {
	case IntentSearch:
		s.controller.SetSearchText(intent.Text)
	case IntentDismiss:
		s.controller.Dismiss()
	case IntentSelect:
		person, ok := s.findPerson(intent.ID)
		if !ok {
			return fmt.Errorf("unknown person %q", intent.ID)
		}
		s.controller.SelectPerson(person)
	case IntentStart:
		s.goIntent(s.controller.Start)
	case IntentReachedEnd:
		s.goIntent(s.controller.OnReachedEnd)
	case IntentRetry:
		s.goIntent(s.controller.Retry)
	case IntentWaveform:
		s.goIntent(s.controller.OnWaveformTapped)
	default:
		return fmt.Errorf("unknown intent %q", intent.Type)
	}
	return nil
}

func (s *Server) goIntent(fn func(context.Context)) {
	s.intentsMu.RLock()
	defer s.intentsMu.RUnlock()
	if s.intentsClosed {
		return
	}

	ctx := s.ctx
	s.intents.Go(func() {
		fn(ctx)
	})
}

func (s *Server) findPerson(id string) (domain.Person, bool) {
	for _, person := range s.controller.AllPeople() {
		if person.ID() == id {
			return person, true
		}
	}
	return domain.Person{}, false
}

func encodeState(state people.ViewState) ([]byte, error) {
	return json.Marshal(Message{Type: MessageState, State: NewStatePayload(state)})
}
