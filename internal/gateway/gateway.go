// Package gateway terminates WebSocket connections and bridges them to the
// engine: inbound frames become submitted commands, outbound dispatch events
// become JSON frames. The gateway holds no game state; a connection is a
// listener registration plus a join/leave pair.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/embervale/mud/internal/config"
	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/engine"
)

// inboundFrame is what clients send. The first frame on a connection must be
// a join; afterwards only commands are accepted.
type inboundFrame struct {
	Type string `json:"type"`
	// PlayerID identifies a returning character on join; empty mints a new ID.
	PlayerID string `json:"player_id,omitempty"`
	// Name is the character name on join.
	Name string `json:"name,omitempty"`
	// Text is the command line on command frames.
	Text string `json:"text,omitempty"`
}

// AdminFunc decides whether a joining player gets the admin command set. The
// default grants nobody; deployments wire their account layer in here.
type AdminFunc func(playerID, name string) bool

// Gateway is the WebSocket acceptor.
type Gateway struct {
	cfg     config.GatewayConfig
	eng     *engine.Engine
	logger  *zap.Logger
	isAdmin AdminFunc

	upgrader websocket.Upgrader
	srv      *http.Server

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	wg    sync.WaitGroup
}

// New creates a Gateway serving the engine on cfg.Addr().
//
// Precondition: eng and logger must be non-nil. isAdmin may be nil.
func New(cfg config.GatewayConfig, eng *engine.Engine, isAdmin AdminFunc, logger *zap.Logger) *Gateway {
	if isAdmin == nil {
		isAdmin = func(string, string) bool { return false }
	}
	g := &Gateway{
		cfg:     cfg,
		eng:     eng,
		logger:  logger,
		isAdmin: isAdmin,
		conns:   make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The game protocol carries no credentials; origin checks belong
			// to the fronting proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	g.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return g
}

// Start serves until Stop. It blocks, fitting the lifecycle Service contract.
func (g *Gateway) Start() error {
	g.logger.Info("gateway listening", zap.String("addr", g.cfg.Addr()))
	if err := g.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway listen: %w", err)
	}
	return nil
}

// Stop shuts the listener down, closes live connections, and waits for their
// goroutines to drain. Shutdown does not cover hijacked websocket
// connections, so they are closed explicitly.
func (g *Gateway) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := g.srv.Shutdown(ctx); err != nil {
		g.logger.Warn("gateway shutdown", zap.Error(err))
	}

	g.mu.Lock()
	for conn := range g.conns {
		conn.Close()
	}
	g.mu.Unlock()

	g.wg.Wait()
}

// ServeWS upgrades one HTTP request to a game connection. Exposed so tests
// and embedding servers can mount it on their own mux.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	g.mu.Lock()
	g.conns[conn] = struct{}{}
	g.mu.Unlock()

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			g.mu.Lock()
			delete(g.conns, conn)
			g.mu.Unlock()
		}()
		g.serveConn(conn)
	}()
}

// serveConn owns one connection: join handshake, writer goroutine, read loop,
// teardown.
func (g *Gateway) serveConn(conn *websocket.Conn) {
	defer conn.Close()

	var join inboundFrame
	if err := conn.ReadJSON(&join); err != nil || join.Type != "join" || join.Name == "" {
		g.writeEvent(conn, dispatch.ErrorMessage("expected a join frame with a name"))
		return
	}
	playerID := join.PlayerID
	if playerID == "" {
		playerID = uuid.New().String()
	}

	log := g.logger.With(zap.String("player_id", playerID), zap.String("name", join.Name))
	log.Info("player connecting")

	events := g.eng.Dispatcher().Register(playerID, g.cfg.OutboundQueueSize)
	g.eng.Join(engine.JoinRequest{
		PlayerID: playerID,
		Name:     join.Name,
		IsAdmin:  g.isAdmin(playerID, join.Name),
	})

	// Tell the client its ID so it can reconnect as the same character.
	g.writeEvent(conn, dispatch.Event{
		Type:    "joined",
		Payload: map[string]any{"player_id": playerID},
	})

	// Writer drains the listener channel; the channel closing (unregister or
	// replacement by a reconnect) ends it.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for ev := range events {
			if err := g.writeEvent(conn, ev); err != nil {
				log.Debug("write failed, dropping connection", zap.Error(err))
				conn.Close()
				return
			}
			if ev.Type == dispatch.TypeQuit {
				conn.Close()
				return
			}
		}
	}()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		switch frame.Type {
		case "command":
			g.eng.SubmitCommand(playerID, frame.Text)
		default:
			// Routed through the dispatcher so the writer goroutine stays the
			// sole writer on the socket.
			g.eng.Dispatcher().ToPlayer(playerID, dispatch.ErrorMessage(fmt.Sprintf("unknown frame type %q", frame.Type)))
		}
	}

	log.Info("player disconnected")
	g.eng.Leave(playerID)
	g.eng.Dispatcher().Unregister(playerID)
	<-writerDone
}

// writeEvent serializes one event with the configured write deadline. Writes
// are confined to the caller; the writer goroutine is the only writer after
// the handshake.
func (g *Gateway) writeEvent(conn *websocket.Conn, ev dispatch.Event) error {
	if g.cfg.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(g.cfg.WriteTimeout))
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
