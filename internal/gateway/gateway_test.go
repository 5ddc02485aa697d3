package gateway_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/embervale/mud/internal/config"
	"github.com/embervale/mud/internal/dispatch"
	"github.com/embervale/mud/internal/engine"
	"github.com/embervale/mud/internal/game/world"
	"github.com/embervale/mud/internal/gateway"
)

type wireEvent struct {
	Type    string         `json:"type"`
	Text    string         `json:"text"`
	Payload map[string]any `json:"payload"`
}

func testWorld(t *testing.T) *world.World {
	t.Helper()
	w := world.New()
	area := world.NewArea("vale", "The Vale")
	area.TimeScale = 0
	area.EntryPoints = []string{"vale:green"}
	area.RoomIDs["vale:green"] = struct{}{}
	require.NoError(t, w.AddRoom(world.NewRoom("vale:green", "Village Green", "A wide green ringed by cottages.")))
	require.NoError(t, w.AddArea(area))
	return w
}

func testConfig() config.Config {
	return config.Config{
		Engine:  config.EngineConfig{InboundQueueSize: 64},
		Combat:  config.CombatConfig{CritMultiplier: 1.5, RecoveryInterval: time.Second},
		Respawn: config.RespawnConfig{CountdownSeconds: 10},
		Content: config.ContentConfig{Dir: "testdata"},
	}
}

func startGateway(t *testing.T, isAdmin gateway.AdminFunc) (*websocket.Conn, func()) {
	t.Helper()
	eng := engine.New(testWorld(t), testConfig(), zap.NewNop())
	require.NoError(t, eng.Start())

	gwCfg := config.GatewayConfig{OutboundQueueSize: 64, WriteTimeout: 5 * time.Second}
	gw := gateway.New(gwCfg, eng, isAdmin, zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(gw.ServeWS))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	cleanup := func() {
		conn.Close()
		srv.Close()
		eng.Stop()
	}
	return conn, cleanup
}

// readUntil reads frames until pred matches or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, pred func(wireEvent) bool) wireEvent {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var ev wireEvent
		if err := conn.ReadJSON(&ev); err != nil {
			t.Fatalf("reading frame: %v", err)
		}
		if pred(ev) {
			return ev
		}
	}
	t.Fatal("expected frame never arrived")
	return wireEvent{}
}

func join(t *testing.T, conn *websocket.Conn, name string) string {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "join", "name": name}))
	ev := readUntil(t, conn, func(ev wireEvent) bool { return ev.Type == "joined" })
	id, _ := ev.Payload["player_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestJoinHandshakeAndWelcome(t *testing.T) {
	conn, cleanup := startGateway(t, nil)
	defer cleanup()

	join(t, conn, "Tess")

	welcome := readUntil(t, conn, func(ev wireEvent) bool {
		return ev.Type == dispatch.TypeMessage && strings.Contains(ev.Text, "Welcome")
	})
	assert.Contains(t, welcome.Text, "Tess")

	room := readUntil(t, conn, func(ev wireEvent) bool {
		return ev.Type == dispatch.TypeMessage && strings.Contains(ev.Text, "Village Green")
	})
	assert.Contains(t, room.Text, "Village Green")
}

func TestCommandRoundTrip(t *testing.T) {
	conn, cleanup := startGateway(t, nil)
	defer cleanup()

	join(t, conn, "Tess")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "command", "text": "say hello there"}))

	said := readUntil(t, conn, func(ev wireEvent) bool {
		return strings.Contains(ev.Text, "hello there")
	})
	assert.Contains(t, said.Text, "You say")
}

func TestUnknownFrameTypeReturnsError(t *testing.T) {
	conn, cleanup := startGateway(t, nil)
	defer cleanup()

	join(t, conn, "Tess")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "telemetry"}))

	ev := readUntil(t, conn, func(ev wireEvent) bool { return ev.Type == dispatch.TypeError })
	assert.Contains(t, ev.Text, "telemetry")
}

func TestJoinWithoutNameRejected(t *testing.T) {
	conn, cleanup := startGateway(t, nil)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "join"}))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev wireEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, dispatch.TypeError, ev.Type)

	// The server closes the connection after the rejection.
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestAdminFuncGrantsAdminCommands(t *testing.T) {
	conn, cleanup := startGateway(t, func(_, name string) bool { return name == "Root" })
	defer cleanup()

	join(t, conn, "Root")
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "command", "text": "who"}))

	ev := readUntil(t, conn, func(ev wireEvent) bool { return strings.Contains(ev.Text, "Players:") })
	assert.Contains(t, ev.Text, "Root")
}
