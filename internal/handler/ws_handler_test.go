package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/internal/service"
	"github.com/slidecast/presentation-service/pkg/model"
)

func newTestServer(t *testing.T, maxClients int, heartbeat time.Duration) (*httptest.Server, *service.PresentationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	talk := model.Talk{Title: "test talk", Slides: []model.Slide{
		{ID: 0, Title: "one"},
		{ID: 1, Title: "two"},
	}}
	talks, err := service.NewTalkService(talk, log)
	require.NoError(t, err)
	clients := service.NewClientService(maxClients, log)
	svc := service.NewPresentationService(talks, clients, log)

	ws := NewWSHandler(svc, 1024, 1024, 65536, heartbeat, log)
	r := gin.New()
	r.GET("/api/ws", ws.ServeWS)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one of the wanted type arrives. Fan-out is
// last-value-wins, so intermediate frames may legitimately be missing.
func readUntil(t *testing.T, conn *websocket.Conn, want model.NotificationType) model.Notification {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", want)
		n, err := model.DecodeNotification(data)
		require.NoError(t, err)
		if n.Type == want {
			return n
		}
	}
}

func sendCommand(t *testing.T, conn *websocket.Conn, cmd model.Command) {
	t.Helper()
	data, err := cmd.Encode()
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestServeWSPushesStateFirst(t *testing.T) {
	srv, _ := newTestServer(t, 4, time.Hour)
	conn := dialWS(t, srv)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	n, err := model.DecodeNotification(data)
	require.NoError(t, err)
	assert.Equal(t, model.NotificationState, n.Type)
	require.NotNil(t, n.State)
	assert.Equal(t, model.PhaseInit, n.State.Phase)
}

func TestCommandsBroadcastToAllClients(t *testing.T) {
	srv, _ := newTestServer(t, 4, time.Hour)
	connA := dialWS(t, srv)
	connB := dialWS(t, srv)

	// Drain the initial snapshots.
	readUntil(t, connA, model.NotificationState)
	readUntil(t, connB, model.NotificationState)

	sendCommand(t, connA, model.NewCommand(model.CommandNext))

	for _, conn := range []*websocket.Conn{connA, connB} {
		n := readUntil(t, conn, model.NotificationState)
		require.NotNil(t, n.State)
		assert.Equal(t, model.PhaseRunning, n.State.Phase)
		current, ok := n.State.CurrentSlide()
		require.True(t, ok)
		assert.Equal(t, model.SlideID(0), current)
	}
}

func TestMalformedFrameKeepsConnectionOpen(t *testing.T) {
	srv, svc := newTestServer(t, 4, time.Hour)
	conn := dialWS(t, srv)
	readUntil(t, conn, model.NotificationState)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not a command")))
	n := readUntil(t, conn, model.NotificationError)
	assert.Contains(t, n.Message, "invalid command format")

	// The session survived: commands still work.
	sendCommand(t, conn, model.NewCommand(model.CommandNext))
	n = readUntil(t, conn, model.NotificationState)
	require.NotNil(t, n.State)
	assert.Equal(t, model.PhaseRunning, svc.CurrentState().Phase)
}

func TestRegisterAnnouncesPresence(t *testing.T) {
	srv, _ := newTestServer(t, 4, time.Hour)
	connA := dialWS(t, srv)
	connB := dialWS(t, srv)
	readUntil(t, connA, model.NotificationState)
	readUntil(t, connB, model.NotificationState)

	sendCommand(t, connB, model.RegisterCommand("", "beamer", model.RendererHTML))

	reg := readUntil(t, connB, model.NotificationRegistered)
	assert.NotEmpty(t, reg.Client)

	presence := readUntil(t, connA, model.NotificationClientConnected)
	assert.Equal(t, "beamer", presence.Name)
}

func TestRegistryFullRefusesConnection(t *testing.T) {
	srv, _ := newTestServer(t, 1, time.Hour)
	connA := dialWS(t, srv)
	readUntil(t, connA, model.NotificationState)

	connB := dialWS(t, srv)
	require.NoError(t, connB.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := connB.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}

func TestUnregisterClosesSession(t *testing.T) {
	srv, svc := newTestServer(t, 4, time.Hour)
	conn := dialWS(t, srv)
	readUntil(t, conn, model.NotificationState)
	require.Equal(t, 1, svc.Clients().ActiveClients())

	sendCommand(t, conn, model.UnregisterCommand(""))

	require.Eventually(t, func() bool {
		return svc.Clients().ActiveClients() == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestHeartbeatInjectsPong(t *testing.T) {
	srv, _ := newTestServer(t, 4, 20*time.Millisecond)
	conn := dialWS(t, srv)

	n := readUntil(t, conn, model.NotificationPong)
	assert.Equal(t, model.NotificationPong, n.Type)
}

func TestPingAnsweredWithPong(t *testing.T) {
	srv, _ := newTestServer(t, 4, time.Hour)
	conn := dialWS(t, srv)
	readUntil(t, conn, model.NotificationState)

	sendCommand(t, conn, model.NewCommand(model.CommandPing))
	readUntil(t, conn, model.NotificationPong)
}

func TestDisconnectFreesRegistrySlot(t *testing.T) {
	srv, svc := newTestServer(t, 4, time.Hour)
	conn := dialWS(t, srv)
	readUntil(t, conn, model.NotificationState)
	require.Equal(t, 1, svc.Clients().ActiveClients())

	conn.Close()

	require.Eventually(t, func() bool {
		return svc.Clients().ActiveClients() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
