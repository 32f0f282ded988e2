package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"vitatrack/domain"
	"vitatrack/domain/event"
	"vitatrack/observability"
	"vitatrack/runtime"
)

func newTestServer(t *testing.T, opts Options) (*httptest.Server, *runtime.Coordinator) {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	coordinator := runtime.NewCoordinator(log, runtime.NewRelay(log, metrics), metrics)
	server := httptest.NewServer(NewSignalingServer(log, coordinator, opts))
	t.Cleanup(server.Close)
	return server, coordinator
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, name string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: name, Data: raw}))
}

func receive(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestSignalingServer_HandshakeThroughRoom(t *testing.T) {
	req := require.New(t)
	server, coordinator := newTestServer(t, DefaultOptions())

	// Given C1 alone in room "abc"
	c1 := dial(t, server)
	send(t, c1, EventJoinRoom, "abc")
	env := receive(t, c1)
	req.Equal(event.NameAllUsers, env.Event)
	req.JSONEq(`[]`, string(env.Data))

	// When C2 joins it learns C1's id
	c2 := dial(t, server)
	send(t, c2, EventJoinRoom, map[string]any{"roomID": "abc", "metadata": map[string]string{"name": "bob"}})
	env = receive(t, c2)
	req.Equal(event.NameAllUsers, env.Event)
	var users []string
	req.NoError(json.Unmarshal(env.Data, &users))
	req.Len(users, 1)
	c1ID := users[0]

	// When C2 offers to C1
	send(t, c2, EventSendingSignal, map[string]any{"userToSignal": c1ID, "signal": "X"})
	env = receive(t, c1)
	req.Equal(event.NameUserJoined, env.Event)
	var offer struct {
		Signal   string          `json:"signal"`
		CallerID string          `json:"callerID"`
		Metadata json.RawMessage `json:"metadata"`
	}
	req.NoError(json.Unmarshal(env.Data, &offer))
	req.Equal("X", offer.Signal)
	req.JSONEq(`{"name":"bob"}`, string(offer.Metadata))

	// When C1 answers
	send(t, c1, EventReturningSignal, map[string]any{"callerID": offer.CallerID, "signal": "Y"})
	env = receive(t, c2)
	req.Equal(event.NameReceivingReturnedSignal, env.Event)
	req.JSONEq(fmt.Sprintf(`{"signal":"Y","id":%q}`, c1ID), string(env.Data))

	// When C2 goes away
	req.NoError(c2.Close())

	// Then C1 is told
	env = receive(t, c1)
	req.Equal(event.NameUserLeft, env.Event)
	req.JSONEq(fmt.Sprintf(`%q`, offer.CallerID), string(env.Data))
	req.Eventually(func() bool {
		return len(coordinator.Members("abc")) == 1
	}, time.Second, 10*time.Millisecond)
	req.Equal([]domain.ConnectionID{domain.ConnectionID(c1ID)}, coordinator.Members("abc"))
}

func TestSignalingServer_RoomFull(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t, DefaultOptions())

	for i := 0; i < domain.RoomCapacity; i++ {
		conn := dial(t, server)
		send(t, conn, EventJoinRoom, "full")
		req.Equal(event.NameAllUsers, receive(t, conn).Event)
	}

	late := dial(t, server)
	send(t, late, EventJoinRoom, "full")

	env := receive(t, late)
	req.Equal(event.NameRoomFull, env.Event)
	req.Empty(env.Data)
}

func TestSignalingServer_InvalidFramesAreIgnored(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t, DefaultOptions())
	conn := dial(t, server)

	// Given garbage and unknown events
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, conn, "shout", "hello")
	send(t, conn, EventJoinRoom, "")

	// Then the connection stays usable
	send(t, conn, EventJoinRoom, "ok")
	req.Equal(event.NameAllUsers, receive(t, conn).Event)
}

func TestSignalingServer_CheckOrigin(t *testing.T) {
	req := require.New(t)
	opts := DefaultOptions()
	opts.AllowedOrigins = []string{"https://app.example.com"}
	server, _ := newTestServer(t, opts)
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://evil.example.com"}})
	req.ErrorIs(err, websocket.ErrBadHandshake)
	req.Equal(http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"https://app.example.com"}})
	req.NoError(err)
	_ = conn.Close()
}

func TestNewSignalingServer_SmallIOBuffers(t *testing.T) {
	req := require.New(t)
	opts := DefaultOptions()
	opts.MaxMessageSize = 1 << 20

	server := NewSignalingServer(slog.New(slog.DiscardHandler), nil, opts)

	req.Equal(ioBufferSize, server.upgrader.ReadBufferSize)
	req.Equal(ioBufferSize, server.upgrader.WriteBufferSize)
}
