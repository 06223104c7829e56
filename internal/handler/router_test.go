package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asif-git-hub/adda-chat-app/internal/app/chat"
	"github.com/asif-git-hub/adda-chat-app/internal/app/moderation"
	"github.com/asif-git-hub/adda-chat-app/internal/configs"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/errs"
)

type wireFrame struct {
	Event   string          `json:"event"`
	AckID   int64           `json:"ackId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	registry := chat.NewRegistry()
	deps := &AppDeps{
		Registry:    registry,
		Broadcasts:  chat.NewRouter(registry),
		IsOffensive: moderation.NewFilter().IsOffensive,
		Config: &configs.AppConfig{
			Environment: "development",
			Port:        3004,
			StaticDir:   t.TempDir(),
		},
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, event string, ackID int64, payload any) {
	t.Helper()

	frame := map[string]any{"event": event, "ackId": ackID, "payload": payload}
	require.NoError(t, conn.WriteJSON(frame))
}

// readUntilAck collects frames until the acknowledgment with the given id arrives,
// returning every frame seen along the way keyed by event name.
func readUntilAck(t *testing.T, conn *websocket.Conn, ackID int64) (map[string][]wireFrame, wireFrame) {
	t.Helper()

	seen := make(map[string][]wireFrame)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	for {
		var frame wireFrame
		require.NoError(t, conn.ReadJSON(&frame))

		if frame.Event == "ack" && frame.AckID == ackID {
			return seen, frame
		}
		seen[frame.Event] = append(seen[frame.Event], frame)
	}
}

func ackError(t *testing.T, frame wireFrame) string {
	t.Helper()

	var payload struct {
		Error string `json:"error"`
	}
	if len(frame.Payload) > 0 {
		require.NoError(t, json.Unmarshal(frame.Payload, &payload))
	}
	return payload.Error
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)

	var body struct {
		Code int `json:"code"`
		Data struct {
			Status  string `json:"status"`
			Service string `json:"service"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, 0, body.Code)
	assert.Equal(t, "ok", body.Data.Status)
}

func TestRequestRateLimit(t *testing.T) {
	srv := newTestServer(t)

	var limited int
	for i := 0; i < 100; i++ {
		res, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)

		if i == 0 {
			assert.Equal(t, http.StatusOK, res.StatusCode, "first request must pass")
		}
		if res.StatusCode == http.StatusTooManyRequests {
			var body struct {
				Code int `json:"code"`
			}
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, errs.ErrRateLimitExceeded, body.Code)
			limited++
		}
		res.Body.Close()
	}

	assert.Greater(t, limited, 0, "flooding one IP past the burst must be limited")
}

func TestWebSocket_JoinFlow(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendFrame(t, conn, "join", 1, map[string]string{"username": "alice", "room": "room1"})
	seen, ack := readUntilAck(t, conn, 1)

	assert.Empty(t, ackError(t, ack), "successful join acks without an error")

	messages := seen["message"]
	require.NotEmpty(t, messages)
	var welcome struct {
		Username  string `json:"username"`
		Text      string `json:"text"`
		CreatedAt int64  `json:"createdAt"`
	}
	require.NoError(t, json.Unmarshal(messages[0].Payload, &welcome))
	assert.Equal(t, "Adda Admin", welcome.Username)
	assert.Equal(t, "Welcome!", welcome.Text)
	assert.NotZero(t, welcome.CreatedAt)

	rosters := seen["roomData"]
	require.NotEmpty(t, rosters)
	var roomData struct {
		Room  string `json:"room"`
		Users []struct {
			Username string `json:"username"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rosters[0].Payload, &roomData))
	assert.Equal(t, "room1", roomData.Room)
	require.Len(t, roomData.Users, 1)
	assert.Equal(t, "alice", roomData.Users[0].Username)
}

func TestWebSocket_JoinValidationError(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendFrame(t, conn, "join", 1, map[string]string{"username": "  ", "room": "room1"})
	_, ack := readUntilAck(t, conn, 1)

	assert.Equal(t, "Username and room are required!", ackError(t, ack))
}

func TestWebSocket_ChatEcho(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendFrame(t, conn, "join", 1, map[string]string{"username": "alice", "room": "room1"})
	_, ack := readUntilAck(t, conn, 1)
	require.Empty(t, ackError(t, ack))

	sendFrame(t, conn, "sendMessage", 2, "hi there")
	seen, ack := readUntilAck(t, conn, 2)

	assert.Empty(t, ackError(t, ack))

	messages := seen["message"]
	require.NotEmpty(t, messages, "sender receives their own message back")
	var echoed struct {
		Username string `json:"username"`
		Text     string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(messages[len(messages)-1].Payload, &echoed))
	assert.Equal(t, "alice", echoed.Username)
	assert.Equal(t, "hi there", echoed.Text)
}

func TestWebSocket_ProfanityRejected(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendFrame(t, conn, "join", 1, map[string]string{"username": "alice", "room": "room1"})
	_, ack := readUntilAck(t, conn, 1)
	require.Empty(t, ackError(t, ack))

	sendFrame(t, conn, "sendMessage", 2, "well, shit")
	seen, ack := readUntilAck(t, conn, 2)

	assert.Equal(t, "Profanity not allowed here!", ackError(t, ack))
	assert.Empty(t, seen["message"], "rejected message must not be echoed")
}

func TestWebSocket_LocationShare(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	sendFrame(t, conn, "join", 1, map[string]string{"username": "alice", "room": "room1"})
	_, ack := readUntilAck(t, conn, 1)
	require.Empty(t, ackError(t, ack))

	sendFrame(t, conn, "sendLocation", 2, map[string]float64{"latitude": 13.0827, "longitude": 80.2707})
	seen, ack := readUntilAck(t, conn, 2)

	assert.Empty(t, ackError(t, ack))

	locations := seen["locationMessage"]
	require.NotEmpty(t, locations)
	var location struct {
		Username string `json:"username"`
		Text     string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(locations[0].Payload, &location))
	assert.Equal(t, "alice", location.Username)
	assert.Equal(t, "https://google.com/maps?q=13.0827,80.2707", location.Text)
}

func TestWebSocket_DisconnectNotifiesRoom(t *testing.T) {
	srv := newTestServer(t)

	alice := dialWS(t, srv)
	sendFrame(t, alice, "join", 1, map[string]string{"username": "alice", "room": "room1"})
	_, ack := readUntilAck(t, alice, 1)
	require.Empty(t, ackError(t, ack))

	bob := dialWS(t, srv)
	sendFrame(t, bob, "join", 1, map[string]string{"username": "bob", "room": "room1"})
	_, ack = readUntilAck(t, bob, 1)
	require.Empty(t, ackError(t, ack))

	require.NoError(t, alice.Close())

	// bob sees the departure notification followed by the shrunken roster
	require.NoError(t, bob.SetReadDeadline(time.Now().Add(3*time.Second)))
	var sawLeft, sawRoster bool
	for !(sawLeft && sawRoster) {
		var frame wireFrame
		require.NoError(t, bob.ReadJSON(&frame))

		switch frame.Event {
		case "message":
			var msg struct {
				Text string `json:"text"`
			}
			require.NoError(t, json.Unmarshal(frame.Payload, &msg))
			if msg.Text == "alice has left" {
				sawLeft = true
			}
		case "roomData":
			var roomData struct {
				Users []struct {
					Username string `json:"username"`
				} `json:"users"`
			}
			require.NoError(t, json.Unmarshal(frame.Payload, &roomData))
			if len(roomData.Users) == 1 && roomData.Users[0].Username == "bob" {
				sawRoster = true
			}
		}
	}
}
