/*
Package chat contains the core logic of the realtime relay: the presence registry,
the per-connection session protocol, the broadcast router, and message construction.

This file defines the Client struct, representing an active WebSocket connection. It
manages the connection lifecycle, the read and write pumps, decoding of inbound event
frames into Session calls, and acknowledgment delivery back to the sender.
*/
package chat

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/asif-git-hub/adda-chat-app/internal/pkg/errs"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxFrameSize = 8192

	// MaxContentBytes is the maximum allowed size (in bytes) for chat text content.
	MaxContentBytes = 5000
)

// Names of the events the client sends to the server.
const (
	// EventJoin claims a username in a room.
	EventJoin = "join"

	// EventSendMessage submits chat text.
	EventSendMessage = "sendMessage"

	// EventSendLocation shares the client's coordinates.
	EventSendLocation = "sendLocation"

	// EventAck acknowledges a client event, carrying an error string on failure.
	EventAck = "ack"
)

// eventFrame is the envelope of every frame crossing the websocket in either
// direction. AckID correlates a client event with the server's acknowledgment;
// zero means the client does not expect one.
type eventFrame struct {
	Event   string          `json:"event"`
	AckID   int64           `json:"ackId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outboundFrame mirrors eventFrame with an open payload type for marshaling.
type outboundFrame struct {
	Event   string `json:"event"`
	AckID   int64  `json:"ackId,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// ackPayload is the payload of an EventAck frame. A missing error means success.
type ackPayload struct {
	Error string `json:"error,omitempty"`
}

// joinPayload is the payload of an EventJoin frame.
type joinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// locationPayload is the payload of an EventSendLocation frame.
type locationPayload struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client struct represents an active WebSocket connection and its session.
type Client struct {
	// underlying WebSocket connection object.
	conn *websocket.Conn

	// the protocol state machine driven by this connection's events.
	session *Session

	// a buffered channel used to queue frames waiting to be sent to the client.
	send chan []byte

	// closeMu guards closed so concurrent broadcasts never write to a closed channel.
	closeMu sync.RWMutex
	closed  bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs and returns a new Client instance wrapping the given
// connection and session.
func NewClient(wsConn *websocket.Conn, session *Session) *Client {
	return &Client{
		conn:    wsConn,
		session: session,
		send:    make(chan []byte, 256),
		logger:  logx.Logger().With().Str("connection_id", session.connID).Logger(),
	}
}

// SendEvent queues an event frame for delivery to this connection. It never
// blocks: a full queue or an already-closed connection drops the frame and
// reports an error, isolating this recipient from the rest of a broadcast.
func (c *Client) SendEvent(event string, payload any) error {
	return c.enqueue(outboundFrame{Event: event, Payload: payload})
}

// enqueue marshals the frame and attempts to place it on the send queue.
func (c *Client) enqueue(frame outboundFrame) error {
	frameBytes, err := json.Marshal(frame)
	if err != nil {
		c.logger.Error().Err(err).Str("event", frame.Event).Msg("Error marshaling frame for client")
		return err
	}

	c.closeMu.RLock()
	defer c.closeMu.RUnlock()

	if c.closed {
		return fmt.Errorf("connection closed")
	}

	select {
	case c.send <- frameBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping frame")
		return fmt.Errorf("client send queue full")
	}
}

// closeOutbox marks the client closed and releases the write pump. Safe against
// concurrent SendEvent calls and safe to call once only, which cleanupOnDisconnect
// guarantees.
func (c *Client) closeOutbox() {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), frame decoding, and performs cleanup upon
// connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxFrameSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect runs exactly once when the read pump terminates, whatever
// the cause: network drop, explicit close, or server shutdown.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	// remove the user and notify the remaining room members
	c.session.Disconnect()

	// release the write pump
	c.closeOutbox()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

// processInboundFrame decodes one raw frame and dispatches it to the session.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var frame eventFrame
	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		return
	}

	switch frame.Event {
	case EventJoin:
		c.handleJoin(frame)

	case EventSendMessage:
		c.handleSendMessage(frame)

	case EventSendLocation:
		c.handleSendLocation(frame)

	default:
		c.logger.Warn().Str("event", frame.Event).Msg("Client sent unsupported event")
	}
}

// handleJoin decodes the join payload and acknowledges the session's verdict.
func (c *Client) handleJoin(frame eventFrame) {
	var payload joinPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
		c.sendAck(frame.AckID, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	c.sendAck(frame.AckID, c.session.Join(payload.Username, payload.Room))
}

// handleSendMessage decodes chat text, applies the transport-level size cap, and
// acknowledges the session's verdict.
func (c *Client) handleSendMessage(frame eventFrame) {
	var text string
	if err := json.Unmarshal(frame.Payload, &text); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendMessage payload")
		c.sendAck(frame.AckID, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	if len(text) > MaxContentBytes {
		c.sendAck(frame.AckID, errs.NewError(errs.ErrMessageTooLong))
		return
	}

	c.sendAck(frame.AckID, c.session.SendMessage(text))
}

// handleSendLocation decodes the coordinates and acknowledges the session's verdict.
func (c *Client) handleSendLocation(frame eventFrame) {
	var payload locationPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid sendLocation payload")
		c.sendAck(frame.AckID, errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	c.sendAck(frame.AckID, c.session.SendLocation(payload.Latitude, payload.Longitude))
}

// sendAck relays the result of a client event back over the acknowledgment
// channel. Errors go to this sender only, never into a broadcast. A zero AckID
// means the client did not ask for an acknowledgment.
func (c *Client) sendAck(ackID int64, cerr *errs.CustomError) {
	if ackID == 0 {
		return
	}

	var payload ackPayload
	if cerr != nil {
		payload.Error = cerr.Message
	}

	if err := c.enqueue(outboundFrame{Event: EventAck, AckID: ackID, Payload: payload}); err != nil {
		c.logger.Warn().Err(err).Int64("ack_id", ackID).Msg("Failed to queue acknowledgment")
	}
}

// WritePump handles writing frames from the Client.send channel to the WebSocket
// connection, interleaved with heartbeat pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel to the WebSocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the
// connection heartbeat. Returns false if the WritePump loop should terminate.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Debug().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
