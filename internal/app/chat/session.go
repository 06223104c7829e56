/*
Package chat contains the core logic of the realtime relay: the presence registry,
the per-connection session protocol, the broadcast router, and message construction.

This file defines the Session, the per-connection state machine. It validates input,
consults and mutates the Registry, builds messages, and instructs the Router which
room members receive them. Every operation returns a *errs.CustomError that the
transport relays back through its acknowledgment mechanism; no error here is fatal
to the process or the connection.
*/
package chat

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/asif-git-hub/adda-chat-app/internal/pkg/errs"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/logx"
)

// ModerationFunc reports whether outgoing chat text must be rejected.
// It is assumed pure, synchronous, and fast.
type ModerationFunc func(text string) bool

// SessionState enumerates the lifecycle of one connection's session.
type SessionState int

const (
	// StateUnjoined is the initial state; only a join is accepted.
	StateUnjoined SessionState = iota

	// StateJoined means the connection owns a User in the Registry.
	StateJoined

	// StateClosed is terminal; the connection identity is never reused.
	StateClosed
)

// Session drives the protocol for a single connection. The transport delivers that
// connection's events in order, one at a time, so Session state needs no lock of
// its own; all cross-connection state lives in the Registry.
type Session struct {
	connID      string
	registry    *Registry
	router      *Router
	isOffensive ModerationFunc
	state       SessionState
	logger      zerolog.Logger
}

// NewSession constructs a Session for one connection. isOffensive may be nil,
// which disables the moderation gate.
func NewSession(connID string, registry *Registry, router *Router, isOffensive ModerationFunc) *Session {
	return &Session{
		connID:      connID,
		registry:    registry,
		router:      router,
		isOffensive: isOffensive,
		state:       StateUnjoined,
		logger:      logx.Logger().With().Str("connection_id", connID).Logger(),
	}
}

// State reports the session's current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// Join claims a username in a room for this connection. On failure the error is
// returned to the caller only, nothing is broadcast, and the session stays
// unjoined so the client may retry with different values. On success the joiner
// gets a welcome message, the rest of the room a "has joined" notification, and
// the whole room (joiner included) a fresh roster.
func (s *Session) Join(username, room string) *errs.CustomError {
	if s.state != StateUnjoined {
		return errs.NewError(errs.ErrAlreadyJoined)
	}

	u, cerr := s.registry.AddUser(s.connID, username, room)
	if cerr != nil {
		return cerr
	}
	s.state = StateJoined

	s.logger.Info().
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("Session joined room.")

	s.router.ToConnection(s.connID, EventMessage, NewSystemMessage("Welcome!"))

	joined := NewSystemMessage(fmt.Sprintf("%s has joined %s", u.Username, u.Room))
	s.router.ToRoomExceptSender(u.Room, s.connID, EventMessage, joined)

	s.broadcastRoomData(u.Room)

	return nil
}

// SendMessage runs the moderation gate and, if the text passes, broadcasts a chat
// message to every connection in the room including the sender. The sender sees
// its own message through the same channel as everyone else.
func (s *Session) SendMessage(text string) *errs.CustomError {
	u, cerr := s.currentUser()
	if cerr != nil {
		return cerr
	}

	if s.isOffensive != nil && s.isOffensive(text) {
		return errs.NewError(errs.ErrProfanity)
	}

	s.router.ToRoom(u.Room, EventMessage, NewChatMessage(u.Username, text))

	return nil
}

// SendLocation renders the coordinates into a map-link URL and broadcasts a
// location message to every connection in the room including the sender.
// Coordinates are embedded verbatim; out-of-range values pass through unchanged.
func (s *Session) SendLocation(latitude, longitude float64) *errs.CustomError {
	u, cerr := s.currentUser()
	if cerr != nil {
		return cerr
	}

	url := fmt.Sprintf("https://google.com/maps?q=%v,%v", latitude, longitude)
	s.router.ToRoom(u.Room, EventLocationMessage, NewLocationMessage(u.Username, url))

	return nil
}

// Disconnect closes the session from any state. If the connection had actually
// joined, the remaining room members get a "has left" notification and a fresh
// roster; a connection that never joined disconnects silently. Safe to call more
// than once.
func (s *Session) Disconnect() {
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed

	u, removed := s.registry.RemoveUser(s.connID)
	s.router.Detach(s.connID)

	if !removed {
		s.logger.Debug().Msg("Session closed without having joined a room.")
		return
	}

	s.logger.Info().
		Str("username", u.Username).
		Str("room", u.Room).
		Msg("Session left room.")

	s.router.ToRoom(u.Room, EventMessage, NewSystemMessage(u.Username+" has left"))
	s.broadcastRoomData(u.Room)
}

// RoomData is the payload of the "roomData" event: the room name and its roster.
type RoomData struct {
	Room  string        `json:"room"`
	Users []RosterEntry `json:"users"`
}

// broadcastRoomData pushes the room's current roster to all of its members.
func (s *Session) broadcastRoomData(room string) {
	s.router.ToRoom(room, EventRoomData, RoomData{
		Room:  room,
		Users: s.registry.ListUsersInRoom(room),
	})
}

// currentUser resolves the sender for a chat action. A connection with no
// registered User cannot legitimately reach this point, so the action fails
// with ErrNotJoined to the caller only instead of crashing or broadcasting.
func (s *Session) currentUser() (User, *errs.CustomError) {
	if s.state != StateJoined {
		return User{}, errs.NewError(errs.ErrNotJoined)
	}

	u, ok := s.registry.GetUser(s.connID)
	if !ok {
		s.logger.Warn().Msg("Joined session has no registry entry; failing action.")
		return User{}, errs.NewError(errs.ErrNotJoined)
	}
	return u, nil
}
