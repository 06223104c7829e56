/*
Package chat contains the core logic of the realtime relay: the presence registry,
the per-connection session protocol, the broadcast router, and message construction.

This file defines the Registry, the single source of truth mapping live connection
identity to a username and room. Every other view of room membership is derived from
it on demand, so a roster is always consistent with the latest mutation.
*/
package chat

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/asif-git-hub/adda-chat-app/internal/pkg/errs"
	"github.com/asif-git-hub/adda-chat-app/internal/pkg/logx"
)

// User binds one live connection to a display name and room. Users exist only while
// the connection is live; the Registry exclusively owns the authoritative records and
// hands out value copies.
type User struct {
	// ConnectionID is the opaque transport-assigned identity, unique per live connection.
	ConnectionID string `json:"-"`

	// Username is the display name as submitted (trimmed, original casing).
	Username string `json:"username"`

	// Room is the room name as submitted (trimmed, original casing).
	Room string `json:"-"`

	// normalized forms used for uniqueness and room matching.
	usernameKey string
	roomKey     string
}

// RosterEntry is the public shape of one roster row in the "roomData" event.
// Connection ids are never exposed to clients.
type RosterEntry struct {
	Username string `json:"username"`
}

// Registry is the authoritative, ordered collection of Users, keyed by connection id.
// All operations are atomic with respect to each other; a single mutex serializes
// access since every operation is a short in-memory scan.
type Registry struct {
	mu sync.RWMutex

	// users preserves insertion order, which fixes roster ordering.
	users []*User

	// byConn indexes the same records by connection id.
	byConn map[string]*User

	logger zerolog.Logger
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[string]*User),
		logger: logx.Logger().With().Str("component", "Registry").Logger(),
	}
}

// normalizeKey produces the case-insensitive comparison form of a username or room.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AddUser validates and inserts a new User for the given connection.
// Username and room are trimmed; the display form keeps the submitted casing while
// uniqueness is checked case-insensitively per room. The first claimant of a
// (username, room) pair wins; later claimants are rejected outright.
func (reg *Registry) AddUser(connID, username, room string) (User, *errs.CustomError) {
	displayName := strings.TrimSpace(username)
	displayRoom := strings.TrimSpace(room)

	if displayName == "" || displayRoom == "" {
		return User{}, errs.NewError(errs.ErrUsernameAndRoomRequired)
	}

	u := &User{
		ConnectionID: connID,
		Username:     displayName,
		Room:         displayRoom,
		usernameKey:  normalizeKey(displayName),
		roomKey:      normalizeKey(displayRoom),
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.byConn[connID]; exists {
		reg.logger.Warn().
			Str("connection_id", connID).
			Msg("Connection attempted a second registration.")
		return User{}, errs.NewError(errs.ErrInvalidParams)
	}

	for _, existing := range reg.users {
		if existing.roomKey == u.roomKey && existing.usernameKey == u.usernameKey {
			return User{}, errs.NewError(errs.ErrUsernameTaken)
		}
	}

	reg.users = append(reg.users, u)
	reg.byConn[connID] = u

	reg.logger.Info().
		Str("connection_id", connID).
		Str("username", u.Username).
		Str("room", u.Room).
		Int("total_users", len(reg.users)).
		Msg("User registered.")

	return *u, nil
}

// RemoveUser removes and returns the User for the given connection.
// It is idempotent: removal of an unknown or already-removed connection reports
// false and is never an error, so disconnect handlers can always call it.
func (reg *Registry) RemoveUser(connID string) (User, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	u, ok := reg.byConn[connID]
	if !ok {
		return User{}, false
	}

	delete(reg.byConn, connID)
	for i, existing := range reg.users {
		if existing == u {
			reg.users = append(reg.users[:i], reg.users[i+1:]...)
			break
		}
	}

	reg.logger.Info().
		Str("connection_id", connID).
		Str("username", u.Username).
		Str("room", u.Room).
		Int("total_users", len(reg.users)).
		Msg("User removed.")

	return *u, true
}

// GetUser returns the User for the given connection. Absence is not an error at
// this layer; callers decide how to treat an unjoined connection.
func (reg *Registry) GetUser(connID string) (User, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	u, ok := reg.byConn[connID]
	if !ok {
		return User{}, false
	}
	return *u, true
}

// UsersInRoom returns value copies of every User in the given room, in insertion
// order. The room match is case-insensitive. Linear scan; acceptable at expected
// scale.
func (reg *Registry) UsersInRoom(room string) []User {
	key := normalizeKey(room)

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var members []User
	for _, u := range reg.users {
		if u.roomKey == key {
			members = append(members, *u)
		}
	}
	return members
}

// ListUsersInRoom returns the public roster of the given room, in insertion order.
func (reg *Registry) ListUsersInRoom(room string) []RosterEntry {
	key := normalizeKey(room)

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	roster := make([]RosterEntry, 0, len(reg.users))
	for _, u := range reg.users {
		if u.roomKey == key {
			roster = append(roster, RosterEntry{Username: u.Username})
		}
	}
	return roster
}

// Len reports the number of currently registered Users.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return len(reg.users)
}
