/*
Package chat contains the core logic of the realtime relay: the presence registry,
the per-connection session protocol, the broadcast router, and message construction.

This file defines the Router, which fans a single event out to one room's current
members. Membership is resolved against the Registry at the moment of each call,
never from an earlier snapshot, and delivery is best-effort and fire-and-forget.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/asif-git-hub/adda-chat-app/internal/pkg/logx"
)

// Outbox is the write side of one live connection. The transport layer implements it;
// Send must not block and reports a per-recipient failure (a dead or saturated socket)
// as an error.
type Outbox interface {
	SendEvent(event string, payload any) error
}

// Router delivers events to room members. It tracks an Outbox per attached
// connection and resolves room membership through the Registry on every call.
type Router struct {
	registry *Registry

	mu       sync.RWMutex
	outboxes map[string]Outbox

	logger zerolog.Logger
}

// NewRouter constructs a Router resolving membership against the given Registry.
func NewRouter(registry *Registry) *Router {
	return &Router{
		registry: registry,
		outboxes: make(map[string]Outbox),
		logger:   logx.Logger().With().Str("component", "Router").Logger(),
	}
}

// Attach registers the outbox for a connection. Called by the transport when the
// connection opens, before any event for it can be routed.
func (rt *Router) Attach(connID string, out Outbox) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.outboxes[connID] = out
}

// Detach removes the outbox for a connection. Idempotent.
func (rt *Router) Detach(connID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	delete(rt.outboxes, connID)
}

// ToRoom delivers the event to every connection currently in the room.
func (rt *Router) ToRoom(room, event string, payload any) {
	rt.deliver(rt.registry.UsersInRoom(room), "", event, payload)
}

// ToRoomExceptSender delivers the event to every connection currently in the room
// other than the sender.
func (rt *Router) ToRoomExceptSender(room, senderConnID, event string, payload any) {
	rt.deliver(rt.registry.UsersInRoom(room), senderConnID, event, payload)
}

// ToConnection delivers the event to a single connection, joined or not.
func (rt *Router) ToConnection(connID, event string, payload any) {
	rt.mu.RLock()
	out, ok := rt.outboxes[connID]
	rt.mu.RUnlock()

	if !ok {
		rt.logger.Debug().
			Str("connection_id", connID).
			Str("event", event).
			Msg("No outbox attached for connection, dropping event.")
		return
	}

	if err := out.SendEvent(event, payload); err != nil {
		rt.logger.Warn().
			Err(err).
			Str("connection_id", connID).
			Str("event", event).
			Msg("Delivery to connection failed.")
	}
}

// deliver fans the event out to the resolved members, skipping skipConnID when set.
// A connection that disconnected between membership resolution and delivery simply
// has no outbox anymore and is skipped; a failed send is logged and never blocks
// or fails delivery to the other recipients.
func (rt *Router) deliver(members []User, skipConnID, event string, payload any) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	for _, member := range members {
		if member.ConnectionID == skipConnID {
			continue
		}

		out, ok := rt.outboxes[member.ConnectionID]
		if !ok {
			continue
		}

		if err := out.SendEvent(event, payload); err != nil {
			rt.logger.Warn().
				Err(err).
				Str("connection_id", member.ConnectionID).
				Str("event", event).
				Msg("Delivery to room member failed, continuing with the rest.")
		}
	}
}
