/*
Package chat contains the core logic of the realtime relay: the presence registry,
the per-connection session protocol, the broadcast router, and message construction.

This file defines the Message value and its factory functions. Messages are built once,
stamped with the server's current time, and never mutated or retained after delivery.
*/
package chat

import "time"

// SystemSender is the display name attributed to server-generated messages.
const SystemSender = "Adda Admin"

// Names of the events pushed from the server to room members.
const (
	// EventMessage carries chat and system messages.
	EventMessage = "message"

	// EventLocationMessage carries a shared map-link location.
	EventLocationMessage = "locationMessage"

	// EventRoomData carries the room name and its current roster.
	EventRoomData = "roomData"
)

// MessageKind discriminates the three message shapes produced by the factory.
type MessageKind int

const (
	// KindSystem marks server-generated notifications (welcome, joined, left).
	KindSystem MessageKind = iota

	// KindChat marks user-authored text.
	KindChat

	// KindLocation marks a shared map-link URL.
	KindLocation
)

// Message is the immutable payload of the "message" and "locationMessage" events.
// For location messages Text holds the pre-rendered map-link URL, never raw coordinates.
type Message struct {
	Kind      MessageKind `json:"-"`
	Username  string      `json:"username"`
	Text      string      `json:"text"`
	CreatedAt int64       `json:"createdAt"`
}

// NewSystemMessage builds a server-generated message attributed to SystemSender.
func NewSystemMessage(text string) Message {
	return Message{
		Kind:      KindSystem,
		Username:  SystemSender,
		Text:      text,
		CreatedAt: nowMillis(),
	}
}

// NewChatMessage builds a chat message authored by the given user.
// Callers are responsible for any trimming or moderation beforehand.
func NewChatMessage(username, text string) Message {
	return Message{
		Kind:      KindChat,
		Username:  username,
		Text:      text,
		CreatedAt: nowMillis(),
	}
}

// NewLocationMessage builds a location message whose text is the map-link URL.
func NewLocationMessage(username, url string) Message {
	return Message{
		Kind:      KindLocation,
		Username:  username,
		Text:      url,
		CreatedAt: nowMillis(),
	}
}

// nowMillis returns the server's current time in Unix milliseconds, the timestamp
// unit the chat frontend formats.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
