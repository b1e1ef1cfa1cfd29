package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventJoinError tells the requester a join failed. Sent to the
	// failed joiner only, never broadcast.
	EventJoinError EventKind = iota
	// EventPresence delivers the full presence snapshot of a room.
	EventPresence
	// EventCodeLoaded delivers the stored code state to a joiner. The
	// payload carries the "loaded" marker so clients do not attribute
	// it to a live editor.
	EventCodeLoaded
	// EventCodeUpdated notifies room members about a live edit.
	EventCodeUpdated
	// EventChatHistory delivers the chat replay window to a joiner.
	EventChatHistory
	// EventChatMessage notifies the whole room about a chat message.
	EventChatMessage
	// EventError notifies a client about a domain error.
	EventError
)

// LoadedMarker is the editor attribution used when code state comes
// from storage rather than a live edit.
const LoadedMarker = "loaded"

// CodeUpdate is the payload of a code change or a code load.
type CodeUpdate struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	EditedBy string `json:"editedBy,omitempty"`
	EditedAt string `json:"editedAt,omitempty"`
}

// ChatMessage is a chat message as delivered to clients.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind      `json:"kind"`
	Room     string         `json:"room,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Presence []Identity     `json:"presence,omitempty"`
	Code     *CodeUpdate    `json:"code,omitempty"`
	Message  *ChatMessage   `json:"message,omitempty"`
	History  []*ChatMessage `json:"history,omitempty"`
	Error    *CoreError     `json:"error,omitempty"`
}
