package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin  = "join-room"
	InboundTypeCode  = "code-change"
	InboundTypeChat  = "chat-message"
	InboundTypeLeave = "leave-room"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventJoinError     = "join-error"
	EventPresence      = "presence-update"
	EventCodeLoaded    = "code-loaded"
	EventCodeUpdated   = "code-updated"
	EventChatHistory   = "chat-history"
	EventChatBroadcast = "chat-message-broadcast"
)

// JoinData requests to join a specific room with a user identity.
type JoinData struct {
	RoomID string `json:"roomId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Image  string `json:"image,omitempty"`
}

// LeaveData requests to leave a room.
type LeaveData struct {
	RoomID string `json:"roomId"`
}

// CodeChangeData carries a code edit from the client.
type CodeChangeData struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
	EditedBy string `json:"editedBy,omitempty"`
	EditedAt string `json:"editedAt,omitempty"`
}

// ChatMessageData is a chat message from the client.
type ChatMessageData struct {
	RoomID  string `json:"roomId"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// PresenceEntry is one identity in a presence snapshot.
type PresenceEntry struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// EventPresenceUpdate carries the full presence list of a room.
type EventPresenceUpdate struct {
	Room  string          `json:"room"`
	Users []PresenceEntry `json:"users"`
}

// EventCodePayload is emitted for both code-loaded and code-updated.
// For code-loaded, EditedBy is "loaded".
type EventCodePayload struct {
	Room     string `json:"room"`
	Code     string `json:"code"`
	Language string `json:"language"`
	EditedBy string `json:"editedBy,omitempty"`
	EditedAt string `json:"editedAt,omitempty"`
}

// EventChatMessage is one chat message as delivered to clients, either
// live or in a history replay.
type EventChatMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// EventChatHistoryPayload is the one-time replay sent to a joiner.
type EventChatHistoryPayload struct {
	Room     string             `json:"room"`
	Messages []EventChatMessage `json:"messages"`
}

// EventJoinErrorPayload tells the requester why a join failed.
type EventJoinErrorPayload struct {
	Room   string `json:"room"`
	Reason string `json:"reason"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
