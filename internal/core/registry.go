package core

import (
	"context"

	"github.com/codecollab/codecollab-server/internal/store"
)

// Registry is the durable room store as consumed by the hub. It is the
// narrow slice of the full store the synchronization engine needs:
// room existence for join validation, the code snapshot, and the chat
// log. The sqlite store satisfies it directly.
type Registry interface {
	// RoomExists reports whether the room id is known.
	RoomExists(ctx context.Context, id string) (bool, error)

	// CodeState returns the room's current code buffer, nil when the
	// room has no saved code yet.
	CodeState(ctx context.Context, roomID string) (*store.CodeState, error)

	// SaveCodeState replaces the room's code state. Last writer wins.
	SaveCodeState(ctx context.Context, roomID, code, language string) error

	// AppendChat appends a message to the room's chat log.
	AppendChat(ctx context.Context, roomID, sender, message string) error

	// RecentChat returns up to limit most recent messages, oldest first.
	RecentChat(ctx context.Context, roomID string, limit int) ([]*store.ChatMessage, error)
}

// Bus fans room events out to other server instances. Optional; a nil
// bus keeps all fanout process-local.
type Bus interface {
	// Publish sends a room event to the other instances.
	Publish(ctx context.Context, roomID string, ev *Event) error
}
