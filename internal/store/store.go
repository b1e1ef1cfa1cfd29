package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Room represents a collaboration room. Rooms are immutable after
// creation except for deletion.
type Room struct {
	ID           string // opaque, client- or server-generated
	Name         string
	CreatorEmail string
	CreatedAt    time.Time
}

// CodeState is the single current code buffer of a room. Exactly one
// row per room, overwritten in place on every edit.
type CodeState struct {
	RoomID    string
	Code      string
	Language  string
	UpdatedAt time.Time
}

// ChatMessage is a persisted chat message. Append-only per room,
// ordered by creation time.
type ChatMessage struct {
	ID        int64
	RoomID    string
	Sender    string
	Message   string
	CreatedAt time.Time
}

// User represents a registered user identity.
type User struct {
	ID           int64
	Email        string
	Name         string
	AvatarURL    string
	PasswordHash string
	CreatedAt    time.Time
}

// RoomStore handles room metadata persistence.
type RoomStore interface {
	// CreateRoom persists a new room. Fails if the id is taken.
	CreateRoom(ctx context.Context, id, name, creatorEmail string) (*Room, error)

	// GetRoomByID retrieves a room by its id.
	// Returns ErrNotFound if the room does not exist.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// RoomExists reports whether a room with the given id exists.
	RoomExists(ctx context.Context, id string) (bool, error)

	// DeleteRoom removes a room along with its code state and chat log.
	DeleteRoom(ctx context.Context, id string) error
}

// CodeStore handles the per-room code snapshot.
type CodeStore interface {
	// CodeState returns the room's current code buffer, or nil if the
	// room has no code state yet.
	CodeState(ctx context.Context, roomID string) (*CodeState, error)

	// SaveCodeState replaces the room's code state unconditionally.
	// Last writer wins; there is no version check.
	SaveCodeState(ctx context.Context, roomID, code, language string) error
}

// ChatStore handles the per-room chat log.
type ChatStore interface {
	// AppendChat appends a message to the room's chat log.
	AppendChat(ctx context.Context, roomID, sender, message string) error

	// RecentChat returns up to limit most recent messages for the room,
	// oldest first.
	RecentChat(ctx context.Context, roomID string, limit int) ([]*ChatMessage, error)
}

// UserStore handles user persistence.
type UserStore interface {
	// CreateUser creates a new user with a hashed password.
	CreateUser(ctx context.Context, email, name, avatarURL, passwordHash string) (*User, error)

	// GetUserByEmail retrieves a user by email.
	// Returns ErrNotFound if no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	RoomStore
	CodeStore
	ChatStore
	UserStore

	// Close closes the underlying database connection.
	Close() error
}
