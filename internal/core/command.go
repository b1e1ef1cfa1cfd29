package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom runs the join protocol for a room.
	CommandJoinRoom CommandKind = iota
	// CommandCodeChange replaces the room's code state and fans the
	// change out to the other members.
	CommandCodeChange
	// CommandChatMessage appends a chat message and fans it out to the
	// whole room.
	CommandChatMessage
	// CommandLeaveRoom unsubscribes the client from a room.
	CommandLeaveRoom
)

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Room     string
	Identity Identity    // for CommandJoinRoom
	Code     *CodeUpdate // for CommandCodeChange
	Sender   string      // for CommandChatMessage
	Text     string      // for CommandChatMessage
}
