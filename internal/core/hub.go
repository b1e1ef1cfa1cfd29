package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultHistoryLimit is the chat replay window sent to new joiners.
const DefaultHistoryLimit = 50

type clientCommand struct {
	client *Client
	cmd    *Command
}

type remoteEvent struct {
	roomID string
	event  *Event
}

// Hub is the room synchronization engine. It runs a single dispatch
// goroutine that owns all room and presence state; clients talk to it
// through their command channels and hear back on their event channels.
type Hub struct {
	registry     Registry
	bus          Bus
	log          zerolog.Logger
	historyLimit int

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	remote     chan remoteEvent

	clients  map[*Client]struct{}
	rooms    map[string]*Room
	presence *PresenceTracker
}

// NewHub creates a hub backed by the given registry. bus may be nil for
// single-instance deployments; logger may be nil. historyLimit <= 0
// falls back to DefaultHistoryLimit.
func NewHub(registry Registry, bus Bus, logger *zerolog.Logger, historyLimit int) *Hub {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &Hub{
		registry:     registry,
		bus:          bus,
		log:          log,
		historyLimit: historyLimit,
		register:     make(chan *Client, 16),
		unregister:   make(chan *Client, 16),
		commands:     make(chan clientCommand, 64),
		remote:       make(chan remoteEvent, 64),
		clients:      make(map[*Client]struct{}),
		rooms:        make(map[string]*Room),
		presence:     NewPresenceTracker(),
	}
}

// RegisterClient announces a new connection to the hub.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient runs disconnect cleanup for the connection. Safe to
// call once per connection, after its command channel is drained.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// ApplyRemote broadcasts an event that originated on another instance
// to the local members of the room.
func (h *Hub) ApplyRemote(roomID string, ev *Event) {
	h.remote <- remoteEvent{roomID: roomID, event: ev}
}

// Run owns all hub state until the context is cancelled. All joins,
// edits, chat messages, and disconnects are dispatched here, one event
// at a time.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			go h.pump(ctx, c)
		case c := <-h.unregister:
			h.handleDisconnect(c)
		case cc := <-h.commands:
			h.handleCommand(ctx, cc.client, cc.cmd)
		case re := <-h.remote:
			if room, ok := h.rooms[re.roomID]; ok {
				room.Broadcast(re.event)
			}
		}
	}
}

// pump forwards one client's commands into the dispatch loop. Exits
// when the client's command channel closes or the hub stops.
func (h *Hub) pump(ctx context.Context, c *Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) handleCommand(ctx context.Context, c *Client, cmd *Command) {
	if _, ok := h.clients[c]; !ok {
		// Raced with disconnect cleanup; the connection is gone.
		return
	}

	switch cmd.Kind {
	case CommandJoinRoom:
		h.handleJoin(ctx, c, cmd)
	case CommandCodeChange:
		h.handleCodeChange(ctx, c, cmd)
	case CommandChatMessage:
		h.handleChatMessage(ctx, c, cmd)
	case CommandLeaveRoom:
		h.handleLeave(c, cmd.Room)
	default:
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeBadRequest, "unknown command")})
	}
}

// handleJoin runs the join protocol: validate the room, bind identity,
// register presence, replay state. An unknown room fails the requester
// only, with no state change.
func (h *Hub) handleJoin(ctx context.Context, c *Client, cmd *Command) {
	exists, err := h.registry.RoomExists(ctx, cmd.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("room lookup failed")
		h.send(c, &Event{Kind: EventJoinError, Room: cmd.Room, Reason: "Could not join room"})
		return
	}
	if !exists {
		h.send(c, &Event{Kind: EventJoinError, Room: cmd.Room, Reason: "Room does not exist"})
		return
	}

	c.Identity = cmd.Identity
	room := h.room(cmd.Room)
	room.AddClient(c)
	c.Rooms[cmd.Room] = struct{}{}
	added := h.presence.Add(cmd.Room, cmd.Identity)

	// Full snapshot to the whole room, joiner included, so every
	// roster view is consistent after any membership change.
	room.Broadcast(&Event{
		Kind:     EventPresence,
		Room:     cmd.Room,
		Presence: h.presence.Snapshot(cmd.Room),
	})

	cs, err := h.registry.CodeState(ctx, cmd.Room)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("code state lookup failed")
		h.abortJoin(c, room, cmd.Room, added)
		return
	}
	if cs != nil {
		h.send(c, &Event{
			Kind: EventCodeLoaded,
			Room: cmd.Room,
			Code: &CodeUpdate{
				Code:     cs.Code,
				Language: cs.Language,
				EditedBy: LoadedMarker,
				EditedAt: cs.UpdatedAt.UTC().Format(time.RFC3339),
			},
		})
	}

	stored, err := h.registry.RecentChat(ctx, cmd.Room, h.historyLimit)
	if err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("chat history lookup failed")
		h.abortJoin(c, room, cmd.Room, added)
		return
	}

	history := make([]*ChatMessage, 0, len(stored))
	for _, m := range stored {
		history = append(history, &ChatMessage{
			Sender:    m.Sender,
			Text:      m.Message,
			CreatedAt: m.CreatedAt,
		})
	}
	h.send(c, &Event{Kind: EventChatHistory, Room: cmd.Room, History: history})

	h.log.Debug().Str("room", cmd.Room).Str("email", cmd.Identity.Email).Msg("client joined room")
}

// abortJoin undoes the membership established so far, so a failed join
// never leaves the connection half-joined. The presence entry is
// removed only if this join created it.
func (h *Hub) abortJoin(c *Client, room *Room, roomID string, added bool) {
	room.RemoveClient(c)
	delete(c.Rooms, roomID)
	if added {
		h.presence.Remove(roomID, c.Identity.Email)
	}
	if room.Empty() {
		delete(h.rooms, roomID)
	} else {
		room.Broadcast(&Event{
			Kind:     EventPresence,
			Room:     roomID,
			Presence: h.presence.Snapshot(roomID),
		})
	}
	h.send(c, &Event{Kind: EventJoinError, Room: roomID, Reason: "Could not join room"})
}

// handleCodeChange persists the new code state (last writer wins) and
// fans it out to every other member of the room.
func (h *Hub) handleCodeChange(ctx context.Context, c *Client, cmd *Command) {
	room, ok := h.memberRoom(c, cmd.Room)
	if !ok {
		h.send(c, &Event{Kind: EventError, Room: cmd.Room, Error: coreError(ErrCodeNotInRoom, "not in room")})
		return
	}

	update := *cmd.Code
	if update.Language == "" {
		update.Language = "javascript"
	}
	if update.EditedBy == "" {
		update.EditedBy = c.Identity.Email
	}
	if update.EditedAt == "" {
		update.EditedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := h.registry.SaveCodeState(ctx, cmd.Room, update.Code, update.Language); err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("code state save failed")
		h.send(c, &Event{Kind: EventError, Room: cmd.Room, Error: coreError(ErrCodeStorageUnavailable, "could not save code")})
		return
	}

	ev := &Event{Kind: EventCodeUpdated, Room: cmd.Room, Code: &update}
	room.BroadcastExcept(ev, c)
	h.publish(ctx, cmd.Room, ev)
}

// handleChatMessage persists the message and fans it out to the whole
// room, sender included, with a server-assigned timestamp.
func (h *Hub) handleChatMessage(ctx context.Context, c *Client, cmd *Command) {
	room, ok := h.memberRoom(c, cmd.Room)
	if !ok {
		h.send(c, &Event{Kind: EventError, Room: cmd.Room, Error: coreError(ErrCodeNotInRoom, "not in room")})
		return
	}

	sender := cmd.Sender
	if sender == "" {
		sender = c.Identity.Email
	}

	if err := h.registry.AppendChat(ctx, cmd.Room, sender, cmd.Text); err != nil {
		h.log.Error().Err(err).Str("room", cmd.Room).Msg("chat append failed")
		h.send(c, &Event{Kind: EventError, Room: cmd.Room, Error: coreError(ErrCodeStorageUnavailable, "could not send message")})
		return
	}

	ev := &Event{
		Kind: EventChatMessage,
		Room: cmd.Room,
		Message: &ChatMessage{
			Sender:    sender,
			Text:      cmd.Text,
			CreatedAt: time.Now().UTC(),
		},
	}
	room.Broadcast(ev)
	h.publish(ctx, cmd.Room, ev)
}

// handleLeave removes the client from one room and tells the remaining
// members.
func (h *Hub) handleLeave(c *Client, roomID string) {
	room, ok := h.memberRoom(c, roomID)
	if !ok {
		h.send(c, &Event{Kind: EventError, Room: roomID, Error: coreError(ErrCodeNotInRoom, "not in room")})
		return
	}
	h.dropMembership(c, room, roomID)
}

// handleDisconnect runs the full cleanup for a closing connection:
// every room it had joined loses its presence entries and hears the
// updated roster. Runs exactly once per connection.
func (h *Hub) handleDisconnect(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for roomID := range c.Rooms {
		room, ok := h.rooms[roomID]
		if !ok {
			continue
		}
		h.dropMembership(c, room, roomID)
	}

	h.log.Debug().Str("client_id", c.ID).Msg("client disconnected")
}

func (h *Hub) dropMembership(c *Client, room *Room, roomID string) {
	room.RemoveClient(c)
	delete(c.Rooms, roomID)
	h.presence.Remove(roomID, c.Identity.Email)

	if room.Empty() {
		delete(h.rooms, roomID)
		return
	}
	room.Broadcast(&Event{
		Kind:     EventPresence,
		Room:     roomID,
		Presence: h.presence.Snapshot(roomID),
	})
}

// room returns the transport group for a room id, creating it if
// needed.
func (h *Hub) room(roomID string) *Room {
	if r, ok := h.rooms[roomID]; ok {
		return r
	}
	r := NewRoom(roomID)
	h.rooms[roomID] = r
	return r
}

// memberRoom returns the room if the client has joined it.
func (h *Hub) memberRoom(c *Client, roomID string) (*Room, bool) {
	if _, ok := c.Rooms[roomID]; !ok {
		return nil, false
	}
	room, ok := h.rooms[roomID]
	return room, ok
}

// send delivers an event to a single client, best-effort.
func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
	}
}

// publish mirrors a room event to the other instances, best-effort.
func (h *Hub) publish(ctx context.Context, roomID string, ev *Event) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(ctx, roomID, ev); err != nil {
		h.log.Warn().Err(err).Str("room", roomID).Msg("bus publish failed")
	}
}
