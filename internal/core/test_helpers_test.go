package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/codecollab/codecollab-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event: %+v", ev)
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// fakeRegistry is an in-memory core.Registry with optional fault
// injection per operation.
type fakeRegistry struct {
	mu    sync.Mutex
	rooms map[string]bool
	code  map[string]store.CodeState
	chat  map[string][]store.ChatMessage

	codeStateErr error
	saveErr      error
	appendErr    error
	recentErr    error
}

func newFakeRegistry(roomIDs ...string) *fakeRegistry {
	rooms := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		rooms[id] = true
	}
	return &fakeRegistry{
		rooms: rooms,
		code:  make(map[string]store.CodeState),
		chat:  make(map[string][]store.ChatMessage),
	}
}

func (f *fakeRegistry) setCodeStateErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codeStateErr = err
}

func (f *fakeRegistry) RoomExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[id], nil
}

func (f *fakeRegistry) CodeState(_ context.Context, roomID string) (*store.CodeState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.codeStateErr != nil {
		return nil, f.codeStateErr
	}
	cs, ok := f.code[roomID]
	if !ok {
		return nil, nil
	}
	out := cs
	return &out, nil
}

func (f *fakeRegistry) SaveCodeState(_ context.Context, roomID, code, language string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.code[roomID] = store.CodeState{RoomID: roomID, Code: code, Language: language, UpdatedAt: time.Now()}
	return nil
}

func (f *fakeRegistry) AppendChat(_ context.Context, roomID, sender, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.chat[roomID] = append(f.chat[roomID], store.ChatMessage{
		ID:        int64(len(f.chat[roomID]) + 1),
		RoomID:    roomID,
		Sender:    sender,
		Message:   message,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeRegistry) RecentChat(_ context.Context, roomID string, limit int) ([]*store.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	log := f.chat[roomID]
	if len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]*store.ChatMessage, 0, len(log))
	for i := range log {
		msg := log[i]
		out = append(out, &msg)
	}
	return out, nil
}

// fakeBus records published events.
type fakeBus struct {
	mu     sync.Mutex
	events []*Event
}

func (b *fakeBus) Publish(_ context.Context, _ string, ev *Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *fakeBus) published() []*Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Event, len(b.events))
	copy(out, b.events)
	return out
}

func startHub(t *testing.T, registry Registry, bus Bus) *Hub {
	t.Helper()

	hub := NewHub(registry, bus, nil, 0)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func joinRoom(hub *Hub, c *Client, room, email string) {
	c.Commands <- &Command{
		Kind:     CommandJoinRoom,
		Room:     room,
		Identity: Identity{Email: email},
	}
}
