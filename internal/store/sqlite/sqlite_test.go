package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/codecollab/codecollab-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestRoomLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "abc123", "interview", "alice@x.com")
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if room.ID != "abc123" || room.Name != "interview" || room.CreatorEmail != "alice@x.com" {
		t.Fatalf("unexpected room: %+v", room)
	}

	exists, err := s.RoomExists(ctx, "abc123")
	if err != nil {
		t.Fatalf("RoomExists failed: %v", err)
	}
	if !exists {
		t.Fatal("expected room to exist")
	}

	exists, err = s.RoomExists(ctx, "ghost")
	if err != nil {
		t.Fatalf("RoomExists failed: %v", err)
	}
	if exists {
		t.Fatal("expected ghost room to not exist")
	}

	// Duplicate id is rejected.
	if _, err := s.CreateRoom(ctx, "abc123", "other", "bob@x.com"); err == nil {
		t.Fatal("expected duplicate room id to fail")
	}

	if err := s.DeleteRoom(ctx, "abc123"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}

	if _, err := s.GetRoomByID(ctx, "abc123"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	if err := s.DeleteRoom(ctx, "abc123"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestDeleteRoomCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "r1", "room one", "alice@x.com"); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	if err := s.SaveCodeState(ctx, "r1", "print(1)", "python"); err != nil {
		t.Fatalf("SaveCodeState failed: %v", err)
	}
	if err := s.AppendChat(ctx, "r1", "alice@x.com", "hi"); err != nil {
		t.Fatalf("AppendChat failed: %v", err)
	}

	if err := s.DeleteRoom(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}

	cs, err := s.CodeState(ctx, "r1")
	if err != nil {
		t.Fatalf("CodeState failed: %v", err)
	}
	if cs != nil {
		t.Fatalf("expected code state removed, got %+v", cs)
	}

	history, err := s.RecentChat(ctx, "r1", 50)
	if err != nil {
		t.Fatalf("RecentChat failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected chat removed, got %d messages", len(history))
	}
}

func TestCodeStateLastWriterWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "r1", "room one", "alice@x.com"); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	// No code saved yet: absent, not an error.
	cs, err := s.CodeState(ctx, "r1")
	if err != nil {
		t.Fatalf("CodeState failed: %v", err)
	}
	if cs != nil {
		t.Fatalf("expected no code state, got %+v", cs)
	}

	if err := s.SaveCodeState(ctx, "r1", "console.log(1)", "javascript"); err != nil {
		t.Fatalf("SaveCodeState failed: %v", err)
	}
	if err := s.SaveCodeState(ctx, "r1", "print(1)", "python"); err != nil {
		t.Fatalf("SaveCodeState failed: %v", err)
	}

	cs, err = s.CodeState(ctx, "r1")
	if err != nil {
		t.Fatalf("CodeState failed: %v", err)
	}
	if cs == nil {
		t.Fatal("expected code state")
	}
	if cs.Code != "print(1)" || cs.Language != "python" {
		t.Fatalf("expected last write to win, got %+v", cs)
	}
}

func TestRecentChatWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateRoom(ctx, "r1", "room one", "alice@x.com"); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	for i := 0; i < 60; i++ {
		if err := s.AppendChat(ctx, "r1", "alice@x.com", fmt.Sprintf("msg-%02d", i)); err != nil {
			t.Fatalf("AppendChat failed: %v", err)
		}
	}

	history, err := s.RecentChat(ctx, "r1", 50)
	if err != nil {
		t.Fatalf("RecentChat failed: %v", err)
	}
	if len(history) != 50 {
		t.Fatalf("expected 50 messages, got %d", len(history))
	}

	// Oldest of the window first, newest last.
	if history[0].Message != "msg-10" {
		t.Errorf("expected window to start at msg-10, got %s", history[0].Message)
	}
	if history[len(history)-1].Message != "msg-59" {
		t.Errorf("expected window to end at msg-59, got %s", history[len(history)-1].Message)
	}

	for i := 1; i < len(history); i++ {
		if history[i].ID <= history[i-1].ID {
			t.Fatalf("history out of order at index %d: %d <= %d", i, history[i].ID, history[i-1].ID)
		}
	}
}

func TestUserStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice@x.com", "Alice", "https://example.com/a.png", "hash")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Email != "alice@x.com" || user.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := s.CreateUser(ctx, "alice@x.com", "Alice2", "", "hash2"); err == nil {
		t.Fatal("expected duplicate email to fail")
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@x.com"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
