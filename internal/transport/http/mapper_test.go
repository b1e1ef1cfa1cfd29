package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/proto"
)

func mustRaw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func TestInboundToCommandJoin(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(proto.Inbound{
		Type: proto.InboundTypeJoin,
		Data: mustRaw(t, proto.JoinData{RoomID: "r1", Email: "alice@x.com", Name: "Alice"}),
	})
	if err != nil || protoErr != nil {
		t.Fatalf("unexpected errors: %v %+v", err, protoErr)
	}
	if cmd.Kind != core.CommandJoinRoom || cmd.Room != "r1" || cmd.Identity.Email != "alice@x.com" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestInboundToCommandValidation(t *testing.T) {
	cases := []struct {
		name    string
		inbound proto.Inbound
	}{
		{"join without room", proto.Inbound{Type: proto.InboundTypeJoin, Data: mustRaw(t, proto.JoinData{Email: "a@x.com"})}},
		{"join without email", proto.Inbound{Type: proto.InboundTypeJoin, Data: mustRaw(t, proto.JoinData{RoomID: "r1"})}},
		{"code without room", proto.Inbound{Type: proto.InboundTypeCode, Data: mustRaw(t, proto.CodeChangeData{Code: "x"})}},
		{"chat without message", proto.Inbound{Type: proto.InboundTypeChat, Data: mustRaw(t, proto.ChatMessageData{RoomID: "r1"})}},
		{"leave without room", proto.Inbound{Type: proto.InboundTypeLeave, Data: mustRaw(t, proto.LeaveData{})}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, protoErr, err := inboundToCommand(tc.inbound)
			if err != nil {
				t.Fatalf("unexpected mapping error: %v", err)
			}
			if cmd != nil {
				t.Fatalf("expected no command, got %+v", cmd)
			}
			if protoErr == nil || protoErr.Code != core.ErrCodeBadRequest {
				t.Fatalf("expected bad request error, got %+v", protoErr)
			}
		})
	}
}

func TestInboundToCommandUnknownType(t *testing.T) {
	cmd, protoErr, err := inboundToCommand(proto.Inbound{Type: "bogus"})
	if err != nil || cmd != nil {
		t.Fatalf("unexpected result: %v %+v", err, cmd)
	}
	if protoErr == nil || protoErr.Code != "invalid_message" {
		t.Fatalf("expected invalid_message error, got %+v", protoErr)
	}
}

func TestOutboundFromPresenceEvent(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind: core.EventPresence,
		Room: "r1",
		Presence: []core.Identity{
			{Email: "alice@x.com", Name: "Alice"},
			{Email: "bob@x.com"},
		},
	})

	if out.Type != proto.OutboundTypeEvent || out.Event != proto.EventPresence {
		t.Fatalf("unexpected envelope: %+v", out)
	}
	payload, ok := out.Data.(proto.EventPresenceUpdate)
	if !ok {
		t.Fatalf("unexpected payload type: %T", out.Data)
	}
	if payload.Room != "r1" || len(payload.Users) != 2 || payload.Users[0].Email != "alice@x.com" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestOutboundFromChatEvent(t *testing.T) {
	sent := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	out := outboundFromEvent(&core.Event{
		Kind:    core.EventChatMessage,
		Room:    "r1",
		Message: &core.ChatMessage{Sender: "alice@x.com", Text: "hi", CreatedAt: sent},
	})

	if out.Event != proto.EventChatBroadcast {
		t.Fatalf("unexpected event name: %s", out.Event)
	}
	payload, ok := out.Data.(proto.EventChatMessage)
	if !ok {
		t.Fatalf("unexpected payload type: %T", out.Data)
	}
	if payload.Sender != "alice@x.com" || payload.Timestamp != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestOutboundFromCodeLoadedEvent(t *testing.T) {
	out := outboundFromEvent(&core.Event{
		Kind: core.EventCodeLoaded,
		Room: "r1",
		Code: &core.CodeUpdate{Code: "x", Language: "go", EditedBy: core.LoadedMarker},
	})

	if out.Event != proto.EventCodeLoaded {
		t.Fatalf("unexpected event name: %s", out.Event)
	}
	payload, ok := out.Data.(proto.EventCodePayload)
	if !ok {
		t.Fatalf("unexpected payload type: %T", out.Data)
	}
	if payload.EditedBy != "loaded" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
