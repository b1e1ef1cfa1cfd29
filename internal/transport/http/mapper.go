package http

import (
	"encoding/json"
	"time"

	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		if join.Email == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "email is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.RoomID,
			Identity: core.Identity{
				Email: join.Email,
				Name:  join.Name,
				Image: join.Image,
			},
		}, nil, nil
	case proto.InboundTypeLeave:
		var leave proto.LeaveData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, nil, err
		}
		if leave.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.RoomID,
		}, nil, nil
	case proto.InboundTypeCode:
		var change proto.CodeChangeData
		if err := json.Unmarshal(inbound.Data, &change); err != nil {
			return nil, nil, err
		}
		if change.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandCodeChange,
			Room: change.RoomID,
			Code: &core.CodeUpdate{
				Code:     change.Code,
				Language: change.Language,
				EditedBy: change.EditedBy,
				EditedAt: change.EditedAt,
			},
		}, nil, nil
	case proto.InboundTypeChat:
		var msg proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.RoomID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "roomId is required"}, nil
		}
		if msg.Message == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "message is required"}, nil
		}
		return &core.Command{
			Kind:   core.CommandChatMessage,
			Room:   msg.RoomID,
			Sender: msg.Sender,
			Text:   msg.Message,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventJoinError:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoinError,
			Data: proto.EventJoinErrorPayload{
				Room:   event.Room,
				Reason: event.Reason,
			},
		}
	case core.EventPresence:
		users := make([]proto.PresenceEntry, 0, len(event.Presence))
		for _, id := range event.Presence {
			users = append(users, proto.PresenceEntry{
				Email: id.Email,
				Name:  id.Name,
				Image: id.Image,
			})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventPresence,
			Data: proto.EventPresenceUpdate{
				Room:  event.Room,
				Users: users,
			},
		}
	case core.EventCodeLoaded, core.EventCodeUpdated:
		name := proto.EventCodeLoaded
		if event.Kind == core.EventCodeUpdated {
			name = proto.EventCodeUpdated
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: name,
			Data: proto.EventCodePayload{
				Room:     event.Room,
				Code:     event.Code.Code,
				Language: event.Code.Language,
				EditedBy: event.Code.EditedBy,
				EditedAt: event.Code.EditedAt,
			},
		}
	case core.EventChatHistory:
		messages := make([]proto.EventChatMessage, 0, len(event.History))
		for _, msg := range event.History {
			messages = append(messages, proto.EventChatMessage{
				Sender:    msg.Sender,
				Message:   msg.Text,
				Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventChatHistory,
			Data: proto.EventChatHistoryPayload{
				Room:     event.Room,
				Messages: messages,
			},
		}
	case core.EventChatMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventChatBroadcast,
			Data: proto.EventChatMessage{
				Sender:    event.Message.Sender,
				Message:   event.Message.Text,
				Timestamp: event.Message.CreatedAt.UTC().Format(time.RFC3339),
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
