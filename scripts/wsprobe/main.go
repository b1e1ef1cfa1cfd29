package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/codecollab/codecollab-server/internal/proto"
)

// wsprobe is an interactive smoke client. It joins a room, prints
// everything the server sends, and turns stdin lines into commands:
//
//	/code <text>   send a code change
//	anything else  send a chat message
func main() {
	if err := run(); err != nil {
		log.Printf("wsprobe: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	email := flag.String("email", "probe@example.com", "user email")
	name := flag.String("name", "probe", "display name")
	room := flag.String("room", "", "room id to join (required)")
	flag.Parse()

	if *room == "" {
		return errors.New("-room is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	joinPayload, err := json.Marshal(proto.JoinData{RoomID: *room, Email: *email, Name: *name})
	if err != nil {
		return fmt.Errorf("marshal join: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: joinPayload}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Printf("Connected to %s as %s, joining room %s\n", *addr, *email, *room)
	fmt.Println("Type to chat, prefix with /code to send a code change. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *room, *email)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Type == proto.OutboundTypeError {
			fmt.Printf("server error: %+v\n", outbound.Error)
			continue
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			log.Printf("marshal outbound data: %v", err)
			continue
		}

		switch outbound.Event {
		case proto.EventPresence:
			var evt proto.EventPresenceUpdate
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal presence: %v", err)
				continue
			}
			emails := make([]string, 0, len(evt.Users))
			for _, u := range evt.Users {
				emails = append(emails, u.Email)
			}
			fmt.Printf("[room %s] present: %s\n", evt.Room, strings.Join(emails, ", "))
		case proto.EventCodeLoaded, proto.EventCodeUpdated:
			var evt proto.EventCodePayload
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal code event: %v", err)
				continue
			}
			fmt.Printf("[room %s] code (%s, by %s):\n%s\n", evt.Room, evt.Language, evt.EditedBy, evt.Code)
		case proto.EventChatHistory:
			var evt proto.EventChatHistoryPayload
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal history: %v", err)
				continue
			}
			for _, m := range evt.Messages {
				fmt.Printf("[history] %s: %s\n", m.Sender, m.Message)
			}
		case proto.EventChatBroadcast:
			var evt proto.EventChatMessage
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal chat: %v", err)
				continue
			}
			fmt.Printf("%s: %s\n", evt.Sender, evt.Message)
		case proto.EventJoinError:
			var evt proto.EventJoinErrorPayload
			if err := json.Unmarshal(raw, &evt); err != nil {
				log.Printf("unmarshal join error: %v", err)
				continue
			}
			fmt.Printf("join failed for room %s: %s\n", evt.Room, evt.Reason)
		default:
			fmt.Printf("event=%s data=%v\n", outbound.Event, outbound.Data)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn, room, email string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			var inbound proto.Inbound
			if code, isCode := strings.CutPrefix(text, "/code "); isCode {
				payload, err := json.Marshal(proto.CodeChangeData{RoomID: room, Code: code, EditedBy: email})
				if err != nil {
					log.Printf("marshal code change: %v", err)
					return
				}
				inbound = proto.Inbound{Type: proto.InboundTypeCode, Data: payload}
			} else {
				payload, err := json.Marshal(proto.ChatMessageData{RoomID: room, Sender: email, Message: text})
				if err != nil {
					log.Printf("marshal chat: %v", err)
					return
				}
				inbound = proto.Inbound{Type: proto.InboundTypeChat, Data: payload}
			}

			if err := wsjson.Write(ctx, conn, inbound); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
