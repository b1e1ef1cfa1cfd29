package core

import (
	"context"
	"fmt"
	"testing"
)

func benchmarkChatBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(newFakeRegistry("bench"), nil, nil, 0)
	go hub.Run(ctx)

	sender := NewClient("sender")
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench", Identity: Identity{Email: "sender@x.com"}}

	clients := make([]*Client, 0, recipients)
	for i := 0; i < recipients; i++ {
		c := NewClient(fmt.Sprintf("c%d", i))
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinRoom, Room: "bench", Identity: Identity{Email: fmt.Sprintf("c%d@x.com", i)}}
		clients = append(clients, c)
	}

	// Drain events for all but the first recipient to avoid channel backpressure.
	target := clients[0]
	for _, c := range clients[1:] {
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}
	go func() {
		for range sender.Events {
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{
			Kind: CommandChatMessage,
			Room: "bench",
			Text: "payload",
		}
		for {
			ev := <-target.Events
			if ev.Kind == EventChatMessage {
				break
			}
		}
	}
}

func BenchmarkChatBroadcast_10(b *testing.B)  { benchmarkChatBroadcast(b, 10) }
func BenchmarkChatBroadcast_100(b *testing.B) { benchmarkChatBroadcast(b, 100) }
func BenchmarkChatBroadcast_500(b *testing.B) { benchmarkChatBroadcast(b, 500) }
