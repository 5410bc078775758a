package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume(): %v", err)
	}
	for _, body := range []string{"S1", "S2"} {
		if err := q.Publish(ctx, Message{Type: TypeScan, Body: []byte(body)}); err != nil {
			t.Fatalf("Publish(): %v", err)
		}
	}
	for _, want := range []string{"S1", "S2"} {
		select {
		case msg := <-msgs:
			if string(msg.Body) != want || msg.Type != TypeScan {
				t.Errorf("got %s/%s; want scan/%s", msg.Type, msg.Body, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for message")
		}
	}

	cancel()
	select {
	case _, ok := <-msgs:
		if ok {
			t.Error("channel still open after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestInMemoryPublishRespectsContext(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := q.Publish(ctx, Message{Type: TypeScan}); err == nil {
		t.Error("Publish() on full queue: want context error")
	}
}

func TestSerialize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Message
	}{
		{name: "typed", raw: "scan|S1", want: Message{Type: TypeScan, Body: []byte("S1")}},
		{name: "body with pipe", raw: `scan|{"id":"a|b"}`, want: Message{Type: TypeScan, Body: []byte(`{"id":"a|b"}`)}},
		{name: "bare", raw: "S1", want: Message{Type: TypeScan, Body: []byte("S1")}},
		{name: "with source", raw: "scan@gate-2|S1", want: Message{Type: TypeScan, Source: "gate-2", Body: []byte("S1")}},
		{name: "end", raw: "end|", want: Message{Type: TypeEnd}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deserialize(tt.raw)
			if got.Type != tt.want.Type || got.Source != tt.want.Source || string(got.Body) != string(tt.want.Body) {
				t.Errorf("deserialize(%q) = %s@%s/%s", tt.raw, got.Type, got.Source, got.Body)
			}
		})
	}
	if s := serialize(Message{Type: TypeScan, Body: []byte("S1")}); s != "scan|S1" {
		t.Errorf("serialize() = %q", s)
	}
	if s := serialize(Message{Type: TypeScan, Source: "gate-2", Body: []byte("S1")}); s != "scan@gate-2|S1" {
		t.Errorf("serialize() with source = %q", s)
	}
}
