package events

import (
	"testing"
	"time"
)

func recv(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for message")
		return Message{}
	}
}

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe(4, EventAlertCreated)
	defer unsub()

	bus.Publish(EventAlertCreated, "a1")
	msg := recv(t, ch)
	if msg.Event != EventAlertCreated || msg.Payload != "a1" {
		t.Fatalf("got %+v", msg)
	}
}

func TestSubscribeMultipleTopics(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe(4, EventAlertCreated, EventAlertResolved)
	defer unsub()

	bus.Publish(EventAlertResolved, "a1")
	bus.Publish(EventRulesReloaded, 3)
	bus.Publish(EventAlertCreated, "a2")

	first := recv(t, ch)
	if first.Event != EventAlertResolved {
		t.Fatalf("got %+v", first)
	}
	second := recv(t, ch)
	if second.Event != EventAlertCreated {
		t.Fatalf("unsubscribed topic leaked through: %+v", second)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe(1, EventAlertCreated)
	unsub()

	if _, open := <-ch; open {
		t.Fatalf("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(EventAlertCreated, "a1")
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	ch, unsub := bus.Subscribe(1, EventAlertCreated)
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(EventAlertCreated, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a full subscriber")
	}

	msg := recv(t, ch)
	if msg.Payload != 0 {
		t.Fatalf("first buffered message was %v", msg.Payload)
	}
}
