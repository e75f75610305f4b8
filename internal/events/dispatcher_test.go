package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.TicketID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.TicketID)
		return nil
	})
	d.Subscribe(EventTicketAssigned, func(context.Context, Event) error {
		calls = append(calls, "assigned")
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first:t1" || calls[1] != "second:t1" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	if err := d.Publish(context.Background(), Event{Type: EventTicketUpdated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
