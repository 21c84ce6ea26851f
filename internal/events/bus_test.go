package events_test

import (
	"testing"
	"time"

	"github.com/micro-nova/inventory-go/internal/events"
	"github.com/micro-nova/inventory-go/internal/models"
)

func TestBusSubscribePublish(t *testing.T) {
	bus := events.NewBus()

	_, ch := bus.Subscribe()

	state := models.EmptyState()
	state.Items = append(state.Items, models.Item{ID: "1", Name: "Flour"})
	bus.Publish(state)

	select {
	case got := <-ch:
		if len(got.Items) != 1 || got.Items[0].Name != "Flour" {
			t.Errorf("got items %+v, want one Flour item", got.Items)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for event")
	}
}

func TestBusPublishCopiesState(t *testing.T) {
	bus := events.NewBus()
	_, ch := bus.Subscribe()

	state := models.State{Items: []models.Item{{ID: "1", Name: "Flour"}}}
	bus.Publish(state)
	state.Items[0].Name = "Mutated"

	got := <-ch
	if got.Items[0].Name != "Flour" {
		t.Errorf("subscriber saw publisher mutation: %q", got.Items[0].Name)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := events.NewBus()
	id, ch := bus.Subscribe()

	bus.Unsubscribe(id)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed after unsubscribe")
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timed out waiting for channel close")
	}

	// Second unsubscribe is a no-op.
	bus.Unsubscribe(id)
}

func TestBusKeepsLatestWhenFull(t *testing.T) {
	bus := events.NewBus()
	id, ch := bus.Subscribe()
	defer bus.Unsubscribe(id)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			bus.Publish(models.State{Error: string(rune('a' + i))})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Publish blocked for too long (should drop events)")
	}

	var last models.State
	for {
		select {
		case st := <-ch:
			last = st
			continue
		default:
		}
		break
	}
	if last.Error != string(rune('a'+19)) {
		t.Errorf("last delivered state = %q, want the most recent publish %q", last.Error, string(rune('a'+19)))
	}
}

func TestBusSubscriberCount(t *testing.T) {
	bus := events.NewBus()
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers, got %d", n)
	}
	id1, _ := bus.Subscribe()
	bus.Subscribe()
	if n := bus.SubscriberCount(); n != 2 {
		t.Errorf("expected 2 subscribers, got %d", n)
	}
	bus.Unsubscribe(id1)
	if n := bus.SubscriberCount(); n != 1 {
		t.Errorf("expected 1 subscriber, got %d", n)
	}
	bus.Close()
	if n := bus.SubscriberCount(); n != 0 {
		t.Errorf("expected 0 subscribers after Close, got %d", n)
	}
}
