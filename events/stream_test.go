package events_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yvileapsis/TEHOM-old-sub000/assert"
	"github.com/yvileapsis/TEHOM-old-sub000/events"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition was not reached in time")
}

func TestStreamHubQueuesPublishedEvents(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	hub := events.NewStreamHub(bus, zerolog.Nop())
	defer hub.Shutdown()

	assert.Equal(t, 0, hub.ConnectionCount())
	assert.Equal(t, 0, hub.QueueLength())

	bus.Publish(events.Event{Name: "hit", Scope: events.EntityScope(1), Payload: 3})
	bus.Publish(events.Event{Name: "miss", Scope: events.GlobalScope()})

	waitFor(t, func() bool { return hub.QueueLength() == 2 })
}

func TestFlushEmptiesTheQueue(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	hub := events.NewStreamHub(bus, zerolog.Nop())
	defer hub.Shutdown()

	bus.Publish(events.Event{Name: "hit", Scope: events.GlobalScope()})
	waitFor(t, func() bool { return hub.QueueLength() == 1 })

	hub.Flush()
	assert.Equal(t, 0, hub.QueueLength())
}

func TestPublishAfterHubShutdownDoesNotBlock(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	hub := events.NewStreamHub(bus, zerolog.Nop())
	hub.Shutdown()

	var names []string
	_, err := bus.Subscribe("hit", events.GlobalScope(), func(ev events.Event) {
		names = append(names, ev.Name)
	})
	assert.NilError(t, err)

	// Push well past the relay's internal buffering; every publish must still
	// return and reach bus subscribers.
	for i := 0; i < 100; i++ {
		bus.Publish(events.Event{Name: "hit", Scope: events.GlobalScope()})
	}
	assert.Len(t, names, 100)
	assert.Contains(t, names, "hit")
}

func TestUnserializablePayloadsAreDropped(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	hub := events.NewStreamHub(bus, zerolog.Nop())
	defer hub.Shutdown()

	bus.Publish(events.Event{Name: "bad", Scope: events.GlobalScope(), Payload: func() {}})
	bus.Publish(events.Event{Name: "good", Scope: events.GlobalScope()})

	waitFor(t, func() bool { return hub.QueueLength() == 1 })
}
