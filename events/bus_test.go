package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusPublishSubscribe(t *testing.T) {
	var bus Bus

	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(PaymentSucceeded{OrderID: "42", At: time.Now()})

	select {
	case ev := <-ch:
		assert.Equal(t, "42", ev.OrderID)
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	var bus Bus

	ch, cancel := bus.Subscribe(1)
	cancel()

	bus.Publish(PaymentSucceeded{OrderID: "7"})

	// The channel is closed on cancel; no event should be buffered.
	ev, ok := <-ch
	assert.False(t, ok)
	assert.Empty(t, ev.OrderID)
}

func TestBusFullBufferDoesNotBlock(t *testing.T) {
	var bus Bus

	ch, cancel := bus.Subscribe(1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		bus.Publish(PaymentSucceeded{OrderID: "1"})
		bus.Publish(PaymentSucceeded{OrderID: "2"}) // dropped, buffer full
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	ev := <-ch
	assert.Equal(t, "1", ev.OrderID)
	assert.Empty(t, ch)
}
