// Package events carries the in-process notifications the SDK broadcasts,
// chiefly the payment-success signal consumed by otherwise unrelated parts of
// an application (balance displays, order lists).
package events

import (
	"sync"
	"time"
)

// PaymentSucceeded announces that a payment return was observed for an order.
// It is a local, fire-and-forget signal; authoritative confirmation still
// comes from order status polling.
type PaymentSucceeded struct {
	OrderID string
	At      time.Time
}

// Bus is a typed publish/subscribe channel for PaymentSucceeded events.
// The zero value is ready to use.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]chan PaymentSucceeded
	next int
}

// Subscribe registers a listener and returns its channel plus a cancel
// function. The channel is buffered; events that arrive while the buffer is
// full are dropped for that listener rather than blocking the publisher.
func (b *Bus) Subscribe(buffer int) (<-chan PaymentSucceeded, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan PaymentSucceeded, buffer)

	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[int]chan PaymentSucceeded)
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish fans the event out to every subscriber without blocking.
func (b *Bus) Publish(ev PaymentSucceeded) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
