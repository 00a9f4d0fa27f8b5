package mqtt

import (
	"errors"
	"log"

	"github.com/sweeney/garden-mister/internal/logic"
)

// ErrQueueFull is returned when the Async queue has no room for a message.
var ErrQueueFull = errors.New("mqtt: publish queue full")

type asyncMsg struct {
	event  *logic.Event
	system *SystemEvent
}

// Async forwards messages to another Publisher from its own goroutine, so
// callers never wait on the broker. Messages are delivered in order.
type Async struct {
	inner Publisher
	queue chan asyncMsg
	done  chan struct{}
}

// NewAsync starts forwarding to inner with room for size pending messages.
func NewAsync(inner Publisher, size int) *Async {
	a := &Async{
		inner: inner,
		queue: make(chan asyncMsg, size),
		done:  make(chan struct{}),
	}
	go a.forward()
	return a
}

func (a *Async) forward() {
	defer close(a.done)
	for msg := range a.queue {
		var err error
		if msg.event != nil {
			err = a.inner.Publish(*msg.event)
		} else {
			err = a.inner.PublishSystem(*msg.system)
		}
		if err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

// Publish queues a scheduler event.
func (a *Async) Publish(event logic.Event) error {
	return a.enqueue(asyncMsg{event: &event})
}

// PublishSystem queues a system event.
func (a *Async) PublishSystem(event SystemEvent) error {
	return a.enqueue(asyncMsg{system: &event})
}

func (a *Async) enqueue(msg asyncMsg) error {
	select {
	case a.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close waits for queued messages to be forwarded. It does not close inner.
// Publish must not be called after Close.
func (a *Async) Close() error {
	close(a.queue)
	<-a.done
	return nil
}
