// Package progress fans task events out to live subscribers.
package progress

import (
	"sync"

	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
)

// DefaultBuffer is the per-subscriber event buffer.
const DefaultBuffer = 64

type subscription struct {
	ch   chan domain.ProgressEvent
	once sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.ch) })
}

// Broker implements ports.ProgressObserver. Publish never blocks: a slow
// subscriber loses intermediate progress events, but the terminal event is
// always delivered and closes its stream.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[*subscription]struct{}
	buffer int
	log    *zap.SugaredLogger
}

func NewBroker(buffer int, log *zap.SugaredLogger) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
		log:    log.With("component", "progress-broker"),
	}
}

// Subscribe returns the event stream of a task and a function that ends
// the subscription. The stream is closed after the terminal event or when
// cancel is called.
func (b *Broker) Subscribe(taskID string) (<-chan domain.ProgressEvent, func()) {
	sub := &subscription{ch: make(chan domain.ProgressEvent, b.buffer)}

	b.mu.Lock()
	if b.subs[taskID] == nil {
		b.subs[taskID] = make(map[*subscription]struct{})
	}
	b.subs[taskID][sub] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		b.remove(taskID, sub)
		b.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

func (b *Broker) Publish(ev domain.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[ev.TaskID] {
		select {
		case sub.ch <- ev:
		default:
			if !ev.Terminal() {
				continue
			}
			// Make room for the terminal event.
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- ev:
			default:
				b.log.Warnw("terminal event dropped", "task", ev.TaskID)
			}
		}

		if ev.Terminal() {
			b.remove(ev.TaskID, sub)
			sub.close()
		}
	}
}

// Subscribers returns the number of open subscriptions for a task.
func (b *Broker) Subscribers(taskID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[taskID])
}

// remove must be called with b.mu held.
func (b *Broker) remove(taskID string, sub *subscription) {
	set := b.subs[taskID]
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, taskID)
	}
}
