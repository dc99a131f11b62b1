package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/pkg/logger"
)

func drain(ch <-chan domain.ProgressEvent) []domain.ProgressEvent {
	var out []domain.ProgressEvent
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func TestBrokerDeliversAndClosesOnTerminal(t *testing.T) {
	b := NewBroker(8, logger.Nop())
	ch, cancel := b.Subscribe("t1")
	defer cancel()

	b.Publish(domain.ProgressEvent{Type: domain.EventProgress, TaskID: "t1", Progress: 10})
	b.Publish(domain.ProgressEvent{Type: domain.EventProgress, TaskID: "other", Progress: 50})
	b.Publish(domain.ProgressEvent{Type: domain.EventComplete, TaskID: "t1", Progress: 100})

	events := drain(ch)
	require.Len(t, events, 2)
	assert.Equal(t, 10, events[0].Progress)
	assert.Equal(t, domain.EventComplete, events[1].Type)
	assert.Zero(t, b.Subscribers("t1"))
}

func TestBrokerSlowSubscriberStillGetsTerminal(t *testing.T) {
	b := NewBroker(2, logger.Nop())
	ch, cancel := b.Subscribe("t1")
	defer cancel()

	for i := 1; i <= 10; i++ {
		b.Publish(domain.ProgressEvent{Type: domain.EventProgress, TaskID: "t1", Progress: i})
	}
	b.Publish(domain.ProgressEvent{Type: domain.EventError, TaskID: "t1"})

	events := drain(ch)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventError, events[len(events)-1].Type)
	assert.LessOrEqual(t, len(events), 2)
}

func TestBrokerCancel(t *testing.T) {
	b := NewBroker(1, logger.Nop())
	ch, cancel := b.Subscribe("t1")
	assert.Equal(t, 1, b.Subscribers("t1"))

	cancel()
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream not closed")
	}
	assert.Zero(t, b.Subscribers("t1"))

	// Publishing after cancel must not panic on the closed channel.
	b.Publish(domain.ProgressEvent{Type: domain.EventComplete, TaskID: "t1"})
}
