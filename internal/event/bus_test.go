package event

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/HerbHall/pollnow/pkg/plugin"
	"go.uber.org/zap"
)

func TestBus_PublishToTopicAndAll(t *testing.T) {
	b := NewBus(zap.NewNop())
	var topic, all atomic.Int64

	b.Subscribe("pulse.execute.requested", func(_ context.Context, _ plugin.Event) { topic.Add(1) })
	b.SubscribeAll(func(_ context.Context, _ plugin.Event) { all.Add(1) })

	_ = b.Publish(context.Background(), plugin.Event{Topic: "pulse.execute.requested"})
	_ = b.Publish(context.Background(), plugin.Event{Topic: "other"})

	if got := topic.Load(); got != 1 {
		t.Errorf("topic handler calls = %d, want 1", got)
	}
	if got := all.Load(); got != 2 {
		t.Errorf("wildcard handler calls = %d, want 2", got)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus(zap.NewNop())
	var calls atomic.Int64

	unsub := b.Subscribe("t", func(_ context.Context, _ plugin.Event) { calls.Add(1) })
	unsubAll := b.SubscribeAll(func(_ context.Context, _ plugin.Event) { calls.Add(1) })
	unsub()
	unsubAll()

	_ = b.Publish(context.Background(), plugin.Event{Topic: "t"})
	if got := calls.Load(); got != 0 {
		t.Errorf("calls after unsubscribe = %d, want 0", got)
	}
}

func TestBus_PanickingHandlerIsIsolated(t *testing.T) {
	b := NewBus(zap.NewNop())
	var calls atomic.Int64

	b.Subscribe("t", func(_ context.Context, _ plugin.Event) { panic("boom") })
	b.Subscribe("t", func(_ context.Context, _ plugin.Event) { calls.Add(1) })

	if err := b.Publish(context.Background(), plugin.Event{Topic: "t"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("second handler calls = %d, want 1", got)
	}
}

func TestBus_PublishAsync(t *testing.T) {
	b := NewBus(zap.NewNop())
	var calls atomic.Int64
	for range 3 {
		b.Subscribe("t", func(_ context.Context, _ plugin.Event) { calls.Add(1) })
	}

	b.PublishAsync(context.Background(), plugin.Event{Topic: "t"})
	b.Wait()

	if got := calls.Load(); got != 3 {
		t.Errorf("async calls = %d, want 3", got)
	}
}
