package api

import (
	"testing"
	"time"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(topicAnalyses)

	evt := SSEEvent{Type: "analysis.completed", Data: map[string]any{"season": 2025}}
	b.Publish(topicAnalyses, evt)

	select {
	case got := <-ch:
		if got.Type != evt.Type {
			t.Fatalf("got type %s, want %s", got.Type, evt.Type)
		}
		if got.Data["season"].(int) != 2025 {
			t.Fatalf("bad payload: %+v", got.Data)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for event")
	}

	b.Unsubscribe(topicAnalyses, ch)
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("channel should be closed after unsubscribe")
		}
	case <-time.After(50 * time.Millisecond):
		// acceptable if already drained and closed
	}
}

func TestBrokerTopicsIsolated(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("other")
	defer b.Unsubscribe("other", ch)

	b.Publish(topicAnalyses, SSEEvent{Type: "analysis.started"})
	select {
	case evt := <-ch:
		t.Fatalf("event leaked across topics: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBrokerSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe(topicAnalyses)
	defer b.Unsubscribe(topicAnalyses, ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(topicAnalyses, SSEEvent{Type: "analysis.started"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
