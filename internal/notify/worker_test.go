package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"fleetops/internal/metrics"
	"fleetops/internal/model"
	"fleetops/internal/store"
)

type recordStore struct {
	*store.Memory
	mu    sync.Mutex
	marks []markRec
	fails []failRec
}
type markRec struct {
	ID      string
	Success bool
	Code    int
	LastErr string
}
type failRec struct {
	ID      string
	Code    int
	LastErr string
}

func (r *recordStore) MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error {
	r.mu.Lock()
	r.marks = append(r.marks, markRec{ID: id, Success: success, Code: responseCode, LastErr: lastError})
	r.mu.Unlock()
	return r.Memory.MarkNotification(ctx, id, success, nextAttemptAt, lastError, responseCode)
}
func (r *recordStore) FailNotification(ctx context.Context, id string, lastError string, responseCode int) error {
	r.mu.Lock()
	r.fails = append(r.fails, failRec{ID: id, Code: responseCode, LastErr: lastError})
	r.mu.Unlock()
	return r.Memory.FailNotification(ctx, id, lastError, responseCode)
}

func TestWorkerProcessOnce_SuccessAndSignature(t *testing.T) {
	var gotSig, gotType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSig = r.Header.Get("X-Signature")
		gotType = r.Header.Get("X-Event-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(200)
	}))
	defer srv.Close()

	rs := &recordStore{Memory: store.NewMemory()}
	w := &Worker{Store: rs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 3}
	payload := []byte(`{"id":"evt1"}`)
	id, err := rs.Memory.EnqueueNotification(context.Background(), "sub1", "analysis.completed", srv.URL, "secret", payload)
	if err != nil || id == "" {
		t.Fatalf("enqueue failed: %v", err)
	}

	delivered := metrics.NotificationDeliveries.WithLabelValues("analysis.completed", "delivered")
	before := testutil.ToFloat64(delivered)

	w.processOnce()

	if got := testutil.ToFloat64(delivered) - before; got != 1 {
		t.Fatalf("delivered counter: got +%g, want +1", got)
	}
	if gotType != "analysis.completed" {
		t.Fatalf("event type header: %q", gotType)
	}
	if !Verify("secret", gotBody, gotSig) {
		t.Fatalf("signature does not verify: sig=%q body=%q", gotSig, gotBody)
	}
	if len(rs.marks) == 0 || !rs.marks[0].Success {
		t.Fatalf("expected mark success, got: %+v", rs.marks)
	}
}

func TestWorkerProcessOnce_FailAfterMaxAttempts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) }))
	defer srv.Close()
	rs := &recordStore{Memory: store.NewMemory()}
	w := &Worker{Store: rs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 1}
	_, _ = rs.Memory.EnqueueNotification(context.Background(), "sub1", "analysis.completed", srv.URL, "", []byte(`{}`))
	failed := metrics.NotificationDeliveries.WithLabelValues("analysis.completed", "failed")
	before := testutil.ToFloat64(failed)
	w.processOnce()
	if len(rs.fails) == 0 {
		t.Fatalf("expected fail recorded")
	}
	if got := testutil.ToFloat64(failed) - before; got != 1 {
		t.Fatalf("failed counter: got +%g, want +1", got)
	}
}

func TestWorkerProcessOnce_RetrySchedulesBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) }))
	defer srv.Close()
	rs := &recordStore{Memory: store.NewMemory()}
	w := &Worker{Store: rs, HTTP: srv.Client(), Stop: make(chan struct{}), MaxAttempts: 5}
	_, _ = rs.Memory.EnqueueNotification(context.Background(), "sub1", "analysis.completed", srv.URL, "", []byte(`{}`))
	retried := metrics.NotificationDeliveries.WithLabelValues("analysis.completed", "retry")
	before := testutil.ToFloat64(retried)
	w.processOnce()
	if len(rs.marks) != 1 || rs.marks[0].Success {
		t.Fatalf("expected retry mark, got: %+v", rs.marks)
	}
	if got := testutil.ToFloat64(retried) - before; got != 1 {
		t.Fatalf("retry counter: got +%g, want +1", got)
	}
	// Backed off, nothing due right away.
	due, _ := rs.Memory.FetchDueNotifications(context.Background(), 10)
	if len(due) != 0 {
		t.Fatalf("retry should be scheduled for later: %+v", due)
	}
}

func TestNextBackoff(t *testing.T) {
	if d := nextBackoff(0); d != time.Second {
		t.Fatalf("attempt 0: %v", d)
	}
	if d := nextBackoff(3); d != 8*time.Second {
		t.Fatalf("attempt 3: %v", d)
	}
	if d := nextBackoff(20); d != time.Hour {
		t.Fatalf("cap: %v", d)
	}
}

func TestPublisherEmit(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	_, _ = m.CreateSubscription(ctx, model.SubscriptionRequest{URL: "https://example.com/a", Events: []string{"analysis.completed"}})
	_, _ = m.CreateSubscription(ctx, model.SubscriptionRequest{URL: "https://example.com/b", Events: []string{"analysis.started"}})

	p := NewPublisher(m)
	p.Emit(ctx, "analysis.completed", map[string]any{"season": 2025})

	due, err := m.FetchDueNotifications(ctx, 10)
	if err != nil {
		t.Fatalf("FetchDueNotifications: %v", err)
	}
	if len(due) != 1 || due[0].URL != "https://example.com/a" {
		t.Fatalf("emit should enqueue only matching subscriptions: %+v", due)
	}
}
