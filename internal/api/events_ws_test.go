package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(s.EventsWSHandler))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var m wsMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read waiting for %q: %v", msgType, err)
		}
		if m.Type == msgType {
			return m
		}
	}
}

func TestEventsWSSubscribeReceivesEvents(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s)

	if err := conn.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	readUntil(t, conn, "connection_ack")

	pl, _ := json.Marshal(wsSubscribePayload{Events: []string{"analysis.completed"}})
	if err := conn.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	s.Broker.Publish(topicAnalyses, SSEEvent{Type: "analysis.started", Data: map[string]any{"season": 2025}})
	s.Broker.Publish(topicAnalyses, SSEEvent{Type: "analysis.completed", Data: map[string]any{"season": 2025}})

	m := readUntil(t, conn, "next")
	var got struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(m.Payload, &got)
	// The filter admits only the subscribed event type.
	if got.Type != "analysis.completed" {
		t.Fatalf("event type: got %q", got.Type)
	}
}

func TestEventsWSConcurrentFanout(t *testing.T) {
	s := newTestServer(t)
	conn := dialWS(t, s)

	if err := conn.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	readUntil(t, conn, "connection_ack")

	// Two subscriptions fan out to the same connection from separate
	// goroutines; writes must stay serialized.
	for _, id := range []string{"1", "2"} {
		if err := conn.WriteJSON(wsMessage{Type: "subscribe", ID: id}); err != nil {
			t.Fatalf("subscribe %s: %v", id, err)
		}
	}
	time.Sleep(50 * time.Millisecond)

	go func() {
		for i := 0; i < 20; i++ {
			s.Broker.Publish(topicAnalyses, SSEEvent{Type: "analysis.completed", Data: map[string]any{"n": i}})
			time.Sleep(time.Millisecond)
		}
	}()

	seen := map[string]bool{}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for !seen["1"] || !seen["2"] {
		var m wsMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v (seen: %v)", err, seen)
		}
		if m.Type == "next" {
			seen[m.ID] = true
		}
	}

	// Completing one subscription leaves the other live.
	if err := conn.WriteJSON(wsMessage{Type: "complete", ID: "1"}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	s.Broker.Publish(topicAnalyses, SSEEvent{Type: "analysis.completed"})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var m wsMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read after complete: %v", err)
		}
		if m.Type == "next" && m.ID == "2" {
			return
		}
	}
}
