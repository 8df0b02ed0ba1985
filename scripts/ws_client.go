// Package main runs a demo WebSocket client for analysis events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Load a two-race calendar
	calendar := []byte(`[
		{"round":1,"name":"Monaco GP","date":"2025-05-25","circuit":{"id":"monaco","name":"Circuit de Monaco","city":"Monte Carlo","country":"Monaco","location":{"lat":43.7347,"lon":7.4206}}},
		{"round":2,"name":"Spanish GP","date":"2025-06-01","circuit":{"id":"barcelona","name":"Circuit de Barcelona-Catalunya","city":"Barcelona","country":"Spain","location":{"lat":41.57,"lon":2.2611}}}
	]`)
	req, _ := http.NewRequest(http.MethodPut, base+"/v1/calendars/2025", bytes.NewReader(calendar))
	req.Header.Set("Content-Type", "application/json")
	if _, err := http.DefaultClient.Do(req); err != nil {
		log.Fatal(err)
	}

	// Connect WS and subscribe to analysis events
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/analyses/events/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	if err := c.WriteJSON(wsMessage{Type: "connection_init"}); err != nil {
		log.Fatal(err)
	}
	pl, _ := json.Marshal(map[string]any{"events": []string{"analysis.started", "analysis.completed"}})
	if err := c.WriteJSON(wsMessage{Type: "subscribe", ID: "1", Payload: pl}); err != nil {
		log.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsMessage
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Payload))
		}
	}()

	// Trigger an analysis
	time.Sleep(500 * time.Millisecond)
	body := []byte(`{"cargo":[{"name":"Garage","weightKg":8000},{"name":"Spares","weightKg":6000}],"pricingMode":"fixed"}`)
	anReq, _ := http.NewRequest(http.MethodPost, base+"/v1/seasons/2025/analyze", bytes.NewReader(body))
	anReq.Header.Set("Content-Type", "application/json")
	_, _ = http.DefaultClient.Do(anReq)

	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
