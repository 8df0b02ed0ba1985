package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// problemTypeBlank is the RFC 7807 type for errors with no dedicated
// documentation URI.
const problemTypeBlank = "about:blank"

// Problem is the RFC 7807 problem-details body every error response uses.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// writeJSON encodes v as the response body. Encode failures after the
// header is written can only be logged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode: %v", err)
	}
}

// writeProblem sends an RFC 7807 error body with the problem+json media type.
func writeProblem(w http.ResponseWriter, status int, title, detail, instance string) {
	body := Problem{
		Type:     problemTypeBlank,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("problem encode: %v", err)
	}
}
