package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fleetops/internal/calendar"
	"fleetops/internal/cost"
	"fleetops/internal/emissions"
	"fleetops/internal/metrics"
	"fleetops/internal/model"
	"fleetops/internal/opt"
	"fleetops/internal/season"
	"fleetops/internal/store"
)

// AllocateHandler handles POST /v1/allocate: FFD packing of a cargo
// manifest onto a fixed fleet.
func (s *Server) AllocateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateAllocateRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid allocate request", err.Error(), r.URL.Path)
		return
	}
	alloc, err := opt.Allocate(req.Cargo, req.NumTrucks, req.CapacityKg)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Allocation failed", err.Error(), r.URL.Path)
		return
	}
	recordAllocation(alloc)
	writeJSON(w, http.StatusOK, alloc)
}

// FleetSizeHandler handles POST /v1/fleet-size: smallest fleet with no
// overflow, capped by maxTrucks.
func (s *Server) FleetSizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.FleetSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateFleetSizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid fleet-size request", err.Error(), r.URL.Path)
		return
	}
	maxTrucks := req.MaxTrucks
	if maxTrucks == 0 {
		maxTrucks = season.DefaultMaxTrucks
	}
	n, alloc, err := opt.MinFleetSize(req.Cargo, req.CapacityKg, maxTrucks)
	if err != nil && !errors.Is(err, opt.ErrNoFeasibleFleet) {
		writeProblem(w, http.StatusBadRequest, "Fleet sizing failed", err.Error(), r.URL.Path)
		return
	}
	recordAllocation(alloc)
	writeJSON(w, http.StatusOK, map[string]any{
		"feasible":   err == nil,
		"numTrucks":  n,
		"allocation": alloc,
	})
}

// LegCostHandler handles POST /v1/legs/cost.
func (s *Server) LegCostHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.LegPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateLegPriceRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid leg cost request", err.Error(), r.URL.Path)
		return
	}
	c, err := cost.LegCost(req.Leg, req.NumTrucks, s.Params())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Cost computation failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// LegEmissionsHandler handles POST /v1/legs/emissions.
func (s *Server) LegEmissionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.LegPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateLegPriceRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid leg emissions request", err.Error(), r.URL.Path)
		return
	}
	e, err := emissions.LegEmissions(req.Leg, req.NumTrucks, s.Params())
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Emissions computation failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CalendarsHandler handles GET /v1/calendars (list seasons).
func (s *Server) CalendarsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	seasons, err := s.Store.ListSeasons(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List seasons failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seasons": seasons})
}

// CalendarByYearHandler handles PUT/GET /v1/calendars/{year}.
func (s *Server) CalendarByYearHandler(w http.ResponseWriter, r *http.Request) {
	year, rest, ok := yearFromPath(r.URL.Path, "/v1/calendars/")
	if !ok || rest != "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "expected /v1/calendars/{year}", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var races []model.RaceEvent
		if err := json.NewDecoder(r.Body).Decode(&races); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateRaces(races); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid calendar", err.Error(), r.URL.Path)
			return
		}
		if err := s.Store.SaveCalendar(r.Context(), year, races); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save calendar failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"season": year, "races": len(races)})
	case http.MethodGet:
		races, err := s.Store.GetCalendar(r.Context(), year)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Calendar not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get calendar failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"season": year, "races": races})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SeasonHandler handles POST /v1/seasons/{year}/analyze and
// GET /v1/seasons/{year}/analysis.
func (s *Server) SeasonHandler(w http.ResponseWriter, r *http.Request) {
	year, rest, ok := yearFromPath(r.URL.Path, "/v1/seasons/")
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "expected /v1/seasons/{year}/...", r.URL.Path)
		return
	}
	switch {
	case rest == "analyze" && r.Method == http.MethodPost:
		s.analyzeSeason(w, r, year)
	case rest == "analysis" && r.Method == http.MethodGet:
		a, err := s.Store.GetAnalysis(r.Context(), year)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Analysis not found", "", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get analysis failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, a)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
	}
}

func (s *Server) analyzeSeason(w http.ResponseWriter, r *http.Request, year int) {
	var req model.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateAnalyzeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid analyze request", err.Error(), r.URL.Path)
		return
	}
	races, err := s.Store.GetCalendar(r.Context(), year)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Calendar not found", fmt.Sprintf("no calendar for season %d", year), r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get calendar failed", err.Error(), r.URL.Path)
		return
	}

	mode := season.PricingMode(req.PricingMode)
	if mode == "" {
		mode = season.PricingFixed
	}
	s.Broker.Publish(topicAnalyses, SSEEvent{Type: "analysis.started", Data: map[string]any{"season": year, "mode": string(mode)}})

	analysis, err := season.Analyze(year, races, season.Options{
		Params:    s.Params(),
		Cargo:     req.Cargo,
		Mode:      mode,
		MaxTrucks: req.MaxTrucks,
	})
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Analysis failed", err.Error(), r.URL.Path)
		return
	}
	saved, err := s.Store.SaveAnalysis(r.Context(), analysis)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save analysis failed", err.Error(), r.URL.Path)
		return
	}

	metrics.Analyses.WithLabelValues(string(mode)).Inc()
	recordAllocation(saved.Allocation)
	s.Broker.Publish(topicAnalyses, SSEEvent{Type: "analysis.completed", Data: map[string]any{
		"season":        saved.Season,
		"analysisId":    saved.ID,
		"pricingTrucks": saved.PricingTrucks,
		"totalCostEur":  saved.TotalCost.TotalEUR,
		"totalCo2eKg":   saved.TotalEmissions.CO2eKg,
		"overflowItems": len(saved.Allocation.Overflow),
	}})
	s.Pub.Emit(r.Context(), "analysis.completed", saved)

	writeJSON(w, http.StatusOK, saved)
}

// AnalysesHandler handles GET /v1/analyses.
func (s *Server) AnalysesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		_, _ = fmt.Sscanf(v, "%d", &limit)
	}
	items, err := s.Store.ListAnalyses(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List analyses failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// EventsStreamHandler handles GET /v1/analyses/events/stream (SSE).
func (s *Server) EventsStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(topicAnalyses)
	defer s.Broker.Unsubscribe(topicAnalyses, ch)

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			data, _ := json.Marshal(evt.Data)
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
			flusher.Flush()
		}
	}
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions.
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url must be http(s)", r.URL.Path)
			return
		}
		if len(req.Events) == 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "at least one event type required", r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		sub.Secret = ""
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		subs, err := s.Store.ListSubscriptions(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		for i := range subs {
			subs[i].Secret = ""
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": subs})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}.
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if id == "" || strings.Contains(id, "/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	err := s.Store.DeleteSubscription(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Subscription not found", "", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Delete subscription failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// AdminParamsHandler handles GET/PUT /v1/admin/params (admin role required).
func (s *Server) AdminParamsHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"params": s.Params()})
	case http.MethodPut:
		var body struct {
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		next := s.Params()
		if err := json.Unmarshal(body.Params, &next); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid params", err.Error(), r.URL.Path)
			return
		}
		if err := s.SetParams(next); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid params", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"params": s.Params()})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ImportCalendarFile loads a CSV calendar from disk into the store
// (bootstrap helper used by the CLI flags in main).
func (s *Server) ImportCalendarFile(ctx context.Context, path string, year int) (int, error) {
	races, err := calendar.LoadFile(path, year)
	if err != nil {
		return 0, err
	}
	if err := s.Store.SaveCalendar(ctx, year, races); err != nil {
		return 0, err
	}
	return len(races), nil
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using the Postgres store.
	type pinger interface{ Ping(ctx context.Context) error }
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// recordAllocation updates allocation metrics for one allocator run.
func recordAllocation(alloc model.Allocation) {
	outcome := "packed"
	if len(alloc.Overflow) > 0 {
		outcome = "overflow"
		metrics.OverflowItems.Add(float64(len(alloc.Overflow)))
	}
	metrics.Allocations.WithLabelValues(outcome).Inc()
}

// yearFromPath parses "{prefix}{year}" or "{prefix}{year}/{rest}".
func yearFromPath(path, prefix string) (year int, rest string, ok bool) {
	trimmed := strings.TrimPrefix(path, prefix)
	if trimmed == path || trimmed == "" {
		return 0, "", false
	}
	parts := strings.SplitN(trimmed, "/", 2)
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	if len(parts) == 2 {
		rest = parts[1]
	}
	return y, rest, true
}
