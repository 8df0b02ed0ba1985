package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetops/internal/api"
	"fleetops/internal/buildinfo"
	"fleetops/internal/metrics"
)

func main() {
	importCSV := flag.String("import-calendar", "", "CSV calendar file to load at startup")
	importYear := flag.Int("season", time.Now().Year(), "season year for -import-calendar")
	flag.Parse()

	srvDeps, err := api.NewServer()
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	if *importCSV != "" {
		n, err := srvDeps.ImportCalendarFile(context.Background(), *importCSV, *importYear)
		if err != nil {
			log.Fatalf("calendar import failed: %v", err)
		}
		log.Printf("imported %d races for season %d", n, *importYear)
	}

	mux := http.NewServeMux()

	// Allocation and pricing
	mux.HandleFunc("/v1/allocate", srvDeps.AllocateHandler)
	mux.HandleFunc("/v1/fleet-size", srvDeps.FleetSizeHandler)
	mux.HandleFunc("/v1/legs/cost", srvDeps.LegCostHandler)
	mux.HandleFunc("/v1/legs/emissions", srvDeps.LegEmissionsHandler)

	// Calendars and season analyses
	mux.HandleFunc("/v1/calendars", srvDeps.CalendarsHandler)
	mux.HandleFunc("/v1/calendars/", srvDeps.CalendarByYearHandler)
	mux.HandleFunc("/v1/seasons/", srvDeps.SeasonHandler)
	mux.HandleFunc("/v1/analyses", srvDeps.AnalysesHandler)
	mux.HandleFunc("/v1/analyses/events/stream", srvDeps.EventsStreamHandler)
	mux.HandleFunc("/v1/analyses/events/ws", srvDeps.EventsWSHandler)

	// Subscriptions
	mux.HandleFunc("/v1/subscriptions", srvDeps.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srvDeps.SubscriptionByIDHandler)

	// Admin
	mux.HandleFunc("/v1/admin/params", srvDeps.AdminParamsHandler)

	// Health, metrics, docs
	mux.HandleFunc("/healthz", srvDeps.HealthHandler)
	mux.HandleFunc("/readyz", srvDeps.ReadyHandler)
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":"` + buildinfo.Version + `"}`))
	})
	metrics.RegisterDefault()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/openapi.yaml", srvDeps.OpenAPIHandler)
	mux.HandleFunc("/openapi.json", srvDeps.OpenAPIJSONHandler)
	mux.HandleFunc("/docs", srvDeps.DocsHandler)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           logMiddleware(api.RateLimit(api.Instrument(mux))),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s (version %s)", addr, buildinfo.Version)
	// Start notification worker
	if srvDeps.Pub != nil {
		worker := srvDeps.NewNotifyWorker()
		worker.Start()
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}
