// Package api implements HTTP handlers and helpers for the fleetops service.
package api

import (
	"log"
	"os"
	"strings"
	"sync"

	"fleetops/internal/auth"
	"fleetops/internal/config"
	"fleetops/internal/notify"
	"fleetops/internal/store"
)

type Server struct {
	Store  store.Store
	Pub    *notify.Publisher
	Auth   *auth.Verifier
	Broker EventBroker

	mu     sync.RWMutex
	params config.Params
}

// NewServer creates a Server. If DATABASE_URL is unset, uses the in-memory
// store. If PARAMS_FILE is set, model parameters load from it (unknown keys
// rejected); otherwise the documented defaults apply.
func NewServer() (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		// Run migrations (dev helper)
		if os.Getenv("DB_MIGRATE") != "false" {
			if err := sp.MigrateDir("db/migrations"); err != nil {
				log.Printf("migrations: %v", err)
			}
		}
		s = sp
	}

	params := config.Default()
	if path := os.Getenv("PARAMS_FILE"); path != "" {
		p, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		params = p
	}

	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	return &Server{
		Store:  s,
		Pub:    notify.NewPublisher(s),
		Auth:   auth.NewVerifierFromEnv(),
		Broker: broker,
		params: params,
	}, nil
}

// Params returns the current model parameters.
func (s *Server) Params() config.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams replaces the model parameters after validation.
func (s *Server) SetParams(p config.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.params = p
	s.mu.Unlock()
	return nil
}

// NewNotifyWorker creates the background worker for queued notifications.
func (s *Server) NewNotifyWorker() *notify.Worker {
	return notify.NewWorker(s.Store)
}
