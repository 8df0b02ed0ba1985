package store

import (
	"context"
	"errors"
	"time"

	"fleetops/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Calendars
	SaveCalendar(ctx context.Context, season int, races []model.RaceEvent) error
	GetCalendar(ctx context.Context, season int) ([]model.RaceEvent, error)
	ListSeasons(ctx context.Context) ([]int, error)

	// Season analyses
	SaveAnalysis(ctx context.Context, a model.SeasonAnalysis) (model.SeasonAnalysis, error)
	GetAnalysis(ctx context.Context, season int) (model.SeasonAnalysis, error)
	ListAnalyses(ctx context.Context, limit int) ([]model.SeasonAnalysis, error)

	// Notification subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	// Notification delivery queue
	EnqueueNotification(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueNotifications(ctx context.Context, limit int) ([]Notification, error)
	MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error
	FailNotification(ctx context.Context, id string, lastError string, responseCode int) error
}

var ErrNotFound = errors.New("not found")

// Notification is one pending outbound delivery of an event payload.
type Notification struct {
	ID             string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string
	Attempts       int
}
