package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu        sync.Mutex
	calendars map[int][]model.RaceEvent
	analyses  map[int]model.SeasonAnalysis
	subs      []model.Subscription
	queue     map[string]*memNotification
	order     []string // queue insertion order
}

func NewMemory() *Memory {
	return &Memory{
		calendars: map[int][]model.RaceEvent{},
		analyses:  map[int]model.SeasonAnalysis{},
		queue:     map[string]*memNotification{},
	}
}

// memNotification augments Notification with scheduling state.
type memNotification struct {
	Notification
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	DeliveredAt   *time.Time
}

func (m *Memory) SaveCalendar(ctx context.Context, season int, races []model.RaceEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.RaceEvent, len(races))
	copy(cp, races)
	m.calendars[season] = cp
	return nil
}

func (m *Memory) GetCalendar(ctx context.Context, season int) ([]model.RaceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	races, ok := m.calendars[season]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]model.RaceEvent, len(races))
	copy(cp, races)
	return cp, nil
}

func (m *Memory) ListSeasons(ctx context.Context) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, 0, len(m.calendars))
	for s := range m.calendars {
		out = append(out, s)
	}
	sort.Ints(out)
	return out, nil
}

func (m *Memory) SaveAnalysis(ctx context.Context, a model.SeasonAnalysis) (model.SeasonAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.analyses[a.Season] = a
	return a, nil
}

func (m *Memory) GetAnalysis(ctx context.Context, season int) (model.SeasonAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.analyses[season]
	if !ok {
		return model.SeasonAnalysis{}, ErrNotFound
	}
	return a, nil
}

func (m *Memory) ListAnalyses(ctx context.Context, limit int) ([]model.SeasonAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	seasons := make([]int, 0, len(m.analyses))
	for s := range m.analyses {
		seasons = append(seasons, s)
	}
	sort.Ints(seasons)
	out := []model.SeasonAnalysis{}
	for _, s := range seasons {
		if len(out) >= limit {
			break
		}
		out = append(out, m.analyses[s])
	}
	return out, nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs = append(m.subs, s)
	return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Subscription{}
	for _, s := range m.subs {
		for _, e := range s.Events {
			if e == eventType || e == "*" {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Subscription, len(m.subs))
	copy(out, m.subs)
	return out, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.subs {
		if s.ID == id {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) EnqueueNotification(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.queue[id] = &memNotification{
		Notification: Notification{
			ID:             id,
			SubscriptionID: subscriptionID,
			EventType:      eventType,
			URL:            url,
			Secret:         secret,
			Payload:        payload,
			Status:         "pending",
		},
		NextAttemptAt: time.Now(),
	}
	m.order = append(m.order, id)
	return id, nil
}

func (m *Memory) FetchDueNotifications(ctx context.Context, limit int) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	now := time.Now()
	out := []Notification{}
	for _, id := range m.order {
		n := m.queue[id]
		if n == nil || n.Status != "pending" || n.NextAttemptAt.After(now) {
			continue
		}
		out = append(out, n.Notification)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.queue[id]
	if !ok {
		return ErrNotFound
	}
	n.Attempts++
	n.LastError = lastError
	n.ResponseCode = responseCode
	if success {
		n.Status = "delivered"
		now := time.Now()
		n.DeliveredAt = &now
		return nil
	}
	if nextAttemptAt != nil {
		n.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailNotification(ctx context.Context, id string, lastError string, responseCode int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.queue[id]
	if !ok {
		return ErrNotFound
	}
	n.Attempts++
	n.Status = "failed"
	n.LastError = lastError
	n.ResponseCode = responseCode
	return nil
}
