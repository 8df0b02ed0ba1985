package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"fleetops/internal/model"
)

// Postgres persists calendars, analyses, and the notification queue.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Ping checks database connectivity; used by the readiness handler.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// MigrateDir applies every .sql file in dir in lexical order (dev helper).
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(data)); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}

func (p *Postgres) SaveCalendar(ctx context.Context, season int, races []model.RaceEvent) error {
	payload, err := json.Marshal(races)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO calendars (season, races, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (season) DO UPDATE SET races = EXCLUDED.races, updated_at = now()`,
		season, payload)
	return err
}

func (p *Postgres) GetCalendar(ctx context.Context, season int) ([]model.RaceEvent, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT races FROM calendars WHERE season=$1`, season).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var races []model.RaceEvent
	if err := json.Unmarshal(payload, &races); err != nil {
		return nil, err
	}
	return races, nil
}

func (p *Postgres) ListSeasons(ctx context.Context) ([]int, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT season FROM calendars ORDER BY season`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []int{}
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveAnalysis(ctx context.Context, a model.SeasonAnalysis) (model.SeasonAnalysis, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt == "" {
		a.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return model.SeasonAnalysis{}, err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO analyses (id, season, payload, created_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (season) DO UPDATE SET id = EXCLUDED.id, payload = EXCLUDED.payload, created_at = now()`,
		a.ID, a.Season, payload)
	if err != nil {
		return model.SeasonAnalysis{}, err
	}
	return a, nil
}

func (p *Postgres) GetAnalysis(ctx context.Context, season int) (model.SeasonAnalysis, error) {
	var payload []byte
	err := p.db.QueryRowContext(ctx, `SELECT payload FROM analyses WHERE season=$1`, season).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SeasonAnalysis{}, ErrNotFound
	}
	if err != nil {
		return model.SeasonAnalysis{}, err
	}
	var a model.SeasonAnalysis
	if err := json.Unmarshal(payload, &a); err != nil {
		return model.SeasonAnalysis{}, err
	}
	return a, nil
}

func (p *Postgres) ListAnalyses(ctx context.Context, limit int) ([]model.SeasonAnalysis, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `SELECT payload FROM analyses ORDER BY season LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []model.SeasonAnalysis{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var a model.SeasonAnalysis
		if err := json.Unmarshal(payload, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	id := uuid.New().String()
	events, err := json.Marshal(req.Events)
	if err != nil {
		return model.Subscription{}, err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, url, events, secret, created_at) VALUES ($1, $2, $3, $4, now())`,
		id, req.URL, events, req.Secret)
	if err != nil {
		return model.Subscription{}, err
	}
	return model.Subscription{ID: id, URL: req.URL, Events: req.Events, Secret: req.Secret}, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
	subs, err := p.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.Subscription{}
	for _, s := range subs {
		for _, e := range s.Events {
			if e == eventType || e == "*" {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, url, events, secret FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []model.Subscription{}
	for rows.Next() {
		var s model.Subscription
		var events []byte
		if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(events, &s.Events); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) EnqueueNotification(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO notifications (id, subscription_id, event_type, url, secret, payload, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'pending', 0, now(), now())`,
		id, nullIfEmpty(subscriptionID), eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, COALESCE(subscription_id::text, ''), event_type, url, secret, payload, status, attempts
		FROM notifications
		WHERE status='pending' AND next_attempt_at <= now()
		ORDER BY next_attempt_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.SubscriptionID, &n.EventType, &n.URL, &n.Secret, &n.Payload, &n.Status, &n.Attempts); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkNotification(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error {
	if success {
		_, err := p.db.ExecContext(ctx, `
			UPDATE notifications SET status='delivered', attempts=attempts+1, last_error=$2, response_code=$3, delivered_at=now()
			WHERE id=$1`, id, lastError, responseCode)
		return err
	}
	var next any
	if nextAttemptAt != nil {
		next = *nextAttemptAt
	}
	_, err := p.db.ExecContext(ctx, `
		UPDATE notifications SET attempts=attempts+1, last_error=$2, response_code=$3, next_attempt_at=COALESCE($4, next_attempt_at)
		WHERE id=$1`, id, lastError, responseCode, next)
	return err
}

func (p *Postgres) FailNotification(ctx context.Context, id string, lastError string, responseCode int) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE notifications SET status='failed', attempts=attempts+1, last_error=$2, response_code=$3
		WHERE id=$1`, id, lastError, responseCode)
	return err
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
