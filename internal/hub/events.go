package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Event types emitted by the store.
const (
	EventQuestCreated    = "quest_created"
	EventQuestDeleted    = "quest_deleted"
	EventQuestCompleted  = "quest_completed"
	EventTaskToggled     = "task_toggled"
	EventTaskUpdated     = "task_updated"
	EventBadgeUnlocked   = "badge_unlocked"
	EventClassCreated    = "class_created"
	EventClassDeleted    = "class_deleted"
	EventStudentEnrolled = "student_enrolled"
	EventStudentRemoved  = "student_removed"
	EventStateRestored   = "state_restored"
)

// Event is one analytics record describing a state transition.
type Event struct {
	Type      string
	EntityID  string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger records analytics events.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{events: []Event{}}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

const eventDBTimeout = 5 * time.Second

// PostgresEventLogger inserts events into the app_events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

// NewPostgresEventLogger creates the logger and ensures its table
// exists.
func NewPostgresEventLogger(ctx context.Context, pool *pgxpool.Pool) (*PostgresEventLogger, error) {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS app_events (
			id BIGSERIAL PRIMARY KEY,
			event_type TEXT NOT NULL,
			entity_id TEXT NOT NULL DEFAULT '',
			data JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return nil, fmt.Errorf("create app_events table: %w", err)
	}
	return &PostgresEventLogger{pool: pool}, nil
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventDBTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO app_events (event_type, entity_id, data, created_at)
		 VALUES ($1, $2, $3::jsonb, $4)`,
		event.Type, event.EntityID, string(data), createdAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}
