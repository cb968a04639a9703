package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Entry is one journaled signal.
type Entry struct {
	ID        string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// Recorder persists journal entries.
type Recorder interface {
	Record(entry Entry) error
}

// NopRecorder ignores all entries.
type NopRecorder struct{}

func (NopRecorder) Record(Entry) error {
	return nil
}

// MemoryRecorder keeps entries in memory for tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{entries: []Entry{}}
}

func (r *MemoryRecorder) Record(entry Entry) error {
	if entry.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()

	return nil
}

func (r *MemoryRecorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.entries...)
}

// PostgresRecorder inserts entries into the learning_events table.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

func (r *PostgresRecorder) Record(entry Entry) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("recorder pool is nil")
	}
	if entry.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	payload := entry.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = r.pool.Exec(ctx,
		`INSERT INTO learning_events (id, event_type, data, created_at)
		 VALUES ($1::uuid, $2, $3::jsonb, $4)`,
		entry.ID,
		entry.EventType,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event journaled", "type", entry.EventType, "id", entry.ID)
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *PostgresRecorder) Recent(limit int) ([]Entry, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("recorder pool is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT id::text, event_type, data, created_at
		 FROM learning_events
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var raw []byte
		if err := rows.Scan(&e.ID, &e.EventType, &raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if err := json.Unmarshal(raw, &e.Data); err != nil {
			return nil, fmt.Errorf("decode event data: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

// Journal records every event published on bus. Recording failures are
// logged and never reach the publisher.
func Journal(bus *Bus, rec Recorder) (unsubscribe func()) {
	return bus.SubscribeAll(func(e Event) {
		entry := Entry{
			ID:        uuid.NewString(),
			EventType: e.Name(),
			Data:      payload(e),
			CreatedAt: time.Now(),
		}
		if err := rec.Record(entry); err != nil {
			slog.Warn("journaling event failed", "event", e.Name(), "error", err)
		}
	})
}

func payload(e Event) map[string]any {
	data, err := json.Marshal(e)
	if err != nil {
		return map[string]any{}
	}
	out := map[string]any{}
	_ = json.Unmarshal(data, &out)
	return out
}
