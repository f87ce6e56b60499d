// Package notify delivers user-facing notifications. Delivery is
// fire-and-forget: a failed publish is logged, never returned as a fatal
// error to business logic.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Variants understood by the clients' toast layer.
const (
	VariantSuccess     = "success"
	VariantDestructive = "destructive"
	VariantDefault     = "default"
)

// Notification is the payload shown to the user.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Notifier is the notification sink port.
type Notifier interface {
	Notify(ctx context.Context, userID string, n Notification)
}

// ─── Redis implementation ────────────────────────────────────────────────────

// RedisNotifier publishes notifications to a per-user Redis channel, which
// the gateway forwards to connected clients over SSE.
type RedisNotifier struct {
	rdb *redis.Client
}

// NewRedisNotifier returns a Notifier publishing through rdb.
func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (r *RedisNotifier) Notify(ctx context.Context, userID string, n Notification) {
	payload, _ := json.Marshal(n)
	channel := fmt.Sprintf("notify:%s", userID)
	if err := r.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		slog.Warn("notification publish failed", "channel", channel, "err", err)
	}
}

// ─── In-memory implementation ────────────────────────────────────────────────

// MemNotifier records notifications in memory for tests.
type MemNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

// NewMemNotifier returns an empty MemNotifier.
func NewMemNotifier() *MemNotifier {
	return &MemNotifier{}
}

func (m *MemNotifier) Notify(ctx context.Context, userID string, n Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}

// Sent returns a copy of every notification delivered so far.
func (m *MemNotifier) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.sent...)
}
