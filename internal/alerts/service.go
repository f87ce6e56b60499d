package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lmia/compare-service/internal/notify"
)

// ErrNotFound is returned when an alert is missing or owned by another user.
var ErrNotFound = errors.New("alert not found")

// Alert is a persisted alert record.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Criteria  Criteria  `json:"criteria"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the alert persistence port.
type Store interface {
	Insert(ctx context.Context, a *Alert) error
	ListByUser(ctx context.Context, userID string) ([]Alert, error)
	Delete(ctx context.Context, userID, id string) error
	Active(ctx context.Context) ([]Alert, error)
}

// Service validates and persists alerts, emitting user notifications for
// both outcomes. A failed insert leaves no partial state: validation runs
// before the store is touched, and nothing is cached locally.
type Service struct {
	store    Store
	notifier notify.Notifier
}

// NewService returns a configured Service.
func NewService(store Store, notifier notify.Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Create validates and persists a new alert.
func (s *Service) Create(ctx context.Context, userID, name string, c Criteria) (*Alert, error) {
	if userID == "" {
		return nil, &ValidationError{Msg: "you must be signed in to create an alert"}
	}
	if name == "" {
		s.notifier.Notify(ctx, userID, notify.Notification{
			Title:       "Alert not created",
			Description: "An alert name is required.",
			Variant:     notify.VariantDestructive,
		})
		return nil, &ValidationError{Msg: "alert name is required"}
	}

	a := &Alert{UserID: userID, Name: name, Criteria: c}
	if err := s.store.Insert(ctx, a); err != nil {
		s.notifier.Notify(ctx, userID, notify.Notification{
			Title:       "Alert not created",
			Description: "Something went wrong saving your alert. Please try again.",
			Variant:     notify.VariantDestructive,
		})
		return nil, fmt.Errorf("insert alert: %w", err)
	}

	s.notifier.Notify(ctx, userID, notify.Notification{
		Title:       "Alert created",
		Description: fmt.Sprintf("You will receive %s updates for %q.", c.Frequency, name),
		Variant:     notify.VariantSuccess,
	})
	slog.Info("alert created", "userId", userID, "alertId", a.ID, "frequency", c.Frequency)
	return a, nil
}

// List returns the user's alerts, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Alert, error) {
	return s.store.ListByUser(ctx, userID)
}

// Delete removes an alert owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.notifier.Notify(ctx, userID, notify.Notification{
		Title:       "Alert deleted",
		Description: "The alert will no longer send updates.",
		Variant:     notify.VariantDefault,
	})
	return nil
}

// ─── PostgreSQL store ────────────────────────────────────────────────────────

// PGStore persists alerts in the alerts table with criteria as JSONB.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore returns a Store over the given pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (p *PGStore) Insert(ctx context.Context, a *Alert) error {
	raw, err := json.Marshal(a.Criteria)
	if err != nil {
		return fmt.Errorf("marshal criteria: %w", err)
	}
	err = p.pool.QueryRow(ctx,
		`INSERT INTO alerts (user_id, name, criteria, frequency)
		 VALUES ($1, $2, $3::jsonb, $4)
		 RETURNING id, created_at`,
		a.UserID, a.Name, string(raw), string(a.Criteria.Frequency),
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (p *PGStore) ListByUser(ctx context.Context, userID string) ([]Alert, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, name, criteria, created_at
		 FROM alerts
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (p *PGStore) Delete(ctx context.Context, userID, id string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM alerts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PGStore) Active(ctx context.Context) ([]Alert, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, name, criteria, created_at
		 FROM alerts
		 WHERE frequency IN ('daily', 'weekly')
		 ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("active alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAlerts(rows pgRows) ([]Alert, error) {
	alerts := make([]Alert, 0)
	for rows.Next() {
		var (
			a   Alert
			raw []byte
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &raw, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if err := json.Unmarshal(raw, &a.Criteria); err != nil {
			// A malformed criteria blob disables that one alert, not the list.
			slog.Warn("skipping alert with malformed criteria", "alertId", a.ID, "err", err)
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ─── In-memory store ─────────────────────────────────────────────────────────

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	mu     sync.Mutex
	nextID int
	alerts []Alert

	// FailInserts makes every Insert return an error.
	FailInserts bool
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Insert(ctx context.Context, a *Alert) error {
	if m.FailInserts {
		return errors.New("insert failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = strconv.Itoa(m.nextID)
	a.CreatedAt = time.Now()
	m.alerts = append(m.alerts, *a)
	return nil
}

func (m *MemStore) ListByUser(ctx context.Context, userID string) ([]Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, 0)
	for i := len(m.alerts) - 1; i >= 0; i-- {
		if m.alerts[i].UserID == userID {
			out = append(out, m.alerts[i])
		}
	}
	return out, nil
}

func (m *MemStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.alerts {
		if a.ID == id && a.UserID == userID {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemStore) Active(ctx context.Context) ([]Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Alert, 0)
	for _, a := range m.alerts {
		if a.Criteria.Frequency == FrequencyDaily || a.Criteria.Frequency == FrequencyWeekly {
			out = append(out, a)
		}
	}
	return out, nil
}
