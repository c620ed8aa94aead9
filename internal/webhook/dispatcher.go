// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/mcms-go/internal/store"
)

// Delivery statuses.
const (
	StatusPending   = "pending"
	StatusSending   = "sending"
	StatusDelivered = "delivered"
	StatusDead      = "dead"
)

// Dispatcher records deliveries for subscribed webhooks and posts them
// from a pool of workers.
type Dispatcher struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
	client  *http.Client
	agent   string
	now     func() time.Time
	queue   chan int64
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// Config holds dispatcher configuration.
type Config struct {
	Workers   int // Number of concurrent delivery workers
	QueueSize int
	Client    *http.Client
	Now       func() time.Time
	// UserAgent defaults to the UserAgent constant.
	UserAgent string
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   3,
		QueueSize: 100,
	}
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(db *sql.DB, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Client == nil {
		cfg.Client = httpClient
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		db:      db,
		queries: store.New(db),
		logger:  logger,
		client:  cfg.Client,
		agent:   cfg.UserAgent,
		now:     cfg.Now,
		queue:   make(chan int64, cfg.QueueSize),
		workers: cfg.Workers,
		done:    make(chan struct{}),
	}
}

// Start starts the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting webhook dispatcher", "workers", d.workers)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish. Queued
// deliveries stay pending and are picked up by RetryDue.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping webhook dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("webhook dispatcher stopped")
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("webhook worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			d.logger.Debug("webhook worker stopping", "worker_id", id)
			return
		case <-ctx.Done():
			d.logger.Debug("webhook worker context cancelled", "worker_id", id)
			return
		case deliveryID := <-d.queue:
			if _, err := d.Deliver(ctx, deliveryID); err != nil {
				d.logger.Error("webhook delivery failed", "worker_id", id, "delivery_id", deliveryID, "error", err)
			}
		}
	}
}

// Dispatch records a delivery for every active webhook of the event's
// website subscribed to its type, and queues them.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) error {
	webhooks, err := d.queries.ListWebhooksForEvent(ctx, event.WebsiteID, event.Type)
	if err != nil {
		return fmt.Errorf("listing webhooks for %s: %w", event.Type, err)
	}
	if len(webhooks) == 0 {
		d.logger.Debug("no webhooks subscribed to event", "event_type", event.Type, "website_id", event.WebsiteID)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", event.Type, err)
	}

	for _, wh := range webhooks {
		// The SQL filter uses LIKE.
		if !HasEvent(wh.Events, event.Type) {
			continue
		}
		delivery, err := d.record(ctx, wh.ID, event.Type, payload)
		if err != nil {
			d.logger.Error("failed to create delivery record",
				"error", err, "webhook_id", wh.ID, "event_type", event.Type)
			continue
		}
		d.logger.Info("webhook delivery created",
			"delivery_id", delivery.ID,
			"webhook_id", wh.ID,
			"webhook_name", wh.Name,
			"event_type", event.Type)
		d.enqueue(delivery.ID)
	}
	return nil
}

// DispatchEvent dispatches an event with the given type and data.
func (d *Dispatcher) DispatchEvent(ctx context.Context, websiteID int64, eventType string, data any) error {
	return d.Dispatch(ctx, NewEvent(websiteID, eventType, data))
}

// Test sends a test event to one webhook, whether active or not, and
// returns the delivery after the attempt.
func (d *Dispatcher) Test(ctx context.Context, webhookID int64) (store.WebhookDelivery, error) {
	wh, err := d.queries.GetWebhook(ctx, webhookID)
	if err != nil {
		return store.WebhookDelivery{}, err
	}
	event := NewEvent(wh.WebsiteID, EventTest, TestEventData{
		Message:   "Test delivery",
		WebhookID: wh.ID,
		Timestamp: d.now().UTC(),
	})
	payload, err := json.Marshal(event)
	if err != nil {
		return store.WebhookDelivery{}, err
	}
	delivery, err := d.record(ctx, wh.ID, EventTest, payload)
	if err != nil {
		return store.WebhookDelivery{}, err
	}
	return d.Deliver(ctx, delivery.ID)
}

func (d *Dispatcher) record(ctx context.Context, webhookID int64, event string, payload []byte) (store.WebhookDelivery, error) {
	now := d.now().UTC()
	return d.queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
		WebhookID: webhookID,
		Event:     event,
		Payload:   string(payload),
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (d *Dispatcher) enqueue(deliveryID int64) {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()
	if !running {
		d.logger.Debug("dispatcher not running, delivery left pending", "delivery_id", deliveryID)
		return
	}
	select {
	case d.queue <- deliveryID:
		d.logger.Debug("delivery queued", "delivery_id", deliveryID)
	default:
		d.logger.Warn("delivery queue full, delivery will be retried later", "delivery_id", deliveryID)
	}
}

// RetryDue attempts every pending delivery whose retry time passed and
// returns how many were attempted.
func (d *Dispatcher) RetryDue(ctx context.Context) (int, error) {
	now := d.now().UTC()
	due, err := d.queries.ListDueDeliveries(ctx, now, now.Add(-ClaimTimeout), retryBatch)
	if err != nil {
		return 0, fmt.Errorf("listing due deliveries: %w", err)
	}
	attempted := 0
	for _, delivery := range due {
		if ctx.Err() != nil {
			return attempted, ctx.Err()
		}
		if _, err := d.Deliver(ctx, delivery.ID); err != nil {
			d.logger.Error("webhook retry failed", "delivery_id", delivery.ID, "error", err)
			continue
		}
		attempted++
	}
	return attempted, nil
}

// Redeliver revives a dead delivery and attempts it again. Deliveries
// that are not dead are returned unchanged.
func (d *Dispatcher) Redeliver(ctx context.Context, deliveryID int64) (store.WebhookDelivery, error) {
	reset, err := d.queries.ResetDeliveryForRetry(ctx, deliveryID, d.now().UTC())
	if err != nil {
		return store.WebhookDelivery{}, fmt.Errorf("resetting delivery %d: %w", deliveryID, err)
	}
	if !reset {
		return d.queries.GetWebhookDelivery(ctx, deliveryID)
	}
	return d.Deliver(ctx, deliveryID)
}

// Prune deletes finished deliveries older than the retention.
func (d *Dispatcher) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	return d.queries.DeleteOldDeliveries(ctx, d.now().UTC().Add(-olderThan))
}

// GenerateSecret returns a random signing secret.
func GenerateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateSignature generates an HMAC-SHA256 signature for the payload.
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an HMAC-SHA256 signature.
func VerifySignature(payload []byte, signature, secret string) bool {
	expectedSig := GenerateSignature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expectedSig))
}

// ParseEvents decodes the JSON event list of a webhook row.
func ParseEvents(raw string) []string {
	var events []string
	if raw == "" || raw == "[]" {
		return events
	}
	_ = json.Unmarshal([]byte(raw), &events)
	return events
}

// HasEvent reports whether the JSON event list raw contains event.
func HasEvent(raw, event string) bool {
	return slices.Contains(ParseEvents(raw), event)
}

// ParseHeaders decodes the JSON header map of a webhook row.
func ParseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	if raw == "" || raw == "{}" {
		return headers
	}
	_ = json.Unmarshal([]byte(raw), &headers)
	return headers
}
