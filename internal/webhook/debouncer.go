// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/mcms-go/internal/model"
)

// ErrDebouncerStopped is returned for events queued after Stop.
var ErrDebouncerStopped = errors.New("webhook debouncer stopped")

// Dispatch target of the debouncer.
type eventDispatcher interface {
	Dispatch(ctx context.Context, event *Event) error
}

// DebounceConfig holds debouncer configuration.
type DebounceConfig struct {
	// Interval is the quiet time after the last event of a key.
	Interval time.Duration
	// MaxWait bounds how long a key can be held back.
	MaxWait time.Duration
}

// DefaultDebounceConfig returns default debounce configuration.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Interval: 1 * time.Second,
		MaxWait:  5 * time.Second,
	}
}

type pendingEvent struct {
	event     *Event
	timer     *time.Timer
	firstSeen time.Time
}

// Debouncer coalesces bursts of events with the same key into the last
// one, so a page saved five times in a row produces one delivery.
type Debouncer struct {
	dispatcher eventDispatcher
	config     DebounceConfig
	logger     *slog.Logger
	onError    func(event *Event, err error)
	pending    map[string]*pendingEvent
	stopped    bool
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewDebouncer creates a new event debouncer in front of dispatcher.
func NewDebouncer(dispatcher *Dispatcher, config DebounceConfig) *Debouncer {
	d := newDebouncer(dispatcher, config)
	d.logger = dispatcher.logger
	return d
}

func newDebouncer(dispatcher eventDispatcher, config DebounceConfig) *Debouncer {
	if config.Interval <= 0 {
		config = DefaultDebounceConfig()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Debouncer{
		dispatcher: dispatcher,
		config:     config,
		logger:     slog.Default(),
		pending:    make(map[string]*pendingEvent),
		ctx:        ctx,
		cancel:     cancel,
	}
	d.onError = func(event *Event, err error) {
		d.logger.Warn("failed to dispatch debounced event",
			"category", model.EventCategorySystem, "error", err, "event_type", event.Type, "website_id", event.WebsiteID)
	}
	return d
}

// eventKey groups events of one website. Change events are further split
// by entity type.
func eventKey(event *Event) string {
	switch data := event.Data.(type) {
	case ChangeEventData:
		return fmt.Sprintf("%s:%d:%s", event.Type, event.WebsiteID, data.Entity)
	case *ChangeEventData:
		return fmt.Sprintf("%s:%d:%s", event.Type, event.WebsiteID, data.Entity)
	}
	return fmt.Sprintf("%s:%d", event.Type, event.WebsiteID)
}

// Dispatch holds event until its key has been quiet for the interval.
// A newer event with the same key replaces the held one.
func (d *Debouncer) Dispatch(_ context.Context, event *Event) error {
	key := eventKey(event)
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return ErrDebouncerStopped
	}
	if existing, ok := d.pending[key]; ok {
		existing.event = event
		if now.Sub(existing.firstSeen) >= d.config.MaxWait {
			d.dispatchLocked(key)
			return nil
		}
		existing.timer.Reset(d.config.Interval)
		return nil
	}

	pe := &pendingEvent{event: event, firstSeen: now}
	pe.timer = time.AfterFunc(d.config.Interval, func() {
		d.mu.Lock()
		d.dispatchLocked(key)
		d.mu.Unlock()
	})
	d.pending[key] = pe
	return nil
}

// DispatchEvent queues an event with the given type and data.
func (d *Debouncer) DispatchEvent(ctx context.Context, websiteID int64, eventType string, data any) error {
	return d.Dispatch(ctx, NewEvent(websiteID, eventType, data))
}

// ContentChanged queues a change event for an entity type of a website.
func (d *Debouncer) ContentChanged(ctx context.Context, entity string, websiteID int64) {
	if err := d.DispatchEvent(ctx, websiteID, EventContentChanged, ChangeEventData{Entity: entity}); err != nil {
		d.logger.Warn("failed to queue content change",
			"category", model.EventCategoryContent, "error", err, "entity", entity, "website_id", websiteID)
	}
}

// dispatchLocked must be called with the lock held.
func (d *Debouncer) dispatchLocked(key string) {
	pe, ok := d.pending[key]
	if !ok {
		return
	}
	pe.timer.Stop()
	delete(d.pending, key)

	d.wg.Add(1)
	go func(event *Event) {
		defer d.wg.Done()
		if err := d.dispatcher.Dispatch(d.ctx, event); err != nil {
			d.onError(event, err)
		}
	}(pe.event)
}

// Flush dispatches every held event now.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key := range d.pending {
		d.dispatchLocked(key)
	}
}

// Stop flushes held events and waits for their dispatch. Later events
// are rejected.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key := range d.pending {
		d.dispatchLocked(key)
	}
	d.mu.Unlock()
	d.wg.Wait()
	d.cancel()
}

// PendingCount returns the number of held events.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
