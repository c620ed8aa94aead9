// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrJobNotFound is returned for an unknown source/name pair.
var ErrJobNotFound = errors.New("job not found")

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// registeredJob holds metadata about a registered cron job.
type registeredJob struct {
	source          string
	name            string
	description     string
	defaultSchedule string
	schedule        string // effective schedule (override or default)
	cronInstance    *cron.Cron
	entryID         cron.EntryID
	jobFunc         func()
	triggerFunc     func() error // nil if manual trigger not allowed
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Source          string    `json:"source"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DefaultSchedule string    `json:"default_schedule"`
	Schedule        string    `json:"schedule"`
	IsOverridden    bool      `json:"is_overridden"`
	LastRun         time.Time `json:"last_run"`
	NextRun         time.Time `json:"next_run"`
	CanTrigger      bool      `json:"can_trigger"`
}

// Registry tracks the scheduled jobs. Schedule overrides come from
// configuration and live for the process lifetime.
type Registry struct {
	logger    *slog.Logger
	mu        sync.RWMutex
	jobs      map[string]*registeredJob // key: "source:name"
	overrides map[string]string         // key: job name
}

// NewRegistry creates a registry with the given schedule overrides.
func NewRegistry(overrides map[string]string, logger *slog.Logger) *Registry {
	r := &Registry{
		logger:    logger,
		jobs:      make(map[string]*registeredJob),
		overrides: make(map[string]string, len(overrides)),
	}
	for name, schedule := range overrides {
		if _, err := scheduleParser.Parse(schedule); err != nil {
			logger.Warn("ignoring invalid schedule override", "job", name, "schedule", schedule, "error", err)
			continue
		}
		r.overrides[name] = schedule
	}
	return r
}

// EffectiveSchedule returns the override schedule if one exists, otherwise
// the default. Call it before cron.AddFunc.
func (r *Registry) EffectiveSchedule(name, defaultSchedule string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if override := r.overrides[name]; override != "" {
		return override
	}
	return defaultSchedule
}

// Register records a job after it has been added to a cron instance.
func (r *Registry) Register(source, name, description, defaultSchedule string, cronInst *cron.Cron, entryID cron.EntryID, jobFunc func(), triggerFunc func() error) {
	effectiveSchedule := r.EffectiveSchedule(name, defaultSchedule)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[jobKey(source, name)] = &registeredJob{
		source:          source,
		name:            name,
		description:     description,
		defaultSchedule: defaultSchedule,
		schedule:        effectiveSchedule,
		cronInstance:    cronInst,
		entryID:         entryID,
		jobFunc:         jobFunc,
		triggerFunc:     triggerFunc,
	}

	r.logger.Debug("registered scheduled job", "source", source, "name", name, "schedule", effectiveSchedule)
}

func jobKey(source, name string) string {
	return source + ":" + name
}

// List returns all registered jobs sorted by source then name.
func (r *Registry) List() []JobInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]JobInfo, 0, len(r.jobs))
	for _, job := range r.jobs {
		info := JobInfo{
			Source:          job.source,
			Name:            job.name,
			Description:     job.description,
			DefaultSchedule: job.defaultSchedule,
			Schedule:        job.schedule,
			IsOverridden:    job.schedule != job.defaultSchedule,
			CanTrigger:      job.triggerFunc != nil,
		}
		if job.cronInstance != nil {
			entry := job.cronInstance.Entry(job.entryID)
			info.NextRun = entry.Next
			info.LastRun = entry.Prev
		}
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Source != result[j].Source {
			return result[i].Source < result[j].Source
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// TriggerNow runs a job immediately.
func (r *Registry) TriggerNow(source, name string) error {
	r.mu.RLock()
	job, ok := r.jobs[jobKey(source, name)]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s:%s", ErrJobNotFound, source, name)
	}
	if job.triggerFunc == nil {
		return fmt.Errorf("manual trigger not available for: %s:%s", source, name)
	}

	r.logger.Info("manually triggering job", "source", source, "name", name)
	return job.triggerFunc()
}

// UpdateSchedule replaces the cron entry of a job with one on newSchedule.
func (r *Registry) UpdateSchedule(source, name, newSchedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobKey(source, name)]
	if !ok {
		return fmt.Errorf("%w: %s:%s", ErrJobNotFound, source, name)
	}
	if job.cronInstance == nil || job.jobFunc == nil {
		return fmt.Errorf("job cannot be rescheduled: %s:%s", source, name)
	}
	if _, err := scheduleParser.Parse(newSchedule); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", newSchedule, err)
	}

	job.cronInstance.Remove(job.entryID)
	newEntryID, err := job.cronInstance.AddFunc(newSchedule, job.jobFunc)
	if err != nil {
		fallbackID, fallbackErr := job.cronInstance.AddFunc(job.schedule, job.jobFunc)
		if fallbackErr != nil {
			return fmt.Errorf("critical: failed to restore schedule after update failure: %w (original: %w)", fallbackErr, err)
		}
		job.entryID = fallbackID
		return fmt.Errorf("failed to apply new schedule: %w", err)
	}

	job.entryID = newEntryID
	job.schedule = newSchedule
	r.overrides[name] = newSchedule

	r.logger.Info("updated job schedule", "source", source, "name", name, "schedule", newSchedule)
	return nil
}

// ResetSchedule restores the default schedule of a job.
func (r *Registry) ResetSchedule(source, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[jobKey(source, name)]
	if !ok {
		return fmt.Errorf("%w: %s:%s", ErrJobNotFound, source, name)
	}
	if job.schedule == job.defaultSchedule {
		return nil
	}
	if job.cronInstance == nil || job.jobFunc == nil {
		return fmt.Errorf("job cannot be rescheduled: %s:%s", source, name)
	}

	job.cronInstance.Remove(job.entryID)
	newEntryID, err := job.cronInstance.AddFunc(job.defaultSchedule, job.jobFunc)
	if err != nil {
		return fmt.Errorf("failed to restore default schedule: %w", err)
	}
	job.entryID = newEntryID
	job.schedule = job.defaultSchedule
	delete(r.overrides, name)

	r.logger.Info("reset job schedule to default", "source", source, "name", name, "schedule", job.defaultSchedule)
	return nil
}

// Unregister removes a job and its cron entry.
func (r *Registry) Unregister(source, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := jobKey(source, name)
	job, ok := r.jobs[key]
	if !ok {
		return
	}
	if job.cronInstance != nil {
		job.cronInstance.Remove(job.entryID)
	}
	delete(r.jobs, key)

	r.logger.Debug("unregistered scheduled job", "source", source, "name", name)
}
