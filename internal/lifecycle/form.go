// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package lifecycle

import (
	"context"
	"encoding/json"
	"net/mail"
	"regexp"
	"slices"
	"strings"

	"github.com/olegiv/mcms-go/internal/model"
	"github.com/olegiv/mcms-go/internal/position"
	"github.com/olegiv/mcms-go/internal/store"
)

// FormManager handles contact forms.
type FormManager struct{ s *Service }

func (m *FormManager) EntityType() string { return model.EntityForm }

func (m *FormManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityForm, ev, "form.validate", 10, m.validate)
	}
}

func (m *FormManager) validate(ctx context.Context, q *store.Queries, f *store.Form) error {
	verr := &ValidationError{}
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		verr.Add("name", "is required")
	}
	receivers, err := NormalizeReceivers(f.Receivers)
	if err != nil {
		verr.Add("receivers", err.Error())
	}
	f.Receivers = receivers
	f.ThanksMessage = m.s.renderer.Sanitize(f.ThanksMessage)
	if err := verr.Err(); err != nil {
		return err
	}
	slug, err := uniqueSlug(ctx, q, store.FormSlugs, f.WebsiteID, f.Slug, f.Name, f.ID)
	f.Slug = slug
	return err
}

var receiverSplit = regexp.MustCompile(`[,;\s]+`)

// NormalizeReceivers parses a comma, semicolon or whitespace separated
// address list into lowercase, deduplicated, comma joined form.
func NormalizeReceivers(raw string) (string, error) {
	var out []string
	for _, part := range receiverSplit.Split(strings.TrimSpace(raw), -1) {
		if part == "" {
			continue
		}
		addr, err := mail.ParseAddress(part)
		if err != nil {
			return "", &receiverError{part}
		}
		email := strings.ToLower(addr.Address)
		if !slices.Contains(out, email) {
			out = append(out, email)
		}
	}
	return strings.Join(out, ","), nil
}

type receiverError struct{ addr string }

func (e *receiverError) Error() string { return e.addr + " is not a valid email address" }

// Create inserts a form.
func (m *FormManager) Create(ctx context.Context, f store.Form) (store.Form, error) {
	err := m.s.write(ctx, model.EntityForm, func(q *store.Queries) (int64, error) {
		return f.WebsiteID, m.s.persist(ctx, q, model.EntityForm, &f, func() error {
			now := m.s.nowUTC()
			saved, err := q.CreateForm(ctx, store.CreateFormParams{
				WebsiteID: f.WebsiteID, Slug: f.Slug, Name: f.Name, Receivers: f.Receivers,
				ThanksMessage: f.ThanksMessage, IsOnline: f.IsOnline, CreatedAt: now, UpdatedAt: now,
			})
			f = saved
			return err
		})
	})
	return f, err
}

// Update saves a form.
func (m *FormManager) Update(ctx context.Context, f store.Form) (store.Form, error) {
	err := m.s.write(ctx, model.EntityForm, func(q *store.Queries) (int64, error) {
		current, err := q.GetForm(ctx, f.ID)
		if err != nil {
			return 0, err
		}
		f.WebsiteID = current.WebsiteID
		return f.WebsiteID, m.s.update(ctx, q, model.EntityForm, &f, func() error {
			saved, err := q.UpdateForm(ctx, store.UpdateFormParams{
				Slug: f.Slug, Name: f.Name, Receivers: f.Receivers, ThanksMessage: f.ThanksMessage,
				IsOnline: f.IsOnline, UpdatedAt: m.s.nowUTC(), ID: f.ID,
			})
			f = saved
			return err
		})
	})
	return f, err
}

// Delete removes a form and its fields.
func (m *FormManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityForm, func(q *store.Queries) (int64, error) {
		f, err := q.GetForm(ctx, id)
		if err != nil {
			return 0, err
		}
		return f.WebsiteID, m.s.remove(ctx, q, model.EntityForm, &f, func() error {
			return q.DeleteForm(ctx, id)
		})
	})
}

// FormFieldRecord is the subject of form field hooks.
type FormFieldRecord struct {
	store.FormField
	Target int64
}

// FormFieldManager handles the fields of a form.
type FormFieldManager struct{ s *Service }

func (m *FormFieldManager) EntityType() string { return model.EntityFormField }

func (m *FormFieldManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityFormField, ev, "form_field.validate", 10, m.validate)
	}
	On(r, model.EntityFormField, PrePersist, "form_field.position", 20, func(ctx context.Context, q *store.Queries, f *FormFieldRecord) error {
		pos, err := position.Next(ctx, q, store.FormFieldFamily, f.FormID)
		f.Position = pos
		return err
	})
	On(r, model.EntityFormField, PostPersist, "form_field.insert_at", 10, func(ctx context.Context, q *store.Queries, f *FormFieldRecord) error {
		_, err := position.Insert(ctx, q, store.FormFieldFamily, f.ID, f.Target, f.FormID)
		return err
	})
	On(r, model.EntityFormField, PostRemove, "form_field.rescan", 10, func(ctx context.Context, q *store.Queries, f *FormFieldRecord) error {
		_, err := position.Rescan(ctx, q, store.FormFieldFamily, f.FormID)
		return err
	})
}

func (m *FormFieldManager) validate(ctx context.Context, q *store.Queries, f *FormFieldRecord) error {
	verr := &ValidationError{}
	f.Label = strings.TrimSpace(f.Label)
	if f.Label == "" {
		verr.Add("label", "is required")
	}
	if f.FieldType == "" {
		f.FieldType = model.FieldText
	}
	if !slices.Contains(model.FormFieldTypes(), f.FieldType) {
		verr.Add("field_type", "is not a known field type")
	}
	choices := NormalizeChoices(f.Choices)
	if f.FieldType == model.FieldChoice && len(choices) == 0 {
		verr.Add("choices", "a choice field needs at least one choice")
	}
	if err := verr.Err(); err != nil {
		return err
	}
	encoded, err := json.Marshal(choices)
	if err != nil {
		return err
	}
	f.Choices = string(encoded)

	slug, err := uniqueSlug(ctx, q, store.FormFieldSlugs, f.FormID, f.Slug, f.Label, f.ID)
	f.Slug = slug
	return err
}

// NormalizeChoices accepts a JSON array of strings or one choice per line
// and returns the trimmed, non-empty, deduplicated choices.
func NormalizeChoices(raw string) []string {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		items = strings.Split(raw, "\n")
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" && !slices.Contains(out, it) {
			out = append(out, it)
		}
	}
	return out
}

func formWebsite(ctx context.Context, q *store.Queries, formID int64) (int64, error) {
	f, err := q.GetForm(ctx, formID)
	if err != nil {
		return 0, err
	}
	return f.WebsiteID, nil
}

// Create appends a field to a form.
func (m *FormFieldManager) Create(ctx context.Context, rec FormFieldRecord) (store.FormField, error) {
	err := m.s.write(ctx, model.EntityFormField, func(q *store.Queries) (int64, error) {
		websiteID, err := formWebsite(ctx, q, rec.FormID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.persist(ctx, q, model.EntityFormField, &rec, func() error {
			saved, err := q.CreateFormField(ctx, store.CreateFormFieldParams{
				FormID: rec.FormID, Slug: rec.Slug, FieldType: rec.FieldType, Label: rec.Label,
				Placeholder: rec.Placeholder, IsRequired: rec.IsRequired, Choices: rec.Choices,
				Position: rec.Position,
			})
			rec.FormField = saved
			return err
		})
	})
	return rec.FormField, err
}

// Update saves a field.
func (m *FormFieldManager) Update(ctx context.Context, f store.FormField) (store.FormField, error) {
	rec := FormFieldRecord{FormField: f}
	err := m.s.write(ctx, model.EntityFormField, func(q *store.Queries) (int64, error) {
		current, err := q.GetFormField(ctx, f.ID)
		if err != nil {
			return 0, err
		}
		rec.FormID = current.FormID
		websiteID, err := formWebsite(ctx, q, current.FormID)
		if err != nil {
			return 0, err
		}
		return websiteID, m.s.update(ctx, q, model.EntityFormField, &rec, func() error {
			saved, err := q.UpdateFormField(ctx, store.UpdateFormFieldParams{
				Slug: rec.Slug, FieldType: rec.FieldType, Label: rec.Label, Placeholder: rec.Placeholder,
				IsRequired: rec.IsRequired, Choices: rec.Choices, ID: rec.ID,
			})
			rec.FormField = saved
			return err
		})
	})
	return rec.FormField, err
}

// Move places a field at target.
func (m *FormFieldManager) Move(ctx context.Context, id, target int64) error {
	return m.s.write(ctx, model.EntityFormField, func(q *store.Queries) (int64, error) {
		f, err := q.GetFormField(ctx, id)
		if err != nil {
			return 0, err
		}
		if _, err := position.Move(ctx, q, store.FormFieldFamily, id, target, f.FormID); err != nil {
			return 0, err
		}
		return formWebsite(ctx, q, f.FormID)
	})
}

// Delete removes a field.
func (m *FormFieldManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityFormField, func(q *store.Queries) (int64, error) {
		f, err := q.GetFormField(ctx, id)
		if err != nil {
			return 0, err
		}
		websiteID, err := formWebsite(ctx, q, f.FormID)
		if err != nil {
			return 0, err
		}
		rec := FormFieldRecord{FormField: f}
		return websiteID, m.s.remove(ctx, q, model.EntityFormField, &rec, func() error {
			return q.DeleteFormField(ctx, id)
		})
	})
}

var externalListID = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

// NewsletterManager handles newsletters and their subscriptions.
type NewsletterManager struct{ s *Service }

func (m *NewsletterManager) EntityType() string { return model.EntityNewsletter }

func (m *NewsletterManager) Register(r *Registry) {
	for _, ev := range []Event{PrePersist, PreUpdate} {
		On(r, model.EntityNewsletter, ev, "newsletter.validate", 10, m.validate)
	}
}

func (m *NewsletterManager) validate(ctx context.Context, q *store.Queries, n *store.Newsletter) error {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return Invalid("name", "is required")
	}
	n.ExternalListID = strings.TrimSpace(n.ExternalListID)
	if !externalListID.MatchString(n.ExternalListID) {
		return Invalid("external_list_id", "may only hold letters, digits, dashes and underscores")
	}
	slug, err := uniqueSlug(ctx, q, store.NewsletterSlugs, n.WebsiteID, n.Slug, n.Name, n.ID)
	n.Slug = slug
	return err
}

// Create inserts a newsletter.
func (m *NewsletterManager) Create(ctx context.Context, n store.Newsletter) (store.Newsletter, error) {
	err := m.s.write(ctx, model.EntityNewsletter, func(q *store.Queries) (int64, error) {
		return n.WebsiteID, m.s.persist(ctx, q, model.EntityNewsletter, &n, func() error {
			now := m.s.nowUTC()
			saved, err := q.CreateNewsletter(ctx, store.CreateNewsletterParams{
				WebsiteID: n.WebsiteID, Slug: n.Slug, Name: n.Name, ExternalListID: n.ExternalListID,
				CreatedAt: now, UpdatedAt: now,
			})
			n = saved
			return err
		})
	})
	return n, err
}

// Update saves a newsletter.
func (m *NewsletterManager) Update(ctx context.Context, n store.Newsletter) (store.Newsletter, error) {
	err := m.s.write(ctx, model.EntityNewsletter, func(q *store.Queries) (int64, error) {
		current, err := q.GetNewsletter(ctx, n.ID)
		if err != nil {
			return 0, err
		}
		n.WebsiteID = current.WebsiteID
		return n.WebsiteID, m.s.update(ctx, q, model.EntityNewsletter, &n, func() error {
			saved, err := q.UpdateNewsletter(ctx, store.UpdateNewsletterParams{
				Slug: n.Slug, Name: n.Name, ExternalListID: n.ExternalListID, UpdatedAt: m.s.nowUTC(), ID: n.ID,
			})
			n = saved
			return err
		})
	})
	return n, err
}

// Delete removes a newsletter and its subscribers.
func (m *NewsletterManager) Delete(ctx context.Context, id int64) error {
	return m.s.write(ctx, model.EntityNewsletter, func(q *store.Queries) (int64, error) {
		n, err := q.GetNewsletter(ctx, id)
		if err != nil {
			return 0, err
		}
		return n.WebsiteID, m.s.remove(ctx, q, model.EntityNewsletter, &n, func() error {
			return q.DeleteNewsletter(ctx, id)
		})
	})
}

// Subscribe adds email to a newsletter once. created is false when the
// address was already subscribed.
func (m *NewsletterManager) Subscribe(ctx context.Context, newsletterID int64, email, locale string) (created bool, err error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return false, Invalid("email", "is not a valid email address")
	}
	normalized := strings.ToLower(addr.Address)

	err = store.RunInTx(ctx, m.s.db, func(q *store.Queries) error {
		n, err := q.AddNewsletterEmail(ctx, newsletterID, normalized, locale, m.s.nowUTC())
		created = n > 0
		return err
	})
	if err == nil && created {
		m.s.logger.Info("newsletter subscription", "newsletter_id", newsletterID, "locale", locale)
	}
	return created, err
}
