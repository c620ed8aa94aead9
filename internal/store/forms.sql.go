// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const formColumns = `id, website_id, slug, name, receivers, thanks_message, is_online, created_at, updated_at`

func scanForm(r rowScanner) (Form, error) {
	var i Form
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Name, &i.Receivers, &i.ThanksMessage, &i.IsOnline, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createForm = `-- name: CreateForm :one
INSERT INTO forms (website_id, slug, name, receivers, thanks_message, is_online, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + formColumns

type CreateFormParams struct {
	WebsiteID     int64     `json:"website_id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Receivers     string    `json:"receivers"`
	ThanksMessage string    `json:"thanks_message"`
	IsOnline      bool      `json:"is_online"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (q *Queries) CreateForm(ctx context.Context, arg CreateFormParams) (Form, error) {
	row := q.db.QueryRowContext(ctx, createForm, arg.WebsiteID, arg.Slug, arg.Name, arg.Receivers, arg.ThanksMessage,
		arg.IsOnline, arg.CreatedAt, arg.UpdatedAt)
	return scanForm(row)
}

const getForm = `-- name: GetForm :one
SELECT ` + formColumns + ` FROM forms WHERE id = ?`

func (q *Queries) GetForm(ctx context.Context, id int64) (Form, error) {
	return scanForm(q.db.QueryRowContext(ctx, getForm, id))
}

const listForms = `-- name: ListForms :many
SELECT ` + formColumns + ` FROM forms WHERE website_id = ? ORDER BY name, id`

func (q *Queries) ListForms(ctx context.Context, websiteID int64) ([]Form, error) {
	rows, err := q.db.QueryContext(ctx, listForms, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanForm)
}

const updateForm = `-- name: UpdateForm :one
UPDATE forms SET slug = ?, name = ?, receivers = ?, thanks_message = ?, is_online = ?, updated_at = ?
WHERE id = ?
RETURNING ` + formColumns

type UpdateFormParams struct {
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	Receivers     string    `json:"receivers"`
	ThanksMessage string    `json:"thanks_message"`
	IsOnline      bool      `json:"is_online"`
	UpdatedAt     time.Time `json:"updated_at"`
	ID            int64     `json:"id"`
}

func (q *Queries) UpdateForm(ctx context.Context, arg UpdateFormParams) (Form, error) {
	row := q.db.QueryRowContext(ctx, updateForm, arg.Slug, arg.Name, arg.Receivers, arg.ThanksMessage, arg.IsOnline, arg.UpdatedAt, arg.ID)
	return scanForm(row)
}

const deleteForm = `-- name: DeleteForm :exec
DELETE FROM forms WHERE id = ?`

func (q *Queries) DeleteForm(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteForm, id)
	return err
}

// Form fields

const formFieldColumns = `id, form_id, slug, field_type, label, placeholder, is_required, choices, position`

func scanFormField(r rowScanner) (FormField, error) {
	var i FormField
	err := r.Scan(&i.ID, &i.FormID, &i.Slug, &i.FieldType, &i.Label, &i.Placeholder, &i.IsRequired, &i.Choices, &i.Position)
	return i, err
}

const createFormField = `-- name: CreateFormField :one
INSERT INTO form_fields (form_id, slug, field_type, label, placeholder, is_required, choices, position)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + formFieldColumns

type CreateFormFieldParams struct {
	FormID      int64  `json:"form_id"`
	Slug        string `json:"slug"`
	FieldType   string `json:"field_type"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	IsRequired  bool   `json:"is_required"`
	Choices     string `json:"choices"`
	Position    int64  `json:"position"`
}

func (q *Queries) CreateFormField(ctx context.Context, arg CreateFormFieldParams) (FormField, error) {
	row := q.db.QueryRowContext(ctx, createFormField, arg.FormID, arg.Slug, arg.FieldType, arg.Label, arg.Placeholder,
		arg.IsRequired, arg.Choices, arg.Position)
	return scanFormField(row)
}

const getFormField = `-- name: GetFormField :one
SELECT ` + formFieldColumns + ` FROM form_fields WHERE id = ?`

func (q *Queries) GetFormField(ctx context.Context, id int64) (FormField, error) {
	return scanFormField(q.db.QueryRowContext(ctx, getFormField, id))
}

const listFormFields = `-- name: ListFormFields :many
SELECT ` + formFieldColumns + ` FROM form_fields WHERE form_id = ? ORDER BY position, id`

func (q *Queries) ListFormFields(ctx context.Context, formID int64) ([]FormField, error) {
	rows, err := q.db.QueryContext(ctx, listFormFields, formID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFormField)
}

const updateFormField = `-- name: UpdateFormField :one
UPDATE form_fields SET slug = ?, field_type = ?, label = ?, placeholder = ?, is_required = ?, choices = ?
WHERE id = ?
RETURNING ` + formFieldColumns

type UpdateFormFieldParams struct {
	Slug        string `json:"slug"`
	FieldType   string `json:"field_type"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	IsRequired  bool   `json:"is_required"`
	Choices     string `json:"choices"`
	ID          int64  `json:"id"`
}

func (q *Queries) UpdateFormField(ctx context.Context, arg UpdateFormFieldParams) (FormField, error) {
	row := q.db.QueryRowContext(ctx, updateFormField, arg.Slug, arg.FieldType, arg.Label, arg.Placeholder,
		arg.IsRequired, arg.Choices, arg.ID)
	return scanFormField(row)
}

const deleteFormField = `-- name: DeleteFormField :exec
DELETE FROM form_fields WHERE id = ?`

func (q *Queries) DeleteFormField(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteFormField, id)
	return err
}

// Newsletters

const newsletterColumns = `id, website_id, slug, name, external_list_id, created_at, updated_at`

func scanNewsletter(r rowScanner) (Newsletter, error) {
	var i Newsletter
	err := r.Scan(&i.ID, &i.WebsiteID, &i.Slug, &i.Name, &i.ExternalListID, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const createNewsletter = `-- name: CreateNewsletter :one
INSERT INTO newsletters (website_id, slug, name, external_list_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + newsletterColumns

type CreateNewsletterParams struct {
	WebsiteID      int64     `json:"website_id"`
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	ExternalListID string    `json:"external_list_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (q *Queries) CreateNewsletter(ctx context.Context, arg CreateNewsletterParams) (Newsletter, error) {
	row := q.db.QueryRowContext(ctx, createNewsletter, arg.WebsiteID, arg.Slug, arg.Name, arg.ExternalListID, arg.CreatedAt, arg.UpdatedAt)
	return scanNewsletter(row)
}

const getNewsletter = `-- name: GetNewsletter :one
SELECT ` + newsletterColumns + ` FROM newsletters WHERE id = ?`

func (q *Queries) GetNewsletter(ctx context.Context, id int64) (Newsletter, error) {
	return scanNewsletter(q.db.QueryRowContext(ctx, getNewsletter, id))
}

const getNewsletterBySlug = `-- name: GetNewsletterBySlug :one
SELECT ` + newsletterColumns + ` FROM newsletters WHERE website_id = ? AND slug = ?`

func (q *Queries) GetNewsletterBySlug(ctx context.Context, websiteID int64, slug string) (Newsletter, error) {
	return scanNewsletter(q.db.QueryRowContext(ctx, getNewsletterBySlug, websiteID, slug))
}

const listNewsletters = `-- name: ListNewsletters :many
SELECT ` + newsletterColumns + ` FROM newsletters WHERE website_id = ? ORDER BY name, id`

func (q *Queries) ListNewsletters(ctx context.Context, websiteID int64) ([]Newsletter, error) {
	rows, err := q.db.QueryContext(ctx, listNewsletters, websiteID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNewsletter)
}

const updateNewsletter = `-- name: UpdateNewsletter :one
UPDATE newsletters SET slug = ?, name = ?, external_list_id = ?, updated_at = ? WHERE id = ?
RETURNING ` + newsletterColumns

type UpdateNewsletterParams struct {
	Slug           string    `json:"slug"`
	Name           string    `json:"name"`
	ExternalListID string    `json:"external_list_id"`
	UpdatedAt      time.Time `json:"updated_at"`
	ID             int64     `json:"id"`
}

func (q *Queries) UpdateNewsletter(ctx context.Context, arg UpdateNewsletterParams) (Newsletter, error) {
	row := q.db.QueryRowContext(ctx, updateNewsletter, arg.Slug, arg.Name, arg.ExternalListID, arg.UpdatedAt, arg.ID)
	return scanNewsletter(row)
}

const deleteNewsletter = `-- name: DeleteNewsletter :exec
DELETE FROM newsletters WHERE id = ?`

func (q *Queries) DeleteNewsletter(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteNewsletter, id)
	return err
}

const addNewsletterEmail = `-- name: AddNewsletterEmail :execrows
INSERT INTO newsletter_emails (newsletter_id, email, locale, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (newsletter_id, email) DO NOTHING`

// AddNewsletterEmail returns 0 when the address was already subscribed.
func (q *Queries) AddNewsletterEmail(ctx context.Context, newsletterID int64, email, locale string, createdAt time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, addNewsletterEmail, newsletterID, email, locale, createdAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listNewsletterEmails = `-- name: ListNewsletterEmails :many
SELECT id, newsletter_id, email, locale, created_at FROM newsletter_emails WHERE newsletter_id = ? ORDER BY id`

func (q *Queries) ListNewsletterEmails(ctx context.Context, newsletterID int64) ([]NewsletterEmail, error) {
	rows, err := q.db.QueryContext(ctx, listNewsletterEmails, newsletterID)
	if err != nil {
		return nil, err
	}
	return collect(rows, func(r rowScanner) (NewsletterEmail, error) {
		var i NewsletterEmail
		err := r.Scan(&i.ID, &i.NewsletterID, &i.Email, &i.Locale, &i.CreatedAt)
		return i, err
	})
}
