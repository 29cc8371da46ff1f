// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

/*
Package support handles user-submitted support tickets.

Signed-in users file tickets against their account; the contact email
defaults to the account email but may be overridden for replies. Tickets are
triaged by administrators, who see the full queue and close resolved ones.
*/
package support

import "time"

// Status tracks a ticket through triage.
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Ticket is one support request.
type Ticket struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"` // nil after account removal
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldBody    = "body"
)
