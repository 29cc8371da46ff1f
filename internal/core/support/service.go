// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package support

import (
	"context"
	"log/slog"

	"github.com/chorostat/chorostat/internal/platform/apperr"
	"github.com/chorostat/chorostat/internal/platform/validate"
	"github.com/chorostat/chorostat/pkg/uuid"
)

// # Service Layer

// Service orchestrates ticket filing and triage.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

/*
File creates a new ticket for the user.

Parameters:
  - context: context.Context
  - ticket: *Ticket (Email, subject, and body; UserID set by the caller)

Returns:
  - error: Validation or storage failures
*/
func (service *Service) File(context context.Context, ticket *Ticket) error {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, ticket.Email).Email(FieldEmail, ticket.Email)
	validator.Required(FieldSubject, ticket.Subject).MaxLen(FieldSubject, ticket.Subject, 300)
	validator.Required(FieldBody, ticket.Body).MaxLen(FieldBody, ticket.Body, 10000)
	if err := validator.Err(); err != nil {
		return err
	}

	ticket.ID = uuid.New()
	ticket.Status = StatusOpen

	if err := service.repo.Insert(context, ticket); err != nil {
		return err
	}

	service.logger.Info("support ticket filed", slog.String("ticket_id", ticket.ID))
	return nil
}

// ListOwn returns the caller's tickets, newest first.
func (service *Service) ListOwn(context context.Context, userID string) ([]*Ticket, error) {
	return service.repo.ListByUser(context, userID)
}

// Queue returns a page of the full ticket queue for triage.
func (service *Service) Queue(context context.Context, limit, offset int) ([]*Ticket, int, error) {
	return service.repo.ListAll(context, limit, offset)
}

/*
Close marks a ticket resolved.

Description: Admins may close any ticket; a user may close their own.

Parameters:
  - context: context.Context
  - ticketID: string
  - actorID: string
  - admin: bool

Returns:
  - error: NotFound, Forbidden, or storage failures
*/
func (service *Service) Close(context context.Context, ticketID, actorID string, admin bool) error {
	ticket, err := service.repo.FindByID(context, ticketID)
	if err != nil {
		return err
	}
	if !admin && (ticket.UserID == nil || *ticket.UserID != actorID) {
		return apperr.Forbidden("ticket belongs to another user")
	}
	return service.repo.SetStatus(context, ticketID, StatusClosed)
}
