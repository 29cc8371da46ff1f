// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package support

import "context"

// # Ticket Data Access

// Repository defines the data access contract for support tickets.
type Repository interface {

	/*
		Insert persists a new ticket.

		Parameters:
		  - context: context.Context
		  - ticket: *Ticket

		Returns:
		  - error: Storage failures
	*/
	Insert(context context.Context, ticket *Ticket) error

	/*
		FindByID returns one ticket.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *Ticket: The hydrated ticket
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Ticket, error)

	/*
		ListByUser returns a user's tickets, newest first.
	*/
	ListByUser(context context.Context, userID string) ([]*Ticket, error)

	/*
		ListAll returns the whole queue, open tickets first, then newest
		first. Admin triage view.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []*Ticket: Page of tickets
		  - int: Total queue size
		  - error: Database retrieval failures
	*/
	ListAll(context context.Context, limit, offset int) ([]*Ticket, int, error)

	/*
		SetStatus transitions a ticket and stamps updated_at.

		Parameters:
		  - context: context.Context
		  - id: string
		  - status: Status

		Returns:
		  - error: ErrNotFound or storage failures
	*/
	SetStatus(context context.Context, id string, status Status) error
}
