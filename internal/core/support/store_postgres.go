// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

package support

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chorostat/chorostat/internal/platform/database/schema"
	"github.com/chorostat/chorostat/internal/platform/dberr"
)

// # PostgreSQL Repository

// repository implements the [Repository] interface using pgx.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed ticket store.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func ticketColumns() string {
	t := schema.SupportTickets
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		t.ID, t.UserID, t.Email, t.Subject, t.Body, t.Status, t.CreatedAt, t.UpdatedAt,
	)
}

func scanTicket(row pgx.Row) (*Ticket, error) {
	var ticket Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.Email,
		&ticket.Subject,
		&ticket.Body,
		&ticket.Status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (repository *repository) Insert(context context.Context, ticket *Ticket) error {
	t := schema.SupportTickets
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s`,
		t.Table, t.ID, t.UserID, t.Email, t.Subject, t.Body, t.Status,
		t.CreatedAt, t.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		ticket.ID,
		ticket.UserID,
		ticket.Email,
		ticket.Subject,
		ticket.Body,
		ticket.Status,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	return dberr.Wrap(err, "ticket_insert")
}

func (repository *repository) FindByID(context context.Context, id string) (*Ticket, error) {
	t := schema.SupportTickets
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		ticketColumns(), t.Table, t.ID,
	)

	ticket, err := scanTicket(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "ticket_find_by_id")
	}
	return ticket, nil
}

func (repository *repository) ListByUser(context context.Context, userID string) ([]*Ticket, error) {
	t := schema.SupportTickets
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC`,
		ticketColumns(), t.Table, t.UserID, t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "ticket_list_by_user")
	}
	defer rows.Close()

	tickets := make([]*Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "ticket_list_scan")
		}
		tickets = append(tickets, ticket)
	}
	return tickets, dberr.Wrap(rows.Err(), "ticket_list_rows")
}

func (repository *repository) ListAll(context context.Context, limit, offset int) ([]*Ticket, int, error) {
	t := schema.SupportTickets

	// Open tickets surface first; the window function spares a second
	// COUNT query.
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY (%s = 'open') DESC, %s DESC
		LIMIT $1 OFFSET $2`,
		ticketColumns(), t.Table, t.Status, t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "ticket_list_all")
	}
	defer rows.Close()

	tickets := make([]*Ticket, 0)
	total := 0
	for rows.Next() {
		var ticket Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.UserID,
			&ticket.Email,
			&ticket.Subject,
			&ticket.Body,
			&ticket.Status,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "ticket_list_all_scan")
		}
		tickets = append(tickets, &ticket)
	}
	return tickets, total, dberr.Wrap(rows.Err(), "ticket_list_all_rows")
}

func (repository *repository) SetStatus(context context.Context, id string, status Status) error {
	t := schema.SupportTickets
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		t.Table, t.Status, t.UpdatedAt, t.ID,
	)

	tag, err := repository.pool.Exec(context, query, id, status)
	if err != nil {
		return dberr.Wrap(err, "ticket_set_status")
	}
	if tag.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
