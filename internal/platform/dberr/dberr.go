// Copyright (c) 2026 Chorostat. All rights reserved.
// Author: platform@chorostat.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// It classifies pgx errors by SQLSTATE so that service-layer code can react
// to specific conditions (a missing row, a unique-constraint violation)
// without importing driver packages.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chorostat/chorostat/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	if constraint, ok := UniqueViolation(err); ok {
		return apperr.Conflict("Duplicate value violates constraint " + constraint)
	}

	// Unknown query errors become Internal Server Errors.
	return apperr.Internal(err)
}

// UniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). On a match it returns the violated
// constraint's name.
//
// The save-with-retry protocol uses the constraint name to distinguish a
// title collision (recoverable by renaming) from any other uniqueness
// failure (not recoverable).
func UniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsUniqueViolationOf reports whether err is a unique violation of the named
// constraint specifically.
func IsUniqueViolationOf(err error, constraintName string) bool {
	constraint, ok := UniqueViolation(err)
	return ok && constraint == constraintName
}
